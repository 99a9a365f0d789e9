package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/domain/models"
)

const (
	missingSerialReason  = "missing ATM BNA ID"
	defaultBillingMonth  = "N/A"
	defaultBillingStatus = "PENDING"
	assetActive          = "ACTIVE"
)

// reconcileAsset runs the asset stage for one record and returns the asset
// the movement stage should use, or nil when the stage did not produce one.
func (r *run) reconcileAsset(ctx context.Context, rec *models.ImportRecord) *models.Asset {
	stage := &r.report.Assets
	stage.TotalProcessed++

	serial := strings.TrimSpace(rec.AssetSerial)
	if serial == "" {
		stage.Record(models.RowResult{Row: rec.Row, Outcome: models.OutcomeMissingField, Message: missingSerialReason})
		return nil
	}

	vendor, err := r.resolveVendor(ctx, rec)
	if err != nil {
		r.assetFailed(rec.Row, serial, err)
		return nil
	}

	var (
		asset   *models.Asset
		outcome models.Outcome
	)
	err = r.inTx(ctx, func(tx *gorm.DB) error {
		existing, err := r.p.repos.Assets.FindBySerial(ctx, tx, serial)
		if errors.Is(err, models.ErrNotFound) {
			asset = r.newAsset(serial, vendor, rec)
			if err := r.p.repos.Assets.Create(ctx, tx, asset); err != nil {
				return err
			}
			outcome = models.OutcomeCreated
			return r.recomputeVendor(ctx, tx, vendor.ID)
		}
		if err != nil {
			return err
		}

		asset = existing
		if assetMatches(existing, vendor.ID, rec) {
			outcome = models.OutcomeDuplicate
			return nil
		}

		previous := existing.VendorID
		r.applyAssetUpdate(existing, vendor.ID, rec)
		if err := r.p.repos.Assets.Save(ctx, tx, existing); err != nil {
			return err
		}
		outcome = models.OutcomeUpdated
		// The update may change the asset's value as well as its vendor.
		if err := r.recomputeVendor(ctx, tx, vendor.ID); err != nil {
			return err
		}
		if previous != nil && *previous != vendor.ID {
			return r.recomputeVendor(ctx, tx, *previous)
		}
		return nil
	})
	if err != nil {
		r.assetFailed(rec.Row, serial, err)
		return nil
	}

	result := models.RowResult{Row: rec.Row, Key: serial, Outcome: outcome}
	switch outcome {
	case models.OutcomeCreated:
		result.Message = fmt.Sprintf("%s created for vendor %s", asset.Name, vendor.Name)
	case models.OutcomeUpdated:
		result.Message = fmt.Sprintf("%s updated for vendor %s", asset.Name, vendor.Name)
	default:
		result.Message = fmt.Sprintf("ATM %s already exists with identical data", serial)
	}
	stage.Record(result)

	if outcome == models.OutcomeCreated {
		r.queueCosting(ctx, rec, asset, vendor)
	}
	return asset
}

func (r *run) assetFailed(row int, serial string, err error) {
	r.p.logger.Warn("asset row failed", zap.Int("row", row), zap.String("serial", serial), zap.Error(err))
	r.report.Assets.Record(models.RowResult{Row: row, Key: serial, Outcome: models.OutcomeError, Message: err.Error()})
}

// assetMatches compares the fields that decide whether a row changes the
// stored asset. Blank incoming values match anything.
func assetMatches(a *models.Asset, vendorID uint64, rec *models.ImportRecord) bool {
	if a.VendorID == nil || *a.VendorID != vendorID {
		return false
	}
	if rec.TotalCost.Valid && !a.TotalAmount.Equal(rec.TotalCost.Decimal) {
		return false
	}
	return matchesIfPresent(a.Location, rec.FromLocation) &&
		matchesIfPresent(a.BillingMonth, rec.BillingMonth) &&
		matchesIfPresent(a.BillingStatus, rec.BillingStatus)
}

func (r *run) newAsset(serial string, vendor *models.Vendor, rec *models.ImportRecord) *models.Asset {
	vendorID := vendor.ID
	installed := r.today
	total := amount(rec.TotalCost)
	perUnit := amount(rec.PerAssetCost)

	return &models.Asset{
		Name:             "ATM-" + serial,
		SerialNumber:     serial,
		AssetStatus:      nonEmpty(rec.Status, unknownValue),
		Status:           assetActive,
		Location:         nonEmpty(rec.FromLocation, unknownValue),
		Branch:           strings.TrimSpace(rec.FromState),
		VendorID:         &vendorID,
		ImportBatchID:    r.batchID,
		Value:            models.AssetValue(total, perUnit),
		TotalAmount:      total,
		Hold:             amount(rec.Hold),
		Deduction:        amount(rec.Deduction),
		FinalAmount:      amount(rec.FinalAmount),
		VendorCost:       perUnit,
		InstallationDate: &installed,
		BillingMonth:     nonEmpty(rec.BillingMonth, defaultBillingMonth),
		BillingStatus:    nonEmpty(rec.BillingStatus, defaultBillingStatus),
		PickupDate:       r.date(rec.Row, "pickup date", rec.PickupDate),
		DeliveryDate:     r.date(rec.Row, "delivery date", rec.DeliveryDate),
		AmountReceived:   strings.TrimSpace(rec.AmountReceived),
		Manufacturer:     "Standard",
		Model:            "Model-Unknown",
		Notes:            "Auto-created from Excel: " + strings.TrimSpace(rec.Description),
	}
}

// applyAssetUpdate overwrites only what the row supplies.
func (r *run) applyAssetUpdate(a *models.Asset, vendorID uint64, rec *models.ImportRecord) {
	setText(&a.Location, rec.FromLocation)
	setText(&a.Branch, rec.FromState)
	setText(&a.AssetStatus, rec.Status)
	setText(&a.BillingMonth, rec.BillingMonth)
	setText(&a.BillingStatus, rec.BillingStatus)
	setText(&a.AmountReceived, rec.AmountReceived)

	setAmount(&a.TotalAmount, rec.TotalCost)
	setAmount(&a.Hold, rec.Hold)
	setAmount(&a.Deduction, rec.Deduction)
	setAmount(&a.FinalAmount, rec.FinalAmount)
	setAmount(&a.VendorCost, rec.PerAssetCost)
	if value := models.AssetValue(a.TotalAmount, a.VendorCost); value.IsPositive() {
		a.Value = value
	}

	if a.VendorID == nil || *a.VendorID != vendorID {
		id := vendorID
		a.VendorID = &id
	}
	if t := r.date(rec.Row, "pickup date", rec.PickupDate); t != nil {
		a.PickupDate = t
	}
	if t := r.date(rec.Row, "delivery date", rec.DeliveryDate); t != nil {
		a.DeliveryDate = t
	}
}

func (r *run) queueCosting(ctx context.Context, rec *models.ImportRecord, asset *models.Asset, vendor *models.Vendor) {
	costing := &models.Costing{
		AssetID:         asset.ID,
		VendorID:        vendor.ID,
		BaseCost:        amount(rec.TotalCost),
		MaintenanceCost: amount(rec.Hold),
		OperationalCost: amount(rec.Deduction),
		Margin:          decimal.Zero,
		Status:          models.CostingPending,
		SubmittedBy:     systemUser,
		SubmittedDate:   r.today,
		Notes:           strings.TrimSpace(rec.Description),
	}
	r.report.Costings.TotalProcessed++
	r.costings.Add(ctx, &pendingCosting{row: rec.Row, serial: asset.SerialNumber, costing: costing})
}

// date parses an optional date cell, leaving a warning when it cannot.
func (r *run) date(row int, field, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t, ok := parseDate(raw)
	if !ok {
		r.warn(row, "ignored %s %q", field, strings.TrimSpace(raw))
		return nil
	}
	return &t
}

func amount(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

func setText(dst *string, incoming string) {
	if v := strings.TrimSpace(incoming); v != "" {
		*dst = v
	}
}

func setAmount(dst *decimal.Decimal, incoming decimal.NullDecimal) {
	if incoming.Valid {
		*dst = incoming.Decimal
	}
}
