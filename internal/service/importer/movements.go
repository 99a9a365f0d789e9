package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// movementFields are the values of a row that identify its movement.
type movementFields struct {
	movementType  string
	from          string
	to            string
	docket        string
	businessGroup string
}

func movementFieldsOf(rec *models.ImportRecord) movementFields {
	return movementFields{
		movementType:  nonEmpty(rec.MovementType, unknownValue),
		from:          nonEmpty(rec.FromLocation, unknownValue),
		to:            nonEmpty(rec.ToLocation, unknownValue),
		docket:        strings.TrimSpace(rec.DocketNo),
		businessGroup: strings.TrimSpace(rec.BusinessGroup),
	}
}

func (f movementFields) matches(m *models.Movement) bool {
	return sameText(m.MovementType, f.movementType) &&
		sameText(m.FromLocation, f.from) &&
		sameText(m.ToLocation, f.to) &&
		sameText(m.DocketNo, f.docket) &&
		sameText(m.BusinessGroup, f.businessGroup)
}

// reconcileMovement runs the movement stage for one record. asset is what the
// asset stage produced for the same row.
func (r *run) reconcileMovement(ctx context.Context, rec *models.ImportRecord, asset *models.Asset) {
	stage := &r.report.Movements
	stage.TotalProcessed++

	serial := strings.TrimSpace(rec.AssetSerial)
	if serial == "" {
		stage.Record(models.RowResult{Row: rec.Row, Outcome: models.OutcomeMissingField, Message: missingSerialReason})
		return
	}

	if asset == nil {
		found, err := r.p.repos.Assets.FindBySerial(ctx, r.p.db.WithContext(ctx), serial)
		switch {
		case errors.Is(err, models.ErrNotFound):
			stage.Record(models.RowResult{Row: rec.Row, Key: serial, Outcome: models.OutcomeMissingField,
				Message: fmt.Sprintf("ATM %s not found", serial)})
			return
		case err != nil:
			r.movementFailed(rec.Row, serial, err)
			return
		}
		asset = found
	}

	wanted := movementFieldsOf(rec)

	// A movement queued earlier in this sheet has not reached the store yet.
	if pending, ok := r.pendingMovements[asset.ID]; ok {
		if wanted.matches(pending.movement) {
			r.movementDuplicate(rec.Row, serial)
			return
		}
		r.applyMovementUpdate(pending.movement, wanted, rec)
		stage.Record(models.RowResult{Row: rec.Row, Key: serial, Outcome: models.OutcomeUpdated,
			Message: fmt.Sprintf("Pending movement for ATM %s updated before insert", serial)})
		return
	}

	existing, err := r.p.repos.Movements.FindActiveByAsset(ctx, r.p.db.WithContext(ctx), asset.ID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		item := &pendingMovement{row: rec.Row, serial: serial, movement: r.newMovement(asset, wanted, rec)}
		r.pendingMovements[asset.ID] = item
		r.movements.Add(ctx, item)
		return
	case err != nil:
		r.movementFailed(rec.Row, serial, err)
		return
	}

	if wanted.matches(existing) {
		r.movementDuplicate(rec.Row, serial)
		return
	}
	r.applyMovementUpdate(existing, wanted, rec)
	err = r.inTx(ctx, func(tx *gorm.DB) error {
		return r.p.repos.Movements.Save(ctx, tx, existing)
	})
	if err != nil {
		r.movementFailed(rec.Row, serial, err)
		return
	}
	stage.Record(models.RowResult{Row: rec.Row, Key: serial, Outcome: models.OutcomeUpdated,
		Message: fmt.Sprintf("Movement %s updated for ATM %s", existing.TrackingNumber, serial)})
}

func (r *run) movementDuplicate(row int, serial string) {
	r.report.Movements.Record(models.RowResult{Row: row, Key: serial, Outcome: models.OutcomeDuplicate,
		Message: fmt.Sprintf("Movement for ATM %s already exists with identical data", serial)})
}

func (r *run) movementFailed(row int, serial string, err error) {
	r.p.logger.Warn("movement row failed", zap.Int("row", row), zap.String("serial", serial), zap.Error(err))
	r.report.Movements.Record(models.RowResult{Row: row, Key: serial, Outcome: models.OutcomeError, Message: err.Error()})
}

func (r *run) newMovement(asset *models.Asset, f movementFields, rec *models.ImportRecord) *models.Movement {
	expected := r.today.AddDate(0, 0, deliveryDays)
	return &models.Movement{
		TrackingNumber:   models.NewTrackingNumber(),
		AssetID:          asset.ID,
		ImportBatchID:    r.batchID,
		MovementType:     f.movementType,
		FromLocation:     f.from,
		ToLocation:       f.to,
		Status:           models.MovementPending,
		InitiatedBy:      movementInitiator,
		InitiatedDate:    r.today,
		ExpectedDelivery: &expected,
		DocketNo:         f.docket,
		BusinessGroup:    f.businessGroup,
		ModeOfBill:       strings.TrimSpace(rec.ModeOfBill),
		Notes:            "Auto-created from Excel: " + strings.TrimSpace(rec.Description),
	}
}

func (r *run) applyMovementUpdate(m *models.Movement, f movementFields, rec *models.ImportRecord) {
	expected := r.today.AddDate(0, 0, deliveryDays)
	m.MovementType = f.movementType
	m.FromLocation = f.from
	m.ToLocation = f.to
	m.DocketNo = f.docket
	m.BusinessGroup = f.businessGroup
	m.ModeOfBill = strings.TrimSpace(rec.ModeOfBill)
	m.ExpectedDelivery = &expected
	m.Notes = "Updated from Excel: " + strings.TrimSpace(rec.Description)
	m.ImportBatchID = r.batchID
}
