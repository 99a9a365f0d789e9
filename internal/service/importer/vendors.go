package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/domain/models"
)

const maxEmailSlug = 30

// resolveVendor finds the vendor named on the row or creates it. The lookup
// and any write commit on their own.
func (r *run) resolveVendor(ctx context.Context, rec *models.ImportRecord) (*models.Vendor, error) {
	name := nonEmpty(rec.VendorName, defaultVendorName)
	freight := strings.TrimSpace(rec.FreightCategory)

	var vendor *models.Vendor
	err := r.inTx(ctx, func(tx *gorm.DB) error {
		found, err := r.p.repos.Vendors.FindByName(ctx, tx, name)
		switch {
		case err == nil:
			vendor = found
			if vendor.FreightCategory == "" && freight != "" {
				vendor.FreightCategory = freight
				return r.p.repos.Vendors.Save(ctx, tx, vendor)
			}
			return nil
		case !errors.Is(err, models.ErrNotFound):
			return err
		}

		email, err := r.vendorEmail(ctx, tx, name, rec.VendorEmail)
		if err != nil {
			return err
		}
		joined := r.today
		vendor = &models.Vendor{
			Name:            name,
			Email:           &email,
			Status:          models.VendorActive,
			FreightCategory: freight,
			JoinedDate:      &joined,
			ImportBatchID:   r.batchID,
		}
		if err := r.p.repos.Vendors.Create(ctx, tx, vendor); err != nil {
			return err
		}
		r.report.VendorsCreated++
		r.p.logger.Debug("vendor created", zap.String("vendor", name), zap.String("email", email))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve vendor %q: %w", name, err)
	}
	return vendor, nil
}

// vendorEmail keeps the email found on the row unless another vendor already
// owns it, otherwise it invents a unique placeholder.
func (r *run) vendorEmail(ctx context.Context, tx *gorm.DB, name, discovered string) (string, error) {
	if email := strings.TrimSpace(discovered); email != "" {
		taken, err := r.p.repos.Vendors.EmailTaken(ctx, tx, email)
		if err != nil {
			return "", err
		}
		if !taken {
			return email, nil
		}
	}
	return placeholderEmail(name, r.p.suffix()), nil
}

func placeholderEmail(name, suffix string) string {
	base := slug.Make(name)
	if len(base) > maxEmailSlug {
		base = base[:maxEmailSlug]
	}
	base = strings.Trim(base, "-")
	if base == "" {
		base = "vendor"
	}
	return fmt.Sprintf("%s-%s@vendor.com", base, suffix)
}

// recomputeVendor rewrites the vendor's derived totals from its assets.
func (r *run) recomputeVendor(ctx context.Context, tx *gorm.DB, vendorID uint64) error {
	count, total, err := r.p.repos.Assets.VendorTotals(ctx, tx, vendorID)
	if err != nil {
		return fmt.Errorf("total assets of vendor %d: %w", vendorID, err)
	}
	if err := r.p.repos.Vendors.UpdateTotals(ctx, tx, vendorID, count, total); err != nil {
		return fmt.Errorf("update totals of vendor %d: %w", vendorID, err)
	}
	return nil
}
