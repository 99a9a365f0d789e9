package relational

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// VendorRepository persists vendors.
type VendorRepository struct{}

func (r *VendorRepository) FindByID(ctx context.Context, db *gorm.DB, id uint64) (*models.Vendor, error) {
	return first[models.Vendor](db.WithContext(ctx).Where("id = ?", id))
}

func (r *VendorRepository) FindByName(ctx context.Context, db *gorm.DB, name string) (*models.Vendor, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	return first[models.Vendor](db.WithContext(ctx).Where("LOWER(name) = ?", key))
}

func (r *VendorRepository) EmailTaken(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Vendor{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

func (r *VendorRepository) Create(ctx context.Context, db *gorm.DB, vendor *models.Vendor) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(vendor).Error
}

func (r *VendorRepository) Save(ctx context.Context, db *gorm.DB, vendor *models.Vendor) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(vendor).Error
}

func (r *VendorRepository) UpdateTotals(ctx context.Context, db *gorm.DB, id uint64, assets int, total decimal.Decimal) error {
	return db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"assets_allocated": assets, "total_cost": total}).Error
}

func (r *VendorRepository) DeleteUnreferencedByBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error) {
	res := db.WithContext(ctx).
		Where("import_batch_id = ?", batchID).
		Where("NOT EXISTS (SELECT 1 FROM assets WHERE assets.vendor_id = vendors.id)").
		Where("NOT EXISTS (SELECT 1 FROM costings WHERE costings.vendor_id = vendors.id)").
		Delete(&models.Vendor{})
	return res.RowsAffected, res.Error
}

func (r *VendorRepository) DetachBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error) {
	res := db.WithContext(ctx).Model(&models.Vendor{}).
		Where("import_batch_id = ?", batchID).
		Update("import_batch_id", nil)
	return res.RowsAffected, res.Error
}

var _ models.VendorRepository = (*VendorRepository)(nil)
