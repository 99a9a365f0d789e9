package relational

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// AssetRepository persists assets.
type AssetRepository struct{}

func (r *AssetRepository) FindByID(ctx context.Context, db *gorm.DB, id uint64) (*models.Asset, error) {
	return first[models.Asset](db.WithContext(ctx).Where("id = ?", id))
}

func (r *AssetRepository) FindBySerial(ctx context.Context, db *gorm.DB, serial string) (*models.Asset, error) {
	key := strings.ToLower(strings.TrimSpace(serial))
	return first[models.Asset](db.WithContext(ctx).Where("LOWER(serial_number) = ?", key))
}

func (r *AssetRepository) Create(ctx context.Context, db *gorm.DB, asset *models.Asset) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(asset).Error
}

func (r *AssetRepository) Save(ctx context.Context, db *gorm.DB, asset *models.Asset) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(asset).Error
}

func (r *AssetRepository) VendorTotals(ctx context.Context, db *gorm.DB, vendorID uint64) (int, decimal.Decimal, error) {
	rows, err := db.WithContext(ctx).Model(&models.Asset{}).
		Select("value").
		Where("vendor_id = ?", vendorID).
		Rows()
	if err != nil {
		return 0, decimal.Zero, err
	}
	defer rows.Close()

	count, total := 0, decimal.Zero
	for rows.Next() {
		var value decimal.Decimal
		if err := rows.Scan(&value); err != nil {
			return 0, decimal.Zero, fmt.Errorf("scan asset value: %w", err)
		}
		count++
		total = total.Add(value)
	}
	return count, total, rows.Err()
}

func (r *AssetRepository) VendorIDsByBatch(ctx context.Context, db *gorm.DB, batchID uint64) ([]uint64, error) {
	var ids []uint64
	err := db.WithContext(ctx).Model(&models.Asset{}).
		Where("import_batch_id = ? AND vendor_id IS NOT NULL", batchID).
		Distinct().
		Pluck("vendor_id", &ids).Error
	return ids, err
}

func (r *AssetRepository) DeleteByBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error) {
	res := db.WithContext(ctx).Where("import_batch_id = ?", batchID).Delete(&models.Asset{})
	return res.RowsAffected, res.Error
}

var _ models.AssetRepository = (*AssetRepository)(nil)
