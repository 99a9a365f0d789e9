package relational

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// CostingRepository persists costings.
type CostingRepository struct{}

func (r *CostingRepository) FindByID(ctx context.Context, db *gorm.DB, id uint64) (*models.Costing, error) {
	return first[models.Costing](db.WithContext(ctx).Where("id = ?", id))
}

func (r *CostingRepository) Save(ctx context.Context, db *gorm.DB, costing *models.Costing) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(costing).Error
}

func (r *CostingRepository) CreateBatch(ctx context.Context, db *gorm.DB, costings []*models.Costing) error {
	if len(costings) == 0 {
		return nil
	}
	return db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(costings, len(costings)).Error
}

func (r *CostingRepository) DeleteByAssetBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error) {
	res := db.WithContext(ctx).
		Where("asset_id IN (SELECT id FROM assets WHERE import_batch_id = ?)", batchID).
		Delete(&models.Costing{})
	return res.RowsAffected, res.Error
}

var _ models.CostingRepository = (*CostingRepository)(nil)
