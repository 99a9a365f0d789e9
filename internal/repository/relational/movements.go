package relational

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// MovementRepository persists movements.
type MovementRepository struct{}

func (r *MovementRepository) FindByID(ctx context.Context, db *gorm.DB, id uint64) (*models.Movement, error) {
	return first[models.Movement](db.WithContext(ctx).Where("id = ?", id))
}

func (r *MovementRepository) FindActiveByAsset(ctx context.Context, db *gorm.DB, assetID uint64) (*models.Movement, error) {
	return first[models.Movement](db.WithContext(ctx).
		Where("asset_id = ? AND status <> ?", assetID, models.MovementCancelled))
}

func (r *MovementRepository) Save(ctx context.Context, db *gorm.DB, movement *models.Movement) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(movement).Error
}

func (r *MovementRepository) CreateBatch(ctx context.Context, db *gorm.DB, movements []*models.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(movements, len(movements)).Error
}

func (r *MovementRepository) DeleteByBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error) {
	res := db.WithContext(ctx).
		Where("import_batch_id = ? OR asset_id IN (SELECT id FROM assets WHERE import_batch_id = ?)", batchID, batchID).
		Delete(&models.Movement{})
	return res.RowsAffected, res.Error
}

var _ models.MovementRepository = (*MovementRepository)(nil)
