package relational

import (
	"context"

	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// ImportBatchRepository persists import batches.
type ImportBatchRepository struct{}

func (r *ImportBatchRepository) Create(ctx context.Context, db *gorm.DB, batch *models.ImportBatch) error {
	return db.WithContext(ctx).Create(batch).Error
}

func (r *ImportBatchRepository) Save(ctx context.Context, db *gorm.DB, batch *models.ImportBatch) error {
	return db.WithContext(ctx).Save(batch).Error
}

func (r *ImportBatchRepository) FindByID(ctx context.Context, db *gorm.DB, id uint64) (*models.ImportBatch, error) {
	return first[models.ImportBatch](db.WithContext(ctx).Where("id = ?", id))
}

// List returns the newest batches first. A non-positive limit returns all.
func (r *ImportBatchRepository) List(ctx context.Context, db *gorm.DB, limit int) ([]models.ImportBatch, error) {
	q := db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var batches []models.ImportBatch
	if err := q.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *ImportBatchRepository) Delete(ctx context.Context, db *gorm.DB, id uint64) (int64, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&models.ImportBatch{})
	return res.RowsAffected, res.Error
}

var _ models.ImportBatchRepository = (*ImportBatchRepository)(nil)
