package models

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNotFound is returned by repositories when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Repository methods take the *gorm.DB to run on so callers decide the
// transaction scope.

type VendorRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id uint64) (*Vendor, error)
	// FindByName matches the trimmed name case-insensitively.
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Vendor, error)
	EmailTaken(ctx context.Context, db *gorm.DB, email string) (bool, error)
	Create(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	Save(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	UpdateTotals(ctx context.Context, db *gorm.DB, id uint64, assets int, total decimal.Decimal) error
	// DeleteUnreferencedByBatch removes the batch's vendors that no asset or
	// costing points at.
	DeleteUnreferencedByBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error)
	DetachBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error)
}

type AssetRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id uint64) (*Asset, error)
	// FindBySerial matches the trimmed serial number case-insensitively.
	FindBySerial(ctx context.Context, db *gorm.DB, serial string) (*Asset, error)
	Create(ctx context.Context, db *gorm.DB, asset *Asset) error
	Save(ctx context.Context, db *gorm.DB, asset *Asset) error
	// VendorTotals returns how many assets reference the vendor and the sum of
	// their values.
	VendorTotals(ctx context.Context, db *gorm.DB, vendorID uint64) (int, decimal.Decimal, error)
	VendorIDsByBatch(ctx context.Context, db *gorm.DB, batchID uint64) ([]uint64, error)
	DeleteByBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error)
}

type MovementRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id uint64) (*Movement, error)
	// FindActiveByAsset returns the oldest movement of the asset that is not
	// cancelled.
	FindActiveByAsset(ctx context.Context, db *gorm.DB, assetID uint64) (*Movement, error)
	Save(ctx context.Context, db *gorm.DB, movement *Movement) error
	CreateBatch(ctx context.Context, db *gorm.DB, movements []*Movement) error
	// DeleteByBatch removes movements of the batch's assets and movements
	// that reference the batch directly.
	DeleteByBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error)
}

type CostingRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id uint64) (*Costing, error)
	Save(ctx context.Context, db *gorm.DB, costing *Costing) error
	CreateBatch(ctx context.Context, db *gorm.DB, costings []*Costing) error
	DeleteByAssetBatch(ctx context.Context, db *gorm.DB, batchID uint64) (int64, error)
}

type ImportBatchRepository interface {
	Create(ctx context.Context, db *gorm.DB, batch *ImportBatch) error
	Save(ctx context.Context, db *gorm.DB, batch *ImportBatch) error
	FindByID(ctx context.Context, db *gorm.DB, id uint64) (*ImportBatch, error)
	List(ctx context.Context, db *gorm.DB, limit int) ([]ImportBatch, error)
	Delete(ctx context.Context, db *gorm.DB, id uint64) (int64, error)
}
