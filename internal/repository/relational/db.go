package relational

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/config"
	"github.com/assetflow/assetflow/internal/domain/models"
	"github.com/assetflow/assetflow/pkg/logger"
)

// Open connects to the configured relational database.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.NewGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		if err := enableSQLiteForeignKeys(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// enableSQLiteForeignKeys pins the pool to one connection so the pragma, and
// any in-memory database, is shared by every query.
func enableSQLiteForeignKeys(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	return nil
}

// Migrate creates or updates the schema for every persisted entity.
func Migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&models.ImportBatch{},
		&models.Vendor{},
		&models.Asset{},
		&models.Movement{},
		&models.Costing{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Repositories bundles the store implementations.
type Repositories struct {
	Vendors   *VendorRepository
	Assets    *AssetRepository
	Movements *MovementRepository
	Costings  *CostingRepository
	Batches   *ImportBatchRepository
}

// NewRepositories returns every repository.
func NewRepositories() Repositories {
	return Repositories{
		Vendors:   &VendorRepository{},
		Assets:    &AssetRepository{},
		Movements: &MovementRepository{},
		Costings:  &CostingRepository{},
		Batches:   &ImportBatchRepository{},
	}
}

func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
