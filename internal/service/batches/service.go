package batches

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// ErrBatchNotFound is returned when no import batch has the requested id.
var ErrBatchNotFound = errors.New("import batch not found")

// Repositories are the stores touched by the batch lifecycle.
type Repositories struct {
	Vendors   models.VendorRepository
	Assets    models.AssetRepository
	Movements models.MovementRepository
	Costings  models.CostingRepository
	Batches   models.ImportBatchRepository
}

// Service records import batches and rolls them back.
type Service struct {
	db     *gorm.DB
	repos  Repositories
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a batch lifecycle service.
func NewService(db *gorm.DB, repos Repositories, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, repos: repos, logger: logger, now: time.Now}
}

// NewBatch describes an import about to start.
type NewBatch struct {
	OriginalFilename string
	StoredFilename   string
	FilePath         string
	FileSize         int64
	ContentType      string
	Source           models.ImportSource
}

// StoredName derives a collision-free name for an uploaded file.
func StoredName(original string) string {
	base := filepath.Base(strings.TrimSpace(original))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "import"
	}
	return uuid.NewString() + "_" + base
}

// Create persists the batch before any row is processed.
func (s *Service) Create(ctx context.Context, in NewBatch) (*models.ImportBatch, error) {
	stored := in.StoredFilename
	if stored == "" {
		stored = StoredName(in.OriginalFilename)
	}
	batch := &models.ImportBatch{
		OriginalFilename: in.OriginalFilename,
		StoredFilename:   stored,
		FilePath:         in.FilePath,
		FileSize:         in.FileSize,
		ContentType:      in.ContentType,
		Source:           in.Source,
	}
	if err := s.repos.Batches.Create(ctx, s.db, batch); err != nil {
		return nil, fmt.Errorf("create import batch: %w", err)
	}
	s.logger.Info("import batch created",
		zap.Uint64("batch_id", batch.ID),
		zap.String("filename", batch.OriginalFilename),
		zap.String("source", string(batch.Source)),
	)
	return batch, nil
}

// Finalize stores the counters of a completed run on its batch.
func (s *Service) Finalize(ctx context.Context, batch *models.ImportBatch, report *models.ImportReport) error {
	processed := s.now()
	batch.TotalRows = report.RowsSeen
	batch.UniqueVendors = report.UniqueVendors
	batch.VendorsCreated = report.VendorsCreated
	batch.AssetsCreated = report.Assets.Created
	batch.MovementsCreated = report.Movements.Created
	batch.Notes = fmt.Sprintf("Successfully parsed %d rows. Found %d unique vendors. Created %d vendors, %d assets, %d movements.",
		report.RowsSeen, report.UniqueVendors, report.VendorsCreated, report.Assets.Created, report.Movements.Created)
	batch.ProcessedAt = &processed

	if err := s.repos.Batches.Save(ctx, s.db, batch); err != nil {
		return fmt.Errorf("finalize import batch %d: %w", batch.ID, err)
	}
	return nil
}

// Fail notes on the batch why its sheet could not be processed.
func (s *Service) Fail(ctx context.Context, batch *models.ImportBatch, cause error) error {
	processed := s.now()
	batch.Notes = truncate("Import failed: "+cause.Error(), 1000)
	batch.ProcessedAt = &processed
	if err := s.repos.Batches.Save(ctx, s.db, batch); err != nil {
		return fmt.Errorf("mark import batch %d failed: %w", batch.ID, err)
	}
	return nil
}

// List returns up to limit batches, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]models.ImportBatch, error) {
	batches, err := s.repos.Batches.List(ctx, s.db, limit)
	if err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	return batches, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*models.ImportBatch, error) {
	batch, err := s.repos.Batches.FindByID(ctx, s.db, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrBatchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load import batch %d: %w", id, err)
	}
	return batch, nil
}

// Delete removes everything the batch created in a single transaction.
// Vendors still used elsewhere survive, detached from the batch and with
// their totals recomputed.
func (s *Service) Delete(ctx context.Context, id uint64) (*models.DeletionSummary, error) {
	summary := &models.DeletionSummary{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repos.Batches.FindByID(ctx, tx, id); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: %d", ErrBatchNotFound, id)
			}
			return err
		}

		var err error
		if summary.Costings, err = s.repos.Costings.DeleteByAssetBatch(ctx, tx, id); err != nil {
			return fmt.Errorf("delete costings: %w", err)
		}
		if summary.Movements, err = s.repos.Movements.DeleteByBatch(ctx, tx, id); err != nil {
			return fmt.Errorf("delete movements: %w", err)
		}

		affected, err := s.repos.Assets.VendorIDsByBatch(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("collect vendors: %w", err)
		}
		if summary.Assets, err = s.repos.Assets.DeleteByBatch(ctx, tx, id); err != nil {
			return fmt.Errorf("delete assets: %w", err)
		}
		if summary.Vendors, err = s.repos.Vendors.DeleteUnreferencedByBatch(ctx, tx, id); err != nil {
			return fmt.Errorf("delete vendors: %w", err)
		}
		if summary.VendorsDetached, err = s.repos.Vendors.DetachBatch(ctx, tx, id); err != nil {
			return fmt.Errorf("detach vendors: %w", err)
		}

		for _, vendorID := range affected {
			if err := s.recomputeVendor(ctx, tx, vendorID); err != nil {
				return err
			}
		}

		if _, err := s.repos.Batches.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("delete batch: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("delete import batch %d: %w", id, err)
	}

	summary.Total = summary.Costings + summary.Movements + summary.Assets + summary.Vendors
	s.logger.Info("import batch deleted",
		zap.Uint64("batch_id", id),
		zap.Int64("costings", summary.Costings),
		zap.Int64("movements", summary.Movements),
		zap.Int64("assets", summary.Assets),
		zap.Int64("vendors", summary.Vendors),
		zap.Int64("vendors_detached", summary.VendorsDetached),
	)
	return summary, nil
}

// recomputeVendor refreshes the totals of a vendor that lost assets, unless
// the vendor itself was deleted.
func (s *Service) recomputeVendor(ctx context.Context, tx *gorm.DB, vendorID uint64) error {
	if _, err := s.repos.Vendors.FindByID(ctx, tx, vendorID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load vendor %d: %w", vendorID, err)
	}
	count, total, err := s.repos.Assets.VendorTotals(ctx, tx, vendorID)
	if err != nil {
		return fmt.Errorf("total assets of vendor %d: %w", vendorID, err)
	}
	if err := s.repos.Vendors.UpdateTotals(ctx, tx, vendorID, count, total); err != nil {
		return fmt.Errorf("update totals of vendor %d: %w", vendorID, err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
