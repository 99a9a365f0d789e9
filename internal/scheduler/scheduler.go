package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/assetflow/assetflow/internal/config"
	"github.com/assetflow/assetflow/internal/service/ingest"
)

const syncTimeout = 10 * time.Minute

// SheetImporter imports the configured Google Sheets range.
type SheetImporter interface {
	ImportGoogleSheet(ctx context.Context) (*ingest.Result, error)
}

// Scheduler runs the periodic sheet sync.
type Scheduler struct {
	cron     *cron.Cron
	importer SheetImporter
	spec     string
	logger   *zap.Logger
}

// NewScheduler creates a scheduler evaluating cfg.SyncCron in cfg.Timezone.
func NewScheduler(cfg config.SheetsConfig, importer SheetImporter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		importer: importer,
		spec:     cfg.SyncCron,
		logger:   logger,
	}, nil
}

// Start registers the sync job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.syncSheet); err != nil {
		return fmt.Errorf("schedule sheet sync %q: %w", s.spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("sheet_sync", s.spec))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sync to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) syncSheet() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	res, err := s.importer.ImportGoogleSheet(ctx)
	switch {
	case errors.Is(err, ingest.ErrImportInProgress):
		s.logger.Info("sheet sync skipped, an import is already running")
	case err != nil:
		s.logger.Error("sheet sync failed", zap.Error(err))
	default:
		s.logger.Info("sheet sync finished",
			zap.Uint64("batch_id", res.Batch.ID),
			zap.Int("rows", res.Report.RowsSeen),
			zap.Int("assets_created", res.Report.Assets.Created),
			zap.Int("assets_updated", res.Report.Assets.Updated),
		)
	}
}
