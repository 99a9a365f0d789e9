package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/assetflow/assetflow/internal/domain/models"
	"github.com/assetflow/assetflow/internal/metrics"
	"github.com/assetflow/assetflow/internal/repository/sheets"
	"github.com/assetflow/assetflow/internal/service/batches"
	"github.com/assetflow/assetflow/internal/service/notify"
	"github.com/assetflow/assetflow/internal/spreadsheet"
)

var (
	ErrUnsupportedFile  = errors.New("only .xlsx workbooks can be imported")
	ErrFileTooLarge     = errors.New("file exceeds the upload limit")
	ErrImportInProgress = errors.New("another import is in progress")
	ErrSheetsDisabled   = errors.New("google sheet import is not configured")
)

// Pipeline reconciles one sheet under a batch.
type Pipeline interface {
	Run(ctx context.Context, batch *models.ImportBatch, sheet spreadsheet.Sheet) (*models.ImportReport, error)
}

// BatchStore is the lifecycle of import batches.
type BatchStore interface {
	Create(ctx context.Context, in batches.NewBatch) (*models.ImportBatch, error)
	Finalize(ctx context.Context, batch *models.ImportBatch, report *models.ImportReport) error
	Fail(ctx context.Context, batch *models.ImportBatch, cause error) error
	Delete(ctx context.Context, id uint64) (*models.DeletionSummary, error)
}

// ReportArchive keeps full import reports outside the relational store.
type ReportArchive interface {
	SaveImportReport(ctx context.Context, report *models.ImportReport) error
	DeleteImportReport(ctx context.Context, batchID uint64) error
}

// Options carries the optional collaborators of a Service.
type Options struct {
	UploadDir      string
	MaxUploadBytes int64
	Source         sheets.Source
	Archive        ReportArchive
	Notifier       notify.Notifier
	Metrics        *metrics.Metrics
}

// Service runs imports one at a time, whatever their source.
type Service struct {
	mu       sync.Mutex
	pipeline Pipeline
	batches  BatchStore
	opts     Options
	logger   *zap.Logger
}

func NewService(pipeline Pipeline, store BatchStore, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Service{pipeline: pipeline, batches: store, opts: opts, logger: logger}
}

// Result is what a finished import hands back to its caller.
type Result struct {
	Batch  *models.ImportBatch  `json:"batch"`
	Report *models.ImportReport `json:"report"`
}

// Upload is a workbook received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImportUpload stores and imports an uploaded workbook. It waits for any
// running import to finish.
func (s *Service) ImportUpload(ctx context.Context, up Upload) (*Result, error) {
	if !strings.EqualFold(filepath.Ext(up.Filename), ".xlsx") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, up.Filename)
	}
	if up.Size > s.opts.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(up.Body, s.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := batches.StoredName(up.Filename)
	path, err := s.saveUpload(stored, data)
	if err != nil {
		return nil, err
	}

	batch, err := s.batches.Create(ctx, batches.NewBatch{
		OriginalFilename: filepath.Base(up.Filename),
		StoredFilename:   stored,
		FilePath:         path,
		FileSize:         int64(len(data)),
		ContentType:      up.ContentType,
		Source:           models.SourceUpload,
	})
	if err != nil {
		return nil, err
	}

	return s.process(ctx, batch, func() (spreadsheet.Sheet, error) {
		return spreadsheet.DecodeXLSX(bytes.NewReader(data))
	})
}

// ImportGoogleSheet imports the configured Google Sheets range. It fails
// fast with ErrImportInProgress rather than queueing behind another import.
func (s *Service) ImportGoogleSheet(ctx context.Context) (*Result, error) {
	if s.opts.Source == nil {
		return nil, ErrSheetsDisabled
	}
	if !s.mu.TryLock() {
		return nil, ErrImportInProgress
	}
	defer s.mu.Unlock()

	batch, err := s.batches.Create(ctx, batches.NewBatch{
		OriginalFilename: s.opts.Source.Name(),
		Source:           models.SourceGoogleSheet,
	})
	if err != nil {
		return nil, err
	}

	return s.process(ctx, batch, func() (spreadsheet.Sheet, error) {
		return s.opts.Source.FetchGrid(ctx)
	})
}

func (s *Service) process(ctx context.Context, batch *models.ImportBatch, load func() (spreadsheet.Sheet, error)) (*Result, error) {
	start := time.Now()

	sheet, err := load()
	var report *models.ImportReport
	if err == nil {
		report, err = s.pipeline.Run(ctx, batch, sheet)
	}
	s.opts.Metrics.RecordImport(batch.Source, report, err, time.Since(start))

	if err != nil {
		s.logger.Warn("import failed", zap.Uint64("batch_id", batch.ID), zap.Error(err))
		if failErr := s.batches.Fail(ctx, batch, err); failErr != nil {
			s.logger.Error("failed to record import failure", zap.Uint64("batch_id", batch.ID), zap.Error(failErr))
		}
		return nil, err
	}

	if err := s.batches.Finalize(ctx, batch, report); err != nil {
		return nil, err
	}

	if s.opts.Archive != nil {
		if err := s.opts.Archive.SaveImportReport(ctx, report); err != nil {
			s.logger.Warn("failed to archive import report", zap.Uint64("batch_id", batch.ID), zap.Error(err))
		}
	}
	if err := s.opts.Notifier.ImportFinished(ctx, batch, report); err != nil {
		s.logger.Warn("failed to send import summary", zap.Uint64("batch_id", batch.ID), zap.Error(err))
	}

	return &Result{Batch: batch, Report: report}, nil
}

// Delete rolls back one batch. It waits for any running import.
func (s *Service) Delete(ctx context.Context, id uint64) (*models.DeletionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary, err := s.batches.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.opts.Metrics.RecordDeletion(summary)

	if s.opts.Archive != nil {
		if err := s.opts.Archive.DeleteImportReport(ctx, id); err != nil {
			s.logger.Warn("failed to delete archived report", zap.Uint64("batch_id", id), zap.Error(err))
		}
	}
	if err := s.opts.Notifier.BatchDeleted(ctx, id, summary); err != nil {
		s.logger.Warn("failed to send deletion summary", zap.Uint64("batch_id", id), zap.Error(err))
	}
	return summary, nil
}

// saveUpload keeps a copy of the workbook when an upload directory is set.
func (s *Service) saveUpload(stored string, data []byte) (string, error) {
	if s.opts.UploadDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.opts.UploadDir, stored)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path, nil
}
