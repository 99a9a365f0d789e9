package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/domain/models"
	"github.com/assetflow/assetflow/internal/spreadsheet"
)

const (
	// Only reached by records handed straight to Reconcile; the extractor
	// already names blank vendors.
	defaultVendorName = "Default Vendor"
	unknownValue      = "Unknown"
	systemUser        = "system"
	movementInitiator = "System"
	deliveryDays      = 7
)

// Repositories are the stores the pipeline writes through.
type Repositories struct {
	Vendors   models.VendorRepository
	Assets    models.AssetRepository
	Movements models.MovementRepository
	Costings  models.CostingRepository
}

// Pipeline reconciles extracted spreadsheet rows into vendors, assets,
// movements and costings. A Pipeline is not safe for concurrent runs; callers
// serialize imports.
type Pipeline struct {
	db        *gorm.DB
	repos     Repositories
	extractor *spreadsheet.Extractor
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
	suffix    func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithEmailSuffix replaces the generator of placeholder email suffixes.
func WithEmailSuffix(fn func() string) Option {
	return func(p *Pipeline) { p.suffix = fn }
}

// NewPipeline wires a pipeline. batchSize bounds how many costings or
// movements are inserted per commit.
func NewPipeline(db *gorm.DB, repos Repositories, extractor *spreadsheet.Extractor, batchSize int, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = spreadsheet.NewExtractor(nil, logger.Named("extractor"))
	}
	p := &Pipeline{
		db:        db,
		repos:     repos,
		extractor: extractor,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
		suffix:    func() string { return uuid.NewString()[:8] },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run extracts sheet and reconciles its records under batch. Only structural
// problems with the sheet are returned as errors; row failures are reported.
func (p *Pipeline) Run(ctx context.Context, batch *models.ImportBatch, sheet spreadsheet.Sheet) (*models.ImportReport, error) {
	if batch == nil || batch.ID == 0 {
		return nil, errors.New("import batch must be persisted before running")
	}
	extraction, err := p.extractor.Extract(sheet)
	if err != nil {
		return nil, fmt.Errorf("extract sheet: %w", err)
	}
	return p.Reconcile(ctx, batch, extraction), nil
}

// Reconcile processes already extracted records in sheet order.
func (p *Pipeline) Reconcile(ctx context.Context, batch *models.ImportBatch, extraction *spreadsheet.Extraction) *models.ImportReport {
	r := p.newRun(batch, extraction)

	for i := range extraction.Records {
		rec := &extraction.Records[i]
		asset := r.reconcileAsset(ctx, rec)
		r.reconcileMovement(ctx, rec, asset)
	}
	r.costings.Flush(ctx)
	r.movements.Flush(ctx)

	r.report.FinishedAt = p.now()
	p.logger.Info("import reconciled",
		zap.Uint64("batch_id", batch.ID),
		zap.Int("rows", r.report.RowsSeen),
		zap.Int("vendors_created", r.report.VendorsCreated),
		zap.Int("assets_created", r.report.Assets.Created),
		zap.Int("assets_updated", r.report.Assets.Updated),
		zap.Int("assets_skipped", r.report.Assets.Skipped),
		zap.Int("asset_errors", r.report.Assets.Errors),
		zap.Int("movements_created", r.report.Movements.Created),
		zap.Int("movement_errors", r.report.Movements.Errors),
		zap.Duration("elapsed", r.report.FinishedAt.Sub(r.report.StartedAt)),
	)
	return r.report
}

// run is the state of one import: counters, pending batches and the
// movements queued but not yet written.
type run struct {
	p       *Pipeline
	batchID *uint64
	today   time.Time
	report  *models.ImportReport

	costings         *batcher[*pendingCosting]
	movements        *batcher[*pendingMovement]
	pendingMovements map[uint64]*pendingMovement
}

type pendingCosting struct {
	row     int
	serial  string
	costing *models.Costing
}

type pendingMovement struct {
	row      int
	serial   string
	movement *models.Movement
}

func (p *Pipeline) newRun(batch *models.ImportBatch, extraction *spreadsheet.Extraction) *run {
	now := p.now()
	batchID := batch.ID
	r := &run{
		p:       p,
		batchID: &batchID,
		today:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		report: &models.ImportReport{
			BatchID:       batch.ID,
			Filename:      batch.OriginalFilename,
			Source:        batch.Source,
			RowsSeen:      len(extraction.Records),
			UniqueVendors: extraction.UniqueVendors,
			Warnings:      append([]string(nil), extraction.Warnings...),
			Vendors:       extraction.Vendors,
			StartedAt:     now,
		},
		pendingMovements: make(map[uint64]*pendingMovement),
	}
	r.costings = newBatcher(p.batchSize, r.flushCostings, r.costingsFlushed)
	r.movements = newBatcher(p.batchSize, r.flushMovements, r.movementsFlushed)
	return r
}

// inTx runs fn as its own commit unit.
func (r *run) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.p.db.WithContext(ctx).Transaction(fn)
}

func (r *run) warn(row int, format string, args ...interface{}) {
	r.report.Warnings = append(r.report.Warnings, fmt.Sprintf("Row %d: ", row)+fmt.Sprintf(format, args...))
}

func (r *run) flushCostings(ctx context.Context, items []*pendingCosting) error {
	costings := make([]*models.Costing, len(items))
	for i, item := range items {
		costings[i] = item.costing
	}
	return r.inTx(ctx, func(tx *gorm.DB) error {
		return r.p.repos.Costings.CreateBatch(ctx, tx, costings)
	})
}

func (r *run) costingsFlushed(items []*pendingCosting, err error) {
	if err != nil {
		r.p.logger.Warn("costing batch failed", zap.Int("size", len(items)), zap.Error(err))
	}
	for _, item := range items {
		if err != nil {
			r.report.Costings.Record(models.RowResult{Row: item.row, Key: item.serial, Outcome: models.OutcomeError,
				Message: fmt.Sprintf("costing batch failed: %v", err)})
			continue
		}
		r.report.Costings.Record(models.RowResult{Row: item.row, Key: item.serial, Outcome: models.OutcomeCreated,
			Message: fmt.Sprintf("Costing %d created for ATM %s", item.costing.ID, item.serial)})
	}
}

func (r *run) flushMovements(ctx context.Context, items []*pendingMovement) error {
	movements := make([]*models.Movement, len(items))
	for i, item := range items {
		movements[i] = item.movement
	}
	return r.inTx(ctx, func(tx *gorm.DB) error {
		return r.p.repos.Movements.CreateBatch(ctx, tx, movements)
	})
}

func (r *run) movementsFlushed(items []*pendingMovement, err error) {
	if err != nil {
		r.p.logger.Warn("movement batch failed", zap.Int("size", len(items)), zap.Error(err))
	}
	for _, item := range items {
		delete(r.pendingMovements, item.movement.AssetID)
		if err != nil {
			r.report.Movements.Record(models.RowResult{Row: item.row, Key: item.serial, Outcome: models.OutcomeError,
				Message: fmt.Sprintf("movement batch failed: %v", err)})
			continue
		}
		r.report.Movements.Record(models.RowResult{Row: item.row, Key: item.serial, Outcome: models.OutcomeCreated,
			Message: fmt.Sprintf("Movement %s created for ATM %s", item.movement.TrackingNumber, item.serial)})
	}
}

// sameText compares two values trimmed and case-insensitively.
func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// matchesIfPresent treats an absent incoming value as matching, since a
// partial update would leave the stored value alone.
func matchesIfPresent(stored, incoming string) bool {
	return strings.TrimSpace(incoming) == "" || sameText(stored, incoming)
}

func nonEmpty(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

var dateLayouts = []string{
	"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006",
	"02.01.2006", "2006/01/02", "02-Jan-2006", "2-Jan-06", "02 Jan 2006", "Jan 2, 2006",
}

// parseDate reads the date formats seen in exports; day-first numeric dates
// win over month-first ones.
func parseDate(value string) (time.Time, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
