package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/domain/models"
	"github.com/assetflow/assetflow/internal/repository/relational"
	"github.com/assetflow/assetflow/internal/repository/relational/relationaltest"
	"github.com/assetflow/assetflow/internal/spreadsheet"
)

var testDay = time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

func sheetOf(rows ...map[string]string) spreadsheet.Grid {
	lines := [][]string{spreadsheet.TemplateHeaders}
	for _, values := range rows {
		line := make([]string, len(spreadsheet.TemplateHeaders))
		for i, h := range spreadsheet.TemplateHeaders {
			line[i] = values[h]
		}
		lines = append(lines, line)
	}
	return spreadsheet.TextGrid(lines)
}

func acmeRow() map[string]string {
	return map[string]string{
		"ATM BNA ID":       "A1",
		"Vendor Name":      "Acme",
		"Total Cost":       "100",
		"From Location":    "Mumbai",
		"To Location":      "Pune",
		"Type of Movement": "Relocation",
	}
}

func repositories() Repositories {
	r := relational.NewRepositories()
	return Repositories{Vendors: r.Vendors, Assets: r.Assets, Movements: r.Movements, Costings: r.Costings}
}

func newTestPipeline(db *gorm.DB, repos Repositories, batchSize int) *Pipeline {
	return NewPipeline(db, repos, nil, batchSize, nil,
		WithClock(func() time.Time { return testDay }),
		WithEmailSuffix(func() string { return "deadbeef" }),
	)
}

func runSheet(t *testing.T, db *gorm.DB, p *Pipeline, filename string, sheet spreadsheet.Sheet) *models.ImportReport {
	t.Helper()
	batch := relationaltest.Batch(t, db, filename)
	report, err := p.Run(context.Background(), batch, sheet)
	require.NoError(t, err)
	return report
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestRunCreatesEveryEntity(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	report := runSheet(t, db, p, "first.xlsx", sheetOf(acmeRow()))

	assert.Equal(t, 1, report.RowsSeen)
	assert.Equal(t, 1, report.VendorsCreated)
	assert.Equal(t, 1, report.Assets.Created)
	assert.Equal(t, 1, report.Movements.Created)
	assert.Equal(t, 1, report.Costings.Created)
	assert.Equal(t, 1, report.Assets.TotalProcessed)

	var asset models.Asset
	require.NoError(t, db.First(&asset, "serial_number = ?", "A1").Error)
	assert.Equal(t, "ATM-A1", asset.Name)
	assert.Equal(t, "Mumbai", asset.Location)
	assert.Equal(t, "Unknown", asset.AssetStatus)
	assert.Equal(t, "N/A", asset.BillingMonth)
	assert.Equal(t, "PENDING", asset.BillingStatus)
	assert.True(t, asset.Value.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, report.BatchID, *asset.ImportBatchID)

	var vendor models.Vendor
	require.NoError(t, db.First(&vendor, *asset.VendorID).Error)
	assert.Equal(t, "Acme", vendor.Name)
	assert.Equal(t, "acme-deadbeef@vendor.com", *vendor.Email)
	assert.Equal(t, models.VendorActive, vendor.Status)
	assert.Equal(t, 1, vendor.AssetsAllocated)
	assert.True(t, vendor.TotalCost.Equal(decimal.NewFromInt(100)))

	var movement models.Movement
	require.NoError(t, db.First(&movement, "asset_id = ?", asset.ID).Error)
	assert.Equal(t, models.MovementPending, movement.Status)
	assert.Equal(t, "Relocation", movement.MovementType)
	assert.Equal(t, "Pune", movement.ToLocation)
	assert.Equal(t, "System", movement.InitiatedBy)
	assert.Regexp(t, `^TRK-[0-9A-F]{8}$`, movement.TrackingNumber)
	require.NotNil(t, movement.ExpectedDelivery)
	assert.Equal(t, "2025-03-17", movement.ExpectedDelivery.Format("2006-01-02"))

	var costing models.Costing
	require.NoError(t, db.First(&costing, "asset_id = ?", asset.ID).Error)
	assert.Equal(t, models.CostingPending, costing.Status)
	assert.Equal(t, "system", costing.SubmittedBy)
	assert.True(t, costing.TotalCost.Equal(decimal.NewFromInt(100)))
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	runSheet(t, db, p, "first.xlsx", sheetOf(acmeRow()))
	report := runSheet(t, db, p, "again.xlsx", sheetOf(acmeRow()))

	assert.Zero(t, report.VendorsCreated)
	assert.Equal(t, 1, report.Assets.Skipped)
	assert.Equal(t, 1, report.Movements.Skipped)
	assert.Zero(t, report.Costings.TotalProcessed)
	require.Len(t, report.Assets.Details, 1)
	assert.Equal(t, models.OutcomeDuplicate, report.Assets.Details[0].Outcome)

	assert.EqualValues(t, 1, count(t, db, &models.Vendor{}))
	assert.EqualValues(t, 1, count(t, db, &models.Asset{}))
	assert.EqualValues(t, 1, count(t, db, &models.Movement{}))
	assert.EqualValues(t, 1, count(t, db, &models.Costing{}))
}

func TestRunUpdatesChangedCost(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	runSheet(t, db, p, "first.xlsx", sheetOf(acmeRow()))
	changed := acmeRow()
	changed["Total Cost"] = "150"
	report := runSheet(t, db, p, "changed.xlsx", sheetOf(changed))

	assert.Equal(t, 1, report.Assets.Updated)
	assert.Equal(t, 1, report.Movements.Skipped)
	assert.Zero(t, report.Costings.TotalProcessed)

	var asset models.Asset
	require.NoError(t, db.First(&asset, "serial_number = ?", "A1").Error)
	assert.True(t, asset.TotalAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, asset.Value.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "Mumbai", asset.Location)

	var vendor models.Vendor
	require.NoError(t, db.First(&vendor, *asset.VendorID).Error)
	assert.Equal(t, 1, vendor.AssetsAllocated)
	assert.True(t, vendor.TotalCost.Equal(decimal.NewFromInt(150)), vendor.TotalCost.String())
}

func TestRunUpdateRecomputesVendorFromPerAssetCost(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	first := acmeRow()
	delete(first, "Total Cost")
	first["Per Asset Cost"] = "40"
	runSheet(t, db, p, "first.xlsx", sheetOf(first))

	changed := acmeRow()
	delete(changed, "Total Cost")
	changed["Per Asset Cost"] = "60"
	changed["From Location"] = "Thane"
	report := runSheet(t, db, p, "changed.xlsx", sheetOf(changed))
	assert.Equal(t, 1, report.Assets.Updated)

	var asset models.Asset
	require.NoError(t, db.First(&asset, "serial_number = ?", "A1").Error)
	assert.True(t, asset.TotalAmount.IsZero())
	assert.True(t, asset.Value.Equal(decimal.NewFromInt(60)), asset.Value.String())

	var vendor models.Vendor
	require.NoError(t, db.First(&vendor, *asset.VendorID).Error)
	assert.Equal(t, 1, vendor.AssetsAllocated)
	assert.True(t, vendor.TotalCost.Equal(decimal.NewFromInt(60)), vendor.TotalCost.String())
}

func TestRunSparseRowDoesNotUpdate(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	runSheet(t, db, p, "first.xlsx", sheetOf(acmeRow()))
	report := runSheet(t, db, p, "sparse.xlsx", sheetOf(map[string]string{
		"ATM BNA ID":       "a1",
		"Vendor Name":      "ACME",
		"From Location":    "mumbai",
		"To Location":      "Pune",
		"Type of Movement": "relocation",
	}))

	assert.Equal(t, 1, report.Assets.Skipped)
	assert.Equal(t, 1, report.Movements.Skipped)
}

func TestRunReassignsVendor(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	runSheet(t, db, p, "first.xlsx", sheetOf(acmeRow()))
	moved := acmeRow()
	moved["Vendor Name"] = "Beta"
	report := runSheet(t, db, p, "moved.xlsx", sheetOf(moved))
	assert.Equal(t, 1, report.Assets.Updated)
	assert.Equal(t, 1, report.VendorsCreated)

	var acme, beta models.Vendor
	require.NoError(t, db.First(&acme, "name = ?", "Acme").Error)
	require.NoError(t, db.First(&beta, "name = ?", "Beta").Error)
	assert.Zero(t, acme.AssetsAllocated)
	assert.True(t, acme.TotalCost.IsZero())
	assert.Equal(t, 1, beta.AssetsAllocated)
	assert.True(t, beta.TotalCost.Equal(decimal.NewFromInt(100)))
}

func TestRunSkipsRowWithoutSerial(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	row := acmeRow()
	delete(row, "ATM BNA ID")
	report := runSheet(t, db, p, "noserial.xlsx", sheetOf(row))

	require.Len(t, report.Assets.Details, 1)
	assert.Equal(t, models.OutcomeMissingField, report.Assets.Details[0].Outcome)
	assert.Equal(t, "missing ATM BNA ID", report.Assets.Details[0].Message)
	assert.Equal(t, 1, report.Assets.TotalProcessed)
	assert.Equal(t, 1, report.Movements.Skipped)
	assert.Zero(t, report.VendorsCreated)
	assert.EqualValues(t, 0, count(t, db, &models.Asset{}))
}

func TestRunQueuesOneMovementPerAsset(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	second := acmeRow()
	second["To Location"] = "Delhi"
	report := runSheet(t, db, p, "twice.xlsx", sheetOf(acmeRow(), second))

	assert.Equal(t, 1, report.Assets.Created)
	assert.Equal(t, 1, report.Assets.Skipped)
	assert.Equal(t, 1, report.Movements.Created)
	assert.Equal(t, 1, report.Movements.Updated)

	var movements []models.Movement
	require.NoError(t, db.Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, "Delhi", movements[0].ToLocation)
}

func TestRunFlushesInBatches(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 2)

	rows := make([]map[string]string, 0, 3)
	for _, serial := range []string{"A1", "A2", "A3"} {
		row := acmeRow()
		row["ATM BNA ID"] = serial
		rows = append(rows, row)
	}
	report := runSheet(t, db, p, "three.xlsx", sheetOf(rows...))

	assert.Equal(t, 3, report.Movements.Created)
	assert.Equal(t, 3, report.Costings.Created)
	assert.EqualValues(t, 3, count(t, db, &models.Costing{}))

	var vendor models.Vendor
	require.NoError(t, db.First(&vendor, "name = ?", "Acme").Error)
	assert.Equal(t, 3, vendor.AssetsAllocated)
	assert.True(t, vendor.TotalCost.Equal(decimal.NewFromInt(300)))
}

type failingCostings struct {
	models.CostingRepository
}

func (failingCostings) CreateBatch(context.Context, *gorm.DB, []*models.Costing) error {
	return errors.New("disk full")
}

func TestRunReportsFailedCostingFlush(t *testing.T) {
	db := relationaltest.Open(t)
	repos := repositories()
	repos.Costings = failingCostings{repos.Costings}
	p := newTestPipeline(db, repos, 50)

	report := runSheet(t, db, p, "first.xlsx", sheetOf(acmeRow()))

	assert.Equal(t, 1, report.Assets.Created)
	assert.Equal(t, 1, report.Movements.Created)
	assert.Equal(t, 1, report.Costings.Errors)
	require.Len(t, report.Costings.Details, 1)
	assert.Contains(t, report.Costings.Details[0].Message, "disk full")
	assert.EqualValues(t, 0, count(t, db, &models.Costing{}))
}

func TestRunKeepsDiscoveredEmail(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	first := acmeRow()
	first["Remarks"] = "contact Ops@Acme.test;"
	second := acmeRow()
	second["ATM BNA ID"] = "B1"
	second["Vendor Name"] = "Acme South"
	second["Remarks"] = "ops@acme.test"
	runSheet(t, db, p, "emails.xlsx", sheetOf(first, second))

	var acme, south models.Vendor
	require.NoError(t, db.First(&acme, "name = ?", "Acme").Error)
	require.NoError(t, db.First(&south, "name = ?", "Acme South").Error)
	assert.Equal(t, "ops@acme.test", *acme.Email)
	assert.Equal(t, "acme-south-deadbeef@vendor.com", *south.Email)
}

func TestRunRejectsUnsavedBatch(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)

	_, err := p.Run(context.Background(), &models.ImportBatch{}, sheetOf(acmeRow()))
	assert.Error(t, err)
}

func TestRunReturnsStructuralErrors(t *testing.T) {
	db := relationaltest.Open(t)
	p := newTestPipeline(db, repositories(), 50)
	batch := relationaltest.Batch(t, db, "empty.xlsx")

	_, err := p.Run(context.Background(), batch, spreadsheet.Grid{})
	assert.ErrorIs(t, err, spreadsheet.ErrEmptySheet)
}

func TestPlaceholderEmail(t *testing.T) {
	assert.Equal(t, "acme-logistics-12345678@vendor.com", placeholderEmail("Acme Logistics!", "12345678"))
	assert.Equal(t, "vendor-12345678@vendor.com", placeholderEmail("", "12345678"))

	long := placeholderEmail("Very Long Vendor Name For Regional Freight Services", "12345678")
	assert.Equal(t, "very-long-vendor-name-for-regi-12345678@vendor.com", long)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "2025-03-01", want: "2025-03-01", ok: true},
		{in: "01/03/2025", want: "2025-03-01", ok: true},
		{in: "1-3-2025", want: "2025-03-01", ok: true},
		{in: "01-Mar-2025", want: "2025-03-01", ok: true},
		{in: "soon", ok: false},
		{in: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := parseDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got.Format("2006-01-02"), tt.in)
		}
	}
}

func TestBatcherFlushesAtSize(t *testing.T) {
	var flushed [][]int
	b := newBatcher(2,
		func(_ context.Context, items []int) error { return nil },
		func(items []int, err error) { flushed = append(flushed, items) },
	)
	ctx := context.Background()
	b.Add(ctx, 1)
	b.Add(ctx, 2)
	b.Add(ctx, 3)
	assert.Equal(t, [][]int{{1, 2}}, flushed)
	b.Flush(ctx)
	b.Flush(ctx)
	assert.Equal(t, [][]int{{1, 2}, {3}}, flushed)
}
