package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/assetflow/assetflow/internal/config"
	"github.com/assetflow/assetflow/internal/spreadsheet"
)

// Source supplies the configured logistics range as a sheet.
type Source interface {
	FetchGrid(ctx context.Context) (spreadsheet.Grid, error)
	// Name identifies the range in import batches and logs.
	Name() string
}

// GoogleSheetRepository reads the logistics tracker through the official
// Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed source.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    cfg.Range,
		logger:        logger,
	}, nil
}

func (r *GoogleSheetRepository) Name() string {
	return r.spreadsheetID + "/" + r.sheetRange
}

// FetchGrid reads the configured range, header row included. Numbers arrive
// unformatted and dates as their displayed text.
func (r *GoogleSheetRepository) FetchGrid(ctx context.Context) (spreadsheet.Grid, error) {
	if r.sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", r.sheetRange, err)
	}

	r.logger.Debug("sheet range fetched", zap.String("range", r.sheetRange), zap.Int("rows", len(resp.Values)))
	return ValuesToGrid(resp.Values), nil
}

// ValuesToGrid converts the loosely typed values of the Sheets API into
// cells.
func ValuesToGrid(values [][]interface{}) spreadsheet.Grid {
	grid := make(spreadsheet.Grid, len(values))
	for r, row := range values {
		grid[r] = make([]spreadsheet.Cell, len(row))
		for c, v := range row {
			grid[r][c] = toCell(v)
		}
	}
	return grid
}

func toCell(v interface{}) spreadsheet.Cell {
	switch value := v.(type) {
	case nil:
		return spreadsheet.Cell{}
	case string:
		if value == "" {
			return spreadsheet.Cell{}
		}
		return spreadsheet.Text(value)
	case float64:
		return spreadsheet.Number(value)
	case int:
		return spreadsheet.Number(float64(value))
	case int64:
		return spreadsheet.Number(float64(value))
	case bool:
		return spreadsheet.Cell{Kind: spreadsheet.CellBool, Bool: value}
	default:
		return spreadsheet.Text(fmt.Sprint(value))
	}
}
