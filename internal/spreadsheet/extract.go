package spreadsheet

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/assetflow/assetflow/internal/domain/models"
)

// UnknownVendor stands in for rows that do not name a vendor.
const UnknownVendor = "Unknown"

var (
	emailPattern      = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	trailingEmailJunk = regexp.MustCompile(`[,;:()\[\]{}]+$`)
)

// Extraction is the parsed content of one sheet.
type Extraction struct {
	Records       []models.ImportRecord
	Warnings      []string
	UniqueVendors int
	Vendors       []models.VendorRows
}

// Extractor turns sheet rows into ImportRecords.
type Extractor struct {
	layout Layout
	logger *zap.Logger
}

// NewExtractor builds an extractor for layout. A nil layout uses
// DefaultLayout.
func NewExtractor(layout Layout, logger *zap.Logger) *Extractor {
	if layout == nil {
		layout = DefaultLayout()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{layout: layout, logger: logger}
}

type boundField struct {
	column int
	assign assignFunc
}

// Extract reads every row below the header. Blank rows are skipped without
// trace; rows that fail become warnings and the scan carries on.
func (e *Extractor) Extract(sheet Sheet) (*Extraction, error) {
	if sheet == nil || sheet.LastRow() < 1 {
		return nil, ErrEmptySheet
	}

	cols := NewColumns(sheet)
	fields := make([]boundField, 0, len(e.layout))
	for _, f := range e.layout {
		assign, ok := assigners[f.Key]
		if !ok {
			continue
		}
		fields = append(fields, boundField{column: cols.Resolve(f), assign: assign})
	}

	out := &Extraction{}
	vendors := make(map[string]*models.VendorRows)
	var order []string

	for row := 1; row <= sheet.LastRow(); row++ {
		rowNumber := row + 1

		rec, blank, err := extractRow(sheet, row, fields)
		if blank {
			continue
		}
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("Row %d: %v", rowNumber, err))
			e.logger.Warn("row extraction failed", zap.Int("row", rowNumber), zap.Error(err))
			continue
		}
		rec.Row = rowNumber

		if rec.VendorName == "" {
			rec.VendorName = UnknownVendor
			out.Warnings = append(out.Warnings, fmt.Sprintf("Row %d: vendor name is missing, using %q", rowNumber, UnknownVendor))
		}

		key := strings.ToLower(rec.VendorName)
		stats, ok := vendors[key]
		if !ok {
			stats = &models.VendorRows{Name: rec.VendorName}
			vendors[key] = stats
			order = append(order, key)
		}
		stats.RowCount++
		stats.Rows = append(stats.Rows, rowNumber)

		out.Records = append(out.Records, rec)
	}

	if len(out.Records) == 0 && len(out.Warnings) == 0 {
		return nil, ErrEmptySheet
	}

	out.UniqueVendors = len(vendors)
	for _, key := range order {
		out.Vendors = append(out.Vendors, *vendors[key])
	}
	sort.SliceStable(out.Vendors, func(i, j int) bool {
		return out.Vendors[i].RowCount > out.Vendors[j].RowCount
	})

	e.logger.Debug("sheet extracted",
		zap.Int("records", len(out.Records)),
		zap.Int("warnings", len(out.Warnings)),
		zap.Int("unique_vendors", out.UniqueVendors),
	)
	return out, nil
}

func extractRow(sheet Sheet, row int, fields []boundField) (rec models.ImportRecord, blank bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("could not read row: %v", r)
		}
	}()

	if isBlankRow(sheet, row) {
		return rec, true, nil
	}
	for _, f := range fields {
		if f.column < 0 || f.column > sheet.LastCol(row) {
			continue
		}
		f.assign(&rec, sheet.Cell(row, f.column))
	}
	rec.VendorEmail = findEmail(sheet, row)
	return rec, false, nil
}

func isBlankRow(sheet Sheet, row int) bool {
	for c := 0; c <= sheet.LastCol(row); c++ {
		if _, ok := String(sheet.Cell(row, c), DateISO); ok {
			return false
		}
	}
	return true
}

// findEmail returns the first email address found anywhere in the row,
// lowercased.
func findEmail(sheet Sheet, row int) string {
	for c := 0; c <= sheet.LastCol(row); c++ {
		value, ok := String(sheet.Cell(row, c), DateISO)
		if !ok {
			continue
		}
		if email, ok := matchEmail(value); ok {
			return email
		}
		for _, token := range strings.Fields(value) {
			if email, ok := matchEmail(token); ok {
				return email
			}
		}
	}
	return ""
}

func matchEmail(candidate string) (string, bool) {
	cleaned := trailingEmailJunk.ReplaceAllString(strings.TrimSpace(candidate), "")
	if cleaned == "" || !emailPattern.MatchString(cleaned) {
		return "", false
	}
	return strings.ToLower(cleaned), true
}

type assignFunc func(rec *models.ImportRecord, cell Cell)

func text(set func(*models.ImportRecord, string)) assignFunc {
	return func(rec *models.ImportRecord, cell Cell) {
		if v, ok := String(cell, DateISO); ok {
			set(rec, v)
		}
	}
}

func month(set func(*models.ImportRecord, string)) assignFunc {
	return func(rec *models.ImportRecord, cell Cell) {
		if v, ok := String(cell, DateMonth); ok {
			set(rec, NormalizeMonth(v))
		}
	}
}

func amount(set func(*models.ImportRecord, decimal.NullDecimal)) assignFunc {
	return func(rec *models.ImportRecord, cell Cell) {
		if v, ok := Decimal(cell); ok {
			set(rec, decimal.NullDecimal{Decimal: v, Valid: true})
		}
	}
}

var assigners = map[FieldKey]assignFunc{
	FieldSerialNo: func(rec *models.ImportRecord, cell Cell) {
		if n, ok := Integer(cell); ok {
			rec.SerialNo = fmt.Sprint(n)
			return
		}
		if v, ok := String(cell, DateISO); ok {
			rec.SerialNo = v
		}
	},
	FieldProvisionMonth:             month(func(r *models.ImportRecord, v string) { r.ProvisionMonth = v }),
	FieldAssetSerial:                text(func(r *models.ImportRecord, v string) { r.AssetSerial = v }),
	FieldDocketNo:                   text(func(r *models.ImportRecord, v string) { r.DocketNo = v }),
	FieldBankName:                   text(func(r *models.ImportRecord, v string) { r.BankName = v }),
	FieldFromLocation:               text(func(r *models.ImportRecord, v string) { r.FromLocation = v }),
	FieldFromState:                  text(func(r *models.ImportRecord, v string) { r.FromState = v }),
	FieldToLocation:                 text(func(r *models.ImportRecord, v string) { r.ToLocation = v }),
	FieldToState:                    text(func(r *models.ImportRecord, v string) { r.ToState = v }),
	FieldBusinessGroup:              text(func(r *models.ImportRecord, v string) { r.BusinessGroup = v }),
	FieldModeOfBill:                 text(func(r *models.ImportRecord, v string) { r.ModeOfBill = v }),
	FieldMovementType:               text(func(r *models.ImportRecord, v string) { r.MovementType = v }),
	FieldDescription:                text(func(r *models.ImportRecord, v string) { r.Description = v }),
	FieldTotalCost:                  amount(func(r *models.ImportRecord, v decimal.NullDecimal) { r.TotalCost = v }),
	FieldHold:                       amount(func(r *models.ImportRecord, v decimal.NullDecimal) { r.Hold = v }),
	FieldDeduction:                  amount(func(r *models.ImportRecord, v decimal.NullDecimal) { r.Deduction = v }),
	FieldFinalAmount:                amount(func(r *models.ImportRecord, v decimal.NullDecimal) { r.FinalAmount = v }),
	FieldPerAssetCost:               amount(func(r *models.ImportRecord, v decimal.NullDecimal) { r.PerAssetCost = v }),
	FieldAssetsDeliveryPending:      text(func(r *models.ImportRecord, v string) { r.AssetsDeliveryPending = v }),
	FieldReasonForAdditionalCharges: text(func(r *models.ImportRecord, v string) { r.ReasonForAdditionalCharges = v }),
	FieldPickupDate:                 text(func(r *models.ImportRecord, v string) { r.PickupDate = v }),
	FieldStatus:                     text(func(r *models.ImportRecord, v string) { r.Status = v }),
	FieldDate:                       text(func(r *models.ImportRecord, v string) { r.Date = v }),
	FieldVendorName:                 text(func(r *models.ImportRecord, v string) { r.VendorName = v }),
	FieldFreightCategory:            text(func(r *models.ImportRecord, v string) { r.FreightCategory = v }),
	FieldProject:                    text(func(r *models.ImportRecord, v string) { r.Project = v }),
	FieldInvoiceNo:                  text(func(r *models.ImportRecord, v string) { r.InvoiceNo = v }),
	FieldBillingMonth:               month(func(r *models.ImportRecord, v string) { r.BillingMonth = v }),
	FieldBillingStatus:              text(func(r *models.ImportRecord, v string) { r.BillingStatus = v }),
	FieldDeliveryDate:               text(func(r *models.ImportRecord, v string) { r.DeliveryDate = v }),
	FieldAmountReceived:             text(func(r *models.ImportRecord, v string) { r.AmountReceived = v }),
}
