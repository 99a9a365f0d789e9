package spreadsheet

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	quotedLiteral  = regexp.MustCompile(`"[^"]*"`)
	bracketSection = regexp.MustCompile(`\[[^\]]*\]`)
	escapedChar    = regexp.MustCompile(`\\.`)
	dateTokens     = regexp.MustCompile(`[dmyhs]`)
)

var isoCellLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// DecodeXLSX reads the first worksheet of an .xlsx workbook into a Grid.
func DecodeXLSX(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadableWorkbook)
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %w", ErrUnreadableWorkbook, name, err)
	}

	d := &xlsxDecoder{file: f, sheet: name, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}

	grid := make(Grid, len(rows))
	for r, row := range rows {
		grid[r] = make([]Cell, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			cell, err := d.cell(r, c, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnreadableWorkbook, err)
			}
			grid[r][c] = cell
		}
	}
	return grid, nil
}

type xlsxDecoder struct {
	file       *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (d *xlsxDecoder) cell(row, col int, raw string) (Cell, error) {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Cell{}, err
	}
	typ, err := d.file.GetCellType(d.sheet, axis)
	if err != nil {
		return Cell{}, fmt.Errorf("cell %s type: %w", axis, err)
	}

	formula, _ := d.file.GetCellFormula(d.sheet, axis)
	if formula != "" {
		cell := Cell{Kind: CellFormula}
		if v, err := strconv.ParseFloat(raw, 64); err == nil && typ != excelize.CellTypeFormula {
			cell.CachedNumber, cell.HasCachedNumber = v, true
		} else {
			cell.CachedText = raw
		}
		return cell, nil
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return Text(raw), nil
	case excelize.CellTypeBool:
		return Cell{Kind: CellBool, Bool: raw == "1" || strings.EqualFold(raw, "true")}, nil
	case excelize.CellTypeError:
		return Cell{}, nil
	case excelize.CellTypeDate:
		for _, layout := range isoCellLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return DateCell(t), nil
			}
		}
		return Text(raw), nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Text(raw), nil
	}
	if d.isDateStyled(axis) {
		if t, err := excelize.ExcelDateToTime(v, d.date1904); err == nil {
			cell := DateCell(t)
			cell.Number = v
			return cell, nil
		}
	}
	return Number(v), nil
}

func (d *xlsxDecoder) isDateStyled(axis string) bool {
	id, err := d.file.GetCellStyle(d.sheet, axis)
	if err != nil || id == 0 {
		return false
	}
	if known, ok := d.dateStyles[id]; ok {
		return known
	}
	isDate := false
	if style, err := d.file.GetStyle(id); err == nil && style != nil {
		isDate = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	d.dateStyles[id] = isDate
	return isDate
}

// isDateFormat reports whether a number format displays a date or time. It
// covers the built-in date formats and custom codes carrying date tokens
// outside quoted literals and bracketed sections.
func isDateFormat(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		code := strings.ToLower(*custom)
		code = quotedLiteral.ReplaceAllString(code, "")
		code = bracketSection.ReplaceAllString(code, "")
		code = escapedChar.ReplaceAllString(code, "")
		return dateTokens.MatchString(code)
	}
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	return false
}
