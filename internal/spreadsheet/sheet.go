package spreadsheet

import (
	"errors"
	"time"
)

var (
	// ErrUnreadableWorkbook wraps any failure to open or read a workbook.
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
	// ErrEmptySheet is returned when a sheet has no data rows under its header.
	ErrEmptySheet = errors.New("sheet has no data rows")
)

// CellKind is the stored type of a cell.
type CellKind int

const (
	CellBlank CellKind = iota
	CellString
	CellNumber
	CellBool
	CellFormula
)

// Cell is a decoded spreadsheet cell. Number cells flagged DateFormatted carry
// the calendar value in Date. Formula cells carry their cached result.
type Cell struct {
	Kind          CellKind
	Text          string
	Number        float64
	Bool          bool
	DateFormatted bool
	Date          time.Time

	CachedText      string
	CachedNumber    float64
	HasCachedNumber bool
}

// Text returns a string cell.
func Text(s string) Cell { return Cell{Kind: CellString, Text: s} }

// Number returns a plain numeric cell.
func Number(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

// DateCell returns a numeric cell with a date number format.
func DateCell(t time.Time) Cell { return Cell{Kind: CellNumber, DateFormatted: true, Date: t} }

// Sheet is a row and column addressable grid. Indices are zero based and
// out-of-range lookups return a blank cell.
type Sheet interface {
	Cell(row, col int) Cell
	// LastRow is the index of the last row, or -1 for an empty sheet.
	LastRow() int
	// LastCol is the index of the last column of row, or -1 when it is empty.
	LastCol(row int) int
}

// Grid is an in-memory Sheet.
type Grid [][]Cell

// Cell implements Sheet.
func (g Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return Cell{}
	}
	return g[row][col]
}

// LastRow implements Sheet.
func (g Grid) LastRow() int { return len(g) - 1 }

// LastCol implements Sheet.
func (g Grid) LastCol(row int) int {
	if row < 0 || row >= len(g) {
		return -1
	}
	return len(g[row]) - 1
}

// TextGrid builds a Grid of string cells, leaving empty strings blank.
func TextGrid(rows [][]string) Grid {
	grid := make(Grid, len(rows))
	for r, row := range rows {
		grid[r] = make([]Cell, len(row))
		for c, value := range row {
			if value != "" {
				grid[r][c] = Text(value)
			}
		}
	}
	return grid
}
