package spreadsheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStringCoercion(t *testing.T) {
	jan := time.Date(2006, time.January, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		cell  Cell
		style DateStyle
		want  string
		ok    bool
	}{
		{name: "blank", cell: Cell{}, ok: false},
		{name: "whitespace text", cell: Text("   "), ok: false},
		{name: "trimmed text", cell: Text("  Mumbai "), want: "Mumbai", ok: true},
		{name: "integral number", cell: Number(1234), want: "1234", ok: true},
		{name: "fractional number", cell: Number(12.5), want: "12.5", ok: true},
		{name: "iso date", cell: DateCell(jan), want: "2006-01-15", ok: true},
		{name: "month date", cell: DateCell(jan), style: DateMonth, want: "Jan-06", ok: true},
		{name: "bool", cell: Cell{Kind: CellBool, Bool: true}, want: "true", ok: true},
		{name: "formula cached text", cell: Cell{Kind: CellFormula, CachedText: " Pune ", CachedNumber: 1, HasCachedNumber: true}, want: "Pune", ok: true},
		{name: "formula cached number", cell: Cell{Kind: CellFormula, CachedNumber: 300, HasCachedNumber: true}, want: "300", ok: true},
		{name: "formula without cache", cell: Cell{Kind: CellFormula}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := String(tt.cell, tt.style)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "1500", want: "1500", ok: true},
		{in: "₹ 1,500", want: "1500", ok: true},
		{in: "Rs. 1,000", want: "1000", ok: true},
		{in: "1,23,456.75", want: "123456.75", ok: true},
		{in: "1.234,56", want: "1234.56", ok: true},
		{in: "12,5", want: "12.5", ok: true},
		{in: "(250)", want: "-250", ok: true},
		{in: "-40", want: "-40", ok: true},
		{in: "N/A", ok: false},
		{in: "", ok: false},
		{in: "-", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDecimal(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestDecimalCoercion(t *testing.T) {
	d, ok := Decimal(Number(99.5))
	assert.True(t, ok)
	assert.Equal(t, "99.5", d.String())

	_, ok = Decimal(DateCell(time.Now()))
	assert.False(t, ok)

	d, ok = Decimal(Cell{Kind: CellFormula, CachedNumber: 10, HasCachedNumber: true})
	assert.True(t, ok)
	assert.Equal(t, "10", d.String())
}

func TestIntegerCoercion(t *testing.T) {
	n, ok := Integer(Number(7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	n, ok = Integer(Text(" 12 "))
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)

	_, ok = Integer(Number(7.25))
	assert.False(t, ok)

	_, ok = Integer(Text("seven"))
	assert.False(t, ok)
}

func TestNormalizeMonth(t *testing.T) {
	assert.Equal(t, "Jan-25", NormalizeMonth("Jan'25"))
	assert.Equal(t, "Jan-25", NormalizeMonth("Jan_25"))
	assert.Equal(t, "Jan-25", NormalizeMonth("Jan-25"))
}
