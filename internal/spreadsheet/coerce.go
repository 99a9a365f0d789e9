package spreadsheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DateStyle selects how date-formatted numeric cells render as text.
type DateStyle int

const (
	// DateISO renders 2006-01-02.
	DateISO DateStyle = iota
	// DateMonth renders Jan-06, used for provision and billing months.
	DateMonth
)

const (
	isoLayout   = "2006-01-02"
	monthLayout = "Jan-06"
)

var (
	currencyAbbrev = regexp.MustCompile(`\p{L}+\.`)
	nonNumeric     = regexp.MustCompile(`[^0-9.,()\-]`)
	monthSeparator = strings.NewReplacer("'", "-", "_", "-")
)

// String coerces c to trimmed text. The second result is false when the cell
// is blank or holds nothing usable.
func String(c Cell, style DateStyle) (string, bool) {
	var out string
	switch c.Kind {
	case CellString:
		out = strings.TrimSpace(c.Text)
	case CellNumber:
		if c.DateFormatted {
			if c.Date.IsZero() {
				return "", false
			}
			if style == DateMonth {
				return c.Date.Format(monthLayout), true
			}
			return c.Date.Format(isoLayout), true
		}
		out = formatNumber(c.Number)
	case CellBool:
		out = strconv.FormatBool(c.Bool)
	case CellFormula:
		out = strings.TrimSpace(c.CachedText)
		if out == "" && c.HasCachedNumber {
			out = formatNumber(c.CachedNumber)
		}
	}
	return out, out != ""
}

// Integer coerces c to a whole number.
func Integer(c Cell) (int64, bool) {
	switch c.Kind {
	case CellNumber:
		if c.DateFormatted {
			return 0, false
		}
		return wholeNumber(c.Number)
	case CellFormula:
		if c.HasCachedNumber {
			return wholeNumber(c.CachedNumber)
		}
		return parseInteger(c.CachedText)
	case CellString:
		return parseInteger(c.Text)
	}
	return 0, false
}

// Decimal coerces c to a decimal amount.
func Decimal(c Cell) (decimal.Decimal, bool) {
	switch c.Kind {
	case CellNumber:
		if c.DateFormatted || math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(c.Number), true
	case CellFormula:
		if c.HasCachedNumber {
			return decimal.NewFromFloat(c.CachedNumber), true
		}
		return ParseDecimal(c.CachedText)
	case CellString:
		return ParseDecimal(c.Text)
	}
	return decimal.Decimal{}, false
}

// ParseDecimal reads an amount typed as text. Currency symbols and grouping
// separators are dropped, "(x)" is negative, and a single comma followed by
// one or two digits is a decimal comma.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, false
	}
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")

	s = currencyAbbrev.ReplaceAllString(s, "")
	s = nonNumeric.ReplaceAllString(s, "")
	s = strings.NewReplacer("(", "", ")", "").Replace(s)

	lastComma, lastDot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0 && lastDot < 0 && strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 && len(s)-lastComma-1 > 0:
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative && d.IsPositive() {
		d = d.Neg()
	}
	return d, true
}

// NormalizeMonth rewrites month text such as Jan'25 or Jan_25 to Jan-25.
func NormalizeMonth(s string) string {
	return monthSeparator.Replace(s)
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func wholeNumber(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	return int64(v), true
}

func parseInteger(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return wholeNumber(f)
	}
	return 0, false
}
