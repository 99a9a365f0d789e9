package spreadsheet

import (
	"strings"
	"unicode"
)

// NormalizeHeader lowercases h and drops everything that is not a letter or
// digit, so "Pick Up Date" and "Pickup-Date" both become "pickupdate".
func NormalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Columns maps normalized header names to column indices.
type Columns struct {
	index   map[string]int
	ordered []string
}

// NewColumns reads the header row of sheet. When a header repeats, the first
// occurrence wins.
func NewColumns(sheet Sheet) *Columns {
	cols := &Columns{index: make(map[string]int)}
	last := sheet.LastCol(0)
	cols.ordered = make([]string, last+1)
	for c := 0; c <= last; c++ {
		raw, ok := String(sheet.Cell(0, c), DateISO)
		if !ok {
			continue
		}
		key := NormalizeHeader(raw)
		if key == "" {
			continue
		}
		cols.ordered[c] = key
		if _, seen := cols.index[key]; !seen {
			cols.index[key] = c
		}
	}
	return cols
}

// Exact returns the column whose normalized header equals one of keys, trying
// keys in order.
func (c *Columns) Exact(keys ...string) (int, bool) {
	for _, key := range keys {
		if idx, ok := c.index[key]; ok {
			return idx, true
		}
	}
	return 0, false
}

// Prefix returns the first column whose normalized header starts with prefix
// and does not start with any of the excluded prefixes.
func (c *Columns) Prefix(prefix string, exclude ...string) (int, bool) {
	for idx, key := range c.ordered {
		if key == "" || !strings.HasPrefix(key, prefix) {
			continue
		}
		if hasAnyPrefix(key, exclude) {
			continue
		}
		return idx, true
	}
	return 0, false
}

// Resolve locates field by exact name, then by prefix, then falls back to its
// positional index.
func (c *Columns) Resolve(field Field) int {
	if idx, ok := c.Exact(field.Exact...); ok {
		return idx
	}
	for _, prefix := range field.Prefixes {
		if idx, ok := c.Prefix(prefix, field.Exclude...); ok {
			return idx
		}
	}
	return field.Fallback
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
