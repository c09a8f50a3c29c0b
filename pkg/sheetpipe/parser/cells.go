package parser

import (
	"strconv"

	"github.com/xuri/excelize/v2"
)

// CellName returns the A1 address of a 0-based position.
func CellName(row, col int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return ""
	}
	return name
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, nil for "", or the
// original string.
func parseValue(s string) any {
	if s == "" {
		return nil
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// parseNumber parses a stored numeric cell. Integral values become int64.
func parseNumber(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if f == float64(int64(f)) && f >= -(1<<53) && f <= 1<<53 {
		return int64(f), nil
	}
	return f, nil
}
