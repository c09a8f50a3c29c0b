package models

import (
	"encoding/json"
	"time"
)

// Cell is the payload of a "c" record.
type Cell struct {
	// R is the row index (0-based).
	R int `json:"r"`
	// C is the column index (0-based).
	C int `json:"c"`
	// A is the cell address in A1 notation.
	A string `json:"a"`
	// V is the cell value: nil, float64, int64, string, bool, DateValue or ErrorValue.
	V any `json:"v"`
}

// DateValue is a date cell. It is encoded as
// ["date", year, month, day, hour, minute, second].
type DateValue struct {
	Time time.Time
}

// MarshalJSON implements json.Marshaler.
func (d DateValue) MarshalJSON() ([]byte, error) {
	t := d.Time
	return json.Marshal([]any{"date", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()})
}

// ErrorValue is a cell holding a spreadsheet error such as "#DIV/0!".
// It is encoded as ["error", text].
type ErrorValue string

// MarshalJSON implements json.Marshaler.
func (e ErrorValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"error", string(e)})
}
