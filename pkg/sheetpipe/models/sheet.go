package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Visibility is the tab state of a sheet.
type Visibility int

const (
	// SheetVisible is a normal sheet tab.
	SheetVisible Visibility = 0
	// SheetHidden is hidden but can be unhidden from the UI.
	SheetHidden Visibility = 1
	// SheetVeryHidden can only be unhidden programmatically.
	SheetVeryHidden Visibility = 2
)

// SheetInfo is the payload of an "s" record, emitted before the cells of a sheet.
type SheetInfo struct {
	// Index is the 0-based position of the sheet in the workbook.
	Index int `json:"index"`
	// Name is the sheet tab name.
	Name string `json:"name"`
	// Rows is the number of rows in the used range, counted from the first row.
	Rows int `json:"rows"`
	// Columns is the number of columns in the used range, counted from column A.
	Columns int `json:"columns"`
	// Visibility is the tab state.
	Visibility Visibility `json:"visibility"`
}

// SheetRef identifies a sheet either by 0-based index or by name.
// On the wire it is a JSON number or a JSON string.
type SheetRef struct {
	Index  int
	Name   string
	ByName bool
}

func (r SheetRef) String() string {
	if r.ByName {
		return r.Name
	}
	return fmt.Sprint(r.Index)
}

// UnmarshalJSON accepts a number (index) or a string (name).
func (r *SheetRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		r.ByName = true
		return json.Unmarshal(data, &r.Name)
	}
	r.ByName = false
	return json.Unmarshal(data, &r.Index)
}

// SheetSettings is the argument of the set_sheet_settings command.
type SheetSettings struct {
	Hidden         bool       `json:"hidden,omitempty"`
	Activated      bool       `json:"activated,omitempty"`
	Selected       bool       `json:"selected,omitempty"`
	RightToLeft    bool       `json:"rightToLeft,omitempty"`
	HideZeroValues bool       `json:"hideZeroValues,omitempty"`
	Selection      *Selection `json:"selection,omitempty"`
}

// Selection is a selected cell range. On the wire it is either a range
// string such as "B2:D4" or an object with 0-based top/left/bottom/right.
type Selection struct {
	Range  string
	Top    int
	Left   int
	Bottom int
	Right  int
}

// UnmarshalJSON accepts a range string or a bounds object.
func (s *Selection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Range)
	}
	var bounds struct {
		Top    int `json:"top"`
		Left   int `json:"left"`
		Bottom int `json:"bottom"`
		Right  int `json:"right"`
	}
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("selection: %w", err)
	}
	s.Top, s.Left, s.Bottom, s.Right = bounds.Top, bounds.Left, bounds.Bottom, bounds.Right
	return nil
}

// LineOptions are the row/column flags of set_row and set_column.
type LineOptions struct {
	Hidden    bool  `json:"hidden,omitempty"`
	Level     uint8 `json:"level,omitempty"`
	Collapsed bool  `json:"collapsed,omitempty"`
}

// RowSettings is the argument of the set_row command.
type RowSettings struct {
	Height  *float64     `json:"height,omitempty"`
	Format  FormatRef    `json:"format"`
	Options *LineOptions `json:"options,omitempty"`
}

// ColumnSettings is the argument of the set_column command.
type ColumnSettings struct {
	Width   *float64     `json:"width,omitempty"`
	Format  FormatRef    `json:"format"`
	Options *LineOptions `json:"options,omitempty"`
}
