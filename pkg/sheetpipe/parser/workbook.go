// Package parser opens workbooks of every supported container format behind
// a common cell grid interface.
package parser

import (
	"fmt"

	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
)

// Workbook is an opened spreadsheet file.
type Workbook interface {
	// Author is the last author recorded in the document properties, or "".
	Author() string
	// SheetNames lists the sheets in workbook order.
	SheetNames() []string
	// Sheet loads the sheet at the 0-based index.
	Sheet(index int) (Sheet, error)
	Close() error
}

// Sheet is a loaded worksheet.
type Sheet interface {
	Name() string
	Visibility() models.Visibility
	// Dimensions returns the used extent counted from A1.
	Dimensions() (rows, cols int)
	// Cell returns the value at the 0-based position: nil, float64, int64,
	// string, bool, models.DateValue or models.ErrorValue.
	Cell(row, col int) (any, error)
}

// OpenOptions configures Open.
type OpenOptions struct {
	// Charset is the code page name for legacy xls text, e.g. "windows-1252".
	Charset string
}

// Open detects the file type of path and opens it with the matching source.
func Open(path string, opts OpenOptions) (Workbook, error) {
	typ, err := DetectFileType(path)
	if err != nil {
		return nil, err
	}
	switch typ {
	case XLSX:
		return openXLSX(path)
	case XLS:
		return openXLS(path, opts.Charset)
	case XLSB:
		return openXLSB(path)
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnknownFileType)
}

func checkIndex(index, n int) error {
	if index < 0 || index >= n {
		return fmt.Errorf("sheet index %d out of range [0, %d)", index, n)
	}
	return nil
}
