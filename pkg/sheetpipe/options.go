// Package sheetpipe converts spreadsheet files to and from a line-delimited
// JSON record protocol.
package sheetpipe

import (
	"fmt"
	"strings"

	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/codec"
)

// ReadOptions configures Read.
type ReadOptions struct {
	// MetaOnly emits only the workbook record of each file.
	MetaOnly bool
	// Sheets selects sheets by name or, when purely numeric, by 0-based index.
	// Empty means all sheets.
	Sheets []string
	// MaxRows truncates every sheet to its first MaxRows rows. 0 means no limit.
	MaxRows int
	// Charset is the code page for legacy xls text.
	Charset string
	// Jobs is the number of files read concurrently. Values below 2 read
	// sequentially.
	Jobs int
}

// DefaultReadOptions returns default read options.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Jobs: 1,
	}
}

// Format is the container format of the written file.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DefaultDateFormat is the number format of date cells written without one.
const DefaultDateFormat = "yyyy-mm-dd"

// WriteOptions configures Write.
type WriteOptions struct {
	// Output is the path of the file to create. Empty means a new file in the
	// system temporary directory.
	Output string
	// Module selects the writer codec.
	Module codec.Module
	// Format is the container format. Only xlsx can be written.
	Format Format
	// DefaultDateFormat applies when create_workbook does not set one.
	DefaultDateFormat string
}

// DefaultWriteOptions returns default write options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Module:            codec.ModuleExcelize,
		Format:            FormatXLSX,
		DefaultDateFormat: DefaultDateFormat,
	}
}

// Validate checks the module and format.
func (o WriteOptions) Validate() error {
	switch Format(strings.ToLower(string(o.Format))) {
	case "", FormatXLSX:
	case FormatXLS:
		return fmt.Errorf("%w: xls (no BIFF8 writer available)", ErrUnsupportedFormat)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, o.Format)
	}
	if _, err := codec.ParseModule(string(o.Module)); err != nil {
		return err
	}
	return nil
}
