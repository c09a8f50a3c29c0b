package sheetpipe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/codec"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/parser"
)

// ErrFileNotFound indicates an input pattern matched no file.
var ErrFileNotFound = errors.New("file not found")

// ErrUnknownSheet indicates a sheet selector names no sheet of the workbook.
var ErrUnknownSheet = errors.New("unknown sheet")

// ErrUnsupportedFormat indicates an output format no codec can write.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// SheetError represents an error while reading one sheet.
type SheetError struct {
	SheetName string
	Op        string // "load", "dump"
	Err       error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("%s sheet %q: %v", e.Op, e.SheetName, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError.
func NewSheetError(sheetName, op string, err error) *SheetError {
	return &SheetError{
		SheetName: sheetName,
		Op:        op,
		Err:       err,
	}
}

var exceptionNames = []struct {
	err  error
	name string
}{
	{ErrFileNotFound, "FileNotFound"},
	{os.ErrNotExist, "FileNotFound"},
	{os.ErrPermission, "PermissionDenied"},
	{ErrUnknownSheet, "UnknownSheet"},
	{ErrUnsupportedFormat, "UnsupportedFormat"},
	{parser.ErrUnknownFileType, "UnknownFileType"},
	{codec.ErrUnknownModule, "UnknownModule"},
	{context.Canceled, "Canceled"},
	{context.DeadlineExceeded, "DeadlineExceeded"},
}

// exceptionName classifies err for the "exception" field of error records:
// a known sentinel name, else the Go type of the innermost error.
func exceptionName(err error) string {
	for _, e := range exceptionNames {
		if errors.Is(err, e.err) {
			return e.name
		}
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
