// Package codec adapts spreadsheet writer libraries to the command set of the
// writer protocol. Each codec owns a format-mapping table that turns a
// models.Format into the library's native style.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
)

// Module names a writer codec.
type Module string

const (
	// ModuleExcelize writes with github.com/xuri/excelize/v2.
	ModuleExcelize Module = "excelize"
	// ModuleTealeg writes with github.com/tealeg/xlsx/v3.
	ModuleTealeg Module = "tealeg"
)

var (
	// ErrUnknownModule indicates a --module value with no codec.
	ErrUnknownModule = errors.New("unknown module")
	// ErrNotSupported indicates a setting the codec cannot express.
	ErrNotSupported = errors.New("not supported by this module")
	// ErrUnknownSheet indicates a sheet id that matches no sheet.
	ErrUnknownSheet = errors.New("unknown sheet")
	// ErrUnknownFormat indicates a format name that was never registered.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrNoWorkbook indicates a command issued before create_workbook.
	ErrNoWorkbook = errors.New("no workbook")
	// ErrNoSheet indicates a cell command issued before any sheet exists.
	ErrNoSheet = errors.New("no sheet")
)

// ParseModule parses a module name. Empty means ModuleExcelize.
func ParseModule(s string) (Module, error) {
	switch m := Module(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModuleExcelize, nil
	case ModuleExcelize, ModuleTealeg:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModule, s)
}

// Codec builds one workbook. Rows and columns are 0-based.
// Format arguments are names registered with AddFormat; "" means none.
type Codec interface {
	CreateWorkbook(opts models.WorkbookOptions) error
	// AddSheet adds a sheet and makes it current. An empty name is replaced
	// by SheetN. The final name is returned.
	AddSheet(name string) (string, error)
	ActivateSheet(ref models.SheetRef) error
	// SetSheetSettings applies settings to ref, or to the current sheet when
	// ref is nil. The target becomes the current sheet.
	SetSheetSettings(ref *models.SheetRef, settings models.SheetSettings) error
	// Write stores one value in the current sheet. v is nil, string, int64,
	// float64, bool or time.Time; strings starting with "=" are formulas.
	Write(row, col int, v any, format string) error
	MergeRange(ref string, v any, format string) error
	AddFormat(name string, f models.Format) error
	HasFormat(name string) bool
	SetRow(index int, settings models.RowSettings) error
	SetColumn(index int, settings models.ColumnSettings) error
	// CurrentSheet returns the name of the current sheet, if any.
	CurrentSheet() (string, bool)
	// Save writes the workbook to path and releases it.
	Save(path string) error
}

// New returns a codec for module m.
func New(m Module, log zerolog.Logger) (Codec, error) {
	m, err := ParseModule(string(m))
	if err != nil {
		return nil, err
	}
	switch m {
	case ModuleTealeg:
		return newTealeg(log), nil
	default:
		return newExcelize(log), nil
	}
}

// book keeps the state shared by every codec: sheet order, the current
// sheet, registered formats and the default date format.
type book struct {
	created    bool
	sheets     []string
	current    int
	formats    map[string]models.Format
	dateFormat string
}

func newBook() book {
	return book{current: -1, formats: make(map[string]models.Format)}
}

func (b *book) create(opts models.WorkbookOptions) {
	*b = newBook()
	b.created = true
	b.dateFormat = opts.DefaultDateFormat
	if b.dateFormat == "" {
		b.dateFormat = "yyyy-mm-dd"
	}
}

func (b *book) checkCreated() error {
	if !b.created {
		return ErrNoWorkbook
	}
	return nil
}

// CurrentSheet implements Codec.
func (b *book) CurrentSheet() (string, bool) {
	if !b.created || b.current < 0 {
		return "", false
	}
	return b.sheets[b.current], true
}

// HasFormat implements Codec.
func (b *book) HasFormat(name string) bool {
	_, ok := b.formats[name]
	return ok
}

// sheetName returns the name of a new sheet.
func (b *book) sheetName(name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("Sheet%d", len(b.sheets)+1)
	}
	for _, s := range b.sheets {
		if strings.EqualFold(s, name) {
			return "", fmt.Errorf("sheet %q already exists", name)
		}
	}
	return name, nil
}

// resolve returns the index of ref, or of the current sheet when ref is nil.
func (b *book) resolve(ref *models.SheetRef) (int, error) {
	if ref == nil {
		if b.current < 0 {
			return -1, ErrNoSheet
		}
		return b.current, nil
	}
	if ref.ByName {
		for i, s := range b.sheets {
			if s == ref.Name {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: %q", ErrUnknownSheet, ref.Name)
	}
	if ref.Index < 0 || ref.Index >= len(b.sheets) {
		return -1, fmt.Errorf("%w: index %d", ErrUnknownSheet, ref.Index)
	}
	return ref.Index, nil
}

func (b *book) currentSheet() (string, error) {
	if err := b.checkCreated(); err != nil {
		return "", err
	}
	if b.current < 0 {
		return "", ErrNoSheet
	}
	return b.sheets[b.current], nil
}

// format returns the registered format; "" yields the zero Format.
func (b *book) format(name string) (models.Format, error) {
	if name == "" {
		return models.Format{}, nil
	}
	f, ok := b.formats[name]
	if !ok {
		return models.Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}
