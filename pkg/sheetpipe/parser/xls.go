package parser

import (
	"fmt"
	"time"

	"github.com/extrame/xls"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
)

// DefaultCharset is the code page assumed for legacy xls text.
const DefaultCharset = "utf-8"

// xlsWorkbook reads BIFF8 files with extrame/xls. Cell values surface as
// formatted text and are typed back by xlsValue.
type xlsWorkbook struct {
	wb     *xls.WorkBook
	sheets []string
}

func openXLS(path, charset string) (wb *xlsWorkbook, err error) {
	if charset == "" {
		charset = DefaultCharset
	}
	// extrame/xls panics on some truncated streams.
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("open %q: %v", path, r)
		}
	}()
	f, err := xls.Open(path, charset)
	if err != nil {
		return nil, err
	}
	wb = &xlsWorkbook{wb: f}
	for i := 0; i < f.NumSheets(); i++ {
		sheet := f.GetSheet(i)
		if sheet == nil {
			wb.sheets = append(wb.sheets, "")
			continue
		}
		wb.sheets = append(wb.sheets, sheet.Name)
	}
	return wb, nil
}

func (wb *xlsWorkbook) Author() string       { return "" }
func (wb *xlsWorkbook) SheetNames() []string { return wb.sheets }
func (wb *xlsWorkbook) Close() error         { return nil }

func (wb *xlsWorkbook) Sheet(index int) (s Sheet, err error) {
	if err := checkIndex(index, len(wb.sheets)); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("load sheet %d: %v", index, r)
		}
	}()
	sheet := wb.wb.GetSheet(index)
	if sheet == nil {
		return nil, fmt.Errorf("workbook does not contain sheet no %d", index)
	}
	xs := &xlsSheet{name: sheet.Name}
	for n := 0; n <= int(sheet.MaxRow); n++ {
		row := sheet.Row(n)
		if row == nil {
			continue
		}
		vals := make([]string, row.LastCol())
		hasData := false
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			vals[j] = row.Col(j)
			if vals[j] != "" {
				hasData = true
			}
		}
		if !hasData {
			continue
		}
		for len(xs.rows) < n {
			xs.rows = append(xs.rows, nil)
		}
		xs.rows = append(xs.rows, vals)
	}
	xs.nrows, xs.ncols = usedExtent(xs.rows)
	return xs, nil
}

type xlsSheet struct {
	name         string
	rows         [][]string
	nrows, ncols int
}

func (s *xlsSheet) Name() string { return s.name }

// Visibility is always visible: extrame/xls does not expose the sheet state.
func (s *xlsSheet) Visibility() models.Visibility { return models.SheetVisible }

func (s *xlsSheet) Dimensions() (int, int) { return s.nrows, s.ncols }

func (s *xlsSheet) Cell(row, col int) (any, error) {
	if row >= len(s.rows) || col >= len(s.rows[row]) {
		return nil, nil
	}
	return xlsValue(s.rows[row][col]), nil
}

// xlsValue types the text extrame/xls renders for a cell. Builtin date
// formats render as RFC 3339 and become dates; error codes become errors.
// Custom date formats render through their format code and stay text.
func xlsValue(s string) any {
	if isErrorText(s) {
		return models.ErrorValue(s)
	}
	if len(s) >= len("2006-01-02T15:04:05Z") && s[4] == '-' && s[10] == 'T' {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return models.DateValue{Time: roundToSecond(t.UTC())}
		}
	}
	return parseValue(s)
}
