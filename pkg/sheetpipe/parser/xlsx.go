package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
	"github.com/xuri/excelize/v2"
)

// xlsxWorkbook reads xlsx/xlsm files with excelize.
type xlsxWorkbook struct {
	f        *excelize.File
	sheets   []string
	date1904 bool
	// dateStyles caches whether a style index carries a date number format.
	dateStyles map[int]bool
}

func openXLSX(path string) (*xlsxWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	wb := &xlsxWorkbook{
		f:          f,
		sheets:     f.GetSheetList(),
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

func (wb *xlsxWorkbook) Author() string {
	props, err := wb.f.GetDocProps()
	if err != nil || props == nil {
		return ""
	}
	if props.LastModifiedBy != "" {
		return props.LastModifiedBy
	}
	return props.Creator
}

func (wb *xlsxWorkbook) SheetNames() []string { return wb.sheets }

func (wb *xlsxWorkbook) Close() error { return wb.f.Close() }

func (wb *xlsxWorkbook) Sheet(index int) (Sheet, error) {
	if err := checkIndex(index, len(wb.sheets)); err != nil {
		return nil, err
	}
	name := wb.sheets[index]
	rows, err := wb.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	visible, err := wb.f.GetSheetVisible(name)
	if err != nil {
		return nil, err
	}
	s := &xlsxSheet{wb: wb, name: name, rows: rows, visibility: models.SheetVisible}
	if !visible {
		s.visibility = models.SheetHidden
	}
	s.nrows, s.ncols = usedExtent(rows)
	return s, nil
}

// isDateStyle reports whether the style index formats numbers as dates.
func (wb *xlsxWorkbook) isDateStyle(idx int) (bool, error) {
	if idx == 0 {
		return false, nil
	}
	if v, ok := wb.dateStyles[idx]; ok {
		return v, nil
	}
	style, err := wb.f.GetStyle(idx)
	if err != nil {
		return false, err
	}
	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil && *style.CustomNumFmt != "" {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	wb.dateStyles[idx] = isDate
	return isDate, nil
}

type xlsxSheet struct {
	wb           *xlsxWorkbook
	name         string
	rows         [][]string
	nrows, ncols int
	visibility   models.Visibility
}

func (s *xlsxSheet) Name() string                  { return s.name }
func (s *xlsxSheet) Visibility() models.Visibility { return s.visibility }
func (s *xlsxSheet) Dimensions() (int, int)        { return s.nrows, s.ncols }

func (s *xlsxSheet) Cell(row, col int) (any, error) {
	if row >= len(s.rows) || col >= len(s.rows[row]) {
		return nil, nil
	}
	raw := s.rows[row][col]
	if raw == "" {
		return nil, nil
	}
	cell := CellName(row, col)
	typ, err := s.wb.f.GetCellType(s.name, cell)
	if err != nil {
		return nil, err
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeError:
		return models.ErrorValue(raw), nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return models.DateValue{Time: t}, nil
		}
		return raw, nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return s.number(cell, raw)
	}
	return raw, nil
}

func (s *xlsxSheet) number(cell, raw string) (any, error) {
	styleIdx, err := s.wb.f.GetCellStyle(s.name, cell)
	if err != nil {
		return nil, err
	}
	isDate, err := s.wb.isDateStyle(styleIdx)
	if err != nil {
		return nil, err
	}
	v, err := parseNumber(raw)
	if err != nil {
		// Unset type with non-numeric content, e.g. a formula string result.
		return raw, nil
	}
	if !isDate {
		return v, nil
	}
	var serial float64
	switch n := v.(type) {
	case int64:
		serial = float64(n)
	case float64:
		serial = n
	}
	t, err := excelize.ExcelDateToTime(serial, s.wb.date1904)
	if err != nil {
		return nil, fmt.Errorf("date serial %v: %w", serial, err)
	}
	return models.DateValue{Time: roundToSecond(t)}, nil
}
