package parser

import (
	"fmt"

	xlsb "github.com/TsubasaBE/go-xlsb"
	"github.com/TsubasaBE/go-xlsb/workbook"
	"github.com/TsubasaBE/go-xlsb/worksheet"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
)

// xlsbWorkbook reads binary workbooks with go-xlsb. Numbers whose cell
// format is a date come out as dates.
type xlsbWorkbook struct {
	wb *workbook.Workbook
}

func openXLSB(path string) (*xlsbWorkbook, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	return &xlsbWorkbook{wb: wb}, nil
}

func (wb *xlsbWorkbook) Author() string       { return "" }
func (wb *xlsbWorkbook) SheetNames() []string { return wb.wb.Sheets() }
func (wb *xlsbWorkbook) Close() error         { return wb.wb.Close() }

func (wb *xlsbWorkbook) Sheet(index int) (Sheet, error) {
	names := wb.wb.Sheets()
	if err := checkIndex(index, len(names)); err != nil {
		return nil, err
	}
	ws, err := wb.wb.Sheet(index + 1)
	if err != nil {
		return nil, err
	}
	s := &xlsbSheet{
		wb:         wb,
		name:       names[index],
		cells:      make(map[[2]int]worksheet.Cell),
		visibility: xlsbVisibility(wb.wb.SheetVisibility(names[index])),
	}
	for row := range ws.Rows(true) {
		for _, c := range row {
			if c.V == nil {
				continue
			}
			s.cells[[2]int{c.R, c.C}] = c
			s.nrows = max(s.nrows, c.R+1)
			s.ncols = max(s.ncols, c.C+1)
		}
	}
	if ws.Err != nil {
		return nil, ws.Err
	}
	if d := ws.Dimension; d != nil && d.H > 0 && d.W > 0 {
		s.nrows = max(s.nrows, d.R+d.H)
		s.ncols = max(s.ncols, d.C+d.W)
	}
	return s, nil
}

func xlsbVisibility(state int) models.Visibility {
	switch state {
	case workbook.SheetHidden:
		return models.SheetHidden
	case workbook.SheetVeryHidden:
		return models.SheetVeryHidden
	}
	return models.SheetVisible
}

type xlsbSheet struct {
	wb           *xlsbWorkbook
	name         string
	cells        map[[2]int]worksheet.Cell
	nrows, ncols int
	visibility   models.Visibility
}

func (s *xlsbSheet) Name() string                  { return s.name }
func (s *xlsbSheet) Visibility() models.Visibility { return s.visibility }
func (s *xlsbSheet) Dimensions() (int, int)        { return s.nrows, s.ncols }

func (s *xlsbSheet) Cell(row, col int) (any, error) {
	c, ok := s.cells[[2]int{row, col}]
	if !ok {
		return nil, nil
	}
	switch v := c.V.(type) {
	case string:
		if isErrorText(v) {
			return models.ErrorValue(v), nil
		}
		return v, nil
	case float64:
		if s.wb.wb.Styles.IsDate(c.Style) {
			t, err := xlsb.ConvertDateEx(v, s.wb.wb.Date1904)
			if err != nil {
				return nil, fmt.Errorf("date serial %v: %w", v, err)
			}
			return models.DateValue{Time: roundToSecond(t)}, nil
		}
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return v, nil
	}
	return c.V, nil
}

var errorTexts = map[string]bool{
	"#NULL!": true, "#DIV/0!": true, "#VALUE!": true, "#REF!": true,
	"#NAME?": true, "#NUM!": true, "#N/A": true, "#GETTING_DATA": true,
}

func isErrorText(s string) bool { return errorTexts[s] }
