package codec

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
	"github.com/xuri/excelize/v2"
)

type styleKey struct {
	format string
	date   bool
}

// excelizeCodec writes with excelize. It covers every command and the whole
// format description.
type excelizeCodec struct {
	book
	log    zerolog.Logger
	f      *excelize.File
	styles map[styleKey]int
}

func newExcelize(log zerolog.Logger) *excelizeCodec {
	return &excelizeCodec{book: newBook(), log: log}
}

func (c *excelizeCodec) CreateWorkbook(opts models.WorkbookOptions) error {
	if c.f != nil {
		_ = c.f.Close()
	}
	c.book.create(opts)
	c.f = excelize.NewFile()
	c.styles = make(map[styleKey]int)
	if p := opts.Properties; p != nil {
		if err := c.f.SetDocProps(&excelize.DocProperties{
			Title:          p.Title,
			Subject:        p.Subject,
			Creator:        p.Author,
			LastModifiedBy: p.Author,
			Category:       p.Category,
			Keywords:       p.Keywords,
			Description:    p.Comments,
			ContentStatus:  p.Status,
		}); err != nil {
			return fmt.Errorf("document properties: %w", err)
		}
		if p.Company != "" {
			if err := c.f.SetAppProps(&excelize.AppProperties{Company: p.Company}); err != nil {
				return fmt.Errorf("app properties: %w", err)
			}
		}
		if p.Manager != "" {
			if err := c.f.SetCustomProps(excelize.CustomProperty{Name: "Manager", Value: p.Manager}); err != nil {
				return fmt.Errorf("custom properties: %w", err)
			}
		}
	}
	return nil
}

func (c *excelizeCodec) AddSheet(name string) (string, error) {
	if err := c.checkCreated(); err != nil {
		return "", err
	}
	name, err := c.sheetName(name)
	if err != nil {
		return "", err
	}
	// A new file always carries "Sheet1"; the first added sheet takes it over.
	if len(c.sheets) == 0 {
		if err := c.f.SetSheetName("Sheet1", name); err != nil {
			return "", err
		}
	} else if _, err := c.f.NewSheet(name); err != nil {
		return "", err
	}
	c.sheets = append(c.sheets, name)
	if err := c.activate(len(c.sheets) - 1); err != nil {
		return "", err
	}
	return name, nil
}

func (c *excelizeCodec) activate(i int) error {
	idx, err := c.f.GetSheetIndex(c.sheets[i])
	if err != nil {
		return err
	}
	c.f.SetActiveSheet(idx)
	c.current = i
	return nil
}

func (c *excelizeCodec) ActivateSheet(ref models.SheetRef) error {
	if err := c.checkCreated(); err != nil {
		return err
	}
	i, err := c.resolve(&ref)
	if err != nil {
		return err
	}
	return c.activate(i)
}

func (c *excelizeCodec) SetSheetSettings(ref *models.SheetRef, s models.SheetSettings) error {
	if err := c.checkCreated(); err != nil {
		return err
	}
	i, err := c.resolve(ref)
	if err != nil {
		return err
	}
	c.current = i
	name := c.sheets[i]
	if s.Activated {
		if err := c.activate(i); err != nil {
			return err
		}
	}
	if s.Hidden {
		if err := c.hide(i); err != nil {
			return err
		}
	}
	if s.Selected && !s.Activated {
		c.log.Debug().Str("sheet", name).Msg("selected without activated is ignored")
	}
	if s.RightToLeft || s.HideZeroValues {
		rtl, showZeros := s.RightToLeft, !s.HideZeroValues
		if err := c.f.SetSheetView(name, 0, &excelize.ViewOptions{RightToLeft: &rtl, ShowZeros: &showZeros}); err != nil {
			return err
		}
	}
	if sel := s.Selection; sel != nil {
		ref := sel.Range
		if ref == "" {
			ref = cellRange{top: sel.Top, left: sel.Left, bottom: sel.Bottom, right: sel.Right}.String()
		}
		r, err := parseRange(ref)
		if err != nil {
			return err
		}
		if err := c.f.SetPanes(name, &excelize.Panes{
			Selection: []excelize.Selection{{SQRef: r.String(), ActiveCell: r.first(), Pane: "topLeft"}},
		}); err != nil {
			return err
		}
	}
	return nil
}

// hide hides sheet i. excelize keeps the selected tab visible, so the
// active tab moves to another sheet first.
func (c *excelizeCodec) hide(i int) error {
	name := c.sheets[i]
	idx, err := c.f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if c.f.GetActiveSheetIndex() == idx {
		for j, other := range c.sheets {
			if j == i {
				continue
			}
			oidx, err := c.f.GetSheetIndex(other)
			if err != nil {
				return err
			}
			c.f.SetActiveSheet(oidx)
			break
		}
	}
	if len(c.sheets) < 2 {
		c.log.Debug().Str("sheet", name).Msg("the only sheet cannot be hidden")
	}
	return c.f.SetSheetVisible(name, false)
}

// style returns the excelize style id of a registered format, or of the
// default date style when date is set. 0 means no style.
func (c *excelizeCodec) style(name string, date bool) (int, error) {
	if name == "" && !date {
		return 0, nil
	}
	key := styleKey{format: name, date: date}
	if id, ok := c.styles[key]; ok {
		return id, nil
	}
	f, err := c.format(name)
	if err != nil {
		return 0, err
	}
	var dateFormat string
	if date {
		dateFormat = c.dateFormat
	}
	st, err := excelizeStyle(f, dateFormat)
	if err != nil {
		return 0, fmt.Errorf("format %q: %w", name, err)
	}
	id, err := c.f.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("format %q: %w", name, err)
	}
	c.styles[key] = id
	return id, nil
}

func (c *excelizeCodec) Write(row, col int, v any, format string) error {
	sheet, err := c.currentSheet()
	if err != nil {
		return err
	}
	return c.write(sheet, cellName(row, col), v, format)
}

func (c *excelizeCodec) write(sheet, cell string, v any, format string) error {
	_, isDate := v.(time.Time)
	styleID, err := c.style(format, isDate)
	if err != nil {
		return err
	}
	if text, ok := formula(v); ok {
		err = c.f.SetCellFormula(sheet, cell, text)
	} else if t, ok := v.(time.Time); ok {
		err = c.f.SetCellValue(sheet, cell, wallClock(t))
	} else if v != nil {
		err = c.f.SetCellValue(sheet, cell, v)
	}
	if err != nil {
		return err
	}
	if styleID != 0 {
		return c.f.SetCellStyle(sheet, cell, cell, styleID)
	}
	return nil
}

func (c *excelizeCodec) MergeRange(ref string, v any, format string) error {
	sheet, err := c.currentSheet()
	if err != nil {
		return err
	}
	r, err := parseRange(ref)
	if err != nil {
		return err
	}
	if err := c.f.MergeCell(sheet, r.first(), r.last()); err != nil {
		return err
	}
	if err := c.write(sheet, r.first(), v, format); err != nil {
		return err
	}
	if format == "" {
		return nil
	}
	_, isDate := v.(time.Time)
	styleID, err := c.style(format, isDate)
	if err != nil {
		return err
	}
	return c.f.SetCellStyle(sheet, r.first(), r.last(), styleID)
}

func (c *excelizeCodec) AddFormat(name string, f models.Format) error {
	if err := c.checkCreated(); err != nil {
		return err
	}
	if _, err := excelizeStyle(f, ""); err != nil {
		return err
	}
	c.formats[name] = f
	delete(c.styles, styleKey{format: name})
	delete(c.styles, styleKey{format: name, date: true})
	return nil
}

func (c *excelizeCodec) SetRow(index int, s models.RowSettings) error {
	sheet, err := c.currentSheet()
	if err != nil {
		return err
	}
	row := index + 1
	if s.Height != nil {
		if err := c.f.SetRowHeight(sheet, row, *s.Height); err != nil {
			return err
		}
	}
	if s.Format.Name != "" {
		id, err := c.style(s.Format.Name, false)
		if err != nil {
			return err
		}
		if err := c.f.SetRowStyle(sheet, row, row, id); err != nil {
			return err
		}
	}
	if o := s.Options; o != nil {
		if err := c.f.SetRowVisible(sheet, row, !o.Hidden); err != nil {
			return err
		}
		if o.Level > 0 {
			if err := c.f.SetRowOutlineLevel(sheet, row, o.Level); err != nil {
				return err
			}
		}
		if o.Collapsed {
			c.log.Debug().Int("row", index).Msg("collapsed flag is ignored")
		}
	}
	return nil
}

func (c *excelizeCodec) SetColumn(index int, s models.ColumnSettings) error {
	sheet, err := c.currentSheet()
	if err != nil {
		return err
	}
	col, err := columnName(index)
	if err != nil {
		return err
	}
	if s.Width != nil {
		if err := c.f.SetColWidth(sheet, col, col, *s.Width); err != nil {
			return err
		}
	}
	if s.Format.Name != "" {
		id, err := c.style(s.Format.Name, false)
		if err != nil {
			return err
		}
		if err := c.f.SetColStyle(sheet, col, id); err != nil {
			return err
		}
	}
	if o := s.Options; o != nil {
		if err := c.f.SetColVisible(sheet, col, !o.Hidden); err != nil {
			return err
		}
		if o.Level > 0 {
			if err := c.f.SetColOutlineLevel(sheet, col, o.Level); err != nil {
				return err
			}
		}
		if o.Collapsed {
			c.log.Debug().Int("column", index).Msg("collapsed flag is ignored")
		}
	}
	return nil
}

func (c *excelizeCodec) Save(path string) error {
	if err := c.checkCreated(); err != nil {
		return err
	}
	defer func() {
		_ = c.f.Close()
		c.f = nil
		c.book = newBook()
	}()
	if len(c.sheets) == 0 {
		// Keep the placeholder sheet so the file stays valid.
		c.log.Debug().Msg("saving workbook without added sheets")
	}
	return c.f.SaveAs(path)
}
