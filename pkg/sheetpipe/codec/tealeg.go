package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tealeg/xlsx/v3"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
)

// tealegCodec writes with tealeg/xlsx. Settings the library cannot store are
// reported as ErrNotSupported after the supported part has been applied.
type tealegCodec struct {
	book
	log    zerolog.Logger
	file   *xlsx.File
	tabs   []*xlsx.Sheet
	mapped map[string]tealegFormat
}

func newTealeg(log zerolog.Logger) *tealegCodec {
	return &tealegCodec{book: newBook(), log: log}
}

func notSupported(what []string) error {
	if len(what) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotSupported, strings.Join(what, ", "))
}

func (c *tealegCodec) CreateWorkbook(opts models.WorkbookOptions) error {
	c.book.create(opts)
	c.file = xlsx.NewFile()
	c.tabs = nil
	c.mapped = make(map[string]tealegFormat)
	if opts.Properties != nil {
		c.log.Warn().Msg("document properties are not written by the tealeg module")
	}
	return nil
}

func (c *tealegCodec) AddSheet(name string) (string, error) {
	if err := c.checkCreated(); err != nil {
		return "", err
	}
	name, err := c.sheetName(name)
	if err != nil {
		return "", err
	}
	sh, err := c.file.AddSheet(name)
	if err != nil {
		return "", err
	}
	c.sheets = append(c.sheets, name)
	c.tabs = append(c.tabs, sh)
	c.activate(len(c.tabs) - 1)
	return name, nil
}

func (c *tealegCodec) activate(i int) {
	for j, sh := range c.tabs {
		sh.Selected = j == i
	}
	c.current = i
}

func (c *tealegCodec) ActivateSheet(ref models.SheetRef) error {
	if err := c.checkCreated(); err != nil {
		return err
	}
	i, err := c.resolve(&ref)
	if err != nil {
		return err
	}
	c.activate(i)
	return nil
}

func (c *tealegCodec) SetSheetSettings(ref *models.SheetRef, s models.SheetSettings) error {
	if err := c.checkCreated(); err != nil {
		return err
	}
	i, err := c.resolve(ref)
	if err != nil {
		return err
	}
	c.current = i
	sh := c.tabs[i]
	if s.Activated {
		c.activate(i)
	}
	if s.Selected {
		sh.Selected = true
	}
	if s.Hidden {
		sh.Hidden = true
	}
	var unsupported []string
	if s.RightToLeft {
		unsupported = append(unsupported, "rightToLeft")
	}
	if s.HideZeroValues {
		unsupported = append(unsupported, "hideZeroValues")
	}
	if s.Selection != nil {
		unsupported = append(unsupported, "selection")
	}
	return notSupported(unsupported)
}

func (c *tealegCodec) sheet() (*xlsx.Sheet, error) {
	if _, err := c.currentSheet(); err != nil {
		return nil, err
	}
	return c.tabs[c.current], nil
}

func (c *tealegCodec) lookup(name string) (tealegFormat, error) {
	if name == "" {
		return tealegFormat{}, nil
	}
	tf, ok := c.mapped[name]
	if !ok {
		return tealegFormat{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return tf, nil
}

func (c *tealegCodec) Write(row, col int, v any, format string) error {
	sh, err := c.sheet()
	if err != nil {
		return err
	}
	return c.write(sh, row, col, v, format)
}

func (c *tealegCodec) write(sh *xlsx.Sheet, row, col int, v any, format string) error {
	tf, err := c.lookup(format)
	if err != nil {
		return err
	}
	cell, err := sh.Cell(row, col)
	if err != nil {
		return err
	}
	if text, ok := formula(v); ok {
		cell.SetFormula(text)
	} else {
		switch x := v.(type) {
		case nil:
		case string:
			cell.SetString(x)
		case int64:
			cell.SetInt64(x)
		case float64:
			cell.SetFloat(x)
		case bool:
			cell.SetBool(x)
		case time.Time:
			cell.SetDateWithOptions(wallClock(x), xlsx.DateTimeOptions{
				Location:        time.UTC,
				ExcelTimeFormat: c.dateFormat,
			})
		default:
			return fmt.Errorf("unsupported value type %T", v)
		}
	}
	if tf.style != nil {
		cell.SetStyle(tf.style)
	}
	if tf.numFmt != "" {
		cell.NumFmt = tf.numFmt
	}
	return nil
}

func (c *tealegCodec) MergeRange(ref string, v any, format string) error {
	sh, err := c.sheet()
	if err != nil {
		return err
	}
	r, err := parseRange(ref)
	if err != nil {
		return err
	}
	if err := c.write(sh, r.top, r.left, v, format); err != nil {
		return err
	}
	anchor, err := sh.Cell(r.top, r.left)
	if err != nil {
		return err
	}
	anchor.Merge(r.right-r.left, r.bottom-r.top)
	if format == "" {
		return nil
	}
	tf, err := c.lookup(format)
	if err != nil {
		return err
	}
	for row := r.top; row <= r.bottom; row++ {
		for col := r.left; col <= r.right; col++ {
			if row == r.top && col == r.left {
				continue
			}
			cell, err := sh.Cell(row, col)
			if err != nil {
				return err
			}
			cell.SetStyle(tf.style)
		}
	}
	return nil
}

func (c *tealegCodec) AddFormat(name string, f models.Format) error {
	if err := c.checkCreated(); err != nil {
		return err
	}
	tf, ignored, err := tealegStyle(f)
	if err != nil {
		return err
	}
	if len(ignored) > 0 {
		c.log.Debug().Str("format", name).Strs("ignored", ignored).Msg("format properties not stored by the tealeg module")
	}
	c.formats[name] = f
	c.mapped[name] = tf
	return nil
}

func (c *tealegCodec) SetRow(index int, s models.RowSettings) error {
	sh, err := c.sheet()
	if err != nil {
		return err
	}
	row, err := sh.Row(index)
	if err != nil {
		return err
	}
	if s.Height != nil {
		row.SetHeight(*s.Height)
	}
	var unsupported []string
	if s.Format.Name != "" {
		unsupported = append(unsupported, "row format")
	}
	if o := s.Options; o != nil {
		row.Hidden = o.Hidden
		if o.Level > 0 {
			row.SetOutlineLevel(o.Level)
		}
		if o.Collapsed {
			unsupported = append(unsupported, "collapsed")
		}
	}
	return notSupported(unsupported)
}

func (c *tealegCodec) SetColumn(index int, s models.ColumnSettings) error {
	sh, err := c.sheet()
	if err != nil {
		return err
	}
	if s.Width != nil {
		sh.SetColWidth(index+1, index+1, *s.Width)
	}
	var unsupported []string
	if s.Format.Name != "" {
		unsupported = append(unsupported, "column format")
	}
	if o := s.Options; o != nil && (o.Hidden || o.Level > 0 || o.Collapsed) {
		unsupported = append(unsupported, "column options")
	}
	return notSupported(unsupported)
}

func (c *tealegCodec) Save(path string) error {
	if err := c.checkCreated(); err != nil {
		return err
	}
	defer func() {
		c.file, c.tabs, c.mapped = nil, nil, nil
		c.book = newBook()
	}()
	if len(c.tabs) == 0 {
		// An xlsx file needs at least one sheet.
		if _, err := c.file.AddSheet("Sheet1"); err != nil {
			return err
		}
	}
	return c.file.Save(path)
}
