// Package dispatch runs writer commands read from a line-delimited JSON
// stream against a codec.
//
// Each input line is one command, [method, arg1, arg2, ...]. Commands are
// looked up in a fixed method table. Failures are reported as records and
// never stop the stream.
package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/codec"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/output"
)

// CommandError is a failed command.
type CommandError struct {
	Method string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ErrClosed is returned for commands after the workbook was saved.
var ErrClosed = fmt.Errorf("%w: workbook closed", codec.ErrNoWorkbook)

// Options configures a Dispatcher.
type Options struct {
	// Output is the path the workbook is saved to.
	Output string
	// DefaultDateFormat applies when create_workbook does not set one.
	DefaultDateFormat string
}

type method func(d *Dispatcher, args []json.RawMessage) error

var methods = map[string]method{
	"create_workbook":    (*Dispatcher).createWorkbook,
	"add_sheet":          (*Dispatcher).addSheet,
	"activate_sheet":     (*Dispatcher).activateSheet,
	"set_sheet_settings": (*Dispatcher).setSheetSettings,
	"write":              (*Dispatcher).write,
	"format":             (*Dispatcher).format,
	"merge_range":        (*Dispatcher).mergeRange,
	"set_row":            (*Dispatcher).setRow,
	"set_column":         (*Dispatcher).setColumn,
	"close":              (*Dispatcher).close,
}

// Methods returns the names of the method table.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	return names
}

// Dispatcher applies commands to one workbook at a time.
type Dispatcher struct {
	codec codec.Codec
	sink  output.Sink
	log   zerolog.Logger
	opts  Options

	open    bool
	closed  bool
	lastRow map[string]int
	inline  map[string]string
	anon    int

	sinkErr error
}

// New returns a dispatcher writing through c and reporting to sink.
func New(c codec.Codec, sink output.Sink, opts Options, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		codec:   c,
		sink:    sink,
		log:     log,
		opts:    opts,
		lastRow: make(map[string]int),
		inline:  make(map[string]string),
	}
}

// Run handles every line of r, then closes the workbook if it is still open.
// The returned error is set when reading r or writing a record fails, when
// ctx is done, or when the final save fails.
func (d *Dispatcher) Run(ctx context.Context, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, readErr := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			if err := d.Handle(line); err != nil {
				return err
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	return d.Finish()
}

// Finish closes the workbook if it is open. A failed save is reported as a
// record and returned.
func (d *Dispatcher) Finish() error {
	if !d.open {
		return nil
	}
	if err := d.call((*Dispatcher).close, nil); err != nil {
		if emitErr := d.fail("close", nil, err); emitErr != nil {
			return emitErr
		}
		return &CommandError{Method: "close", Err: err}
	}
	return d.sinkErr
}

// Handle runs one command line. Only a failing sink is returned; command
// failures become records.
func (d *Dispatcher) Handle(line []byte) error {
	var cmd models.Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		d.log.Debug().Err(err).Msg("malformed command")
		return d.fail("", nil, err)
	}
	log := d.log.With().Str("method", cmd.Method).Logger()

	m, ok := methods[cmd.Method]
	if !ok {
		log.Warn().Msg("unknown method")
		return d.sink.Emit(models.RecordUnknownMethod, models.MethodCall{MethodName: cmd.Method, Args: nonNil(cmd.Args)})
	}
	var err error
	if d.closed {
		err = ErrClosed
	} else {
		err = d.call(m, cmd.Args)
	}
	if d.sinkErr != nil {
		return d.sinkErr
	}
	if err != nil {
		log.Debug().Err(err).Msg("command failed")
		return d.fail(cmd.Method, cmd.Args, err)
	}
	log.Trace().Msg("command done")
	return nil
}

func (d *Dispatcher) call(m method, args []json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return m(d, args)
}

func (d *Dispatcher) fail(name string, args []json.RawMessage, err error) error {
	return d.sink.Emit(models.RecordCommandError, models.MethodFailure{
		MethodName: name,
		Args:       nonNil(args),
		Details:    err.Error(),
	})
}

// emit writes an acknowledgement. A sink failure is kept and ends Run.
func (d *Dispatcher) emit(typ models.RecordType, payload any) {
	if d.sinkErr != nil {
		return
	}
	d.sinkErr = d.sink.Emit(typ, payload)
}

func nonNil(args []json.RawMessage) []json.RawMessage {
	if args == nil {
		return []json.RawMessage{}
	}
	return args
}

func (d *Dispatcher) create(opts models.WorkbookOptions) error {
	if opts.DefaultDateFormat == "" {
		opts.DefaultDateFormat = d.opts.DefaultDateFormat
	}
	if err := d.codec.CreateWorkbook(opts); err != nil {
		return err
	}
	d.open = true
	clear(d.lastRow)
	clear(d.inline)
	d.emit(models.RecordOpen, d.opts.Output)
	return nil
}

// ensureWorkbook creates a workbook with default options when none is open.
func (d *Dispatcher) ensureWorkbook() error {
	if d.open {
		return nil
	}
	d.log.Debug().Msg("creating workbook implicitly")
	return d.create(models.WorkbookOptions{})
}

// ensureSheet returns the current sheet, adding one when the workbook has
// none.
func (d *Dispatcher) ensureSheet() (string, error) {
	if err := d.ensureWorkbook(); err != nil {
		return "", err
	}
	if name, ok := d.codec.CurrentSheet(); ok {
		return name, nil
	}
	d.log.Debug().Msg("adding sheet implicitly")
	return d.codec.AddSheet("")
}

func (d *Dispatcher) createWorkbook(args []json.RawMessage) error {
	var opts models.WorkbookOptions
	if err := arg(args, 0, &opts); err != nil {
		return err
	}
	return d.create(opts)
}

func (d *Dispatcher) addSheet(args []json.RawMessage) error {
	if err := d.ensureWorkbook(); err != nil {
		return err
	}
	var name string
	if err := arg(args, 0, &name); err != nil {
		return err
	}
	var settings *models.SheetSettings
	if err := arg(args, 1, &settings); err != nil {
		return err
	}
	if _, err := d.codec.AddSheet(name); err != nil {
		return err
	}
	if settings != nil {
		return d.codec.SetSheetSettings(nil, *settings)
	}
	return nil
}

func (d *Dispatcher) activateSheet(args []json.RawMessage) error {
	if err := d.ensureWorkbook(); err != nil {
		return err
	}
	var ref *models.SheetRef
	if err := arg(args, 0, &ref); err != nil {
		return err
	}
	if ref == nil {
		return errMissing("id")
	}
	return d.codec.ActivateSheet(*ref)
}

func (d *Dispatcher) setSheetSettings(args []json.RawMessage) error {
	if err := d.ensureWorkbook(); err != nil {
		return err
	}
	var ref *models.SheetRef
	if err := arg(args, 0, &ref); err != nil {
		return err
	}
	var settings models.SheetSettings
	if err := arg(args, 1, &settings); err != nil {
		return err
	}
	return d.codec.SetSheetSettings(ref, settings)
}

func (d *Dispatcher) write(args []json.RawMessage) error {
	row, col, rest, err := cellArgs(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 || isNull(rest[0]) {
		return nil
	}
	data, err := decodeValue(rest[0])
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	var ref models.FormatRef
	if err := arg(rest, 1, &ref); err != nil {
		return err
	}
	sheet, err := d.ensureSheet()
	if err != nil {
		return err
	}
	format, err := d.resolveFormat(ref)
	if err != nil {
		return err
	}
	if row == -1 {
		row = d.nextRow(sheet)
	}
	d.lastRow[sheet] = lastRow(row, data)
	return d.writeGrid(row, col, data, format)
}

// nextRow is the row after the last row written on sheet.
func (d *Dispatcher) nextRow(sheet string) int {
	last, ok := d.lastRow[sheet]
	if !ok {
		return 0
	}
	return last + 1
}

// lastRow is the last row writeGrid touches for data written at row. Each
// array element of data takes a row of its own; scalar elements stay on the
// current one.
func lastRow(row int, data any) int {
	list, ok := data.([]any)
	if !ok {
		return row
	}
	last, r := row, row
	for _, item := range list {
		last = r
		if _, nested := item.([]any); nested {
			r++
		}
	}
	return last
}

// writeGrid writes a scalar, a row or a list of rows. Array elements of data
// are rows starting at col; scalar elements continue the current row.
func (d *Dispatcher) writeGrid(row, col int, data any, format string) error {
	list, ok := data.([]any)
	if !ok {
		return d.writeCell(row, col, data, format)
	}
	r, c := row, col
	for _, item := range list {
		cells, ok := item.([]any)
		if !ok {
			if err := d.writeCell(r, c, item, format); err != nil {
				return err
			}
			c++
			continue
		}
		c = col
		for _, v := range cells {
			if err := d.writeCell(r, c, v, format); err != nil {
				return err
			}
			c++
		}
		r++
	}
	return nil
}

func (d *Dispatcher) writeCell(row, col int, v any, format string) error {
	if _, ok := v.([]any); ok {
		return fmt.Errorf("cell %s: arrays nest at most two levels", cellName(row, col))
	}
	if v == nil {
		return nil
	}
	if err := d.codec.Write(row, col, v, format); err != nil {
		return fmt.Errorf("cell %s: %w", cellName(row, col), err)
	}
	return nil
}

func (d *Dispatcher) format(args []json.RawMessage) error {
	if err := d.ensureWorkbook(); err != nil {
		return err
	}
	var name string
	if err := arg(args, 0, &name); err != nil {
		return err
	}
	if name == "" {
		return errMissing("name")
	}
	var f models.Format
	if err := arg(args, 1, &f); err != nil {
		return err
	}
	return d.codec.AddFormat(name, f)
}

// resolveFormat returns the codec name of ref, registering inline formats
// as untitled_format_N. Identical inline formats share one name.
func (d *Dispatcher) resolveFormat(ref models.FormatRef) (string, error) {
	switch {
	case ref.Inline != nil:
		key, err := json.Marshal(ref.Inline)
		if err != nil {
			return "", err
		}
		if name, ok := d.inline[string(key)]; ok {
			return name, nil
		}
		d.anon++
		name := fmt.Sprintf("untitled_format_%d", d.anon)
		if err := d.codec.AddFormat(name, *ref.Inline); err != nil {
			return "", err
		}
		d.inline[string(key)] = name
		return name, nil
	case ref.Name != "":
		if !d.codec.HasFormat(ref.Name) {
			return "", fmt.Errorf("%w: %q", codec.ErrUnknownFormat, ref.Name)
		}
		return ref.Name, nil
	}
	return "", nil
}

func (d *Dispatcher) mergeRange(args []json.RawMessage) error {
	var ref string
	if err := arg(args, 0, &ref); err != nil {
		return err
	}
	if ref == "" {
		return errMissing("range")
	}
	var data any
	if len(args) > 1 {
		v, err := decodeValue(args[1])
		if err != nil {
			return fmt.Errorf("data: %w", err)
		}
		if _, ok := v.([]any); ok {
			return errors.New("data: a merged range holds one value")
		}
		data = v
	}
	var fref models.FormatRef
	if err := arg(args, 2, &fref); err != nil {
		return err
	}
	if _, err := d.ensureSheet(); err != nil {
		return err
	}
	format, err := d.resolveFormat(fref)
	if err != nil {
		return err
	}
	return d.codec.MergeRange(ref, data, format)
}

func (d *Dispatcher) setRow(args []json.RawMessage) error {
	index, err := indexArg(args, 0, "index")
	if err != nil {
		return err
	}
	var s models.RowSettings
	if err := arg(args, 1, &s); err != nil {
		return err
	}
	if _, err := d.ensureSheet(); err != nil {
		return err
	}
	if s.Format.Name, err = d.resolveFormat(s.Format); err != nil {
		return err
	}
	s.Format.Inline = nil
	return d.codec.SetRow(index, s)
}

func (d *Dispatcher) setColumn(args []json.RawMessage) error {
	index, err := indexArg(args, 0, "index")
	if err != nil {
		return err
	}
	var s models.ColumnSettings
	if err := arg(args, 1, &s); err != nil {
		return err
	}
	if _, err := d.ensureSheet(); err != nil {
		return err
	}
	if s.Format.Name, err = d.resolveFormat(s.Format); err != nil {
		return err
	}
	s.Format.Inline = nil
	return d.codec.SetColumn(index, s)
}

// close saves the workbook. Commands after it fail with ErrClosed.
func (d *Dispatcher) close(_ []json.RawMessage) error {
	if !d.open {
		return nil
	}
	d.open, d.closed = false, true
	if err := d.codec.Save(d.opts.Output); err != nil {
		return err
	}
	d.log.Info().Str("output", d.opts.Output).Msg("workbook saved")
	d.emit(models.RecordClose, nil)
	return nil
}
