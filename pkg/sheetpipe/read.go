package sheetpipe

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/output"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/parser"
	"golang.org/x/sync/errgroup"
)

// input is one expanded command line argument: a matched file, or a pattern
// that matched nothing.
type input struct {
	path    string
	missing bool
}

// expandPatterns resolves glob patterns in order.
func expandPatterns(patterns []string) []input {
	var inputs []input
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil || len(matches) == 0 {
			inputs = append(inputs, input{path: p, missing: true})
			continue
		}
		for _, m := range matches {
			inputs = append(inputs, input{path: m})
		}
	}
	return inputs
}

// Read streams the records of every workbook matching patterns to sink.
// Failures opening a file, loading a sheet or reading a cell become error
// records; the returned error is only set when ctx is done or sink fails.
func Read(ctx context.Context, patterns []string, opts ReadOptions, sink output.Sink) error {
	inputs := expandPatterns(patterns)
	if opts.Jobs < 2 || len(inputs) < 2 {
		for _, in := range inputs {
			if err := readInput(ctx, in, opts, sink); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	recs := make([]*output.Recorder, len(inputs))
	done := make([]chan struct{}, len(inputs))
	for i := range inputs {
		recs[i] = &output.Recorder{}
		done[i] = make(chan struct{})
	}
	go func() {
		for i, in := range inputs {
			g.Go(func() error {
				defer close(done[i])
				return readInput(gctx, in, opts, recs[i])
			})
		}
	}()

	// Replay in input order as each file finishes.
	var replayErr error
	for i := range inputs {
		<-done[i]
		if replayErr == nil {
			replayErr = recs[i].Replay(sink)
		}
		recs[i] = nil
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return replayErr
}

func readInput(ctx context.Context, in input, opts ReadOptions, sink output.Sink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if in.missing {
		zerolog.Ctx(ctx).Warn().Str("pattern", in.path).Msg("no file matches")
		return emitError(sink, models.ErrorInfo{ID: models.ErrIDFileNotFound, File: in.path}, ErrFileNotFound)
	}
	return readFile(ctx, in.path, opts, sink)
}

func readFile(ctx context.Context, path string, opts ReadOptions, sink output.Sink) error {
	log := zerolog.Ctx(ctx).With().Str("file", path).Logger()

	wb, err := parser.Open(path, parser.OpenOptions{Charset: opts.Charset})
	if err != nil {
		log.Debug().Err(err).Msg("open failed")
		return emitError(sink, models.ErrorInfo{ID: models.ErrIDOpenWorkbook, File: path}, err)
	}
	defer wb.Close()

	names := wb.SheetNames()
	if err := sink.Emit(models.RecordWorkbook, models.WorkbookInfo{File: path, Sheets: names, User: wb.Author()}); err != nil {
		return err
	}
	log.Debug().Int("sheets", len(names)).Msg("workbook opened")
	if opts.MetaOnly {
		return nil
	}

	for _, sel := range selectSheets(names, opts.Sheets) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sel.err != nil {
			if err := emitError(sink, sel.errorInfo(models.ErrIDLoadSheet), sel.err); err != nil {
				return err
			}
			continue
		}
		sheet, err := wb.Sheet(sel.index)
		if err != nil {
			log.Debug().Err(err).Int("sheet", sel.index).Msg("load failed")
			if err := emitError(sink, sel.errorInfo(models.ErrIDLoadSheet), NewSheetError(names[sel.index], "load", err)); err != nil {
				return err
			}
			continue
		}
		if err := dumpSheet(ctx, sel.index, sheet, opts.MaxRows, sink); err != nil {
			return err
		}
	}
	return nil
}

// dumpSheet emits the sheet record and every cell of the rows x columns grid.
func dumpSheet(ctx context.Context, index int, sheet parser.Sheet, maxRows int, sink output.Sink) error {
	rows, cols := sheet.Dimensions()
	info := models.SheetInfo{
		Index:      index,
		Name:       sheet.Name(),
		Rows:       rows,
		Columns:    cols,
		Visibility: sheet.Visibility(),
	}
	if err := sink.Emit(models.RecordSheet, info); err != nil {
		return err
	}
	if maxRows > 0 && maxRows < rows {
		rows = maxRows
	}
	for r := 0; r < rows; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for c := 0; c < cols; c++ {
			v, err := sheet.Cell(r, c)
			if err != nil {
				r, c := r, c
				ei := models.ErrorInfo{ID: models.ErrIDDumpSheet, SheetName: info.Name, Row: &r, Column: &c}
				if err := emitError(sink, ei, NewSheetError(info.Name, "dump", err)); err != nil {
					return err
				}
				continue
			}
			if err := sink.Emit(models.RecordCell, models.Cell{R: r, C: c, A: parser.CellName(r, c), V: v}); err != nil {
				return err
			}
		}
	}
	return nil
}

func emitError(sink output.Sink, info models.ErrorInfo, err error) error {
	info.Exception = exceptionName(err)
	info.Details = err.Error()
	return sink.Emit(models.RecordError, info)
}

// sheetSelection is one resolved sheet selector.
type sheetSelection struct {
	index int
	// selector is the --sheet value the selection came from, empty when
	// every sheet is read.
	selector string
	err      error
}

// errorInfo names the sheet the way it was asked for: the selector text
// when one was given, the index otherwise.
func (s sheetSelection) errorInfo(id string) models.ErrorInfo {
	if s.selector != "" {
		return models.ErrorInfo{ID: id, SheetName: s.selector}
	}
	index := s.index
	return models.ErrorInfo{ID: id, SheetIndex: &index}
}

// selectSheets resolves selectors against the workbook sheet names. A
// selector made only of digits is a 0-based index; anything else, "-1"
// included, is a name.
func selectSheets(names, selectors []string) []sheetSelection {
	if len(selectors) == 0 {
		sel := make([]sheetSelection, len(names))
		for i := range names {
			sel[i] = sheetSelection{index: i}
		}
		return sel
	}
	sel := make([]sheetSelection, 0, len(selectors))
	for _, s := range selectors {
		ss := sheetSelection{index: -1, selector: s}
		if isDigits(s) {
			if i, err := strconv.Atoi(s); err == nil && i < len(names) {
				ss.index = i
			}
		} else {
			for i, n := range names {
				if n == s {
					ss.index = i
					break
				}
			}
		}
		if ss.index < 0 {
			ss.err = NewSheetError(s, "load", ErrUnknownSheet)
		}
		sel = append(sel, ss)
	}
	return sel
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
