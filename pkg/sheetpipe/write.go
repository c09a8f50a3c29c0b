package sheetpipe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/codec"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/dispatch"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/output"
)

// Write runs the writer commands read from r and saves the resulting
// workbook. Command failures are reported to sink and do not stop the
// stream. The returned error is set for invalid options, a failing reader or
// sink, a done ctx, or a failed save.
func Write(ctx context.Context, r io.Reader, opts WriteOptions, sink output.Sink) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	log := zerolog.Ctx(ctx)

	path := opts.Output
	if path == "" {
		var err error
		if path, err = tempOutput(); err != nil {
			return err
		}
		log.Debug().Str("output", path).Msg("no output path given")
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("output path: %w", err)
	}

	c, err := codec.New(opts.Module, log.With().Str("module", string(opts.Module)).Logger())
	if err != nil {
		return err
	}
	dateFormat := opts.DefaultDateFormat
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	d := dispatch.New(c, sink, dispatch.Options{Output: path, DefaultDateFormat: dateFormat}, *log)
	return d.Run(ctx, r)
}

// tempOutput reserves a new .xlsx path in the system temporary directory.
func tempOutput() (string, error) {
	f, err := os.CreateTemp("", "sheetpipe-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("temporary output: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}
