package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/output"
	"golang.org/x/text/encoding/htmlindex"
)

type readFlags struct {
	meta    bool
	sheets  []string
	rows    int
	charset string
	jobs    int
}

func newReadCmd() *cobra.Command {
	var flags readFlags
	cmd := &cobra.Command{
		Use:   "read [flags] file...",
		Short: "Stream workbook contents as JSON records",
		Long: `read emits a "w" record per workbook, an "s" record per sheet and a "c"
record per cell. Arguments are glob patterns. Failures are emitted as "err"
records and reading continues.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, args, &flags)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&flags.meta, "meta", "m", false, "Emit only the workbook records")
	f.StringArrayVarP(&flags.sheets, "sheet", "s", nil, "Sheet to read, by name or 0-based index (repeatable)")
	f.IntVarP(&flags.rows, "rows", "r", 0, "Maximum rows per sheet, 0 for all")
	f.StringVar(&flags.charset, "charset", "", "Code page of legacy xls text")
	f.IntVarP(&flags.jobs, "jobs", "j", 1, "Number of files read concurrently")
	return cmd
}

func runRead(cmd *cobra.Command, args []string, flags *readFlags) error {
	cfg := configFrom(cmd.Context())
	f := cmd.Flags()

	opts := sheetpipe.DefaultReadOptions()
	opts.MetaOnly = flags.meta
	opts.Sheets = flags.sheets
	opts.MaxRows = pick(f, "rows", flags.rows, cfg.Read.MaxRows)
	opts.Charset = pick(f, "charset", flags.charset, cfg.Read.Charset)
	opts.Jobs = pick(f, "jobs", flags.jobs, cfg.Read.Jobs)

	if opts.MaxRows < 0 {
		return fmt.Errorf("invalid rows: %d", opts.MaxRows)
	}
	if opts.Charset != "" {
		if _, err := htmlindex.Get(opts.Charset); err != nil {
			return fmt.Errorf("invalid charset %q: %w", opts.Charset, err)
		}
	}

	out := output.NewEmitter(cmd.OutOrStdout())
	err := sheetpipe.Read(cmd.Context(), args, opts, out)
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	return err
}
