package main

import (
	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/codec"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/output"
)

type writeFlags struct {
	module            string
	outputPath        string
	format            string
	defaultDateFormat string
}

func newWriteCmd() *cobra.Command {
	var flags writeFlags
	cmd := &cobra.Command{
		Use:   "write [flags]",
		Short: "Build a workbook from JSON commands read on stdin",
		Long: `write reads one command per line, ["method", args...], and applies it to a
new workbook. Methods: create_workbook, add_sheet, activate_sheet,
set_sheet_settings, write, format, merge_range, set_row, set_column, close.
The workbook is saved on close or at the end of input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWrite(cmd, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.module, "module", "m", string(codec.ModuleExcelize), "Writer module: excelize or tealeg")
	f.StringVarP(&flags.outputPath, "output", "o", "", "Output file path (default: a new file in the temporary directory)")
	f.StringVar(&flags.format, "format", string(sheetpipe.FormatXLSX), "Output format")
	f.StringVar(&flags.defaultDateFormat, "default-date-format", sheetpipe.DefaultDateFormat, "Number format of date cells")
	return cmd
}

func runWrite(cmd *cobra.Command, flags *writeFlags) error {
	cfg := configFrom(cmd.Context())
	f := cmd.Flags()

	opts := sheetpipe.DefaultWriteOptions()
	opts.Output = flags.outputPath
	opts.Module = codec.Module(pick(f, "module", flags.module, cfg.Write.Module))
	opts.Format = sheetpipe.Format(pick(f, "format", flags.format, cfg.Write.Format))
	opts.DefaultDateFormat = pick(f, "default-date-format", flags.defaultDateFormat, cfg.Write.DefaultDateFormat)

	out := output.LineFlusher{Emitter: output.NewEmitter(cmd.OutOrStdout())}
	return sheetpipe.Write(cmd.Context(), cmd.InOrStdin(), opts, out)
}
