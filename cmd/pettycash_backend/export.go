package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/SscSPs/petty_cash_ledger/internal/dto"
	"github.com/google/subcommands"
)

type exportCmd struct {
	reportFlags
	format string
	out    string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write a period report as CSV, XLSX or Markdown" }
func (*exportCmd) Usage() string {
	return `export -owner <id> [-admin [-ledger <id>]] [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-category <id>] [-format csv|xlsx|md] [-o <file>]

  Renders the report the given owner would download from the API. With -admin the
  report covers every ledger, or only the one named by -ledger. Output goes to
  stdout unless -o is set.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.format, "format", "csv", "Document format: csv, xlsx or md.")
	f.StringVar(&c.out, "o", "", "Write to this file instead of stdout.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	viewer, filter, err := c.resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		return subcommands.ExitUsageError
	}
	format, err := dto.ParseExportFormat(c.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	data, filename, err := a.services.Reporting.Export(ctx, viewer, filter, format)
	if err != nil {
		a.logger.Error("Failed to export report", slog.String("error", err.Error()))
		return subcommands.ExitFailure
	}

	var w io.Writer = os.Stdout
	if c.out != "" {
		f, err := os.Create(c.out)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(data); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a.logger.Info("Report exported", slog.String("filename", filename), slog.Int("bytes", len(data)))
	return subcommands.ExitSuccess
}
