package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

type reportCmd struct {
	reportFlags
	raw   bool
	width int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display a period report in the terminal" }
func (*reportCmd) Usage() string {
	return `report -owner <id> [-admin [-ledger <id>]] [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-category <id>] [-raw]

  Shows the summary, breakdowns and detail lines of a report.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.BoolVar(&c.raw, "raw", false, "Print the Markdown source instead of rendering it.")
	f.IntVar(&c.width, "width", 120, "Word wrap width of the rendered output.")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	viewer, filter, err := c.resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	data, _, err := a.services.Reporting.Export(ctx, viewer, filter, domain.ExportMarkdown)
	if err != nil {
		a.logger.Error("Failed to build report", slog.String("error", err.Error()))
		return subcommands.ExitFailure
	}

	out, err := renderMarkdown(string(data), c.raw, c.width)
	if err != nil {
		a.logger.Error("Failed to render report", slog.String("error", err.Error()))
		return subcommands.ExitFailure
	}
	fmt.Fprint(os.Stdout, out)
	return subcommands.ExitSuccess
}

// renderMarkdown styles Markdown for the terminal unless raw output is asked for.
func renderMarkdown(src string, raw bool, width int) (string, error) {
	if raw {
		return src, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	return r.Render(src)
}
