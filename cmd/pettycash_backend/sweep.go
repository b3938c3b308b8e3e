package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/petty_cash_ledger/internal/core/services"
	"github.com/google/subcommands"
)

type sweepCmd struct {
	limit int
}

func (*sweepCmd) Name() string     { return "sweep-receipts" }
func (*sweepCmd) Synopsis() string { return "retry releasing receipts left behind by earlier failures" }
func (*sweepCmd) Usage() string {
	return `sweep-receipts [-limit N]

  Makes one pass over the pending receipt cleanups, oldest first.
`
}

func (c *sweepCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", services.DefaultSweepLimit, "Maximum number of cleanups to attempt.")
}

func (c *sweepCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	result, err := a.services.ReceiptCleanup.SweepPendingCleanups(ctx, c.limit)
	if err != nil {
		a.logger.Error("Receipt cleanup sweep failed", slog.String("error", err.Error()))
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stdout, "attempted=%d released=%d failed=%d\n", result.Attempted, result.Released, result.Failed)
	if result.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
