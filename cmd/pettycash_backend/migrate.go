package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/petty_cash_ledger/internal/repositories/database/pgsql"
	"github.com/google/subcommands"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations and exit" }
func (*migrateCmd) Usage() string {
	return `migrate

  Applies every pending migration to the database at PGSQL_URL.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if cfg.DatabaseURL == "" {
		logger.Error("PGSQL_URL is required to run migrations")
		return subcommands.ExitUsageError
	}
	if err := pgsql.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
