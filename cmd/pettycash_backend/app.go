package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/petty_cash_ledger/internal/adapters/events"
	"github.com/SscSPs/petty_cash_ledger/internal/adapters/receipts"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/core/services"
	"github.com/SscSPs/petty_cash_ledger/internal/platform/config"
	"github.com/SscSPs/petty_cash_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/petty_cash_ledger/internal/repositories/memory"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/clock"
	"github.com/SscSPs/petty_cash_ledger/pkg/database"
)

// app bundles what every subcommand needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	services *portssvc.ServiceContainer
	close    func()
}

// loadConfig loads configuration and installs the structured logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var repos portsrepo.RepositoryProvider
	switch cfg.StorageBackend {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on exit")
		repos = memory.NewStore().Provider()
	default:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, fmt.Errorf("initialize database pool: %w", err)
		}
		closers = append(closers, func() { database.ClosePgxPool(dbPool) })
		repos = pgsql.NewRepositoryProvider(dbPool)
	}

	receiptStore, err := newReceiptStore(ctx, cfg)
	if err != nil {
		closeAll()
		return nil, err
	}

	var opts []services.ContainerOption
	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("initialize ledger event publisher: %w", err)
		}
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to close ledger event publisher", slog.String("error", err.Error()))
			}
		})
		opts = append(opts, services.WithEventPublisher(publisher))
		logger.Info("Publishing ledger events", slog.String("exchange", cfg.AMQPExchange))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		services: services.NewServiceContainer(cfg, repos, receiptStore, clock.System{}, opts...),
		close:    closeAll,
	}, nil
}

func newReceiptStore(ctx context.Context, cfg *config.Config) (portssvc.ReceiptStore, error) {
	if cfg.ReceiptBackend == config.ReceiptBackendGCS {
		store, err := receipts.NewGCSStore(ctx, receipts.GCSConfig{
			Bucket:          cfg.GCSBucket,
			Prefix:          "receipts",
			CredentialsFile: cfg.GCSCredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize GCS receipt store: %w", err)
		}
		return store, nil
	}
	store, err := receipts.NewDiskStore(cfg.ReceiptDir, cfg.ReceiptBaseURL)
	if err != nil {
		return nil, fmt.Errorf("initialize disk receipt store: %w", err)
	}
	return store, nil
}
