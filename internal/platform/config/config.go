package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Receipt backends.
const (
	ReceiptBackendDisk = "disk"
	ReceiptBackendGCS  = "gcs"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	StorageBackend string
	LogLevel       slog.Level

	JWTSecret string
	JWTIssuer string

	// Ledger
	LedgerTimezone string
	LedgerLocation *time.Location
	LedgerCurrency string

	// Receipts
	ReceiptBackend         string
	ReceiptDir             string
	ReceiptBaseURL         string
	GCSBucket              string
	GCSCredentialsFile     string
	ReceiptCleanupInterval time.Duration

	// Ledger events; disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string

	RateLimit          string
	CORSAllowedOrigins []string
}

const (
	defaultPort            = "8080"
	defaultJWTSecret       = "a-very-secret-key-should-be-longer-and-random"
	defaultJWTIssuer       = "petty-cash-ledger"
	defaultLedgerTimezone  = "Asia/Jakarta"
	defaultLedgerCurrency  = "IDR"
	defaultReceiptDir      = "./data/receipts"
	defaultReceiptBaseURL  = "/receipts/"
	defaultCleanupInterval = 5 * time.Minute
	defaultRateLimit       = "300-M"
	defaultAMQPExchange    = "petty_cash.ledger"
)

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", defaultPort)
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STORAGE_BACKEND", StoragePostgres)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", defaultJWTIssuer)
	viper.SetDefault("LEDGER_TIMEZONE", defaultLedgerTimezone)
	viper.SetDefault("LEDGER_CURRENCY", defaultLedgerCurrency)
	viper.SetDefault("RECEIPT_BACKEND", ReceiptBackendDisk)
	viper.SetDefault("RECEIPT_DIR", defaultReceiptDir)
	viper.SetDefault("RECEIPT_BASE_URL", defaultReceiptBaseURL)
	viper.SetDefault("GCS_BUCKET", "")
	viper.SetDefault("GCS_CREDENTIALS_FILE", "")
	viper.SetDefault("RECEIPT_CLEANUP_INTERVAL", defaultCleanupInterval.String())
	viper.SetDefault("RATE_LIMIT", defaultRateLimit)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", defaultAMQPExchange)

	// This allows overriding defaults with .env file values, which can then be overridden by actual environment variables.
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        viper.GetString("PGSQL_URL"),
		Port:               viper.GetString("PORT"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		JWTIssuer:          viper.GetString("JWT_ISSUER"),
		ReceiptDir:         viper.GetString("RECEIPT_DIR"),
		ReceiptBaseURL:     viper.GetString("RECEIPT_BASE_URL"),
		GCSBucket:          viper.GetString("GCS_BUCKET"),
		GCSCredentialsFile: viper.GetString("GCS_CREDENTIALS_FILE"),
		CORSAllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		AMQPURL:            viper.GetString("AMQP_URL"),
		AMQPExchange:       viper.GetString("AMQP_EXCHANGE"),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
		slog.Warn("PORT not set. Using default.", slog.String("port", cfg.Port))
	}

	cfg.StorageBackend = strings.ToLower(viper.GetString("STORAGE_BACKEND"))
	if cfg.StorageBackend != StoragePostgres && cfg.StorageBackend != StorageMemory {
		slog.Warn("Invalid value for STORAGE_BACKEND. Defaulting to postgres.", slog.String("value", cfg.StorageBackend))
		cfg.StorageBackend = StoragePostgres
	}
	if cfg.StorageBackend == StoragePostgres && cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set.")
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(viper.GetString("LOG_LEVEL"))); err != nil {
		slog.Warn("Invalid value for LOG_LEVEL. Defaulting to info.", slog.String("value", viper.GetString("LOG_LEVEL")))
		cfg.LogLevel = slog.LevelInfo
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		slog.Warn("JWT_SECRET not set. Using default insecure key.")
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = defaultJWTIssuer
	}

	cfg.LedgerTimezone = viper.GetString("LEDGER_TIMEZONE")
	loc, err := time.LoadLocation(cfg.LedgerTimezone)
	if err != nil {
		slog.Warn("Invalid value for LEDGER_TIMEZONE. Defaulting.", slog.String("value", cfg.LedgerTimezone), slog.String("default", defaultLedgerTimezone))
		cfg.LedgerTimezone = defaultLedgerTimezone
		if loc, err = time.LoadLocation(defaultLedgerTimezone); err != nil {
			loc = time.UTC
		}
	}
	cfg.LedgerLocation = loc

	cfg.LedgerCurrency = strings.ToUpper(viper.GetString("LEDGER_CURRENCY"))
	if cfg.LedgerCurrency == "" {
		cfg.LedgerCurrency = defaultLedgerCurrency
	}

	cfg.ReceiptBackend = strings.ToLower(viper.GetString("RECEIPT_BACKEND"))
	if cfg.ReceiptBackend != ReceiptBackendDisk && cfg.ReceiptBackend != ReceiptBackendGCS {
		slog.Warn("Invalid value for RECEIPT_BACKEND. Defaulting to disk.", slog.String("value", cfg.ReceiptBackend))
		cfg.ReceiptBackend = ReceiptBackendDisk
	}
	if cfg.ReceiptBackend == ReceiptBackendGCS && cfg.GCSBucket == "" {
		slog.Warn("GCS_BUCKET not set. Falling back to disk receipts.")
		cfg.ReceiptBackend = ReceiptBackendDisk
	}

	intervalStr := viper.GetString("RECEIPT_CLEANUP_INTERVAL")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil || interval <= 0 {
		interval = defaultCleanupInterval
		slog.Warn("Invalid value for RECEIPT_CLEANUP_INTERVAL. Defaulting.", slog.String("value", intervalStr), slog.String("default", interval.String()))
	}
	cfg.ReceiptCleanupInterval = interval

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if _, err := limiter.NewRateFromFormatted(cfg.RateLimit); err != nil {
		slog.Warn("Invalid value for RATE_LIMIT. Defaulting.", slog.String("value", cfg.RateLimit), slog.String("default", defaultRateLimit))
		cfg.RateLimit = defaultRateLimit
	}

	if cfg.AMQPExchange == "" {
		cfg.AMQPExchange = defaultAMQPExchange
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
