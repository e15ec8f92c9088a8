// Package cli holds the start-up steps shared by cmd/cardspend and
// cmd/cardspend-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"cardspend/internal/config"
	"cardspend/internal/log"
	"cardspend/internal/sheets"
	gsheet "cardspend/internal/sheets/google"
	"cardspend/internal/sheets/memory"
	"cardspend/internal/storage"
)

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Bootstrap loads .env and the configuration, builds the logger for
// component and validates the configuration. It exits the process when any
// step fails.
func Bootstrap(component string) (*config.Config, zerolog.Logger) {
	LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		boot := log.New(log.Config{Level: "info", Component: component})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := NewLogger(cfg, component)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	return cfg, logger
}

// NewLogger builds the process logger from the configuration.
func NewLogger(cfg *config.Config, component string) zerolog.Logger {
	return log.New(log.Config{
		Level:     cfg.LogLevel,
		Pretty:    cfg.LogPretty,
		Component: component,
		Writer:    os.Stdout,
	})
}

// InitSQLite opens the repository or exits the process on failure.
func InitSQLite(logger zerolog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", dbPath).Msg("Failed to initialize SQLite repository")
	}
	return repo
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Str(log.FieldOperation, log.OpShutdown).Msg("Shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// NewExporter builds the statement exporter selected by the configuration.
// It returns a nil exporter when export is disabled.
func NewExporter(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (sheets.StatementExporter, error) {
	switch mode := cfg.ExportMode(); mode {
	case config.ExportSheets:
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("google sheets exporter: %w", err)
		}
		logger.Info().Str("spreadsheet_id", cfg.GoogleSpreadsheetID).Msg("Statement export to Google Sheets enabled")
		return client, nil
	case config.ExportMemory:
		logger.Info().Msg("Statement export kept in memory")
		return memory.New(), nil
	case config.ExportNone:
		logger.Info().Msg("Statement export disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown export backend %q", mode)
	}
}
