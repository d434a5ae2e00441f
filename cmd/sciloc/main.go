package main

import (
	"log"
	"os"

	"sciloc/internal/app"
	"sciloc/internal/config"
	"sciloc/internal/fetcher"
	"sciloc/internal/observability"
	"sciloc/internal/storage"
	"sciloc/internal/storage/mssql"
	"sciloc/internal/storage/sqlite"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := observability.NewLogger(
		cfg.Observability.LogPath,
		cfg.Observability.LogLevel,
		cfg.Observability.LogFormat,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("Run failed", "error", err.Error())
		_ = logger.Close()
		os.Exit(1)
	}
	_ = logger.Close()
}

func run(cfg *config.Config, logger *observability.Logger) error {
	geo, err := cfg.LoadGeo()
	if err != nil {
		return err
	}

	f, err := fetcher.New(cfg, logger.With("component", "fetcher"))
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close fetcher", "error", err.Error())
		}
	}()

	ledger, err := sqlite.Open(cfg.Paths.StatusDB, logger.With("component", "ledger"))
	if err != nil {
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Failed to close ledger", "error", err.Error())
		}
	}()

	// Выгрузка в MSSQL необязательна
	var records storage.RecordRepository
	if cfg.Storage.Driver == "mssql" {
		repo, err := mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger.With("component", "mssql"))
		if err != nil {
			return err
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Warn("Failed to close records repository", "error", err.Error())
			}
		}()
		records = repo
	}

	ctx, cancel := app.GracefulShutdown(logger)
	defer cancel()

	logger.Info("Starting sciloc", "listing_url", cfg.Source.ListingURL, "storage", cfg.Storage.Driver)

	return app.NewOrchestrator(cfg, logger, f, ledger, geo, records, os.Stdout).Run(ctx)
}
