package main

import (
	"flag"
	"fmt"
	"os"

	"stock-screener/src/config"
	"stock-screener/src/engine"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/storage"
)

// -----------------------------------------------------------------------------

// One-shot runner: sync, compute, rank, publish, exit. Suited to cron setups
// that do not want the long-lived service.
func main() {

	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name+"-compute")

	factory := interfaces.StoreFactory(func() (interfaces.IBarStore, error) {
		var store interfaces.IBarStore
		switch cfg.Storage.DBType {
		case "postgres":
			store = storage.NewPostgresStore(cfg.Storage.DBConnectionString, appLogger)
		default:
			store = storage.NewSQLiteStore(cfg.Storage.WorkingDBPath, appLogger)
		}
		if err := store.Initialize(); err != nil {
			return nil, err
		}
		return store, nil
	})

	eng := engine.NewEngine(cfg.MConfig, factory, appLogger)

	if err := eng.EnsureComputedTable(); err != nil {
		appLogger.Error("Compute run failed: %v", err)
		os.Exit(1)
	}
}
