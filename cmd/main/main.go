package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-screener/src/config"
	"stock-screener/src/data_source/yahoo"
	"stock-screener/src/engine"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/network"
	"stock-screener/src/scheduler"
	"stock-screener/src/server"
	"stock-screener/src/storage"
)

// -----------------------------------------------------------------------------

// storeFactory builds a factory opening a fresh handle on the given database.
// Fresh handles matter for the file-backed store: the working file may be
// replaced by a sync between runs, and a held connection would pin the old
// inode.
func storeFactory(dbType, path, connString string, log *logger.Logger) interfaces.StoreFactory {
	return func() (interfaces.IBarStore, error) {
		var store interfaces.IBarStore
		switch dbType {
		case "postgres":
			store = storage.NewPostgresStore(connString, log)
		default:
			store = storage.NewSQLiteStore(path, log)
		}
		if err := store.Initialize(); err != nil {
			return nil, err
		}
		return store, nil
	}
}

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// Store factories: the working store serves reads and the published
	// table, the master store receives ingested bars
	workingFactory := storeFactory(
		cfg.Storage.DBType,
		cfg.Storage.WorkingDBPath,
		cfg.Storage.DBConnectionString,
		appLogger,
	)
	// The master store is created on first use so ingest works on a fresh
	// install; the working store stays strict
	masterFactory := workingFactory
	if cfg.Storage.DBType == "sqlite" && cfg.Storage.MasterDBPath != "" {
		masterFactory = func() (interfaces.IBarStore, error) {
			store := storage.NewWritableSQLiteStore(cfg.Storage.MasterDBPath, appLogger)
			if err := store.Initialize(); err != nil {
				return nil, err
			}
			return store, nil
		}
	}

	// Compute engine
	eng := engine.NewEngine(cfg.MConfig, workingFactory, appLogger)

	// Data source
	var source interfaces.IBarSource
	if len(cfg.Ingest.Sources) > 0 {
		netManager := network.NewNetworkManager(cfg.MConfig, appLogger)
		source = yahoo.NewYahooDailySource(cfg.MConfig, cfg.Ingest.Sources[0], netManager)
	} else {
		appLogger.Warning("No data sources configured, ingest disabled")
	}

	// HTTP/WebSocket server, wired as the engine's publish notifier
	srv := server.NewScreenerServer(cfg.MConfig, eng, workingFactory, appLogger)
	eng.Notifier = srv

	// Initial compute so the table is fresh before any scheduled run
	if err := eng.EnsureComputedTable(); err != nil {
		appLogger.Error("Initial compute failed: %v", err)
	}

	// Scheduler: daily ingest + compute, weekly backup
	var sched *scheduler.Scheduler
	if source != nil && cfg.Schedule.Enabled {
		sched = scheduler.NewScheduler(cfg.MConfig, eng, source, masterFactory, appLogger)
		sched.Start()
	}

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	if sched != nil {
		sched.Stop()
	}
}
