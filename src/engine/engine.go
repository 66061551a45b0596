package engine

import (
	"sync"
	"time"

	"stock-screener/src/analysis"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"
	"stock-screener/src/storage"
)

// -----------------------------------------------------------------------------
// Engine
// -----------------------------------------------------------------------------

// Engine sequences one compute run: freshness sync, bar read, per-instrument
// transforms, cross-sectional rank, atomic publish. It is the only writer of
// the computed table. A run either publishes a complete table or fails
// before publishing, leaving the previous snapshot intact.
type Engine struct {
	Config   *models.MConfig
	Factory  interfaces.StoreFactory
	Screener *analysis.Screener
	Logger   *logger.Logger
	Notifier interfaces.IPublishNotifier

	// Serializes the scheduler and HTTP trigger paths within this process.
	// Cross-process serialization is the caller's responsibility: the file
	// sync step races under concurrent runs.
	mu sync.Mutex
}

// -----------------------------------------------------------------------------

func NewEngine(cfg *models.MConfig, factory interfaces.StoreFactory, log *logger.Logger) *Engine {
	return &Engine{
		Config:   cfg,
		Factory:  factory,
		Screener: analysis.NewScreener(cfg.Analysis, log),
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// EnsureComputedTable is the single entry point. It is idempotent: two runs
// over unchanged bars publish identical values. Only fatal conditions (store
// missing or unopenable, publish failure) surface as errors; everything
// per-instrument is absorbed as Missing fields or dropped rows.
func (e *Engine) EnsureComputedTable() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	// Freshness sync only applies to file-backed stores
	if e.Config.Storage.DBType == "sqlite" && e.Config.Storage.MasterDBPath != "" {
		if _, err := storage.SyncMasterToWorking(
			e.Config.Storage.MasterDBPath,
			e.Config.Storage.WorkingDBPath,
			e.Logger,
		); err != nil {
			return err
		}
	}

	store, err := e.Factory()
	if err != nil {
		return err
	}
	defer store.Close()

	universe, err := store.ReadAllBars()
	if err != nil {
		return err
	}

	snaps, dropped := e.Screener.ComputeUniverse(universe)
	basis := e.Screener.RankUniverse(snaps)

	if err := store.PublishSnapshots(snaps); err != nil {
		return err
	}

	elapsed := time.Since(start)
	e.Logger.Info("Published %d snapshots (basis=%s, dropped=%d) in %v", len(snaps), basis, dropped, elapsed)

	if e.Notifier != nil {
		e.Notifier.NotifyPublished(models.MPublishEvent{
			Type:           "PUBLISH",
			Rows:           len(snaps),
			AsOf:           latestDate(snaps),
			DurationMillis: elapsed.Milliseconds(),
			PublishedAt:    time.Now().Unix(),
			Basis:          basis,
			Dropped:        dropped,
			Universe:       len(universe),
		})
	}

	return nil
}

// -----------------------------------------------------------------------------

func latestDate(snaps []models.MSnapshot) string {
	latest := ""
	for i := range snaps {
		if snaps[i].Date > latest {
			latest = snaps[i].Date
		}
	}
	return latest
}
