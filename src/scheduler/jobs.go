package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"stock-screener/src/engine"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"
	"stock-screener/src/storage"
	"stock-screener/src/utils"
)

// -----------------------------------------------------------------------------

// Scheduler manages the daily ingest/compute cycle and the weekly backup.
type Scheduler struct {
	cron          *gocron.Scheduler
	Config        *models.MConfig
	Engine        *engine.Engine
	Source        interfaces.IBarSource
	MasterFactory interfaces.StoreFactory
	Calendar      *utils.TradingCalendar
	Logger        *logger.Logger
}

// -----------------------------------------------------------------------------

func NewScheduler(
	cfg *models.MConfig,
	eng *engine.Engine,
	source interfaces.IBarSource,
	masterFactory interfaces.StoreFactory,
	log *logger.Logger,
) *Scheduler {
	loc := time.UTC
	if cfg.Schedule.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Schedule.Timezone); err == nil {
			loc = l
		} else {
			log.Warning("Unknown schedule timezone '%s', using UTC", cfg.Schedule.Timezone)
		}
	}

	symbol := ""
	if len(cfg.Ingest.Sources) > 0 && len(cfg.Ingest.Sources[0].Symbols) > 0 {
		symbol = cfg.Ingest.Sources[0].Symbols[0]
	}

	return &Scheduler{
		cron:          gocron.NewScheduler(loc),
		Config:        cfg,
		Engine:        eng,
		Source:        source,
		MasterFactory: masterFactory,
		Calendar:      utils.GetCalendar(symbol, log),
		Logger:        log,
	}
}

// -----------------------------------------------------------------------------

// Start registers and starts all scheduled jobs
func (s *Scheduler) Start() {
	s.Logger.Info("Starting scheduler...")

	// Ingest daily bars after market close, trading days only
	s.cron.Every(1).Day().At(s.Config.Schedule.IngestAt).Do(func() {
		if !s.Calendar.IsTradingDay(time.Now()) {
			s.Logger.Info("Skipping ingest: not a trading day")
			return
		}
		s.RunIngest()
	})

	// Recompute the published table after ingest
	s.cron.Every(1).Day().At(s.Config.Schedule.ComputeAt).Do(func() {
		if err := s.Engine.EnsureComputedTable(); err != nil {
			s.Logger.Error("Scheduled compute failed: %v", err)
		}
	})

	// Weekly backup of the master store
	if s.Config.Storage.BackupDir != "" && s.Config.Storage.MasterDBPath != "" {
		s.cron.Every(1).Week().Sunday().At(s.Config.Schedule.BackupAt).Do(func() {
			_, err := storage.BackupStore(
				s.Config.Storage.MasterDBPath,
				s.Config.Storage.BackupDir,
				s.Config.Storage.BackupKeep,
				s.Logger,
			)
			if err != nil {
				s.Logger.Error("Backup failed: %v", err)
			}
		})
	}

	s.cron.StartAsync()
	s.Logger.Info("Scheduler started successfully")
}

// -----------------------------------------------------------------------------

// RunIngest fetches daily bars and appends them to the master store.
func (s *Scheduler) RunIngest() {
	bars, run, err := s.Source.FetchDailyBars()
	if err != nil {
		s.Logger.Error("Ingest failed: %v", err)
		return
	}

	store, err := s.MasterFactory()
	if err != nil {
		s.Logger.Error("Ingest store unavailable: %v", err)
		return
	}
	defer store.Close()

	total := 0
	for symbol, symbolBars := range bars {
		if err := store.InsertBarsBulk(symbolBars); err != nil {
			s.Logger.Error("Failed to insert bars for %s: %v", symbol, err)
			continue
		}
		total += len(symbolBars)
	}

	if err := store.SaveIngestRun(run); err != nil {
		s.Logger.Warning("Failed to save ingest metadata: %v", err)
	}

	s.Logger.Info("Ingest complete: %d bars across %d symbols (%d failed)",
		total, run.TickersSuccess, run.TickersFailed)
}

// -----------------------------------------------------------------------------

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.Logger.Info("Scheduler stopped")
}
