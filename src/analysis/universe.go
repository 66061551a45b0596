package analysis

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"stock-screener/src/logger"
	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// Screener
// -----------------------------------------------------------------------------

// Screener runs the per-instrument transform over the whole universe and
// applies the cross-sectional ranker to the aggregated result.
type Screener struct {
	Transformer *Transformer
	Logger      *logger.Logger
	Parallelism int
}

// -----------------------------------------------------------------------------

func NewScreener(settings models.MAnalysisConfig, log *logger.Logger) *Screener {
	parallelism := settings.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Screener{
		Transformer: NewTransformer(settings),
		Logger:      log,
		Parallelism: parallelism,
	}
}

// -----------------------------------------------------------------------------

// ComputeUniverse transforms every instrument independently and in parallel;
// the transforms share no mutable state. A single instrument's failure drops
// that instrument with a warning, never the batch. The result is sorted by
// ticker so repeated runs over unchanged bars produce identical output.
func (s *Screener) ComputeUniverse(universe map[string][]models.MBar) ([]models.MSnapshot, int) {
	tickers := make([]string, 0, len(universe))
	for ticker := range universe {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var (
		mu      sync.Mutex
		snaps   []models.MSnapshot
		dropped int
	)

	var g errgroup.Group
	g.SetLimit(s.Parallelism)

	for _, ticker := range tickers {
		g.Go(func() error {
			snap, err := s.transformSafe(ticker, universe[ticker])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				dropped++
				s.Logger.Warning("Instrument %s dropped: %v", ticker, err)
				return nil
			}
			if snap != nil {
				snaps = append(snaps, *snap)
			}
			return nil
		})
	}
	g.Wait()

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Ticker < snaps[j].Ticker
	})

	return snaps, dropped
}

// -----------------------------------------------------------------------------

// transformSafe isolates panics from a single instrument's transform.
func (s *Screener) transformSafe(ticker string, bars []models.MBar) (snap *models.MSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = fmt.Errorf("panic while transforming %s: %v", ticker, r)
		}
	}()
	return s.Transformer.TransformSeries(ticker, bars)
}
