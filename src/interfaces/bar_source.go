package interfaces

import "stock-screener/src/models"

// -----------------------------------------------------------------------------
// IBarSource interface for fetching daily bars from an external provider.
// -----------------------------------------------------------------------------

type IBarSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchDailyBars retrieves daily bars for every configured symbol.
	// Per-symbol failures are isolated: the map holds whatever succeeded and
	// the run metadata carries the failure count.
	FetchDailyBars() (map[string][]models.MBar, models.MIngestRun, error)

	// -----------------------------------------------------------------------------

	// UpdateSymbols updates the list of symbols being ingested
	UpdateSymbols(symbols []string) error
}

// -----------------------------------------------------------------------------

// INetworkManager performs HTTP GETs with retry and backoff.
type INetworkManager interface {
	Get(url string, params map[string]string) ([]byte, error)
}

// -----------------------------------------------------------------------------

// IPublishNotifier receives one event after each successful compute run.
type IPublishNotifier interface {
	NotifyPublished(event models.MPublishEvent)
}
