package interfaces

import "stock-screener/src/models"

// -----------------------------------------------------------------------------
// IBarStore defines the contract for the backing store: raw daily bars in,
// computed snapshots out.
// -----------------------------------------------------------------------------

type IBarStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the schema (raw_prices, computed, metadata).
	Initialize() error

	// -----------------------------------------------------------------------------

	// ReadAllBars returns every bar grouped by ticker, each series sorted by
	// date ascending. Grouping and sorting are done here, never assumed from
	// storage row order.
	ReadAllBars() (map[string][]models.MBar, error)

	// -----------------------------------------------------------------------------

	// InsertBarsBulk inserts bars, silently skipping (date, ticker) duplicates.
	InsertBarsBulk(bars []models.MBar) error

	// -----------------------------------------------------------------------------

	// PublishSnapshots replaces the entire computed table in one transaction.
	// An empty slice publishes an empty table.
	PublishSnapshots(snaps []models.MSnapshot) error

	// -----------------------------------------------------------------------------

	// QuerySnapshots returns all rows of the published computed table.
	QuerySnapshots() ([]models.MSnapshot, error)

	// -----------------------------------------------------------------------------

	// SaveIngestRun appends one ingest metadata row.
	SaveIngestRun(run models.MIngestRun) error

	// -----------------------------------------------------------------------------

	// Close the store handle
	Close() error
}

// -----------------------------------------------------------------------------

// StoreFactory opens a fresh store handle. The engine acquires one per run
// and releases it on every exit path.
type StoreFactory func() (IBarStore, error)
