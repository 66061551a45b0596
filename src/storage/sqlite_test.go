package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stock-screener/src/helpers"
	"stock-screener/src/logger"
	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func testLogger() *logger.Logger {
	return logger.NewLogger("ERROR", "storage-test")
}

// newTempStore creates an empty database file and opens a store on it.
func newTempStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "working.db")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create db file: %v", err)
	}
	f.Close()

	store := NewSQLiteStore(path, testLogger())
	if err := store.Initialize(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func bar(ticker, date string, close float64) models.MBar {
	return models.MBar{
		Ticker: ticker,
		Date:   date,
		Open:   close,
		High:   close + 1,
		Low:    close - 1,
		Close:  close,
		Volume: 1000,
	}
}

// -----------------------------------------------------------------------------

func TestInitializeMissingFileIsFatal(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "absent.db"), testLogger())

	err := store.Initialize()
	if err == nil {
		t.Fatalf("expected an error for a missing store file")
	}
	var unavailable *helpers.StoreUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("expected StoreUnavailableError, got %T", err)
	}
}

func TestWritableStoreBootstrapsFreshInstall(t *testing.T) {
	// No file exists yet: the ingest-side store must create it and accept
	// the first ingest pass
	path := filepath.Join(t.TempDir(), "master.db")

	store := NewWritableSQLiteStore(path, testLogger())
	if err := store.Initialize(); err != nil {
		t.Fatalf("fresh install must bootstrap the master store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("store file was not created: %v", err)
	}

	if err := store.InsertBarsBulk([]models.MBar{bar("AAA", "2024-01-02", 10)}); err != nil {
		t.Fatalf("first ingest insert failed: %v", err)
	}
	if err := store.SaveIngestRun(models.MIngestRun{TickersTotal: 1, TickersSuccess: 1}); err != nil {
		t.Fatalf("first ingest metadata row failed: %v", err)
	}

	universe, err := store.ReadAllBars()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(universe["AAA"]) != 1 {
		t.Errorf("expected the ingested bar to round-trip, got %+v", universe)
	}
}

func TestReadAllBarsGroupsAndSorts(t *testing.T) {
	store := newTempStore(t)

	// Inserted out of date order across two tickers
	bars := []models.MBar{
		bar("BBB", "2024-01-03", 20),
		bar("AAA", "2024-01-02", 11),
		bar("AAA", "2024-01-01", 10),
		bar("BBB", "2024-01-02", 19),
	}
	if err := store.InsertBarsBulk(bars); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	universe, err := store.ReadAllBars()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if len(universe) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(universe))
	}
	aaa := universe["AAA"]
	if len(aaa) != 2 || aaa[0].Date != "2024-01-01" || aaa[1].Date != "2024-01-02" {
		t.Errorf("AAA series not sorted ascending: %+v", aaa)
	}
}

func TestInsertBarsBulkIgnoresDuplicates(t *testing.T) {
	store := newTempStore(t)

	if err := store.InsertBarsBulk([]models.MBar{bar("AAA", "2024-01-01", 10)}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	// Same (date, ticker) with a different close must be a silent no-op
	if err := store.InsertBarsBulk([]models.MBar{bar("AAA", "2024-01-01", 99)}); err != nil {
		t.Fatalf("duplicate insert failed: %v", err)
	}

	universe, err := store.ReadAllBars()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(universe["AAA"]) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(universe["AAA"]))
	}
	if universe["AAA"][0].Close != 10 {
		t.Errorf("first write must win, got close %v", universe["AAA"][0].Close)
	}
}

func TestPublishSnapshotsReplacesWholesale(t *testing.T) {
	store := newTempStore(t)

	first := []models.MSnapshot{
		{Ticker: "AAA", Date: "2024-01-02", Close: 11, Volume: 1000, SMA7: models.F(10.5)},
		{Ticker: "BBB", Date: "2024-01-02", Close: 20, Volume: 500},
	}
	if err := store.PublishSnapshots(first); err != nil {
		t.Fatalf("first publish failed: %v", err)
	}

	second := []models.MSnapshot{
		{Ticker: "CCC", Date: "2024-01-03", Close: 30, Volume: 700, RelativeStrength: models.F(100)},
	}
	if err := store.PublishSnapshots(second); err != nil {
		t.Fatalf("second publish failed: %v", err)
	}

	rows, err := store.QuerySnapshots()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Ticker != "CCC" {
		t.Fatalf("publish must replace the previous table, got %+v", rows)
	}
}

func TestPublishSnapshotsEmptyTable(t *testing.T) {
	store := newTempStore(t)

	if err := store.PublishSnapshots([]models.MSnapshot{
		{Ticker: "AAA", Date: "2024-01-02", Close: 11, Volume: 1000},
	}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := store.PublishSnapshots(nil); err != nil {
		t.Fatalf("empty publish failed: %v", err)
	}

	rows, err := store.QuerySnapshots()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected an empty table, got %d rows", len(rows))
	}
}

func TestSnapshotNullRoundTrip(t *testing.T) {
	store := newTempStore(t)

	snap := models.MSnapshot{
		Ticker: "AAA",
		Date:   "2024-01-02",
		Close:  11,
		Volume: 1000,
		SMA7:   models.F(10.5),
		// Everything else stays missing
	}
	if err := store.PublishSnapshots([]models.MSnapshot{snap}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	rows, err := store.QuerySnapshots()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	got := rows[0]

	if v, ok := models.FVal(got.SMA7); !ok || v != 10.5 {
		t.Errorf("sma7: expected 10.5, got %v", got.SMA7)
	}
	if got.ATR14 != nil {
		t.Errorf("atr14: NULL must come back as missing, got %v", *got.ATR14)
	}
	if got.RelativeStrength != nil {
		t.Errorf("relative_strength: NULL must come back as missing")
	}
}

func TestSaveIngestRun(t *testing.T) {
	store := newTempStore(t)

	run := models.MIngestRun{
		TickersTotal:   10,
		TickersSuccess: 9,
		TickersFailed:  1,
		UpdatedAt:      "2024-01-02 16:30:00",
	}
	if err := store.SaveIngestRun(run); err != nil {
		t.Fatalf("save failed: %v", err)
	}
}
