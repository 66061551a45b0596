package storage

import (
	"database/sql"
	"fmt"
	"os"
	"sort"

	"stock-screener/src/helpers"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// snapshotColumns is the stable published-column contract, in insert order.
// The filter layer binds to these names without renegotiation.
const snapshotColumns = `ticker, date, close, volume, previous_volume, volume_avg20,
	daily_change_pct, daily_change_abs, weekly_change_pct,
	change_1m_pct, change_3m_pct, change_6m_pct,
	ema10, ema20, ema50, ema200, sma7, sma21, sma63, sma126,
	trend_intensity_63, momentum_1m, momentum_3m, momentum_6m, mdt21, mdt50,
	atr14, rsi14, high_252, low_252, relative_strength`

const snapshotColumnCount = 31

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Path   string
	DB     *sql.DB
	Logger *logger.Logger

	createIfMissing bool
}

// -----------------------------------------------------------------------------

// NewSQLiteStore opens an existing database; a missing file is fatal. This is
// the read/compute side: computing against a store that was never provisioned
// must fail loudly, not run over an implicitly created empty one.
func NewSQLiteStore(path string, log *logger.Logger) *SQLiteStore {
	return &SQLiteStore{
		Path:   path,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// NewWritableSQLiteStore creates the database file when missing. The ingest
// path uses it so a fresh install bootstraps its master store on the first
// run.
func NewWritableSQLiteStore(path string, log *logger.Logger) *SQLiteStore {
	return &SQLiteStore{
		Path:            path,
		Logger:          log,
		createIfMissing: true,
	}
}

// -----------------------------------------------------------------------------

// Initialize opens the database and ensures the schema exists. A path that
// cannot be opened is fatal to the run.
func (d *SQLiteStore) Initialize() error {
	if _, err := os.Stat(d.Path); err != nil {
		if !d.createIfMissing {
			return helpers.NewStoreUnavailable(fmt.Sprintf("store missing: %s", d.Path), err)
		}
		d.Logger.Info("Creating new store: %s", d.Path)
	}

	db, err := sql.Open("sqlite", d.Path)
	if err != nil {
		return helpers.NewStoreUnavailable(fmt.Sprintf("failed to open store: %s", d.Path), err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStoreUnavailable(fmt.Sprintf("failed to open store: %s", d.Path), err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) createTables() error {
	// Raw bars are durable and never dropped here; the computed table is
	// replaced wholesale on every publish.
	query := `
		CREATE TABLE IF NOT EXISTS raw_prices (
			date TEXT,
			open REAL,
			high REAL,
			low REAL,
			close REAL,
			volume REAL,
			ticker TEXT,
			PRIMARY KEY (date, ticker)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create raw_prices: %w", err)
	}

	if _, err := d.DB.Exec(createComputedSQL("computed")); err != nil {
		return fmt.Errorf("failed to create computed: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS metadata (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tickers_total INTEGER,
			tickers_success INTEGER,
			tickers_failed INTEGER,
			updated_at TEXT
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create metadata: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// createComputedSQL builds the computed-table DDL. Every non-identity column
// is nullable; NULL is the Missing marker.
func createComputedSQL(name string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			ticker TEXT PRIMARY KEY,
			date TEXT,
			close REAL,
			volume REAL,
			previous_volume REAL,
			volume_avg20 REAL,
			daily_change_pct REAL,
			daily_change_abs REAL,
			weekly_change_pct REAL,
			change_1m_pct REAL,
			change_3m_pct REAL,
			change_6m_pct REAL,
			ema10 REAL, ema20 REAL, ema50 REAL, ema200 REAL,
			sma7 REAL, sma21 REAL, sma63 REAL, sma126 REAL,
			trend_intensity_63 REAL,
			momentum_1m REAL, momentum_3m REAL, momentum_6m REAL,
			mdt21 REAL, mdt50 REAL,
			atr14 REAL,
			rsi14 REAL,
			high_252 REAL,
			low_252 REAL,
			relative_strength REAL
		);
	`, name)
}

// -----------------------------------------------------------------------------

// ReadAllBars loads every bar grouped by ticker, each series sorted by date
// ascending. No ordering is assumed from the store.
func (d *SQLiteStore) ReadAllBars() (map[string][]models.MBar, error) {
	rows, err := d.DB.Query("SELECT date, open, high, low, close, volume, ticker FROM raw_prices")
	if err != nil {
		return nil, fmt.Errorf("failed to read raw_prices: %w", err)
	}
	defer rows.Close()

	universe := make(map[string][]models.MBar)
	for rows.Next() {
		var b models.MBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Ticker); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		universe[b.Ticker] = append(universe[b.Ticker], b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, series := range universe {
		sort.Slice(series, func(i, j int) bool {
			return series[i].Date < series[j].Date
		})
	}

	return universe, nil
}

// -----------------------------------------------------------------------------

// InsertBarsBulk appends bars, ignoring (date, ticker) duplicates.
func (d *SQLiteStore) InsertBarsBulk(bars []models.MBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO raw_prices (date, open, high, low, close, volume, ticker)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, b.Ticker); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// PublishSnapshots replaces the computed table in one transaction. Readers
// see either the full previous table or the full new one, never a mix. An
// empty universe publishes an empty table.
func (d *SQLiteStore) PublishSnapshots(snaps []models.MSnapshot) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM computed"); err != nil {
		return fmt.Errorf("failed to clear computed: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO computed (%s) VALUES (%s)",
		snapshotColumns, placeholders(snapshotColumnCount),
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range snaps {
		if _, err := stmt.Exec(snapshotArgs(&snaps[i])...); err != nil {
			return fmt.Errorf("failed to insert snapshot %s: %w", snaps[i].Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	d.Logger.Info("Computed table updated: %d rows", len(snaps))
	return nil
}

// -----------------------------------------------------------------------------

// QuerySnapshots returns all rows of the published computed table.
func (d *SQLiteStore) QuerySnapshots() ([]models.MSnapshot, error) {
	rows, err := d.DB.Query(fmt.Sprintf("SELECT %s FROM computed", snapshotColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to read computed: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveIngestRun(run models.MIngestRun) error {
	_, err := d.DB.Exec(
		"INSERT INTO metadata (tickers_total, tickers_success, tickers_failed, updated_at) VALUES (?, ?, ?, ?)",
		run.TickersTotal, run.TickersSuccess, run.TickersFailed, run.UpdatedAt,
	)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
