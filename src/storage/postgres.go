package storage

import (
	"database/sql"
	"fmt"
	"sort"

	"stock-screener/src/helpers"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresStore is the alternate backing store for deployments that already
// run Postgres. One database serves as both master and working store, so the
// file-level sync step does not apply.
type PostgresStore struct {
	ConnString string
	DB         *sql.DB
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(connString string, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		ConnString: connString,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	db, err := sql.Open("postgres", d.ConnString)
	if err != nil {
		return helpers.NewStoreUnavailable("failed to open postgres store", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStoreUnavailable("failed to open postgres store", err)
	}

	d.DB = db
	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS raw_prices (
			date TEXT,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			close DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			ticker TEXT,
			PRIMARY KEY (date, ticker)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create raw_prices: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS computed (
			ticker TEXT PRIMARY KEY,
			date TEXT,
			close DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			previous_volume DOUBLE PRECISION,
			volume_avg20 DOUBLE PRECISION,
			daily_change_pct DOUBLE PRECISION,
			daily_change_abs DOUBLE PRECISION,
			weekly_change_pct DOUBLE PRECISION,
			change_1m_pct DOUBLE PRECISION,
			change_3m_pct DOUBLE PRECISION,
			change_6m_pct DOUBLE PRECISION,
			ema10 DOUBLE PRECISION, ema20 DOUBLE PRECISION,
			ema50 DOUBLE PRECISION, ema200 DOUBLE PRECISION,
			sma7 DOUBLE PRECISION, sma21 DOUBLE PRECISION,
			sma63 DOUBLE PRECISION, sma126 DOUBLE PRECISION,
			trend_intensity_63 DOUBLE PRECISION,
			momentum_1m DOUBLE PRECISION, momentum_3m DOUBLE PRECISION,
			momentum_6m DOUBLE PRECISION,
			mdt21 DOUBLE PRECISION, mdt50 DOUBLE PRECISION,
			atr14 DOUBLE PRECISION,
			rsi14 DOUBLE PRECISION,
			high_252 DOUBLE PRECISION,
			low_252 DOUBLE PRECISION,
			relative_strength DOUBLE PRECISION
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create computed: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS metadata (
			id SERIAL PRIMARY KEY,
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

func (d *PostgresStore) ReadAllBars() (map[string][]models.MBar, error) {
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

func (d *PostgresStore) InsertBarsBulk(bars []models.MBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO raw_prices (date, open, high, low, close, volume, ticker)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date, ticker) DO NOTHING
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

func (d *PostgresStore) PublishSnapshots(snaps []models.MSnapshot) error {
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
		snapshotColumns, pgPlaceholders(snapshotColumnCount),
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

func (d *PostgresStore) QuerySnapshots() ([]models.MSnapshot, error) {
	rows, err := d.DB.Query(fmt.Sprintf("SELECT %s FROM computed", snapshotColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to read computed: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SaveIngestRun(run models.MIngestRun) error {
	_, err := d.DB.Exec(
		"INSERT INTO metadata (tickers_total, tickers_success, tickers_failed, updated_at) VALUES ($1, $2, $3, $4)",
		run.TickersTotal, run.TickersSuccess, run.TickersFailed, run.UpdatedAt,
	)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
