package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"stock-screener/src/models"
)

// Row plumbing shared by the SQLite and Postgres stores.

// -----------------------------------------------------------------------------

// placeholders returns "?, ?, ..." for n parameters.
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}

// -----------------------------------------------------------------------------

// pgPlaceholders returns "$1, $2, ..." for n parameters.
func pgPlaceholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// -----------------------------------------------------------------------------

// snapshotArgs flattens a snapshot into insert arguments matching
// snapshotColumns order. Nil pointers insert as NULL.
func snapshotArgs(s *models.MSnapshot) []interface{} {
	return []interface{}{
		s.Ticker, s.Date, s.Close, s.Volume, s.PreviousVolume, s.VolumeAvg20,
		s.DailyChangePct, s.DailyChangeAbs, s.WeeklyChangePct,
		s.Change1MPct, s.Change3MPct, s.Change6MPct,
		s.EMA10, s.EMA20, s.EMA50, s.EMA200,
		s.SMA7, s.SMA21, s.SMA63, s.SMA126,
		s.TrendIntensity63, s.Momentum1M, s.Momentum3M, s.Momentum6M,
		s.MDT21, s.MDT50,
		s.ATR14, s.RSI14, s.High252, s.Low252, s.RelativeStrength,
	}
}

// -----------------------------------------------------------------------------

// scanSnapshots reads rows selected with snapshotColumns back into models,
// mapping SQL NULL to the Missing marker.
func scanSnapshots(rows *sql.Rows) ([]models.MSnapshot, error) {
	var snaps []models.MSnapshot

	for rows.Next() {
		var s models.MSnapshot
		nulls := make([]sql.NullFloat64, snapshotColumnCount-4)

		args := []interface{}{&s.Ticker, &s.Date, &s.Close, &s.Volume}
		for i := range nulls {
			args = append(args, &nulls[i])
		}
		if err := rows.Scan(args...); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		fields := []**float64{
			&s.PreviousVolume, &s.VolumeAvg20,
			&s.DailyChangePct, &s.DailyChangeAbs, &s.WeeklyChangePct,
			&s.Change1MPct, &s.Change3MPct, &s.Change6MPct,
			&s.EMA10, &s.EMA20, &s.EMA50, &s.EMA200,
			&s.SMA7, &s.SMA21, &s.SMA63, &s.SMA126,
			&s.TrendIntensity63, &s.Momentum1M, &s.Momentum3M, &s.Momentum6M,
			&s.MDT21, &s.MDT50,
			&s.ATR14, &s.RSI14, &s.High252, &s.Low252, &s.RelativeStrength,
		}
		for i, f := range fields {
			if nulls[i].Valid {
				v := nulls[i].Float64
				*f = &v
			}
		}

		snaps = append(snaps, s)
	}

	return snaps, rows.Err()
}
