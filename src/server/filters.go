package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// Screener Filter
// -----------------------------------------------------------------------------

// MScreenerFilter is a conjunction of optional predicates over the published
// columns. Every predicate that inspects a nullable column excludes rows
// where that column is Missing.
type MScreenerFilter struct {
	MinClose    *float64
	MaxClose    *float64
	MinVolume   *float64
	MinTurnover *float64 // close * volume floor

	VolumeAbovePrev bool
	VolumeSpike     bool // volume > 1.5 x 20-bar average

	AboveEMA10  bool
	AboveEMA20  bool
	AboveEMA50  bool
	AboveEMA200 bool

	MinDailyChange  *float64
	MaxDailyChange  *float64
	MinWeeklyChange *float64

	MinTrendIntensity *float64
	MinMDT            *float64 // applies to both mdt21 and mdt50
	MinRSI            *float64
	MaxRSI            *float64
	MinRelStrength    *float64

	Search string // case-insensitive ticker substring
}

const volumeSpikeFactor = 1.5

// -----------------------------------------------------------------------------

// ParseFilter builds a filter from query parameters. Unknown parameters are
// ignored; malformed numeric values are a client error.
func ParseFilter(c *gin.Context) (*MScreenerFilter, error) {
	f := &MScreenerFilter{}

	floats := map[string]**float64{
		"min_close":           &f.MinClose,
		"max_close":           &f.MaxClose,
		"min_volume":          &f.MinVolume,
		"min_turnover":        &f.MinTurnover,
		"min_daily_change":    &f.MinDailyChange,
		"max_daily_change":    &f.MaxDailyChange,
		"min_weekly_change":   &f.MinWeeklyChange,
		"min_trend_intensity": &f.MinTrendIntensity,
		"min_mdt":             &f.MinMDT,
		"min_rsi":             &f.MinRSI,
		"max_rsi":             &f.MaxRSI,
		"min_rs":              &f.MinRelStrength,
	}
	for name, dest := range floats {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", name, raw)
		}
		*dest = &v
	}

	bools := map[string]*bool{
		"vol_above_prev": &f.VolumeAbovePrev,
		"vol_spike":      &f.VolumeSpike,
		"above_ema10":    &f.AboveEMA10,
		"above_ema20":    &f.AboveEMA20,
		"above_ema50":    &f.AboveEMA50,
		"above_ema200":   &f.AboveEMA200,
	}
	for name, dest := range bools {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", name, raw)
		}
		*dest = v
	}

	f.Search = strings.ToUpper(strings.TrimSpace(c.Query("search")))

	return f, nil
}

// -----------------------------------------------------------------------------

// Apply returns the rows matching every active predicate, preserving input
// order.
func (f *MScreenerFilter) Apply(snaps []models.MSnapshot) []models.MSnapshot {
	matched := make([]models.MSnapshot, 0, len(snaps))
	for i := range snaps {
		if f.matches(&snaps[i]) {
			matched = append(matched, snaps[i])
		}
	}
	return matched
}

// -----------------------------------------------------------------------------

func (f *MScreenerFilter) matches(s *models.MSnapshot) bool {
	if f.Search != "" && !strings.Contains(strings.ToUpper(s.Ticker), f.Search) {
		return false
	}

	if f.MinClose != nil && s.Close < *f.MinClose {
		return false
	}
	if f.MaxClose != nil && s.Close > *f.MaxClose {
		return false
	}
	if f.MinVolume != nil && s.Volume < *f.MinVolume {
		return false
	}
	if f.MinTurnover != nil && s.Close*s.Volume < *f.MinTurnover {
		return false
	}

	if f.VolumeAbovePrev && !above(s.Volume, s.PreviousVolume, 1.0) {
		return false
	}
	if f.VolumeSpike && !above(s.Volume, s.VolumeAvg20, volumeSpikeFactor) {
		return false
	}

	if f.AboveEMA10 && !above(s.Close, s.EMA10, 1.0) {
		return false
	}
	if f.AboveEMA20 && !above(s.Close, s.EMA20, 1.0) {
		return false
	}
	if f.AboveEMA50 && !above(s.Close, s.EMA50, 1.0) {
		return false
	}
	if f.AboveEMA200 && !above(s.Close, s.EMA200, 1.0) {
		return false
	}

	if !atLeast(s.DailyChangePct, f.MinDailyChange) {
		return false
	}
	if f.MaxDailyChange != nil {
		v, ok := models.FVal(s.DailyChangePct)
		if !ok || v > *f.MaxDailyChange {
			return false
		}
	}
	if !atLeast(s.WeeklyChangePct, f.MinWeeklyChange) {
		return false
	}

	if !atLeast(s.TrendIntensity63, f.MinTrendIntensity) {
		return false
	}
	if f.MinMDT != nil {
		if !atLeast(s.MDT21, f.MinMDT) || !atLeast(s.MDT50, f.MinMDT) {
			return false
		}
	}

	if !atLeast(s.RSI14, f.MinRSI) {
		return false
	}
	if f.MaxRSI != nil {
		v, ok := models.FVal(s.RSI14)
		if !ok || v > *f.MaxRSI {
			return false
		}
	}

	if !atLeast(s.RelativeStrength, f.MinRelStrength) {
		return false
	}

	return true
}

// -----------------------------------------------------------------------------

// atLeast passes when no bound is set; with a bound, Missing fails.
func atLeast(field *float64, bound *float64) bool {
	if bound == nil {
		return true
	}
	v, ok := models.FVal(field)
	return ok && v >= *bound
}

// -----------------------------------------------------------------------------

// above reports value > factor * reference, failing on Missing reference.
func above(value float64, reference *float64, factor float64) bool {
	ref, ok := models.FVal(reference)
	return ok && value > factor*ref
}
