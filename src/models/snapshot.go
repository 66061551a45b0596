package models

// MSnapshot is the computed summary row for one instrument as of its latest
// bar. Pointer fields are nullable: nil is the explicit Missing marker,
// distinct from a computed zero. It serializes to JSON null and SQL NULL, so
// downstream filters can treat Missing as "excluded" rather than zero.
type MSnapshot struct {
	Ticker string  `json:"ticker"`
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`

	// Volume context (advisory columns for spike checks)
	PreviousVolume *float64 `json:"previous_volume"`
	VolumeAvg20    *float64 `json:"volume_avg20"`

	// Returns over trading-bar offsets
	DailyChangePct  *float64 `json:"daily_change_pct"`
	DailyChangeAbs  *float64 `json:"daily_change_abs"`
	WeeklyChangePct *float64 `json:"weekly_change_pct"`
	Change1MPct     *float64 `json:"change_1m_pct"`
	Change3MPct     *float64 `json:"change_3m_pct"`
	Change6MPct     *float64 `json:"change_6m_pct"`

	// Trend
	EMA10  *float64 `json:"ema10"`
	EMA20  *float64 `json:"ema20"`
	EMA50  *float64 `json:"ema50"`
	EMA200 *float64 `json:"ema200"`
	SMA7   *float64 `json:"sma7"`
	SMA21  *float64 `json:"sma21"`
	SMA63  *float64 `json:"sma63"`
	SMA126 *float64 `json:"sma126"`

	// Ratios
	TrendIntensity63 *float64 `json:"trend_intensity_63"`
	Momentum1M       *float64 `json:"momentum_1m"`
	Momentum3M       *float64 `json:"momentum_3m"`
	Momentum6M       *float64 `json:"momentum_6m"`
	MDT21            *float64 `json:"mdt21"`
	MDT50            *float64 `json:"mdt50"`

	// Volatility / oscillator
	ATR14 *float64 `json:"atr14"`
	RSI14 *float64 `json:"rsi14"`

	// 252-bar range (strict window)
	High252 *float64 `json:"high_252"`
	Low252  *float64 `json:"low_252"`

	// Cross-sectional percentile, filled by the ranker after aggregation
	RelativeStrength *float64 `json:"relative_strength"`
}

// -----------------------------------------------------------------------------

// F wraps a computed value as a present (non-Missing) field.
func F(v float64) *float64 {
	return &v
}

// -----------------------------------------------------------------------------

// FVal unwraps a nullable field; ok is false for Missing.
func FVal(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
