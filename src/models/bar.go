package models

// MBar represents one instrument's OHLCV record for one trading day.
// Uniquely keyed by (Date, Ticker). Dates are ISO "2006-01-02" strings so
// that lexical order is chronological order.
type MBar struct {
	Ticker string  `json:"ticker"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}
