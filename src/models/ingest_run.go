package models

// MIngestRun records the outcome of one ingest pass over the symbol list.
type MIngestRun struct {
	TickersTotal   int    `json:"tickers_total"`
	TickersSuccess int    `json:"tickers_success"`
	TickersFailed  int    `json:"tickers_failed"`
	UpdatedAt      string `json:"updated_at"`
}
