package models

// MPublishEvent is broadcast to WebSocket clients after each successful
// compute run, and kept as the server's latest state for new connections.
type MPublishEvent struct {
	Type           string `json:"type"` // "INITIAL" or "PUBLISH"
	Rows           int    `json:"rows"`
	AsOf           string `json:"as_of"` // latest bar date across the universe
	DurationMillis int64  `json:"duration_ms"`
	PublishedAt    int64  `json:"published_at"` // unix seconds
	Basis          string `json:"rank_basis"`   // which change column ranked the universe
	Dropped        int    `json:"dropped"`      // instruments excluded by per-instrument failures
	Universe       int    `json:"universe"`     // instruments with at least one bar
}
