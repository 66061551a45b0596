package analysis

import (
	"stock-screener/src/analysis/core"
	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// Relative-Strength Ranker
// -----------------------------------------------------------------------------

// Basis column fallback chain: first change column with at least one value
// across the universe ranks everyone.
var rankBasisChain = []struct {
	Name  string
	Value func(*models.MSnapshot) *float64
}{
	{"change_6m_pct", func(s *models.MSnapshot) *float64 { return s.Change6MPct }},
	{"change_3m_pct", func(s *models.MSnapshot) *float64 { return s.Change3MPct }},
	{"change_1m_pct", func(s *models.MSnapshot) *float64 { return s.Change1MPct }},
}

// -----------------------------------------------------------------------------

// RankUniverse fills RelativeStrength on every snapshot in place and returns
// the name of the basis column used, or "none" when no chain column has any
// value (every rank stays Missing). Rows with a Missing basis value keep a
// Missing rank regardless of the column's availability elsewhere.
func (s *Screener) RankUniverse(snaps []models.MSnapshot) string {
	if len(snaps) == 0 {
		return "none"
	}

	for _, basis := range rankBasisChain {
		values := make([]*float64, len(snaps))
		any := false
		for i := range snaps {
			values[i] = basis.Value(&snaps[i])
			if values[i] != nil {
				any = true
			}
		}
		if !any {
			continue
		}

		ranks := core.PercentileRanks(values)
		for i := range snaps {
			snaps[i].RelativeStrength = ranks[i]
		}
		return basis.Name
	}

	for i := range snaps {
		snaps[i].RelativeStrength = nil
	}
	return "none"
}
