package yahoo

import (
	"testing"

	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------

func newTestSource() *YahooDailySource {
	cfg := &models.MConfig{LogLevel: "ERROR"}
	src := models.MSourceConfig{Name: "test", Symbols: []string{"AAA.NS"}}
	return NewYahooDailySource(cfg, src, nil)
}

// Timestamps fall mid-morning in the exchange timezone so the rendered date
// is unambiguous.
const chartPayload = `{
	"chart": {
		"result": [{
			"meta": {"symbol": "AAA.NS", "exchangeTimezoneName": "Asia/Kolkata"},
			"timestamp": [1704171600, 1704258000],
			"indicators": {
				"quote": [{
					"open":   [100.0, 101.0],
					"high":   [102.0, 103.0],
					"low":    [99.0, 100.0],
					"close":  [101.0, 102.0],
					"volume": [5000.0, 6000.0]
				}]
			}
		}],
		"error": null
	}
}`

func TestParseChartResponse(t *testing.T) {
	bars, err := newTestSource().parseChartResponse("AAA.NS", []byte(chartPayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}

	first := bars[0]
	if first.Ticker != "AAA.NS" || first.Date != "2024-01-02" {
		t.Errorf("unexpected first bar identity: %+v", first)
	}
	if first.Open != 100 || first.High != 102 || first.Low != 99 || first.Close != 101 || first.Volume != 5000 {
		t.Errorf("unexpected first bar values: %+v", first)
	}
	if bars[1].Date <= bars[0].Date {
		t.Errorf("bars must be sorted ascending by date")
	}
}

func TestParseChartResponseSkipsNullRows(t *testing.T) {
	payload := `{
		"chart": {
			"result": [{
				"meta": {"symbol": "AAA.NS", "exchangeTimezoneName": "UTC"},
				"timestamp": [1704171600, 1704258000],
				"indicators": {
					"quote": [{
						"open":   [100.0, null],
						"high":   [102.0, 103.0],
						"low":    [99.0, 100.0],
						"close":  [101.0, 102.0],
						"volume": [5000.0, 6000.0]
					}]
				}
			}],
			"error": null
		}
	}`

	bars, err := newTestSource().parseChartResponse("AAA.NS", []byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Errorf("provider gaps must be skipped, got %d bars", len(bars))
	}
}

func TestParseChartResponseMismatchedArrayLengths(t *testing.T) {
	// Two timestamps but only one open value; a degenerate payload must be
	// an error for the symbol, never an index panic
	payload := `{
		"chart": {
			"result": [{
				"meta": {"symbol": "AAA.NS", "exchangeTimezoneName": "UTC"},
				"timestamp": [1704171600, 1704258000],
				"indicators": {
					"quote": [{
						"open":   [100.0],
						"high":   [102.0, 103.0],
						"low":    [99.0, 100.0],
						"close":  [101.0, 102.0],
						"volume": [5000.0, 6000.0]
					}]
				}
			}],
			"error": null
		}
	}`

	if _, err := newTestSource().parseChartResponse("AAA.NS", []byte(payload)); err == nil {
		t.Errorf("expected an alignment error for mismatched quote arrays")
	}
}

func TestParseChartResponseProviderError(t *testing.T) {
	payload := `{
		"chart": {
			"result": [],
			"error": {"code": "Not Found", "description": "No data found"}
		}
	}`

	if _, err := newTestSource().parseChartResponse("GONE.NS", []byte(payload)); err == nil {
		t.Errorf("expected an error for a provider error payload")
	}
}

func TestParseChartResponseEmptyResult(t *testing.T) {
	payload := `{"chart": {"result": [], "error": null}}`
	if _, err := newTestSource().parseChartResponse("AAA.NS", []byte(payload)); err == nil {
		t.Errorf("expected an error for an empty result")
	}
}

// -----------------------------------------------------------------------------

func TestUpdateSymbols(t *testing.T) {
	src := newTestSource()

	if err := src.UpdateSymbols(nil); err == nil {
		t.Errorf("expected an error for an empty symbol list")
	}

	if err := src.UpdateSymbols([]string{"BBB.NS", "CCC.NS"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := src.getSymbols()
	if len(got) != 2 || got[0] != "BBB.NS" {
		t.Errorf("symbol swap not applied: %v", got)
	}
}
