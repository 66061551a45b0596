package yahoo

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"stock-screener/src/helpers"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------

// YahooDailySource fetches daily OHLCV bars from the Yahoo Finance chart
// endpoint. Symbols are fetched with bounded concurrency and per-symbol
// failure isolation: one throttled ticker never sinks the ingest pass.
type YahooDailySource struct {
	Config       *models.MConfig
	SourceConfig models.MSourceConfig
	symbols      atomic.Value // []string
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooDailySource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager) *YahooDailySource {
	s := &YahooDailySource{
		Config:       cfg,
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       logger.NewLogger(cfg.LogLevel, "YahooDailySource-"+sourceCfg.Name),
	}
	s.symbols.Store(sourceCfg.Symbols)
	return s
}

// -----------------------------------------------------------------------------

func (s *YahooDailySource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func (s *YahooDailySource) UpdateSymbols(symbols []string) error {
	if len(symbols) == 0 {
		return fmt.Errorf("symbol list cannot be empty")
	}
	s.symbols.Store(symbols)
	return nil
}

// -----------------------------------------------------------------------------

func (s *YahooDailySource) getSymbols() []string {
	return s.symbols.Load().([]string)
}

// -----------------------------------------------------------------------------

// FetchDailyBars retrieves the configured lookback of daily bars for every
// symbol. The returned run metadata carries total/success/failed counts. An
// error is returned only when every symbol failed.
func (s *YahooDailySource) FetchDailyBars() (map[string][]models.MBar, models.MIngestRun, error) {
	symbols := s.getSymbols()
	run := models.MIngestRun{
		TickersTotal: len(symbols),
		UpdatedAt:    time.Now().UTC().Format("2006-01-02 15:04:05"),
	}

	results := make(map[string][]models.MBar)
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, s.Config.Network.ConcurrentRequests)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Small delay to stay under the provider's rate limits
			time.Sleep(10 * time.Millisecond)

			bars, err := s.fetchSymbolBars(sym)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.Logger.Warning("Failed to fetch %s: %v", sym, err)
				run.TickersFailed++
				return
			}
			results[sym] = bars
			run.TickersSuccess++
		}(symbol)
	}

	wg.Wait()

	s.Logger.Info("Fetched %d/%d symbols successfully", run.TickersSuccess, run.TickersTotal)

	if run.TickersSuccess == 0 && run.TickersTotal > 0 {
		return nil, run, helpers.NewDataSourceError("all symbol fetches failed", nil)
	}

	return results, run, nil
}

// -----------------------------------------------------------------------------

func (s *YahooDailySource) fetchSymbolBars(symbol string) ([]models.MBar, error) {
	params := map[string]string{
		"interval":       "1d",
		"range":          fmt.Sprintf("%dd", s.Config.Ingest.LookbackDays),
		"includePrePost": "false",
	}

	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s", symbol)

	respBytes, err := s.Network.Get(url, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	return s.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

// parseChartResponse converts one chart payload into daily bars. Bars with
// null fields (provider gaps) are skipped; trading-day dates are rendered in
// the exchange's timezone so the (date, ticker) key is stable.
func (s *YahooDailySource) parseChartResponse(symbol string, data []byte) ([]models.MBar, error) {
	var resp chartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse chart response for %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("provider error for %s: %s (%s)",
			symbol, resp.Chart.Error.Description, resp.Chart.Error.Code)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	// Alignment check: every quote array must match the timestamp axis
	if len(result.Timestamp) != len(quote.Open) ||
		len(result.Timestamp) != len(quote.High) ||
		len(result.Timestamp) != len(quote.Low) ||
		len(result.Timestamp) != len(quote.Close) ||
		len(result.Timestamp) != len(quote.Volume) {
		return nil, fmt.Errorf("data alignment error for %s: mismatched array lengths", symbol)
	}

	loc := time.UTC
	if result.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}

	var bars []models.MBar
	for i, ts := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}

		bars = append(bars, models.MBar{
			Ticker: symbol,
			Date:   time.Unix(ts, 0).In(loc).Format("2006-01-02"),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: *quote.Volume[i],
		})
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date < bars[j].Date
	})

	return bars, nil
}
