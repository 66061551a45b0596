package analysis

import (
	"fmt"
	"math"
	"sort"

	"stock-screener/src/analysis/core"
	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// Transformer
// -----------------------------------------------------------------------------

// Transformer is a pure function from one instrument's bar series to one
// snapshot row. It never looks across instruments; all cross-sectional work
// happens in the ranker afterwards. Insufficient history is encoded as
// Missing fields, never as an error.
type Transformer struct {
	Settings models.MAnalysisConfig
}

// -----------------------------------------------------------------------------

func NewTransformer(settings models.MAnalysisConfig) *Transformer {
	return &Transformer{Settings: settings}
}

// -----------------------------------------------------------------------------

// TransformSeries computes the snapshot for one instrument. A series with
// zero bars yields (nil, nil): the instrument is skipped. Non-finite input
// values yield an error so the aggregator can drop the instrument without
// aborting the batch. Any non-empty finite series succeeds, however short.
func (t *Transformer) TransformSeries(ticker string, bars []models.MBar) (*models.MSnapshot, error) {
	n := len(bars)
	if n == 0 {
		return nil, nil
	}

	// Defensive copy, sorted by date ascending
	series := make([]models.MBar, n)
	copy(series, bars)
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range series {
		if !finiteBar(b) {
			return nil, fmt.Errorf("%s: non-finite value in bar %s", ticker, b.Date)
		}
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = b.Volume
	}

	cfg := t.Settings
	last := series[n-1]
	snap := &models.MSnapshot{
		Ticker: ticker,
		Date:   last.Date,
		Close:  last.Close,
		Volume: last.Volume,
	}

	// Volume context
	if n >= 2 {
		snap.PreviousVolume = models.F(volumes[n-2])
	}
	snap.VolumeAvg20 = opt(core.SMAPartial(volumes, cfg.VolumeAvgWindow))

	// Returns over trading-bar offsets
	snap.DailyChangePct = opt(core.PctChange(closes, 1))
	if n >= 2 {
		snap.DailyChangeAbs = models.F(closes[n-1] - closes[n-2])
	}
	snap.WeeklyChangePct = opt(core.PctChange(closes, cfg.WeekBars))
	snap.Change1MPct = opt(core.PctChange(closes, cfg.MonthBars))
	snap.Change3MPct = opt(core.PctChange(closes, cfg.QuarterBars))
	snap.Change6MPct = opt(core.PctChange(closes, cfg.HalfYearBars))

	// Trend
	ema := make(map[int]*float64)
	for _, span := range cfg.EMASpans {
		ema[span] = opt(core.EMALast(closes, span))
	}
	snap.EMA10 = ema[10]
	snap.EMA20 = ema[20]
	snap.EMA50 = ema[50]
	snap.EMA200 = ema[200]

	sma := make(map[int]*float64)
	for _, w := range cfg.SMAWindows {
		sma[w] = opt(core.SMAPartial(closes, w))
	}
	snap.SMA7 = sma[7]
	snap.SMA21 = sma[21]
	snap.SMA63 = sma[63]
	snap.SMA126 = sma[126]

	// Ratios. Zero or Missing denominators yield Missing, never Inf/NaN.
	snap.TrendIntensity63 = ratio(sma[7], sma[63])
	snap.Momentum1M = ratio(models.F(last.Close), sma[21])
	snap.Momentum3M = ratio(models.F(last.Close), sma[63])
	snap.Momentum6M = ratio(models.F(last.Close), sma[126])

	mdt := make(map[int]*float64)
	for _, k := range cfg.MDTOffsets {
		mdt[k] = t.offsetRatio(closes, k)
	}
	snap.MDT21 = mdt[21]
	snap.MDT50 = mdt[50]

	// Volatility / oscillator (strict windows)
	snap.ATR14 = opt(core.ATRStrict(highs, lows, closes, cfg.ATRWindow))
	snap.RSI14 = opt(core.RSIWilder(closes, cfg.RSIWindow))

	// 252-bar range (strict window)
	snap.High252 = opt(core.RollingMaxStrict(highs, cfg.RangeWindow))
	snap.Low252 = opt(core.RollingMinStrict(lows, cfg.RangeWindow))

	return snap, nil
}

// -----------------------------------------------------------------------------

// offsetRatio evaluates close divided by the long SMA at a fixed historical
// offset: close[n-1-k] / SMA126[n-1-k], both taken at that same index.
func (t *Transformer) offsetRatio(closes []float64, k int) *float64 {
	idx := len(closes) - 1 - k
	if idx < 0 {
		return nil
	}

	longWindow := t.Settings.SMAWindows[len(t.Settings.SMAWindows)-1]
	smaAt, ok := core.SMAPartialAt(closes, longWindow, idx)
	if !ok || smaAt == 0 {
		return nil
	}
	v := closes[idx] / smaAt
	return &v
}

// -----------------------------------------------------------------------------

func opt(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

// -----------------------------------------------------------------------------

func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}

// -----------------------------------------------------------------------------

func finiteBar(b models.MBar) bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
