package core

import "math"

// Windowed statistics over a single instrument's bar series. Every function
// takes the full history oldest-first and reports ok=false when the metric is
// not computable, so callers can map that to the Missing marker instead of a
// sentinel value.

// -----------------------------------------------------------------------------

// SMAPartial computes the trailing simple moving average ending at the last
// element. When fewer than window values exist, the average covers whatever
// is available (minimum 1). This is the partial-window policy.
func SMAPartial(values []float64, window int) (float64, bool) {
	return SMAPartialAt(values, window, len(values)-1)
}

// -----------------------------------------------------------------------------

// SMAPartialAt computes the partial-window trailing average ending at index
// idx. ok is false when idx is out of range.
func SMAPartialAt(values []float64, window int, idx int) (float64, bool) {
	if idx < 0 || idx >= len(values) || window <= 0 {
		return 0, false
	}

	start := idx - window + 1
	if start < 0 {
		start = 0
	}

	sum := 0.0
	for i := start; i <= idx; i++ {
		sum += values[i]
	}
	return sum / float64(idx-start+1), true
}

// -----------------------------------------------------------------------------

// EMALast computes the exponential moving average with smoothing factor
// alpha = 2/(span+1), seeded from the first value. Defined from the first
// element onward, with no warm-up gap.
func EMALast(values []float64, span int) (float64, bool) {
	if len(values) == 0 || span <= 0 {
		return 0, false
	}

	alpha := 2.0 / float64(span+1)
	ema := values[0]
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
	}
	return ema, true
}

// -----------------------------------------------------------------------------

// TrueRanges computes the per-bar true range:
// max(|high-low|, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close and uses |high-low| alone.
func TrueRanges(highs, lows, closes []float64) []float64 {
	n := len(closes)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := math.Abs(highs[i] - lows[i])
		if i == 0 {
			tr[i] = hl
			continue
		}
		prevClose := closes[i-1]
		hc := math.Abs(highs[i] - prevClose)
		lc := math.Abs(lows[i] - prevClose)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// -----------------------------------------------------------------------------

// ATRStrict computes the average true range as the plain mean of the last
// window true ranges. Strict policy: ok is false below window bars.
func ATRStrict(highs, lows, closes []float64, window int) (float64, bool) {
	n := len(closes)
	if window <= 0 || n < window {
		return 0, false
	}

	tr := TrueRanges(highs, lows, closes)
	sum := 0.0
	for i := n - window; i < n; i++ {
		sum += tr[i]
	}
	return sum / float64(window), true
}

// -----------------------------------------------------------------------------

// RSIWilder computes the Wilder-smoothed relative strength index over the
// last window deltas. Strict policy: needs window+1 bars. A series with no
// losses reads 100, no gains reads 0.
func RSIWilder(closes []float64, window int) (float64, bool) {
	n := len(closes)
	if window <= 0 || n < window+1 {
		return 0, false
	}

	// Seed averages with a plain mean over the first window deltas
	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= window; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss += -d
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)

	// Wilder smoothing for the remainder of the series
	for i := window + 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// -----------------------------------------------------------------------------

// RollingMaxStrict returns the maximum over the trailing window. Strict
// policy: ok is false below window values. Intentionally different from the
// SMA partial policy.
func RollingMaxStrict(values []float64, window int) (float64, bool) {
	n := len(values)
	if window <= 0 || n < window {
		return 0, false
	}

	max := values[n-window]
	for i := n - window + 1; i < n; i++ {
		if values[i] > max {
			max = values[i]
		}
	}
	return max, true
}

// -----------------------------------------------------------------------------

// RollingMinStrict returns the minimum over the trailing window. Strict
// policy, same as RollingMaxStrict.
func RollingMinStrict(values []float64, window int) (float64, bool) {
	n := len(values)
	if window <= 0 || n < window {
		return 0, false
	}

	min := values[n-window]
	for i := n - window + 1; i < n; i++ {
		if values[i] < min {
			min = values[i]
		}
	}
	return min, true
}

// -----------------------------------------------------------------------------

// PctChange returns the percentage change of the last value against the
// value offset trading bars earlier. ok is false when the series is too
// short, never a calendar-based approximation.
func PctChange(values []float64, offset int) (float64, bool) {
	n := len(values)
	idx := n - 1 - offset
	if offset <= 0 || idx < 0 {
		return 0, false
	}
	if values[idx] == 0 {
		return 0, false
	}
	return (values[n-1]/values[idx] - 1) * 100, true
}
