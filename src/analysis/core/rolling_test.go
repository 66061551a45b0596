package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// -----------------------------------------------------------------------------

func TestSMAPartialFullWindow(t *testing.T) {
	got, ok := SMAPartial([]float64{1, 2, 3, 4}, 3)
	if !ok {
		t.Fatalf("expected ok")
	}
	if !almostEqual(got, 3) {
		t.Errorf("expected 3, got %v", got)
	}
}

func TestSMAPartialShortSeries(t *testing.T) {
	// Two values against a window of three averages the two available
	got, ok := SMAPartial([]float64{1, 2}, 3)
	if !ok {
		t.Fatalf("expected ok")
	}
	if !almostEqual(got, 1.5) {
		t.Errorf("expected 1.5, got %v", got)
	}
}

func TestSMAPartialEmpty(t *testing.T) {
	if _, ok := SMAPartial(nil, 3); ok {
		t.Errorf("expected not ok for empty series")
	}
}

func TestSMAPartialAtOutOfRange(t *testing.T) {
	if _, ok := SMAPartialAt([]float64{1, 2, 3}, 2, -1); ok {
		t.Errorf("expected not ok for negative index")
	}
	if _, ok := SMAPartialAt([]float64{1, 2, 3}, 2, 3); ok {
		t.Errorf("expected not ok for index past end")
	}
}

func TestSMAPartialAtInterior(t *testing.T) {
	got, ok := SMAPartialAt([]float64{1, 2, 3, 4, 5}, 2, 2)
	if !ok {
		t.Fatalf("expected ok")
	}
	if !almostEqual(got, 2.5) {
		t.Errorf("expected 2.5, got %v", got)
	}
}

// -----------------------------------------------------------------------------

func TestEMALastSeededFromFirstValue(t *testing.T) {
	// span 3 means alpha = 0.5: ema = 0.5*4 + 0.5*2
	got, ok := EMALast([]float64{2, 4}, 3)
	if !ok {
		t.Fatalf("expected ok")
	}
	if !almostEqual(got, 3) {
		t.Errorf("expected 3, got %v", got)
	}
}

func TestEMALastSingleValue(t *testing.T) {
	got, ok := EMALast([]float64{42}, 200)
	if !ok {
		t.Fatalf("expected ok: EMA is defined from the first element")
	}
	if !almostEqual(got, 42) {
		t.Errorf("expected 42, got %v", got)
	}
}

func TestEMALastEmpty(t *testing.T) {
	if _, ok := EMALast(nil, 10); ok {
		t.Errorf("expected not ok for empty series")
	}
}

func TestEMALastConstantSeries(t *testing.T) {
	got, ok := EMALast([]float64{7, 7, 7, 7, 7}, 10)
	if !ok || !almostEqual(got, 7) {
		t.Errorf("constant series must keep its value, got %v ok=%v", got, ok)
	}
}

// -----------------------------------------------------------------------------

func TestTrueRangesFirstBar(t *testing.T) {
	tr := TrueRanges([]float64{10}, []float64{8}, []float64{9})
	if len(tr) != 1 || !almostEqual(tr[0], 2) {
		t.Errorf("first bar true range must be high-low, got %v", tr)
	}
}

func TestTrueRangesGapDominates(t *testing.T) {
	// Second bar gaps down: |low - prevClose| is the widest term
	highs := []float64{10, 6}
	lows := []float64{8, 5}
	closes := []float64{9, 5.5}
	tr := TrueRanges(highs, lows, closes)
	if !almostEqual(tr[1], 4) {
		t.Errorf("expected 4 (|5-9|), got %v", tr[1])
	}
}

// -----------------------------------------------------------------------------

func TestATRStrictBelowWindow(t *testing.T) {
	highs := []float64{10, 11}
	lows := []float64{9, 10}
	closes := []float64{9.5, 10.5}
	if _, ok := ATRStrict(highs, lows, closes, 3); ok {
		t.Errorf("expected not ok below window")
	}
}

func TestATRStrictExactWindow(t *testing.T) {
	// Flat closes between bars, ranges 2, 3, 4
	highs := []float64{11, 11.5, 12}
	lows := []float64{9, 8.5, 8}
	closes := []float64{10, 10, 10}
	got, ok := ATRStrict(highs, lows, closes, 3)
	if !ok {
		t.Fatalf("expected ok at exact window")
	}
	if !almostEqual(got, 3) {
		t.Errorf("expected 3, got %v", got)
	}
}

// -----------------------------------------------------------------------------

func TestRSIWilderNeedsWindowPlusOne(t *testing.T) {
	closes := []float64{1, 2, 3}
	if _, ok := RSIWilder(closes, 3); ok {
		t.Errorf("expected not ok with window bars only")
	}
	if _, ok := RSIWilder(append(closes, 4), 3); !ok {
		t.Errorf("expected ok with window+1 bars")
	}
}

func TestRSIWilderAllGains(t *testing.T) {
	got, ok := RSIWilder([]float64{1, 2, 3, 4, 5}, 3)
	if !ok || !almostEqual(got, 100) {
		t.Errorf("monotonic rise must read 100, got %v ok=%v", got, ok)
	}
}

func TestRSIWilderAllLosses(t *testing.T) {
	got, ok := RSIWilder([]float64{5, 4, 3, 2, 1}, 3)
	if !ok || !almostEqual(got, 0) {
		t.Errorf("monotonic fall must read 0, got %v ok=%v", got, ok)
	}
}

func TestRSIWilderBounded(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 12.5, 14, 13, 15, 14.5, 16}
	got, ok := RSIWilder(closes, 5)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got <= 0 || got >= 100 {
		t.Errorf("mixed series must be strictly inside (0, 100), got %v", got)
	}
	if got <= 50 {
		t.Errorf("uptrending series should read above 50, got %v", got)
	}
}

// -----------------------------------------------------------------------------

func TestRollingMaxMinStrict(t *testing.T) {
	values := []float64{5, 9, 2, 7}

	if _, ok := RollingMaxStrict(values, 5); ok {
		t.Errorf("expected not ok below window")
	}

	max, ok := RollingMaxStrict(values, 3)
	if !ok || !almostEqual(max, 9) {
		t.Errorf("expected max 9 over last 3, got %v ok=%v", max, ok)
	}

	min, ok := RollingMinStrict(values, 3)
	if !ok || !almostEqual(min, 2) {
		t.Errorf("expected min 2 over last 3, got %v ok=%v", min, ok)
	}
}

// -----------------------------------------------------------------------------

func TestPctChange(t *testing.T) {
	got, ok := PctChange([]float64{100, 102}, 1)
	if !ok || !almostEqual(got, 2) {
		t.Errorf("expected +2%%, got %v ok=%v", got, ok)
	}
}

func TestPctChangeSeriesTooShort(t *testing.T) {
	// Exactly offset bars is still one short of a reference value
	if _, ok := PctChange([]float64{100, 101, 102, 103, 104}, 5); ok {
		t.Errorf("expected not ok when n-1-offset < 0")
	}
}

func TestPctChangeZeroReference(t *testing.T) {
	if _, ok := PctChange([]float64{0, 100}, 1); ok {
		t.Errorf("expected not ok for zero reference value")
	}
}
