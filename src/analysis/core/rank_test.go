package core

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

// -----------------------------------------------------------------------------

func TestPercentileRanksDistinct(t *testing.T) {
	ranks := PercentileRanks([]*float64{f(10), f(30), f(20)})

	want := []float64{100.0 / 3, 100, 200.0 / 3}
	for i, w := range want {
		if ranks[i] == nil {
			t.Fatalf("rank %d unexpectedly nil", i)
		}
		if math.Abs(*ranks[i]-w) > 1e-9 {
			t.Errorf("rank %d: expected %v, got %v", i, w, *ranks[i])
		}
	}
}

func TestPercentileRanksTiesAverage(t *testing.T) {
	// Two equal values share ranks 1 and 2, averaged to 1.5 of 3
	ranks := PercentileRanks([]*float64{f(5), f(5), f(10)})

	if *ranks[0] != *ranks[1] {
		t.Errorf("tied values must share a rank: %v vs %v", *ranks[0], *ranks[1])
	}
	if math.Abs(*ranks[0]-50) > 1e-9 {
		t.Errorf("expected tied rank 50, got %v", *ranks[0])
	}
	if math.Abs(*ranks[2]-100) > 1e-9 {
		t.Errorf("expected top rank 100, got %v", *ranks[2])
	}
}

func TestPercentileRanksSkipsMissing(t *testing.T) {
	// The nil entry stays nil and shrinks the denominator to 2
	ranks := PercentileRanks([]*float64{nil, f(10), f(20)})

	if ranks[0] != nil {
		t.Errorf("missing input must stay missing, got %v", *ranks[0])
	}
	if math.Abs(*ranks[1]-50) > 1e-9 {
		t.Errorf("expected 50 over a universe of 2, got %v", *ranks[1])
	}
	if math.Abs(*ranks[2]-100) > 1e-9 {
		t.Errorf("expected 100 over a universe of 2, got %v", *ranks[2])
	}
}

func TestPercentileRanksAllMissing(t *testing.T) {
	ranks := PercentileRanks([]*float64{nil, nil})
	for i, r := range ranks {
		if r != nil {
			t.Errorf("rank %d: expected nil, got %v", i, *r)
		}
	}
}

func TestPercentileRanksSingleValue(t *testing.T) {
	ranks := PercentileRanks([]*float64{f(1.23)})
	if ranks[0] == nil || *ranks[0] != 100 {
		t.Errorf("sole instrument must rank 100, got %v", ranks[0])
	}
}

func TestPercentileRanksMonotonic(t *testing.T) {
	ranks := PercentileRanks([]*float64{f(-3), f(7), f(0), f(12), f(5)})
	// Higher value never ranks below a lower one
	values := []float64{-3, 7, 0, 12, 5}
	for i := range values {
		for j := range values {
			if values[i] < values[j] && *ranks[i] >= *ranks[j] {
				t.Errorf("rank order violated: value %v ranked %v, value %v ranked %v",
					values[i], *ranks[i], values[j], *ranks[j])
			}
		}
	}
}
