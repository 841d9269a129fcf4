package features

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPercentReturn(t *testing.T) {
	closes := []float64{100, 102, 104}
	if got := PercentReturn(closes, 1); !almostEqual(got, (104.0-102.0)/102.0) {
		t.Fatalf("unexpected 1-period return %v", got)
	}
	if got := PercentReturn(closes, 2); !almostEqual(got, 0.04) {
		t.Fatalf("unexpected 2-period return %v", got)
	}
}

func TestPercentReturnShortSeries(t *testing.T) {
	if got := PercentReturn([]float64{100}, 1); got != 0 {
		t.Fatalf("expected 0 for short series, got %v", got)
	}
	if got := PercentReturn(nil, 5); got != 0 {
		t.Fatalf("expected 0 for empty series, got %v", got)
	}
	if got := PercentReturn([]float64{0, 100}, 1); got != 0 {
		t.Fatalf("expected 0 for zero base, got %v", got)
	}
}

func TestAboveSMA20(t *testing.T) {
	rising := make([]float64, 21)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	if !AboveSMA20(rising) {
		t.Fatalf("rising series should sit above its moving average")
	}

	falling := make([]float64, 21)
	for i := range falling {
		falling[i] = 120 - float64(i)
	}
	if AboveSMA20(falling) {
		t.Fatalf("falling series should sit below its moving average")
	}
}

func TestAboveSMA20ShortSeries(t *testing.T) {
	// Fewer than 20 points fall back to the mean of all closes.
	if !AboveSMA20([]float64{100, 101, 105}) {
		t.Fatalf("last close above short-series mean should be true")
	}
	if AboveSMA20(nil) {
		t.Fatalf("empty series should be false")
	}
}

func TestAboveSMA20Boundary(t *testing.T) {
	// Exactly 20 points: the window covers the whole series.
	s20 := make([]float64, 20)
	for i := range s20 {
		s20[i] = 100
	}
	s20[19] = 101
	if !AboveSMA20(s20) {
		t.Fatalf("20-point series with rising last close should be true")
	}

	// Exactly 21 points: the first close drops out of the window.
	s21 := append([]float64{500}, s20...)
	if !AboveSMA20(s21) {
		t.Fatalf("outlier outside the 20-bar window must not affect the result")
	}
}

func TestNormalizedATRFlatSeries(t *testing.T) {
	flat := PadTrailing(nil, 21, 50)
	if got := NormalizedATR(flat, flat, flat, 20); got != 0 {
		t.Fatalf("flat series should give zero ATR, got %v", got)
	}
}

func TestNormalizedATR(t *testing.T) {
	// Constant 2-point range around a constant close of 100.
	n := 21
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 101
		lows[i] = 99
		closes[i] = 100
	}
	if got := NormalizedATR(highs, lows, closes, 20); !almostEqual(got, 0.02) {
		t.Fatalf("expected 0.02, got %v", got)
	}
}

func TestNormalizedATRMismatchedLengths(t *testing.T) {
	if got := NormalizedATR([]float64{1, 2}, []float64{1}, []float64{1, 2}, 20); got != 0 {
		t.Fatalf("mismatched inputs should give 0, got %v", got)
	}
}

func TestPadTrailing(t *testing.T) {
	got := PadTrailing([]float64{1, 2}, 5, 2)
	want := []float64{1, 2, 2, 2, 2}
	if len(got) != len(want) {
		t.Fatalf("unexpected length %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}

	same := []float64{1, 2, 3}
	if out := PadTrailing(same, 3, 9); len(out) != 3 || out[2] != 3 {
		t.Fatalf("series already at target length must be unchanged")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0.001, 0.02, 0.80); got != 0.02 {
		t.Fatalf("expected floor, got %v", got)
	}
	if got := Clamp(1.5, 0.02, 0.80); got != 0.80 {
		t.Fatalf("expected ceiling, got %v", got)
	}
	if got := Clamp(0.3, 0.02, 0.80); got != 0.3 {
		t.Fatalf("expected pass-through, got %v", got)
	}
}
