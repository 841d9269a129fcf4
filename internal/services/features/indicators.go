package features

import "math"

// PercentReturn computes (closes[-1] - closes[-1-n]) / closes[-1-n].
// It returns 0 when fewer than n+1 points are available or the base is zero.
func PercentReturn(closes []float64, n int) float64 {
	if n <= 0 || len(closes) < n+1 {
		return 0
	}
	base := closes[len(closes)-1-n]
	if base == 0 {
		return 0
	}
	return (closes[len(closes)-1] - base) / base
}

// AboveSMA20 reports whether the last close sits above the mean of the
// trailing 20 closes, or of all closes when fewer are available. Callers that
// need the fixed 20-bar window pad the series first (see PadTrailing).
func AboveSMA20(closes []float64) bool {
	if len(closes) == 0 {
		return false
	}
	window := closes
	if len(window) > 20 {
		window = window[len(window)-20:]
	}
	sum := 0.0
	for _, c := range window {
		sum += c
	}
	return closes[len(closes)-1] > sum/float64(len(window))
}

// NormalizedATR computes the average true range over the last `period` bars,
// divided by the final close. True range per bar is the max of high-low,
// |high-prevClose| and |low-prevClose|. The [0.02, 0.80] clamp is applied by
// the caller, never here.
func NormalizedATR(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if period <= 0 || n < 2 || len(highs) != n || len(lows) != n {
		return 0
	}
	bars := period
	if bars > n-1 {
		bars = n - 1
	}
	sum := 0.0
	for i := n - bars; i < n; i++ {
		prev := closes[i-1]
		tr := highs[i] - lows[i]
		if d := math.Abs(highs[i] - prev); d > tr {
			tr = d
		}
		if d := math.Abs(lows[i] - prev); d > tr {
			tr = d
		}
		sum += tr
	}
	last := closes[n-1]
	if last == 0 {
		return 0
	}
	return sum / float64(bars) / last
}

// PadTrailing right-pads the series by repeating pad until length n.
// It returns the input unchanged when it is already long enough.
func PadTrailing(series []float64, n int, pad float64) []float64 {
	if len(series) >= n {
		return series
	}
	out := make([]float64, 0, n)
	out = append(out, series...)
	for len(out) < n {
		out = append(out, pad)
	}
	return out
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
