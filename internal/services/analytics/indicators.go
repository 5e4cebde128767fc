package analytics

import (
	"StockPulse/internal/domain/models"
)

// IndicatorSet bundles rolling series aligned bar-for-bar with the source series.
// Entries are NaN until enough history exists; they never default to zero.
type IndicatorSet struct {
	SMA25   []float64
	SMA50   []float64
	SMA200  []float64
	VolMA20 []float64
	// High20D is the trailing 20-bar high ending at the prior bar. Excluding the current
	// bar keeps a bar from breaking out past a high that includes itself.
	High20D []float64
	// High52W is the trailing-inclusive 252-bar high.
	High52W []float64
	// Drawdown20D is (inclusive-20-bar-high - close) / inclusive-20-bar-high,
	// NaN when the high is zero or unknown.
	Drawdown20D []float64
}

// ComputeIndicators derives the full indicator set from a daily series. It is pure and
// never fails; absent history yields NaN entries.
func ComputeIndicators(s models.Series) *IndicatorSet {
	closes := s.Closes()
	highs := s.Highs()
	vols := s.Volumes()

	high20Incl := RollingMax(highs, 20)
	dd20 := make([]float64, len(s))
	for i := range dd20 {
		if models.IsUnknown(high20Incl[i]) || high20Incl[i] == 0 || models.IsUnknown(closes[i]) {
			dd20[i] = models.Unknown()
			continue
		}
		dd20[i] = (high20Incl[i] - closes[i]) / high20Incl[i]
	}

	return &IndicatorSet{
		SMA25:       RollingMean(closes, 25),
		SMA50:       RollingMean(closes, 50),
		SMA200:      RollingMean(closes, 200),
		VolMA20:     RollingMean(vols, 20),
		High20D:     ShiftOne(high20Incl),
		High52W:     RollingMax(highs, 252),
		Drawdown20D: dd20,
	}
}

// DrawdownFromPeak computes 1 - close/peak where peak is the trailing `window`-bar max
// of close ending at the prior bar. NaN wherever close is unknown or the peak is zero
// or unknown, so a division by zero never leaks into a comparison.
func DrawdownFromPeak(closes []float64, window int) []float64 {
	peak := ShiftOne(RollingMax(closes, window))
	out := make([]float64, len(closes))
	for i := range closes {
		if models.IsUnknown(closes[i]) || models.IsUnknown(peak[i]) || peak[i] == 0 {
			out[i] = models.Unknown()
			continue
		}
		out[i] = 1 - closes[i]/peak[i]
	}
	return out
}

// RollingMean is the trailing n-bar arithmetic mean; NaN until n bars exist or when any
// bar in the window is unknown.
func RollingMean(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i < n-1 {
			out[i] = models.Unknown()
			continue
		}
		sum := 0.0
		for j := i - n + 1; j <= i; j++ {
			sum += vals[j]
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RollingMax is the trailing-inclusive n-bar maximum; NaN until n bars exist or when any
// bar in the window is unknown.
func RollingMax(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i < n-1 {
			out[i] = models.Unknown()
			continue
		}
		max := vals[i-n+1]
		for j := i - n + 2; j <= i; j++ {
			if models.IsUnknown(vals[j]) {
				max = models.Unknown()
				break
			}
			if vals[j] > max {
				max = vals[j]
			}
		}
		out[i] = max
	}
	return out
}

// ShiftOne moves a series forward by one bar, leaving NaN at index 0.
func ShiftOne(vals []float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	out[0] = models.Unknown()
	copy(out[1:], vals[:len(vals)-1])
	return out
}
