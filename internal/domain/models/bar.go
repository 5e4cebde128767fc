package models

import (
	"math"
	"sort"
	"time"
)

// Bar is one daily OHLCV bar. Missing numeric fields are NaN, never zero:
// a zero close is a real (if suspicious) price, an absent one is unknown.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is an ordered-by-date sequence of daily bars, ascending, no duplicate dates.
type Series []Bar

func (s Series) Empty() bool {
	return len(s) == 0
}

// Latest returns the most recent bar. Callers must check Empty first.
func (s Series) Latest() Bar {
	return s[len(s)-1]
}

func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// SortByDate orders bars ascending by date in place.
func (s Series) SortByDate() {
	sort.Slice(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}

// Unknown is the sentinel for absent numeric values.
func Unknown() float64 {
	return math.NaN()
}

// IsUnknown reports whether v is the missing-value sentinel.
func IsUnknown(v float64) bool {
	return math.IsNaN(v)
}
