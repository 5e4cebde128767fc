package models

import "time"

// ConditionsPoint is one observation of the financial-conditions index.
type ConditionsPoint struct {
	Date  time.Time
	Value float64
}

// ConditionsSeries is an ascending-by-date conditions-index series (weekly NFCI cadence;
// the regime classifier reindexes it onto the benchmark trading-day calendar).
type ConditionsSeries []ConditionsPoint

func (s ConditionsSeries) Empty() bool {
	return len(s) == 0
}

// Latest returns the most recent observation. Callers must check Empty first.
func (s ConditionsSeries) Latest() ConditionsPoint {
	return s[len(s)-1]
}
