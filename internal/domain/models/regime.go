package models

import "time"

// RegimeState is the discrete market risk posture.
type RegimeState string

const (
	RiskOnStrong  RegimeState = "RISK_ON_STRONG"
	RiskOn        RegimeState = "RISK_ON"
	Neutral       RegimeState = "NEUTRAL"
	RiskOff       RegimeState = "RISK_OFF"
	RiskOffStrong RegimeState = "RISK_OFF_STRONG"
)

// ExposureRung indexes the fixed exposure ladder, top rung first. Modeling the ladder as
// an ordered enumeration avoids float comparisons against ladder members.
type ExposureRung int

const (
	RungFull ExposureRung = iota
	RungHigh
	RungHalf
	RungLow
	RungFloor
)

var exposureCaps = [...]float64{1.00, 0.70, 0.40, 0.15, 0.05}

// Cap returns the exposure cap for the rung.
func (r ExposureRung) Cap() float64 {
	if r < RungFull || r > RungFloor {
		return exposureCaps[RungFloor]
	}
	return exposureCaps[r]
}

// StepDown moves one rung toward the floor; no effect at the floor.
func (r ExposureRung) StepDown() ExposureRung {
	if r >= RungFloor {
		return RungFloor
	}
	return r + 1
}

// RegimeScore is an immutable snapshot of one regime evaluation.
type RegimeScore struct {
	Date            string       `json:"date"`
	NfciL           float64      `json:"nfci_l"`
	S1W             float64      `json:"s_1w"`
	S4W             float64      `json:"s_4w"`
	PriceClose      float64      `json:"price_close"`
	MA50            float64      `json:"ma50"`
	MA200           float64      `json:"ma200"`
	PriceScore      float64      `json:"price_score"`
	LevelScore      float64      `json:"level_score"`
	TrendScore      float64      `json:"trend_score"`
	AbsPenalty      float64      `json:"abs_penalty"`
	TotalScore      float64      `json:"total_score"`
	RiskOffTrigger  bool         `json:"risk_off_trigger"`
	RiskOnTrigger   bool         `json:"risk_on_trigger"`
	State           RegimeState  `json:"state"`
	Rung            ExposureRung `json:"-"`
	MaxExposure     float64      `json:"max_exposure"`
	AllowNewEntries bool         `json:"allow_new_entries"`
	Notes           string       `json:"notes"`
}

// Signal is one actionable trigger hit that survived the regime gate.
type Signal struct {
	Symbol  string  `json:"symbol"`
	Trigger string  `json:"trigger"`
	Close   float64 `json:"close"`
	Date    string  `json:"date"`
}

// ScanResult summarizes one full run over the symbol universe.
type ScanResult struct {
	StartedAt       time.Time      `json:"started_at"`
	Regime          *RegimeScore   `json:"regime"`
	Signals         []Signal       `json:"signals"`
	EligibleSymbols []string       `json:"eligible_symbols"`
	RejectedReasons map[string]int `json:"rejected_reasons,omitempty"`
	Skipped         []string       `json:"skipped,omitempty"`
}
