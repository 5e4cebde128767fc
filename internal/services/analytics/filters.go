package analytics

import (
	"StockPulse/internal/domain/models"
)

// Eligibility reason codes.
const (
	ReasonNoData              = "no_data"
	ReasonInsufficientHistory = "insufficient_history"
	ReasonCloseBelowSMA50     = "close_below_sma50"
	ReasonSMA50BelowSMA200    = "sma50_below_sma200"
	ReasonTooExtended52W      = "too_extended_52w"
	ReasonDrawdownTooLarge    = "drawdown_too_large"
)

// EligibilityResult reports whether the latest bar is a trigger candidate, with every
// violated reason in check order.
type EligibilityResult struct {
	Eligible bool
	Reasons  []string
}

// CheckEligibility fails closed: no bars or an undefined required indicator short-circuits
// to ineligible. Otherwise all four checks run independently so every violated reason is
// reported, not just the first.
func CheckEligibility(
	s models.Series,
	ind *IndicatorSet,
	drawdownMax float64,
	high52wMaxMultiple float64,
	sma50Tolerance float64,
) EligibilityResult {
	if s.Empty() {
		return EligibilityResult{Eligible: false, Reasons: []string{ReasonNoData}}
	}

	i := len(s) - 1
	close := s[i].Close
	sma50 := ind.SMA50[i]
	sma200 := ind.SMA200[i]
	high52w := ind.High52W[i]
	dd20 := ind.Drawdown20D[i]

	if models.IsUnknown(sma50) || models.IsUnknown(sma200) || models.IsUnknown(high52w) {
		return EligibilityResult{Eligible: false, Reasons: []string{ReasonInsufficientHistory}}
	}

	var reasons []string
	if close < sma50*(1-sma50Tolerance) {
		reasons = append(reasons, ReasonCloseBelowSMA50)
	}
	if sma50 < sma200*0.98 {
		reasons = append(reasons, ReasonSMA50BelowSMA200)
	}
	if close > high52w*high52wMaxMultiple {
		reasons = append(reasons, ReasonTooExtended52W)
	}
	if dd20 > drawdownMax {
		reasons = append(reasons, ReasonDrawdownTooLarge)
	}

	return EligibilityResult{Eligible: len(reasons) == 0, Reasons: reasons}
}
