package analytics

import (
	"fmt"

	"StockPulse/internal/domain/models"
	applogger "StockPulse/pkg/logger"
)

// Trigger names double as the reason code on a fired result.
const (
	TriggerPullback25 = "PULLBACK_25_BOUNCE"
	TriggerPullback50 = "PULLBACK_50_BOUNCE"
	TriggerBreakout   = "BREAKOUT_20D"
)

// TriggerResult is the outcome of one trigger evaluation for the latest bar.
type TriggerResult struct {
	Fired  bool
	Reason string
}

// Pullback25Bounce fires when the bar dips to the 25-bar average and closes back above
// it on below-average volume.
func Pullback25Bounce(s models.Series, ind *IndicatorSet, tol float64) TriggerResult {
	if s.Empty() {
		return TriggerResult{false, ReasonNoData}
	}
	i := len(s) - 1
	latest := s[i]
	sma25 := ind.SMA25[i]
	volMA20 := ind.VolMA20[i]
	if models.IsUnknown(sma25) || models.IsUnknown(volMA20) {
		return TriggerResult{false, ReasonInsufficientHistory}
	}
	fired := latest.Low <= sma25*(1+tol) &&
		latest.Close >= sma25 &&
		latest.Volume <= volMA20
	return TriggerResult{fired, TriggerPullback25}
}

// Pullback50Bounce is the 50-bar variant, additionally gated on the 20-day drawdown.
func Pullback50Bounce(s models.Series, ind *IndicatorSet, tol, dd20Max float64) TriggerResult {
	if s.Empty() {
		return TriggerResult{false, ReasonNoData}
	}
	i := len(s) - 1
	latest := s[i]
	sma50 := ind.SMA50[i]
	volMA20 := ind.VolMA20[i]
	dd20 := ind.Drawdown20D[i]
	if models.IsUnknown(sma50) || models.IsUnknown(volMA20) || models.IsUnknown(dd20) {
		return TriggerResult{false, ReasonInsufficientHistory}
	}
	fired := latest.Low <= sma50*(1+tol) &&
		latest.Close >= sma50 &&
		latest.Volume <= volMA20 &&
		dd20 <= dd20Max
	return TriggerResult{fired, TriggerPullback50}
}

// Breakout20D fires on a close above the prior-20-bar high, capped at 5% extension, on
// volume clearing volumeMult times the 20-bar average. A windowed drawdown-from-peak
// beyond ddMax rejects before the breakout condition is even looked at. The drawdown
// metric is logged for every evaluation, fired or not.
func Breakout20D(
	s models.Series,
	ind *IndicatorSet,
	volumeMult float64,
	ddWindow int,
	ddMax float64,
	symbol string,
	l *applogger.Logger,
) TriggerResult {
	if s.Empty() {
		return TriggerResult{false, ReasonNoData}
	}
	i := len(s) - 1
	latest := s[i]
	high20d := ind.High20D[i]
	volMA20 := ind.VolMA20[i]
	ddValue := DrawdownFromPeak(s.Closes(), ddWindow)[i]

	if l != nil {
		l.Info("breakout drawdown metric",
			applogger.String("symbol", symbol),
			applogger.String("dd_metric", "peak_n"),
			applogger.Int("dd_window", ddWindow),
			applogger.String("dd_value", formatDD(ddValue)),
		)
	}

	if models.IsUnknown(high20d) || models.IsUnknown(volMA20) {
		return TriggerResult{false, ReasonInsufficientHistory}
	}
	if !models.IsUnknown(ddValue) && ddValue > ddMax {
		if l != nil {
			l.Info("breakout excluded by drawdown",
				applogger.String("symbol", symbol),
				applogger.Int("dd_window", ddWindow),
				applogger.String("dd_value", formatDD(ddValue)),
				applogger.String("dd_max", fmt.Sprintf("%.6f", ddMax)),
			)
		}
		return TriggerResult{false, ReasonDrawdownTooLarge}
	}

	fired := latest.Close > high20d &&
		latest.Close <= high20d*1.05 &&
		latest.Volume >= volMA20*volumeMult
	return TriggerResult{fired, TriggerBreakout}
}

func formatDD(v float64) string {
	if models.IsUnknown(v) {
		return "nan"
	}
	return fmt.Sprintf("%.6f", v)
}
