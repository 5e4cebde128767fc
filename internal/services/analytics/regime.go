package analytics

import (
	"fmt"
	"math"
	"time"

	"StockPulse/internal/domain/models"
)

// Override trigger thresholds on the aligned conditions deltas.
const (
	riskOff1W = 0.05
	riskOff4W = 0.10
)

// ClassifyRegime reindexes the conditions series onto the benchmark trading-day calendar
// (forward-filling gaps), evaluates the score at the last benchmark day on or before asOf,
// and applies the override triggers. The returned snapshot is immutable.
func ClassifyRegime(
	conditions models.ConditionsSeries,
	benchmark models.Series,
	asOf time.Time,
) (*models.RegimeScore, error) {
	if benchmark.Empty() {
		return nil, fmt.Errorf("benchmark series empty: %w", models.ErrNoTradingDay)
	}
	if conditions.Empty() {
		return nil, fmt.Errorf("conditions series empty: %w", models.ErrAlignment)
	}

	asOfDay := truncateDay(asOf)
	idx := -1
	for i := range benchmark {
		if !truncateDay(benchmark[i].Date).After(asOfDay) {
			idx = i
		}
	}
	if idx < 0 {
		return nil, models.ErrNoTradingDay
	}

	closes := benchmark.Closes()
	ma50 := RollingMean(closes, 50)
	ma200 := RollingMean(closes, 200)

	level := alignForwardFill(conditions, benchmark)
	s1w := delta(level, 5)
	s4w := delta(level, 20)
	s1wPrev := shiftN(s1w, 5)

	for _, series := range [][]float64{level, s1w, s4w, s1wPrev, ma50, ma200} {
		if models.IsUnknown(series[idx]) {
			return nil, fmt.Errorf("regime score at %s: %w",
				asOfDay.Format("2006-01-02"), models.ErrInsufficientHistory)
		}
	}

	l := level[idx]
	s1wT := s1w[idx]
	s4wT := s4w[idx]
	s1wPrevT := s1wPrev[idx]

	riskOffTrigger := (s1wT > riskOff1W && s1wPrevT > riskOff1W) || s4wT > riskOff4W
	riskOnTrigger := (s1wT < -riskOff1W && s1wPrevT < -riskOff1W) || s4wT < -riskOff4W

	price := closes[idx]
	priceScore := PriceScore(price, ma50[idx], ma200[idx])

	levelScore := 35.0 * clip01((-l+0.5)/1.2)
	trendRaw := 0.6*s1wT + 0.4*(s4wT/4.0)
	trendScore := 35.0 * clip01((-trendRaw+0.03)/0.10)
	absPenalty := 15.0 * clip01((math.Abs(l)-0.3)/0.7)

	total := levelScore + trendScore + float64(priceScore) - absPenalty
	totalScore := math.Max(0.0, math.Min(100.0, total))

	state, rung, allowNewEntries := StateFromScore(totalScore)
	notes := ""
	if riskOffTrigger {
		allowNewEntries = false
		rung = rung.StepDown()
		notes = "risk_off_trigger: max_exposure lowered"
	} else if riskOnTrigger {
		// annotation only: a risk-on trigger never boosts exposure
		notes = "risk_on_trigger: no exposure boost"
	}

	return &models.RegimeScore{
		Date:            asOf.Format("2006-01-02"),
		NfciL:           l,
		S1W:             s1wT,
		S4W:             s4wT,
		PriceClose:      price,
		MA50:            ma50[idx],
		MA200:           ma200[idx],
		PriceScore:      float64(priceScore),
		LevelScore:      levelScore,
		TrendScore:      trendScore,
		AbsPenalty:      absPenalty,
		TotalScore:      totalScore,
		RiskOffTrigger:  riskOffTrigger,
		RiskOnTrigger:   riskOnTrigger,
		State:           state,
		Rung:            rung,
		MaxExposure:     rung.Cap(),
		AllowNewEntries: allowNewEntries,
		Notes:           notes,
	}, nil
}

// PriceScore maps the (price, ma50, ma200) ordering onto {30, 15, 5, 0}.
func PriceScore(price, ma50, ma200 float64) int {
	switch {
	case price > ma50 && ma50 > ma200:
		return 30
	case price > ma50:
		return 15
	case price > ma200:
		return 5
	default:
		return 0
	}
}

// StateFromScore maps a clamped score onto the five-state ladder with the initial
// entry-permission flag.
func StateFromScore(score float64) (models.RegimeState, models.ExposureRung, bool) {
	switch {
	case score >= 80:
		return models.RiskOnStrong, models.RungFull, true
	case score >= 60:
		return models.RiskOn, models.RungHigh, true
	case score >= 40:
		return models.Neutral, models.RungHalf, false
	case score >= 20:
		return models.RiskOff, models.RungLow, false
	default:
		return models.RiskOffStrong, models.RungFloor, false
	}
}

// RegimeAllows gates a fired trigger on the current regime. Breakouts are treated as
// regime-independent and pass in any state.
func RegimeAllows(state models.RegimeState, trigger string) bool {
	if state == models.RiskOnStrong || state == models.RiskOn {
		return true
	}
	return trigger == TriggerBreakout
}

func clip01(x float64) float64 {
	return math.Max(0.0, math.Min(1.0, x))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// alignForwardFill carries the latest conditions value at or before each benchmark
// trading day; NaN before the first observation.
func alignForwardFill(conditions models.ConditionsSeries, benchmark models.Series) []float64 {
	out := make([]float64, len(benchmark))
	j := 0
	current := models.Unknown()
	for i := range benchmark {
		day := truncateDay(benchmark[i].Date)
		for j < len(conditions) && !truncateDay(conditions[j].Date).After(day) {
			current = conditions[j].Value
			j++
		}
		out[i] = current
	}
	return out
}

// delta is vals[i] - vals[i-n], NaN while either side is missing.
func delta(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i < n {
			out[i] = models.Unknown()
			continue
		}
		out[i] = vals[i] - vals[i-n]
	}
	return out
}

func shiftN(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i < n {
			out[i] = models.Unknown()
			continue
		}
		out[i] = vals[i-n]
	}
	return out
}
