package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func risingBenchmark(n int) models.Series {
	days := tradingDays(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), n)
	s := make(models.Series, n)
	for i := range s {
		c := 100 + float64(i)*0.5
		s[i] = models.Bar{Date: days[i], Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return s
}

func weeklyLevels(start time.Time, weeks int, value func(week int) float64) models.ConditionsSeries {
	out := make(models.ConditionsSeries, weeks)
	for i := range out {
		out[i] = models.ConditionsPoint{Date: start.AddDate(0, 0, 7*i), Value: value(i)}
	}
	return out
}

func TestClassifyRegimeRiskOn(t *testing.T) {
	bench := risingBenchmark(260)
	cond := weeklyLevels(time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC), 60,
		func(int) float64 { return -0.6 })
	asOf := bench.Latest().Date

	score, err := ClassifyRegime(cond, bench, asOf)
	if err != nil {
		t.Fatalf("ClassifyRegime: %v", err)
	}
	if score.State != models.RiskOn {
		t.Fatalf("state = %s, want %s (total=%.2f)", score.State, models.RiskOn, score.TotalScore)
	}
	if !score.AllowNewEntries {
		t.Fatal("risk-on must allow new entries")
	}
	if score.MaxExposure != 0.70 {
		t.Fatalf("max exposure = %v, want 0.70", score.MaxExposure)
	}
	if score.RiskOffTrigger {
		t.Fatal("flat conditions must not trip the risk-off trigger")
	}
	if score.PriceScore != 30 {
		t.Fatalf("price score = %v, want 30", score.PriceScore)
	}
	if math.Abs(score.NfciL+0.6) > 1e-9 {
		t.Fatalf("level = %v, want -0.6", score.NfciL)
	}
	if got := score.Date; got != asOf.Format("2006-01-02") {
		t.Fatalf("date = %s", got)
	}
}

func TestClassifyRegimeRiskOffTrigger(t *testing.T) {
	bench := risingBenchmark(260)
	// Conditions deteriorate 0.1 per week through the evaluation window.
	cond := weeklyLevels(time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC), 60,
		func(week int) float64 { return -1.0 + 0.1*float64(week) })
	asOf := bench.Latest().Date

	score, err := ClassifyRegime(cond, bench, asOf)
	if err != nil {
		t.Fatalf("ClassifyRegime: %v", err)
	}
	if !score.RiskOffTrigger {
		t.Fatalf("rising conditions must trip the risk-off trigger (s1w=%.3f s4w=%.3f)", score.S1W, score.S4W)
	}
	if score.AllowNewEntries {
		t.Fatal("risk-off trigger must block new entries")
	}
	if score.Notes == "" {
		t.Fatal("risk-off trigger must annotate the snapshot")
	}
	base := score.Rung
	_, wantBase, _ := StateFromScore(score.TotalScore)
	if base != wantBase.StepDown() {
		t.Fatalf("rung = %d, want %d stepped down from %d", base, wantBase.StepDown(), wantBase)
	}
	if score.MaxExposure != score.Rung.Cap() {
		t.Fatalf("max exposure %v disagrees with rung cap %v", score.MaxExposure, score.Rung.Cap())
	}
}

func TestClassifyRegimeScoreBounds(t *testing.T) {
	bench := risingBenchmark(260)
	cond := weeklyLevels(time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC), 60,
		func(int) float64 { return -3.0 })

	score, err := ClassifyRegime(cond, bench, bench.Latest().Date)
	if err != nil {
		t.Fatalf("ClassifyRegime: %v", err)
	}
	if score.TotalScore < 0 || score.TotalScore > 100 {
		t.Fatalf("total score %v out of [0,100]", score.TotalScore)
	}
}

func TestClassifyRegimeEmptyInputs(t *testing.T) {
	bench := risingBenchmark(260)
	cond := weeklyLevels(time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC), 60,
		func(int) float64 { return -0.6 })

	if _, err := ClassifyRegime(cond, models.Series{}, time.Now()); !errors.Is(err, models.ErrNoTradingDay) {
		t.Fatalf("empty benchmark: err = %v", err)
	}
	if _, err := ClassifyRegime(models.ConditionsSeries{}, bench, time.Now()); !errors.Is(err, models.ErrAlignment) {
		t.Fatalf("empty conditions: err = %v", err)
	}
}

func TestClassifyRegimeAsOfBeforeHistory(t *testing.T) {
	bench := risingBenchmark(260)
	cond := weeklyLevels(time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC), 60,
		func(int) float64 { return -0.6 })
	before := bench[0].Date.AddDate(0, 0, -1)

	if _, err := ClassifyRegime(cond, bench, before); !errors.Is(err, models.ErrNoTradingDay) {
		t.Fatalf("err = %v", err)
	}
}

func TestClassifyRegimeInsufficientHistory(t *testing.T) {
	bench := risingBenchmark(100)
	cond := weeklyLevels(time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC), 60,
		func(int) float64 { return -0.6 })

	if _, err := ClassifyRegime(cond, bench, bench.Latest().Date); !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("err = %v", err)
	}
}

func TestClassifyRegimeUsesLastTradingDay(t *testing.T) {
	bench := risingBenchmark(260)
	cond := weeklyLevels(time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC), 60,
		func(int) float64 { return -0.6 })
	// A weekend as-of resolves to the preceding trading day's close.
	sunday := bench.Latest().Date.AddDate(0, 0, 2)

	score, err := ClassifyRegime(cond, bench, sunday)
	if err != nil {
		t.Fatalf("ClassifyRegime: %v", err)
	}
	if score.PriceClose != bench.Latest().Close {
		t.Fatalf("price close = %v, want %v", score.PriceClose, bench.Latest().Close)
	}
}

func TestClassifyRegimeTighteningOnFlatBenchmark(t *testing.T) {
	days := tradingDays(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), 220)
	bench := make(models.Series, len(days))
	for i := range bench {
		bench[i] = models.Bar{Date: days[i], Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000}
	}
	// Daily conditions observations tightening 0.012 per bar.
	cond := make(models.ConditionsSeries, len(days))
	for i := range cond {
		cond[i] = models.ConditionsPoint{Date: days[i], Value: -3.128 + 0.012*float64(i)}
	}

	score, err := ClassifyRegime(cond, bench, bench.Latest().Date)
	if err != nil {
		t.Fatalf("ClassifyRegime: %v", err)
	}
	if !score.RiskOffTrigger {
		t.Fatalf("steady tightening must trip the risk-off trigger (s1w=%.3f s4w=%.3f)", score.S1W, score.S4W)
	}
	if score.AllowNewEntries {
		t.Fatal("risk-off trigger must block new entries")
	}
	_, scored, _ := StateFromScore(score.TotalScore)
	if score.Rung != scored.StepDown() {
		t.Fatalf("rung = %d, want %d stepped down from %d", score.Rung, scored.StepDown(), scored)
	}
	if score.State != models.RiskOff {
		t.Fatalf("state = %s (total=%.2f), want %s", score.State, score.TotalScore, models.RiskOff)
	}
	if score.MaxExposure != 0.05 {
		t.Fatalf("max exposure = %v, want 0.05 (one rung below the scored cap)", score.MaxExposure)
	}
}

func TestPriceScore(t *testing.T) {
	cases := []struct {
		price, ma50, ma200 float64
		want               int
	}{
		{110, 105, 100, 30},
		{110, 105, 108, 15},
		{105, 110, 100, 5},
		{90, 110, 100, 0},
	}
	for _, tc := range cases {
		if got := PriceScore(tc.price, tc.ma50, tc.ma200); got != tc.want {
			t.Fatalf("PriceScore(%v, %v, %v) = %d, want %d", tc.price, tc.ma50, tc.ma200, got, tc.want)
		}
	}
}

func TestStateFromScore(t *testing.T) {
	cases := []struct {
		score float64
		state models.RegimeState
		cap   float64
		allow bool
	}{
		{85, models.RiskOnStrong, 1.00, true},
		{80, models.RiskOnStrong, 1.00, true},
		{79.9, models.RiskOn, 0.70, true},
		{60, models.RiskOn, 0.70, true},
		{59.9, models.Neutral, 0.40, false},
		{40, models.Neutral, 0.40, false},
		{39.9, models.RiskOff, 0.15, false},
		{20, models.RiskOff, 0.15, false},
		{19.9, models.RiskOffStrong, 0.05, false},
		{0, models.RiskOffStrong, 0.05, false},
	}
	for _, tc := range cases {
		state, rung, allow := StateFromScore(tc.score)
		if state != tc.state || rung.Cap() != tc.cap || allow != tc.allow {
			t.Fatalf("StateFromScore(%v) = (%s, %v, %v), want (%s, %v, %v)",
				tc.score, state, rung.Cap(), allow, tc.state, tc.cap, tc.allow)
		}
	}
}

func TestRegimeAllows(t *testing.T) {
	cases := []struct {
		state   models.RegimeState
		trigger string
		want    bool
	}{
		{models.RiskOnStrong, TriggerPullback25, true},
		{models.RiskOn, TriggerPullback50, true},
		{models.Neutral, TriggerPullback25, false},
		{models.Neutral, TriggerBreakout, true},
		{models.RiskOff, TriggerPullback50, false},
		{models.RiskOffStrong, TriggerBreakout, true},
	}
	for _, tc := range cases {
		if got := RegimeAllows(tc.state, tc.trigger); got != tc.want {
			t.Fatalf("RegimeAllows(%s, %s) = %v, want %v", tc.state, tc.trigger, got, tc.want)
		}
	}
}

func TestExposureRungStepDown(t *testing.T) {
	if models.RungFull.StepDown() != models.RungHigh {
		t.Fatal("full steps to high")
	}
	if models.RungFloor.StepDown() != models.RungFloor {
		t.Fatal("floor stays at floor")
	}
}
