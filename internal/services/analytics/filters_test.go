package analytics

import (
	"reflect"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func oneBar(close float64) models.Series {
	return models.Series{{
		Date:   time.Date(2024, 10, 11, 0, 0, 0, 0, time.UTC),
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: 1000,
	}}
}

func indAt(sma50, sma200, high52w, dd20 float64) *IndicatorSet {
	return &IndicatorSet{
		SMA25:       []float64{models.Unknown()},
		SMA50:       []float64{sma50},
		SMA200:      []float64{sma200},
		VolMA20:     []float64{models.Unknown()},
		High20D:     []float64{models.Unknown()},
		High52W:     []float64{high52w},
		Drawdown20D: []float64{dd20},
	}
}

func TestCheckEligibilityNoData(t *testing.T) {
	res := CheckEligibility(models.Series{}, &IndicatorSet{}, 0.15, 1.05, 0)
	if res.Eligible {
		t.Fatal("empty series must be ineligible")
	}
	if !reflect.DeepEqual(res.Reasons, []string{ReasonNoData}) {
		t.Fatalf("reasons = %v", res.Reasons)
	}
}

func TestCheckEligibilityInsufficientHistory(t *testing.T) {
	res := CheckEligibility(oneBar(100), indAt(models.Unknown(), 95, 110, 0.02), 0.15, 1.05, 0)
	if res.Eligible {
		t.Fatal("undefined sma50 must be ineligible")
	}
	if !reflect.DeepEqual(res.Reasons, []string{ReasonInsufficientHistory}) {
		t.Fatalf("reasons = %v", res.Reasons)
	}
}

func TestCheckEligibilityPasses(t *testing.T) {
	res := CheckEligibility(oneBar(100), indAt(98, 95, 110, 0.02), 0.15, 1.05, 0)
	if !res.Eligible || len(res.Reasons) != 0 {
		t.Fatalf("eligible = %v, reasons = %v", res.Eligible, res.Reasons)
	}
}

func TestCheckEligibilityReasons(t *testing.T) {
	cases := []struct {
		name string
		ind  *IndicatorSet
		want []string
	}{
		{"close below sma50", indAt(110, 95, 120, 0.02), []string{ReasonCloseBelowSMA50}},
		{"sma50 below sma200", indAt(98, 105, 120, 0.02), []string{ReasonSMA50BelowSMA200}},
		{"too extended 52w", indAt(98, 95, 90, 0.02), []string{ReasonTooExtended52W}},
		{"drawdown too large", indAt(98, 95, 120, 0.20), []string{ReasonDrawdownTooLarge}},
		{"accumulates in order", indAt(110, 120, 90, 0.20), []string{
			ReasonCloseBelowSMA50, ReasonSMA50BelowSMA200, ReasonTooExtended52W, ReasonDrawdownTooLarge,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := CheckEligibility(oneBar(100), tc.ind, 0.15, 1.05, 0)
			if res.Eligible {
				t.Fatal("must be ineligible")
			}
			if !reflect.DeepEqual(res.Reasons, tc.want) {
				t.Fatalf("reasons = %v, want %v", res.Reasons, tc.want)
			}
		})
	}
}

func TestCheckEligibilitySMA50Tolerance(t *testing.T) {
	// Close 99 sits under sma50 100 but inside a 2% tolerance band.
	res := CheckEligibility(oneBar(99), indAt(100, 95, 120, 0.02), 0.15, 1.05, 0.02)
	if !res.Eligible {
		t.Fatalf("tolerance band must admit close just under sma50, reasons = %v", res.Reasons)
	}

	res = CheckEligibility(oneBar(99), indAt(100, 95, 120, 0.02), 0.15, 1.05, 0)
	if res.Eligible {
		t.Fatal("zero tolerance must reject close under sma50")
	}
}

func TestCheckEligibilitySMA50Near200Band(t *testing.T) {
	// sma50 within 2% below sma200 is still acceptable.
	res := CheckEligibility(oneBar(100), indAt(99, 100, 120, 0.02), 0.15, 1.05, 0)
	if !res.Eligible {
		t.Fatalf("sma50 inside the 2%% band must pass, reasons = %v", res.Reasons)
	}
}
