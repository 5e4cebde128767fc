package marketdata

import (
	"encoding/json"
	"fmt"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
	"StockPulse/pkg/util"
)

// AlphaVantageConfig holds the Alpha Vantage daily endpoint settings.
type AlphaVantageConfig struct {
	BaseURL    string
	Function   string
	OutputSize string
	APIKey     string
}

// AlphaVantage is the fallback daily-bars provider.
type AlphaVantage struct {
	cfg AlphaVantageConfig
}

func NewAlphaVantage(cfg AlphaVantageConfig) *AlphaVantage {
	return &AlphaVantage{cfg: cfg}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

func (a *AlphaVantage) Request(symbol string) *xhttp.RequestOptions {
	return &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    a.cfg.BaseURL,
		QueryParams: map[string][]string{
			"function":   {a.cfg.Function},
			"symbol":     {symbol},
			"outputsize": {a.cfg.OutputSize},
			"apikey":     {a.cfg.APIKey},
		},
	}
}

const avSeriesKey = "Time Series (Daily)"

type avBar struct {
	Open    string `json:"1. open"`
	High    string `json:"2. high"`
	Low     string `json:"3. low"`
	Close   string `json:"4. close"`
	Volume5 string `json:"5. volume"`
	Volume6 string `json:"6. volume"`
}

// CheckPayload rejects rate-limit notes and error payloads. Alpha Vantage
// reports all of these with HTTP 200: "Note" for the per-minute limit,
// "Information" for the daily limit, "Error Message" for bad requests.
func (a *AlphaVantage) CheckPayload(raw []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	for _, marker := range []string{"Note", "Information", "Error Message"} {
		if msg, ok := probe[marker]; ok {
			return fmt.Errorf("api %s: %s", marker, msg)
		}
	}
	if _, ok := probe[avSeriesKey]; !ok {
		return fmt.Errorf("payload has no %q", avSeriesKey)
	}
	return nil
}

func (a *AlphaVantage) Parse(raw []byte) (models.Series, error) {
	var env struct {
		Series map[string]avBar `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	series := make(models.Series, 0, len(env.Series))
	for dateStr, b := range env.Series {
		date, ok := util.ParseBarDate(dateStr)
		if !ok {
			continue
		}
		// Adjusted payloads move volume to "6. volume"
		vol := b.Volume6
		if vol == "" {
			vol = b.Volume5
		}
		series = append(series, models.Bar{
			Date:   date,
			Open:   parseField(b.Open),
			High:   parseField(b.High),
			Low:    parseField(b.Low),
			Close:  parseField(b.Close),
			Volume: parseField(vol),
		})
	}
	series.SortByDate()
	return series, nil
}
