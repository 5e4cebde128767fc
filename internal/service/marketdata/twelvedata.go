package marketdata

import (
	"encoding/json"
	"fmt"
	"strconv"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
	"StockPulse/pkg/util"
)

// TwelveDataConfig holds the Twelve Data time_series endpoint settings.
type TwelveDataConfig struct {
	BaseURL    string
	Interval   string
	OutputSize int
	APIKey     string
}

// TwelveData is the primary daily-bars provider.
type TwelveData struct {
	cfg TwelveDataConfig
}

func NewTwelveData(cfg TwelveDataConfig) *TwelveData {
	return &TwelveData{cfg: cfg}
}

func (t *TwelveData) Name() string { return "twelvedata" }

func (t *TwelveData) Request(symbol string) *xhttp.RequestOptions {
	return &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    t.cfg.BaseURL,
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"interval":   {t.cfg.Interval},
			"outputsize": {strconv.Itoa(t.cfg.OutputSize)},
			"apikey":     {t.cfg.APIKey},
		},
	}
}

type twelveDataEnvelope struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Values  json.RawMessage `json:"values"`
}

type twelveDataValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

// CheckPayload rejects bodies carrying an in-band error or no values array.
// Twelve Data returns HTTP 200 with {"code":429,...} when the per-minute
// credit budget is exhausted.
func (t *TwelveData) CheckPayload(raw []byte) error {
	var env twelveDataEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if env.Status == "error" || env.Code != 0 {
		return fmt.Errorf("api error (code %d): %s", env.Code, env.Message)
	}
	if len(env.Values) == 0 {
		return fmt.Errorf("payload has no values")
	}
	return nil
}

func (t *TwelveData) Parse(raw []byte) (models.Series, error) {
	var env twelveDataEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	var values []twelveDataValue
	if err := json.Unmarshal(env.Values, &values); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}

	series := make(models.Series, 0, len(values))
	for _, v := range values {
		date, ok := util.ParseBarDate(v.Datetime)
		if !ok {
			continue
		}
		series = append(series, models.Bar{
			Date:   date,
			Open:   parseField(v.Open),
			High:   parseField(v.High),
			Low:    parseField(v.Low),
			Close:  parseField(v.Close),
			Volume: parseField(v.Volume),
		})
	}
	// Values arrive newest first
	series.SortByDate()
	return series, nil
}

// parseField converts a provider numeric string, mapping bad input to the
// unknown sentinel rather than failing the whole series.
func parseField(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.Unknown()
	}
	return f
}
