package conditions

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// Config points the fetcher at the index publishers. CSVURL is the Chicago Fed
// weekly release; the FRED URLs are the fredgraph.csv exports used as fallback
// and for full-history pulls.
type Config struct {
	CSVURL       string
	FredNfciURL  string
	FredAnfciURL string
}

// NFCI fetches the Chicago Fed National Financial Conditions Index. The
// Chicago Fed publishes the freshest value; FRED lags by a few days but
// serves the full history in one request.
type NFCI struct {
	cfg    Config
	client *xhttp.Client
	log    *applogger.Logger
}

func NewNFCI(cfg Config, client *xhttp.Client, log *applogger.Logger) *NFCI {
	return &NFCI{cfg: cfg, client: client, log: log}
}

// FetchSeries pulls the full NFCI history from FRED, ascending by date.
func (n *NFCI) FetchSeries(ctx context.Context) (models.ConditionsSeries, error) {
	series, err := n.fetchCSVSeries(ctx, n.cfg.FredNfciURL)
	if err != nil {
		return nil, fmt.Errorf("fred nfci series: %w", err)
	}
	if series.Empty() {
		return nil, fmt.Errorf("fred nfci series empty")
	}
	return series, nil
}

// FetchLatest returns the most recent observation, preferring the Chicago Fed
// release and falling back to FRED.
func (n *NFCI) FetchLatest(ctx context.Context) (*models.ConditionsPoint, error) {
	if n.cfg.CSVURL != "" {
		if p, err := n.fetchChicagoFed(ctx); err == nil {
			return p, nil
		} else {
			n.log.Warn("chicago fed fetch failed, falling back to fred", applogger.Error(err))
		}
	}
	series, err := n.FetchSeries(ctx)
	if err != nil {
		return nil, err
	}
	latest := series.Latest()
	return &latest, nil
}

func (n *NFCI) fetchChicagoFed(ctx context.Context) (*models.ConditionsPoint, error) {
	rows, err := n.fetchCSV(ctx, n.cfg.CSVURL)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("chicago fed csv empty")
	}
	last := rows[len(rows)-1]
	if len(last) < 2 {
		return nil, fmt.Errorf("chicago fed csv row too short")
	}
	date, ok := util.ParseBarDate(last[0])
	if !ok {
		return nil, fmt.Errorf("chicago fed csv bad date %q", last[0])
	}
	value, err := strconv.ParseFloat(last[1], 64)
	if err != nil {
		return nil, fmt.Errorf("chicago fed csv bad value %q", last[1])
	}
	if len(last) >= 3 {
		if anfci, err := strconv.ParseFloat(last[2], 64); err == nil {
			n.log.Debug("adjusted index", applogger.Float64("anfci", anfci))
		}
	}
	return &models.ConditionsPoint{Date: date, Value: value}, nil
}

func (n *NFCI) fetchCSVSeries(ctx context.Context, url string) (models.ConditionsSeries, error) {
	rows, err := n.fetchCSV(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv has no observations")
	}

	// First row is the header; FRED marks missing observations with "."
	series := make(models.ConditionsSeries, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		date, ok := util.ParseBarDate(row[0])
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		series = append(series, models.ConditionsPoint{Date: date, Value: value})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, nil
}

func (n *NFCI) fetchCSV(ctx context.Context, url string) ([][]string, error) {
	var raw []byte
	opts := &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: url}
	if err := n.client.SendAndParse(ctx, opts, &raw); err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}
