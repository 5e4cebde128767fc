package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
)

// ClickHouseRegimeLog implements RegimeLog on ClickHouse. One row per scan run,
// carrying the full score decomposition plus the trigger hits as JSON.
type ClickHouseRegimeLog struct {
	db    *sql.DB
	table string
}

func NewClickHouseRegimeLog(db *sql.DB, table string) drepo.RegimeLog {
	return &ClickHouseRegimeLog{db: db, table: table}
}

func (l *ClickHouseRegimeLog) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    logged_at        DateTime,
    date             String,
    nfci_l           Float64,
    s_1w             Float64,
    s_4w             Float64,
    price_close      Float64,
    ma50             Float64,
    ma200            Float64,
    price_score      Float64,
    level_score      Float64,
    trend_score      Float64,
    abs_penalty      Float64,
    total_score      Float64,
    risk_off_trigger UInt8,
    risk_on_trigger  UInt8,
    state            String,
    max_exposure     Float64,
    allow_new_entries UInt8,
    notes            String,
    hits             String
) ENGINE = MergeTree()
ORDER BY (logged_at)`, l.table)
	if _, err := l.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init regime log schema: %w", err)
	}
	return nil
}

func (l *ClickHouseRegimeLog) Append(ctx context.Context, regime *models.RegimeScore, hits []models.Signal) error {
	hitsJSON, err := json.Marshal(hits)
	if err != nil {
		return fmt.Errorf("marshal hits: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s
(logged_at, date, nfci_l, s_1w, s_4w, price_close, ma50, ma200,
 price_score, level_score, trend_score, abs_penalty, total_score,
 risk_off_trigger, risk_on_trigger, state, max_exposure, allow_new_entries, notes, hits)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, l.table)

	_, err = l.db.ExecContext(ctx, q,
		time.Now().UTC(),
		regime.Date,
		regime.NfciL,
		regime.S1W,
		regime.S4W,
		regime.PriceClose,
		regime.MA50,
		regime.MA200,
		regime.PriceScore,
		regime.LevelScore,
		regime.TrendScore,
		regime.AbsPenalty,
		regime.TotalScore,
		boolToUint8(regime.RiskOffTrigger),
		boolToUint8(regime.RiskOnTrigger),
		string(regime.State),
		regime.MaxExposure,
		boolToUint8(regime.AllowNewEntries),
		regime.Notes,
		string(hitsJSON),
	)
	if err != nil {
		return fmt.Errorf("append regime log: %w", err)
	}
	return nil
}

func (l *ClickHouseRegimeLog) Recent(ctx context.Context, limit int) ([]models.RegimeScore, error) {
	if limit <= 0 {
		limit = 30
	}
	q := fmt.Sprintf(`SELECT date, nfci_l, s_1w, s_4w, price_close, ma50, ma200,
 price_score, level_score, trend_score, abs_penalty, total_score,
 risk_off_trigger, risk_on_trigger, state, max_exposure, allow_new_entries, notes
FROM %s ORDER BY logged_at DESC LIMIT ?`, l.table)

	rows, err := l.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query regime log: %w", err)
	}
	defer rows.Close()

	var out []models.RegimeScore
	for rows.Next() {
		var r models.RegimeScore
		var riskOff, riskOn, allow uint8
		var state string
		if err := rows.Scan(
			&r.Date, &r.NfciL, &r.S1W, &r.S4W, &r.PriceClose, &r.MA50, &r.MA200,
			&r.PriceScore, &r.LevelScore, &r.TrendScore, &r.AbsPenalty, &r.TotalScore,
			&riskOff, &riskOn, &state, &r.MaxExposure, &allow, &r.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan regime row: %w", err)
		}
		r.RiskOffTrigger = riskOff != 0
		r.RiskOnTrigger = riskOn != 0
		r.AllowNewEntries = allow != 0
		r.State = models.RegimeState(state)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *ClickHouseRegimeLog) Close() error {
	return nil // pool is owned by pkg/clickhouse
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
