package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/services/analytics"
	applogger "StockPulse/pkg/logger"
)

// FilterParams are the eligibility thresholds applied per symbol.
type FilterParams struct {
	Drawdown20DMax     float64
	High52WMaxMultiple float64
	SMA50Tolerance     float64
	Tolerance          float64
}

// TriggerParams enable individual triggers and tune the breakout.
type TriggerParams struct {
	Pullback25Enabled  bool
	Pullback50Enabled  bool
	Breakout20DEnabled bool
	BreakoutVolumeMult float64
	// Windowed drawdown guard on the breakout, externally tunable via the
	// rules file.
	DDWindow int
	DDMax    float64
}

// ScanConfig is everything a scan run needs beyond its collaborators.
type ScanConfig struct {
	Symbols   []string
	Benchmark string
	Location  *time.Location
	Filters   FilterParams
	Triggers  TriggerParams
}

// Scanner runs the daily pipeline: regime first, then the per-symbol
// eligibility and trigger pass, then notification and persistence. Symbols are
// scanned sequentially; the providers' rate limits leave nothing to gain from
// fanning out.
type Scanner struct {
	cfg        ScanConfig
	market     drepo.MarketData
	conditions drepo.ConditionsSource
	notifier   drepo.Notifier
	regimeLog  drepo.RegimeLog
	events     drepo.EventPublisher
	metrics    drepo.Metrics
	log        *applogger.Logger

	now func() time.Time

	mu   sync.RWMutex
	last *models.ScanResult
}

func NewScanner(
	cfg ScanConfig,
	market drepo.MarketData,
	conditions drepo.ConditionsSource,
	notifier drepo.Notifier,
	regimeLog drepo.RegimeLog,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *Scanner {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scanner{
		cfg:        cfg,
		market:     market,
		conditions: conditions,
		notifier:   notifier,
		regimeLog:  regimeLog,
		events:     events,
		metrics:    metrics,
		log:        log,
		now:        time.Now,
	}
}

// Last returns the most recent completed scan result, or nil before the first run.
func (s *Scanner) Last() *models.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Run executes one full scan. A regime-classification failure is reported via
// the notifier and returned; per-symbol failures only skip that symbol.
func (s *Scanner) Run(ctx context.Context) (*models.ScanResult, error) {
	started := s.now()
	defer func() {
		s.metrics.RecordScanDuration(s.now().Sub(started))
	}()

	regime, err := s.classifyRegime(ctx)
	if err != nil {
		s.log.Error("regime calculation failed", applogger.Error(err))
		title := fmt.Sprintf("Stock Alerts %s UTC | Regime ERROR", started.UTC().Format("2006-01-02"))
		if nerr := s.notifier.NotifyBatch(ctx, title, []string{
			fmt.Sprintf("Regime calculation failed: %v", err),
		}); nerr != nil {
			s.log.Error("error notification failed", applogger.Error(nerr))
		}
		return nil, err
	}

	result := &models.ScanResult{
		StartedAt:       started,
		Regime:          regime,
		RejectedReasons: map[string]int{},
	}

	for _, symbol := range s.cfg.Symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		series, err := s.market.FetchDaily(ctx, symbol)
		if err != nil {
			s.log.Warn("skipping symbol", applogger.String("symbol", symbol), applogger.Error(err))
			result.Skipped = append(result.Skipped, symbol)
			continue
		}
		signals, reasons := s.evaluateSymbol(symbol, series)
		if len(reasons) > 0 {
			for _, r := range reasons {
				result.RejectedReasons[r]++
			}
		} else {
			result.EligibleSymbols = append(result.EligibleSymbols, symbol)
		}
		for _, sig := range signals {
			if analytics.RegimeAllows(regime.State, sig.Trigger) {
				result.Signals = append(result.Signals, sig)
				s.metrics.RecordSignal(sig.Trigger)
			} else {
				s.log.Info("signal suppressed by regime",
					applogger.String("symbol", sig.Symbol),
					applogger.String("trigger", sig.Trigger),
					applogger.String("state", string(regime.State)))
			}
		}
	}

	title := fmt.Sprintf("Stock Alerts %s UTC | Regime %s",
		started.UTC().Format("2006-01-02"), regime.State)
	lines := append(s.headerLines(regime), s.summaryLines(result)...)
	if err := s.notifier.NotifyBatch(ctx, title, lines); err != nil {
		s.log.Error("notification failed", applogger.Error(err))
	}

	if err := s.regimeLog.Append(ctx, regime, result.Signals); err != nil {
		s.log.Error("regime log append failed", applogger.Error(err))
	}
	if err := s.events.PublishScan(ctx, result); err != nil {
		s.log.Error("scan event publish failed", applogger.Error(err))
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	s.log.Info("scan complete",
		applogger.Int("symbols", len(s.cfg.Symbols)),
		applogger.Int("eligible", len(result.EligibleSymbols)),
		applogger.Int("signals", len(result.Signals)),
		applogger.Int("skipped", len(result.Skipped)),
		applogger.String("state", string(regime.State)))
	return result, nil
}

func (s *Scanner) classifyRegime(ctx context.Context) (*models.RegimeScore, error) {
	conditions, err := s.conditions.FetchSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("conditions series: %w", err)
	}
	benchmark, err := s.market.FetchDaily(ctx, s.cfg.Benchmark)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", s.cfg.Benchmark, err)
	}
	return analytics.ClassifyRegime(conditions, benchmark, s.now().In(s.cfg.Location))
}

// evaluateSymbol runs eligibility and the enabled triggers for one symbol.
// Ineligible symbols return their reasons and fire nothing.
func (s *Scanner) evaluateSymbol(symbol string, series models.Series) ([]models.Signal, []string) {
	ind := analytics.ComputeIndicators(series)
	f := s.cfg.Filters
	eligibility := analytics.CheckEligibility(series, ind,
		f.Drawdown20DMax, f.High52WMaxMultiple, f.SMA50Tolerance)
	if !eligibility.Eligible {
		return nil, eligibility.Reasons
	}

	tr := s.cfg.Triggers
	var fired []analytics.TriggerResult
	if tr.Pullback25Enabled {
		if res := analytics.Pullback25Bounce(series, ind, f.Tolerance); res.Fired {
			fired = append(fired, res)
		}
	}
	if tr.Pullback50Enabled {
		if res := analytics.Pullback50Bounce(series, ind, f.Tolerance, f.Drawdown20DMax); res.Fired {
			fired = append(fired, res)
		}
	}
	if tr.Breakout20DEnabled {
		res := analytics.Breakout20D(series, ind, tr.BreakoutVolumeMult, tr.DDWindow, tr.DDMax, symbol, s.log)
		if res.Fired {
			fired = append(fired, res)
		}
	}

	latest := series.Latest()
	date := latest.Date.Format("2006-01-02")
	signals := make([]models.Signal, 0, len(fired))
	for _, res := range fired {
		signals = append(signals, models.Signal{
			Symbol:  symbol,
			Trigger: res.Reason,
			Close:   latest.Close,
			Date:    date,
		})
	}
	return signals, nil
}

// headerLines restates the active thresholds so a notification is
// interpretable without access to the config file.
func (s *Scanner) headerLines(regime *models.RegimeScore) []string {
	f := s.cfg.Filters
	tr := s.cfg.Triggers
	lines := []string{
		"Legend: eligible_symbols=passed filters, triggered_symbols=fired a signal",
		fmt.Sprintf("Filter: close>=SMA50*(1-%.2f)", f.SMA50Tolerance),
		"Filter: SMA50>=SMA200*0.98",
		fmt.Sprintf("Filter: dd_peak_N<=dd_max (N=%d, dd_max=%g)", tr.DDWindow, tr.DDMax),
		fmt.Sprintf("Filter: drawdown_20d_max=%.2f", f.Drawdown20DMax),
		fmt.Sprintf("Trigger: PULLBACK_25=%t (low<=SMA25*(1+tol), close>=SMA25, volume<=vol_ma20)", tr.Pullback25Enabled),
		fmt.Sprintf("Trigger: PULLBACK_50=%t (low<=SMA50*(1+tol), close>=SMA50, drawdown_20d<=max)", tr.Pullback50Enabled),
		fmt.Sprintf("Trigger: BREAKOUT_20D=%t (close>high_20d, close<=high_20d*1.05, volume>=vol_ma20*%.2f)", tr.Breakout20DEnabled, tr.BreakoutVolumeMult),
	}
	if b, err := json.Marshal(regime); err == nil {
		lines = append(lines, fmt.Sprintf("RegimeScore: %s", b))
	}
	return lines
}

func (s *Scanner) summaryLines(result *models.ScanResult) []string {
	regime := result.Regime

	triggered := make([]string, 0, len(result.Signals))
	seen := map[string]bool{}
	for _, sig := range result.Signals {
		if !seen[sig.Symbol] {
			seen[sig.Symbol] = true
			triggered = append(triggered, sig.Symbol)
		}
	}
	sort.Strings(triggered)

	tail := func(lines []string) []string {
		if len(result.EligibleSymbols) > 0 {
			lines = append(lines, fmt.Sprintf("eligible_symbols: %s", strings.Join(result.EligibleSymbols, ", ")))
		}
		lines = append(lines, fmt.Sprintf("triggered_symbols: %s", strings.Join(triggered, ", ")))
		if top := topRejected(result.RejectedReasons, 5); top != "" {
			lines = append(lines, fmt.Sprintf("top_rejected_reasons: %s", top))
		}
		if len(result.Skipped) > 0 {
			lines = append(lines, fmt.Sprintf("Skipped symbols: %s", strings.Join(result.Skipped, ", ")))
		}
		return lines
	}

	if !regime.AllowNewEntries {
		return tail([]string{fmt.Sprintf("New entries stopped. max_exposure=%.2f", regime.MaxExposure)})
	}
	if len(result.Signals) == 0 {
		return tail([]string{"No signals."})
	}

	grouped := map[string][]models.Signal{}
	var order []string
	for _, sig := range result.Signals {
		if _, ok := grouped[sig.Trigger]; !ok {
			order = append(order, sig.Trigger)
		}
		grouped[sig.Trigger] = append(grouped[sig.Trigger], sig)
	}

	var lines []string
	for _, trigger := range order {
		lines = append(lines, fmt.Sprintf("[%s]", trigger))
		for _, sig := range grouped[trigger] {
			lines = append(lines, fmt.Sprintf("- %s close=%.2f date=%s", sig.Symbol, sig.Close, sig.Date))
		}
	}
	return tail(lines)
}

// topRejected renders the n most frequent rejection reasons, ties broken
// alphabetically for stable output.
func topRejected(counts map[string]int, n int) string {
	if len(counts) == 0 {
		return ""
	}
	type kv struct {
		reason string
		count  int
	}
	items := make([]kv, 0, len(counts))
	for k, v := range counts {
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].reason < items[j].reason
	})
	if len(items) > n {
		items = items[:n]
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s:%d", it.reason, it.count)
	}
	return strings.Join(parts, ", ")
}
