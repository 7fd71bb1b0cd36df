// Package engine runs the trading loop: one cooperative cycle per polling
// interval, iterating instruments in order. Instrument evaluation is
// serialized within a cycle, so the gate's check-then-commit sequence on the
// daily budget is a single-writer critical section.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/quantfx/trader/broker"
	"github.com/quantfx/trader/fusion"
	"github.com/quantfx/trader/indicators"
	"github.com/quantfx/trader/journal"
	"github.com/quantfx/trader/market"
	"github.com/quantfx/trader/regime"
	"github.com/quantfx/trader/risk"
	"github.com/quantfx/trader/sentiment"
	"github.com/quantfx/trader/strategies"
)

const (
	defaultCycleTimeout = 10 * time.Second
	maxBackoff          = 30 * time.Second
)

// Config wires the engine's collaborators and limits. Zero values fall back
// to safe defaults except Instruments, Weights and Sizer, which must be set.
type Config struct {
	Instruments      []string
	HistoryCapacity  int
	Weights          fusion.Weights
	AccelerationMode bool
	Predictor        strategies.Predictor

	Sizer           risk.SizerConfig
	Limits          risk.Limits
	RewardRiskRatio float64

	// BaseInterval overrides the regime cadence table when set.
	BaseInterval time.Duration
	CycleTimeout time.Duration
}

// InstrumentStatus is the last evaluated state for one instrument.
type InstrumentStatus struct {
	Instrument string        `json:"instrument"`
	Regime     regime.Regime `json:"regime"`
	Action     fusion.Action `json:"action"`
	Confidence float64       `json:"confidence"`
	Price      float64       `json:"price"`
	Time       time.Time     `json:"time"`
}

// Status is the on-demand view served by the control surface.
type Status struct {
	Time          time.Time                   `json:"time"`
	Paused        bool                        `json:"paused"`
	Balance       float64                     `json:"balance"`
	OpenPositions int                         `json:"open_positions"`
	DailyTrades   int                         `json:"daily_trades"`
	DailyRiskUsed float64                     `json:"daily_risk_used"`
	WinStreak     int                         `json:"win_streak"`
	LossStreak    int                         `json:"loss_streak"`
	ProfitFactor  float64                     `json:"profit_factor"`
	Instruments   map[string]InstrumentStatus `json:"instruments"`
}

// Engine owns the decision loop and its collaborators.
type Engine struct {
	cfg     Config
	log     zerolog.Logger
	broker  broker.Broker
	news    sentiment.Source
	journal journal.Journal
	metrics *Metrics

	history *market.HistoryStore
	fuser   *fusion.Fuser
	catalog []strategies.Scorer
	budget  *risk.Budget
	perf    *PerformanceState

	paused atomic.Bool

	mu          sync.Mutex
	stats       map[string]InstrumentStatus
	balance     float64
	lastBalance float64
	openCount   int
	onDecision  func(fusion.Decision)
}

// New validates the configuration and assembles the engine. Configuration
// problems are fatal here, never at runtime.
func New(cfg Config, b broker.Broker, news sentiment.Source, jr journal.Journal, m *Metrics, log zerolog.Logger) (*Engine, error) {
	if len(cfg.Instruments) == 0 {
		return nil, fmt.Errorf("%w: no instruments configured", ErrConfigInvalid)
	}
	if cfg.Sizer.RiskPerTrade <= 0 {
		return nil, fmt.Errorf("%w: risk_per_trade must be positive, got %v",
			ErrConfigInvalid, cfg.Sizer.RiskPerTrade)
	}
	if cfg.Limits.MaxDailyRisk < 0 {
		return nil, fmt.Errorf("%w: max_daily_risk is negative: %v",
			ErrConfigInvalid, cfg.Limits.MaxDailyRisk)
	}
	if cfg.RewardRiskRatio <= 0 {
		cfg.RewardRiskRatio = 2
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = defaultCycleTimeout
	}

	fuser, err := fusion.New(cfg.Weights, cfg.AccelerationMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if jr == nil {
		jr = journal.Noop{}
	}
	if m == nil {
		m = NewMetrics(prometheus.NewRegistry())
	}

	return &Engine{
		cfg:     cfg,
		log:     log,
		broker:  b,
		news:    news,
		journal: jr,
		metrics: m,
		history: market.NewHistoryStore(cfg.HistoryCapacity),
		fuser:   fuser,
		catalog: strategies.Catalog(cfg.Predictor),
		budget:  risk.NewBudget(time.Now()),
		perf:    NewPerformanceState(),
		stats:   make(map[string]InstrumentStatus),
	}, nil
}

// OnDecision registers a callback invoked for every fused decision. Must be
// set before Run; the callback runs on the loop goroutine and must not block.
func (e *Engine) OnDecision(fn func(fusion.Decision)) { e.onDecision = fn }

func (e *Engine) Pause()       { e.paused.Store(true) }
func (e *Engine) Resume()      { e.paused.Store(false) }
func (e *Engine) Paused() bool { return e.paused.Load() }

// Run drives cycles until the context is cancelled, then flushes performance
// state and a final balance snapshot. The in-flight cycle always completes;
// cancellation is only observed between cycles.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info().Strs("instruments", e.cfg.Instruments).Msg("trading loop started")

	var backoff time.Duration
	for ctx.Err() == nil {
		if e.paused.Load() {
			if !sleep(ctx, time.Second) {
				break
			}
			continue
		}

		err := e.RunCycle(context.WithoutCancel(ctx))
		wait := e.interval()
		if err != nil {
			e.metrics.CycleErrors.Inc()
			e.log.Warn().Err(err).Msg("cycle failed")
			if backoff == 0 {
				backoff = time.Second
			} else if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			wait = backoff
		} else {
			backoff = 0
		}

		if !sleep(ctx, wait) {
			break
		}
	}

	e.flush()
	e.log.Info().Msg("trading loop stopped")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// RunCycle performs one full pass over all instruments. A boundary failure
// before evaluation aborts the whole cycle; per-instrument failures are
// isolated and only logged.
func (e *Engine) RunCycle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CycleTimeout)
	defer cancel()

	balance, err := e.broker.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("%w: balance: %v", ErrCollaborator, err)
	}
	quotes, err := e.broker.GetQuotes(ctx, e.cfg.Instruments)
	if err != nil {
		return fmt.Errorf("%w: quotes: %v", ErrCollaborator, err)
	}
	exposure, err := e.broker.GetOpenExposure(ctx)
	if err != nil {
		return fmt.Errorf("%w: exposure: %v", ErrCollaborator, err)
	}

	score, trend := e.sentimentInputs(ctx)

	e.metrics.Balance.Set(balance)
	e.metrics.OpenCount.Set(float64(len(exposure)))

	e.mu.Lock()
	e.balance = balance
	e.openCount = len(exposure)
	balanceChanged := balance != e.lastBalance
	e.lastBalance = balance
	e.mu.Unlock()

	if balanceChanged {
		count, _ := e.budget.Snapshot(time.Now())
		if err := e.journal.SaveBalance(journal.BalanceSnapshot{
			Balance: balance, TradeCount: count, Time: time.Now().UTC(),
		}); err != nil {
			e.log.Error().Err(err).Msg("journal balance snapshot failed")
		}
	}

	for _, inst := range e.cfg.Instruments {
		if err := e.evaluate(ctx, inst, balance, quotes, exposure, score, trend); err != nil {
			e.metrics.CycleErrors.Inc()
			e.log.Warn().Str("instrument", inst).Err(err).Msg("instrument evaluation failed")
		}
	}

	e.metrics.Cycles.Inc()
	return nil
}

// sentimentInputs degrades to the neutral score when the boundary fails;
// sentiment is advisory and must never stall a cycle.
func (e *Engine) sentimentInputs(ctx context.Context) (float64, sentiment.Trend) {
	if e.news == nil {
		return sentiment.Neutral, sentiment.InsufficientData
	}
	score, err := e.news.Score(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("sentiment unavailable, using neutral")
		return sentiment.Neutral, sentiment.InsufficientData
	}
	trend, err := e.news.SentimentTrend(ctx)
	if err != nil {
		trend = sentiment.InsufficientData
	}
	return score, trend
}

// evaluate runs the full per-instrument pipeline: history append, indicators,
// regime, strategy scores, fusion, sizing, gate, execution.
func (e *Engine) evaluate(ctx context.Context, inst string, balance float64,
	quotes map[string]broker.Quote, exposure map[string]float64,
	score float64, trend sentiment.Trend) error {

	q, ok := quotes[inst]
	if !ok {
		return fmt.Errorf("%w: no quote for %s", ErrDataInsufficient, inst)
	}

	e.history.Append(market.NewPricePoint(inst, q.Bid, q.Ask, 0, q.Time))
	series, _ := e.history.GetSeries(inst)

	snap := indicators.Compute(series)
	reg := regime.Classify(series.Mids())
	meta := market.Meta(inst)

	signals := strategies.Evaluate(e.catalog, strategies.Input{
		Snapshot:       snap,
		Sentiment:      score,
		SentimentTrend: trend,
		Meta:           meta,
		Spread:         q.Spread(),
	})

	correlated := correlatedOpen(meta, exposure)
	wins, losses := e.perf.Streaks()

	decision := e.fuser.Fuse(signals, fusion.Context{
		Instrument:          inst,
		Regime:              reg,
		SeriesReady:         snap.Ready,
		Volatility:          snap.Volatility20,
		VolatilityThreshold: meta.VolatilityThreshold,
		CorrelatedOpen:      correlated,
		WinStreak:           wins,
		LossStreak:          losses,
	}, q.Time)

	e.metrics.Decisions.WithLabelValues(string(decision.Action)).Inc()
	e.recordStatus(decision, q.Mid())
	if e.onDecision != nil {
		e.onDecision(decision)
	}

	if err := e.journal.SaveAnalysis(journal.AnalysisRecord{
		Instrument: inst,
		Action:     string(decision.Action),
		Confidence: decision.Confidence,
		RawScore:   decision.RawScore,
		Regime:     string(decision.Regime),
		Sentiment:  score,
		Time:       decision.Time,
	}); err != nil {
		e.log.Error().Err(err).Str("instrument", inst).Msg("journal analysis failed")
	}

	if decision.Action == fusion.Hold {
		return nil
	}

	size := risk.Size(e.cfg.Sizer, risk.SizeInputs{
		Balance:    balance,
		Price:      q.Mid(),
		ATR:        snap.ATR,
		Confidence: decision.Confidence,
		Regime:     reg,
	})
	if size.Units == 0 {
		e.log.Debug().Str("instrument", inst).Msg("sizer produced no tradeable units")
		return nil
	}

	verdict := e.cfg.Limits.Check(risk.Intent{
		Instrument:     inst,
		Spread:         q.Spread(),
		MaxSpread:      meta.MaxSpread,
		RiskAmount:     size.RiskAmount,
		Balance:        balance,
		HasPosition:    exposure[inst] != 0,
		OpenPositions:  len(exposure),
		CorrelatedOpen: correlated,
		Now:            decision.Time,
	}, e.budget)
	if !verdict.Allowed {
		for _, v := range verdict.Violations {
			e.metrics.Rejections.WithLabelValues(v.Code).Inc()
			e.log.Info().Str("instrument", inst).Str("code", v.Code).Msg(v.Msg)
		}
		return nil
	}

	return e.execute(ctx, decision, q, size)
}

// execute is the coordinator's success path: place the order, commit the
// daily budget, journal the trade. Budget commit happens only after a fill,
// so a rejected order never consumes budget.
func (e *Engine) execute(ctx context.Context, d fusion.Decision, q broker.Quote, size risk.SizeResult) error {
	units := size.Units
	entry := q.Ask
	stop := entry - size.StopDistance
	target := entry + size.StopDistance*e.cfg.RewardRiskRatio
	if d.Action == fusion.Sell {
		units = -units
		entry = q.Bid
		stop = entry + size.StopDistance
		target = entry - size.StopDistance*e.cfg.RewardRiskRatio
	}

	fill, err := e.broker.PlaceMarketOrder(ctx, broker.OrderRequest{
		Instrument:  d.Instrument,
		Units:       units,
		StopPrice:   stop,
		TargetPrice: target,
	})
	if errors.Is(err, broker.ErrRejected) {
		e.metrics.Rejections.WithLabelValues("ORDER_REJECTED").Inc()
		return fmt.Errorf("%w: %v", ErrOrderRejected, err)
	}
	if err != nil {
		return fmt.Errorf("%w: place order: %v", ErrCollaborator, err)
	}

	e.budget.Commit(d.Time, size.RiskAmount)
	e.metrics.Orders.Inc()

	e.log.Info().
		Str("instrument", d.Instrument).
		Str("action", string(d.Action)).
		Float64("units", fill.Units).
		Float64("fill", fill.FillPrice).
		Float64("stop", stop).
		Float64("target", target).
		Float64("confidence", d.Confidence).
		Msg("order filled")

	if err := e.journal.SaveTrade(journal.TradeRecord{
		TradeID:     fill.TradeID,
		Instrument:  d.Instrument,
		Side:        string(d.Action),
		Units:       fill.Units,
		EntryPrice:  fill.FillPrice,
		StopPrice:   stop,
		TargetPrice: target,
		Confidence:  d.Confidence,
		Strategy:    "fused",
		Regime:      string(d.Regime),
		Time:        fill.Time,
	}); err != nil {
		e.log.Error().Err(err).Str("trade_id", fill.TradeID).Msg("journal trade failed")
	}
	return nil
}

// RecordClose folds a closed position back into performance state and
// backfills the journal row. Broker adapters call this from their close
// notifications.
func (e *Engine) RecordClose(tradeID, instrument string, exitPrice, realizedPL float64, reason string, at time.Time) {
	e.perf.Record(realizedPL)

	e.log.Info().
		Str("instrument", instrument).
		Str("trade_id", tradeID).
		Float64("pl", realizedPL).
		Str("reason", reason).
		Msg("position closed")

	if err := e.journal.RecordOutcome(journal.Outcome{
		TradeID:    tradeID,
		ExitPrice:  exitPrice,
		RealizedPL: realizedPL,
		Reason:     reason,
		Time:       at,
	}); err != nil {
		e.log.Error().Err(err).Str("trade_id", tradeID).Msg("journal outcome failed")
	}
}

func (e *Engine) recordStatus(d fusion.Decision, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats[d.Instrument] = InstrumentStatus{
		Instrument: d.Instrument,
		Regime:     d.Regime,
		Action:     d.Action,
		Confidence: d.Confidence,
		Price:      price,
		Time:       d.Time,
	}
}

// Status returns the current engine view for the control surface.
func (e *Engine) Status() Status {
	now := time.Now().UTC()
	trades, riskUsed := e.budget.Snapshot(now)
	wins, losses := e.perf.Streaks()

	e.mu.Lock()
	defer e.mu.Unlock()

	insts := make(map[string]InstrumentStatus, len(e.stats))
	for k, v := range e.stats {
		insts[k] = v
	}
	return Status{
		Time:          now,
		Paused:        e.paused.Load(),
		Balance:       e.balance,
		OpenPositions: e.openCount,
		DailyTrades:   trades,
		DailyRiskUsed: riskUsed,
		WinStreak:     wins,
		LossStreak:    losses,
		ProfitFactor:  e.perf.ProfitFactor(),
		Instruments:   insts,
	}
}

// interval picks the next sleep from the most urgent regime seen in the last
// cycle: crises slow the loop down, turbulence speeds it up. Acceleration
// mode tightens cadence while on a winning streak.
func (e *Engine) interval() time.Duration {
	if e.cfg.BaseInterval > 0 {
		return e.cfg.BaseInterval
	}

	e.mu.Lock()
	var crisis, breakout, volatile bool
	for _, s := range e.stats {
		switch s.Regime {
		case regime.Crisis:
			crisis = true
		case regime.Breakout:
			breakout = true
		case regime.Volatile:
			volatile = true
		}
	}
	e.mu.Unlock()

	iv := 5 * time.Second
	switch {
	case crisis:
		iv = 10 * time.Second
	case breakout:
		iv = 2 * time.Second
	case volatile:
		iv = 3 * time.Second
	}

	if e.cfg.AccelerationMode {
		if wins, _ := e.perf.Streaks(); wins >= 2 {
			iv = iv * 4 / 5
		}
	}
	return iv
}

// flush writes the final performance and balance snapshots on shutdown.
func (e *Engine) flush() {
	now := time.Now().UTC()
	if err := e.journal.SavePerformance(e.perf.Snapshot(now)); err != nil {
		e.log.Error().Err(err).Msg("flush performance snapshot failed")
	}

	e.mu.Lock()
	balance := e.balance
	e.mu.Unlock()
	trades, _ := e.budget.Snapshot(now)
	if err := e.journal.SaveBalance(journal.BalanceSnapshot{
		Balance: balance, TradeCount: trades, Time: now,
	}); err != nil {
		e.log.Error().Err(err).Msg("flush balance snapshot failed")
	}
}

// correlatedOpen counts correlated instruments currently holding exposure.
func correlatedOpen(meta market.InstrumentMeta, exposure map[string]float64) int {
	n := 0
	for _, other := range meta.Correlated {
		if exposure[other] != 0 {
			n++
		}
	}
	return n
}
