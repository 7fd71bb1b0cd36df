// Package sim is a paper-trading broker. Cash accounting runs on
// shopspring/decimal so repeated fills never accumulate float drift.
package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantfx/trader/broker"
	"github.com/quantfx/trader/pkg/id"
)

// ClosedTrade reports a position closed by stop, target or explicit close.
type ClosedTrade struct {
	TradeID    string
	Instrument string
	Units      float64 // signed, as opened
	EntryPrice float64
	ExitPrice  float64
	RealizedPL float64
	Reason     string
	Time       time.Time
}

type position struct {
	tradeID string
	units   float64 // signed
	entry   float64
	stop    float64
	target  float64
	opened  time.Time
}

// Engine implements broker.Broker against an in-memory book.
type Engine struct {
	mu        sync.Mutex
	balance   decimal.Decimal
	quotes    map[string]broker.Quote
	positions map[string]*position

	commissionPerUnit decimal.Decimal

	// onClose is invoked (outside the lock) whenever a position closes.
	onClose func(ClosedTrade)
}

func NewEngine(startingBalance float64) *Engine {
	return &Engine{
		balance:           decimal.NewFromFloat(startingBalance),
		quotes:            make(map[string]broker.Quote),
		positions:         make(map[string]*position),
		commissionPerUnit: decimal.Zero,
	}
}

// SetCommission configures a per-unit commission charged on fills.
func (e *Engine) SetCommission(perUnit float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commissionPerUnit = decimal.NewFromFloat(perUnit)
}

// OnClose registers the single close handler. The engine calls it after
// releasing its lock so the handler may call back into the engine.
func (e *Engine) OnClose(fn func(ClosedTrade)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onClose = fn
}

// SetQuote records a new quote and triggers stop/target checks for any open
// position on the instrument.
func (e *Engine) SetQuote(q broker.Quote) {
	e.mu.Lock()
	e.quotes[q.Instrument] = q

	var closed *ClosedTrade
	if pos, ok := e.positions[q.Instrument]; ok {
		if exit, reason, hit := pos.triggered(q); hit {
			closed = e.closeLocked(q.Instrument, pos, exit, reason, q.Time)
		}
	}
	fn := e.onClose
	e.mu.Unlock()

	if closed != nil && fn != nil {
		fn(*closed)
	}
}

// triggered checks stop then target against the side that would fill.
func (p *position) triggered(q broker.Quote) (exit float64, reason string, hit bool) {
	if p.units > 0 {
		// Long exits at bid.
		if p.stop > 0 && q.Bid <= p.stop {
			return q.Bid, "StopLoss", true
		}
		if p.target > 0 && q.Bid >= p.target {
			return q.Bid, "TakeProfit", true
		}
		return 0, "", false
	}
	// Short exits at ask.
	if p.stop > 0 && q.Ask >= p.stop {
		return q.Ask, "StopLoss", true
	}
	if p.target > 0 && q.Ask <= p.target {
		return q.Ask, "TakeProfit", true
	}
	return 0, "", false
}

// closeLocked realizes P/L into the balance. Caller holds the lock.
func (e *Engine) closeLocked(instrument string, p *position, exit float64, reason string, at time.Time) *ClosedTrade {
	units := decimal.NewFromFloat(p.units)
	move := decimal.NewFromFloat(exit).Sub(decimal.NewFromFloat(p.entry))
	pl := units.Mul(move)

	e.balance = e.balance.Add(pl)
	delete(e.positions, instrument)

	realized, _ := pl.Float64()
	return &ClosedTrade{
		TradeID:    p.tradeID,
		Instrument: instrument,
		Units:      p.units,
		EntryPrice: p.entry,
		ExitPrice:  exit,
		RealizedPL: realized,
		Reason:     reason,
		Time:       at,
	}
}

func (e *Engine) GetBalance(ctx context.Context) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	bal, _ := e.balance.Float64()
	return bal, nil
}

func (e *Engine) GetQuotes(ctx context.Context, instruments []string) (map[string]broker.Quote, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]broker.Quote, len(instruments))
	for _, inst := range instruments {
		if q, ok := e.quotes[inst]; ok {
			out[inst] = q
		}
	}
	return out, nil
}

func (e *Engine) PlaceMarketOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderFill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if req.Units == 0 {
		return broker.OrderFill{}, fmt.Errorf("%w: zero units", broker.ErrRejected)
	}
	if _, exists := e.positions[req.Instrument]; exists {
		return broker.OrderFill{}, fmt.Errorf("%w: position already open on %s", broker.ErrRejected, req.Instrument)
	}
	q, ok := e.quotes[req.Instrument]
	if !ok {
		return broker.OrderFill{}, fmt.Errorf("%w: no quote for %s", broker.ErrRejected, req.Instrument)
	}

	fill := q.Ask
	if req.Units < 0 {
		fill = q.Bid
	}

	commission := e.commissionPerUnit.Mul(decimal.NewFromFloat(math.Abs(req.Units)))
	e.balance = e.balance.Sub(commission)

	pos := &position{
		tradeID: id.New(),
		units:   req.Units,
		entry:   fill,
		stop:    req.StopPrice,
		target:  req.TargetPrice,
		opened:  q.Time,
	}
	e.positions[req.Instrument] = pos

	comm, _ := commission.Float64()
	return broker.OrderFill{
		TradeID:    pos.tradeID,
		Instrument: req.Instrument,
		Units:      req.Units,
		FillPrice:  fill,
		Commission: comm,
		Time:       q.Time,
	}, nil
}

func (e *Engine) GetOpenExposure(ctx context.Context) (map[string]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.positions))
	for inst, p := range e.positions {
		out[inst] = p.units
	}
	return out, nil
}

// CloseAll force-closes every open position at the current quote, used on
// shutdown so no half-open paper state survives the process.
func (e *Engine) CloseAll(reason string) []ClosedTrade {
	e.mu.Lock()
	var closed []ClosedTrade
	for inst, p := range e.positions {
		q, ok := e.quotes[inst]
		if !ok {
			continue
		}
		exit := q.Bid
		if p.units < 0 {
			exit = q.Ask
		}
		if ct := e.closeLocked(inst, p, exit, reason, q.Time); ct != nil {
			closed = append(closed, *ct)
		}
	}
	fn := e.onClose
	e.mu.Unlock()

	if fn != nil {
		for _, ct := range closed {
			fn(ct)
		}
	}
	return closed
}
