// Package broker defines the order/quote boundary the engine trades
// through. Implementations: broker/oanda for the live REST API and
// broker/sim for paper trading.
package broker

import (
	"context"
	"errors"
	"time"
)

// ErrRejected marks an order the broker refused (margin, validation,
// market closed). It is non-fatal: the cycle logs it and moves on.
var ErrRejected = errors.New("broker: order rejected")

// Quote is the current top-of-book for one instrument.
type Quote struct {
	Instrument string
	Bid        float64
	Ask        float64
	Time       time.Time
}

func (q Quote) Mid() float64    { return (q.Bid + q.Ask) / 2 }
func (q Quote) Spread() float64 { return q.Ask - q.Bid }

// OrderRequest is a market order with attached stop and target. Units are
// signed: positive buys, negative sells.
type OrderRequest struct {
	Instrument  string
	Units       float64
	StopPrice   float64
	TargetPrice float64
}

// OrderFill reports a successful execution.
type OrderFill struct {
	TradeID    string
	Instrument string
	Units      float64
	FillPrice  float64
	Commission float64
	Time       time.Time
}

// Broker is the execution boundary. Every call may suspend on I/O and must
// honor the context deadline.
type Broker interface {
	// GetBalance returns the current account balance.
	GetBalance(ctx context.Context) (float64, error)

	// GetQuotes returns current bid/ask for the requested instruments.
	GetQuotes(ctx context.Context, instruments []string) (map[string]Quote, error)

	// PlaceMarketOrder executes a market order with stop/target attached.
	// A refusal surfaces as ErrRejected; transport failures as other errors.
	PlaceMarketOrder(ctx context.Context, req OrderRequest) (OrderFill, error)

	// GetOpenExposure returns signed net units per instrument with an open
	// position.
	GetOpenExposure(ctx context.Context) (map[string]float64, error)
}
