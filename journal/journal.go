// Package journal is the persistence boundary. Writes are best-effort: the
// trading loop logs failures and keeps going, it never blocks or rolls back
// on a journaling error.
package journal

import "time"

// TradeRecord is immutable once created; RealizedPL is backfilled exactly
// once via RecordOutcome when the position closes.
type TradeRecord struct {
	TradeID     string
	Instrument  string
	Side        string
	Units       float64
	EntryPrice  float64
	StopPrice   float64
	TargetPrice float64
	Confidence  float64
	Strategy    string
	Regime      string
	Time        time.Time
}

// Outcome carries the realized result for a closed trade.
type Outcome struct {
	TradeID    string
	ExitPrice  float64
	RealizedPL float64
	Reason     string
	Time       time.Time
}

// BalanceSnapshot is a point-in-time account reading.
type BalanceSnapshot struct {
	Balance    float64
	TradeCount int
	Time       time.Time
}

// PerformanceSnapshot aggregates streaks and profit factor at flush time.
type PerformanceSnapshot struct {
	TotalTrades  int
	WinStreak    int
	LossStreak   int
	ProfitFactor float64
	Time         time.Time
}

// AnalysisRecord captures one fused decision for later study, whether or
// not it traded.
type AnalysisRecord struct {
	Instrument string
	Action     string
	Confidence float64
	RawScore   float64
	Regime     string
	Sentiment  float64
	Time       time.Time
}

// Journal persists engine records. Implementations must be safe for use
// from a single writer goroutine.
type Journal interface {
	SaveTrade(TradeRecord) error
	RecordOutcome(Outcome) error
	SaveBalance(BalanceSnapshot) error
	SavePerformance(PerformanceSnapshot) error
	SaveAnalysis(AnalysisRecord) error
	Close() error
}

// Noop discards everything; used when persistence is disabled.
type Noop struct{}

func (Noop) SaveTrade(TradeRecord) error                 { return nil }
func (Noop) RecordOutcome(Outcome) error                 { return nil }
func (Noop) SaveBalance(BalanceSnapshot) error           { return nil }
func (Noop) SavePerformance(PerformanceSnapshot) error   { return nil }
func (Noop) SaveAnalysis(AnalysisRecord) error           { return nil }
func (Noop) Close() error                                { return nil }
