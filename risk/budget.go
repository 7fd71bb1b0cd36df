package risk

import (
	"sync"
	"time"
)

// Budget tracks per-UTC-day trade count and risk used. It resets itself at
// day rollover; the engine loop is the single writer.
type Budget struct {
	mu sync.Mutex

	day        time.Time // UTC midnight of the current day
	tradeCount int
	riskUsed   float64
}

func NewBudget(now time.Time) *Budget {
	return &Budget{day: utcDay(now)}
}

func utcDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// rollover resets the counters when the UTC calendar day has changed.
// Callers must hold mu.
func (b *Budget) rollover(now time.Time) {
	day := utcDay(now)
	if !day.Equal(b.day) {
		b.day = day
		b.tradeCount = 0
		b.riskUsed = 0
	}
}

// Snapshot returns the current day's counters after applying any rollover.
func (b *Budget) Snapshot(now time.Time) (tradeCount int, riskUsed float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover(now)
	return b.tradeCount, b.riskUsed
}

// Commit records an approved trade against the day's budget. Only the
// execution path that actually placed an order may call this.
func (b *Budget) Commit(now time.Time, riskAmount float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover(now)
	b.tradeCount++
	b.riskUsed += riskAmount
}
