package engine

import (
	"sync"
	"time"

	"github.com/quantfx/trader/journal"
)

// PerformanceState aggregates trade outcomes across the process lifetime.
// Only the close path mutates it; fusion and the sizer read the streaks.
type PerformanceState struct {
	mu sync.Mutex

	totalTrades int
	wins        int
	losses      int
	winStreak   int
	lossStreak  int
	netPL       float64
}

func NewPerformanceState() *PerformanceState {
	return &PerformanceState{}
}

// Record folds one realized outcome into the streak counters. A flat close
// counts as a trade but breaks neither streak.
func (p *PerformanceState) Record(realizedPL float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalTrades++
	p.netPL += realizedPL
	switch {
	case realizedPL > 0:
		p.wins++
		p.winStreak++
		p.lossStreak = 0
	case realizedPL < 0:
		p.losses++
		p.lossStreak++
		p.winStreak = 0
	}
}

// Streaks returns the current consecutive win and loss counts.
func (p *PerformanceState) Streaks() (wins, losses int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.winStreak, p.lossStreak
}

// ProfitFactor is a streak-derived bias in [0.5, 2.0]: each consecutive win
// adds 0.1, each consecutive loss subtracts 0.05 from a neutral 1.0.
func (p *PerformanceState) ProfitFactor() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profitFactorLocked()
}

func (p *PerformanceState) profitFactorLocked() float64 {
	pf := 1 + 0.1*float64(p.winStreak) - 0.05*float64(p.lossStreak)
	if pf < 0.5 {
		return 0.5
	}
	if pf > 2.0 {
		return 2.0
	}
	return pf
}

// Snapshot returns the journaling view of the current state.
func (p *PerformanceState) Snapshot(now time.Time) journal.PerformanceSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return journal.PerformanceSnapshot{
		TotalTrades:  p.totalTrades,
		WinStreak:    p.winStreak,
		LossStreak:   p.lossStreak,
		ProfitFactor: p.profitFactorLocked(),
		Time:         now,
	}
}
