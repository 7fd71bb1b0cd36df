// Package risk converts fused decisions into bounded position sizes and
// gates execution against daily and exposure limits.
package risk

import (
	"math"

	"github.com/quantfx/trader/regime"
)

// SizerConfig bounds every trade the sizer will produce.
type SizerConfig struct {
	RiskPerTrade       float64 // fraction of balance at risk per trade, e.g. 0.01
	MinStopDistance    float64 // floor for the stop distance in price units
	MinUnits           float64 // smallest order worth placing
	MaxUnitsCap        float64 // hard cap regardless of balance
	MaxBalanceFraction float64 // cap as balance × fraction / price
}

// SizeInputs is the per-decision state the sizer reads.
type SizeInputs struct {
	Balance    float64
	Price      float64
	ATR        float64
	Confidence float64
	Regime     regime.Regime
}

// SizeResult carries the computed units plus the stop distance and risk
// amount that produced them, for journaling.
type SizeResult struct {
	Units        float64
	StopDistance float64
	RiskAmount   float64
}

// Size computes the order size for a decision. It never returns negative
// units; zero means no trade.
func Size(cfg SizerConfig, in SizeInputs) SizeResult {
	stopDistance := math.Max(cfg.MinStopDistance, in.ATR*2)
	if stopDistance <= 0 || in.Balance <= 0 || in.Price <= 0 {
		return SizeResult{StopDistance: stopDistance}
	}

	riskAmount := in.Balance * cfg.RiskPerTrade
	rawUnits := riskAmount / stopDistance

	adjusted := rawUnits * confidenceScale(in.Confidence) * regime.SizeScale(in.Regime)

	maxUnits := cfg.MaxUnitsCap
	if byBalance := in.Balance * cfg.MaxBalanceFraction / in.Price; byBalance < maxUnits {
		maxUnits = byBalance
	}

	// In a crisis an undersized position is refused outright instead of
	// being bumped up to the minimum.
	if in.Regime == regime.Crisis && adjusted < cfg.MinUnits {
		return SizeResult{StopDistance: stopDistance, RiskAmount: riskAmount}
	}

	units := math.Min(adjusted, maxUnits)
	if units > 0 {
		units = math.Max(units, cfg.MinUnits)
	} else {
		units = 0
	}
	units = math.Floor(units)

	return SizeResult{
		Units:        units,
		StopDistance: stopDistance,
		RiskAmount:   riskAmount,
	}
}

// confidenceScale maps confidence in [0,1] linearly onto [0.5, 1.0].
func confidenceScale(confidence float64) float64 {
	c := math.Min(1, math.Max(0, confidence))
	return 0.5 + 0.5*c
}
