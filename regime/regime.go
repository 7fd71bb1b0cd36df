// Package regime classifies recent market conditions into a coarse label
// used to scale decision thresholds, position sizes and scan cadence.
package regime

import "math"

type Regime string

const (
	Normal   Regime = "NORMAL"
	Volatile Regime = "VOLATILE"
	Trending Regime = "TRENDING"
	Breakout Regime = "BREAKOUT"
	Crisis   Regime = "CRISIS"
)

// MinWindow is the number of relative-change samples required before the
// classifier will leave NORMAL.
const MinWindow = 10

// Classify maps a trailing window of values (balance or price history) to a
// regime from the absolute percent change between consecutive samples.
// Deterministic and stateless: the same window always yields the same label.
func Classify(window []float64) Regime {
	if len(window) < MinWindow {
		return Normal
	}

	changes := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		prev := window[i-1]
		if prev == 0 {
			continue
		}
		changes = append(changes, math.Abs(window[i]-prev)/math.Abs(prev))
	}
	if len(changes) == 0 {
		return Normal
	}

	var sum, max float64
	for _, c := range changes {
		sum += c
		if c > max {
			max = c
		}
	}
	mean := sum / float64(len(changes))

	switch {
	case max > 0.05:
		return Crisis
	case mean > 0.02:
		return Volatile
	case mean < 0.005:
		return Trending
	default:
		return Normal
	}
}

// Multiplier scales a fused score by current conditions: trend-friendly
// regimes amplify, turbulent regimes dampen.
func Multiplier(r Regime) float64 {
	switch r {
	case Trending:
		return 1.3
	case Breakout:
		return 1.5
	case Volatile:
		return 0.7
	case Crisis:
		return 0.3
	default:
		return 1.0
	}
}

// SizeScale adjusts position size for the regime.
func SizeScale(r Regime) float64 {
	switch r {
	case Volatile:
		return 0.7
	case Crisis:
		return 0.3
	case Trending:
		return 1.2
	default:
		return 1.0
	}
}

// TightThreshold reports whether entry thresholds should be tightened
// because the regime favors directional moves.
func TightThreshold(r Regime) bool {
	return r == Trending || r == Breakout
}
