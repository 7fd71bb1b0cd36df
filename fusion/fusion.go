// Package fusion combines the strategy catalog's scores into one directional
// decision with a confidence value.
package fusion

import (
	"fmt"
	"math"
	"time"

	"github.com/quantfx/trader/regime"
	"github.com/quantfx/trader/strategies"
)

type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Decision is the fused output for one instrument and cycle.
type Decision struct {
	Instrument    string
	Action        Action
	Confidence    float64 // raw signal strength in [0,1], set before adjustments
	RawScore      float64 // weighted sum before adjustments
	AdjustedScore float64 // after regime/volatility/correlation/streak factors
	Threshold     float64
	Regime        regime.Regime
	Time          time.Time
}

// Weights is the static strategy weight table. It must sum to 1.
type Weights map[string]float64

// DefaultWeights covers the full catalog.
func DefaultWeights() Weights {
	return Weights{
		strategies.Momentum:       0.20,
		strategies.MeanReversion:  0.15,
		strategies.Breakout:       0.15,
		strategies.Sentiment:      0.15,
		strategies.Volatility:     0.10,
		strategies.TrendFollowing: 0.15,
		strategies.Scalping:       0.05,
		strategies.MLProxy:        0.05,
	}
}

// Validate rejects weight tables that do not sum to 1 or carry a negative
// entry. Construction-time failure, never a runtime degrade.
func (w Weights) Validate() error {
	sum := 0.0
	for name, v := range w {
		if v < 0 {
			return fmt.Errorf("strategy weight %q is negative: %v", name, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("strategy weights sum to %v, want 1.0", sum)
	}
	return nil
}

// Context carries the per-cycle state the adjustments read.
type Context struct {
	Instrument string
	Regime     regime.Regime

	// SeriesReady is false when the instrument's history was below the
	// indicator minimum window; the decision is then forced to HOLD.
	SeriesReady bool

	Volatility          float64 // instrument volatility (20-sample stdev)
	VolatilityThreshold float64 // per-instrument configured threshold

	// CorrelatedOpen counts correlated instruments currently holding
	// exposure.
	CorrelatedOpen int

	WinStreak  int
	LossStreak int
}

// Fuser applies the weight table and adjustment pipeline.
type Fuser struct {
	weights      Weights
	acceleration bool
}

// New validates the weight table up front; an invalid table is a startup
// error, not something to limp along with.
func New(w Weights, accelerationMode bool) (*Fuser, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("fusion weights: %w", err)
	}
	return &Fuser{weights: w, acceleration: accelerationMode}, nil
}

// Fuse combines the signals into a decision. The pipeline order is fixed:
// weighted sum, confidence from the raw sum, then multiplicative regime,
// volatility, correlation and streak adjustments, then thresholding.
func (f *Fuser) Fuse(signals []strategies.Signal, cx Context, now time.Time) Decision {
	var weighted, totalWeight float64
	for _, s := range signals {
		w, ok := f.weights[s.Name]
		if !ok || w == 0 {
			continue
		}
		weighted += s.Score * w
		totalWeight += w
	}
	if totalWeight > 0 {
		weighted /= totalWeight
	}

	// Confidence reflects raw signal strength, independent of the
	// adjustments below.
	confidence := math.Min(math.Abs(weighted)*1.5, 1.0)

	adjusted := weighted
	adjusted *= regime.Multiplier(cx.Regime)
	adjusted *= volatilityFactor(cx.Volatility, cx.VolatilityThreshold)
	adjusted *= CorrelationPenalty(cx.CorrelatedOpen)
	adjusted *= f.streakBias(cx.WinStreak, cx.LossStreak)

	threshold := decisionThreshold(cx.Regime, confidence)

	action := Hold
	switch {
	case !cx.SeriesReady:
		action = Hold
	case adjusted > threshold:
		action = Buy
	case adjusted < -threshold:
		action = Sell
	}

	return Decision{
		Instrument:    cx.Instrument,
		Action:        action,
		Confidence:    confidence,
		RawScore:      weighted,
		AdjustedScore: adjusted,
		Threshold:     threshold,
		Regime:        cx.Regime,
		Time:          now,
	}
}

// volatilityFactor dampens the signal when instrument volatility runs above
// its configured threshold and boosts it when well below.
func volatilityFactor(vol, threshold float64) float64 {
	if threshold <= 0 {
		return 1.0
	}
	switch {
	case vol > threshold*2:
		return 0.5
	case vol > threshold:
		return 0.7
	default:
		return 1.2
	}
}

// CorrelationPenalty shrinks the score by 15% per correlated instrument
// already holding exposure, saturating at 50%. It never amplifies.
func CorrelationPenalty(correlatedOpen int) float64 {
	if correlatedOpen <= 0 {
		return 1.0
	}
	penalty := math.Min(0.5, 0.15*float64(correlatedOpen))
	return 1 - penalty
}

func (f *Fuser) streakBias(wins, losses int) float64 {
	if !f.acceleration {
		return 1.0
	}
	switch {
	case wins >= 3:
		return 1.1
	case losses >= 2:
		return 0.9
	default:
		return 1.0
	}
}

// decisionThreshold is tightened in trend-friendly regimes and scaled by
// confidence: weak signals need more, strong signals need less.
func decisionThreshold(r regime.Regime, confidence float64) float64 {
	threshold := 0.45
	if regime.TightThreshold(r) {
		threshold = 0.35
	}
	switch {
	case confidence < 0.6:
		threshold *= 1.2
	case confidence > 0.8:
		threshold *= 0.8
	}
	return threshold
}
