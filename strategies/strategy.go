// Package strategies holds the fixed catalog of scoring strategies fused
// into one trading decision. Each strategy is a pure function from the
// current indicator snapshot plus sentiment to a score in [-1, 1].
package strategies

import (
	"math"

	"github.com/quantfx/trader/indicators"
	"github.com/quantfx/trader/market"
	"github.com/quantfx/trader/sentiment"
)

// Strategy names. The correlation slot is reserved: fusion consumes open
// exposure directly as a penalty, it is not an independent scorer.
const (
	Momentum       = "momentum"
	MeanReversion  = "mean_reversion"
	Breakout       = "breakout"
	Sentiment      = "sentiment"
	Volatility     = "volatility"
	TrendFollowing = "trend_following"
	Scalping       = "scalping"
	MLProxy        = "ml_proxy"
)

// Input is everything a scorer may read. Snapshot values may be the neutral
// defaults; every scorer must degrade to 0 in that case rather than error.
type Input struct {
	Snapshot       indicators.Snapshot
	Sentiment      float64
	SentimentTrend sentiment.Trend
	Meta           market.InstrumentMeta
	Spread         float64
}

// Signal is one strategy's scored opinion for the current cycle.
type Signal struct {
	Name  string
	Score float64
}

// Scorer evaluates one named strategy.
type Scorer interface {
	Name() string
	Score(in Input) float64
}

// Catalog returns the fixed strategy set in evaluation order. The predictor
// may be nil, in which case ml_proxy scores 0.
func Catalog(p Predictor) []Scorer {
	return []Scorer{
		momentumScorer{},
		meanReversionScorer{},
		breakoutScorer{},
		sentimentScorer{},
		volatilityScorer{},
		trendFollowingScorer{},
		scalpingScorer{},
		mlProxyScorer{predictor: p},
	}
}

// Evaluate runs every scorer and clamps each result into [-1, 1].
func Evaluate(catalog []Scorer, in Input) []Signal {
	out := make([]Signal, 0, len(catalog))
	for _, s := range catalog {
		out = append(out, Signal{Name: s.Name(), Score: clamp(s.Score(in), -1, 1)})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
