// Package sentiment defines the boundary to the external news/sentiment
// pipeline. Only its scalar output is consumed here.
package sentiment

import "context"

type Trend string

const (
	Improving        Trend = "IMPROVING"
	Declining        Trend = "DECLINING"
	Stable           Trend = "STABLE"
	InsufficientData Trend = "INSUFFICIENT_DATA"
)

// Source supplies the current aggregate sentiment. Score is in [0,1] with
// 0.5 neutral.
type Source interface {
	Score(ctx context.Context) (float64, error)
	SentimentTrend(ctx context.Context) (Trend, error)
}

// Static is a fixed-value source for simulation and tests.
type Static struct {
	Value     float64
	TrendView Trend
}

func NewStatic(value float64) *Static {
	return &Static{Value: value, TrendView: Stable}
}

func (s *Static) Score(ctx context.Context) (float64, error) {
	return s.Value, nil
}

func (s *Static) SentimentTrend(ctx context.Context) (Trend, error) {
	if s.TrendView == "" {
		return InsufficientData, nil
	}
	return s.TrendView, nil
}

// Neutral is the score used when the source is unavailable.
const Neutral = 0.5
