package strategies

import "github.com/quantfx/trader/sentiment"

// momentumScorer fires on aligned short and medium momentum.
type momentumScorer struct{}

func (momentumScorer) Name() string { return Momentum }

func (momentumScorer) Score(in Input) float64 {
	s := in.Snapshot
	switch {
	case s.Momentum5 > 0.001 && s.Momentum10 > 0.002:
		return 0.8
	case s.Momentum5 < -0.001 && s.Momentum10 < -0.002:
		return -0.8
	default:
		return 0
	}
}

// meanReversionScorer fades overbought/oversold extremes confirmed by price
// position against SMA20.
type meanReversionScorer struct{}

func (meanReversionScorer) Name() string { return MeanReversion }

func (meanReversionScorer) Score(in Input) float64 {
	s := in.Snapshot
	switch {
	case s.RSI > 70 && s.LastPrice > s.SMA20:
		return -0.7
	case s.RSI < 30 && s.LastPrice < s.SMA20:
		return 0.7
	default:
		return 0
	}
}

// breakoutScorer fires when price clears the trailing range with a small
// buffer against noise.
type breakoutScorer struct{}

func (breakoutScorer) Name() string { return Breakout }

func (breakoutScorer) Score(in Input) float64 {
	s := in.Snapshot
	switch {
	case s.LastPrice > s.Resistance*1.0005:
		return 0.9
	case s.LastPrice < s.Support*0.9995:
		return -0.9
	default:
		return 0
	}
}

// sentimentScorer maps the external sentiment scalar into a bounded score,
// with a small additive news-impact term when the sentiment trend confirms
// an extreme reading.
type sentimentScorer struct{}

func (sentimentScorer) Name() string { return Sentiment }

func (sentimentScorer) Score(in Input) float64 {
	score := clamp((in.Sentiment-0.5)*1.2, -0.6, 0.6)

	switch {
	case in.SentimentTrend == sentiment.Improving && in.Sentiment > 0.6:
		score += 0.3
	case in.SentimentTrend == sentiment.Declining && in.Sentiment < 0.4:
		score -= 0.3
	}
	return score
}

// volatilityScorer reads expansion or contraction of short-window vs
// long-window volatility.
type volatilityScorer struct{}

func (volatilityScorer) Name() string { return Volatility }

func (volatilityScorer) Score(in Input) float64 {
	s := in.Snapshot
	if s.Volatility20 == 0 {
		return 0
	}
	switch {
	case s.Volatility10 > 1.5*s.Volatility20:
		return 0.5
	case s.Volatility10 < 0.5*s.Volatility20:
		return -0.5
	default:
		return 0
	}
}

// trendFollowingScorer takes the regression-slope direction only when the
// moving averages are consistently ordered the same way.
type trendFollowingScorer struct{}

func (trendFollowingScorer) Name() string { return TrendFollowing }

func (trendFollowingScorer) Score(in Input) float64 {
	s := in.Snapshot
	switch {
	case s.SMA20 > s.SMA50 && s.TrendStrength > 0:
		return 0.6
	case s.SMA20 < s.SMA50 && s.TrendStrength < 0:
		return -0.6
	default:
		return 0
	}
}

// scalpingScorer only participates when the spread is tight enough for the
// instrument, then follows short momentum.
type scalpingScorer struct{}

func (scalpingScorer) Name() string { return Scalping }

func (scalpingScorer) Score(in Input) float64 {
	if in.Spread >= in.Meta.MinSpread*1.5 {
		return 0
	}
	return sign(in.Snapshot.Momentum5) * 0.4
}

// mlProxyScorer delegates to an injected predictor so a real model can
// replace the heuristic without touching fusion.
type mlProxyScorer struct {
	predictor Predictor
}

func (mlProxyScorer) Name() string { return MLProxy }

func (m mlProxyScorer) Score(in Input) float64 {
	if m.predictor == nil {
		return 0
	}
	v, err := m.predictor.Predict(in.Snapshot)
	if err != nil {
		return 0
	}
	return clamp(v, -1, 1)
}
