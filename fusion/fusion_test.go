package fusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfx/trader/regime"
	"github.com/quantfx/trader/strategies"
)

func uniformSignals(score float64) []strategies.Signal {
	names := []string{
		strategies.Momentum, strategies.MeanReversion, strategies.Breakout,
		strategies.Sentiment, strategies.Volatility, strategies.TrendFollowing,
		strategies.Scalping, strategies.MLProxy,
	}
	out := make([]strategies.Signal, len(names))
	for i, n := range names {
		out[i] = strategies.Signal{Name: n, Score: score}
	}
	return out
}

func baseContext() Context {
	return Context{
		Instrument:          "EUR_USD",
		Regime:              regime.Normal,
		SeriesReady:         true,
		Volatility:          0.0001,
		VolatilityThreshold: 0.002,
	}
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	bad := DefaultWeights()
	bad[strategies.Momentum] = 0.5
	assert.Error(t, bad.Validate())

	neg := DefaultWeights()
	neg[strategies.Momentum] = -0.2
	neg[strategies.Scalping] = 0.45
	assert.Error(t, neg.Validate())
}

func TestNewFailsFastOnBadWeights(t *testing.T) {
	_, err := New(Weights{strategies.Momentum: 0.5}, false)
	require.Error(t, err)
}

func TestFuseUniformScores(t *testing.T) {
	f, err := New(DefaultWeights(), false)
	require.NoError(t, err)

	// Every strategy at +1 with weights summing to 1 gives raw score 1.
	d := f.Fuse(uniformSignals(1), baseContext(), time.Now())
	assert.InDelta(t, 1.0, d.RawScore, 1e-9)
	assert.Equal(t, 1.0, d.Confidence)
	assert.Equal(t, Buy, d.Action)
}

func TestConfidenceBounds(t *testing.T) {
	f, _ := New(DefaultWeights(), false)

	for _, score := range []float64{-1, -0.5, -0.1, 0, 0.1, 0.5, 1} {
		d := f.Fuse(uniformSignals(score), baseContext(), time.Now())
		assert.GreaterOrEqual(t, d.Confidence, 0.0)
		assert.LessOrEqual(t, d.Confidence, 1.0)
	}

	// Confidence is |raw| * 1.5 clipped.
	d := f.Fuse(uniformSignals(0.4), baseContext(), time.Now())
	assert.InDelta(t, 0.6, d.Confidence, 1e-9)
}

func TestHoldBelowThreshold(t *testing.T) {
	f, _ := New(DefaultWeights(), false)

	for _, r := range []regime.Regime{regime.Normal, regime.Volatile, regime.Trending, regime.Breakout, regime.Crisis} {
		cx := baseContext()
		cx.Regime = r
		d := f.Fuse(uniformSignals(0.01), cx, time.Now())
		assert.Equalf(t, Hold, d.Action, "regime %s", r)
	}
}

func TestSellSymmetry(t *testing.T) {
	f, _ := New(DefaultWeights(), false)

	buy := f.Fuse(uniformSignals(0.8), baseContext(), time.Now())
	sell := f.Fuse(uniformSignals(-0.8), baseContext(), time.Now())

	assert.Equal(t, Buy, buy.Action)
	assert.Equal(t, Sell, sell.Action)
	assert.InDelta(t, buy.AdjustedScore, -sell.AdjustedScore, 1e-9)
}

func TestNotReadyForcesHold(t *testing.T) {
	f, _ := New(DefaultWeights(), false)

	cx := baseContext()
	cx.SeriesReady = false
	d := f.Fuse(uniformSignals(1), cx, time.Now())
	assert.Equal(t, Hold, d.Action)
	assert.Greater(t, d.AdjustedScore, 0.0, "score is still reported for observability")
}

func TestCorrelationPenaltyMonotoneAndSaturating(t *testing.T) {
	prev := 1.0
	for n := 0; n <= 8; n++ {
		p := CorrelationPenalty(n)
		assert.LessOrEqual(t, p, prev, "penalty factor must be non-increasing")
		assert.LessOrEqual(t, p, 1.0)
		prev = p
	}
	assert.Equal(t, 0.5, CorrelationPenalty(4), "saturates at the 0.5 cap")
	assert.Equal(t, 0.5, CorrelationPenalty(10))
	assert.Equal(t, 1.0, CorrelationPenalty(0))
}

func TestCorrelationPenaltyNeverAmplifies(t *testing.T) {
	f, _ := New(DefaultWeights(), false)

	base := f.Fuse(uniformSignals(0.6), baseContext(), time.Now())
	for n := 1; n <= 5; n++ {
		cx := baseContext()
		cx.CorrelatedOpen = n
		d := f.Fuse(uniformSignals(0.6), cx, time.Now())
		assert.LessOrEqual(t, d.AdjustedScore, base.AdjustedScore)
	}
}

func TestScenarioDCorrelationForcesHold(t *testing.T) {
	// Raw fused score 0.5 would clear the base threshold, but two correlated
	// positions push the adjusted score below it.
	f, _ := New(DefaultWeights(), false)

	cx := baseContext()
	cx.CorrelatedOpen = 2
	cx.Volatility = 0.003 // above threshold so the vol factor does not boost

	d := f.Fuse(uniformSignals(0.5), cx, time.Now())
	require.InDelta(t, 0.5, d.RawScore, 1e-9)
	assert.Less(t, d.AdjustedScore, d.Threshold)
	assert.Equal(t, Hold, d.Action)
}

func TestRegimeMultiplierApplied(t *testing.T) {
	f, _ := New(DefaultWeights(), false)

	normal := f.Fuse(uniformSignals(0.5), baseContext(), time.Now())

	crisis := baseContext()
	crisis.Regime = regime.Crisis
	d := f.Fuse(uniformSignals(0.5), crisis, time.Now())
	assert.Less(t, d.AdjustedScore, normal.AdjustedScore)
	assert.Equal(t, Hold, d.Action, "crisis dampening keeps the same raw signal out of the market")
}

func TestTrendingTightensThreshold(t *testing.T) {
	f, _ := New(DefaultWeights(), false)

	cx := baseContext()
	cx.Regime = regime.Trending
	d := f.Fuse(uniformSignals(0.5), cx, time.Now())

	// confidence = 0.75 -> no scaling; trending base is 0.35.
	assert.InDelta(t, 0.35, d.Threshold, 1e-9)
}

func TestThresholdConfidenceScaling(t *testing.T) {
	f, _ := New(DefaultWeights(), false)

	weak := f.Fuse(uniformSignals(0.3), baseContext(), time.Now()) // confidence 0.45
	assert.InDelta(t, 0.45*1.2, weak.Threshold, 1e-9)

	strong := f.Fuse(uniformSignals(0.6), baseContext(), time.Now()) // confidence 0.9
	assert.InDelta(t, 0.45*0.8, strong.Threshold, 1e-9)
}

func TestStreakBiasOnlyInAccelerationMode(t *testing.T) {
	plain, _ := New(DefaultWeights(), false)
	accel, _ := New(DefaultWeights(), true)

	cx := baseContext()
	cx.WinStreak = 4

	base := plain.Fuse(uniformSignals(0.5), cx, time.Now())
	boosted := accel.Fuse(uniformSignals(0.5), cx, time.Now())
	assert.Greater(t, boosted.AdjustedScore, base.AdjustedScore)

	cx.WinStreak = 0
	cx.LossStreak = 3
	dampened := accel.Fuse(uniformSignals(0.5), cx, time.Now())
	assert.Less(t, dampened.AdjustedScore, base.AdjustedScore)
}

func TestUnweightedSignalIgnored(t *testing.T) {
	f, _ := New(DefaultWeights(), false)

	signals := append(uniformSignals(0), strategies.Signal{Name: "correlation", Score: 1})
	d := f.Fuse(signals, baseContext(), time.Now())
	assert.Zero(t, d.RawScore)
	assert.Equal(t, Hold, d.Action)
}
