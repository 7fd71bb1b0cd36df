package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfx/trader/market"
)

// risingSeries builds n quotes stepping the mid up by step each tick with a
// constant spread.
func risingSeries(n int, start, step, spread float64) *market.Series {
	s := market.NewSeries(market.DefaultCapacity)
	now := time.Now()
	for i := 0; i < n; i++ {
		mid := start + float64(i)*step
		s.Append(market.NewPricePoint("EUR_USD", mid-spread/2, mid+spread/2, 0, now.Add(time.Duration(i)*time.Second)))
	}
	return s
}

func flatSeries(n int, price, spread float64) *market.Series {
	s := market.NewSeries(market.DefaultCapacity)
	now := time.Now()
	for i := 0; i < n; i++ {
		s.Append(market.NewPricePoint("EUR_USD", price-spread/2, price+spread/2, 0, now.Add(time.Duration(i)*time.Second)))
	}
	return s
}

func TestComputeNeutralBelowMinWindow(t *testing.T) {
	s := risingSeries(5, 1.1000, 0.0001, 0.0001)
	snap := Compute(s)

	last := 1.1000 + 4*0.0001

	assert.False(t, snap.Ready)
	assert.InDelta(t, 50.0, snap.RSI, 1e-12)
	assert.InDelta(t, 50.0, snap.StochK, 1e-12)
	assert.InDelta(t, 50.0, snap.StochD, 1e-12)
	assert.InDelta(t, -50.0, snap.WilliamsR, 1e-12)
	assert.Zero(t, snap.MACD)
	assert.Zero(t, snap.MACDSignal)
	assert.Zero(t, snap.MACDHistogram)
	assert.InDelta(t, last, snap.SMA20, 1e-9)
	assert.InDelta(t, last, snap.SMA50, 1e-9)
	assert.InDelta(t, last, snap.EMA12, 1e-9)
	assert.InDelta(t, last, snap.EMA26, 1e-9)
	assert.Zero(t, snap.ATR)
	assert.Zero(t, snap.ADX)
	assert.Zero(t, snap.CCI)
	assert.Zero(t, snap.Momentum10)
	assert.Zero(t, snap.ROC)
	assert.InDelta(t, last, snap.Support, 1e-9)
	assert.InDelta(t, last, snap.Resistance, 1e-9)
}

func TestComputeNeutralAtBoundary(t *testing.T) {
	assert.False(t, Compute(risingSeries(MinWindow-1, 1.1, 0.0001, 0.0001)).Ready)
	assert.True(t, Compute(risingSeries(MinWindow, 1.1, 0.0001, 0.0001)).Ready)
}

func TestRSIBounds(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
	}{
		{"rising", seq(60, 1.10, 0.0001)},
		{"falling", seq(60, 1.20, -0.0001)},
		{"flat", seq(60, 1.10, 0)},
		{"zigzag", zigzag(60, 1.10, 0.0002)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi := RSI(tt.prices, 14)
			assert.GreaterOrEqual(t, rsi, 0.0)
			assert.LessOrEqual(t, rsi, 100.0)
		})
	}
}

func TestRSIExactlyHundredWhenNoLosses(t *testing.T) {
	rsi := RSI(seq(60, 1.10, 0.0001), 14)
	assert.Equal(t, 100.0, rsi)
}

func TestRSIExactlyZeroIsNeverBelowZero(t *testing.T) {
	rsi := RSI(seq(60, 1.20, -0.0001), 14)
	assert.InDelta(t, 0.0, rsi, 1e-9)
}

func TestRSIFlatIsNeutral(t *testing.T) {
	assert.Equal(t, 50.0, RSI(seq(60, 1.10, 0), 14))
}

func TestStochasticFlatWindowIsNeutral(t *testing.T) {
	snap := Compute(flatSeries(60, 1.1000, 0))
	assert.InDelta(t, 50.0, snap.StochK, 1e-9)
	assert.InDelta(t, 50.0, snap.StochD, 1e-9)
	assert.InDelta(t, -50.0, snap.WilliamsR, 1e-9)
}

func TestStochasticRisingIsHigh(t *testing.T) {
	snap := Compute(risingSeries(60, 1.1000, 0.0001, 0.0001))
	// Close sits at the top of the rolling window minus half the spread.
	assert.Greater(t, snap.StochK, 80.0)
	assert.Greater(t, snap.StochD, 80.0)
}

func TestATRConstantStep(t *testing.T) {
	atr := ATR(seq(60, 1.1000, 0.0001), 14)
	assert.InDelta(t, 0.0001, atr, 1e-9)
}

func TestATRInsufficient(t *testing.T) {
	assert.Zero(t, ATR(seq(10, 1.1, 0.0001), 14))
}

func TestMACDPositiveInUptrend(t *testing.T) {
	line, _, _ := MACD(seq(100, 1.1000, 0.0002), 12, 26, 9)
	assert.Greater(t, line, 0.0)
}

func TestMomentumRelative(t *testing.T) {
	prices := seq(20, 1.0000, 0.0010)
	m := Momentum(prices, 10)
	require.Greater(t, m, 0.0)
	// 10 steps of 0.001 on ~1.0 base is about 1%.
	assert.InDelta(t, 0.01, m, 0.002)

	assert.InDelta(t, m*100, ROC(prices, 10), 1e-9)
}

func TestSupportResistance(t *testing.T) {
	snap := Compute(risingSeries(60, 1.1000, 0.0001, 0.0001))
	assert.Greater(t, snap.Resistance, snap.Support)
	assert.InDelta(t, snap.LastPrice, snap.Resistance, 1e-9)
}

func TestTrendSlopeSign(t *testing.T) {
	assert.Greater(t, TrendSlope(seq(40, 1.10, 0.0001), 20), 0.0)
	assert.Less(t, TrendSlope(seq(40, 1.20, -0.0001), 20), 0.0)
	assert.Zero(t, TrendSlope(seq(40, 1.10, 0), 20))
}

func TestADXDegenerateFlat(t *testing.T) {
	n := 60
	highs := seq(n, 1.1, 0)
	lows := seq(n, 1.1, 0)
	closes := seq(n, 1.1, 0)
	assert.Zero(t, ADX(highs, lows, closes, 14))
}

func TestADXStrongTrend(t *testing.T) {
	n := 80
	highs := seq(n, 1.1002, 0.0002)
	lows := seq(n, 1.1000, 0.0002)
	closes := seq(n, 1.1001, 0.0002)
	adx := ADX(highs, lows, closes, 14)
	assert.Greater(t, adx, 50.0, "one-directional movement should read as a strong trend")
	assert.LessOrEqual(t, adx, 100.0)
}

func TestBollingerOrdering(t *testing.T) {
	upper, middle, lower := Bollinger(zigzag(60, 1.10, 0.0005), 20, 2)
	assert.Greater(t, upper, middle)
	assert.Less(t, lower, middle)
}

func TestCCIFlatIsZero(t *testing.T) {
	n := 40
	assert.Zero(t, CCI(seq(n, 1.1, 0), seq(n, 1.1, 0), seq(n, 1.1, 0), 20))
}

func seq(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func zigzag(n int, base, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = base + amp
		} else {
			out[i] = base - amp
		}
	}
	return out
}
