// Package indicators computes technical analysis values over a buffered
// price series. High and low are approximated by ask and bid since true
// OHLC is not available from a quote stream.
package indicators

import "github.com/quantfx/trader/market"

// MinWindow is the number of samples required before real values are
// computed. Below it Compute returns the neutral snapshot.
const MinWindow = 50

// Snapshot holds every indicator derived from one series. It is recomputed
// fresh each cycle and never cached across ticks.
type Snapshot struct {
	Ready bool // false means the series was too short and all values are neutral

	LastPrice float64

	RSI           float64
	MACD          float64
	MACDSignal    float64
	MACDHistogram float64

	BollingerUpper  float64
	BollingerMiddle float64
	BollingerLower  float64

	SMA20 float64
	SMA50 float64
	EMA12 float64
	EMA26 float64

	StochK    float64
	StochD    float64
	WilliamsR float64

	ATR float64
	ADX float64
	CCI float64

	Momentum5  float64
	Momentum10 float64
	ROC        float64

	Volatility10 float64
	Volatility20 float64

	Support    float64
	Resistance float64

	// TrendStrength is the signed regression slope over the trailing 20
	// samples normalized by mean price.
	TrendStrength float64
}

// Neutral returns the documented "not enough data" snapshot. Every consumer
// can treat it as a real value; nothing downstream needs to special-case a
// short series.
func Neutral(lastPrice float64) Snapshot {
	return Snapshot{
		Ready:           false,
		LastPrice:       lastPrice,
		RSI:             50,
		StochK:          50,
		StochD:          50,
		WilliamsR:       -50,
		BollingerUpper:  lastPrice,
		BollingerMiddle: lastPrice,
		BollingerLower:  lastPrice,
		SMA20:           lastPrice,
		SMA50:           lastPrice,
		EMA12:           lastPrice,
		EMA26:           lastPrice,
		Support:         lastPrice,
		Resistance:      lastPrice,
	}
}

// Compute derives the full snapshot from a series. A series shorter than
// MinWindow yields Neutral, not an error.
func Compute(s *market.Series) Snapshot {
	var last float64
	if p, ok := s.Last(); ok {
		last = p.Mid
	}
	if s.Len() < MinWindow {
		return Neutral(last)
	}

	points := s.Points()
	mids := make([]float64, len(points))
	highs := make([]float64, len(points))
	lows := make([]float64, len(points))
	for i, p := range points {
		mids[i] = p.Mid
		highs[i] = p.Ask
		lows[i] = p.Bid
	}

	macd, signal, hist := MACD(mids, 12, 26, 9)
	upper, middle, lower := Bollinger(mids, 20, 2)
	k, d := Stochastic(highs, lows, mids, 14, 3)

	return Snapshot{
		Ready:     true,
		LastPrice: last,

		RSI:           RSI(mids, 14),
		MACD:          macd,
		MACDSignal:    signal,
		MACDHistogram: hist,

		BollingerUpper:  upper,
		BollingerMiddle: middle,
		BollingerLower:  lower,

		SMA20: SMA(mids, 20),
		SMA50: SMA(mids, 50),
		EMA12: EMA(mids, 12),
		EMA26: EMA(mids, 26),

		StochK:    k,
		StochD:    d,
		WilliamsR: WilliamsR(highs, lows, mids, 14),

		ATR: ATR(mids, 14),
		ADX: ADX(highs, lows, mids, 14),
		CCI: CCI(highs, lows, mids, 20),

		Momentum5:  Momentum(mids, 5),
		Momentum10: Momentum(mids, 10),
		ROC:        ROC(mids, 12),

		Volatility10: StdDev(mids, 10),
		Volatility20: StdDev(mids, 20),

		Support:    Lowest(mids, 20),
		Resistance: Highest(mids, 20),

		TrendStrength: TrendSlope(mids, 20),
	}
}
