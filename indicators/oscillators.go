package indicators

import "math"

// RSI computes Wilder's Relative Strength Index over the trailing diffs.
// When the average loss is zero and any gain exists the result is exactly
// 100; when gains and losses are both zero the result is neutral 50.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}

	// Seed the averages with a simple mean of the first period diffs.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remainder.
	for i := period + 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100
		}
		return 50
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Stochastic returns %K and %D over the trailing window, with %D the SMA(3)
// of the last dPeriod %K values. A flat window yields the neutral 50.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d float64) {
	kSeries := stochKSeries(highs, lows, closes, kPeriod, dPeriod)
	if len(kSeries) == 0 {
		return 50, 50
	}
	k = kSeries[len(kSeries)-1]
	d = SMA(kSeries, dPeriod)
	return k, d
}

// stochKSeries computes the last n %K values needed for %D smoothing.
func stochKSeries(highs, lows, closes []float64, kPeriod, n int) []float64 {
	if kPeriod <= 0 || len(closes) < kPeriod {
		return nil
	}
	if n < 1 {
		n = 1
	}

	var out []float64
	for end := len(closes) - n; end < len(closes); end++ {
		if end+1 < kPeriod {
			continue
		}
		hh := Highest(highs[:end+1], kPeriod)
		ll := Lowest(lows[:end+1], kPeriod)
		if hh == ll {
			out = append(out, 50)
			continue
		}
		out = append(out, 100*(closes[end]-ll)/(hh-ll))
	}
	return out
}

// WilliamsR returns Williams %R in [-100, 0]; a flat window yields -50.
func WilliamsR(highs, lows, closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return -50
	}
	hh := Highest(highs, period)
	ll := Lowest(lows, period)
	if hh == ll {
		return -50
	}
	return -100 * (hh - closes[len(closes)-1]) / (hh - ll)
}

// CCI computes the Commodity Channel Index over typical prices. Zero mean
// deviation degenerates to 0.
func CCI(highs, lows, closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return 0
	}

	tp := make([]float64, period)
	for i := 0; i < period; i++ {
		j := len(closes) - period + i
		tp[i] = (highs[j] + lows[j] + closes[j]) / 3
	}

	mean := 0.0
	for _, v := range tp {
		mean += v
	}
	mean /= float64(period)

	meanDev := 0.0
	for _, v := range tp {
		meanDev += math.Abs(v - mean)
	}
	meanDev /= float64(period)

	if meanDev == 0 {
		return 0
	}
	return (tp[period-1] - mean) / (0.015 * meanDev)
}

// Momentum returns the relative price change over the trailing period.
func Momentum(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 0
	}
	prev := prices[len(prices)-1-period]
	if prev == 0 {
		return 0
	}
	return (prices[len(prices)-1] - prev) / prev
}

// ROC returns the rate of change in percent over the trailing period.
func ROC(prices []float64, period int) float64 {
	return Momentum(prices, period) * 100
}

// Highest returns the max of the trailing period samples.
func Highest(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period > len(prices) || period <= 0 {
		period = len(prices)
	}
	max := prices[len(prices)-period]
	for _, p := range prices[len(prices)-period:] {
		if p > max {
			max = p
		}
	}
	return max
}

// Lowest returns the min of the trailing period samples.
func Lowest(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period > len(prices) || period <= 0 {
		period = len(prices)
	}
	min := prices[len(prices)-period]
	for _, p := range prices[len(prices)-period:] {
		if p < min {
			min = p
		}
	}
	return min
}
