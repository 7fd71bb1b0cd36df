package indicators

import "math"

// SMA returns the simple moving average of the trailing period samples.
// Falls back to averaging the whole slice when it is shorter than period.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 || period <= 0 {
		return 0
	}
	if period > len(prices) {
		period = len(prices)
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average seeded with the SMA of the
// first period samples.
func EMA(prices []float64, period int) float64 {
	series := emaSeries(prices, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// emaSeries returns the EMA value at every index from period-1 onward.
func emaSeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	mult := 2.0 / float64(period+1)

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += prices[i]
	}
	ema := sma / float64(period)

	out := make([]float64, 0, len(prices)-period+1)
	out = append(out, ema)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*mult + ema
		out = append(out, ema)
	}
	return out
}

// MACD returns the MACD line (EMA fast − EMA slow), its signal line (EMA of
// the MACD line) and the histogram (line − signal).
func MACD(prices []float64, fast, slow, signalPeriod int) (line, signal, histogram float64) {
	fastSeries := emaSeries(prices, fast)
	slowSeries := emaSeries(prices, slow)
	if len(fastSeries) == 0 || len(slowSeries) == 0 {
		return 0, 0, 0
	}

	// Both series end at the last price; align them on the tail.
	n := len(slowSeries)
	if len(fastSeries) < n {
		n = len(fastSeries)
	}
	macdSeries := make([]float64, n)
	for i := 0; i < n; i++ {
		macdSeries[i] = fastSeries[len(fastSeries)-n+i] - slowSeries[len(slowSeries)-n+i]
	}

	line = macdSeries[n-1]
	if len(macdSeries) >= signalPeriod {
		signal = EMA(macdSeries, signalPeriod)
	} else {
		signal = SMA(macdSeries, len(macdSeries))
	}
	return line, signal, line - signal
}

// StdDev returns the population standard deviation of the trailing period
// samples.
func StdDev(prices []float64, period int) float64 {
	if len(prices) == 0 || period <= 0 {
		return 0
	}
	if period > len(prices) {
		period = len(prices)
	}
	window := prices[len(prices)-period:]
	mean := 0.0
	for _, p := range window {
		mean += p
	}
	mean /= float64(period)

	variance := 0.0
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(period))
}

// Bollinger returns the upper, middle and lower bands (SMA ± dev·stdev) over
// the trailing period.
func Bollinger(prices []float64, period int, dev float64) (upper, middle, lower float64) {
	middle = SMA(prices, period)
	sd := StdDev(prices, period)
	return middle + dev*sd, middle, middle - dev*sd
}
