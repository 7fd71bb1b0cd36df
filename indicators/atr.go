package indicators

import "math"

// ATR approximates the Average True Range as the rolling mean of absolute
// close-to-close moves, since a quote stream has no true OHLC range.
func ATR(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 0
	}
	sum := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		sum += math.Abs(closes[i] - closes[i-1])
	}
	return sum / float64(period)
}
