package indicators

// TrendSlope fits a least-squares line through the trailing period samples
// and returns the per-sample slope normalized by the mean price. The sign
// carries direction; the magnitude is strength.
func TrendSlope(prices []float64, period int) float64 {
	if len(prices) < 2 {
		return 0
	}
	if period > len(prices) || period <= 0 {
		period = len(prices)
	}
	window := prices[len(prices)-period:]

	n := float64(len(window))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range window {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	slope := (n*sumXY - sumX*sumY) / den

	mean := sumY / n
	if mean == 0 {
		return 0
	}
	return slope / mean
}
