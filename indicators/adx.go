package indicators

import "math"

// ADX implements Wilder's Average Directional Index: +DM/-DM smoothed and
// normalized by ATR into directional indexes, then DX smoothed again.
// Degenerate input (+DI + -DI == 0, or no range at all) yields 0.
func ADX(highs, lows, closes []float64, period int) float64 {
	if period <= 0 || len(closes) < 2*period+1 {
		return 0
	}

	n := len(closes)
	pdm := make([]float64, n-1)
	mdm := make([]float64, n-1)
	tr := make([]float64, n-1)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			pdm[i-1] = up
		}
		if down > up && down > 0 {
			mdm[i-1] = down
		}
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i-1] = math.Max(hl, math.Max(hc, lc))
	}

	// Seed the smoothed sums with simple averages of the first period values.
	var trS, pdmS, mdmS float64
	for i := 0; i < period; i++ {
		trS += tr[i]
		pdmS += pdm[i]
		mdmS += mdm[i]
	}
	trS /= float64(period)
	pdmS /= float64(period)
	mdmS /= float64(period)

	var adx float64
	var dxCount int
	for i := period; i < len(tr); i++ {
		trS = (trS*float64(period-1) + tr[i]) / float64(period)
		pdmS = (pdmS*float64(period-1) + pdm[i]) / float64(period)
		mdmS = (mdmS*float64(period-1) + mdm[i]) / float64(period)

		if trS == 0 {
			continue
		}
		pdi := 100 * pdmS / trS
		mdi := 100 * mdmS / trS
		den := pdi + mdi
		if den == 0 {
			continue
		}
		dx := 100 * math.Abs(pdi-mdi) / den

		dxCount++
		if dxCount == 1 {
			adx = dx
			continue
		}
		adx = (adx*float64(period-1) + dx) / float64(period)
	}
	if dxCount == 0 {
		return 0
	}
	return adx
}
