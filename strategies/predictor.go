package strategies

import "github.com/quantfx/trader/indicators"

// Predictor produces a directional score in [-1, 1] from an indicator
// snapshot. It is the seam where a trained model can be plugged in.
type Predictor interface {
	Predict(snap indicators.Snapshot) (float64, error)
}

// LinearPredictor is a hand-tuned linear combination over a few indicator
// features. It is the default stand-in until a real model is wired in.
type LinearPredictor struct{}

func (LinearPredictor) Predict(snap indicators.Snapshot) (float64, error) {
	if !snap.Ready {
		return 0, nil
	}

	// Features roughly centered on zero, weighted by hand.
	rsiBias := (50 - snap.RSI) / 50 // contrarian: high RSI pushes short
	macdBias := sign(snap.MACDHistogram) * 0.5
	momentumBias := clamp(snap.Momentum10*100, -1, 1)

	score := 0.3*rsiBias + 0.3*macdBias + 0.4*momentumBias
	return clamp(score, -1, 1), nil
}
