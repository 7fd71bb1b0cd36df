package engine

import "errors"

// Error taxonomy for the trading loop. Only ErrConfigInvalid is fatal; it
// blocks startup. Everything else degrades the instrument or cycle to HOLD
// and is logged at the isolation boundary.
var (
	// ErrDataInsufficient marks a cycle skipped for missing quotes or a
	// series below the indicator minimum window.
	ErrDataInsufficient = errors.New("engine: insufficient data")

	// ErrCollaborator marks a broker or sentiment boundary failure. The
	// loop backs off with a capped exponential delay on repeats.
	ErrCollaborator = errors.New("engine: collaborator unavailable")

	// ErrConfigInvalid is returned by New for bad weights or risk params.
	ErrConfigInvalid = errors.New("engine: invalid configuration")

	// ErrRiskLimit marks a candidate trade the gate refused.
	ErrRiskLimit = errors.New("engine: risk limit exceeded")

	// ErrOrderRejected marks a broker refusal. No state is mutated.
	ErrOrderRejected = errors.New("engine: order rejected")
)
