package risk

import (
	"fmt"
	"time"
)

// Limits configures the gate's rejection rules.
type Limits struct {
	MaxDailyTrades        int
	MaxDailyRisk          float64 // fraction of balance, e.g. 0.05
	MaxCorrelatedExposure int
	MaxPositions          int
}

// Intent is a candidate trade presented to the gate.
type Intent struct {
	Instrument     string
	Spread         float64
	MaxSpread      float64 // instrument's configured max spread
	RiskAmount     float64
	Balance        float64
	HasPosition    bool // an open position already exists on the instrument
	OpenPositions  int
	CorrelatedOpen int
	Now            time.Time
}

// Violation names one failed check.
type Violation struct {
	Code string
	Msg  string
}

// Decision is the gate's verdict. Rejections are non-fatal; the cycle logs
// them and moves on.
type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Check evaluates every limit against the intent and the daily budget. It
// never mutates the budget; Budget.Commit happens on the execution success
// path so a rejected or failed order cannot consume budget.
func (g Limits) Check(intent Intent, budget *Budget) Decision {
	d := Decision{Allowed: true}

	tradeCount, riskUsed := budget.Snapshot(intent.Now)

	if g.MaxDailyTrades > 0 && tradeCount >= g.MaxDailyTrades {
		d.add("DAILY_TRADE_CAP",
			fmt.Sprintf("daily trades %d >= cap %d", tradeCount, g.MaxDailyTrades))
	}

	if g.MaxDailyRisk > 0 && intent.Balance > 0 {
		budgetAmount := intent.Balance * g.MaxDailyRisk
		if riskUsed+intent.RiskAmount >= budgetAmount {
			d.add("DAILY_RISK_BUDGET",
				fmt.Sprintf("risk used %.2f + prospective %.2f >= budget %.2f",
					riskUsed, intent.RiskAmount, budgetAmount))
		}
	}

	if intent.HasPosition {
		d.add("POSITION_EXISTS",
			fmt.Sprintf("open position already held on %s", intent.Instrument))
	}

	if g.MaxPositions > 0 && intent.OpenPositions >= g.MaxPositions {
		d.add("MAX_POSITIONS",
			fmt.Sprintf("open positions %d >= max %d", intent.OpenPositions, g.MaxPositions))
	}

	if intent.MaxSpread > 0 && intent.Spread > intent.MaxSpread {
		d.add("SPREAD_TOO_WIDE",
			fmt.Sprintf("spread %.5f exceeds max %.5f", intent.Spread, intent.MaxSpread))
	}

	if g.MaxCorrelatedExposure > 0 && intent.CorrelatedOpen >= g.MaxCorrelatedExposure {
		d.add("CORRELATED_EXPOSURE",
			fmt.Sprintf("correlated open positions %d >= max %d",
				intent.CorrelatedOpen, g.MaxCorrelatedExposure))
	}

	return d
}
