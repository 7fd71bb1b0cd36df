package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors. The control surface
// serves them from the same registry they were built against.
type Metrics struct {
	Cycles      prometheus.Counter
	CycleErrors prometheus.Counter
	Decisions   *prometheus.CounterVec
	Orders      prometheus.Counter
	Rejections  *prometheus.CounterVec
	Balance     prometheus.Gauge
	OpenCount   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxtrader_cycles_total",
			Help: "Completed trading cycles.",
		}),
		CycleErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxtrader_cycle_errors_total",
			Help: "Cycle or per-instrument evaluation failures.",
		}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fxtrader_decisions_total",
			Help: "Fused decisions by action.",
		}, []string{"action"}),
		Orders: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxtrader_orders_total",
			Help: "Orders filled at the broker.",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fxtrader_rejections_total",
			Help: "Candidate trades refused, by gate or broker code.",
		}, []string{"code"}),
		Balance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fxtrader_account_balance",
			Help: "Last observed account balance.",
		}),
		OpenCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fxtrader_open_positions",
			Help: "Open positions reported by the broker.",
		}),
	}
}
