// Package config loads and validates the YAML configuration. Validation is
// fail-fast: a config that passes Load is safe to trade with.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantfx/trader/engine"
	"github.com/quantfx/trader/fusion"
	"github.com/quantfx/trader/market"
	"github.com/quantfx/trader/risk"
)

// Config is the complete runtime configuration.
type Config struct {
	Trading TradingConfig `yaml:"trading"`
	Broker  BrokerConfig  `yaml:"broker"`
	Journal JournalConfig `yaml:"journal"`
	Control ControlConfig `yaml:"control"`
	Logging LoggingConfig `yaml:"logging"`
}

// TradingConfig holds the global risk and strategy parameters.
type TradingConfig struct {
	Instruments           []string `yaml:"instruments"`
	RiskPerTrade          float64  `yaml:"risk_per_trade"`
	MaxDailyRisk          float64  `yaml:"max_daily_risk"`
	MaxDailyTrades        int      `yaml:"max_daily_trades"`
	MaxPositions          int      `yaml:"max_positions"`
	MaxCorrelatedExposure int      `yaml:"max_correlated_exposure"`

	MinStopDistance    float64 `yaml:"min_stop_distance"`
	MinUnits           float64 `yaml:"min_units"`
	MaxUnitsCap        float64 `yaml:"max_units_cap"`
	MaxBalanceFraction float64 `yaml:"max_balance_fraction"`
	RewardRiskRatio    float64 `yaml:"reward_risk_ratio"`

	StrategyWeights  map[string]float64 `yaml:"strategy_weights"`
	AccelerationMode bool               `yaml:"acceleration_mode"`
	HistoryCapacity  int                `yaml:"history_capacity"`

	// Interval overrides the adaptive regime cadence when set (e.g. "5s").
	Interval string `yaml:"interval,omitempty"`

	// Overrides adjusts per-instrument metadata without recompiling.
	Overrides map[string]InstrumentOverride `yaml:"instrument_overrides"`
}

// InstrumentOverride replaces selected metadata fields for one instrument.
// Zero values leave the built-in table entry untouched.
type InstrumentOverride struct {
	MinSpread           float64  `yaml:"min_spread"`
	MaxSpread           float64  `yaml:"max_spread"`
	VolatilityThreshold float64  `yaml:"volatility_threshold"`
	Correlated          []string `yaml:"correlated_instruments"`
}

// BrokerConfig selects paper or live execution.
type BrokerConfig struct {
	Mode string `yaml:"mode"` // "sim" or "live"

	// Paper engine parameters, ignored in live mode.
	StartingBalance   float64 `yaml:"starting_balance"`
	CommissionPerUnit float64 `yaml:"commission_per_unit"`
}

// JournalConfig selects the persistence sink.
type JournalConfig struct {
	Type   string `yaml:"type"` // "sqlite" or "none"
	DBPath string `yaml:"db_path,omitempty"`
}

// ControlConfig configures the HTTP control surface.
type ControlConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given: the seven
// majors, paper trading, conservative risk.
func Default() *Config {
	instruments := make([]string, 0, len(market.Instruments))
	for name := range market.Instruments {
		instruments = append(instruments, name)
	}
	return &Config{
		Trading: TradingConfig{
			Instruments:           instruments,
			RiskPerTrade:          0.01,
			MaxDailyRisk:          0.05,
			MaxDailyTrades:        50,
			MaxPositions:          5,
			MaxCorrelatedExposure: 2,
			MinStopDistance:       0.001,
			MinUnits:              1000,
			MaxUnitsCap:           50000,
			MaxBalanceFraction:    0.5,
			RewardRiskRatio:       2,
			StrategyWeights:       fusion.DefaultWeights(),
			HistoryCapacity:       market.DefaultCapacity,
		},
		Broker: BrokerConfig{
			Mode:            "sim",
			StartingBalance: 10000,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "fxtrader.db",
		},
		Control: ControlConfig{
			Enabled: true,
			Addr:    ":8642",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file, overlays it on the defaults and validates
// the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations that could violate risk limits at runtime.
func (c *Config) Validate() error {
	t := c.Trading
	if len(t.Instruments) == 0 {
		return fmt.Errorf("trading.instruments is empty")
	}
	if t.RiskPerTrade <= 0 || t.RiskPerTrade > 0.1 {
		return fmt.Errorf("trading.risk_per_trade %v outside (0, 0.1]", t.RiskPerTrade)
	}
	if t.MaxDailyRisk <= 0 || t.MaxDailyRisk > 1 {
		return fmt.Errorf("trading.max_daily_risk %v outside (0, 1]", t.MaxDailyRisk)
	}
	if t.MaxDailyTrades <= 0 {
		return fmt.Errorf("trading.max_daily_trades must be positive, got %d", t.MaxDailyTrades)
	}
	if t.MaxPositions <= 0 {
		return fmt.Errorf("trading.max_positions must be positive, got %d", t.MaxPositions)
	}
	if t.RewardRiskRatio <= 0 {
		return fmt.Errorf("trading.reward_risk_ratio must be positive, got %v", t.RewardRiskRatio)
	}
	if t.MinStopDistance <= 0 {
		return fmt.Errorf("trading.min_stop_distance must be positive, got %v", t.MinStopDistance)
	}
	if err := fusion.Weights(t.StrategyWeights).Validate(); err != nil {
		return fmt.Errorf("trading.strategy_weights: %w", err)
	}
	if _, err := t.ParseInterval(); err != nil {
		return fmt.Errorf("trading.interval: %w", err)
	}

	switch c.Broker.Mode {
	case "sim":
		if c.Broker.StartingBalance <= 0 {
			return fmt.Errorf("broker.starting_balance must be positive in sim mode")
		}
	case "live":
	default:
		return fmt.Errorf("broker.mode %q is not one of sim, live", c.Broker.Mode)
	}

	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path is required for the sqlite journal")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type %q is not one of sqlite, none", c.Journal.Type)
	}

	if c.Control.Enabled && c.Control.Addr == "" {
		return fmt.Errorf("control.addr is required when the control server is enabled")
	}
	return nil
}

// ApplyOverrides installs per-instrument metadata overrides into the shared
// table. Call once at startup, before the engine is constructed.
func (c *Config) ApplyOverrides() {
	for name, o := range c.Trading.Overrides {
		m := market.Meta(name)
		if o.MinSpread > 0 {
			m.MinSpread = o.MinSpread
		}
		if o.MaxSpread > 0 {
			m.MaxSpread = o.MaxSpread
		}
		if o.VolatilityThreshold > 0 {
			m.VolatilityThreshold = o.VolatilityThreshold
		}
		if len(o.Correlated) > 0 {
			m.Correlated = o.Correlated
		}
		market.Instruments[name] = m
	}
}

// EngineConfig maps the file representation onto the engine's wiring. The
// config must already have passed Validate.
func (c *Config) EngineConfig() engine.Config {
	t := c.Trading
	interval, _ := t.ParseInterval()
	return engine.Config{
		Instruments:      t.Instruments,
		HistoryCapacity:  t.HistoryCapacity,
		Weights:          fusion.Weights(t.StrategyWeights),
		AccelerationMode: t.AccelerationMode,
		Sizer: risk.SizerConfig{
			RiskPerTrade:       t.RiskPerTrade,
			MinStopDistance:    t.MinStopDistance,
			MinUnits:           t.MinUnits,
			MaxUnitsCap:        t.MaxUnitsCap,
			MaxBalanceFraction: t.MaxBalanceFraction,
		},
		Limits: risk.Limits{
			MaxDailyTrades:        t.MaxDailyTrades,
			MaxDailyRisk:          t.MaxDailyRisk,
			MaxCorrelatedExposure: t.MaxCorrelatedExposure,
			MaxPositions:          t.MaxPositions,
		},
		RewardRiskRatio: t.RewardRiskRatio,
		BaseInterval:    interval,
	}
}

// ParseInterval converts the optional cadence override to a duration. Empty
// means the engine's adaptive regime cadence.
func (t TradingConfig) ParseInterval() (time.Duration, error) {
	if t.Interval == "" {
		return 0, nil
	}
	return time.ParseDuration(t.Interval)
}

// YAML renders the configuration back out, for `fxtrader config`.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
