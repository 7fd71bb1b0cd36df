package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfx/trader/market"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fxtrader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
trading:
  instruments: [EUR_USD, USD_JPY]
  risk_per_trade: 0.02
  interval: 10s
broker:
  mode: sim
  starting_balance: 25000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"EUR_USD", "USD_JPY"}, cfg.Trading.Instruments)
	assert.InDelta(t, 0.02, cfg.Trading.RiskPerTrade, 1e-9)
	assert.InDelta(t, 25000, cfg.Broker.StartingBalance, 1e-9)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, 50, cfg.Trading.MaxDailyTrades)
	assert.InDelta(t, 0.05, cfg.Trading.MaxDailyRisk, 1e-9)
	assert.Equal(t, "sqlite", cfg.Journal.Type)

	iv, err := cfg.Trading.ParseInterval()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, iv)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no instruments", func(c *Config) { c.Trading.Instruments = nil }},
		{"negative risk per trade", func(c *Config) { c.Trading.RiskPerTrade = -0.01 }},
		{"risk per trade too large", func(c *Config) { c.Trading.RiskPerTrade = 0.5 }},
		{"zero daily trades", func(c *Config) { c.Trading.MaxDailyTrades = 0 }},
		{"weights off by one", func(c *Config) { c.Trading.StrategyWeights["momentum"] += 0.1 }},
		{"negative weight", func(c *Config) { c.Trading.StrategyWeights["momentum"] = -0.2 }},
		{"unknown broker mode", func(c *Config) { c.Broker.Mode = "dryrun" }},
		{"sqlite without path", func(c *Config) { c.Journal.DBPath = "" }},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "redis" }},
		{"bad interval", func(c *Config) { c.Trading.Interval = "soon" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEngineConfigMapping(t *testing.T) {
	cfg := Default()
	cfg.Trading.Instruments = []string{"EUR_USD"}
	cfg.Trading.RiskPerTrade = 0.015
	cfg.Trading.MaxDailyTrades = 10

	ec := cfg.EngineConfig()
	assert.Equal(t, []string{"EUR_USD"}, ec.Instruments)
	assert.InDelta(t, 0.015, ec.Sizer.RiskPerTrade, 1e-9)
	assert.Equal(t, 10, ec.Limits.MaxDailyTrades)
	assert.InDelta(t, 2.0, ec.RewardRiskRatio, 1e-9)
}

func TestApplyOverrides(t *testing.T) {
	orig := market.Meta("EUR_USD")
	t.Cleanup(func() { market.Instruments["EUR_USD"] = orig })

	cfg := Default()
	cfg.Trading.Overrides = map[string]InstrumentOverride{
		"EUR_USD": {
			MaxSpread:  0.0009,
			Correlated: []string{"GBP_USD"},
		},
	}
	cfg.ApplyOverrides()

	m := market.Meta("EUR_USD")
	assert.InDelta(t, 0.0009, m.MaxSpread, 1e-9)
	assert.Equal(t, []string{"GBP_USD"}, m.Correlated)
	assert.InDelta(t, orig.MinSpread, m.MinSpread, 1e-9, "untouched fields keep their values")
}
