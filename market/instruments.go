// market/instruments.go
package market

// InstrumentMeta carries per-instrument trading constraints. Correlated
// lists the pairs whose open exposure dampens this instrument's signal.
type InstrumentMeta struct {
	Name                string
	BaseCurrency        string
	QuoteCurrency       string
	PipLocation         int
	MinSpread           float64
	MaxSpread           float64
	VolatilityThreshold float64
	Correlated          []string
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:                "EUR_USD",
		BaseCurrency:        "EUR",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		MinSpread:           0.0001,
		MaxSpread:           0.0003,
		VolatilityThreshold: 0.002,
		Correlated:          []string{"GBP_USD", "AUD_USD"},
	},
	"GBP_USD": {
		Name:                "GBP_USD",
		BaseCurrency:        "GBP",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		MinSpread:           0.0001,
		MaxSpread:           0.0004,
		VolatilityThreshold: 0.003,
		Correlated:          []string{"EUR_USD", "AUD_USD"},
	},
	"USD_JPY": {
		Name:                "USD_JPY",
		BaseCurrency:        "USD",
		QuoteCurrency:       "JPY",
		PipLocation:         -2,
		MinSpread:           0.001,
		MaxSpread:           0.003,
		VolatilityThreshold: 0.02,
		Correlated:          []string{"USD_CHF", "USD_CAD"},
	},
	"USD_CHF": {
		Name:                "USD_CHF",
		BaseCurrency:        "USD",
		QuoteCurrency:       "CHF",
		PipLocation:         -4,
		MinSpread:           0.0001,
		MaxSpread:           0.0004,
		VolatilityThreshold: 0.002,
		Correlated:          []string{"USD_JPY", "USD_CAD"},
	},
	"AUD_USD": {
		Name:                "AUD_USD",
		BaseCurrency:        "AUD",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		MinSpread:           0.0001,
		MaxSpread:           0.0005,
		VolatilityThreshold: 0.003,
		Correlated:          []string{"EUR_USD", "GBP_USD", "NZD_USD"},
	},
	"USD_CAD": {
		Name:                "USD_CAD",
		BaseCurrency:        "USD",
		QuoteCurrency:       "CAD",
		PipLocation:         -4,
		MinSpread:           0.0001,
		MaxSpread:           0.0004,
		VolatilityThreshold: 0.002,
		Correlated:          []string{"USD_JPY", "USD_CHF"},
	},
	"NZD_USD": {
		Name:                "NZD_USD",
		BaseCurrency:        "NZD",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		MinSpread:           0.0001,
		MaxSpread:           0.0006,
		VolatilityThreshold: 0.003,
		Correlated:          []string{"AUD_USD"},
	},
}

// Meta returns instrument metadata with a permissive fallback for pairs not
// in the table, so an unknown instrument never panics the decision loop.
func Meta(instrument string) InstrumentMeta {
	if m, ok := Instruments[instrument]; ok {
		return m
	}
	return InstrumentMeta{
		Name:                instrument,
		PipLocation:         -4,
		MinSpread:           0.0001,
		MaxSpread:           0.0005,
		VolatilityThreshold: 0.003,
	}
}
