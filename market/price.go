package market

import "time"

// PricePoint is a single recorded quote for an instrument. Immutable once
// stored; Mid and Spread are derived at construction so consumers never
// recompute them inconsistently.
type PricePoint struct {
	Instrument string
	Bid        float64
	Ask        float64
	Mid        float64
	Spread     float64
	Volume     float64
	Time       time.Time
}

// NewPricePoint fills in the derived mid and spread fields.
func NewPricePoint(instrument string, bid, ask, volume float64, at time.Time) PricePoint {
	return PricePoint{
		Instrument: instrument,
		Bid:        bid,
		Ask:        ask,
		Mid:        (bid + ask) / 2,
		Spread:     ask - bid,
		Volume:     volume,
		Time:       at,
	}
}
