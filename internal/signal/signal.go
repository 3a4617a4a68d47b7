// Package signal standardizes payloads shared between data ingestion, the
// strategy engine, and alert delivery.
package signal

import (
	"fmt"
	"math"
)

// Bar models one OHLC observation. Ts is milliseconds since epoch; the
// observation may be a sub-minute tick or an already-minute-resolution bar.
type Bar struct {
	Ts     int64   `json:"ts_ms"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// MinuteBucket returns the bar's minute index since epoch.
func (b Bar) MinuteBucket() int64 { return b.Ts / 60_000 }

// Validate rejects non-finite or inverted OHLC values.
func (b Bar) Validate() error {
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite ohlc value %v", v)
		}
	}
	if b.Low > b.High {
		return fmt.Errorf("inverted bar: low %.5f > high %.5f", b.Low, b.High)
	}
	if b.Open < b.Low || b.Open > b.High {
		return fmt.Errorf("open %.5f outside [%.5f, %.5f]", b.Open, b.Low, b.High)
	}
	if b.Close < b.Low || b.Close > b.High {
		return fmt.Errorf("close %.5f outside [%.5f, %.5f]", b.Close, b.Low, b.High)
	}
	return nil
}

// LevelSet holds the day's reference prices. A nil field means the level is
// unknown for the day and never participates in sweep checks. The set is
// immutable for the lifetime of one engine instance.
type LevelSet struct {
	PriorDayHigh  *float64 `json:"prior_day_high,omitempty"`
	PriorDayLow   *float64 `json:"prior_day_low,omitempty"`
	OvernightHigh *float64 `json:"overnight_session_high,omitempty"`
	OvernightLow  *float64 `json:"overnight_session_low,omitempty"`
	SecondaryHigh *float64 `json:"secondary_session_high,omitempty"`
	SecondaryLow  *float64 `json:"secondary_session_low,omitempty"`
}

// Highs returns the high-side levels that are present for the day.
func (l LevelSet) Highs() []float64 {
	return present(l.PriorDayHigh, l.OvernightHigh, l.SecondaryHigh)
}

// Lows returns the low-side levels that are present for the day.
func (l LevelSet) Lows() []float64 {
	return present(l.PriorDayLow, l.OvernightLow, l.SecondaryLow)
}

func present(vals ...*float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Ptr is a convenience for building literals with optional fields.
func Ptr[T any](v T) *T { return &v }

// Side enumerates entry directions.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Entry expresses a finished trade signal produced by the engine.
type Entry struct {
	Side         Side    `json:"side"`
	Price        float64 `json:"entry"`
	Stop         float64 `json:"sl"`
	Target       float64 `json:"tp"`
	Ts           int64   `json:"when"`
	Displacement float64 `json:"disp"`
	FVGMode      string  `json:"mode"`
}
