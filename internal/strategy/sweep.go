package strategy

import "time"

// swingMemory accumulates the highest high and lowest low observed before the
// configured cutoff hour. The extrema only widen while the cutoff has not
// passed and are frozen afterwards, giving the engine a self-computed pair of
// sweep levels on days where no external session levels exist.
type swingMemory struct {
	enabled    bool
	cutoffHour int
	loc        *time.Location
	hi, lo     *float64
}

func (s *swingMemory) observe(ts int64, high, low float64) {
	if !s.enabled {
		return
	}
	if time.UnixMilli(ts).In(s.loc).Hour() >= s.cutoffHour {
		return
	}
	if s.hi == nil || high > *s.hi {
		v := high
		s.hi = &v
	}
	if s.lo == nil || low < *s.lo {
		v := low
		s.lo = &v
	}
}

func (s *swingMemory) reset() {
	s.hi, s.lo = nil, nil
}

// sweptHigh reports whether price traded above any configured high reference
// level or the internal swing high. Absent levels never contribute.
func (e *Engine) sweptHigh(price float64) bool {
	for _, lvl := range e.levels.Highs() {
		if price > lvl {
			return true
		}
	}
	return e.swing.enabled && e.swing.hi != nil && price > *e.swing.hi
}

// sweptLow is the low-side mirror of sweptHigh.
func (e *Engine) sweptLow(price float64) bool {
	for _, lvl := range e.levels.Lows() {
		if price < lvl {
			return true
		}
	}
	return e.swing.enabled && e.swing.lo != nil && price < *e.swing.lo
}
