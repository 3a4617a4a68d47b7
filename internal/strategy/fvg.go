package strategy

import (
	"math"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

const rangeEpsilon = 1e-9

// fairValueGap is one pending gap. At most one gap per direction exists at a
// time; creating a new one replaces the old, and a return consumes it.
type fairValueGap struct {
	createdAt    int // bar index when the gap was built
	top, bottom  float64
	displacement float64
	srcLow       float64 // extremes of the candle the gap was measured against
	srcHigh      float64
}

// displacementRatio is body over range, with a floor on the range so a
// zero-range bar yields 0 instead of dividing by zero.
func displacementRatio(b signal.Bar) float64 {
	return math.Abs(b.Close-b.Open) / math.Max(rangeEpsilon, b.High-b.Low)
}

// buildGaps records fresh gaps off the completed window (a, b, c) when the
// mode's reference candle shows enough displacement. Gap creation is a
// minute-close-only event; returns are evaluated separately.
func (e *Engine) buildGaps(a, b, c signal.Bar) {
	ref, src := b, a
	if e.cfg.FVGMode == Mode2C {
		ref, src = c, b
	}
	ratio := displacementRatio(ref)
	if ratio < e.cfg.DisplacementMin {
		return
	}

	if c.Low-src.High >= e.cfg.FVGMinGap {
		e.bull = &fairValueGap{
			createdAt:    e.index,
			top:          c.Low,
			bottom:       src.High,
			displacement: ratio,
			srcLow:       src.Low,
			srcHigh:      src.High,
		}
		e.log.Debug().Int("i", e.index).Float64("top", c.Low).Float64("bottom", src.High).Msg("bull fvg")
	}
	if src.Low-c.High >= e.cfg.FVGMinGap {
		e.bear = &fairValueGap{
			createdAt:    e.index,
			top:          src.Low,
			bottom:       c.High,
			displacement: ratio,
			srcLow:       src.Low,
			srcHigh:      src.High,
		}
		e.log.Debug().Int("i", e.index).Float64("top", src.Low).Float64("bottom", c.High).Msg("bear fvg")
	}
}
