// Package strategy implements the streaming sweep/displacement/FVG engine:
// it folds sub-minute observations into minute bars, keeps a rolling
// three-bar window, and fires at most one entry signal per pending gap when
// price returns into it while a reference level has been swept.
package strategy

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/CrispyBacon228/sb-watchbot/internal/metrics"
	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

var (
	// ErrMalformedBar marks an observation rejected at the ingestion
	// boundary; engine state is unchanged.
	ErrMalformedBar = errors.New("malformed bar")
	// ErrOutOfOrder marks a timestamp regression under strict ordering.
	ErrOutOfOrder = errors.New("out-of-order bar")
)

// Engine consumes one OHLC observation per OnBar call. It is single-stream:
// all state lives in the struct and is mutated synchronously inside OnBar, so
// it must not be shared between goroutines.
type Engine struct {
	cfg    engineConfig
	levels signal.LevelSet
	sink   EntrySink
	log    zerolog.Logger

	started bool
	bucket  int64
	index   int

	cur          signal.Bar // in-progress minute
	prev1, prev2 signal.Bar // last and second-to-last completed minutes

	swing swingMemory
	bull  *fairValueGap
	bear  *fairValueGap
}

// New builds an engine for one trading day. levels is immutable for the
// engine's lifetime; a nil sink is replaced by NoopSink.
func New(levels signal.LevelSet, cfg Config, sink EntrySink, log zerolog.Logger) *Engine {
	if sink == nil {
		sink = NoopSink{}
	}
	rc := cfg.resolve()
	return &Engine{
		cfg:    rc,
		levels: levels,
		sink:   sink,
		log:    log,
		swing: swingMemory{
			enabled:    rc.internalSwing,
			cutoffHour: rc.SwingCutoffHour,
			loc:        rc.loc,
		},
	}
}

// Index returns the number of completed minute bars observed so far.
func (e *Engine) Index() int { return e.index }

// OnBar ingests one observation. Malformed input and (under strict ordering)
// timestamp regressions are rejected with the state untouched; every other
// path mutates the state exactly once and returns nil.
func (e *Engine) OnBar(b signal.Bar) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBar, err)
	}

	if !e.started {
		e.seed(b)
		return nil
	}

	if e.cfg.strictOrder && b.Ts < e.cur.Ts {
		return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, b.Ts, e.cur.Ts)
	}

	if b.MinuteBucket() == e.bucket {
		e.intraminute(b)
		return nil
	}
	e.minuteClose(b)
	return nil
}

// seed initializes the window from the very first observation. All three
// slots hold a copy of it, so early evaluations see zero-range, zero-
// displacement bars instead of nils.
func (e *Engine) seed(b signal.Bar) {
	e.started = true
	e.bucket = b.MinuteBucket()
	e.index = 0
	e.cur = b
	e.prev1 = b
	e.prev2 = b
	e.swing.reset()
	e.swing.observe(b.Ts, b.High, b.Low)
}

// intraminute expands the in-progress minute bar in place.
func (e *Engine) intraminute(b signal.Bar) {
	if b.High > e.cur.High {
		e.cur.High = b.High
	}
	if b.Low < e.cur.Low {
		e.cur.Low = b.Low
	}
	e.cur.Close = b.Close
	e.cur.Volume += b.Volume
	e.cur.Ts = b.Ts

	e.swing.observe(b.Ts, b.High, b.Low)

	if e.cfg.EvaluateIntraminute {
		e.evaluateReturns(e.cur)
	}
}

// minuteClose runs the full evaluation on the completed minute, then rolls
// the window and seeds the new in-progress bar.
func (e *Engine) minuteClose(b signal.Bar) {
	completed := e.cur
	e.bucket = b.MinuteBucket()
	e.index++

	// the completed rolling window: oldest, middle, newest
	winA, winB, winC := e.prev2, e.prev1, completed

	e.swing.observe(winC.Ts, winC.High, winC.Low)

	e.buildGaps(winA, winB, winC)
	e.evaluateReturns(winC)

	e.prev2 = e.prev1
	e.prev1 = completed
	e.cur = b
	e.swing.observe(b.Ts, b.High, b.Low)
}

// evaluateReturns checks both pending gaps against the evaluation bar. A gap
// past its bar-distance budget expires; a qualifying return consumes the gap
// whether or not the alert is inside the entry window.
func (e *Engine) evaluateReturns(c signal.Bar) {
	if g := e.bull; g != nil {
		switch {
		case e.index-g.createdAt > e.cfg.MaxReturnBars:
			e.bull = nil
			e.log.Debug().Int("i", e.index).Msg("bull fvg expired")
		case c.Low <= g.top && g.top <= c.High && e.sweptLow(c.Low):
			stop := g.srcLow - e.cfg.StopBuffer
			e.fire(signal.Entry{
				Side:         signal.Long,
				Price:        g.top,
				Stop:         stop,
				Target:       g.top + (g.top-stop)*e.cfg.RiskReward,
				Ts:           c.Ts,
				Displacement: g.displacement,
				FVGMode:      e.cfg.FVGMode,
			})
			e.bull = nil
		}
	}
	if g := e.bear; g != nil {
		switch {
		case e.index-g.createdAt > e.cfg.MaxReturnBars:
			e.bear = nil
			e.log.Debug().Int("i", e.index).Msg("bear fvg expired")
		case c.Low <= g.bottom && g.bottom <= c.High && e.sweptHigh(c.High):
			stop := g.srcHigh + e.cfg.StopBuffer
			e.fire(signal.Entry{
				Side:         signal.Short,
				Price:        g.bottom,
				Stop:         stop,
				Target:       g.bottom - (stop-g.bottom)*e.cfg.RiskReward,
				Ts:           c.Ts,
				Displacement: g.displacement,
				FVGMode:      e.cfg.FVGMode,
			})
			e.bear = nil
		}
	}
}

// fire forwards an entry to the sink, gated to the entry window. Sink errors
// are logged and counted, never returned: ingestion must continue.
func (e *Engine) fire(entry signal.Entry) {
	if !e.inEntryWindow(entry.Ts) {
		e.log.Info().Str("side", string(entry.Side)).Float64("entry", entry.Price).Msg("entry outside window, suppressed")
		return
	}
	metrics.EntriesTotal.WithLabelValues(string(entry.Side)).Inc()
	e.log.Info().
		Str("side", string(entry.Side)).
		Float64("entry", entry.Price).
		Float64("sl", entry.Stop).
		Float64("tp", entry.Target).
		Msg("entry signal")
	if err := e.sink.PostEntry(entry); err != nil {
		metrics.NotifyFailures.Inc()
		e.log.Warn().Err(err).Msg("entry sink failed")
	}
}

// inEntryWindow compares the timestamp's local time of day, inclusive on
// both ends.
func (e *Engine) inEntryWindow(ts int64) bool {
	t := time.UnixMilli(ts).In(e.cfg.loc)
	sec := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return e.cfg.windowStartSec <= sec && sec <= e.cfg.windowEndSec
}
