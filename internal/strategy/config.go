package strategy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

// FVG construction modes.
const (
	Mode3C = "3C" // gap measured against the bar two back
	Mode2C = "2C" // gap measured against the previous bar
)

// Config carries every tunable knob of the engine. Unset fields fall back to
// the defaults below at construction; InternalSwing and StrictOrder are
// pointers so a config file that omits them still gets the true defaults. The
// struct is copied into the engine and never read again, so callers may
// reuse it.
type Config struct {
	FVGMode             string  `yaml:"fvg_mode"`
	FVGMinGap           float64 `yaml:"fvg_min_gap"`
	DisplacementMin     float64 `yaml:"displacement_min"`
	MaxReturnBars       int     `yaml:"max_return_bars"`
	InternalSwing       *bool   `yaml:"internal_swing"`
	SwingCutoffHour     int     `yaml:"swing_cutoff_hour"`
	WindowStart         string  `yaml:"window_start"`
	WindowEnd           string  `yaml:"window_end"`
	StopBuffer          float64 `yaml:"stop_buffer"`
	RiskReward          float64 `yaml:"risk_reward"`
	Timezone            string  `yaml:"timezone"`
	StrictOrder         *bool   `yaml:"strict_order"`
	EvaluateIntraminute bool    `yaml:"evaluate_intraminute"`
}

// DefaultConfig mirrors the documented defaults: 3-candle gaps of at least
// 0.15 points, 30% displacement, a 20-bar return budget, pre-10:00 internal
// swings, and a 10:00-11:00 New York entry window.
func DefaultConfig() Config {
	return Config{
		FVGMode:             Mode3C,
		FVGMinGap:           0.15,
		DisplacementMin:     0.30,
		MaxReturnBars:       20,
		InternalSwing:       signal.Ptr(true),
		SwingCutoffHour:     10,
		WindowStart:         "10:00",
		WindowEnd:           "11:00",
		StopBuffer:          5.0,
		RiskReward:          1.0,
		Timezone:            "America/New_York",
		StrictOrder:         signal.Ptr(true),
		EvaluateIntraminute: false,
	}
}

// engineConfig is Config after defaulting and clock/timezone resolution.
type engineConfig struct {
	Config
	internalSwing  bool
	strictOrder    bool
	windowStartSec int
	windowEndSec   int
	loc            *time.Location
}

func (c Config) resolve() engineConfig {
	def := DefaultConfig()
	switch strings.ToUpper(strings.TrimSpace(c.FVGMode)) {
	case Mode2C, "2-CANDLE":
		c.FVGMode = Mode2C
	default:
		c.FVGMode = Mode3C
	}
	if c.FVGMinGap <= 0 {
		c.FVGMinGap = def.FVGMinGap
	}
	if c.DisplacementMin <= 0 {
		c.DisplacementMin = def.DisplacementMin
	}
	if c.MaxReturnBars <= 0 {
		c.MaxReturnBars = def.MaxReturnBars
	}
	if c.SwingCutoffHour <= 0 {
		c.SwingCutoffHour = def.SwingCutoffHour
	}
	if c.StopBuffer <= 0 {
		c.StopBuffer = def.StopBuffer
	}
	if c.RiskReward <= 0 {
		c.RiskReward = def.RiskReward
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}

	start, err := parseClock(c.WindowStart)
	if err != nil {
		start, _ = parseClock(def.WindowStart)
	}
	end, err := parseClock(c.WindowEnd)
	if err != nil {
		end, _ = parseClock(def.WindowEnd)
	}

	return engineConfig{
		Config:         c,
		internalSwing:  c.InternalSwing == nil || *c.InternalSwing,
		strictOrder:    c.StrictOrder == nil || *c.StrictOrder,
		windowStartSec: start,
		windowEndSec:   end,
		loc:            resolveLocation(c.Timezone),
	}
}

// parseClock converts "HH:MM" to seconds of day.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return h*3600 + m*60, nil
}

// resolveLocation loads the configured zone, falling back to UTC rather than
// failing: a missing tz database must never stop ingestion.
func resolveLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}
