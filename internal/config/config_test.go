package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "sb-watchbot-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.MetricsAddr != ":9109" {
		t.Fatalf("unexpected App.MetricsAddr: %s", cfg.App.MetricsAddr)
	}
	if cfg.Feed.Provider != "csv" {
		t.Fatalf("unexpected Feed.Provider: %s", cfg.Feed.Provider)
	}
	if cfg.Feed.Symbol != "NQZ5" {
		t.Fatalf("unexpected Feed.Symbol: %s", cfg.Feed.Symbol)
	}
	if cfg.Feed.PollInterval != 250 {
		t.Fatalf("unexpected Feed.PollInterval: %d", cfg.Feed.PollInterval)
	}
	if cfg.Levels.Path != "data/levels.json" {
		t.Fatalf("unexpected Levels.Path: %s", cfg.Levels.Path)
	}
	if cfg.Strategy.FVGMode != "2C" {
		t.Fatalf("unexpected Strategy.FVGMode: %s", cfg.Strategy.FVGMode)
	}
	if cfg.Strategy.FVGMinGap != 0.25 {
		t.Fatalf("unexpected Strategy.FVGMinGap: %.2f", cfg.Strategy.FVGMinGap)
	}
	if cfg.Strategy.DisplacementMin != 0.4 {
		t.Fatalf("unexpected Strategy.DisplacementMin: %.2f", cfg.Strategy.DisplacementMin)
	}
	if cfg.Strategy.MaxReturnBars != 15 {
		t.Fatalf("unexpected Strategy.MaxReturnBars: %d", cfg.Strategy.MaxReturnBars)
	}
	if cfg.Strategy.InternalSwing == nil || !*cfg.Strategy.InternalSwing {
		t.Fatalf("expected internal swing enabled")
	}
	if cfg.Strategy.WindowStart != "10:00" || cfg.Strategy.WindowEnd != "11:00" {
		t.Fatalf("unexpected window: %s-%s", cfg.Strategy.WindowStart, cfg.Strategy.WindowEnd)
	}
	if cfg.Strategy.RiskReward != 2 {
		t.Fatalf("unexpected Strategy.RiskReward: %.2f", cfg.Strategy.RiskReward)
	}
	if !cfg.Strategy.EvaluateIntraminute {
		t.Fatalf("expected intraminute evaluation enabled")
	}
	if cfg.Notify.StateDir != "/tmp/sb-watchbot" {
		t.Fatalf("unexpected Notify.StateDir: %s", cfg.Notify.StateDir)
	}
	if cfg.Notify.TickSize != 0.25 || cfg.Notify.TickValue != 5 {
		t.Fatalf("unexpected contract spec: %.2f/%.2f", cfg.Notify.TickSize, cfg.Notify.TickValue)
	}
	if cfg.Notify.RiskPerTrade != 1500 {
		t.Fatalf("unexpected Notify.RiskPerTrade: %.2f", cfg.Notify.RiskPerTrade)
	}
}

// A file that only tunes a few strategy knobs must leave the boolean knobs
// unset so the engine applies its true defaults.
func TestLoadPartialStrategyLeavesBoolsUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	raw := "app:\n  name: partial\nstrategy:\n  fvg_min_gap: 0.2\n  max_return_bars: 15\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Strategy.FVGMinGap != 0.2 || cfg.Strategy.MaxReturnBars != 15 {
		t.Fatalf("unexpected strategy knobs: %+v", cfg.Strategy)
	}
	if cfg.Strategy.InternalSwing != nil {
		t.Fatalf("omitted internal_swing should stay unset, got %v", *cfg.Strategy.InternalSwing)
	}
	if cfg.Strategy.StrictOrder != nil {
		t.Fatalf("omitted strict_order should stay unset, got %v", *cfg.Strategy.StrictOrder)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Config{}
	in.App.Name = "roundtrip"
	in.Feed.Provider = "stub"
	if err := Save(path, in); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if out.App.Name != "roundtrip" || out.Feed.Provider != "stub" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
