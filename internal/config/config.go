// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CrispyBacon228/sb-watchbot/internal/strategy"
)

// App captures process-wide runtime settings such as name, metrics address, and logging level.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Feed describes where bars come from.
type Feed struct {
	Provider     string `yaml:"provider"` // stub | csv | replay | binance
	Symbol       string `yaml:"symbol"`
	CSVPath      string `yaml:"csv_path"`
	PollInterval int    `yaml:"poll_interval_ms"`
	HistoryMin   int    `yaml:"history_min"` // rows kept by the minute proxy
}

// Levels points at the day's level document.
type Levels struct {
	Path string `yaml:"path"`
}

// Notify configures alert delivery. The webhook URL is usually supplied via
// the DISCORD_WEBHOOK environment variable rather than the file.
type Notify struct {
	WebhookURL   string  `yaml:"webhook_url"`
	StateDir     string  `yaml:"state_dir"`
	TickSize     float64 `yaml:"tick_size"`
	TickValue    float64 `yaml:"tick_value"`
	RiskPerTrade float64 `yaml:"risk_per_trade"`
	JournalPath  string  `yaml:"journal_path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App             `yaml:"app"`
	Feed     Feed            `yaml:"feed"`
	Levels   Levels          `yaml:"levels"`
	Strategy strategy.Config `yaml:"strategy"`
	Notify   Notify          `yaml:"notify"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
