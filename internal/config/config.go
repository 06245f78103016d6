package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath    string       `yaml:"db_path"`
	Watchlist []WatchEntry `yaml:"watchlist"`

	Check struct {
		PaceMillis int   `yaml:"pace_ms"`
		FailOpen   *bool `yaml:"fail_open"`
	} `yaml:"check"`

	Realtime struct {
		IntervalSeconds int   `yaml:"interval_seconds"`
		PaceMillis      int   `yaml:"pace_ms"`
		OnlyDuringHours *bool `yaml:"only_during_trading_hours"`
	} `yaml:"realtime"`

	Export ExportConfig `yaml:"export"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
}

// WatchEntry is one symbol under watch plus the price the caller
// expects it to open at. ExpectedOpen stays a string in YAML so the
// written precision survives until decimal parsing.
type WatchEntry struct {
	Symbol       string `yaml:"symbol" json:"symbol"`
	Name         string `yaml:"name" json:"name,omitempty"`
	ExpectedOpen string `yaml:"expected_open" json:"expected_open,omitempty"`
}

// Expected returns the parsed expected open, or nil when unset.
func (w WatchEntry) Expected() *decimal.Decimal {
	if w.ExpectedOpen == "" {
		return nil
	}
	d, err := decimal.NewFromString(w.ExpectedOpen)
	if err != nil {
		return nil
	}
	return &d
}

type ExportConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if err := NormalizeAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Check.PaceMillis == 0 {
		// The official report API throttles aggressive callers.
		cfg.Check.PaceMillis = 500
	}
	if cfg.Check.FailOpen == nil {
		v := true
		cfg.Check.FailOpen = &v
	}
	if cfg.Realtime.IntervalSeconds == 0 {
		cfg.Realtime.IntervalSeconds = 10
	}
	if cfg.Realtime.PaceMillis == 0 {
		cfg.Realtime.PaceMillis = 100
	}
	if cfg.Realtime.OnlyDuringHours == nil {
		// Safe default for scraping: don't run if market is closed.
		v := true
		cfg.Realtime.OnlyDuringHours = &v
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = "csv"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "exports"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8090"
	}
}

// NormalizeAndValidate applies defaults and checks invariants.
func NormalizeAndValidate(cfg *Config) error {
	applyDefaults(cfg)
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if cfg.Check.PaceMillis < 0 {
		return fmt.Errorf("check.pace_ms must be >= 0")
	}
	if cfg.Realtime.IntervalSeconds <= 0 {
		return fmt.Errorf("realtime.interval_seconds must be > 0")
	}
	switch cfg.Export.Format {
	case "csv", "json", "parquet":
	default:
		return fmt.Errorf("export.format must be one of csv, json, parquet")
	}
	for i := range cfg.Watchlist {
		w := cfg.Watchlist[i]
		if w.Symbol == "" {
			return fmt.Errorf("watchlist[%d]: symbol is required", i)
		}
		if w.ExpectedOpen != "" {
			if _, err := decimal.NewFromString(w.ExpectedOpen); err != nil {
				return fmt.Errorf("watchlist[%d]: expected_open %q is not a number", i, w.ExpectedOpen)
			}
		}
	}
	return nil
}
