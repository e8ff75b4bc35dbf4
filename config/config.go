// Package config loads and validates run configuration files. Files may
// be YAML or JSON; YAML is tried first.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DateFormat is how dates are written in configuration files.
const DateFormat = "2006-01-02"

// Config represents the complete backtest configuration.
type Config struct {
	Run     RunConfig     `json:"run" yaml:"run"`
	Data    DataConfig    `json:"data" yaml:"data"`
	Chain   ChainConfig   `json:"chain" yaml:"chain"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// RunConfig contains the simulation parameters.
type RunConfig struct {
	Universe     []string `json:"universe" yaml:"universe"`
	Start        string   `json:"start" yaml:"start"`
	End          string   `json:"end" yaml:"end"`
	InitialCash  float64  `json:"initial_cash" yaml:"initial_cash"`
	Provider     string   `json:"provider" yaml:"provider"`
	Scheduler    string   `json:"scheduler" yaml:"scheduler"`
	LookbackDays int      `json:"lookback_days" yaml:"lookback_days"`
}

// DataConfig selects the price source.
type DataConfig struct {
	Source string `json:"source" yaml:"source"` // "csv" or "yahoo"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ChainConfig controls audit-chain naming and persistence.
type ChainConfig struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"` // empty generates one
	Store  string `json:"store" yaml:"store"`                   // "file" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
	ValuationsFile   string `json:"valuations_file,omitempty" yaml:"valuations_file,omitempty"`
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Dates parses the run's start and end dates.
func (r RunConfig) Dates() (start, end time.Time, err error) {
	start, err = time.Parse(DateFormat, r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("run.start %q: %w", r.Start, err)
	}
	end, err = time.Parse(DateFormat, r.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("run.end %q: %w", r.End, err)
	}
	return start, end, nil
}

// Lookback returns the configured information window.
func (r RunConfig) Lookback() time.Duration {
	return time.Duration(r.LookbackDays) * 24 * time.Hour
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Run.Universe) == 0 {
		return fmt.Errorf("run.universe is required")
	}
	if c.Run.InitialCash <= 0 {
		return fmt.Errorf("run.initial_cash must be positive")
	}
	start, end, err := c.Run.Dates()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("run.end must not be before run.start")
	}
	if c.Run.Provider == "" {
		return fmt.Errorf("run.provider is required")
	}
	if c.Run.Scheduler == "" {
		return fmt.Errorf("run.scheduler is required")
	}
	if c.Run.LookbackDays < 0 {
		return fmt.Errorf("run.lookback_days must not be negative")
	}

	switch c.Data.Source {
	case "csv":
		if c.Data.Path == "" {
			return fmt.Errorf("data.path is required for the csv source")
		}
	case "yahoo":
	default:
		return fmt.Errorf("data.source must be 'csv' or 'yahoo'")
	}

	switch c.Chain.Store {
	case "file":
		if c.Chain.Dir == "" {
			return fmt.Errorf("chain.dir is required for the file store")
		}
	case "sqlite":
		if c.Chain.DBPath == "" {
			return fmt.Errorf("chain.db_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("chain.store must be 'file' or 'sqlite'")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TransactionsFile == "" || c.Journal.ValuationsFile == "" {
			return fmt.Errorf("journal transactions_file and valuations_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	return nil
}

// Default returns a configuration with sensible defaults: the original
// demo universe, a year of history, end-of-month rebalancing.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Universe:     []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA", "INTC", "CSCO", "NFLX"},
			Start:        "2019-01-01",
			End:          "2020-01-01",
			InitialCash:  1_000_000,
			Provider:     "first-two-moments",
			Scheduler:    "end-of-month",
			LookbackDays: 360,
		},
		Data: DataConfig{
			Source: "yahoo",
		},
		Chain: ChainConfig{
			Store: "file",
			Dir:   "./chains",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./backtest.sqlite",
		},
	}
}
