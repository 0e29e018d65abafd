// Package config loads server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rgoyal8/ipl-auction-backend/internal/engine"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"` // empty disables persistence
	} `yaml:"database"`
	Squads struct {
		Path string `yaml:"path"` // empty falls back to the demo pool
	} `yaml:"squads"`
	Auction struct {
		StartingBudget float64                `yaml:"starting_budget"`
		RetainedCount  *int                   `yaml:"retained_count"`
		TimerBase      int                    `yaml:"timer_base"`
		TimerBonus     int                    `yaml:"timer_bonus"`
		TimerCap       int                    `yaml:"timer_cap"`
		RTMWindow      int                    `yaml:"rtm_window"`
		Increments     []engine.IncrementTier `yaml:"increments"`
		Caps           *engine.Caps           `yaml:"caps"`
		HomeNations    []string               `yaml:"home_nations"`
	} `yaml:"auction"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error: defaults plus environment are
// enough to run.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SQUADS_PATH"); v != "" {
		cfg.Squads.Path = v
	}
	if v := os.Getenv("AUCTION_BUDGET"); v != "" {
		var budget float64
		if _, err := fmt.Sscanf(v, "%f", &budget); err == nil {
			cfg.Auction.StartingBudget = budget
		}
	}
	if v := os.Getenv("RETAINED_COUNT"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Auction.RetainedCount = &n
		}
	}

	// Defaults
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}

	return cfg, nil
}

// Rules builds the engine rules: defaults with any configured overrides
// applied on top.
func (c *Config) Rules() engine.Rules {
	r := engine.DefaultRules()
	a := c.Auction
	if a.StartingBudget > 0 {
		r.StartingBudget = a.StartingBudget
	}
	if a.RetainedCount != nil && *a.RetainedCount >= 0 {
		r.RetainedCount = *a.RetainedCount
	}
	if a.TimerBase > 0 {
		r.TimerBase = a.TimerBase
	}
	if a.TimerBonus > 0 {
		r.TimerBonus = a.TimerBonus
	}
	if a.TimerCap > 0 {
		r.TimerCap = a.TimerCap
	}
	if a.RTMWindow > 0 {
		r.RTMWindow = a.RTMWindow
	}
	if len(a.Increments) > 0 {
		r.Increments = a.Increments
	}
	if a.Caps != nil {
		r.Caps = *a.Caps
	}
	if len(a.HomeNations) > 0 {
		r.HomeNations = a.HomeNations
	}
	return r
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
