package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Playback session settings
	Player PlayerConfig `koanf:"player"`

	// Background metadata enrichment settings
	Enrichment EnrichmentConfig `koanf:"enrichment"`
}

// PlayerConfig holds playback session configuration.
type PlayerConfig struct {
	PrefetchThreshold int     `koanf:"prefetch_threshold"` // fetch more when remaining <= threshold (1-50, default: 10)
	HistoryDepth      int     `koanf:"history_depth"`      // undo snapshots retained (1-10, default: 3)
	Volume            float64 `koanf:"volume"`             // initial volume (0.0-1.0, default: 1.0)
}

// EnrichmentConfig holds metadata enrichment sweep configuration.
type EnrichmentConfig struct {
	IntervalSeconds int `koanf:"interval_seconds"` // sweep period (default: 30)
	RequestDelayMs  int `koanf:"request_delay_ms"` // delay between per-track fetches (default: 250)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/crest/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "crest", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// GetPlayerConfig returns the player configuration with defaults applied.
func (c *Config) GetPlayerConfig() PlayerConfig {
	cfg := c.Player

	if cfg.PrefetchThreshold <= 0 || cfg.PrefetchThreshold > 50 {
		cfg.PrefetchThreshold = 10
	}
	if cfg.HistoryDepth <= 0 || cfg.HistoryDepth > 10 {
		cfg.HistoryDepth = 3
	}
	if cfg.Volume <= 0 || cfg.Volume > 1 {
		cfg.Volume = 1.0
	}

	return cfg
}

// GetEnrichmentConfig returns the enrichment configuration with defaults
// applied.
func (c *Config) GetEnrichmentConfig() EnrichmentConfig {
	cfg := c.Enrichment

	if cfg.IntervalSeconds <= 0 {
		cfg.IntervalSeconds = 30
	}
	if cfg.RequestDelayMs <= 0 {
		cfg.RequestDelayMs = 250
	}

	return cfg
}
