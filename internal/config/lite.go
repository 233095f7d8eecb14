// Package config provides configuration management for the evaluation server.
// This file contains the lightweight configuration used by the stdio MCP
// server and the CLI.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/wr-burden-mcp-server/internal/domain"
)

// LiteConfig is an environment-only configuration with sensible defaults.
type LiteConfig struct {
	// Preset catalog
	PresetSource    string        // File path or URL; empty uses the built-in presets
	PresetTimeout   time.Duration // Fetch timeout for remote catalogs
	SearchCacheSize int           // Entries kept in the preset search cache

	// Evaluation
	Locale         string // Report language: en, ko
	MaxParallelism int    // Concurrent evaluations in a batch

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	return &LiteConfig{
		PresetTimeout:   10 * time.Second,
		SearchCacheSize: 256,
		Locale:          "ko",
		MaxParallelism:  4,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("WRB_PRESET_SOURCE"); v != "" {
		cfg.PresetSource = v
	}
	if v := os.Getenv("WRB_PRESET_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PresetTimeout = d
		}
	}
	if v := os.Getenv("WRB_SEARCH_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SearchCacheSize = n
		}
	}

	if v := os.Getenv("WRB_LOCALE"); v == "en" || v == "ko" {
		cfg.Locale = v
	}
	if v := os.Getenv("WRB_MAX_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxParallelism = n
		}
	}

	if v := os.Getenv("WRB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WRB_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// PresetsConfig converts the lite settings into the full preset
// configuration, filling the remaining knobs with defaults.
func (c *LiteConfig) PresetsConfig() domain.PresetsConfig {
	return domain.PresetsConfig{
		Source:          c.PresetSource,
		Timeout:         c.PresetTimeout,
		RateLimit:       5,
		SearchLimit:     8,
		SearchCacheSize: c.SearchCacheSize,
		Breaker: domain.BreakerConfig{
			MaxRequests:         3,
			Interval:            time.Minute,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 5,
		},
	}
}
