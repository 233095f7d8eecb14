package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Logging     LoggingConfig    `mapstructure:"logging"`
	Presets     PresetsConfig    `mapstructure:"presets"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Evaluation  EvaluationConfig `mapstructure:"evaluation"`
	MCP         MCPConfig        `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLSEnabled   bool          `mapstructure:"tls_enabled"`
	CertFile     string        `mapstructure:"cert_file"`
	KeyFile      string        `mapstructure:"key_file"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json", "text"
	Output string `mapstructure:"output"` // "stdout", "stderr"
	Audit  bool   `mapstructure:"audit"`
}

// PresetsConfig configures where the job-preset catalog comes from.
// Source is a file path or an http(s) URL; empty selects the built-in
// fallback presets.
type PresetsConfig struct {
	Source          string        `mapstructure:"source"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RateLimit       int           `mapstructure:"rate_limit"` // requests per second
	SearchLimit     int           `mapstructure:"search_limit"`
	SearchCacheSize int           `mapstructure:"search_cache_size"`
	RefreshSchedule string        `mapstructure:"refresh_schedule"` // cron expression for remote sources
	Watch           bool          `mapstructure:"watch"`            // reload file sources on change
	Breaker         BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig tunes the circuit breaker guarding remote catalogs.
type BreakerConfig struct {
	MaxRequests         uint32        `mapstructure:"max_requests"`
	Interval            time.Duration `mapstructure:"interval"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
}

// RateLimitConfig bounds inbound API traffic.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// EvaluationConfig tunes the evaluation service.
type EvaluationConfig struct {
	Locale         string        `mapstructure:"locale"` // "en", "ko"
	MaxParallelism int           `mapstructure:"max_parallelism"`
	MaxBatchSize   int           `mapstructure:"max_batch_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
	TransportType string `mapstructure:"transport_type"` // "stdio"
}
