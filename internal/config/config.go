package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/wr-burden-mcp-server/internal/domain"
)

// EnvPrefix is prepended to every environment override, e.g.
// WRB_SERVER_PORT or WRB_PRESETS_SOURCE.
const EnvPrefix = "WRB"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	file   string
	config *domain.Config
}

// NewManager creates a new configuration manager. A .env file in the
// working directory is loaded first when present.
func NewManager() (*Manager, error) {
	return NewManagerWithFile("")
}

// NewManagerWithFile is like NewManager but reads an explicit config file
// instead of searching the default paths.
func NewManagerWithFile(path string) (*Manager, error) {
	loadDotEnv()

	m := &Manager{file: path}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		// Existing environment variables take precedence over the file.
		_ = godotenv.Load(".env")
	}
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := viper.New()

	if m.file != "" {
		v.SetConfigFile(m.file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/wr-burden/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; defaults and environment variables suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls_enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.audit", false)

	// Preset catalog defaults
	v.SetDefault("presets.source", "")
	v.SetDefault("presets.timeout", "10s")
	v.SetDefault("presets.rate_limit", 5)
	v.SetDefault("presets.search_limit", 8)
	v.SetDefault("presets.search_cache_size", 256)
	v.SetDefault("presets.refresh_schedule", "")
	v.SetDefault("presets.watch", false)
	v.SetDefault("presets.breaker.max_requests", 3)
	v.SetDefault("presets.breaker.interval", "60s")
	v.SetDefault("presets.breaker.timeout", "30s")
	v.SetDefault("presets.breaker.consecutive_failures", 5)

	// Rate limiting defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)

	// Evaluation defaults
	v.SetDefault("evaluation.locale", "ko")
	v.SetDefault("evaluation.max_parallelism", 8)
	v.SetDefault("evaluation.max_batch_size", 500)
	v.SetDefault("evaluation.request_timeout", "30s")

	// MCP defaults
	v.SetDefault("mcp.server_name", "wr-burden-mcp-server")
	v.SetDefault("mcp.server_version", "1.0.0")
	v.SetDefault("mcp.transport_type", "stdio")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetPresetsConfig returns the preset catalog configuration
func (m *Manager) GetPresetsConfig() *domain.PresetsConfig {
	return &m.config.Presets
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.TLSEnabled && (config.Server.CertFile == "" || config.Server.KeyFile == "") {
		return fmt.Errorf("TLS enabled but cert_file or key_file is missing")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Presets.SearchLimit <= 0 {
		return fmt.Errorf("presets.search_limit must be positive, got %d", config.Presets.SearchLimit)
	}
	if config.Presets.RateLimit <= 0 {
		return fmt.Errorf("presets.rate_limit must be positive, got %d", config.Presets.RateLimit)
	}

	if config.RateLimit.Enabled && config.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be positive when enabled")
	}

	switch strings.ToLower(config.Evaluation.Locale) {
	case "en", "ko":
	default:
		return fmt.Errorf("unsupported evaluation locale: %s", config.Evaluation.Locale)
	}
	if config.Evaluation.MaxParallelism <= 0 {
		return fmt.Errorf("evaluation.max_parallelism must be positive, got %d", config.Evaluation.MaxParallelism)
	}
	if config.Evaluation.MaxBatchSize <= 0 {
		return fmt.Errorf("evaluation.max_batch_size must be positive, got %d", config.Evaluation.MaxBatchSize)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}
