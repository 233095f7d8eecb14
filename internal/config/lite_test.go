package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.Empty(t, cfg.PresetSource)
	assert.Equal(t, 10*time.Second, cfg.PresetTimeout)
	assert.Equal(t, 256, cfg.SearchCacheSize)
	assert.Equal(t, "ko", cfg.Locale)
	assert.Equal(t, 4, cfg.MaxParallelism)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Empty(t, cfg.PresetSource)
	assert.Equal(t, 256, cfg.SearchCacheSize)
	assert.Equal(t, "ko", cfg.Locale)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("WRB_PRESET_SOURCE", "/tmp/presets.json")
	os.Setenv("WRB_PRESET_TIMEOUT", "3s")
	os.Setenv("WRB_SEARCH_CACHE_SIZE", "64")
	os.Setenv("WRB_LOCALE", "en")
	os.Setenv("WRB_MAX_PARALLELISM", "16")
	os.Setenv("WRB_LOG_LEVEL", "debug")
	os.Setenv("WRB_LOG_FORMAT", "text")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/presets.json", cfg.PresetSource)
	assert.Equal(t, 3*time.Second, cfg.PresetTimeout)
	assert.Equal(t, 64, cfg.SearchCacheSize)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 16, cfg.MaxParallelism)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadLiteConfig_InvalidValuesIgnored(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("WRB_SEARCH_CACHE_SIZE", "not-a-number")
	os.Setenv("WRB_PRESET_TIMEOUT", "-1s")
	os.Setenv("WRB_LOCALE", "fr")
	os.Setenv("WRB_MAX_PARALLELISM", "0")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, 256, cfg.SearchCacheSize)
	assert.Equal(t, 10*time.Second, cfg.PresetTimeout)
	assert.Equal(t, "ko", cfg.Locale)
	assert.Equal(t, 4, cfg.MaxParallelism)
}

func TestLiteConfig_PresetsConfig(t *testing.T) {
	cfg := &LiteConfig{PresetSource: "https://example.org/presets.json", PresetTimeout: time.Second, SearchCacheSize: 32}

	pc := cfg.PresetsConfig()

	assert.Equal(t, "https://example.org/presets.json", pc.Source)
	assert.Equal(t, time.Second, pc.Timeout)
	assert.Equal(t, 32, pc.SearchCacheSize)
	assert.Equal(t, 8, pc.SearchLimit)
	assert.Equal(t, uint32(5), pc.Breaker.ConsecutiveFailures)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"WRB_PRESET_SOURCE",
		"WRB_PRESET_TIMEOUT",
		"WRB_SEARCH_CACHE_SIZE",
		"WRB_LOCALE",
		"WRB_MAX_PARALLELISM",
		"WRB_LOG_LEVEL",
		"WRB_LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
