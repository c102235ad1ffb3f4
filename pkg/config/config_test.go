package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "test")

	require.NoError(t, Load())
	cfg := GlobalConfig
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "local", cfg.CacheType)
	assert.Equal(t, "100-M", cfg.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.BackupEnabled)
	assert.False(t, cfg.CacheLayered)
}

func TestLoadCacheLayered(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("CACHE_LAYERED", "true")

	require.NoError(t, Load())
	assert.Equal(t, "redis", GlobalConfig.CacheType)
	assert.True(t, GlobalConfig.CacheLayered)
}

func TestLoadGeminiKeyFallback(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("VITE_GEMINI_API_KEY", "vite-key")
	t.Setenv("LLM_TIMEOUT", "5s")

	require.NoError(t, Load())
	assert.Equal(t, "vite-key", GlobalConfig.GeminiAPIKey)
	assert.Equal(t, "vite-key", GlobalConfig.LLMKey())
	assert.Equal(t, 5*time.Second, GlobalConfig.LLMTimeout)
}

func TestLLMKeyForOpenAI(t *testing.T) {
	cfg := &Config{LLMProvider: "openai", GeminiAPIKey: "g", LLMApiKey: "o"}
	assert.Equal(t, "o", cfg.LLMKey())
}
