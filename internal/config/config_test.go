package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		DBPath:           t.TempDir() + "/financas.db",
		SessionSecret:    "a-sufficiently-long-secret",
		TokenTTL:         24 * time.Hour,
		PBKDF2Iterations: 120_000,
		ReportCacheSize:  64,
		ReportCacheTTL:   30 * time.Second,
		LogLevel:         "info",
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FINANCAS_SESSION_SECRET", "a-sufficiently-long-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./data/financas.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 120_000, cfg.PBKDF2Iterations)
	assert.False(t, cfg.AllowLegacyPlaintext)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FINANCAS_SESSION_SECRET", "a-sufficiently-long-secret")
	t.Setenv("FINANCAS_TOKEN_TTL", "1h")
	t.Setenv("FINANCAS_ALLOW_LEGACY_PLAINTEXT", "true")
	t.Setenv("FINANCAS_PBKDF2_ITERATIONS", "150000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.AllowLegacyPlaintext)
	assert.Equal(t, 150_000, cfg.PBKDF2Iterations)
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidateMissingSecret(t *testing.T) {
	cfg := validConfig(t)
	cfg.SessionSecret = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "FINANCAS_SESSION_SECRET"))
}

func TestValidateShortSecret(t *testing.T) {
	cfg := validConfig(t)
	cfg.SessionSecret = "short"
	assert.Error(t, cfg.Validate())
}

func TestValidateWeakIterations(t *testing.T) {
	cfg := validConfig(t)
	cfg.PBKDF2Iterations = 1000
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "iteration"))
}

func TestValidateBadTTL(t *testing.T) {
	cfg := validConfig(t)
	cfg.TokenTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig(t)
	cfg.SessionSecret = ""
	cfg.TokenTTL = -time.Hour
	cfg.PBKDF2Iterations = 1

	err := cfg.Validate()
	require.Error(t, err)
	assert.GreaterOrEqual(t, strings.Count(err.Error(), "\n- "), 2,
		"every problem should be reported at once")
}
