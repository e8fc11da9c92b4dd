// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("JWT_SECRET", "0123456789abcdef-test")
	t.Setenv("CONTENTREPO_API_URL", "https://content.example.org")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("MQR_EXHAUSTION_POLICY", "legacy-skip-last")

	cfg, err := ParseFlags([]string{"--env-file", ""})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "legacy-skip-last", cfg.ExhaustionPolicy)
	assert.Equal(t, 7, cfg.NextSendIntervalDays)
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"--env-file", "", "-p", "8080", "-t", "postgres", "--next-send-days", "14"})
	require.NoError(t, err)

	// CLI should override env
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, 14, cfg.NextSendIntervalDays)
}

func TestParseFlags_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mqr.toml")
	data := `
port = 4000
database_url = "postgres://mqr@localhost/mqr"
database_type = "postgres"
jwt_secret = "from-file-secret-0123"
content_repo_url = "https://content.example.org"
content_cache_ttl = "30s"
allocate_max_retries = 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	cfg, err := ParseFlags([]string{"--env-file", "", "--config", path})
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, 30*time.Second, cfg.ContentCacheTTL)
	assert.Equal(t, 5, cfg.AllocateMaxRetries)
}

func TestParseFlags_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	data := "DATABASE_URL=file:dotenv.db\nJWT_SECRET=dotenv-secret-0123456\nCONTENTREPO_API_URL=https://content.example.org\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	// godotenv never overrides variables already present, so clear them for the test.
	for _, k := range []string{"DATABASE_URL", "JWT_SECRET", "CONTENTREPO_API_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := ParseFlags([]string{"--env-file", path})
	require.NoError(t, err)
	assert.Equal(t, "file:dotenv.db", cfg.DatabaseURL)
}

func TestParseFlags_ValidationErrors(t *testing.T) {
	setRequiredEnv(t)

	_, err := ParseFlags([]string{"--env-file", "", "--exhaustion-policy", "round-robin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ExhaustionPolicy must be one of")

	t.Setenv("JWT_SECRET", "short")
	_, err = ParseFlags([]string{"--env-file", ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")
}

func TestParseFlags_InvalidPortEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "abc")

	_, err := ParseFlags([]string{"--env-file", ""})
	assert.EqualError(t, err, "invalid PORT env variable")
}

func TestParseFlags_JWTExpiry(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := ParseFlags([]string{"--env-file", ""})
	require.NoError(t, err)
	assert.Zero(t, cfg.JWTExpiry)

	t.Setenv("JWT_EXPIRY", "24h")
	cfg, err = ParseFlags([]string{"--env-file", ""})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)

	cfg, err = ParseFlags([]string{"--env-file", "", "--jwt-expiry", "1h"})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)

	_, err = ParseFlags([]string{"--env-file", "", "--jwt-expiry", "-1h"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTExpiry")

	t.Setenv("JWT_EXPIRY", "forever")
	_, err = ParseFlags([]string{"--env-file", ""})
	assert.EqualError(t, err, "invalid JWT_EXPIRY env variable")
}
