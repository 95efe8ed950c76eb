package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIConfigDefaults(t *testing.T) {
	cfg, err := LoadAPIConfig("", t.TempDir())
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/bot.db", cfg.Database.Path)
	assert.Equal(t, 10, cfg.Mint.MaxPerUser)
	assert.Equal(t, time.Minute, cfg.Mint.Cooldown)
	assert.Equal(t, time.Hour, cfg.Session.DefaultTTL)
	assert.Equal(t, time.Hour, cfg.Session.SweepInterval)
	assert.Empty(t, cfg.Auth.APIKeys)
}

func TestLoadAPIConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
debug: true
server:
  port: 9090
database:
  path: /tmp/other.db
mint:
  max_per_user: 3
  cooldown: 30s
session:
  default_ttl: 10m
auth:
  api_keys:
    - key-one
`), 0o644))

	cfg, err := LoadAPIConfig(path, dir)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Mint.MaxPerUser)
	assert.Equal(t, 30*time.Second, cfg.Mint.Cooldown)
	assert.Equal(t, 10*time.Minute, cfg.Session.DefaultTTL)
	assert.Equal(t, []string{"key-one"}, cfg.Auth.APIKeys)
}

func TestLoadAPIConfigEnvOverride(t *testing.T) {
	t.Setenv("COOKATHON_SERVER_PORT", "9191")
	t.Setenv("COOKATHON_MINT_COOLDOWN", "5m")

	cfg, err := LoadAPIConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Mint.Cooldown)
}

func TestLoadAPIConfigValidation(t *testing.T) {
	t.Setenv("COOKATHON_MINT_MAX_PER_USER", "0")

	_, err := LoadAPIConfig("", t.TempDir())
	assert.Error(t, err)
}
