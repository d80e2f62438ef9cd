package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"), nil)
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)

	fc := cfg.Engine.Facet()
	require.NotNil(t, fc.EnforceAccessPolicy)
	assert.True(t, *fc.EnforceAccessPolicy)
	assert.Zero(t, fc.CacheTTL)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
tenant: acme
store:
  driver: redis
  redis_url: redis://localhost:6379/2
engine:
  cache_ttl: 45s
  max_results: 100
  enforce_access_policy: false
log:
  level: debug
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Tenant)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Store.RedisURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "facet", cfg.Store.Prefix)
	assert.Equal(t, 64, cfg.Log.Rotation.MaxSize)

	fc := cfg.Engine.Facet()
	assert.Equal(t, 45*time.Second, fc.CacheTTL)
	assert.Equal(t, 100, fc.MaxResults)
	assert.False(t, *fc.EnforceAccessPolicy)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FACET_STORE_DRIVER", "redis")
	t.Setenv("FACET_TENANT", "from-env")

	cfg, err := Load(writeConfig(t, "tenant: from-file\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "from-env", cfg.Tenant)
}

func TestLoadFlagOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("tenant", "", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--tenant", "from-flag"}))

	cfg, err := Load(writeConfig(t, "tenant: from-file\nlog:\n  level: error\n"), flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Tenant)
	// Unchanged flags do not override the file.
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadInvalidCacheTTL(t *testing.T) {
	_, err := Load(writeConfig(t, "engine:\n  cache_ttl: soon\n"), nil)
	require.ErrorContains(t, err, "engine.cache_ttl")
}
