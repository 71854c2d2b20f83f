package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "strict", cfg.Sync.MatchPolicy)
	assert.InDelta(t, 4.0, cfg.Capsule.RateLimit, 0.001)
	assert.Equal(t, "44", cfg.Phone.CountryCode)
	assert.Equal(t, "00", cfg.Phone.IntlPrefix)
	assert.Equal(t, "0", cfg.Phone.TrunkPrefix)
	assert.Empty(t, cfg.Capsule.UserID)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
synthesis:
  host: api.netfuse.net
  key: synth-key
  secret: synth-secret
capsule:
  host: example.capsulecrm.com
  token: cap-token
  user_id: "42"
sync:
  match_policy: lenient
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "api.netfuse.net", cfg.Synthesis.Host)
	assert.Equal(t, "synth-key", cfg.Synthesis.Key)
	assert.Equal(t, "example.capsulecrm.com", cfg.Capsule.Host)
	assert.Equal(t, "42", cfg.Capsule.UserID)
	assert.Equal(t, "lenient", cfg.Sync.MatchPolicy)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, "44", cfg.Phone.CountryCode)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
sync:
  match_policy: lenient
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CAPSYNC_SYNC_MATCH_POLICY", "strict")
	t.Setenv("CAPSYNC_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "strict", cfg.Sync.MatchPolicy)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("CAPSYNC_PHONE_COUNTRY_CODE", "33")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "33", cfg.Phone.CountryCode)
}

func TestValidate_AllPresent(t *testing.T) {
	cfg := &Config{}
	cfg.Synthesis.Host = "api.netfuse.net"
	cfg.Synthesis.Key = "k"
	cfg.Synthesis.Secret = "s"
	cfg.Capsule.Host = "example.capsulecrm.com"
	cfg.Capsule.Token = "t"

	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingFields(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesis.host")
	assert.Contains(t, err.Error(), "synthesis.key")
	assert.Contains(t, err.Error(), "synthesis.secret")
	assert.Contains(t, err.Error(), "capsule.host")
	assert.Contains(t, err.Error(), "capsule.token")
}

func TestValidate_PartialMissing(t *testing.T) {
	cfg := &Config{}
	cfg.Synthesis.Host = "api.netfuse.net"
	cfg.Synthesis.Key = "k"
	cfg.Synthesis.Secret = "s"
	cfg.Capsule.Host = "example.capsulecrm.com"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capsule.token")
	assert.NotContains(t, err.Error(), "synthesis.host")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
