package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SMSCRM_API_URL", "")
	t.Setenv("SMSCRM_TIMEOUT", "")
	t.Setenv("SMSCRM_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.NotEmpty(t, cfg.LogFile)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://crm.internal:9000/\ntimeout: 5s\nlog_level: debug\n"), 0600))

	t.Setenv("SMSCRM_API_URL", "")
	t.Setenv("SMSCRM_LOG_LEVEL", "")
	t.Setenv("SMSCRM_TIMEOUT", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://crm.internal:9000", cfg.APIURL, "trailing slash trimmed")
	assert.Equal(t, 30*time.Second, cfg.Timeout, "env beats file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("SMSCRM_TIMEOUT", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("SMSCRM_API_URL", "")
	t.Setenv("SMSCRM_TIMEOUT", "")
	t.Setenv("SMSCRM_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.APIURL = "http://example.test"
	require.NoError(t, cfg.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test", reloaded.APIURL)
}

func TestReadFileIgnoresEnvironment(t *testing.T) {
	t.Setenv("SMSCRM_API_URL", "http://from-env.test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env.test", loaded.APIURL)
}

func TestSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("api-url", "https://crm.example.test/api/"))
	assert.Equal(t, "https://crm.example.test/api", cfg.APIURL)
	require.NoError(t, cfg.Set("timeout", "30s"))
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Set("log-level", "debug"))
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.Error(t, cfg.Set("api-url", "crm.example.test"))
	assert.Error(t, cfg.Set("timeout", "-1s"))
	assert.Error(t, cfg.Set("log-level", "loud"))
	assert.Error(t, cfg.Set("log-file", " "))
	assert.EqualError(t, cfg.Set("color", "red"), `unknown config key "color" (valid: api-url, timeout, log-level, log-file)`)
}
