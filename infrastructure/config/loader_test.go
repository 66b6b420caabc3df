package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string        `yaml:"name"`
	Port    int           `env:"TEST_CFG_PORT"    yaml:"port"`
	Ratio   float64       `env:"TEST_CFG_RATIO"   yaml:"ratio"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" yaml:"timeout"`
	Nested  struct {
		Enabled bool     `env:"TEST_CFG_ENABLED" yaml:"enabled"`
		Hosts   []string `env:"TEST_CFG_HOSTS"   yaml:"hosts"`
	} `yaml:"nested"`
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeConfig(t, "name: svc\nport: 8080\nratio: 0.5\nnested:\n  hosts: [a, b]\n")
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_TIMEOUT", "3s")
	t.Setenv("TEST_CFG_ENABLED", "yes")
	t.Setenv("TEST_CFG_HOSTS", "x, y ,")

	cfg, err := config.Load[testConfig](path)
	require.NoError(t, err)

	assert.Equal(t, "svc", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)
	assert.InDelta(t, 0.5, cfg.Ratio, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.True(t, cfg.Nested.Enabled)
	assert.Equal(t, []string{"x", "y"}, cfg.Nested.Hosts)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load[testConfig](filepath.Join(t.TempDir(), "absent.yml"))
	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestLoadWithDefaults_EnvWinsOverDefaults(t *testing.T) {
	path := writeConfig(t, "name: svc\n")
	t.Setenv("TEST_CFG_RATIO", "0.75")

	cfg, err := config.LoadWithDefaults(path, func(c *testConfig) {
		if c.Port == 0 {
			c.Port = 3000
		}
		c.Ratio = 0.1
	})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.InDelta(t, 0.75, cfg.Ratio, 1e-9)
}

func TestDefaults_WithoutFile(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "7000")

	cfg, err := config.Defaults(func(c *testConfig) {
		if c.Port == 0 {
			c.Port = 3000
		}
		c.Name = "default"
	})
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "default", cfg.Name)
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/svc.yml")
	assert.Equal(t, "/etc/svc.yml", config.GetConfigPath("config.yml"))
}

func TestValidators(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.ValidatePort("server.port", 3000))
	require.Error(t, config.ValidatePort("server.port", 0))
	require.NoError(t, config.ValidateRange("scoring.baseline", 50, 0, 100))
	require.Error(t, config.ValidateRange("scoring.baseline", 101, 0, 100))
	require.NoError(t, config.ValidateOneOf("policy", "list", "list", "learned"))

	err := config.ValidateOneOf("policy", "static", "list", "learned")
	var vErr *config.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "policy", vErr.Field)
	require.Error(t, config.ValidateLogLevel("verbose"))
	require.NoError(t, config.ValidateLogFormat("console"))
}
