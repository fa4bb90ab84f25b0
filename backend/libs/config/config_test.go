package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type upstream struct {
	URL     string        `yaml:"url"`
	Secret  string        `yaml:"secret" env:"TEST_UPSTREAM_SECRET" required:"true"`
	Timeout time.Duration `yaml:"timeout"`
}

type sample struct {
	Port     string  `yaml:"port" env:"TEST_PORT"`
	Debug    bool    `yaml:"debug"`
	Ratio    float64 `yaml:"ratio"`
	Upstream upstream
	Ignored  string `env:"-"`
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PORT", "9000")
	t.Setenv("DEBUG", "true")
	t.Setenv("UPSTREAM_URL", "https://example.org")
	t.Setenv("UPSTREAM_TIMEOUT", "250ms")
	t.Setenv("TEST_UPSTREAM_SECRET", "s3cret")

	var cfg sample
	require.NoError(t, LoadConfig(&cfg))
	require.Equal(t, "9000", cfg.Port)
	require.True(t, cfg.Debug)
	require.Equal(t, "https://example.org", cfg.Upstream.URL)
	require.Equal(t, 250*time.Millisecond, cfg.Upstream.Timeout)
	require.Equal(t, "s3cret", cfg.Upstream.Secret)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "port: \"7000\"\nratio: 0.5\nupstream:\n  url: https://file.example\n  secret: from-file\n  timeout: 3s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)

	var cfg sample
	require.NoError(t, LoadConfig(&cfg))
	require.Equal(t, "7000", cfg.Port)
	require.Equal(t, 0.5, cfg.Ratio)
	require.Equal(t, "from-file", cfg.Upstream.Secret)
	require.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	t.Setenv("TEST_UPSTREAM_SECRET", "  ")

	var cfg sample
	err := LoadConfig(&cfg)
	require.ErrorIs(t, err, ErrMissingRequired)
	require.Contains(t, err.Error(), "TEST_UPSTREAM_SECRET")
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("TEST_UPSTREAM_SECRET", "x")
	t.Setenv("UPSTREAM_TIMEOUT", "soon")

	var cfg sample
	err := LoadConfig(&cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "UPSTREAM_TIMEOUT")
}

func TestLoadConfigTargetValidation(t *testing.T) {
	require.Error(t, LoadConfig(nil))
	require.Error(t, LoadConfig(sample{}))
}
