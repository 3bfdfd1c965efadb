package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Graph.AllowSmooth)
	assert.Equal(t, 1.0, cfg.Recognition.Radius)
}

func TestLoadNoPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "defillet.yaml", `
recognition:
  radius: 2.5
  workers: 4
graph:
  allow_smooth: false
metrics:
  textfile: /tmp/defillet.prom
log:
  verbosity: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Recognition.Radius)
	assert.Equal(t, 4, cfg.Recognition.Workers)
	assert.False(t, cfg.Graph.AllowSmooth)
	assert.Equal(t, "/tmp/defillet.prom", cfg.Metrics.Textfile)
	assert.Equal(t, 2, cfg.Log.Verbosity)
	// Unset keys keep their defaults.
	assert.Equal(t, Default().Graph.SmoothTolerance, cfg.Graph.SmoothTolerance)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "defillet.json", `{"recognition": {"radius": 3, "radius_tolerance": 0.01}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Recognition.Radius)
	assert.Equal(t, 0.01, cfg.Recognition.RadiusTolerance)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", "recognition:\n  radius: -1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radius must be > 0")
}

func TestReadSkipsValidation(t *testing.T) {
	path := writeFile(t, "bad.yaml", "recognition:\n  radius: 0\n")
	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Recognition.Radius)

	cfg.Recognition.Radius = 2
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DEFILLET_RADIUS", "5")
	t.Setenv("DEFILLET_WORKERS", "2")
	t.Setenv("DEFILLET_ALLOW_SMOOTH", "false")
	t.Setenv("DEFILLET_METRICS_TEXTFILE", "out.prom")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Recognition.Radius)
	assert.Equal(t, 2, cfg.Recognition.Workers)
	assert.False(t, cfg.Graph.AllowSmooth)
	assert.Equal(t, "out.prom", cfg.Metrics.Textfile)
}

func TestLoadEnvMalformed(t *testing.T) {
	t.Setenv("DEFILLET_RADIUS", "wide")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFILLET_RADIUS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero radius", func(c *Config) { c.Recognition.Radius = 0 }},
		{"negative tolerance", func(c *Config) { c.Recognition.RadiusTolerance = -1 }},
		{"negative workers", func(c *Config) { c.Recognition.Workers = -1 }},
		{"zero smooth tolerance", func(c *Config) { c.Graph.SmoothTolerance = 0 }},
		{"negative chain tolerance", func(c *Config) { c.Suppression.ChainRadiusTolerance = -0.5 }},
		{"negative verbosity", func(c *Config) { c.Log.Verbosity = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDriver(t *testing.T) {
	cfg := Default()
	cfg.Recognition.Workers = 3
	d := cfg.Driver(nil)
	assert.Equal(t, 3, d.Recognizer.Workers)
	assert.Equal(t, cfg.Suppression.ChainRadiusTolerance, d.Suppressor.RadiusTolerance)
	assert.Nil(t, d.Metrics)
}
