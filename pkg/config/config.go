// Package config holds the run configuration for defillet, loaded from a
// YAML or JSON file with environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/chazu/defillet/pkg/dihedral"
	"github.com/chazu/defillet/pkg/recognize"
	"github.com/chazu/defillet/pkg/suppress"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Recognition RecognitionConfig `json:"recognition" yaml:"recognition"`
	Graph       GraphConfig       `json:"graph" yaml:"graph"`
	Suppression SuppressionConfig `json:"suppression" yaml:"suppression"`
	Metrics     MetricsConfig     `json:"metrics" yaml:"metrics"`
	Log         LogConfig         `json:"log" yaml:"log"`
}

// RecognitionConfig selects which blend faces are candidates.
type RecognitionConfig struct {
	// Radius is the blend radius to suppress.
	Radius          float64 `json:"radius" yaml:"radius"`
	RadiusTolerance float64 `json:"radius_tolerance" yaml:"radius_tolerance"`
	// Workers bounds parallel surface queries. Zero means one per CPU.
	Workers int `json:"workers" yaml:"workers"`
}

// GraphConfig controls how the adjacency graph classifies joins.
type GraphConfig struct {
	AllowSmooth     bool    `json:"allow_smooth" yaml:"allow_smooth"`
	SmoothTolerance float64 `json:"smooth_tolerance" yaml:"smooth_tolerance"`
}

// SuppressionConfig controls chain growth during suppression.
type SuppressionConfig struct {
	ChainRadiusTolerance float64 `json:"chain_radius_tolerance" yaml:"chain_radius_tolerance"`
}

// MetricsConfig controls the Prometheus textfile written after a run.
type MetricsConfig struct {
	// Textfile is the output path. Empty disables metrics output.
	Textfile string `json:"textfile" yaml:"textfile"`
}

// LogConfig controls klog verbosity.
type LogConfig struct {
	Verbosity int `json:"verbosity" yaml:"verbosity"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Recognition: RecognitionConfig{
			Radius:          1,
			RadiusTolerance: recognize.DefaultRadiusTolerance,
		},
		Graph: GraphConfig{
			AllowSmooth:     true,
			SmoothTolerance: dihedral.DefaultSmoothTolerance,
		},
		Suppression: SuppressionConfig{
			ChainRadiusTolerance: suppress.DefaultChainRadiusTolerance,
		},
	}
}

// Load is Read followed by Validate.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Read starts from Default, overlays the file at path if path is non-empty
// and applies DEFILLET_* environment overrides. A missing file is an error.
// The result is not validated, so callers layering further overrides
// validate once they are done.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("load config from environment: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// YAML first, JSON as a fallback.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(cfg *Config) error {
	floats := []struct {
		name string
		dst  *float64
	}{
		{"DEFILLET_RADIUS", &cfg.Recognition.Radius},
		{"DEFILLET_RADIUS_TOLERANCE", &cfg.Recognition.RadiusTolerance},
		{"DEFILLET_SMOOTH_TOLERANCE", &cfg.Graph.SmoothTolerance},
	}
	for _, f := range floats {
		if v := os.Getenv(f.name); v != "" {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", f.name, err)
			}
			*f.dst = x
		}
	}
	if v := os.Getenv("DEFILLET_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DEFILLET_WORKERS: %w", err)
		}
		cfg.Recognition.Workers = n
	}
	if v := os.Getenv("DEFILLET_ALLOW_SMOOTH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEFILLET_ALLOW_SMOOTH: %w", err)
		}
		cfg.Graph.AllowSmooth = b
	}
	if v := os.Getenv("DEFILLET_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
	return nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.Recognition.Radius <= 0 {
		return fmt.Errorf("radius must be > 0")
	}
	if c.Recognition.RadiusTolerance < 0 {
		return fmt.Errorf("radius_tolerance must be >= 0")
	}
	if c.Recognition.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if c.Graph.SmoothTolerance <= 0 {
		return fmt.Errorf("smooth_tolerance must be > 0")
	}
	if c.Suppression.ChainRadiusTolerance < 0 {
		return fmt.Errorf("chain_radius_tolerance must be >= 0")
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("verbosity must be >= 0")
	}
	return nil
}

// Driver returns a suppression driver configured from c. m may be nil.
func (c Config) Driver(m *suppress.Metrics) *suppress.Driver {
	return &suppress.Driver{
		Recognizer: recognize.Recognizer{
			RadiusTolerance: c.Recognition.RadiusTolerance,
			Workers:         c.Recognition.Workers,
		},
		Suppressor: suppress.ChainSuppressor{RadiusTolerance: c.Suppression.ChainRadiusTolerance},
		Metrics:    m,
	}
}
