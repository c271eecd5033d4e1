package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/shatter/internal/bake"
)

// EnvConfig names the environment variable holding a config file path.
const EnvConfig = "SHATTER_CONFIG"

// ErrInvalid marks a configuration value outside its allowed range.
var ErrInvalid = errors.New("invalid config value")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every setting the decomposer or bake queue cannot use.
func (c *Config) Validate() error {
	var errs error
	check := func(bad bool, key string, value any) {
		if bad {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s = %v", ErrInvalid, key, value))
		}
	}

	s := c.Scatter
	check(s.TargetPartCount < 0, "scatter.target_part_count", s.TargetPartCount)
	check(s.TargetArea < 0, "scatter.target_area", s.TargetArea)
	check(s.ThicknessMin < 0, "scatter.thickness_min", s.ThicknessMin)
	check(s.ThicknessMax < s.ThicknessMin, "scatter.thickness_max", s.ThicknessMax)
	check(s.MaxSlice < 0, "scatter.max_slice", s.MaxSlice)

	b := c.Bake
	check(b.SliceBudget < 0, "bake.slice_budget", b.SliceBudget)
	check(b.TargetPartCount < 0, "bake.target_part_count", b.TargetPartCount)
	check(b.Thickness < 0, "bake.thickness", b.Thickness)
	check(b.DebrisAreaTarget < 0, "bake.debris_area_target", b.DebrisAreaTarget)
	if _, err := bake.ParseMethod(b.Method); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: bake.method: %w", ErrInvalid, err))
	}
	return errs
}

// findConfigFile looks for config in standard locations. SHATTER_CONFIG,
// when set, is tried first.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
	if env := os.Getenv(EnvConfig); env != "" {
		candidates = append([]string{env}, candidates...)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Shatter")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Shatter")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "shatter")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shatter")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
