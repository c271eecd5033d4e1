// Package config handles shatter configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/shatter/internal/bake"
	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/internal/shatter"
)

// Config holds all settings.
type Config struct {
	Scatter ScatterConfig `yaml:"scatter"`
	Bake    BakeConfig    `yaml:"bake"`
	Logging LoggingConfig `yaml:"logging"`
}

// ScatterConfig holds the defaults for scatter runs.
type ScatterConfig struct {
	TargetPartCount int           `yaml:"target_part_count"`
	TargetArea      float32       `yaml:"target_area"`
	ThicknessMin    float32       `yaml:"thickness_min"`
	ThicknessMax    float32       `yaml:"thickness_max"`
	MaxSlice        time.Duration `yaml:"max_slice"` // 0 runs to completion in one tick
	Seed            uint64        `yaml:"seed"`      // 0 seeds from the clock
}

// BakeConfig holds background bake settings.
type BakeConfig struct {
	SliceBudget        time.Duration `yaml:"slice_budget"`
	TargetPartCount    int           `yaml:"target_part_count"`
	Thickness          float32       `yaml:"thickness"`
	ThicknessDeviation float32       `yaml:"thickness_deviation"`
	DebrisAreaTarget   float32       `yaml:"debris_area_target"`
	Method             string        `yaml:"method"` // geometry or instances
}

// LoggingConfig holds logging settings. The rotation settings apply only
// when LogFile is set.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	p := shatter.DefaultParams()
	b := bake.DefaultEntryOptions()
	f := logger.DefaultFileConfig("")
	return &Config{
		Scatter: ScatterConfig{
			TargetPartCount: p.TargetPartCount,
			TargetArea:      p.TargetArea,
			ThicknessMin:    p.ThicknessMin,
			ThicknessMax:    p.ThicknessMax,
		},
		Bake: BakeConfig{
			SliceBudget:        bake.DefaultSliceBudget,
			TargetPartCount:    b.TargetPartCount,
			Thickness:          b.Thickness,
			ThicknessDeviation: b.ThicknessDeviation,
			DebrisAreaTarget:   b.DebrisAreaTarget,
			Method:             b.Method.String(),
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		},
	}
}

// Params returns the scatter defaults as decomposition parameters.
func (c ScatterConfig) Params() shatter.Params {
	return shatter.Params{
		TargetPartCount: c.TargetPartCount,
		TargetArea:      c.TargetArea,
		ThicknessMin:    c.ThicknessMin,
		ThicknessMax:    c.ThicknessMax,
	}
}

// EntryOptions returns the bake settings as entry options.
func (c BakeConfig) EntryOptions() (bake.EntryOptions, error) {
	m, err := bake.ParseMethod(c.Method)
	if err != nil {
		return bake.EntryOptions{}, err
	}
	return bake.EntryOptions{
		Thickness:          c.Thickness,
		ThicknessDeviation: c.ThicknessDeviation,
		DebrisAreaTarget:   c.DebrisAreaTarget,
		TargetPartCount:    c.TargetPartCount,
		Method:             m,
	}, nil
}

// FileConfig returns the rotating file settings for the logger.
func (c LoggingConfig) FileConfig() logger.FileConfig {
	return logger.FileConfig{
		Path:       c.LogFile,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}
