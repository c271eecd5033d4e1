package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/shatter/internal/bake"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test scatter defaults
	if cfg.Scatter.TargetPartCount != 50 {
		t.Errorf("expected part count 50, got %d", cfg.Scatter.TargetPartCount)
	}
	if cfg.Scatter.TargetArea != 0.4 {
		t.Errorf("expected target area 0.4, got %f", cfg.Scatter.TargetArea)
	}
	if cfg.Scatter.ThicknessMin != 0.3 || cfg.Scatter.ThicknessMax != 0.35 {
		t.Errorf("expected thickness [0.3, 0.35], got [%f, %f]", cfg.Scatter.ThicknessMin, cfg.Scatter.ThicknessMax)
	}
	if cfg.Scatter.MaxSlice != 0 {
		t.Errorf("expected no scatter slice limit, got %v", cfg.Scatter.MaxSlice)
	}

	// Test bake defaults
	if cfg.Bake.SliceBudget != 15*time.Millisecond {
		t.Errorf("expected slice budget 15ms, got %v", cfg.Bake.SliceBudget)
	}
	if cfg.Bake.Method != "geometry" {
		t.Errorf("expected method 'geometry', got %s", cfg.Bake.Method)
	}
	if cfg.Bake.DebrisAreaTarget != 2 {
		t.Errorf("expected debris area 2, got %f", cfg.Bake.DebrisAreaTarget)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
scatter:
  target_part_count: 12
  target_area: 1.5
  thickness_min: 0.1
  thickness_max: 0.2
  max_slice: 8ms
  seed: 42

bake:
  slice_budget: 4ms
  thickness: 0.5
  thickness_deviation: 0.25
  method: instances

logging:
  level: "debug"
  log_file: "shatter.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Scatter.TargetPartCount != 12 {
		t.Errorf("expected part count 12, got %d", cfg.Scatter.TargetPartCount)
	}
	if cfg.Scatter.TargetArea != 1.5 {
		t.Errorf("expected target area 1.5, got %f", cfg.Scatter.TargetArea)
	}
	if cfg.Scatter.MaxSlice != 8*time.Millisecond {
		t.Errorf("expected max slice 8ms, got %v", cfg.Scatter.MaxSlice)
	}
	if cfg.Scatter.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Scatter.Seed)
	}

	if cfg.Bake.SliceBudget != 4*time.Millisecond {
		t.Errorf("expected slice budget 4ms, got %v", cfg.Bake.SliceBudget)
	}
	if cfg.Bake.Method != "instances" {
		t.Errorf("expected method 'instances', got %s", cfg.Bake.Method)
	}
	// Untouched keys keep their defaults
	if cfg.Bake.DebrisAreaTarget != 2 {
		t.Errorf("expected debris area 2, got %f", cfg.Bake.DebrisAreaTarget)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "shatter.log" {
		t.Errorf("expected log file 'shatter.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
scatter:
  target_part_count: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)
	t.Setenv(EnvConfig, "")

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("scatter:\n  seed: 1\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "seed flag",
			setup: func() { *flagSeed = 99 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scatter.Seed != 99 {
					t.Errorf("expected seed 99, got %d", cfg.Scatter.Seed)
				}
			},
			teardown: func() { *flagSeed = 0 },
		},
		{
			name: "parts and area flags",
			setup: func() {
				*flagParts = 8
				*flagArea = 0.75
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scatter.TargetPartCount != 8 || cfg.Bake.TargetPartCount != 8 {
					t.Errorf("expected part count 8, got %d and %d", cfg.Scatter.TargetPartCount, cfg.Bake.TargetPartCount)
				}
				if cfg.Scatter.TargetArea != 0.75 || cfg.Bake.DebrisAreaTarget != 0.75 {
					t.Errorf("expected area 0.75, got %f and %f", cfg.Scatter.TargetArea, cfg.Bake.DebrisAreaTarget)
				}
			},
			teardown: func() {
				*flagParts = 0
				*flagArea = 0
			},
		},
		{
			name:  "slice flag",
			setup: func() { *flagSlice = 3 * time.Millisecond },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scatter.MaxSlice != 3*time.Millisecond || cfg.Bake.SliceBudget != 3*time.Millisecond {
					t.Errorf("expected 3ms slices, got %v and %v", cfg.Scatter.MaxSlice, cfg.Bake.SliceBudget)
				}
			},
			teardown: func() { *flagSlice = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
scatter:
  target_part_count: 20
  target_area: 0.9
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagParts = 30
	defer func() {
		*flagConfig = ""
		*flagParts = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Part count should be from flag (30), not file (20)
	if cfg.Scatter.TargetPartCount != 30 {
		t.Errorf("expected part count 30 from flag, got %d", cfg.Scatter.TargetPartCount)
	}
	// Area should be from file (0.9) since no flag override
	if cfg.Scatter.TargetArea != 0.9 {
		t.Errorf("expected area 0.9 from file, got %f", cfg.Scatter.TargetArea)
	}
}

func TestLoadRejectsUnknownMethod(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("bake:\n  method: voxels\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unknown bake method, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Scatter.Seed = 7
	cfg.Bake.Method = "instances"
	cfg.Bake.SliceBudget = 20 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Scatter.Seed != 7 {
		t.Errorf("got seed %d, want 7", loaded.Scatter.Seed)
	}
	if loaded.Bake.SliceBudget != 20*time.Millisecond {
		t.Errorf("got slice budget %v, want 20ms", loaded.Bake.SliceBudget)
	}

	opts, err := loaded.Bake.EntryOptions()
	if err != nil {
		t.Fatalf("EntryOptions: %v", err)
	}
	if opts.Method != bake.Instances {
		t.Errorf("got method %v, want instances", opts.Method)
	}
}

func TestScatterParams(t *testing.T) {
	p := Default().Scatter.Params()
	if p.TargetPartCount != 50 || p.TargetArea != 0.4 {
		t.Errorf("got %+v", p)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid, got %v", err)
	}

	cfg.Scatter.TargetArea = -1
	cfg.Scatter.ThicknessMax = 0.1
	cfg.Bake.SliceBudget = -time.Millisecond
	cfg.Bake.Method = "voxels"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	msg := err.Error()
	for _, key := range []string{"scatter.target_area", "scatter.thickness_max", "bake.slice_budget", "bake.method"} {
		if !strings.Contains(msg, key) {
			t.Errorf("expected %q in %q", key, msg)
		}
	}
}

func TestFindConfigFileFromEnv(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	envPath := filepath.Join(tmpDir, "elsewhere.yaml")
	if err := os.WriteFile(envPath, []byte("scatter:\n  seed: 9\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	t.Setenv(EnvConfig, envPath)

	if path := findConfigFile(); path != envPath {
		t.Errorf("expected %s, got %s", envPath, path)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Scatter.Seed != 9 {
		t.Errorf("expected seed 9 from env config, got %d", cfg.Scatter.Seed)
	}
}

func TestLoggingFileConfig(t *testing.T) {
	cfg := Default()
	cfg.Logging.LogFile = "shatter.log"
	cfg.Logging.MaxBackups = 1

	fc := cfg.Logging.FileConfig()
	if fc.Path != "shatter.log" {
		t.Errorf("expected path shatter.log, got %s", fc.Path)
	}
	if fc.MaxSizeMB != 20 || fc.MaxBackups != 1 || fc.MaxAgeDays != 7 || !fc.Compress {
		t.Errorf("unexpected rotation settings %+v", fc)
	}
}
