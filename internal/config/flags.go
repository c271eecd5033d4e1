package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagSeed   = flag.Uint64("seed", 0, "Random seed (0 seeds from the clock)")
	flagParts  = flag.Int("parts", 0, "Target fragment count")
	flagArea   = flag.Float64("area", 0, "Target front-face area per fragment")
	flagSlice  = flag.Duration("slice", 0, "Time budget per host tick")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed != 0 {
		cfg.Scatter.Seed = *flagSeed
	}
	if *flagParts > 0 {
		cfg.Scatter.TargetPartCount = *flagParts
		cfg.Bake.TargetPartCount = *flagParts
	}
	if *flagArea > 0 {
		cfg.Scatter.TargetArea = float32(*flagArea)
		cfg.Bake.DebrisAreaTarget = float32(*flagArea)
	}
	if *flagSlice > 0 {
		cfg.Scatter.MaxSlice = *flagSlice
		cfg.Bake.SliceBudget = *flagSlice
	}
}

