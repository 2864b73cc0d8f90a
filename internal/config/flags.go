package config

import (
	"github.com/spf13/pflag"
)

var (
	flagConfig         = pflag.StringP("config", "c", "", "Path to config file")
	flagDebug          = pflag.Bool("debug", false, "Enable debug logging")
	flagFraction       = pflag.Float64P("fraction", "f", 0.5, "Fraction of triangles to keep, (0, 1]")
	flagTarget         = pflag.IntP("target", "t", 0, "Absolute triangle target (overrides --fraction)")
	flagAggressiveness = pflag.Float64P("aggressiveness", "a", 7, "Threshold growth exponent")
	flagLossless       = pflag.Bool("lossless", false, "Finish with zero-cost collapses after the target")
	flagWorkers        = pflag.IntP("workers", "j", 4, "Meshes processed concurrently in batch mode")
	flagTimeout        = pflag.Duration("timeout", 0, "Abandon the batch after this long")
	flagFormat         = pflag.String("format", "", "Output format: obj or stl")
	flagLogFile        = pflag.String("log-file", "", "Write JSON logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	pflag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return pflag.Args()
}

// Usage prints flag defaults to stderr.
func Usage() {
	pflag.PrintDefaults()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config. Only flags given on
// the command line override; an explicit --fraction clears a target count
// loaded from the file.
func applyFlags(cfg *Config) {
	changed := pflag.CommandLine.Changed

	if changed("debug") && *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if changed("fraction") {
		cfg.Simplify.Fraction = *flagFraction
		cfg.Simplify.TargetCount = 0
	}
	if changed("target") {
		cfg.Simplify.TargetCount = *flagTarget
	}
	if changed("aggressiveness") {
		cfg.Simplify.Aggressiveness = *flagAggressiveness
	}
	if changed("lossless") {
		cfg.Simplify.FinishLossless = *flagLossless
	}
	if changed("workers") {
		cfg.Batch.Workers = *flagWorkers
	}
	if changed("timeout") {
		cfg.Batch.Timeout = *flagTimeout
	}
	if changed("format") {
		cfg.Output.Format = *flagFormat
	}
	if changed("log-file") {
		cfg.Logging.LogFile = *flagLogFile
	}
}
