// Package config handles configuration for the mesh simplification tools.
package config

import (
	"time"

	"github.com/pkg/errors"

	"github.com/neurolabusc/simplifyjs/pkg/simplify"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all settings.
type Config struct {
	Simplify SimplifyConfig `yaml:"simplify"`
	Batch    BatchConfig    `yaml:"batch"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SimplifyConfig holds decimation parameters.
type SimplifyConfig struct {
	Fraction       float64 `yaml:"fraction"`        // Fraction of triangles to keep, (0, 1]
	TargetCount    int     `yaml:"target_count"`    // Absolute triangle target; overrides fraction when > 0
	Aggressiveness float64 `yaml:"aggressiveness"`  // Threshold growth exponent
	FinishLossless bool    `yaml:"finish_lossless"` // Keep collapsing zero-cost edges after the target
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	Workers int           `yaml:"workers"` // Meshes processed concurrently
	Timeout time.Duration `yaml:"timeout"` // Whole-batch deadline, 0 = none
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	Format string `yaml:"format"` // "obj", "stl", or empty to keep the input format
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	opts := simplify.DefaultOptions()
	return &Config{
		Simplify: SimplifyConfig{
			Fraction:       opts.TargetFraction,
			Aggressiveness: opts.Aggressiveness,
			FinishLossless: opts.FinishLossless,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Format: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that the settings can drive a run.
func (c *Config) Validate() error {
	if c.Simplify.TargetCount < 0 {
		return errors.Wrapf(ErrInvalidConfig, "target_count %d is negative", c.Simplify.TargetCount)
	}
	if c.Simplify.TargetCount == 0 && !(c.Simplify.Fraction > 0 && c.Simplify.Fraction <= 1) {
		return errors.Wrapf(ErrInvalidConfig, "fraction %v is outside (0, 1]", c.Simplify.Fraction)
	}
	if c.Simplify.Aggressiveness < 0 {
		return errors.Wrapf(ErrInvalidConfig, "aggressiveness %v is negative", c.Simplify.Aggressiveness)
	}
	if c.Batch.Workers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "workers %d must be at least 1", c.Batch.Workers)
	}
	if c.Batch.Timeout < 0 {
		return errors.Wrapf(ErrInvalidConfig, "timeout %v is negative", c.Batch.Timeout)
	}
	switch c.Output.Format {
	case "", "obj", "stl":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown output format %q", c.Output.Format)
	}
	return nil
}

// SimplifyOptions converts the decimation settings to simplify.Options.
func (c *Config) SimplifyOptions() simplify.Options {
	return simplify.Options{
		TargetFraction: c.Simplify.Fraction,
		TargetCount:    c.Simplify.TargetCount,
		Aggressiveness: c.Simplify.Aggressiveness,
		FinishLossless: c.Simplify.FinishLossless,
	}
}
