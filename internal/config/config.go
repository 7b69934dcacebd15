// Package config loads aztecscan settings from a config file, the
// environment and command line flags.
package config

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/binarizer"
	"github.com/ericlevine/aztecgo/internal/regions"
)

// Config represents the complete aztecscan configuration.
type Config struct {
	Decode    DecodeConfig    `mapstructure:"decode" yaml:"decode" json:"decode"`
	Binarizer BinarizerConfig `mapstructure:"binarizer" yaml:"binarizer" json:"binarizer"`
	Scan      ScanConfig      `mapstructure:"scan" yaml:"scan" json:"scan"`
	Log       LogConfig       `mapstructure:"log" yaml:"log" json:"log"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output" json:"output"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// DecodeConfig mirrors aztecgo.Options.
type DecodeConfig struct {
	AutoOrient      bool `mapstructure:"auto_orient" yaml:"auto_orient" json:"auto_orient"`
	AutoCorrect     bool `mapstructure:"auto_correct" yaml:"auto_correct" json:"auto_correct"`
	AutoModeCorrect bool `mapstructure:"auto_mode_correct" yaml:"auto_mode_correct" json:"auto_mode_correct"`
	Rotation        int  `mapstructure:"rotation" yaml:"rotation" json:"rotation"`
}

// BinarizerConfig mirrors binarizer.HybridOptions.
type BinarizerConfig struct {
	BlockSize       int `mapstructure:"block_size" yaml:"block_size" json:"block_size"`
	Radius          int `mapstructure:"radius" yaml:"radius" json:"radius"`
	MinDynamicRange int `mapstructure:"min_dynamic_range" yaml:"min_dynamic_range" json:"min_dynamic_range"`
}

// ScanConfig contains the multi symbol settings.
type ScanConfig struct {
	Workers          int     `mapstructure:"workers" yaml:"workers" json:"workers"`
	MinAreaRatio     float64 `mapstructure:"min_area_ratio" yaml:"min_area_ratio" json:"min_area_ratio"`
	AspectTolerance  float64 `mapstructure:"aspect_tolerance" yaml:"aspect_tolerance" json:"aspect_tolerance"`
	DensityTolerance float64 `mapstructure:"density_tolerance" yaml:"density_tolerance" json:"density_tolerance"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format  string `mapstructure:"format" yaml:"format" json:"format"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color" json:"no_color"`
}

// MetricsConfig controls the Prometheus textfile export. An empty File
// disables it.
type MetricsConfig struct {
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// DefaultConfig returns the built in defaults.
func DefaultConfig() *Config {
	opts := aztecgo.DefaultOptions()
	reg := regions.DefaultOptions()
	hyb := binarizer.DefaultHybridOptions()
	return &Config{
		Decode: DecodeConfig{
			AutoOrient:      opts.AutoOrient,
			AutoCorrect:     opts.AutoCorrect,
			AutoModeCorrect: opts.AutoModeCorrect,
		},
		Binarizer: BinarizerConfig{
			BlockSize:       hyb.BlockSize,
			Radius:          hyb.Radius,
			MinDynamicRange: hyb.MinDynamicRange,
		},
		Scan: ScanConfig{
			Workers:          runtime.NumCPU(),
			MinAreaRatio:     reg.MinAreaRatio,
			AspectTolerance:  reg.AspectTolerance,
			DensityTolerance: reg.DensityTolerance,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	validOutputs    = []string{"text", "json", "yaml"}
	validRotations  = []int{0, 90, 180, 270}
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.Log.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Log.Level, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validLogFormats, c.Log.Format) {
		return fmt.Errorf("invalid log format: %s (must be one of: %s)", c.Log.Format, strings.Join(validLogFormats, ", "))
	}
	if !slices.Contains(validOutputs, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validOutputs, ", "))
	}
	if !slices.Contains(validRotations, c.Decode.Rotation) {
		return fmt.Errorf("invalid rotation: %d (must be 0, 90, 180 or 270)", c.Decode.Rotation)
	}
	if c.Binarizer.BlockSize < 2 {
		return fmt.Errorf("invalid binarizer.block_size: %d (must be at least 2)", c.Binarizer.BlockSize)
	}
	if c.Binarizer.Radius < 1 {
		return fmt.Errorf("invalid binarizer.radius: %d (must be at least 1)", c.Binarizer.Radius)
	}
	if c.Binarizer.MinDynamicRange < 1 || c.Binarizer.MinDynamicRange > 255 {
		return fmt.Errorf("invalid binarizer.min_dynamic_range: %d (must be in [1, 255])", c.Binarizer.MinDynamicRange)
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("invalid scan.workers: %d (must not be negative)", c.Scan.Workers)
	}
	if c.Scan.MinAreaRatio <= 0 || c.Scan.MinAreaRatio > 1 {
		return fmt.Errorf("invalid scan.min_area_ratio: %g (must be in (0, 1])", c.Scan.MinAreaRatio)
	}
	if err := validateTolerance(c.Scan.AspectTolerance, "scan.aspect_tolerance"); err != nil {
		return err
	}
	return validateTolerance(c.Scan.DensityTolerance, "scan.density_tolerance")
}

func validateTolerance(v float64, name string) error {
	if v < 0 || v >= 1 {
		return fmt.Errorf("invalid %s: %g (must be in [0, 1))", name, v)
	}
	return nil
}

// DecodeOptions converts the decode section to pipeline options.
func (c *Config) DecodeOptions() *aztecgo.Options {
	return &aztecgo.Options{
		AutoOrient:      c.Decode.AutoOrient,
		AutoCorrect:     c.Decode.AutoCorrect,
		AutoModeCorrect: c.Decode.AutoModeCorrect,
		Rotation:        c.Decode.Rotation,
	}
}

// HybridOptions converts the binarizer section to local threshold options.
func (c *Config) HybridOptions() binarizer.HybridOptions {
	return binarizer.HybridOptions{
		BlockSize:       c.Binarizer.BlockSize,
		Radius:          c.Binarizer.Radius,
		MinDynamicRange: c.Binarizer.MinDynamicRange,
	}
}

// RegionOptions converts the scan section to region proposer options. Blur
// and margin keep their defaults.
func (c *Config) RegionOptions() regions.Options {
	opts := regions.DefaultOptions()
	opts.MinAreaRatio = c.Scan.MinAreaRatio
	opts.AspectTolerance = c.Scan.AspectTolerance
	opts.DensityTolerance = c.Scan.DensityTolerance
	return opts
}
