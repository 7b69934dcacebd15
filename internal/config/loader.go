package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "aztecscan"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "AZTECSCAN"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance, where the CLI
// binds its flags.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWithViper creates a loader on v.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from files, environment variables, and defaults.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadWithFile loads configuration from a specific file path. An empty path
// falls back to Load.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		l.v.AddConfigPath(filepath.Join(configDir, "aztecscan"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "aztecscan"))
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("decode.auto_orient", defaults.Decode.AutoOrient)
	l.v.SetDefault("decode.auto_correct", defaults.Decode.AutoCorrect)
	l.v.SetDefault("decode.auto_mode_correct", defaults.Decode.AutoModeCorrect)
	l.v.SetDefault("decode.rotation", defaults.Decode.Rotation)

	l.v.SetDefault("binarizer.block_size", defaults.Binarizer.BlockSize)
	l.v.SetDefault("binarizer.radius", defaults.Binarizer.Radius)
	l.v.SetDefault("binarizer.min_dynamic_range", defaults.Binarizer.MinDynamicRange)

	l.v.SetDefault("scan.workers", defaults.Scan.Workers)
	l.v.SetDefault("scan.min_area_ratio", defaults.Scan.MinAreaRatio)
	l.v.SetDefault("scan.aspect_tolerance", defaults.Scan.AspectTolerance)
	l.v.SetDefault("scan.density_tolerance", defaults.Scan.DensityTolerance)

	l.v.SetDefault("log.level", defaults.Log.Level)
	l.v.SetDefault("log.format", defaults.Log.Format)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.no_color", defaults.Output.NoColor)

	l.v.SetDefault("metrics.file", defaults.Metrics.File)
}
