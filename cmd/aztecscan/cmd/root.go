// Package cmd implements the aztecscan command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ericlevine/aztecgo/internal/config"
	"github.com/ericlevine/aztecgo/internal/metrics"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":         "log.level",
	"log-format":        "log.format",
	"output":            "output.format",
	"no-color":          "output.no_color",
	"metrics-file":      "metrics.file",
	"auto-orient":       "decode.auto_orient",
	"auto-correct":      "decode.auto_correct",
	"auto-mode-correct": "decode.auto_mode_correct",
	"rotation":          "decode.rotation",
	"block-size":        "binarizer.block_size",
	"block-radius":      "binarizer.radius",
	"min-dynamic-range": "binarizer.min_dynamic_range",
	"workers":           "scan.workers",
	"min-area-ratio":    "scan.min_area_ratio",
	"aspect-tolerance":  "scan.aspect_tolerance",
	"density-tolerance": "scan.density_tolerance",
}

// app carries the state of one command line invocation.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRootCommand builds the aztecscan command tree. Every call returns an
// independent tree with its own configuration state.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	defaults := config.DefaultConfig()

	root := &cobra.Command{
		Use:   "aztecscan",
		Short: "Decode Aztec barcodes from images",
		Long: `aztecscan decodes Aztec 2D barcodes (ISO/IEC 24778) from image files.

Supported formats: PNG, JPEG, GIF, BMP, TIFF, WebP

Examples:
  aztecscan decode ticket.png
  aztecscan decode --rotation 90 --auto-orient=false label.jpg
  aztecscan scan --output json sheet.png`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is search in . and $XDG_CONFIG_HOME/aztecscan)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (text, json)")
	flags.StringP("output", "o", defaults.Output.Format, "output format (text, json, yaml)")
	flags.Bool("no-color", defaults.Output.NoColor, "disable colored text output")
	flags.String("metrics-file", defaults.Metrics.File, "write Prometheus metrics to this textfile")

	root.AddCommand(a.newDecodeCommand(), a.newScanCommand(), newVersionCommand())
	return root
}

// setup binds the flags of the running command, loads the configuration and
// builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = a.v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.NewLoaderWithViper(a.v).LoadWithFile(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
	a.metrics = metrics.New()
	a.logger.Debug("configuration loaded", "file", a.v.ConfigFileUsed(), "output", cfg.Output.Format)
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// writeMetrics exports the collectors when a metrics file is configured.
func (a *app) writeMetrics() {
	if a.cfg.Metrics.File == "" {
		return
	}
	if err := a.metrics.WriteToTextfile(a.cfg.Metrics.File); err != nil {
		a.logger.Error("write metrics", "file", a.cfg.Metrics.File, "error", err)
	}
}
