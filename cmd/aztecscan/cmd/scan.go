package cmd

import (
	"github.com/spf13/cobra"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/internal/config"
	"github.com/ericlevine/aztecgo/multi"
)

func (a *app) newScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan FILE...",
		Short: "Find and decode every Aztec symbol in each image",
		Long: `Propose candidate regions in each image and decode every symbol found.

Regions are dark connected components that are close to square and about
half dark. When no region qualifies the whole image is decoded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args, a.scanFile)
		},
	}
	addDecodeFlags(cmd)

	defaults := config.DefaultConfig().Scan
	flags := cmd.Flags()
	flags.Int("workers", defaults.Workers, "concurrent region decodes (0 = number of CPUs)")
	flags.Float64("min-area-ratio", defaults.MinAreaRatio, "smallest region as a fraction of the image area")
	flags.Float64("aspect-tolerance", defaults.AspectTolerance, "allowed deviation of the region aspect ratio from 1")
	flags.Float64("density-tolerance", defaults.DensityTolerance, "allowed deviation of the region dark fraction from 0.5")
	return cmd
}

func (a *app) scanFile(cmd *cobra.Command, path string) ([]*aztecgo.Result, error) {
	source, err := loadSource(path)
	if err != nil {
		return nil, err
	}
	finder := multi.NewFinder()
	finder.Options = a.cfg.DecodeOptions()
	finder.Workers = a.cfg.Scan.Workers
	finder.Regions = a.cfg.RegionOptions()
	finder.Binarizer = a.cfg.HybridOptions()
	finder.Logger = a.logger.With("file", path)
	finder.Observe = a.metrics.Observe
	return finder.FindAll(cmd.Context(), source)
}
