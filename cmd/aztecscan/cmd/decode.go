package cmd

import (
	"time"

	"github.com/spf13/cobra"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec"
	"github.com/ericlevine/aztecgo/binarizer"
	"github.com/ericlevine/aztecgo/internal/config"
)

func (a *app) newDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode FILE...",
		Short: "Decode one Aztec symbol per image",
		Long: `Decode a single Aztec symbol from each image file.

The image is binarized with a local threshold first and with a global
threshold when that fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args, a.decodeFile)
		},
	}
	addDecodeFlags(cmd)
	return cmd
}

func addDecodeFlags(cmd *cobra.Command) {
	opts := aztecgo.DefaultOptions()
	flags := cmd.Flags()
	flags.Bool("auto-orient", opts.AutoOrient, "resolve the symbol rotation from the orientation marks")
	flags.Bool("auto-correct", opts.AutoCorrect, "apply Reed-Solomon correction to the data codewords")
	flags.Bool("auto-mode-correct", opts.AutoModeCorrect, "apply Reed-Solomon correction to the mode message")
	flags.Int("rotation", opts.Rotation, "clockwise symbol rotation in degrees, used with --auto-orient=false")

	hyb := config.DefaultConfig().Binarizer
	flags.Int("block-size", hyb.BlockSize, "local threshold block side in pixels")
	flags.Int("block-radius", hyb.Radius, "neighbouring blocks on each side averaged into a threshold")
	flags.Int("min-dynamic-range", hyb.MinDynamicRange, "luminance spread below which a block counts as flat")
}

// binarizers are tried in order until one yields a symbol.
var binarizers = []struct {
	name string
	new  func(aztecgo.LuminanceSource, binarizer.HybridOptions) aztecgo.Binarizer
}{
	{"hybrid", func(s aztecgo.LuminanceSource, o binarizer.HybridOptions) aztecgo.Binarizer {
		return binarizer.NewHybridWithOptions(s, o)
	}},
	{"global", func(s aztecgo.LuminanceSource, _ binarizer.HybridOptions) aztecgo.Binarizer {
		return binarizer.NewGlobal(s)
	}},
}

func (a *app) decodeFile(cmd *cobra.Command, path string) ([]*aztecgo.Result, error) {
	source, err := loadSource(path)
	if err != nil {
		return nil, err
	}
	reader := aztec.NewReader()
	opts := a.cfg.DecodeOptions()
	hyb := a.cfg.HybridOptions()

	var first error
	for _, b := range binarizers {
		start := time.Now()
		res, err := reader.Decode(aztecgo.NewBinaryBitmap(b.new(source, hyb)), opts)
		a.metrics.Observe(res, err, time.Since(start))
		if err == nil {
			a.logger.Debug("symbol decoded", "file", path, "binarizer", b.name, "symbol", res.Metadata.String())
			return []*aztecgo.Result{res}, nil
		}
		a.logger.Debug("decode failed", "file", path, "binarizer", b.name,
			"stage", string(aztecgo.StageOf(err)), "error", err)
		if first == nil {
			first = err
		}
	}
	return nil, first
}
