package aztec

import (
	"fmt"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec/decoder"
	"github.com/ericlevine/aztecgo/aztec/detector"
	"github.com/ericlevine/aztecgo/bitutil"
)

// ResolveOrientation fixes the rotation of a located symbol by decoding its
// mode message. Rotations are tried in the fixed order candidate, +90, +180,
// +270 and the first that yields a valid mode message wins.
//
// With opts.AutoOrient false only opts.Rotation is tried and its mode
// message error is returned unchanged.
func ResolveOrientation(image *bitutil.BitMatrix, candidate *detector.Mapping, opts *aztecgo.Options) (*detector.Mapping, *aztecgo.SymbolMetadata, error) {
	opts = opts.OrDefault()
	if !opts.AutoOrient {
		m := candidate.WithRotation(opts.Rotation)
		meta, err := decoder.DecodeMode(image, m, opts.AutoModeCorrect)
		if err != nil {
			return nil, nil, err
		}
		return m, meta, nil
	}

	// Turns are relative to the rotation read from the orientation marks, so
	// an intact symbol decodes on the first try.
	var lastErr error
	for turn := 0; turn < 4; turn++ {
		m := candidate.WithRotation(candidate.Rotation + 90*turn)
		meta, err := decoder.DecodeMode(image, m, opts.AutoModeCorrect)
		if err == nil {
			return m, meta, nil
		}
		lastErr = err
	}
	return nil, nil, fmt.Errorf("%w: %w", aztecgo.ErrOrientation, lastErr)
}
