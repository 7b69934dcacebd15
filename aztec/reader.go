// Package aztec runs the single symbol Aztec decoding pipeline: locate the
// bullseye, resolve the orientation, decode the mode message and the data
// region, and decode the character stream.
package aztec

import (
	"fmt"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec/decoder"
	"github.com/ericlevine/aztecgo/aztec/detector"
	"github.com/ericlevine/aztecgo/bitutil"
	"github.com/ericlevine/aztecgo/charset"
)

// Reader decodes Aztec symbols from binary images.
type Reader struct {
	// Text decodes byte runs of the character stream. Nil selects
	// charset.Decoder.
	Text charset.TextDecoder
}

// NewReader creates a new Aztec Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Decode locates and decodes the Aztec symbol in the given image.
func (r *Reader) Decode(image *aztecgo.BinaryBitmap, opts *aztecgo.Options) (*aztecgo.Result, error) {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, &aztecgo.StageError{Stage: aztecgo.StageLocate, Err: fmt.Errorf("%w: %v", aztecgo.ErrLocate, err)}
	}
	return r.DecodeMatrix(matrix, opts)
}

// DecodeMatrix decodes a symbol from a black and white matrix. The matrix may
// be a binarized image or an already sampled module grid, one pixel per
// module.
func (r *Reader) DecodeMatrix(matrix *bitutil.BitMatrix, opts *aztecgo.Options) (*aztecgo.Result, error) {
	opts = opts.OrDefault()

	var candidate *detector.Mapping
	var err error
	if opts.AutoOrient {
		candidate, err = detector.Locate(matrix)
	} else {
		candidate, err = detector.LocateBullseye(matrix)
	}
	if err != nil {
		return nil, &aztecgo.StageError{Stage: aztecgo.StageLocate, Err: err}
	}

	mapping, meta, err := ResolveOrientation(matrix, candidate, opts)
	if err != nil {
		stage := aztecgo.StageMode
		if opts.AutoOrient {
			stage = aztecgo.StageOrient
		}
		return nil, &aztecgo.StageError{Stage: stage, Err: err}
	}

	data, err := decoder.DecodeData(matrix, mapping, meta, opts.AutoCorrect)
	if err != nil {
		return nil, &aztecgo.StageError{Stage: aztecgo.StageData, Metadata: meta, Err: err}
	}
	meta.ErrorsCorrected += data.ErrorsCorrected

	stream, err := decoder.DecodeStream(data.Bits, r.Text)
	if err != nil {
		return nil, &aztecgo.StageError{Stage: aztecgo.StageText, Metadata: meta, Err: err}
	}

	points := make([]aztecgo.ResultPoint, 0, 5)
	for _, p := range mapping.Corners() {
		points = append(points, aztecgo.ResultPoint{X: p.X, Y: p.Y})
	}
	points = append(points, aztecgo.ResultPoint{X: mapping.Center.X, Y: mapping.Center.Y})

	return &aztecgo.Result{
		Text:          stream.Text,
		RawBytes:      stream.RawBytes,
		Points:        points,
		Metadata:      *meta,
		ECIs:          stream.ECIs,
		FNC1:          stream.FNC1,
		Bitmap:        data.Raw,
		CorrectedBits: data.Bits,
	}, nil
}

// DecodeMatrix decodes a symbol from a black and white matrix with a default
// Reader.
func DecodeMatrix(matrix *bitutil.BitMatrix, opts *aztecgo.Options) (*aztecgo.Result, error) {
	return NewReader().DecodeMatrix(matrix, opts)
}

// Compile-time check.
var _ aztecgo.Reader = (*Reader)(nil)
