// Package aztecgo decodes Aztec 2D barcodes (ISO/IEC 24778) from images.
//
// The symbol pipeline lives in the aztec package; this package holds the
// types shared between the pipeline stages and their callers.
package aztecgo

import (
	"fmt"
	"math"

	"github.com/ericlevine/aztecgo/bitutil"
)

// SymbolClass distinguishes the two Aztec size classes.
type SymbolClass int

const (
	Compact SymbolClass = iota
	Full
)

// String returns the name of the symbol class.
func (c SymbolClass) String() string {
	switch c {
	case Compact:
		return "COMPACT"
	case Full:
		return "FULL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c SymbolClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *SymbolClass) UnmarshalText(text []byte) error {
	switch string(text) {
	case "COMPACT":
		*c = Compact
	case "FULL":
		*c = Full
	default:
		return fmt.Errorf("unknown symbol class %q", text)
	}
	return nil
}

// SymbolMetadata describes a symbol as read from its mode message.
type SymbolMetadata struct {
	Class         SymbolClass `json:"class" yaml:"class"`
	Layers        int         `json:"layers" yaml:"layers"`
	DataCodewords int         `json:"data_codewords" yaml:"data_codewords"`
	// ModeECCBits holds the corrected mode message check codewords, one
	// '0' or '1' per bit.
	ModeECCBits string `json:"mode_ecc_bits" yaml:"mode_ecc_bits"`

	TotalCodewords  int `json:"total_codewords" yaml:"total_codewords"`
	CodewordSize    int `json:"codeword_size" yaml:"codeword_size"`
	Rotation        int `json:"rotation" yaml:"rotation"`
	ErrorsCorrected int `json:"errors_corrected" yaml:"errors_corrected"`
}

// String returns a short human readable summary.
func (m *SymbolMetadata) String() string {
	return fmt.Sprintf("%s layers=%d data=%d", m.Class, m.Layers, m.DataCodewords)
}

// ResultPoint represents a point of interest in an image.
type ResultPoint struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance returns the distance between two points.
func Distance(a, b ResultPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Result encapsulates a decoded symbol.
type Result struct {
	Text     string         `json:"text" yaml:"text"`
	RawBytes []byte         `json:"-" yaml:"-"`
	Points   []ResultPoint  `json:"points" yaml:"points"`
	Metadata SymbolMetadata `json:"metadata" yaml:"metadata"`

	// ECIs lists the extended channel interpretations switched to, in order.
	ECIs []int `json:"ecis,omitempty" yaml:"ecis,omitempty"`
	// FNC1 reports whether the stream carried an FLG(0) sequence.
	FNC1 bool `json:"fnc1,omitempty" yaml:"fnc1,omitempty"`

	// Bitmap holds the raw data region bits before error correction.
	Bitmap *bitutil.BitArray `json:"-" yaml:"-"`
	// CorrectedBits holds the data bits after correction and unstuffing.
	CorrectedBits *bitutil.BitArray `json:"-" yaml:"-"`
}

// Translate returns a copy of r with its points shifted by (dx, dy).
func (r *Result) Translate(dx, dy float64) *Result {
	out := *r
	out.Points = make([]ResultPoint, len(r.Points))
	for i, p := range r.Points {
		out.Points[i] = ResultPoint{X: p.X + dx, Y: p.Y + dy}
	}
	return &out
}

// BinaryBitmap pairs a Binarizer with its cached black matrix.
type BinaryBitmap struct {
	binarizer Binarizer
	matrix    *bitutil.BitMatrix
}

// NewBinaryBitmap creates a new BinaryBitmap from the given Binarizer.
func NewBinaryBitmap(binarizer Binarizer) *BinaryBitmap {
	return &BinaryBitmap{binarizer: binarizer}
}

// Width returns the width of the bitmap.
func (b *BinaryBitmap) Width() int {
	return b.binarizer.Width()
}

// Height returns the height of the bitmap.
func (b *BinaryBitmap) Height() int {
	return b.binarizer.Height()
}

// BlackMatrix returns the 2D matrix of black/white values.
func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.matrix != nil {
		return b.matrix, nil
	}
	m, err := b.binarizer.BlackMatrix()
	if err != nil {
		return nil, err
	}
	b.matrix = m
	return m, nil
}
