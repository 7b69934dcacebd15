package aztecgo

import (
	"image"

	"github.com/ericlevine/aztecgo/bitutil"
)

// LuminanceSource provides read-only access to greyscale luminance values.
type LuminanceSource interface {
	// Row returns a row of luminance data. If row is non-nil and large enough,
	// it should be reused.
	Row(y int, row []byte) []byte

	// Matrix returns the entire luminance matrix, row major.
	Matrix() []byte

	// Width returns the width of the image.
	Width() int

	// Height returns the height of the image.
	Height() int

	// Crop returns a view of the given region. The view shares the
	// underlying pixels and must not be written to.
	Crop(r image.Rectangle) (LuminanceSource, error)
}

// Binarizer converts luminance data to 1-bit black/white data.
type Binarizer interface {
	// BlackMatrix returns the 2D matrix of black/white values.
	BlackMatrix() (*bitutil.BitMatrix, error)

	// LuminanceSource returns the underlying LuminanceSource.
	LuminanceSource() LuminanceSource

	// Width returns the width of the image.
	Width() int

	// Height returns the height of the image.
	Height() int
}
