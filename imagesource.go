package aztecgo

import (
	"fmt"
	"image"
)

// ImageLuminanceSource is a LuminanceSource over an 8-bit luminance buffer
// converted from a Go image.Image. Crops share the buffer.
type ImageLuminanceSource struct {
	luminances []byte
	stride     int
	left, top  int
	width      int
	height     int
}

// NewImageLuminanceSource creates a LuminanceSource from a Go image.Image.
// Luminance is (306*R + 601*G + 117*B + 0x200) >> 10 on 8-bit components;
// fully transparent pixels are white.
func NewImageLuminanceSource(img image.Image) *ImageLuminanceSource {
	if g, ok := img.(*image.Gray); ok {
		return NewGrayImageLuminanceSource(g)
	}
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	luminances := make([]byte, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				luminances[y*w+x] = 0xFF
				continue
			}
			r8, g8, b8 := r>>8, g>>8, b>>8
			luminances[y*w+x] = byte((306*r8 + 601*g8 + 117*b8 + 0x200) >> 10)
		}
	}
	return NewLuminanceSource(luminances, w, h)
}

// NewGrayImageLuminanceSource creates a LuminanceSource from a *image.Gray,
// copying its pixels.
func NewGrayImageLuminanceSource(img *image.Gray) *ImageLuminanceSource {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	luminances := make([]byte, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(luminances[y*w:], img.Pix[off:off+w])
	}
	return NewLuminanceSource(luminances, w, h)
}

// NewLuminanceSource wraps a row-major luminance buffer of the given size.
func NewLuminanceSource(luminances []byte, width, height int) *ImageLuminanceSource {
	return &ImageLuminanceSource{
		luminances: luminances,
		stride:     width,
		width:      width,
		height:     height,
	}
}

// Row returns a row of luminance data.
func (s *ImageLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	if len(row) < s.width {
		row = make([]byte, s.width)
	}
	offset := (s.top+y)*s.stride + s.left
	copy(row, s.luminances[offset:offset+s.width])
	return row
}

// Matrix returns a copy of the luminance matrix.
func (s *ImageLuminanceSource) Matrix() []byte {
	result := make([]byte, s.width*s.height)
	for y := 0; y < s.height; y++ {
		offset := (s.top+y)*s.stride + s.left
		copy(result[y*s.width:], s.luminances[offset:offset+s.width])
	}
	return result
}

// Width returns the width of the image.
func (s *ImageLuminanceSource) Width() int {
	return s.width
}

// Height returns the height of the image.
func (s *ImageLuminanceSource) Height() int {
	return s.height
}

// Crop returns a view of r, which is given in this source's coordinates and
// clipped to its bounds.
func (s *ImageLuminanceSource) Crop(r image.Rectangle) (LuminanceSource, error) {
	r = r.Intersect(image.Rect(0, 0, s.width, s.height))
	if r.Empty() {
		return nil, fmt.Errorf("crop %v: empty region", r)
	}
	return &ImageLuminanceSource{
		luminances: s.luminances,
		stride:     s.stride,
		left:       s.left + r.Min.X,
		top:        s.top + r.Min.Y,
		width:      r.Dx(),
		height:     r.Dy(),
	}, nil
}

// Image returns the luminance data as a greyscale image.
func (s *ImageLuminanceSource) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.Matrix())
	return img
}
