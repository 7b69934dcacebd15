package aztectest

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/bitutil"
)

const (
	darkLevel  = 24
	lightLevel = 232
)

// RenderOptions controls how a symbol matrix is drawn.
type RenderOptions struct {
	// Pitch is the module size in pixels.
	Pitch int
	// Quiet is the light margin around the symbol, in modules.
	Quiet int
	// Rotation turns the image clockwise by a multiple of 90 degrees.
	Rotation int
	// Gradient darkens the image linearly from the top-left corner to the
	// bottom-right one by up to this many luminance levels.
	Gradient int
}

// DefaultRenderOptions draws 5 pixel modules with a 4 module quiet zone.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Pitch: 5, Quiet: 4}
}

// Render draws m as an image.
func Render(m *bitutil.BitMatrix, opts RenderOptions) *image.NRGBA {
	pitch := max(1, opts.Pitch)
	quiet := opts.Quiet * pitch
	w, h := m.Width()*pitch+2*quiet, m.Height()*pitch+2*quiet
	img := imaging.New(w, h, color.NRGBA{R: lightLevel, G: lightLevel, B: lightLevel, A: 255})
	dark := color.NRGBA{R: darkLevel, G: darkLevel, B: darkLevel, A: 255}
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if !m.Get(x, y) {
				continue
			}
			for py := 0; py < pitch; py++ {
				for px := 0; px < pitch; px++ {
					img.SetNRGBA(quiet+x*pitch+px, quiet+y*pitch+py, dark)
				}
			}
		}
	}

	switch ((opts.Rotation % 360) + 360) % 360 {
	case 90:
		img = imaging.Rotate270(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate90(img)
	}
	if opts.Gradient > 0 {
		applyGradient(img, opts.Gradient)
	}
	return img
}

func applyGradient(img *image.NRGBA, gradient int) {
	b := img.Bounds()
	span := b.Dx() + b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			v := int(c.R) - gradient*(x+y)/span
			v = max(0, v)
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(v), G: uint8(v), B: uint8(v), A: 255})
		}
	}
}

// Compose pastes images side by side on a light canvas, each followed by a
// gap of pad pixels, and returns the canvas with the bounds of every pasted
// image.
func Compose(pad int, images ...image.Image) (*image.NRGBA, []image.Rectangle) {
	w, h := pad, 0
	for _, img := range images {
		w += img.Bounds().Dx() + pad
		h = max(h, img.Bounds().Dy())
	}
	canvas := imaging.New(w, h+2*pad, color.NRGBA{R: lightLevel, G: lightLevel, B: lightLevel, A: 255})
	boxes := make([]image.Rectangle, 0, len(images))
	x := pad
	for _, img := range images {
		pt := image.Pt(x, pad)
		canvas = imaging.Paste(canvas, img, pt)
		boxes = append(boxes, image.Rectangle{Min: pt, Max: pt.Add(img.Bounds().Size())})
		x += img.Bounds().Dx() + pad
	}
	return canvas, boxes
}

// Source renders m and wraps the image as a luminance source.
func Source(m *bitutil.BitMatrix, opts RenderOptions) *aztecgo.ImageLuminanceSource {
	return aztecgo.NewImageLuminanceSource(Render(m, opts))
}
