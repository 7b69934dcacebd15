// Package regions proposes candidate boxes for symbols in a grayscale image.
//
// The image is smoothed with a Gaussian blur, thresholded with Otsu's method
// and split into 8-connected dark components. A component is kept when it is
// large enough, close to square, and its bounding box is about half dark.
package regions

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/binarizer"
)

// Options tunes the component filters.
type Options struct {
	// MinAreaRatio is the smallest component, in dark pixels, as a fraction
	// of the image area.
	MinAreaRatio float64
	// AspectTolerance bounds |width/height - 1| of the bounding box.
	AspectTolerance float64
	// DensityTolerance bounds |dark fraction - 0.5| inside the bounding box.
	DensityTolerance float64
	// Sigma is the Gaussian blur radius applied before thresholding.
	Sigma float64
	// Margin grows every box by this fraction of its larger side on each
	// edge, clipped to the image.
	Margin float64
}

// DefaultOptions returns the filter settings used by the CLI.
func DefaultOptions() Options {
	return Options{
		MinAreaRatio:     0.005,
		AspectTolerance:  0.15,
		DensityTolerance: 0.15,
		Sigma:            1.1,
		Margin:           0.125,
	}
}

type component struct {
	box  image.Rectangle
	area int
}

// Propose returns candidate boxes ordered top to bottom, then left to
// right. The result is empty when the image has no contrast.
func Propose(source aztecgo.LuminanceSource, opts Options) []image.Rectangle {
	width, height := source.Width(), source.Height()
	if width == 0 || height == 0 {
		return nil
	}
	lum := blurred(source, opts.Sigma)
	threshold, err := binarizer.OtsuThreshold(binarizer.Histogram(lum))
	if err != nil {
		return nil
	}
	dark := make([]bool, len(lum))
	for i, v := range lum {
		dark[i] = int(v) <= threshold
	}

	bounds := image.Rect(0, 0, width, height)
	minArea := opts.MinAreaRatio * float64(width*height)
	var boxes []image.Rectangle
	for _, c := range components(dark, width, height) {
		if float64(c.area) < minArea {
			continue
		}
		aspect := float64(c.box.Dx()) / float64(c.box.Dy())
		if math.Abs(aspect-1) > opts.AspectTolerance {
			continue
		}
		if math.Abs(density(dark, width, c.box)-0.5) > opts.DensityTolerance {
			continue
		}
		m := int(opts.Margin * float64(max(c.box.Dx(), c.box.Dy())))
		boxes = append(boxes, c.box.Inset(-m).Intersect(bounds))
	}
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Min.Y != boxes[j].Min.Y {
			return boxes[i].Min.Y < boxes[j].Min.Y
		}
		return boxes[i].Min.X < boxes[j].Min.X
	})
	return boxes
}

func blurred(source aztecgo.LuminanceSource, sigma float64) []byte {
	width, height := source.Width(), source.Height()
	gray := &image.Gray{Pix: source.Matrix(), Stride: width, Rect: image.Rect(0, 0, width, height)}
	if sigma <= 0 {
		return gray.Pix
	}
	img := imaging.Blur(gray, sigma)
	out := make([]byte, width*height)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			out[y*width+x] = row[4*x]
		}
	}
	return out
}

// components labels the 8-connected dark components in raster order.
func components(dark []bool, width, height int) []component {
	seen := make([]bool, len(dark))
	var out []component
	var stack []int
	for start, d := range dark {
		if !d || seen[start] {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		x0, y0 := start%width, start/width
		c := component{box: image.Rect(x0, y0, x0+1, y0+1)}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%width, p/width
			c.area++
			c.box = c.box.Union(image.Rect(x, y, x+1, y+1))
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					n := ny*width + nx
					if dark[n] && !seen[n] {
						seen[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
		out = append(out, c)
	}
	return out
}

func density(dark []bool, width int, box image.Rectangle) float64 {
	n := 0
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if dark[y*width+x] {
				n++
			}
		}
	}
	return float64(n) / float64(box.Dx()*box.Dy())
}
