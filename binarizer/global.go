// Package binarizer converts luminance data to black and white matrices.
package binarizer

import (
	"errors"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/bitutil"
)

// ErrLowContrast is returned when an image holds a single luminance level.
var ErrLowContrast = errors.New("binarizer: insufficient contrast")

// Global thresholds the whole image at the Otsu level of its histogram.
type Global struct {
	source aztecgo.LuminanceSource
	matrix *bitutil.BitMatrix
}

// NewGlobal creates a Global binarizer.
func NewGlobal(source aztecgo.LuminanceSource) *Global {
	return &Global{source: source}
}

// LuminanceSource returns the underlying source.
func (g *Global) LuminanceSource() aztecgo.LuminanceSource {
	return g.source
}

// Width returns the image width.
func (g *Global) Width() int { return g.source.Width() }

// Height returns the image height.
func (g *Global) Height() int { return g.source.Height() }

// BlackMatrix marks every pixel at or below the Otsu threshold as dark.
func (g *Global) BlackMatrix() (*bitutil.BitMatrix, error) {
	if g.matrix != nil {
		return g.matrix, nil
	}
	luminances := g.source.Matrix()
	threshold, err := OtsuThreshold(Histogram(luminances))
	if err != nil {
		return nil, err
	}
	width := g.source.Width()
	m := bitutil.NewBitMatrixWithSize(width, g.source.Height())
	for i, l := range luminances {
		if int(l) <= threshold {
			m.Set(i%width, i/width)
		}
	}
	g.matrix = m
	return m, nil
}

// Histogram counts the pixels at each luminance level.
func Histogram(luminances []byte) *[256]int {
	var h [256]int
	for _, l := range luminances {
		h[l]++
	}
	return &h
}

// OtsuThreshold returns the level maximizing the between class variance of
// the histogram. Pixels at or below the returned level form the dark class.
func OtsuThreshold(h *[256]int) (int, error) {
	total, sum := 0, 0.0
	for i, n := range h {
		total += n
		sum += float64(i * n)
	}
	if total == 0 {
		return 0, ErrLowContrast
	}

	best, bestVariance := -1, 0.0
	weightDark, sumDark := 0, 0.0
	for t := 0; t < 255; t++ {
		weightDark += h[t]
		if weightDark == 0 {
			continue
		}
		weightLight := total - weightDark
		if weightLight == 0 {
			break
		}
		sumDark += float64(t * h[t])
		meanDark := sumDark / float64(weightDark)
		meanLight := (sum - sumDark) / float64(weightLight)
		d := meanDark - meanLight
		variance := float64(weightDark) * float64(weightLight) * d * d
		if variance > bestVariance {
			best, bestVariance = t, variance
		}
	}
	if best < 0 {
		return 0, ErrLowContrast
	}
	return best, nil
}
