package transform

import (
	"errors"
	"fmt"

	"github.com/ericlevine/aztecgo/bitutil"
)

// ErrOutOfBounds is returned when a module center maps outside the image.
var ErrOutOfBounds = errors.New("gridsampler: module outside image")

// GridSampler reads a square module grid out of a binarized image.
type GridSampler struct {
	// Radius is the half-width of the square neighborhood voted over for
	// each module. Zero reads the single pixel under the module center.
	Radius int
}

// Sample reads a dimension x dimension grid. Module (i, j) is read at the
// image point t maps canonical (i+0.5, j+0.5) to, and is dark when more than
// half of the in-image pixels of its neighborhood are dark.
func (s GridSampler) Sample(image *bitutil.BitMatrix, dimension int, t *Transform) (*bitutil.BitMatrix, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("gridsampler: invalid dimension %d", dimension)
	}
	bits := bitutil.NewBitMatrix(dimension)
	row := make([]Point, dimension)
	for j := 0; j < dimension; j++ {
		for i := range row {
			row[i] = Point{X: float64(i) + 0.5, Y: float64(j) + 0.5}
		}
		t.ApplyAll(row)
		for i, p := range row {
			if p.X < 0 || p.Y < 0 || p.X >= float64(image.Width()) || p.Y >= float64(image.Height()) {
				return nil, fmt.Errorf("%w: module (%d,%d) at (%.1f,%.1f)", ErrOutOfBounds, i, j, p.X, p.Y)
			}
			if s.vote(image, int(p.X), int(p.Y)) {
				bits.Set(i, j)
			}
		}
	}
	return bits, nil
}

func (s GridSampler) vote(image *bitutil.BitMatrix, cx, cy int) bool {
	if s.Radius <= 0 {
		return image.Get(cx, cy)
	}
	dark, total := 0, 0
	for y := cy - s.Radius; y <= cy+s.Radius; y++ {
		for x := cx - s.Radius; x <= cx+s.Radius; x++ {
			if !image.Contains(x, y) {
				continue
			}
			total++
			if image.Get(x, y) {
				dark++
			}
		}
	}
	return 2*dark > total
}
