package detector

import (
	"math"

	"github.com/ericlevine/aztecgo/bitutil"
	"github.com/ericlevine/aztecgo/transform"
)

// Mapping places the canonical module grid of a symbol in an image. It is
// never modified once built; rotation variants are separate values.
type Mapping struct {
	// Center is the pixel position of the center of the bullseye's
	// central module.
	Center transform.Point
	// Pitch is the module size in pixels.
	Pitch float64
	// Rotation is the clockwise rotation of the symbol, in degrees.
	Rotation int
	Compact  bool
}

// WithRotation returns a copy of m rotated to degrees (normalized to 0..270).
func (m *Mapping) WithRotation(degrees int) *Mapping {
	out := *m
	out.Rotation = ((degrees%360)+360)%360
	return &out
}

// ToImage maps an offset from the center, in modules and in the symbol's own
// orientation, to a pixel position.
func (m *Mapping) ToImage(dx, dy float64) transform.Point {
	for i := 0; i < m.Rotation/90; i++ {
		dx, dy = -dy, dx
	}
	return transform.Point{X: m.Center.X + dx*m.Pitch, Y: m.Center.Y + dy*m.Pitch}
}

// Transform returns the transform taking canonical coordinates of a
// dimension x dimension grid centered on the bullseye to pixels.
func (m *Mapping) Transform(dimension int) *transform.Transform {
	n := float64(dimension)
	h := n / 2
	from := transform.Quad{{X: 0, Y: 0}, {X: n, Y: 0}, {X: n, Y: n}, {X: 0, Y: n}}
	var to transform.Quad
	for i, p := range from {
		to[i] = m.ToImage(p.X-h, p.Y-h)
	}
	return transform.QuadToQuad(from, to)
}

// Sampler returns the grid sampler matching the module pitch.
func (m *Mapping) Sampler() transform.GridSampler {
	return transform.GridSampler{Radius: int(math.Floor(m.Pitch / 4))}
}

// Sample reads the dimension x dimension grid centered on the bullseye.
func (m *Mapping) Sample(image *bitutil.BitMatrix, dimension int) (*bitutil.BitMatrix, error) {
	return m.Sampler().Sample(image, dimension, m.Transform(dimension))
}

// BullseyeRadius returns the radius of the outermost dark finder ring.
func (m *Mapping) BullseyeRadius() int {
	if m.Compact {
		return 4
	}
	return 6
}

// Corners returns the pixel positions of the outer corners of the bullseye,
// top-left first and clockwise in the symbol's own orientation.
func (m *Mapping) Corners() []transform.Point {
	r := float64(m.BullseyeRadius()) + 0.5
	return []transform.Point{
		m.ToImage(-r, -r),
		m.ToImage(r, -r),
		m.ToImage(r, r),
		m.ToImage(-r, r),
	}
}
