// Package transform maps canonical symbol coordinates onto image pixels and
// samples module grids through that mapping.
package transform

// Point is a position in either canonical module space or pixel space.
type Point struct {
	X, Y float64
}

// Quad lists four corners in order: top-left, top-right, bottom-right,
// bottom-left as seen in canonical space.
type Quad [4]Point

// Transform is a planar perspective transform stored as a 3x3 matrix in
// column-major order.
type Transform struct {
	a11, a12, a13 float64
	a21, a22, a23 float64
	a31, a32, a33 float64
}

// QuadToQuad computes the transform taking each corner of from onto the
// corresponding corner of to.
func QuadToQuad(from, to Quad) *Transform {
	return SquareToQuad(to).Times(QuadToSquare(from))
}

// Apply maps a single point.
func (t *Transform) Apply(p Point) Point {
	d := t.a13*p.X + t.a23*p.Y + t.a33
	return Point{
		X: (t.a11*p.X + t.a21*p.Y + t.a31) / d,
		Y: (t.a12*p.X + t.a22*p.Y + t.a32) / d,
	}
}

// ApplyAll maps points in place.
func (t *Transform) ApplyAll(points []Point) {
	for i, p := range points {
		points[i] = t.Apply(p)
	}
}

// SquareToQuad computes the transform from the unit square onto q.
func SquareToQuad(q Quad) *Transform {
	x0, y0 := q[0].X, q[0].Y
	x1, y1 := q[1].X, q[1].Y
	x2, y2 := q[2].X, q[2].Y
	x3, y3 := q[3].X, q[3].Y
	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		// affine
		return &Transform{
			a11: x1 - x0, a21: x2 - x1, a31: x0,
			a12: y1 - y0, a22: y2 - y1, a32: y0,
			a33: 1,
		}
	}
	dx1, dx2 := x1-x2, x3-x2
	dy1, dy2 := y1-y2, y3-y2
	den := dx1*dy2 - dx2*dy1
	a13 := (dx3*dy2 - dx2*dy3) / den
	a23 := (dx1*dy3 - dx3*dy1) / den
	return &Transform{
		a11: x1 - x0 + a13*x1, a21: x3 - x0 + a23*x3, a31: x0,
		a12: y1 - y0 + a13*y1, a22: y3 - y0 + a23*y3, a32: y0,
		a13: a13, a23: a23, a33: 1,
	}
}

// QuadToSquare computes the transform from q onto the unit square.
func QuadToSquare(q Quad) *Transform {
	return SquareToQuad(q).adjoint()
}

func (t *Transform) adjoint() *Transform {
	return &Transform{
		a11: t.a22*t.a33 - t.a23*t.a32,
		a21: t.a23*t.a31 - t.a21*t.a33,
		a31: t.a21*t.a32 - t.a22*t.a31,
		a12: t.a13*t.a32 - t.a12*t.a33,
		a22: t.a11*t.a33 - t.a13*t.a31,
		a32: t.a12*t.a31 - t.a11*t.a32,
		a13: t.a12*t.a23 - t.a13*t.a22,
		a23: t.a13*t.a21 - t.a11*t.a23,
		a33: t.a11*t.a22 - t.a12*t.a21,
	}
}

// Times returns t * o, the transform applying o first.
func (t *Transform) Times(o *Transform) *Transform {
	return &Transform{
		a11: t.a11*o.a11 + t.a21*o.a12 + t.a31*o.a13,
		a21: t.a11*o.a21 + t.a21*o.a22 + t.a31*o.a23,
		a31: t.a11*o.a31 + t.a21*o.a32 + t.a31*o.a33,
		a12: t.a12*o.a11 + t.a22*o.a12 + t.a32*o.a13,
		a22: t.a12*o.a21 + t.a22*o.a22 + t.a32*o.a23,
		a32: t.a12*o.a31 + t.a22*o.a32 + t.a32*o.a33,
		a13: t.a13*o.a11 + t.a23*o.a12 + t.a33*o.a13,
		a23: t.a13*o.a21 + t.a23*o.a22 + t.a33*o.a23,
		a33: t.a13*o.a31 + t.a23*o.a32 + t.a33*o.a33,
	}
}
