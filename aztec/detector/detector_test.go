package detector_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec/detector"
	"github.com/ericlevine/aztecgo/binarizer"
	"github.com/ericlevine/aztecgo/bitutil"
	"github.com/ericlevine/aztecgo/internal/aztectest"
	"github.com/ericlevine/aztecgo/transform"
)

func blackMatrix(t *testing.T, m *bitutil.BitMatrix, opts aztectest.RenderOptions) *bitutil.BitMatrix {
	t.Helper()
	image, err := binarizer.NewHybrid(aztectest.Source(m, opts)).BlackMatrix()
	require.NoError(t, err)
	return image
}

func TestLocate(t *testing.T) {
	symbols := []aztectest.Spec{
		{Compact: true, Layers: 3, DataCodewords: 21},
		{Compact: false, Layers: 5},
	}
	for _, spec := range symbols {
		sym, err := aztectest.Build(aztectest.EncodeText("Welcome to Aztec tool lib !"), spec)
		require.NoError(t, err)
		for _, rotation := range []int{0, 90, 180, 270} {
			t.Run(fmt.Sprintf("compact=%v/%d", spec.Compact, rotation), func(t *testing.T) {
				opts := aztectest.DefaultRenderOptions()
				opts.Rotation = rotation
				opts.Gradient = 60
				image := blackMatrix(t, sym.Matrix, opts)

				m, err := detector.Locate(image)
				require.NoError(t, err)
				assert.Equal(t, spec.Compact, m.Compact)
				assert.Equal(t, rotation, m.Rotation)
				assert.InDelta(t, 5, m.Pitch, 0.5)
				center := float64(image.Width()) / 2
				assert.InDelta(t, center, m.Center.X, 1)
				assert.InDelta(t, center, m.Center.Y, 1)
			})
		}
	}
}

func TestLocateBullseyeKeepsRotationZero(t *testing.T) {
	sym, err := aztectest.BuildText("Hello")
	require.NoError(t, err)
	opts := aztectest.DefaultRenderOptions()
	opts.Rotation = 90
	m, err := detector.LocateBullseye(blackMatrix(t, sym.Matrix, opts))
	require.NoError(t, err)
	assert.Zero(t, m.Rotation)
	assert.True(t, m.Compact)
}

func TestLocateRejects(t *testing.T) {
	_, err := detector.Locate(bitutil.NewBitMatrix(120))
	assert.ErrorIs(t, err, aztecgo.ErrLocate)

	// a bullseye with ring 2 erased
	sym, err := aztectest.BuildText("Hello")
	require.NoError(t, err)
	c := sym.Matrix.Width() / 2
	for i := -2; i <= 2; i++ {
		for _, p := range [][2]int{{c + i, c - 2}, {c + i, c + 2}, {c - 2, c + i}, {c + 2, c + i}} {
			sym.Matrix.Unset(p[0], p[1])
		}
	}
	_, err = detector.Locate(blackMatrix(t, sym.Matrix, aztectest.DefaultRenderOptions()))
	assert.ErrorIs(t, err, aztecgo.ErrLocate)
}

func TestReadOrientation(t *testing.T) {
	sym, err := aztectest.Build(aztectest.EncodeText("A"), aztectest.Spec{Compact: true, Layers: 1})
	require.NoError(t, err)
	for _, rotation := range []int{0, 90, 180, 270} {
		got, err := detector.ReadOrientation(sym.Matrix.Rotated(rotation), 5)
		require.NoError(t, err)
		assert.Equal(t, rotation, got)
	}

	c := sym.Matrix.Width() / 2
	damaged := sym.Matrix.Clone()
	damaged.Unset(c-5, c-5)
	got, err := detector.ReadOrientation(damaged, 5)
	require.NoError(t, err)
	assert.Zero(t, got)

	for _, p := range [][2]int{{c - 5, c - 5}, {c - 4, c - 5}, {c - 5, c - 4}, {c + 5, c - 5}, {c + 5, c - 4}, {c + 5, c + 4}} {
		damaged.Unset(p[0], p[1])
	}
	_, err = detector.ReadOrientation(damaged, 5)
	assert.Error(t, err)
}

func TestMappingTransform(t *testing.T) {
	m := &detector.Mapping{Center: transform.Point{X: 50, Y: 60}, Pitch: 4, Compact: true}

	p := m.ToImage(1, 0)
	assert.InDelta(t, 54, p.X, 1e-9)
	assert.InDelta(t, 60, p.Y, 1e-9)

	r := m.WithRotation(-270)
	assert.Equal(t, 90, r.Rotation)
	assert.Zero(t, m.Rotation)
	p = r.ToImage(1, 0)
	assert.InDelta(t, 50, p.X, 1e-9)
	assert.InDelta(t, 64, p.Y, 1e-9)

	// module (5, 5) of an 11 module grid is the center module
	center := r.Transform(11).Apply(transform.Point{X: 5.5, Y: 5.5})
	assert.InDelta(t, 50, center.X, 1e-6)
	assert.InDelta(t, 60, center.Y, 1e-6)

	corners := m.Corners()
	require.Len(t, corners, 4)
	assert.InDelta(t, 50-4.5*4, corners[0].X, 1e-9)
	assert.Equal(t, 1, m.Sampler().Radius)
}
