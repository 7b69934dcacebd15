package regions

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/internal/aztectest"
)

func render(t *testing.T, text string) image.Image {
	t.Helper()
	sym, err := aztectest.BuildText(text)
	require.NoError(t, err)
	return aztectest.Render(sym.Matrix, aztectest.DefaultRenderOptions())
}

func TestProposeTwoSymbols(t *testing.T) {
	canvas, placed := aztectest.Compose(10, render(t, "Hello"), render(t, "World"))
	boxes := Propose(aztecgo.NewImageLuminanceSource(canvas), DefaultOptions())
	require.Len(t, boxes, 2)
	for i, box := range boxes {
		// quiet zone is 4 modules of 5 pixels
		modules := placed[i].Inset(20)
		assert.True(t, modules.In(box), "box %v misses modules %v", box, modules)
		assert.True(t, box.In(placed[i]), "box %v leaves %v", box, placed[i])
	}
	assert.Less(t, boxes[0].Min.X, boxes[1].Min.X)
}

func TestProposeSortsTopToBottom(t *testing.T) {
	symbol := render(t, "Hello")
	canvas := imaging.New(300, 300, color.NRGBA{R: 232, G: 232, B: 232, A: 255})
	canvas = imaging.Paste(canvas, symbol, image.Pt(170, 10))
	canvas = imaging.Paste(canvas, symbol, image.Pt(10, 170))
	boxes := Propose(aztecgo.NewImageLuminanceSource(canvas), DefaultOptions())
	require.Len(t, boxes, 2)
	assert.Greater(t, boxes[0].Min.X, 150)
	assert.Less(t, boxes[1].Min.X, 150)
}

func TestProposeRejects(t *testing.T) {
	light := color.NRGBA{R: 232, G: 232, B: 232, A: 255}
	dark := color.NRGBA{R: 24, G: 24, B: 24, A: 255}
	tests := []struct {
		name string
		draw func(*image.NRGBA)
	}{
		{"blank", func(*image.NRGBA) {}},
		{"solid square", func(img *image.NRGBA) {
			fill(img, image.Rect(20, 20, 60, 60), dark)
		}},
		{"wide bar", func(img *image.NRGBA) {
			fill(img, image.Rect(10, 40, 90, 60), dark)
		}},
		{"tiny speck", func(img *image.NRGBA) {
			fill(img, image.Rect(50, 50, 52, 52), dark)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img := imaging.New(100, 100, light)
			tc.draw(img)
			assert.Empty(t, Propose(aztecgo.NewImageLuminanceSource(img), DefaultOptions()))
		})
	}
}

func TestProposeEmptySource(t *testing.T) {
	assert.Empty(t, Propose(aztecgo.NewLuminanceSource(nil, 0, 0), DefaultOptions()))
}

func TestComponents(t *testing.T) {
	// two diagonal runs join, the isolated pixel does not
	grid := []string{
		"X....",
		".X..X",
		"..X..",
		".....",
	}
	width, height := len(grid[0]), len(grid)
	dark := make([]bool, width*height)
	for y, row := range grid {
		for x, c := range row {
			dark[y*width+x] = c == 'X'
		}
	}
	got := components(dark, width, height)
	require.Len(t, got, 2)
	assert.Equal(t, image.Rect(0, 0, 3, 3), got[0].box)
	assert.Equal(t, 3, got[0].area)
	assert.Equal(t, image.Rect(4, 1, 5, 2), got[1].box)
	assert.Equal(t, 0.5, density([]bool{true, false, false, true}, 2, image.Rect(0, 0, 2, 2)))
}

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
