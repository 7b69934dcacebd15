package binarizer

import (
	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/bitutil"
)

// HybridOptions tunes the local thresholding of Hybrid. Zero fields select
// the defaults.
type HybridOptions struct {
	// BlockSize is the side in pixels of the blocks sharing one threshold.
	BlockSize int
	// Radius is the number of neighbouring blocks on each side whose black
	// points are averaged into a block's threshold.
	Radius int
	// MinDynamicRange is the luminance spread at or below which a block is
	// treated as flat.
	MinDynamicRange int
}

// DefaultHybridOptions returns 8 pixel blocks thresholded over a 5x5 block
// neighbourhood.
func DefaultHybridOptions() HybridOptions {
	return HybridOptions{BlockSize: 8, Radius: 2, MinDynamicRange: 24}
}

func (o HybridOptions) orDefault() HybridOptions {
	d := DefaultHybridOptions()
	if o.BlockSize <= 0 {
		o.BlockSize = d.BlockSize
	}
	if o.Radius <= 0 {
		o.Radius = d.Radius
	}
	if o.MinDynamicRange <= 0 {
		o.MinDynamicRange = d.MinDynamicRange
	}
	return o
}

// window is the side in pixels of the neighbourhood behind one threshold.
func (o HybridOptions) window() int {
	return o.BlockSize * (2*o.Radius + 1)
}

// Hybrid thresholds each block against the average black point of the
// surrounding blocks, which copes with shadows and gradients. Images smaller
// than one neighbourhood on a side fall back to Global.
type Hybrid struct {
	Global
	Options HybridOptions
	local   *bitutil.BitMatrix
}

// NewHybrid creates a Hybrid binarizer with default options.
func NewHybrid(source aztecgo.LuminanceSource) *Hybrid {
	return NewHybridWithOptions(source, DefaultHybridOptions())
}

// NewHybridWithOptions creates a Hybrid binarizer with the given options.
func NewHybridWithOptions(source aztecgo.LuminanceSource, opts HybridOptions) *Hybrid {
	return &Hybrid{Global: *NewGlobal(source), Options: opts}
}

// BlackMatrix returns the binarized matrix.
func (h *Hybrid) BlackMatrix() (*bitutil.BitMatrix, error) {
	if h.local != nil {
		return h.local, nil
	}
	opts := h.Options.orDefault()
	width, height := h.Width(), h.Height()
	if width < opts.window() || height < opts.window() {
		return h.Global.BlackMatrix()
	}

	luminances := h.source.Matrix()
	if !hasContrast(luminances) {
		return nil, ErrLowContrast
	}
	g := newBlockGrid(luminances, width, height, opts)
	h.local = g.threshold(g.blackPoints())
	return h.local, nil
}

func hasContrast(luminances []byte) bool {
	for _, l := range luminances {
		if l != luminances[0] {
			return true
		}
	}
	return false
}

// blockGrid divides an image into square blocks. The last row and column of
// blocks are shifted inward so every block lies inside the image.
type blockGrid struct {
	lum           []byte
	width, height int
	cols, rows    int
	opts          HybridOptions
}

func newBlockGrid(lum []byte, width, height int, opts HybridOptions) *blockGrid {
	bs := opts.BlockSize
	return &blockGrid{
		lum:    lum,
		width:  width,
		height: height,
		cols:   (width + bs - 1) / bs,
		rows:   (height + bs - 1) / bs,
		opts:   opts,
	}
}

// origin returns the top-left pixel of block (x, y).
func (g *blockGrid) origin(x, y int) (int, int) {
	bs := g.opts.BlockSize
	return min(x*bs, g.width-bs), min(y*bs, g.height-bs)
}

// blackPoints estimates the black point of every block: its mean luminance,
// or for a flat block half its minimum raised to the black point of its
// upper and left neighbours when those are darker.
func (g *blockGrid) blackPoints() [][]int {
	bs := g.opts.BlockSize
	points := make([][]int, g.rows)
	for y := range points {
		points[y] = make([]int, g.cols)
		for x := range points[y] {
			ox, oy := g.origin(x, y)
			sum, lo, hi := 0, 0xFF, 0
			for yy := oy; yy < oy+bs; yy++ {
				for _, p := range g.lum[yy*g.width+ox : yy*g.width+ox+bs] {
					sum += int(p)
					lo = min(lo, int(p))
					hi = max(hi, int(p))
				}
			}
			if hi-lo > g.opts.MinDynamicRange {
				points[y][x] = sum / (bs * bs)
				continue
			}
			point := lo / 2
			if y > 0 && x > 0 {
				neighbours := (points[y-1][x] + 2*points[y][x-1] + points[y-1][x-1]) / 4
				if lo < neighbours {
					point = neighbours
				}
			}
			points[y][x] = point
		}
	}
	return points
}

// threshold marks every pixel at or below the mean black point of the
// (2r+1)^2 blocks around its block, clamped to the grid.
func (g *blockGrid) threshold(points [][]int) *bitutil.BitMatrix {
	bs, r := g.opts.BlockSize, g.opts.Radius
	n := (2*r + 1) * (2*r + 1)
	m := bitutil.NewBitMatrixWithSize(g.width, g.height)
	for y := 0; y < g.rows; y++ {
		top := min(max(y, r), g.rows-1-r)
		for x := 0; x < g.cols; x++ {
			left := min(max(x, r), g.cols-1-r)
			sum := 0
			for _, row := range points[top-r : top+r+1] {
				for _, p := range row[left-r : left+r+1] {
					sum += p
				}
			}
			threshold := sum / n
			ox, oy := g.origin(x, y)
			for yy := oy; yy < oy+bs; yy++ {
				for xx := ox; xx < ox+bs; xx++ {
					if int(g.lum[yy*g.width+xx]) <= threshold {
						m.Set(xx, yy)
					}
				}
			}
		}
	}
	return m
}
