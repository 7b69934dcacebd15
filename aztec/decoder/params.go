// Package decoder reads the mode message and data region of a located Aztec
// symbol and decodes the resulting character stream.
//
// Symbol geometry is driven by a per class configuration record, ClassParams,
// so the compact and full variants share every code path.
package decoder

import (
	"fmt"

	aztecgo "github.com/ericlevine/aztecgo"
)

// ClassParams holds the fixed geometry of one symbol class.
type ClassParams struct {
	Class aztecgo.SymbolClass

	// BullseyeRadius is the Chebyshev distance of the outermost dark
	// finder ring; the mode ring sits one module further out.
	BullseyeRadius int
	MaxLayers      int

	ModeDataWords int
	ModeECCWords  int
	LayerBits     int // mode message bits holding layers-1
	DataBits      int // mode message bits holding data codewords-1

	baseSize    int // symbol side without layers or reference grid
	layerBase   int // bits per layer is (layerBase + 16*layers) per layer count
	sideModules int // modules per side of the outermost layer, less 4 per layer
}

var (
	compactParams = &ClassParams{
		Class:          aztecgo.Compact,
		BullseyeRadius: 4,
		MaxLayers:      4,
		ModeDataWords:  2,
		ModeECCWords:   5,
		LayerBits:      2,
		DataBits:       6,
		baseSize:       11,
		layerBase:      88,
		sideModules:    9,
	}
	fullParams = &ClassParams{
		Class:          aztecgo.Full,
		BullseyeRadius: 6,
		MaxLayers:      32,
		ModeDataWords:  4,
		ModeECCWords:   6,
		LayerBits:      5,
		DataBits:       11,
		baseSize:       14,
		layerBase:      112,
		sideModules:    12,
	}
)

// ParamsFor returns the configuration record of class.
func ParamsFor(class aztecgo.SymbolClass) *ClassParams {
	if class == aztecgo.Compact {
		return compactParams
	}
	return fullParams
}

// ParamsForCompact is ParamsFor keyed by the compact flag.
func ParamsForCompact(compact bool) *ClassParams {
	if compact {
		return compactParams
	}
	return fullParams
}

// ModeRing is the Chebyshev distance of the mode message ring.
func (p *ClassParams) ModeRing() int { return p.BullseyeRadius + 1 }

// ModeGridSize is the side of the core grid holding bullseye and mode ring.
func (p *ClassParams) ModeGridSize() int { return 2*p.ModeRing() + 1 }

// ModeWords is the number of 4 bit codewords in the mode message.
func (p *ClassParams) ModeWords() int { return p.ModeDataWords + p.ModeECCWords }

// BaseSize returns the symbol side before reference grid lines are added.
func (p *ClassParams) BaseSize(layers int) int {
	return p.baseSize + 4*layers
}

// Dimension returns the symbol side in modules, reference grid included.
func (p *ClassParams) Dimension(layers int) int {
	base := p.BaseSize(layers)
	if p.Class == aztecgo.Compact {
		return base
	}
	return base + 1 + 2*((base/2-1)/15)
}

// TotalBits returns the number of data region bits of a symbol.
func (p *ClassParams) TotalBits(layers int) int {
	return (p.layerBase + 16*layers) * layers
}

// CodewordSize returns the data codeword width in bits for a layer count.
func CodewordSize(layers int) int {
	switch {
	case layers <= 2:
		return 6
	case layers <= 8:
		return 8
	case layers <= 22:
		return 10
	default:
		return 12
	}
}

// TotalCodewords returns the number of whole codewords the data region holds.
func (p *ClassParams) TotalCodewords(layers int) int {
	return p.TotalBits(layers) / CodewordSize(layers)
}

// Validate checks a (layers, data codewords) pair against the layer table.
func (p *ClassParams) Validate(layers, dataCodewords int) error {
	if layers < 1 || layers > p.MaxLayers {
		return fmt.Errorf("%w: %s symbol with %d layers", aztecgo.ErrUnsupportedSymbolSize, p.Class, layers)
	}
	if total := p.TotalCodewords(layers); dataCodewords < 1 || dataCodewords > total {
		return fmt.Errorf("%w: %s symbol with %d layers holds 1..%d data codewords, got %d",
			aztecgo.ErrUnsupportedSymbolSize, p.Class, layers, total, dataCodewords)
	}
	return nil
}

// alignmentMap maps base coordinates onto symbol coordinates, skipping the
// reference grid lines of full symbols.
func (p *ClassParams) alignmentMap(layers int) []int {
	base := p.BaseSize(layers)
	m := make([]int, base)
	if p.Class == aztecgo.Compact {
		for i := range m {
			m[i] = i
		}
		return m
	}
	origCenter := base / 2
	center := p.Dimension(layers) / 2
	for i := 0; i < origCenter; i++ {
		newOffset := i + i/15
		m[origCenter-i-1] = center - newOffset - 1
		m[origCenter+i] = center + newOffset + 1
	}
	return m
}

// WalkDataModules calls fn with the stream offset and symbol coordinates of
// every data module, outermost layer first: left column downward, bottom row
// rightward, right column upward, top row leftward, each two modules deep.
func (p *ClassParams) WalkDataModules(layers int, fn func(offset, x, y int)) {
	am := p.alignmentMap(layers)
	base := p.BaseSize(layers)
	rowOffset := 0
	for i := 0; i < layers; i++ {
		rowSize := (layers-i)*4 + p.sideModules
		low := i * 2
		high := base - 1 - low
		for j := 0; j < rowSize; j++ {
			col := j * 2
			for k := 0; k < 2; k++ {
				fn(rowOffset+col+k, am[low+k], am[low+j])
				fn(rowOffset+2*rowSize+col+k, am[low+j], am[high-k])
				fn(rowOffset+4*rowSize+col+k, am[high-k], am[high-j])
				fn(rowOffset+6*rowSize+col+k, am[high-j], am[low+k])
			}
		}
		rowOffset += rowSize * 8
	}
}

// ModeModule returns the core grid coordinates of mode message bit i, for a
// grid whose center module is at (c, c).
func (p *ClassParams) ModeModule(i, c int) (x, y int) {
	d := p.ModeRing()
	per := p.ModeModulesPerSide()
	side, pos := i/per, i%per
	if side == 2 || side == 3 {
		pos = per - 1 - pos
	}
	offset := c - per/2 + pos
	if p.Class == aztecgo.Full {
		offset = c - 5 + pos + pos/5
	}
	switch side {
	case 0:
		return offset, c - d
	case 1:
		return c + d, offset
	case 2:
		return offset, c + d
	default:
		return c - d, offset
	}
}

// ModeBits is the length of the mode message in bits.
func (p *ClassParams) ModeBits() int { return 4 * p.ModeWords() }

// ModeModulesPerSide returns how many mode bits lie on each side.
func (p *ClassParams) ModeModulesPerSide() int { return p.ModeBits() / 4 }
