package decoder

import (
	"fmt"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec/detector"
	"github.com/ericlevine/aztecgo/bitutil"
	"github.com/ericlevine/aztecgo/reedsolomon"
)

// DataResult is the outcome of reading a data region.
type DataResult struct {
	// Bits holds the corrected, unstuffed data codeword bits.
	Bits *bitutil.BitArray
	// Raw holds the data region bits as sampled, before correction.
	Raw             *bitutil.BitArray
	ErrorsCorrected int
}

// DecodeData samples the whole symbol placed by mapping and returns the
// corrected data bits described by meta.
func DecodeData(image *bitutil.BitMatrix, mapping *detector.Mapping, meta *aztecgo.SymbolMetadata, autoCorrect bool) (*DataResult, error) {
	p := ParamsFor(meta.Class)
	if err := p.Validate(meta.Layers, meta.DataCodewords); err != nil {
		return nil, err
	}
	grid, err := mapping.Sample(image, p.Dimension(meta.Layers))
	if err != nil {
		return nil, fmt.Errorf("%w: sampling data region: %v", aztecgo.ErrLocate, err)
	}
	return p.CorrectBits(p.ExtractBits(grid, meta.Layers), meta.Layers, meta.DataCodewords, autoCorrect)
}

// ExtractBits reads the data region of a sampled symbol in stream order.
func (p *ClassParams) ExtractBits(grid *bitutil.BitMatrix, layers int) *bitutil.BitArray {
	raw := bitutil.NewBitArray(p.TotalBits(layers))
	p.WalkDataModules(layers, func(offset, x, y int) {
		if grid.Contains(x, y) && grid.Get(x, y) {
			raw.Set(offset)
		}
	})
	return raw
}

// CorrectBits packs raw data region bits into codewords, runs Reed-Solomon
// correction over them and unstuffs the data codewords.
func (p *ClassParams) CorrectBits(raw *bitutil.BitArray, layers, dataCodewords int, autoCorrect bool) (*DataResult, error) {
	if err := p.Validate(layers, dataCodewords); err != nil {
		return nil, err
	}
	cwSize := CodewordSize(layers)
	field, err := reedsolomon.FieldForWordSize(cwSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aztecgo.ErrUnsupportedSymbolSize, err)
	}
	total := p.TotalCodewords(layers)
	if raw.Size() < total*cwSize {
		return nil, fmt.Errorf("%w: %d bits cannot hold %d codewords", aztecgo.ErrUnsupportedSymbolSize, raw.Size(), total)
	}

	pad := raw.Size() % cwSize
	words := make([]int, total)
	for i := range words {
		words[i] = raw.Word(pad+i*cwSize, cwSize)
	}

	codec := reedsolomon.NewCodec(field)
	ecc := total - dataCodewords
	corrected := 0
	switch {
	case ecc == 0:
		// no check words to verify against
	case autoCorrect:
		corrected, err = codec.Decode(words, ecc)
	default:
		err = codec.Check(words, ecc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aztecgo.ErrUncorrectableData, err)
	}

	bits, err := unstuff(words[:dataCodewords], cwSize)
	if err != nil {
		return nil, err
	}
	return &DataResult{Bits: bits, Raw: raw, ErrorsCorrected: corrected}, nil
}

// unstuff expands data codewords into bits. A codeword of value 1 stands
// for cwSize-1 zeros and one of value 2^cwSize-2 for cwSize-1 ones; all
// zeros and all ones never occur in a valid symbol.
func unstuff(words []int, cwSize int) (*bitutil.BitArray, error) {
	mask := 1<<uint(cwSize) - 1
	bits := bitutil.NewBitArray(0)
	for i, w := range words {
		switch w {
		case 0, mask:
			return nil, fmt.Errorf("%w: illegal codeword %d at %d", aztecgo.ErrUncorrectableData, w, i)
		case 1:
			bits.AppendBits(0, cwSize-1)
		case mask - 1:
			bits.AppendBits(uint32(mask>>1), cwSize-1)
		default:
			bits.AppendBits(uint32(w), cwSize)
		}
	}
	return bits, nil
}
