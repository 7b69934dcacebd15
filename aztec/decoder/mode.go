package decoder

import (
	"fmt"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec/detector"
	"github.com/ericlevine/aztecgo/bitutil"
	"github.com/ericlevine/aztecgo/reedsolomon"
)

var modeCodec = reedsolomon.NewCodec(reedsolomon.AztecParam)

// DecodeMode samples the core grid of the symbol placed by mapping and
// decodes its mode message. Without autoCorrect any check word mismatch
// fails the decode.
func DecodeMode(image *bitutil.BitMatrix, mapping *detector.Mapping, autoCorrect bool) (*aztecgo.SymbolMetadata, error) {
	p := ParamsForCompact(mapping.Compact)
	grid, err := mapping.Sample(image, p.ModeGridSize())
	if err != nil {
		return nil, fmt.Errorf("%w: sampling mode ring: %v", aztecgo.ErrLocate, err)
	}
	meta, err := p.ParseMode(p.ReadModeBits(grid), autoCorrect)
	if err != nil {
		return nil, err
	}
	meta.Rotation = mapping.Rotation
	return meta, nil
}

// ReadModeBits reads the mode ring of a core grid (or of a whole symbol,
// the ring is found around the grid center) clockwise from the top side.
func (p *ClassParams) ReadModeBits(grid *bitutil.BitMatrix) *bitutil.BitArray {
	c := grid.Width() / 2
	bits := bitutil.NewBitArray(p.ModeBits())
	for i := 0; i < p.ModeBits(); i++ {
		if grid.Get(p.ModeModule(i, c)) {
			bits.Set(i)
		}
	}
	return bits
}

// ParseMode corrects a raw mode message and extracts the layer and data
// codeword counts.
func (p *ClassParams) ParseMode(bits *bitutil.BitArray, autoCorrect bool) (*aztecgo.SymbolMetadata, error) {
	words := make([]int, p.ModeWords())
	for i := range words {
		words[i] = bits.Word(4*i, 4)
	}
	var corrected int
	var err error
	if autoCorrect {
		corrected, err = modeCodec.Decode(words, p.ModeECCWords)
	} else {
		err = modeCodec.Check(words, p.ModeECCWords)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aztecgo.ErrModeDecode, err)
	}

	info := bitutil.NewBitArray(0)
	for _, w := range words[:p.ModeDataWords] {
		info.AppendBits(uint32(w), 4)
	}
	ecc := bitutil.NewBitArray(0)
	for _, w := range words[p.ModeDataWords:] {
		ecc.AppendBits(uint32(w), 4)
	}
	layers := info.Word(0, p.LayerBits) + 1
	data := info.Word(p.LayerBits, p.DataBits) + 1
	if err := p.Validate(layers, data); err != nil {
		return nil, fmt.Errorf("%w: %w", aztecgo.ErrModeDecode, err)
	}
	return &aztecgo.SymbolMetadata{
		Class:           p.Class,
		Layers:          layers,
		DataCodewords:   data,
		ModeECCBits:     ecc.String(),
		TotalCodewords:  p.TotalCodewords(layers),
		CodewordSize:    CodewordSize(layers),
		ErrorsCorrected: corrected,
	}, nil
}
