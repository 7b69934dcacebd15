package aztectest

import (
	"fmt"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec/decoder"
	"github.com/ericlevine/aztecgo/bitutil"
	"github.com/ericlevine/aztecgo/reedsolomon"
)

// Spec chooses the size of a built symbol.
type Spec struct {
	Compact bool
	Layers  int
	// DataCodewords forces the data codeword count. The stuffed stream is
	// padded with all-ones codewords to reach it. Zero uses the stream
	// length.
	DataCodewords int
}

// Symbol is a built symbol and the values it was built from.
type Symbol struct {
	Matrix        *bitutil.BitMatrix
	Compact       bool
	Layers        int
	DataCodewords int
	// Codewords holds data then check codewords.
	Codewords   []int
	ModeMessage *bitutil.BitArray
}

// Metadata returns the symbol metadata a decoder should report.
func (s *Symbol) Metadata() aztecgo.SymbolMetadata {
	p := decoder.ParamsForCompact(s.Compact)
	return aztecgo.SymbolMetadata{
		Class:          p.Class,
		Layers:         s.Layers,
		DataCodewords:  s.DataCodewords,
		ModeECCBits:    s.ModeMessage.String()[4*p.ModeDataWords:],
		TotalCodewords: p.TotalCodewords(s.Layers),
		CodewordSize:   decoder.CodewordSize(s.Layers),
	}
}

// Build places stream in a symbol of the given size.
func Build(stream *bitutil.BitArray, spec Spec) (*Symbol, error) {
	p := decoder.ParamsForCompact(spec.Compact)
	cwSize := decoder.CodewordSize(spec.Layers)
	if spec.Layers < 1 || spec.Layers > p.MaxLayers {
		return nil, fmt.Errorf("aztectest: %d layers", spec.Layers)
	}
	words := stuffBits(stream, cwSize)
	data := spec.DataCodewords
	if data == 0 {
		data = len(words)
	}
	if len(words) > data {
		return nil, fmt.Errorf("aztectest: stream needs %d codewords, %d requested", len(words), data)
	}
	for len(words) < data {
		words = append(words, 1<<uint(cwSize)-2)
	}
	if err := p.Validate(spec.Layers, data); err != nil {
		return nil, err
	}

	total := p.TotalCodewords(spec.Layers)
	codewords := make([]int, total)
	copy(codewords, words)
	if total > data {
		field, err := reedsolomon.FieldForWordSize(cwSize)
		if err != nil {
			return nil, err
		}
		if err := reedsolomon.NewCodec(field).Encode(codewords, total-data); err != nil {
			return nil, err
		}
	}

	sym := &Symbol{
		Compact:       spec.Compact,
		Layers:        spec.Layers,
		DataCodewords: data,
		Codewords:     codewords,
		ModeMessage:   modeMessage(p, spec.Layers, data),
	}
	sym.Matrix = sym.draw(p)
	return sym, nil
}

// BuildText encodes text and places it in the smallest symbol, compact
// first, leaving about a third of the codewords for error correction.
func BuildText(text string) (*Symbol, error) {
	stream := EncodeText(text)
	for _, compact := range []bool{true, false} {
		p := decoder.ParamsForCompact(compact)
		for layers := 1; layers <= p.MaxLayers; layers++ {
			n := max(1, len(stuffBits(stream, decoder.CodewordSize(layers))))
			if 3*n <= 2*p.TotalCodewords(layers) {
				return Build(stream, Spec{Compact: compact, Layers: layers, DataCodewords: n})
			}
		}
	}
	return nil, fmt.Errorf("aztectest: %d bits do not fit any symbol", stream.Size())
}

// stuffBits splits bits into codewords, padding the last with ones. A
// codeword whose upper bits are all equal takes only cwSize-1 bits of the
// stream and gets the opposite bit appended.
func stuffBits(bits *bitutil.BitArray, cwSize int) []int {
	var words []int
	n := bits.Size()
	mask := 1<<uint(cwSize) - 2
	for i := 0; i < n; {
		word := 0
		for j := 0; j < cwSize; j++ {
			if i+j >= n || bits.Get(i+j) {
				word |= 1 << uint(cwSize-1-j)
			}
		}
		switch word & mask {
		case mask:
			words = append(words, word&mask)
			i += cwSize - 1
		case 0:
			words = append(words, word|1)
			i += cwSize - 1
		default:
			words = append(words, word)
			i += cwSize
		}
	}
	return words
}

func modeMessage(p *decoder.ClassParams, layers, data int) *bitutil.BitArray {
	info := bitutil.NewBitArray(0)
	info.AppendBits(uint32(layers-1), p.LayerBits)
	info.AppendBits(uint32(data-1), p.DataBits)
	words := make([]int, p.ModeWords())
	for i := 0; i < p.ModeDataWords; i++ {
		words[i] = info.Word(4*i, 4)
	}
	if err := reedsolomon.NewCodec(reedsolomon.AztecParam).Encode(words, p.ModeECCWords); err != nil {
		panic(err)
	}
	out := bitutil.NewBitArray(0)
	for _, w := range words {
		out.AppendBits(uint32(w), 4)
	}
	return out
}

// dataBits lays the codewords out as the data region stream, leading
// padding zeros included.
func (s *Symbol) dataBits(p *decoder.ClassParams) *bitutil.BitArray {
	cwSize := decoder.CodewordSize(s.Layers)
	out := bitutil.NewBitArray(0)
	out.AppendBits(0, p.TotalBits(s.Layers)%cwSize)
	for _, w := range s.Codewords {
		out.AppendBits(uint32(w), cwSize)
	}
	return out
}

func (s *Symbol) draw(p *decoder.ClassParams) *bitutil.BitMatrix {
	size := p.Dimension(s.Layers)
	m := bitutil.NewBitMatrix(size)
	bits := s.dataBits(p)
	p.WalkDataModules(s.Layers, func(offset, x, y int) {
		if bits.Get(offset) {
			m.Set(x, y)
		}
	})

	c := size / 2
	for i := 0; i < p.ModeBits(); i++ {
		if s.ModeMessage.Get(i) {
			m.Set(p.ModeModule(i, c))
		}
	}

	for r := 0; r <= p.BullseyeRadius; r += 2 {
		for j := c - r; j <= c+r; j++ {
			m.Set(j, c-r)
			m.Set(j, c+r)
			m.Set(c-r, j)
			m.Set(c+r, j)
		}
	}
	d := p.ModeRing()
	m.Set(c-d, c-d)
	m.Set(c-d+1, c-d)
	m.Set(c-d, c-d+1)
	m.Set(c+d, c-d)
	m.Set(c+d, c-d+1)
	m.Set(c+d, c+d-1)

	if !s.Compact {
		base := p.BaseSize(s.Layers)
		for i, j := 0, 0; i < base/2-1; i, j = i+15, j+16 {
			for k := c & 1; k < size; k += 2 {
				m.Set(c-j, k)
				m.Set(c+j, k)
				m.Set(k, c-j)
				m.Set(k, c+j)
			}
		}
	}
	return m
}

// CorruptCodeword inverts every module of codeword i (data codewords first,
// then check codewords) in the symbol matrix.
func (s *Symbol) CorruptCodeword(i int) {
	p := decoder.ParamsForCompact(s.Compact)
	cwSize := decoder.CodewordSize(s.Layers)
	first := p.TotalBits(s.Layers)%cwSize + i*cwSize
	p.WalkDataModules(s.Layers, func(offset, x, y int) {
		if offset >= first && offset < first+cwSize {
			s.Matrix.Flip(x, y)
		}
	})
}
