package bitutil

import (
	"errors"
	"fmt"
)

// ErrShortRead is returned when more bits are requested than remain.
var ErrShortRead = errors.New("bitsource: not enough bits")

// BitSource reads a BitArray front to back. It never rewinds.
type BitSource struct {
	bits   *BitArray
	offset int
}

// NewBitSource creates a reader positioned at the first bit of bits.
func NewBitSource(bits *BitArray) *BitSource {
	return &BitSource{bits: bits}
}

// Offset returns the index of the next bit to be read.
func (bs *BitSource) Offset() int {
	return bs.offset
}

// Available returns the number of bits that can still be read.
func (bs *BitSource) Available() int {
	return bs.bits.Size() - bs.offset
}

// ReadBits reads numBits (1..32) bits, most significant first.
func (bs *BitSource) ReadBits(numBits int) (int, error) {
	if numBits < 1 || numBits > 32 {
		return 0, fmt.Errorf("bitsource: cannot read %d bits", numBits)
	}
	if numBits > bs.Available() {
		return 0, fmt.Errorf("%w: want %d, have %d", ErrShortRead, numBits, bs.Available())
	}
	v := bs.bits.Word(bs.offset, numBits)
	bs.offset += numBits
	return v, nil
}

// OnesFrom reports whether every bit from index start to the end is set.
func (bs *BitSource) OnesFrom(start int) bool {
	for i := start; i < bs.bits.Size(); i++ {
		if !bs.bits.Get(i) {
			return false
		}
	}
	return true
}

// Skip consumes the remaining bits.
func (bs *BitSource) Skip() {
	bs.offset = bs.bits.Size()
}
