// Package bitutil provides bit containers used by the sampler and decoders.
package bitutil

import "strings"

// BitArray is a growable array of bits packed into uint32 words.
type BitArray struct {
	bits []uint32
	size int
}

// NewBitArray creates a new BitArray with the given size, all bits unset.
func NewBitArray(size int) *BitArray {
	if size <= 0 {
		return &BitArray{}
	}
	return &BitArray{bits: makeArray(size), size: size}
}

// ParseBitArray builds a BitArray from a string of '0' and '1'. Any other
// character is skipped, so "0101 1100" is accepted.
func ParseBitArray(s string) *BitArray {
	ba := &BitArray{}
	for _, c := range s {
		switch c {
		case '0':
			ba.AppendBit(false)
		case '1':
			ba.AppendBit(true)
		}
	}
	return ba
}

// Size returns the number of bits in the array.
func (ba *BitArray) Size() int {
	return ba.size
}

func (ba *BitArray) ensureCapacity(newSize int) {
	if newSize > len(ba.bits)*32 {
		newBits := makeArray(newSize + newSize/3)
		copy(newBits, ba.bits)
		ba.bits = newBits
	}
}

// Get returns true if bit i is set.
func (ba *BitArray) Get(i int) bool {
	return (ba.bits[i/32] & (1 << uint(i&0x1F))) != 0
}

// Set sets bit i.
func (ba *BitArray) Set(i int) {
	ba.bits[i/32] |= 1 << uint(i&0x1F)
}

// Flip flips bit i.
func (ba *BitArray) Flip(i int) {
	ba.bits[i/32] ^= 1 << uint(i&0x1F)
}

// AppendBit appends a single bit.
func (ba *BitArray) AppendBit(bit bool) {
	ba.ensureCapacity(ba.size + 1)
	if bit {
		ba.bits[ba.size/32] |= 1 << uint(ba.size&0x1F)
	}
	ba.size++
}

// AppendBits appends the least-significant numBits bits of value, from most
// significant to least significant.
func (ba *BitArray) AppendBits(value uint32, numBits int) {
	if numBits < 0 || numBits > 32 {
		panic("bitarray: numBits must be between 0 and 32")
	}
	ba.ensureCapacity(ba.size + numBits)
	for left := numBits - 1; left >= 0; left-- {
		ba.AppendBit(value&(1<<uint(left)) != 0)
	}
}

// AppendBitArray appends another BitArray to this one.
func (ba *BitArray) AppendBitArray(other *BitArray) {
	ba.ensureCapacity(ba.size + other.size)
	for i := 0; i < other.size; i++ {
		ba.AppendBit(other.Get(i))
	}
}

// Word returns numBits bits starting at offset as an integer, most
// significant bit first.
func (ba *BitArray) Word(offset, numBits int) int {
	w := 0
	for i := offset; i < offset+numBits; i++ {
		w <<= 1
		if ba.Get(i) {
			w |= 1
		}
	}
	return w
}

// Clone returns a copy of this BitArray.
func (ba *BitArray) Clone() *BitArray {
	b := make([]uint32, len(ba.bits))
	copy(b, ba.bits)
	return &BitArray{bits: b, size: ba.size}
}

// Equals reports whether both arrays hold the same bits.
func (ba *BitArray) Equals(other *BitArray) bool {
	if ba.size != other.size {
		return false
	}
	for i := 0; i < ba.size; i++ {
		if ba.Get(i) != other.Get(i) {
			return false
		}
	}
	return true
}

// String returns the bits as '0' and '1' characters.
func (ba *BitArray) String() string {
	var sb strings.Builder
	sb.Grow(ba.size)
	for i := 0; i < ba.size; i++ {
		if ba.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func makeArray(size int) []uint32 {
	return make([]uint32, (size+31)/32)
}
