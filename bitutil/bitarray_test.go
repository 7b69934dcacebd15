package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitArrayGetSet(t *testing.T) {
	ba := NewBitArray(33)
	for i := 0; i < 33; i++ {
		require.False(t, ba.Get(i), "bit %d", i)
	}
	ba.Set(0)
	ba.Set(31)
	ba.Set(32)
	assert.True(t, ba.Get(0))
	assert.True(t, ba.Get(31))
	assert.True(t, ba.Get(32))
	assert.False(t, ba.Get(1))
	assert.False(t, ba.Get(30))

	ba.Flip(32)
	assert.False(t, ba.Get(32))
}

func TestBitArrayAppendBits(t *testing.T) {
	ba := NewBitArray(0)
	ba.AppendBits(0x5, 3)
	ba.AppendBit(false)
	ba.AppendBits(0x3FF, 10)
	assert.Equal(t, 14, ba.Size())
	assert.Equal(t, "10101111111111", ba.String())
	assert.Equal(t, 0x5, ba.Word(0, 3))
	assert.Equal(t, 0x3FF, ba.Word(4, 10))
}

func TestBitArrayAppendBitArrayGrows(t *testing.T) {
	a := ParseBitArray("1100")
	b := NewBitArray(0)
	for i := 0; i < 100; i++ {
		b.AppendBitArray(a)
	}
	require.Equal(t, 400, b.Size())
	assert.True(t, b.Get(396))
	assert.False(t, b.Get(399))
}

func TestParseBitArraySkipsSeparators(t *testing.T) {
	ba := ParseBitArray("0101 1100\n01")
	assert.Equal(t, "0101110001", ba.String())
	assert.True(t, ba.Equals(ParseBitArray("0101110001")))
	assert.False(t, ba.Equals(ParseBitArray("010111000")))
}

func TestBitArrayClone(t *testing.T) {
	ba := ParseBitArray("1010")
	c := ba.Clone()
	c.Flip(1)
	assert.Equal(t, "1010", ba.String())
	assert.Equal(t, "1110", c.String())
}

func TestBitSource(t *testing.T) {
	bs := NewBitSource(ParseBitArray("11111 00010 111"))
	v, err := bs.ReadBits(5)
	require.NoError(t, err)
	assert.Equal(t, 31, v)
	v, err = bs.ReadBits(5)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 10, bs.Offset())
	assert.Equal(t, 3, bs.Available())
	assert.True(t, bs.OnesFrom(10))
	assert.False(t, bs.OnesFrom(5))

	_, err = bs.ReadBits(4)
	assert.ErrorIs(t, err, ErrShortRead)
	assert.Equal(t, 10, bs.Offset())

	_, err = bs.ReadBits(0)
	assert.Error(t, err)

	bs.Skip()
	assert.Zero(t, bs.Available())
}
