package reedsolomon

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codecCase struct {
	name  string
	field *Field
	total int
	ec    int
}

var codecCases = []codecCase{
	{"mode compact", AztecParam, 7, 5},
	{"mode full", AztecParam, 10, 6},
	{"data 6-bit", AztecData6, 40, 14},
	{"data 8-bit", AztecData8, 76, 30},
	{"data 10-bit", AztecData10, 300, 90},
	{"data 12-bit", AztecData12, 600, 120},
}

// encoded returns a valid codeword sequence whose data part is derived from
// seed.
func encoded(t testing.TB, c codecCase, rng *rand.Rand) []int {
	words := make([]int, c.total)
	for i := 0; i < c.total-c.ec; i++ {
		words[i] = rng.Intn(c.field.Size())
	}
	require.NoError(t, NewCodec(c.field).Encode(words, c.ec))
	return words
}

// corrupt flips n distinct positions of words to different values.
func corrupt(words []int, n int, size int, rng *rand.Rand) []int {
	out := append([]int(nil), words...)
	for _, p := range rng.Perm(len(words))[:n] {
		out[p] ^= 1 + rng.Intn(size-1)
	}
	return out
}

func TestModeMessageCheckWords(t *testing.T) {
	// compact, 3 layers, 21 data codewords
	words := []int{9, 4, 0, 0, 0, 0, 0}
	require.NoError(t, NewCodec(AztecParam).Encode(words, 5))
	assert.Equal(t, []int{9, 4, 5, 5, 4, 10, 8}, words)
}

func TestDecodeNoErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, c := range codecCases {
		t.Run(c.name, func(t *testing.T) {
			words := encoded(t, c, rng)
			received := append([]int(nil), words...)
			n, err := NewCodec(c.field).Decode(received, c.ec)
			require.NoError(t, err)
			assert.Zero(t, n)
			assert.Equal(t, words, received)
			assert.NoError(t, NewCodec(c.field).Check(received, c.ec))
		})
	}
}

func TestDecodeCorrectsUpToCapacity(t *testing.T) {
	for _, c := range codecCases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			codec := NewCodec(c.field)
			properties := gopter.NewProperties(nil)
			properties.Property("up to ec/2 errors are corrected", prop.ForAll(
				func(seed int64, errs int) bool {
					rng := rand.New(rand.NewSource(seed))
					words := encoded(t, c, rng)
					received := corrupt(words, errs, c.field.Size(), rng)
					n, err := codec.Decode(received, c.ec)
					if err != nil || n != errs {
						return false
					}
					for i := range words {
						if words[i] != received[i] {
							return false
						}
					}
					return true
				},
				gen.Int64(),
				gen.IntRange(0, c.ec/2),
			))
			properties.TestingRun(t)
		})
	}
}

func TestDecodeNeverReturnsOriginalBeyondCapacity(t *testing.T) {
	for _, c := range codecCases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			codec := NewCodec(c.field)
			properties := gopter.NewProperties(nil)
			properties.Property("ec/2+1 errors fail or land on another codeword", prop.ForAll(
				func(seed int64) bool {
					rng := rand.New(rand.NewSource(seed))
					words := encoded(t, c, rng)
					received := corrupt(words, c.ec/2+1, c.field.Size(), rng)
					before := append([]int(nil), received...)
					if _, err := codec.Decode(received, c.ec); err != nil {
						// failed decodes leave the input untouched
						for i := range before {
							if before[i] != received[i] {
								return false
							}
						}
						return true
					}
					same := true
					for i := range words {
						if words[i] != received[i] {
							same = false
						}
					}
					return !same && codec.Check(received, c.ec) == nil
				},
				gen.Int64(),
			))
			properties.TestingRun(t)
		})
	}
}

func TestDecodeRejectsConstructedWorstCases(t *testing.T) {
	tests := []struct {
		name      string
		field     *Field
		total, ec int
		positions []int
		values    []int
	}{
		{"mode compact", AztecParam, 7, 5, []int{0, 1, 2}, []int{1, 2, 3}},
		{"mode full", AztecParam, 10, 6, []int{0, 3, 6, 9}, []int{15, 15, 15, 15}},
		{"data 6-bit", AztecData6, 17, 8, []int{1, 2, 3, 4, 5}, []int{63, 1, 2, 3, 4}},
		{"data 8-bit", AztecData8, 20, 10, []int{0, 2, 4, 6, 8, 10}, []int{255, 1, 128, 7, 9, 200}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			codec := NewCodec(tc.field)
			words := make([]int, tc.total)
			for i := 0; i < tc.total-tc.ec; i++ {
				words[i] = (i*7 + 3) % tc.field.Size()
			}
			require.NoError(t, codec.Encode(words, tc.ec))
			for i, p := range tc.positions {
				words[p] ^= tc.values[i]
			}
			_, err := codec.Decode(words, tc.ec)
			assert.ErrorIs(t, err, ErrUncorrectable)
		})
	}
}

func TestDecodeStatisticallyRejectsBeyondCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, c := range codecCases {
		t.Run(c.name, func(t *testing.T) {
			codec := NewCodec(c.field)
			failures := 0
			const trials = 300
			for i := 0; i < trials; i++ {
				received := corrupt(encoded(t, c, rng), c.ec/2+1, c.field.Size(), rng)
				if _, err := codec.Decode(received, c.ec); err != nil {
					failures++
				}
			}
			assert.GreaterOrEqual(t, failures, trials*9/10)
		})
	}
}

func TestCheckRejectsSingleError(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, c := range codecCases {
		t.Run(c.name, func(t *testing.T) {
			words := encoded(t, c, rng)
			received := corrupt(words, 1, c.field.Size(), rng)
			before := append([]int(nil), received...)
			err := NewCodec(c.field).Check(received, c.ec)
			assert.ErrorIs(t, err, ErrUncorrectable)
			assert.Equal(t, before, received)
		})
	}
}

func TestDecodeRejectsBadArguments(t *testing.T) {
	codec := NewCodec(AztecParam)
	_, err := codec.Decode([]int{1, 2, 3}, 0)
	assert.Error(t, err)
	_, err = codec.Decode([]int{1, 2, 3}, 3)
	assert.Error(t, err)
	_, err = codec.Decode([]int{1, 2, 16, 0}, 2)
	assert.ErrorIs(t, err, ErrUncorrectable)
	assert.Error(t, codec.Encode([]int{1, 2}, 2))
}

func TestFieldArithmetic(t *testing.T) {
	for _, f := range []*Field{AztecParam, AztecData6, AztecData8, AztecData10, AztecData12} {
		t.Run(f.String(), func(t *testing.T) {
			assert.Equal(t, 1, f.GeneratorBase())
			for a := 1; a < f.Size(); a++ {
				require.Equal(t, 1, f.Multiply(a, f.Inverse(a)), "a=%d", a)
				require.Equal(t, a, f.Exp(f.Log(a)))
			}
			assert.Zero(t, f.Multiply(0, 3))
		})
	}
}

func TestFieldForWordSize(t *testing.T) {
	for bits, want := range map[int]*Field{4: AztecParam, 6: AztecData6, 8: AztecData8, 10: AztecData10, 12: AztecData12} {
		got, err := FieldForWordSize(bits)
		require.NoError(t, err)
		assert.Same(t, want, got)
	}
	_, err := FieldForWordSize(5)
	assert.Error(t, err)
}

func TestPolyEvaluate(t *testing.T) {
	// p(x) = 2x + 3
	p := newPoly(AztecData8, []int{0, 0, 2, 3})
	assert.Equal(t, 1, p.degree())
	assert.Equal(t, 3, p.evaluateAt(0))
	assert.Equal(t, 2^3, p.evaluateAt(1))
	assert.Same(t, p, p.scale(1))
	assert.True(t, newPoly(AztecData8, []int{0, 0}).isZero())
}
