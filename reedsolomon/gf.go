// Package reedsolomon implements Reed-Solomon error correction over binary
// extension fields GF(2^m).
package reedsolomon

import "fmt"

// Field is a Galois field GF(size) built from a primitive polynomial.
// Fields are immutable after construction and safe for concurrent use.
type Field struct {
	expTable      []int
	logTable      []int
	zero          *poly
	one           *poly
	size          int
	primitive     int
	generatorBase int
}

// Aztec fields. The mode message uses 4-bit codewords, data regions use 6,
// 8, 10 or 12 bits depending on the layer count.
var (
	AztecParam  = NewField(0x0013, 16, 1)   // x^4 + x + 1
	AztecData6  = NewField(0x0043, 64, 1)   // x^6 + x + 1
	AztecData8  = NewField(0x012D, 256, 1)  // x^8 + x^5 + x^3 + x^2 + 1
	AztecData10 = NewField(0x0409, 1024, 1) // x^10 + x^3 + 1
	AztecData12 = NewField(0x1069, 4096, 1) // x^12 + x^6 + x^5 + x^3 + 1
)

// FieldForWordSize returns the Aztec field for codewords of the given bit
// width.
func FieldForWordSize(bits int) (*Field, error) {
	switch bits {
	case 4:
		return AztecParam, nil
	case 6:
		return AztecData6, nil
	case 8:
		return AztecData8, nil
	case 10:
		return AztecData10, nil
	case 12:
		return AztecData12, nil
	}
	return nil, fmt.Errorf("reedsolomon: no field for %d-bit codewords", bits)
}

// NewField creates GF(size) from the given primitive polynomial. Generator
// polynomial roots start at alpha^generatorBase.
func NewField(primitive, size, generatorBase int) *Field {
	f := &Field{
		primitive:     primitive,
		size:          size,
		generatorBase: generatorBase,
		expTable:      make([]int, size),
		logTable:      make([]int, size),
	}

	x := 1
	for i := 0; i < size; i++ {
		f.expTable[i] = x
		x <<= 1
		if x >= size {
			x ^= primitive
			x &= size - 1
		}
	}
	for i := 0; i < size-1; i++ {
		f.logTable[f.expTable[i]] = i
	}

	f.zero = newPoly(f, []int{0})
	f.one = newPoly(f, []int{1})
	return f
}

func (f *Field) monomial(degree, coefficient int) *poly {
	if coefficient == 0 {
		return f.zero
	}
	coefficients := make([]int, degree+1)
	coefficients[0] = coefficient
	return newPoly(f, coefficients)
}

// Exp returns alpha^a.
func (f *Field) Exp(a int) int {
	return f.expTable[a]
}

// Log returns log_alpha(a). a must be non-zero.
func (f *Field) Log(a int) int {
	if a == 0 {
		panic("reedsolomon: log(0)")
	}
	return f.logTable[a]
}

// Inverse returns the multiplicative inverse of a. a must be non-zero.
func (f *Field) Inverse(a int) int {
	if a == 0 {
		panic("reedsolomon: inverse(0)")
	}
	return f.expTable[f.size-f.logTable[a]-1]
}

// Multiply returns a * b.
func (f *Field) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.expTable[(f.logTable[a]+f.logTable[b])%(f.size-1)]
}

// Size returns the number of field elements.
func (f *Field) Size() int { return f.size }

// GeneratorBase returns the exponent of the first generator root.
func (f *Field) GeneratorBase() int { return f.generatorBase }

// String returns a string representation.
func (f *Field) String() string {
	return fmt.Sprintf("GF(0x%x,%d)", f.primitive, f.size)
}
