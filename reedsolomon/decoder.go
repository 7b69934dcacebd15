package reedsolomon

import (
	"errors"
	"fmt"
)

// ErrUncorrectable is returned when the received codewords contain more
// errors than the check codewords can correct, or the error pattern is
// inconsistent.
var ErrUncorrectable = errors.New("reedsolomon: uncorrectable codewords")

// Codec encodes and corrects codewords over one Field. A Codec is safe for
// concurrent use.
type Codec struct {
	field *Field
	gens  generatorCache
}

// NewCodec creates a Codec for the given field.
func NewCodec(field *Field) *Codec {
	return &Codec{field: field}
}

// Field returns the codec's field.
func (c *Codec) Field() *Field { return c.field }

// Decode corrects received in place and returns the number of codewords
// corrected. The last twoS values of received are check codewords. At most
// twoS/2 errors are corrected; anything the syndromes show to be beyond
// that fails with ErrUncorrectable and leaves received untouched.
func (c *Codec) Decode(received []int, twoS int) (int, error) {
	if err := c.validate(received, twoS); err != nil {
		return 0, err
	}
	syndromes, clean := c.syndromes(received, twoS)
	if clean {
		return 0, nil
	}

	sigma, omega, err := c.runEuclideanAlgorithm(c.field.monomial(twoS, 1), newPoly(c.field, syndromes), twoS)
	if err != nil {
		return 0, err
	}
	if sigma.degree() > twoS/2 {
		return 0, fmt.Errorf("%w: %d errors exceed capacity %d", ErrUncorrectable, sigma.degree(), twoS/2)
	}
	locations, err := c.findErrorLocations(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes := c.findErrorMagnitudes(omega, locations)

	corrected := append([]int(nil), received...)
	for i, loc := range locations {
		position := len(received) - 1 - c.field.Log(loc)
		if position < 0 {
			return 0, fmt.Errorf("%w: error location outside codewords", ErrUncorrectable)
		}
		corrected[position] ^= magnitudes[i]
	}
	if _, ok := c.syndromes(corrected, twoS); !ok {
		return 0, fmt.Errorf("%w: residual syndrome after correction", ErrUncorrectable)
	}
	copy(received, corrected)
	return len(locations), nil
}

// Check reports ErrUncorrectable when any syndrome of received is non-zero.
// It never modifies received.
func (c *Codec) Check(received []int, twoS int) error {
	if err := c.validate(received, twoS); err != nil {
		return err
	}
	if _, clean := c.syndromes(received, twoS); !clean {
		return fmt.Errorf("%w: non-zero syndrome", ErrUncorrectable)
	}
	return nil
}

func (c *Codec) validate(received []int, twoS int) error {
	if twoS <= 0 || twoS >= len(received) {
		return fmt.Errorf("reedsolomon: %d check codewords for %d codewords", twoS, len(received))
	}
	if len(received) >= c.field.size {
		return fmt.Errorf("reedsolomon: %d codewords exceed %s", len(received), c.field)
	}
	for _, v := range received {
		if v < 0 || v >= c.field.size {
			return fmt.Errorf("%w: codeword %d outside %s", ErrUncorrectable, v, c.field)
		}
	}
	return nil
}

// syndromes returns the syndrome coefficients, highest degree first, and
// whether all of them are zero.
func (c *Codec) syndromes(received []int, twoS int) ([]int, bool) {
	p := newPoly(c.field, received)
	coefficients := make([]int, twoS)
	clean := true
	for i := 0; i < twoS; i++ {
		eval := p.evaluateAt(c.field.Exp(i + c.field.generatorBase))
		coefficients[twoS-1-i] = eval
		if eval != 0 {
			clean = false
		}
	}
	return coefficients, clean
}

func (c *Codec) runEuclideanAlgorithm(a, b *poly, r int) (sigma, omega *poly, err error) {
	if a.degree() < b.degree() {
		a, b = b, a
	}

	rLast, rCur := a, b
	tLast, tCur := c.field.zero, c.field.one

	for 2*rCur.degree() >= r {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = rCur, tCur

		if rLast.isZero() {
			return nil, nil, fmt.Errorf("%w: euclidean remainder vanished", ErrUncorrectable)
		}
		rCur = rLastLast
		q := c.field.zero
		dltInverse := c.field.Inverse(rLast.coefficient(rLast.degree()))
		for rCur.degree() >= rLast.degree() && !rCur.isZero() {
			d := rCur.degree() - rLast.degree()
			scale := c.field.Multiply(rCur.coefficient(rCur.degree()), dltInverse)
			q = q.add(c.field.monomial(d, scale))
			rCur = rCur.add(rLast.multiplyByMonomial(d, scale))
		}
		tCur = q.multiply(tLast).add(tLastLast)

		if rCur.degree() >= rLast.degree() {
			return nil, nil, fmt.Errorf("%w: division did not reduce degree", ErrUncorrectable)
		}
	}

	sigmaTildeAtZero := tCur.coefficient(0)
	if sigmaTildeAtZero == 0 {
		return nil, nil, fmt.Errorf("%w: sigma tilde(0) is zero", ErrUncorrectable)
	}
	inverse := c.field.Inverse(sigmaTildeAtZero)
	return tCur.scale(inverse), rCur.scale(inverse), nil
}

// findErrorLocations runs a Chien search. The number of roots must equal the
// locator's degree.
func (c *Codec) findErrorLocations(locator *poly) ([]int, error) {
	numErrors := locator.degree()
	if numErrors == 1 {
		return []int{locator.coefficient(1)}, nil
	}
	result := make([]int, 0, numErrors)
	for i := 1; i < c.field.size && len(result) < numErrors; i++ {
		if locator.evaluateAt(i) == 0 {
			result = append(result, c.field.Inverse(i))
		}
	}
	if len(result) != numErrors {
		return nil, fmt.Errorf("%w: locator degree %d has %d roots", ErrUncorrectable, numErrors, len(result))
	}
	return result, nil
}

// findErrorMagnitudes applies Forney's formula.
func (c *Codec) findErrorMagnitudes(evaluator *poly, locations []int) []int {
	s := len(locations)
	result := make([]int, s)
	for i := 0; i < s; i++ {
		xiInverse := c.field.Inverse(locations[i])
		denominator := 1
		for j := 0; j < s; j++ {
			if i != j {
				// 1 + X_j/X_i; addition is xor.
				denominator = c.field.Multiply(denominator, 1^c.field.Multiply(locations[j], xiInverse))
			}
		}
		result[i] = c.field.Multiply(evaluator.evaluateAt(xiInverse), c.field.Inverse(denominator))
		if c.field.generatorBase != 0 {
			result[i] = c.field.Multiply(result[i], xiInverse)
		}
	}
	return result
}
