package reedsolomon

import (
	"fmt"
	"sync"
)

type generatorCache struct {
	mu   sync.Mutex
	gens []*poly
}

// generator returns prod_{i<degree} (x - alpha^(i+base)).
func (c *Codec) generator(degree int) *poly {
	c.gens.mu.Lock()
	defer c.gens.mu.Unlock()
	if len(c.gens.gens) == 0 {
		c.gens.gens = append(c.gens.gens, c.field.one)
	}
	for d := len(c.gens.gens); d <= degree; d++ {
		last := c.gens.gens[d-1]
		next := last.multiply(newPoly(c.field, []int{1, c.field.Exp(d - 1 + c.field.generatorBase)}))
		c.gens.gens = append(c.gens.gens, next)
	}
	return c.gens.gens[degree]
}

// Encode overwrites the last ecCount values of toEncode with check
// codewords computed from the values before them.
func (c *Codec) Encode(toEncode []int, ecCount int) error {
	if ecCount <= 0 {
		return fmt.Errorf("reedsolomon: no check codewords requested")
	}
	dataCount := len(toEncode) - ecCount
	if dataCount <= 0 {
		return fmt.Errorf("reedsolomon: no data codewords")
	}
	info := newPoly(c.field, append([]int(nil), toEncode[:dataCount]...))
	info = info.multiplyByMonomial(ecCount, 1)
	_, remainder := info.divide(c.generator(ecCount))
	coefficients := remainder.coefficients
	numZero := ecCount - len(coefficients)
	for i := 0; i < numZero; i++ {
		toEncode[dataCount+i] = 0
	}
	copy(toEncode[dataCount+numZero:], coefficients)
	return nil
}
