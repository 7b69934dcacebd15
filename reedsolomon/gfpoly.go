package reedsolomon

// poly is an immutable polynomial over a Field. Coefficients run from the
// highest degree term down to the constant term.
type poly struct {
	field        *Field
	coefficients []int
}

func newPoly(field *Field, coefficients []int) *poly {
	lead := 0
	for lead < len(coefficients)-1 && coefficients[lead] == 0 {
		lead++
	}
	if lead > 0 {
		coefficients = append([]int(nil), coefficients[lead:]...)
	}
	return &poly{field: field, coefficients: coefficients}
}

func (p *poly) degree() int {
	return len(p.coefficients) - 1
}

func (p *poly) isZero() bool {
	return p.coefficients[0] == 0
}

// coefficient returns the coefficient of x^d.
func (p *poly) coefficient(d int) int {
	return p.coefficients[len(p.coefficients)-1-d]
}

func (p *poly) evaluateAt(a int) int {
	if a == 0 {
		return p.coefficient(0)
	}
	result := 0
	if a == 1 {
		for _, c := range p.coefficients {
			result ^= c
		}
		return result
	}
	for _, c := range p.coefficients {
		result = p.field.Multiply(a, result) ^ c
	}
	return result
}

func (p *poly) add(other *poly) *poly {
	if p.isZero() {
		return other
	}
	if other.isZero() {
		return p
	}
	small, large := p.coefficients, other.coefficients
	if len(small) > len(large) {
		small, large = large, small
	}
	sum := make([]int, len(large))
	diff := len(large) - len(small)
	copy(sum, large[:diff])
	for i := diff; i < len(large); i++ {
		sum[i] = small[i-diff] ^ large[i]
	}
	return newPoly(p.field, sum)
}

func (p *poly) multiply(other *poly) *poly {
	if p.isZero() || other.isZero() {
		return p.field.zero
	}
	product := make([]int, len(p.coefficients)+len(other.coefficients)-1)
	for i, a := range p.coefficients {
		for j, b := range other.coefficients {
			product[i+j] ^= p.field.Multiply(a, b)
		}
	}
	return newPoly(p.field, product)
}

func (p *poly) scale(scalar int) *poly {
	switch scalar {
	case 0:
		return p.field.zero
	case 1:
		return p
	}
	product := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, scalar)
	}
	return newPoly(p.field, product)
}

// multiplyByMonomial returns p * coefficient * x^d.
func (p *poly) multiplyByMonomial(d, coefficient int) *poly {
	if coefficient == 0 {
		return p.field.zero
	}
	product := make([]int, len(p.coefficients)+d)
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return newPoly(p.field, product)
}

// divide returns the quotient and remainder of p / other.
func (p *poly) divide(other *poly) (quotient, remainder *poly) {
	quotient = p.field.zero
	remainder = p
	inverseLead := p.field.Inverse(other.coefficient(other.degree()))
	for remainder.degree() >= other.degree() && !remainder.isZero() {
		d := remainder.degree() - other.degree()
		scale := p.field.Multiply(remainder.coefficient(remainder.degree()), inverseLead)
		quotient = quotient.add(p.field.monomial(d, scale))
		remainder = remainder.add(other.multiplyByMonomial(d, scale))
	}
	return quotient, remainder
}
