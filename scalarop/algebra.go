package scalarop

// Added is a lazy sum of scalar expressions. Value is the sum of the terms'
// values; updates recurse into every non-constant term.
type Added struct {
	terms []Operator
}

// Add builds the lazy sum of the given scalars. Nested sums are flattened
// into a single node, so Add(Add(a, b), c) and Add(a, b, c) are the same
// expression. A single operand is returned as-is.
func Add(terms ...Operator) (Operator, error) {
	flat, err := flatten(terms, func(op Operator) []Operator {
		if a, ok := op.(*Added); ok {
			return a.terms
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(flat) == 1 {
		return flat[0], nil
	}

	return &Added{terms: flat}, nil
}

// Value returns the sum of all term values.
func (a *Added) Value() float64 {
	var sum float64
	for _, t := range a.terms {
		sum += t.Value()
	}

	return sum
}

// IsConstant reports whether every term is constant.
func (a *Added) IsConstant() bool {
	for _, t := range a.terms {
		if !t.IsConstant() {
			return false
		}
	}

	return true
}

// IsZero reports whether the current sum is exactly zero.
func (a *Added) IsZero() bool { return a.Value() == 0 }

// Update returns a sum with every term refreshed. Constant sums return the
// receiver unchanged.
func (a *Added) Update(state []float64, param any, tm float64) (Operator, error) {
	if a.IsConstant() {
		return a, nil
	}
	terms := make([]Operator, len(a.terms))
	for i, t := range a.terms {
		nt, err := t.Update(state, param, tm)
		if err != nil {
			return nil, err
		}
		terms[i] = nt
	}

	return &Added{terms: terms}, nil
}

// UpdateInPlace refreshes every term of the receiver.
func (a *Added) UpdateInPlace(state []float64, param any, tm float64) error {
	for _, t := range a.terms {
		if err := t.UpdateInPlace(state, param, tm); err != nil {
			return err
		}
	}

	return nil
}

// Clone deep-copies every term.
func (a *Added) Clone() Operator {
	return &Added{terms: cloneAll(a.terms)}
}

// Composed is a lazy product of scalar expressions. Value is the product of
// the factors' values.
type Composed struct {
	factors []Operator
}

// Mul builds the lazy product of the given scalars. Nested products are
// flattened into a single node. A single operand is returned as-is.
func Mul(factors ...Operator) (Operator, error) {
	flat, err := flatten(factors, func(op Operator) []Operator {
		if c, ok := op.(*Composed); ok {
			return c.factors
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(flat) == 1 {
		return flat[0], nil
	}

	return &Composed{factors: flat}, nil
}

// Negate returns the expression scaled by -1.
func Negate(s Operator) (Operator, error) {
	return Mul(New(-1), s)
}

// Value returns the product of all factor values.
func (c *Composed) Value() float64 {
	prod := 1.0
	for _, f := range c.factors {
		prod *= f.Value()
	}

	return prod
}

// IsConstant reports whether every factor is constant.
func (c *Composed) IsConstant() bool {
	for _, f := range c.factors {
		if !f.IsConstant() {
			return false
		}
	}

	return true
}

// IsZero reports whether the current product is exactly zero.
func (c *Composed) IsZero() bool { return c.Value() == 0 }

// Update returns a product with every factor refreshed. Constant products
// return the receiver unchanged.
func (c *Composed) Update(state []float64, param any, tm float64) (Operator, error) {
	if c.IsConstant() {
		return c, nil
	}
	factors := make([]Operator, len(c.factors))
	for i, f := range c.factors {
		nf, err := f.Update(state, param, tm)
		if err != nil {
			return nil, err
		}
		factors[i] = nf
	}

	return &Composed{factors: factors}, nil
}

// UpdateInPlace refreshes every factor of the receiver.
func (c *Composed) UpdateInPlace(state []float64, param any, tm float64) error {
	for _, f := range c.factors {
		if err := f.UpdateInPlace(state, param, tm); err != nil {
			return err
		}
	}

	return nil
}

// Clone deep-copies every factor.
func (c *Composed) Clone() Operator {
	return &Composed{factors: cloneAll(c.factors)}
}

// Inverted is the lazy reciprocal of a scalar expression. Value divides by
// the inner value under IEEE semantics, so an inner value that updated to
// zero yields ±Inf; consuming operators reject that at solve time.
type Inverted struct {
	inner Operator
}

// Invert returns the lazy reciprocal of s. Inverting a constant zero fails
// with ErrZeroScalar; inverting an Inverted collapses to its inner scalar.
func Invert(s Operator) (Operator, error) {
	if s == nil {
		return nil, ErrNilScalar
	}
	if s.IsConstant() && s.Value() == 0 {
		return nil, ErrZeroScalar
	}
	if inv, ok := s.(*Inverted); ok {
		return inv.inner, nil
	}

	return &Inverted{inner: s}, nil
}

// Div returns num/den as a lazy product num · den⁻¹.
func Div(num, den Operator) (Operator, error) {
	inv, err := Invert(den)
	if err != nil {
		return nil, err
	}

	return Mul(num, inv)
}

// Value returns the reciprocal of the inner value.
func (v *Inverted) Value() float64 { return 1 / v.inner.Value() }

// IsConstant reports whether the inner expression is constant.
func (v *Inverted) IsConstant() bool { return v.inner.IsConstant() }

// IsZero reports whether the current reciprocal is exactly zero (only
// possible when the inner value is infinite).
func (v *Inverted) IsZero() bool { return v.Value() == 0 }

// Update returns a reciprocal with the inner expression refreshed.
func (v *Inverted) Update(state []float64, param any, tm float64) (Operator, error) {
	if v.inner.IsConstant() {
		return v, nil
	}
	ni, err := v.inner.Update(state, param, tm)
	if err != nil {
		return nil, err
	}

	return &Inverted{inner: ni}, nil
}

// UpdateInPlace refreshes the inner expression of the receiver.
func (v *Inverted) UpdateInPlace(state []float64, param any, tm float64) error {
	return v.inner.UpdateInPlace(state, param, tm)
}

// Clone deep-copies the inner expression.
func (v *Inverted) Clone() Operator {
	return &Inverted{inner: v.inner.Clone()}
}

// cloneAll deep-copies a slice of expressions.
func cloneAll(ops []Operator) []Operator {
	next := make([]Operator, len(ops))
	for i, op := range ops {
		next[i] = op.Clone()
	}

	return next
}

// flatten validates operands and splices children extracted by explode
// (nil for non-matching kinds) into a single slice.
func flatten(ops []Operator, explode func(Operator) []Operator) ([]Operator, error) {
	if len(ops) == 0 {
		return nil, ErrNoOperands
	}
	flat := make([]Operator, 0, len(ops))
	for _, op := range ops {
		if op == nil {
			return nil, ErrNilScalar
		}
		if children := explode(op); children != nil {
			flat = append(flat, children...)
			continue
		}
		flat = append(flat, op)
	}

	return flat, nil
}
