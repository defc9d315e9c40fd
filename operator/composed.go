// SPDX-License-Identifier: MIT

package operator

import "gonum.org/v1/gonum/mat"

// ComposedOperator is an ordered chain L₀∘L₁∘…∘Lₖ₋₁ applied right to left:
// the last factor consumes the input, each predecessor consumes the stage
// before it. Solve runs the chain in the opposite direction through each
// factor's own solve, so it requires every factor to be solvable.
//
// Stage buffers: one block per interior boundary, sized to that factor's
// output. Conformance makes the solve intermediates land on the same
// shapes — solving factor i produces a (cols(Lᵢ) × b) block and
// cols(Lᵢ) == rows(Lᵢ₊₁) — so the solve path reuses the multiply-stage
// buffers shifted by one instead of carrying a second family.
type ComposedOperator struct {
	factors []Operator
	stages  []*mat.Dense // stages[i] holds the output of factors[i]; index 0 unused
	batch   int
}

// Compose builds the lazy composition of the given operators, first
// operand outermost. Nested compositions are flattened into a single node.
// Adjacent factors must conform (cols of the left factor == rows of the
// right one); a single operand is returned as-is.
func Compose(ops ...Operator) (Operator, error) {
	if err := validateOperands(ops); err != nil {
		return nil, operr("Compose", err)
	}
	flat := make([]Operator, 0, len(ops))
	for _, op := range ops {
		if chain, ok := op.(*ComposedOperator); ok {
			flat = append(flat, chain.factors...)
			continue
		}
		flat = append(flat, op)
	}
	for i := 0; i < len(flat)-1; i++ {
		_, c := flat[i].Dims()
		r, _ := flat[i+1].Dims()
		if c != r {
			return nil, operr("Compose", ErrShape)
		}
	}
	if len(flat) == 1 {
		return flat[0], nil
	}

	return &ComposedOperator{factors: flat}, nil
}

// Dims returns (rows of the first factor, cols of the last).
func (l *ComposedOperator) Dims() (r, c int) {
	r, _ = l.factors[0].Dims()
	_, c = l.factors[len(l.factors)-1].Dims()

	return r, c
}

// IsLinear reports whether every factor is linear.
func (l *ComposedOperator) IsLinear() bool { return allLinear(l.factors) }

// IsConstant reports whether every factor is constant.
func (l *ComposedOperator) IsConstant() bool { return allConstant(l.factors) }

// IsZero reports whether any factor is currently zero: one zero factor
// annihilates the whole chain.
func (l *ComposedOperator) IsZero() bool {
	for _, op := range l.factors {
		if op.IsZero() {
			return true
		}
	}

	return false
}

// HasAdjoint reports whether every factor has an adjoint.
func (l *ComposedOperator) HasAdjoint() bool { return allAdjoint(l.factors) }

// HasMul reports whether every factor supports multiplication.
func (l *ComposedOperator) HasMul() bool { return allMul(l.factors) }

// HasMulInPlace reports whether every factor supports in-place multiply.
func (l *ComposedOperator) HasMulInPlace() bool { return allMulInPlace(l.factors) }

// HasSolve reports whether every factor is individually solvable.
func (l *ComposedOperator) HasSolve() bool {
	for _, op := range l.factors {
		if !op.HasSolve() {
			return false
		}
	}

	return true
}

// HasSolveInPlace reports whether every factor solves in place; that
// implies every member is square.
func (l *ComposedOperator) HasSolveInPlace() bool {
	for _, op := range l.factors {
		if !op.HasSolveInPlace() {
			return false
		}
	}

	return allSquare(l.factors)
}

// Update returns a chain with every factor refreshed. Constant chains
// return the receiver unchanged.
func (l *ComposedOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.IsConstant() {
		return l, nil
	}
	factors, err := updateAll(l.factors, state, param, tm)
	if err != nil {
		return nil, err
	}

	return &ComposedOperator{factors: factors}, nil
}

// UpdateInPlace refreshes every factor of the receiver, keeping the stage
// buffers alive.
func (l *ComposedOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	return updateAllInPlace(l.factors, state, param, tm)
}

// Cache allocates one stage buffer per interior boundary and caches every
// factor against the block it will consume: the last factor against the
// representative input, each predecessor against the freshly allocated
// stage to its right.
func (l *ComposedOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("ComposedOperator.Cache", err)
	}
	_, b := src.Dims()
	k := len(l.factors)
	stages := make([]*mat.Dense, k)
	for i := 1; i < k; i++ {
		r, _ := l.factors[i].Dims()
		stages[i] = mat.NewDense(r, b, nil)
	}
	if err := l.factors[k-1].Cache(src); err != nil {
		return err
	}
	for i := k - 2; i >= 0; i-- {
		if err := l.factors[i].Cache(stages[i+1]); err != nil {
			return err
		}
	}
	l.stages = stages
	l.batch = b

	return nil
}

// IsCached reports whether the stage buffers exist and every factor is
// cached.
func (l *ComposedOperator) IsCached() bool {
	return l.stages != nil && allCached(l.factors)
}

// cachedBatch reports the batch width the stage buffers were built for.
func (l *ComposedOperator) cachedBatch() (int, bool) {
	if l.stages == nil {
		return 0, false
	}

	return l.batch, true
}

// MulTo computes dst = L₀·(L₁·(…·(Lₖ₋₁·src))) through the stage buffers.
func (l *ComposedOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	return l.MulAddTo(dst, src, 1, 0)
}

// MulAddTo computes dst = alpha·(L₀∘…∘Lₖ₋₁)·src + beta·dst. Interior
// stages run plain multiplies; the blend happens once, at the outermost
// factor.
func (l *ComposedOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	const tag = "ComposedOperator.MulAddTo"
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr(tag, err)
	}
	batch, ok := l.cachedBatch()
	if err := validateBatch(batch, ok, src); err != nil {
		return operr(tag, err)
	}
	cur := src
	for i := len(l.factors) - 1; i >= 1; i-- {
		if err := l.factors[i].MulTo(l.stages[i], cur); err != nil {
			return err
		}
		cur = l.stages[i]
	}

	return l.factors[0].MulAddTo(dst, cur, alpha, beta)
}

// SolveTo computes dst = Lₖ₋₁⁻¹·(…·(L₀⁻¹·rhs)), walking the chain left to
// right through each factor's solve. The intermediates reuse the multiply
// stage buffers.
func (l *ComposedOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	const tag = "ComposedOperator.SolveTo"
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr(tag, err)
	}
	batch, ok := l.cachedBatch()
	if err := validateBatch(batch, ok, rhs); err != nil {
		return operr(tag, err)
	}
	k := len(l.factors)
	cur := rhs
	for i := 0; i < k-1; i++ {
		if err := l.factors[i].SolveTo(l.stages[i+1], cur); err != nil {
			return err
		}
		cur = l.stages[i+1]
	}

	return l.factors[k-1].SolveTo(dst, cur)
}

// SolveInPlace overwrites rhs factor by factor. Every member must be
// square: a rectangular member has no in-place stage even when the whole
// chain is square.
func (l *ComposedOperator) SolveInPlace(rhs *mat.Dense) error {
	const tag = "ComposedOperator.SolveInPlace"
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr(tag, err)
	}
	if !allSquare(l.factors) {
		return operr(tag, ErrNotSquare)
	}
	for _, op := range l.factors {
		if err := op.SolveInPlace(rhs); err != nil {
			return err
		}
	}

	return nil
}

// Clone deep-copies every factor; the clone carries no scratch.
func (l *ComposedOperator) Clone() Operator {
	return &ComposedOperator{factors: cloneAll(l.factors)}
}

// Resize propagates to every factor and re-derives the stage buffers for
// the recorded batch width when the chain was cached.
func (l *ComposedOperator) Resize(n int) error {
	for _, op := range l.factors {
		if err := op.Resize(n); err != nil {
			return err
		}
	}
	if l.stages != nil {
		for i := 1; i < len(l.factors); i++ {
			l.stages[i] = mat.NewDense(n, l.batch, nil)
		}
	}

	return nil
}
