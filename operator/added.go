// SPDX-License-Identifier: MIT

package operator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/linop/scalarop"
)

// AddedOperator is an ordered sum of equal-shaped operators. Application
// accumulates every term into the output buffer through the fused
// multiply, so the sum itself needs no scratch. Solve is supported only
// when exactly one term is currently non-zero: the sum then collapses to
// that term. Anything else is reported (and fails) as not invertible.
type AddedOperator struct {
	terms []Operator
}

// Add builds the lazy sum of the given operators. Nested sums are
// flattened into a single node, so Add(Add(a, b), c) and Add(a, b, c) are
// the same expression. All terms must share dims; a single operand is
// returned as-is.
func Add(ops ...Operator) (Operator, error) {
	if err := validateOperands(ops); err != nil {
		return nil, operr("Add", err)
	}
	flat := make([]Operator, 0, len(ops))
	for _, op := range ops {
		if sum, ok := op.(*AddedOperator); ok {
			flat = append(flat, sum.terms...)
			continue
		}
		flat = append(flat, op)
	}
	r0, c0 := flat[0].Dims()
	for _, op := range flat[1:] {
		if r, c := op.Dims(); r != r0 || c != c0 {
			return nil, operr("Add", ErrShape)
		}
	}
	if len(flat) == 1 {
		return flat[0], nil
	}

	return &AddedOperator{terms: flat}, nil
}

// Sub builds the lazy difference a − b as a + (−1)·b.
func Sub(a, b Operator) (Operator, error) {
	if a == nil || b == nil {
		return nil, operr("Sub", ErrNilOperand)
	}
	neg, err := Scale(scalarop.New(-1), b)
	if err != nil {
		return nil, err
	}

	return Add(a, neg)
}

// Dims returns the shared dims of the terms.
func (l *AddedOperator) Dims() (r, c int) { return l.terms[0].Dims() }

// IsLinear reports whether every term is linear.
func (l *AddedOperator) IsLinear() bool { return allLinear(l.terms) }

// IsConstant reports whether every term is constant.
func (l *AddedOperator) IsConstant() bool { return allConstant(l.terms) }

// IsZero reports whether every term is currently zero.
func (l *AddedOperator) IsZero() bool {
	for _, op := range l.terms {
		if !op.IsZero() {
			return false
		}
	}

	return true
}

// HasAdjoint reports whether every term has an adjoint.
func (l *AddedOperator) HasAdjoint() bool { return allAdjoint(l.terms) }

// HasMul reports whether every term supports multiplication.
func (l *AddedOperator) HasMul() bool { return allMul(l.terms) }

// HasMulInPlace reports whether every term supports in-place multiply.
func (l *AddedOperator) HasMulInPlace() bool { return allMulInPlace(l.terms) }

// HasSolve reports whether the sum currently collapses to a single
// solvable term: exactly one term non-zero and that term solvable.
func (l *AddedOperator) HasSolve() bool {
	live, ok := l.soleTerm()

	return ok && live.HasSolve()
}

// HasSolveInPlace reports whether the sole non-zero term supports in-place
// solve on a square sum.
func (l *AddedOperator) HasSolveInPlace() bool {
	live, ok := l.soleTerm()

	return ok && live.HasSolveInPlace() && IsSquare(l)
}

// Update returns a sum with every term refreshed. Constant sums return the
// receiver unchanged.
func (l *AddedOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.IsConstant() {
		return l, nil
	}
	terms, err := updateAll(l.terms, state, param, tm)
	if err != nil {
		return nil, err
	}

	return &AddedOperator{terms: terms}, nil
}

// UpdateInPlace refreshes every term of the receiver.
func (l *AddedOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	return updateAllInPlace(l.terms, state, param, tm)
}

// Cache propagates the representative input to every term; the sum itself
// accumulates straight into dst and needs no scratch.
func (l *AddedOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("AddedOperator.Cache", err)
	}
	for _, op := range l.terms {
		if err := op.Cache(src); err != nil {
			return err
		}
	}

	return nil
}

// IsCached reports whether every term is cached.
func (l *AddedOperator) IsCached() bool { return allCached(l.terms) }

// cachedBatch folds the batch widths of the terms' caches.
func (l *AddedOperator) cachedBatch() (int, bool) { return foldCacheWidth(l.terms) }

// MulTo computes dst = Σ termᵢ·src, accumulated term by term.
func (l *AddedOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	return l.MulAddTo(dst, src, 1, 0)
}

// MulAddTo computes dst = alpha·(Σ termᵢ·src) + beta·dst. The first term
// applies the caller's beta; every further term accumulates with beta = 1.
func (l *AddedOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr("AddedOperator.MulAddTo", err)
	}
	if err := l.terms[0].MulAddTo(dst, src, alpha, beta); err != nil {
		return err
	}
	for _, op := range l.terms[1:] {
		if err := op.MulAddTo(dst, src, alpha, 1); err != nil {
			return err
		}
	}

	return nil
}

// SolveTo solves through the sole non-zero term. A sum with zero or more
// than one live term has no usable inverse here and fails.
func (l *AddedOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr("AddedOperator.SolveTo", err)
	}
	live, ok := l.soleTerm()
	if !ok {
		return operr("AddedOperator.SolveTo", ErrNotInvertible)
	}

	return live.SolveTo(dst, rhs)
}

// SolveInPlace solves through the sole non-zero term, overwriting rhs.
func (l *AddedOperator) SolveInPlace(rhs *mat.Dense) error {
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr("AddedOperator.SolveInPlace", err)
	}
	live, ok := l.soleTerm()
	if !ok {
		return operr("AddedOperator.SolveInPlace", ErrNotInvertible)
	}

	return live.SolveInPlace(rhs)
}

// Clone deep-copies every term.
func (l *AddedOperator) Clone() Operator {
	return &AddedOperator{terms: cloneAll(l.terms)}
}

// Resize propagates to every term.
func (l *AddedOperator) Resize(n int) error {
	for _, op := range l.terms {
		if err := op.Resize(n); err != nil {
			return err
		}
	}

	return nil
}

// soleTerm returns the single non-zero term, if the sum currently has
// exactly one. Zero terms may reappear after updates, so this is evaluated
// per call, never cached.
func (l *AddedOperator) soleTerm() (Operator, bool) {
	var live Operator
	for _, op := range l.terms {
		if op.IsZero() {
			continue
		}
		if live != nil {
			return nil, false
		}
		live = op
	}
	if live == nil {
		return nil, false
	}

	return live, true
}
