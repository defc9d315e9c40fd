// SPDX-License-Identifier: MIT

package operator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/linop/scalarop"
)

// InvertedOperator represents inv(L) lazily: multiply is the wrapped
// operator's solve, solve is its multiply. No factorization happens here;
// each application pays the wrapped solve's cost. Pair the operator with a
// factorization via Factorize when the inverse is applied repeatedly.
type InvertedOperator struct {
	inner   Operator
	scratch *mat.Dense // (rows × batch) staging block for the blended forms
	batch   int
}

// Invert builds the lazy inverse of l. Provably zero operators are
// rejected here; everything else is checked lazily at apply time. Double
// inversion collapses to the original operator, the identity inverts to
// itself, and a scaled operator pushes the inversion onto its coefficient
// and its inner operator.
func Invert(l Operator) (Operator, error) {
	if err := validateOperand(l); err != nil {
		return nil, operr("Invert", err)
	}
	if l.IsZero() {
		return nil, operr("Invert", ErrNotInvertible)
	}
	switch t := l.(type) {
	case *IdentityOperator:
		return t, nil
	case *InvertedOperator:
		return t.inner, nil
	case *ScaledOperator:
		ic, err := scalarop.Invert(t.coeff)
		if err != nil {
			return nil, operr("Invert", ErrNotInvertible)
		}
		ii, err := Invert(t.inner)
		if err != nil {
			return nil, err
		}
		sc, err := Scale(ic, ii)
		if err != nil {
			return nil, err
		}

		return sc, nil
	default:
		return &InvertedOperator{inner: l}, nil
	}
}

// Inner returns the wrapped operator.
func (l *InvertedOperator) Inner() Operator { return l.inner }

// Dims returns the swapped dims of the wrapped operator.
func (l *InvertedOperator) Dims() (r, c int) {
	ir, ic := l.inner.Dims()

	return ic, ir
}

// IsLinear delegates to the wrapped operator: the inverse of a linear map
// is linear.
func (l *InvertedOperator) IsLinear() bool { return l.inner.IsLinear() }

// IsConstant delegates to the wrapped operator.
func (l *InvertedOperator) IsConstant() bool { return l.inner.IsConstant() }

// IsZero reports false: an inverse is never the zero map.
func (l *InvertedOperator) IsZero() bool { return false }

// HasAdjoint delegates to the wrapped operator; the adjoint of an inverse
// is the inverse of the adjoint.
func (l *InvertedOperator) HasAdjoint() bool { return l.inner.HasAdjoint() }

// HasMul reports whether the wrapped operator solves: multiply here is the
// wrapped solve.
func (l *InvertedOperator) HasMul() bool { return l.inner.HasSolve() }

// HasMulInPlace mirrors the wrapped operator's in-place solve support.
func (l *InvertedOperator) HasMulInPlace() bool { return l.inner.HasSolveInPlace() }

// HasSolve reports whether the wrapped operator multiplies: solve here is
// the wrapped multiply.
func (l *InvertedOperator) HasSolve() bool { return l.inner.HasMul() }

// HasSolveInPlace mirrors the wrapped operator's in-place multiply on a
// square wrap.
func (l *InvertedOperator) HasSolveInPlace() bool {
	return l.inner.HasMulInPlace() && IsSquare(l)
}

// Update returns an inverse over the refreshed operator; the rebuilt node
// carries no scratch. An operator that updated to zero keeps its node and
// fails at the next solve-backed call instead.
func (l *InvertedOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.inner.IsConstant() {
		return l, nil
	}
	ni, err := l.inner.Update(state, param, tm)
	if err != nil {
		return nil, err
	}

	return &InvertedOperator{inner: ni}, nil
}

// UpdateInPlace refreshes the wrapped operator, keeping all scratch alive.
func (l *InvertedOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	return l.inner.UpdateInPlace(state, param, tm)
}

// Cache allocates the staging block for the blended forms and caches the
// wrapped operator; the block doubles as the wrapped operator's
// representative input, since its shape is exactly the wrapped input
// shape.
func (l *InvertedOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("InvertedOperator.Cache", err)
	}
	r, _ := l.Dims()
	_, b := src.Dims()
	l.scratch = mat.NewDense(r, b, nil)
	l.batch = b

	return l.inner.Cache(l.scratch)
}

// IsCached reports whether the staging block exists and the wrapped
// operator is cached.
func (l *InvertedOperator) IsCached() bool { return l.scratch != nil && l.inner.IsCached() }

// cachedBatch reports the batch width the staging block was built for.
func (l *InvertedOperator) cachedBatch() (int, bool) {
	if l.scratch == nil {
		return 0, false
	}

	return l.batch, true
}

// MulTo computes dst = inner⁻¹·src through the wrapped solve.
func (l *InvertedOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr("InvertedOperator.MulTo", err)
	}

	return l.inner.SolveTo(dst, src)
}

// MulAddTo computes dst = alpha·inner⁻¹·src + beta·dst. A zero beta solves
// straight into dst and rescales; otherwise the solve stages through the
// cached block before blending.
func (l *InvertedOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	const tag = "InvertedOperator.MulAddTo"
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr(tag, err)
	}
	if beta == 0 {
		if err := l.inner.SolveTo(dst, src); err != nil {
			return err
		}
		if alpha != 1 {
			dst.Scale(alpha, dst)
		}

		return nil
	}
	batch, ok := l.cachedBatch()
	if err := validateBatch(batch, ok, src); err != nil {
		return operr(tag, err)
	}
	if err := l.inner.SolveTo(l.scratch, src); err != nil {
		return err
	}
	blendScaled(dst, alpha, l.scratch, beta)

	return nil
}

// SolveTo computes dst = inner·rhs through the wrapped multiply.
func (l *InvertedOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr("InvertedOperator.SolveTo", err)
	}

	return l.inner.MulTo(dst, rhs)
}

// SolveInPlace overwrites rhs with inner·rhs, staging through the cached
// block because in-place multiply may not alias.
func (l *InvertedOperator) SolveInPlace(rhs *mat.Dense) error {
	const tag = "InvertedOperator.SolveInPlace"
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr(tag, err)
	}
	batch, ok := l.cachedBatch()
	if err := validateBatch(batch, ok, rhs); err != nil {
		return operr(tag, err)
	}
	if err := l.inner.MulTo(l.scratch, rhs); err != nil {
		return err
	}
	rhs.Copy(l.scratch)

	return nil
}

// Clone deep-copies the wrapped operator; the clone carries no scratch.
func (l *InvertedOperator) Clone() Operator {
	return &InvertedOperator{inner: l.inner.Clone()}
}

// Resize propagates to the wrapped operator and re-derives the staging
// block for the recorded batch width.
func (l *InvertedOperator) Resize(n int) error {
	if err := l.inner.Resize(n); err != nil {
		return err
	}
	if l.scratch != nil {
		l.scratch = mat.NewDense(n, l.batch, nil)
	}

	return nil
}
