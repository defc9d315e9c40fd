// SPDX-License-Identifier: MIT

package operator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/linop/scalarop"
)

// ScaledOperator is the lazy product of a scalar coefficient and an inner
// operator. Application folds the coefficient into the fused multiply
// (alpha absorbs the scalar), so scaling costs nothing beyond the inner
// apply. Solve divides by the coefficient; a coefficient whose current
// value is zero is not invertible.
type ScaledOperator struct {
	coeff scalarop.Operator
	inner Operator
}

// Scale builds coeff·inner. Scaling an already-scaled operator folds the
// coefficients into one lazy scalar product, so the tree stays one node
// deep: Scale(a, Scale(b, L)) == Scale(a·b, L).
func Scale(coeff scalarop.Operator, inner Operator) (*ScaledOperator, error) {
	if coeff == nil || inner == nil {
		return nil, operr("Scale", ErrNilOperand)
	}
	if sc, ok := inner.(*ScaledOperator); ok {
		folded, err := scalarop.Mul(coeff, sc.coeff)
		if err != nil {
			return nil, operr("Scale", err)
		}

		return &ScaledOperator{coeff: folded, inner: sc.inner}, nil
	}

	return &ScaledOperator{coeff: coeff, inner: inner}, nil
}

// Coeff returns the scalar coefficient expression.
func (l *ScaledOperator) Coeff() scalarop.Operator { return l.coeff }

// Inner returns the scaled operator.
func (l *ScaledOperator) Inner() Operator { return l.inner }

// Dims returns the inner dims.
func (l *ScaledOperator) Dims() (r, c int) { return l.inner.Dims() }

// IsLinear reports whether the inner operator is linear.
func (l *ScaledOperator) IsLinear() bool { return l.inner.IsLinear() }

// IsConstant reports whether both the coefficient and the inner operator
// are constant.
func (l *ScaledOperator) IsConstant() bool {
	return l.coeff.IsConstant() && l.inner.IsConstant()
}

// IsZero reports whether the coefficient or the inner operator is zero.
func (l *ScaledOperator) IsZero() bool { return l.coeff.IsZero() || l.inner.IsZero() }

// HasAdjoint reports whether the inner operator has an adjoint; real
// coefficients are self-adjoint.
func (l *ScaledOperator) HasAdjoint() bool { return l.inner.HasAdjoint() }

// HasMul delegates to the inner operator.
func (l *ScaledOperator) HasMul() bool { return l.inner.HasMul() }

// HasMulInPlace delegates to the inner operator.
func (l *ScaledOperator) HasMulInPlace() bool { return l.inner.HasMulInPlace() }

// HasSolve delegates to the inner operator; a zero coefficient surfaces as
// ErrNotInvertible at solve time.
func (l *ScaledOperator) HasSolve() bool { return l.inner.HasSolve() }

// HasSolveInPlace delegates to the inner operator.
func (l *ScaledOperator) HasSolveInPlace() bool { return l.inner.HasSolveInPlace() }

// Update refreshes coefficient and inner operator into a new node.
func (l *ScaledOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.IsConstant() {
		return l, nil
	}
	nc, err := l.coeff.Update(state, param, tm)
	if err != nil {
		return nil, err
	}
	ni, err := l.inner.Update(state, param, tm)
	if err != nil {
		return nil, err
	}

	return &ScaledOperator{coeff: nc, inner: ni}, nil
}

// UpdateInPlace refreshes coefficient and inner operator of the receiver.
func (l *ScaledOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	if err := l.coeff.UpdateInPlace(state, param, tm); err != nil {
		return err
	}

	return l.inner.UpdateInPlace(state, param, tm)
}

// Cache delegates to the inner operator: scaling needs no scratch.
func (l *ScaledOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("ScaledOperator.Cache", err)
	}

	return l.inner.Cache(src)
}

// IsCached delegates to the inner operator.
func (l *ScaledOperator) IsCached() bool { return l.inner.IsCached() }

// cachedBatch delegates to the inner operator's cache, if batch-bound.
func (l *ScaledOperator) cachedBatch() (int, bool) { return cacheWidth(l.inner) }

// MulTo computes dst = s·(inner·src) as one fused pass.
func (l *ScaledOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	return l.inner.MulAddTo(dst, src, l.coeff.Value(), 0)
}

// MulAddTo computes dst = alpha·s·(inner·src) + beta·dst.
func (l *ScaledOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	return l.inner.MulAddTo(dst, src, alpha*l.coeff.Value(), beta)
}

// SolveTo computes dst = (1/s)·(inner⁻¹·rhs).
func (l *ScaledOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	s := l.coeff.Value()
	if s == 0 {
		return operr("ScaledOperator.SolveTo", ErrNotInvertible)
	}
	if err := l.inner.SolveTo(dst, rhs); err != nil {
		return err
	}
	dst.Scale(1/s, dst)

	return nil
}

// SolveInPlace overwrites rhs with (1/s)·(inner⁻¹·rhs).
func (l *ScaledOperator) SolveInPlace(rhs *mat.Dense) error {
	s := l.coeff.Value()
	if s == 0 {
		return operr("ScaledOperator.SolveInPlace", ErrNotInvertible)
	}
	if err := l.inner.SolveInPlace(rhs); err != nil {
		return err
	}
	rhs.Scale(1/s, rhs)

	return nil
}

// Clone deep-copies coefficient and inner operator.
func (l *ScaledOperator) Clone() Operator {
	return &ScaledOperator{coeff: l.coeff.Clone(), inner: l.inner.Clone()}
}

// Resize propagates to the inner operator.
func (l *ScaledOperator) Resize(n int) error { return l.inner.Resize(n) }
