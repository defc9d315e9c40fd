// SPDX-License-Identifier: MIT

package operator

import "gonum.org/v1/gonum/mat"

// IdentityOperator is the identity map on an n-dimensional space. It is
// linear, constant, self-adjoint, and trivially invertible; multiply and
// solve are realized as copies into the output buffer, never as no-ops, so
// dst always receives the input's contents.
type IdentityOperator struct {
	n int
}

// NewIdentity returns the identity operator of order n.
func NewIdentity(n int) (*IdentityOperator, error) {
	if n <= 0 {
		return nil, operr("NewIdentity", ErrBadDims)
	}

	return &IdentityOperator{n: n}, nil
}

// Dims returns (n, n).
func (l *IdentityOperator) Dims() (r, c int) { return l.n, l.n }

// IsLinear reports true.
func (l *IdentityOperator) IsLinear() bool { return true }

// IsConstant reports true: the identity has no coefficients to update.
func (l *IdentityOperator) IsConstant() bool { return true }

// IsZero reports false.
func (l *IdentityOperator) IsZero() bool { return false }

// HasAdjoint reports true: the identity is self-adjoint.
func (l *IdentityOperator) HasAdjoint() bool { return true }

// HasMul reports true.
func (l *IdentityOperator) HasMul() bool { return true }

// HasMulInPlace reports true.
func (l *IdentityOperator) HasMulInPlace() bool { return true }

// HasSolve reports true.
func (l *IdentityOperator) HasSolve() bool { return true }

// HasSolveInPlace reports true.
func (l *IdentityOperator) HasSolveInPlace() bool { return true }

// Update returns the receiver: the identity is constant.
func (l *IdentityOperator) Update(_ []float64, _ any, _ float64) (Operator, error) {
	return l, nil
}

// UpdateInPlace is a no-op: the identity is constant.
func (l *IdentityOperator) UpdateInPlace(_ []float64, _ any, _ float64) error {
	return nil
}

// Cache validates the representative input; the identity needs no scratch.
func (l *IdentityOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("IdentityOperator.Cache", err)
	}

	return nil
}

// IsCached reports true: the identity is vacuously cached.
func (l *IdentityOperator) IsCached() bool { return true }

// MulTo copies src into dst.
func (l *IdentityOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr("IdentityOperator.MulTo", err)
	}
	dst.Copy(src)

	return nil
}

// MulAddTo computes dst = alpha·src + beta·dst.
func (l *IdentityOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr("IdentityOperator.MulAddTo", err)
	}
	blendFrom(dst, alpha, src, beta)

	return nil
}

// SolveTo copies rhs into dst: the identity is its own inverse.
func (l *IdentityOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr("IdentityOperator.SolveTo", err)
	}
	dst.Copy(rhs)

	return nil
}

// SolveInPlace leaves rhs as the solution; writing rhs onto itself is the
// identity write.
func (l *IdentityOperator) SolveInPlace(rhs *mat.Dense) error {
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr("IdentityOperator.SolveInPlace", err)
	}

	return nil
}

// Clone returns an independent identity of the same order.
func (l *IdentityOperator) Clone() Operator { return &IdentityOperator{n: l.n} }

// Resize retargets the identity to order n.
func (l *IdentityOperator) Resize(n int) error {
	if n <= 0 {
		return operr("IdentityOperator.Resize", ErrBadDims)
	}
	l.n = n

	return nil
}
