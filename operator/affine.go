// SPDX-License-Identifier: MIT

package operator

import (
	"gonum.org/v1/gonum/mat"
)

// AffineOperator maps u ↦ A·u + B·b for a linear part A, a bias operator B,
// and a bias vector b. The node is explicitly non-linear: IsLinear and
// HasAdjoint report false, and sums refuse to treat it as a zero term. The
// bias product B·b is recomputed on every application so that in-place
// updates of A, B, or b are always observed.
type AffineOperator struct {
	a       Operator
	biasOp  Operator
	bias    []float64
	biasUpd VecUpdateFunc

	bvec *mat.Dense // len(bias)×1 view over bias, rebuilt on resize
	bcol *mat.Dense // r×1 cache for B·b
	rbuf *mat.Dense // r×batch cache for rhs − B·b on the solve path

	batch int
}

// NewAffine builds the affine operator A·u + B·b. A and B must agree on
// rows and B's columns must match len(b); bUpdate (optional) refreshes the
// bias vector in place on coefficient updates.
func NewAffine(a, bOp Operator, b []float64, bUpdate VecUpdateFunc) (*AffineOperator, error) {
	const tag = "NewAffine"
	if err := validateOperand(a); err != nil {
		return nil, operr(tag, err)
	}
	if err := validateOperand(bOp); err != nil {
		return nil, operr(tag, err)
	}
	if len(b) == 0 {
		return nil, operr(tag, ErrBadDims)
	}
	ar, _ := a.Dims()
	br, bc := bOp.Dims()
	if ar != br || bc != len(b) {
		return nil, operr(tag, ErrShape)
	}

	return &AffineOperator{
		a:       a,
		biasOp:  bOp,
		bias:    b,
		biasUpd: bUpdate,
		bvec:    mat.NewDense(len(b), 1, b),
	}, nil
}

// A returns the linear part.
func (l *AffineOperator) A() Operator { return l.a }

// B returns the bias operator.
func (l *AffineOperator) B() Operator { return l.biasOp }

// Bias returns the bias vector; the slice is live, not a copy.
func (l *AffineOperator) Bias() []float64 { return l.bias }

// Dims returns the linear part's dims.
func (l *AffineOperator) Dims() (r, c int) { return l.a.Dims() }

// IsLinear reports false: the bias term breaks additivity.
func (l *AffineOperator) IsLinear() bool { return false }

// IsConstant reports whether A, B, and the bias vector are all frozen.
func (l *AffineOperator) IsConstant() bool {
	return l.a.IsConstant() && l.biasOp.IsConstant() && l.biasUpd == nil
}

// IsZero reports whether both parts vanish, making the map u ↦ 0.
func (l *AffineOperator) IsZero() bool { return l.a.IsZero() && l.biasOp.IsZero() }

// HasAdjoint reports false: an affine map has no transpose.
func (l *AffineOperator) HasAdjoint() bool { return false }

// HasMul reports whether both parts multiply.
func (l *AffineOperator) HasMul() bool { return l.a.HasMul() && l.biasOp.HasMul() }

// HasMulInPlace reports whether the blended form is available.
func (l *AffineOperator) HasMulInPlace() bool {
	return l.a.HasMulInPlace() && l.biasOp.HasMul()
}

// HasSolve reports whether the linear part solves (the bias only needs to
// multiply).
func (l *AffineOperator) HasSolve() bool { return l.a.HasSolve() && l.biasOp.HasMul() }

// HasSolveInPlace reports whether the linear part solves in place.
func (l *AffineOperator) HasSolveInPlace() bool {
	return l.a.HasSolveInPlace() && l.biasOp.HasMul()
}

// Update rebuilds the node from refreshed parts and a refreshed bias copy;
// the receiver, its bias slice included, is left untouched.
func (l *AffineOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.IsConstant() {
		return l, nil
	}
	na, err := l.a.Update(state, param, tm)
	if err != nil {
		return nil, err
	}
	nb, err := l.biasOp.Update(state, param, tm)
	if err != nil {
		return nil, err
	}
	bias := make([]float64, len(l.bias))
	copy(bias, l.bias)
	if l.biasUpd != nil {
		l.biasUpd(bias, state, param, tm)
	}

	return &AffineOperator{
		a:       na,
		biasOp:  nb,
		bias:    bias,
		biasUpd: l.biasUpd,
		bvec:    mat.NewDense(len(bias), 1, bias),
	}, nil
}

// UpdateInPlace refreshes both parts and the bias vector, keeping caches.
func (l *AffineOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	if l.IsConstant() {
		return nil
	}
	if err := l.a.UpdateInPlace(state, param, tm); err != nil {
		return err
	}
	if err := l.biasOp.UpdateInPlace(state, param, tm); err != nil {
		return err
	}
	if l.biasUpd != nil {
		l.biasUpd(l.bias, state, param, tm)
	}

	return nil
}

// Cache allocates the bias column and the solve residual buffer, then
// caches both parts: A against src, B against the bias view.
func (l *AffineOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("AffineOperator.Cache", err)
	}
	r, _ := l.Dims()
	_, b := src.Dims()
	l.bcol = mat.NewDense(r, 1, nil)
	l.rbuf = mat.NewDense(r, b, nil)
	l.batch = b
	if err := l.a.Cache(src); err != nil {
		return err
	}

	return l.biasOp.Cache(l.bvec)
}

// IsCached reports whether the node and both parts carry scratch.
func (l *AffineOperator) IsCached() bool {
	return l.bcol != nil && l.a.IsCached() && l.biasOp.IsCached()
}

// cachedBatch reports the batch width the scratch was sized for; the bias
// operand always sits at width one.
func (l *AffineOperator) cachedBatch() (int, bool) {
	if l.bcol == nil {
		return 0, false
	}
	if !compatiblyCached(l.a, l.batch) || !compatiblyCached(l.biasOp, 1) {
		return 0, false
	}

	return l.batch, true
}

// refreshBias recomputes bcol = B·b into the cached column.
func (l *AffineOperator) refreshBias() error {
	if l.bcol == nil {
		return ErrCacheUninitialized
	}

	return l.biasOp.MulTo(l.bcol, l.bvec)
}

// MulTo computes dst = A·src + B·b.
func (l *AffineOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	const tag = "AffineOperator.MulTo"
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr(tag, err)
	}
	if err := l.refreshBias(); err != nil {
		return operr(tag, err)
	}
	if err := l.a.MulTo(dst, src); err != nil {
		return err
	}
	addScaledColBroadcast(dst, 1, l.bcol)

	return nil
}

// MulAddTo computes dst = alpha·(A·src + B·b·1ᵀ) + beta·dst.
func (l *AffineOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	const tag = "AffineOperator.MulAddTo"
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr(tag, err)
	}
	if err := l.refreshBias(); err != nil {
		return operr(tag, err)
	}
	if err := l.a.MulAddTo(dst, src, alpha, beta); err != nil {
		return err
	}
	addScaledColBroadcast(dst, alpha, l.bcol)

	return nil
}

// SolveTo computes dst = A \ (rhs − B·b·1ᵀ).
func (l *AffineOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	const tag = "AffineOperator.SolveTo"
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr(tag, err)
	}
	if err := l.refreshBias(); err != nil {
		return operr(tag, err)
	}
	if err := validateBatch(l.batch, l.rbuf != nil, rhs); err != nil {
		return operr(tag, err)
	}
	subColBroadcastTo(l.rbuf, rhs, l.bcol)

	return l.a.SolveTo(dst, l.rbuf)
}

// SolveInPlace subtracts the bias column from rhs and solves through the
// linear part, overwriting rhs.
func (l *AffineOperator) SolveInPlace(rhs *mat.Dense) error {
	const tag = "AffineOperator.SolveInPlace"
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr(tag, err)
	}
	if err := l.refreshBias(); err != nil {
		return operr(tag, err)
	}
	addScaledColBroadcast(rhs, -1, l.bcol)

	return l.a.SolveInPlace(rhs)
}

// Clone deep-copies both parts and the bias vector; the copy is uncached.
func (l *AffineOperator) Clone() Operator {
	bias := make([]float64, len(l.bias))
	copy(bias, l.bias)

	return &AffineOperator{
		a:       l.a.Clone(),
		biasOp:  l.biasOp.Clone(),
		bias:    bias,
		biasUpd: l.biasUpd,
		bvec:    mat.NewDense(len(bias), 1, bias),
	}
}

// Resize propagates to both parts, re-sizes the bias vector (truncating or
// zero-extending), and drops the node's scratch.
func (l *AffineOperator) Resize(n int) error {
	const tag = "AffineOperator.Resize"
	if n <= 0 {
		return operr(tag, ErrBadDims)
	}
	if err := l.a.Resize(n); err != nil {
		return err
	}
	if err := l.biasOp.Resize(n); err != nil {
		return err
	}
	bias := make([]float64, n)
	copy(bias, l.bias)
	l.bias = bias
	l.bvec = mat.NewDense(n, 1, bias)
	l.bcol = nil
	l.rbuf = nil
	l.batch = 0

	return nil
}
