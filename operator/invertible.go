// SPDX-License-Identifier: MIT

package operator

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// InvertibleOperator pairs an operator with a precomputed factorization of
// its dense form: multiply runs through the operator, solve through the
// factorization. Coefficient updates refactorize, so the pairing stays
// valid across state changes; construction fails when the factorization
// cannot solve.
type InvertibleOperator struct {
	inner Operator
	fact  denseFactorization
}

// Factorize pairs l with an LU factorization of its dense form. The
// operator must be square; an exactly singular operand is rejected.
func Factorize(l Operator) (*InvertibleOperator, error) {
	return newInvertible("Factorize", l, &luFactorization{})
}

// FactorizeCholesky pairs l with a Cholesky factorization of the upper
// triangle of its dense form (the gonum symmetric convention). The operand
// must be square and positive definite.
func FactorizeCholesky(l Operator) (*InvertibleOperator, error) {
	return newInvertible("FactorizeCholesky", l, &cholFactorization{})
}

// FactorizeQR pairs l with a QR factorization of its dense form; solve is
// the least-squares solution for tall operands. Requires rows ≥ cols.
func FactorizeQR(l Operator) (*InvertibleOperator, error) {
	return newInvertible("FactorizeQR", l, &qrFactorization{})
}

// newInvertible converts, factorizes, and wraps. Failure paths split into
// shape errors for impossible layouts and not-invertible for factorization
// refusals.
func newInvertible(tag string, l Operator, fact denseFactorization) (*InvertibleOperator, error) {
	if err := validateOperand(l); err != nil {
		return nil, operr(tag, err)
	}
	r, c := l.Dims()
	if fact.needsSquare() && r != c {
		return nil, operr(tag, ErrNotSquare)
	}
	if !fact.needsSquare() && r < c {
		return nil, operr(tag, ErrShape)
	}
	dense, err := ToDense(l)
	if err != nil {
		return nil, err
	}
	if !fact.factorize(dense) {
		return nil, operr(tag, ErrNotInvertible)
	}

	return &InvertibleOperator{inner: l, fact: fact}, nil
}

// Inner returns the paired operator.
func (l *InvertibleOperator) Inner() Operator { return l.inner }

// Dims returns the paired operator's dims.
func (l *InvertibleOperator) Dims() (r, c int) { return l.inner.Dims() }

// IsLinear delegates to the paired operator.
func (l *InvertibleOperator) IsLinear() bool { return l.inner.IsLinear() }

// IsConstant delegates to the paired operator.
func (l *InvertibleOperator) IsConstant() bool { return l.inner.IsConstant() }

// IsZero reports false: a zero operand never survives factorization.
func (l *InvertibleOperator) IsZero() bool { return false }

// HasAdjoint reports whether the paired operator applies its own
// transpose; the factorization serves the transposed solves.
func (l *InvertibleOperator) HasAdjoint() bool {
	_, ok := l.inner.(adjointApplier)

	return ok && l.inner.HasAdjoint()
}

// HasMul delegates to the paired operator.
func (l *InvertibleOperator) HasMul() bool { return l.inner.HasMul() }

// HasMulInPlace delegates to the paired operator.
func (l *InvertibleOperator) HasMulInPlace() bool { return l.inner.HasMulInPlace() }

// HasSolve reports true: solve is what the factorization is for.
func (l *InvertibleOperator) HasSolve() bool { return true }

// HasSolveInPlace reports whether the factorization solves square systems.
func (l *InvertibleOperator) HasSolveInPlace() bool { return IsSquare(l) }

// Update refreshes the paired operator and refactorizes its new dense
// form. Constant pairings return the receiver.
func (l *InvertibleOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.inner.IsConstant() {
		return l, nil
	}
	ni, err := l.inner.Update(state, param, tm)
	if err != nil {
		return nil, err
	}
	dense, err := ToDense(ni)
	if err != nil {
		return nil, err
	}
	nf := l.fact.fresh()
	nf.factorize(dense) // singularity surfaces at the next solve

	return &InvertibleOperator{inner: ni, fact: nf}, nil
}

// UpdateInPlace refreshes the paired operator and refactorizes in place.
func (l *InvertibleOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	if l.inner.IsConstant() {
		return nil
	}
	if err := l.inner.UpdateInPlace(state, param, tm); err != nil {
		return err
	}
	dense, err := ToDense(l.inner)
	if err != nil {
		return err
	}
	l.fact.factorize(dense)

	return nil
}

// Cache delegates to the paired operator; the factorization needs no
// batch-sized scratch of its own.
func (l *InvertibleOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("InvertibleOperator.Cache", err)
	}

	return l.inner.Cache(src)
}

// IsCached delegates to the paired operator.
func (l *InvertibleOperator) IsCached() bool { return l.inner.IsCached() }

// cachedBatch delegates to the paired operator's cache, if batch-bound.
func (l *InvertibleOperator) cachedBatch() (int, bool) { return cacheWidth(l.inner) }

// MulTo multiplies through the paired operator.
func (l *InvertibleOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	return l.inner.MulTo(dst, src)
}

// MulAddTo multiplies through the paired operator.
func (l *InvertibleOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	return l.inner.MulAddTo(dst, src, alpha, beta)
}

// SolveTo solves through the factorization.
func (l *InvertibleOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	const tag = "InvertibleOperator.SolveTo"
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr(tag, err)
	}
	if err := l.fact.solveTo(dst, false, rhs); err != nil {
		return operr(tag, err)
	}

	return nil
}

// SolveInPlace solves through the factorization, overwriting rhs; gonum
// factorizations isolate aliased destinations internally.
func (l *InvertibleOperator) SolveInPlace(rhs *mat.Dense) error {
	const tag = "InvertibleOperator.SolveInPlace"
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr(tag, err)
	}
	if err := l.fact.solveTo(rhs, false, rhs); err != nil {
		return operr(tag, err)
	}

	return nil
}

// Clone deep-copies the paired operator and refactorizes the copy; a copy
// that cannot be refactorized keeps the node and fails at the next solve.
func (l *InvertibleOperator) Clone() Operator {
	ni := l.inner.Clone()
	nf := l.fact.fresh()
	if dense, err := ToDense(ni); err == nil {
		nf.factorize(dense)
	}

	return &InvertibleOperator{inner: ni, fact: nf}
}

// Resize is unsupported: the factorization is bound to the construction
// shape.
func (l *InvertibleOperator) Resize(int) error {
	return operr("InvertibleOperator.Resize", ErrCapability)
}

// --- adjoint capability (delegated multiply, transposed solve) ---

func (l *InvertibleOperator) mulTransTo(dst *mat.Dense, src mat.Matrix) error {
	ap, ok := l.inner.(adjointApplier)
	if !ok {
		return operr("InvertibleOperator.MulTransTo", ErrCapability)
	}

	return ap.mulTransTo(dst, src)
}

func (l *InvertibleOperator) mulTransAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	ap, ok := l.inner.(adjointApplier)
	if !ok {
		return operr("InvertibleOperator.MulTransAddTo", ErrCapability)
	}

	return ap.mulTransAddTo(dst, src, alpha, beta)
}

func (l *InvertibleOperator) solveTransTo(dst *mat.Dense, rhs mat.Matrix) error {
	return l.fact.solveTo(dst, true, rhs)
}

func (l *InvertibleOperator) hasSolveTrans() bool { return true }

// --- factorization adapters ---

// denseFactorization is the uniform view over gonum's factorization kinds:
// factorize from a dense form, solve straight or transposed, and spawn an
// empty factorization of the same kind for rebuilt nodes.
type denseFactorization interface {
	factorize(a *mat.Dense) bool
	solveTo(dst *mat.Dense, trans bool, rhs mat.Matrix) error
	fresh() denseFactorization
	needsSquare() bool
}

// factorizationError folds gonum's solve errors into the package taxonomy:
// a Condition error means the system was solved but is ill-conditioned,
// which this layer passes through; everything else is a failed solve.
func factorizationError(err error) error {
	if err == nil {
		return nil
	}
	var cond mat.Condition
	if errors.As(err, &cond) {
		return nil
	}

	return ErrNotInvertible
}

type luFactorization struct {
	lu mat.LU
	ok bool
}

func (f *luFactorization) factorize(a *mat.Dense) bool {
	f.lu.Factorize(a)
	f.ok = f.lu.Det() != 0

	return f.ok
}

func (f *luFactorization) solveTo(dst *mat.Dense, trans bool, rhs mat.Matrix) error {
	if !f.ok {
		return ErrNotInvertible
	}

	return factorizationError(f.lu.SolveTo(dst, trans, rhs))
}

func (f *luFactorization) fresh() denseFactorization { return &luFactorization{} }

func (f *luFactorization) needsSquare() bool { return true }

type cholFactorization struct {
	ch mat.Cholesky
	ok bool
}

func (f *cholFactorization) factorize(a *mat.Dense) bool {
	n, _ := a.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, a.At(i, j))
		}
	}
	f.ok = f.ch.Factorize(sym)

	return f.ok
}

// solveTo ignores trans: the factorized operand is symmetric.
func (f *cholFactorization) solveTo(dst *mat.Dense, _ bool, rhs mat.Matrix) error {
	if !f.ok {
		return ErrNotInvertible
	}

	return factorizationError(f.ch.SolveTo(dst, rhs))
}

func (f *cholFactorization) fresh() denseFactorization { return &cholFactorization{} }

func (f *cholFactorization) needsSquare() bool { return true }

type qrFactorization struct {
	qr mat.QR
	ok bool
}

func (f *qrFactorization) factorize(a *mat.Dense) bool {
	r, c := a.Dims()
	if r < c {
		f.ok = false

		return false
	}
	f.qr.Factorize(a)
	f.ok = true

	return true
}

func (f *qrFactorization) solveTo(dst *mat.Dense, trans bool, rhs mat.Matrix) error {
	if !f.ok {
		return ErrNotInvertible
	}

	return factorizationError(f.qr.SolveTo(dst, trans, rhs))
}

func (f *qrFactorization) fresh() denseFactorization { return &qrFactorization{} }

func (f *qrFactorization) needsSquare() bool { return false }
