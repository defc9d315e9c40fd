// SPDX-License-Identifier: MIT

package operator

import "gonum.org/v1/gonum/mat"

// Adjoint returns the adjoint of l. Structure is pushed down instead of
// blindly wrapped: identities and diagonals are self-adjoint, sums map
// termwise, compositions reverse, tensor products map operand-wise,
// inversions commute, and a double wrap collapses to the original
// operator. Leaves that apply their own transpose (matrix, function,
// factorized kinds) are wrapped in an AdjointOperator node.
//
// Requires HasAdjoint on l; elements are real, so adjoint and transpose
// coincide numerically and differ only in node kind.
func Adjoint(l Operator) (Operator, error) {
	return pushAdjoint(l, "Adjoint")
}

// Transpose returns the transpose of l, with the same push-down rules as
// Adjoint but wrapping leaves in a TransposedOperator node.
func Transpose(l Operator) (Operator, error) {
	return pushAdjoint(l, "Transpose")
}

// pushAdjoint walks the tree structurally; tag is both the failing-call
// label and the wrapper selector.
func pushAdjoint(l Operator, tag string) (Operator, error) {
	if err := validateOperand(l); err != nil {
		return nil, operr(tag, err)
	}
	if !l.HasAdjoint() {
		return nil, operr(tag, ErrCapability)
	}
	switch t := l.(type) {
	case *IdentityOperator:
		return t, nil
	case *DiagonalOperator:
		return t, nil
	case *ScaledOperator:
		inner, err := pushAdjoint(t.inner, tag)
		if err != nil {
			return nil, err
		}
		sc, err := Scale(t.coeff, inner)
		if err != nil {
			return nil, err
		}

		return sc, nil
	case *AddedOperator:
		terms := make([]Operator, len(t.terms))
		for i, term := range t.terms {
			at, err := pushAdjoint(term, tag)
			if err != nil {
				return nil, err
			}
			terms[i] = at
		}

		return Add(terms...)
	case *ComposedOperator:
		k := len(t.factors)
		factors := make([]Operator, k)
		for i, f := range t.factors {
			af, err := pushAdjoint(f, tag)
			if err != nil {
				return nil, err
			}
			factors[k-1-i] = af
		}

		return Compose(factors...)
	case *TensorProductOperator:
		outer, err := pushAdjoint(t.outer, tag)
		if err != nil {
			return nil, err
		}
		inner, err := pushAdjoint(t.inner, tag)
		if err != nil {
			return nil, err
		}
		kr, err := Kron(outer, inner)
		if err != nil {
			return nil, err
		}

		return kr, nil
	case *InvertedOperator:
		inner, err := pushAdjoint(t.inner, tag)
		if err != nil {
			return nil, err
		}

		return Invert(inner)
	case *AdjointOperator:
		return t.inner, nil
	case *TransposedOperator:
		return t.inner, nil
	default:
		return wrapAdjoint(l, tag)
	}
}

// wrapAdjoint builds the requested wrapper kind over a leaf that can apply
// its own transpose.
func wrapAdjoint(l Operator, tag string) (Operator, error) {
	ap, ok := l.(adjointApplier)
	if !ok {
		return nil, operr(tag, ErrCapability)
	}
	base := adjointBase{kind: tag + "Operator", inner: l, ap: ap}
	if tag == "Transpose" {
		base.kind = "TransposedOperator"

		return &TransposedOperator{adjointBase: base}, nil
	}

	return &AdjointOperator{adjointBase: base}, nil
}

// AdjointOperator wraps an operator and swaps apply with apply-adjoint and
// solve with solve-adjoint.
type AdjointOperator struct {
	adjointBase
}

// TransposedOperator is the transpose counterpart of AdjointOperator. Over
// real elements the two behave identically; both kinds exist so that
// expression trees keep the distinction the caller wrote.
type TransposedOperator struct {
	adjointBase
}

// Update returns an adjoint over the refreshed inner operator; the rebuilt
// node carries no scratch.
func (l *AdjointOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.inner.IsConstant() {
		return l, nil
	}
	ni, err := l.inner.Update(state, param, tm)
	if err != nil {
		return nil, err
	}

	return wrapAdjoint(ni, "Adjoint")
}

// Clone deep-copies the wrapped operator.
func (l *AdjointOperator) Clone() Operator {
	return &AdjointOperator{adjointBase: l.adjointBase.cloneBase()}
}

// Update returns a transpose over the refreshed inner operator; the
// rebuilt node carries no scratch.
func (l *TransposedOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.inner.IsConstant() {
		return l, nil
	}
	ni, err := l.inner.Update(state, param, tm)
	if err != nil {
		return nil, err
	}

	return wrapAdjoint(ni, "Transpose")
}

// Clone deep-copies the wrapped operator.
func (l *TransposedOperator) Clone() Operator {
	return &TransposedOperator{adjointBase: l.adjointBase.cloneBase()}
}

// adjointBase carries the shared state and behavior of the two wrapper
// kinds: the wrapped operator, its transpose-applying view, and one
// optional staging block for in-place solves.
type adjointBase struct {
	kind    string
	inner   Operator
	ap      adjointApplier
	scratch *mat.Dense
	batch   int
}

// cloneBase deep-copies the wrapped operator; clones carry no scratch.
// Cloning preserves the concrete kind, so the transpose view re-asserts.
func (l *adjointBase) cloneBase() adjointBase {
	ni := l.inner.Clone()

	return adjointBase{kind: l.kind, inner: ni, ap: ni.(adjointApplier)}
}

// Dims returns the swapped dims of the wrapped operator.
func (l *adjointBase) Dims() (r, c int) {
	ir, ic := l.inner.Dims()

	return ic, ir
}

// IsLinear delegates to the wrapped operator.
func (l *adjointBase) IsLinear() bool { return l.inner.IsLinear() }

// IsConstant delegates to the wrapped operator.
func (l *adjointBase) IsConstant() bool { return l.inner.IsConstant() }

// IsZero delegates to the wrapped operator: transposition preserves zero.
func (l *adjointBase) IsZero() bool { return l.inner.IsZero() }

// HasAdjoint reports true: the adjoint of the wrapper is the wrapped
// operator itself.
func (l *adjointBase) HasAdjoint() bool { return true }

// HasMul delegates to the wrapped operator.
func (l *adjointBase) HasMul() bool { return l.inner.HasMul() }

// HasMulInPlace delegates to the wrapped operator.
func (l *adjointBase) HasMulInPlace() bool { return l.inner.HasMulInPlace() }

// HasSolve reports whether the wrapped operator solves through its
// transpose.
func (l *adjointBase) HasSolve() bool { return l.ap.hasSolveTrans() }

// HasSolveInPlace reports whether a square wrap solves through its
// transpose.
func (l *adjointBase) HasSolveInPlace() bool {
	r, c := l.Dims()

	return l.ap.hasSolveTrans() && r == c
}

// UpdateInPlace refreshes the wrapped operator, keeping all scratch alive.
func (l *adjointBase) UpdateInPlace(state []float64, param any, tm float64) error {
	return l.inner.UpdateInPlace(state, param, tm)
}

// Cache allocates the staging block for in-place solves and caches the
// wrapped operator against a block of its own input shape, so that its
// scratch serves the transposed applies at this batch width.
func (l *adjointBase) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr(l.kind+".Cache", err)
	}
	r, c := l.Dims()
	_, b := src.Dims()
	if err := l.inner.Cache(mat.NewDense(r, b, nil)); err != nil {
		return err
	}
	l.scratch = mat.NewDense(max(r, c), b, nil)
	l.batch = b

	return nil
}

// IsCached reports whether the staging block exists and the wrapped
// operator is cached.
func (l *adjointBase) IsCached() bool { return l.scratch != nil && l.inner.IsCached() }

// cachedBatch reports the batch width the staging block was built for.
func (l *adjointBase) cachedBatch() (int, bool) {
	if l.scratch == nil {
		return 0, false
	}

	return l.batch, true
}

// MulTo computes dst = innerᵀ·src.
func (l *adjointBase) MulTo(dst *mat.Dense, src mat.Matrix) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr(l.kind+".MulTo", err)
	}

	return l.ap.mulTransTo(dst, src)
}

// MulAddTo computes dst = alpha·innerᵀ·src + beta·dst.
func (l *adjointBase) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr(l.kind+".MulAddTo", err)
	}

	return l.ap.mulTransAddTo(dst, src, alpha, beta)
}

// SolveTo computes dst = inner⁻ᵀ·rhs.
func (l *adjointBase) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	tag := l.kind + ".SolveTo"
	if !l.ap.hasSolveTrans() {
		return operr(tag, ErrCapability)
	}
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr(tag, err)
	}
	if err := l.ap.solveTransTo(dst, rhs); err != nil {
		return operr(tag, err)
	}

	return nil
}

// SolveInPlace overwrites rhs with inner⁻ᵀ·rhs, staging through the cached
// block.
func (l *adjointBase) SolveInPlace(rhs *mat.Dense) error {
	tag := l.kind + ".SolveInPlace"
	if !l.ap.hasSolveTrans() {
		return operr(tag, ErrCapability)
	}
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr(tag, err)
	}
	r, b := rhs.Dims()
	tmp := l.scratchView(r, b)
	if tmp == nil {
		return operr(tag, ErrCacheUninitialized)
	}
	if err := l.ap.solveTransTo(tmp, rhs); err != nil {
		return operr(tag, err)
	}
	rhs.Copy(tmp)

	return nil
}

// Resize propagates to the wrapped operator (dims swap follows for free)
// and re-derives the staging block for the recorded batch width.
func (l *adjointBase) Resize(n int) error {
	if err := l.inner.Resize(n); err != nil {
		return err
	}
	if l.scratch != nil {
		l.scratch = mat.NewDense(n, l.batch, nil)
	}

	return nil
}

// scratchView slices the staging block to (rows × b), nil when absent or
// built for another batch width.
func (l *adjointBase) scratchView(rows, b int) *mat.Dense {
	if l.scratch == nil || l.batch != b {
		return nil
	}

	return l.scratch.Slice(0, rows, 0, b).(*mat.Dense)
}
