// SPDX-License-Identifier: MIT

package operator

import (
	"gonum.org/v1/gonum/mat"
)

// TensorProductOperator is the lazy Kronecker product kron(outer, inner):
// Dims = (rOut·rIn, cOut·cIn), and application factors through the two
// operands instead of materializing the product. Inputs reshape row-major:
// a length cOut·cIn column splits into cOut blocks of cIn entries, the
// inner operand maps every block, the outer operand mixes the blocks.
//
// Batched application runs in four stages over cached scratch:
//
//	w[l, j·b+s] = src[j·cIn+l, s]   gather blocks, batch-minor
//	c = inner·w                     per-block inner product
//	v[j, k·b+s] = c[k, j·b+s]       swap block and lane axes
//	o = outer·v                     cross-block outer product
//	dst[i·rIn+k, s] = α·o[i, k·b+s] + β·dst[i·rIn+k, s]
//
// Solve mirrors the stages with inner\ and outer\ and transposed scratch
// shapes. The scratch family has exactly seven dense slots when the
// operands are not both square (the solve output view shares the multiply
// gather slot, which has the same element count); both-square products
// reuse the four multiply slots for the solve path. The solve stages also
// feed the operands at their own batch widths (rOut·b inner, cIn·b outer);
// where those differ from the multiply widths, the product carries
// solve-width operand clones, built by Cache and re-derived from the
// refreshed operands on every in-place update.
type TensorProductOperator struct {
	outer Operator
	inner Operator

	// multiply path scratch
	w *mat.Dense // cIn  × cOut·b  gathered input blocks
	c *mat.Dense // rIn  × cOut·b  inner products
	v *mat.Dense // cOut × rIn·b   swapped lanes
	o *mat.Dense // rOut × rIn·b   outer products

	// solve path scratch; aliases the multiply slots when both operands
	// are square, otherwise so is a view over w's backing array (equal
	// element count)
	sw *mat.Dense // rIn  × rOut·b
	sc *mat.Dense // cIn  × rOut·b
	sv *mat.Dense // rOut × cIn·b
	so *mat.Dense // cOut × cIn·b

	// solve-path operand clones; non-nil only when an operand's solve
	// width (rOut·b inner, cIn·b outer) differs from its multiply width
	solveInner Operator
	solveOuter Operator

	batch int
}

// Kron builds the lazy Kronecker product of outer and inner.
func Kron(outer, inner Operator) (*TensorProductOperator, error) {
	const tag = "Kron"
	if err := validateOperand(outer); err != nil {
		return nil, operr(tag, err)
	}
	if err := validateOperand(inner); err != nil {
		return nil, operr(tag, err)
	}

	return &TensorProductOperator{outer: outer, inner: inner}, nil
}

// Outer returns the block-mixing operand.
func (l *TensorProductOperator) Outer() Operator { return l.outer }

// Inner returns the per-block operand.
func (l *TensorProductOperator) Inner() Operator { return l.inner }

// Dims returns the product dims (rOut·rIn, cOut·cIn).
func (l *TensorProductOperator) Dims() (r, c int) {
	rOut, cOut := l.outer.Dims()
	rIn, cIn := l.inner.Dims()

	return rOut * rIn, cOut * cIn
}

// IsLinear reports whether both operands are linear.
func (l *TensorProductOperator) IsLinear() bool {
	return l.outer.IsLinear() && l.inner.IsLinear()
}

// IsConstant reports whether both operands are constant.
func (l *TensorProductOperator) IsConstant() bool {
	return l.outer.IsConstant() && l.inner.IsConstant()
}

// IsZero reports whether either operand vanishes.
func (l *TensorProductOperator) IsZero() bool {
	return l.outer.IsZero() || l.inner.IsZero()
}

// HasAdjoint reports whether both operands have adjoints (the adjoint of a
// Kronecker product is the product of the adjoints).
func (l *TensorProductOperator) HasAdjoint() bool {
	return l.outer.HasAdjoint() && l.inner.HasAdjoint()
}

// HasMul reports whether both operands multiply.
func (l *TensorProductOperator) HasMul() bool {
	return l.outer.HasMul() && l.inner.HasMul()
}

// HasMulInPlace matches HasMul: the staged form only needs out-of-place
// multiplies from the operands.
func (l *TensorProductOperator) HasMulInPlace() bool { return l.HasMul() }

// HasSolve reports whether both operands solve.
func (l *TensorProductOperator) HasSolve() bool {
	return l.outer.HasSolve() && l.inner.HasSolve()
}

// HasSolveInPlace reports whether the product is square and both operands
// solve; the staged form never solves the operands in place.
func (l *TensorProductOperator) HasSolveInPlace() bool {
	return IsSquare(l) && l.HasSolve()
}

// Update rebuilds the product from refreshed operands.
func (l *TensorProductOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.IsConstant() {
		return l, nil
	}
	no, err := l.outer.Update(state, param, tm)
	if err != nil {
		return nil, err
	}
	ni, err := l.inner.Update(state, param, tm)
	if err != nil {
		return nil, err
	}

	return &TensorProductOperator{outer: no, inner: ni}, nil
}

// UpdateInPlace refreshes both operands, keeping all scratch alive. The
// solve-path operand clones re-derive from the refreshed operands, so
// update hooks fire exactly once per operand.
func (l *TensorProductOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	if l.IsConstant() {
		return nil
	}
	if err := l.outer.UpdateInPlace(state, param, tm); err != nil {
		return err
	}
	if err := l.inner.UpdateInPlace(state, param, tm); err != nil {
		return err
	}
	if l.solveInner == nil && l.solveOuter == nil {
		return nil
	}

	return l.refreshSolveOperands()
}

// Cache allocates the scratch family for src's batch width and caches the
// operands against the intermediate blocks they will see: the inner operand
// at width cOut·b, the outer at width rIn·b. Solvable products whose solve
// widths differ from those additionally cache operand clones for the solve
// stages.
func (l *TensorProductOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("TensorProductOperator.Cache", err)
	}
	_, b := src.Dims()
	rOut, cOut := l.outer.Dims()
	rIn, cIn := l.inner.Dims()

	l.w = mat.NewDense(cIn, cOut*b, nil)
	l.c = mat.NewDense(rIn, cOut*b, nil)
	l.v = mat.NewDense(cOut, rIn*b, nil)
	l.o = mat.NewDense(rOut, rIn*b, nil)
	if rOut == cOut && rIn == cIn {
		l.sw, l.sc, l.sv, l.so = l.w, l.c, l.v, l.o
	} else {
		l.sw = mat.NewDense(rIn, rOut*b, nil)
		l.sc = mat.NewDense(cIn, rOut*b, nil)
		l.sv = mat.NewDense(rOut, cIn*b, nil)
		l.so = mat.NewDense(cOut, cIn*b, l.w.RawMatrix().Data)
	}
	l.batch = b
	if err := l.inner.Cache(l.w); err != nil {
		return err
	}
	if err := l.outer.Cache(l.v); err != nil {
		return err
	}

	return l.refreshSolveOperands()
}

// IsCached reports whether the scratch family and both operands are ready.
func (l *TensorProductOperator) IsCached() bool {
	return l.w != nil && l.outer.IsCached() && l.inner.IsCached()
}

// cachedBatch reports the product's batch width when the whole family,
// operand caches included, sits at the widths Cache derived for it.
func (l *TensorProductOperator) cachedBatch() (int, bool) {
	if l.w == nil {
		return 0, false
	}
	_, cOut := l.outer.Dims()
	rIn, _ := l.inner.Dims()
	if !compatiblyCached(l.inner, cOut*l.batch) || !compatiblyCached(l.outer, rIn*l.batch) {
		return 0, false
	}

	return l.batch, true
}

// refreshSolveOperands (re)derives the solve-path operand clones from the
// current operands at the recorded batch width. The inner solve runs at
// width rOut·b and the outer at cIn·b; an operand whose multiply cache
// already sits at that width needs no clone. Clone never fires update
// hooks, so deriving here keeps hook invocations at one per operand.
func (l *TensorProductOperator) refreshSolveOperands() error {
	l.solveInner, l.solveOuter = nil, nil
	if !l.HasSolve() {
		return nil
	}
	b := l.batch
	rOut, cOut := l.outer.Dims()
	rIn, cIn := l.inner.Dims()
	if rOut != cOut {
		in := l.inner.Clone()
		if err := in.Cache(mat.NewDense(cIn, rOut*b, nil)); err != nil {
			return err
		}
		l.solveInner = in
	}
	if rIn != cIn {
		out := l.outer.Clone()
		if err := out.Cache(mat.NewDense(cOut, cIn*b, nil)); err != nil {
			return err
		}
		l.solveOuter = out
	}

	return nil
}

// innerSolver returns the operand serving the inner solve stage.
func (l *TensorProductOperator) innerSolver() Operator {
	if l.solveInner != nil {
		return l.solveInner
	}

	return l.inner
}

// outerSolver returns the operand serving the outer solve stage.
func (l *TensorProductOperator) outerSolver() Operator {
	if l.solveOuter != nil {
		return l.solveOuter
	}

	return l.outer
}

// peelScaled strips Scale wrappers from op, folding their current scalar
// values into one coefficient. It exposes identity cores hidden under
// scaling so the block shortcut still fires for s·I operands.
func peelScaled(op Operator) (core Operator, coeff float64) {
	coeff = 1
	for {
		sc, ok := op.(*ScaledOperator)
		if !ok {
			return op, coeff
		}
		coeff *= sc.Coeff().Value()
		op = sc.Inner()
	}
}

// MulTo computes dst = kron(outer, inner)·src.
func (l *TensorProductOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	const tag = "TensorProductOperator.MulTo"
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr(tag, err)
	}

	return l.mulCore(tag, dst, src, 1, 0)
}

// MulAddTo computes dst = alpha·kron(outer, inner)·src + beta·dst.
func (l *TensorProductOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	const tag = "TensorProductOperator.MulAddTo"
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr(tag, err)
	}

	return l.mulCore(tag, dst, src, alpha, beta)
}

// mulCore runs the staged multiply. Shapes are already validated.
func (l *TensorProductOperator) mulCore(tag string, dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	if err := validateBatch(l.batch, l.w != nil, src); err != nil {
		return operr(tag, err)
	}
	b := l.batch
	rOut, cOut := l.outer.Dims()
	rIn, cIn := l.inner.Dims()

	// Identity-shaped outer (possibly under scaling) multiplies blocks
	// independently: gather, apply inner, put the blocks straight back.
	if core, coeff := peelScaled(l.outer); isIdentityKind(core) {
		gatherBlocks(l.w, src, cIn, cOut, b)
		if err := l.inner.MulTo(l.c, l.w); err != nil {
			return err
		}
		ungatherBlocks(dst, l.c, rIn, cOut, b, alpha*coeff, beta)

		return nil
	}

	// Unit batch with contiguous storage: the two permute passes collapse
	// into transpose views and the inner product lands in c directly.
	if b == 1 {
		if sg, ok := rawGeneralOf(src); ok && sg.Stride == sg.Cols {
			u := mat.NewDense(cOut, cIn, sg.Data[:cOut*cIn])
			if err := l.inner.MulTo(l.c, u.T()); err != nil {
				return err
			}
			dg := dst.RawMatrix()
			if alpha == 1 && beta == 0 && dg.Stride == dg.Cols {
				od := mat.NewDense(rOut, rIn, dg.Data[:rOut*rIn])

				return l.outer.MulTo(od, l.c.T())
			}
			if err := l.outer.MulTo(l.o, l.c.T()); err != nil {
				return err
			}
			scatterBlocks(dst, l.o, rOut, rIn, 1, alpha, beta)

			return nil
		}
	}

	gatherBlocks(l.w, src, cIn, cOut, b)
	if err := l.inner.MulTo(l.c, l.w); err != nil {
		return err
	}
	swapBlocks(l.v, l.c, cOut, rIn, b)
	if err := l.outer.MulTo(l.o, l.v); err != nil {
		return err
	}
	scatterBlocks(dst, l.o, rOut, rIn, b, alpha, beta)

	return nil
}

// SolveTo computes dst = kron(outer, inner) \ rhs by factoring the solve
// through the operands. rhs is read only during the first gather, so dst
// may alias it.
func (l *TensorProductOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	const tag = "TensorProductOperator.SolveTo"
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr(tag, err)
	}

	return l.solveCore(tag, dst, rhs)
}

// solveCore runs the staged solve. Shapes are already validated. Operand
// solves go through the solver accessors: the primaries when the solve
// widths coincide with the multiply widths, the solve-width clones
// otherwise.
func (l *TensorProductOperator) solveCore(tag string, dst *mat.Dense, rhs mat.Matrix) error {
	if err := validateBatch(l.batch, l.sw != nil, rhs); err != nil {
		return operr(tag, err)
	}
	b := l.batch
	rOut, cOut := l.outer.Dims()
	rIn, cIn := l.inner.Dims()
	in, out := l.innerSolver(), l.outerSolver()

	if core, coeff := peelScaled(l.outer); isIdentityKind(core) {
		if coeff == 0 {
			return operr(tag, ErrNotInvertible)
		}
		gatherBlocks(l.sw, rhs, rIn, rOut, b)
		if err := in.SolveTo(l.sc, l.sw); err != nil {
			return err
		}
		ungatherBlocks(dst, l.sc, cIn, rOut, b, 1/coeff, 0)

		return nil
	}

	if b == 1 {
		if rg, ok := rawGeneralOf(rhs); ok && rg.Stride == rg.Cols {
			rv := mat.NewDense(rOut, rIn, rg.Data[:rOut*rIn])
			if err := in.SolveTo(l.sc, rv.T()); err != nil {
				return err
			}
			dg := dst.RawMatrix()
			if dg.Stride == dg.Cols {
				sd := mat.NewDense(cOut, cIn, dg.Data[:cOut*cIn])

				return out.SolveTo(sd, l.sc.T())
			}
			if err := out.SolveTo(l.so, l.sc.T()); err != nil {
				return err
			}
			scatterBlocks(dst, l.so, cOut, cIn, 1, 1, 0)

			return nil
		}
	}

	gatherBlocks(l.sw, rhs, rIn, rOut, b)
	if err := in.SolveTo(l.sc, l.sw); err != nil {
		return err
	}
	swapBlocks(l.sv, l.sc, rOut, cIn, b)
	if err := out.SolveTo(l.so, l.sv); err != nil {
		return err
	}
	scatterBlocks(dst, l.so, cOut, cIn, b, 1, 0)

	return nil
}

// SolveInPlace solves a square product over rhs. The staged solve only
// reads rhs up front, so it runs with dst = rhs directly.
func (l *TensorProductOperator) SolveInPlace(rhs *mat.Dense) error {
	const tag = "TensorProductOperator.SolveInPlace"
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr(tag, err)
	}

	return l.solveCore(tag, rhs, rhs)
}

// Clone deep-copies both operands; the copy is uncached.
func (l *TensorProductOperator) Clone() Operator {
	return &TensorProductOperator{outer: l.outer.Clone(), inner: l.inner.Clone()}
}

// Resize is unsupported: a product dimension does not split into operand
// dimensions unambiguously.
func (l *TensorProductOperator) Resize(int) error {
	return operr("TensorProductOperator.Resize", ErrCapability)
}

// isIdentityKind reports whether op is the identity leaf.
func isIdentityKind(op Operator) bool {
	_, ok := op.(*IdentityOperator)

	return ok
}
