// SPDX-License-Identifier: MIT

package operator

import "gonum.org/v1/gonum/mat"

// FuncOpts bundles the kernels of a matrix-free operator. MatVec is
// required; every other field is optional and switches a capability on:
//   - MatTransVec  — dst = Lᵀ·src; enables Adjoint/Transpose.
//   - SolveVec     — dst = L⁻¹·rhs; enables solve paths.
//   - SolveTransVec — dst = L⁻ᵀ·rhs; enables solve through an adjoint wrap.
//   - OnUpdate     — refreshes state captured by the kernels; nil marks the
//     operator constant.
//   - NonLinear    — declares that MatVec is not a linear map, which blocks
//     adjoint construction and linearity-gated algebra.
//
// Kernels receive caller-sized slices (len == operator cols for inputs,
// rows for outputs) and must not retain them.
type FuncOpts struct {
	MatVec        func(dst, src []float64)
	MatTransVec   func(dst, src []float64)
	SolveVec      func(dst, rhs []float64)
	SolveTransVec func(dst, rhs []float64)
	OnUpdate      func(state []float64, param any, tm float64)
	NonLinear     bool
}

// FuncOperator wraps user kernels as an operator leaf. Batched application
// loops columns through two cached column buffers; caching is therefore
// required before in-place application.
type FuncOperator struct {
	rows, cols int
	opts       FuncOpts
	colIn      []float64
	colOut     []float64
	batch      int
}

// NewFunc wraps the kernels in opts as an (rows × cols) operator.
func NewFunc(rows, cols int, opts FuncOpts) (*FuncOperator, error) {
	if rows <= 0 || cols <= 0 {
		return nil, operr("NewFunc", ErrBadDims)
	}
	if opts.MatVec == nil {
		return nil, operr("NewFunc", ErrNilOperand)
	}

	return &FuncOperator{rows: rows, cols: cols, opts: opts}, nil
}

// Dims returns the declared kernel dims.
func (l *FuncOperator) Dims() (r, c int) { return l.rows, l.cols }

// IsLinear reports whether the kernels were declared linear.
func (l *FuncOperator) IsLinear() bool { return !l.opts.NonLinear }

// IsConstant reports whether no update hook exists.
func (l *FuncOperator) IsConstant() bool { return l.opts.OnUpdate == nil }

// IsZero reports false: kernel behavior is opaque.
func (l *FuncOperator) IsZero() bool { return false }

// HasAdjoint reports whether a transpose kernel exists on a linear map.
func (l *FuncOperator) HasAdjoint() bool { return l.opts.MatTransVec != nil && l.IsLinear() }

// HasMul reports true.
func (l *FuncOperator) HasMul() bool { return true }

// HasMulInPlace reports true.
func (l *FuncOperator) HasMulInPlace() bool { return true }

// HasSolve reports whether a solve kernel exists.
func (l *FuncOperator) HasSolve() bool { return l.opts.SolveVec != nil }

// HasSolveInPlace reports whether a solve kernel exists on a square map.
func (l *FuncOperator) HasSolveInPlace() bool { return l.opts.SolveVec != nil && IsSquare(l) }

// Update invokes the update hook and returns a scratch-free copy. Kernel
// closures are shared between the receiver and the copy: state captured by
// the kernels refreshes for both. Constant leaves return the receiver.
func (l *FuncOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.opts.OnUpdate == nil {
		return l, nil
	}
	l.opts.OnUpdate(state, param, tm)

	return &FuncOperator{rows: l.rows, cols: l.cols, opts: l.opts}, nil
}

// UpdateInPlace invokes the update hook.
func (l *FuncOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	if l.opts.OnUpdate == nil {
		return nil
	}
	l.opts.OnUpdate(state, param, tm)

	return nil
}

// Cache allocates the two column buffers the batched loops stage through.
func (l *FuncOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("FuncOperator.Cache", err)
	}
	n := max(l.rows, l.cols)
	l.colIn = make([]float64, n)
	l.colOut = make([]float64, n)
	_, l.batch = src.Dims()

	return nil
}

// IsCached reports whether the column buffers exist.
func (l *FuncOperator) IsCached() bool { return l.colIn != nil }

// cachedBatch reports the batch width the cache was built for.
func (l *FuncOperator) cachedBatch() (int, bool) {
	if l.colIn == nil {
		return 0, false
	}

	return l.batch, true
}

// MulTo computes dst = L·src column by column.
func (l *FuncOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	return l.mulColumns("FuncOperator.MulTo", l.opts.MatVec, l.cols, l.rows, dst, src, 1, 0)
}

// MulAddTo computes dst = alpha·L·src + beta·dst column by column.
func (l *FuncOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	return l.mulColumns("FuncOperator.MulAddTo", l.opts.MatVec, l.cols, l.rows, dst, src, alpha, beta)
}

// SolveTo computes dst = L⁻¹·rhs column by column through the solve kernel.
func (l *FuncOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	const tag = "FuncOperator.SolveTo"
	if l.opts.SolveVec == nil {
		return operr(tag, ErrCapability)
	}
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr(tag, err)
	}

	return l.applyColumns(tag, l.opts.SolveVec, l.rows, l.cols, dst, rhs, 1, 0)
}

// SolveInPlace overwrites rhs with L⁻¹·rhs.
func (l *FuncOperator) SolveInPlace(rhs *mat.Dense) error {
	const tag = "FuncOperator.SolveInPlace"
	if l.opts.SolveVec == nil {
		return operr(tag, ErrCapability)
	}
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr(tag, err)
	}

	return l.applyColumns(tag, l.opts.SolveVec, l.rows, l.cols, rhs, rhs, 1, 0)
}

// Clone shares the kernel closures and drops the scratch.
func (l *FuncOperator) Clone() Operator {
	return &FuncOperator{rows: l.rows, cols: l.cols, opts: l.opts}
}

// Resize is unsupported: kernel dims are fixed at construction.
func (l *FuncOperator) Resize(int) error {
	return operr("FuncOperator.Resize", ErrCapability)
}

// --- adjoint capability ---

func (l *FuncOperator) mulTransTo(dst *mat.Dense, src mat.Matrix) error {
	return l.mulTransAddTo(dst, src, 1, 0)
}

func (l *FuncOperator) mulTransAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	const tag = "FuncOperator.MulTransAddTo"
	if l.opts.MatTransVec == nil {
		return operr(tag, ErrCapability)
	}

	return l.applyColumns(tag, l.opts.MatTransVec, l.rows, l.cols, dst, src, alpha, beta)
}

func (l *FuncOperator) solveTransTo(dst *mat.Dense, rhs mat.Matrix) error {
	const tag = "FuncOperator.SolveTransTo"
	if l.opts.SolveTransVec == nil {
		return operr(tag, ErrCapability)
	}

	return l.applyColumns(tag, l.opts.SolveTransVec, l.cols, l.rows, dst, rhs, 1, 0)
}

// hasSolveTrans reports whether a transpose-solve kernel exists.
func (l *FuncOperator) hasSolveTrans() bool { return l.opts.SolveTransVec != nil }

// mulColumns validates the forward shapes, then stages columns.
func (l *FuncOperator) mulColumns(tag string, kernel func(dst, src []float64), inLen, outLen int, dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr(tag, err)
	}

	return l.applyColumns(tag, kernel, inLen, outLen, dst, src, alpha, beta)
}

// applyColumns runs kernel over every column of src, blending results into
// dst. Shapes were validated by the caller; only cache state is checked.
func (l *FuncOperator) applyColumns(tag string, kernel func(dst, src []float64), inLen, outLen int, dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	_, b := src.Dims()
	batch, ok := l.cachedBatch()
	if err := validateBatch(batch, ok, src); err != nil {
		return operr(tag, err)
	}
	in := l.colIn[:inLen]
	out := l.colOut[:outLen]
	for j := 0; j < b; j++ {
		copyColumnIn(in, src, j)
		kernel(out, in)
		writeColumnBlend(dst, j, alpha, out, beta)
	}

	return nil
}
