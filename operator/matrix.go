// SPDX-License-Identifier: MIT

package operator

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// MatrixOperator wraps a gonum matrix payload as an operator leaf. The
// payload is consumed, not copied: callers hand over ownership.
//
// Update hooks: update recomputes the payload functionally, updateInPlace
// mutates it. Either (or both) may be nil; both nil marks the leaf
// constant. When only the pure hook exists, UpdateInPlace replaces the
// payload reference; when only the mutating hook exists, Update first
// clones the payload so the receiver stays untouched.
//
// Dense payloads (anything exposing raw row-major storage) run multiply
// paths on blas64.Gemm and are vacuously cached; exotic payloads fall back
// to a scratch block allocated by Cache.
type MatrixOperator struct {
	a             mat.Matrix
	update        UpdateFunc
	updateInPlace UpdateInPlaceFunc
	scratch       *mat.Dense // (max(r,c) × batch) fallback block, nil until cached
	batch         int
}

// NewMatrix wraps payload a with optional update hooks.
func NewMatrix(a mat.Matrix, update UpdateFunc, updateInPlace UpdateInPlaceFunc) (*MatrixOperator, error) {
	if a == nil {
		return nil, operr("NewMatrix", ErrNilOperand)
	}
	r, c := a.Dims()
	if r <= 0 || c <= 0 {
		return nil, operr("NewMatrix", ErrBadDims)
	}

	return &MatrixOperator{a: a, update: update, updateInPlace: updateInPlace}, nil
}

// Dims returns the payload dims.
func (l *MatrixOperator) Dims() (r, c int) { return l.a.Dims() }

// IsLinear reports true.
func (l *MatrixOperator) IsLinear() bool { return true }

// IsConstant reports whether both update hooks are nil.
func (l *MatrixOperator) IsConstant() bool { return l.update == nil && l.updateInPlace == nil }

// IsZero reports whether every payload entry is exactly zero as of the
// last update.
func (l *MatrixOperator) IsZero() bool { return isAllZero(l.a) }

// HasAdjoint reports true: the payload transposes lazily.
func (l *MatrixOperator) HasAdjoint() bool { return true }

// HasMul reports true.
func (l *MatrixOperator) HasMul() bool { return true }

// HasMulInPlace reports true.
func (l *MatrixOperator) HasMulInPlace() bool { return true }

// HasSolve reports true: square payloads solve exactly, rectangular ones in
// the least-squares sense, both delegated to gonum.
func (l *MatrixOperator) HasSolve() bool { return true }

// HasSolveInPlace reports whether the payload is square.
func (l *MatrixOperator) HasSolveInPlace() bool { return IsSquare(l) }

// Update returns a leaf with refreshed coefficients, leaving the receiver
// untouched. Constant leaves return the receiver.
func (l *MatrixOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.IsConstant() {
		return l, nil
	}
	var na mat.Matrix
	if l.update != nil {
		na = l.update(l.a, state, param, tm)
		if na == nil {
			return nil, operr("MatrixOperator.Update", ErrNilOperand)
		}
	} else {
		na = clonePayload(l.a)
		l.updateInPlace(na, state, param, tm)
	}
	if !sameDims(na, l.a) {
		return nil, operr("MatrixOperator.Update", ErrShape)
	}

	return &MatrixOperator{a: na, update: l.update, updateInPlace: l.updateInPlace}, nil
}

// UpdateInPlace refreshes the payload, preferring the mutating hook.
func (l *MatrixOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	if l.IsConstant() {
		return nil
	}
	if l.updateInPlace != nil {
		l.updateInPlace(l.a, state, param, tm)

		return nil
	}
	na := l.update(l.a, state, param, tm)
	if na == nil {
		return operr("MatrixOperator.UpdateInPlace", ErrNilOperand)
	}
	if !sameDims(na, l.a) {
		return operr("MatrixOperator.UpdateInPlace", ErrShape)
	}
	l.a = na

	return nil
}

// Cache allocates the fallback scratch block for exotic payloads. Dense
// payloads need none; the call still validates the representative input.
func (l *MatrixOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("MatrixOperator.Cache", err)
	}
	_, b := src.Dims()
	if l.rawPayload() {
		return nil
	}
	r, c := l.Dims()
	l.scratch = mat.NewDense(max(r, c), b, nil)
	l.batch = b

	return nil
}

// IsCached reports true for dense payloads (no scratch needed) and for
// exotic payloads once Cache ran.
func (l *MatrixOperator) IsCached() bool { return l.rawPayload() || l.scratch != nil }

// MulTo computes dst = A·src.
func (l *MatrixOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr("MatrixOperator.MulTo", err)
	}
	dst.Mul(l.a, src)

	return nil
}

// MulAddTo computes dst = alpha·A·src + beta·dst. Dense payloads and
// sources run one fused Gemm; anything else stages through the cached
// scratch block (or a transient one when the leaf was never cached).
func (l *MatrixOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr("MatrixOperator.MulAddTo", err)
	}
	if ar, ok := l.a.(mat.RawMatrixer); ok {
		if sg, ok := rawGeneralOf(src); ok {
			blas64.Gemm(blas.NoTrans, blas.NoTrans, alpha, ar.RawMatrix(), sg, beta, dst.RawMatrix())

			return nil
		}
	}
	r, _ := l.Dims()
	_, b := src.Dims()
	tmp, err := l.scratchView(r, b)
	if err != nil {
		tmp = mat.NewDense(r, b, nil)
	}
	tmp.Mul(l.a, src)
	blendScaled(dst, alpha, tmp, beta)

	return nil
}

// SolveTo computes dst = A⁻¹·rhs, delegating to gonum's dense solver
// (least squares when A is rectangular). The delegated factorization
// allocates; that is the payload primitive's behavior, not this layer's.
func (l *MatrixOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr("MatrixOperator.SolveTo", err)
	}
	if err := dst.Solve(l.a, rhs); err != nil {
		return operr("MatrixOperator.SolveTo", ErrNotInvertible)
	}

	return nil
}

// SolveInPlace overwrites rhs with A⁻¹·rhs. A transient staging block is
// allocated when the leaf carries no cache.
func (l *MatrixOperator) SolveInPlace(rhs *mat.Dense) error {
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr("MatrixOperator.SolveInPlace", err)
	}
	r, _ := l.Dims()
	_, b := rhs.Dims()
	tmp, err := l.scratchView(r, b)
	if err != nil {
		tmp = mat.NewDense(r, b, nil)
	}
	if err = tmp.Solve(l.a, rhs); err != nil {
		return operr("MatrixOperator.SolveInPlace", ErrNotInvertible)
	}
	rhs.Copy(tmp)

	return nil
}

// Clone deep-copies the payload; hooks are shared, scratch is not.
func (l *MatrixOperator) Clone() Operator {
	return &MatrixOperator{a: clonePayload(l.a), update: l.update, updateInPlace: l.updateInPlace}
}

// Resize is unsupported: a dense payload has no canonical square resize.
func (l *MatrixOperator) Resize(int) error {
	return operr("MatrixOperator.Resize", ErrCapability)
}

// --- adjoint capability (real elements: adjoint ≡ transpose) ---

// mulTransTo computes dst = Aᵀ·src.
func (l *MatrixOperator) mulTransTo(dst *mat.Dense, src mat.Matrix) error {
	dst.Mul(l.a.T(), src)

	return nil
}

// mulTransAddTo computes dst = alpha·Aᵀ·src + beta·dst.
func (l *MatrixOperator) mulTransAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	if ar, ok := l.a.(mat.RawMatrixer); ok {
		if sg, ok := rawGeneralOf(src); ok {
			blas64.Gemm(blas.Trans, blas.NoTrans, alpha, ar.RawMatrix(), sg, beta, dst.RawMatrix())

			return nil
		}
	}
	_, c := l.Dims()
	_, b := src.Dims()
	tmp, err := l.scratchView(c, b)
	if err != nil {
		tmp = mat.NewDense(c, b, nil)
	}
	tmp.Mul(l.a.T(), src)
	blendScaled(dst, alpha, tmp, beta)

	return nil
}

// solveTransTo computes dst = A⁻ᵀ·rhs.
func (l *MatrixOperator) solveTransTo(dst *mat.Dense, rhs mat.Matrix) error {
	if err := dst.Solve(l.a.T(), rhs); err != nil {
		return ErrNotInvertible
	}

	return nil
}

// hasSolveTrans reports true: the transposed payload solves through the
// same delegated dense solver.
func (l *MatrixOperator) hasSolveTrans() bool { return true }

// cachedBatch reports the batch width of the fallback scratch; raw
// payloads are batch-agnostic.
func (l *MatrixOperator) cachedBatch() (int, bool) {
	if l.rawPayload() {
		return batchAgnostic, true
	}
	if l.scratch == nil {
		return 0, false
	}

	return l.batch, true
}

// scratchView slices the cached fallback block to (rows × b).
func (l *MatrixOperator) scratchView(rows, b int) (*mat.Dense, error) {
	if l.scratch == nil || l.batch != b {
		return nil, ErrCacheUninitialized
	}

	return l.scratch.Slice(0, rows, 0, b).(*mat.Dense), nil
}

// rawPayload reports whether the payload exposes raw row-major storage.
func (l *MatrixOperator) rawPayload() bool {
	_, ok := l.a.(mat.RawMatrixer)

	return ok
}

// --- payload helpers ---

// clonePayload deep-copies a matrix payload, preserving diagonal and vector
// shapes where possible; everything else lands in a fresh Dense.
func clonePayload(a mat.Matrix) mat.Matrix {
	switch t := a.(type) {
	case *mat.Dense:
		return mat.DenseCopyOf(t)
	case *mat.DiagDense:
		n := t.Diag()
		data := make([]float64, n)
		for i := 0; i < n; i++ {
			data[i] = t.At(i, i)
		}

		return mat.NewDiagDense(n, data)
	case *mat.VecDense:
		return mat.VecDenseCopyOf(t)
	default:
		return mat.DenseCopyOf(a)
	}
}

// sameDims reports whether two matrices share dims.
func sameDims(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()

	return ar == br && ac == bc
}

// isAllZero scans a payload for any non-zero entry.
func isAllZero(a mat.Matrix) bool {
	if ar, ok := a.(mat.RawMatrixer); ok {
		raw := ar.RawMatrix()
		for i := 0; i < raw.Rows; i++ {
			row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
			for _, v := range row {
				if v != 0 {
					return false
				}
			}
		}

		return true
	}
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if a.At(i, j) != 0 {
				return false
			}
		}
	}

	return true
}
