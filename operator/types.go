// SPDX-License-Identifier: MIT
// Package operator: core contracts shared by every operator kind.

package operator

import (
	"gonum.org/v1/gonum/mat"
)

// Operator is the common contract of every node in the algebra: leaves
// (identity, matrix, diagonal, function-backed) and combinators (scaled,
// added, composed, adjoint, transposed, inverted, factorized, affine,
// tensor product).
//
// Shape convention: Dims returns (r, c) — the operator maps length-c inputs
// to length-r outputs; batched application maps (c × b) blocks to (r × b)
// blocks, column by column.
//
// Trait protocol: the Is*/Has* predicates are pure and side-effect free.
// Callers gate work on them; the apply methods re-check and fail with
// ErrCapability before touching dst, so probing without gating is safe.
//
// Update protocol: coefficients may depend on a (state, param, time)
// triple. Update returns a refreshed tree and leaves the receiver
// untouched; the rebuilt tree carries no scratch. UpdateInPlace refreshes
// the receiver and keeps every cache alive — that is the solver path.
// Constant subtrees short-circuit both forms.
//
// Caching protocol: Cache allocates the receiver's scratch for one batch
// width, recursively. It mutates the receiver; the package-level
// CacheOperator is the safe entry that deep-copies first. Leaves without
// scratch are vacuously cached.
//
// Application protocol: MulTo/MulAddTo/SolveTo write into caller-allocated
// dst buffers; SolveInPlace overwrites rhs and requires a square operator.
// dst must not alias src. MulAddTo computes dst = alpha·L·src + beta·dst;
// beta == 0 means dst is write-only (its prior contents are never read).
type Operator interface {
	Dims() (r, c int)

	IsLinear() bool
	IsConstant() bool
	IsZero() bool
	HasAdjoint() bool
	HasMul() bool
	HasMulInPlace() bool
	HasSolve() bool
	HasSolveInPlace() bool

	Update(state []float64, param any, tm float64) (Operator, error)
	UpdateInPlace(state []float64, param any, tm float64) error

	Cache(src mat.Matrix) error
	IsCached() bool

	MulTo(dst *mat.Dense, src mat.Matrix) error
	MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error
	SolveTo(dst *mat.Dense, rhs mat.Matrix) error
	SolveInPlace(rhs *mat.Dense) error

	Clone() Operator
	Resize(n int) error
}

// UpdateFunc recomputes a matrix coefficient from its current value and the
// ambient (state, param, time) triple. The returned matrix must keep the
// payload's dims. Hooks must be deterministic; the package never calls them
// concurrently.
type UpdateFunc func(cur mat.Matrix, state []float64, param any, tm float64) mat.Matrix

// UpdateInPlaceFunc refreshes a matrix coefficient by mutating it directly.
type UpdateInPlaceFunc func(cur mat.Matrix, state []float64, param any, tm float64)

// DiagUpdateFunc refreshes a diagonal coefficient vector in place.
type DiagUpdateFunc func(diag []float64, state []float64, param any, tm float64)

// VecUpdateFunc refreshes a bias vector in place.
type VecUpdateFunc func(vec []float64, state []float64, param any, tm float64)

// adjointApplier is the internal capability of leaves that can apply (and
// possibly solve) their transpose directly. Adjoint/Transpose wrap only
// operators that implement it; elements are real, so adjoint ≡ transpose.
// hasSolveTrans gates the solve pair without attempting it.
type adjointApplier interface {
	mulTransTo(dst *mat.Dense, src mat.Matrix) error
	mulTransAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error
	solveTransTo(dst *mat.Dense, rhs mat.Matrix) error
	hasSolveTrans() bool
}

// batchCached is implemented by kinds that carry batch-sized scratch; it
// lets CacheOperator detect an already-compatible cache without widening
// the public surface.
type batchCached interface {
	cachedBatch() (batch int, ok bool)
}

// --- trait fold helpers (shared by n-ary combinators) ---

// allLinear reports whether every operator in ops is linear.
func allLinear(ops []Operator) bool {
	for _, op := range ops {
		if !op.IsLinear() {
			return false
		}
	}

	return true
}

// allConstant reports whether every operator in ops is constant.
func allConstant(ops []Operator) bool {
	for _, op := range ops {
		if !op.IsConstant() {
			return false
		}
	}

	return true
}

// allAdjoint reports whether every operator in ops has an adjoint.
func allAdjoint(ops []Operator) bool {
	for _, op := range ops {
		if !op.HasAdjoint() {
			return false
		}
	}

	return true
}

// allMul reports whether every operator in ops supports multiplication.
func allMul(ops []Operator) bool {
	for _, op := range ops {
		if !op.HasMul() {
			return false
		}
	}

	return true
}

// allMulInPlace reports whether every operator supports in-place multiply.
func allMulInPlace(ops []Operator) bool {
	for _, op := range ops {
		if !op.HasMulInPlace() {
			return false
		}
	}

	return true
}

// allCached reports whether every operator in ops is cached.
func allCached(ops []Operator) bool {
	for _, op := range ops {
		if !op.IsCached() {
			return false
		}
	}

	return true
}

// allSquare reports whether every operator in ops is square.
func allSquare(ops []Operator) bool {
	for _, op := range ops {
		if !IsSquare(op) {
			return false
		}
	}

	return true
}

// updateAll applies the pure update to every operator in ops, returning a
// fresh slice. Constant members return themselves (structural sharing of
// constant subtrees is safe: they carry no mutable coefficients).
func updateAll(ops []Operator, state []float64, param any, tm float64) ([]Operator, error) {
	next := make([]Operator, len(ops))
	for i, op := range ops {
		nop, err := op.Update(state, param, tm)
		if err != nil {
			return nil, err
		}
		next[i] = nop
	}

	return next, nil
}

// updateAllInPlace applies the mutating update to every operator in ops.
func updateAllInPlace(ops []Operator, state []float64, param any, tm float64) error {
	for _, op := range ops {
		if err := op.UpdateInPlace(state, param, tm); err != nil {
			return err
		}
	}

	return nil
}

// cloneAll deep-copies every operator in ops.
func cloneAll(ops []Operator) []Operator {
	next := make([]Operator, len(ops))
	for i, op := range ops {
		next[i] = op.Clone()
	}

	return next
}
