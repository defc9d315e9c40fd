// SPDX-License-Identifier: MIT
// Package operator: canonical validation helpers.
//
// Purpose:
//   - Single source of truth for nil/shape checks shared by every kind.
//   - Keep apply kernels minimal: validate first, mutate never on failure.
//
// All helpers return plain sentinels; call sites add the Kind.Method tag
// via operr. Deterministic, side-effect free, O(1).

package operator

import "gonum.org/v1/gonum/mat"

// dimser is the dims-only view the shape validators read. Full operators
// satisfy it, and so do bare embedded bases that are not complete
// Operator implementations themselves.
type dimser interface {
	Dims() (r, c int)
}

// validateOperand rejects a nil operator argument.
func validateOperand(l Operator) error {
	if l == nil {
		return ErrNilOperand
	}

	return nil
}

// validateOperands rejects empty variadic builder input and nil members.
func validateOperands(ops []Operator) error {
	if len(ops) == 0 {
		return ErrNilOperand
	}
	for _, op := range ops {
		if op == nil {
			return ErrNilOperand
		}
	}

	return nil
}

// validateMulShapes checks the multiply conformance L(r×c)·src(c×b) →
// dst(r×b). Stage 1: nil buffers. Stage 2: src rows. Stage 3: dst shape.
func validateMulShapes(l dimser, dst *mat.Dense, src mat.Matrix) error {
	if dst == nil || src == nil {
		return ErrNilOperand
	}
	r, c := l.Dims()
	sr, sc := src.Dims()
	if sr != c {
		return ErrShape
	}
	dr, dc := dst.Dims()
	if dr != r || dc != sc {
		return ErrShape
	}

	return nil
}

// validateSolveShapes checks the solve conformance L(r×c) \ rhs(r×b) →
// dst(c×b).
func validateSolveShapes(l dimser, dst *mat.Dense, rhs mat.Matrix) error {
	if dst == nil || rhs == nil {
		return ErrNilOperand
	}
	r, c := l.Dims()
	rr, rc := rhs.Dims()
	if rr != r {
		return ErrShape
	}
	dr, dc := dst.Dims()
	if dr != c || dc != rc {
		return ErrShape
	}

	return nil
}

// validateSolveInPlaceShapes checks the two-argument solve: the operator
// must be square and rhs must have exactly r rows.
func validateSolveInPlaceShapes(l dimser, rhs *mat.Dense) error {
	if rhs == nil {
		return ErrNilOperand
	}
	r, c := l.Dims()
	if r != c {
		return ErrNotSquare
	}
	if rr, _ := rhs.Dims(); rr != r {
		return ErrShape
	}

	return nil
}

// validateCacheSrc checks a representative input block: src must have
// exactly c rows and at least one column.
func validateCacheSrc(l dimser, src mat.Matrix) error {
	if src == nil {
		return ErrNilOperand
	}
	_, c := l.Dims()
	sr, sc := src.Dims()
	if sr != c || sc < 1 {
		return ErrShape
	}

	return nil
}

// validateBatch checks that a populated cache matches the batch width of
// the incoming block; scratch-carrying kinds call it before every apply.
func validateBatch(batch int, ok bool, src mat.Matrix) error {
	if !ok {
		return ErrCacheUninitialized
	}
	if _, sc := src.Dims(); sc != batch {
		return ErrCacheUninitialized
	}

	return nil
}

// IsSquare reports whether l maps a space onto itself (r == c).
func IsSquare(l Operator) bool {
	r, c := l.Dims()

	return r == c
}
