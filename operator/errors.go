// SPDX-License-Identifier: MIT
// Package operator: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the
// operator package. All operations MUST return these sentinels and tests
// MUST check them via errors.Is. No operation panics on user-triggered
// conditions; panics are reserved for programmer errors in private helpers.

package operator

import (
	"errors"
	"fmt"
)

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "operator: ..." for consistency and easy
// grepping. Do not %w-wrap these sentinels when returning directly; when
// context is essential, wrap with operr("Kind.Method", ErrX) at the outer
// boundary — callers still match via errors.Is.

var (
	// ErrShape indicates incompatible operand shapes: combinator construction
	// over mismatched dims, or apply/solve buffers that do not conform.
	ErrShape = errors.New("operator: operand shapes are incompatible")

	// ErrCapability indicates an unsupported operation for this operator
	// kind, e.g. adjoint of an affine operator or solve on a kernel that
	// provides no solve. Checked lazily, before any mutation of dst.
	ErrCapability = errors.New("operator: unsupported operation for this operator kind")

	// ErrNotInvertible indicates a solve (or inversion) against an operator
	// that is structurally or numerically not invertible: a zero scalar or
	// zero operator, a sum with more than one non-zero term, a singular
	// factorization.
	ErrNotInvertible = errors.New("operator: operator is not invertible")

	// ErrCacheUninitialized indicates an in-place apply before CacheOperator
	// was called for a compatible batch width.
	ErrCacheUninitialized = errors.New("operator: cache not initialized; call CacheOperator for this input shape first")

	// ErrNotSquare indicates a two-argument in-place solve on a non-square
	// operator (or a composition containing a non-square member).
	ErrNotSquare = errors.New("operator: operator is not square")

	// ErrNilOperand indicates a nil operator, payload, or buffer argument.
	ErrNilOperand = errors.New("operator: nil operand")

	// ErrBadDims indicates non-positive construction dimensions.
	ErrBadDims = errors.New("operator: dimensions must be positive")
)

// operr wraps a sentinel with the failing Kind.Method tag so messages read
// "TensorProductOperator.SolveTo: operator: ..." while errors.Is keeps
// matching the sentinel.
func operr(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
