// SPDX-License-Identifier: MIT

package operator

import "gonum.org/v1/gonum/mat"

// Test-Bridge (White-Box) for Private Cache Bookkeeping and Tree Internals
//
// Purpose:
//   - Expose the UNEXPORTED batch-width helpers and a few structural
//     accessors to operator_test ONLY, without widening the prod API.
//   - Enable white-box verification of cache-width folding, stage-buffer
//     layout, and tensor scratch aliasing.
//
// Build Policy:
//   - The _test.go suffix keeps this file out of production builds; it is
//     in package operator, so it can reach private symbols.
//
// Provided Surface:
//   - Exported* vars: thin pass-throughs to private width helpers.
//   - *_TestOnly funcs: read-only structural snapshots of combinators.
//
// Risks & Maintenance:
//   - Keep the snapshots in sync with the combinator structs. If a scratch
//     slot is renamed, mirror the change here once, not across many tests.

var (
	// ExportedCacheWidth exposes cacheWidth for white-box tests.
	ExportedCacheWidth = cacheWidth
	// ExportedFoldCacheWidth exposes foldCacheWidth for white-box tests.
	ExportedFoldCacheWidth = foldCacheWidth
	// ExportedCompatiblyCached exposes compatiblyCached for white-box tests.
	ExportedCompatiblyCached = compatiblyCached
	// ExportedPeelScaled exposes peelScaled for white-box tests.
	ExportedPeelScaled = peelScaled
)

// BatchAgnostic_TestOnly re-exports the agnostic width marker.
const BatchAgnostic_TestOnly = batchAgnostic

// TermsOf_TestOnly returns the flattened term list of a sum.
func TermsOf_TestOnly(sum *AddedOperator) []Operator {
	return sum.terms
}

// FactorsOf_TestOnly returns the flattened factor list of a chain.
func FactorsOf_TestOnly(chain *ComposedOperator) []Operator {
	return chain.factors
}

// StagesOf_TestOnly returns the chain's stage buffers (index 0 unused).
func StagesOf_TestOnly(chain *ComposedOperator) []*mat.Dense {
	return chain.stages
}

// TensorScratchSlots_TestOnly returns the four slots the scratch-aliasing
// tests inspect: the multiply gather and output blocks, and the solve
// gather and output blocks.
func TensorScratchSlots_TestOnly(l *TensorProductOperator) (w, o, sw, so *mat.Dense) {
	return l.w, l.o, l.sw, l.so
}

// TensorSolveOperands_TestOnly returns the solve-width operand clones;
// both are nil while the solve widths coincide with the multiply widths.
func TensorSolveOperands_TestOnly(l *TensorProductOperator) (solveInner, solveOuter Operator) {
	return l.solveInner, l.solveOuter
}
