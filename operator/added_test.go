// SPDX-License-Identifier: MIT

package operator_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/linop/operator"
)

// TestAdd_FlattensNestedSums verifies Add(Add(a, b), c) and Add(a, b, c)
// build the same three-term node.
func TestAdd_FlattensNestedSums(t *testing.T) {
	a := mustDiag(t, 1, 1)
	b := mustDiag(t, 2, 2)
	c := mustDiag(t, 3, 3)

	inner, err := operator.Add(a, b)
	require.NoError(t, err)
	outer, err := operator.Add(inner, c)
	require.NoError(t, err)

	sum, ok := outer.(*operator.AddedOperator)
	require.True(t, ok)
	terms := operator.TermsOf_TestOnly(sum)
	require.Len(t, terms, 3)
	require.Same(t, operator.Operator(a), terms[0])
	require.Same(t, operator.Operator(b), terms[1])
	require.Same(t, operator.Operator(c), terms[2])
}

// TestAdd_SingleOperandPassthrough verifies a one-term sum returns the
// operand itself.
func TestAdd_SingleOperandPassthrough(t *testing.T) {
	a := mustDiag(t, 1, 2)
	out, err := operator.Add(a)
	require.NoError(t, err)
	require.Same(t, operator.Operator(a), out)
}

// TestAdd_Validation verifies empty input, nil members, and shape
// mismatches are rejected.
func TestAdd_Validation(t *testing.T) {
	_, err := operator.Add()
	require.ErrorIs(t, err, operator.ErrNilOperand)

	_, err = operator.Add(mustDiag(t, 1), nil)
	require.ErrorIs(t, err, operator.ErrNilOperand)

	_, err = operator.Add(mustDiag(t, 1, 2), mustDiag(t, 1, 2, 3))
	require.ErrorIs(t, err, operator.ErrShape)
}

// TestAdded_MulAccumulates verifies term-by-term accumulation against the
// explicit dense sum, including the alpha/beta blend.
func TestAdded_MulAccumulates(t *testing.T) {
	a := mustMatrix(t, 2, 2, 1, 2, 3, 4)
	d := mustDiag(t, 5, 6)
	sum, err := operator.Add(a, d)
	require.NoError(t, err)

	explicit := mat.NewDense(2, 2, []float64{6, 2, 3, 10})
	src := seqBlock(2, 3)

	dst := mat.NewDense(2, 3, nil)
	require.NoError(t, sum.MulTo(dst, src))
	requireDenseInDelta(t, mulRef(1, explicit, src, 0, nil), dst)

	blended := seqBlock(2, 3)
	want := mulRef(2, explicit, src, -1, mat.DenseCopyOf(blended))
	require.NoError(t, sum.MulAddTo(blended, src, 2, -1))
	requireDenseInDelta(t, want, blended)
}

// TestSub_IsAddOfNegated verifies a − b through the scaled-sum encoding.
func TestSub_IsAddOfNegated(t *testing.T) {
	a := mustDiag(t, 5, 7)
	b := mustDiag(t, 1, 2)
	diff, err := operator.Sub(a, b)
	require.NoError(t, err)

	dst := mat.NewDense(2, 1, nil)
	require.NoError(t, diff.MulTo(dst, column(1, 1)))
	requireDenseInDelta(t, column(4, 5), dst)

	_, err = operator.Sub(a, nil)
	require.ErrorIs(t, err, operator.ErrNilOperand)
}

// TestAdded_SoleTermSolve verifies the sum solves exactly when one term is
// currently non-zero and collapses onto that term.
func TestAdded_SoleTermSolve(t *testing.T) {
	a := mustMatrix(t, 2, 2, 4, 1, 1, 3)
	zero := mustDiag(t, 0, 0)
	sum, err := operator.Add(a, zero)
	require.NoError(t, err)
	require.True(t, sum.HasSolve())
	require.True(t, sum.HasSolveInPlace())

	rhs := column(1, 2)
	dst := mat.NewDense(2, 1, nil)
	require.NoError(t, sum.SolveTo(dst, rhs))
	requireDenseInDelta(t, solveRef(t, mat.NewDense(2, 2, []float64{4, 1, 1, 3}), rhs), dst)

	work := mat.DenseCopyOf(rhs)
	require.NoError(t, sum.SolveInPlace(work))
	requireDenseInDelta(t, dst, work)

	twoLive, err := operator.Add(a, mustDiag(t, 1, 1))
	require.NoError(t, err)
	require.False(t, twoLive.HasSolve())
	require.ErrorIs(t, twoLive.SolveTo(dst, rhs), operator.ErrNotInvertible)

	allZero, err := operator.Add(mustDiag(t, 0, 0), mustDiag(t, 0, 0))
	require.NoError(t, err)
	require.ErrorIs(t, allZero.SolveTo(dst, rhs), operator.ErrNotInvertible)
}

// TestAdded_ZeroTermReappears verifies solvability is re-evaluated per
// call: a term that wakes up after an update blocks the collapse.
func TestAdded_ZeroTermReappears(t *testing.T) {
	a := mustMatrix(t, 2, 2, 4, 1, 1, 3)
	sleeper, err := operator.NewDiagonal([]float64{0, 0}, func(d, _ []float64, _ any, tm float64) {
		for i := range d {
			d[i] = tm
		}
	})
	require.NoError(t, err)
	sum, err := operator.Add(a, sleeper)
	require.NoError(t, err)

	rhs := column(1, 2)
	dst := mat.NewDense(2, 1, nil)
	require.NoError(t, sum.SolveTo(dst, rhs), "sleeper is zero, sum collapses to a")

	require.NoError(t, sum.UpdateInPlace(nil, nil, 1))
	require.False(t, sum.HasSolve())
	require.ErrorIs(t, sum.SolveTo(dst, rhs), operator.ErrNotInvertible)

	require.NoError(t, sum.UpdateInPlace(nil, nil, 0))
	require.NoError(t, sum.SolveTo(dst, rhs), "sleeper went back to zero")
}

// TestAdded_CacheFolding verifies cache state and width fold across the
// terms.
func TestAdded_CacheFolding(t *testing.T) {
	agnostic, err := operator.Add(mustMatrix(t, 2, 2, 1, 0, 0, 1), mustDiag(t, 1, 2))
	require.NoError(t, err)
	require.True(t, agnostic.IsCached(), "raw leaves are vacuously cached")
	w, ok := operator.ExportedCacheWidth(agnostic)
	require.True(t, ok)
	require.Equal(t, operator.BatchAgnostic_TestOnly, w)

	kernel, err := operator.NewFunc(2, 2, operator.FuncOpts{
		MatVec: func(dst, src []float64) { dst[0], dst[1] = src[0], src[1] },
	})
	require.NoError(t, err)
	mixed, err := operator.Add(agnostic, kernel)
	require.NoError(t, err)
	require.False(t, mixed.IsCached(), "kernel term still needs scratch")

	mustCache(t, mixed, seqBlock(2, 2))
	require.True(t, mixed.IsCached())
	w, ok = operator.ExportedCacheWidth(mixed)
	require.True(t, ok)
	require.Equal(t, 2, w, "bound term pins the folded width")
}
