// SPDX-License-Identifier: MIT

package operator_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/linop/operator"
)

// TestDiagonal_Construction verifies empty diagonals are rejected.
func TestDiagonal_Construction(t *testing.T) {
	_, err := operator.NewDiagonal(nil, nil)
	require.ErrorIs(t, err, operator.ErrBadDims)

	_, err = operator.NewDiagonal([]float64{}, nil)
	require.ErrorIs(t, err, operator.ErrBadDims)
}

// TestDiagonal_MulScalesRows verifies row scaling for single columns and
// batches.
func TestDiagonal_MulScalesRows(t *testing.T) {
	l := mustDiag(t, 1, 2, 3)

	dst := mat.NewDense(3, 1, nil)
	require.NoError(t, l.MulTo(dst, column(1, 1, 1)))
	requireDenseInDelta(t, column(1, 2, 3), dst)

	src := seqBlock(3, 2)
	block := mat.NewDense(3, 2, nil)
	want := mulRef(1, mat.NewDiagDense(3, []float64{1, 2, 3}), src, 0, nil)
	require.NoError(t, l.MulTo(block, src))
	requireDenseInDelta(t, want, block)
}

// TestDiagonal_MulAddToBlend verifies the fused alpha/beta form against a
// gonum reference.
func TestDiagonal_MulAddToBlend(t *testing.T) {
	l := mustDiag(t, 2, -1)
	src := seqBlock(2, 3)
	dst := seqBlock(2, 3)
	want := mulRef(3, mat.NewDiagDense(2, []float64{2, -1}), src, 0.5, mat.DenseCopyOf(dst))

	require.NoError(t, l.MulAddTo(dst, src, 3, 0.5))
	requireDenseInDelta(t, want, dst)
}

// TestDiagonal_SolveDividesRows verifies both solve forms divide by the
// diagonal entries.
func TestDiagonal_SolveDividesRows(t *testing.T) {
	l := mustDiag(t, 2, 4)
	rhs := column(2, 8)

	dst := mat.NewDense(2, 1, nil)
	require.NoError(t, l.SolveTo(dst, rhs))
	requireDenseInDelta(t, column(1, 2), dst)

	require.NoError(t, l.SolveInPlace(rhs))
	requireDenseInDelta(t, column(1, 2), rhs)
}

// TestDiagonal_SolveZeroEntryFails verifies a zero diagonal entry aborts
// the solve before any output row is written.
func TestDiagonal_SolveZeroEntryFails(t *testing.T) {
	l := mustDiag(t, 1, 0)
	dst := mat.NewDense(2, 1, []float64{7, 7})

	err := l.SolveTo(dst, column(3, 4))
	require.ErrorIs(t, err, operator.ErrNotInvertible)
	requireDenseInDelta(t, column(7, 7), dst)
}

// TestDiagonal_UpdateProtocol verifies pure updates build a fresh leaf
// while in-place updates mutate the receiver.
func TestDiagonal_UpdateProtocol(t *testing.T) {
	l, err := operator.NewDiagonal([]float64{1, 2}, func(d, _ []float64, _ any, tm float64) {
		for i := range d {
			d[i] *= tm
		}
	})
	require.NoError(t, err)
	require.False(t, l.IsConstant())

	nl, err := l.Update(nil, nil, 10)
	require.NoError(t, err)
	require.NotSame(t, operator.Operator(l), nl)
	old := mat.NewDense(2, 1, nil)
	require.NoError(t, l.MulTo(old, column(1, 1)))
	requireDenseInDelta(t, column(1, 2), old, "receiver keeps its coefficients")
	fresh := mat.NewDense(2, 1, nil)
	require.NoError(t, nl.MulTo(fresh, column(1, 1)))
	requireDenseInDelta(t, column(10, 20), fresh)

	require.NoError(t, l.UpdateInPlace(nil, nil, 3))
	require.NoError(t, l.MulTo(old, column(1, 1)))
	requireDenseInDelta(t, column(3, 6), old)
}

// TestDiagonal_Resize verifies growth zero-extends and truncation keeps
// the leading entries.
func TestDiagonal_Resize(t *testing.T) {
	l := mustDiag(t, 5, 6)

	require.NoError(t, l.Resize(3))
	r, c := l.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)
	dst := mat.NewDense(3, 1, nil)
	require.NoError(t, l.MulTo(dst, column(1, 1, 1)))
	requireDenseInDelta(t, column(5, 6, 0), dst)

	require.NoError(t, l.Resize(1))
	one := mat.NewDense(1, 1, nil)
	require.NoError(t, l.MulTo(one, column(1)))
	requireDenseInDelta(t, column(5), one)

	require.ErrorIs(t, l.Resize(0), operator.ErrBadDims)
}

// TestDiagonal_TraitsAndAdjoint verifies the trait surface, the vacuous
// cache, and the self-adjoint collapse.
func TestDiagonal_TraitsAndAdjoint(t *testing.T) {
	l := mustDiag(t, 0, 0)
	require.True(t, l.IsZero())
	require.True(t, l.IsLinear())
	require.True(t, l.IsConstant())
	require.True(t, l.IsCached(), "diagonals are vacuously cached")
	w, ok := operator.ExportedCacheWidth(l)
	require.True(t, ok)
	require.Equal(t, operator.BatchAgnostic_TestOnly, w)

	live := mustDiag(t, 1, 2)
	require.False(t, live.IsZero())
	ad, err := operator.Adjoint(live)
	require.NoError(t, err)
	require.Same(t, operator.Operator(live), ad, "real diagonals are self-adjoint")

	err = live.Cache(mat.NewDense(3, 1, nil))
	require.ErrorIs(t, err, operator.ErrShape, "representative input must have n rows")
}
