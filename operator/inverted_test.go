// SPDX-License-Identifier: MIT

package operator_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/linop/operator"
	"github.com/katalvlaran/linop/scalarop"
)

// TestInvert_StructuralCollapses verifies the identity, double-inversion,
// and scaled-operand rewrites.
func TestInvert_StructuralCollapses(t *testing.T) {
	id := mustIdentity(t, 3)
	out, err := operator.Invert(id)
	require.NoError(t, err)
	require.Same(t, operator.Operator(id), out, "identity inverts to itself")

	m := mustMatrix(t, 2, 2, 4, 1, 1, 3)
	inv, err := operator.Invert(m)
	require.NoError(t, err)
	back, err := operator.Invert(inv)
	require.NoError(t, err)
	require.Same(t, operator.Operator(m), back, "double inversion collapses")
}

// TestInvert_PushesThroughScale verifies (c·M)⁻¹ = (1/c)·M⁻¹.
func TestInvert_PushesThroughScale(t *testing.T) {
	sc, err := operator.Scale(scalarop.New(2), mustMatrix(t, 2, 2, 4, 1, 1, 3))
	require.NoError(t, err)
	inv, err := operator.Invert(sc)
	require.NoError(t, err)

	scaled, ok := inv.(*operator.ScaledOperator)
	require.True(t, ok)
	require.InDelta(t, 0.5, scaled.Coeff().Value(), 1e-9)
	require.IsType(t, &operator.InvertedOperator{}, scaled.Inner())
}

// TestInvert_RejectsZero verifies provably zero operands fail eagerly.
func TestInvert_RejectsZero(t *testing.T) {
	_, err := operator.Invert(nil)
	require.ErrorIs(t, err, operator.ErrNilOperand)

	_, err = operator.Invert(mustDiag(t, 0, 0))
	require.ErrorIs(t, err, operator.ErrNotInvertible)

	zeroScaled, err := operator.Scale(scalarop.New(0), mustDiag(t, 1, 1))
	require.NoError(t, err)
	_, err = operator.Invert(zeroScaled)
	require.ErrorIs(t, err, operator.ErrNotInvertible)
}

// TestInverted_MulIsInnerSolve verifies inv(A)·u equals the dense inverse
// application and SolveTo recovers A·rhs.
func TestInverted_MulIsInnerSolve(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{4, 1, 1, 3})
	inv, err := operator.Invert(mustMatrix(t, 2, 2, 4, 1, 1, 3))
	require.NoError(t, err)

	src := seqBlock(2, 2)
	dst := mat.NewDense(2, 2, nil)
	require.NoError(t, inv.MulTo(dst, src))
	requireDenseInDelta(t, solveRef(t, a, src), dst)

	back := mat.NewDense(2, 2, nil)
	require.NoError(t, inv.SolveTo(back, dst))
	requireDenseInDelta(t, src, back, "solve through the inverse is the forward multiply")
}

// TestInverted_BlendNeedsCache verifies the beta ≠ 0 blend stages through
// the cache while beta == 0 runs uncached.
func TestInverted_BlendNeedsCache(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{4, 1, 1, 3})
	inv, err := operator.Invert(mustMatrix(t, 2, 2, 4, 1, 1, 3))
	require.NoError(t, err)
	src := seqBlock(2, 2)

	scaledOnly := mat.NewDense(2, 2, nil)
	require.NoError(t, inv.MulAddTo(scaledOnly, src, 2, 0), "beta == 0 solves straight into dst")
	want := solveRef(t, a, src)
	want.Scale(2, want)
	requireDenseInDelta(t, want, scaledOnly)

	blended := seqBlock(2, 2)
	require.ErrorIs(t, inv.MulAddTo(blended, src, 2, 0.5), operator.ErrCacheUninitialized)

	cached, err := operator.CacheOperator(inv, src)
	require.NoError(t, err)
	wantBlend := mat.DenseCopyOf(blended)
	wantBlend.Scale(0.5, wantBlend)
	wantBlend.Add(wantBlend, scaledOnly)
	require.NoError(t, cached.MulAddTo(blended, src, 2, 0.5))
	requireDenseInDelta(t, wantBlend, blended)
}

// TestInverted_SolveInPlaceNeedsCache verifies the in-place solve stages
// through the cached block.
func TestInverted_SolveInPlaceNeedsCache(t *testing.T) {
	inv, err := operator.Invert(mustMatrix(t, 2, 2, 4, 1, 1, 3))
	require.NoError(t, err)
	rhs := column(1, 2)

	require.ErrorIs(t, inv.SolveInPlace(mat.DenseCopyOf(rhs)), operator.ErrCacheUninitialized)

	cached, err := operator.CacheOperator(inv, rhs)
	require.NoError(t, err)
	work := mat.DenseCopyOf(rhs)
	require.NoError(t, cached.SolveInPlace(work))
	want := mulRef(1, mat.NewDense(2, 2, []float64{4, 1, 1, 3}), rhs, 0, nil)
	requireDenseInDelta(t, want, work, "in-place solve is the forward multiply")
}

// TestInverted_TraitSwap verifies capabilities swap between multiply and
// solve across the wrap.
func TestInverted_TraitSwap(t *testing.T) {
	mulOnly, err := operator.NewFunc(2, 2, operator.FuncOpts{
		MatVec: func(dst, src []float64) { dst[0], dst[1] = src[0], src[1] },
	})
	require.NoError(t, err)
	inv, err := operator.Invert(mulOnly)
	require.NoError(t, err)

	require.False(t, inv.HasMul(), "no inner solve, so no forward apply")
	require.True(t, inv.HasSolve(), "inner multiply serves the wrapped solve")
	require.False(t, inv.IsZero(), "an inverse is never the zero map")
}

// TestInverted_UpdateSemantics verifies the pure update drops scratch
// while the in-place update keeps it.
func TestInverted_UpdateSemantics(t *testing.T) {
	gain, err := operator.NewDiagonal([]float64{1, 2}, func(d, _ []float64, _ any, tm float64) {
		d[0], d[1] = tm, 2*tm
	})
	require.NoError(t, err)
	inv, err := operator.Invert(gain)
	require.NoError(t, err)
	src := column(1, 1)
	cached, err := operator.CacheOperator(inv, src)
	require.NoError(t, err)

	require.NoError(t, cached.UpdateInPlace(nil, nil, 4))
	require.True(t, cached.IsCached())
	dst := mat.NewDense(2, 1, nil)
	require.NoError(t, cached.MulTo(dst, src))
	requireDenseInDelta(t, column(0.25, 0.125), dst, "inv(diag(4, 8))")

	fresh, err := cached.Update(nil, nil, 4)
	require.NoError(t, err)
	require.NotSame(t, cached, fresh)
	require.False(t, fresh.IsCached(), "pure update rebuilds without scratch")
}
