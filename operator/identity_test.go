// SPDX-License-Identifier: MIT

package operator_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/linop/operator"
)

// TestIdentity_MulCopiesInput verifies that applying the identity writes
// the input into dst instead of skipping the write.
func TestIdentity_MulCopiesInput(t *testing.T) {
	id := mustIdentity(t, 3)
	src := seqBlock(3, 2)
	dst := mat.NewDense(3, 2, []float64{9, 9, 9, 9, 9, 9})

	require.NoError(t, id.MulTo(dst, src))
	require.True(t, mat.Equal(src, dst), "identity multiply must copy src into dst")
}

// TestIdentity_MulAddToBlends verifies dst = alpha·src + beta·dst.
func TestIdentity_MulAddToBlends(t *testing.T) {
	id := mustIdentity(t, 2)
	src := mat.NewDense(2, 1, []float64{1, 2})
	dst := mat.NewDense(2, 1, []float64{10, 20})

	require.NoError(t, id.MulAddTo(dst, src, 2, 0.5))
	requireDenseInDelta(t, column(7, 14), dst)
}

// TestIdentity_SolveIsCopy verifies both solve forms: out-of-place copies
// rhs, in-place leaves rhs untouched.
func TestIdentity_SolveIsCopy(t *testing.T) {
	id := mustIdentity(t, 2)
	rhs := column(3, -1)
	dst := mat.NewDense(2, 1, nil)

	require.NoError(t, id.SolveTo(dst, rhs))
	require.True(t, mat.Equal(rhs, dst))

	inPlace := column(4, 5)
	require.NoError(t, id.SolveInPlace(inPlace))
	requireDenseInDelta(t, column(4, 5), inPlace)
}

// TestIdentity_Traits verifies the full trait surface of the identity.
func TestIdentity_Traits(t *testing.T) {
	id := mustIdentity(t, 4)

	require.True(t, id.IsLinear())
	require.True(t, id.IsConstant())
	require.False(t, id.IsZero())
	require.True(t, id.HasAdjoint())
	require.True(t, id.HasMul() && id.HasMulInPlace())
	require.True(t, id.HasSolve() && id.HasSolveInPlace())
	require.True(t, id.IsCached(), "the identity is vacuously cached")
}

// TestIdentity_SelfAdjointSelfInverse verifies that Adjoint and Invert
// return the identity itself rather than wrapper nodes.
func TestIdentity_SelfAdjointSelfInverse(t *testing.T) {
	id := mustIdentity(t, 3)

	ad, err := operator.Adjoint(id)
	require.NoError(t, err)
	require.Same(t, operator.Operator(id), ad, "adjoint of identity is the identity")

	inv, err := operator.Invert(id)
	require.NoError(t, err)
	require.Same(t, operator.Operator(id), inv, "inverse of identity is the identity")
}

// TestIdentity_ConstructionAndResize verifies dimension validation and the
// retargeting resize.
func TestIdentity_ConstructionAndResize(t *testing.T) {
	_, err := operator.NewIdentity(0)
	require.ErrorIs(t, err, operator.ErrBadDims)

	id := mustIdentity(t, 2)
	require.NoError(t, id.Resize(5))
	r, c := id.Dims()
	require.Equal(t, 5, r)
	require.Equal(t, 5, c)

	// Old-order buffers no longer conform after the resize.
	err = id.MulTo(mat.NewDense(2, 1, nil), column(1, 2))
	require.ErrorIs(t, err, operator.ErrShape)

	require.ErrorIs(t, id.Resize(-1), operator.ErrBadDims)
}

// TestIdentity_UpdateShortCircuits verifies the constant short-circuit of
// both update forms.
func TestIdentity_UpdateShortCircuits(t *testing.T) {
	id := mustIdentity(t, 2)

	got, err := id.Update([]float64{1}, "nu", 3)
	require.NoError(t, err)
	require.Same(t, operator.Operator(id), got, "constant update returns the receiver")
	require.NoError(t, id.UpdateInPlace(nil, nil, 0))
}
