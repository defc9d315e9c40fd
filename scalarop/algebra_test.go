package scalarop_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/linop/scalarop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMul_ConstantProductCollapses verifies the algebra round-trip:
// Mul(New(2), New(3)) collapses to 6 via Value.
func TestMul_ConstantProductCollapses(t *testing.T) {
	prod, err := scalarop.Mul(scalarop.New(2), scalarop.New(3))
	require.NoError(t, err, "product of two constants must build")

	assert.Equal(t, 6.0, prod.Value(), "Mul(2,3) must collapse to 6")
	assert.True(t, prod.IsConstant(), "product of constants is constant")
}

// TestAdd_FlattensNestedSums verifies that summing an already-summed scalar
// with another scalar yields one node whose value is the total.
func TestAdd_FlattensNestedSums(t *testing.T) {
	inner, err := scalarop.Add(scalarop.New(1), scalarop.New(2))
	require.NoError(t, err)

	outer, err := scalarop.Add(inner, scalarop.New(4))
	require.NoError(t, err)

	assert.Equal(t, 7.0, outer.Value(), "flattened sum must total all terms")
	added, ok := outer.(*scalarop.Added)
	require.True(t, ok, "result must stay a single Added node")
	nested, err := scalarop.Add(added, scalarop.New(0))
	require.NoError(t, err)
	assert.Equal(t, 7.0, nested.Value(), "re-summing must preserve the total")
}

// TestAdd_SingleOperandPassesThrough verifies that a one-term sum is the
// operand itself, not a wrapper node.
func TestAdd_SingleOperandPassesThrough(t *testing.T) {
	s := scalarop.New(5)

	got, err := scalarop.Add(s)
	require.NoError(t, err)
	assert.Same(t, scalarop.Operator(s), got, "single-term sum must be the term itself")
}

// TestBuilders_RejectBadOperands verifies nil and empty operand handling.
func TestBuilders_RejectBadOperands(t *testing.T) {
	_, err := scalarop.Add()
	assert.ErrorIs(t, err, scalarop.ErrNoOperands, "empty Add must error")

	_, err = scalarop.Mul(scalarop.New(1), nil)
	assert.ErrorIs(t, err, scalarop.ErrNilScalar, "nil operand must error")

	_, err = scalarop.Invert(nil)
	assert.ErrorIs(t, err, scalarop.ErrNilScalar, "nil Invert operand must error")
}

// TestInvert_ZeroConstantRejected verifies that inverting a constant zero
// fails eagerly, while non-constant zeros build and surface later.
func TestInvert_ZeroConstantRejected(t *testing.T) {
	_, err := scalarop.Invert(scalarop.New(0))
	assert.ErrorIs(t, err, scalarop.ErrZeroScalar, "constant zero must be rejected at build")

	varying := scalarop.NewUpdating(0, func(_ float64, _ []float64, _ any, tm float64) float64 {
		return tm
	})
	inv, err := scalarop.Invert(varying)
	require.NoError(t, err, "non-constant zero must build (checked at solve time)")
	assert.True(t, math.IsInf(inv.Value(), 1), "reciprocal of current zero is +Inf")

	require.NoError(t, inv.UpdateInPlace(nil, nil, 4))
	assert.Equal(t, 0.25, inv.Value(), "after update the reciprocal is finite")
}

// TestInvert_DoubleInversionCollapses verifies Invert(Invert(s)) == s.
func TestInvert_DoubleInversionCollapses(t *testing.T) {
	s := scalarop.New(8)

	inv, err := scalarop.Invert(s)
	require.NoError(t, err)
	back, err := scalarop.Invert(inv)
	require.NoError(t, err)

	assert.Same(t, scalarop.Operator(s), back, "double inversion must return the original")
}

// TestDiv_ComposesInversion verifies Div(a, b) == a * b⁻¹.
func TestDiv_ComposesInversion(t *testing.T) {
	q, err := scalarop.Div(scalarop.New(3), scalarop.New(4))
	require.NoError(t, err)
	assert.Equal(t, 0.75, q.Value(), "3/4 must evaluate to 0.75")

	_, err = scalarop.Div(scalarop.New(1), scalarop.New(0))
	assert.ErrorIs(t, err, scalarop.ErrZeroScalar, "division by constant zero must fail")
}

// TestNegate_ScalesByMinusOne verifies negate as multiplication by -1.
func TestNegate_ScalesByMinusOne(t *testing.T) {
	n, err := scalarop.Negate(scalarop.New(2.5))
	require.NoError(t, err)
	assert.Equal(t, -2.5, n.Value(), "negation must flip the sign")
}

// TestAlgebra_UpdateThreadsThroughTree verifies pure and in-place updates on
// a mixed constant/updating expression, including the constant short-circuit.
func TestAlgebra_UpdateThreadsThroughTree(t *testing.T) {
	dt := scalarop.NewUpdating(1, func(_ float64, _ []float64, _ any, tm float64) float64 {
		return tm
	})
	expr, err := scalarop.Mul(scalarop.New(2), dt)
	require.NoError(t, err)

	// Pure update: fresh tree sees tm, receiver is untouched.
	next, err := expr.Update(nil, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 6.0, next.Value(), "updated product must be 2*3")
	assert.Equal(t, 2.0, expr.Value(), "original product must still be 2*1")

	// In-place update mutates the receiver.
	require.NoError(t, expr.UpdateInPlace(nil, nil, 5))
	assert.Equal(t, 10.0, expr.Value(), "in-place update must refresh the product")

	// Constant expressions short-circuit to the receiver.
	konst, err := scalarop.Add(scalarop.New(1), scalarop.New(1))
	require.NoError(t, err)
	same, err := konst.Update(nil, nil, 99)
	require.NoError(t, err)
	assert.Same(t, konst, same, "constant sum must return itself on update")
}
