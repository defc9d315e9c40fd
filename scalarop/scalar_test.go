package scalarop_test

import (
	"testing"

	"github.com/katalvlaran/linop/scalarop"
	"github.com/stretchr/testify/assert"
)

// TestScalar_ConstantValue verifies that a constant scalar reports its value
// and the constant/zero traits correctly.
func TestScalar_ConstantValue(t *testing.T) {
	s := scalarop.New(2.5)

	assert.Equal(t, 2.5, s.Value(), "constant scalar must return its value")
	assert.True(t, s.IsConstant(), "scalar without hook must be constant")
	assert.False(t, s.IsZero(), "2.5 is not zero")
	assert.True(t, scalarop.New(0).IsZero(), "zero constant must report IsZero")
}

// TestScalar_ConstantUpdateReturnsReceiver verifies the constant
// short-circuit: updating a constant scalar returns the same instance.
func TestScalar_ConstantUpdateReturnsReceiver(t *testing.T) {
	s := scalarop.New(3)

	got, err := s.Update(nil, nil, 1.0)
	assert.NoError(t, err, "constant update must not error")
	assert.Same(t, scalarop.Operator(s), got, "constant update must return the receiver")
	assert.NoError(t, s.UpdateInPlace(nil, nil, 1.0), "in-place update of constant is a no-op")
	assert.Equal(t, 3.0, s.Value(), "value must be untouched")
}

// TestScalar_UpdatePure verifies that a pure update computes a fresh scalar
// and leaves the original untouched.
func TestScalar_UpdatePure(t *testing.T) {
	s := scalarop.NewUpdating(1, func(cur float64, _ []float64, _ any, tm float64) float64 {
		return cur + tm
	})

	got, err := s.Update(nil, nil, 0.5)
	assert.NoError(t, err)
	assert.Equal(t, 1.5, got.Value(), "updated copy must see cur+tm")
	assert.Equal(t, 1.0, s.Value(), "original must keep its value")
	assert.False(t, got.IsConstant(), "updated copy keeps the hook")
}

// TestScalar_UpdateInPlace verifies that the in-place form mutates the
// receiver and threads state, param, and time into the hook.
func TestScalar_UpdateInPlace(t *testing.T) {
	var seenState []float64
	var seenParam any
	s := scalarop.NewUpdating(0, func(_ float64, state []float64, param any, tm float64) float64 {
		seenState, seenParam = state, param

		return tm * 2
	})

	err := s.UpdateInPlace([]float64{9, 9}, "nu", 0.25)
	assert.NoError(t, err)
	assert.Equal(t, 0.5, s.Value(), "in-place update must store tm*2")
	assert.Equal(t, []float64{9, 9}, seenState, "state must reach the hook")
	assert.Equal(t, "nu", seenParam, "param must reach the hook")
}

// TestScalar_UpdateIdempotentForFixedInputs verifies that updating twice
// with identical inputs equals updating once when the hook ignores cur.
func TestScalar_UpdateIdempotentForFixedInputs(t *testing.T) {
	s := scalarop.NewUpdating(0, func(_ float64, _ []float64, _ any, tm float64) float64 {
		return 3 * tm
	})

	assert.NoError(t, s.UpdateInPlace(nil, nil, 2))
	once := s.Value()
	assert.NoError(t, s.UpdateInPlace(nil, nil, 2))
	assert.Equal(t, once, s.Value(), "same (state,param,t) must reproduce the same coefficient")
}
