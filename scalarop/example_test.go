package scalarop_test

import (
	"fmt"

	"github.com/katalvlaran/linop/scalarop"
)

// //////////////////////////////////////////////////////////////////////////////
// ExampleMul
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	Two constant coefficients combined lazily, then collapsed with Value.
//
// Use case:
//
//	Verifying that a scalar expression converts back to a plain number.
func ExampleMul() {
	two := scalarop.New(2)
	three := scalarop.New(3)

	prod, err := scalarop.Mul(two, three)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Printf("value=%.0f constant=%v\n", prod.Value(), prod.IsConstant())
	// Output:
	// value=6 constant=true
}

// //////////////////////////////////////////////////////////////////////////////
// ExampleNewUpdating
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	A time-step coefficient dt that tracks the integrator clock. The pure
//	update leaves the original untouched; the in-place update mutates it.
//
// Use case:
//
//	Time integrators rescaling an operator by the current step size.
func ExampleNewUpdating() {
	dt := scalarop.NewUpdating(0.1, func(_ float64, _ []float64, _ any, tm float64) float64 {
		return tm
	})

	next, _ := dt.Update(nil, nil, 0.5)
	fmt.Printf("pure:     next=%.1f original=%.1f\n", next.Value(), dt.Value())

	_ = dt.UpdateInPlace(nil, nil, 0.5)
	fmt.Printf("in-place: original=%.1f\n", dt.Value())
	// Output:
	// pure:     next=0.5 original=0.1
	// in-place: original=0.5
}
