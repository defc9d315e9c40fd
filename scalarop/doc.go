// Package scalarop models scalar coefficients that may depend on solver
// state, parameters, and time — lazily, as a small expression algebra.
//
// 🚀 What is a scalar operator?
//
//	A number that is not done changing. Time integrators rescale operators
//	by dt, parameter studies sweep coefficients, adaptive schemes blend
//	terms. scalarop keeps those coefficients symbolic until applied:
//	  • Scalar    — a leaf value with an optional update hook
//	  • Added     — a lazy sum of scalars
//	  • Composed  — a lazy product of scalars
//	  • Inverted  — a lazy reciprocal
//
// ✨ Key features:
//   - Value() collapses any expression to its current float64 (convert)
//   - Update / UpdateInPlace thread (state, param, time) through the tree
//   - constant subtrees short-circuit updates and return themselves
//   - builders flatten nested sums and products into single nodes
//
// ⚙️ Usage:
//
//	import "github.com/katalvlaran/linop/scalarop"
//
//	dt := scalarop.NewUpdating(0.1, func(cur float64, _ []float64, _ any, tm float64) float64 {
//	  return tm // coefficient tracks current time
//	})
//	two := scalarop.New(2.0)
//	prod, _ := scalarop.Mul(two, dt)
//
//	_ = prod.UpdateInPlace(nil, nil, 0.5)
//	_ = prod.Value() // 1.0
//
// The operator package consumes scalarop.Operator wherever a coefficient
// scales a linear operator; see operator.Scale.
package scalarop
