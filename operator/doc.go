// SPDX-License-Identifier: MIT

// Package operator implements a lazy, composable algebra of linear (and
// affine) operators over float64 matrices and vectors, built on gonum/mat.
//
// 🚀 What is a lazy operator?
//
//	A recipe for a linear map, kept symbolic until applied. Instead of
//	forming α·(A ⊗ B) + C as one dense matrix, the algebra stores the
//	expression tree and applies it piecewise:
//	  • Leaves      — Identity, Matrix, Diagonal, Func (matrix-free kernels)
//	  • Combinators — Scale, Add, Compose, Adjoint, Transpose, Invert,
//	                  Factorize (LU/Cholesky/QR), Affine, Kron
//
// ✨ Key features:
//   - trait protocol: IsLinear/IsConstant/IsZero/HasAdjoint/HasMul/HasSolve
//     answer capability questions without computing anything
//   - update protocol: coefficients depend on (state, param, time); Update
//     is pure, UpdateInPlace refreshes a tree that keeps all its scratch
//   - caching protocol: CacheOperator(L, u) preallocates every internal
//     buffer once; MulTo/SolveTo then run allocation-free
//   - Kronecker products apply through two small multiplies and permutation
//     passes — A ⊗ B is never materialized except by ToDense
//
// ⚙️ Usage:
//
//	import (
//	  "gonum.org/v1/gonum/mat"
//
//	  "github.com/katalvlaran/linop/operator"
//	  "github.com/katalvlaran/linop/scalarop"
//	)
//
//	A, _ := operator.NewMatrix(mat.NewDense(2, 2, []float64{0, -1, 1, 0}), nil, nil)
//	I2, _ := operator.NewIdentity(2)
//	I4, _ := operator.NewIdentity(4)
//	K, _ := operator.Kron(A, I2)
//	S, _ := operator.Scale(scalarop.New(0.5), K)
//	L, _ := operator.Add(S, I4)
//
//	cached, _ := operator.CacheOperator(L, u)   // one-time allocation
//	_ = cached.MulTo(dst, u)                    // hot loop: zero allocations
//
// Contracts:
//   - dst buffers are caller-allocated and must not alias src.
//   - In-place application of scratch-carrying composites requires
//     CacheOperator first; violations fail with ErrCacheUninitialized.
//   - All methods are call-and-return; nothing blocks, nothing spawns.
//     A cached operator must not be applied concurrently (clone per
//     goroutine); read-only queries are safe to share.
//   - Errors are sentinels (errors.Is-matchable) wrapped with the failing
//     Kind.Method; after a failed stage the contents of dst are undefined.
//
// Complexity: apply costs the sum of the stage costs — a Kron(A, B) apply
// is O(rIn·cIn·cOut + rOut·cOut·rIn) plus two permutation passes, never the
// O(rOut·rIn·cOut·cIn) of the materialized product.
package operator
