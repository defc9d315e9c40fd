// Package linop is your in-memory toolkit for composing, updating, and
// applying lazy linear (and affine) operators — from simple identities to
// Kronecker products with preallocated scratch.
//
// 🚀 What is linop?
//
//	A small, gonum-powered library that brings together:
//		• Leaf operators: identity, matrix-backed, diagonal, matrix-free kernels
//		• Scalar algebra: time/parameter-dependent coefficients that stay lazy
//		• Combinators: scale, add, compose, adjoint, transpose, invert, affine
//		• Tensor products: Kron(A, B) applied without ever materializing A⊗B
//		• Factorizations: LU, Cholesky and QR backed solves via gonum/mat
//		• Caching: allocation-free in-place apply and solve after one warm-up
//
// ✨ Why choose linop?
//
//   - Lazy by default – composition builds a tree, no dense product is formed
//   - Solver-friendly – update coefficients in place, reuse every buffer
//   - Pure Go – gonum for the kernels, nothing else at runtime
//   - Extensible – wrap any matrix-free kernel as a FuncOperator leaf
//
// Under the hood, everything is organized under two subpackages:
//
//	operator/ — the operator algebra: leaves, combinators, caching, apply
//	scalarop/ — scalar coefficients: constants, updating scalars, their algebra
//
// Quick ASCII example:
//
//	    L = α(t)·(A ⊗ I) + B
//
//	stays a three-node tree; applying L·u runs two small multiplies and one
//	fused accumulate instead of forming the Kronecker product.
//
// Dive into operator/doc.go for the full contract (traits, updates, caching)
// and examples/ for runnable end-to-end programs.
//
//	go get github.com/katalvlaran/linop/operator
package linop
