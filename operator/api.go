// SPDX-License-Identifier: MIT

package operator

import "gonum.org/v1/gonum/mat"

// Apply computes L·src into a freshly allocated block. The receiver's
// coefficients are never touched: an uncached tree is cached on an
// ephemeral clone, an already-compatible cache is reused. Allocation-free
// application goes through CacheOperator and MulTo directly.
func Apply(l Operator, src mat.Matrix) (*mat.Dense, error) {
	const tag = "Apply"
	if err := validateOperand(l); err != nil {
		return nil, operr(tag, err)
	}
	if src == nil {
		return nil, operr(tag, ErrNilOperand)
	}
	cl, err := CacheOperator(l, src)
	if err != nil {
		return nil, err
	}
	r, _ := l.Dims()
	_, b := src.Dims()
	dst := mat.NewDense(r, b, nil)
	if err := cl.MulTo(dst, src); err != nil {
		return nil, err
	}

	return dst, nil
}

// Solve computes L \ rhs into a freshly allocated block, with the same
// ephemeral-cache contract as Apply.
func Solve(l Operator, rhs mat.Matrix) (*mat.Dense, error) {
	const tag = "Solve"
	if err := validateOperand(l); err != nil {
		return nil, operr(tag, err)
	}
	if rhs == nil {
		return nil, operr(tag, ErrNilOperand)
	}
	rr, b := rhs.Dims()
	r, c := l.Dims()
	if rr != r {
		return nil, operr(tag, ErrShape)
	}
	cl, err := CacheOperator(l, solveCacheRep(l, rhs, b))
	if err != nil {
		return nil, err
	}
	dst := mat.NewDense(c, b, nil)
	if err := cl.SolveTo(dst, rhs); err != nil {
		return nil, err
	}

	return dst, nil
}

// solveCacheRep picks the representative block CacheOperator needs for a
// solve of batch width b: square operators can use rhs itself, rectangular
// ones need an input-shaped stand-in.
func solveCacheRep(l Operator, rhs mat.Matrix, b int) mat.Matrix {
	r, c := l.Dims()
	if r == c {
		return rhs
	}

	return mat.NewDense(c, b, nil)
}

// MulVec computes L·u into a freshly allocated slice.
func MulVec(l Operator, u []float64) ([]float64, error) {
	const tag = "MulVec"
	if err := validateOperand(l); err != nil {
		return nil, operr(tag, err)
	}
	r, c := l.Dims()
	if len(u) != c {
		return nil, operr(tag, ErrShape)
	}
	out, err := Apply(l, mat.NewDense(c, 1, u))
	if err != nil {
		return nil, err
	}

	return out.RawMatrix().Data[:r], nil
}

// SolveVec computes L \ rhs into a freshly allocated slice.
func SolveVec(l Operator, rhs []float64) ([]float64, error) {
	const tag = "SolveVec"
	if err := validateOperand(l); err != nil {
		return nil, operr(tag, err)
	}
	r, c := l.Dims()
	if len(rhs) != r {
		return nil, operr(tag, ErrShape)
	}
	out, err := Solve(l, mat.NewDense(r, 1, rhs))
	if err != nil {
		return nil, err
	}

	return out.RawMatrix().Data[:c], nil
}

// MulVecTo computes dst = L·u over caller-owned slices wrapped in
// zero-copy views; dst must not alias u. This is the allocation-free
// solver path, so the operator must already be cached for batch width one.
func MulVecTo(l Operator, dst, u []float64) error {
	const tag = "MulVecTo"
	if err := validateOperand(l); err != nil {
		return operr(tag, err)
	}
	if dst == nil || u == nil {
		return operr(tag, ErrNilOperand)
	}
	r, c := l.Dims()
	if len(u) != c || len(dst) != r {
		return operr(tag, ErrShape)
	}

	return l.MulTo(mat.NewDense(r, 1, dst), mat.NewDense(c, 1, u))
}

// SolveVecTo computes dst = L \ rhs over caller-owned slices wrapped in
// zero-copy views; dst must not alias rhs. Requires a cache for batch
// width one, like MulVecTo.
func SolveVecTo(l Operator, dst, rhs []float64) error {
	const tag = "SolveVecTo"
	if err := validateOperand(l); err != nil {
		return operr(tag, err)
	}
	if dst == nil || rhs == nil {
		return operr(tag, ErrNilOperand)
	}
	r, c := l.Dims()
	if len(rhs) != r || len(dst) != c {
		return operr(tag, ErrShape)
	}

	return l.SolveTo(mat.NewDense(c, 1, dst), mat.NewDense(r, 1, rhs))
}
