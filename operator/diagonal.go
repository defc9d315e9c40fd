// SPDX-License-Identifier: MIT

package operator

import "gonum.org/v1/gonum/mat"

// DiagonalOperator is a matrix-backed leaf specialized to diagonal storage:
// one float64 per row. Multiply scales rows, solve divides them, both as
// direct loops without scratch, so the leaf is vacuously cached. The update
// hook refreshes the diagonal vector in place.
type DiagonalOperator struct {
	d      []float64
	update DiagUpdateFunc
}

// NewDiagonal wraps the diagonal vector d (owned by the operator from here
// on) with an optional update hook.
func NewDiagonal(d []float64, update DiagUpdateFunc) (*DiagonalOperator, error) {
	if len(d) == 0 {
		return nil, operr("NewDiagonal", ErrBadDims)
	}

	return &DiagonalOperator{d: d, update: update}, nil
}

// Dims returns (n, n) for a length-n diagonal.
func (l *DiagonalOperator) Dims() (r, c int) { return len(l.d), len(l.d) }

// IsLinear reports true.
func (l *DiagonalOperator) IsLinear() bool { return true }

// IsConstant reports whether the update hook is nil.
func (l *DiagonalOperator) IsConstant() bool { return l.update == nil }

// IsZero reports whether every diagonal entry is exactly zero as of the
// last update.
func (l *DiagonalOperator) IsZero() bool {
	for _, v := range l.d {
		if v != 0 {
			return false
		}
	}

	return true
}

// HasAdjoint reports true: a real diagonal is self-adjoint.
func (l *DiagonalOperator) HasAdjoint() bool { return true }

// HasMul reports true.
func (l *DiagonalOperator) HasMul() bool { return true }

// HasMulInPlace reports true.
func (l *DiagonalOperator) HasMulInPlace() bool { return true }

// HasSolve reports true; zero entries surface as ErrNotInvertible at solve
// time.
func (l *DiagonalOperator) HasSolve() bool { return true }

// HasSolveInPlace reports true.
func (l *DiagonalOperator) HasSolveInPlace() bool { return true }

// Update returns a leaf with a refreshed diagonal, leaving the receiver
// untouched.
func (l *DiagonalOperator) Update(state []float64, param any, tm float64) (Operator, error) {
	if l.update == nil {
		return l, nil
	}
	nd := make([]float64, len(l.d))
	copy(nd, l.d)
	l.update(nd, state, param, tm)

	return &DiagonalOperator{d: nd, update: l.update}, nil
}

// UpdateInPlace refreshes the receiver's diagonal.
func (l *DiagonalOperator) UpdateInPlace(state []float64, param any, tm float64) error {
	if l.update == nil {
		return nil
	}
	l.update(l.d, state, param, tm)

	return nil
}

// Cache validates the representative input; diagonals need no scratch.
func (l *DiagonalOperator) Cache(src mat.Matrix) error {
	if err := validateCacheSrc(l, src); err != nil {
		return operr("DiagonalOperator.Cache", err)
	}

	return nil
}

// IsCached reports true: the diagonal is vacuously cached.
func (l *DiagonalOperator) IsCached() bool { return true }

// MulTo computes dst[i, s] = d[i]·src[i, s].
func (l *DiagonalOperator) MulTo(dst *mat.Dense, src mat.Matrix) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr("DiagonalOperator.MulTo", err)
	}
	l.scaleRows(dst, src, 1, 0)

	return nil
}

// MulAddTo computes dst[i, s] = alpha·d[i]·src[i, s] + beta·dst[i, s].
func (l *DiagonalOperator) MulAddTo(dst *mat.Dense, src mat.Matrix, alpha, beta float64) error {
	if err := validateMulShapes(l, dst, src); err != nil {
		return operr("DiagonalOperator.MulAddTo", err)
	}
	l.scaleRows(dst, src, alpha, beta)

	return nil
}

// SolveTo computes dst[i, s] = rhs[i, s]/d[i], rejecting zero entries.
func (l *DiagonalOperator) SolveTo(dst *mat.Dense, rhs mat.Matrix) error {
	if err := validateSolveShapes(l, dst, rhs); err != nil {
		return operr("DiagonalOperator.SolveTo", err)
	}
	if err := l.divideRows(dst, rhs); err != nil {
		return operr("DiagonalOperator.SolveTo", err)
	}

	return nil
}

// SolveInPlace divides the rows of rhs by the diagonal entries.
func (l *DiagonalOperator) SolveInPlace(rhs *mat.Dense) error {
	if err := validateSolveInPlaceShapes(l, rhs); err != nil {
		return operr("DiagonalOperator.SolveInPlace", err)
	}
	if err := l.divideRows(rhs, rhs); err != nil {
		return operr("DiagonalOperator.SolveInPlace", err)
	}

	return nil
}

// Clone returns a leaf over a copied diagonal; the hook is shared.
func (l *DiagonalOperator) Clone() Operator {
	nd := make([]float64, len(l.d))
	copy(nd, l.d)

	return &DiagonalOperator{d: nd, update: l.update}
}

// Resize regrows or truncates the diagonal; grown entries are zero.
func (l *DiagonalOperator) Resize(n int) error {
	if n <= 0 {
		return operr("DiagonalOperator.Resize", ErrBadDims)
	}
	if n <= len(l.d) {
		l.d = l.d[:n]

		return nil
	}
	nd := make([]float64, n)
	copy(nd, l.d)
	l.d = nd

	return nil
}

// scaleRows computes dst[i, :] = alpha·d[i]·src[i, :] + beta·dst[i, :].
func (l *DiagonalOperator) scaleRows(dst *mat.Dense, src mat.Matrix, alpha, beta float64) {
	dr := dst.RawMatrix()
	if sd, ok := src.(*mat.Dense); ok {
		sr := sd.RawMatrix()
		for i, di := range l.d {
			f := alpha * di
			drow := dr.Data[i*dr.Stride : i*dr.Stride+dr.Cols]
			srow := sr.Data[i*sr.Stride : i*sr.Stride+dr.Cols]
			for j := range drow {
				if beta == 0 {
					drow[j] = f * srow[j]
					continue
				}
				drow[j] = f*srow[j] + beta*drow[j]
			}
		}

		return
	}
	for i, di := range l.d {
		f := alpha * di
		drow := dr.Data[i*dr.Stride : i*dr.Stride+dr.Cols]
		for j := range drow {
			if beta == 0 {
				drow[j] = f * src.At(i, j)
				continue
			}
			drow[j] = f*src.At(i, j) + beta*drow[j]
		}
	}
}

// divideRows computes dst[i, :] = rhs[i, :]/d[i]; a zero entry aborts
// before any row of dst is written.
func (l *DiagonalOperator) divideRows(dst *mat.Dense, rhs mat.Matrix) error {
	for _, v := range l.d {
		if v == 0 {
			return ErrNotInvertible
		}
	}
	dr := dst.RawMatrix()
	if rd, ok := rhs.(*mat.Dense); ok {
		rr := rd.RawMatrix()
		for i, di := range l.d {
			inv := 1 / di
			drow := dr.Data[i*dr.Stride : i*dr.Stride+dr.Cols]
			rrow := rr.Data[i*rr.Stride : i*rr.Stride+dr.Cols]
			for j := range drow {
				drow[j] = rrow[j] * inv
			}
		}

		return nil
	}
	for i, di := range l.d {
		inv := 1 / di
		drow := dr.Data[i*dr.Stride : i*dr.Stride+dr.Cols]
		for j := range drow {
			drow[j] = rhs.At(i, j) * inv
		}
	}

	return nil
}
