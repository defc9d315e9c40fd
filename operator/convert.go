// SPDX-License-Identifier: MIT

package operator

import "gonum.org/v1/gonum/mat"

// ToDense materializes a linear operator as a dense matrix. Structural
// kinds convert recursively (a tensor product expands to the explicit
// Kronecker matrix, an inversion to the dense inverse); anything else that
// multiplies is probed column by column against an identity block. Affine
// and other non-linear operators have no matrix form and fail with
// ErrCapability.
func ToDense(l Operator) (*mat.Dense, error) {
	const tag = "ToDense"
	if err := validateOperand(l); err != nil {
		return nil, operr(tag, err)
	}
	switch t := l.(type) {
	case *IdentityOperator:
		return eyeDense(t.n), nil
	case *DiagonalOperator:
		out := mat.NewDense(len(t.d), len(t.d), nil)
		for i, v := range t.d {
			out.Set(i, i, v)
		}

		return out, nil
	case *MatrixOperator:
		return mat.DenseCopyOf(t.a), nil
	case *ScaledOperator:
		out, err := ToDense(t.inner)
		if err != nil {
			return nil, err
		}
		out.Scale(t.coeff.Value(), out)

		return out, nil
	case *AddedOperator:
		out, err := ToDense(t.terms[0])
		if err != nil {
			return nil, err
		}
		for _, term := range t.terms[1:] {
			td, err := ToDense(term)
			if err != nil {
				return nil, err
			}
			out.Add(out, td)
		}

		return out, nil
	case *ComposedOperator:
		out, err := ToDense(t.factors[0])
		if err != nil {
			return nil, err
		}
		for _, f := range t.factors[1:] {
			fd, err := ToDense(f)
			if err != nil {
				return nil, err
			}
			var next mat.Dense
			next.Mul(out, fd)
			out = &next
		}

		return out, nil
	case *AdjointOperator:
		return transposedDense(t.inner)
	case *TransposedOperator:
		return transposedDense(t.inner)
	case *InvertedOperator:
		id, err := ToDense(t.inner)
		if err != nil {
			return nil, err
		}
		var inv mat.Dense
		if err := inv.Inverse(id); err != nil {
			return nil, operr(tag, ErrNotInvertible)
		}

		return &inv, nil
	case *InvertibleOperator:
		return ToDense(t.inner)
	case *TensorProductOperator:
		od, err := ToDense(t.outer)
		if err != nil {
			return nil, err
		}
		id, err := ToDense(t.inner)
		if err != nil {
			return nil, err
		}

		return kronDense(od, id), nil
	default:
		return probeDense(tag, l)
	}
}

// transposedDense converts inner and returns its transpose as a copy.
func transposedDense(inner Operator) (*mat.Dense, error) {
	id, err := ToDense(inner)
	if err != nil {
		return nil, err
	}
	r, c := id.Dims()
	out := mat.NewDense(c, r, nil)
	out.Copy(id.T())

	return out, nil
}

// probeDense recovers the matrix form of an opaque linear operator by
// multiplying it against an identity block through a cached clone; the
// receiver is never mutated.
func probeDense(tag string, l Operator) (*mat.Dense, error) {
	if !l.IsLinear() || !l.HasMul() {
		return nil, operr(tag, ErrCapability)
	}
	r, c := l.Dims()
	eye := eyeDense(c)
	cl, err := CacheOperator(l, eye)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	if err := cl.MulTo(out, eye); err != nil {
		return nil, err
	}

	return out, nil
}

// eyeDense returns the order-n identity matrix.
func eyeDense(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}

	return out
}

// kronDense expands the explicit Kronecker product of two dense blocks.
func kronDense(a, b *mat.Dense) *mat.Dense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	out := mat.NewDense(ar*br, ac*bc, nil)
	or := out.RawMatrix()
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			f := a.At(i, j)
			if f == 0 {
				continue
			}
			for k := 0; k < br; k++ {
				row := or.Data[(i*br+k)*or.Stride+j*bc:]
				for n := 0; n < bc; n++ {
					row[n] = f * b.At(k, n)
				}
			}
		}
	}

	return out
}
