// SPDX-License-Identifier: MIT
// Package operator: private dense micro-kernels.
//
// Purpose:
//   - Shared flat-index loops for blending, broadcasting, and the block
//     permutations behind the tensor-product apply.
//   - Fast paths operate on raw row-major storage; generic fallbacks go
//     through mat.Matrix.At for exotic payload types.
//
// All kernels assume shapes were validated by the caller and never
// allocate.

package operator

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rawGeneralOf extracts a blas64.General view from matrices with raw
// row-major storage: *mat.Dense directly, unit-increment *mat.VecDense as a
// single-column block. Anything else reports false.
func rawGeneralOf(src mat.Matrix) (blas64.General, bool) {
	switch t := src.(type) {
	case *mat.Dense:
		return t.RawMatrix(), true
	case *mat.VecDense:
		rv := t.RawVector()
		if rv.Inc != 1 {
			return blas64.General{}, false
		}

		return blas64.General{Rows: t.Len(), Cols: 1, Stride: 1, Data: rv.Data}, true
	default:
		if rm, ok := src.(mat.RawMatrixer); ok {
			return rm.RawMatrix(), true
		}

		return blas64.General{}, false
	}
}

// blendScaled computes dst = alpha·t + beta·dst over equal-shaped dense
// blocks. beta == 0 treats dst as write-only.
func blendScaled(dst *mat.Dense, alpha float64, t *mat.Dense, beta float64) {
	dr := dst.RawMatrix()
	tr := t.RawMatrix()
	for i := 0; i < dr.Rows; i++ {
		drow := dr.Data[i*dr.Stride : i*dr.Stride+dr.Cols]
		trow := tr.Data[i*tr.Stride : i*tr.Stride+dr.Cols]
		switch {
		case beta == 0:
			floats.ScaleTo(drow, alpha, trow)
		case beta == 1:
			floats.AddScaled(drow, alpha, trow)
		default:
			for j := range drow {
				drow[j] = alpha*trow[j] + beta*drow[j]
			}
		}
	}
}

// blendFrom computes dst = alpha·src + beta·dst for a generic src block.
func blendFrom(dst *mat.Dense, alpha float64, src mat.Matrix, beta float64) {
	if sd, ok := src.(*mat.Dense); ok {
		blendScaled(dst, alpha, sd, beta)

		return
	}
	dr := dst.RawMatrix()
	for i := 0; i < dr.Rows; i++ {
		drow := dr.Data[i*dr.Stride : i*dr.Stride+dr.Cols]
		if beta == 0 {
			for j := range drow {
				drow[j] = alpha * src.At(i, j)
			}
			continue
		}
		for j := range drow {
			drow[j] = alpha*src.At(i, j) + beta*drow[j]
		}
	}
}

// addScaledColBroadcast adds alpha·col (a single column) to every column of
// dst: dst[i, s] += alpha·col[i, 0].
func addScaledColBroadcast(dst *mat.Dense, alpha float64, col *mat.Dense) {
	dr := dst.RawMatrix()
	cr := col.RawMatrix()
	for i := 0; i < dr.Rows; i++ {
		add := alpha * cr.Data[i*cr.Stride]
		drow := dr.Data[i*dr.Stride : i*dr.Stride+dr.Cols]
		for j := range drow {
			drow[j] += add
		}
	}
}

// subColBroadcastTo computes dst = rhs − col·1ᵀ, subtracting one column
// from every column of rhs.
func subColBroadcastTo(dst *mat.Dense, rhs mat.Matrix, col *mat.Dense) {
	dr := dst.RawMatrix()
	cr := col.RawMatrix()
	if rd, ok := rhs.(*mat.Dense); ok {
		rr := rd.RawMatrix()
		for i := 0; i < dr.Rows; i++ {
			sub := cr.Data[i*cr.Stride]
			drow := dr.Data[i*dr.Stride : i*dr.Stride+dr.Cols]
			rrow := rr.Data[i*rr.Stride : i*rr.Stride+dr.Cols]
			for j := range drow {
				drow[j] = rrow[j] - sub
			}
		}

		return
	}
	for i := 0; i < dr.Rows; i++ {
		sub := cr.Data[i*cr.Stride]
		drow := dr.Data[i*dr.Stride : i*dr.Stride+dr.Cols]
		for j := range drow {
			drow[j] = rhs.At(i, j) - sub
		}
	}
}

// copyColumnIn extracts column j of src into buf.
func copyColumnIn(buf []float64, src mat.Matrix, j int) {
	if sd, ok := src.(*mat.Dense); ok {
		sr := sd.RawMatrix()
		for i := range buf {
			buf[i] = sr.Data[i*sr.Stride+j]
		}

		return
	}
	for i := range buf {
		buf[i] = src.At(i, j)
	}
}

// writeColumnBlend stores dst[:, j] = alpha·col + beta·dst[:, j].
func writeColumnBlend(dst *mat.Dense, j int, alpha float64, col []float64, beta float64) {
	dr := dst.RawMatrix()
	for i := range col {
		at := i*dr.Stride + j
		if beta == 0 {
			dr.Data[at] = alpha * col[i]
			continue
		}
		dr.Data[at] = alpha*col[i] + beta*dr.Data[at]
	}
}

// gatherBlocks reshuffles a tall block matrix into inner-major scratch:
// w[l, j·b+s] = src[j·inner+l, s] for j < blocks, l < inner, s < b.
func gatherBlocks(w *mat.Dense, src mat.Matrix, inner, blocks, b int) {
	wr := w.RawMatrix()
	if sd, ok := src.(*mat.Dense); ok {
		sr := sd.RawMatrix()
		for j := 0; j < blocks; j++ {
			for l := 0; l < inner; l++ {
				srow := sr.Data[(j*inner+l)*sr.Stride:]
				copy(wr.Data[l*wr.Stride+j*b:l*wr.Stride+j*b+b], srow[:b])
			}
		}

		return
	}
	for j := 0; j < blocks; j++ {
		for l := 0; l < inner; l++ {
			for s := 0; s < b; s++ {
				wr.Data[l*wr.Stride+j*b+s] = src.At(j*inner+l, s)
			}
		}
	}
}

// swapBlocks transposes the block structure of c into v:
// v[j, k·b+s] = c[k, j·b+s] for j < blocks, k < mid, s < b.
func swapBlocks(v, c *mat.Dense, blocks, mid, b int) {
	vr := v.RawMatrix()
	cr := c.RawMatrix()
	for j := 0; j < blocks; j++ {
		for k := 0; k < mid; k++ {
			copy(vr.Data[j*vr.Stride+k*b:j*vr.Stride+k*b+b],
				cr.Data[k*cr.Stride+j*b:k*cr.Stride+j*b+b])
		}
	}
}

// scatterBlocks folds block-major scratch back into the tall layout:
// dst[i·mid+k, s] = alpha·out[i, k·b+s] + beta·dst[i·mid+k, s].
func scatterBlocks(dst, out *mat.Dense, blocks, mid, b int, alpha, beta float64) {
	dr := dst.RawMatrix()
	or := out.RawMatrix()
	for i := 0; i < blocks; i++ {
		for k := 0; k < mid; k++ {
			drow := dr.Data[(i*mid+k)*dr.Stride:]
			orow := or.Data[i*or.Stride+k*b:]
			if alpha == 1 && beta == 0 {
				copy(drow[:b], orow[:b])
				continue
			}
			for s := 0; s < b; s++ {
				if beta == 0 {
					drow[s] = alpha * orow[s]
					continue
				}
				drow[s] = alpha*orow[s] + beta*drow[s]
			}
		}
	}
}

// ungatherBlocks is the inverse of gatherBlocks with blending:
// dst[j·inner+l, s] = alpha·c[l, j·b+s] + beta·dst[j·inner+l, s].
// It serves the identity-outer shortcut of the tensor product.
func ungatherBlocks(dst, c *mat.Dense, inner, blocks, b int, alpha, beta float64) {
	dr := dst.RawMatrix()
	cr := c.RawMatrix()
	for j := 0; j < blocks; j++ {
		for l := 0; l < inner; l++ {
			drow := dr.Data[(j*inner+l)*dr.Stride:]
			crow := cr.Data[l*cr.Stride+j*b:]
			if alpha == 1 && beta == 0 {
				copy(drow[:b], crow[:b])
				continue
			}
			for s := 0; s < b; s++ {
				if beta == 0 {
					drow[s] = alpha * crow[s]
					continue
				}
				drow[s] = alpha*crow[s] + beta*drow[s]
			}
		}
	}
}
