// SPDX-License-Identifier: MIT
// Shared builders and reference kernels for the operator black-box suite.
// Expected values are always produced through gonum directly, never through
// the package under test.

package operator_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/linop/operator"
)

// requireDenseInDelta asserts element-wise equality of two blocks within
// the suite-wide numeric tolerance. An optional trailing message labels
// every assertion of the walk.
func requireDenseInDelta(t *testing.T, want mat.Matrix, got *mat.Dense, msgAndArgs ...any) {
	t.Helper()
	note := ""
	if len(msgAndArgs) > 0 {
		note = ": " + fmt.Sprint(msgAndArgs...)
	}
	wr, wc := want.Dims()
	gr, gc := got.Dims()
	require.Equal(t, wr, gr, "row count mismatch%s", note)
	require.Equal(t, wc, gc, "col count mismatch%s", note)
	for i := 0; i < wr; i++ {
		for j := 0; j < wc; j++ {
			require.InDelta(t, want.At(i, j), got.At(i, j), 1e-6, "entry (%d,%d)%s", i, j, note)
		}
	}
}

// column wraps values as an n×1 dense block.
func column(vals ...float64) *mat.Dense {
	return mat.NewDense(len(vals), 1, vals)
}

// seqBlock fills an r×c block with 1, 2, 3, ... so every entry is unique.
func seqBlock(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = float64(i + 1)
	}

	return mat.NewDense(r, c, data)
}

// mulRef computes alpha·A·src + beta·dst0 through gonum as an independent
// reference for the fused apply kernels. dst0 may be nil when beta == 0.
func mulRef(alpha float64, a, src mat.Matrix, beta float64, dst0 *mat.Dense) *mat.Dense {
	ar, _ := a.Dims()
	_, sc := src.Dims()
	var prod mat.Dense
	prod.Mul(a, src)
	out := mat.NewDense(ar, sc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < sc; j++ {
			v := alpha * prod.At(i, j)
			if beta != 0 {
				v += beta * dst0.At(i, j)
			}
			out.Set(i, j, v)
		}
	}

	return out
}

// solveRef computes A \ rhs through gonum's dense solver.
func solveRef(t *testing.T, a, rhs mat.Matrix) *mat.Dense {
	t.Helper()
	_, c := a.Dims()
	_, b := rhs.Dims()
	out := mat.NewDense(c, b, nil)
	require.NoError(t, out.Solve(a, rhs), "reference solve must succeed")

	return out
}

// mustMatrix wraps a constant dense payload as an operator leaf.
func mustMatrix(t *testing.T, r, c int, data ...float64) *operator.MatrixOperator {
	t.Helper()
	m, err := operator.NewMatrix(mat.NewDense(r, c, data), nil, nil)
	require.NoError(t, err)

	return m
}

// mustDiag wraps a copied diagonal as an operator leaf.
func mustDiag(t *testing.T, d ...float64) *operator.DiagonalOperator {
	t.Helper()
	op, err := operator.NewDiagonal(append([]float64(nil), d...), nil)
	require.NoError(t, err)

	return op
}

// mustIdentity returns the order-n identity leaf.
func mustIdentity(t *testing.T, n int) *operator.IdentityOperator {
	t.Helper()
	id, err := operator.NewIdentity(n)
	require.NoError(t, err)

	return id
}

// mustCache caches l in place for the given representative block.
func mustCache(t *testing.T, l operator.Operator, src mat.Matrix) {
	t.Helper()
	require.NoError(t, l.Cache(src), "cache must succeed")
}
