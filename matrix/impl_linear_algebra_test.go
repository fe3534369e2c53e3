// Package matrix_test covers the linear-algebra kernels on both the *Dense
// fast-path and the generic fallback (via hide).
package matrix_test

import (
	"math"
	"sort"
	"testing"

	"github.com/katalvlaran/linsolve/matrix"
	"github.com/stretchr/testify/require"
)

func TestMulFastAndFallbackAgree(t *testing.T) {
	t.Parallel()
	a := MustDense(t, 4, 3)
	b := MustDense(t, 3, 5)
	RandomFill(t, a, 7)
	RandomFill(t, b, 11)

	fast, err := matrix.Mul(a, b)
	require.NoError(t, err)
	slow, err := matrix.Mul(hide{a}, hide{b})
	require.NoError(t, err)
	CompareClose(t, fast, slow, 1e-12)

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Mul(nil, a)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestMulKnownProduct(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{1, 2}, {3, 4}})
	x := MustRows(t, [][]float64{{1}, {2}})
	got, err := matrix.Mul(a, x)
	require.NoError(t, err)
	CompareClose(t, MustRows(t, [][]float64{{5}, {11}}), got, 0)
}

func TestTransposeAndSub(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	at, err := matrix.Transpose(a)
	require.NoError(t, err)
	CompareClose(t, MustRows(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}), at, 0)

	at2, err := matrix.Transpose(hide{a})
	require.NoError(t, err)
	CompareClose(t, at, at2, 0)

	d, err := matrix.Sub(a, a)
	require.NoError(t, err)
	CompareClose(t, MustDense(t, 2, 3), d, 0)
	d2, err := matrix.Sub(hide{a}, a)
	require.NoError(t, err)
	CompareClose(t, d, d2, 0)
	_, err = matrix.Sub(a, at)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestHStack(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{1, 2}, {3, 4}})
	b := MustRows(t, [][]float64{{5}, {6}})
	ab, err := matrix.HStack(a, hide{b})
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2, 5}, {3, 4, 6}}, ab.ToRows())

	_, err = matrix.HStack(a, MustDense(t, 3, 1))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestNorms(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{1, -2}, {-3, 0.5}})

	n, err := matrix.NormInf(a)
	require.NoError(t, err)
	require.Equal(t, 3.5, n)

	mx, err := matrix.MaxAbs(hide{a})
	require.NoError(t, err)
	require.Equal(t, 3.0, mx)

	cols, err := matrix.ColumnMaxAbs(a)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 2}, cols)
}

func TestToDenseCopies(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{1, 2}})
	c, err := matrix.ToDense(hide{a})
	require.NoError(t, err)
	require.NoError(t, c.Set(0, 0, 9))
	require.Equal(t, 1.0, MustAt(t, a, 0, 0))

	_, err = matrix.ToDense(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestEigenSPD checks Jacobi on a known SPD matrix: eigenvalues of
// [[2,-1,0],[-1,2,-1],[0,-1,2]] are 2-√2, 2, 2+√2 and A·q = λ·q holds.
func TestEigenSPD(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{2, -1, 0}, {-1, 2, -1}, {0, -1, 2}})
	vals, q, err := matrix.Eigen(a, 1e-12, 200)
	require.NoError(t, err)

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	want := []float64{2 - math.Sqrt2, 2, 2 + math.Sqrt2}
	for i := range want {
		require.InDelta(t, want[i], sorted[i], 1e-9)
	}

	aq, err := matrix.Mul(a, q)
	require.NoError(t, err)
	for j, lambda := range vals {
		for i := 0; i < 3; i++ {
			require.InDelta(t, lambda*MustAt(t, q, i, j), MustAt(t, aq, i, j), 1e-9)
		}
	}
}

func TestEigenErrors(t *testing.T) {
	t.Parallel()
	_, _, err := matrix.Eigen(MustRows(t, [][]float64{{1, 2}, {3, 4}}), 1e-9, 10)
	require.ErrorIs(t, err, matrix.ErrAsymmetry)
	_, _, err = matrix.Eigen(MustDense(t, 2, 3), 1e-9, 10)
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	// zero iterations cannot annihilate a non-zero off-diagonal entry
	_, _, err = matrix.Eigen(MustRows(t, [][]float64{{1, 1}, {1, 1}}), 1e-12, 0)
	require.ErrorIs(t, err, matrix.ErrMatrixEigenFailed)
}

func TestDoolittleLU(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{4, 3}, {6, 3}})
	l, u, err := matrix.DoolittleSteps(a, nil)
	require.NoError(t, err)
	CompareClose(t, MustRows(t, [][]float64{{1, 0}, {1.5, 1}}), l, 1e-15)
	CompareClose(t, MustRows(t, [][]float64{{4, 3}, {0, -1.5}}), u, 1e-15)

	stages := 0
	_, _, err = matrix.DoolittleSteps(a, func(stage int, _, _ *matrix.Dense) {
		require.Equal(t, stages, stage)
		stages++
	})
	require.NoError(t, err)
	require.Equal(t, 2, stages)

	_, _, err = matrix.DoolittleSteps(MustRows(t, [][]float64{{0, 1}, {1, 0}}), nil)
	require.ErrorIs(t, err, matrix.ErrSingular)
	_, _, err = matrix.DoolittleSteps(MustDense(t, 2, 3), nil)
	require.ErrorIs(t, err, matrix.ErrNonSquare)
}
