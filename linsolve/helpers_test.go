// SPDX-License-Identifier: MIT
// Package linsolve_test contains shared fixtures for solver tests.
//
// gonum/mat is used only here, as an independent oracle (direct solves and
// SVD ranks); the solvers under test never depend on it.

package linsolve_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/linsolve/linsolve"
	"github.com/katalvlaran/linsolve/matrix"
)

// eliminationMethods agree on every system; Cholesky is exercised separately
// because it needs a positive definite M.
var eliminationMethods = []linsolve.Method{
	linsolve.MethodGauss,
	linsolve.MethodGaussJordan,
	linsolve.MethodLU,
}

// MustRows BUILDS a *Dense from literal rows or fails the test.
func MustRows(t testing.TB, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

// MustSolve RUNS the method and fails the test on error.
func MustSolve(t testing.TB, method linsolve.Method, a, b matrix.Matrix, opts ...linsolve.Option) *linsolve.Result {
	t.Helper()
	res, err := linsolve.Solve(a, b, append([]linsolve.Option{linsolve.WithMethod(method)}, opts...)...)
	require.NoError(t, err)
	require.NotNil(t, res)

	return res
}

// Residual RETURNS ‖A·X − B‖∞.
func Residual(t testing.TB, a, x, b matrix.Matrix) float64 {
	t.Helper()
	ax, err := matrix.Mul(a, x)
	require.NoError(t, err)
	r, err := matrix.Sub(ax, b)
	require.NoError(t, err)
	n, err := matrix.NormInf(r)
	require.NoError(t, err)

	return n
}

// RandomDense FILLS an r×c matrix with deterministic U(-1,1) values.
func RandomDense(t testing.TB, rng *rand.Rand, r, c int) *matrix.Dense {
	t.Helper()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		for j := range rows[i] {
			rows[i][j] = rng.Float64()*2 - 1
		}
	}

	return MustRows(t, rows)
}

// RankDeficient BUILDS an m×n matrix of rank r as a product of random factors.
func RankDeficient(t testing.TB, rng *rand.Rand, m, n, r int) *matrix.Dense {
	t.Helper()
	p, err := matrix.Mul(RandomDense(t, rng, m, r), RandomDense(t, rng, r, n))
	require.NoError(t, err)
	d, err := matrix.ToDense(p)
	require.NoError(t, err)

	return d
}

// Gonum CONVERTS a Dense into a gonum matrix.
func Gonum(m *matrix.Dense) *mat.Dense {
	r, c := m.Shape()
	data := make([]float64, 0, r*c)
	for _, row := range m.ToRows() {
		data = append(data, row...)
	}

	return mat.NewDense(r, c, data)
}

// SVDRank RETURNS the numerical rank of m per gonum's SVD.
func SVDRank(t testing.TB, m *matrix.Dense, rcond float64) int {
	t.Helper()
	var svd mat.SVD
	require.True(t, svd.Factorize(Gonum(m), mat.SVDNone))

	return svd.Rank(rcond)
}

// RequireClose ASSERTS identical shapes and |a-b| ≤ atol + rtol·|b| elementwise.
func RequireClose(t testing.TB, want, got matrix.Matrix, rtol, atol float64) {
	t.Helper()
	ok, err := matrix.AllClose(got, want, rtol, atol)
	require.NoError(t, err)
	require.Truef(t, ok, "want:\n%v\ngot:\n%v", want, got)
}
