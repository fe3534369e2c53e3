// Package matrix_test covers AllClose and Chop.
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/linsolve/matrix"
	"github.com/stretchr/testify/require"
)

func TestAllClose(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{1, 2}, {3, 4}})
	b := MustRows(t, [][]float64{{1 + 1e-10, 2}, {3, 4 - 1e-10}})

	ok, err := matrix.AllClose(a, b, 0, 1e-9)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matrix.AllClose(hide{a}, b, 0, 1e-12)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = matrix.AllClose(a, MustDense(t, 1, 2), 0, 1)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.AllClose(a, b, math.NaN(), 1)
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestChop(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{1e-17, -2}, {math.Copysign(0, -1), 3e-10}})

	got, err := matrix.Chop(a, matrix.WithEpsilon(1e-15))
	require.NoError(t, err)
	require.Equal(t, [][]float64{{0, -2}, {0, 3e-10}}, got.ToRows())
	require.False(t, math.Signbit(MustAt(t, got, 1, 0)))

	got, err = matrix.Chop(a) // DefaultEpsilon = 1e-9
	require.NoError(t, err)
	require.Equal(t, 0.0, MustAt(t, got, 1, 1))
	require.Equal(t, 1e-17, MustAt(t, a, 0, 0), "input must not be mutated")
}

func TestOptions(t *testing.T) {
	t.Parallel()
	o := matrix.NewMatrixOptions()
	require.Equal(t, matrix.DefaultEpsilon, o.Epsilon())
	require.True(t, o.ValidateNaNInf())

	o = matrix.NewMatrixOptions(matrix.WithEpsilon(0), matrix.WithNoValidateNaNInf(), nil)
	require.Zero(t, o.Epsilon())
	require.False(t, o.ValidateNaNInf())
	o = matrix.NewMatrixOptions(matrix.WithNoValidateNaNInf(), matrix.WithValidateNaNInf())
	require.True(t, o.ValidateNaNInf())

	require.Panics(t, func() { matrix.WithEpsilon(-1) })
	require.Panics(t, func() { matrix.WithEpsilon(math.Inf(1)) })
}
