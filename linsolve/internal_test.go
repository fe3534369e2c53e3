// SPDX-License-Identifier: MIT
// White-box tests for pivot rules, the step log and the defect path.

package linsolve

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/linsolve/matrix"
)

// system BUILDS an augmentedSystem over literal rows with n unknowns.
func system(t *testing.T, rows [][]float64, n int, opts ...Option) *augmentedSystem {
	t.Helper()
	aug, err := matrix.FromRows(rows)
	require.NoError(t, err)
	scale, err := matrix.ColumnMaxAbs(aug)
	require.NoError(t, err)
	o := gatherOptions(opts...)

	return newAugmentedFrom("test", aug, n, scale, o, newStepLog(o))
}

func TestPartialPivot_TieKeepsLowestRow(t *testing.T) {
	t.Parallel()
	s := system(t, [][]float64{{1, 0}, {2, 0}, {-2, 0}, {1, 0}}, 1)

	row, ok := s.partialPivot(0, 0)
	require.True(t, ok)
	require.Equal(t, 1, row)

	row, ok = s.partialPivot(2, 0)
	require.True(t, ok)
	require.Equal(t, 2, row)
}

func TestPartialPivot_NegligibleColumnIsFree(t *testing.T) {
	t.Parallel()
	s := system(t, [][]float64{{1, 1, 0}, {0, 1e-17, 1}}, 2)

	_, ok := s.partialPivot(1, 0)
	require.False(t, ok)
	_, ok = s.partialPivot(1, 1)
	require.False(t, ok)
}

func TestJordanPivot_PrefersExactOne(t *testing.T) {
	t.Parallel()
	s := system(t, [][]float64{{3, 1, 0}, {1, 5, 0}}, 2)

	p, ok := s.jordanPivot(make([]bool, 2), make([]bool, 2))
	require.True(t, ok)
	require.Equal(t, Pivot{Row: 0, Col: 1}, p)
}

func TestJordanPivot_LargestMagnitude(t *testing.T) {
	t.Parallel()
	s := system(t, [][]float64{{2, -4, 9}, {3, 2, 9}}, 2)

	p, ok := s.jordanPivot(make([]bool, 2), make([]bool, 2))
	require.True(t, ok)
	require.Equal(t, Pivot{Row: 0, Col: 1}, p)

	// Row 0 and column 1 used: only (1, 0) remains.
	p, ok = s.jordanPivot([]bool{true, false}, []bool{false, true})
	require.True(t, ok)
	require.Equal(t, Pivot{Row: 1, Col: 0}, p)

	_, ok = s.jordanPivot([]bool{true, true}, []bool{false, false})
	require.False(t, ok)
}

func TestReduceEchelon_Shape(t *testing.T) {
	t.Parallel()
	s := system(t, [][]float64{{0, 2, 1}, {1, 1, 2}, {2, 2, 4}}, 2)

	ech, err := s.reduceEchelon()
	require.NoError(t, err)
	require.Equal(t, []Pivot{{Row: 0, Col: 0}, {Row: 1, Col: 1}}, ech.Pivots)
	require.False(t, ech.Reduced)
	for j := 0; j < 3; j++ {
		require.Zero(t, s.at(2, j))
	}
	require.Zero(t, s.at(1, 0))
}

func TestReduceJordan_Reduced(t *testing.T) {
	t.Parallel()
	s := system(t, [][]float64{{2, 4, 2}, {1, 3, 2}}, 2)

	ech, err := s.reduceJordan()
	require.NoError(t, err)
	require.True(t, ech.Reduced)
	require.Equal(t, 2, ech.Rank())
	for _, p := range ech.Pivots {
		require.Equal(t, 1.0, s.at(p.Row, p.Col))
		for i := 0; i < 2; i++ {
			if i != p.Row {
				require.Zero(t, s.at(i, p.Col))
			}
		}
	}
}

func TestSubstitute_NegligiblePivotIsDefect(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	s := system(t, [][]float64{{0, 1}}, 1, WithLogger(zap.New(core)))

	x := zeroRows(1, 1)
	err := s.substitute([]Pivot{{Row: 0, Col: 0}}, x, false)
	require.ErrorIs(t, err, ErrSingularPivot)
	require.Equal(t, KindSingularPivot, KindOf(err))
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.DPanicLevel).Len())
}

func TestStepLog_InactiveDoesNoWork(t *testing.T) {
	t.Parallel()
	l := newStepLog(DefaultOptions())
	require.False(t, l.active())
	l.emit(StepInitial, nil, -1, 0, func() [][]float64 {
		t.Fatal("snapshot taken while inactive")
		return nil
	}, "unused")
	require.Nil(t, l.records())
}

func TestStepLog_ObserverWithoutRecording(t *testing.T) {
	t.Parallel()
	var got []StepRecord
	o := gatherOptions(WithObserver(StepObserverFunc(func(s StepRecord) { got = append(got, s) })))
	l := newStepLog(o)
	l.emit(StepSwap, []int{0, 1}, -1, 0, func() [][]float64 {
		t.Fatal("snapshot taken without WithSteps")
		return nil
	}, "Swap R%d <-> R%d", 1, 2)

	require.Nil(t, l.records())
	require.Len(t, got, 1)
	require.Equal(t, "Swap R1 <-> R2", got[0].Message)
	require.Nil(t, got[0].Snapshot)
}

func TestEchelonRank(t *testing.T) {
	t.Parallel()
	never := func(float64, int) bool { return false }
	tiny := func(v float64, _ int) bool { return v < 1e-12 }

	require.Equal(t, 0, echelonRank(nil, never))
	require.Equal(t, 1, echelonRank([][]float64{{1, 2}, {2, 4}}, tiny))
	require.Equal(t, 2, echelonRank([][]float64{{0, 1}, {1, 0}, {1, 1}}, tiny))
}

func TestSolveErrorf(t *testing.T) {
	t.Parallel()
	err := solveErrorf("Op", KindShapeMismatch, nil)
	require.Equal(t, "Op: linsolve: shape mismatch", err.Error())

	err = solveErrorf("Op", KindNotSquare, ErrNotSquare)
	require.Equal(t, "Op: linsolve: coefficient matrix is not square", err.Error())

	err = solveErrorf("Op", KindInvalidInput, matrix.ErrNaNInf)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestReduceJordan_NormalizedRowsKeepTheirScale(t *testing.T) {
	t.Parallel()
	s := system(t, [][]float64{{2e15, 0, 2e15}, {0, 1, 1}}, 2)

	ech, err := s.reduceJordan()
	require.NoError(t, err)
	require.Len(t, ech.Pivots, 2)
	for _, p := range ech.Pivots {
		require.Equal(t, 1.0, s.at(p.Row, p.Col))
	}
	require.InDelta(t, 1.0, s.at(0, 2), 1e-12)

	x := zeroRows(2, 1)
	require.NoError(t, s.substitute(ech.Pivots, x, false))
	require.InDelta(t, 1.0, x[0][0], 1e-12)
	require.InDelta(t, 1.0, x[1][0], 1e-12)
}

func TestJordanPivot_NegligibleOneIsSkipped(t *testing.T) {
	t.Parallel()
	// Column 1 is on the 1e20 scale, so the exact 1 in row 0 is noise.
	s := system(t, [][]float64{{2, 1, 0}, {0, 1e20, 0}}, 2)

	p, ok := s.jordanPivot(make([]bool, 2), make([]bool, 2))
	require.True(t, ok)
	require.Equal(t, Pivot{Row: 1, Col: 1}, p)
}

func TestNegligible_FollowsRowNormalization(t *testing.T) {
	t.Parallel()
	s := system(t, [][]float64{{4e15, 2e15, 0}, {1, 1, 0}}, 2)
	require.True(t, s.negligible(0.5, 0, 1))

	require.NoError(t, s.normalize(0, 0, 4e15))
	require.False(t, s.negligible(s.at(0, 1), 0, 1))
	require.Equal(t, 0, s.pinned[0])
	require.Equal(t, -1, s.pinned[1])
	require.True(t, s.negligible(0.5, 1, 1))
}
