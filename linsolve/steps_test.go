// SPDX-License-Identifier: MIT

package linsolve_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/linsolve/linsolve"
)

func TestSteps_GaussMessages(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]float64{{2, 1, -1}, {-3, -1, 2}, {-2, 1, 2}})
	b := MustRows(t, [][]float64{{8}, {-11}, {-3}})

	res, err := linsolve.SolveGauss(a, b, linsolve.WithSteps())
	require.NoError(t, err)
	steps := res.Steps
	require.GreaterOrEqual(t, len(steps), 5)

	require.Equal(t, linsolve.StepInitial, steps[0].Kind)
	require.Equal(t, "Initial augmented matrix [A|B]", steps[0].Message)
	require.Equal(t, [][]float64{{2, 1, -1, 8}, {-3, -1, 2, -11}, {-2, 1, 2, -3}}, steps[0].Snapshot)

	require.Equal(t, linsolve.StepSwap, steps[1].Kind)
	require.Equal(t, "Swap R1 <-> R2", steps[1].Message)
	require.Equal(t, []int{0, 1}, steps[1].Rows)

	require.Equal(t, linsolve.StepPivot, steps[2].Kind)
	require.Equal(t, "Pivot -3.0000 at (1, 1)", steps[2].Message)

	require.Equal(t, linsolve.StepEliminate, steps[3].Kind)
	require.Equal(t, "R2 = R2 - (-0.6667)·R1", steps[3].Message)

	for i, s := range steps {
		require.Equal(t, i, s.Index)
	}
	kinds := map[linsolve.StepKind]int{}
	for _, s := range steps {
		kinds[s.Kind]++
	}
	require.Equal(t, 3, kinds[linsolve.StepColumnDone])
	require.Equal(t, 1, kinds[linsolve.StepClassify])
	require.Equal(t, linsolve.StepSubstitute, steps[len(steps)-1].Kind)
}

func TestSteps_GaussJordanScales(t *testing.T) {
	t.Parallel()
	res, err := linsolve.SolveGaussJordan(
		MustRows(t, [][]float64{{2, 4}, {3, 5}}),
		MustRows(t, [][]float64{{2}, {4}}),
		linsolve.WithSteps(),
	)
	require.NoError(t, err)
	var scaled bool
	for _, s := range res.Steps {
		require.NotEqual(t, linsolve.StepSwap, s.Kind)
		if s.Kind == linsolve.StepScale {
			scaled = true
		}
	}
	require.True(t, scaled)
}

func TestSteps_ObserverSeesEveryRecord(t *testing.T) {
	t.Parallel()
	var seen []linsolve.StepRecord
	obs := linsolve.StepObserverFunc(func(s linsolve.StepRecord) { seen = append(seen, s) })

	for _, m := range linsolve.Methods() {
		seen = seen[:0]
		res := MustSolve(t, m,
			MustRows(t, [][]float64{{4, 1}, {1, 3}}),
			MustRows(t, [][]float64{{1}, {2}}),
			linsolve.WithSteps(), linsolve.WithObserver(obs))
		require.Len(t, seen, len(res.Steps), m)
		for i := range seen {
			require.Equal(t, res.Steps[i].Message, seen[i].Message)
		}
	}
}

func TestLogging_Classification(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)

	_, err := linsolve.Solve(
		MustRows(t, [][]float64{{1, 2}, {2, 4}}),
		MustRows(t, [][]float64{{3}, {6}}),
		linsolve.WithLogger(zap.New(core)),
	)
	require.NoError(t, err)

	entries := logs.FilterMessage("system classified").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	require.Equal(t, "gauss-elimination", ctx["method"])
	require.Equal(t, "infinite_solutions", ctx["status"])
	require.EqualValues(t, 1, ctx["rank"])
	// Step messages are Debug and must not reach an Info core.
	require.Zero(t, logs.FilterField(zap.Int("step", 0)).Len())
}

func TestLogging_DebugSteps(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)

	res, err := linsolve.Solve(
		MustRows(t, [][]float64{{0, 1}, {1, 0}}),
		MustRows(t, [][]float64{{1}, {1}}),
		linsolve.WithLogger(zap.New(core)),
	)
	require.NoError(t, err)
	require.Nil(t, res.Steps)
	require.Equal(t, 1, logs.FilterMessage("Swap R1 <-> R2").Len())
}

func TestZapObserver(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)

	_, err := linsolve.SolveLU(
		MustRows(t, [][]float64{{1, 0}, {0, 1}}),
		MustRows(t, [][]float64{{1}, {1}}),
		linsolve.WithObserver(linsolve.NewZapObserver(zap.New(core))),
	)
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("Initial augmented matrix [A|B]").Len())
	require.NotZero(t, logs.FilterMessage("Forward substitution: L·Y = P·B").Len())

	require.NotPanics(t, func() { linsolve.NewZapObserver(nil).OnStep(linsolve.StepRecord{}) })
}
