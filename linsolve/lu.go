// SPDX-License-Identifier: MIT
// Package linsolve: LU adapter.
//
// PA = LU is computed with partial pivoting in rank-revealing form: a column
// whose candidates are all negligible is skipped, so U ends up in row
// echelon form and L stays unit lower triangular. Y = L⁻¹PB is then
// obtained by forward substitution and [U|Y] is classified and
// back-substituted exactly like an eliminated [A|B].

package linsolve

import (
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/linsolve/matrix"
)

// luFactors is the work-array form of PA = LU.
type luFactors struct {
	perm   []int
	l, u   [][]float64
	pivots []Pivot
}

func solveLU(a, b matrix.Matrix, o Options) (*Result, error) {
	da, db, err := validateSystem(opLU, a, b)
	if err != nil {
		return nil, err
	}
	if err = matrix.ValidateSquare(da); err != nil {
		return nil, solveErrorf(opLU, KindNotSquare, err)
	}
	aug, err := matrix.HStack(da, db)
	if err != nil {
		return nil, solveErrorf(opLU, KindShapeMismatch, err)
	}
	scale, err := matrix.ColumnMaxAbs(aug)
	if err != nil {
		return nil, solveErrorf(opLU, KindInvalidInput, err)
	}

	log := newStepLog(o)
	log.emit(StepInitial, nil, -1, 0, snapshotOf(aug), "Initial augmented matrix [A|B]")

	// Only the coefficient columns of scale matter to the factorization.
	f := factorLU(da.ToRows(), scale, o.ZeroTolerance, log)
	y := forwardLU(f, db.ToRows())
	log.emit(StepSubstitute, nil, -1, 0, snapshotRows(y), "Forward substitution: L·Y = P·B")

	uy, err := workMatrix(f.u, y)
	if err != nil {
		return nil, solveErrorf(opLU, KindInvalidInput, err)
	}
	s := newAugmentedFrom(opLU, uy, da.Cols(), scale, o, log)
	if err = s.snap(); err != nil {
		return nil, err
	}

	factors, err := luPayload(s, f, y)
	if err != nil {
		return nil, err
	}
	if o.RecordSteps {
		factors.Doolittle = doolittleStages(da, o.Logger)
	}

	return s.finish(MethodLU, Echelon{Pivots: f.pivots}, factors)
}

// factorLU factors the square work array a in place into U and returns the factors.
// Complexity: O(n³).
func factorLU(a [][]float64, scale []float64, tol float64, log *stepLog) luFactors {
	n := len(a)
	f := luFactors{perm: make([]int, n), l: zeroRows(n, n), u: a}
	for i := 0; i < n; i++ {
		f.perm[i] = i
		f.l[i][i] = 1
	}
	negligible := func(v float64, col int) bool {
		return math.Abs(v) <= tol*math.Max(1, scale[col])
	}

	pivotRow := 0
	for col := 0; col < n && pivotRow < n; col++ {
		best, bestAbs := -1, 0.0
		for r := pivotRow; r < n; r++ {
			if v := math.Abs(f.u[r][col]); v > bestAbs {
				best, bestAbs = r, v
			}
		}
		if best < 0 || negligible(bestAbs, col) {
			continue
		}
		if best != pivotRow {
			f.u[pivotRow], f.u[best] = f.u[best], f.u[pivotRow]
			f.perm[pivotRow], f.perm[best] = f.perm[best], f.perm[pivotRow]
			for j := 0; j < pivotRow; j++ {
				f.l[pivotRow][j], f.l[best][j] = f.l[best][j], f.l[pivotRow][j]
			}
			log.emit(StepSwap, []int{pivotRow, best}, col, 0, snapshotRows(f.u), "Swap R%d <-> R%d", pivotRow+1, best+1)
		}
		pv := f.u[pivotRow][col]
		for i := pivotRow + 1; i < n; i++ {
			m := f.u[i][col] / pv
			f.l[i][pivotRow] = m
			if m == 0 {
				continue
			}
			for j := col; j < n; j++ {
				f.u[i][j] -= m * f.u[pivotRow][j]
			}
			f.u[i][col] = 0
		}
		f.pivots = append(f.pivots, Pivot{Row: pivotRow, Col: col})
		log.emit(StepFactor, []int{pivotRow}, col, pv, snapshotRows(f.u), "LU stage %d: pivot %.4f at (%d, %d)", len(f.pivots), pv, pivotRow+1, col+1)
		pivotRow++
	}
	for i := range f.u {
		for j := range f.u[i] {
			if negligible(f.u[i][j], j) {
				f.u[i][j] = 0
			}
		}
	}

	return f
}

// forwardLU solves L·Y = P·B for every column of b.
// Complexity: O(n²·k).
func forwardLU(f luFactors, b [][]float64) [][]float64 {
	n, k := len(f.l), len(b[0])
	y := zeroRows(n, k)
	for i := 0; i < n; i++ {
		copy(y[i], b[f.perm[i]])
		for j := 0; j < i; j++ {
			if lij := f.l[i][j]; lij != 0 {
				for q := 0; q < k; q++ {
					y[i][q] -= lij * y[j][q]
				}
			}
		}
	}

	return y
}

// luPayload exposes the factors as chopped Dense matrices.
func luPayload(s *augmentedSystem, f luFactors, y [][]float64) (*LUFactors, error) {
	l, err := s.finalize(f.l)
	if err != nil {
		return nil, err
	}
	u, err := s.finalize(f.u)
	if err != nil {
		return nil, err
	}
	yd, err := s.finalize(y)
	if err != nil {
		return nil, err
	}

	return &LUFactors{P: append([]int(nil), f.perm...), L: l, U: u, Y: yd}, nil
}

// doolittleStages replays the unpivoted A = LU recursion for presentation.
// A zero pivot only means there is nothing to show.
func doolittleStages(a *matrix.Dense, logger *zap.Logger) []DoolittleStage {
	var stages []DoolittleStage
	_, _, err := matrix.DoolittleSteps(a, func(stage int, l, u *matrix.Dense) {
		stages = append(stages, DoolittleStage{Stage: stage + 1, L: l.ToRows(), U: u.ToRows()})
	})
	if err != nil {
		logger.Debug("doolittle snapshots unavailable", zap.Error(err))

		return nil
	}

	return stages
}

// workMatrix assembles [left|right] from two work arrays with equal row counts.
// Non-finite values are let through; finalize reports them.
func workMatrix(left, right [][]float64) (*matrix.Dense, error) {
	l, err := matrix.FromRows(left, matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, err
	}
	r, err := matrix.FromRows(right, matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, err
	}

	return matrix.HStack(l, r)
}
