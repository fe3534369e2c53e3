// SPDX-License-Identifier: MIT
// Package linsolve: the augmented system [A|B].
//
// augmentedSystem exclusively owns its buffer: it is built from private
// copies of the caller's matrices and mutated only through the three
// elementary row operations below, each of which may emit one step.

package linsolve

import (
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/linsolve/matrix"
)

type augmentedSystem struct {
	aug     *matrix.Dense
	m, n, k int       // rows, unknowns, right-hand sides
	scale   []float64 // per-column max |v| of the original [A|B]
	rowMul  []float64 // product of the factors each row was scaled by
	pinned  []int     // column of the normalized pivot per row, or -1
	tol     float64
	op      string
	log     *stepLog
	logger  *zap.Logger
}

// newAugmented builds [A|B] from already validated private copies.
func newAugmented(op string, a, b *matrix.Dense, o Options, log *stepLog) (*augmentedSystem, error) {
	aug, err := matrix.HStack(a, b)
	if err != nil {
		return nil, solveErrorf(op, KindShapeMismatch, err)
	}
	scale, err := matrix.ColumnMaxAbs(aug)
	if err != nil {
		return nil, solveErrorf(op, KindInvalidInput, err)
	}

	return newAugmentedFrom(op, aug, a.Cols(), scale, o, log), nil
}

// newAugmentedFrom wraps an existing m×(n+k) buffer (e.g. [U|y] of a
// factorization) using a caller-provided column scale.
func newAugmentedFrom(op string, aug *matrix.Dense, n int, scale []float64, o Options, log *stepLog) *augmentedSystem {
	m := aug.Rows()
	rowMul, pinned := make([]float64, m), make([]int, m)
	for i := range rowMul {
		rowMul[i], pinned[i] = 1, -1
	}

	return &augmentedSystem{
		aug:    aug,
		rowMul: rowMul,
		pinned: pinned,
		m:      m,
		n:      n,
		k:      aug.Cols() - n,
		scale:  scale,
		tol:    o.ZeroTolerance,
		op:     op,
		log:    log,
		logger: o.Logger,
	}
}

// at reads aug[i,j]; indices are produced internally and always in range.
func (s *augmentedSystem) at(i, j int) float64 {
	v, _ := s.aug.At(i, j)

	return v
}

// negligible reports |v| ≤ tol·max(1, scale[col]·rowMul[row]): a row
// divided by its pivot is judged on the scale it now lives on.
func (s *augmentedSystem) negligible(v float64, row, col int) bool {
	return math.Abs(v) <= s.tol*math.Max(1, s.scale[col]*s.rowMul[row])
}

// negligibleUnscaled applies the column scale alone; valid for rows that
// were never normalized.
func (s *augmentedSystem) negligibleUnscaled(v float64, col int) bool {
	return math.Abs(v) <= s.tol*math.Max(1, s.scale[col])
}

// snap rewrites every negligible entry as exactly 0. Normalized pivots are
// left alone.
func (s *augmentedSystem) snap() error {
	err := s.aug.Apply(func(i, j int, v float64) float64 {
		if s.pinned[i] != j && s.negligible(v, i, j) {
			return 0
		}

		return v
	})
	if err != nil {
		return solveErrorf(s.op, KindInvalidInput, err)
	}

	return nil
}

// clear stores an exact zero at (i, j) after the entry has been eliminated.
func (s *augmentedSystem) clear(i, j int) {
	_ = s.aug.Set(i, j, 0)
}

func (s *augmentedSystem) swap(i, k int) error {
	if err := s.aug.SwapRows(i, k); err != nil {
		return solveErrorf(s.op, KindInvalidInput, err)
	}
	s.log.emit(StepSwap, []int{i, k}, -1, 0, snapshotOf(s.aug), "Swap R%d <-> R%d", i+1, k+1)

	return nil
}

// normalize divides row i by pivot and pins (i, col) at exactly 1.
func (s *augmentedSystem) normalize(i, col int, pivot float64) error {
	if err := s.aug.ScaleRow(i, 1/pivot); err != nil {
		return solveErrorf(s.op, KindInvalidInput, err)
	}
	_ = s.aug.Set(i, col, 1)
	s.rowMul[i] /= math.Abs(pivot)
	s.pinned[i] = col
	s.log.emit(StepScale, []int{i}, col, 1/pivot, snapshotOf(s.aug), "R%d = R%d / (%.4f)", i+1, i+1, pivot)

	return nil
}

// combine performs R_dst = R_dst - f·R_src.
func (s *augmentedSystem) combine(dst, src, col int, f float64) error {
	if err := s.aug.AddScaledRow(dst, src, -f); err != nil {
		return solveErrorf(s.op, KindInvalidInput, err)
	}
	s.log.emit(StepEliminate, []int{dst, src}, col, f, snapshotOf(s.aug), "R%d = R%d - (%.4f)·R%d", dst+1, dst+1, f, src+1)

	return nil
}

func (s *augmentedSystem) emitInitial() {
	s.log.emit(StepInitial, nil, -1, 0, snapshotOf(s.aug), "Initial augmented matrix [A|B]")
}
