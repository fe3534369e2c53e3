// SPDX-License-Identifier: MIT
// Package linsolve: rank & consistency analysis.
//
// After reduction the coefficient block of every non-pivot row is zero, so
// the system is consistent iff the B block of those rows is zero too. The
// check is joint over all right-hand sides: a single non-negligible entry in
// any column makes the whole batch NO_SOLUTION.

package linsolve

import (
	"math"

	"go.uber.org/zap"
)

// classification is the pure decision taken by classify.
type classification struct {
	status        Status
	rank          int
	augmentedRank int
	free          []int // ascending; empty unless status == StatusInfinite
}

// classify inspects the reduced system without mutating it.
// Complexity: O(m·k) for the decision plus O(m·k·min(m,k)) to report the augmented rank
// of an inconsistent system.
func (s *augmentedSystem) classify(method Method, ech Echelon) (classification, error) {
	pivotRow := make([]bool, s.m)
	pivotCol := make([]bool, s.n)
	for _, p := range ech.Pivots {
		pivotRow[p.Row], pivotCol[p.Col] = true, true
	}

	var rest []int // non-pivot rows
	consistent := true
	for i := 0; i < s.m; i++ {
		if pivotRow[i] {
			continue
		}
		rest = append(rest, i)
		for j := s.n; j < s.n+s.k && consistent; j++ {
			if !s.negligible(s.at(i, j), i, j) {
				consistent = false
			}
		}
	}

	c := classification{rank: ech.Rank(), augmentedRank: ech.Rank()}
	switch {
	case !consistent:
		c.status = StatusNoSolution
		extra, err := s.residualRank(rest)
		if err != nil {
			return classification{}, err
		}
		c.augmentedRank += extra
	case c.rank == s.n:
		c.status = StatusUnique
	default:
		c.status = StatusInfinite
		for j := 0; j < s.n; j++ {
			if !pivotCol[j] {
				c.free = append(c.free, j)
			}
		}
	}

	s.log.emit(StepClassify, nil, -1, 0, nil, "rank(A) = %d, rank([A|B]) = %d: %s", c.rank, c.augmentedRank, c.status)
	s.logger.Info("system classified",
		zap.String("method", string(method)),
		zap.Stringer("status", c.status),
		zap.Int("rank", c.rank),
		zap.Int("augmented_rank", c.augmentedRank),
	)

	return c, nil
}

// residualRank is the rank of the B block restricted to rows, i.e.
// rank([A|B]) - rank(A) once the A block of those rows is zero.
func (s *augmentedSystem) residualRank(rows []int) (int, error) {
	cols := make([]int, s.k)
	for q := range cols {
		cols[q] = s.n + q
	}
	sub, err := s.aug.Induced(rows, cols)
	if err != nil {
		return 0, solveErrorf(s.op, KindInvalidInput, err)
	}

	// Non-pivot rows are never normalized.
	return echelonRank(sub.ToRows(), func(v float64, q int) bool {
		return s.negligibleUnscaled(v, s.n+q)
	}), nil
}

// echelonRank counts the pivots partial-pivot elimination finds in a scratch
// copy. negligible decides algebraic zeros per column.
func echelonRank(rows [][]float64, negligible func(v float64, col int) bool) int {
	if len(rows) == 0 {
		return 0
	}
	m, w := len(rows), len(rows[0])
	rank := 0
	for col := 0; col < w && rank < m; col++ {
		best, bestAbs := -1, 0.0
		for r := rank; r < m; r++ {
			if a := math.Abs(rows[r][col]); a > bestAbs {
				best, bestAbs = r, a
			}
		}
		if best < 0 || negligible(bestAbs, col) {
			continue
		}
		rows[rank], rows[best] = rows[best], rows[rank]
		for r := rank + 1; r < m; r++ {
			f := rows[r][col] / rows[rank][col]
			for j := col; j < w; j++ {
				rows[r][j] -= f * rows[rank][j]
			}
		}
		rank++
	}

	return rank
}
