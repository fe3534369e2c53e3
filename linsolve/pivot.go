// SPDX-License-Identifier: MIT
// Package linsolve: pivot selection.
//
// Two deterministic rules:
//   - partial: largest |v| in the column at or below the pivot row, lowest
//     row index on ties; used by Gauss elimination.
//   - jordan: first entry exactly equal to 1 among unused rows/columns in
//     row-major order, else the largest |v| (first wins on ties); no swaps.
//
// A candidate below the scaled zero tolerance never becomes a pivot.

package linsolve

import "math"

// partialPivot returns the row holding the pivot of col, or ok=false when
// every candidate is negligible (the column is free).
// Complexity: O(m).
func (s *augmentedSystem) partialPivot(pivotRow, col int) (row int, ok bool) {
	best, bestAbs := -1, 0.0
	var a float64
	for r := pivotRow; r < s.m; r++ {
		if a = math.Abs(s.at(r, col)); a > bestAbs {
			best, bestAbs = r, a
		}
	}
	if best < 0 || s.negligible(bestAbs, best, col) {
		return 0, false
	}

	return best, true
}

// jordanPivot scans rows and coefficient columns not yet used by a pivot.
// Complexity: O(m·n).
func (s *augmentedSystem) jordanPivot(usedRows, usedCols []bool) (Pivot, bool) {
	var (
		best    = Pivot{Row: -1, Col: -1}
		bestAbs float64
		i, j    int
		v, a    float64
	)
	for i = 0; i < s.m; i++ {
		if usedRows[i] {
			continue
		}
		for j = 0; j < s.n; j++ {
			if usedCols[j] {
				continue
			}
			v = s.at(i, j)
			if s.negligible(v, i, j) {
				continue
			}
			if v == 1 {
				return Pivot{Row: i, Col: j}, true
			}
			if a = math.Abs(v); a > bestAbs {
				best, bestAbs = Pivot{Row: i, Col: j}, a
			}
		}
	}

	return best, best.Row >= 0
}
