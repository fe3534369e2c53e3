// SPDX-License-Identifier: MIT
// Package linsolve: row reduction.
//
// reduceEchelon produces row echelon form (zeros below each pivot, pivots
// left unnormalized); reduceJordan produces reduced row echelon form
// (pivots normalized to 1, zeros above and below). Both snap negligible
// entries to exact zeros after every column pass, so the analyzer compares
// ranks on clean data.

package linsolve

// reduceEchelon runs Gaussian elimination with partial pivoting.
// Pivot rows are 0..rank-1 and pivot columns strictly increase.
// Complexity: O(min(m,n)·m·(n+k)).
func (s *augmentedSystem) reduceEchelon() (Echelon, error) {
	var (
		ech      Echelon
		pivotRow int
		pv, v    float64
	)
	for col := 0; col < s.n && pivotRow < s.m; col++ {
		r, ok := s.partialPivot(pivotRow, col)
		if !ok {
			continue // free column
		}
		if r != pivotRow {
			if err := s.swap(pivotRow, r); err != nil {
				return Echelon{}, err
			}
		}
		pv = s.at(pivotRow, col)
		s.log.emit(StepPivot, []int{pivotRow}, col, pv, nil, "Pivot %.4f at (%d, %d)", pv, pivotRow+1, col+1)

		for i := pivotRow + 1; i < s.m; i++ {
			if v = s.at(i, col); v == 0 {
				continue
			}
			if err := s.combine(i, pivotRow, col, v/pv); err != nil {
				return Echelon{}, err
			}
			s.clear(i, col)
		}
		if err := s.snap(); err != nil {
			return Echelon{}, err
		}
		s.log.emit(StepColumnDone, nil, col, 0, snapshotOf(s.aug), "Eliminate column %d", col+1)

		ech.Pivots = append(ech.Pivots, Pivot{Row: pivotRow, Col: col})
		pivotRow++
	}

	return ech, nil
}

// reduceJordan runs Gauss-Jordan elimination with the jordan pivot rule.
// Rows are never swapped, so pivot rows follow selection order.
// Complexity: O(rank·m·(n+k) + rank·m·n) including pivot scans.
func (s *augmentedSystem) reduceJordan() (Echelon, error) {
	var (
		ech      = Echelon{Reduced: true}
		usedRows = make([]bool, s.m)
		usedCols = make([]bool, s.n)
		pv, f    float64
	)
	for {
		p, ok := s.jordanPivot(usedRows, usedCols)
		if !ok {
			break
		}
		usedRows[p.Row], usedCols[p.Col] = true, true
		pv = s.at(p.Row, p.Col)
		s.log.emit(StepPivot, []int{p.Row}, p.Col, pv, nil, "Pivot %.4f at (%d, %d)", pv, p.Row+1, p.Col+1)

		if pv != 1 {
			if err := s.normalize(p.Row, p.Col, pv); err != nil {
				return Echelon{}, err
			}
		}
		for i := 0; i < s.m; i++ {
			if i == p.Row {
				continue
			}
			if f = s.at(i, p.Col); f == 0 || s.negligible(f, i, p.Col) {
				continue
			}
			if err := s.combine(i, p.Row, p.Col, f); err != nil {
				return Echelon{}, err
			}
			s.clear(i, p.Col)
		}
		if err := s.snap(); err != nil {
			return Echelon{}, err
		}
		s.log.emit(StepColumnDone, nil, p.Col, 0, snapshotOf(s.aug), "Eliminate column %d", p.Col+1)

		ech.Pivots = append(ech.Pivots, p)
	}

	return ech, nil
}
