// SPDX-License-Identifier: MIT
// Package linsolve: back-substitution and null-space extraction.
//
// Both the unique solution and the particular solution are obtained by
// walking the pivots in reverse elimination order with every free variable
// fixed (to 0 for a particular solution). A null-space basis vector for free
// column f fixes x[f] = 1, the other free variables to 0, and substitutes
// against a zero right-hand side. All k right-hand sides (or all basis
// vectors) are solved in the same pass.

package linsolve

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/linsolve/matrix"
)

// substitute fills x[pivot col][q] for every pivot and every q < width.
// x must be n×width with free variables already set. When homogeneous is
// false the right-hand side of column q is aug[row, n+q].
//
// A negligible pivot here means classification and reduction disagree;
// it is reported as KindSingularPivot and logged at DPanic.
func (s *augmentedSystem) substitute(pivots []Pivot, x [][]float64, homogeneous bool) error {
	var (
		p        Pivot
		piv, sum float64
		a        float64
		q, j     int
	)
	width := 0
	if len(x) > 0 {
		width = len(x[0])
	}
	for idx := len(pivots) - 1; idx >= 0; idx-- {
		p = pivots[idx]
		piv = s.at(p.Row, p.Col)
		if s.pinned[p.Row] != p.Col && s.negligible(piv, p.Row, p.Col) {
			err := fmt.Errorf("pivot %.3g at (%d,%d)", piv, p.Row, p.Col)
			s.logger.DPanic("negligible pivot after classification",
				zap.String("op", s.op),
				zap.Int("row", p.Row),
				zap.Int("col", p.Col),
				zap.Float64("pivot", piv),
			)

			return solveErrorf(s.op, KindSingularPivot, err)
		}
		for q = 0; q < width; q++ {
			sum = 0
			if !homogeneous {
				sum = s.at(p.Row, s.n+q)
			}
			for j = 0; j < s.n; j++ {
				if j == p.Col {
					continue
				}
				if a = s.at(p.Row, j); a != 0 {
					sum -= a * x[j][q]
				}
			}
			x[p.Col][q] = sum / piv
		}
	}

	return nil
}

// solution turns a classification into the public Outcome.
func (s *augmentedSystem) solution(ech Echelon, c classification) (Outcome, error) {
	switch c.status {
	case StatusNoSolution:
		return &NoSolution{Rank: c.rank, AugmentedRank: c.augmentedRank}, nil

	case StatusUnique:
		x := zeroRows(s.n, s.k)
		if err := s.substitute(ech.Pivots, x, false); err != nil {
			return nil, err
		}
		xd, err := s.finalize(x)
		if err != nil {
			return nil, err
		}
		s.log.emit(StepSubstitute, nil, -1, 0, snapshotRows(x), "Back substitution: unique solution")

		return &UniqueSolution{X: xd}, nil

	default:
		xp := zeroRows(s.n, s.k)
		if err := s.substitute(ech.Pivots, xp, false); err != nil {
			return nil, err
		}
		basis := zeroRows(s.n, len(c.free))
		for t, f := range c.free {
			basis[f][t] = 1
		}
		if err := s.substitute(ech.Pivots, basis, true); err != nil {
			return nil, err
		}
		pd, err := s.finalize(xp)
		if err != nil {
			return nil, err
		}
		var nd *matrix.Dense
		if len(c.free) == 0 {
			nd, err = matrix.NewEmptyColumns(s.n)
		} else {
			nd, err = s.finalize(basis)
		}
		if err != nil {
			return nil, err
		}
		s.log.emit(StepSubstitute, nil, -1, 0, snapshotRows(xp), "Back substitution: particular solution and %d null-space vector(s)", len(c.free))

		return &InfiniteSolutions{
			Particular:  pd,
			NullSpace:   nd,
			FreeColumns: append([]int(nil), c.free...),
		}, nil
	}
}

// finalize converts a work array into a Dense and chops residues below the
// zero tolerance. Non-finite values can only come from a broken pivot.
func (s *augmentedSystem) finalize(rows [][]float64) (*matrix.Dense, error) {
	d, err := matrix.FromRows(rows)
	if err != nil {
		if errors.Is(err, matrix.ErrNaNInf) {
			return nil, solveErrorf(s.op, KindSingularPivot, err)
		}

		return nil, solveErrorf(s.op, KindInvalidInput, err)
	}
	out, err := matrix.Chop(d, matrix.WithEpsilon(s.tol))
	if err != nil {
		return nil, solveErrorf(s.op, KindInvalidInput, err)
	}

	return out, nil
}

func zeroRows(r, c int) [][]float64 {
	buf := make([]float64, r*c)
	out := make([][]float64, r)
	for i := range out {
		out[i] = buf[i*c : (i+1)*c : (i+1)*c]
	}

	return out
}
