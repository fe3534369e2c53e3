// SPDX-License-Identifier: MIT
// Package linsolve: Cholesky adapter.
//
// The factored system is M·X = D with M = A, D = B when A is square and
// symmetric, else M = AᵀA, D = AᵀB (normal equations). M must be positive
// definite: the smallest Jacobi eigenvalue and every squared diagonal pivot
// must exceed PositiveDefiniteThreshold·max(1, max|M|). After M = UᵀU and
// Uᵀ·Y = D, [U|Y] goes through the shared classify/back-substitute path.
//
// Normal equations always have a solution, so a candidate X from that path
// is checked against the original system and reported as NO_SOLUTION when
// its residual is too large.

package linsolve

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/linsolve/matrix"
)

const (
	transformDirect = "A is symmetric: factoring A = UᵀU and solving A·X = B directly"
	transformNormal = "A is not symmetric: solving the normal equations AᵀA·X = AᵀB"

	// eigenTolerance is the relative Jacobi convergence bound of the certificate.
	eigenTolerance = 1e-12
)

func solveCholesky(a, b matrix.Matrix, o Options) (*Result, error) {
	da, db, err := validateSystem(opCholesky, a, b)
	if err != nil {
		return nil, err
	}
	m, d, normal, err := choleskyTarget(da, db, o)
	if err != nil {
		return nil, err
	}
	log := newStepLog(o)
	transformation := transformDirect
	if normal {
		transformation = transformNormal
	}
	log.emit(StepInitial, nil, -1, 0, snapshotOf(m), "%s", transformation)

	if err = certifyPositiveDefinite(m, o); err != nil {
		return nil, err
	}

	u, err := factorCholesky(m.ToRows(), pdBound(m, o), log)
	if err != nil {
		return nil, err
	}
	y := forwardCholesky(u, d.ToRows())
	log.emit(StepSubstitute, nil, -1, 0, snapshotRows(y), "Forward substitution: Uᵀ·Y = D")

	uy, err := workMatrix(u, y)
	if err != nil {
		return nil, solveErrorf(opCholesky, KindInvalidInput, err)
	}
	// U lives on the √M scale, so [U|Y] supplies its own.
	scale, err := matrix.ColumnMaxAbs(uy)
	if err != nil {
		return nil, solveErrorf(opCholesky, KindInvalidInput, err)
	}
	n := m.Rows()
	s := newAugmentedFrom(opCholesky, uy, n, scale, o, log)
	pivots := make([]Pivot, n)
	for i := range pivots {
		pivots[i] = Pivot{Row: i, Col: i}
	}

	factors, err := choleskyPayload(s, normal, transformation, m, d, u, y)
	if err != nil {
		return nil, err
	}
	res, err := s.finish(MethodCholesky, Echelon{Pivots: pivots}, factors)
	if err != nil {
		return nil, err
	}
	if normal {
		if err = checkResidual(res, da, db, o, log); err != nil {
			return nil, err
		}
		res.Steps = log.records()
	}

	return res, nil
}

// choleskyTarget selects M and D. M is returned exactly symmetric.
func choleskyTarget(a, b *matrix.Dense, o Options) (m, d *matrix.Dense, normal bool, err error) {
	square := a.Rows() == a.Cols()
	sym := false
	if square {
		if sym, err = matrix.IsSymmetric(a, o.SymmetryTolerance); err != nil {
			return nil, nil, false, solveErrorf(opCholesky, KindInvalidInput, err)
		}
	}
	switch {
	case sym:
		m, d = a, b
	case !o.NormalEquations && !square:
		return nil, nil, false, solveErrorf(opCholesky, KindNotSquare, matrix.ErrNonSquare)
	case !o.NormalEquations:
		return nil, nil, false, solveErrorf(opCholesky, KindNotSymmetric, matrix.ErrAsymmetry)
	default:
		normal = true
		at, terr := matrix.Transpose(a)
		if terr != nil {
			return nil, nil, false, solveErrorf(opCholesky, KindInvalidInput, terr)
		}
		if m, err = product(at, a); err != nil {
			return nil, nil, false, err
		}
		if d, err = product(at, b); err != nil {
			return nil, nil, false, err
		}
	}

	// (M + Mᵀ)/2 removes asymmetry below the tolerance and rounding in AᵀA.
	m, err = matrix.ToDense(m)
	if err != nil {
		return nil, nil, false, solveErrorf(opCholesky, KindInvalidInput, err)
	}
	mt, err := matrix.Transpose(m)
	if err != nil {
		return nil, nil, false, solveErrorf(opCholesky, KindInvalidInput, err)
	}
	if err = m.Apply(func(i, j int, v float64) float64 {
		w, _ := mt.At(i, j)
		return (v + w) / 2
	}); err != nil {
		return nil, nil, false, solveErrorf(opCholesky, KindInvalidInput, err)
	}

	return m, d, normal, nil
}

func product(a, b matrix.Matrix) (*matrix.Dense, error) {
	p, err := matrix.Mul(a, b)
	if err != nil {
		return nil, solveErrorf(opCholesky, KindShapeMismatch, err)
	}
	d, err := matrix.ToDense(p)
	if err != nil {
		return nil, solveErrorf(opCholesky, KindInvalidInput, err)
	}

	return d, nil
}

// pdBound is the relative positive-definiteness threshold for m.
func pdBound(m *matrix.Dense, o Options) float64 {
	scale, _ := matrix.MaxAbs(m)

	return o.PositiveDefiniteThreshold * math.Max(1, scale)
}

// certifyPositiveDefinite checks min eigenvalue(M) > bound. A Jacobi run that
// does not converge is logged; the pivot check in factorCholesky still applies.
func certifyPositiveDefinite(m *matrix.Dense, o Options) error {
	scale, _ := matrix.MaxAbs(m)
	vals, _, err := matrix.Eigen(m, eigenTolerance*math.Max(1, scale), o.EigenMaxIterations)
	switch {
	case errors.Is(err, matrix.ErrMatrixEigenFailed):
		o.Logger.Warn("eigenvalue certificate did not converge; relying on Cholesky pivots",
			zap.Int("max_iterations", o.EigenMaxIterations),
		)

		return nil
	case err != nil:
		return solveErrorf(opCholesky, KindInvalidInput, err)
	}

	bound := pdBound(m, o)
	minEig := math.Inf(1)
	for _, v := range vals {
		minEig = math.Min(minEig, v)
	}
	if minEig <= bound {
		return solveErrorf(opCholesky, KindNotPositiveDefinite,
			fmt.Errorf("smallest eigenvalue %.6g ≤ %.3g", minEig, bound))
	}

	return nil
}

// factorCholesky returns upper triangular U with M = UᵀU.
// Complexity: O(n³).
func factorCholesky(m [][]float64, bound float64, log *stepLog) ([][]float64, error) {
	n := len(m)
	u := zeroRows(n, n)
	var sum float64
	for i := 0; i < n; i++ {
		sum = m[i][i]
		for k := 0; k < i; k++ {
			sum -= u[k][i] * u[k][i]
		}
		if sum <= bound {
			return nil, solveErrorf(opCholesky, KindNotPositiveDefinite,
				fmt.Errorf("pivot %d: %.6g ≤ %.3g", i, sum, bound))
		}
		u[i][i] = math.Sqrt(sum)
		for j := i + 1; j < n; j++ {
			sum = m[i][j]
			for k := 0; k < i; k++ {
				sum -= u[k][i] * u[k][j]
			}
			u[i][j] = sum / u[i][i]
		}
		log.emit(StepFactor, []int{i}, i, u[i][i], snapshotRows(u), "Cholesky row %d: U[%d,%d] = %.4f", i+1, i+1, i+1, u[i][i])
	}

	return u, nil
}

// forwardCholesky solves Uᵀ·Y = D.
// Complexity: O(n²·k).
func forwardCholesky(u, d [][]float64) [][]float64 {
	n, k := len(u), len(d[0])
	y := zeroRows(n, k)
	for i := 0; i < n; i++ {
		for q := 0; q < k; q++ {
			sum := d[i][q]
			for j := 0; j < i; j++ {
				sum -= u[j][i] * y[j][q]
			}
			y[i][q] = sum / u[i][i]
		}
	}

	return y
}

// checkResidual rejects a normal-equations candidate that does not solve A·X = B:
// ‖AX−B‖∞ ≤ ResidualTolerance·max(1, ‖A‖∞‖X‖∞ + ‖B‖∞).
func checkResidual(res *Result, a, b *matrix.Dense, o Options, log *stepLog) error {
	uniq, ok := res.Outcome.(*UniqueSolution)
	if !ok {
		return nil
	}
	ax, err := matrix.Mul(a, uniq.X)
	if err != nil {
		return solveErrorf(opCholesky, KindShapeMismatch, err)
	}
	r, err := matrix.Sub(ax, b)
	if err != nil {
		return solveErrorf(opCholesky, KindShapeMismatch, err)
	}
	rn, _ := matrix.NormInf(r)
	an, _ := matrix.NormInf(a)
	xn, _ := matrix.NormInf(uniq.X)
	bn, _ := matrix.NormInf(b)
	bound := o.ResidualTolerance * math.Max(1, an*xn+bn)
	if rn <= bound {
		return nil
	}

	n := a.Cols()
	res.Outcome = &NoSolution{Rank: n, AugmentedRank: n + 1}
	log.emit(StepClassify, nil, -1, 0, nil, "Residual ‖AX−B‖ = %.3g exceeds %.3g: %s", rn, bound, StatusNoSolution)
	o.Logger.Info("normal-equations candidate rejected",
		zap.Float64("residual", rn),
		zap.Float64("bound", bound),
	)

	return nil
}

func choleskyPayload(s *augmentedSystem, normal bool, transformation string, m, d *matrix.Dense, u, y [][]float64) (*CholeskyFactors, error) {
	ud, err := s.finalize(u)
	if err != nil {
		return nil, err
	}
	utm, err := matrix.Transpose(ud)
	if err != nil {
		return nil, solveErrorf(opCholesky, KindInvalidInput, err)
	}
	ut, err := matrix.ToDense(utm)
	if err != nil {
		return nil, solveErrorf(opCholesky, KindInvalidInput, err)
	}
	yd, err := s.finalize(y)
	if err != nil {
		return nil, err
	}

	return &CholeskyFactors{
		NormalEquations: normal,
		Transformation:  transformation,
		M:               m,
		D:               d,
		U:               ud,
		Ut:              ut,
		Y:               yd,
	}, nil
}
