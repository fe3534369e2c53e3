// SPDX-License-Identifier: MIT
// Package matrix - elementwise comparison and cleanup kernels.
//
// Purpose:
//   - AllClose: tolerance-aware equality used by tests and symmetry/consistency checks.
//   - Chop: snap tolerance noise to exact zeros before results leave a solver.
//
// Determinism:
//   - Fixed row-major traversal; no allocations beyond the result.

package matrix

import "math"

const (
	opAllClose = "AllClose"
	opChop     = "Chop"
)

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
// Time: O(r*c). Space: O(1). Deterministic.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol| (negative values are normalized).
//   - NaN/Inf tolerances are rejected with ErrNaNInf.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if isNonFinite(rtol) || isNonFinite(atol) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	da, err := asDenseView(a)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	db, err := asDenseView(b)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	for idx := range da.data {
		if math.Abs(da.data[idx]-db.data[idx]) > atol+rtol*math.Abs(db.data[idx]) {
			return false, nil // early-exit on first violation
		}
	}

	return true, nil
}

// Chop returns a copy of m in which every |v| < eps is replaced by exactly 0.
// eps comes from WithEpsilon (DefaultEpsilon otherwise); negative zero is normalized too.
// Implementation:
//   - Stage 1: NotNil, deep copy via ToDense.
//   - Stage 2: single flat pass over the copy.
//
// Errors:
//   - ErrNilMatrix.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - Run once on solver outputs so "-0" and 1e-17 residues never reach a JSON payload.
func Chop(m Matrix, opts ...Option) (*Dense, error) {
	o := gatherOptions(opts...)
	res, err := ToDense(m)
	if err != nil {
		return nil, matrixErrorf(opChop, err)
	}
	for idx, v := range res.data {
		if v == 0 || math.Abs(v) < o.eps {
			res.data[idx] = 0 // also rewrites -0
		}
	}

	return res, nil
}
