// SPDX-License-Identifier: MIT

// Package linsolve classifies and solves linear systems A·X = B.
//
// A is m×n, B is m×k (k right-hand sides solved together). Every solve
// returns a *Result whose Outcome is exactly one of:
//
//   - *NoSolution: rank(A) < rank([A|B]).
//   - *UniqueSolution: X (n×k).
//   - *InfiniteSolutions: a particular solution Xp (n×k, free variables 0)
//     and a null-space basis (n×(n−rank), one column per free variable).
//
// Four methods reach the same three-way answer:
//
//   - MethodGauss: partial pivoting, row echelon form, back-substitution.
//   - MethodGaussJordan: reduced row echelon form, no row swaps.
//   - MethodLU: PA = LU in rank-revealing form; L·Y = P·B, then U·X = Y.
//   - MethodCholesky: M = UᵀU with M = A (symmetric) or M = AᵀA (normal
//     equations); positive definiteness is certified first.
//
// Rank deficiency and inconsistency are classifications, not errors. Errors
// (*Error with a Kind) are reserved for malformed input and numerical
// defects; see errors.go.
//
// Thresholds live in Options (see options.go) and are passed per call:
//
//	res, err := linsolve.Solve(a, b,
//		linsolve.WithMethod(linsolve.MethodLU),
//		linsolve.WithZeroTolerance(1e-12),
//		linsolve.WithSteps(),
//	)
//
// Solve never mutates a or b and keeps no state between calls, so it is safe
// for concurrent use.
package linsolve
