// SPDX-License-Identifier: MIT
// Package linsolve: entry points.
//
// Every entry point validates its inputs before any elimination work,
// copies them, and returns either a *Result or an *Error, never both.

package linsolve

import (
	"errors"

	"github.com/katalvlaran/linsolve/matrix"
)

// Op tags carried by *Error.
const (
	opSolve       = "Solve"
	opSolveRows   = "SolveRows"
	opGauss       = "SolveGauss"
	opGaussJordan = "SolveGaussJordan"
	opLU          = "SolveLU"
	opCholesky    = "SolveCholesky"
)

// Solve classifies and solves A·X = B with the method chosen by WithMethod
// (Gauss elimination by default).
//
// Inputs:
//   - a: m×n coefficient matrix.
//   - b: m×k right-hand sides (k ≥ 1).
//
// Errors (*Error):
//   - KindInvalidInput: nil or empty matrices, NaN/±Inf entries.
//   - KindShapeMismatch: b.Rows() != a.Rows().
//   - KindNotSquare, KindNotSymmetric, KindNotPositiveDefinite: method-specific.
//   - KindSingularPivot: internal defect (never expected).
//
// Determinism:
//   - Identical inputs and options yield bit-identical results.
//
// Concurrency:
//   - Safe for concurrent use; a and b are only read.
func Solve(a, b matrix.Matrix, opts ...Option) (*Result, error) {
	o := gatherOptions(opts...)

	return dispatch(o.Method, a, b, o)
}

// SolveRows is Solve over plain row slices, the shape JSON payloads decode to.
// Ragged rows report KindShapeMismatch; empty input reports KindInvalidInput.
func SolveRows(a, b [][]float64, opts ...Option) (*Result, error) {
	da, err := fromRows(a)
	if err != nil {
		return nil, err
	}
	db, err := fromRows(b)
	if err != nil {
		return nil, err
	}

	return Solve(da, db, opts...)
}

// SolveGauss uses Gaussian elimination with partial pivoting (row echelon form).
func SolveGauss(a, b matrix.Matrix, opts ...Option) (*Result, error) {
	return dispatch(MethodGauss, a, b, gatherOptions(opts...))
}

// SolveGaussJordan uses Gauss-Jordan elimination (reduced row echelon form).
func SolveGaussJordan(a, b matrix.Matrix, opts ...Option) (*Result, error) {
	return dispatch(MethodGaussJordan, a, b, gatherOptions(opts...))
}

// SolveLU factors PA = LU (A square) and solves through L·Y = P·B, U·X = Y.
func SolveLU(a, b matrix.Matrix, opts ...Option) (*Result, error) {
	return dispatch(MethodLU, a, b, gatherOptions(opts...))
}

// SolveCholesky factors M = UᵀU, where M = A for symmetric A and M = AᵀA
// otherwise (normal equations, unless disabled with WithNormalEquations(false)).
func SolveCholesky(a, b matrix.Matrix, opts ...Option) (*Result, error) {
	return dispatch(MethodCholesky, a, b, gatherOptions(opts...))
}

func dispatch(method Method, a, b matrix.Matrix, o Options) (*Result, error) {
	switch method {
	case MethodGauss:
		return solveElimination(opGauss, method, a, b, o)
	case MethodGaussJordan:
		return solveElimination(opGaussJordan, method, a, b, o)
	case MethodLU:
		return solveLU(a, b, o)
	case MethodCholesky:
		return solveCholesky(a, b, o)
	default:
		return nil, solveErrorf(opSolve, KindInvalidInput, ErrUnknownMethod)
	}
}

// solveElimination is the Gauss / Gauss-Jordan pipeline.
func solveElimination(op string, method Method, a, b matrix.Matrix, o Options) (*Result, error) {
	da, db, err := validateSystem(op, a, b)
	if err != nil {
		return nil, err
	}
	log := newStepLog(o)
	s, err := newAugmented(op, da, db, o, log)
	if err != nil {
		return nil, err
	}
	s.emitInitial()

	var ech Echelon
	if method == MethodGaussJordan {
		ech, err = s.reduceJordan()
	} else {
		ech, err = s.reduceEchelon()
	}
	if err != nil {
		return nil, err
	}

	return s.finish(method, ech, nil)
}

// finish classifies, back-substitutes and assembles the Result.
func (s *augmentedSystem) finish(method Method, ech Echelon, f Factorization) (*Result, error) {
	c, err := s.classify(method, ech)
	if err != nil {
		return nil, err
	}
	out, err := s.solution(ech, c)
	if err != nil {
		return nil, err
	}

	return &Result{
		Method:        method,
		Rank:          c.rank,
		Outcome:       out,
		Steps:         s.log.records(),
		Factorization: f,
	}, nil
}

// validateSystem enforces the input contract and returns private copies.
func validateSystem(op string, a, b matrix.Matrix) (*matrix.Dense, *matrix.Dense, error) {
	if err := matrix.ValidateNotNil(a); err != nil {
		return nil, nil, solveErrorf(op, KindInvalidInput, err)
	}
	if err := matrix.ValidateNotNil(b); err != nil {
		return nil, nil, solveErrorf(op, KindInvalidInput, err)
	}
	if a.Rows() == 0 || a.Cols() == 0 || b.Rows() == 0 || b.Cols() == 0 {
		return nil, nil, solveErrorf(op, KindInvalidInput, matrix.ErrInvalidDimensions)
	}
	if err := matrix.ValidateSameRows(a, b); err != nil {
		return nil, nil, solveErrorf(op, KindShapeMismatch, err)
	}
	if err := matrix.ValidateFinite(a); err != nil {
		return nil, nil, solveErrorf(op, KindInvalidInput, err)
	}
	if err := matrix.ValidateFinite(b); err != nil {
		return nil, nil, solveErrorf(op, KindInvalidInput, err)
	}
	da, err := matrix.ToDense(a)
	if err != nil {
		return nil, nil, solveErrorf(op, KindInvalidInput, err)
	}
	db, err := matrix.ToDense(b)
	if err != nil {
		return nil, nil, solveErrorf(op, KindInvalidInput, err)
	}

	return da, db, nil
}

// fromRows maps matrix construction failures onto solver kinds.
func fromRows(rows [][]float64) (*matrix.Dense, error) {
	d, err := matrix.FromRows(rows)
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, matrix.ErrDimensionMismatch):
		return nil, solveErrorf(opSolveRows, KindShapeMismatch, err)
	default:
		return nil, solveErrorf(opSolveRows, KindInvalidInput, err)
	}
}
