// SPDX-License-Identifier: MIT
// Package linsolve: error taxonomy.
//
// Every failure leaving the package is an *Error carrying a Kind, the
// operation tag and a cause chain that unwraps to exactly one of the
// sentinels below (plus, when relevant, the matrix sentinel that triggered
// it). Match with errors.Is on the sentinel or use KindOf.
//
// Degenerate systems are NOT errors: rank deficiency and inconsistency are
// classifications (see Outcome). Only malformed input and numerical defects
// are reported here.

package linsolve

import (
	"errors"
	"fmt"
)

// Kind enumerates the externally visible error categories.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors not produced by this package.
	KindUnknown Kind = iota

	// KindShapeMismatch: A is not rectangular, or B's row count differs from A's.
	KindShapeMismatch

	// KindNotSquare: a factorization path requires a square coefficient matrix.
	KindNotSquare

	// KindNotPositiveDefinite: the Cholesky target has a non-positive eigenvalue or pivot.
	KindNotPositiveDefinite

	// KindSingularPivot: back-substitution met a negligible pivot after the
	// analyzer classified the system; an internal invariant violation.
	KindSingularPivot

	// KindInvalidInput: empty matrices, NaN/Inf entries, nil arguments, unknown methods.
	KindInvalidInput

	// KindNotSymmetric: Cholesky without the normal-equations fallback got an asymmetric A.
	KindNotSymmetric
)

var kindNames = [...]string{
	KindUnknown:             "UNKNOWN",
	KindShapeMismatch:       "SHAPE_MISMATCH",
	KindNotSquare:           "NOT_SQUARE",
	KindNotPositiveDefinite: "NOT_POSITIVE_DEFINITE",
	KindSingularPivot:       "SINGULAR_PIVOT",
	KindInvalidInput:        "INVALID_INPUT",
	KindNotSymmetric:        "NOT_SYMMETRIC",
}

// String returns the wire name of the kind (e.g. "SHAPE_MISMATCH").
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}

	return kindNames[k]
}

// Sentinel errors, one per Kind.
var (
	ErrShapeMismatch       = errors.New("linsolve: shape mismatch")
	ErrNotSquare           = errors.New("linsolve: coefficient matrix is not square")
	ErrNotPositiveDefinite = errors.New("linsolve: matrix is not positive definite")
	ErrSingularPivot       = errors.New("linsolve: singular pivot during back-substitution")
	ErrInvalidInput        = errors.New("linsolve: invalid input")
	ErrNotSymmetric        = errors.New("linsolve: matrix is not symmetric")
)

// ErrUnknownMethod is the cause attached to KindInvalidInput by ParseMethod.
var ErrUnknownMethod = errors.New("linsolve: unknown method")

// sentinel maps a Kind to its package-level error.
func (k Kind) sentinel() error {
	switch k {
	case KindShapeMismatch:
		return ErrShapeMismatch
	case KindNotSquare:
		return ErrNotSquare
	case KindNotPositiveDefinite:
		return ErrNotPositiveDefinite
	case KindSingularPivot:
		return ErrSingularPivot
	case KindNotSymmetric:
		return ErrNotSymmetric
	default:
		return ErrInvalidInput
	}
}

// Error is the structured error returned by every solver entry point.
type Error struct {
	Kind Kind   // category, stable across releases
	Op   string // call-site tag, e.g. "SolveLU"
	Err  error  // cause chain; unwraps to Kind's sentinel
}

// Error renders "Op: cause".
func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes the cause chain to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err, or KindUnknown when err was not produced here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// solveErrorf builds an *Error whose chain contains both the Kind sentinel and cause.
// A nil cause yields the bare sentinel.
func solveErrorf(op string, kind Kind, cause error) error {
	s := kind.sentinel()
	var err error
	switch {
	case cause == nil:
		err = s
	case errors.Is(cause, s):
		err = cause
	default:
		err = fmt.Errorf("%w: %w", s, cause)
	}

	return &Error{Kind: kind, Op: op, Err: err}
}
