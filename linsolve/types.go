// SPDX-License-Identifier: MIT
// Package linsolve: result model.
//
// A solve produces a *Result whose Outcome is one of three sealed variants.
// Only the fields valid for the variant exist, so callers switch on the
// concrete type (or on Status) instead of probing for optional values.

package linsolve

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/linsolve/matrix"
)

// Status is the three-way classification of a linear system.
type Status int

const (
	// StatusNoSolution: rank(A) < rank([A|B]) for at least one right-hand side.
	StatusNoSolution Status = iota
	// StatusUnique: rank(A) = rank([A|B]) = n.
	StatusUnique
	// StatusInfinite: rank(A) = rank([A|B]) < n.
	StatusInfinite
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusNoSolution:
		return "no_solution"
	case StatusUnique:
		return "unique_solution"
	case StatusInfinite:
		return "infinite_solutions"
	default:
		return "unknown"
	}
}

// Outcome is the sealed classification variant carried by a Result.
// Implementations: *NoSolution, *UniqueSolution, *InfiniteSolutions.
type Outcome interface {
	Status() Status
	isOutcome()
}

// NoSolution reports an inconsistent system. No numeric payload exists.
type NoSolution struct {
	Rank          int // rank of A
	AugmentedRank int // rank of [A|B]; always > Rank
}

// UniqueSolution carries X (n×k) with A·X = B.
type UniqueSolution struct {
	X *matrix.Dense
}

// InfiniteSolutions carries the general solution X = Particular + NullSpace·T.
//
// Particular is n×k with every free variable set to zero.
// NullSpace is n×(n−rank); column t is the basis vector of FreeColumns[t]
// (that entry is 1, the other free entries are 0).
type InfiniteSolutions struct {
	Particular  *matrix.Dense
	NullSpace   *matrix.Dense
	FreeColumns []int
}

// Status implements Outcome.
func (*NoSolution) Status() Status { return StatusNoSolution }

// Status implements Outcome.
func (*UniqueSolution) Status() Status { return StatusUnique }

// Status implements Outcome.
func (*InfiniteSolutions) Status() Status { return StatusInfinite }

func (*NoSolution) isOutcome()        {}
func (*UniqueSolution) isOutcome()    {}
func (*InfiniteSolutions) isOutcome() {}

// Basis returns the null-space basis as length-n vectors, one per free column.
func (s *InfiniteSolutions) Basis() [][]float64 {
	out := make([][]float64, s.NullSpace.Cols())
	for t := range out {
		out[t], _ = s.NullSpace.Col(t)
	}

	return out
}

// Pivot locates one pivot of the reduced system.
type Pivot struct {
	Row int
	Col int
}

// Echelon describes the reduced augmented system handed to the analyzer.
// Pivots are in elimination order; Reduced is true for Gauss-Jordan output
// (pivots normalized to 1 and their columns cleared above and below).
type Echelon struct {
	Pivots  []Pivot
	Reduced bool
}

// Rank is the number of pivots.
func (e Echelon) Rank() int { return len(e.Pivots) }

// Method names an elimination strategy. Values double as HTTP route suffixes.
type Method string

const (
	MethodGauss       Method = "gauss-elimination"
	MethodGaussJordan Method = "gauss-jordan"
	MethodLU          Method = "lu-decomposition"
	MethodCholesky    Method = "cholesky"
)

// Methods lists every supported method in a stable order.
func Methods() []Method {
	return []Method{MethodGauss, MethodGaussJordan, MethodLU, MethodCholesky}
}

func (m Method) valid() bool {
	switch m {
	case MethodGauss, MethodGaussJordan, MethodLU, MethodCholesky:
		return true
	}

	return false
}

// ParseMethod accepts a method name case-insensitively, ignoring surrounding spaces.
// Errors: KindInvalidInput wrapping ErrUnknownMethod.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.valid() {
		return "", solveErrorf("ParseMethod", KindInvalidInput, fmt.Errorf("%q: %w", s, ErrUnknownMethod))
	}

	return m, nil
}

// Factorization is the sealed set of factor payloads a Result may carry.
// Implementations: *LUFactors, *CholeskyFactors.
type Factorization interface {
	isFactorization()
}

// DoolittleStage is one presentation snapshot of the unpivoted A = LU recursion.
type DoolittleStage struct {
	Stage int
	L     [][]float64
	U     [][]float64
}

// LUFactors holds PA = LU and the forward-substituted intermediate Y = L⁻¹PB.
//
// P[i] is the original row placed at position i. U is in row echelon form
// (rank-revealing); L is unit lower triangular. Doolittle is filled only when
// steps are recorded and the unpivoted recursion meets no zero pivot.
type LUFactors struct {
	P         []int
	L         *matrix.Dense
	U         *matrix.Dense
	Y         *matrix.Dense
	Doolittle []DoolittleStage
}

// CholeskyFactors holds M = UᵀU for the system M·X = D actually factored.
//
// NormalEquations is true when M = AᵀA and D = AᵀB.
type CholeskyFactors struct {
	NormalEquations bool
	Transformation  string
	M               *matrix.Dense
	D               *matrix.Dense
	U               *matrix.Dense
	Ut              *matrix.Dense
	Y               *matrix.Dense
}

func (*LUFactors) isFactorization()       {}
func (*CholeskyFactors) isFactorization() {}

// Result is the value returned by every successful solve.
type Result struct {
	Method        Method
	Rank          int
	Outcome       Outcome
	Steps         []StepRecord  // nil unless WithSteps
	Factorization Factorization // nil for Gauss and Gauss-Jordan
}

// Status is shorthand for r.Outcome.Status().
func (r *Result) Status() Status { return r.Outcome.Status() }
