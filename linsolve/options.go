// SPDX-License-Identifier: MIT
// Package linsolve: functional options.
//
// Every numeric threshold the solvers use lives here, is passed explicitly
// into each call and has a documented default. Constructors panic only on
// nonsensical values (programmer error), never on data.

package linsolve

import (
	"math"

	"go.uber.org/zap"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultMethod is the elimination strategy used by Solve when none is given.
	DefaultMethod = MethodGauss

	// DefaultZeroTolerance: entries with |v| ≤ tol·max(1, column scale) are algebraically zero.
	DefaultZeroTolerance = 1e-15

	// DefaultSymmetryTolerance: |A[i,j]-A[j,i]| bound under which Cholesky treats A as symmetric.
	DefaultSymmetryTolerance = 1e-8

	// DefaultPositiveDefiniteThreshold: eigenvalues and squared Cholesky pivots must exceed
	// threshold·max(1, max|M|) for M to be certified positive definite.
	DefaultPositiveDefiniteThreshold = 1e-12

	// DefaultResidualTolerance: relative ‖AX−B‖∞ bound accepted on the normal-equations path.
	DefaultResidualTolerance = 1e-9

	// DefaultEigenMaxIterations caps Jacobi rotations while certifying positive definiteness.
	DefaultEigenMaxIterations = 10000
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicZeroTolerance     = "linsolve: WithZeroTolerance: tol must be finite, non-negative"
	panicSymmetryTolerance = "linsolve: WithSymmetryTolerance: tol must be finite, non-negative"
	panicPDThreshold       = "linsolve: WithPositiveDefiniteThreshold: threshold must be finite, positive"
	panicResidualTolerance = "linsolve: WithResidualTolerance: tol must be finite, positive"
	panicEigenMaxIter      = "linsolve: WithEigenMaxIterations: n must be > 0"
	panicNilObserver       = "linsolve: WithObserver: observer must not be nil"
	panicUnknownMethod     = "linsolve: WithMethod: unknown method"
)

// Options configures a solve call.
//
// Method                    – elimination strategy (Solve only; SolveX functions fix it).
// ZeroTolerance             – algebraic-zero threshold for pivots, snapping and consistency.
// SymmetryTolerance         – symmetry test used by the Cholesky path.
// PositiveDefiniteThreshold – relative bound for eigenvalues / squared pivots.
// ResidualTolerance         – acceptance bound for normal-equations candidates.
// EigenMaxIterations        – Jacobi rotation cap.
// NormalEquations           – Cholesky falls back to AᵀA x = Aᵀb for non-symmetric A.
// RecordSteps               – keep the step log (with matrix snapshots) in Result.Steps.
// Logger                    – structured logger; zap.NewNop() unless set.
// Observers                 – receive every step as it happens.
type Options struct {
	Method                    Method
	ZeroTolerance             float64
	SymmetryTolerance         float64
	PositiveDefiniteThreshold float64
	ResidualTolerance         float64
	EigenMaxIterations        int
	NormalEquations           bool
	RecordSteps               bool
	Logger                    *zap.Logger
	Observers                 []StepObserver
}

// Option represents a functional option for configuring a solve call.
type Option func(*Options)

// DefaultOptions returns an Options struct initialized with the documented defaults.
//
// Defaults:
//   - Method:                    MethodGauss.
//   - ZeroTolerance:             1e-15.
//   - SymmetryTolerance:         1e-8.
//   - PositiveDefiniteThreshold: 1e-12.
//   - ResidualTolerance:         1e-9.
//   - EigenMaxIterations:        10000.
//   - NormalEquations:           true.
//   - RecordSteps:               false.
//   - Logger:                    zap.NewNop().
func DefaultOptions() Options {
	return Options{
		Method:                    DefaultMethod,
		ZeroTolerance:             DefaultZeroTolerance,
		SymmetryTolerance:         DefaultSymmetryTolerance,
		PositiveDefiniteThreshold: DefaultPositiveDefiniteThreshold,
		ResidualTolerance:         DefaultResidualTolerance,
		EigenMaxIterations:        DefaultEigenMaxIterations,
		NormalEquations:           true,
		Logger:                    zap.NewNop(),
	}
}

// WithMethod selects the strategy used by Solve. Panics on an unknown method.
func WithMethod(m Method) Option {
	if !m.valid() {
		panic(panicUnknownMethod)
	}

	return func(o *Options) { o.Method = m }
}

// WithZeroTolerance sets the algebraic-zero threshold. tol = 0 means only exact zeros vanish.
func WithZeroTolerance(tol float64) Option {
	if !finiteNonNegative(tol) {
		panic(panicZeroTolerance)
	}

	return func(o *Options) { o.ZeroTolerance = tol }
}

// WithSymmetryTolerance sets the symmetry test bound of the Cholesky path.
func WithSymmetryTolerance(tol float64) Option {
	if !finiteNonNegative(tol) {
		panic(panicSymmetryTolerance)
	}

	return func(o *Options) { o.SymmetryTolerance = tol }
}

// WithPositiveDefiniteThreshold sets the relative positive-definiteness bound.
func WithPositiveDefiniteThreshold(threshold float64) Option {
	if !finiteNonNegative(threshold) || threshold == 0 {
		panic(panicPDThreshold)
	}

	return func(o *Options) { o.PositiveDefiniteThreshold = threshold }
}

// WithResidualTolerance sets the acceptance bound for normal-equations solutions.
func WithResidualTolerance(tol float64) Option {
	if !finiteNonNegative(tol) || tol == 0 {
		panic(panicResidualTolerance)
	}

	return func(o *Options) { o.ResidualTolerance = tol }
}

// WithEigenMaxIterations caps the Jacobi rotations of the positive-definiteness certificate.
func WithEigenMaxIterations(n int) Option {
	if n <= 0 {
		panic(panicEigenMaxIter)
	}

	return func(o *Options) { o.EigenMaxIterations = n }
}

// WithNormalEquations toggles the Cholesky fallback to AᵀA x = Aᵀb (default on).
// With the fallback off, non-square A fails with KindNotSquare and asymmetric A
// with KindNotSymmetric.
func WithNormalEquations(enabled bool) Option {
	return func(o *Options) { o.NormalEquations = enabled }
}

// WithSteps keeps the step log, including matrix snapshots, in Result.Steps.
func WithSteps() Option {
	return func(o *Options) { o.RecordSteps = true }
}

// WithLogger routes solver logs to l. A nil logger restores the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.Logger = l
	}
}

// WithObserver registers a StepObserver; may be given several times.
func WithObserver(obs StepObserver) Option {
	if obs == nil {
		panic(panicNilObserver)
	}

	return func(o *Options) { o.Observers = append(o.Observers, obs) }
}

// gatherOptions applies setters in order (last-writer-wins) on top of DefaultOptions.
func gatherOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, set := range opts {
		if set != nil {
			set(&o)
		}
	}
	// Observers slice must not be shared with a caller-held Options value.
	o.Observers = append([]StepObserver(nil), o.Observers...)

	return o
}

func finiteNonNegative(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}
