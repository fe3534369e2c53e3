// SPDX-License-Identifier: MIT
// Package linsolve: step log.
//
// Every row operation may be described by a StepRecord. Records are for
// presentation only: the numeric core never reads them back, and disabling
// them (the default) changes nothing but allocation counts.

package linsolve

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/linsolve/matrix"
)

// StepKind classifies a StepRecord.
type StepKind int

const (
	StepInitial    StepKind = iota // snapshot of [A|B] before any operation
	StepSwap                       // rows exchanged
	StepPivot                      // pivot chosen
	StepScale                      // row normalized
	StepEliminate                  // row combination R_i = R_i - f·R_p
	StepColumnDone                 // column pass finished and snapped
	StepFactor                     // factorization stage (LU, Cholesky)
	StepSubstitute                 // forward or backward substitution finished
	StepClassify                   // final classification
)

var stepKindNames = [...]string{
	StepInitial:    "initial",
	StepSwap:       "swap",
	StepPivot:      "pivot",
	StepScale:      "scale",
	StepEliminate:  "eliminate",
	StepColumnDone: "column_done",
	StepFactor:     "factor",
	StepSubstitute: "substitute",
	StepClassify:   "classify",
}

// String returns the snake_case name of the kind.
func (k StepKind) String() string {
	if k < 0 || int(k) >= len(stepKindNames) {
		return "unknown"
	}

	return stepKindNames[k]
}

// StepRecord describes one operation. Row and column numbers in Message are
// 1-based for humans; Rows and Col are 0-based.
type StepRecord struct {
	Index    int
	Kind     StepKind
	Message  string
	Rows     []int       // rows touched (target first)
	Col      int         // pivot or eliminated column, -1 when not applicable
	Factor   float64     // multiplier of Scale/Eliminate
	Snapshot [][]float64 // matrix state after the operation; nil unless WithSteps
}

// StepObserver receives steps as they are produced. Observers run
// synchronously on the solving goroutine and must not retain Snapshot
// beyond the call unless they copy it.
type StepObserver interface {
	OnStep(StepRecord)
}

// StepObserverFunc adapts a function to StepObserver.
type StepObserverFunc func(StepRecord)

// OnStep calls f(s).
func (f StepObserverFunc) OnStep(s StepRecord) { f(s) }

// stepLog fans steps out to Result.Steps, observers and the debug logger.
// When none of them is active, emit returns before formatting anything.
type stepLog struct {
	record    bool
	observers []StepObserver
	logger    *zap.Logger
	debug     bool
	steps     []StepRecord
	next      int
}

func newStepLog(o Options) *stepLog {
	return &stepLog{
		record:    o.RecordSteps,
		observers: o.Observers,
		logger:    o.Logger,
		debug:     o.Logger.Core().Enabled(zapcore.DebugLevel),
	}
}

// active reports whether emitting a step has any effect.
func (l *stepLog) active() bool {
	return l.record || l.debug || len(l.observers) > 0
}

// emit publishes one step. msg is built lazily from format/args; snap is
// called only when snapshots are kept.
func (l *stepLog) emit(kind StepKind, rows []int, col int, factor float64, snap func() [][]float64, format string, args ...any) {
	if !l.active() {
		return
	}
	rec := StepRecord{
		Index:   l.next,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Rows:    rows,
		Col:     col,
		Factor:  factor,
	}
	l.next++
	if l.record && snap != nil {
		rec.Snapshot = snap()
	}
	if l.debug {
		l.logger.Debug(rec.Message,
			zap.Int("step", rec.Index),
			zap.Stringer("kind", rec.Kind),
		)
	}
	for _, obs := range l.observers {
		obs.OnStep(rec)
	}
	if l.record {
		l.steps = append(l.steps, rec)
	}
}

// records returns the kept steps (nil unless WithSteps).
func (l *stepLog) records() []StepRecord {
	return l.steps
}

// snapshotOf returns a lazy snapshot closure over m.
func snapshotOf(m *matrix.Dense) func() [][]float64 {
	return func() [][]float64 { return m.ToRows() }
}

// snapshotRows returns a lazy deep-copy closure over a [][]float64 work array.
func snapshotRows(rows [][]float64) func() [][]float64 {
	return func() [][]float64 {
		out := make([][]float64, len(rows))
		for i := range rows {
			out[i] = append([]float64(nil), rows[i]...)
		}

		return out
	}
}
