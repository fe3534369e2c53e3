// SPDX-License-Identifier: MIT

package linsolve

import "go.uber.org/zap"

// NewZapObserver returns a StepObserver that writes every step to logger at
// Info level, independent of the solver's own (Debug) step logging.
// A nil logger yields a no-op observer.
func NewZapObserver(logger *zap.Logger) StepObserver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return StepObserverFunc(func(s StepRecord) {
		logger.Info(s.Message,
			zap.Int("step", s.Index),
			zap.Stringer("kind", s.Kind),
			zap.Ints("rows", s.Rows),
			zap.Int("col", s.Col),
		)
	})
}
