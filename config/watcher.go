// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the file must stay quiet before a reload.
const DefaultDebounce = 250 * time.Millisecond

// ErrWatcherRunning is returned by Start on a watcher that is already running.
var ErrWatcherRunning = errors.New("config: watcher already running")

// Watcher reloads a config file when it changes on disk and hands every
// valid version to its subscribers. Invalid versions are logged and
// skipped, so subscribers keep the last good configuration.
//
// The parent directory is watched rather than the file itself, which keeps
// working across editors that save by rename.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	subs    []func(*Config)
	current *Config
	running bool
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher returns a watcher for path seeded with initial, which is the
// value Current reports until the first successful reload.
func NewWatcher(path string, initial *Config, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	// Events carry the resolved directory name.
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}

	return &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		logger:   logger.Named("config"),
		current:  initial,
	}
}

// SetDebounce changes the quiet period. It must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d <= 0 {
		d = DefaultDebounce
	}
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Subscribe registers fn for every accepted reload. Callbacks run on the
// watcher goroutine and must not block.
func (w *Watcher) Subscribe(fn func(*Config)) {
	w.mu.Lock()
	w.subs = append(w.subs, fn)
	w.mu.Unlock()
}

// Current returns the last accepted configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.current
}

// Start begins watching in the background. It returns once the directory
// watch is installed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrWatcherRunning
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	if err = fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(ctx, fw, w.stopCh, w.doneCh, w.debounce)

	w.logger.Info("watching config file", zap.String("path", w.path))

	return nil
}

// Stop ends the watch and waits for the goroutine to exit. Cancelling the
// Start context ends the goroutine too, but Stop must still be called to
// release the fsnotify handle. Stop on a watcher that was never started is
// a no-op.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	done, fw := w.doneCh, w.watcher
	w.mu.Unlock()

	<-done

	return fw.Close()
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, stop, done chan struct{}, debounce time.Duration) {
	defer close(done)

	ticker := time.NewTicker(max(debounce/2, time.Millisecond))
	defer ticker.Stop()

	var pending time.Time // zero when nothing is queued
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				pending = time.Now()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", zap.Error(err))
		case now := <-ticker.C:
			if !pending.IsZero() && now.Sub(pending) >= debounce {
				pending = time.Time{}
				w.reload()
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}

	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("config reload rejected, keeping previous", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = cfg
	subs := slices.Clone(w.subs)
	w.mu.Unlock()

	w.logger.Info("config reloaded",
		zap.String("path", w.path),
		zap.String("method", cfg.Solver.Method),
		zap.String("level", cfg.Logging.Level))
	for _, fn := range subs {
		fn(cfg)
	}
}
