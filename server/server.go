// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/linsolve/config"
	"github.com/katalvlaran/linsolve/linsolve"
)

// Server serves solve requests. Solver defaults can be swapped at runtime
// with Apply; everything else is fixed at construction.
type Server struct {
	cfg    config.ServerConfig
	logger *zap.Logger
	solver atomic.Pointer[[]linsolve.Option]
	mux    *http.ServeMux
}

// New builds a server from cfg. cfg must be valid. A nil logger is replaced
// by a no-op logger.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg.Server,
		logger: logger.Named("server"),
		mux:    http.NewServeMux(),
	}
	s.Apply(cfg)
	s.routes()

	return s
}

// Apply installs the solver section of cfg as the defaults for later
// requests. In-flight requests keep the options they started with.
func (s *Server) Apply(cfg *config.Config) {
	opts := append(cfg.SolverOptions(), linsolve.WithLogger(s.logger.Named("solver")))
	s.solver.Store(&opts)
}

func (s *Server) solverOptions() []linsolve.Option {
	return *s.solver.Load()
}

// Handler returns the routed handler with request IDs and access logs.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withAccessLog(s.mux))
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the shutdown timeout. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(s.logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening",
			zap.String("addr", ln.Addr().String()),
			zap.Int("max_connections", s.cfg.MaxConnections))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}

		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := shutdownContext(s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}

		return nil
	})

	return g.Wait()
}

func shutdownContext(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}

	return context.WithTimeout(context.Background(), d)
}
