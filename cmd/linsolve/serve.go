// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/linsolve/config"
	"github.com/katalvlaran/linsolve/server"
)

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Long: `Starts the HTTP API (POST /matrix/{method}). With --config the file is
watched: log level and solver defaults follow edits without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return c.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")

	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	srv := server.New(c.cfg, c.logger)

	if c.configPath != "" {
		w := config.NewWatcher(c.configPath, c.cfg, c.logger)
		w.Subscribe(func(cfg *config.Config) {
			srv.Apply(cfg)
			if c.verbose {
				return
			}
			if lvl, err := cfg.Level(); err == nil {
				c.level.SetLevel(lvl)
			}
		})
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := w.Stop(); err != nil {
				c.logger.Warn("stop config watcher", zap.Error(err))
			}
		}()
	}

	return srv.ListenAndServe(ctx)
}
