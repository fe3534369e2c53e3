// SPDX-License-Identifier: MIT

// Command linsolve solves linear systems A·X = B from the command line or
// over HTTP.
//
//	linsolve solve system.json
//	linsolve solve --method cholesky --steps < system.json
//	linsolve serve --config linsolve.yaml
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/linsolve/config"
)

// errSolveFailed makes the process exit non-zero after an error response
// has already been written.
var errSolveFailed = errors.New("solve failed")

// cli holds the state shared by the subcommands of one invocation.
type cli struct {
	verbose    bool
	configPath string

	cfg    *config.Config
	level  zap.AtomicLevel
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:   "linsolve",
		Short: "Solve linear systems by elimination",
		Long: `linsolve classifies a linear system A·X = B as having no solution,
a unique solution, or infinitely many solutions (a particular solution plus
a null-space basis), using Gaussian elimination, Gauss-Jordan, LU or Cholesky.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "YAML configuration file")

	root.AddCommand(c.solveCmd(), c.serveCmd())

	return root
}

// setup loads the configuration and builds the logger.
func (c *cli) setup(*cobra.Command, []string) error {
	c.cfg = config.Default()
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
	}

	lvl, err := c.cfg.Level()
	if err != nil {
		return err
	}
	if c.verbose {
		lvl = zapcore.DebugLevel
	}
	c.level = zap.NewAtomicLevelAt(lvl)
	logger, err := c.cfg.Logger(&c.level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger

	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errSolveFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
