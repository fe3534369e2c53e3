// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/linsolve/linsolve"
	"github.com/katalvlaran/linsolve/wire"
)

func (c *cli) solveCmd() *cobra.Command {
	var (
		method string
		steps  bool
	)
	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Solve one system read from a JSON file or stdin",
		Long: `Reads a request {"matrix_a": [[...]], "matrix_b": [[...]] | [...]} from the
file (or stdin when the file is omitted or "-") and writes the JSON response
to stdout. Exits non-zero when the response is an error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			if method != "" {
				if _, err := linsolve.ParseMethod(method); err != nil {
					return err
				}
			}

			return c.solve(in, cmd.OutOrStdout(), method, steps)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "",
		"gauss-elimination, gauss-jordan, lu-decomposition or cholesky (overrides the request)")
	cmd.Flags().BoolVar(&steps, "steps", false, "Include intermediate steps and factors")

	return cmd
}

func (c *cli) solve(in io.Reader, out io.Writer, method string, steps bool) error {
	var resp wire.Response
	req, err := wire.Decode(in)
	if err != nil {
		resp = wire.FromError(err)
	} else {
		if method != "" {
			req.Method = method
		}
		req.Steps = req.Steps || steps
		base := append(c.cfg.SolverOptions(), linsolve.WithLogger(c.logger))
		resp = wire.Run(req, base...)
	}

	if err := wire.Encode(out, resp); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if resp.IsError() {
		return errSolveFailed
	}

	return nil
}
