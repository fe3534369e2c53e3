// SPDX-License-Identifier: MIT

package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/katalvlaran/linsolve/linsolve"
)

// Sentinel errors for request decoding.
var (
	ErrMalformedRequest = errors.New("wire: malformed request")
	ErrMissingMatrix    = errors.New("wire: matrix_a and matrix_b are required")
)

// maxRequestBytes bounds a decoded body.
const maxRequestBytes = 8 << 20

// Request is the solve call as it arrives over the wire.
type Request struct {
	MatrixA       [][]float64 `json:"matrix_a"`
	MatrixB       RHS         `json:"matrix_b"`
	Method        string      `json:"method,omitempty"`
	ZeroTolerance *float64    `json:"zero_tolerance,omitempty"`
	Steps         bool        `json:"steps,omitempty"`
}

// RHS is the right-hand side block. It decodes from either a 2-D array or a
// flat array, the latter becoming a single column.
type RHS [][]float64

// UnmarshalJSON implements json.Unmarshaler.
func (r *RHS) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err == nil {
		*r = rows
		return nil
	}
	var flat []float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("matrix_b: want a 2-D or flat array of numbers: %w", err)
	}
	col := make([][]float64, len(flat))
	for i, v := range flat {
		col[i] = []float64{v}
	}
	*r = col

	return nil
}

// Decode reads one Request from r (at most 8 MiB).
// Errors: ErrMalformedRequest (bad JSON, wrong types, trailing data),
// ErrMissingMatrix (matrix_a or matrix_b absent or null).
func Decode(r io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(io.LimitReader(r, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	if dec.More() {
		return Request{}, fmt.Errorf("%w: trailing data after request object", ErrMalformedRequest)
	}
	if req.MatrixA == nil || req.MatrixB == nil {
		return Request{}, ErrMissingMatrix
	}

	return req, nil
}

// Options translates per-request settings into solver options, appended after
// base so that request values win. An unknown method yields a KindInvalidInput error.
func (r Request) Options(base ...linsolve.Option) ([]linsolve.Option, error) {
	opts := append([]linsolve.Option(nil), base...)
	if r.Method != "" {
		m, err := linsolve.ParseMethod(r.Method)
		if err != nil {
			return nil, err
		}
		opts = append(opts, linsolve.WithMethod(m))
	}
	if r.ZeroTolerance != nil {
		tol := *r.ZeroTolerance
		if tol < 0 {
			return nil, &linsolve.Error{
				Kind: linsolve.KindInvalidInput,
				Op:   "wire.Options",
				Err:  fmt.Errorf("%w: zero_tolerance %g < 0", linsolve.ErrInvalidInput, tol),
			}
		}
		opts = append(opts, linsolve.WithZeroTolerance(tol))
	}
	if r.Steps {
		opts = append(opts, linsolve.WithSteps())
	}

	return opts, nil
}

// Run solves the request and renders the outcome; it never fails; errors
// become "error" responses.
func Run(req Request, base ...linsolve.Option) Response {
	opts, err := req.Options(base...)
	if err != nil {
		return FromError(err)
	}
	res, err := linsolve.SolveRows(req.MatrixA, req.MatrixB, opts...)
	if err != nil {
		return FromError(err)
	}

	return FromResult(res)
}
