// SPDX-License-Identifier: MIT

// Package server exposes the solver over HTTP.
//
// Routes:
//
//	POST /matrix/gauss-elimination
//	POST /matrix/gauss-jordan
//	POST /matrix/lu-decomposition
//	POST /matrix/cholesky
//	GET  /healthz
//
// The body is a wire.Request; the method in the path overrides any method
// field in the body. Responses are wire.Response documents. Status codes:
// 200 for every classification (including no_solution), 400 for malformed or
// incomplete bodies, 413 for oversized bodies, 422 for inputs the solver
// rejects, 500 for internal defects and 503 when a solve exceeds the
// request timeout.
package server
