// SPDX-License-Identifier: MIT

// Package linsolve is the module root of an elimination-based solver for
// linear systems A·X = B.
//
// Every system gets one of three answers:
//
//	no_solution        – rank(A) < rank([A|B])
//	unique_solution    – X
//	infinite_solutions – a particular solution plus a null-space basis
//
// Methods: Gaussian elimination, Gauss-Jordan, LU (PA = LU) and Cholesky
// (A = UᵀU, with a normal-equations fallback for non-symmetric A).
//
// ✨ Why linsolve?
//
//   - Degeneracy is an answer, not an error
//   - Step log with matrix snapshots for teaching and debugging
//   - Pure Go numerics, safe for concurrent use
//
// Layout:
//
//	matrix/       – dense container, row operations, validators, kernels
//	linsolve/     – the solver: options, pivoting, reduction, classification
//	wire/         – JSON request and response documents
//	config/       – YAML configuration and the hot-reload watcher
//	server/       – HTTP API (POST /matrix/{method})
//	cmd/linsolve/ – CLI: solve and serve
//
// Quick example:
//
//	| 1 1 |       | 2 |
//	| 2 2 | · X = | 4 |  → infinite_solutions, free column 1
//
//	go get github.com/katalvlaran/linsolve/linsolve
package linsolve
