// SPDX-License-Identifier: MIT

// Package matrix is the numeric container layer of linsolve.
//
// It provides:
//
//   - Matrix, a small bounds-checked interface, and Dense, its row-major
//     float64 implementation with an optional finite-only numeric policy.
//   - Elementary row operations (SwapRows, ScaleRow, AddScaledRow) that
//     elimination-based solvers are composed of.
//   - Kernels: Mul, Sub, Transpose, HStack, norms, AllClose, Chop.
//   - Factorizations used for certification and presentation: the Jacobi
//     symmetric eigen-solver (Eigen) and the unpivoted Doolittle LU.
//
// All user-triggered failures are reported as sentinel errors (see errors.go)
// wrapped with an operation tag; match them with errors.Is. Panics are
// reserved for nonsensical option values.
package matrix
