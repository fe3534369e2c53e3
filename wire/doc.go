// SPDX-License-Identifier: MIT

// Package wire is the JSON contract between linsolve and its callers.
//
// A Request carries matrix_a (m×n) and matrix_b (m×k, or a flat length-m
// array meaning k = 1). A Response is one of four shapes selected by its
// status field: "no_solution", "unique_solution", "infinite_solutions" or
// "error". The step log and factor payloads are optional extras for
// presentation layers and never change the numeric fields.
package wire
