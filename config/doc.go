// SPDX-License-Identifier: MIT

// Package config loads the YAML configuration shared by the linsolve
// command and HTTP server.
//
// A file only needs the keys it changes; everything else keeps the value
// from Default. Validate rejects values the solver option constructors
// would panic on, so SolverOptions never panics on a validated Config.
//
//	solver:
//	  method: gauss-elimination
//	  zero_tolerance: 1e-15
//	server:
//	  addr: ":8080"
//	  max_connections: 256
//	logging:
//	  level: info
//	  format: json
package config
