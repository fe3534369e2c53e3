// SPDX-License-Identifier: MIT
// Package matrix - small constructor facade.
//
// Purpose:
//   - Offer the handful of constructors that callers reach for most often
//     (zeros, identity, like-shaped copies) without touching Dense internals.

package matrix

// NewZeros allocates an r×c zero matrix; alias of NewDense for readability at call sites.
func NewZeros(rows, cols int) (*Dense, error) { return NewDense(rows, cols) }

// NewIdentity returns the n×n identity.
// Errors: ErrInvalidDimensions when n ≤ 0.
// Complexity: O(n^2).
func NewIdentity(n int) (*Dense, error) {
	id, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		id.data[i*n+i] = 1.0
	}

	return id, nil
}

// NewEmptyColumns allocates an r×0 matrix; the only public way to express
// "no columns", used for an empty basis.
// Errors: ErrInvalidDimensions when rows < 0.
func NewEmptyColumns(rows int) (*Dense, error) { return newDenseZeroOK(rows, 0) }
