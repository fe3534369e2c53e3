// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major), safe accessors & elementary row operations.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Expose the three elementary row operations (swap, scale, add-multiple) that
//     elimination-based solvers are built from.
//   - Enforce a numeric policy (optional rejection of NaN/Inf) from a single source of truth.
//
// AI-Hints:
//   - Prefer fast-paths on *Dense in hot algebra (see impl_linear_algebra.go): operate on the flat data slice directly.
//   - Use FromRows/ToRows at the boundary with JSON or [][]float64 callers.
//   - Use Induced(rows, cols) to materialize a submatrix (copy) for independent lifetime/shape.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); row ops: O(c); Induced: O(r'*c').

package matrix

import (
	"fmt"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt         = "At"           // method tag used in error wrappers
	ctxSet        = "Set"          // method tag used in error wrappers
	ctxApply      = "Apply"        // method tag used in error wrappers
	ctxInduce     = "Induced"      // ctor/tag for Dense.Induced
	ctxFromRows   = "FromRows"     // ctor tag for FromRows
	ctxSwapRows   = "SwapRows"     // row-op tag
	ctxScaleRow   = "ScaleRow"     // row-op tag
	ctxAddScaled  = "AddScaledRow" // row-op tag
	ctxRow        = "Row"          // accessor tag
	ctxNewDenseWO = "NewDenseWith" // ctor tag
)

// ---------- Formatting literals  ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Implementation:
//   - Stage 1: format "Dense.<method>(row,col): %w".
//
// Behavior highlights:
//   - Stable, human-friendly messages; preserves sentinel via %w.
//
// Complexity:
//   - Time O(1), Space O(1).
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - validateNaNInf enables optional NaN/Inf rejection in Set (policy default from options.go).
type Dense struct {
	r, c           int       // row and column counts (>=0; zero allowed only for internal zero-OK constructors)
	data           []float64 // contiguous row-major storage (len == r*c)
	validateNaNInf bool      // numeric guard: reject NaN/Inf in Set when true
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil) // *Dense implements our public Matrix interface
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate zero-filled buffer and initialize policy from defaults.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
//
// Notes:
//   - Internal zero-sized cases use newDenseZeroOK.
func NewDense(rows, cols int) (*Dense, error) {
	// Validate shape.
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{
		r:              rows,
		c:              cols,
		data:           make([]float64, rows*cols), // make() zero-fills deterministically
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// NewDenseWith creates an r×c zero matrix with an explicit numeric policy.
// Only WithValidateNaNInf / WithNoValidateNaNInf influence the result.
// Complexity: O(r*c).
func NewDenseWith(rows, cols int, opts ...Option) (*Dense, error) {
	o := gatherOptions(opts...)
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("%s(%d,%d): %w", ctxNewDenseWO, rows, cols, err)
	}
	m.validateNaNInf = o.validateNaNInf

	return m, nil
}

// newDenseZeroOK is an internal constructor that allows rows==0 or cols==0.
// Used for legal 0×k results (e.g. an empty null-space basis).
// Complexity: O(rows*cols).
func newDenseZeroOK(rows, cols int) (*Dense, error) {
	if rows < 0 || cols < 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{
		r:              rows,
		c:              cols,
		data:           make([]float64, rows*cols), // zero-length buffer is legal
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// FromRows builds a Dense from a slice of equally long rows (deep copy).
// Implementation:
//   - Stage 1: reject empty input (ErrInvalidDimensions) and ragged rows (ErrDimensionMismatch).
//   - Stage 2: enforce the numeric policy on every value (ErrNaNInf, with coordinates).
//   - Stage 3: copy rows into one contiguous buffer.
//
// Behavior highlights:
//   - The caller's slices are never aliased; later mutation of rows does not leak.
//
// Inputs:
//   - rows: r slices of length c (r, c > 0).
//   - opts: numeric policy (WithNoValidateNaNInf to accept non-finite values).
//
// Errors:
//   - ErrInvalidDimensions, ErrDimensionMismatch, ErrNaNInf.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - This is the canonical entry point for JSON-decoded [][]float64 payloads.
func FromRows(rows [][]float64, opts ...Option) (*Dense, error) {
	o := gatherOptions(opts...)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", ctxFromRows, ErrInvalidDimensions)
	}
	r, c := len(rows), len(rows[0])
	m, err := NewDense(r, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ctxFromRows, err)
	}
	m.validateNaNInf = o.validateNaNInf

	var i, j int
	for i = 0; i < r; i++ {
		if len(rows[i]) != c {
			return nil, fmt.Errorf("%s: row %d has %d values, want %d: %w", ctxFromRows, i, len(rows[i]), c, ErrDimensionMismatch)
		}
		if o.validateNaNInf {
			for j = 0; j < c; j++ {
				if isNonFinite(rows[i][j]) {
					return nil, denseErrorf(ctxFromRows, i, j, ErrNaNInf)
				}
			}
		}
		copy(m.data[i*c:(i+1)*c], rows[i])
	}

	return m, nil
}

// Rows returns the row count. No side effects.
// Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count. No side effects.
// Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
// Complexity: O(1).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
// Public methods (At/Set) wrap the sentinel with coordinates and method name.
// Complexity: O(1).
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Never panics on out-of-range; returns a wrapped sentinel.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err) // wrap with context
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
// Implementation:
//   - Stage 1: compute offset via indexOf (bounds check).
//   - Stage 2: enforce numeric policy (reject NaN/±Inf when enabled).
//   - Stage 3: write into flat buffer.
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for invalid numbers.
//
// Complexity:
//   - Time O(1), Space O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err) // wrap with context
	}
	// Numeric policy: optional finite-only enforcement.
	if m.validateNaNInf && isNonFinite(v) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v // direct flat write

	return nil
}

// Clone returns a deep copy (new buffer, same numeric policy).
// Complexity: O(r*c).
func (m *Dense) Clone() Matrix {
	return m.clone()
}

// clone is the typed twin of Clone for internal callers that need *Dense.
func (m *Dense) clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{
		r:              m.r,
		c:              m.c,
		data:           cp,
		validateNaNInf: m.validateNaNInf, // preserve guard policy
	}
}

// ToRows exports the matrix as freshly allocated row slices.
// The result never aliases the internal buffer.
// Complexity: O(r*c).
func (m *Dense) ToRows() [][]float64 {
	out := make([][]float64, m.r)
	for i := 0; i < m.r; i++ {
		row := make([]float64, m.c)
		copy(row, m.data[i*m.c:(i+1)*m.c])
		out[i] = row
	}

	return out
}

// Row returns a copy of row i.
// Errors: ErrOutOfRange.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, fmt.Errorf("Dense.%s(%d): %w", ctxRow, i, ErrOutOfRange)
	}
	out := make([]float64, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// Col returns a copy of column j.
// Errors: ErrOutOfRange.
func (m *Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, fmt.Errorf("Dense.Col(%d): %w", j, ErrOutOfRange)
	}
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return out, nil
}

// String HUMAN-READABLE dump of rows for diagnostics.
// Implementation:
//   - Stage 1: iterate rows/cols deterministically.
//   - Stage 2: write values into strings.Builder with standard delimiters.
//
// Complexity:
//   - Time O(r*c), Space O(r*c) for formatting.
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ { // iterate rows deterministically
		b.WriteString(_fmtRowOpen) // open row
		base = i * m.c
		for j = 0; j < m.c; j++ { // iterate cols
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep) // separate values with comma + space
			}
		}
		b.WriteString(_fmtRowClose) // close row
	}

	return b.String()
}

// SwapRows exchanges rows i and k in place.
// Implementation:
//   - Stage 1: bounds-check both indices.
//   - Stage 2: swap element pairs along the two flat row windows.
//
// Behavior highlights:
//   - i == k is a legal no-op.
//
// Errors:
//   - ErrOutOfRange.
//
// Complexity:
//   - Time O(c), Space O(1).
func (m *Dense) SwapRows(i, k int) error {
	if i < 0 || i >= m.r || k < 0 || k >= m.r {
		return fmt.Errorf("Dense.%s(%d,%d): %w", ctxSwapRows, i, k, ErrOutOfRange)
	}
	if i == k {
		return nil
	}
	ri, rk := i*m.c, k*m.c
	for j := 0; j < m.c; j++ {
		m.data[ri+j], m.data[rk+j] = m.data[rk+j], m.data[ri+j]
	}

	return nil
}

// ScaleRow multiplies row i by alpha in place.
// Errors: ErrOutOfRange; ErrNaNInf when alpha is non-finite and the policy is on.
// Complexity: O(c).
func (m *Dense) ScaleRow(i int, alpha float64) error {
	if i < 0 || i >= m.r {
		return fmt.Errorf("Dense.%s(%d): %w", ctxScaleRow, i, ErrOutOfRange)
	}
	if m.validateNaNInf && isNonFinite(alpha) {
		return fmt.Errorf("Dense.%s(%d): %w", ctxScaleRow, i, ErrNaNInf)
	}
	base := i * m.c
	for j := 0; j < m.c; j++ {
		m.data[base+j] *= alpha
	}

	return nil
}

// AddScaledRow performs row[dst] += alpha * row[src] in place.
// Implementation:
//   - Stage 1: bounds-check, reject dst == src (the operation would not be elementary).
//   - Stage 2: flat axpy over the two row windows.
//
// Errors:
//   - ErrOutOfRange, ErrBadShape (dst == src), ErrNaNInf (non-finite alpha under policy).
//
// Complexity:
//   - Time O(c), Space O(1).
//
// AI-Hints:
//   - Elimination "R_i = R_i - f·R_p" is AddScaledRow(i, p, -f).
func (m *Dense) AddScaledRow(dst, src int, alpha float64) error {
	if dst < 0 || dst >= m.r || src < 0 || src >= m.r {
		return fmt.Errorf("Dense.%s(%d,%d): %w", ctxAddScaled, dst, src, ErrOutOfRange)
	}
	if dst == src {
		return fmt.Errorf("Dense.%s(%d,%d): %w", ctxAddScaled, dst, src, ErrBadShape)
	}
	if m.validateNaNInf && isNonFinite(alpha) {
		return fmt.Errorf("Dense.%s(%d,%d): %w", ctxAddScaled, dst, src, ErrNaNInf)
	}
	if alpha == 0 {
		return nil
	}
	rd, rs := dst*m.c, src*m.c
	for j := 0; j < m.c; j++ {
		m.data[rd+j] += alpha * m.data[rs+j]
	}

	return nil
}

// Induced materializes a copy submatrix using explicit index sets.
// Implementation:
//   - Stage 1: handle zero-sized result (legal).
//   - Stage 2: nested loops with direct offset math; bounds-check each index.
//
// Behavior highlights:
//   - Policy is preserved from the base (validateNaNInf).
//   - Duplicates in index sets are allowed (repeated rows/cols in the result).
//
// Errors:
//   - ErrOutOfRange (index outside bounds).
//
// Complexity:
//   - Time O(rp*cp), Space O(rp*cp).
func (m *Dense) Induced(rowsIdx, colsIdx []int) (*Dense, error) {
	rp, cp := len(rowsIdx), len(colsIdx)
	res, err := newDenseZeroOK(rp, cp)
	if err != nil {
		return nil, err
	}
	res.validateNaNInf = m.validateNaNInf

	var i, j, ri, cj int
	for i = 0; i < rp; i++ {
		ri = rowsIdx[i]
		if ri < 0 || ri >= m.r {
			return nil, fmt.Errorf("Dense.%s: row index %d: %w", ctxInduce, ri, ErrOutOfRange)
		}
		for j = 0; j < cp; j++ {
			cj = colsIdx[j]
			if cj < 0 || cj >= m.c {
				return nil, fmt.Errorf("Dense.%s: col index %d: %w", ctxInduce, cj, ErrOutOfRange)
			}
			res.data[i*cp+j] = m.data[ri*m.c+cj]
		}
	}

	return res, nil
}

// Apply replaces each element with f(i,j,v) in-place.
// Implementation:
//   - Stage 1: nested loops rows then cols; compute new value via f.
//   - Stage 2: reject NaN/Inf if policy enabled; write back.
//
// Behavior highlights:
//   - Early error aborts; elements written before the error remain updated.
//
// Complexity:
//   - Time O(r*c), Space O(1).
func (m *Dense) Apply(f func(i, j int, v float64) float64) error {
	var i, j, base int
	var nv float64
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			nv = f(i, j, m.data[base+j])
			if m.validateNaNInf && isNonFinite(nv) {
				return denseErrorf(ctxApply, i, j, ErrNaNInf)
			}
			m.data[base+j] = nv
		}
	}

	return nil
}
