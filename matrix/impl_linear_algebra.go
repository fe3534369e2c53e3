// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on any Matrix implementation:
// subtraction, multiplication, transpose, matrix-vector product, horizontal
// stacking, norms, the symmetric Jacobi eigen-solver and the unpivoted
// Doolittle LU. All functions perform strict fail-fast validation and return
// clear errors on dimension mismatches.
//
// Notes:
//   - Every kernel has a *Dense fast-path over the flat buffer and an At/Set
//     fallback for foreign Matrix implementations; both share loop orders.
//   - Errors are wrapped via matrixErrorf with the op* tags below.

package matrix

import (
	"fmt"
	"math"
)

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// ZeroSum is the initial sum value for substitution loops and dot products.
const ZeroSum = 0.0

// ZeroPivot is the sentinel for detecting a zero pivot in the Doolittle LU.
const ZeroPivot = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opSub       = "Sub"
	opMul       = "Mul"
	opTranspose = "Transpose"
	opEigen     = "Eigen"
	opLU        = "LU"
	opHStack    = "HStack"
	opNormInf   = "NormInf"
	opMaxAbs    = "ColumnMaxAbs"
	opToDense   = "ToDense"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
// Complexity: O(1).
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ToDense returns m as a fresh, independent *Dense (deep copy for every input type).
// Implementation:
//   - Stage 1: NotNil.
//   - Stage 2: clone the flat buffer for *Dense; copy via At for anything else.
//
// Behavior highlights:
//   - The caller may mutate the result freely; m is never aliased.
//
// Errors:
//   - ErrNilMatrix, ErrInvalidDimensions (0×k foreign input), propagated At errors.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - Solvers call this once at entry so the rest of the pipeline can rely on fast-paths.
func ToDense(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opToDense, err)
	}
	if d, ok := m.(*Dense); ok {
		return d.clone(), nil
	}
	res, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, matrixErrorf(opToDense, err)
	}
	var (
		i, j int
		v    float64
	)
	for i = 0; i < res.r; i++ {
		for j = 0; j < res.c; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opToDense, err)
			}
			res.data[i*res.c+j] = v // verbatim; finiteness is ValidateFinite's concern
		}
	}

	return res, nil
}

// Sub returns a - b elementwise for identically shaped inputs.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*c).
func Sub(a, b Matrix) (Matrix, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opSub, err)
	}
	res, err := NewDense(a.Rows(), a.Cols())
	if err != nil {
		return nil, matrixErrorf(opSub, err)
	}
	// Fast-path: both operands expose their flat buffers.
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			for idx := range res.data {
				res.data[idx] = da.data[idx] - db.data[idx]
			}

			return res, nil
		}
	}

	var (
		i, j   int
		av, bv float64
	)
	for i = 0; i < res.r; i++ {
		for j = 0; j < res.c; j++ {
			if av, err = a.At(i, j); err != nil {
				return nil, matrixErrorf(opSub, err)
			}
			if bv, err = b.At(i, j); err != nil {
				return nil, matrixErrorf(opSub, err)
			}
			res.data[i*res.c+j] = av - bv
		}
	}

	return res, nil
}

// Mul computes the matrix product a×b into a freshly allocated Dense.
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b); allocate result (a.Rows × b.Cols).
//   - Stage 2: *Dense fast-path in i→k→j order (row-streaming), skipping zero A[i,k];
//     generic fallback in i→j→k order through At.
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (inner mismatch).
//
// Determinism:
//   - Fixed loop orders; for identical inputs the result is bit-identical.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (Matrix, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, j, k int
		av, bv  float64
	)
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			var rowA, rowB, rowR int
			for i = 0; i < aRows; i++ {
				rowA, rowR = i*aCols, i*bCols
				for k = 0; k < aCols; k++ {
					av = da.data[rowA+k]
					if av == 0 {
						continue // skip zero for performance
					}
					rowB = k * bCols
					for j = 0; j < bCols; j++ {
						res.data[rowR+j] += av * db.data[rowB+j]
					}
				}
			}

			return res, nil
		}
	}

	// Fallback: generic interface triple-loop (i-j-k).
	var acc float64
	for i = 0; i < aRows; i++ {
		for j = 0; j < bCols; j++ {
			acc = ZeroSum
			for k = 0; k < aCols; k++ {
				if av, err = a.At(i, k); err != nil {
					return nil, matrixErrorf(opMul, err)
				}
				if av == 0 {
					continue
				}
				if bv, err = b.At(k, j); err != nil {
					return nil, matrixErrorf(opMul, err)
				}
				acc += av * bv
			}
			res.data[i*bCols+j] = acc
		}
	}

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
// The original matrix is never mutated.
// Errors: ErrNilMatrix.
// Complexity: O(r*c).
func Transpose(m Matrix) (Matrix, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(cols, rows)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	var i, j int
	if dm, ok := m.(*Dense); ok {
		// data[i*cols + j] → res.data[j*rows + i]
		for i = 0; i < rows; i++ {
			for j = 0; j < cols; j++ {
				res.data[j*rows+i] = dm.data[i*cols+j]
			}
		}

		return res, nil
	}

	var v float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opTranspose, err)
			}
			res.data[j*rows+i] = v
		}
	}

	return res, nil
}

// HStack concatenates a and b side by side: [a | b].
// Implementation:
//   - Stage 1: NotNil both; require equal row counts.
//   - Stage 2: copy each row of a then each row of b into the result window.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(r*(ca+cb)), Space O(r*(ca+cb)).
//
// AI-Hints:
//   - Building the augmented system [A|B] of a linear solve is HStack(A, B).
func HStack(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opHStack, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opHStack, err)
	}
	if err := ValidateSameRows(a, b); err != nil {
		return nil, matrixErrorf(opHStack, err)
	}
	da, err := ToDense(a)
	if err != nil {
		return nil, matrixErrorf(opHStack, err)
	}
	db, err := ToDense(b)
	if err != nil {
		return nil, matrixErrorf(opHStack, err)
	}
	r, ca, cb := da.r, da.c, db.c
	res, err := NewDense(r, ca+cb)
	if err != nil {
		return nil, matrixErrorf(opHStack, err)
	}
	res.validateNaNInf = da.validateNaNInf && db.validateNaNInf
	w := ca + cb
	for i := 0; i < r; i++ {
		copy(res.data[i*w:i*w+ca], da.data[i*ca:(i+1)*ca])
		copy(res.data[i*w+ca:(i+1)*w], db.data[i*cb:(i+1)*cb])
	}

	return res, nil
}

// NormInf returns the induced infinity norm max_i Σ_j |m[i,j]| (maximum absolute row sum).
// Errors: ErrNilMatrix.
// Complexity: O(r*c).
func NormInf(m Matrix) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opNormInf, err)
	}
	d, err := asDenseView(m)
	if err != nil {
		return 0, matrixErrorf(opNormInf, err)
	}
	best := NormZero
	var sum float64
	for i := 0; i < d.r; i++ {
		sum = NormZero
		for _, v := range d.data[i*d.c : (i+1)*d.c] {
			sum += math.Abs(v)
		}
		if sum > best {
			best = sum
		}
	}

	return best, nil
}

// MaxAbs returns max |m[i,j]| over all entries (0 for an empty matrix).
// Errors: ErrNilMatrix.
// Complexity: O(r*c).
func MaxAbs(m Matrix) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opMaxAbs, err)
	}
	d, err := asDenseView(m)
	if err != nil {
		return 0, matrixErrorf(opMaxAbs, err)
	}
	best := NormZero
	for _, v := range d.data {
		if a := math.Abs(v); a > best {
			best = a
		}
	}

	return best, nil
}

// ColumnMaxAbs returns, for every column j, max_i |m[i,j]|.
// Solvers use it as the per-column magnitude scale of a zero threshold.
// Errors: ErrNilMatrix.
// Complexity: O(r*c), Space O(c).
func ColumnMaxAbs(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMaxAbs, err)
	}
	d, err := asDenseView(m)
	if err != nil {
		return nil, matrixErrorf(opMaxAbs, err)
	}
	out := make([]float64, d.c)
	var i, j int
	var a float64
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			if a = math.Abs(d.data[i*d.c+j]); a > out[j] {
				out[j] = a
			}
		}
	}

	return out, nil
}

// asDenseView returns m itself when it is *Dense (read-only use), otherwise a copy.
func asDenseView(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d, nil
	}

	return ToDense(m)
}

// Eigen computes eigenvalues and eigenvectors of a symmetric matrix via classical Jacobi sweeps.
// Implementation:
//   - Stage 1: Validate symmetric square input within tol; copy into a private Dense work buffer.
//   - Stage 2: Repeatedly pick (p,q) with the largest |A[p,q]| in i→j order and apply a rotation
//     that annihilates it, accumulating the rotation into Q.
//   - Stage 3: Report ErrMatrixEigenFailed if the off-diagonal mass is still ≥ tol after maxIter.
//
// Inputs:
//   - m: symmetric Matrix (within tol); n := m.Rows().
//   - tol: convergence threshold (typ. 1e-9..1e-12 for float64), also the symmetry tolerance.
//   - maxIter: safety cap on rotations.
//
// Returns:
//   - []float64: eigenvalues (diagonal of the rotated matrix), unsorted.
//   - Matrix: Q whose columns are eigenvectors.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrAsymmetry, ErrMatrixEigenFailed.
//
// Determinism:
//   - Fixed i→j pivot search and fixed update order produce stable results.
//
// Complexity:
//   - Time O(maxIter * n) per rotation plus O(n^2) per pivot search, Space O(n^2).
//
// AI-Hints:
//   - Positive-definiteness certificates only need min(eigenvalues); Q can be ignored.
func Eigen(m Matrix, tol float64, maxIter int) ([]float64, Matrix, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	a, err := ToDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := a.r
	q, err := NewIdentity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}

	var (
		iter, i, p, r      int
		maxOff             float64
		app, aqq, apq      float64
		aip, aiq, qip, qiq float64
		theta, t, c, s     float64
	)
	for iter = 0; iter < maxIter; iter++ {
		// J.1: pivot search over the strict upper triangle.
		maxOff, p, r = offDiagonalMax(a)
		if maxOff < tol {
			break
		}

		// J.2: rotation parameters from A[p,p], A[r,r], A[p,r].
		app, aqq, apq = a.data[p*n+p], a.data[r*n+r], a.data[p*n+r]
		if math.Abs(apq) <= tol {
			continue
		}
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c

		// J.3: rotate rows/cols p and r of A (symmetric update).
		for i = 0; i < n; i++ {
			if i == p || i == r {
				continue
			}
			aip, aiq = a.data[i*n+p], a.data[i*n+r]
			a.data[i*n+p] = c*aip - s*aiq
			a.data[p*n+i] = a.data[i*n+p]
			a.data[i*n+r] = s*aip + c*aiq
			a.data[r*n+i] = a.data[i*n+r]
		}
		a.data[p*n+p] = c*c*app - 2*c*s*apq + s*s*aqq
		a.data[r*n+r] = s*s*app + 2*c*s*apq + c*c*aqq
		a.data[p*n+r], a.data[r*n+p] = 0, 0

		// J.4: accumulate the rotation into Q.
		for i = 0; i < n; i++ {
			qip, qiq = q.data[i*n+p], q.data[i*n+r]
			q.data[i*n+p] = c*qip - s*qiq
			q.data[i*n+r] = s*qip + c*qiq
		}
	}

	if maxOff, _, _ = offDiagonalMax(a); maxOff >= tol {
		return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
	}
	eigs := make([]float64, n)
	for i = 0; i < n; i++ {
		eigs[i] = a.data[i*n+i]
	}

	return eigs, q, nil
}

// offDiagonalMax scans the strict upper triangle of a square Dense and returns
// the largest magnitude with its first (row-major) position.
func offDiagonalMax(a *Dense) (float64, int, int) {
	n := a.r
	best, bp, bq := NormZero, 0, 0
	var off float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if off = math.Abs(a.data[i*n+j]); off > best {
				best, bp, bq = off, i, j
			}
		}
	}

	return best, bp, bq
}

// DoolittleSteps computes A = L*U with unit diagonal on L and no pivoting,
// calling onStage (if non-nil) after row i of U and column i of L are built.
// The callback sees live buffers and must copy what it keeps.
// Not rank-revealing; it exists to present A = LU stage by stage.
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular on a zero U[i,i].
// Complexity: Time O(n^3), Space O(n^2).
func DoolittleSteps(m Matrix, onStage func(stage int, l, u *Dense)) (Matrix, Matrix, error) {
	if err := ValidateSquareNonNil(m); err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	a, err := asDenseView(m)
	if err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	n := a.r
	l, err := NewIdentity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	u, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}

	var (
		i, j, k int
		sum     float64
	)
	for i = 0; i < n; i++ {
		// Row i of U.
		for j = i; j < n; j++ {
			sum = ZeroSum
			for k = 0; k < i; k++ {
				sum += l.data[i*n+k] * u.data[k*n+j]
			}
			u.data[i*n+j] = a.data[i*n+j] - sum
		}
		if u.data[i*n+i] == ZeroPivot {
			return nil, nil, matrixErrorf(opLU, fmt.Errorf("pivot %d: %w", i, ErrSingular))
		}
		// Column i of L.
		for j = i + 1; j < n; j++ {
			sum = ZeroSum
			for k = 0; k < i; k++ {
				sum += l.data[j*n+k] * u.data[k*n+i]
			}
			l.data[j*n+i] = (a.data[j*n+i] - sum) / u.data[i*n+i]
		}
		if onStage != nil {
			onStage(i, l, u)
		}
	}

	return l, u, nil
}
