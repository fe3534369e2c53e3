// Package matrix_test provides benchmarks for the kernels the solvers lean on,
// using deterministic random fill for Dense matrices.
package matrix_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/linsolve/matrix"
)

// benchSizes are the matrix sizes to benchmark.
var benchSizes = []int{32, 128}

// sinks to defeat dead-code elimination
var (
	sinkM matrix.Matrix
	sinkV []float64
)

func BenchmarkMul(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			A := MustDense(b, n, n)
			B := MustDense(b, n, n)
			RandomFill(b, A, 1337)
			RandomFill(b, B, 4242)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m, err := matrix.Mul(A, B)
				if err != nil {
					b.Fatal(err)
				}
				sinkM = m
			}
		})
	}
}

func BenchmarkAddScaledRow(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			A := MustDense(b, n, n)
			RandomFill(b, A, 99)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := A.AddScaledRow(i%n, (i+1)%n, 1e-9); err != nil {
					b.Fatal(err)
				}
			}
			sinkM = A
		})
	}
}

func BenchmarkEigen(b *testing.B) {
	b.ReportAllocs()
	n := 16
	A := MustDense(b, n, n)
	RandomFill(b, A, 5)
	At, err := matrix.Transpose(A)
	if err != nil {
		b.Fatal(err)
	}
	S, err := matrix.Mul(At, A) // symmetric PSD
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vals, _, err := matrix.Eigen(S, 1e-10, 10000)
		if err != nil {
			b.Fatal(err)
		}
		sinkV = vals
	}
}
