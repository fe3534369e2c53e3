package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/linsolve/matrix"
)

// ExampleFromRows builds the augmented matrix [A|b] and performs one
// elimination step R2 = R2 - 3·R1.
func ExampleFromRows() {
	a, _ := matrix.FromRows([][]float64{{1, 2}, {3, 4}})
	b, _ := matrix.FromRows([][]float64{{5}, {6}})

	aug, _ := matrix.HStack(a, b)
	_ = aug.AddScaledRow(1, 0, -3)

	fmt.Print(aug)
	// Output:
	// [1, 2, 5]
	// [0, -2, -9]
}

// ExampleEigen certifies positive definiteness through the smallest eigenvalue.
func ExampleEigen() {
	m, _ := matrix.FromRows([][]float64{{4, 1}, {1, 3}})
	vals, _, err := matrix.Eigen(m, 1e-12, 100)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	minVal := vals[0]
	for _, v := range vals[1:] {
		if v < minVal {
			minVal = v
		}
	}
	fmt.Println("positive definite:", minVal > 0)
	// Output: positive definite: true
}
