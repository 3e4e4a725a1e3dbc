package solver

import "math"

// pivotEpsilon is the magnitude below which a pivot is treated as zero.
// A skipped pivot leaves its variable without an update this iteration
// instead of blowing up the whole step.
const pivotEpsilon = 1e-12

// solveLinear solves A·x = b in place by Gaussian elimination with
// partial pivoting and back substitution. A and b are destroyed.
//
// Near-singular columns are skipped: the corresponding x entry stays zero
// and the remaining system is still reduced. On an over- or
// under-constrained sketch this means some constraint receives no
// correction that iteration rather than a garbage one.
func solveLinear(a [][]float64, b []float64) []float64 {
	n := len(b)

	for k := 0; k < n; k++ {
		// Partial pivoting: bring the largest remaining entry of column
		// k onto the diagonal.
		pivot := k
		for i := k + 1; i < n; i++ {
			if math.Abs(a[i][k]) > math.Abs(a[pivot][k]) {
				pivot = i
			}
		}
		if math.Abs(a[pivot][k]) < pivotEpsilon {
			continue
		}
		if pivot != k {
			a[k], a[pivot] = a[pivot], a[k]
			b[k], b[pivot] = b[pivot], b[k]
		}

		for i := k + 1; i < n; i++ {
			f := a[i][k] / a[k][k]
			if f == 0 {
				continue
			}
			for j := k; j < n; j++ {
				a[i][j] -= f * a[k][j]
			}
			b[i] -= f * b[k]
		}
	}

	x := make([]float64, n)
	for k := n - 1; k >= 0; k-- {
		if math.Abs(a[k][k]) < pivotEpsilon {
			continue
		}
		sum := b[k]
		for j := k + 1; j < n; j++ {
			sum -= a[k][j] * x[j]
		}
		x[k] = sum / a[k][k]
	}
	return x
}
