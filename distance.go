package bahc

import "gonum.org/v1/gonum/mat"

// Condensed returns the strict upper triangle of the n×n symmetric matrix m
// in row-major order: (0,1), (0,2), ..., (0,n-1), (1,2), ... The result has
// length n*(n-1)/2, the layout scipy's linkage expects.
func Condensed(m mat.Symmetric) []float64 {
	n := m.SymmetricDim()
	if n < 2 {
		return []float64{}
	}
	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

// condensedIndex returns the position of the pair (i, j) in a condensed
// vector over n items. The pair is unordered; i must differ from j.
func condensedIndex(n, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return n*i - i*(i+1)/2 + j - i - 1
}

// CorrelationDistance maps a correlation-like matrix c to the dissimilarity
// 1 - c. The diagonal of the result is 1 - c[i][i] and is ignored by the
// clustering step.
func CorrelationDistance(c mat.Symmetric) *mat.SymDense {
	n := c.SymmetricDim()
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d.SetSym(i, j, 1-c.At(i, j))
		}
	}
	return d
}
