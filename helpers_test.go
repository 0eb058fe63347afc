package bahc

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const floatTol = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// gaussianSample returns an n×t matrix of i.i.d. standard normal values.
func gaussianSample(n, t int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]float64, n*t)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(n, t, data)
}

// factorSample returns an n×t sample whose series load on a shared factor
// per group, so their correlations have visible block structure.
func factorSample(groups, perGroup, t int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewPCG(seed, 1))
	n := groups * perGroup
	out := mat.NewDense(n, t, nil)
	for c := 0; c < t; c++ {
		market := rng.NormFloat64()
		for g := 0; g < groups; g++ {
			factor := rng.NormFloat64()
			for k := 0; k < perGroup; k++ {
				out.Set(g*perGroup+k, c, 0.4*market+0.8*factor+0.5*rng.NormFloat64())
			}
		}
	}
	return out
}

// randomDistances returns a symmetric n×n matrix with uniform off-diagonal
// entries in (0, 1) and a zero diagonal.
func randomDistances(n int, seed uint64) *mat.SymDense {
	rng := rand.New(rand.NewPCG(seed, 2))
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, rng.Float64())
		}
	}
	return d
}

func minEigenvalue(t *testing.T, m mat.Symmetric) float64 {
	t.Helper()
	var eig mat.EigenSym
	require.True(t, eig.Factorize(m, false), "eigendecomposition failed")
	return eig.Values(nil)[0]
}

func requireSymmetric(t *testing.T, m mat.Matrix, tol float64) {
	t.Helper()
	r, c := m.Dims()
	require.Equal(t, r, c, "matrix is not square")
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			require.InDelta(t, m.At(i, j), m.At(j, i), tol, "asymmetric at (%d,%d)", i, j)
		}
	}
}

func newTestSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, 7)
}
