package bahc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCondensed_RowMajorUpperTriangle(t *testing.T) {
	m := mat.NewSymDense(4, []float64{
		0, 1, 2, 3,
		1, 0, 4, 5,
		2, 4, 0, 6,
		3, 5, 6, 0,
	})

	got := Condensed(m)

	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got)
}

func TestCondensed_Small(t *testing.T) {
	assert.Empty(t, Condensed(mat.NewSymDense(1, []float64{0})))
	assert.Equal(t, []float64{7}, Condensed(mat.NewSymDense(2, []float64{0, 7, 7, 0})))
}

func TestCondensedIndex_MatchesCondensed(t *testing.T) {
	for _, n := range []int{2, 3, 5, 9} {
		d := randomDistances(n, uint64(n))
		c := Condensed(d)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				require.Equal(t, d.At(i, j), c[condensedIndex(n, i, j)], "n=%d pair (%d,%d)", n, i, j)
			}
		}
	}
}

func TestCorrelationDistance(t *testing.T) {
	c := mat.NewSymDense(3, []float64{
		1, 0.5, -0.2,
		0.5, 1, 0.9,
		-0.2, 0.9, 1,
	})

	d := CorrelationDistance(c)

	assert.InDelta(t, 0.5, d.At(0, 1), floatTol)
	assert.InDelta(t, 1.2, d.At(0, 2), floatTol)
	assert.InDelta(t, 0.1, d.At(2, 1), floatTol)
	assert.InDelta(t, 0.0, d.At(1, 1), floatTol)
	// Input is untouched.
	assert.Equal(t, 0.5, c.At(0, 1))
}
