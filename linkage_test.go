package bahc

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAverageLinkage_FourPoints(t *testing.T) {
	// d(0,1)=1, d(2,3)=2, cross distances 5,6,7,8.
	// UPGMA: {0,1}@1 → 4, {2,3}@2 → 5, {4,5}@mean(5,6,7,8)=6.5 → 6.
	condensed := []float64{1, 5, 6, 7, 8, 2}

	link, err := AverageLinkage{}.Link(condensed, 4)
	require.NoError(t, err)

	want := Linkage{
		{A: 0, B: 1, Distance: 1, Size: 2},
		{A: 2, B: 3, Distance: 2, Size: 2},
		{A: 4, B: 5, Distance: 6.5, Size: 4},
	}
	assert.Equal(t, want, link)
}

func TestAverageLinkage_ChainAveragesMembers(t *testing.T) {
	// 0 and 1 merge first; point 2 then sits at mean(d(0,2), d(1,2)) = 3.
	condensed := []float64{1, 2, 4}

	link, err := AverageLinkage{}.Link(condensed, 3)
	require.NoError(t, err)
	require.Len(t, link, 2)

	assert.Equal(t, Merge{A: 0, B: 1, Distance: 1, Size: 2}, link[0])
	assert.Equal(t, Merge{A: 2, B: 3, Distance: 3, Size: 3}, link[1])
}

func TestAverageLinkage_Trivial(t *testing.T) {
	for _, n := range []int{0, 1} {
		link, err := AverageLinkage{}.Link([]float64{}, n)
		require.NoError(t, err)
		assert.Empty(t, link)
	}

	link, err := AverageLinkage{}.Link([]float64{3.5}, 2)
	require.NoError(t, err)
	assert.Equal(t, Linkage{{A: 0, B: 1, Distance: 3.5, Size: 2}}, link)
}

func TestAverageLinkage_Errors(t *testing.T) {
	tests := []struct {
		name      string
		condensed []float64
		n         int
	}{
		{"length mismatch", []float64{1, 2}, 3},
		{"negative n", nil, -1},
		{"NaN distance", []float64{1, math.NaN(), 2}, 3},
		{"Inf distance", []float64{math.Inf(1)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AverageLinkage{}.Link(tt.condensed, tt.n)
			require.ErrorIs(t, err, ErrClustering)
		})
	}
}

func TestAverageLinkage_DoesNotModifyInput(t *testing.T) {
	condensed := []float64{1, 5, 6, 7, 8, 2}
	orig := slices.Clone(condensed)

	_, err := AverageLinkage{}.Link(condensed, 4)
	require.NoError(t, err)
	assert.Equal(t, orig, condensed)
}

// naiveAverageLinkage merges the closest pair of clusters by recomputing
// mean member distances from scratch at every step.
func naiveAverageLinkage(d mat.Symmetric) (heights []float64, sizes []int) {
	n := d.SymmetricDim()
	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}
	for len(clusters) > 1 {
		bi, bj, best := 0, 1, math.Inf(1)
		for i := range clusters {
			for j := i + 1; j < len(clusters); j++ {
				var sum float64
				for _, a := range clusters[i] {
					for _, b := range clusters[j] {
						sum += d.At(a, b)
					}
				}
				if avg := sum / float64(len(clusters[i])*len(clusters[j])); avg < best {
					bi, bj, best = i, j, avg
				}
			}
		}
		merged := append(slices.Clone(clusters[bi]), clusters[bj]...)
		heights = append(heights, best)
		sizes = append(sizes, len(merged))
		clusters = append(clusters[:bj], clusters[bj+1:]...)
		clusters[bi] = merged
	}
	return heights, sizes
}

func TestAverageLinkage_MatchesNaiveUPGMA(t *testing.T) {
	for _, n := range []int{2, 3, 5, 8, 13, 21} {
		d := randomDistances(n, uint64(100+n))

		link, err := AverageLinkage{}.Link(Condensed(d), n)
		require.NoError(t, err)
		require.Len(t, link, n-1)

		heights, sizes := naiveAverageLinkage(d)
		for i, m := range link {
			assert.InDelta(t, heights[i], m.Distance, 1e-12, "n=%d row %d height", n, i)
			assert.Equal(t, sizes[i], m.Size, "n=%d row %d size", n, i)
		}
	}
}

func TestAverageLinkage_IDsAreScipyStyle(t *testing.T) {
	n := 10
	link, err := AverageLinkage{}.Link(Condensed(randomDistances(n, 5)), n)
	require.NoError(t, err)

	used := make(map[int]bool)
	for i, m := range link {
		assert.Less(t, m.A, m.B, "row %d: smaller id first", i)
		assert.Less(t, m.B, n+i, "row %d refers to a cluster created later", i)
		assert.False(t, used[m.A] || used[m.B], "row %d reuses a merged cluster", i)
		used[m.A], used[m.B] = true, true
	}
	assert.Equal(t, n, link[len(link)-1].Size)

	for i := 1; i < len(link); i++ {
		assert.LessOrEqual(t, link[i-1].Distance, link[i].Distance, "rows sorted by distance")
	}
}

func TestRelabel_HandTraced(t *testing.T) {
	// Merges in discovery order, distances out of order.
	//   sorted: [0,2,1], [2,3,1], [0,1,2]
	//   [0,2] → 4; find(2)=4, find(3)=3 → [3,4] → 5; find(0)=5, find(1)=1 → [1,5] → 6
	merges := [][3]float64{
		{0, 1, 2.0},
		{0, 2, 1.0},
		{2, 3, 1.0},
	}

	got := relabel(merges, 4)

	want := Linkage{
		{A: 0, B: 2, Distance: 1, Size: 2},
		{A: 3, B: 4, Distance: 1, Size: 3},
		{A: 1, B: 5, Distance: 2, Size: 4},
	}
	assert.Equal(t, want, got)
}

func TestLinkage_Rows(t *testing.T) {
	link := Linkage{{A: 0, B: 1, Distance: 0.25, Size: 2}, {A: 2, B: 3, Distance: 0.5, Size: 3}}

	assert.Equal(t, [][4]float64{{0, 1, 0.25, 2}, {2, 3, 0.5, 3}}, link.Rows())
}
