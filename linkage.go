package bahc

import (
	"fmt"
	"math"
	"sort"
)

// Merge is one row of a hierarchical clustering linkage: clusters A and B
// are joined at Distance into a cluster of Size leaves. Leaf ids are 0..n-1;
// the cluster created by row i has id n+i.
type Merge struct {
	A        int
	B        int
	Distance float64
	Size     int
}

// Linkage is the ordered merge sequence produced by a Linker. A linkage over
// n leaves has n-1 rows.
type Linkage []Merge

// Rows renders the linkage in scipy format: each row is
// [left, right, distance, size].
func (l Linkage) Rows() [][4]float64 {
	rows := make([][4]float64, len(l))
	for i, m := range l {
		rows[i] = [4]float64{float64(m.A), float64(m.B), m.Distance, float64(m.Size)}
	}
	return rows
}

// Linker builds a hierarchical clustering over n items from their condensed
// distance vector (see Condensed). Implementations must return n-1 merges
// with new cluster ids assigned sequentially from n.
type Linker interface {
	Link(condensed []float64, n int) (Linkage, error)
}

// AverageLinkage is the UPGMA Linker: the distance between two clusters is
// the mean pairwise distance between their members.
type AverageLinkage struct{}

// Link runs nearest-neighbour-chain average linkage. Rows are ordered by
// merge distance (ties keep discovery order) and relabelled with scipy's
// cluster-id scheme. Non-finite distances fail with ErrClustering.
func (AverageLinkage) Link(condensed []float64, n int) (Linkage, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative item count %d", ErrClustering, n)
	}
	want := 0
	if n > 1 {
		want = n * (n - 1) / 2
	}
	if len(condensed) != want {
		return nil, fmt.Errorf("%w: condensed length %d does not match n*(n-1)/2 = %d (n=%d)",
			ErrClustering, len(condensed), want, n)
	}
	for k, d := range condensed {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: non-finite distance %v at condensed index %d", ErrClustering, d, k)
		}
	}
	if n < 2 {
		return Linkage{}, nil
	}

	merges := nnChainAverage(condensed, n)
	return relabel(merges, n), nil
}

// nnChainAverage performs the agglomeration and returns merges as
// [slotA, slotB, distance] in the order they happen. Slots are leaf indices;
// after a merge the larger slot stands for the new cluster.
func nnChainAverage(condensed []float64, n int) [][3]float64 {
	dist := make([]float64, len(condensed))
	copy(dist, condensed)

	size := make([]int, n)
	for i := range size {
		size[i] = 1
	}

	merges := make([][3]float64, 0, n-1)
	chain := make([]int, 0, n)

	for k := 0; k < n-1; k++ {
		if len(chain) == 0 {
			for i := 0; i < n; i++ {
				if size[i] > 0 {
					chain = append(chain, i)
					break
				}
			}
		}

		var x, y int
		var best float64
		for {
			x = chain[len(chain)-1]
			best = math.Inf(1)
			y = -1
			if len(chain) > 1 {
				y = chain[len(chain)-2]
				best = dist[condensedIndex(n, x, y)]
			}
			for i := 0; i < n; i++ {
				if size[i] == 0 || i == x {
					continue
				}
				if d := dist[condensedIndex(n, x, i)]; d < best {
					best = d
					y = i
				}
			}
			if len(chain) > 1 && y == chain[len(chain)-2] {
				break
			}
			chain = append(chain, y)
		}

		chain = chain[:len(chain)-2]
		if x > y {
			x, y = y, x
		}
		nx, ny := size[x], size[y]
		merges = append(merges, [3]float64{float64(x), float64(y), best})

		size[x] = 0
		size[y] = nx + ny

		// Lance-Williams update for average linkage; slot y now holds x∪y.
		for i := 0; i < n; i++ {
			if size[i] == 0 || i == y {
				continue
			}
			dx := dist[condensedIndex(n, i, x)]
			dy := dist[condensedIndex(n, i, y)]
			dist[condensedIndex(n, i, y)] = (float64(nx)*dx + float64(ny)*dy) / float64(nx+ny)
		}
	}

	return merges
}

// relabel sorts merges by distance and rewrites slot indices as dendrogram
// cluster ids. Within a row the smaller id comes first.
func relabel(merges [][3]float64, n int) Linkage {
	sorted := make([][3]float64, len(merges))
	copy(sorted, merges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i][2] < sorted[j][2]
	})

	forest := newClusterForest(n)
	out := make(Linkage, 0, len(sorted))
	for _, m := range sorted {
		a := forest.find(int(m[0]))
		b := forest.find(int(m[1]))
		if a > b {
			a, b = b, a
		}
		_, size := forest.merge(a, b)
		out = append(out, Merge{A: a, B: b, Distance: m[2], Size: size})
	}
	return out
}
