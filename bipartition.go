package bahc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Bipartition is the split of one dendrogram node into the leaf sets of its
// two children. Every unordered pair of leaves appears in Left×Right of
// exactly one bipartition: the one at their lowest common ancestor.
type Bipartition struct {
	Left  []int
	Right []int
}

// ExtractBipartitions clusters the items of the distance matrix dist with
// linker and returns the n-1 bipartitions of the resulting dendrogram,
// bottom-up. Linker failures are wrapped in ErrClustering.
func ExtractBipartitions(dist mat.Symmetric, linker Linker) ([]Bipartition, error) {
	if linker == nil {
		linker = AverageLinkage{}
	}
	n := dist.SymmetricDim()
	link, err := linker.Link(Condensed(dist), n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClustering, err)
	}
	return BipartitionsFromLinkage(link, n)
}

// BipartitionsFromLinkage walks a linkage over n leaves and returns one
// bipartition per merge, in linkage order. It fails if the linkage does not
// have n-1 rows or refers to a cluster id that does not exist yet.
func BipartitionsFromLinkage(link Linkage, n int) ([]Bipartition, error) {
	if n < 2 {
		return []Bipartition{}, nil
	}
	if len(link) != n-1 {
		return nil, fmt.Errorf("%w: linkage has %d rows, want %d", ErrClustering, len(link), n-1)
	}

	// members[id] owns the leaf set of cluster id; leaves first, merged
	// clusters appended as they are created.
	members := make([][]int, n, 2*n-1)
	for i := range members[:n] {
		members[i] = []int{i}
	}

	parts := make([]Bipartition, 0, n-1)
	for i, m := range link {
		id := n + i
		if m.A < 0 || m.B < 0 || m.A >= id || m.B >= id || m.A == m.B {
			return nil, fmt.Errorf("%w: linkage row %d merges invalid clusters %d and %d", ErrClustering, i, m.A, m.B)
		}
		left, right := members[m.A], members[m.B]
		if left == nil || right == nil {
			return nil, fmt.Errorf("%w: linkage row %d reuses an already merged cluster", ErrClustering, i)
		}
		parts = append(parts, Bipartition{Left: left, Right: right})

		joined := make([]int, 0, len(left)+len(right))
		joined = append(joined, left...)
		joined = append(joined, right...)
		members = append(members, joined)
		members[m.A], members[m.B] = nil, nil
	}
	return parts, nil
}
