package bahc

// clusterForest tracks which dendrogram cluster each leaf currently belongs
// to while merges are replayed in distance order. It holds 2*n - 1 slots:
// leaves 0..n-1 and merged clusters n..2n-2, ids handed out in merge order
// exactly like scipy's linkage output.
type clusterForest struct {
	parent []int
	size   []int
	// nextID is the id assigned to the next merged cluster, starting at n.
	nextID int
}

func newClusterForest(n int) *clusterForest {
	total := 2*n - 1
	if total < 1 {
		total = 1
	}
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &clusterForest{
		parent: parent,
		size:   size,
		nextID: n,
	}
}

// find returns the current cluster id of x, compressing the path it walks.
func (f *clusterForest) find(x int) int {
	root := x
	for f.parent[root] != -1 {
		root = f.parent[root]
	}
	for f.parent[x] != -1 {
		x, f.parent[x] = f.parent[x], root
	}
	return root
}

// merge joins the clusters with root ids a and b under a fresh id and returns
// that id together with the size of the new cluster.
func (f *clusterForest) merge(a, b int) (id, size int) {
	id = f.nextID
	size = f.size[a] + f.size[b]
	f.size[id] = size
	f.parent[a] = id
	f.parent[b] = id
	f.nextID++
	return id, size
}
