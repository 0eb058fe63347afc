package bahc

import "gonum.org/v1/gonum/mat"

// BlockAverage replaces every off-diagonal entry of values with the mean of
// the hierarchical block it belongs to. For each bipartition the entries
// Left×Right (and their mirrors) are set to the mean of values over those
// rows and columns. The diagonal of the result is 1.
//
// parts must come from a single dendrogram over values' items, so that each
// pair is written exactly once.
func BlockAverage(parts []Bipartition, values mat.Symmetric) *mat.SymDense {
	n := values.SymmetricDim()
	out := mat.NewSymDense(n, nil)

	for _, p := range parts {
		if len(p.Left) == 0 || len(p.Right) == 0 {
			continue
		}
		var sum float64
		for _, i := range p.Left {
			for _, j := range p.Right {
				sum += values.At(i, j)
			}
		}
		mean := sum / float64(len(p.Left)*len(p.Right))
		for _, i := range p.Left {
			for _, j := range p.Right {
				// SymDense stores one triangle, so the mirror is implicit.
				out.SetSym(i, j, mean)
			}
		}
	}

	for i := 0; i < n; i++ {
		out.SetSym(i, i, 1)
	}
	return out
}
