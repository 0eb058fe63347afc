package bahc

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// ResidualFilter computes the cumulative k-th order filtered matrices of a
// correlation matrix, one order per call to Next. Each order clusters the
// residual left unexplained by the previous orders, so the hierarchy is
// rebuilt from scratch at every step. A ResidualFilter cannot be rewound.
type ResidualFilter struct {
	corr   mat.Symmetric
	linker Linker
	// cum is identity plus the zero-diagonal block averages of every
	// completed order.
	cum   *mat.SymDense
	order int
}

// NewResidualFilter starts a filter over corr at order 0 (the identity).
// A nil linker means AverageLinkage.
func NewResidualFilter(corr mat.Symmetric, linker Linker) *ResidualFilter {
	if linker == nil {
		linker = AverageLinkage{}
	}
	n := corr.SymmetricDim()
	cum := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		cum.SetSym(i, i, 1)
	}
	return &ResidualFilter{corr: corr, linker: linker, cum: cum}
}

// Order reports the number of completed orders.
func (f *ResidualFilter) Order() int { return f.order }

// Next advances the filter by one order and returns a copy of the cumulative
// filtered matrix at that order.
func (f *ResidualFilter) Next() (*mat.SymDense, error) {
	n := f.cum.SymmetricDim()

	residual := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			residual.SetSym(i, j, f.corr.At(i, j)-f.cum.At(i, j))
		}
	}

	parts, err := ExtractBipartitions(CorrelationDistance(residual), f.linker)
	if err != nil {
		return nil, fmt.Errorf("bahc: order %d: %w", f.order+1, err)
	}

	block := BlockAverage(parts, residual)
	for i := 0; i < n; i++ {
		block.SetSym(i, i, 0)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			f.cum.SetSym(i, j, f.cum.At(i, j)+block.At(i, j))
		}
	}
	f.order++

	return cloneSym(f.cum), nil
}

// FilterOrders runs a ResidualFilter up to the largest requested order and
// returns the filtered matrix for each entry of orders, in the given order.
func FilterOrders(corr mat.Symmetric, orders []int, linker Linker) ([]*mat.SymDense, error) {
	if err := validateOrders(orders); err != nil {
		return nil, err
	}

	maxOrder := slices.Max(orders)
	byOrder := make(map[int]*mat.SymDense, len(orders))
	f := NewResidualFilter(corr, linker)
	for f.Order() < maxOrder {
		m, err := f.Next()
		if err != nil {
			return nil, err
		}
		if slices.Contains(orders, f.Order()) {
			byOrder[f.Order()] = m
		}
	}

	out := make([]*mat.SymDense, len(orders))
	for i, k := range orders {
		out[i] = cloneSym(byOrder[k])
	}
	return out, nil
}

// validateOrders checks that at least one order is requested and that all
// orders are >= 1.
func validateOrders(orders []int) error {
	if len(orders) == 0 {
		return fmt.Errorf("%w: no orders requested", ErrInvalidOrder)
	}
	for _, k := range orders {
		if k < 1 {
			return fmt.Errorf("%w: orders must be >= 1, got %d", ErrInvalidOrder, k)
		}
	}
	return nil
}

func cloneSym(a mat.Symmetric) *mat.SymDense {
	c := mat.NewSymDense(a.SymmetricDim(), nil)
	c.CopySym(a)
	return c
}
