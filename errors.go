package bahc

import "errors"

var (
	// ErrInvalidInput is returned when the sample matrix cannot be filtered:
	// too few series or observations, non-finite values, or a series with
	// zero variance.
	ErrInvalidInput = errors.New("bahc: invalid input")

	// ErrInvalidOrder is returned when no filtering order is requested or an
	// order is below 1.
	ErrInvalidOrder = errors.New("bahc: invalid filtering order")

	// ErrInvalidConfig is returned for out-of-range Config fields other than
	// the orders.
	ErrInvalidConfig = errors.New("bahc: invalid config")

	// ErrClustering is returned when the hierarchical clustering step fails,
	// typically because of NaN or infinite distances.
	ErrClustering = errors.New("bahc: clustering failed")

	// ErrEigen is returned when a symmetric eigendecomposition does not
	// converge.
	ErrEigen = errors.New("bahc: eigendecomposition failed")

	// ErrNotPositive is returned by Near when no eigenvalue of the matrix is
	// above the tolerance, so there is nothing to project onto.
	ErrNotPositive = errors.New("bahc: matrix has no positive eigenvalue")
)
