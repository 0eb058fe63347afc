package bahc

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// validateSample checks that sample is an N×T matrix with N >= 2 series,
// T >= 2 observations, only finite values and no constant series. A constant
// series has an undefined correlation with every other series.
func validateSample(sample mat.Matrix) error {
	if sample == nil {
		return fmt.Errorf("%w: nil sample", ErrInvalidInput)
	}
	n, t := sample.Dims()
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 series, got %d", ErrInvalidInput, n)
	}
	if t < 2 {
		return fmt.Errorf("%w: need at least 2 observations per series, got %d", ErrInvalidInput, t)
	}
	row := make([]float64, t)
	for i := 0; i < n; i++ {
		mat.Row(row, i, sample)
		if floats.HasNaN(row) {
			return fmt.Errorf("%w: series %d contains NaN", ErrInvalidInput, i)
		}
		for j, v := range row {
			if math.IsInf(v, 0) {
				return fmt.Errorf("%w: series %d has infinite value at observation %d", ErrInvalidInput, i, j)
			}
		}
		if floats.Max(row) == floats.Min(row) {
			return fmt.Errorf("%w: series %d has zero variance", ErrInvalidInput, i)
		}
	}
	return nil
}

// seriesStdDev returns the population standard deviation of each row.
func seriesStdDev(sample mat.Matrix) []float64 {
	n, t := sample.Dims()
	std := make([]float64, n)
	row := make([]float64, t)
	for i := range std {
		mat.Row(row, i, sample)
		std[i] = stat.PopStdDev(row, nil)
	}
	return std
}

// resample draws T columns of sample with replacement into a new N×T matrix
// and adds independent gaussian noise with standard deviation jitter*std[i]
// to series i. The noise breaks ties that would otherwise make the
// clustering step order-dependent.
func resample(sample mat.Matrix, std []float64, jitter float64, src rand.Source) *mat.Dense {
	n, t := sample.Dims()
	rng := rand.New(src)
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	boot := mat.NewDense(n, t, nil)
	for c := 0; c < t; c++ {
		col := rng.IntN(t)
		for i := 0; i < n; i++ {
			v := sample.At(i, col)
			if jitter > 0 {
				v += jitter * std[i] * noise.Rand()
			}
			boot.Set(i, c, v)
		}
	}
	return boot
}

// correlation returns the Pearson correlation matrix between the rows of x.
func correlation(x mat.Matrix) *mat.SymDense {
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, x.T(), nil)
	return &corr
}

// Correlation validates sample (N series × T observations, as for Filter)
// and returns the Pearson correlation matrix between its series.
func Correlation(sample mat.Matrix) (*mat.SymDense, error) {
	if err := validateSample(sample); err != nil {
		return nil, err
	}
	return correlation(sample), nil
}
