package bahc

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Method selects how each bootstrap's filtered matrix is made positive
// semi-definite.
type Method string

const (
	// MethodNoNeg clips negative eigenvalues to zero and rescales back to
	// the original diagonal. One eigendecomposition per matrix.
	MethodNoNeg Method = "no-neg"
	// MethodNear runs the iterative diagonal-preserving projection (Near).
	// Up to Near.MaxIter eigendecompositions per matrix.
	MethodNear Method = "near"
)

// Config controls k-BAHC filtering.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Orders lists the filtering orders to return, each >= 1. Order k is the
	// cumulative result of k rounds of residual clustering. Duplicates are
	// allowed; one matrix is returned per entry. Default: [1].
	Orders []int

	// Bootstraps is the number of resamples averaged. Must be >= 1.
	// Default: 100.
	Bootstraps int

	// Method selects the regularizer applied to every bootstrap matrix.
	// Default: MethodNoNeg.
	Method Method

	// AsCorrelation returns correlation matrices. When false the averaged
	// correlations are scaled by the outer product of the per-series
	// standard deviations to give covariances. Default: false.
	AsCorrelation bool

	// Seed fixes the random streams used for resampling and jitter. The
	// stream of bootstrap b depends only on Seed and b. Default: 0.
	Seed uint64

	// Jitter is the standard deviation of the gaussian noise added to each
	// resampled observation, relative to the series' standard deviation.
	// 0 disables it. Must be finite and >= 0. Default: 1e-8.
	Jitter float64

	// Workers is the number of goroutines running bootstraps. 0 means
	// runtime.NumCPU(). Default: 0 (auto).
	Workers int

	// Linker builds the hierarchy at each order. Default: AverageLinkage.
	Linker Linker

	// Near configures MethodNear. Its Logger defaults to Logger.
	Near NearConfig

	// Logger receives progress and diagnostics. Default: the zerolog global
	// logger.
	Logger *zerolog.Logger
}

// Result holds the filtered matrices of a run.
type Result struct {
	// Orders are the requested orders; Matrices[i] belongs to Orders[i].
	Orders   []int
	Matrices []*mat.SymDense

	// Bootstraps is the number of resamples that were averaged and
	// Requested the number asked for. They differ only when Partial is set.
	Bootstraps int
	Requested  int

	// Partial reports that the context ended before every bootstrap ran.
	// The matrices are then the average of the completed bootstraps.
	Partial bool
}

// Matrix returns the filtered matrix when exactly one order was requested,
// and nil otherwise.
func (r *Result) Matrix() *mat.SymDense {
	if len(r.Matrices) != 1 {
		return nil
	}
	return r.Matrices[0]
}

// ForOrder returns the matrix for filtering order k.
func (r *Result) ForOrder(k int) (*mat.SymDense, bool) {
	i := slices.Index(r.Orders, k)
	if i < 0 {
		return nil, false
	}
	return r.Matrices[i], true
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Orders:     []int{1},
		Bootstraps: 100,
		Method:     MethodNoNeg,
		Jitter:     1e-8,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if err := validateOrders(cfg.Orders); err != nil {
		return err
	}
	if cfg.Bootstraps < 1 {
		return fmt.Errorf("%w: Bootstraps must be >= 1, got %d", ErrInvalidConfig, cfg.Bootstraps)
	}
	switch cfg.Method {
	case MethodNoNeg, MethodNear:
		// valid
	default:
		return fmt.Errorf("%w: Method must be %q or %q, got %q", ErrInvalidConfig, MethodNoNeg, MethodNear, cfg.Method)
	}
	if cfg.Jitter < 0 || math.IsNaN(cfg.Jitter) || math.IsInf(cfg.Jitter, 0) {
		return fmt.Errorf("%w: Jitter must be finite and >= 0, got %v", ErrInvalidConfig, cfg.Jitter)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: Workers must be >= 0 (0 means NumCPU), got %d", ErrInvalidConfig, cfg.Workers)
	}
	return validateNearConfig(&cfg.Near)
}

// applyDefaults fills in zero-valued config fields with their defaults.
// Orders are never defaulted: an empty list is an error.
func applyDefaults(cfg *Config) {
	if cfg.Bootstraps == 0 {
		cfg.Bootstraps = 100
	}
	if cfg.Method == "" {
		cfg.Method = MethodNoNeg
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Linker == nil {
		cfg.Linker = AverageLinkage{}
	}
	if cfg.Logger == nil {
		cfg.Logger = &log.Logger
	}
	if cfg.Near.Logger == nil {
		cfg.Near.Logger = cfg.Logger
	}
	applyNearDefaults(&cfg.Near)
	cfg.Orders = slices.Clone(cfg.Orders)
}

// Filter estimates cleaned correlation or covariance matrices from sample,
// an N×T matrix holding one series per row. See FilterContext.
func Filter(sample mat.Matrix, cfg Config) (*Result, error) {
	return FilterContext(context.Background(), sample, cfg)
}

// FilterContext runs k-BAHC: for each bootstrap it resamples the
// observations, computes their correlation matrix, filters it at every
// requested order and regularizes the result; the regularized matrices are
// averaged over bootstraps and, unless cfg.AsCorrelation is set, rescaled to
// covariances. sample is not modified.
//
// If ctx ends before all bootstraps complete, the average of the completed
// ones is returned with Result.Partial set. If none completed, ctx.Err() is
// returned.
func FilterContext(ctx context.Context, sample mat.Matrix, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := validateSample(sample); err != nil {
		return nil, err
	}

	data := mat.DenseCopyOf(sample)
	n, t := data.Dims()
	std := seriesStdDev(data)

	cfg.Logger.Debug().
		Int("series", n).
		Int("observations", t).
		Ints("orders", cfg.Orders).
		Int("bootstraps", cfg.Bootstraps).
		Str("method", string(cfg.Method)).
		Int("workers", cfg.Workers).
		Msg("bahc: filtering")

	sums, done, err := runBootstraps(ctx, data, std, &cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Orders:     cfg.Orders,
		Matrices:   sums,
		Bootstraps: done,
		Requested:  cfg.Bootstraps,
		Partial:    done < cfg.Bootstraps,
	}
	for _, m := range res.Matrices {
		average(m, done)
		if !cfg.AsCorrelation {
			scaleByStd(m, std)
		}
	}

	if res.Partial {
		cfg.Logger.Warn().
			Int("completed", done).
			Int("requested", cfg.Bootstraps).
			Msg("bahc: context ended early, returning partial bootstrap average")
	}
	return res, nil
}

// average divides the accumulated sum m by the number of bootstraps.
func average(m *mat.SymDense, count int) {
	n := m.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, m.At(i, j)/float64(count))
		}
	}
}

// scaleByStd multiplies m elementwise by the outer product std·stdᵀ.
func scaleByStd(m *mat.SymDense, std []float64) {
	n := m.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, m.At(i, j)*std[i]*std[j])
		}
	}
}
