package bahc

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// NoNeg removes the negative part of the spectrum of x: eigenvalues below
// zero are set to zero and the matrix is rebuilt from its eigenpairs. The
// diagonal is not preserved.
func NoNeg(x mat.Symmetric) (*mat.SymDense, error) {
	vals, vecs, err := eigenSym(x)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if v < 0 {
			vals[i] = 0
		}
	}
	return fromEigen(vals, vecs), nil
}

// NearConfig controls Near. Zero fields take the defaults listed on each.
type NearConfig struct {
	// MaxIter caps the number of alternating projections. Default: 100.
	MaxIter int

	// EigTol is the relative threshold below which eigenvalues are dropped
	// when projecting onto the PSD cone: eigenvalues <= EigTol*λmax are
	// treated as zero. Default: 1e-6.
	EigTol float64

	// ConvTol stops the iteration once the relative infinity-norm change
	// between successive iterates is at most ConvTol. Default: 1e-8.
	ConvTol float64

	// PosDefTol floors the final eigenvalues at PosDefTol*|λmax| before the
	// diagonal is restored. Default: 1e-8.
	PosDefTol float64

	// SkipPosDef disables the final eigenvalue floor, returning the last
	// alternating-projection iterate as is.
	SkipPosDef bool

	// Logger receives the non-convergence warning. Default: the zerolog
	// global logger.
	Logger *zerolog.Logger
}

// NearStats describes how a Near projection ended.
type NearStats struct {
	Iterations int
	Converged  bool
	// Change is the relative infinity-norm change of the last iteration.
	Change float64
}

func applyNearDefaults(cfg *NearConfig) {
	if cfg.MaxIter == 0 {
		cfg.MaxIter = 100
	}
	if cfg.EigTol == 0 {
		cfg.EigTol = 1e-6
	}
	if cfg.ConvTol == 0 {
		cfg.ConvTol = 1e-8
	}
	if cfg.PosDefTol == 0 {
		cfg.PosDefTol = 1e-8
	}
	if cfg.Logger == nil {
		cfg.Logger = &log.Logger
	}
}

func validateNearConfig(cfg *NearConfig) error {
	if cfg.MaxIter < 1 {
		return fmt.Errorf("%w: near MaxIter must be >= 1, got %d", ErrInvalidConfig, cfg.MaxIter)
	}
	if cfg.EigTol < 0 || cfg.ConvTol < 0 || cfg.PosDefTol < 0 {
		return fmt.Errorf("%w: near tolerances must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// Near finds a positive semi-definite matrix close to x that keeps x's
// diagonal, by Dykstra's alternating projections between the PSD cone and
// the set of matrices with that diagonal. The correction applied by each PSD
// projection is carried into the next iteration instead of being reapplied.
//
// Hitting MaxIter is not an error: a warning is logged and the last iterate
// is returned with stats.Converged false.
func Near(x mat.Symmetric, cfg NearConfig) (*mat.SymDense, NearStats, error) {
	applyNearDefaults(&cfg)
	if err := validateNearConfig(&cfg); err != nil {
		return nil, NearStats{}, err
	}

	n := x.SymmetricDim()
	if n == 0 {
		return nil, NearStats{}, fmt.Errorf("%w: empty matrix", ErrEigen)
	}
	diag := make([]float64, n)
	for i := range diag {
		diag[i] = x.At(i, i)
	}

	cur := cloneSym(x)
	correction := mat.NewSymDense(n, nil)
	r := mat.NewSymDense(n, nil)
	var stats NearStats

	for stats.Iterations < cfg.MaxIter {
		prev := cloneSym(cur)

		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				r.SetSym(i, j, prev.At(i, j)-correction.At(i, j))
			}
		}

		proj, err := projectPSD(r, cfg.EigTol)
		if err != nil {
			return nil, stats, err
		}
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				correction.SetSym(i, j, proj.At(i, j)-r.At(i, j))
			}
		}
		for i, d := range diag {
			proj.SetSym(i, i, d)
		}
		cur = proj

		stats.Iterations++
		stats.Change = relativeChange(prev, cur)
		if stats.Change <= cfg.ConvTol {
			stats.Converged = true
			break
		}
	}

	if !stats.Converged {
		cfg.Logger.Warn().
			Int("iterations", stats.Iterations).
			Float64("change", stats.Change).
			Float64("tolerance", cfg.ConvTol).
			Msg("bahc: near PSD projection did not converge, returning last iterate")
	}

	if cfg.SkipPosDef {
		return cur, stats, nil
	}
	out, err := floorSpectrum(cur, diag, cfg.PosDefTol)
	if err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}

// projectPSD keeps the eigenpairs of r whose eigenvalue exceeds
// tol*λmax and rebuilds the matrix from them.
func projectPSD(r mat.Symmetric, tol float64) (*mat.SymDense, error) {
	vals, vecs, err := eigenSym(r)
	if err != nil {
		return nil, err
	}
	threshold := tol * vals[len(vals)-1]
	kept := 0
	for i, v := range vals {
		if v > threshold && v > 0 {
			kept++
			continue
		}
		vals[i] = 0
	}
	if kept == 0 {
		return nil, ErrNotPositive
	}
	return fromEigen(vals, vecs), nil
}

// floorSpectrum raises every eigenvalue of x to at least tol*|λmax|, then
// rescales rows and columns so that the diagonal matches diag again.
func floorSpectrum(x *mat.SymDense, diag []float64, tol float64) (*mat.SymDense, error) {
	vals, vecs, err := eigenSym(x)
	if err != nil {
		return nil, err
	}
	n := len(vals)
	eps := tol * math.Abs(vals[n-1])
	if vals[0] >= eps {
		return x, nil
	}
	for i, v := range vals {
		if v < eps {
			vals[i] = eps
		}
	}
	out := fromEigen(vals, vecs)

	scale := make([]float64, n)
	for i := range scale {
		scale[i] = math.Sqrt(math.Max(eps, diag[i]) / out.At(i, i))
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, scale[i]*out.At(i, j)*scale[j])
		}
	}
	for i := 0; i < n; i++ {
		out.SetSym(i, i, math.Max(eps, diag[i]))
	}
	return out, nil
}

// relativeChange returns ‖prev-cur‖∞ / ‖prev‖∞, or the absolute change when
// prev is zero.
func relativeChange(prev, cur mat.Matrix) float64 {
	var diff mat.Dense
	diff.Sub(prev, cur)
	num := mat.Norm(&diff, math.Inf(1))
	den := mat.Norm(prev, math.Inf(1))
	if den == 0 {
		return num
	}
	return num / den
}

// eigenSym returns the eigenvalues of x in ascending order and the matching
// eigenvectors as columns.
func eigenSym(x mat.Symmetric) ([]float64, *mat.Dense, error) {
	if x.SymmetricDim() == 0 {
		return nil, nil, fmt.Errorf("%w: empty matrix", ErrEigen)
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(x, true); !ok {
		return nil, nil, ErrEigen
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	return vals, &vecs, nil
}

// fromEigen rebuilds Q·diag(vals)·Qᵀ, averaging the two triangles so the
// result is exactly symmetric.
func fromEigen(vals []float64, vecs *mat.Dense) *mat.SymDense {
	n := len(vals)
	var scaled mat.Dense
	scaled.Mul(vecs, mat.NewDiagDense(n, vals))
	var full mat.Dense
	full.Mul(&scaled, vecs.T())

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, 0.5*(full.At(i, j)+full.At(j, i)))
		}
	}
	return out
}
