package bahc

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// partialSum is one worker's share of the bootstrap accumulator.
type partialSum struct {
	sums []*mat.SymDense
	done int
	err  error
}

// runBootstraps runs cfg.Bootstraps resamples across cfg.Workers goroutines
// and returns the per-order sums of the regularized matrices together with
// the number of bootstraps that completed.
//
// Bootstrap indices are split into contiguous ranges, one per worker. Each
// worker sums into its own matrices and the partial sums are merged in
// worker order after all workers return, so a fixed Seed and Workers gives
// bitwise-identical output.
func runBootstraps(ctx context.Context, data *mat.Dense, std []float64, cfg *Config) ([]*mat.SymDense, int, error) {
	n, _ := data.Dims()
	numWorkers := min(cfg.Workers, cfg.Bootstraps)
	perWorker := (cfg.Bootstraps + numWorkers - 1) / numWorkers

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	partials := make([]partialSum, numWorkers)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		end := min(start+perWorker, cfg.Bootstraps)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(p *partialSum, start, end int) {
			defer wg.Done()
			p.sums = newAccumulator(len(cfg.Orders), n)
			for b := start; b < end; b++ {
				if runCtx.Err() != nil {
					return
				}
				mats, err := bootstrapOnce(data, std, cfg, b)
				if err != nil {
					p.err = err
					cancel()
					return
				}
				for k, m := range mats {
					addSym(p.sums[k], m)
				}
				p.done++
			}
		}(&partials[w], start, end)
	}

	wg.Wait()

	total := newAccumulator(len(cfg.Orders), n)
	done := 0
	for i := range partials {
		p := &partials[i]
		if p.err != nil {
			return nil, 0, p.err
		}
		if p.done == 0 {
			continue
		}
		for k := range total {
			addSym(total[k], p.sums[k])
		}
		done += p.done
	}

	if done == 0 {
		return nil, 0, ctx.Err()
	}
	return total, done, nil
}

func newAccumulator(orders, n int) []*mat.SymDense {
	acc := make([]*mat.SymDense, orders)
	for k := range acc {
		acc[k] = mat.NewSymDense(n, nil)
	}
	return acc
}

// addSym adds src into dst in place.
func addSym(dst *mat.SymDense, src mat.Symmetric) {
	n := dst.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dst.SetSym(i, j, dst.At(i, j)+src.At(i, j))
		}
	}
}

// bootstrapOnce runs resample → correlation → multi-order filter →
// regularize for bootstrap index b and returns one matrix per requested
// order.
func bootstrapOnce(data *mat.Dense, std []float64, cfg *Config, b int) ([]*mat.SymDense, error) {
	src := rand.NewPCG(cfg.Seed, uint64(b))
	boot := resample(data, std, cfg.Jitter, src)
	corr := correlation(boot)

	filtered, err := FilterOrders(corr, cfg.Orders, cfg.Linker)
	if err != nil {
		return nil, err
	}
	for k, m := range filtered {
		reg, err := regularize(m, cfg)
		if err != nil {
			return nil, err
		}
		filtered[k] = reg
	}
	return filtered, nil
}

// regularize makes a filtered matrix positive semi-definite with the
// filtered matrix's diagonal.
func regularize(m *mat.SymDense, cfg *Config) (*mat.SymDense, error) {
	switch cfg.Method {
	case MethodNear:
		out, _, err := Near(m, cfg.Near)
		return out, err
	default:
		out, err := NoNeg(m)
		if err != nil {
			return nil, err
		}
		restoreDiagonal(out, m)
		return out, nil
	}
}

// restoreDiagonal rescales rows and columns of x so its diagonal equals
// ref's. The congruence D·x·D keeps x positive semi-definite. Entries with a
// non-positive diagonal on either side are left unscaled.
func restoreDiagonal(x *mat.SymDense, ref mat.Symmetric) {
	n := x.SymmetricDim()
	scale := make([]float64, n)
	for i := range scale {
		scale[i] = 1
		if xi, ri := x.At(i, i), ref.At(i, i); xi > 0 && ri > 0 {
			scale[i] = math.Sqrt(ri / xi)
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x.SetSym(i, j, scale[i]*x.At(i, j)*scale[j])
		}
		if x.At(i, i) > 0 && ref.At(i, i) > 0 {
			x.SetSym(i, i, ref.At(i, i))
		}
	}
}
