package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/TrevorS/bahc"
	"github.com/TrevorS/bahc/internal/config"
	"github.com/TrevorS/bahc/internal/matrixio"
)

type filterOptions struct {
	input       string
	output      string
	configPath  string
	format      string
	timeout     time.Duration
	orders      []int
	bootstraps  int
	method      string
	correlation bool
	seed        uint64
	jitter      float64
	workers     int
}

func newFilterCmd() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter the correlation or covariance matrix of a sample",
		Long: `Filter runs k-BAHC on the sample and writes one matrix per requested order.

Example usage:
  bahc filter --input returns.csv                        # order-1 covariance
  bahc filter --input returns.csv --orders 1,2 --correlation
  bahc filter --input returns.csv --method near --format json
  bahc filter --input returns.csv --config bahc.yaml --timeout 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, opts)
		},
	}

	registerFilterFlags(cmd.Flags(), opts)
	return cmd
}

func registerFilterFlags(f *pflag.FlagSet, opts *filterOptions) {
	defaults := bahc.DefaultConfig()
	f.StringVarP(&opts.input, "input", "i", "-", "Sample CSV, one series per row (- for stdin)")
	f.StringVarP(&opts.output, "output", "o", "-", "Output path (- for stdout)")
	f.StringVar(&opts.configPath, "config", "", "YAML config file; flags override its values")
	f.StringVar(&opts.format, "format", "csv", "Output format: csv, json")
	f.DurationVar(&opts.timeout, "timeout", 0, "Stop after this long and write the partial average (0 = no limit)")
	f.IntSliceVar(&opts.orders, "orders", defaults.Orders, "Filtering orders, comma separated")
	f.IntVar(&opts.bootstraps, "bootstraps", defaults.Bootstraps, "Number of bootstrap resamples")
	f.StringVar(&opts.method, "method", string(defaults.Method), "Regularization: no-neg, near")
	f.BoolVar(&opts.correlation, "correlation", false, "Output correlation instead of covariance")
	f.Uint64Var(&opts.seed, "seed", 0, "Random seed")
	f.Float64Var(&opts.jitter, "jitter", defaults.Jitter, "Relative gaussian jitter added to resampled values")
	f.IntVar(&opts.workers, "workers", 0, "Worker goroutines (0 = number of CPUs)")
}

func runFilter(cmd *cobra.Command, opts *filterOptions) error {
	if opts.format != "csv" && opts.format != "json" {
		return fmt.Errorf("invalid --format %q: want csv or json", opts.format)
	}

	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}

	sample, err := readSample(cmd, opts.input)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := bahc.FilterContext(ctx, sample, cfg)
	if err != nil {
		return err
	}
	n, t := sample.Dims()
	log.Info().
		Int("series", n).
		Int("observations", t).
		Int("bootstraps", res.Bootstraps).
		Bool("partial", res.Partial).
		Dur("elapsed", time.Since(start)).
		Msg("filtered")

	w := cmd.OutOrStdout()
	if opts.output != "-" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	kind := "covariance"
	if cfg.AsCorrelation {
		kind = "correlation"
	}
	filtered := make([]matrixio.Filtered, len(res.Matrices))
	for k, m := range res.Matrices {
		filtered[k] = matrixio.Filtered{Order: res.Orders[k], Matrix: m}
	}
	return writeResult(w, opts.format, matrixio.NewReport(kind, res.Bootstraps, res.Requested, res.Partial, filtered), filtered)
}

// buildConfig layers DefaultConfig, the YAML file and explicitly set flags,
// in that order.
func buildConfig(cmd *cobra.Command, opts *filterOptions) (bahc.Config, error) {
	cfg := bahc.DefaultConfig()
	cfg.Logger = &log.Logger

	if opts.configPath != "" {
		file, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
		file.Apply(&cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("orders") {
		cfg.Orders = opts.orders
	}
	if flags.Changed("bootstraps") {
		cfg.Bootstraps = opts.bootstraps
	}
	if flags.Changed("method") {
		cfg.Method = bahc.Method(opts.method)
	}
	if flags.Changed("correlation") {
		cfg.AsCorrelation = opts.correlation
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("jitter") {
		cfg.Jitter = opts.jitter
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	return cfg, nil
}

func writeResult(w io.Writer, format string, rep matrixio.Report, filtered []matrixio.Filtered) error {
	if format == "json" {
		return matrixio.WriteJSON(w, rep)
	}
	for k, f := range filtered {
		if k > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s order %d (%d/%d bootstraps)\n", rep.Kind, f.Order, rep.Bootstraps, rep.Requested); err != nil {
			return err
		}
		if err := matrixio.WriteCSV(w, f.Matrix); err != nil {
			return err
		}
	}
	return nil
}
