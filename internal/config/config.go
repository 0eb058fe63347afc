// Package config loads bahc command settings from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TrevorS/bahc"
)

// File mirrors the filter command's flags. Zero values leave the
// corresponding bahc.Config field untouched.
type File struct {
	Orders      []int    `yaml:"orders"`
	Bootstraps  int      `yaml:"bootstraps"`
	Method      string   `yaml:"method"`
	Correlation bool     `yaml:"correlation"`
	Seed        uint64   `yaml:"seed"`
	Jitter      *float64 `yaml:"jitter"`
	Workers     int      `yaml:"workers"`
	Near        Near     `yaml:"near"`
}

// Near holds the settings of the iterative PSD projection.
type Near struct {
	MaxIter    int     `yaml:"max_iter"`
	EigTol     float64 `yaml:"eig_tol"`
	ConvTol    float64 `yaml:"conv_tol"`
	PosDefTol  float64 `yaml:"posdef_tol"`
	SkipPosDef bool    `yaml:"skip_posdef"`
}

// Load reads and parses the YAML file at path. Unknown keys are rejected.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	defer f.Close()

	var file File
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &file, nil
}

// Apply copies the set fields of f onto cfg.
func (f *File) Apply(cfg *bahc.Config) {
	if len(f.Orders) > 0 {
		cfg.Orders = append([]int(nil), f.Orders...)
	}
	if f.Bootstraps != 0 {
		cfg.Bootstraps = f.Bootstraps
	}
	if f.Method != "" {
		cfg.Method = bahc.Method(f.Method)
	}
	if f.Correlation {
		cfg.AsCorrelation = true
	}
	if f.Seed != 0 {
		cfg.Seed = f.Seed
	}
	if f.Jitter != nil {
		cfg.Jitter = *f.Jitter
	}
	if f.Workers != 0 {
		cfg.Workers = f.Workers
	}
	if f.Near.MaxIter != 0 {
		cfg.Near.MaxIter = f.Near.MaxIter
	}
	if f.Near.EigTol != 0 {
		cfg.Near.EigTol = f.Near.EigTol
	}
	if f.Near.ConvTol != 0 {
		cfg.Near.ConvTol = f.Near.ConvTol
	}
	if f.Near.PosDefTol != 0 {
		cfg.Near.PosDefTol = f.Near.PosDefTol
	}
	if f.Near.SkipPosDef {
		cfg.Near.SkipPosDef = true
	}
}
