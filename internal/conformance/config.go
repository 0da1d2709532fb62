package conformance

import (
	"path"
	"runtime"

	"github.com/pkg/errors"

	"github.com/born-ml/conformance/internal/onnx/operators"
	"github.com/born-ml/conformance/internal/parallel"
)

// Config controls fixture generation and verification.
type Config struct {
	OutputDir string // Root directory holding one directory per case.
	Opset     int64  // Target opset of the generated models.
	Workers   int    // Cases processed concurrently.
	Overwrite bool   // Replace existing case directories instead of skipping them.
	Filter    string // Glob over case names, empty selects every case.

	// Parallel configures the Split copy loops used by self-checks and Verify.
	Parallel parallel.Config
}

// DefaultConfig returns the configuration used by the CLI when no flags are given.
func DefaultConfig() Config {
	return Config{
		OutputDir: "testdata/node",
		Opset:     operators.LatestOpset,
		Workers:   runtime.NumCPU(),
		Parallel:  parallel.Sequential(),
	}
}

// Validate checks the configuration for obviously wrong values.
func (c *Config) Validate() error {
	if c.Opset < 1 || c.Opset > operators.LatestOpset {
		return errors.Errorf("opset %d out of supported range [1, %d]", c.Opset, operators.LatestOpset)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Filter != "" {
		if _, err := path.Match(c.Filter, ""); err != nil {
			return errors.Wrapf(err, "invalid filter %q", c.Filter)
		}
	}
	return nil
}

// Select returns the cases whose names match the filter, in input order.
func (c *Config) Select(cases []Case) []Case {
	if c.Filter == "" {
		return cases
	}
	var selected []Case
	for _, tc := range cases {
		if ok, _ := path.Match(c.Filter, tc.Name); ok {
			selected = append(selected, tc)
		}
	}
	return selected
}
