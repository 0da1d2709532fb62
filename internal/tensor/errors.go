package tensor

import "github.com/pkg/errors"

// Validation failures reported by Split. Errors returned by this package wrap
// one of these sentinels; test for them with errors.Is.
var (
	// ErrInvalidAxis reports an axis outside [-rank, rank).
	ErrInvalidAxis = errors.New("invalid axis")

	// ErrInvalidSplitSizes reports a negative split size or sizes whose sum
	// differs from the extent of the split axis.
	ErrInvalidSplitSizes = errors.New("invalid split sizes")

	// ErrInvalidArity reports a non-positive output count, an output count that
	// the equal-parts policy cannot satisfy, or one that disagrees with the
	// number of explicit sizes.
	ErrInvalidArity = errors.New("invalid arity")
)
