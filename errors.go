package copac

import "errors"

// Sentinel errors returned by the clustering pipeline. Callers should match
// them with errors.Is; returned errors carry additional context (offending
// index, stage) via wrapping.
var (
	// ErrInvalidInput is returned for malformed input: empty or ragged data,
	// non-finite coordinates, too few points for the requested neighborhood
	// size, or out-of-range parameters. Input validation happens before any
	// computation starts.
	ErrInvalidInput = errors.New("copac: invalid input")

	// ErrDegenerateNeighborhood marks a zero-variance local neighborhood
	// (all neighbors coincide). It is recovered internally: the affected
	// point falls back to a dimension-0 group and is never fatal. The
	// sentinel is exported so tests and diagnostics can identify the
	// condition.
	ErrDegenerateNeighborhood = errors.New("copac: degenerate neighborhood")

	// ErrNumericalInstability marks an eigendecomposition failure or a
	// non-finite distance. Affected pairs are treated as unreachable
	// (infinite distance) rather than aborting the run.
	ErrNumericalInstability = errors.New("copac: numerical instability")
)
