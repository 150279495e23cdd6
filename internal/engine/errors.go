package engine

import (
	"errors"

	"github.com/rawblock/flashengine/internal/data"
)

// Sentinel errors for the engine's error kinds, per spec.md §7. They wrap
// or re-export the package-level sentinels closer to where each condition
// actually originates, so callers can use errors.Is uniformly against this
// package regardless of which internal package detected the problem.
var (
	// ErrInvalidConfiguration re-exports internal/data's sentinel: bad
	// numeric ranges, more than 15 QIs, zero QIs, or an unknown quality
	// model. A predicate whose sensitive attribute is missing fails its
	// Initialize with *predicate.ErrUnsupported instead, which does not
	// match this sentinel. Predicate subsets are not checked for conflicts.
	ErrInvalidConfiguration = data.ErrInvalidConfiguration

	// ErrInvalidHierarchy re-exports internal/data's sentinel: a
	// non-monotone hierarchy, or level bounds outside [0, height-1].
	ErrInvalidHierarchy = data.ErrInvalidHierarchy

	// ErrInvalidInput covers unknown attribute names, mismatched column
	// counts, and QI values absent from their declared hierarchy.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoSolution is returned when Search completes without finding any
	// anonymous node.
	ErrNoSolution = errors.New("no anonymous node satisfies the configured predicates")

	// ErrInterrupted is returned when cooperative cancellation was honored
	// before a result could be produced.
	ErrInterrupted = errors.New("anonymization run was interrupted")
)
