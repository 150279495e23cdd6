// Package predicate implements the privacy-model contract from spec.md §6
// and a concrete library of class-based and sample-based privacy models:
// k-anonymity, ℓ-diversity, t-closeness, d-presence, k-map,
// δ-disclosure, and a differential-privacy bound check.
package predicate

import (
	"fmt"

	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// Requirements is an alias of groupify.Requirements: the predicate
// contract and the groupify result it consumes share one capability mask
// so the Checker can branch on bits, not types, in its hot path (spec.md
// §9's "lift requirements into data" design note).
type Requirements = groupify.Requirements

const (
	RequireCounter          = groupify.Counter
	RequireSecondaryCounter = groupify.SecondaryCounter
	RequireDistribution     = groupify.Distribution
)

// ClassPredicate is spec.md §6's class-based predicate contract.
type ClassPredicate interface {
	Requirements() Requirements
	IsAnonymous(class *groupify.ClassSummary) bool
	IsMonotonicWithGeneralization() bool
	IsMonotonicWithSuppression() bool
	// MinimalClassSize returns the predicate's minimum group size and true,
	// or (0, false) if the predicate has no notion of one.
	MinimalClassSize() (int, bool)
	Initialize(mgr *data.Manager) error
	// Clone returns a predicate scoped to a row subset, for local-recoding
	// callers (spec.md §6; orchestrating local recoding itself is out of
	// scope per spec.md §1 Non-goal (d)).
	Clone(rowSubset []int) ClassPredicate
}

// SampleVerdict is the outcome of evaluating a SamplePredicate over an
// entire groupify result.
type SampleVerdict struct {
	Anonymous    bool
	MustSuppress map[int]bool // row ids the predicate requires suppressed
}

// SamplePredicate is spec.md §6's sample-based predicate contract: it
// operates on the whole groupify result rather than one class at a time.
type SamplePredicate interface {
	Requirements() Requirements
	Evaluate(result *groupify.Result) SampleVerdict
	IsMonotonicWithGeneralization() bool
	IsMonotonicWithSuppression() bool
	Initialize(mgr *data.Manager) error
}

// ErrUnsupported is returned when a predicate combination the engine does
// not implement is requested, per spec.md §7 (e.g. multiple sensitive
// attributes, where this implementation rejects rather than guesses, per
// spec.md §9).
type ErrUnsupported struct {
	Reason string
}

func (e *ErrUnsupported) Error() string { return fmt.Sprintf("unsupported predicate configuration: %s", e.Reason) }
