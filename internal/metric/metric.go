// Package metric implements the quality-metric contract from spec.md §6
// and a concrete library of generalization quality metrics: generalized
// information loss and discernibility.
package metric

import (
	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// Metric is spec.md §6's quality-metric contract: lower is better
// throughout this package, matching a "cost" reading of generalization
// loss.
type Metric interface {
	Initialize(mgr *data.Manager) error
	Evaluate(result *groupify.Result) float64
	// LowerBound returns a quality lower bound for node when the metric
	// supports one cheaply (without a full groupify), and false otherwise.
	// Search uses this to order candidates without checking every node.
	LowerBound(node []int) (float64, bool)
	// IsMonotonic reports whether Evaluate is non-decreasing as the lattice
	// is climbed, for a given suppression budget. Practical monotonicity
	// (spec.md §9) only holds up to a suppression limit; callers pass the
	// configured limit so the metric can account for it.
	IsMonotonic(suppressionLimit float64) bool
}
