// Package checker implements the Node Checker from spec.md §4.7: it
// classifies one lattice node as anonymous or not, computing its quality
// and outlier count by orchestrating Groupify, History, the predicate
// registry, and the quality metric.
package checker

import (
	"math"
	"sort"

	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
	"github.com/rawblock/flashengine/internal/history"
	"github.com/rawblock/flashengine/internal/metric"
	"github.com/rawblock/flashengine/internal/predicate"
)

// Result is check(L)'s return value per spec.md §4.7.
type Result struct {
	Anonymous   bool
	Quality     float64
	Outliers    int
	Suppressed  map[int]bool // row ids suppressed to reach Anonymous, when it is true
	Interrupted bool
}

// Checker evaluates nodes. It is owned by one Search run and is not safe
// for concurrent use, matching spec.md §5's single-threaded core.
type Checker struct {
	mgr  *data.Manager
	hist *history.History

	classPredicate  predicate.ClassPredicate  // nil if no class-based predicate configured
	samplePredicate predicate.SamplePredicate // nil if no sample-based predicate configured
	qualityMetric   metric.Metric

	requirements     groupify.Requirements
	suppressionLimit float64

	interrupted func() bool
}

// New builds a Checker. interrupted is polled at class boundaries and
// between checks for cooperative cancellation (spec.md §5); pass a no-op
// func() bool { return false } when cancellation is not needed.
func New(mgr *data.Manager, hist *history.History, classPredicate predicate.ClassPredicate, samplePredicate predicate.SamplePredicate, qualityMetric metric.Metric, suppressionLimit float64, interrupted func() bool) *Checker {
	var reqs groupify.Requirements
	if classPredicate != nil {
		reqs |= classPredicate.Requirements()
	}
	if samplePredicate != nil {
		reqs |= samplePredicate.Requirements()
	}
	return &Checker{
		mgr:              mgr,
		hist:             hist,
		classPredicate:   classPredicate,
		samplePredicate:  samplePredicate,
		qualityMetric:    qualityMetric,
		requirements:     reqs,
		suppressionLimit: suppressionLimit,
		interrupted:      interrupted,
	}
}

// Check computes Groupify (using History when possible), evaluates every
// class-based predicate, combines results by logical AND, then evaluates
// sample-based predicates against the whole result, then evaluates the
// quality metric. It is spec.md §4.7's check(L).
func (c *Checker) Check(node []int) Result {
	if c.interrupted != nil && c.interrupted() {
		return Result{Interrupted: true}
	}

	result := c.groupify(node)

	anonymous, outliers, suppressed := c.applyClassPredicate(result)

	if anonymous && c.samplePredicate != nil {
		verdict := c.samplePredicate.Evaluate(result)
		if !verdict.Anonymous {
			anonymous = false
		}
		for r := range verdict.MustSuppress {
			if suppressed == nil {
				suppressed = make(map[int]bool)
			}
			if !suppressed[r] {
				suppressed[r] = true
				outliers++
			}
		}
		budget := int(math.Floor(c.suppressionLimit * float64(c.mgr.N())))
		if outliers > budget {
			anonymous = false
		}
	}

	quality := 0.0
	if c.qualityMetric != nil {
		quality = c.qualityMetric.Evaluate(result)
	}

	return Result{Anonymous: anonymous, Quality: quality, Outliers: outliers, Suppressed: suppressed}
}

// Score is spec.md §4.7's score(L): a cheap quality lower bound for
// ordering candidates without a full check, when the metric supports one.
func (c *Checker) Score(node []int) (float64, bool) {
	if c.qualityMetric == nil {
		return 0, false
	}
	return c.qualityMetric.LowerBound(node)
}

// groupify computes node's equivalence classes, consulting History for a
// reusable ancestor snapshot first, and stores the result back into
// History for future descendants.
func (c *Checker) groupify(node []int) *groupify.Result {
	var result *groupify.Result
	if snap := c.hist.Get(node); snap != nil {
		result = groupify.BuildFromAncestor(c.mgr, node, snap.Result, c.requirements)
	} else {
		result = groupify.BuildFromScratch(c.mgr, node, c.requirements)
	}
	c.hist.Put(node, result)
	return result
}

// applyClassPredicate implements spec.md §4.7's suppression handling: with
// budget floor(suppressionLimit * N), offending classes (those the
// class-based predicate rejects) are suppressed whole, greedily smallest
// first, ties broken by insertion order, only while the running outlier
// count stays within budget. A node is anonymous only if every offending
// class was fully suppressed within budget.
func (c *Checker) applyClassPredicate(result *groupify.Result) (anonymous bool, outliers int, suppressed map[int]bool) {
	if c.classPredicate == nil {
		return true, 0, nil
	}

	type offender struct {
		order int
		class *groupify.ClassSummary
	}
	var offenders []offender
	for i, class := range result.Classes {
		if !c.classPredicate.IsAnonymous(class) {
			offenders = append(offenders, offender{order: i, class: class})
		}
	}
	if len(offenders) == 0 {
		return true, 0, nil
	}

	sort.SliceStable(offenders, func(i, j int) bool {
		return offenders[i].class.Size < offenders[j].class.Size
	})

	budget := int(math.Floor(c.suppressionLimit * float64(c.mgr.N())))
	suppressed = make(map[int]bool)
	allSuppressed := true

	for _, o := range offenders {
		if c.interrupted != nil && c.interrupted() {
			return false, outliers, suppressed
		}
		if outliers+o.class.Size <= budget {
			outliers += o.class.Size
			for _, r := range o.class.RowIDs {
				suppressed[r] = true
			}
		} else {
			allSuppressed = false
		}
	}

	return allSuppressed, outliers, suppressed
}
