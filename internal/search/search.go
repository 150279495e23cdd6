// Package search implements FLASH, the monotonicity-aware sweep over the
// generalization lattice described in spec.md §4.8.
package search

import (
	"context"
	"time"

	"github.com/rawblock/flashengine/internal/checker"
	"github.com/rawblock/flashengine/internal/lattice"
)

// Config tunes traversal per spec.md §6's search-related configuration
// options.
type Config struct {
	// PracticalMonotonicity opts into treating every predicate as monotone
	// for pruning purposes even when it does not formally guarantee it
	// (spec.md §4.8's practical-monotonicity opt-in).
	PracticalMonotonicity bool

	// ClassMonotonicity and SampleMonotonicity report the configured
	// predicates' actual monotonicity-with-generalization flags. When both
	// PracticalMonotonicity is false and a predicate is not monotone, Search
	// never prunes based on it and simply visits every node.
	ClassMonotonicity  bool
	SampleMonotonicity bool

	// HeuristicEnabled switches Search from an exhaustive sweep to a
	// best-effort one bounded by TimeLimit once the lattice exceeds
	// HeuristicThreshold nodes.
	HeuristicEnabled   bool
	HeuristicThreshold int
	TimeLimit          time.Duration
}

func (c Config) monotoneUpward() bool {
	return c.PracticalMonotonicity || (c.ClassMonotonicity && c.SampleMonotonicity)
}

// Candidate is one checked node kept for diagnostics or as the running
// best.
type Candidate struct {
	Node       []int
	Quality    float64
	Outliers   int
	Suppressed map[int]bool // row ids suppressed to make Node anonymous
}

// Result is FLASH's outcome: the optimal node (if any was found), or, on
// failure, the closest-to-anonymous nodes for diagnostics, per spec.md
// §4.8's "no solution" failure mode.
type Result struct {
	Found       bool
	Optimal     Candidate
	NoSolution  bool
	Closest     []Candidate // populated only when NoSolution
	Interrupted bool
	BestEffort  bool // true if a heuristic time limit cut the sweep short
}

// Search drives one FLASH traversal over lat using c to classify nodes.
type Search struct {
	lat *lattice.Lattice
	chk *checker.Checker
	cfg Config
}

// New builds a Search over lat, classifying nodes with chk per cfg.
func New(lat *lattice.Lattice, chk *checker.Checker, cfg Config) *Search {
	return &Search{lat: lat, chk: chk, cfg: cfg}
}

// Run performs the sweep: nodes are visited in ascending total-level order
// (spec.md §4.8's primary order), ties within a level following
// EnumerateByTotalLevel's deterministic odometer order. ctx is polled
// between node checks for cooperative cancellation (spec.md §5); it should
// be the same cancellation source the Checker itself polls, so a single
// cancel unwinds both.
func (s *Search) Run(ctx context.Context) Result {
	buckets := s.lat.EnumerateByTotalLevel()

	heuristic := s.cfg.HeuristicEnabled && s.lat.Size() > s.cfg.HeuristicThreshold
	var deadline time.Time
	if heuristic && s.cfg.TimeLimit > 0 {
		deadline = time.Now().Add(s.cfg.TimeLimit)
	}

	var best *Candidate
	var bestEffort bool
	var closest []Candidate

	for _, bucket := range buckets {
		for _, node := range bucket {
			if err := ctx.Err(); err != nil {
				return Result{Interrupted: true}
			}
			if heuristic && !deadline.IsZero() && time.Now().After(deadline) {
				bestEffort = true
				goto done
			}

			info := s.lat.Info(node)
			if info.State != lattice.Unvisited {
				continue
			}

			res := s.chk.Check(node)
			if res.Interrupted {
				return Result{Interrupted: true}
			}

			if res.Anonymous {
				info.State = lattice.CheckedAnonymous
				info.Checked = true
				info.Quality = res.Quality

				candidate := Candidate{Node: append([]int(nil), node...), Quality: res.Quality, Outliers: res.Outliers, Suppressed: res.Suppressed}
				if best == nil || isBetter(candidate, *best) {
					best = &candidate
				}

				if s.cfg.monotoneUpward() {
					s.propagateAnonymousAbove(node)
				}
			} else {
				info.State = lattice.CheckedNonAnonymous
				closest = append(closest, Candidate{Node: append([]int(nil), node...), Quality: res.Quality, Outliers: res.Outliers})

				if s.cfg.monotoneUpward() {
					s.propagateNonAnonymousBelow(node)
				}
			}
		}
	}

done:
	if best != nil {
		return Result{Found: true, Optimal: *best, BestEffort: bestEffort}
	}
	return Result{NoSolution: true, Closest: closestByOutliers(closest), BestEffort: bestEffort}
}

// isBetter reports whether a is a strictly better candidate than b:
// lower quality wins, ties broken by lexicographic level vector (smaller
// first), remaining ties by nothing further (first-seen wins), per
// spec.md §4.8's tie-breaking rule.
func isBetter(a, b Candidate) bool {
	if a.Quality != b.Quality {
		return a.Quality < b.Quality
	}
	for i := range a.Node {
		if a.Node[i] != b.Node[i] {
			return a.Node[i] < b.Node[i]
		}
	}
	return false
}

// closestByOutliers sorts diagnostic candidates by ascending outlier count
// (the simplification this implementation uses for "closest to
// anonymous") and keeps at most the 10 closest, so NoSolution diagnostics
// stay bounded.
func closestByOutliers(candidates []Candidate) []Candidate {
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].Outliers < candidates[j-1].Outliers; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	if len(candidates) > 10 {
		candidates = candidates[:10]
	}
	return candidates
}

// propagateAnonymousAbove flood-fills Inferred-Anonymous to every
// coarser, still-Unvisited node reachable from node, per F1. Nodes that
// are already non-Unvisited are not re-expanded: by induction their own
// coarser neighborhood was already flooded when they were first marked.
func (s *Search) propagateAnonymousAbove(node []int) {
	queue := s.lat.Successors(node)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		info := s.lat.Info(cur)
		if info.State != lattice.Unvisited {
			continue
		}
		info.State = lattice.InferredAnonymous
		queue = append(queue, s.lat.Successors(cur)...)
	}
}

// propagateNonAnonymousBelow flood-fills Inferred-NonAnonymous to every
// finer, still-Unvisited node reachable from node, per F2. In practice
// this rarely fires any transition: ascending total-level traversal
// already visited every finer node before node itself was checked, so
// this only matters for finer nodes outside [minLevel, maxLevel] gaps or
// left Unvisited by an earlier heuristic cutoff.
func (s *Search) propagateNonAnonymousBelow(node []int) {
	queue := s.lat.Predecessors(node)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		info := s.lat.Info(cur)
		if info.State != lattice.Unvisited {
			continue
		}
		info.State = lattice.InferredNonAnonymous
		queue = append(queue, s.lat.Predecessors(cur)...)
	}
}
