// Package groupify partitions row ids into equivalence classes keyed by
// the generalized quasi-identifier tuple, per spec.md §4.5.
package groupify

import (
	"github.com/rawblock/flashengine/internal/data"
)

// Requirements is the predicate/metric capability mask from spec.md §6:
// what a groupify result must carry for the predicates and metric
// evaluating it.
type Requirements uint8

const (
	Counter          Requirements = 1 << iota // class size only
	SecondaryCounter                          // one extra per-class counter slot
	Distribution                              // per-class sensitive-value multiset
)

// Has reports whether the mask includes flag.
func (r Requirements) Has(flag Requirements) bool { return r&flag != 0 }

// ClassSummary is one equivalence class: its generalized-tuple key, a
// representative row's BASE quasi-identifier tuple (sufficient to
// re-generalize this class to any coarser node — see Hierarchy.Generalize,
// which maps a base id to any level directly), its size, the row ids it
// contains, and — when requested — its sensitive-value distribution and a
// secondary counter slot.
type ClassSummary struct {
	Key       uint64
	Repr      []int32
	Size      int
	RowIDs    []int
	Dist      map[int32]int // sensitive value id -> count; nil unless Distribution requested
	Secondary int
}

// Result is one node's groupify result: its classes in stable insertion
// order, the level vector it was computed at, and the row count it was
// built over. Node lets quality metrics re-derive each class's generalized
// QI tuple from its base-level Repr without threading the level vector
// through every call site.
type Result struct {
	Node    []int
	Classes []*ClassSummary
	N       int
}

// classKey hashes a generalized QI tuple into a dense uint64 via FNV-1a
// folded over each coordinate. Collisions would merge two distinct
// equivalence classes; callers needing certainty can compare the full
// tuple, but the hash space (2^64 over at most 15 small coordinates) makes
// this practically exact, matching the "hash-based grouping" spec.md §4.5
// calls for.
func classKey(tuple []int32) uint64 {
	var h uint64 = 1469598103934665603 // FNV offset basis
	for _, v := range tuple {
		h ^= uint64(uint32(v))
		h *= 1099511628211 // FNV prime
	}
	return h
}

// transform computes T_L(r): the generalized QI tuple of row r at node.
func transform(mgr *data.Manager, node []int, r int) []int32 {
	d := mgr.D()
	tuple := make([]int32, d)
	for i := 0; i < d; i++ {
		base := mgr.QIValue(r, i)
		tuple[i] = mgr.Hierarchies().Generalize(i, node[i], base)
	}
	return tuple
}

// BuildFromScratch builds node's groupify result by scanning every row of
// the encoded table. Insertion order is the row scan order, matching
// spec.md §4.5's reproducibility requirement.
func BuildFromScratch(mgr *data.Manager, node []int, reqs Requirements) *Result {
	n := mgr.N()
	index := make(map[uint64]*ClassSummary, n)
	result := &Result{Node: append([]int(nil), node...), N: n}

	for r := 0; r < n; r++ {
		tuple := transform(mgr, node, r)
		key := classKey(tuple)
		class, ok := index[key]
		if !ok {
			repr := make([]int32, mgr.D())
			for i := 0; i < mgr.D(); i++ {
				repr[i] = mgr.QIValue(r, i)
			}
			class = &ClassSummary{Key: key, Repr: repr}
			index[key] = class
			result.Classes = append(result.Classes, class)
		}
		class.Size++
		class.RowIDs = append(class.RowIDs, r)

		if reqs.Has(Distribution) && mgr.HasSensitive() {
			if class.Dist == nil {
				class.Dist = make(map[int32]int)
			}
			class.Dist[mgr.SensitiveValue(r, 0)]++
		}
	}

	return result
}

// BuildFromAncestor reconstructs node's groupify result from an ancestor's
// cached result without rescanning raw rows, per spec.md §4.5's
// build-from-snapshot algorithm. ancestor must satisfy ancestorLevel <=
// node componentwise (spec.md invariant I1); callers (internal/history)
// are responsible for only supplying true ancestors.
func BuildFromAncestor(mgr *data.Manager, node []int, ancestor *Result, reqs Requirements) *Result {
	index := make(map[uint64]*ClassSummary, len(ancestor.Classes))
	result := &Result{Node: append([]int(nil), node...), N: ancestor.N}

	for _, aClass := range ancestor.Classes {
		tuple := make([]int32, mgr.D())
		for i := 0; i < mgr.D(); i++ {
			tuple[i] = mgr.Hierarchies().Generalize(i, node[i], aClass.Repr[i])
		}
		key := classKey(tuple)

		class, ok := index[key]
		if !ok {
			class = &ClassSummary{Key: key, Repr: aClass.Repr}
			index[key] = class
			result.Classes = append(result.Classes, class)
		}
		class.Size += aClass.Size
		class.RowIDs = append(class.RowIDs, aClass.RowIDs...)

		if reqs.Has(Distribution) && aClass.Dist != nil {
			if class.Dist == nil {
				class.Dist = make(map[int32]int)
			}
			for v, c := range aClass.Dist {
				class.Dist[v] += c
			}
		}
	}

	return result
}
