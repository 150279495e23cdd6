// Package hierarchy builds and validates per-attribute value-generalization
// hierarchies, per spec.md §4.2.
package hierarchy

import "fmt"

// ErrNonMonotone is returned by Build when a hierarchy fails the
// monotonicity check: two values merged at level l-1 must remain merged
// at level l.
type ErrNonMonotone struct {
	Attribute string
	Level     int
}

func (e *ErrNonMonotone) Error() string {
	return fmt.Sprintf("hierarchy %q: level %d is not monotone with level %d", e.Attribute, e.Level, e.Level-1)
}

// Hierarchy is one QI attribute's forest of id->id maps, indexed by level.
// gen[l][v] is the level-l generalization of base value id v. Level 0 is
// always the identity mapping.
type Hierarchy struct {
	Attribute string
	gen       [][]int32 // gen[level][baseValueID] = generalized value id at that level
	height    int

	leafCount []map[int32]int // leafCount[level][genID] = number of base ids collapsing into genID at that level
}

// Height returns the number of levels (0..height-1) in the hierarchy.
func (h *Hierarchy) Height() int { return h.height }

// Cardinality returns the number of base (level-0) values in the domain.
func (h *Hierarchy) Cardinality() int { return len(h.gen[0]) }

// Generalize returns the level-l generalization of base value id v.
func (h *Hierarchy) Generalize(level int, v int32) int32 {
	return h.gen[level][v]
}

// LeafCount returns the number of base values that generalize to genID at
// level. Used by information-loss style quality metrics to weigh how much
// a generalized value actually obscures.
func (h *Hierarchy) LeafCount(level int, genID int32) int {
	return h.leafCount[level][genID]
}

// Build constructs a Hierarchy from a (height x cardinality) matrix of
// generalized value ids, where levels[0][v] == v for every base id v
// (level 0 is the identity). It validates monotonicity: for every base id
// v and level l >= 1, the value at level l must be determined by the value
// at level l-1 alone (two base ids sharing a level l-1 generalization must
// share the same level l generalization). This guarantees spec.md's
// invariant I1, which Groupify's snapshot path depends on when it
// re-generalizes an ancestor class's base representative to a coarser
// node.
func Build(attribute string, levels [][]int32) (*Hierarchy, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("hierarchy %q: at least one level (identity) is required", attribute)
	}
	cardinality := len(levels[0])
	for v := 0; v < cardinality; v++ {
		if levels[0][v] != int32(v) {
			return nil, fmt.Errorf("hierarchy %q: level 0 must be the identity mapping", attribute)
		}
	}

	for l := 1; l < len(levels); l++ {
		if len(levels[l]) != cardinality {
			return nil, fmt.Errorf("hierarchy %q: level %d has %d entries, want %d", attribute, l, len(levels[l]), cardinality)
		}
		// mergedUnder[prevGenID] = the level-l value every base id mapping to
		// prevGenID at level l-1 must share.
		mergedUnder := make(map[int32]int32)
		for v := 0; v < cardinality; v++ {
			prev := levels[l-1][v]
			cur := levels[l][v]
			if existing, seen := mergedUnder[prev]; seen {
				if existing != cur {
					return nil, &ErrNonMonotone{Attribute: attribute, Level: l}
				}
			} else {
				mergedUnder[prev] = cur
			}
		}
	}

	leafCount := make([]map[int32]int, len(levels))
	for l := range levels {
		counts := make(map[int32]int)
		for v := 0; v < cardinality; v++ {
			counts[levels[l][v]]++
		}
		leafCount[l] = counts
	}

	return &Hierarchy{Attribute: attribute, gen: levels, height: len(levels), leafCount: leafCount}, nil
}

// Set is the collection of per-QI-attribute hierarchies used by one run,
// indexed in QI column order.
type Set struct {
	byCol []*Hierarchy
}

// NewSet assembles a Set from per-column hierarchies, in QI column order.
func NewSet(hierarchies []*Hierarchy) *Set {
	return &Set{byCol: hierarchies}
}

// Height returns the hierarchy height for QI column c.
func (s *Set) Height(c int) int { return s.byCol[c].Height() }

// NumAttributes returns the number of QI attributes this set covers.
func (s *Set) NumAttributes() int { return len(s.byCol) }

// Generalize returns the level-L generalization of QI column c's base
// value v.
func (s *Set) Generalize(c int, level int, v int32) int32 {
	return s.byCol[c].Generalize(level, v)
}

// Cardinality returns the domain size of QI column c.
func (s *Set) Cardinality(c int) int { return s.byCol[c].Cardinality() }

// LeafCount returns the number of base values collapsing into genID at
// level, for QI column c.
func (s *Set) LeafCount(c int, level int, genID int32) int {
	return s.byCol[c].LeafCount(level, genID)
}
