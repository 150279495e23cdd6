package engine

import (
	"fmt"

	"github.com/rawblock/flashengine/internal/dict"
	"github.com/rawblock/flashengine/internal/hierarchy"
	"github.com/rawblock/flashengine/pkg/models"
)

// dict.Intern reserves id 0 in every column for the suppression sentinel,
// so the first real value interned in a column gets id 1, not 0. Every
// hierarchy level array built here therefore carries one extra leading
// slot for that sentinel (mapping to itself at every level) so a QI
// value's raw dictionary id can always index straight into it.

// buildHierarchies interns every RawHierarchy's level-0 strings first, in
// order, so the per-column dictionary assigns base ids 1..cardinality
// exactly matching each hierarchy's own domain ordering (satisfying
// hierarchy.Build's identity requirement for level 0 without a second
// pass). Higher levels are interned afterward into the same per-column
// dictionary slot, so repeated generalized strings collapse to the same
// id and new ones extend the column's id space past the base cardinality.
// This must run before the raw table itself is encoded, so table values
// that already appear in a hierarchy resolve to the ids the hierarchy
// just established.
func buildHierarchies(d *dict.Dictionary, cols []models.Column, raw []models.RawHierarchy) ([]*hierarchy.Hierarchy, []int, []int, error) {
	byName := make(map[string]models.RawHierarchy, len(raw))
	for _, h := range raw {
		byName[h.Attribute] = h
	}

	var out []*hierarchy.Hierarchy
	var minLevel, maxLevel []int

	for col, c := range cols {
		if c.Role != models.RoleQuasi {
			continue
		}
		rh, ok := byName[c.Name]
		if !ok {
			return nil, nil, nil, fmt.Errorf("%w: quasi-identifier %q has no hierarchy", ErrInvalidInput, c.Name)
		}
		if len(rh.Levels) == 0 {
			return nil, nil, nil, fmt.Errorf("%w: hierarchy %q has no levels", ErrInvalidHierarchy, c.Name)
		}

		cardinality := len(rh.Levels[0])
		levels := make([][]int32, len(rh.Levels))
		for l := range levels {
			levels[l] = make([]int32, cardinality+1)
		}
		for v, s := range rh.Levels[0] {
			id := d.Intern(col, s)
			if int(id) != v+1 {
				return nil, nil, nil, fmt.Errorf("%w: hierarchy %q level 0 value %q was already interned as a different id; level 0 must list each base value exactly once and in the same order the table uses", ErrInvalidHierarchy, c.Name, s)
			}
			levels[0][v+1] = id
		}
		for l := 1; l < len(rh.Levels); l++ {
			if len(rh.Levels[l]) != cardinality {
				return nil, nil, nil, fmt.Errorf("%w: hierarchy %q level %d has %d entries, want %d", ErrInvalidHierarchy, c.Name, l, len(rh.Levels[l]), cardinality)
			}
			for v, s := range rh.Levels[l] {
				levels[l][v+1] = d.Intern(col, s)
			}
		}

		h, err := hierarchy.Build(c.Name, levels)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHierarchy, err)
		}
		out = append(out, h)
		minLevel = append(minLevel, 0)
		maxLevel = append(maxLevel, h.Height()-1)
	}

	return out, minLevel, maxLevel, nil
}
