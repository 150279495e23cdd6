package hierarchy

import "testing"

// ages: 25, 27, 29, 31, 40 encoded as ids 1..5 with id 0 reserved for the
// suppression sentinel at the dictionary layer. Here we test the hierarchy
// in isolation over ids 0..4 (no dictionary coupling).
func buildAgeHierarchy(t *testing.T) *Hierarchy {
	t.Helper()
	// 5 base values: id0=25 id1=27 id2=29 id3=31 id4=40
	level0 := []int32{0, 1, 2, 3, 4}
	// L1: {25,27,29} -> id5 ("<30"), {31,40} -> id6 (">=30")
	level1 := []int32{5, 5, 5, 6, 6}

	h, err := Build("age", [][]int32{level0, level1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return h
}

func TestBuildAcceptsMonotoneHierarchy(t *testing.T) {
	h := buildAgeHierarchy(t)
	if h.Height() != 2 {
		t.Fatalf("Height() = %d, want 2", h.Height())
	}
	if h.Generalize(1, 0) != h.Generalize(1, 1) {
		t.Fatalf("expected 25 and 27 to merge at level 1")
	}
	if h.Generalize(1, 0) == h.Generalize(1, 3) {
		t.Fatalf("expected <30 and >=30 groups to stay distinct at level 1")
	}
}

func TestBuildRejectsNonMonotoneHierarchy(t *testing.T) {
	level0 := []int32{0, 1, 2, 3}
	// id0,id1 merge to 4; id2,id3 merge to 5 — monotone so far.
	level1 := []int32{4, 4, 5, 5}
	// Violation: id0 and id1 shared level-1 value 4, but split again here.
	level2 := []int32{6, 7, 6, 7}

	_, err := Build("bad", [][]int32{level0, level1, level2})
	if err == nil {
		t.Fatalf("expected non-monotone hierarchy to be rejected")
	}
	var nmErr *ErrNonMonotone
	if !asNonMonotone(err, &nmErr) {
		t.Fatalf("expected ErrNonMonotone, got %T: %v", err, err)
	}
}

func asNonMonotone(err error, target **ErrNonMonotone) bool {
	if e, ok := err.(*ErrNonMonotone); ok {
		*target = e
		return true
	}
	return false
}

func TestBuildRejectsNonIdentityLevelZero(t *testing.T) {
	level0 := []int32{1, 0} // swapped, not identity
	_, err := Build("bad", [][]int32{level0})
	if err == nil {
		t.Fatalf("expected rejection of non-identity level 0")
	}
}

func TestSetGeneralize(t *testing.T) {
	age := buildAgeHierarchy(t)
	s := NewSet([]*Hierarchy{age})

	if s.NumAttributes() != 1 {
		t.Fatalf("NumAttributes() = %d, want 1", s.NumAttributes())
	}
	if s.Generalize(0, 0, 3) != 3 {
		t.Fatalf("level 0 must be identity")
	}
}
