package lattice

import "testing"

func TestNewRejectsExcessiveDimensionality(t *testing.T) {
	min := make([]int, 16)
	max := make([]int, 16)
	if _, err := New(min, max); err == nil {
		t.Fatalf("expected rejection of 16 quasi-identifiers")
	}
}

func TestIDRoundTrip(t *testing.T) {
	l, err := New([]int{0, 0}, []int{1, 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, node := range [][]int{{0, 0}, {1, 2}, {0, 1}, {1, 0}} {
		id := l.ID(node)
		back := l.FromID(id)
		for i := range node {
			if node[i] != back[i] {
				t.Fatalf("FromID(ID(%v)) = %v", node, back)
			}
		}
	}
}

func TestSizeMatchesBoundedProduct(t *testing.T) {
	l, err := New([]int{0, 1}, []int{2, 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// attribute 0: levels 0,1,2 -> 3; attribute 1: levels 1,2,3 -> 3
	if got := l.Size(); got != 9 {
		t.Fatalf("Size() = %d, want 9", got)
	}
}

func TestSuccessorsStayInBounds(t *testing.T) {
	l, err := New([]int{0, 0}, []int{1, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	succ := l.Successors([]int{1, 0})
	if len(succ) != 1 || succ[0][0] != 1 || succ[0][1] != 1 {
		t.Fatalf("Successors([1,0]) = %v, want [[1,1]]", succ)
	}
}

func TestLessEqual(t *testing.T) {
	if !LessEqual([]int{0, 1}, []int{1, 1}) {
		t.Fatalf("expected [0,1] <= [1,1]")
	}
	if LessEqual([]int{1, 0}, []int{0, 1}) {
		t.Fatalf("expected [1,0] not<= [0,1]")
	}
}

func TestEnumerateByTotalLevelCoversEveryNode(t *testing.T) {
	l, err := New([]int{0, 0}, []int{1, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buckets := l.EnumerateByTotalLevel()
	total := 0
	for _, b := range buckets {
		total += len(b)
	}
	if total != l.Size() {
		t.Fatalf("enumerated %d nodes, want %d", total, l.Size())
	}
	if len(buckets[0]) != 1 || len(buckets[2]) != 1 {
		t.Fatalf("expected single bottom and single top bucket, got %v", buckets)
	}
}

func TestInfoDefaultsToUnvisited(t *testing.T) {
	l, _ := New([]int{0}, []int{1})
	info := l.Info([]int{0})
	if info.State != Unvisited {
		t.Fatalf("expected default state Unvisited, got %v", info.State)
	}
	info.State = CheckedAnonymous
	if l.Info([]int{0}).State != CheckedAnonymous {
		t.Fatalf("expected Info to return the same mutable entry on repeat access")
	}
}
