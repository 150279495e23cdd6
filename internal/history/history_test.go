package history

import (
	"testing"

	"github.com/rawblock/flashengine/internal/groupify"
	"github.com/rawblock/flashengine/internal/lattice"
)

func fakeResult(classCount int) *groupify.Result {
	r := &groupify.Result{N: classCount * 10}
	for i := 0; i < classCount; i++ {
		r.Classes = append(r.Classes, &groupify.ClassSummary{Key: uint64(i), Size: 10})
	}
	return r
}

func TestPutRejectsOversizeRelativeToDataset(t *testing.T) {
	lat, _ := lattice.New([]int{0}, []int{2})
	h := New(lat, 10, 200, 0.2, 0.8) // cap: 0.2*10 = 2 records

	ok := h.Put([]int{0}, fakeResult(5))
	if ok {
		t.Fatalf("expected admission to be rejected above the dataset-relative cap")
	}
}

func TestGetReturnsClosestAncestor(t *testing.T) {
	lat, _ := lattice.New([]int{0, 0}, []int{2, 2})
	h := New(lat, 100, 200, 1.0, 1.0)

	h.Put([]int{0, 0}, fakeResult(20))
	h.Put([]int{1, 0}, fakeResult(5))

	got := h.Get([]int{1, 1})
	if got == nil {
		t.Fatalf("expected an ancestor snapshot to be found")
	}
	if got.Node[0] != 1 || got.Node[1] != 0 {
		t.Fatalf("expected the cheaper, more specific ancestor [1,0], got %v", got.Node)
	}
}

func TestGetReturnsNilWithoutAncestor(t *testing.T) {
	lat, _ := lattice.New([]int{0}, []int{2})
	h := New(lat, 100, 200, 1.0, 1.0)
	h.Put([]int{2}, fakeResult(1))

	if got := h.Get([]int{0}); got != nil {
		t.Fatalf("expected no ancestor for [0] when only [2] is stored, got %v", got.Node)
	}
}

func TestEvictionRespectsMaxEntries(t *testing.T) {
	lat, _ := lattice.New([]int{0}, []int{5})
	h := New(lat, 100, 2, 1.0, 1.0)

	h.Put([]int{0}, fakeResult(1))
	h.Put([]int{1}, fakeResult(1))
	h.Get([]int{1}) // touch [1] so [0] becomes the LRU victim
	h.Put([]int{2}, fakeResult(1))

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (bounded by historySize)", h.Len())
	}
	if h.Get([]int{0}) != nil {
		t.Fatalf("expected [0] to have been evicted as least-recently-used")
	}
}

func TestResetClearsCache(t *testing.T) {
	lat, _ := lattice.New([]int{0}, []int{2})
	h := New(lat, 100, 200, 1.0, 1.0)
	h.Put([]int{0}, fakeResult(1))
	h.Reset()
	if h.Len() != 0 {
		t.Fatalf("expected Reset to clear the cache")
	}
}
