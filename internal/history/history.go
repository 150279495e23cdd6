// Package history is the bounded cache of per-node groupify snapshots that
// accelerates descendant checks by reusing ancestor work, per spec.md §4.6.
package history

import (
	"github.com/rawblock/flashengine/internal/groupify"
	"github.com/rawblock/flashengine/internal/lattice"
)

// Snapshot is a cached groupify result together with the node it was
// computed at, sufficient (per spec.md invariant I3) to reconstruct the
// groupify result of any descendant node.
type Snapshot struct {
	Node   []int
	Result *groupify.Result
}

// RecordCount is the snapshot's record count (one per equivalence class),
// the quantity spec.md §4.6's admission policy bounds.
func (s *Snapshot) RecordCount() int { return len(s.Result.Classes) }

type entry struct {
	snapshot   *Snapshot
	lastAccess uint64
}

// History is the bounded snapshot cache. Admission follows spec.md §4.6:
// a snapshot is admitted only if its record count is within both the
// dataset-relative and ancestor-relative caps. Eviction here uses plain
// LRU, which spec.md §4.6 explicitly permits as a correctness-preserving
// simplification of "fewest still-unchecked descendants" (only
// performance differs, not correctness).
type History struct {
	n                    int
	maxEntries           int
	snapshotSizeDataset  float64
	snapshotSizeSnapshot float64

	entries map[lattice.NodeID]*entry
	clock   uint64

	lat *lattice.Lattice
}

// New creates a History bounded to maxEntries snapshots, admission-capped
// relative to a dataset of size n.
func New(lat *lattice.Lattice, n, maxEntries int, snapshotSizeDataset, snapshotSizeSnapshot float64) *History {
	return &History{
		n:                    n,
		maxEntries:           maxEntries,
		snapshotSizeDataset:  snapshotSizeDataset,
		snapshotSizeSnapshot: snapshotSizeSnapshot,
		entries:              make(map[lattice.NodeID]*entry),
		lat:                  lat,
	}
}

// SetSize changes the maximum number of cached snapshots, evicting
// immediately if the new size is smaller than the current occupancy.
func (h *History) SetSize(maxEntries int) {
	h.maxEntries = maxEntries
	for len(h.entries) > h.maxEntries {
		h.evictOne()
	}
}

// Reset discards every cached snapshot. Called at run end per spec.md
// §4.6's Sufficiency note (this spec does not carry over the source's
// history-disabling workaround; reset() is the mandated cleanup).
func (h *History) Reset() {
	h.entries = make(map[lattice.NodeID]*entry)
	h.clock = 0
}

// Get returns the closest stored ancestor of node (any A <= node
// componentwise), preferring the ancestor with the fewest records since
// that is the cheapest to rebuild from (spec.md §4.6 Sufficiency). Ties
// on record count break on the larger lattice.NodeID. ID is increasing in
// every coordinate, so among comparable tied ancestors this picks the most
// specific one (node itself, when it is stored), and the choice does not
// depend on map iteration order: two runs over the same input must
// pick the same ancestor, or BuildFromAncestor can hand checker a
// different class insertion order and change which rows a size-sort tie
// in suppression picks (spec.md invariant I5). It returns nil if no
// stored snapshot is an ancestor of node.
func (h *History) Get(node []int) *Snapshot {
	var best *entry
	var bestID lattice.NodeID
	for id, e := range h.entries {
		if !lattice.LessEqual(e.snapshot.Node, node) {
			continue
		}
		better := best == nil
		if !better {
			rc, bestRC := e.snapshot.RecordCount(), best.snapshot.RecordCount()
			better = rc < bestRC || (rc == bestRC && id > bestID)
		}
		if better {
			best = e
			bestID = id
		}
	}
	if best == nil {
		return nil
	}
	h.clock++
	best.lastAccess = h.clock
	return best.snapshot
}

// Put admits a snapshot for node if it satisfies the dataset-relative cap
// and, for every already-stored ancestor on node's path, the
// ancestor-relative cap. It reports whether the snapshot was admitted.
func (h *History) Put(node []int, result *groupify.Result) bool {
	recordCount := len(result.Classes)

	if float64(recordCount) > h.snapshotSizeDataset*float64(h.n) {
		return false
	}
	for _, e := range h.entries {
		if lattice.LessEqual(e.snapshot.Node, node) {
			if float64(recordCount) > h.snapshotSizeSnapshot*float64(e.snapshot.RecordCount()) {
				return false
			}
		}
	}

	for len(h.entries) >= h.maxEntries {
		h.evictOne()
	}

	h.clock++
	h.entries[h.lat.ID(node)] = &entry{
		snapshot:   &Snapshot{Node: append([]int(nil), node...), Result: result},
		lastAccess: h.clock,
	}
	return true
}

// evictOne removes the least-recently-used snapshot, breaking ties on the
// smaller lattice.NodeID so that, as in Get, eviction order does not
// depend on map iteration order. No-op on an empty cache.
func (h *History) evictOne() {
	var victim lattice.NodeID
	var victimAccess uint64
	found := false
	for id, e := range h.entries {
		if !found || e.lastAccess < victimAccess || (e.lastAccess == victimAccess && id < victim) {
			victim = id
			victimAccess = e.lastAccess
			found = true
		}
	}
	if found {
		delete(h.entries, victim)
	}
}

// Len reports how many snapshots are currently cached.
func (h *History) Len() int { return len(h.entries) }
