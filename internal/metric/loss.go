package metric

import (
	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

const defaultAttributeWeight = 0.5

// Loss is the generalized information loss metric: for each cell, the
// fraction of the attribute's domain a generalized value collapses
// (leaves-under-value - 1) / (domain size - 1), averaged across
// quasi-identifiers using per-attribute Weights (default 0.5), averaged
// across rows via class size. The result is in [0, 1]; 0 means no
// generalization occurred, 1 means every attribute was generalized to its
// single root value.
type Loss struct {
	Weights map[string]float64

	mgr *data.Manager
}

var _ Metric = (*Loss)(nil)

func (m *Loss) weight(attr string) float64 {
	if m.Weights == nil {
		return defaultAttributeWeight
	}
	if w, ok := m.Weights[attr]; ok {
		return w
	}
	return defaultAttributeWeight
}

func (m *Loss) Initialize(mgr *data.Manager) error {
	m.mgr = mgr
	return nil
}

func (m *Loss) Evaluate(result *groupify.Result) float64 {
	if result.N == 0 {
		return 0
	}
	d := m.mgr.D()
	hs := m.mgr.Hierarchies()

	totalLoss := 0.0
	for _, class := range result.Classes {
		cellLoss := 0.0
		totalWeight := 0.0
		for i := 0; i < d; i++ {
			w := m.weight(m.mgr.QIName(i))
			level := result.Node[i]
			genID := hs.Generalize(i, level, class.Repr[i])
			// Cardinality counts dict's reserved suppression sentinel as an
			// extra id (see internal/engine's buildHierarchies), so the real
			// domain size is one less.
			domainSize := hs.Cardinality(i) - 1

			var loss float64
			if domainSize > 1 {
				leaves := hs.LeafCount(i, level, genID)
				loss = float64(leaves-1) / float64(domainSize-1)
			}

			cellLoss += w * loss
			totalWeight += w
		}
		if totalWeight > 0 {
			cellLoss /= totalWeight
		}
		totalLoss += cellLoss * float64(class.Size)
	}

	return totalLoss / float64(result.N)
}

// LowerBound is unsupported: a tight bound on generalized information loss
// requires knowing which base values a node's classes actually contain,
// which is exactly what a full groupify computes.
func (m *Loss) LowerBound(node []int) (float64, bool) { return 0, false }

// IsMonotonic: generalized information loss is non-decreasing as any
// attribute's level increases, a standard property of the metric
// (coarsening a value can only grow or hold steady the leaf count under
// it). Suppression replaces a cell with the maximal-loss sentinel, which
// does not break the non-decreasing property either.
func (m *Loss) IsMonotonic(suppressionLimit float64) bool { return true }
