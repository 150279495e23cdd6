package predicate

import (
	"sort"

	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// TCloseness bounds the distance between a class's sensitive-value
// distribution and the dataset-wide distribution by T. Distance is
// measured as total variation distance over the sensitive value ids
// sorted by id — a simplified stand-in for the ordered/hierarchical Earth
// Mover's Distance the t-closeness literature defines for ordinal and
// categorical attributes respectively; both bound the same quantity (how
// much a class's distribution can diverge from the global one) and share
// t-closeness's non-monotonicity under generalization.
type TCloseness struct {
	T float64

	global map[int32]float64 // dataset-wide sensitive value frequencies, set by Initialize
}

var _ ClassPredicate = (*TCloseness)(nil)

func (p *TCloseness) Requirements() Requirements { return RequireDistribution }

func (p *TCloseness) IsAnonymous(class *groupify.ClassSummary) bool {
	if len(class.Dist) == 0 || p.global == nil {
		return false
	}
	total := 0
	for _, c := range class.Dist {
		total += c
	}
	if total == 0 {
		return false
	}

	seen := make(map[int32]bool, len(class.Dist)+len(p.global))
	for v := range class.Dist {
		seen[v] = true
	}
	for v := range p.global {
		seen[v] = true
	}
	ids := make([]int32, 0, len(seen))
	for v := range seen {
		ids = append(ids, v)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	distance := 0.0
	for _, v := range ids {
		local := float64(class.Dist[v]) / float64(total)
		glob := p.global[v]
		d := local - glob
		if d < 0 {
			d = -d
		}
		distance += d
	}
	distance /= 2 // total variation distance is half the L1 distance

	return distance <= p.T
}

// IsMonotonicWithGeneralization is false: coarsening two classes with
// complementary skew can move the merged distribution closer to, or
// further from, the global one — t-closeness is a textbook example of a
// non-monotone predicate.
func (p *TCloseness) IsMonotonicWithGeneralization() bool { return false }
func (p *TCloseness) IsMonotonicWithSuppression() bool     { return false }

func (p *TCloseness) MinimalClassSize() (int, bool) { return 0, false }

func (p *TCloseness) Initialize(mgr *data.Manager) error {
	if !mgr.HasSensitive() {
		return &ErrUnsupported{Reason: "t-closeness requires a sensitive attribute"}
	}
	if mgr.NumSensitive() > 1 {
		return &ErrUnsupported{Reason: "t-closeness over multiple sensitive attributes"}
	}
	counts := make(map[int32]int)
	total := 0
	for r := 0; r < mgr.N(); r++ {
		counts[mgr.SensitiveValue(r, 0)]++
		total++
	}
	p.global = make(map[int32]float64, len(counts))
	for v, c := range counts {
		p.global[v] = float64(c) / float64(total)
	}
	return nil
}

func (p *TCloseness) Clone(rowSubset []int) ClassPredicate {
	return &TCloseness{T: p.T, global: p.global}
}
