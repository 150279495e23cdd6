package predicate

import (
	"math"

	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// DeltaDisclosure bounds how much a class's sensitive-value frequencies
// may diverge, in log-ratio terms, from the dataset-wide frequencies:
// for every sensitive value v, |ln(P_class(v)/P_global(v))| <= Delta.
// This is the ratio-of-belief formalization the name comes from (an
// attacker's posterior belief about v, given the class, cannot shift by
// more than a factor of e^Delta from the prior).
type DeltaDisclosure struct {
	Delta float64

	global map[int32]float64
}

var _ ClassPredicate = (*DeltaDisclosure)(nil)

func (p *DeltaDisclosure) Requirements() Requirements { return RequireDistribution }

func (p *DeltaDisclosure) IsAnonymous(class *groupify.ClassSummary) bool {
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

	bound := math.Exp(p.Delta)
	for v, c := range class.Dist {
		local := float64(c) / float64(total)
		glob := p.global[v]
		if glob <= 0 {
			return false // sensitive value present locally but absent globally: unbounded ratio
		}
		ratio := local / glob
		if ratio > bound || ratio < 1/bound {
			return false
		}
	}
	return true
}

// Not monotone: merging a skewed class into a balanced one can push a
// previously bounded ratio outside the envelope just as easily as pull
// one back in.
func (p *DeltaDisclosure) IsMonotonicWithGeneralization() bool { return false }
func (p *DeltaDisclosure) IsMonotonicWithSuppression() bool     { return false }

func (p *DeltaDisclosure) MinimalClassSize() (int, bool) { return 0, false }

func (p *DeltaDisclosure) Initialize(mgr *data.Manager) error {
	if !mgr.HasSensitive() {
		return &ErrUnsupported{Reason: "delta-disclosure requires a sensitive attribute"}
	}
	if mgr.NumSensitive() > 1 {
		return &ErrUnsupported{Reason: "delta-disclosure over multiple sensitive attributes"}
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

func (p *DeltaDisclosure) Clone(rowSubset []int) ClassPredicate {
	return &DeltaDisclosure{Delta: p.Delta, global: p.global}
}
