package predicate

import (
	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// DPresence bounds the fraction of an estimated population-wide
// equivalence class that the sampled (research) table actually contains,
// delta = |research class| / |population class|, to the range
// [DMin, DMax].
type DPresence struct {
	DMin, DMax float64
	Estimator  PopulationEstimator
}

var _ ClassPredicate = (*DPresence)(nil)

func (p *DPresence) Requirements() Requirements { return RequireCounter }

func (p *DPresence) IsAnonymous(class *groupify.ClassSummary) bool {
	popEstimate := p.Estimator.Estimate(class.Size)
	if popEstimate <= 0 {
		return false
	}
	delta := float64(class.Size) / popEstimate
	return delta >= p.DMin && delta <= p.DMax
}

// Neither monotonicity direction holds in general: generalizing can merge
// a well-hidden class into one that is disclosive in the population, and
// vice versa, since the population-side denominator moves independently
// of the sample-side numerator.
func (p *DPresence) IsMonotonicWithGeneralization() bool { return false }
func (p *DPresence) IsMonotonicWithSuppression() bool     { return false }

func (p *DPresence) MinimalClassSize() (int, bool) { return 0, false }

func (p *DPresence) Initialize(mgr *data.Manager) error {
	if p.Estimator == nil {
		p.Estimator = UniformEstimator{SamplingFraction: 1.0}
	}
	return nil
}

func (p *DPresence) Clone(rowSubset []int) ClassPredicate {
	return &DPresence{DMin: p.DMin, DMax: p.DMax, Estimator: p.Estimator}
}
