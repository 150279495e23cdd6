package predicate

import (
	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// KMap generalizes k-anonymity to a population the sampled table is drawn
// from: a class is safe once its *estimated population-wide* size reaches
// K, even if its sample size is smaller. Without a real population table
// it degrades gracefully to plain k-anonymity over the estimated size.
type KMap struct {
	K         int
	Estimator PopulationEstimator
}

var _ ClassPredicate = (*KMap)(nil)

func (p *KMap) Requirements() Requirements { return RequireCounter }

func (p *KMap) IsAnonymous(class *groupify.ClassSummary) bool {
	return p.Estimator.Estimate(class.Size) >= float64(p.K)
}

// Monotone in both directions: the estimators are non-decreasing
// functions of sample size, so merging classes (generalization) or
// removing disclosive rows from consideration (suppression) can only
// raise the estimate.
func (p *KMap) IsMonotonicWithGeneralization() bool { return true }
func (p *KMap) IsMonotonicWithSuppression() bool     { return true }

func (p *KMap) MinimalClassSize() (int, bool) { return 0, false }

func (p *KMap) Initialize(mgr *data.Manager) error {
	if p.Estimator == nil {
		p.Estimator = UniformEstimator{SamplingFraction: 1.0}
	}
	return nil
}

func (p *KMap) Clone(rowSubset []int) ClassPredicate {
	return &KMap{K: p.K, Estimator: p.Estimator}
}
