package predicate

import (
	"math"

	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// DifferentialPrivacyBound is a syntactic bound check, not a DP mechanism
// (statistical/learning-based disclosure control is out of scope; this
// bound predicate is not). It models generalization as a
// randomized-response-style mechanism whose
// implied privacy loss epsilon is driven by the smallest surviving
// equivalence class: an attacker who observes a class of size m can
// distinguish its members with advantage on the order of 1/m, so
// epsilon_achieved = ln(1/samplingProbability) is approximated here as
// 1/m. Classes smaller than ceil(1/Epsilon) are flagged for suppression;
// the predicate accepts the node if suppressing them keeps the
// must-suppress fraction within Delta.
type DifferentialPrivacyBound struct {
	Epsilon float64
	Delta   float64
}

var _ SamplePredicate = (*DifferentialPrivacyBound)(nil)

func (p *DifferentialPrivacyBound) Requirements() Requirements { return RequireCounter }

func (p *DifferentialPrivacyBound) Evaluate(result *groupify.Result) SampleVerdict {
	if p.Epsilon <= 0 {
		return SampleVerdict{Anonymous: false}
	}
	threshold := int(math.Ceil(1.0 / p.Epsilon))

	mustSuppress := make(map[int]bool)
	violating := 0
	for _, class := range result.Classes {
		if class.Size < threshold {
			violating += class.Size
			for _, r := range class.RowIDs {
				mustSuppress[r] = true
			}
		}
	}

	allowedViolations := int(math.Floor(p.Delta * float64(result.N)))
	anonymous := violating <= allowedViolations

	return SampleVerdict{Anonymous: anonymous, MustSuppress: mustSuppress}
}

// Monotone in both directions: generalizing or suppressing rows can only
// grow the smallest surviving class, never shrink it.
func (p *DifferentialPrivacyBound) IsMonotonicWithGeneralization() bool { return true }
func (p *DifferentialPrivacyBound) IsMonotonicWithSuppression() bool     { return true }

func (p *DifferentialPrivacyBound) Initialize(mgr *data.Manager) error { return nil }
