package predicate

import (
	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// KAnonymity requires every equivalence class to contain at least K rows.
// It is the simplest class-based predicate: it needs only the class size
// (Counter), and is monotone with both generalization and suppression —
// coarsening or removing rows from consideration can only grow or hold
// steady the size of the classes that remain.
type KAnonymity struct {
	K int
}

var _ ClassPredicate = (*KAnonymity)(nil)

func (p *KAnonymity) Requirements() Requirements { return RequireCounter }

func (p *KAnonymity) IsAnonymous(class *groupify.ClassSummary) bool {
	return class.Size >= p.K
}

func (p *KAnonymity) IsMonotonicWithGeneralization() bool { return true }
func (p *KAnonymity) IsMonotonicWithSuppression() bool     { return true }

func (p *KAnonymity) MinimalClassSize() (int, bool) { return p.K, true }

func (p *KAnonymity) Initialize(mgr *data.Manager) error { return nil }

func (p *KAnonymity) Clone(rowSubset []int) ClassPredicate {
	return &KAnonymity{K: p.K}
}
