package predicate

import (
	"math"

	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// LDiversityMode selects which flavor of ℓ-diversity a LDiversity
// predicate checks.
type LDiversityMode int

const (
	// DistinctDiversity requires at least L distinct sensitive values per
	// class.
	DistinctDiversity LDiversityMode = iota
	// EntropyDiversity requires the Shannon entropy of the per-class
	// sensitive-value distribution to reach log2(L).
	EntropyDiversity
)

// LDiversity checks ℓ-diversity over a single sensitive attribute.
// A table with more than one sensitive attribute is rejected by Initialize
// with ErrUnsupported rather than guessed at, per spec.md §9.
type LDiversity struct {
	L    int
	Mode LDiversityMode
}

var _ ClassPredicate = (*LDiversity)(nil)

func (p *LDiversity) Requirements() Requirements { return RequireDistribution }

func (p *LDiversity) IsAnonymous(class *groupify.ClassSummary) bool {
	if len(class.Dist) == 0 {
		return false // missing sensitive distribution: predicate is inapplicable, treated as non-anonymous
	}
	switch p.Mode {
	case DistinctDiversity:
		return len(class.Dist) >= p.L
	case EntropyDiversity:
		return entropy(class.Dist) >= math.Log2(float64(p.L))
	default:
		return false
	}
}

func entropy(dist map[int32]int) float64 {
	total := 0
	for _, c := range dist {
		total += c
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range dist {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// IsMonotonicWithGeneralization: distinct-diversity is monotone because
// merging two classes unions their sensitive-value sets, which cannot
// shrink the distinct count. Entropy-diversity is not guaranteed monotone
// (merging skewed classes can lower entropy), matching the well-known
// caveat around entropy ℓ-diversity.
func (p *LDiversity) IsMonotonicWithGeneralization() bool {
	return p.Mode == DistinctDiversity
}

func (p *LDiversity) IsMonotonicWithSuppression() bool {
	return p.Mode == DistinctDiversity
}

func (p *LDiversity) MinimalClassSize() (int, bool) { return p.L, true }

func (p *LDiversity) Initialize(mgr *data.Manager) error {
	if !mgr.HasSensitive() {
		return &ErrUnsupported{Reason: "l-diversity requires a sensitive attribute"}
	}
	if mgr.NumSensitive() > 1 {
		return &ErrUnsupported{Reason: "l-diversity over multiple sensitive attributes"}
	}
	return nil
}

func (p *LDiversity) Clone(rowSubset []int) ClassPredicate {
	return &LDiversity{L: p.L, Mode: p.Mode}
}
