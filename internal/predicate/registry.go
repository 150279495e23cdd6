package predicate

import (
	"fmt"

	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
	"github.com/rawblock/flashengine/pkg/models"
)

// Built is the outcome of constructing one predicate from a
// models.PredicateSpec: exactly one of Class or Sample is set, matching
// spec.md §6's split between class-based and sample-based predicates.
type Built struct {
	Class  ClassPredicate
	Sample SamplePredicate
}

// Build constructs a concrete predicate from a wire-level spec. Unknown
// kinds return ErrUnsupported rather than being silently ignored, per
// spec.md §7's preference for loud failure over guessed behavior.
func Build(spec models.PredicateSpec) (Built, error) {
	switch spec.Kind {
	case "k-anonymity":
		return Built{Class: &KAnonymity{K: int(spec.Params["k"])}}, nil

	case "l-diversity":
		mode := DistinctDiversity
		if spec.Params["mode"] == 1 {
			mode = EntropyDiversity
		}
		return Built{Class: &LDiversity{L: int(spec.Params["l"]), Mode: mode}}, nil

	case "t-closeness":
		return Built{Class: &TCloseness{T: spec.Params["t"]}}, nil

	case "delta-disclosure":
		return Built{Class: &DeltaDisclosure{Delta: spec.Params["delta"]}}, nil

	case "d-presence":
		return Built{Class: &DPresence{
			DMin:      spec.Params["dMin"],
			DMax:      spec.Params["dMax"],
			Estimator: estimatorFrom(spec.Params),
		}}, nil

	case "k-map":
		return Built{Class: &KMap{
			K:         int(spec.Params["k"]),
			Estimator: estimatorFrom(spec.Params),
		}}, nil

	case "differential-privacy":
		return Built{Sample: &DifferentialPrivacyBound{
			Epsilon: spec.Params["epsilon"],
			Delta:   spec.Params["delta"],
		}}, nil

	default:
		return Built{}, &ErrUnsupported{Reason: fmt.Sprintf("unknown predicate kind %q", spec.Kind)}
	}
}

func estimatorFrom(params map[string]float64) PopulationEstimator {
	fraction := params["samplingFraction"]
	if fraction <= 0 {
		fraction = 1.0
	}
	if params["estimator"] == 1 {
		return PoissonEstimator{SamplingFraction: fraction}
	}
	return UniformEstimator{SamplingFraction: fraction}
}

// ClassSet AND-combines a set of class-based predicates into one: a class
// is anonymous only if every member predicate agrees. Its Requirements is
// the union of the members', its monotonicity flags are the AND of the
// members' (a conjunction is monotone only if every conjunct is), and its
// MinimalClassSize is the tightest (largest) bound any member states, when
// at least one member states one.
type ClassSet struct {
	Members []ClassPredicate
}

var _ ClassPredicate = (*ClassSet)(nil)

func (s *ClassSet) Requirements() Requirements {
	var r Requirements
	for _, m := range s.Members {
		r |= m.Requirements()
	}
	return r
}

func (s *ClassSet) IsAnonymous(class *groupify.ClassSummary) bool {
	for _, m := range s.Members {
		if !m.IsAnonymous(class) {
			return false
		}
	}
	return true
}

func (s *ClassSet) IsMonotonicWithGeneralization() bool {
	for _, m := range s.Members {
		if !m.IsMonotonicWithGeneralization() {
			return false
		}
	}
	return true
}

func (s *ClassSet) IsMonotonicWithSuppression() bool {
	for _, m := range s.Members {
		if !m.IsMonotonicWithSuppression() {
			return false
		}
	}
	return true
}

func (s *ClassSet) MinimalClassSize() (int, bool) {
	best := 0
	found := false
	for _, m := range s.Members {
		size, ok := m.MinimalClassSize()
		if !ok {
			continue
		}
		found = true
		if size > best {
			best = size
		}
	}
	return best, found
}

func (s *ClassSet) Initialize(mgr *data.Manager) error {
	for _, m := range s.Members {
		if err := m.Initialize(mgr); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClassSet) Clone(rowSubset []int) ClassPredicate {
	cloned := make([]ClassPredicate, len(s.Members))
	for i, m := range s.Members {
		cloned[i] = m.Clone(rowSubset)
	}
	return &ClassSet{Members: cloned}
}

// SampleSet AND-combines sample-based predicates: the result is anonymous
// only if every member is, and the must-suppress set is the union across
// members (suppressing a row any one predicate flags is sufficient to
// satisfy that predicate; the union satisfies all of them at once).
type SampleSet struct {
	Members []SamplePredicate
}

func (s *SampleSet) Requirements() Requirements {
	var r Requirements
	for _, m := range s.Members {
		r |= m.Requirements()
	}
	return r
}

func (s *SampleSet) Evaluate(result *groupify.Result) SampleVerdict {
	verdict := SampleVerdict{Anonymous: true, MustSuppress: make(map[int]bool)}
	for _, m := range s.Members {
		v := m.Evaluate(result)
		if !v.Anonymous {
			verdict.Anonymous = false
		}
		for r := range v.MustSuppress {
			verdict.MustSuppress[r] = true
		}
	}
	return verdict
}

func (s *SampleSet) IsMonotonicWithGeneralization() bool {
	for _, m := range s.Members {
		if !m.IsMonotonicWithGeneralization() {
			return false
		}
	}
	return true
}

func (s *SampleSet) IsMonotonicWithSuppression() bool {
	for _, m := range s.Members {
		if !m.IsMonotonicWithSuppression() {
			return false
		}
	}
	return true
}

func (s *SampleSet) Initialize(mgr *data.Manager) error {
	for _, m := range s.Members {
		if err := m.Initialize(mgr); err != nil {
			return err
		}
	}
	return nil
}

// BuildAll constructs every predicate in specs and partitions them into a
// combined ClassSet and SampleSet, either of which may be empty.
func BuildAll(specs []models.PredicateSpec) (*ClassSet, *SampleSet, error) {
	classes := &ClassSet{}
	samples := &SampleSet{}
	for _, spec := range specs {
		built, err := Build(spec)
		if err != nil {
			return nil, nil, err
		}
		if built.Class != nil {
			classes.Members = append(classes.Members, built.Class)
		}
		if built.Sample != nil {
			samples.Members = append(samples.Members, built.Sample)
		}
	}
	return classes, samples, nil
}
