package predicate

import (
	"testing"

	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/dict"
	"github.com/rawblock/flashengine/internal/groupify"
	"github.com/rawblock/flashengine/internal/hierarchy"
	"github.com/rawblock/flashengine/pkg/models"
)

// buildManagerWithSensitive reproduces the S1/S2/S3 age scenario and adds a
// sensitive "diagnosis" column so the distribution-based predicates have
// something to evaluate.
func buildManagerWithSensitive(t *testing.T) *data.Manager {
	t.Helper()
	d := dict.New(2, "*")
	rows := [][]string{
		{"25", "flu"}, {"27", "flu"}, {"29", "cold"}, {"31", "flu"}, {"40", "cold"},
	}
	enc := dict.Encode(d, rows)
	cols := []models.Column{
		{Name: "age", Role: models.RoleQuasi},
		{Name: "diagnosis", Role: models.RoleSensitive},
	}

	// index 0 is dict's reserved suppression sentinel; real ids start at 1
	// in the order the age strings first appear above.
	level0 := []int32{0, 1, 2, 3, 4, 5}
	level1 := []int32{0, 6, 6, 6, 7, 7}
	h, err := hierarchy.Build("age", [][]int32{level0, level1})
	if err != nil {
		t.Fatalf("Build hierarchy: %v", err)
	}

	mgr, err := data.Build(enc, d, cols, []*hierarchy.Hierarchy{h}, []int{0}, []int{1})
	if err != nil {
		t.Fatalf("Build manager: %v", err)
	}
	return mgr
}

func TestKAnonymityAcceptsAtThreshold(t *testing.T) {
	mgr := buildManagerWithSensitive(t)
	res := groupify.BuildFromScratch(mgr, []int{1}, groupify.Counter)

	p := &KAnonymity{K: 2}
	if err := p.Initialize(mgr); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	for _, class := range res.Classes {
		if !p.IsAnonymous(class) {
			t.Fatalf("class of size %d should satisfy k=2", class.Size)
		}
	}

	strict := &KAnonymity{K: 4}
	anyFail := false
	for _, class := range res.Classes {
		if !strict.IsAnonymous(class) {
			anyFail = true
		}
	}
	if !anyFail {
		t.Fatalf("expected at least one class to fail k=4 against sizes [2,3]")
	}
}

func TestLDiversityDistinctRequiresSensitiveAttribute(t *testing.T) {
	d := dict.New(1, "*")
	rows := [][]string{{"25"}, {"27"}}
	enc := dict.Encode(d, rows)
	cols := []models.Column{{Name: "age", Role: models.RoleQuasi}}
	level0 := []int32{0, 1, 2}
	h, err := hierarchy.Build("age", [][]int32{level0})
	if err != nil {
		t.Fatalf("Build hierarchy: %v", err)
	}
	mgr, err := data.Build(enc, d, cols, []*hierarchy.Hierarchy{h}, []int{0}, []int{0})
	if err != nil {
		t.Fatalf("Build manager: %v", err)
	}

	p := &LDiversity{L: 2, Mode: DistinctDiversity}
	if err := p.Initialize(mgr); err == nil {
		t.Fatalf("expected ErrUnsupported for a table with no sensitive attribute")
	}
}

func TestLDiversityDistinctCountsDistinctValues(t *testing.T) {
	mgr := buildManagerWithSensitive(t)
	res := groupify.BuildFromScratch(mgr, []int{1}, groupify.Distribution)

	p := &LDiversity{L: 2, Mode: DistinctDiversity}
	if err := p.Initialize(mgr); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	for _, class := range res.Classes {
		want := len(class.Dist) >= 2
		got := p.IsAnonymous(class)
		if got != want {
			t.Fatalf("class dist %v: IsAnonymous=%v, want %v", class.Dist, got, want)
		}
	}
}

func TestTClosenessMaximalBoundAcceptsEveryClass(t *testing.T) {
	mgr := buildManagerWithSensitive(t)
	res := groupify.BuildFromScratch(mgr, []int{0}, groupify.Distribution)

	p := &TCloseness{T: 1.0}
	if err := p.Initialize(mgr); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	for _, class := range res.Classes {
		if !p.IsAnonymous(class) {
			t.Fatalf("T=1.0 (maximal TVD bound) should accept every class")
		}
	}
}

func TestTClosenessRejectsZeroToleranceOnSkewedClass(t *testing.T) {
	mgr := buildManagerWithSensitive(t)
	res := groupify.BuildFromScratch(mgr, []int{1}, groupify.Distribution)

	p := &TCloseness{T: 0}
	if err := p.Initialize(mgr); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	anyReject := false
	for _, class := range res.Classes {
		if !p.IsAnonymous(class) {
			anyReject = true
		}
	}
	if !anyReject {
		t.Fatalf("expected at least one class to diverge from the global distribution at T=0")
	}
}

func TestDeltaDisclosureRejectsSingletonsAtNearZeroDelta(t *testing.T) {
	mgr := buildManagerWithSensitive(t)
	p := &DeltaDisclosure{Delta: 0.01}
	if err := p.Initialize(mgr); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	res := groupify.BuildFromScratch(mgr, []int{0}, groupify.Distribution)
	for _, class := range res.Classes {
		// Singleton classes at level 0 are maximally skewed toward one value,
		// so a near-zero delta budget must reject them.
		if p.IsAnonymous(class) {
			t.Fatalf("singleton class should violate a near-zero delta-disclosure bound")
		}
	}
}

func TestDPresenceUniformEstimatorDefaultsToFullPopulation(t *testing.T) {
	mgr := buildManagerWithSensitive(t)
	p := &DPresence{DMin: 0, DMax: 1.0}
	if err := p.Initialize(mgr); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	res := groupify.BuildFromScratch(mgr, []int{1}, groupify.Counter)
	for _, class := range res.Classes {
		if !p.IsAnonymous(class) {
			t.Fatalf("default full-population estimator with [0,1] bounds should accept every class")
		}
	}
}

func TestKMapUsesEstimatedPopulationSize(t *testing.T) {
	mgr := buildManagerWithSensitive(t)
	p := &KMap{K: 3, Estimator: UniformEstimator{SamplingFraction: 0.5}}
	if err := p.Initialize(mgr); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	res := groupify.BuildFromScratch(mgr, []int{1}, groupify.Counter)
	for _, class := range res.Classes {
		estimate := p.Estimator.Estimate(class.Size)
		want := estimate >= 3
		if p.IsAnonymous(class) != want {
			t.Fatalf("class size %d, estimate %v: IsAnonymous mismatch", class.Size, estimate)
		}
	}
}

func TestDifferentialPrivacyBoundFlagsSmallClasses(t *testing.T) {
	mgr := buildManagerWithSensitive(t)
	res := groupify.BuildFromScratch(mgr, []int{1}, groupify.Counter)

	p := &DifferentialPrivacyBound{Epsilon: 0.5, Delta: 1.0} // threshold = 2, generous delta
	verdict := p.Evaluate(res)
	if !verdict.Anonymous {
		t.Fatalf("generous delta=1.0 should always accept")
	}

	strict := &DifferentialPrivacyBound{Epsilon: 0.2, Delta: 0} // threshold = 5, no slack
	strictVerdict := strict.Evaluate(res)
	if strictVerdict.Anonymous {
		t.Fatalf("threshold=5 against classes of size [2,3] and delta=0 should reject")
	}
	if len(strictVerdict.MustSuppress) == 0 {
		t.Fatalf("expected MustSuppress to flag rows from the undersized classes")
	}
}

func TestClassSetRequiresAllMembers(t *testing.T) {
	mgr := buildManagerWithSensitive(t)
	res := groupify.BuildFromScratch(mgr, []int{1}, groupify.Counter|groupify.Distribution)

	set := &ClassSet{Members: []ClassPredicate{
		&KAnonymity{K: 2},
		&LDiversity{L: 5, Mode: DistinctDiversity}, // unsatisfiable with 2 sensitive values
	}}
	if err := set.Initialize(mgr); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	for _, class := range res.Classes {
		if set.IsAnonymous(class) {
			t.Fatalf("combined set should reject once any member predicate rejects")
		}
	}
	if set.IsMonotonicWithGeneralization() != true {
		t.Fatalf("k-anonymity AND distinct l-diversity should stay monotone")
	}
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := Build(models.PredicateSpec{Kind: "made-up-model"})
	if err == nil {
		t.Fatalf("expected ErrUnsupported for an unknown predicate kind")
	}
}

func TestBuildAllPartitionsClassAndSample(t *testing.T) {
	specs := []models.PredicateSpec{
		{Kind: "k-anonymity", Params: map[string]float64{"k": 2}},
		{Kind: "differential-privacy", Params: map[string]float64{"epsilon": 0.5, "delta": 0.1}},
	}
	classes, samples, err := BuildAll(specs)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(classes.Members) != 1 {
		t.Fatalf("expected 1 class predicate, got %d", len(classes.Members))
	}
	if len(samples.Members) != 1 {
		t.Fatalf("expected 1 sample predicate, got %d", len(samples.Members))
	}
}
