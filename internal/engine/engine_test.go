package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/rawblock/flashengine/pkg/models"
)

func ageTable() Input {
	return Input{
		Table: models.RawTable{
			Columns: []models.Column{
				{Name: "age", Role: models.RoleQuasi},
				{Name: "zip", Role: models.RoleInsensitive},
			},
			Rows: [][]string{
				{"25", "z1"},
				{"27", "z2"},
				{"29", "z3"},
				{"31", "z4"},
				{"40", "z5"},
			},
		},
		Hierarchies: []models.RawHierarchy{
			{
				Attribute: "age",
				Levels: [][]string{
					{"25", "27", "29", "31", "40"},
					{"<30", "<30", "<30", ">=30", ">=30"},
				},
			},
		},
	}
}

func TestRunFindsAnonymousNodeAtK2(t *testing.T) {
	out, err := Run(context.Background(), ageTable(), Config{
		SuppressionLimit: 0,
		Predicates: []models.PredicateSpec{
			{Kind: "k-anonymity", Params: map[string]float64{"k": 2}},
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Found {
		t.Fatalf("expected Found=true")
	}
	if len(out.AnonymizedRows) != 5 {
		t.Fatalf("expected 5 anonymized rows, got %d", len(out.AnonymizedRows))
	}
	// k=2 is not satisfied at the bottom (level 0: singletons fail), but
	// level 1 splits into classes of size 3 and 2, so the optimal node must
	// generalize age at least one level.
	if out.LevelVector[0] == 0 {
		t.Fatalf("expected a generalized level vector, got %v", out.LevelVector)
	}
	// zip is insensitive and never suppressed, so it must survive untouched.
	for i, row := range out.AnonymizedRows {
		want := ageTable().Table.Rows[i][1]
		if row[1] != want {
			t.Fatalf("row %d: zip column got %q, want %q", i, row[1], want)
		}
	}
}

func TestRunReturnsNoSolutionWhenUnsatisfiable(t *testing.T) {
	out, err := Run(context.Background(), ageTable(), Config{
		SuppressionLimit: 0,
		Predicates: []models.PredicateSpec{
			{Kind: "k-anonymity", Params: map[string]float64{"k": 10}},
		},
	})
	if !errors.Is(err, ErrNoSolution) {
		t.Fatalf("expected ErrNoSolution, got %v", err)
	}
	if out == nil || out.Found {
		t.Fatalf("expected Found=false on no-solution")
	}
	if len(out.NodeStates) == 0 {
		t.Fatalf("expected diagnostic node states on no-solution")
	}
}

func TestRunRejectsOutOfRangeSuppressionLimit(t *testing.T) {
	_, err := Run(context.Background(), ageTable(), Config{SuppressionLimit: 1.5})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestRunRejectsMissingHierarchyForQI(t *testing.T) {
	in := ageTable()
	in.Hierarchies = nil
	_, err := Run(context.Background(), in, Config{SuppressionLimit: 0})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRunHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, ageTable(), Config{
		SuppressionLimit: 0,
		Predicates: []models.PredicateSpec{
			{Kind: "k-anonymity", Params: map[string]float64{"k": 2}},
		},
	})
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
}
