package data

import (
	"errors"
	"testing"

	"github.com/rawblock/flashengine/internal/dict"
	"github.com/rawblock/flashengine/internal/hierarchy"
	"github.com/rawblock/flashengine/pkg/models"
)

func buildAgeHierarchy(t *testing.T) *hierarchy.Hierarchy {
	t.Helper()
	level0 := []int32{0, 1, 2, 3, 4}
	level1 := []int32{5, 5, 5, 6, 6}
	h, err := hierarchy.Build("age", [][]int32{level0, level1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return h
}

func TestBuildRejectsZeroQI(t *testing.T) {
	table := &dict.EncodedTable{Rows: [][]int32{{0}}, Cols: 1}
	d := dict.New(1, "*")
	cols := []models.Column{{Name: "id", Role: models.RoleIdentifying}}

	_, err := Build(table, d, cols, nil, nil, nil)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestBuildRejectsBadLevelBounds(t *testing.T) {
	table := &dict.EncodedTable{Rows: [][]int32{{1}}, Cols: 1}
	d := dict.New(1, "*")
	cols := []models.Column{{Name: "age", Role: models.RoleQuasi}}
	h := buildAgeHierarchy(t)

	_, err := Build(table, d, cols, []*hierarchy.Hierarchy{h}, []int{0}, []int{5})
	if !errors.Is(err, ErrInvalidHierarchy) {
		t.Fatalf("expected ErrInvalidHierarchy, got %v", err)
	}
}

func TestBuildPartitionsRoles(t *testing.T) {
	d := dict.New(3, "*")
	rows := [][]string{
		{"25", "flu", "x1"},
		{"31", "hiv", "x2"},
	}
	enc := dict.Encode(d, rows)
	cols := []models.Column{
		{Name: "age", Role: models.RoleQuasi},
		{Name: "disease", Role: models.RoleSensitive},
		{Name: "note", Role: models.RoleInsensitive},
	}
	h := buildAgeHierarchy(t)

	m, err := Build(enc, d, cols, []*hierarchy.Hierarchy{h}, []int{0}, []int{1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if m.D() != 1 {
		t.Fatalf("D() = %d, want 1", m.D())
	}
	if !m.HasSensitive() || m.NumSensitive() != 1 {
		t.Fatalf("expected exactly one sensitive attribute")
	}
	if m.N() != 2 {
		t.Fatalf("N() = %d, want 2", m.N())
	}
}
