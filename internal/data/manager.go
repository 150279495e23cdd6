// Package data partitions encoded columns into quasi-identifier, sensitive,
// insensitive and identifying roles and holds the per-attribute lattice
// bounds, per spec.md §4.3.
package data

import (
	"fmt"

	"github.com/rawblock/flashengine/internal/dict"
	"github.com/rawblock/flashengine/internal/hierarchy"
	"github.com/rawblock/flashengine/pkg/models"
)

// Manager splits an encoded table into QI/SE/IS sub-views and exposes the
// per-attribute lattice bounds (minLevel, maxLevel) and dataset size.
type Manager struct {
	n int

	qiCols []int // original column indices for QI attributes, in lattice order
	seCols []int // original column indices for SE attributes
	isCols []int // original column indices for IS attributes

	qiNames []string

	hierarchies *hierarchy.Set
	minLevel    []int
	maxLevel    []int

	table *dict.EncodedTable
	dictionary  *dict.Dictionary
}

// Build validates roles and bounds and assembles a Manager over an already
// encoded table. hierarchies must be supplied in the same order as the QI
// columns appear in cols.
func Build(table *dict.EncodedTable, d *dict.Dictionary, cols []models.Column, hierarchies []*hierarchy.Hierarchy, minLevel, maxLevel []int) (*Manager, error) {
	m := &Manager{n: table.N(), table: table, dictionary: d}

	for i, c := range cols {
		switch c.Role {
		case models.RoleQuasi:
			m.qiCols = append(m.qiCols, i)
			m.qiNames = append(m.qiNames, c.Name)
		case models.RoleSensitive:
			m.seCols = append(m.seCols, i)
		case models.RoleInsensitive:
			m.isCols = append(m.isCols, i)
		case models.RoleIdentifying:
			// dropped before the core sees the table; nothing to record
		default:
			return nil, fmt.Errorf("%w: unknown attribute role for column %q", ErrInvalidConfiguration, c.Name)
		}
	}

	if len(m.qiCols) == 0 {
		return nil, fmt.Errorf("%w: at least one quasi-identifier is required", ErrInvalidConfiguration)
	}
	if len(m.qiCols) > 15 {
		return nil, fmt.Errorf("%w: %d quasi-identifiers exceeds the 15-attribute curse-of-dimensionality guard", ErrInvalidConfiguration, len(m.qiCols))
	}
	if len(hierarchies) != len(m.qiCols) {
		return nil, fmt.Errorf("%w: %d hierarchies supplied for %d quasi-identifiers", ErrInvalidConfiguration, len(hierarchies), len(m.qiCols))
	}
	if len(minLevel) != len(m.qiCols) || len(maxLevel) != len(m.qiCols) {
		return nil, fmt.Errorf("%w: minLevel/maxLevel must have one entry per quasi-identifier", ErrInvalidConfiguration)
	}

	for i, h := range hierarchies {
		height := h.Height()
		if minLevel[i] < 0 || maxLevel[i] > height-1 || minLevel[i] > maxLevel[i] {
			return nil, fmt.Errorf("%w: attribute %q bounds [%d,%d] out of [0,%d]", ErrInvalidHierarchy, h.Attribute, minLevel[i], maxLevel[i], height-1)
		}
	}

	m.hierarchies = hierarchy.NewSet(hierarchies)
	m.minLevel = append([]int(nil), minLevel...)
	m.maxLevel = append([]int(nil), maxLevel...)

	return m, nil
}

// N returns the row count of the dataset.
func (m *Manager) N() int { return m.n }

// D returns the number of quasi-identifier attributes (the lattice
// dimensionality).
func (m *Manager) D() int { return len(m.qiCols) }

// QIName returns the name of QI attribute i.
func (m *Manager) QIName(i int) string { return m.qiNames[i] }

// Height returns the hierarchy height of QI attribute i.
func (m *Manager) Height(i int) int { return m.hierarchies.Height(i) }

// MinLevel returns the configured lower lattice bound for QI attribute i.
func (m *Manager) MinLevel(i int) int { return m.minLevel[i] }

// MaxLevel returns the configured upper lattice bound for QI attribute i.
func (m *Manager) MaxLevel(i int) int { return m.maxLevel[i] }

// Hierarchies exposes the underlying hierarchy set, used by Groupify to
// compute T_L.
func (m *Manager) Hierarchies() *hierarchy.Set { return m.hierarchies }

// QIValue returns row r's base value id for QI attribute i.
func (m *Manager) QIValue(r, i int) int32 {
	return m.table.Rows[r][m.qiCols[i]]
}

// CellValue returns row r's raw encoded value id for original table
// column c, for decoding non-QI (SE/IS) cells straight through.
func (m *Manager) CellValue(r, c int) int32 {
	return m.table.Rows[r][c]
}

// HasSensitive reports whether the table carries at least one sensitive
// attribute.
func (m *Manager) HasSensitive() bool { return len(m.seCols) > 0 }

// SensitiveValue returns row r's value id for sensitive attribute index s
// (0-based among SE columns). Panics if there is no sensitive attribute at
// that index — callers must check HasSensitive / NumSensitive first.
func (m *Manager) SensitiveValue(r, s int) int32 {
	return m.table.Rows[r][m.seCols[s]]
}

// NumSensitive returns the number of sensitive attributes.
func (m *Manager) NumSensitive() int { return len(m.seCols) }

// Dictionary exposes the interning dictionary, needed to decode results.
func (m *Manager) Dictionary() *dict.Dictionary { return m.dictionary }

// QIColumns returns the original table column indices backing the QI
// attributes, in lattice order.
func (m *Manager) QIColumns() []int { return append([]int(nil), m.qiCols...) }
