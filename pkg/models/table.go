// Package models holds the wire-level and cross-package data shapes shared
// between the anonymization core and its HTTP/persistence facades.
package models

// AttributeRole classifies a column of the input table.
type AttributeRole int

const (
	RoleIdentifying AttributeRole = iota // ID: dropped before the core sees the table
	RoleQuasi                            // QI: generalized, drives the lattice
	RoleSensitive                        // SE: distribution-bearing, consumed by predicates
	RoleInsensitive                      // IS: passed through untouched
)

func (r AttributeRole) String() string {
	switch r {
	case RoleIdentifying:
		return "ID"
	case RoleQuasi:
		return "QI"
	case RoleSensitive:
		return "SE"
	case RoleInsensitive:
		return "IS"
	default:
		return "UNKNOWN"
	}
}

// Column describes one column of the raw input table before encoding.
type Column struct {
	Name string        `json:"name"`
	Role AttributeRole `json:"role"`
}

// RawTable is the pre-encoding input: N rows, each a slice of string values
// aligned with Columns.
type RawTable struct {
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RawHierarchy is a (height x cardinality) matrix of generalized string
// values for one QI column. Level 0 must be the identity mapping.
type RawHierarchy struct {
	Attribute string     `json:"attribute"`
	Levels    [][]string `json:"levels"`
}

// RunConfig mirrors spec.md §6's Configuration surface, as submitted over
// the wire.
type RunConfig struct {
	SuppressionLimit          float64            `json:"suppressionLimit" yaml:"suppressionLimit"`
	HistorySize               int                `json:"historySize" yaml:"historySize"`
	SnapshotSizeDataset        float64            `json:"snapshotSizeDataset" yaml:"snapshotSizeDataset"`
	SnapshotSizeSnapshot       float64            `json:"snapshotSizeSnapshot" yaml:"snapshotSizeSnapshot"`
	SuppressionString         string             `json:"suppressionString" yaml:"suppressionString"`
	SuppressedAttributeTypes  []AttributeRole    `json:"suppressedAttributeTypes" yaml:"suppressedAttributeTypes"`
	PracticalMonotonicity     bool               `json:"practicalMonotonicity" yaml:"practicalMonotonicity"`
	HeuristicSearchEnabled    bool               `json:"heuristicSearchEnabled" yaml:"heuristicSearchEnabled"`
	HeuristicSearchThreshold  int                `json:"heuristicSearchThreshold" yaml:"heuristicSearchThreshold"`
	HeuristicSearchTimeLimit  int                `json:"heuristicSearchTimeLimitMs" yaml:"heuristicSearchTimeLimitMs"`
	AttributeWeights          map[string]float64 `json:"attributeWeights" yaml:"attributeWeights"`
	QualityModel              string             `json:"qualityModel" yaml:"qualityModel"`
	Predicates                []PredicateSpec    `json:"predicates" yaml:"predicates"`
}

// PredicateSpec names a privacy model and its parameters, as submitted over
// the wire or loaded from YAML. The concrete predicate is built by
// internal/predicate from this spec.
type PredicateSpec struct {
	Kind   string             `json:"kind" yaml:"kind"` // "k-anonymity", "l-diversity", ...
	Params map[string]float64 `json:"params" yaml:"params"`
	On     string             `json:"on,omitempty" yaml:"on,omitempty"` // sensitive attribute name, where applicable
}

// RunResult is the Result surface from spec.md §6: the chosen optimal node,
// its achieved quality, and the anonymized table.
type RunResult struct {
	RunID         string     `json:"runId"`
	Status        string     `json:"status"` // "running", "done", "no_solution", "interrupted", "error"
	LevelVector   []int      `json:"levelVector,omitempty"`
	Quality       float64    `json:"quality,omitempty"`
	OutlierCount  int        `json:"outlierCount,omitempty"`
	AnonymizedRows [][]string `json:"anonymizedRows,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// NodeStateView is one row of the annotated lattice diagnostic surface.
type NodeStateView struct {
	Level   []int   `json:"level"`
	State   string  `json:"state"`
	Quality float64 `json:"quality,omitempty"`
}
