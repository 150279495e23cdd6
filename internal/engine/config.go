package engine

import (
	"time"

	"github.com/rawblock/flashengine/pkg/models"
)

// Config is the engine's internal configuration surface, derived from
// models.RunConfig per spec.md §6. Numeric option defaults match the
// spec's stated defaults when the caller leaves a field at its Go zero
// value.
type Config struct {
	SuppressionLimit         float64
	HistorySize              int
	SnapshotSizeDataset      float64
	SnapshotSizeSnapshot     float64
	SuppressionString        string
	SuppressedAttributeTypes []models.AttributeRole
	PracticalMonotonicity    bool
	HeuristicSearchEnabled   bool
	HeuristicSearchThreshold int
	HeuristicSearchTimeLimit time.Duration
	AttributeWeights         map[string]float64
	QualityModel             string // "loss" (default) or "discernibility"
	Predicates               []models.PredicateSpec
}

// FromRunConfig converts a wire-level RunConfig into the engine's internal
// Config, applying spec.md §6's documented defaults for zero-valued
// fields.
func FromRunConfig(rc models.RunConfig) Config {
	cfg := Config{
		SuppressionLimit:         rc.SuppressionLimit,
		HistorySize:              rc.HistorySize,
		SnapshotSizeDataset:      rc.SnapshotSizeDataset,
		SnapshotSizeSnapshot:     rc.SnapshotSizeSnapshot,
		SuppressionString:        rc.SuppressionString,
		SuppressedAttributeTypes: rc.SuppressedAttributeTypes,
		PracticalMonotonicity:    rc.PracticalMonotonicity,
		HeuristicSearchEnabled:   rc.HeuristicSearchEnabled,
		HeuristicSearchThreshold: rc.HeuristicSearchThreshold,
		HeuristicSearchTimeLimit: time.Duration(rc.HeuristicSearchTimeLimit) * time.Millisecond,
		AttributeWeights:         rc.AttributeWeights,
		QualityModel:             rc.QualityModel,
		Predicates:               rc.Predicates,
	}

	if cfg.HistorySize == 0 {
		cfg.HistorySize = 200
	}
	if cfg.SnapshotSizeDataset == 0 {
		cfg.SnapshotSizeDataset = 0.2
	}
	if cfg.SnapshotSizeSnapshot == 0 {
		cfg.SnapshotSizeSnapshot = 0.8
	}
	if cfg.SuppressionString == "" {
		cfg.SuppressionString = "*"
	}
	if len(cfg.SuppressedAttributeTypes) == 0 {
		cfg.SuppressedAttributeTypes = []models.AttributeRole{models.RoleQuasi}
	}
	if cfg.HeuristicSearchThreshold == 0 {
		cfg.HeuristicSearchThreshold = 100000
	}
	if cfg.HeuristicSearchTimeLimit == 0 {
		cfg.HeuristicSearchTimeLimit = 30 * time.Second
	}
	if cfg.QualityModel == "" {
		cfg.QualityModel = "loss"
	}

	return cfg
}

func (c Config) suppresses(role models.AttributeRole) bool {
	for _, r := range c.SuppressedAttributeTypes {
		if r == role {
			return true
		}
	}
	return false
}
