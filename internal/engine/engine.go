// Package engine is the orchestration facade that wires the Dictionary,
// Hierarchy, Data Manager, Lattice, History, Checker, and Search
// components from spec.md into one Run call, per spec.md §1's note that
// "the public configuration facade" is an external collaborator this
// package supplies.
package engine

import (
	"context"
	"fmt"

	"github.com/rawblock/flashengine/internal/checker"
	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/dict"
	"github.com/rawblock/flashengine/internal/history"
	"github.com/rawblock/flashengine/internal/lattice"
	"github.com/rawblock/flashengine/internal/metric"
	"github.com/rawblock/flashengine/internal/predicate"
	"github.com/rawblock/flashengine/internal/search"
	"github.com/rawblock/flashengine/pkg/models"
)

// Input is the pre-encoding material a Run needs: the raw table and one
// RawHierarchy per quasi-identifier column, matched by attribute name.
type Input struct {
	Table       models.RawTable
	Hierarchies []models.RawHierarchy
}

// Output is spec.md §6's Result surface.
type Output struct {
	Found          bool
	LevelVector    []int
	Quality        float64
	OutlierCount   int
	AnonymizedRows [][]string
	NodeStates     []models.NodeStateView
	BestEffort     bool
}

// Run validates cfg and input, builds the search core, and drives FLASH
// to completion. It returns ErrNoSolution if no node satisfies the
// configured predicates, and ErrInterrupted if ctx was cancelled before a
// result could be produced; all other returned errors are validation
// failures from §7 and leave no state behind.
func Run(ctx context.Context, input Input, cfg Config) (*Output, error) {
	if cfg.SuppressionLimit < 0 || cfg.SuppressionLimit >= 1 {
		return nil, fmt.Errorf("%w: suppressionLimit %v outside [0,1)", ErrInvalidConfiguration, cfg.SuppressionLimit)
	}

	numCols := len(input.Table.Columns)
	for _, row := range input.Table.Rows {
		if len(row) != numCols {
			return nil, fmt.Errorf("%w: row has %d values, want %d columns", ErrInvalidInput, len(row), numCols)
		}
	}

	d := dict.New(numCols, cfg.SuppressionString)

	hierarchies, minLevel, maxLevel, err := buildHierarchies(d, input.Table.Columns, input.Hierarchies)
	if err != nil {
		return nil, err
	}

	enc := dict.Encode(d, input.Table.Rows)

	for i, h := range hierarchies {
		qiCol := qiColumnIndices(input.Table.Columns)[i]
		for _, row := range enc.Rows {
			if int(row[qiCol]) >= h.Cardinality() {
				return nil, fmt.Errorf("%w: attribute %q has a value absent from its hierarchy", ErrInvalidInput, h.Attribute)
			}
		}
	}

	mgr, err := data.Build(enc, d, input.Table.Columns, hierarchies, minLevel, maxLevel)
	if err != nil {
		return nil, err
	}

	classPreds, samplePreds, err := predicate.BuildAll(cfg.Predicates)
	if err != nil {
		return nil, err
	}
	if err := classPreds.Initialize(mgr); err != nil {
		return nil, err
	}
	if err := samplePreds.Initialize(mgr); err != nil {
		return nil, err
	}

	qualityMetric, err := buildMetric(cfg)
	if err != nil {
		return nil, err
	}
	if err := qualityMetric.Initialize(mgr); err != nil {
		return nil, err
	}

	lat, err := lattice.New(minLevel, maxLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	hist := history.New(lat, mgr.N(), cfg.HistorySize, cfg.SnapshotSizeDataset, cfg.SnapshotSizeSnapshot)

	interrupted := func() bool { return ctx.Err() != nil }
	chk := checker.New(mgr, hist, classPreds, samplePreds, qualityMetric, cfg.SuppressionLimit, interrupted)

	srch := search.New(lat, chk, search.Config{
		PracticalMonotonicity: cfg.PracticalMonotonicity,
		ClassMonotonicity:     classPreds.IsMonotonicWithGeneralization(),
		SampleMonotonicity:    samplePreds.IsMonotonicWithGeneralization(),
		HeuristicEnabled:      cfg.HeuristicSearchEnabled,
		HeuristicThreshold:    cfg.HeuristicSearchThreshold,
		TimeLimit:             cfg.HeuristicSearchTimeLimit,
	})

	result := srch.Run(ctx)
	hist.Reset()

	if result.Interrupted {
		return nil, ErrInterrupted
	}
	if result.NoSolution {
		return &Output{Found: false, NodeStates: diagnostics(mgr, result)}, ErrNoSolution
	}

	out := &Output{
		Found:        true,
		LevelVector:  result.Optimal.Node,
		Quality:      result.Optimal.Quality,
		OutlierCount: result.Optimal.Outliers,
		BestEffort:   result.BestEffort,
	}
	out.AnonymizedRows = decode(mgr, d, cfg, input.Table.Columns, result.Optimal)
	return out, nil
}

// qiColumnIndices returns the original table column indices with role
// Quasi, in column order — the same order data.Manager assigns QI index
// to original index.
func qiColumnIndices(cols []models.Column) []int {
	var out []int
	for i, c := range cols {
		if c.Role == models.RoleQuasi {
			out = append(out, i)
		}
	}
	return out
}

func buildMetric(cfg Config) (metric.Metric, error) {
	switch cfg.QualityModel {
	case "", "loss":
		return &metric.Loss{Weights: cfg.AttributeWeights}, nil
	case "discernibility":
		return &metric.Discernibility{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown quality model %q", ErrInvalidConfiguration, cfg.QualityModel)
	}
}

func diagnostics(mgr *data.Manager, result search.Result) []models.NodeStateView {
	views := make([]models.NodeStateView, 0, len(result.Closest))
	for _, c := range result.Closest {
		views = append(views, models.NodeStateView{Level: c.Node, State: "Checked-NonAnonymous", Quality: c.Quality})
	}
	return views
}

// decode renders the anonymized table at candidate's node: every QI
// attribute value is replaced by its node-level generalization; on rows
// the Checker suppressed to reach anonymity, every attribute role
// configured via SuppressedAttributeTypes is additionally replaced by the
// suppression string. Non-suppressed, non-QI cells pass through decoded
// as-is.
func decode(mgr *data.Manager, d *dict.Dictionary, cfg Config, cols []models.Column, candidate search.Candidate) [][]string {
	n := mgr.N()
	out := make([][]string, n)
	hs := mgr.Hierarchies()
	for r := 0; r < n; r++ {
		row := make([]string, len(cols))
		isOutlier := candidate.Suppressed != nil && candidate.Suppressed[r]
		qi := 0
		for c, col := range cols {
			switch col.Role {
			case models.RoleQuasi:
				if isOutlier && cfg.suppresses(col.Role) {
					row[c] = cfg.SuppressionString
				} else {
					base := mgr.QIValue(r, qi)
					genID := hs.Generalize(qi, candidate.Node[qi], base)
					row[c] = d.Decode(c, genID)
				}
				qi++
			default:
				if isOutlier && cfg.suppresses(col.Role) {
					row[c] = cfg.SuppressionString
				} else {
					row[c] = d.Decode(c, mgr.CellValue(r, c))
				}
			}
		}
		out[r] = row
	}
	return out
}
