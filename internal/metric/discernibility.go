package metric

import (
	"github.com/rawblock/flashengine/internal/data"
	"github.com/rawblock/flashengine/internal/groupify"
)

// Discernibility sums the squared size of every equivalence class: rows
// sharing an indistinguishable generalized tuple are charged once per pair
// sharing it, penalizing large classes more than information loss does.
// Unlike Loss it ignores the hierarchy structure entirely and needs no
// per-attribute weights.
type Discernibility struct{}

var _ Metric = (*Discernibility)(nil)

func (m *Discernibility) Initialize(mgr *data.Manager) error { return nil }

func (m *Discernibility) Evaluate(result *groupify.Result) float64 {
	total := 0.0
	for _, class := range result.Classes {
		size := float64(class.Size)
		total += size * size
	}
	return total
}

// LowerBound is unsupported for the same reason as Loss: the class
// structure a node produces is not known without running groupify on it.
func (m *Discernibility) LowerBound(node []int) (float64, bool) { return 0, false }

// IsMonotonic: merging two classes of size a and b into one of size a+b
// replaces a^2+b^2 with (a+b)^2 = a^2+b^2+2ab, which is never smaller.
// Suppression removes rows from classes rather than merging them, which
// can only shrink the sum, so the metric stays monotone non-decreasing
// under generalization regardless of suppressionLimit.
func (m *Discernibility) IsMonotonic(suppressionLimit float64) bool { return true }
