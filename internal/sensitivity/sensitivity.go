// Package sensitivity projects a margin position across a menu of leverage
// levels so the outcomes can be compared side by side.
package sensitivity

import (
	"fmt"
	"math"

	"github.com/rovshanmuradov/margin-calculator/internal/position"
)

// StandardLeverages is the fixed part of the default candidate menu.
// DefaultLeverages appends the base position's own max leverage to it.
var StandardLeverages = []float64{1, 2, 3, 4, 5}

// DefaultLeverages returns {1, 2, 3, 4, 5, base.MaxLeverage()}.
func DefaultLeverages(base position.Position) []float64 {
	return WithMaxLeverage(base, StandardLeverages)
}

// WithMaxLeverage copies candidates and appends base.MaxLeverage().
func WithMaxLeverage(base position.Position, candidates []float64) []float64 {
	out := make([]float64, 0, len(candidates)+1)
	out = append(out, candidates...)
	return append(out, base.MaxLeverage())
}

// Generate builds one row per candidate leverage that base's LTV allows,
// in the order given. Candidates above the max leverage are skipped; one that
// lands within position.LeverageTolerance of it is clamped and kept.
// A candidate below 1 cannot form a position and is returned as an error.
func Generate(base position.Position, candidates []float64) ([]Row, error) {
	maxLev := base.MaxLeverage()
	rows := make([]Row, 0, len(candidates))

	for _, lev := range candidates {
		if lev > maxLev+position.LeverageTolerance {
			continue
		}

		p, err := base.WithLeverage(math.Min(lev, maxLev))
		if err != nil {
			return nil, fmt.Errorf("leverage candidate %g: %w", lev, err)
		}
		rows = append(rows, NewRow(p))
	}

	return rows, nil
}
