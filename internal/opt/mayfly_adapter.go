package opt

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
	"github.com/cwbudde/peaksearch/internal/terrain"
)

// minMayflyPopulation is the smallest population mayfly v0.1.0 accepts.
const minMayflyPopulation = 20

// Mayfly wraps the external mayfly optimizer. It searches the unit square,
// mapping each coordinate onto a column or row, and minimises negated altitude.
type Mayfly struct {
	Iterations int `json:"iterations" toml:"iterations"`
	Population int `json:"population" toml:"population"`
}

func (Mayfly) Name() Name { return MayflyName }

func (m Mayfly) validate() error {
	if m.Iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d: %w", m.Iterations, ErrInvalidParameter)
	}
	if m.Population < minMayflyPopulation {
		return fmt.Errorf("population must be at least %d, got %d: %w", minMayflyPopulation, m.Population, ErrInvalidParameter)
	}
	return nil
}

// Search runs the mayfly library with rng as its random source.
func (m Mayfly) Search(g *terrain.Grid, rng *rand.Rand) (*Outcome, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}

	e := newEvaluator(g)

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(x []float64) float64 {
		idx := unitToIndex(g, x)
		return -e.lookup(idx.X, idx.Y)
	}
	config.ProblemSize = 2
	config.MaxIterations = m.Iterations
	config.NPop = m.Population
	config.LowerBound = 0
	config.UpperBound = 1
	config.Rand = rng

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	idx := unitToIndex(g, result.GlobalBest.Position)
	return &Outcome{
		Strategy:    MayflyName,
		Best:        g.Lookup(idx.X, idx.Y),
		Position:    g.ToPosition(idx),
		Evaluations: e.count,
	}, nil
}

// unitToIndex maps a point of [0,1]^2 onto a cell, clamping the upper edge.
func unitToIndex(g *terrain.Grid, x []float64) terrain.Index {
	return terrain.Index{
		X: unitToCell(x[0], g.Width()),
		Y: unitToCell(x[1], g.Height()),
	}
}

func unitToCell(v float64, n int) int {
	c := int(math.Floor(v * float64(n)))
	return max(0, min(n-1, c))
}
