package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/peaksearch/internal/terrain"
)

// RandomSearch samples Evaluations uniformly random cells and keeps the best.
type RandomSearch struct {
	Evaluations int `json:"evaluations" toml:"evaluations"`
}

func (RandomSearch) Name() Name { return RandomName }

func (r RandomSearch) validate() error {
	if r.Evaluations < 1 {
		return fmt.Errorf("evaluations must be positive, got %d: %w", r.Evaluations, ErrInvalidParameter)
	}
	return nil
}

// Search draws exactly Evaluations positions; the budget is the only stop condition.
func (r RandomSearch) Search(g *terrain.Grid, rng *rand.Rand) (*Outcome, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	if err := r.validate(); err != nil {
		return nil, err
	}

	sampler := terrain.NewSampler(g, rng)
	e := newEvaluator(g)

	pos := sampler.Next()
	best := e.at(pos)
	for i := 1; i < r.Evaluations; i++ {
		p := sampler.Next()
		if f := e.at(p); f > best {
			best, pos = f, p
		}
	}

	return &Outcome{
		Strategy:    RandomName,
		Best:        best,
		Position:    pos,
		Evaluations: e.count,
	}, nil
}
