package opt

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/cwbudde/peaksearch/internal/terrain"
)

// HillClimbing runs Restarts+1 steepest-ascent climbs from random starts.
// At least one climb always runs.
type HillClimbing struct {
	Restarts int `json:"restarts" toml:"restarts"`
}

// Climb describes a single ascent.
type Climb struct {
	Start       terrain.Position
	Peak        terrain.Position
	Best        float64
	Moves       int
	Evaluations int

	// Path holds the fitness after the start and after each move; it is
	// strictly increasing.
	Path []float64
}

func (HillClimbing) Name() Name { return HillClimbName }

func (h HillClimbing) validate() error {
	if h.Restarts < 0 {
		return fmt.Errorf("restarts must not be negative, got %d: %w", h.Restarts, ErrInvalidParameter)
	}
	return nil
}

// Search returns the best terminal value over all climbs and the total
// number of evaluations (1 per start, 4 per step including the final one).
func (h HillClimbing) Search(g *terrain.Grid, rng *rand.Rand) (*Outcome, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	sampler := terrain.NewSampler(g, rng)
	e := newEvaluator(g)

	var out *Outcome
	history := make([]float64, 0, h.Restarts+1)
	for i := 0; i <= h.Restarts; i++ {
		c := climb(e, sampler.Next())
		if out == nil || c.Best > out.Best {
			out = &Outcome{Best: c.Best, Position: c.Peak}
		}
		history = append(history, out.Best)
		slog.Debug("Climb finished", "restart", i, "best", c.Best, "moves", c.Moves)
	}

	out.Strategy = HillClimbName
	out.Evaluations = e.count
	out.History = history
	return out, nil
}

// Climb runs one ascent from start.
func (h HillClimbing) Climb(g *terrain.Grid, start terrain.Position) (*Climb, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	e := newEvaluator(g)
	c := climb(e, start)
	return &c, nil
}

// climb moves to the best strictly improving neighbour until none exists.
// Fitness strictly increases per move on a finite grid, so it terminates.
func climb(e *evaluator, start terrain.Position) Climb {
	before := e.count

	pos := start
	current := e.at(pos)
	path := []float64{current}
	for {
		next, f := e.bestNeighbor(pos)
		if f <= current {
			break
		}
		pos, current = next, f
		path = append(path, current)
	}

	return Climb{
		Start:       start,
		Peak:        pos,
		Best:        current,
		Moves:       len(path) - 1,
		Evaluations: e.count - before,
		Path:        path,
	}
}
