package opt

import (
	"errors"
	"math/rand"

	"github.com/cwbudde/peaksearch/internal/terrain"
)

// Name identifies a search strategy.
type Name string

const (
	BruteForceName Name = "bruteforce"
	RandomName     Name = "random"
	HillClimbName  Name = "hillclimb"
	SwarmName      Name = "pso"
	MayflyName     Name = "mayfly"
)

var (
	// ErrUnknownStrategy is returned by New for an unrecognised strategy name.
	ErrUnknownStrategy = errors.New("opt: unknown strategy")
	// ErrInvalidParameter is returned when a strategy parameter is out of range.
	ErrInvalidParameter = errors.New("opt: invalid parameter")
)

// Strategy searches a grid for its highest altitude.
type Strategy interface {
	// Name returns the strategy identifier
	Name() Name
	// Search runs the strategy. rng is the only source of randomness, so
	// equal seeds give equal outcomes. Deterministic strategies ignore it.
	Search(g *terrain.Grid, rng *rand.Rand) (*Outcome, error)
}

// Outcome is the tagged result of a search.
type Outcome struct {
	Strategy    Name             `json:"strategy"`
	Best        float64          `json:"best"`
	Position    terrain.Position `json:"position"`
	Evaluations int              `json:"evaluations"`

	// History holds the best fitness after each climb (hill climbing) or
	// each time step (swarm). Empty for single-pass strategies.
	History []float64 `json:"history,omitempty"`
}

// evaluator counts every fitness lookup made through it.
type evaluator struct {
	grid  *terrain.Grid
	count int
}

func newEvaluator(g *terrain.Grid) *evaluator {
	return &evaluator{grid: g}
}

func (e *evaluator) at(p terrain.Position) float64 {
	e.count++
	return e.grid.At(p)
}

func (e *evaluator) lookup(x, y int) float64 {
	e.count++
	return e.grid.Lookup(x, y)
}

// neighbors returns the four axis-aligned neighbours of p in tie-breaking
// priority order: north, east, south, west.
func neighbors(p terrain.Position, spacing int) [4]terrain.Position {
	return [4]terrain.Position{
		{X: p.X, Y: p.Y + spacing},
		{X: p.X + spacing, Y: p.Y},
		{X: p.X, Y: p.Y - spacing},
		{X: p.X - spacing, Y: p.Y},
	}
}

// bestNeighbor evaluates all four neighbours and returns the first one
// holding the highest fitness.
func (e *evaluator) bestNeighbor(p terrain.Position) (terrain.Position, float64) {
	ns := neighbors(p, e.grid.Spacing())
	best, bestFit := ns[0], e.at(ns[0])
	for _, n := range ns[1:] {
		if f := e.at(n); f > bestFit {
			best, bestFit = n, f
		}
	}
	return best, bestFit
}

func checkGrid(g *terrain.Grid) error {
	if g.Empty() {
		return terrain.ErrEmptyGrid
	}
	return nil
}
