package opt

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/peaksearch/internal/terrain"
)

// Config selects a strategy and carries the parameters of every strategy.
// Only the block matching Strategy is used.
type Config struct {
	Strategy  Name         `json:"strategy" toml:"strategy"`
	Random    RandomSearch `json:"random" toml:"random"`
	HillClimb HillClimbing `json:"hillClimb" toml:"hill_climb"`
	Swarm     Swarm        `json:"swarm" toml:"swarm"`
	Mayfly    Mayfly       `json:"mayfly" toml:"mayfly"`
}

// DefaultConfig returns the parameters used for the DHM200 experiments.
func DefaultConfig() Config {
	return Config{
		Strategy:  BruteForceName,
		Random:    RandomSearch{Evaluations: 100000},
		HillClimb: HillClimbing{Restarts: 1000},
		Swarm:     DefaultSwarm(),
		Mayfly:    Mayfly{Iterations: 100, Population: 30},
	}
}

// Names lists every known strategy.
func Names() []Name {
	return []Name{BruteForceName, RandomName, HillClimbName, SwarmName, MayflyName}
}

// New returns the strategy selected by cfg after validating its parameters.
func New(cfg Config) (Strategy, error) {
	var s Strategy
	switch cfg.Strategy {
	case BruteForceName:
		s = BruteForce{}
	case RandomName:
		s = cfg.Random
	case HillClimbName:
		s = cfg.HillClimb
	case SwarmName:
		s = cfg.Swarm
	case MayflyName:
		s = cfg.Mayfly
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Strategy)
	}

	if v, ok := s.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Validate checks the parameters of the selected strategy.
func (c Config) Validate() error {
	_, err := New(c)
	return err
}

// Run dispatches cfg to its strategy. The grid is rejected before any search
// starts if it is empty.
func Run(g *terrain.Grid, cfg Config, rng *rand.Rand) (*Outcome, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	strategy, err := New(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("Starting search", "strategy", strategy.Name())
	start := time.Now()

	out, err := strategy.Search(g, rng)
	if err != nil {
		return nil, fmt.Errorf("%s search failed: %w", strategy.Name(), err)
	}

	slog.Info("Search complete",
		"strategy", out.Strategy,
		"best", out.Best,
		"evaluations", out.Evaluations,
		"elapsed", time.Since(start),
	)
	return out, nil
}
