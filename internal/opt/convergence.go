package opt

import (
	"fmt"
	"log/slog"
)

// Convergence stops a swarm once the global best has gone Patience
// consecutive time steps without rising by at least Threshold metres.
// A zero Patience disables early stopping.
type Convergence struct {
	Patience  int     `json:"patience" toml:"patience"`
	Threshold float64 `json:"threshold" toml:"threshold"`
}

func (c Convergence) validate() error {
	if c.Patience < 0 {
		return fmt.Errorf("patience must not be negative, got %d: %w", c.Patience, ErrInvalidParameter)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("convergence threshold must not be negative, got %g: %w", c.Threshold, ErrInvalidParameter)
	}
	return nil
}

// convergenceTracker counts stale steps against the last significant best.
type convergenceTracker struct {
	config          Convergence
	lastSignificant float64
	staleCount      int
}

func newConvergenceTracker(config Convergence, initial float64) *convergenceTracker {
	return &convergenceTracker{config: config, lastSignificant: initial}
}

// update records the global best after a step and reports whether the run
// has converged.
func (c *convergenceTracker) update(best float64) bool {
	if c.config.Patience == 0 {
		return false
	}

	gain := best - c.lastSignificant
	if gain > 0 && gain >= c.config.Threshold {
		c.lastSignificant = best
		c.staleCount = 0
		return false
	}

	c.staleCount++
	slog.Debug("No significant improvement",
		"best", best,
		"last_significant", c.lastSignificant,
		"stale_count", c.staleCount,
		"patience", c.config.Patience,
	)
	return c.staleCount >= c.config.Patience
}
