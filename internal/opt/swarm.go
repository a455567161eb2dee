package opt

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/cwbudde/peaksearch/internal/terrain"
	"gonum.org/v1/gonum/stat"
)

// Step is a displacement measured in grid cells.
type Step struct {
	DX int `json:"dx" toml:"dx"`
	DY int `json:"dy" toml:"dy"`
}

// SwarmObserver is notified after initialisation (step 0) and after every
// time step. positions must not be retained beyond the call.
type SwarmObserver interface {
	ObserveStep(step int, positions []terrain.Position, globalBest float64)
}

// Swarm is a grid particle swarm optimizer with optional hill-climbing
// hybridization. All weights are expressed in grid cells.
type Swarm struct {
	Particles       int  `json:"particles" toml:"particles"`
	TimeSteps       int  `json:"timeSteps" toml:"time_steps"`
	Inertia         Step `json:"inertia" toml:"inertia"`
	GlobalWeight    int  `json:"globalWeight" toml:"global_weight"`
	LocalWeight     int  `json:"localWeight" toml:"local_weight"`
	CenteringWeight int  `json:"centeringWeight" toml:"centering_weight"`

	// Hybridize lets the HybridCount best particles (by personal best)
	// take a hill-climbing step instead of a swarm move.
	Hybridize   bool `json:"hybridize" toml:"hybridize"`
	HybridCount int  `json:"hybridCount" toml:"hybrid_count"`

	// Convergence may end the run before TimeSteps
	Convergence Convergence `json:"convergence" toml:"convergence"`

	Observer SwarmObserver `json:"-" toml:"-"`
}

type particle struct {
	pos     terrain.Position
	vel     Step
	best    terrain.Position
	bestFit float64
}

// DefaultSwarm returns the configuration used for the DHM200 experiments.
func DefaultSwarm() Swarm {
	return Swarm{
		Particles:    100,
		TimeSteps:    20,
		GlobalWeight: 20,
		Hybridize:    true,
		HybridCount:  30,
	}
}

func (Swarm) Name() Name { return SwarmName }

func (s Swarm) validate() error {
	if s.Particles < 1 {
		return fmt.Errorf("particles must be positive, got %d: %w", s.Particles, ErrInvalidParameter)
	}
	if s.TimeSteps < 0 {
		return fmt.Errorf("time steps must not be negative, got %d: %w", s.TimeSteps, ErrInvalidParameter)
	}
	if s.Hybridize {
		if _, err := terrain.TopKIndices(make([]float64, s.Particles), s.HybridCount); err != nil {
			return fmt.Errorf("hybrid count: %w", err)
		}
	}
	return s.Convergence.validate()
}

// Search runs TimeSteps synchronous swarm updates. Every particle reads the
// population mean and deviation from a snapshot taken before the step, so
// the order of updates within a step only affects the global best.
func (s Swarm) Search(g *terrain.Grid, rng *rand.Rand) (*Outcome, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	e := newEvaluator(g)
	spacing := g.Spacing()

	particles := make([]particle, s.Particles)
	fitness := make([]float64, s.Particles)
	for i := range particles {
		p := g.RandomPosition(rng)
		fitness[i] = e.at(p)
		particles[i] = particle{pos: p, best: p, bestFit: fitness[i]}
	}

	gi := argmax(fitness)
	global, globalFit := particles[gi].best, fitness[gi]

	candidates, err := s.hybridCandidates(fitness)
	if err != nil {
		return nil, err
	}
	s.observe(0, particles, globalFit)

	xs := make([]float64, s.Particles)
	ys := make([]float64, s.Particles)
	history := make([]float64, 0, s.TimeSteps)
	tracker := newConvergenceTracker(s.Convergence, globalFit)

	for step := 1; step <= s.TimeSteps; step++ {
		for i, p := range particles {
			xs[i] = float64(p.pos.X)
			ys[i] = float64(p.pos.Y)
		}
		meanX, sdX := stat.MeanStdDev(xs, nil)
		meanY, sdY := stat.MeanStdDev(ys, nil)

		for i := range particles {
			p := &particles[i]
			f := e.at(p.pos)

			if candidates[i] {
				next, nf := e.bestNeighbor(p.pos)
				if nf > f {
					p.pos = next
					if nf > p.bestFit {
						p.best, p.bestFit = next, nf
					}
				}
				if nf > globalFit {
					global, globalFit = next, nf
				}
				continue
			}

			p.vel = Step{
				DX: s.Inertia.DX +
					centering(p.pos.X, meanX, sdX, s.CenteringWeight) +
					attraction(p.pos.X, global.X, s.GlobalWeight) +
					attraction(p.pos.X, p.best.X, s.LocalWeight),
				DY: s.Inertia.DY +
					centering(p.pos.Y, meanY, sdY, s.CenteringWeight) +
					attraction(p.pos.Y, global.Y, s.GlobalWeight) +
					attraction(p.pos.Y, p.best.Y, s.LocalWeight),
			}
			p.pos = terrain.Position{
				X: p.pos.X + p.vel.DX*spacing,
				Y: p.pos.Y + p.vel.DY*spacing,
			}

			if nf := e.at(p.pos); nf > p.bestFit {
				p.best, p.bestFit = p.pos, nf
			}
		}

		for i, p := range particles {
			fitness[i] = p.bestFit
		}
		if candidates, err = s.hybridCandidates(fitness); err != nil {
			return nil, err
		}
		if gi := argmax(fitness); fitness[gi] > globalFit {
			global, globalFit = particles[gi].best, fitness[gi]
		}

		history = append(history, globalFit)
		s.observe(step, particles, globalFit)
		slog.Debug("Swarm step", "step", step, "global_best", globalFit, "evaluations", e.count)

		if tracker.update(globalFit) {
			slog.Info("Swarm converged, stopping early",
				"step", step,
				"patience", s.Convergence.Patience,
				"global_best", globalFit,
			)
			break
		}
	}

	return &Outcome{
		Strategy:    SwarmName,
		Best:        globalFit,
		Position:    global,
		Evaluations: e.count,
		History:     history,
	}, nil
}

// hybridCandidates marks the particles ranked in the top HybridCount by
// fitness. Membership is by index, so equal fitness values never admit more
// than HybridCount particles.
func (s Swarm) hybridCandidates(fitness []float64) ([]bool, error) {
	marked := make([]bool, len(fitness))
	if !s.Hybridize {
		return marked, nil
	}
	top, err := terrain.TopKIndices(fitness, s.HybridCount)
	if err != nil {
		return nil, fmt.Errorf("hybrid count: %w", err)
	}
	for _, i := range top {
		marked[i] = true
	}
	return marked, nil
}

func (s Swarm) observe(step int, particles []particle, globalFit float64) {
	if s.Observer == nil {
		return
	}
	positions := make([]terrain.Position, len(particles))
	for i, p := range particles {
		positions[i] = p.pos
	}
	s.Observer.ObserveStep(step, positions, globalFit)
}

// centering pulls a coordinate more than one standard deviation away from
// the mean back towards it.
func centering(c int, mean, sd float64, w int) int {
	d := float64(c) - mean
	if !(math.Abs(d) > sd) {
		return 0
	}
	if d > 0 {
		return -w
	}
	return w
}

// attraction moves c towards target; a coordinate equal to the target is
// pushed in the positive direction.
func attraction(c, target, w int) int {
	if c > target {
		return -w
	}
	return w
}

// argmax returns the first index holding the maximum value.
func argmax(values []float64) int {
	best := 0
	for i, v := range values[1:] {
		if v > values[best] {
			best = i + 1
		}
	}
	return best
}
