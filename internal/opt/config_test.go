package opt

import (
	"errors"
	"testing"

	"github.com/cwbudde/peaksearch/internal/terrain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidForEveryStrategy(t *testing.T) {
	for _, name := range Names() {
		cfg := DefaultConfig()
		cfg.Strategy = name
		assert.NoError(t, cfg.Validate(), "strategy %s", name)
	}
}

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New(Config{Strategy: "annealing"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestNewReturnsSelectedStrategy(t *testing.T) {
	for _, name := range Names() {
		cfg := DefaultConfig()
		cfg.Strategy = name
		s, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}
}

func TestRunDispatch(t *testing.T) {
	g := mustGrid(t, peakRows)

	cfg := DefaultConfig()
	cfg.Random.Evaluations = 500
	cfg.HillClimb.Restarts = 3
	cfg.Swarm = Swarm{Particles: 10, TimeSteps: 5, GlobalWeight: 1, Hybridize: true, HybridCount: 10}
	cfg.Mayfly = Mayfly{Iterations: 20, Population: 20}

	for _, name := range []Name{BruteForceName, RandomName, HillClimbName, SwarmName} {
		t.Run(string(name), func(t *testing.T) {
			cfg.Strategy = name
			out, err := Run(g, cfg, newRand(5))
			require.NoError(t, err)
			assert.Equal(t, name, out.Strategy)
			assert.Equal(t, 9.0, out.Best)
			assert.Positive(t, out.Evaluations)
		})
	}

	t.Run(string(MayflyName), func(t *testing.T) {
		cfg.Strategy = MayflyName
		out, err := Run(g, cfg, newRand(5))
		require.NoError(t, err)
		assert.Equal(t, MayflyName, out.Strategy)
		assert.LessOrEqual(t, out.Best, 9.0)
	})
}

func TestRunRejectsEmptyGridAndBadConfig(t *testing.T) {
	_, err := Run(nil, DefaultConfig(), newRand(1))
	assert.True(t, errors.Is(err, terrain.ErrEmptyGrid))

	cfg := DefaultConfig()
	cfg.Strategy = RandomName
	cfg.Random.Evaluations = 0
	_, err = Run(mustGrid(t, peakRows), cfg, newRand(1))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
