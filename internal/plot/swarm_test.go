package plot

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/cwbudde/peaksearch/internal/terrain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(t *testing.T) *terrain.Grid {
	t.Helper()
	rows := make([][]float64, 12)
	for y := range rows {
		rows[y] = make([]float64, 16)
		for x := range rows[y] {
			rows[y][x] = float64(x + y)
		}
	}
	g, err := terrain.NewGrid(rows, terrain.Extent{XOrigin: 1000, YOrigin: 5000, Spacing: 200})
	require.NoError(t, err)
	return g
}

func TestObserveStepCopiesPositions(t *testing.T) {
	g := testGrid(t)
	sp := NewSwarmPlotter(g.Extent(), t.TempDir())

	positions := []terrain.Position{g.ToPosition(terrain.Index{X: 3, Y: 4})}
	sp.ObserveStep(0, positions, 7)
	positions[0] = g.ToPosition(terrain.Index{X: 9, Y: 9})

	require.Equal(t, 1, sp.Steps())
	assert.Equal(t, terrain.Index{X: 3, Y: 4}, sp.frames[0].cells[0])
}

func TestGeneratePlotsFromSwarm(t *testing.T) {
	g := testGrid(t)
	dir := filepath.Join(t.TempDir(), "plots")
	sp := NewSwarmPlotter(g.Extent(), dir)

	s := opt.DefaultSwarm()
	s.Particles = 10
	s.TimeSteps = 3
	s.GlobalWeight = 1
	s.HybridCount = 3
	s.Observer = sp

	_, err := s.Search(g, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, 4, sp.Steps())

	n, err := sp.GeneratePlots()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for _, name := range []string{"step_000.png", "step_003.png", "convergence.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestGeneratePlotsEmpty(t *testing.T) {
	sp := NewSwarmPlotter(terrain.DHM200Extent(), t.TempDir())
	n, err := sp.GeneratePlots()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	sp = NewSwarmPlotter(terrain.DHM200Extent(), "")
	sp.ObserveStep(0, nil, 0)
	_, err = sp.GeneratePlots()
	assert.Error(t, err)
}
