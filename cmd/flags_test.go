package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/cwbudde/peaksearch/internal/terrain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	configPath = ""
	cmd := &cobra.Command{Use: "test"}
	addDatasetFlags(cmd)
	addSearchFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestResolveRunDefaults(t *testing.T) {
	run, err := resolveRun(newSearchCommand(t))
	require.NoError(t, err)

	assert.Equal(t, opt.DefaultConfig(), run.Search)
	assert.Equal(t, terrain.DHM200Extent(), run.Extent)
	assert.Equal(t, int64(42), run.Seed)
}

func TestResolveRunFlagsOverride(t *testing.T) {
	run, err := resolveRun(newSearchCommand(t,
		"--strategy", "pso",
		"--particles", "40",
		"--hybrid-count", "5",
		"--inertia-x", "-1",
		"--seed", "9",
		"--infer-extent",
	))
	require.NoError(t, err)

	assert.Equal(t, opt.SwarmName, run.Search.Strategy)
	assert.Equal(t, 40, run.Search.Swarm.Particles)
	assert.Equal(t, 5, run.Search.Swarm.HybridCount)
	assert.Equal(t, -1, run.Search.Swarm.Inertia.DX)
	assert.Equal(t, int64(9), run.Seed)
	assert.Equal(t, terrain.Extent{}, run.Extent)
	// Flags left alone keep their defaults
	assert.Equal(t, opt.DefaultSwarm().GlobalWeight, run.Search.Swarm.GlobalWeight)
}

func TestResolveRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset = "dhm.xyz"
seed    = 5

[search]
strategy = "random"

[search.random]
evaluations = 10
`), 0644))

	cmd := newSearchCommand(t, "--evaluations", "20")
	configPath = path
	defer func() { configPath = "" }()

	run, err := resolveRun(cmd)
	require.NoError(t, err)

	assert.Equal(t, "dhm.xyz", run.Dataset)
	assert.Equal(t, int64(5), run.Seed)
	assert.Equal(t, opt.RandomName, run.Search.Strategy)
	assert.Equal(t, 20, run.Search.Random.Evaluations)
}

func TestResolveRunRejectsBadParameters(t *testing.T) {
	_, err := resolveRun(newSearchCommand(t, "--strategy", "mayfly", "--pop", "4"))
	assert.True(t, errors.Is(err, opt.ErrInvalidParameter))

	_, err = resolveRun(newSearchCommand(t, "--strategy", "annealing"))
	assert.True(t, errors.Is(err, opt.ErrUnknownStrategy))
}

func TestLoadGridRequiresDataset(t *testing.T) {
	run, err := resolveRun(newSearchCommand(t))
	require.NoError(t, err)

	_, err = loadGrid(run)
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.xyz")
	require.NoError(t, os.WriteFile(path, []byte("1000 2000 10.5\n1200 2000 11\n1000 1800 12\n1200 1800 13.25\n"), 0644))

	run, err := resolveRun(newSearchCommand(t, "--dataset", path, "--infer-extent"))
	require.NoError(t, err)
	g, err := loadGrid(run)
	require.NoError(t, err)

	z, idx, err := probe(g, terrain.Position{X: 1200, Y: 1800})
	require.NoError(t, err)
	assert.Equal(t, 13.25, z)
	assert.Equal(t, terrain.Index{X: 1, Y: 1}, idx)

	_, _, err = probe(g, terrain.Position{X: 1100, Y: 1800})
	assert.ErrorIs(t, err, terrain.ErrMisaligned)

	_, _, err = probe(g, terrain.Position{X: 1400, Y: 1800})
	assert.ErrorIs(t, err, terrain.ErrOutsideExtent)
}
