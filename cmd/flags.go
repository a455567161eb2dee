package main

import (
	"fmt"

	"github.com/cwbudde/peaksearch/internal/config"
	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/cwbudde/peaksearch/internal/terrain"
	"github.com/spf13/cobra"
)

// Flags shared by the commands that load a dataset and run a search.
// Values set explicitly on the command line override the run file.
var (
	datasetPath string
	dataDir     string
	inferExtent bool
	seed        int64

	strategyName    string
	evaluations     int
	restarts        int
	particles       int
	timeSteps       int
	globalWeight    int
	localWeight     int
	centeringWeight int
	inertiaX        int
	inertiaY        int
	hybridize       bool
	hybridCount     int
	patience        int
	iters           int
	popSize         int
)

func addDatasetFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "XYZ elevation dataset (x y z per line)")
	cmd.Flags().BoolVar(&inferExtent, "infer-extent", false, "Infer the grid extent from the dataset instead of using the DHM200 extent")
	cmd.Flags().StringVar(&dataDir, "data-dir", d.DataDir, "Base directory for reports")
}

func addSearchFlags(cmd *cobra.Command) {
	d := config.Default()
	s := d.Search

	cmd.Flags().StringVar(&strategyName, "strategy", string(s.Strategy), fmt.Sprintf("Search strategy %v", opt.Names()))
	cmd.Flags().Int64Var(&seed, "seed", d.Seed, "Random seed")

	cmd.Flags().IntVar(&evaluations, "evaluations", s.Random.Evaluations, "Random search: number of samples")
	cmd.Flags().IntVar(&restarts, "restarts", s.HillClimb.Restarts, "Hill climbing: restarts after the first climb")

	cmd.Flags().IntVar(&particles, "particles", s.Swarm.Particles, "Swarm: number of particles")
	cmd.Flags().IntVar(&timeSteps, "steps", s.Swarm.TimeSteps, "Swarm: number of time steps")
	cmd.Flags().IntVar(&globalWeight, "global-weight", s.Swarm.GlobalWeight, "Swarm: attraction to the global best, in cells")
	cmd.Flags().IntVar(&localWeight, "local-weight", s.Swarm.LocalWeight, "Swarm: attraction to the personal best, in cells")
	cmd.Flags().IntVar(&centeringWeight, "centering-weight", s.Swarm.CenteringWeight, "Swarm: pull of outlying particles towards the swarm mean, in cells")
	cmd.Flags().IntVar(&inertiaX, "inertia-x", s.Swarm.Inertia.DX, "Swarm: constant x drift, in cells")
	cmd.Flags().IntVar(&inertiaY, "inertia-y", s.Swarm.Inertia.DY, "Swarm: constant y drift, in cells")
	cmd.Flags().BoolVar(&hybridize, "hybridize", s.Swarm.Hybridize, "Swarm: let the best particles take hill-climbing steps")
	cmd.Flags().IntVar(&hybridCount, "hybrid-count", s.Swarm.HybridCount, "Swarm: number of hill-climbing particles")
	cmd.Flags().IntVar(&patience, "patience", s.Swarm.Convergence.Patience, "Swarm: stop after N steps without improvement (0 = run all steps)")

	cmd.Flags().IntVar(&iters, "iters", s.Mayfly.Iterations, "Mayfly: iterations")
	cmd.Flags().IntVar(&popSize, "pop", s.Mayfly.Population, "Mayfly: population size")
}

// resolveRun loads the run file given by --config (or the defaults) and
// applies every flag the user set explicitly.
func resolveRun(cmd *cobra.Command) (*config.Run, error) {
	var run *config.Run
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		run = loaded
	} else {
		d := config.Default()
		run = &d
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("dataset") {
		run.Dataset = datasetPath
	}
	if changed("data-dir") {
		run.DataDir = dataDir
	}
	if inferExtent {
		run.Extent = terrain.Extent{}
	}
	if changed("seed") {
		run.Seed = seed
	}

	s := &run.Search
	if changed("strategy") {
		s.Strategy = opt.Name(strategyName)
	}
	if changed("evaluations") {
		s.Random.Evaluations = evaluations
	}
	if changed("restarts") {
		s.HillClimb.Restarts = restarts
	}
	if changed("particles") {
		s.Swarm.Particles = particles
	}
	if changed("steps") {
		s.Swarm.TimeSteps = timeSteps
	}
	if changed("global-weight") {
		s.Swarm.GlobalWeight = globalWeight
	}
	if changed("local-weight") {
		s.Swarm.LocalWeight = localWeight
	}
	if changed("centering-weight") {
		s.Swarm.CenteringWeight = centeringWeight
	}
	if changed("inertia-x") {
		s.Swarm.Inertia.DX = inertiaX
	}
	if changed("inertia-y") {
		s.Swarm.Inertia.DY = inertiaY
	}
	if changed("hybridize") {
		s.Swarm.Hybridize = hybridize
	}
	if changed("hybrid-count") {
		s.Swarm.HybridCount = hybridCount
	}
	if changed("patience") {
		s.Swarm.Convergence.Patience = patience
	}
	if changed("iters") {
		s.Mayfly.Iterations = iters
	}
	if changed("pop") {
		s.Mayfly.Population = popSize
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

// loadGrid reads the run's dataset.
func loadGrid(run *config.Run) (*terrain.Grid, error) {
	if run.Dataset == "" {
		return nil, fmt.Errorf("no dataset given (use --dataset or set dataset in the run file)")
	}
	g, err := terrain.LoadXYZ(run.Dataset, run.Extent)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return g, nil
}
