package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/cwbudde/peaksearch/internal/plot"
	"github.com/spf13/cobra"
)

var (
	plotDir    string
	jsonOutput bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single search",
	Long: `Loads the dataset, runs the selected strategy once and prints the best
altitude found, its coordinate and the number of evaluations used.`,
	RunE: runSearch,
}

func init() {
	addDatasetFlags(runCmd)
	addSearchFlags(runCmd)
	runCmd.Flags().StringVar(&plotDir, "plot-dir", "", "Swarm only: write step_NNN.png and convergence.png here")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the outcome as JSON")

	rootCmd.AddCommand(runCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	run, err := resolveRun(cmd)
	if err != nil {
		return err
	}

	g, err := loadGrid(run)
	if err != nil {
		return err
	}

	var plotter *plot.SwarmPlotter
	if plotDir != "" {
		if run.Search.Strategy != opt.SwarmName {
			return fmt.Errorf("--plot-dir requires the %s strategy", opt.SwarmName)
		}
		plotter = plot.NewSwarmPlotter(g.Extent(), plotDir)
		run.Search.Swarm.Observer = plotter
	}

	rng := rand.New(rand.NewSource(run.Seed))
	out, err := opt.Run(g, run.Search, rng)
	if err != nil {
		return err
	}

	if plotter != nil {
		n, err := plotter.GeneratePlots()
		if err != nil {
			return fmt.Errorf("failed to write plots: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d plots to %s\n", n, plotDir)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("%s: best altitude %.2f at (%d, %d) after %d evaluations\n",
		out.Strategy, out.Best, out.Position.X, out.Position.Y, out.Evaluations)
	return nil
}
