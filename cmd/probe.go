package main

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/peaksearch/internal/terrain"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <x> <y>",
	Short: "Print the altitude at a coordinate",
	Long: `Looks up the altitude stored for a grid-aligned coordinate. Coordinates
outside the grid are reported as such instead of as altitude 0.`,
	Args: cobra.ExactArgs(2),
	RunE: runProbe,
}

func init() {
	addDatasetFlags(probeCmd)
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid x coordinate %q: %w", args[0], err)
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid y coordinate %q: %w", args[1], err)
	}

	run, err := resolveRun(cmd)
	if err != nil {
		return err
	}
	g, err := loadGrid(run)
	if err != nil {
		return err
	}

	z, idx, err := probe(g, terrain.Position{X: x, Y: y})
	if err != nil {
		return err
	}
	fmt.Printf("(%d, %d) -> cell [%d, %d]: %.2f\n", x, y, idx.X, idx.Y, z)
	return nil
}

// probe returns the altitude and cell index of an aligned in-grid position.
func probe(g *terrain.Grid, p terrain.Position) (float64, terrain.Index, error) {
	ext := g.Extent()
	if !ext.Aligned(p) {
		return 0, terrain.Index{}, fmt.Errorf("(%d, %d) with spacing %d: %w", p.X, p.Y, ext.Spacing, terrain.ErrMisaligned)
	}
	idx := g.ToIndex(p)
	z, ok := g.LookupChecked(idx.X, idx.Y)
	if !ok {
		return 0, idx, fmt.Errorf("(%d, %d): %w", p.X, p.Y, terrain.ErrOutsideExtent)
	}
	return z, idx, nil
}
