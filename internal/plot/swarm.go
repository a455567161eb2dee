// Package plot renders swarm runs as PNG images.
package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"github.com/cwbudde/peaksearch/internal/terrain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// frame is one recorded time step
type frame struct {
	step       int
	cells      []terrain.Index
	globalBest float64
}

// SwarmPlotter records swarm time steps and writes one scatter plot per step
// plus a convergence plot. It implements opt.SwarmObserver.
type SwarmPlotter struct {
	mu        sync.Mutex
	extent    terrain.Extent
	outputDir string
	frames    []frame

	// Size of every written image
	Width  vg.Length
	Height vg.Length
}

// NewSwarmPlotter creates a plotter for a grid with the given extent.
// Images are written below outputDir.
func NewSwarmPlotter(ext terrain.Extent, outputDir string) *SwarmPlotter {
	return &SwarmPlotter{
		extent:    ext,
		outputDir: outputDir,
		Width:     8 * vg.Inch,
		Height:    6 * vg.Inch,
	}
}

// ObserveStep copies the particle cells of one time step.
func (sp *SwarmPlotter) ObserveStep(step int, positions []terrain.Position, globalBest float64) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	cells := make([]terrain.Index, len(positions))
	for i, p := range positions {
		cells[i] = sp.extent.ToIndex(p)
	}
	sp.frames = append(sp.frames, frame{step: step, cells: cells, globalBest: globalBest})
}

// Steps returns the number of recorded time steps.
func (sp *SwarmPlotter) Steps() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.frames)
}

// GeneratePlots writes step_NNN.png for every recorded step and
// convergence.png. It returns the number of files written.
func (sp *SwarmPlotter) GeneratePlots() (int, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}
	if len(sp.frames) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(sp.outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	count := 0
	for _, f := range sp.frames {
		if err := sp.stepPlot(f); err != nil {
			return count, fmt.Errorf("step %d: %w", f.step, err)
		}
		count++
	}

	if err := sp.convergencePlot(); err != nil {
		return count, err
	}
	return count + 1, nil
}

func (sp *SwarmPlotter) stepPlot(f frame) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Swarm - step %d (best %.2f)", f.step, f.globalBest)
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"

	// Fixed axes so consecutive frames line up.
	p.X.Min, p.X.Max = 0, float64(sp.extent.Width)
	p.Y.Min, p.Y.Max = 0, float64(sp.extent.Height)
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(f.cells))
	for i, c := range f.cells {
		pts[i] = plotter.XY{X: float64(c.X), Y: float64(c.Y)}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)

	file := filepath.Join(sp.outputDir, fmt.Sprintf("step_%03d.png", f.step))
	if err := p.Save(sp.Width, sp.Height, file); err != nil {
		return fmt.Errorf("save step plot: %w", err)
	}
	return nil
}

func (sp *SwarmPlotter) convergencePlot() error {
	p := plot.New()
	p.Title.Text = "Swarm - global best"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Altitude"

	pts := make(plotter.XYs, len(sp.frames))
	for i, f := range sp.frames {
		pts[i] = plotter.XY{X: float64(f.step), Y: f.globalBest}
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{B: 200, A: 255}
	line.Width = vg.Points(1)
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)

	file := filepath.Join(sp.outputDir, "convergence.png")
	if err := p.Save(sp.Width, sp.Height, file); err != nil {
		return fmt.Errorf("save convergence plot: %w", err)
	}
	return nil
}
