package terrain

import (
	"fmt"
	"math/rand"
)

// Grid is a dense, read-only altitude raster. It is immutable once built and
// safe for concurrent reads.
//
// Cells outside the populated region hold 0, and lookups outside
// [0, Width) x [0, Height) also return 0. Callers that need to tell the
// boundary apart from sea level use LookupChecked.
type Grid struct {
	extent Extent
	cells  []float64 // row-major, cells[y*width+x]
}

// NewGrid builds a grid from rows indexed as rows[yIndex][xIndex].
// A zero Width or Height in ext is taken from rows; a non-zero one must match.
func NewGrid(rows [][]float64, ext Extent) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	if ext.Spacing <= 0 {
		return nil, ErrInvalidSpacing
	}

	width := len(rows[0])
	cells := make([]float64, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", y, len(row), width, ErrNonRectangular)
		}
		cells = append(cells, row...)
	}

	if (ext.Width != 0 && ext.Width != width) || (ext.Height != 0 && ext.Height != len(rows)) {
		return nil, fmt.Errorf("rows are %dx%d, extent is %dx%d: %w",
			width, len(rows), ext.Width, ext.Height, ErrDimensionMismatch)
	}

	ext.Width = width
	ext.Height = len(rows)
	return &Grid{extent: ext, cells: cells}, nil
}

// BuildGrid places records into a zero-filled grid of the given extent.
// Record order does not matter; later duplicates overwrite earlier ones.
func BuildGrid(records []Record, ext Extent) (*Grid, error) {
	if err := ext.Validate(); err != nil {
		return nil, err
	}

	g := &Grid{
		extent: ext,
		cells:  make([]float64, ext.Width*ext.Height),
	}

	for n, r := range records {
		p := Position{X: r.X, Y: r.Y}
		if !ext.Aligned(p) {
			return nil, fmt.Errorf("record %d (%d, %d): %w", n, r.X, r.Y, ErrMisaligned)
		}
		idx := ext.ToIndex(p)
		if !g.InBounds(idx.X, idx.Y) {
			return nil, fmt.Errorf("record %d (%d, %d): %w", n, r.X, r.Y, ErrOutsideExtent)
		}
		g.cells[idx.Y*ext.Width+idx.X] = r.Z
	}

	return g, nil
}

// Extent returns the coordinate mapping of the grid.
func (g *Grid) Extent() Extent { return g.extent }

// Width is the number of columns.
func (g *Grid) Width() int { return g.extent.Width }

// Height is the number of rows.
func (g *Grid) Height() int { return g.extent.Height }

// Spacing is the distance between neighbouring coordinates.
func (g *Grid) Spacing() int { return g.extent.Spacing }

// Empty reports whether the grid has no cells. A nil grid is empty.
func (g *Grid) Empty() bool {
	return g == nil || len(g.cells) == 0
}

// InBounds reports whether (x, y) addresses a stored cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.extent.Width && y >= 0 && y < g.extent.Height
}

// Lookup returns the altitude at (x, y), or 0 outside the grid.
func (g *Grid) Lookup(x, y int) float64 {
	v, _ := g.LookupChecked(x, y)
	return v
}

// LookupChecked is Lookup with an explicit in-bounds flag.
func (g *Grid) LookupChecked(x, y int) (float64, bool) {
	if !g.InBounds(x, y) {
		return 0, false
	}
	return g.cells[y*g.extent.Width+x], true
}

// ToIndex maps a grid-aligned position to its cell index.
func (g *Grid) ToIndex(p Position) Index { return g.extent.ToIndex(p) }

// ToPosition maps a cell index back to its coordinate.
func (g *Grid) ToPosition(i Index) Position { return g.extent.ToPosition(i) }

// At returns the altitude at a position.
func (g *Grid) At(p Position) float64 {
	idx := g.extent.ToIndex(p)
	return g.Lookup(idx.X, idx.Y)
}

// Max scans the grid and returns the highest altitude and its index.
// The first cell in row-major order wins ties.
func (g *Grid) Max() (float64, Index, error) {
	if g.Empty() {
		return 0, Index{}, ErrEmptyGrid
	}

	best, at := g.cells[0], 0
	for i, v := range g.cells {
		if v > best {
			best, at = v, i
		}
	}
	return best, Index{X: at % g.extent.Width, Y: at / g.extent.Width}, nil
}

// RandomPosition draws a uniformly random grid-aligned position inside the grid.
func (g *Grid) RandomPosition(rng *rand.Rand) Position {
	return g.extent.ToPosition(Index{
		X: rng.Intn(g.extent.Width),
		Y: rng.Intn(g.extent.Height),
	})
}
