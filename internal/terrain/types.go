package terrain

// Position is a real-world coordinate pair. Positions handed to the grid
// must be multiples of the grid spacing relative to the extent origin.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Index addresses a grid cell by column (X) and row (Y).
type Index struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Record is one (x, y, z) sample of an elevation dataset.
type Record struct {
	X, Y int
	Z    float64
}

// Extent describes how real-world coordinates map onto grid indices.
//
//	xIndex = (x - XOrigin) / Spacing
//	yIndex = (YOrigin - y) / Spacing
//
// Row 0 is the northernmost row, so y decreases as the row index grows.
type Extent struct {
	XOrigin int `json:"xOrigin" toml:"x_origin"`
	YOrigin int `json:"yOrigin" toml:"y_origin"`
	Spacing int `json:"spacing" toml:"spacing"`
	Width   int `json:"width" toml:"width"`
	Height  int `json:"height" toml:"height"`
}

// DefaultSpacing is the distance between adjacent sampleable coordinates.
const DefaultSpacing = 200

// DHM200Extent returns the extent of the swisstopo DHM25/200 height model:
// x in [480000, 865000), y in (74000, 302000], 200 m cells.
func DHM200Extent() Extent {
	return Extent{
		XOrigin: 480000,
		YOrigin: 302000,
		Spacing: DefaultSpacing,
		Width:   1925,
		Height:  1141,
	}
}

// ExtentFromRecords infers the smallest extent covering all records.
func ExtentFromRecords(records []Record, spacing int) (Extent, error) {
	if len(records) == 0 {
		return Extent{}, ErrEmptyGrid
	}
	if spacing <= 0 {
		return Extent{}, ErrInvalidSpacing
	}

	minX, maxX := records[0].X, records[0].X
	minY, maxY := records[0].Y, records[0].Y
	for _, r := range records[1:] {
		minX = min(minX, r.X)
		maxX = max(maxX, r.X)
		minY = min(minY, r.Y)
		maxY = max(maxY, r.Y)
	}

	return Extent{
		XOrigin: minX,
		YOrigin: maxY,
		Spacing: spacing,
		Width:   (maxX-minX)/spacing + 1,
		Height:  (maxY-minY)/spacing + 1,
	}, nil
}

// Validate checks that the extent describes a non-empty grid.
func (e Extent) Validate() error {
	if e.Spacing <= 0 {
		return ErrInvalidSpacing
	}
	if e.Width <= 0 || e.Height <= 0 {
		return ErrEmptyGrid
	}
	return nil
}

// ToIndex maps a position to its cell index. No rounding is applied.
func (e Extent) ToIndex(p Position) Index {
	return Index{
		X: (p.X - e.XOrigin) / e.Spacing,
		Y: (e.YOrigin - p.Y) / e.Spacing,
	}
}

// ToPosition is the inverse of ToIndex.
func (e Extent) ToPosition(i Index) Position {
	return Position{
		X: e.XOrigin + i.X*e.Spacing,
		Y: e.YOrigin - i.Y*e.Spacing,
	}
}

// Aligned reports whether p lies exactly on a grid coordinate.
func (e Extent) Aligned(p Position) bool {
	return (p.X-e.XOrigin)%e.Spacing == 0 && (e.YOrigin-p.Y)%e.Spacing == 0
}
