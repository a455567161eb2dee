package opt

import (
	"math/rand"
	"testing"

	"github.com/cwbudde/peaksearch/internal/terrain"
	"github.com/stretchr/testify/require"
)

// peakRows is a 3x3 surface whose single maximum sits in the centre.
var peakRows = [][]float64{
	{1, 2, 1},
	{2, 9, 2},
	{1, 2, 1},
}

func mustGrid(t *testing.T, rows [][]float64) *terrain.Grid {
	t.Helper()
	g, err := terrain.NewGrid(rows, terrain.Extent{XOrigin: 480000, YOrigin: 302000, Spacing: terrain.DefaultSpacing})
	require.NoError(t, err)
	return g
}

// randomRows fills a w x h grid with integer altitudes in [1, 1000].
func randomRows(w, h int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, h)
	for y := range rows {
		rows[y] = make([]float64, w)
		for x := range rows[y] {
			rows[y][x] = float64(rng.Intn(1000) + 1)
		}
	}
	return rows
}

// coneRows has a single peak at (cx, cy) and falls off with Manhattan distance.
func coneRows(w, h, cx, cy int) [][]float64 {
	rows := make([][]float64, h)
	for y := range rows {
		rows[y] = make([]float64, w)
		for x := range rows[y] {
			rows[y][x] = float64(1000 - abs(x-cx) - abs(y-cy))
		}
	}
	return rows
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxOf(rows [][]float64) float64 {
	best := rows[0][0]
	for _, row := range rows {
		for _, v := range row {
			if v > best {
				best = v
			}
		}
	}
	return best
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
