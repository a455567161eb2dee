package opt

import (
	"math/rand"

	"github.com/cwbudde/peaksearch/internal/terrain"
)

// BruteForce evaluates every cell once and always finds the global maximum.
type BruteForce struct{}

func (BruteForce) Name() Name { return BruteForceName }

// Search scans column by column. The first cell reaching the maximum is reported.
func (BruteForce) Search(g *terrain.Grid, _ *rand.Rand) (*Outcome, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}

	e := newEvaluator(g)
	best := e.lookup(0, 0)
	at := terrain.Index{}
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			if x == 0 && y == 0 {
				continue
			}
			if f := e.lookup(x, y); f > best {
				best, at = f, terrain.Index{X: x, Y: y}
			}
		}
	}

	return &Outcome{
		Strategy:    BruteForceName,
		Best:        best,
		Position:    g.ToPosition(at),
		Evaluations: e.count,
	}, nil
}
