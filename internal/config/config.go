// Package config reads TOML run files.
//
// A run file names the dataset, the grid extent and the search to run:
//
//	dataset = "$DATA/DHM200.xyz"
//	seed    = 42
//	trials  = 100
//
//	[extent]
//	x_origin = 480000
//	y_origin = 302000
//	spacing  = 200
//	width    = 1925
//	height   = 1141
//
//	[search]
//	strategy = "pso"
//
//	[search.swarm]
//	particles     = 100
//	time_steps    = 20
//	global_weight = 20
//	hybridize     = true
//	hybrid_count  = 30
//
// Omitted keys keep their defaults. Paths are expanded with os.ExpandEnv.
package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/cwbudde/peaksearch/internal/terrain"
)

// Run is the content of a run file.
type Run struct {
	Dataset string `toml:"dataset"`
	// DataDir is where reports and plots are written
	DataDir string `toml:"data_dir"`
	Seed    int64  `toml:"seed"`
	Trials  int    `toml:"trials"`

	// Extent of the dataset. A zero extent is inferred from the records.
	Extent terrain.Extent `toml:"extent"`
	Search opt.Config     `toml:"search"`
}

// Default returns the settings used when no run file is given.
func Default() Run {
	return Run{
		DataDir: "./data",
		Seed:    42,
		Trials:  1,
		Extent:  terrain.DHM200Extent(),
		Search:  opt.DefaultConfig(),
	}
}

// Load reads a run file on top of Default.
func Load(path string) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run file: %w", err)
	}
	defer f.Close()

	run, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return run, nil
}

// Decode parses a run file from r on top of Default. Unknown keys are an
// error so that typos do not silently fall back to defaults.
func Decode(r io.Reader) (*Run, error) {
	run := Default()

	md, err := toml.NewDecoder(r).Decode(&run)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in run file: %s", strings.Join(keys, ", "))
	}

	run.Dataset = os.ExpandEnv(run.Dataset)
	run.DataDir = os.ExpandEnv(run.DataDir)

	if err := run.Validate(); err != nil {
		return nil, err
	}
	return &run, nil
}

// Validate checks the run settings and the selected strategy's parameters.
func (r *Run) Validate() error {
	if r.Trials < 1 {
		return fmt.Errorf("trials must be positive, got %d", r.Trials)
	}
	if r.Extent != (terrain.Extent{}) {
		if err := r.Extent.Validate(); err != nil {
			return fmt.Errorf("extent: %w", err)
		}
	}
	if err := r.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}
