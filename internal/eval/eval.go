// Package eval runs a search configuration repeatedly and summarises how
// fast and how reliably it finds the summit.
package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/cwbudde/peaksearch/internal/store"
	"github.com/cwbudde/peaksearch/internal/terrain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoTrials is returned when Options.Trials is not positive.
var ErrNoTrials = errors.New("eval: trials must be positive")

// TraceSink receives one entry per finished trial.
type TraceSink interface {
	Write(entry store.TraceEntry) error
}

// Options controls an evaluation.
type Options struct {
	Trials int
	// Seed of the first trial; trial i uses Seed+i
	Seed int64
	// Target altitude counted as success. Nil means the grid maximum.
	Target *float64

	Dataset string
	Trace   TraceSink

	// ReportID names the report; a fresh ID is generated when empty
	ReportID string
}

// Result holds the summary report and the per-trial entries it was built from.
type Result struct {
	Report *store.Report
	Trials []store.TraceEntry
}

// Run evaluates cfg on g. The context is checked between trials; a
// cancelled evaluation returns the context error and no report.
func Run(ctx context.Context, g *terrain.Grid, cfg opt.Config, opts Options) (*Result, error) {
	if opts.Trials <= 0 {
		return nil, ErrNoTrials
	}
	if g.Empty() {
		return nil, terrain.ErrEmptyGrid
	}

	strategy, err := opt.New(cfg)
	if err != nil {
		return nil, err
	}

	target, err := resolveTarget(g, opts.Target)
	if err != nil {
		return nil, err
	}

	report := store.NewReport(opts.Dataset, cfg, opts.Trials, opts.Seed, target)
	if opts.ReportID != "" {
		report.ID = opts.ReportID
	}

	slog.Info("Starting evaluation",
		"id", report.ID,
		"strategy", strategy.Name(),
		"trials", opts.Trials,
		"target", target,
	)

	entries := make([]store.TraceEntry, 0, opts.Trials)
	for i := 0; i < opts.Trials; i++ {
		if err := ctx.Err(); err != nil {
			slog.Info("Evaluation cancelled", "id", report.ID, "completed", i)
			return nil, err
		}

		seed := opts.Seed + int64(i)
		rng := rand.New(rand.NewSource(seed))

		start := time.Now()
		out, err := strategy.Search(g, rng)
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("trial %d failed: %w", i, err)
		}

		entry := store.TraceEntry{
			Trial:       i,
			Seed:        seed,
			Best:        out.Best,
			Position:    out.Position,
			Evaluations: out.Evaluations,
			ElapsedMs:   float64(elapsed.Microseconds()) / 1000,
			Success:     out.Best == target,
			Timestamp:   time.Now(),
		}
		entries = append(entries, entry)

		if opts.Trace != nil {
			if err := opts.Trace.Write(entry); err != nil {
				return nil, fmt.Errorf("failed to write trace: %w", err)
			}
		}

		slog.Debug("Trial finished",
			"trial", i,
			"best", entry.Best,
			"evaluations", entry.Evaluations,
			"success", entry.Success,
		)
	}

	summarize(report, entries)

	slog.Info("Evaluation complete",
		"id", report.ID,
		"successRate", report.SuccessRate,
		"meanTimeMs", report.MeanTimeMs,
		"meanEvaluations", report.MeanEvaluations,
	)
	return &Result{Report: report, Trials: entries}, nil
}

func resolveTarget(g *terrain.Grid, target *float64) (float64, error) {
	if target != nil {
		return *target, nil
	}
	top, _, err := g.Max()
	if err != nil {
		return 0, fmt.Errorf("failed to determine target: %w", err)
	}
	return top, nil
}

// summarize fills the aggregate fields of r from the trial entries.
func summarize(r *store.Report, entries []store.TraceEntry) {
	n := len(entries)
	best := make([]float64, n)
	times := make([]float64, n)
	evals := make([]float64, n)
	successes := 0
	for i, e := range entries {
		best[i] = e.Best
		times[i] = e.ElapsedMs
		evals[i] = float64(e.Evaluations)
		if e.Success {
			successes++
		}
	}

	r.MeanTimeMs = stat.Mean(times, nil)
	r.MeanEvaluations = stat.Mean(evals, nil)
	r.SuccessRate = 100 * float64(successes) / float64(n)
	r.MinBest = floats.Min(best)
	r.MaxBest = floats.Max(best)

	if n > 1 {
		r.MeanBest, r.StdBest = stat.MeanStdDev(best, nil)
	} else {
		r.MeanBest = best[0]
	}
}
