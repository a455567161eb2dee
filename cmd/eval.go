package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/cwbudde/peaksearch/internal/eval"
	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/cwbudde/peaksearch/internal/store"
	"github.com/cwbudde/peaksearch/internal/terrain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	trials     int
	target     float64
	saveReport bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a strategy over repeated trials",
	Long: `Runs the selected strategy for a number of trials with seeds seed, seed+1, ...
and reports the mean run time, success rate (the summit was found) and mean
number of evaluations. Reports are stored under <data-dir>/reports/<id>/.`,
	RunE: runEval,
}

func init() {
	addDatasetFlags(evalCmd)
	addSearchFlags(evalCmd)
	evalCmd.Flags().IntVar(&trials, "trials", 100, "Number of trials")
	evalCmd.Flags().Float64Var(&target, "target", 0, "Altitude counted as success (default: dataset maximum)")
	evalCmd.Flags().BoolVar(&saveReport, "save", true, "Store the report and the trial trace")

	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	run, err := resolveRun(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("trials") || configPath == "" {
		run.Trials = trials
	}

	g, err := loadGrid(run)
	if err != nil {
		return err
	}

	opts := eval.Options{
		Trials:  run.Trials,
		Seed:    run.Seed,
		Dataset: run.Dataset,
	}
	if cmd.Flags().Changed("target") {
		opts.Target = &target
	}

	var reports *store.FSStore
	if saveReport {
		reports, err = store.NewFSStore(run.DataDir)
		if err != nil {
			return fmt.Errorf("failed to create report store: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := evaluateAndStore(ctx, g, run.Search, opts, reports)
	if err != nil {
		return err
	}

	printReport(res.Report)
	return nil
}

// evaluateAndStore runs the trials. With a report store the trial trace is
// streamed to the report directory and the report saved next to it; if the
// run fails the directory is removed again.
func evaluateAndStore(ctx context.Context, g *terrain.Grid, cfg opt.Config, opts eval.Options, reports *store.FSStore) (*eval.Result, error) {
	if reports == nil {
		return eval.Run(ctx, g, cfg, opts)
	}
	if opts.ReportID == "" {
		opts.ReportID = uuid.New().String()
	}

	tw, err := store.NewTraceWriter(reports.BaseDir(), opts.ReportID, false)
	if err != nil {
		return nil, err
	}
	opts.Trace = tw

	res, err := eval.Run(ctx, g, cfg, opts)
	if closeErr := tw.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close trace: %w", closeErr)
	}
	if err == nil {
		if saveErr := reports.SaveReport(res.Report); saveErr != nil {
			err = fmt.Errorf("failed to save report: %w", saveErr)
		}
	}
	if err != nil {
		if rmErr := reports.DeleteReport(opts.ReportID); rmErr != nil {
			slog.Warn("Failed to remove incomplete report", "id", opts.ReportID, "error", rmErr)
		}
		return nil, err
	}

	slog.Info("Report saved", "id", res.Report.ID, "dir", reports.ReportDir(res.Report.ID))
	return res, nil
}

func printReport(r *store.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Report\t%s\n", r.ID)
	fmt.Fprintf(w, "Strategy\t%s\n", r.Config.Strategy)
	fmt.Fprintf(w, "Trials\t%d (seeds %d..%d)\n", r.Trials, r.Seed, r.Seed+int64(r.Trials)-1)
	fmt.Fprintf(w, "Target\t%.2f\n", r.Target)
	fmt.Fprintf(w, "Success rate\t%.1f%%\n", r.SuccessRate)
	fmt.Fprintf(w, "Mean time\t%.3f ms\n", r.MeanTimeMs)
	fmt.Fprintf(w, "Best\t%.2f ± %.2f (min %.2f, max %.2f)\n", r.MeanBest, r.StdBest, r.MinBest, r.MaxBest)
	fmt.Fprintf(w, "Mean evaluations\t%.1f\n", r.MeanEvaluations)
	w.Flush()
}
