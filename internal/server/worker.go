package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/peaksearch/internal/eval"
	"github.com/cwbudde/peaksearch/internal/store"
	"github.com/cwbudde/peaksearch/internal/terrain"
)

// Env is what jobs run against: one loaded grid and an optional report store.
type Env struct {
	Grid    *terrain.Grid
	Dataset string
	Reports *store.FSStore
}

// runJob executes a search job in the background. Each trial updates the job
// and is published to stream subscribers. With a report store configured the
// trial trace and the final report are persisted under the job ID.
func runJob(ctx context.Context, jm *JobManager, env Env, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job",
		"job_id", jobID,
		"strategy", job.Config.Search.Strategy,
		"trials", job.Config.Trials,
	)

	if env.Grid.Empty() {
		markJobFailed(jm, jobID, terrain.ErrEmptyGrid)
		return terrain.ErrEmptyGrid
	}

	// Check for cancellation before starting expensive operation
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	sink := &progressSink{jm: jm, jobID: jobID}
	var trace *store.TraceWriter
	if env.Reports != nil {
		tw, err := store.NewTraceWriter(env.Reports.BaseDir(), jobID, false)
		if err != nil {
			markJobFailed(jm, jobID, err)
			return err
		}
		trace = tw
		sink.next = tw
	}

	start := time.Now()
	res, err := eval.Run(ctx, env.Grid, job.Config.Search, eval.Options{
		Trials:   job.Config.Trials,
		Seed:     job.Config.Seed,
		Dataset:  env.Dataset,
		Trace:    sink,
		ReportID: jobID,
	})
	if trace != nil {
		if closeErr := trace.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close trace: %w", closeErr)
		}
	}
	if err != nil {
		if env.Reports != nil {
			if rmErr := env.Reports.DeleteReport(jobID); rmErr != nil {
				slog.Warn("Failed to remove incomplete report", "job_id", jobID, "error", rmErr)
			}
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			markJobCancelled(jm, jobID)
		} else {
			markJobFailed(jm, jobID, err)
		}
		return err
	}
	elapsed := time.Since(start)

	var reportID string
	if env.Reports != nil {
		if err := env.Reports.SaveReport(res.Report); err != nil {
			slog.Warn("Failed to save report", "job_id", jobID, "error", err)
		} else {
			reportID = res.Report.ID
		}
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.SuccessRate = res.Report.SuccessRate
		j.ReportID = reportID
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"best", res.Report.MaxBest,
		"success_rate", res.Report.SuccessRate,
	)

	publishFinal(jm, jobID)
	return nil
}

// progressSink folds finished trials into the job and forwards them to the
// next sink, if any.
type progressSink struct {
	jm    *JobManager
	jobID string
	next  eval.TraceSink
}

func (ps *progressSink) Write(entry store.TraceEntry) error {
	var snapshot Job
	err := ps.jm.UpdateJob(ps.jobID, func(j *Job) {
		j.TrialsDone++
		j.Evaluations += entry.Evaluations
		if j.Position == nil || entry.Best > j.Best {
			pos := entry.Position
			j.Best, j.Position = entry.Best, &pos
		}
		snapshot = *j
	})
	if err != nil {
		return err
	}

	ps.jm.progress.publish(newProgressEvent(&snapshot))

	if ps.next != nil {
		return ps.next.Write(entry)
	}
	return nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	publishFinal(jm, jobID)
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	publishFinal(jm, jobID)
	slog.Info("Job cancelled", "job_id", jobID)
}

// publishFinal sends the job's terminal state to stream subscribers.
func publishFinal(jm *JobManager, jobID string) {
	if job, ok := jm.GetJob(jobID); ok {
		jm.progress.publish(newProgressEvent(job))
	}
}
