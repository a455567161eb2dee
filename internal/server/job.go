package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/cwbudde/peaksearch/internal/terrain"
	"github.com/google/uuid"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// finished reports whether the job can no longer change.
func (s JobState) finished() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// JobConfig is the request body of a new job
type JobConfig struct {
	Search opt.Config `json:"search"`
	Seed   int64      `json:"seed"`
	Trials int        `json:"trials"`
}

// DefaultJobConfig returns the values used for fields a request omits.
func DefaultJobConfig() JobConfig {
	return JobConfig{
		Search: opt.DefaultConfig(),
		Seed:   42,
		Trials: 1,
	}
}

// Validate checks the trial count and the strategy parameters.
func (c JobConfig) Validate() error {
	if c.Trials < 1 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	return c.Search.Validate()
}

// Job represents a search job
type Job struct {
	ID          string            `json:"id"`
	State       JobState          `json:"state"`
	Config      JobConfig         `json:"config"`
	TrialsDone  int               `json:"trialsDone"`
	Best        float64           `json:"best"`
	Position    *terrain.Position `json:"position,omitempty"`
	Evaluations int               `json:"evaluations"`
	SuccessRate float64           `json:"successRate"`
	ReportID    string            `json:"reportId,omitempty"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     *time.Time        `json:"endTime,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs
type JobManager struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	progress *progressHub
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:     make(map[string]*Job),
		progress: newProgressHub(),
	}
}

// CreateJob creates a new job with the given configuration
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	snapshot := *job
	return &snapshot
}

// GetJob returns a snapshot of a job. Later updates are not visible
// through the returned value.
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// ListJobs returns snapshots of all jobs, oldest first
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].StartTime.Before(jobs[j].StartTime)
	})
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// GetRunningJobs returns all jobs currently in the running state
func (jm *JobManager) GetRunningJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	runningJobs := make([]*Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			snapshot := *job
			runningJobs = append(runningJobs, &snapshot)
		}
	}
	return runningJobs
}
