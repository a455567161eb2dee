package server

import (
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/peaksearch/internal/opt"
)

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	config := DefaultJobConfig()
	config.Search.Strategy = opt.HillClimbName
	config.Trials = 3

	job := jm.CreateJob(config)

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}

	if job.Config.Search.Strategy != opt.HillClimbName || job.Config.Trials != 3 {
		t.Errorf("Config not set correctly: %+v", job.Config)
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(DefaultJobConfig())

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Fatal("Job should exist")
	}

	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	// Snapshots are detached from the managed job
	retrieved.State = StateFailed
	again, _ := jm.GetJob(job.ID)
	if again.State != StatePending {
		t.Errorf("Snapshot mutation leaked into manager, state %s", again.State)
	}

	_, exists = jm.GetJob("nonexistent")
	if exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	first := jm.CreateJob(DefaultJobConfig())
	time.Sleep(time.Millisecond)
	second := jm.CreateJob(DefaultJobConfig())

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID || jobs[1].ID != second.ID {
		t.Error("Jobs should be listed oldest first")
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(DefaultJobConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.TrialsDone = 1
		j.Best = 4556.63
	})
	if err != nil {
		t.Errorf("UpdateJob failed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Errorf("State not updated, got %s", updated.State)
	}
	if updated.TrialsDone != 1 || updated.Best != 4556.63 {
		t.Errorf("Progress not updated: %+v", updated)
	}

	if err := jm.UpdateJob("nonexistent", func(j *Job) {}); err == nil {
		t.Error("Should fail to update nonexistent job")
	}
}

func TestJobManager_GetRunningJobs(t *testing.T) {
	jm := NewJobManager()

	job1 := jm.CreateJob(DefaultJobConfig())
	jm.CreateJob(DefaultJobConfig())

	jm.UpdateJob(job1.ID, func(j *Job) {
		j.State = StateRunning
	})

	running := jm.GetRunningJobs()
	if len(running) != 1 {
		t.Fatalf("Expected 1 running job, got %d", len(running))
	}
	if running[0].ID != job1.ID {
		t.Error("Wrong job returned as running")
	}
}

func TestJobConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*JobConfig)
		wantErr string
	}{
		{"defaults", func(c *JobConfig) {}, ""},
		{"zero trials", func(c *JobConfig) { c.Trials = 0 }, "trials must be positive"},
		{"unknown strategy", func(c *JobConfig) { c.Search.Strategy = "annealing" }, "unknown strategy"},
		{"bad swarm", func(c *JobConfig) {
			c.Search.Strategy = opt.SwarmName
			c.Search.Swarm.Particles = 0
		}, "particles must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultJobConfig()
			tt.mutate(&config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
