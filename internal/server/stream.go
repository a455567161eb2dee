package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ProgressEvent is sent to stream subscribers after every finished trial and
// once more when the job ends.
type ProgressEvent struct {
	JobID       string    `json:"jobId"`
	State       JobState  `json:"state"`
	TrialsDone  int       `json:"trialsDone"`
	Trials      int       `json:"trials"`
	Best        float64   `json:"best"`
	Evaluations int       `json:"evaluations"`
	Timestamp   time.Time `json:"timestamp"`
}

func newProgressEvent(job *Job) ProgressEvent {
	return ProgressEvent{
		JobID:       job.ID,
		State:       job.State,
		TrialsDone:  job.TrialsDone,
		Trials:      job.Config.Trials,
		Best:        job.Best,
		Evaluations: job.Evaluations,
		Timestamp:   time.Now(),
	}
}

// progressHub fans progress events out to the stream subscribers of a job.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type progressHub struct {
	mu   sync.Mutex
	subs map[string]map[chan ProgressEvent]struct{}
}

func newProgressHub() *progressHub {
	return &progressHub{subs: make(map[string]map[chan ProgressEvent]struct{})}
}

// subscribe registers a subscriber for jobID. The returned func removes it.
func (h *progressHub) subscribe(jobID string) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 16)

	h.mu.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[chan ProgressEvent]struct{})
	}
	h.subs[jobID][ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[jobID], ch)
		if len(h.subs[jobID]) == 0 {
			delete(h.subs, jobID)
		}
	}
}

func (h *progressHub) publish(event ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[event.JobID] {
		select {
		case ch <- event:
		default:
			slog.Warn("Stream subscriber lagging, dropping event", "job_id", event.JobID, "trials_done", event.TrialsDone)
		}
	}
}

// handleJobStream sends the job's current state followed by one event per
// finished trial. The stream ends when the job does.
func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request, jobID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Subscribe before taking the snapshot so the final event cannot slip
	// between the two.
	events, unsubscribe := s.jobManager.progress.subscribe(jobID)
	defer unsubscribe()

	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if err := writeSSEEvent(w, newProgressEvent(job)); err != nil {
		slog.Error("Failed to write stream event", "job_id", jobID, "error", err)
		return
	}
	flusher.Flush()
	if job.State.finished() {
		return
	}

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-events:
			if err := writeSSEEvent(w, event); err != nil {
				slog.Error("Failed to write stream event", "job_id", jobID, "error", err)
				return
			}
			flusher.Flush()
			if event.State.finished() {
				return
			}
		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, event ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
