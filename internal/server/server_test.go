package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/cwbudde/peaksearch/internal/store"
	"github.com/google/uuid"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reports, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	s := NewServer(":0", Env{Grid: testGrid(t), Dataset: "peak", Reports: reports})
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func TestServer_CreateJob(t *testing.T) {
	s := newTestServer(t)

	body := `{"search": {"strategy": "random", "random": {"evaluations": 50}}, "seed": 3, "trials": 2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.Config.Search.Strategy != opt.RandomName || job.Config.Search.Random.Evaluations != 50 {
		t.Errorf("Search config not decoded: %+v", job.Config.Search)
	}
	// Omitted blocks keep their defaults
	if job.Config.Search.HillClimb != opt.DefaultConfig().HillClimb {
		t.Errorf("Expected default hill climbing block, got %+v", job.Config.Search.HillClimb)
	}
	if job.State != StatePending {
		t.Errorf("Expected pending state, got %s", job.State)
	}
}

func TestServer_CreateJob_Invalid(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"search":`},
		{"unknown strategy", `{"search": {"strategy": "annealing"}}`},
		{"zero trials", `{"trials": 0}`},
		{"small mayfly population", `{"search": {"strategy": "mayfly", "mayfly": {"iterations": 5, "population": 3}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			s.handleCreateJob(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}

	if n := len(s.jobManager.ListJobs()); n != 0 {
		t.Errorf("Rejected requests should not create jobs, got %d", n)
	}
}

func TestServer_ListJobs(t *testing.T) {
	s := newTestServer(t)

	s.jobManager.CreateJob(DefaultJobConfig())
	s.jobManager.CreateJob(DefaultJobConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	s.handleListJobs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var jobs []*Job
	if err := json.NewDecoder(w.Body).Decode(&jobs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestServer_GetJobStatus(t *testing.T) {
	s := newTestServer(t)

	job := s.jobManager.CreateJob(DefaultJobConfig())

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/status", job.ID), nil)
	w := httptest.NewRecorder()

	s.handleGetJobStatus(w, req, job.ID)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["id"] != job.ID {
		t.Error("Response should contain job ID")
	}

	if response["state"] != string(StatePending) {
		t.Errorf("Expected pending state, got %v", response["state"])
	}
}

func TestServer_GetJobStatus_NotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nonexistent/status", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_Integration(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body, _ := json.Marshal(map[string]interface{}{
		"search": map[string]interface{}{"strategy": "hillclimb", "hillClimb": map[string]int{"restarts": 3}},
		"trials": 3,
	})
	resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	var job Job
	json.NewDecoder(resp.Body).Decode(&job)
	resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	// Poll until the job finishes
	var status map[string]interface{}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/api/v1/jobs/" + job.ID + "/status")
		if err != nil {
			t.Fatalf("Failed to get status: %v", err)
		}
		status = nil
		json.NewDecoder(resp.Body).Decode(&status)
		resp.Body.Close()

		if status["state"] == string(StateCompleted) || status["state"] == string(StateFailed) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if status["state"] != string(StateCompleted) {
		t.Fatalf("Job did not complete: %v", status)
	}
	if status["best"] != 9.0 {
		t.Errorf("Expected best 9, got %v", status["best"])
	}
	if status["trialsDone"] != 3.0 {
		t.Errorf("Expected 3 trials done, got %v", status["trialsDone"])
	}

	// The finished job is available as a report
	resp, err = http.Get(ts.URL + "/api/v1/reports")
	if err != nil {
		t.Fatalf("Failed to list reports: %v", err)
	}
	var infos []store.ReportInfo
	json.NewDecoder(resp.Body).Decode(&infos)
	resp.Body.Close()
	if len(infos) != 1 || infos[0].ID != job.ID {
		t.Fatalf("Expected one report for job %s, got %+v", job.ID, infos)
	}

	resp, err = http.Get(ts.URL + "/api/v1/reports/" + job.ID)
	if err != nil {
		t.Fatalf("Failed to get report: %v", err)
	}
	var report store.Report
	json.NewDecoder(resp.Body).Decode(&report)
	resp.Body.Close()
	if report.SuccessRate != 100 || report.Trials != 3 {
		t.Errorf("Unexpected report: %+v", report)
	}

	resp, err = http.Get(ts.URL + "/api/v1/reports/" + uuid.NewString())
	if err != nil {
		t.Fatalf("Failed to get report: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for missing report, got %d", resp.StatusCode)
	}
}

func TestServer_GetReport_InvalidID(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/v1/reports/missing",
		"/api/v1/reports/..%2F..%2Fetc",
		"/api/v1/reports/%2E%2E",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.handleGetReport(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	for _, tc := range []struct{ method, path string }{
		{http.MethodDelete, "/api/v1/jobs"},
		{http.MethodPost, "/api/v1/jobs/abc/status"},
		{http.MethodPost, "/api/v1/reports"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestServer_JobStream_SSE(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	job := s.jobManager.CreateJob(DefaultJobConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/jobs/"+job.ID+"/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Stream request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Error("Expected text/event-stream content type")
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") {
		t.Fatalf("Expected SSE data line, got %q", line)
	}

	var event ProgressEvent
	if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
		t.Fatalf("Failed to parse event: %v", err)
	}
	if event.JobID != job.ID || event.State != StatePending {
		t.Errorf("Unexpected initial event: %+v", event)
	}
}

func TestServer_JobStream_NotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nonexistent/stream", nil)
	w := httptest.NewRecorder()

	s.handleJobStream(w, req, "nonexistent")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_JobStream_EndsWithJob(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	job := s.jobManager.CreateJob(DefaultJobConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/jobs/"+job.ID+"/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Stream request failed: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	if _, err := reader.ReadString('\n'); err != nil {
		t.Fatalf("Failed to read initial event: %v", err)
	}

	markJobCancelled(s.jobManager, job.ID)

	var last ProgressEvent
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.HasPrefix(line, "data: ") {
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &last); err != nil {
				t.Fatalf("Failed to parse event: %v", err)
			}
		}
	}
	if ctx.Err() != nil {
		t.Fatal("Stream did not end after the job was cancelled")
	}
	if last.State != StateCancelled {
		t.Errorf("Expected final state cancelled, got %+v", last)
	}
}

func TestProgressHub(t *testing.T) {
	hub := newProgressHub()

	events, unsubscribe := hub.subscribe("job1")
	other, unsubscribeOther := hub.subscribe("job2")
	defer unsubscribeOther()

	hub.publish(ProgressEvent{JobID: "job1", State: StateRunning, TrialsDone: 2, Trials: 10, Best: 4556.63})

	select {
	case received := <-events:
		if received.TrialsDone != 2 || received.Best != 4556.63 {
			t.Errorf("Unexpected event: %+v", received)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}

	select {
	case received := <-other:
		t.Errorf("Subscriber of job2 received %+v", received)
	default:
	}

	unsubscribe()
	hub.publish(ProgressEvent{JobID: "job1", TrialsDone: 3})
	select {
	case received := <-events:
		t.Errorf("Unsubscribed channel received %+v", received)
	default:
	}

	// A full buffer drops events instead of blocking the publisher.
	for i := 0; i < 100; i++ {
		hub.publish(ProgressEvent{JobID: "job2", TrialsDone: i})
	}
}
