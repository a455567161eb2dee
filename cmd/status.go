package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

// jobStatus mirrors the server's status response.
type jobStatus struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	Config struct {
		Search struct {
			Strategy string `json:"strategy"`
		} `json:"search"`
		Seed   int64 `json:"seed"`
		Trials int   `json:"trials"`
	} `json:"config"`
	TrialsDone int     `json:"trialsDone"`
	Best       float64 `json:"best"`
	Position   *struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"position"`
	Evaluations int     `json:"evaluations"`
	SuccessRate float64 `json:"successRate"`
	ReportID    string  `json:"reportId"`
	Elapsed     float64 `json:"elapsed"`
	EPS         float64 `json:"eps"`
	Error       string  `json:"error"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listJobs(fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}
	jobID := args[0]
	return getJobStatus(fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Job ID: %s\n", job.ID)
		fmt.Printf("  State: %s\n", job.State)
		fmt.Printf("  Strategy: %s\n", job.Config.Search.Strategy)
		fmt.Printf("  Trials: %d/%d\n", job.TrialsDone, job.Config.Trials)
		if job.TrialsDone > 0 {
			fmt.Printf("  Best: %.2f\n", job.Best)
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status.ID)
	fmt.Printf("State: %s\n", status.State)
	fmt.Println()

	fmt.Println("Configuration:")
	fmt.Printf("  Strategy: %s\n", status.Config.Search.Strategy)
	fmt.Printf("  Seed: %d\n", status.Config.Seed)
	fmt.Printf("  Trials: %d\n", status.Config.Trials)
	fmt.Println()

	fmt.Println("Progress:")
	fmt.Printf("  Trials done: %d\n", status.TrialsDone)
	if status.Position != nil {
		fmt.Printf("  Best: %.2f at (%d, %d)\n", status.Best, status.Position.X, status.Position.Y)
	}
	fmt.Printf("  Evaluations: %d\n", status.Evaluations)
	if status.State == "completed" {
		fmt.Printf("  Success rate: %.1f%%\n", status.SuccessRate)
	}

	elapsed := time.Duration(status.Elapsed * float64(time.Second))
	fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	if status.EPS > 0 {
		fmt.Printf("  Throughput: %.0f evaluations/sec\n", status.EPS)
	}

	if status.ReportID != "" {
		fmt.Printf("\nReport: %s\n", status.ReportID)
	}
	if status.Error != "" {
		fmt.Printf("\nError: %s\n", status.Error)
	}

	return nil
}
