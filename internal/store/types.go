package store

import (
	"time"

	"github.com/cwbudde/peaksearch/internal/opt"
	"github.com/google/uuid"
)

// Report summarises repeated trials of one search configuration.
type Report struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Dataset is the path of the elevation model the trials ran on
	Dataset string     `json:"dataset"`
	Config  opt.Config `json:"config"`
	Trials  int        `json:"trials"`
	Seed    int64      `json:"seed"`

	// Target is the altitude counted as success, normally the grid maximum
	Target float64 `json:"target"`

	MeanTimeMs      float64 `json:"meanTimeMs"`
	SuccessRate     float64 `json:"successRate"` // percent
	MeanBest        float64 `json:"meanBest"`
	StdBest         float64 `json:"stdBest"`
	MinBest         float64 `json:"minBest"`
	MaxBest         float64 `json:"maxBest"`
	MeanEvaluations float64 `json:"meanEvaluations"`
}

// ReportInfo is the listing view of a report.
type ReportInfo struct {
	ID          string    `json:"id"`
	Strategy    opt.Name  `json:"strategy"`
	Trials      int       `json:"trials"`
	SuccessRate float64   `json:"successRate"`
	MeanTimeMs  float64   `json:"meanTimeMs"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewReport creates an empty report with a fresh ID.
func NewReport(dataset string, cfg opt.Config, trials int, seed int64, target float64) *Report {
	return &Report{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Dataset:   dataset,
		Config:    cfg,
		Trials:    trials,
		Seed:      seed,
		Target:    target,
	}
}

// ToInfo converts a report to its listing view.
func (r *Report) ToInfo() ReportInfo {
	return ReportInfo{
		ID:          r.ID,
		Strategy:    r.Config.Strategy,
		Trials:      r.Trials,
		SuccessRate: r.SuccessRate,
		MeanTimeMs:  r.MeanTimeMs,
		Timestamp:   r.Timestamp,
	}
}

// Validate checks that a report is complete enough to be stored.
func (r *Report) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Strategy == "" {
		return &ValidationError{Field: "Config.Strategy", Reason: "cannot be empty"}
	}
	if r.Trials <= 0 {
		return &ValidationError{Field: "Trials", Reason: "must be positive"}
	}
	if r.SuccessRate < 0 || r.SuccessRate > 100 {
		return &ValidationError{Field: "SuccessRate", Reason: "must be within [0, 100]"}
	}
	if r.MeanTimeMs < 0 {
		return &ValidationError{Field: "MeanTimeMs", Reason: "cannot be negative"}
	}
	if r.MeanEvaluations < 0 {
		return &ValidationError{Field: "MeanEvaluations", Reason: "cannot be negative"}
	}
	return nil
}

// ValidationError represents a report validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
