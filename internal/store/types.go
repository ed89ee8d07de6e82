package store

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/descent/internal/descent"
)

// RunConfig is the configuration a run was started with (summary copy).
type RunConfig struct {
	Method        string    `json:"method"`
	Problem       string    `json:"problem"`
	Start         []float64 `json:"start"`
	Step          string    `json:"step"`
	Tolerance     float64   `json:"tolerance"`
	MaxIterations int       `json:"maxIterations"`
	Seed          int64     `json:"seed,omitempty"`
}

// Summary is the persisted outcome of one run.
//
// JSON cannot carry NaN or infinities, so vectors containing a non-finite
// coordinate are stored as null and non-finite scalars as a nil pointer.
// A run that did not converge therefore has no Minimizer.
type Summary struct {
	// RunID is the unique identifier for this run
	RunID string `json:"runId"`

	Status     string    `json:"status"`
	Minimizer  []float64 `json:"minimizer,omitempty"`
	Last       []float64 `json:"last,omitempty"`
	F          *float64  `json:"f,omitempty"`
	GradNorm   *float64  `json:"gradNorm,omitempty"`
	Iterations int       `json:"iterations"`
	Warnings   []string  `json:"warnings,omitempty"`

	// TracePath is the exported iteration trace, if any
	TracePath string `json:"tracePath,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	Config    RunConfig `json:"config"`
}

// RunInfo contains metadata about a run without the vectors.
type RunInfo struct {
	RunID      string    `json:"runId"`
	Method     string    `json:"method"`
	Problem    string    `json:"problem"`
	Status     string    `json:"status"`
	Iterations int       `json:"iterations"`
	GradNorm   *float64  `json:"gradNorm,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewSummary converts a finished result into a persistable summary.
func NewSummary(runID string, res *descent.Result, config RunConfig) *Summary {
	s := &Summary{
		RunID:      runID,
		Status:     res.Status.String(),
		Last:       finiteVector(res.Last),
		F:          finiteScalar(res.F),
		GradNorm:   finiteScalar(res.GradNorm),
		Iterations: res.Iterations,
		TracePath:  res.TracePath,
		Timestamp:  time.Now(),
		Config:     config,
	}
	if x, ok := res.Minimum(); ok {
		s.Minimizer = finiteVector(x)
	}
	for _, w := range res.Warnings {
		s.Warnings = append(s.Warnings, w.Kind.String()+": "+w.Message)
	}
	return s
}

// ToInfo converts a full Summary to RunInfo (metadata only).
func (s *Summary) ToInfo() RunInfo {
	return RunInfo{
		RunID:      s.RunID,
		Method:     s.Config.Method,
		Problem:    s.Config.Problem,
		Status:     s.Status,
		Iterations: s.Iterations,
		GradNorm:   s.GradNorm,
		Timestamp:  s.Timestamp,
	}
}

// Validate checks that the summary has the fields a listing relies on.
func (s *Summary) Validate() error {
	if s.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if s.Status == "" {
		return &ValidationError{Field: "Status", Reason: "cannot be empty"}
	}
	if s.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if s.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if s.Config.Method == "" {
		return &ValidationError{Field: "Config.Method", Reason: "cannot be empty"}
	}
	if len(s.Config.Start) == 0 {
		return &ValidationError{Field: "Config.Start", Reason: "cannot be empty"}
	}
	if s.Minimizer != nil && len(s.Minimizer) != len(s.Config.Start) {
		return &ValidationError{Field: "Minimizer", Reason: "dimension differs from Config.Start"}
	}
	if s.Config.MaxIterations < 0 {
		return &ValidationError{Field: "Config.MaxIterations", Reason: "cannot be negative"}
	}
	return nil
}

// ValidationError represents a summary validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

func finiteScalar(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func finiteVector(x []float64) []float64 {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}
	return append([]float64(nil), x...)
}
