package store

// Store defines the interface for run summary persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound if the run doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun atomically saves the summary of a finished run.
	// An existing summary for the same run ID is overwritten.
	SaveRun(runID string, summary *Summary) error

	// LoadRun retrieves the summary for the given run.
	// Returns ErrNotFound if no summary exists for runID.
	LoadRun(runID string) (*Summary, error)

	// ListRuns returns metadata for all stored runs.
	// The returned slice may be empty.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run directory and everything in it.
	// Returns ErrNotFound if no run exists for runID.
	DeleteRun(runID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
