package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore implements Store on the filesystem.
// Summaries are stored as <baseDir>/runs/<runID>/summary.json.
//
// Writes go through a temp file and rename, so concurrent callers never
// observe a partially written summary.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

func (fs *FSStore) runDir(runID string) string {
	return filepath.Join(fs.baseDir, "runs", runID)
}

func (fs *FSStore) summaryPath(runID string) string {
	return filepath.Join(fs.runDir(runID), "summary.json")
}

// SaveRun atomically saves a summary for the given run.
func (fs *FSStore) SaveRun(runID string, summary *Summary) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	if summary == nil {
		return fmt.Errorf("summary cannot be nil")
	}
	if err := summary.Validate(); err != nil {
		return fmt.Errorf("invalid summary: %w", err)
	}

	dir := fs.runDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	finalPath := fs.summaryPath(runID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp summary file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename summary file: %w", err)
	}

	slog.Debug("Run summary saved", "runID", runID, "path", finalPath)
	return nil
}

// LoadRun retrieves the summary for the given run.
func (fs *FSStore) LoadRun(runID string) (*Summary, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	path := fs.summaryPath(runID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read summary file: %w", err)
	}

	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to deserialize summary: %w", err)
	}

	slog.Debug("Run summary loaded", "runID", runID, "path", path)
	return &summary, nil
}

// ListRuns returns metadata for all stored runs. Directories without a
// readable summary are skipped.
func (fs *FSStore) ListRuns() ([]RunInfo, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	entries, err := os.ReadDir(runsDir)
	if os.IsNotExist(err) {
		return []RunInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	infos := []RunInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		runID := entry.Name()
		if _, err := os.Stat(fs.summaryPath(runID)); os.IsNotExist(err) {
			continue
		}

		summary, err := fs.LoadRun(runID)
		if err != nil {
			slog.Warn("Failed to load run summary for listing", "runID", runID, "error", err)
			continue
		}
		infos = append(infos, summary.ToInfo())
	}

	slog.Debug("Listed runs", "count", len(infos))
	return infos, nil
}

// DeleteRun removes the run directory and all its contents.
func (fs *FSStore) DeleteRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	dir := fs.runDir(runID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{RunID: runID}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("Run deleted", "runID", runID, "path", dir)
	return nil
}
