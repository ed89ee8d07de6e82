package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/descent/internal/store"
)

func TestSelectRunsForDeletion_ByAge(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectRunsForDeletion(infos, 0, 7, now)
	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 runs to delete, got %d", len(toDelete))
	}
	ids := map[string]bool{}
	for _, info := range toDelete {
		ids[info.RunID] = true
	}
	if !ids["run1"] || !ids["run4"] {
		t.Errorf("Expected run1 and run4 to be selected, got %v", ids)
	}
}

func TestSelectRunsForDeletion_ByCount(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectRunsForDeletion(infos, 2, 0, now)
	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 runs to delete, got %d", len(toDelete))
	}
	// Oldest first.
	if toDelete[0].RunID != "run4" || toDelete[1].RunID != "run1" {
		t.Errorf("Expected run4 then run1, got %s, %s", toDelete[0].RunID, toDelete[1].RunID)
	}
	// The input order is left alone.
	if infos[0].RunID != "run1" {
		t.Error("selectRunsForDeletion reordered its input")
	}
}

func TestSelectRunsForDeletion_Combined(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
		{RunID: "run5", Timestamp: now.AddDate(0, 0, -2)},
	}

	// Age selects run4 and run1; keeping 2 adds run2 without duplicates.
	toDelete := selectRunsForDeletion(infos, 2, 7, now)
	if len(toDelete) != 3 {
		t.Fatalf("Expected 3 runs to delete, got %d", len(toDelete))
	}
	seen := map[string]int{}
	for _, info := range toDelete {
		seen[info.RunID]++
	}
	for _, id := range []string{"run1", "run2", "run4"} {
		if seen[id] != 1 {
			t.Errorf("Expected %s exactly once, got %d", id, seen[id])
		}
	}
}

func TestSelectRunsForDeletion_NothingToDo(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{{RunID: "run1", Timestamp: now}}
	if got := selectRunsForDeletion(infos, 5, 7, now); len(got) != 0 {
		t.Errorf("Expected no deletions, got %v", got)
	}
}

func TestGetDirSize(t *testing.T) {
	tmpDir := t.TempDir()

	content := []byte("Hello, World!")
	if err := os.WriteFile(filepath.Join(tmpDir, "test.txt"), content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	size, err := getDirSize(tmpDir)
	if err != nil {
		t.Fatalf("getDirSize failed: %v", err)
	}
	if size < int64(len(content)) {
		t.Errorf("Expected size >= %d, got %d", len(content), size)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		if result := formatBytes(tt.bytes); result != tt.expected {
			t.Errorf("formatBytes(%d) = %s, expected %s", tt.bytes, result, tt.expected)
		}
	}
}

func saveTestRun(t *testing.T, dir, runID string, ts time.Time) *store.FSStore {
	t.Helper()

	runStore, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	summary := &store.Summary{
		RunID:      runID,
		Status:     "Converged",
		Iterations: 10,
		Timestamp:  ts,
		Config: store.RunConfig{
			Method:    "gradient",
			Problem:   "parabola",
			Start:     []float64{0},
			Tolerance: 1e-5,
		},
	}
	if err := runStore.SaveRun(runID, summary); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}
	return runStore
}

func TestRunsList_NoRuns(t *testing.T) {
	out, err := execute(t, "runs", "list", "--data-dir", t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "No runs found.") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestRunsList_WithRuns(t *testing.T) {
	tmpDir := t.TempDir()
	saveTestRun(t, tmpDir, "test-run-id", time.Now())

	out, err := execute(t, "runs", "list", "--data-dir", tmpDir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, want := range []string{"test-run-id", "gradient", "parabola", "Total runs: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestRunsShow(t *testing.T) {
	tmpDir := t.TempDir()
	saveTestRun(t, tmpDir, "show-me", time.Now())

	out, err := execute(t, "runs", "show", "show-me", "--data-dir", tmpDir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, `"runId": "show-me"`) {
		t.Errorf("Unexpected output:\n%s", out)
	}

	if _, err := execute(t, "runs", "show", "missing", "--data-dir", tmpDir); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing run, got %v", err)
	}
}

func TestRunsClean_NoFlags(t *testing.T) {
	if _, err := execute(t, "runs", "clean", "--data-dir", t.TempDir()); err == nil {
		t.Error("Expected error when no flags specified")
	}
}

func TestRunsClean_WithForce(t *testing.T) {
	tmpDir := t.TempDir()
	runStore := saveTestRun(t, tmpDir, "old-run", time.Now().AddDate(0, 0, -30))
	saveTestRun(t, tmpDir, "new-run", time.Now())

	out, err := execute(t, "runs", "clean", "--data-dir", tmpDir, "--older-than", "7", "--force")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, want := range []string{"Found 1 run(s) to delete:", "old-run", "Deleted 1 run(s), 0 failed."} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	if _, err := runStore.LoadRun("old-run"); err == nil {
		t.Error("Expected old run to be deleted")
	}
	if _, err := runStore.LoadRun("new-run"); err != nil {
		t.Errorf("Expected new run to survive, got %v", err)
	}
}

func TestRunsClean_Confirmation(t *testing.T) {
	tmpDir := t.TempDir()
	runStore := saveTestRun(t, tmpDir, "old-run", time.Now().AddDate(0, 0, -30))

	out, err := executeWithInput(t, "n\n", "runs", "clean", "--data-dir", tmpDir, "--older-than", "7")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "Proceed with deletion? [y/N]: ") || !strings.Contains(out, "Aborted.") {
		t.Errorf("Unexpected output:\n%s", out)
	}
	if _, err := runStore.LoadRun("old-run"); err != nil {
		t.Fatalf("Expected run to survive an aborted clean, got %v", err)
	}

	out, err = executeWithInput(t, "y\n", "runs", "clean", "--data-dir", tmpDir, "--older-than", "7")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "Deleted 1 run(s), 0 failed.") {
		t.Errorf("Unexpected output:\n%s", out)
	}
	if _, err := runStore.LoadRun("old-run"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected run to be deleted, got %v", err)
	}
}

func TestRunsList_IDsResolveWithShow(t *testing.T) {
	tmpDir := t.TempDir()
	runID := store.NewRunID()
	saveTestRun(t, tmpDir, runID, time.Now())

	out, err := execute(t, "runs", "list", "--data-dir", tmpDir)
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	if !strings.Contains(out, runID) {
		t.Fatalf("Expected full run ID %s in listing:\n%s", runID, out)
	}

	var listed string
	for _, line := range strings.Split(out, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 && strings.HasPrefix(runID, fields[0]) && len(fields[0]) > 8 {
			listed = fields[0]
		}
	}
	if _, err := execute(t, "runs", "show", listed, "--data-dir", tmpDir); err != nil {
		t.Errorf("runs show %q failed: %v", listed, err)
	}
}

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

// executeWithInput is execute with input fed to the command's stdin.
func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
