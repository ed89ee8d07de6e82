package trace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultDir is the directory traces are written to when none is given.
const DefaultDir = "traces"

// timeLayout is the timestamp embedded in trace file names.
const timeLayout = "20060102T150405.000000000"

// ColumnHeader is the second line of every trace file.
const ColumnHeader = "iteration\tx\tf(x)\tgrad f(x)"

// Entry is one record of an iteration trace.
type Entry struct {
	Iteration int
	X         []float64
	F         float64
	Grad      []float64
}

// FileName returns the trace file name for a method prefix and start time.
func FileName(prefix string, now time.Time) string {
	return prefix + "_" + now.Format(timeLayout) + ".tsv"
}

// Writer writes an iteration trace as tab-separated text through a
// buffered writer. It is not safe for concurrent use.
type Writer struct {
	file   *os.File
	writer *bufio.Writer
	path   string
	closed bool
}

// NewWriter creates <dir>/<prefix>_<timestamp>.tsv and writes the two header
// lines: the tolerance eps and the column names.
func NewWriter(dir, prefix string, eps float64, now time.Time) (*Writer, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if prefix == "" {
		prefix = "trace"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}

	path := filepath.Join(dir, FileName(prefix, now))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	tw := &Writer{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}
	if _, err := fmt.Fprintf(tw.writer, "epsilon\t%s\n%s\n", formatFloat(eps), ColumnHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write trace header: %w", err)
	}
	return tw, nil
}

// Write appends one record. Output is buffered until Close.
func (tw *Writer) Write(e Entry) error {
	if tw.closed {
		return fmt.Errorf("trace writer is closed")
	}
	_, err := fmt.Fprintf(tw.writer, "%d\t%s\t%s\t%s\n",
		e.Iteration, formatVector(e.X), formatFloat(e.F), formatVector(e.Grad))
	if err != nil {
		return fmt.Errorf("failed to write trace entry: %w", err)
	}
	return nil
}

// Close flushes and closes the file. Calls after the first are no-ops.
func (tw *Writer) Close() error {
	if tw.closed {
		return nil
	}
	tw.closed = true

	if err := tw.writer.Flush(); err != nil {
		tw.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := tw.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}

// Path returns the filesystem path of the trace file.
func (tw *Writer) Path() string {
	return tw.path
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatFloat(x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
