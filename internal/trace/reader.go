package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// File is a parsed trace.
type File struct {
	Epsilon float64
	Entries []Entry
}

// ParseError reports a malformed line in a trace stream.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d: %s", e.Line, e.Reason)
}

// Reader reads a trace stream written by Writer.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	eps     float64
	header  bool
}

// NewReader reads a trace from r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Open opens the trace file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	tr := NewReader(f)
	tr.closer = f
	return tr, nil
}

// ReadFile parses the whole trace file at path.
func ReadFile(path string) (*File, error) {
	tr, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer tr.Close()
	return tr.ReadAll()
}

func (tr *Reader) scan() (string, bool, error) {
	if !tr.scanner.Scan() {
		if err := tr.scanner.Err(); err != nil {
			return "", false, fmt.Errorf("failed to scan trace line: %w", err)
		}
		return "", false, nil
	}
	tr.line++
	return tr.scanner.Text(), true, nil
}

func (tr *Reader) readHeader() error {
	if tr.header {
		return nil
	}
	line, ok, err := tr.scan()
	if err != nil {
		return err
	}
	if !ok {
		return &ParseError{Line: 1, Reason: "missing epsilon header"}
	}
	key, val, found := strings.Cut(line, "\t")
	if !found || key != "epsilon" {
		return &ParseError{Line: tr.line, Reason: "expected epsilon header"}
	}
	eps, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return &ParseError{Line: tr.line, Reason: "bad epsilon: " + err.Error()}
	}

	line, ok, err = tr.scan()
	if err != nil {
		return err
	}
	if !ok || line != ColumnHeader {
		return &ParseError{Line: tr.line + 1, Reason: "expected column header"}
	}
	tr.eps = eps
	tr.header = true
	return nil
}

// Epsilon returns the tolerance recorded in the header.
func (tr *Reader) Epsilon() (float64, error) {
	if err := tr.readHeader(); err != nil {
		return 0, err
	}
	return tr.eps, nil
}

// Read returns the next record, or io.EOF when there are none left.
func (tr *Reader) Read() (*Entry, error) {
	if err := tr.readHeader(); err != nil {
		return nil, err
	}
	line, ok, err := tr.scan()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io.EOF
	}

	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return nil, &ParseError{Line: tr.line, Reason: fmt.Sprintf("expected 4 fields, got %d", len(fields))}
	}
	var e Entry
	if e.Iteration, err = strconv.Atoi(fields[0]); err != nil {
		return nil, &ParseError{Line: tr.line, Reason: "bad iteration: " + err.Error()}
	}
	if e.X, err = parseVector(fields[1]); err != nil {
		return nil, &ParseError{Line: tr.line, Reason: "bad x: " + err.Error()}
	}
	if e.F, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return nil, &ParseError{Line: tr.line, Reason: "bad f(x): " + err.Error()}
	}
	if e.Grad, err = parseVector(fields[3]); err != nil {
		return nil, &ParseError{Line: tr.line, Reason: "bad gradient: " + err.Error()}
	}
	return &e, nil
}

// ReadAll reads the header and every remaining record.
func (tr *Reader) ReadAll() (*File, error) {
	eps, err := tr.Epsilon()
	if err != nil {
		return nil, err
	}
	out := &File{Epsilon: eps}
	for {
		e, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, *e)
	}
	return out, nil
}

// Close closes the underlying file, if Open created it.
func (tr *Reader) Close() error {
	if tr.closer == nil {
		return nil
	}
	if err := tr.closer.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}

func parseVector(s string) ([]float64, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("vector %q is not bracketed", s)
	}
	fields := strings.Fields(s[1 : len(s)-1])
	v := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		v[i] = x
	}
	return v, nil
}
