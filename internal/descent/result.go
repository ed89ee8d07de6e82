package descent

import (
	"math"
)

// Status is the state of a run. A finished run ends in Converged,
// MaxIterationsExceeded or Diverged.
type Status int

const (
	Initialized Status = iota
	Iterating
	Converged
	MaxIterationsExceeded
	Diverged
)

var statusStrings = map[Status]string{
	Initialized:           "Initialized",
	Iterating:             "Iterating",
	Converged:             "Converged",
	MaxIterationsExceeded: "MaxIterationsExceeded",
	Diverged:              "Diverged",
}

func (s Status) String() string {
	str, ok := statusStrings[s]
	if !ok {
		return "UnknownStatus"
	}
	return str
}

// Result is the outcome of a run.
//
// X is the converged point, or the not-a-number sentinel (every coordinate
// NaN) when Status is not Converged. Last always holds the final iterate.
type Result struct {
	Method     string
	Status     Status
	X          []float64
	Last       []float64
	F          float64
	Gradient   []float64
	GradNorm   float64
	Iterations int
	Warnings   []Warning
	TracePath  string
}

// Converged reports whether the run reached the gradient tolerance.
func (r *Result) Converged() bool {
	return r.Status == Converged
}

// Minimum returns the converged point and true, or nil and false.
func (r *Result) Minimum() ([]float64, bool) {
	if !r.Converged() {
		return nil, false
	}
	return r.X, true
}

// Scalar returns the first coordinate of X, which is NaN for a failed run.
func (r *Result) Scalar() float64 {
	if len(r.X) == 0 {
		return math.NaN()
	}
	return r.X[0]
}

// HasWarning reports whether a warning of the given kind was raised.
func (r *Result) HasWarning(kind WarningKind) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// Sentinel returns the not-a-number marker for a dim-dimensional point.
func Sentinel(dim int) []float64 {
	x := make([]float64, dim)
	for i := range x {
		x[i] = math.NaN()
	}
	return x
}

// IsSentinel reports whether any coordinate of x is NaN.
func IsSentinel(x []float64) bool {
	if len(x) == 0 {
		return true
	}
	for _, v := range x {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(xs []float64) bool {
	for _, v := range xs {
		if !finite(v) {
			return false
		}
	}
	return true
}
