package descent

import (
	"gonum.org/v1/gonum/mat"
)

// ObjectiveFunc evaluates the function being minimized at x.
// It must be pure: repeated calls with the same x return the same value.
type ObjectiveFunc func(x []float64) float64

// GradFunc returns ∇f(x) as a new slice of len(x) elements.
// The returned slice must not alias x.
type GradFunc func(x []float64) []float64

// HessFunc returns ∇²f(x).
type HessFunc func(x []float64) *mat.SymDense

// Problem bundles an objective with its caller-supplied derivatives.
// Hess is optional and only consulted by Newton.
type Problem struct {
	Func ObjectiveFunc
	Grad GradFunc
	Hess HessFunc
}

// Scalar adapts a function of one real variable and its derivative to a
// one-dimensional Problem.
func Scalar(f func(float64) float64, df func(float64) float64) Problem {
	return Problem{
		Func: func(x []float64) float64 { return f(x[0]) },
		Grad: func(x []float64) []float64 { return []float64{df(x[0])} },
	}
}

func (p Problem) validate() error {
	if p.Func == nil {
		return configError("Func", "is required")
	}
	if p.Grad == nil {
		return configError("Grad", "is required")
	}
	return nil
}

// Location is one evaluated point of a run.
type Location struct {
	X    []float64
	F    float64
	Grad []float64
}

func (p Problem) evaluate(x []float64) *Location {
	return &Location{X: x, F: p.Func(x), Grad: p.Grad(x)}
}
