// Package problems is a catalogue of smooth test objectives with known
// minimizers.
package problems

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/descent/internal/descent"
)

// Case is a named objective together with a suggested start and the
// known stationary point.
type Case struct {
	Name        string
	Description string
	Problem     descent.Problem
	Start       []float64
	Minimizer   []float64

	// Exact, when set, is the exact line-search rule for this objective.
	Exact descent.StepRule

	// Variable reports that Problem accepts any dimension of at least
	// len(Start).
	Variable bool
}

// CheckStart reports whether x has a dimension the objective accepts.
func (c Case) CheckStart(x []float64) error {
	if c.Variable && len(x) >= len(c.Start) || len(x) == len(c.Start) {
		return nil
	}
	return fmt.Errorf("problem %s: start has dimension %d, want %d", c.Name, len(x), len(c.Start))
}

// ShiftedParabola is f(x) = (x−2)² − 1 with f′(x) = 2(x−2).
func ShiftedParabola() descent.Problem {
	return descent.Scalar(
		func(x float64) float64 { return (x-2)*(x-2) - 1 },
		func(x float64) float64 { return 2 * (x - 2) },
	)
}

// SeparableQuadratic is f(x₁, x₂) = x₁² + (x₂−1)².
func SeparableQuadratic() descent.Problem {
	return descent.Problem{
		Func: func(x []float64) float64 {
			return x[0]*x[0] + (x[1]-1)*(x[1]-1)
		},
		Grad: func(x []float64) []float64 {
			return []float64{2 * x[0], 2 * (x[1] - 1)}
		},
		Hess: func([]float64) *mat.SymDense {
			return mat.NewSymDense(2, []float64{2, 0, 0, 2})
		},
	}
}

// Rosenbrock is the chained Rosenbrock function
//
//	f(x) = Σ 100(xᵢ₊₁ − xᵢ²)² + (1 − xᵢ)²
//
// with its minimum 0 at (1, ..., 1).
func Rosenbrock() descent.Problem {
	return descent.Problem{
		Func: func(x []float64) float64 {
			var sum float64
			for i := 0; i < len(x)-1; i++ {
				a := x[i+1] - x[i]*x[i]
				b := 1 - x[i]
				sum += 100*a*a + b*b
			}
			return sum
		},
		Grad: func(x []float64) []float64 {
			g := make([]float64, len(x))
			for i := 0; i < len(x)-1; i++ {
				a := x[i+1] - x[i]*x[i]
				g[i] += -400*x[i]*a - 2*(1-x[i])
				g[i+1] += 200 * a
			}
			return g
		},
		Hess: func(x []float64) *mat.SymDense {
			n := len(x)
			h := mat.NewSymDense(n, nil)
			for i := 0; i < n-1; i++ {
				h.SetSym(i, i, h.At(i, i)+1200*x[i]*x[i]-400*x[i+1]+2)
				h.SetSym(i, i+1, -400*x[i])
				h.SetSym(i+1, i+1, h.At(i+1, i+1)+200)
			}
			return h
		},
	}
}

var catalogue = map[string]func() Case{
	"parabola": func() Case {
		return Case{
			Name:        "parabola",
			Description: "f(x) = (x-2)^2 - 1",
			Problem:     ShiftedParabola(),
			Start:       []float64{0},
			Minimizer:   []float64{2},
		}
	},
	"separable": func() Case {
		return Case{
			Name:        "separable",
			Description: "f(x1, x2) = x1^2 + (x2-1)^2",
			Problem:     SeparableQuadratic(),
			Start:       []float64{2, 2},
			Minimizer:   []float64{0, 1},
		}
	},
	"rosenbrock": func() Case {
		return Case{
			Name:        "rosenbrock",
			Description: "f(x) = sum 100(x[i+1]-x[i]^2)^2 + (1-x[i])^2",
			Problem:     Rosenbrock(),
			Start:       []float64{-1.2, 1},
			Minimizer:   []float64{1, 1},
			Variable:    true,
		}
	},
	"quadratic": func() Case {
		q := MustQuadratic(mat.NewSymDense(2, []float64{4, 1, 1, 3}), []float64{1, 2})
		return Case{
			Name:        "quadratic",
			Description: "f(x) = 1/2 x'Ax - b'x, A = [4 1; 1 3], b = [1 2]",
			Problem:     q.Problem(),
			Start:       []float64{2, 1},
			Minimizer:   q.Minimizer(),
			Exact:       q.ExactStep,
		}
	},
}

// Lookup returns the catalogue entry with the given name.
func Lookup(name string) (Case, error) {
	build, ok := catalogue[name]
	if !ok {
		return Case{}, fmt.Errorf("unknown problem %q (available: %v)", name, Names())
	}
	return build(), nil
}

// Names lists the catalogue in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
