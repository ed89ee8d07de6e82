package problems

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/descent/internal/descent"
)

// Quadratic is f(x) = ½xᵀAx − bᵀx with A symmetric positive definite.
type Quadratic struct {
	A *mat.SymDense
	B []float64

	chol mat.Cholesky
}

// NewQuadratic validates A and b. A must be positive definite.
func NewQuadratic(a *mat.SymDense, b []float64) (*Quadratic, error) {
	n := a.SymmetricDim()
	if len(b) != n {
		return nil, fmt.Errorf("b has %d entries, A is %dx%d", len(b), n, n)
	}
	q := &Quadratic{A: a, B: b}
	if ok := q.chol.Factorize(a); !ok {
		return nil, fmt.Errorf("A is not positive definite")
	}
	return q, nil
}

// MustQuadratic is NewQuadratic that panics on error.
func MustQuadratic(a *mat.SymDense, b []float64) *Quadratic {
	q, err := NewQuadratic(a, b)
	if err != nil {
		panic(err)
	}
	return q
}

// Dim returns the number of variables.
func (q *Quadratic) Dim() int { return len(q.B) }

// Value returns ½xᵀAx − bᵀx.
func (q *Quadratic) Value(x []float64) float64 {
	xv := mat.NewVecDense(len(x), x)
	return 0.5*mat.Inner(xv, q.A, xv) - floats.Dot(q.B, x)
}

// Gradient returns Ax − b.
func (q *Quadratic) Gradient(x []float64) []float64 {
	var g mat.VecDense
	g.MulVec(q.A, mat.NewVecDense(len(x), x))
	out := g.RawVector().Data
	floats.Sub(out, q.B)
	return out
}

// Minimizer returns A⁻¹b.
func (q *Quadratic) Minimizer() []float64 {
	var x mat.VecDense
	if err := q.chol.SolveVecTo(&x, mat.NewVecDense(len(q.B), q.B)); err != nil {
		panic(err)
	}
	return x.RawVector().Data
}

// ExactStep is the exact line-search rule α = −∇fᵀd / dᵀAd.
func (q *Quadratic) ExactStep(_ descent.ObjectiveFunc, grad descent.GradFunc, x, d []float64) float64 {
	dv := mat.NewVecDense(len(d), d)
	curv := mat.Inner(dv, q.A, dv)
	if curv <= 0 {
		return 0
	}
	return -floats.Dot(grad(x), d) / curv
}

// Problem exposes q as a descent.Problem.
func (q *Quadratic) Problem() descent.Problem {
	return descent.Problem{
		Func: q.Value,
		Grad: q.Gradient,
		Hess: func([]float64) *mat.SymDense { return q.A },
	}
}
