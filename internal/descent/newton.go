package descent

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Newton minimizes p from x0 with directions solving ∇²f·d = −∇f, using the
// caller-supplied p.Hess. Where the Hessian is not positive definite the
// direction falls back to −∇f.
func Newton(p Problem, x0 []float64, step StepSize, s *Settings) (*Result, error) {
	if p.Hess == nil {
		return nil, configError("Hess", "is required by Newton")
	}
	return minimize("newton", p, x0, &newton{hess: p.Hess}, step, s)
}

type newton struct {
	hess HessFunc
}

func (nt *newton) start(*Location) error { return nil }

func (nt *newton) next(loc *Location) []float64 {
	n := len(loc.Grad)
	steepest := make([]float64, n)
	floats.ScaleTo(steepest, -1, loc.Grad)

	h := nt.hess(loc.X)
	if h == nil || h.SymmetricDim() != n {
		return steepest
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(h); !ok {
		return steepest
	}
	var d mat.VecDense
	if err := chol.SolveVecTo(&d, mat.NewVecDense(n, steepest)); err != nil {
		return steepest
	}
	return d.RawVector().Data
}

func (nt *newton) observe(_, _ *Location) error { return nil }
