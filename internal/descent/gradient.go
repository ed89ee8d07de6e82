package descent

import "gonum.org/v1/gonum/floats"

// SteepestDescent is the DirectionFunc d = −∇f(x).
func SteepestDescent(grad GradFunc, x []float64) []float64 {
	d := grad(x)
	floats.Scale(-1, d)
	return d
}

// GradientDescent minimizes p from x0 along the negative gradient.
func GradientDescent(p Problem, x0 []float64, step StepSize, s *Settings) (*Result, error) {
	return minimize("gradient", p, x0, steepest{}, step, s)
}

// steepest reuses the gradient already evaluated by the loop.
type steepest struct{}

func (steepest) start(*Location) error { return nil }

func (steepest) next(loc *Location) []float64 {
	d := make([]float64, len(loc.Grad))
	floats.ScaleTo(d, -1, loc.Grad)
	return d
}

func (steepest) observe(_, _ *Location) error { return nil }
