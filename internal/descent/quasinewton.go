package descent

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// HessianUpdate is a quasi-Newton recurrence: given the current inverse
// Hessian approximation h, the step s = xₖ₊₁ − xₖ and the gradient
// difference y = ∇fₖ₊₁ − ∇fₖ, it returns the next approximation. It must
// return a new matrix of the same shape and must not modify h.
type HessianUpdate func(h *mat.Dense, s, y []float64) *mat.Dense

// QuasiNewton minimizes p from x0 with directions d = −H∇f, where H starts
// at h0 (identity when nil) and is advanced by update after every step.
// Symmetry and positive definiteness of H are not checked.
func QuasiNewton(p Problem, x0 []float64, h0 *mat.Dense, update HessianUpdate, step StepSize, s *Settings) (*Result, error) {
	if update == nil {
		return nil, configError("update", "is nil")
	}
	n := len(x0)
	var h *mat.Dense
	if h0 == nil {
		h = identity(n)
	} else {
		r, c := h0.Dims()
		if r != n || c != n {
			return nil, configError("h0", "is %dx%d, want %dx%d", r, c, n, n)
		}
		h = mat.DenseCopyOf(h0)
	}
	return minimize("quasi-newton", p, x0, &quasiNewton{h: h, update: update}, step, s)
}

type quasiNewton struct {
	h      *mat.Dense
	update HessianUpdate
}

func (q *quasiNewton) start(*Location) error { return nil }

func (q *quasiNewton) next(loc *Location) []float64 {
	n := len(loc.Grad)
	var d mat.VecDense
	d.MulVec(q.h, mat.NewVecDense(n, loc.Grad))
	d.ScaleVec(-1, &d)
	return d.RawVector().Data
}

func (q *quasiNewton) observe(prev, cur *Location) error {
	n := len(cur.X)
	s := make([]float64, n)
	y := make([]float64, n)
	floats.SubTo(s, cur.X, prev.X)
	floats.SubTo(y, cur.Grad, prev.Grad)

	h := q.update(q.h, s, y)
	if h == nil {
		return fmt.Errorf("hessian update returned nil")
	}
	if r, c := h.Dims(); r != n || c != n {
		return fmt.Errorf("hessian update returned %dx%d matrix, want %dx%d", r, c, n, n)
	}
	q.h = h
	return nil
}

func identity(n int) *mat.Dense {
	h := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		h.Set(i, i, 1)
	}
	return h
}

// BFGS is the Broyden-Fletcher-Goldfarb-Shanno inverse update
//
//	H₊ = (I − ρsyᵀ) H (I − ρysᵀ) + ρssᵀ,  ρ = 1/(yᵀs).
//
// When yᵀs ≤ 0 the curvature condition fails and H is returned unchanged.
func BFGS(h *mat.Dense, s, y []float64) *mat.Dense {
	sy := floats.Dot(s, y)
	if !(sy > 0) {
		return mat.DenseCopyOf(h)
	}
	rho := 1 / sy
	n := len(s)
	sv := mat.NewVecDense(n, s)
	yv := mat.NewVecDense(n, y)

	var hy, hty mat.VecDense
	hy.MulVec(h, yv)
	hty.MulVec(h.T(), yv)
	yhy := mat.Dot(yv, &hy)

	out := mat.DenseCopyOf(h)
	out.RankOne(out, -rho, sv, &hty)
	out.RankOne(out, -rho, &hy, sv)
	out.RankOne(out, rho*rho*yhy+rho, sv, sv)
	return out
}

// DFP is the Davidon-Fletcher-Powell inverse update
//
//	H₊ = H − (Hy)(Hᵀy)ᵀ/(yᵀHy) + ssᵀ/(yᵀs).
//
// H is returned unchanged when either denominator is not positive.
func DFP(h *mat.Dense, s, y []float64) *mat.Dense {
	sy := floats.Dot(s, y)
	n := len(s)
	sv := mat.NewVecDense(n, s)
	yv := mat.NewVecDense(n, y)

	var hy, hty mat.VecDense
	hy.MulVec(h, yv)
	hty.MulVec(h.T(), yv)
	yhy := mat.Dot(yv, &hy)
	if !(sy > 0) || !(yhy > 0) {
		return mat.DenseCopyOf(h)
	}

	out := mat.DenseCopyOf(h)
	out.RankOne(out, -1/yhy, &hy, &hty)
	out.RankOne(out, 1/sy, sv, sv)
	return out
}
