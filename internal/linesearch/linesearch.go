// Package linesearch provides step-size rules for the descent engine.
//
// Each rule searches along a fixed direction d from x and returns the step
// α. Rules never fail: when their iteration budget is exhausted they return
// the last trial step and let the outer loop decide.
package linesearch

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/descent/internal/descent"
)

// Backtracking shrinks the step until the Armijo sufficient decrease
// condition f(x + αd) ≤ f(x) + c₁α∇f(x)ᵀd holds.
type Backtracking struct {
	Initial     float64 // first trial step (default 1)
	Contraction float64 // shrink factor in (0, 1) (default 0.5)
	Armijo      float64 // c₁ in (0, 1) (default 1e-4)
	MaxIter     int     // default 50
}

func (b Backtracking) withDefaults() Backtracking {
	if b.Initial <= 0 {
		b.Initial = 1
	}
	if b.Contraction <= 0 || b.Contraction >= 1 {
		b.Contraction = 0.5
	}
	if b.Armijo <= 0 || b.Armijo >= 1 {
		b.Armijo = 1e-4
	}
	if b.MaxIter <= 0 {
		b.MaxIter = 50
	}
	return b
}

// Step implements descent.StepRule.
func (b Backtracking) Step(f descent.ObjectiveFunc, grad descent.GradFunc, x, d []float64) float64 {
	b = b.withDefaults()
	f0 := f(x)
	slope := floats.Dot(grad(x), d)
	trial := make([]float64, len(x))

	alpha := b.Initial
	for i := 0; i < b.MaxIter; i++ {
		floats.AddScaledTo(trial, x, alpha, d)
		if ft := f(trial); ft <= f0+b.Armijo*alpha*slope {
			return alpha
		}
		alpha *= b.Contraction
	}
	return alpha
}

// Rule returns b as a descent.StepRule.
func (b Backtracking) Rule() descent.StepRule {
	return b.Step
}

// WolfePowell finds a step satisfying the weak Wolfe-Powell conditions
//
//	f(x + αd) ≤ f(x) + c₁α∇f(x)ᵀd
//	∇f(x + αd)ᵀd ≥ c₂∇f(x)ᵀd
//
// by expanding the step until it is bracketed and then bisecting.
type WolfePowell struct {
	Initial float64 // first trial step (default 1)
	C1      float64 // sufficient decrease constant (default 1e-4)
	C2      float64 // curvature constant, C1 < C2 < 1 (default 0.9)
	MaxIter int     // default 100
}

func (w WolfePowell) withDefaults() WolfePowell {
	if w.Initial <= 0 {
		w.Initial = 1
	}
	if w.C1 <= 0 || w.C1 >= 1 {
		w.C1 = 1e-4
	}
	if w.C2 <= w.C1 || w.C2 >= 1 {
		w.C2 = 0.9
	}
	if w.MaxIter <= 0 {
		w.MaxIter = 100
	}
	return w
}

// Step implements descent.StepRule.
func (w WolfePowell) Step(f descent.ObjectiveFunc, grad descent.GradFunc, x, d []float64) float64 {
	w = w.withDefaults()
	f0 := f(x)
	slope := floats.Dot(grad(x), d)
	trial := make([]float64, len(x))

	lo, hi := 0.0, math.Inf(1)
	alpha := w.Initial
	for i := 0; i < w.MaxIter; i++ {
		floats.AddScaledTo(trial, x, alpha, d)
		ft := f(trial)
		switch {
		case !(ft <= f0+w.C1*alpha*slope):
			// Too long, or f blew up.
			hi = alpha
		case floats.Dot(grad(trial), d) < w.C2*slope:
			// Too short.
			lo = alpha
		default:
			return alpha
		}
		if math.IsInf(hi, 1) {
			alpha = 2 * lo
		} else {
			alpha = (lo + hi) / 2
		}
	}
	return alpha
}

// Rule returns w as a descent.StepRule.
func (w WolfePowell) Rule() descent.StepRule {
	return w.Step
}
