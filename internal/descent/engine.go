package descent

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/descent/internal/trace"
)

// DirectionFunc computes a search direction at x. The result should be a
// descent direction (d·∇f(x) < 0); the engine does not enforce it.
type DirectionFunc func(grad GradFunc, x []float64) []float64

// direction is the per-method strategy plugged into the shared loop.
type direction interface {
	// start is called once with the evaluated starting point.
	start(loc *Location) error
	// next returns the search direction at loc.
	next(loc *Location) []float64
	// observe is called after every accepted step from prev to cur.
	observe(prev, cur *Location) error
}

// LineSearch minimizes p from x0 using dir for search directions and step
// for step sizes. It is the loop every other method specializes.
func LineSearch(p Problem, x0 []float64, dir DirectionFunc, step StepSize, s *Settings) (*Result, error) {
	if dir == nil {
		return nil, configError("direction", "is nil")
	}
	return minimize("line-search", p, x0, &funcDirection{fn: dir, grad: p.Grad}, step, s)
}

type funcDirection struct {
	fn   DirectionFunc
	grad GradFunc
}

func (f *funcDirection) start(*Location) error { return nil }

func (f *funcDirection) next(loc *Location) []float64 {
	return f.fn(f.grad, append([]float64(nil), loc.X...))
}

func (f *funcDirection) observe(_, _ *Location) error { return nil }

// run carries the mutable state of one minimization.
type run struct {
	method   string
	settings *Settings
	log      *slog.Logger
	result   *Result

	tw       *trace.Writer
	traceErr error
}

func (r *run) warn(kind WarningKind, msg string, args ...any) {
	r.result.Warnings = append(r.result.Warnings, Warning{Kind: kind, Message: msg})
	r.log.Warn(msg, append([]any{"method", r.method, "kind", kind.String()}, args...)...)
}

func (r *run) record(n int, loc *Location) {
	if r.tw == nil || r.traceErr != nil {
		return
	}
	err := r.tw.Write(trace.Entry{Iteration: n, X: loc.X, F: loc.F, Grad: loc.Grad})
	if err != nil {
		r.traceErr = err
		r.log.Warn("Trace export failed, disabling", "path", r.tw.Path(), "error", err)
	}
}

func minimize(method string, p Problem, x0 []float64, dir direction, step StepSize, s *Settings) (res *Result, err error) {
	settings := s.withDefaults()
	if err := settings.validate(); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(x0) == 0 {
		return nil, configError("x0", "cannot be empty")
	}
	stepRule, err := step.Resolve()
	if err != nil {
		return nil, err
	}

	r := &run{
		method:   method,
		settings: settings,
		log:      settings.logger(),
		result:   &Result{Method: method, Status: Initialized},
	}
	dim := len(x0)

	if !settings.SkipGradientCheck {
		probe := RandomProbe(settings.rand(), dim)
		if !CheckGradient(p, probe, settings.GradientCheckTolerance) {
			r.warn(ConvergenceWarning, "supplied gradient disagrees with finite differences", "probe", probe)
		}
	}

	loc := p.evaluate(append([]float64(nil), x0...))
	if len(loc.Grad) != dim {
		return nil, configError("Grad", "returned %d components for a %d-dimensional point", len(loc.Grad), dim)
	}
	if err := dir.start(loc); err != nil {
		return nil, err
	}

	if settings.Export {
		r.tw, err = trace.NewWriter(settings.FileDir, settings.tracePrefix(method), settings.Tolerance, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to open trace: %w", err)
		}
		r.result.TracePath = r.tw.Path()
		defer func() {
			if cerr := r.tw.Close(); cerr != nil && r.traceErr == nil {
				r.traceErr = cerr
			}
			if r.traceErr != nil && err == nil {
				err = fmt.Errorf("trace export: %w", r.traceErr)
			}
		}()
	}

	eps := settings.Tolerance
	status := Iterating
	n := 0

	r.log.Debug("Starting descent", "method", method, "dim", dim, "tolerance", eps, "max_iterations", settings.MaxIterations, "step", step.String())

	for floats.Norm(loc.Grad, 2) >= eps {
		r.record(n, loc)

		d := dir.next(loc)
		if len(d) != dim {
			r.warn(DivergenceWarning, "search direction has wrong dimension", "iteration", n, "got", len(d), "want", dim)
			status = Diverged
			break
		}

		alpha := stepRule(p.Func, p.Grad, append([]float64(nil), loc.X...), d)
		if !finite(alpha) || alpha < 0 {
			r.warn(DivergenceWarning, "step rule returned an invalid step", "iteration", n, "alpha", alpha)
			status = Diverged
			break
		}

		x := make([]float64, dim)
		floats.AddScaledTo(x, loc.X, alpha, d)
		n++
		next := p.evaluate(x)

		if !finite(next.F) || len(next.Grad) != dim || !allFinite(next.Grad) || !allFinite(next.X) {
			loc = next
			r.warn(DivergenceWarning, "iterate became non-finite", "iteration", n, "f", next.F)
			status = Diverged
			break
		}
		if err := dir.observe(loc, next); err != nil {
			loc = next
			r.warn(DivergenceWarning, err.Error(), "iteration", n)
			status = Diverged
			break
		}
		loc = next

		r.log.Debug("Iteration", "method", method, "iteration", n, "alpha", alpha, "f", loc.F, "grad_norm", floats.Norm(loc.Grad, 2))

		if n >= settings.MaxIterations {
			r.warn(IterationLimitWarning, "maximum number of iterations reached", "max_iterations", settings.MaxIterations)
			status = MaxIterationsExceeded
			break
		}
	}

	r.record(n, loc)

	gradNorm := math.NaN()
	if len(loc.Grad) == dim {
		gradNorm = floats.Norm(loc.Grad, 2)
	}

	// The loop guard alone is not trusted: a NaN gradient also ends it.
	if status == Iterating {
		if math.Abs(gradNorm-0) <= eps {
			status = Converged
		} else {
			r.warn(DivergenceWarning, "gradient norm not within tolerance after loop exit", "grad_norm", gradNorm)
			status = Diverged
		}
	}

	res = r.result
	res.Status = status
	res.Last = loc.X
	res.F = loc.F
	res.Gradient = loc.Grad
	res.GradNorm = gradNorm
	res.Iterations = n
	if status == Converged {
		res.X = append([]float64(nil), loc.X...)
	} else {
		res.X = Sentinel(dim)
	}

	r.log.Info("Descent finished",
		"method", method,
		"status", status.String(),
		"iterations", n,
		"f", loc.F,
		"grad_norm", gradNorm,
	)
	return res, nil
}
