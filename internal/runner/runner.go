// Package runner resolves a run configuration against the problem catalogue
// and the step-size rules and executes the selected method.
package runner

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cwbudde/descent/internal/config"
	"github.com/cwbudde/descent/internal/descent"
	"github.com/cwbudde/descent/internal/linesearch"
	"github.com/cwbudde/descent/internal/problems"
	"github.com/cwbudde/descent/internal/store"
)

// Outcome is a finished run together with what it was resolved to.
type Outcome struct {
	Case    problems.Case
	Start   []float64
	Step    descent.StepSize
	Result  *descent.Result
	Elapsed time.Duration
}

// Run executes cfg. Errors are configuration problems; a run that does not
// converge is reported through Outcome.Result.Status.
func Run(cfg *config.RunConfig, logger *slog.Logger) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := problems.Lookup(cfg.Problem)
	if err != nil {
		return nil, err
	}

	start := c.Start
	if len(cfg.Start) > 0 {
		start = cfg.Start
	}
	if err := c.CheckStart(start); err != nil {
		return nil, err
	}

	step, err := Step(cfg.Step, c)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	settings := cfg.ToSettings(logger)

	logger.Info("Starting run", "method", cfg.Method, "problem", c.Name, "step", cfg.Step.Policy,
		"tolerance", settings.Tolerance, "maxIterations", settings.MaxIterations)

	begin := time.Now()
	var res *descent.Result
	switch cfg.Method {
	case config.MethodGradient:
		res, err = descent.GradientDescent(c.Problem, start, step, settings)
	case config.MethodBFGS:
		res, err = descent.QuasiNewton(c.Problem, start, nil, descent.BFGS, step, settings)
	case config.MethodDFP:
		res, err = descent.QuasiNewton(c.Problem, start, nil, descent.DFP, step, settings)
	case config.MethodCG:
		var beta descent.BetaRule
		if beta, err = Beta(cfg.Beta); err == nil {
			res, err = descent.ConjugateGradient(c.Problem, start, beta, step, settings)
		}
	case config.MethodNewton:
		res, err = descent.Newton(c.Problem, start, step, settings)
	default:
		err = fmt.Errorf("unknown method: %s", cfg.Method)
	}
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Case:    c,
		Start:   append([]float64(nil), start...),
		Step:    step,
		Result:  res,
		Elapsed: time.Since(begin),
	}, nil
}

// Step builds the step-size policy named by sc. The exact policy needs a
// catalogue entry that provides an exact line search.
func Step(sc config.StepConfig, c problems.Case) (descent.StepSize, error) {
	switch sc.Policy {
	case config.StepDefault, "":
		return descent.DefaultStep(), nil
	case config.StepConstant:
		return descent.ConstantStep(sc.Value), nil
	case config.StepBacktracking:
		b := linesearch.Backtracking{Initial: sc.Initial, Contraction: sc.Contraction, Armijo: sc.C1, MaxIter: sc.MaxIter}
		return descent.RuleStep(b.Rule()), nil
	case config.StepWolfe:
		w := linesearch.WolfePowell{Initial: sc.Initial, C1: sc.C1, C2: sc.C2, MaxIter: sc.MaxIter}
		return descent.RuleStep(w.Rule()), nil
	case config.StepExact:
		if c.Exact == nil {
			return descent.StepSize{}, fmt.Errorf("problem %s has no exact line search", c.Name)
		}
		return descent.RuleStep(c.Exact), nil
	default:
		return descent.StepSize{}, fmt.Errorf("unknown step policy: %s", sc.Policy)
	}
}

// Beta returns the conjugate gradient rule with the given name.
func Beta(name string) (descent.BetaRule, error) {
	switch name {
	case config.BetaFletcherReeves:
		return descent.FletcherReeves, nil
	case config.BetaPolakRibiere:
		return descent.PolakRibiere, nil
	case config.BetaPolakRibierePlus:
		return descent.PolakRibierePlus, nil
	case config.BetaHestenesStiefel:
		return descent.HestenesStiefel, nil
	case config.BetaDaiYuan:
		return descent.DaiYuan, nil
	default:
		return nil, fmt.Errorf("unknown beta rule: %s", name)
	}
}

// Summary converts the outcome into a persistable run summary.
func (o *Outcome) Summary(runID string, cfg *config.RunConfig) *store.Summary {
	step := o.Step.String()
	if o.Step.Kind() == descent.StepKindRule {
		step = cfg.Step.Policy
	}
	return store.NewSummary(runID, o.Result, store.RunConfig{
		Method:        cfg.Method,
		Problem:       o.Case.Name,
		Start:         o.Start,
		Step:          step,
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
		Seed:          cfg.Seed,
	})
}
