package descent

import (
	"fmt"
	"math"
)

// StepRule chooses the step size α along direction d from x. The engine
// passes its own copy of x, so a rule may use it as scratch space.
type StepRule func(f ObjectiveFunc, grad GradFunc, x, d []float64) float64

// StepKind tags the variant held by a StepSize.
type StepKind int

const (
	// StepKindDefault is a constant step of 1.
	StepKindDefault StepKind = iota
	// StepKindConstant is a caller-chosen constant step.
	StepKindConstant
	// StepKindRule delegates to a StepRule every iteration.
	StepKindRule
)

func (k StepKind) String() string {
	switch k {
	case StepKindDefault:
		return "default"
	case StepKindConstant:
		return "constant"
	case StepKindRule:
		return "rule"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// StepSize is a step-size policy. The zero value is the default
// constant step of 1.
type StepSize struct {
	kind  StepKind
	value float64
	rule  StepRule
}

// DefaultStep returns the default policy (constant step 1).
func DefaultStep() StepSize { return StepSize{} }

// ConstantStep returns a fixed step α.
func ConstantStep(alpha float64) StepSize {
	return StepSize{kind: StepKindConstant, value: alpha}
}

// RuleStep returns a policy that calls rule every iteration.
func RuleStep(rule StepRule) StepSize {
	return StepSize{kind: StepKindRule, rule: rule}
}

// Kind reports which variant s holds.
func (s StepSize) Kind() StepKind { return s.kind }

func (s StepSize) String() string {
	switch s.kind {
	case StepKindDefault:
		return "default(1)"
	case StepKindConstant:
		return fmt.Sprintf("constant(%g)", s.value)
	}
	return s.kind.String()
}

// Resolve turns s into a uniform StepRule. It runs once, before the first
// iteration, so a malformed policy fails fast.
func (s StepSize) Resolve() (StepRule, error) {
	switch s.kind {
	case StepKindDefault:
		return constantRule(1), nil
	case StepKindConstant:
		if s.value < 0 || math.IsNaN(s.value) || math.IsInf(s.value, 0) {
			return nil, configError("step", "constant must be finite and non-negative, got %g", s.value)
		}
		return constantRule(s.value), nil
	case StepKindRule:
		if s.rule == nil {
			return nil, configError("step", "rule is nil")
		}
		return s.rule, nil
	}
	return nil, configError("step", "unknown kind %v", s.kind)
}

func constantRule(alpha float64) StepRule {
	return func(ObjectiveFunc, GradFunc, []float64, []float64) float64 { return alpha }
}

// ParseStepSize normalizes a loosely typed step policy: nil, a real
// constant, a StepRule (or plain func of the same shape) or a StepSize.
// Anything else is a *ConfigurationError.
func ParseStepSize(v any) (StepSize, error) {
	switch t := v.(type) {
	case nil:
		return DefaultStep(), nil
	case StepSize:
		return t, nil
	case float64:
		return ConstantStep(t), nil
	case float32:
		return ConstantStep(float64(t)), nil
	case int:
		return ConstantStep(float64(t)), nil
	case int64:
		return ConstantStep(float64(t)), nil
	case StepRule:
		return RuleStep(t), nil
	case func(ObjectiveFunc, GradFunc, []float64, []float64) float64:
		return RuleStep(t), nil
	}
	return StepSize{}, configError("step", "unsupported type %T", v)
}
