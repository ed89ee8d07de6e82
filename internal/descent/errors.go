package descent

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrConfiguration matches any *ConfigurationError.
// Use errors.Is(err, ErrConfiguration) to check for it.
var ErrConfiguration = &ConfigurationError{}

// ConfigurationError reports a malformed run configuration. It is the only
// hard failure the engine raises; numerical non-convergence is reported
// through Result.Status instead.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error"
	}
	return "configuration error: " + e.Field + " " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}

func configError(field, format string, args ...any) error {
	return errors.WithStack(&ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	})
}

// WarningKind classifies an advisory, non-fatal condition raised during a run.
type WarningKind int

const (
	// ConvergenceWarning: the supplied gradient disagrees with a finite
	// difference estimate at the probe point.
	ConvergenceWarning WarningKind = iota + 1
	// IterationLimitWarning: the iteration ceiling was reached.
	IterationLimitWarning
	// DivergenceWarning: the iterate, objective, gradient or step became
	// non-finite, or a direction rule produced an unusable result.
	DivergenceWarning
)

func (k WarningKind) String() string {
	switch k {
	case ConvergenceWarning:
		return "ConvergenceWarning"
	case IterationLimitWarning:
		return "IterationLimitWarning"
	case DivergenceWarning:
		return "DivergenceWarning"
	}
	return "UnknownWarning"
}

// Warning is an advisory signal attached to a Result.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return w.Kind.String() + ": " + w.Message
}
