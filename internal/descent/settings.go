package descent

import (
	"io"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/descent/internal/trace"
)

const (
	// DefaultTolerance is the gradient-norm tolerance ε used when none is set.
	DefaultTolerance = 1e-5
	// DefaultMaxIterations is the iteration ceiling used when none is set.
	DefaultMaxIterations = 1_000_000
	// DefaultGradientCheckTolerance is the relative mismatch accepted by the
	// derivative sanity check.
	DefaultGradientCheckTolerance = 1e-4
)

// Settings controls termination, diagnostics and trace export of a run.
// Zero-valued fields fall back to their defaults.
type Settings struct {
	// Tolerance is ε: the run converges once ‖∇f(x)‖ < ε.
	Tolerance float64

	// MaxIterations is the iteration ceiling. Reaching it ends the run
	// with the not-a-number sentinel.
	MaxIterations int

	// Export enables the tab-separated iteration trace.
	Export bool

	// FileName is the trace file prefix (default: the method name).
	FileName string

	// FileDir is the trace directory (default: trace.DefaultDir).
	FileDir string

	// SkipGradientCheck disables the derivative sanity check.
	SkipGradientCheck bool

	// GradientCheckTolerance is the accepted relative mismatch between the
	// supplied gradient and its finite difference estimate.
	GradientCheckTolerance float64

	// RestartEvery resets conjugate gradient directions to steepest descent
	// every k iterations (0 = never).
	RestartEvery int

	// ResetNonDescent makes conjugate gradient fall back to steepest descent
	// whenever −∇f + β·d_prev is not a descent direction. Off by default:
	// the direction is used as the β rule produced it.
	ResetNonDescent bool

	// Rand draws the derivative probe point. Nil uses a time-seeded source.
	Rand *rand.Rand

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultSettings returns the settings used when a run is given nil.
func DefaultSettings() *Settings {
	return &Settings{
		Tolerance:              DefaultTolerance,
		MaxIterations:          DefaultMaxIterations,
		FileDir:                trace.DefaultDir,
		GradientCheckTolerance: DefaultGradientCheckTolerance,
	}
}

// withDefaults returns a copy of s with zero fields filled in.
func (s *Settings) withDefaults() *Settings {
	out := DefaultSettings()
	if s == nil {
		return out
	}
	cp := *s
	if cp.Tolerance == 0 {
		cp.Tolerance = out.Tolerance
	}
	if cp.MaxIterations == 0 {
		cp.MaxIterations = out.MaxIterations
	}
	if cp.FileDir == "" {
		cp.FileDir = out.FileDir
	}
	if cp.GradientCheckTolerance == 0 {
		cp.GradientCheckTolerance = out.GradientCheckTolerance
	}
	return &cp
}

func (s *Settings) validate() error {
	if !(s.Tolerance > 0) || math.IsInf(s.Tolerance, 0) {
		return configError("Tolerance", "must be positive and finite, got %g", s.Tolerance)
	}
	if s.MaxIterations < 0 {
		return configError("MaxIterations", "cannot be negative, got %d", s.MaxIterations)
	}
	if !(s.GradientCheckTolerance > 0) {
		return configError("GradientCheckTolerance", "must be positive, got %g", s.GradientCheckTolerance)
	}
	if s.RestartEvery < 0 {
		return configError("RestartEvery", "cannot be negative, got %d", s.RestartEvery)
	}
	return nil
}

func (s *Settings) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

func (s *Settings) rand() *rand.Rand {
	if s.Rand == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s.Rand
}

func (s *Settings) tracePrefix(method string) string {
	if s.FileName != "" {
		return s.FileName
	}
	return method
}
