package config

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/descent/internal/descent"
	"github.com/cwbudde/descent/internal/trace"
)

// DefaultRunConfig returns a gradient descent run on the shifted parabola
// with the engine's default tolerance and iteration cap.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Method:        MethodGradient,
		Problem:       "parabola",
		Step:          StepConfig{Policy: StepDefault},
		Beta:          BetaFletcherReeves,
		Tolerance:     descent.DefaultTolerance,
		MaxIterations: descent.DefaultMaxIterations,
		FileDir:       trace.DefaultDir,
		LogLevel:      "info",
	}
}

// LoadRunConfig loads and parses a run file.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run config %s: %w", path, err)
	}
	cfg, err := ParseRunConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseRunConfigYAML parses a run file from YAML bytes and validates it.
// Keys absent from data keep their DefaultRunConfig values.
func ParseRunConfigYAML(data []byte) (*RunConfig, error) {
	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse run config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *RunConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks names and numeric ranges. Problem names are resolved
// by the caller against its catalogue.
func (c *RunConfig) Validate() error {
	if !slices.Contains(Methods, c.Method) {
		return fmt.Errorf("invalid method: %q (must be one of %s)", c.Method, strings.Join(Methods, ", "))
	}
	if c.Problem == "" {
		return fmt.Errorf("problem cannot be empty")
	}
	for i, v := range c.Start {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("start[%d] must be finite, got %g", i, v)
		}
	}

	if !slices.Contains(StepPolicies, c.Step.Policy) {
		return fmt.Errorf("invalid step policy: %q (must be one of %s)", c.Step.Policy, strings.Join(StepPolicies, ", "))
	}
	if c.Step.Policy == StepConstant && !(c.Step.Value >= 0) {
		return fmt.Errorf("constant step must be non-negative, got %g", c.Step.Value)
	}
	if c.Step.Initial < 0 || c.Step.Contraction < 0 || c.Step.C1 < 0 || c.Step.C2 < 0 || c.Step.MaxIter < 0 {
		return fmt.Errorf("line search parameters cannot be negative")
	}
	if c.Step.Contraction >= 1 {
		return fmt.Errorf("contraction must be below 1, got %g", c.Step.Contraction)
	}
	if c.Step.C1 != 0 && c.Step.C2 != 0 && c.Step.C1 >= c.Step.C2 {
		return fmt.Errorf("wolfe parameters need c1 < c2, got c1=%g c2=%g", c.Step.C1, c.Step.C2)
	}

	if c.Method == MethodCG && !slices.Contains(BetaRules, c.Beta) {
		return fmt.Errorf("invalid beta rule: %q (must be one of %s)", c.Beta, strings.Join(BetaRules, ", "))
	}
	if c.Restart < 0 {
		return fmt.Errorf("restart cannot be negative, got %d", c.Restart)
	}

	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		return fmt.Errorf("tolerance must be positive and finite, got %g", c.Tolerance)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations cannot be negative, got %d", c.MaxIterations)
	}
	if c.GradientCheckTolerance < 0 {
		return fmt.Errorf("gradient_check_tolerance cannot be negative, got %g", c.GradientCheckTolerance)
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *RunConfig) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	return level, nil
}

// ToSettings converts the run options into engine settings. A non-zero
// Seed makes the gradient probe reproducible.
func (c *RunConfig) ToSettings(logger *slog.Logger) *descent.Settings {
	s := descent.DefaultSettings()
	s.Tolerance = c.Tolerance
	s.MaxIterations = c.MaxIterations
	s.Export = c.Export
	s.FileName = c.FileName
	if c.FileDir != "" {
		s.FileDir = c.FileDir
	}
	s.SkipGradientCheck = c.SkipGradientCheck
	if c.GradientCheckTolerance > 0 {
		s.GradientCheckTolerance = c.GradientCheckTolerance
	}
	if c.Method == MethodCG {
		s.RestartEvery = c.Restart
		s.ResetNonDescent = c.ResetNonDescent
	}
	if c.Seed != 0 {
		s.Rand = rand.New(rand.NewSource(c.Seed))
	}
	s.Logger = logger
	return s
}
