package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/descent/internal/descent"
)

func TestParseRunConfigYAML(t *testing.T) {
	yamlText := `
method: cg
problem: rosenbrock
start: [-1.2, 1]
step:
  policy: wolfe
  c1: 0.0001
  c2: 0.1
beta: polak-ribiere-plus
restart: 10
reset_non_descent: true
tolerance: 1e-6
max_iterations: 5000
seed: 7
export: true
file_name: rosen
log_level: debug
`
	cfg, err := ParseRunConfigYAML([]byte(yamlText))
	if err != nil {
		t.Fatalf("ParseRunConfigYAML failed: %v", err)
	}

	if cfg.Method != MethodCG || cfg.Problem != "rosenbrock" {
		t.Errorf("Unexpected method/problem: %s/%s", cfg.Method, cfg.Problem)
	}
	if len(cfg.Start) != 2 || cfg.Start[0] != -1.2 || cfg.Start[1] != 1 {
		t.Errorf("Unexpected start %v", cfg.Start)
	}
	if cfg.Step.Policy != StepWolfe || cfg.Step.C2 != 0.1 {
		t.Errorf("Unexpected step %+v", cfg.Step)
	}
	if cfg.Beta != BetaPolakRibierePlus || cfg.Restart != 10 || !cfg.ResetNonDescent {
		t.Errorf("Unexpected beta/restart/reset: %s/%d/%v", cfg.Beta, cfg.Restart, cfg.ResetNonDescent)
	}
	if cfg.Tolerance != 1e-6 || cfg.MaxIterations != 5000 {
		t.Errorf("Unexpected termination: %g/%d", cfg.Tolerance, cfg.MaxIterations)
	}
	// Unset keys keep their defaults.
	if cfg.FileDir != "traces" {
		t.Errorf("Expected default file_dir, got %q", cfg.FileDir)
	}

	level, err := cfg.Level()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v (%v)", level, err)
	}
}

func TestParseRunConfigYAML_Defaults(t *testing.T) {
	cfg, err := ParseRunConfigYAML([]byte("problem: separable\n"))
	if err != nil {
		t.Fatalf("ParseRunConfigYAML failed: %v", err)
	}
	def := DefaultRunConfig()
	if cfg.Method != def.Method || cfg.Tolerance != def.Tolerance || cfg.MaxIterations != def.MaxIterations {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	if cfg.Problem != "separable" {
		t.Errorf("Expected problem separable, got %q", cfg.Problem)
	}
}

func TestParseRunConfigYAMLInvalid(t *testing.T) {
	tests := []struct {
		name     string
		yamlText string
		want     string
	}{
		{"unknown method", "method: simplex", "invalid method"},
		{"empty problem", "problem: ''", "problem cannot be empty"},
		{"unknown policy", "step: {policy: fast}", "invalid step policy"},
		{"negative constant", "step: {policy: constant, value: -1}", "non-negative"},
		{"contraction too large", "step: {policy: backtracking, contraction: 1.5}", "contraction"},
		{"wolfe order", "step: {policy: wolfe, c1: 0.9, c2: 0.1}", "c1 < c2"},
		{"unknown beta", "method: cg\nbeta: magic", "invalid beta rule"},
		{"negative restart", "restart: -2", "restart"},
		{"zero tolerance", "tolerance: 0", "tolerance"},
		{"negative cap", "max_iterations: -1", "max_iterations"},
		{"bad log level", "log_level: loud", "log_level"},
		{"malformed yaml", "method: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRunConfigYAML([]byte(tt.yamlText))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("method: bfgs\nproblem: quadratic\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}
	if cfg.Method != MethodBFGS {
		t.Errorf("Expected bfgs, got %s", cfg.Method)
	}

	if _, err := LoadRunConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRunConfig_MarshalRoundTrip(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Start = []float64{3, 4}
	cfg.Step = StepConfig{Policy: StepConstant, Value: 0.25}

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	back, err := ParseRunConfigYAML(data)
	if err != nil {
		t.Fatalf("ParseRunConfigYAML failed: %v\n%s", err, data)
	}
	if back.Step.Value != 0.25 || len(back.Start) != 2 {
		t.Errorf("Round trip lost fields: %+v", back)
	}
}

func TestRunConfig_ToSettings(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Method = MethodCG
	cfg.Restart = 5
	cfg.ResetNonDescent = true
	cfg.Tolerance = 1e-3
	cfg.MaxIterations = 42
	cfg.Export = true
	cfg.FileName = "cg"
	cfg.Seed = 99
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := cfg.ToSettings(logger)
	if s.Tolerance != 1e-3 || s.MaxIterations != 42 {
		t.Errorf("Unexpected termination settings %+v", s)
	}
	if !s.Export || s.FileName != "cg" || s.FileDir != "traces" {
		t.Errorf("Unexpected export settings %+v", s)
	}
	if s.RestartEvery != 5 || !s.ResetNonDescent {
		t.Errorf("Expected RestartEvery=5 with reset, got %d/%v", s.RestartEvery, s.ResetNonDescent)
	}
	if s.Rand == nil {
		t.Error("Expected seeded source")
	}
	if s.Logger != logger {
		t.Error("Logger not carried over")
	}
	if s.GradientCheckTolerance != descent.DefaultGradientCheckTolerance {
		t.Errorf("Expected default check tolerance, got %g", s.GradientCheckTolerance)
	}

	cfg.Method = MethodGradient
	if s := cfg.ToSettings(nil); s.RestartEvery != 0 || s.ResetNonDescent {
		t.Errorf("Restart options only apply to cg, got %d/%v", s.RestartEvery, s.ResetNonDescent)
	}
}
