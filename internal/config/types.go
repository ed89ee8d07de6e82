package config

// Method names accepted in run files.
const (
	MethodGradient = "gradient"
	MethodBFGS     = "bfgs"
	MethodDFP      = "dfp"
	MethodCG       = "cg"
	MethodNewton   = "newton"
)

// Step policies accepted in run files.
const (
	StepDefault      = "default"
	StepConstant     = "constant"
	StepBacktracking = "backtracking"
	StepWolfe        = "wolfe"
	StepExact        = "exact"
)

// Conjugate gradient β rules accepted in run files.
const (
	BetaFletcherReeves   = "fletcher-reeves"
	BetaPolakRibiere     = "polak-ribiere"
	BetaPolakRibierePlus = "polak-ribiere-plus"
	BetaHestenesStiefel  = "hestenes-stiefel"
	BetaDaiYuan          = "dai-yuan"
)

// Methods lists the method names in display order.
var Methods = []string{MethodGradient, MethodBFGS, MethodDFP, MethodCG, MethodNewton}

// StepPolicies lists the step policy names in display order.
var StepPolicies = []string{StepDefault, StepConstant, StepBacktracking, StepWolfe, StepExact}

// BetaRules lists the β rule names in display order.
var BetaRules = []string{BetaFletcherReeves, BetaPolakRibiere, BetaPolakRibierePlus, BetaHestenesStiefel, BetaDaiYuan}

// RunConfig describes one minimization run.
type RunConfig struct {
	Method  string     `yaml:"method"`
	Problem string     `yaml:"problem"`
	Start   []float64  `yaml:"start,omitempty"` // empty = the problem's default start
	Step    StepConfig `yaml:"step"`

	// Beta is the conjugate gradient coefficient rule (method cg only).
	Beta string `yaml:"beta,omitempty"`
	// Restart forces a steepest descent step every Restart iterations (cg only, 0 = never).
	Restart int `yaml:"restart,omitempty"`
	// ResetNonDescent replaces an uphill direction by steepest descent (cg only).
	ResetNonDescent bool `yaml:"reset_non_descent,omitempty"`

	Tolerance              float64 `yaml:"tolerance"`
	MaxIterations          int     `yaml:"max_iterations"`
	SkipGradientCheck      bool    `yaml:"skip_gradient_check,omitempty"`
	GradientCheckTolerance float64 `yaml:"gradient_check_tolerance,omitempty"`
	Seed                   int64   `yaml:"seed,omitempty"` // 0 = time-seeded gradient probe

	Export   bool   `yaml:"export,omitempty"`
	FileName string `yaml:"file_name,omitempty"`
	FileDir  string `yaml:"file_dir,omitempty"`

	LogLevel string `yaml:"log_level"`
}

// StepConfig selects the step-size policy and its parameters.
type StepConfig struct {
	Policy string  `yaml:"policy"`
	Value  float64 `yaml:"value,omitempty"` // constant policy

	// Line search parameters; zero means the line search default.
	Initial     float64 `yaml:"initial,omitempty"`
	Contraction float64 `yaml:"contraction,omitempty"`
	C1          float64 `yaml:"c1,omitempty"`
	C2          float64 `yaml:"c2,omitempty"`
	MaxIter     int     `yaml:"max_iter,omitempty"`
}
