package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/descent/internal/config"
	"github.com/cwbudde/descent/internal/runner"
	"github.com/cwbudde/descent/internal/store"
	"github.com/cwbudde/descent/internal/trace"
)

var (
	runConfigPath string
	runMethod     string
	runProblem    string
	runStart      []float64
	runStep       string
	runStepValue  float64
	runBeta       string
	runRestart    int
	runResetDesc  bool
	runTolerance  float64
	runMaxIter    int
	runExport     bool
	runFileName   string
	runFileDir    string
	runSeed       int64
	runSkipCheck  bool
	runSave       bool
	runDataDir    string
	runPlot       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Minimize a catalogue problem",
	Long: `Runs one minimization. Options come from --config (YAML) and are
overridden by any flag given explicitly. A run that does not converge is
reported, not treated as an error.`,
	Example: `  descent run --problem rosenbrock --method bfgs --step wolfe
  descent run --config run.yaml --export --plot conv.png`,
	RunE: runDescent,
}

func init() {
	def := config.DefaultRunConfig()

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "YAML run file")
	runCmd.Flags().StringVarP(&runMethod, "method", "m", def.Method, "Method: "+strings.Join(config.Methods, ", "))
	runCmd.Flags().StringVarP(&runProblem, "problem", "p", def.Problem, "Catalogue problem (see 'descent problems')")
	runCmd.Flags().Float64SliceVar(&runStart, "start", nil, "Start point, comma separated (default: the problem's start)")
	runCmd.Flags().StringVar(&runStep, "step", def.Step.Policy, "Step policy: "+strings.Join(config.StepPolicies, ", "))
	runCmd.Flags().Float64Var(&runStepValue, "step-value", 0, "Step size for the constant policy")
	runCmd.Flags().StringVar(&runBeta, "beta", def.Beta, "Conjugate gradient rule: "+strings.Join(config.BetaRules, ", "))
	runCmd.Flags().IntVar(&runRestart, "restart", 0, "Conjugate gradient restart period (0 = never)")
	runCmd.Flags().BoolVar(&runResetDesc, "reset-non-descent", false, "Conjugate gradient: replace uphill directions by steepest descent")
	runCmd.Flags().Float64Var(&runTolerance, "tol", def.Tolerance, "Gradient norm tolerance")
	runCmd.Flags().IntVar(&runMaxIter, "max-iter", def.MaxIterations, "Iteration cap")
	runCmd.Flags().BoolVar(&runExport, "export", false, "Write a tab-separated iteration trace")
	runCmd.Flags().StringVar(&runFileName, "file-name", "", "Trace file prefix (default: method name)")
	runCmd.Flags().StringVar(&runFileDir, "file-dir", def.FileDir, "Trace directory")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Seed for the gradient check probe (0 = time based)")
	runCmd.Flags().BoolVar(&runSkipCheck, "skip-check", false, "Skip the gradient sanity check")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Store a run summary under --data-dir")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Base directory for stored runs")
	runCmd.Flags().StringVar(&runPlot, "plot", "", "Render a convergence plot of the trace to this path (implies --export)")

	rootCmd.AddCommand(runCmd)
}

func runDescent(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultRunConfig()
	if runConfigPath != "" {
		loaded, err := config.LoadRunConfig(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyRunFlags(cmd, cfg)
	if runPlot != "" {
		cfg.Export = true
	}

	log := logger
	if log == nil || (runConfigPath != "" && !cmd.Flags().Changed("log-level")) {
		level, err := cfg.Level()
		if err != nil {
			return err
		}
		log = newLogger(level)
	}

	out, err := runner.Run(cfg, log)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	printOutcome(cmd.OutOrStdout(), out)

	if runPlot != "" && out.Result.TracePath != "" {
		if err := plotTrace(out.Result.TracePath, runPlot); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", runPlot)
	}

	if runSave {
		s, err := store.NewFSStore(runDataDir)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
		runID := store.NewRunID()
		if err := s.SaveRun(runID, out.Summary(runID, cfg)); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		slog.Info("Run saved", "runID", runID, "dataDir", runDataDir)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved run %s\n", runID)
	}
	return nil
}

// applyRunFlags copies explicitly set flags over cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.RunConfig) {
	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = runMethod
	}
	if flags.Changed("problem") {
		cfg.Problem = runProblem
	}
	if flags.Changed("start") {
		cfg.Start = runStart
	}
	if flags.Changed("step") {
		cfg.Step.Policy = runStep
	}
	if flags.Changed("step-value") {
		cfg.Step.Value = runStepValue
		if !flags.Changed("step") && runConfigPath == "" {
			cfg.Step.Policy = config.StepConstant
		}
	}
	if flags.Changed("beta") {
		cfg.Beta = runBeta
	}
	if flags.Changed("restart") {
		cfg.Restart = runRestart
	}
	if flags.Changed("reset-non-descent") {
		cfg.ResetNonDescent = runResetDesc
	}
	if flags.Changed("tol") {
		cfg.Tolerance = runTolerance
	}
	if flags.Changed("max-iter") {
		cfg.MaxIterations = runMaxIter
	}
	if flags.Changed("export") {
		cfg.Export = runExport
	}
	if flags.Changed("file-name") {
		cfg.FileName = runFileName
	}
	if flags.Changed("file-dir") {
		cfg.FileDir = runFileDir
	}
	if flags.Changed("seed") {
		cfg.Seed = runSeed
	}
	if flags.Changed("skip-check") {
		cfg.SkipGradientCheck = runSkipCheck
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
}

func printOutcome(w io.Writer, out *runner.Outcome) {
	res := out.Result
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "method\t%s\n", res.Method)
	fmt.Fprintf(tw, "problem\t%s\n", out.Case.Name)
	fmt.Fprintf(tw, "start\t%v\n", out.Start)
	fmt.Fprintf(tw, "status\t%s\n", res.Status)
	fmt.Fprintf(tw, "iterations\t%d\n", res.Iterations)
	fmt.Fprintf(tw, "x\t%v\n", res.X)
	fmt.Fprintf(tw, "last\t%v\n", res.Last)
	fmt.Fprintf(tw, "f(x)\t%g\n", res.F)
	fmt.Fprintf(tw, "|grad f(x)|\t%g\n", res.GradNorm)
	for _, warn := range res.Warnings {
		fmt.Fprintf(tw, "warning\t%s: %s\n", warn.Kind, warn.Message)
	}
	if res.TracePath != "" {
		fmt.Fprintf(tw, "trace\t%s\n", res.TracePath)
	}
	fmt.Fprintf(tw, "elapsed\t%s\n", out.Elapsed)
	tw.Flush()
}

func plotTrace(tracePath, outPath string) error {
	f, err := trace.ReadFile(tracePath)
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	title := strings.TrimSuffix(filepath.Base(tracePath), filepath.Ext(tracePath))
	if err := trace.PlotConvergence(f.Entries, title, outPath); err != nil {
		return fmt.Errorf("failed to plot trace: %w", err)
	}
	return nil
}
