package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/descent/internal/trace"
)

var (
	traceTail    int
	tracePlotOut string
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect exported iteration traces",
}

var showTraceCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a trace as a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowTrace,
}

var plotTraceCmd = &cobra.Command{
	Use:   "plot <file>",
	Short: "Render a convergence plot of a trace",
	Long:  `Plots log10 of the gradient norm and f(x) per iteration. The format follows the --out extension (png, svg, pdf).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPlotTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.AddCommand(showTraceCmd)
	traceCmd.AddCommand(plotTraceCmd)

	showTraceCmd.Flags().IntVar(&traceTail, "tail", 0, "Show only the last N records (0 = all)")
	plotTraceCmd.Flags().StringVarP(&tracePlotOut, "out", "o", "convergence.png", "Output image path")
}

func runShowTrace(cmd *cobra.Command, args []string) error {
	f, err := trace.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	entries := f.Entries
	if traceTail > 0 && len(entries) > traceTail {
		entries = entries[len(entries)-traceTail:]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "epsilon: %g\n", f.Epsilon)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITERATION\tF(X)\t|GRAD|\tX")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%g\t%g\t%v\n", e.Iteration, e.F, floats.Norm(e.Grad, 2), e.X)
	}
	w.Flush()
	fmt.Fprintf(out, "\nRecords: %d\n", len(f.Entries))
	return nil
}

func runPlotTrace(cmd *cobra.Command, args []string) error {
	if err := plotTrace(args[0], tracePlotOut); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", tracePlotOut)
	return nil
}
