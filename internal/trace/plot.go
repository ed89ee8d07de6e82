package trace

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotConvergence renders log10‖∇f(x)‖ and f(x) against the iteration
// number. The image format follows the extension of path (png, svg, pdf...).
// Non-finite values are skipped.
func PlotConvergence(entries []Entry, title, path string) error {
	if len(entries) == 0 {
		return fmt.Errorf("no trace entries to plot")
	}

	gradPts := make(plotter.XYs, 0, len(entries))
	valuePts := make(plotter.XYs, 0, len(entries))
	for _, e := range entries {
		x := float64(e.Iteration)
		if gn := floats.Norm(e.Grad, 2); gn > 0 && !math.IsInf(gn, 0) && !math.IsNaN(gn) {
			gradPts = append(gradPts, plotter.XY{X: x, Y: math.Log10(gn)})
		}
		if !math.IsInf(e.F, 0) && !math.IsNaN(e.F) {
			valuePts = append(valuePts, plotter.XY{X: x, Y: e.F})
		}
	}
	if len(gradPts) == 0 && len(valuePts) == 0 {
		return fmt.Errorf("trace has no finite values to plot")
	}

	p := plot.New()
	if title == "" {
		title = "Convergence"
	}
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Add(plotter.NewGrid())

	if len(gradPts) > 0 {
		line, err := plotter.NewLine(gradPts)
		if err != nil {
			return fmt.Errorf("failed to build gradient series: %w", err)
		}
		line.Color = color.RGBA{B: 200, A: 255}
		p.Add(line)
		p.Legend.Add("log10 |grad f(x)|", line)
	}
	if len(valuePts) > 0 {
		line, err := plotter.NewLine(valuePts)
		if err != nil {
			return fmt.Errorf("failed to build objective series: %w", err)
		}
		line.Color = color.RGBA{R: 200, A: 255}
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
		p.Legend.Add("f(x)", line)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
