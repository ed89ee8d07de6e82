package descent

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
)

// BetaRule computes the conjugate gradient coefficient β from the previous
// gradient, the current gradient and the previous direction.
type BetaRule func(gPrev, gCur, dPrev []float64) float64

// ConjugateGradient minimizes p from x0 with directions
// d = −∇f + β·d_prev, β produced by beta. The first direction is −∇f.
//
// A non-finite β restarts from steepest descent, as does every
// Settings.RestartEvery-th iteration. With Settings.ResetNonDescent a
// direction that fails to descend (d·∇f ≥ 0) is replaced by −∇f as well.
func ConjugateGradient(p Problem, x0 []float64, beta BetaRule, step StepSize, s *Settings) (*Result, error) {
	if beta == nil {
		return nil, configError("beta", "is nil")
	}
	settings := s.withDefaults()
	c := &conjugate{
		beta:        beta,
		restart:     settings.RestartEvery,
		resetUphill: settings.ResetNonDescent,
		log:         settings.logger(),
	}
	return minimize("conjugate-gradient", p, x0, c, step, s)
}

type conjugate struct {
	beta        BetaRule
	restart     int
	resetUphill bool
	log         *slog.Logger

	gPrev []float64
	dPrev []float64
	k     int
}

func (c *conjugate) start(*Location) error { return nil }

func (c *conjugate) next(loc *Location) []float64 {
	g := loc.Grad
	d := make([]float64, len(g))
	floats.ScaleTo(d, -1, g)

	if c.dPrev != nil && (c.restart == 0 || c.k%c.restart != 0) {
		b := c.beta(c.gPrev, g, c.dPrev)
		if !finite(b) {
			c.debug("Non-finite beta, restarting from steepest descent", "beta", b)
		} else {
			cand := make([]float64, len(g))
			floats.AddScaledTo(cand, d, b, c.dPrev)
			if c.resetUphill && !(floats.Dot(cand, g) < 0) {
				c.debug("Not a descent direction, restarting from steepest descent", "beta", b)
			} else {
				d = cand
			}
		}
	}

	c.gPrev = append(c.gPrev[:0], g...)
	c.dPrev = append([]float64(nil), d...)
	c.k++
	return d
}

func (c *conjugate) observe(_, _ *Location) error { return nil }

func (c *conjugate) debug(msg string, args ...any) {
	if c.log != nil {
		c.log.Debug(msg, append([]any{"iteration", c.k}, args...)...)
	}
}

// FletcherReeves: β = ‖g‖² / ‖g_prev‖².
func FletcherReeves(gPrev, gCur, _ []float64) float64 {
	return floats.Dot(gCur, gCur) / floats.Dot(gPrev, gPrev)
}

// PolakRibiere: β = gᵀ(g − g_prev) / ‖g_prev‖².
func PolakRibiere(gPrev, gCur, _ []float64) float64 {
	return gradDiffDot(gCur, gCur, gPrev) / floats.Dot(gPrev, gPrev)
}

// PolakRibierePlus is PolakRibiere clipped at zero.
func PolakRibierePlus(gPrev, gCur, dPrev []float64) float64 {
	return math.Max(0, PolakRibiere(gPrev, gCur, dPrev))
}

// HestenesStiefel: β = gᵀ(g − g_prev) / d_prevᵀ(g − g_prev).
func HestenesStiefel(gPrev, gCur, dPrev []float64) float64 {
	return gradDiffDot(gCur, gCur, gPrev) / gradDiffDot(dPrev, gCur, gPrev)
}

// DaiYuan: β = ‖g‖² / d_prevᵀ(g − g_prev).
func DaiYuan(gPrev, gCur, dPrev []float64) float64 {
	return floats.Dot(gCur, gCur) / gradDiffDot(dPrev, gCur, gPrev)
}

// gradDiffDot returns vᵀ(gCur − gPrev).
func gradDiffDot(v, gCur, gPrev []float64) float64 {
	var sum float64
	for i := range v {
		sum += v[i] * (gCur[i] - gPrev[i])
	}
	return sum
}
