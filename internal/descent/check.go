package descent

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
)

// probeRange is the upper bound of every coordinate of a random probe point.
const probeRange = 10

// RandomProbe draws a point with coordinates uniform in [0, 10).
// For dim 1 this is a single random scalar.
func RandomProbe(rnd *rand.Rand, dim int) []float64 {
	probe := make([]float64, dim)
	for i := range probe {
		probe[i] = rnd.Float64() * probeRange
	}
	return probe
}

// CheckGradient compares p.Grad at probe against a central finite
// difference estimate of ∇f. It reports whether the two agree to within tol,
// relative to max(1, ‖estimate‖). The result is advisory.
func CheckGradient(p Problem, probe []float64, tol float64) bool {
	want := fd.Gradient(nil, p.Func, probe, &fd.Settings{Formula: fd.Central})
	got := p.Grad(append([]float64(nil), probe...))
	if len(got) != len(want) {
		return false
	}
	for _, v := range got {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return floats.Distance(got, want, 2) <= tol*math.Max(1, floats.Norm(want, 2))
}
