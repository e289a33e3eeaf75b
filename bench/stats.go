package bench

import (
	"math"
	"slices"
)

// Stats summarizes per-iteration scores.
type Stats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// Error is the half-width of the 99.9% confidence interval of Mean.
	// Zero when N < 2.
	Error float64 `json:"error"`
}

// Percentile is one point of a sample distribution.
type Percentile struct {
	P     float64 `json:"p"`
	Value float64 `json:"value"`
}

// ReportedPercentiles are the points listed for sample-time results.
var ReportedPercentiles = []float64{0, 50, 90, 95, 99, 99.9, 100}

// Summarize computes Stats over xs.
func Summarize(xs []float64) Stats {
	s := Stats{N: len(xs)}
	if s.N == 0 {
		return s
	}
	s.Min, s.Max = xs[0], xs[0]
	var sum float64
	for _, x := range xs {
		sum += x
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
	}
	s.Mean = sum / float64(s.N)
	if s.N < 2 {
		return s
	}

	var sq float64
	for _, x := range xs {
		d := x - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(s.N-1))
	s.Error = studentT999(s.N-1) * s.StdDev / math.Sqrt(float64(s.N))
	return s
}

// Percentiles returns the requested points of xs using linear
// interpolation between closest ranks. xs is not modified.
func Percentiles(xs []float64, ps []float64) []Percentile {
	if len(xs) == 0 {
		return nil
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	out := make([]Percentile, len(ps))
	last := float64(len(sorted) - 1)
	for i, p := range ps {
		rank := p / 100 * last
		lo := int(math.Floor(rank))
		hi := int(math.Ceil(rank))
		v := sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
		out[i] = Percentile{P: p, Value: v}
	}
	return out
}

// t999 holds two-sided 99.9% Student t critical values for 1..30 degrees
// of freedom.
var t999 = [...]float64{
	636.619, 31.599, 12.924, 8.610, 6.869, 5.959, 5.408, 5.041, 4.781, 4.587,
	4.437, 4.318, 4.221, 4.140, 4.073, 4.015, 3.965, 3.922, 3.883, 3.850,
	3.819, 3.792, 3.768, 3.745, 3.725, 3.707, 3.690, 3.674, 3.659, 3.646,
}

// studentT999 returns the critical value for df degrees of freedom. Past
// the dense table it uses the next tabulated df below, which errs wide.
func studentT999(df int) float64 {
	switch {
	case df < 1:
		return math.NaN()
	case df <= len(t999):
		return t999[df-1]
	case df < 40:
		return t999[len(t999)-1]
	case df < 60:
		return 3.551 // df = 40
	case df < 120:
		return 3.460 // df = 60
	case df < 1000:
		return 3.373 // df = 120
	}
	return 3.300 // df = 1000
}
