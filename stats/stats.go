// Package stats holds the small numeric helpers behind the simulation loop:
// a running mean/variance accumulator, a convergence window, and normal
// z-values.
package stats

import "math"

// Epsilon bounds float comparisons throughout the package.
const Epsilon = 1e-6

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic accumulates a running mean and variance over win scores using
// Welford's online update, so no sample history is kept. The zero value is
// ready to use.
type Statistic struct {
	n    int
	mean float64
	m2   float64
}

func (s *Statistic) Push(v float64) {
	s.n++
	delta := v - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (v - s.mean)
}

func (s *Statistic) Mean() float64 {
	return s.mean
}

// Variance is the sample variance; zero until two samples have arrived.
func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

func (s *Statistic) Iterations() int {
	return s.n
}
