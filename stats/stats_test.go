package stats

import (
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
	}
}

func TestWindowFillsBeforeJudging(t *testing.T) {
	is := is.New(t)
	w := NewWindow(4)
	is.True(!w.Full())
	w.Push(1)
	w.Push(1)
	w.Push(1)
	is.True(!w.Full())
	is.Equal(w.HalfDelta(), 0.0)
	w.Push(1)
	is.True(w.Full())
}

func TestWindowHalfDelta(t *testing.T) {
	is := is.New(t)
	w := NewWindow(4)
	for _, v := range []float64{0, 0, 1, 1} {
		w.Push(v)
	}
	is.True(FuzzyEqual(w.HalfDelta(), 1.0))

	// A flat series converges to zero delta.
	for _, v := range []float64{1, 1} {
		w.Push(v)
	}
	is.True(FuzzyEqual(w.HalfDelta(), 0.0))
}

func TestWindowKeepsArrivalOrder(t *testing.T) {
	is := is.New(t)
	w := NewWindow(4)
	for _, v := range []float64{9, 9, 9, 9, 0, 0, 1, 1} {
		w.Push(v)
	}
	// Only the last four samples matter: halves are {0,0} and {1,1}.
	is.True(FuzzyEqual(w.HalfDelta(), 1.0))
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(ZVal(95), 1.959964))
	is.True(FuzzyEqual(ZVal(99), 2.575829))
}
