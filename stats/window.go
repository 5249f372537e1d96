package stats

import "math"

// Window is a fixed-size ring holding the most recent samples in arrival
// order. Convergence checks compare the older half against the newer half:
// once a running value has flattened out, the two half-means agree.
type Window struct {
	samples []float64
	next    int
	filled  int
}

func NewWindow(size int) *Window {
	if size < 2 {
		size = 2
	}
	return &Window{samples: make([]float64, size)}
}

func (w *Window) Push(v float64) {
	w.samples[w.next] = v
	w.next = (w.next + 1) % len(w.samples)
	if w.filled < len(w.samples) {
		w.filled++
	}
}

// Full reports whether the window has seen at least size samples. HalfDelta
// is meaningless until it has; callers must gate on Full.
func (w *Window) Full() bool {
	return w.filled == len(w.samples)
}

func (w *Window) Size() int {
	return len(w.samples)
}

// HalfDelta is the absolute difference between the mean of the older half
// and the mean of the newer half. Zero until the window is full.
func (w *Window) HalfDelta() float64 {
	if !w.Full() {
		return 0
	}
	n := len(w.samples)
	half := n / 2
	var older, newer float64
	for i := 0; i < n; i++ {
		// The oldest sample sits at next once the ring is full.
		v := w.samples[(w.next+i)%n]
		if i < half {
			older += v
		} else {
			newer += v
		}
	}
	return math.Abs(older/float64(half) - newer/float64(n-half))
}
