package sequence

import "sort"

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

func easeApply(kind string, x float64) float64 {
	switch kind {
	case "smooth":
		// smoothstep 3x^2 - 2x^3
		return x * x * (3 - 2*x)
	case "cubic":
		// smootherstep 6x^5 - 15x^4 + 10x^3
		return x * x * x * (x*(x*6-15) + 10)
	case "step":
		// hold until the next key
		return 0
	default:
		return x
	}
}

// Eval returns the value of the envelope at time t (seconds).
// No keys yields 0 and a single key yields its value. Keys must be sorted by T.
func (e Envelope) Eval(t float64) float64 {
	n := len(e.Keys)
	switch {
	case n == 0:
		return 0
	case n == 1 || t <= e.Keys[0].T:
		return e.Keys[0].V
	case t >= e.Keys[n-1].T:
		return e.Keys[n-1].V
	}
	// first key strictly after t; the segment starts one before it
	i := sort.Search(n, func(i int) bool { return e.Keys[i].T > t })
	a, b := e.Keys[i-1], e.Keys[i]
	den := b.T - a.T
	if den <= 0 {
		return b.V
	}
	u := easeApply(a.Ease, clamp01((t-a.T)/den))
	return a.V + (b.V-a.V)*u
}

// BoolEval thresholds the envelope at 0.5 into a boolean.
func (e Envelope) BoolEval(t float64) bool {
	return e.Eval(t) >= 0.5
}
