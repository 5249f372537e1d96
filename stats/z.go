package stats

import "gonum.org/v1/gonum/stat/distuv"

// ZVal is the two-tailed z-value for a confidence level given in percent,
// so ZVal(99) is about 2.576. Used to put error bars on simulated win
// ratios.
func ZVal(confidencePct float64) float64 {
	return distuv.UnitNormal.Quantile((1 + confidencePct/100) / 2)
}
