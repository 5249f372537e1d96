package equity

import (
	"github.com/samber/lo"

	"github.com/dbltnk/uros-sub000/game"
)

// StaticEvaluator combines the standard calculators into one positional
// score. The sum is scaled by game progress: early positions are damped and
// late positions amplified, so the search values concrete village strength
// more as the house pools drain.
type StaticEvaluator struct {
	calculators []Calculator
}

func NewStaticEvaluator() *StaticEvaluator {
	return &StaticEvaluator{
		calculators: []Calculator{
			VillageLeadCalculator{},
			DiversityCalculator{},
			ReserveCalculator{},
			ExpansionCalculator{},
		},
	}
}

// NewStaticEvaluatorWith builds an evaluator from a custom calculator set.
func NewStaticEvaluatorWith(calcs ...Calculator) *StaticEvaluator {
	return &StaticEvaluator{calculators: calcs}
}

// Evaluate scores the position from the given player's perspective.
func (se *StaticEvaluator) Evaluate(g *game.Game, player int) float64 {
	raw := lo.SumBy(se.calculators, func(c Calculator) float64 {
		return c.Equity(g, player)
	})
	return raw * progressScale(g)
}

// progressScale maps total houses placed onto [0.5, 1.5]: 0.5 on an
// untouched pool, 1.5 when both pools are spent.
func progressScale(g *game.Game) float64 {
	total := 2 * g.HousePool()
	if total == 0 {
		return 1.0
	}
	placed := total - g.HousesFor(0) - g.HousesFor(1)
	return 0.5 + float64(placed)/float64(total)
}
