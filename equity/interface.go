package equity

import (
	"github.com/dbltnk/uros-sub000/game"
)

// Calculator is a calculator of positional equity.
type Calculator interface {
	// Equity scores one aspect of the position from the given player's
	// perspective. Calculators are pure: they never mutate the game.
	Equity(g *game.Game, player int) float64
}
