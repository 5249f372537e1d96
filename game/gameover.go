package game

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Draw is the Winner value of a fully tied game.
const Draw = -1

// Result is the frozen outcome of a finished game: computed once when
// game-over latches and never recomputed.
type Result struct {
	Winner  int    `json:"winner"`
	Sizes   [2]int `json:"sizes"`
	Islands [2]int `json:"islands"`
}

func (r *Result) String() string {
	if r.Winner == Draw {
		return fmt.Sprintf("<draw %d/%d houses, %d/%d islands>",
			r.Sizes[0], r.Sizes[1], r.Islands[0], r.Islands[1])
	}
	return fmt.Sprintf("<winner %d with %d houses over %d islands>",
		r.Winner, r.Sizes[r.Winner], r.Islands[r.Winner])
}

// IsGameOver reports whether the terminal state has latched.
func (g *Game) IsGameOver() bool {
	return g.gameOver
}

// Result returns the frozen outcome, or nil while the game is live.
func (g *Game) Result() *Result {
	return g.result
}

// Winner returns the frozen winner (Draw for a tie); ok is false while the
// game is live.
func (g *Game) Winner() (winner int, ok bool) {
	if !g.gameOver {
		return 0, false
	}
	return g.result.Winner, true
}

// checkGameOver runs at the instant a turn would begin. The game ends when
// the player about to move has no houses left AND no reedbed tile fits
// anywhere on the board. The outcome latches immediately.
func (g *Game) checkGameOver() {
	if g.gameOver {
		return
	}
	if g.curPlayer().houses > 0 {
		return
	}
	if g.anyReedbedPlacement() {
		return
	}
	g.gameOver = true
	g.result = g.computeResult()
	log.Info().Int("turn", g.turnnum).Str("result", g.result.String()).Msg("game over")
}

// anyReedbedPlacement reports whether any reedbed tile has any legal
// placement: any island-cell anchor pinned to any board position.
func (g *Game) anyReedbedPlacement() bool {
	for _, t := range g.reedbed {
		for _, anchor := range t.IslandCells() {
			for br := 0; br < g.board.Dim(); br++ {
				for bc := 0; bc < g.board.Dim(); bc++ {
					if g.canPlace(t, br, bc, anchor[0], anchor[1]) {
						return true
					}
				}
			}
		}
	}
	return false
}

// computeResult decides the winner from placed-tile villages only: largest
// village size, then island count; a tie on both is a draw.
func (g *Game) computeResult() *Result {
	r := &Result{Winner: Draw}
	r.Sizes[0], r.Islands[0] = g.LargestVillage(0)
	r.Sizes[1], r.Islands[1] = g.LargestVillage(1)
	switch {
	case r.Sizes[0] != r.Sizes[1]:
		r.Winner = 0
		if r.Sizes[1] > r.Sizes[0] {
			r.Winner = 1
		}
	case r.Islands[0] != r.Islands[1]:
		r.Winner = 0
		if r.Islands[1] > r.Islands[0] {
			r.Winner = 1
		}
	}
	return r
}
