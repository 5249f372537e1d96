// Package movegen contains all the move-generating functions. Generation is
// exhaustive: every legal tile placement and every legal house placement for
// the player on turn, in a fixed deterministic order, so that two calls on
// identical game states always produce identical play lists.
package movegen

import (
	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/move"
)

// MoveGenerator is an interface for generating moves.
type MoveGenerator interface {
	GenAll(g *game.Game) []*move.Move
	Plays() []*move.Move
}

// Generator wraps game.GetValidMoves with a reusable play list. The order of
// plays is the game's fixed deterministic order.
type Generator struct {
	plays []*move.Move
}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenAll regenerates the play list for the player on turn. The enumeration
// itself lives on the game; the generator keeps a reusable play list around
// it for the search loops. A finished game has no plays.
func (gen *Generator) GenAll(g *game.Game) []*move.Move {
	gen.plays = append(gen.plays[:0], g.GetValidMoves()...)
	return gen.plays
}

// Plays returns the moves from the last GenAll call.
func (gen *Generator) Plays() []*move.Move {
	return gen.plays
}
