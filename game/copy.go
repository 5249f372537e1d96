package game

import (
	"github.com/dbltnk/uros-sub000/tiles"
	"lukechampine.com/frand"
)

// Copy returns a total deep copy for speculative search: board squares,
// placed tiles, reedbed tiles, house grids, and counters share no storage
// with the original, so mutating the copy never leaks back. The copy's
// random source is derived from the parent's, keeping seeded runs
// reproducible while staying independent.
func (g *Game) Copy() *Game {
	c := &Game{
		rules:              g.rules,
		board:              g.board.Copy(),
		placed:             make([]*PlacedTile, len(g.placed)),
		reedbed:            make([]*tiles.Tile, len(g.reedbed)),
		onturn:             g.onturn,
		turnnum:            g.turnnum,
		firstTurn:          g.firstTurn,
		placementsMade:     g.placementsMade,
		placementsRequired: g.placementsRequired,
		gameOver:           g.gameOver,
		rng:                deriveRNG(g.rng),
	}
	for i, pt := range g.placed {
		c.placed[i] = pt.copy()
	}
	for i, t := range g.reedbed {
		c.reedbed[i] = t.Copy()
	}
	c.players[0] = g.players[0].copy()
	c.players[1] = g.players[1].copy()
	if g.result != nil {
		res := *g.result
		c.result = &res
	}
	return c
}

func deriveRNG(parent *frand.RNG) *frand.RNG {
	var b [32]byte
	parent.Read(b[:])
	return frand.NewCustom(b[:], 1024, 12)
}
