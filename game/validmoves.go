package game

import (
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/tiles"
)

// GetValidMoves enumerates every legal single placement for the player on
// turn, in a fixed deterministic order: tile moves first (reedbed tiles in
// reedbed order, each island-cell anchor row-major, against every board
// position row-major, current rotation only), then house moves (placed tiles
// in placement order, then reedbed tiles, unowned island cells row-major,
// gated on the mover's house pool). A finished game has no moves.
func (g *Game) GetValidMoves() []*move.Move {
	if g.gameOver {
		return nil
	}
	var plays []*move.Move
	plays = g.appendTileMoves(plays)
	plays = g.appendHouseMoves(plays)
	return plays
}

func (g *Game) appendTileMoves(plays []*move.Move) []*move.Move {
	dim := g.board.Dim()
	for _, t := range g.reedbed {
		for _, anchor := range t.IslandCells() {
			for br := 0; br < dim; br++ {
				for bc := 0; bc < dim; bc++ {
					if !g.canPlace(t, br, bc, anchor[0], anchor[1]) {
						continue
					}
					plays = append(plays,
						move.NewPlaceTileMove(t.ID(), anchor[0], anchor[1], br, bc, g.onturn))
				}
			}
		}
	}
	return plays
}

func (g *Game) appendHouseMoves(plays []*move.Move) []*move.Move {
	if g.curPlayer().houses <= 0 {
		return plays
	}
	addTile := func(t *tiles.Tile) {
		for _, cell := range t.IslandCells() {
			if t.HouseAt(cell[0], cell[1]) != tiles.NoOwner {
				continue
			}
			plays = append(plays,
				move.NewPlaceHouseMove(t.ID(), cell[0], cell[1], g.onturn))
		}
	}
	for _, pt := range g.placed {
		addTile(pt.tile)
	}
	for _, t := range g.reedbed {
		addTile(t)
	}
	return plays
}
