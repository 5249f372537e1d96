// Package game encapsulates the rule engine: tile and house placement,
// village scoring, turn bookkeeping, and end-of-game detection. The game is
// mutated only through the move operations; search code works on deep copies
// and never touches the canonical game.
package game

import (
	"encoding/binary"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/dbltnk/uros-sub000/board"
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/tiles"
)

// Game is the authoritative state of a single game.
type Game struct {
	rules   *GameRules
	board   *board.Board
	placed  []*PlacedTile
	reedbed []*tiles.Tile
	players [2]*playerState

	onturn             int
	turnnum            int
	firstTurn          bool
	placementsMade     int
	placementsRequired int

	gameOver bool
	result   *Result

	rng *frand.RNG
}

// NewGame creates a fresh game from the rules' catalog: every tile goes into
// the reedbed unrotated and unowned, players get full house pools, and the
// first turn (one placement) belongs to player 0. Game-over is evaluated
// immediately, as at the start of any turn.
func NewGame(rules *GameRules) *Game {
	g := &Game{
		rules:              rules,
		board:              board.New(rules.boardDim),
		reedbed:            make([]*tiles.Tile, 0, len(rules.catalog)),
		onturn:             0,
		turnnum:            0,
		firstTurn:          true,
		placementsMade:     0,
		placementsRequired: 1,
		rng:                frand.New(),
	}
	for _, t := range rules.catalog {
		g.reedbed = append(g.reedbed, t.Copy())
	}
	g.players[0] = newPlayerState(rules.colors[0], rules.housePool)
	g.players[1] = newPlayerState(rules.colors[1], rules.housePool)
	g.checkGameOver()
	return g
}

func (g *Game) Rules() *GameRules {
	return g.rules
}

func (g *Game) Board() *board.Board {
	return g.board
}

// PlacedTiles returns the placed tiles in placement order.
func (g *Game) PlacedTiles() []*PlacedTile {
	return g.placed
}

// Reedbed returns the unplaced tiles, ascending by id.
func (g *Game) Reedbed() []*tiles.Tile {
	return g.reedbed
}

func (g *Game) PlayerOnTurn() int {
	return g.onturn
}

func (g *Game) ColorFor(player int) string {
	return g.players[player].color
}

// HousesFor returns the player's remaining house count.
func (g *Game) HousesFor(player int) int {
	return g.players[player].houses
}

// HousePool returns the per-player starting pool.
func (g *Game) HousePool() int {
	return g.rules.housePool
}

func (g *Game) FirstTurn() bool {
	return g.firstTurn
}

func (g *Game) Turn() int {
	return g.turnnum
}

func (g *Game) PlacementsMade() int {
	return g.placementsMade
}

func (g *Game) PlacementsRequired() int {
	return g.placementsRequired
}

func (g *Game) curPlayer() *playerState {
	return g.players[g.onturn]
}

func (g *Game) oppPlayer() *playerState {
	return g.players[(g.onturn+1)%2]
}

// ReedbedTile returns the reedbed tile with the given id, or nil.
func (g *Game) ReedbedTile(tileID int) *tiles.Tile {
	for _, t := range g.reedbed {
		if t.ID() == tileID {
			return t
		}
	}
	return nil
}

// PlacedTileByID returns the placed tile with the given id, or nil.
func (g *Game) PlacedTileByID(tileID int) *PlacedTile {
	for _, pt := range g.placed {
		if pt.tile.ID() == tileID {
			return pt
		}
	}
	return nil
}

// TileByID finds a tile wherever it lives; onBoard reports which pool.
func (g *Game) TileByID(tileID int) (t *tiles.Tile, onBoard bool) {
	if pt := g.PlacedTileByID(tileID); pt != nil {
		return pt.tile, true
	}
	return g.ReedbedTile(tileID), false
}

// RotateTile turns a reedbed tile in 90° steps (positive counter-clockwise).
// Placed tiles cannot rotate; their island cells are pinned to the board.
func (g *Game) RotateTile(tileID, direction int) bool {
	if g.gameOver {
		return false
	}
	t := g.ReedbedTile(tileID)
	if t == nil {
		log.Debug().Int("tile", tileID).Msg("rotate: tile not in reedbed")
		return false
	}
	t.Rotate(direction)
	return true
}

// CanPlaceTile reports whether the reedbed tile, anchored at cell
// (tileRow, tileCol), fits at board position (boardRow, boardCol): every
// island cell must map to an existing, unoccupied board square. Water cells
// may overhang. Pure; no side effects.
func (g *Game) CanPlaceTile(tileID, boardRow, boardCol, tileRow, tileCol int) bool {
	t := g.ReedbedTile(tileID)
	if t == nil {
		return false
	}
	return g.canPlace(t, boardRow, boardCol, tileRow, tileCol)
}

func (g *Game) canPlace(t *tiles.Tile, boardRow, boardCol, tileRow, tileCol int) bool {
	n := t.Dim()
	if tileRow < 0 || tileRow >= n || tileCol < 0 || tileCol >= n {
		return false
	}
	for _, cell := range t.IslandCells() {
		br := boardRow + cell[0] - tileRow
		bc := boardCol + cell[1] - tileCol
		if !g.board.PosExists(br, bc) || g.board.Occupied(br, bc) {
			return false
		}
	}
	return true
}

// PlaceTile re-validates and commits a tile placement: the placed tile is
// recorded, every island cell marks its board square, and the tile leaves
// the reedbed with any pre-placement houses intact. Fails closed with no
// mutation on any violation.
func (g *Game) PlaceTile(tileID, boardRow, boardCol, tileRow, tileCol int) bool {
	if g.gameOver {
		return false
	}
	t := g.ReedbedTile(tileID)
	if t == nil || !g.canPlace(t, boardRow, boardCol, tileRow, tileCol) {
		return false
	}
	pt := &PlacedTile{
		tile:     t,
		tileRow:  tileRow,
		tileCol:  tileCol,
		boardRow: boardRow,
		boardCol: boardCol,
	}
	idx := len(g.placed)
	g.placed = append(g.placed, pt)
	for _, cell := range t.IslandCells() {
		br, bc := pt.BoardPos(cell[0], cell[1])
		g.board.MarkOccupied(br, bc, idx, cell[0], cell[1])
	}
	g.removeFromReedbed(tileID)
	log.Debug().Int("tile", tileID).Int("boardRow", boardRow).Int("boardCol", boardCol).
		Int("player", g.onturn).Msg("placed tile")
	g.registerPlacement()
	return true
}

// PlaceHouse assigns a house on an island cell of any tile, placed or still
// in the reedbed; houses are anchor-independent. Fails on water cells, owned
// cells, and empty pools: false, no mutation.
func (g *Game) PlaceHouse(tileID, tileRow, tileCol, player int) bool {
	if g.gameOver || player < 0 || player > 1 {
		return false
	}
	t, _ := g.TileByID(tileID)
	if t == nil {
		return false
	}
	if !t.IsIsland(tileRow, tileCol) || t.HouseAt(tileRow, tileCol) != tiles.NoOwner {
		return false
	}
	p := g.players[player]
	if p.houses <= 0 {
		return false
	}
	t.SetHouse(tileRow, tileCol, tiles.Owner(player))
	p.houses--
	if p.houses < 0 {
		log.Panic().Int("player", player).Int("houses", p.houses).
			Msg("house pool went negative")
	}
	log.Debug().Int("tile", tileID).Int("row", tileRow).Int("col", tileCol).
		Int("player", player).Msg("placed house")
	g.registerPlacement()
	return true
}

// MakeMove applies a tile- or house-placement for the player on turn.
// Illegal moves return false with no partial effects.
func (g *Game) MakeMove(m *move.Move) bool {
	if m == nil || g.gameOver {
		return false
	}
	if m.Player() != g.onturn {
		log.Debug().Int("player", m.Player()).Int("onturn", g.onturn).
			Msg("move by player not on turn")
		return false
	}
	switch m.Action() {
	case move.MoveTypePlaceTile:
		return g.PlaceTile(m.TileID(), m.BoardRow(), m.BoardCol(), m.TileRow(), m.TileCol())
	case move.MoveTypePlaceHouse:
		return g.PlaceHouse(m.TileID(), m.TileRow(), m.TileCol(), m.Player())
	}
	return false
}

// registerPlacement advances the turn machine after a successful placement.
// The first turn requires one placement, every later turn two. When a turn
// completes, play passes to the other player and game-over is evaluated for
// them at the instant their turn would begin.
func (g *Game) registerPlacement() {
	g.placementsMade++
	if g.placementsMade < g.placementsRequired {
		return
	}
	g.placementsMade = 0
	g.placementsRequired = 2
	g.firstTurn = false
	g.onturn = (g.onturn + 1) % 2
	g.turnnum++
	g.checkGameOver()
}

func (g *Game) removeFromReedbed(tileID int) {
	for i, t := range g.reedbed {
		if t.ID() == tileID {
			g.reedbed = append(g.reedbed[:i], g.reedbed[i+1:]...)
			return
		}
	}
	log.Panic().Int("tile", tileID).Msg("tile placed but missing from reedbed")
}

// GetRandom returns a float in [0,1) from the game's random source.
func (g *Game) GetRandom() float64 {
	return g.rng.Float64()
}

// SeedRandom swaps the random source for a reproducible seeded one.
func (g *Game) SeedRandom(seed uint64) {
	g.rng = seededRNG(seed)
}

func seededRNG(seed uint64) *frand.RNG {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:8], seed)
	return frand.NewCustom(b[:], 1024, 12)
}
