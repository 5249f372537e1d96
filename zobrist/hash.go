package zobrist

import (
	"lukechampine.com/frand"

	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/tiles"
)

const bignum = 1<<63 - 2

// Zobrist generates a hash for a game position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
//
// The hash covers everything move legality and scoring depend on: each
// placed tile's footprint (canonical offset of its local origin, plus its
// rotation), every house on every tile, each reedbed tile's rotation, the
// player on turn, the first-turn flag, and the mid-turn placement count.
// House pools are implied by the house grids and are not hashed separately;
// the turn number is bookkeeping and deliberately excluded, so the same
// position reached through different move orders transposes to one key.
type Zobrist struct {
	p2ToMove       uint64
	firstTurn      uint64
	placementsMade [2]uint64

	placementTable [][]uint64
	houseTable     [][]uint64
	rotationTable  [][4]uint64

	boardDim int
	spans    []int
}

func (z *Zobrist) Initialize(catalog []*tiles.Tile, boardDim int) {
	z.boardDim = boardDim
	z.placementTable = make([][]uint64, len(catalog))
	z.houseTable = make([][]uint64, len(catalog))
	z.rotationTable = make([][4]uint64, len(catalog))
	z.spans = make([]int, len(catalog))

	for id, t := range catalog {
		n := t.Dim()
		// The tile's local origin can sit off-board by up to n-1 when
		// water overhangs an edge.
		span := boardDim + n - 1
		z.spans[id] = span
		z.placementTable[id] = make([]uint64, 4*span*span)
		for i := range z.placementTable[id] {
			z.placementTable[id][i] = frand.Uint64n(bignum) + 1
		}
		z.houseTable[id] = make([]uint64, n*n*2)
		for i := range z.houseTable[id] {
			z.houseTable[id][i] = frand.Uint64n(bignum) + 1
		}
		for r := 0; r < 4; r++ {
			z.rotationTable[id][r] = frand.Uint64n(bignum) + 1
		}
	}

	z.p2ToMove = frand.Uint64n(bignum) + 1
	z.firstTurn = frand.Uint64n(bignum) + 1
	for i := range z.placementsMade {
		z.placementsMade[i] = frand.Uint64n(bignum) + 1
	}
}

// Hash recomputes the key for the whole position. Game states are small
// (tens of tiles), so a full pass is cheap next to the per-node deep copy
// the search already pays for.
func (z *Zobrist) Hash(g *game.Game) uint64 {
	key := uint64(0)
	for _, pt := range g.PlacedTiles() {
		t := pt.Tile()
		id := t.ID()
		n := t.Dim()
		span := z.spans[id]
		offRow, offCol := pt.BoardPos(0, 0)
		idx := t.Rotation()*span*span + (offRow+n-1)*span + (offCol + n - 1)
		key ^= z.placementTable[id][idx]
		key ^= z.houseKey(t)
	}
	for _, t := range g.Reedbed() {
		key ^= z.rotationTable[t.ID()][t.Rotation()]
		key ^= z.houseKey(t)
	}
	if g.PlayerOnTurn() == 1 {
		key ^= z.p2ToMove
	}
	if g.FirstTurn() {
		key ^= z.firstTurn
	}
	key ^= z.placementsMade[g.PlacementsMade()]
	return key
}

func (z *Zobrist) houseKey(t *tiles.Tile) uint64 {
	key := uint64(0)
	n := t.Dim()
	for _, cell := range t.IslandCells() {
		owner := t.HouseAt(cell[0], cell[1])
		if owner == tiles.NoOwner {
			continue
		}
		key ^= z.houseTable[t.ID()][(cell[0]*n+cell[1])*2+int(owner)]
	}
	return key
}
