package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/tiles"
)

func testCatalog() []*tiles.Tile {
	return []*tiles.Tile{
		tiles.NewTile(0, "Domino", [][]bool{
			{true, true},
			{false, false},
		}),
		tiles.NewTile(1, "Square", [][]bool{
			{true, true},
			{true, true},
		}),
	}
}

func newGame(t *testing.T) *game.Game {
	t.Helper()
	rules, err := game.NewBasicGameRules(testCatalog())
	if err != nil {
		t.Fatal(err)
	}
	return game.NewGame(rules)
}

func TestHashStableForSameState(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(testCatalog(), game.DefaultBoardDim)

	g := newGame(t)
	is.True(g.PlaceTile(0, 2, 2, 0, 0))
	is.True(g.PlaceHouse(0, 0, 0, 0))

	h1 := z.Hash(g)
	is.Equal(h1, z.Hash(g))
	is.Equal(h1, z.Hash(g.Copy()))
}

func TestHashChangesOnMoves(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(testCatalog(), game.DefaultBoardDim)

	g := newGame(t)
	seen := map[uint64]bool{z.Hash(g): true}

	is.True(g.PlaceHouse(0, 0, 0, 0))
	is.True(!seen[z.Hash(g)])
	seen[z.Hash(g)] = true

	is.True(g.PlaceTile(0, 2, 2, 0, 0))
	is.True(!seen[z.Hash(g)])
	seen[z.Hash(g)] = true

	is.True(g.PlaceHouse(1, 0, 0, 1))
	is.True(!seen[z.Hash(g)])
}

func TestHashRotationRoundTrip(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(testCatalog(), game.DefaultBoardDim)

	g := newGame(t)
	h0 := z.Hash(g)
	is.True(g.RotateTile(0, 1))
	is.True(z.Hash(g) != h0)
	for i := 0; i < 3; i++ {
		is.True(g.RotateTile(0, 1))
	}
	is.Equal(z.Hash(g), h0)
}

func TestHashTransposes(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(testCatalog(), game.DefaultBoardDim)

	// The same two houses in either order land on the same key.
	a := newGame(t)
	is.True(a.PlaceHouse(1, 0, 0, 0)) // ends turn 1
	is.True(a.PlaceHouse(1, 0, 1, 1))
	is.True(a.PlaceHouse(1, 1, 1, 1)) // ends turn 2

	b := newGame(t)
	is.True(b.PlaceHouse(1, 0, 0, 0))
	is.True(b.PlaceHouse(1, 1, 1, 1))
	is.True(b.PlaceHouse(1, 0, 1, 1))

	is.Equal(z.Hash(a), z.Hash(b))
}

func TestHashDistinguishesMidTurn(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(testCatalog(), game.DefaultBoardDim)

	g := newGame(t)
	is.True(g.PlaceHouse(0, 0, 0, 0)) // first turn over, player 1 at 0 of 2
	h := z.Hash(g)
	is.True(g.PlaceTile(1, 3, 3, 0, 0)) // player 1 at 1 of 2
	is.True(z.Hash(g) != h)
}

func TestHashDistinguishesAnchorEquivalentPlacements(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(testCatalog(), game.DefaultBoardDim)

	// Different anchors producing the identical footprint are the same
	// position, so they hash alike.
	a := newGame(t)
	is.True(a.PlaceTile(0, 1, 1, 0, 0))

	b := newGame(t)
	is.True(b.PlaceTile(0, 1, 2, 0, 1))

	is.Equal(z.Hash(a), z.Hash(b))
}
