package game

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/tiles"
)

func dominoShape() [][]bool {
	return [][]bool{
		{true, true},
		{false, false},
	}
}

func squareShape() [][]bool {
	return [][]bool{
		{true, true},
		{true, true},
	}
}

func newSmallGame(t *testing.T, catalog []*tiles.Tile, dim, pool int) *Game {
	t.Helper()
	rules, err := NewGameRules(catalog, dim, pool, [2]string{"red", "blue"})
	if err != nil {
		t.Fatal(err)
	}
	return NewGame(rules)
}

func TestGameOverWhenReedbedEmpty(t *testing.T) {
	is := is.New(t)
	catalog := []*tiles.Tile{
		tiles.NewTile(0, "Domino", dominoShape()),
		tiles.NewTile(1, "Domino", dominoShape()),
	}
	g := newSmallGame(t, catalog, 2, 1)

	// Player 0 spends the only house on a reedbed tile.
	is.True(g.PlaceHouse(0, 0, 0, 0))
	is.Equal(g.PlayerOnTurn(), 1)
	is.True(!g.IsGameOver()) // player 1 still has a house

	// Player 1 fills the board with both dominoes. The next turn would be
	// player 0's: no houses, nothing left to place.
	is.True(g.PlaceTile(0, 0, 0, 0, 0))
	is.True(g.PlaceTile(1, 1, 0, 0, 0))

	is.True(g.IsGameOver())
	r := g.Result()
	is.True(r != nil)
	is.Equal(r.Winner, 0) // lone house on the placed domino beats nothing
	is.Equal(r.Sizes, [2]int{1, 0})

	winner, ok := g.Winner()
	is.True(ok)
	is.Equal(winner, 0)

	// The outcome is latched: nothing moves anymore.
	is.True(!g.MakeMove(move.NewPlaceHouseMove(1, 0, 0, 1)))
	is.True(!g.PlaceHouse(1, 0, 0, 1))
	is.True(!g.RotateTile(1, 1))
	is.True(g.IsGameOver())
	is.Equal(g.Result(), r)
}

func TestGameOverUnplaceableReedbed(t *testing.T) {
	is := is.New(t)
	catalog := []*tiles.Tile{
		tiles.NewTile(0, "Domino", dominoShape()),
		tiles.NewTile(1, "Square", squareShape()),
	}
	g := newSmallGame(t, catalog, 2, 1)

	is.True(g.PlaceHouse(1, 0, 0, 0))
	// Player 1 blocks row 0; the square can no longer fit anywhere even
	// though it is still in the reedbed.
	is.True(g.PlaceTile(0, 0, 0, 0, 0))
	is.True(g.PlaceHouse(1, 1, 1, 1))

	is.True(g.IsGameOver())
	r := g.Result()
	// Both players' houses sit on the unplaced square: no placed-tile
	// villages at all, a full tie.
	is.Equal(r.Winner, Draw)
	is.Equal(r.Sizes, [2]int{0, 0})
	is.Equal(r.Islands, [2]int{0, 0})

	winner, ok := g.Winner()
	is.True(ok)
	is.Equal(winner, Draw)
}

func TestGameOverTieBreakIslands(t *testing.T) {
	is := is.New(t)
	catalog := []*tiles.Tile{
		tiles.NewTile(0, "Domino", dominoShape()),
		tiles.NewTile(1, "Domino", dominoShape()),
		tiles.NewTile(2, "Domino", dominoShape()),
	}
	g := newSmallGame(t, catalog, 4, 2)

	is.True(g.PlaceTile(0, 0, 0, 0, 0)) // turn 1: player 0

	is.True(g.PlaceTile(1, 2, 0, 0, 0)) // turn 2: player 1
	is.True(g.PlaceHouse(1, 0, 0, 1))   // board (2,0)

	is.True(g.PlaceHouse(0, 0, 0, 0)) // turn 3: player 0, board (0,0)
	is.True(g.PlaceHouse(0, 0, 1, 0)) // board (0,1)

	is.True(g.PlaceTile(2, 3, 0, 0, 0)) // turn 4: player 1
	is.True(g.PlaceHouse(2, 0, 0, 1))   // board (3,0), joins (2,0)

	// Both villages have two houses; player 1's spans two islands.
	is.True(g.IsGameOver())
	r := g.Result()
	is.Equal(r.Sizes, [2]int{2, 2})
	is.Equal(r.Islands, [2]int{1, 2})
	is.Equal(r.Winner, 1)
}

func TestGameNotOverWhilePlaceable(t *testing.T) {
	is := is.New(t)
	g := newTestGame(t)

	_, ok := g.Winner()
	is.True(!ok)
	is.Equal(g.Result(), nil)

	// Exhausting a pool alone does not end the game while reedbed tiles
	// still fit.
	catalog := []*tiles.Tile{
		tiles.NewTile(0, "Domino", dominoShape()),
		tiles.NewTile(1, "Square", squareShape()),
	}
	h := newSmallGame(t, catalog, 6, 1)
	is.True(h.PlaceHouse(0, 0, 0, 0))
	is.True(h.PlaceTile(0, 0, 0, 0, 0))
	is.True(h.PlaceHouse(1, 0, 0, 1))

	is.Equal(h.PlayerOnTurn(), 0)
	is.Equal(h.HousesFor(0), 0)
	is.True(!h.IsGameOver()) // the square still fits on a 6x6 board
	is.True(h.PlaceTile(1, 3, 3, 0, 0))
}
