package movegen

import (
	"reflect"
	"testing"

	"github.com/matryer/is"

	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/tiles"
)

func dominoGame(t *testing.T, dim, pool int) *game.Game {
	t.Helper()
	catalog := []*tiles.Tile{tiles.NewTile(0, "Domino", [][]bool{
		{true, true},
		{false, false},
	})}
	rules, err := game.NewGameRules(catalog, dim, pool, [2]string{"red", "blue"})
	if err != nil {
		t.Fatal(err)
	}
	return game.NewGame(rules)
}

func standardGame(t *testing.T) *game.Game {
	t.Helper()
	catalog := []*tiles.Tile{
		tiles.NewTile(0, "Domino", [][]bool{
			{true, true},
			{false, false},
		}),
		tiles.NewTile(1, "Elbow", [][]bool{
			{true, false},
			{true, true},
		}),
	}
	rules, err := game.NewBasicGameRules(catalog)
	if err != nil {
		t.Fatal(err)
	}
	return game.NewGame(rules)
}

func TestGenAllSmallBoard(t *testing.T) {
	is := is.New(t)
	g := dominoGame(t, 2, 10)
	gen := NewGenerator()
	plays := gen.GenAll(g)

	// The domino fits in rows 0 and 1 for each of its two anchors, plus a
	// house play on each of its two island cells.
	is.Equal(len(plays), 6)
	is.Equal(plays[0].Action(), move.MoveTypePlaceTile)
	is.Equal(plays[0].TileRow(), 0)
	is.Equal(plays[0].TileCol(), 0)
	is.Equal(plays[0].BoardRow(), 0)
	is.Equal(plays[0].BoardCol(), 0)
	is.Equal(plays[4].Action(), move.MoveTypePlaceHouse)
	is.Equal(plays[5].Action(), move.MoveTypePlaceHouse)

	for _, m := range plays {
		is.Equal(m.Player(), g.PlayerOnTurn())
	}
	is.True(reflect.DeepEqual(plays, gen.Plays()))
}

func TestGenAllEveryPlayApplies(t *testing.T) {
	is := is.New(t)
	g := standardGame(t)
	is.True(g.PlaceTile(0, 2, 2, 0, 0))
	is.True(g.PlaceHouse(0, 0, 0, 1))
	is.True(g.PlaceHouse(1, 0, 0, 1))

	gen := NewGenerator()
	plays := gen.GenAll(g)
	is.True(len(plays) > 0)
	for _, m := range plays {
		c := g.Copy()
		if !c.MakeMove(m) {
			t.Fatalf("unplayable generated move %v", m)
		}
	}
}

func TestGenAllDeterministic(t *testing.T) {
	is := is.New(t)
	g := standardGame(t)
	is.True(g.PlaceTile(1, 3, 3, 0, 0))
	is.True(g.PlaceHouse(1, 0, 0, 1))

	gen := NewGenerator()
	first := append([]*move.Move{}, gen.GenAll(g)...)
	for i := 0; i < 3; i++ {
		is.True(reflect.DeepEqual(first, gen.GenAll(g)))
	}
}

func TestGenAllSkipsOwnedCells(t *testing.T) {
	is := is.New(t)
	g := standardGame(t)
	is.True(g.PlaceHouse(0, 0, 0, 0))

	gen := NewGenerator()
	for _, m := range gen.GenAll(g) {
		if m.Action() != move.MoveTypePlaceHouse {
			continue
		}
		is.True(!(m.TileID() == 0 && m.TileRow() == 0 && m.TileCol() == 0))
	}
}

func TestGenAllNoHousePlaysWhenPoolEmpty(t *testing.T) {
	is := is.New(t)
	catalog := []*tiles.Tile{
		tiles.NewTile(0, "Domino", [][]bool{
			{true, true},
			{false, false},
		}),
		tiles.NewTile(1, "Domino", [][]bool{
			{true, true},
			{false, false},
		}),
	}
	rules, err := game.NewGameRules(catalog, 6, 1, [2]string{"red", "blue"})
	is.NoErr(err)
	g := game.NewGame(rules)

	is.True(g.PlaceHouse(0, 0, 0, 0)) // player 0 spends the pool
	is.True(g.PlaceTile(0, 0, 0, 0, 0))
	is.True(g.PlaceHouse(1, 0, 0, 1)) // player 1 spends theirs

	is.Equal(g.PlayerOnTurn(), 0)
	is.Equal(g.HousesFor(0), 0)
	is.True(!g.IsGameOver())

	gen := NewGenerator()
	plays := gen.GenAll(g)
	is.True(len(plays) > 0)
	for _, m := range plays {
		is.Equal(m.Action(), move.MoveTypePlaceTile)
	}
}

func TestGenAllEmptyWhenGameOver(t *testing.T) {
	is := is.New(t)
	g := dominoGame(t, 2, 1)
	is.True(g.PlaceHouse(0, 0, 0, 0))
	is.True(g.PlaceTile(0, 0, 0, 0, 0))
	is.True(g.IsGameOver())

	gen := NewGenerator()
	is.Equal(len(gen.GenAll(g)), 0)
}

func TestGenAllUsesCurrentRotation(t *testing.T) {
	is := is.New(t)
	g := dominoGame(t, 6, 10)
	is.True(g.RotateTile(0, 1))

	gen := NewGenerator()
	plays := gen.GenAll(g)
	is.True(len(plays) > 0)

	// After one counter-clockwise step the domino is a column: applying
	// the first placement occupies (0,0) and (1,0).
	c := g.Copy()
	is.True(c.MakeMove(plays[0]))
	is.True(c.Board().Occupied(0, 0))
	is.True(c.Board().Occupied(1, 0))
	is.True(!c.Board().Occupied(0, 1))
}
