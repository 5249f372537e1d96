package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/movegen"
	"github.com/dbltnk/uros-sub000/tiles"
)

func testCatalog() []*tiles.Tile {
	domino := tiles.NewTile(0, "Domino", [][]bool{
		{true, true},
		{false, false},
	})
	square := tiles.NewTile(1, "Square", [][]bool{
		{true, true},
		{true, true},
	})
	return []*tiles.Tile{domino, square}
}

// testGame returns a game at the start of player 0's second turn: the square
// and the domino are on the board and player 1 holds one house.
func testGame(t *testing.T) *game.Game {
	t.Helper()
	is := is.New(t)
	rules, err := game.NewGameRules(testCatalog(), 4, 3, [2]string{"red", "blue"})
	is.NoErr(err)
	g := game.NewGame(rules)
	is.True(g.PlaceTile(1, 0, 0, 0, 0))
	is.True(g.PlaceTile(0, 2, 2, 0, 0))
	is.True(g.PlaceHouse(0, 0, 0, 1))
	return g
}

// endedGame returns a finished game: one domino, no houses to place.
func endedGame(t *testing.T) *game.Game {
	t.Helper()
	is := is.New(t)
	domino := tiles.NewTile(0, "Domino", [][]bool{
		{true, true},
		{false, false},
	})
	rules, err := game.NewGameRules([]*tiles.Tile{domino}, 2, 0, [2]string{"red", "blue"})
	is.NoErr(err)
	g := game.NewGame(rules)
	is.True(g.PlaceTile(0, 0, 0, 0, 0))
	is.True(g.IsGameOver())
	return g
}

func containsMove(plays []*move.Move, m *move.Move) bool {
	for _, p := range plays {
		if p.Equals(m) {
			return true
		}
	}
	return false
}

func TestRegistryConstructsEveryCode(t *testing.T) {
	is := is.New(t)
	for _, code := range KnownCodes() {
		s, err := NewStrategy(code, Options{BudgetMs: 50, Seed: 42})
		is.NoErr(err)
		is.Equal(s.Code(), code)
	}
}

func TestRegistryRejectsUnknownCode(t *testing.T) {
	is := is.New(t)
	_, err := NewStrategy("alphabeta", Options{})
	is.True(err != nil)
}

func TestDeterministicFollowsEnumerationOrder(t *testing.T) {
	is := is.New(t)
	g := testGame(t)
	s, err := NewStrategy(Deterministic, Options{})
	is.NoErr(err)

	first, err := s.ChooseMove(context.Background(), g)
	is.NoErr(err)
	expected := movegen.NewGenerator().GenAll(g)
	is.True(first.Equals(expected[0]))

	again, err := s.ChooseMove(context.Background(), g)
	is.NoErr(err)
	is.True(first.Equals(again))
}

func TestRandomIsSeededAndLegal(t *testing.T) {
	is := is.New(t)
	g := testGame(t)
	a, err := NewStrategy(Random, Options{Seed: 99})
	is.NoErr(err)
	b, err := NewStrategy(Random, Options{Seed: 99})
	is.NoErr(err)

	ma, err := a.ChooseMove(context.Background(), g)
	is.NoErr(err)
	mb, err := b.ChooseMove(context.Background(), g)
	is.NoErr(err)
	is.True(ma.Equals(mb))
	is.True(containsMove(movegen.NewGenerator().GenAll(g), ma))
}

// Search strategies must return a legal move for the queried state within
// their budget, and must not touch the state they were given.
func TestSearchStrategiesReturnLegalMoves(t *testing.T) {
	for _, code := range []Code{Minimax, MinimaxRandomized, MonteCarlo} {
		t.Run(string(code), func(t *testing.T) {
			is := is.New(t)
			g := testGame(t)
			placements := g.PlacementsMade()
			occupied := g.Board().OccupiedCount()

			s, err := NewStrategy(code, Options{BudgetMs: 200, Seed: 42})
			is.NoErr(err)
			m, err := s.ChooseMove(context.Background(), g)
			is.NoErr(err)
			is.True(m != nil)
			is.True(containsMove(movegen.NewGenerator().GenAll(g), m))

			is.Equal(g.PlacementsMade(), placements)
			is.Equal(g.Board().OccupiedCount(), occupied)
		})
	}
}

func TestNoLegalMovesMeansNilNil(t *testing.T) {
	for _, code := range KnownCodes() {
		t.Run(string(code), func(t *testing.T) {
			is := is.New(t)
			g := endedGame(t)
			s, err := NewStrategy(code, Options{BudgetMs: 50, Seed: 1})
			is.NoErr(err)
			m, err := s.ChooseMove(context.Background(), g)
			is.NoErr(err)
			is.Equal(m, nil)
		})
	}
}

func TestExpiredBudgetIsDistinguishable(t *testing.T) {
	for _, code := range []Code{Minimax, MonteCarlo} {
		t.Run(string(code), func(t *testing.T) {
			is := is.New(t)
			g := testGame(t)
			s, err := NewStrategy(code, Options{BudgetMs: 50, Seed: 1})
			is.NoErr(err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			m, err := s.ChooseMove(ctx, g)
			is.True(errors.Is(err, ErrBudgetExpired))
			is.Equal(m, nil)
		})
	}
}
