package automatic

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/dbltnk/uros-sub000/bot"
	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/tiles"
)

func testRules(t *testing.T) *game.GameRules {
	t.Helper()
	is := is.New(t)
	domino := tiles.NewTile(0, "Domino", [][]bool{
		{true, true},
		{false, false},
	})
	square := tiles.NewTile(1, "Square", [][]bool{
		{true, true},
		{true, true},
	})
	elbow := tiles.NewTile(2, "Elbow", [][]bool{
		{true, false},
		{true, true},
	})
	rules, err := game.NewGameRules([]*tiles.Tile{domino, square, elbow}, 5, 4, [2]string{"red", "blue"})
	is.NoErr(err)
	return rules
}

func TestPlayGameRunsToCompletion(t *testing.T) {
	is := is.New(t)
	opts := [2]bot.Options{{Seed: 11}, {Seed: 22}}
	r, err := NewGameRunner(testRules(t), bot.Random, bot.Random, opts, nil)
	is.NoErr(err)
	is.NoErr(r.PlayGame(context.Background(), 1))

	g := r.Game()
	// Either the game latched or both players stalled with no legal moves;
	// in both cases the board holds some placements.
	is.True(g.Board().OccupiedCount() > 0)
	winner, draw := Outcome(g)
	is.True(draw || winner == 0 || winner == 1)
}

func TestPlayGameDeterministicReproducible(t *testing.T) {
	is := is.New(t)
	rules := testRules(t)
	opts := [2]bot.Options{{}, {}}

	r1, err := NewGameRunner(rules, bot.Deterministic, bot.Deterministic, opts, nil)
	is.NoErr(err)
	is.NoErr(r1.PlayGame(context.Background(), 1))
	w1, d1 := Outcome(r1.Game())

	r2, err := NewGameRunner(rules, bot.Deterministic, bot.Deterministic, opts, nil)
	is.NoErr(err)
	is.NoErr(r2.PlayGame(context.Background(), 1))
	w2, d2 := Outcome(r2.Game())

	is.Equal(w1, w2)
	is.Equal(d1, d2)
	is.Equal(r1.Game().Turn(), r2.Game().Turn())
}

func TestOutcomeFrozenResultWins(t *testing.T) {
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

	_, draw := Outcome(g)
	is.True(draw)
}

func TestStartStrategyGames(t *testing.T) {
	is := is.New(t)
	outfile := filepath.Join(t.TempDir(), "series.csv")
	opts := [2]bot.Options{{Seed: 5}, {Seed: 6}}
	stats, err := StartStrategyGames(context.Background(), testRules(t),
		bot.Random, bot.Deterministic, opts, 4, 2, outfile)
	is.NoErr(err)
	is.Equal(stats.Games, 4)
	is.Equal(stats.Wins[0]+stats.Wins[1]+stats.Draws, 4)

	data, err := os.ReadFile(outfile)
	is.NoErr(err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	is.Equal(lines[0], "gameID,turn,player,code,play,largestvillage,houses")
	is.True(len(lines) > 1)
}

func TestStartStrategyGamesRejectsBadCode(t *testing.T) {
	is := is.New(t)
	_, err := StartStrategyGames(context.Background(), testRules(t),
		"alphabeta", bot.Random, [2]bot.Options{}, 1, 1, "")
	is.True(err != nil)
}
