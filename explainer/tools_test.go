package explainer

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/dbltnk/uros-sub000/config"
	"github.com/dbltnk/uros-sub000/game"
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

// testGame sets up a small midgame position: both tiles placed, one blue
// house down, red to move with five legal house placements.
func testGame(t *testing.T) *game.Game {
	t.Helper()
	is := is.New(t)
	rules, err := game.NewGameRules(testCatalog(), 4, 3, [2]string{"red", "blue"})
	is.NoErr(err)
	g := game.NewGame(rules)
	is.True(g.PlaceTile(1, 0, 0, 0, 0))
	is.True(g.PlaceTile(0, 2, 2, 0, 0))
	is.True(g.PlaceHouse(0, 0, 0, 1))
	is.Equal(g.PlayerOnTurn(), 0)
	return g
}

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	an := NewAnalyzer()
	an.SetGame(testGame(t))
	return an
}

func TestGetMoveMetadataHouse(t *testing.T) {
	is := is.New(t)
	an := testAnalyzer(t)

	md, err := an.GetMoveMetadata("house t1(0,0)")
	is.NoErr(err)
	is.Equal(md, &MoveMetadata{
		Move:                "house t1(0,0)",
		Action:              "house",
		TileName:            "Square",
		VillageSizeAfter:    1,
		VillageIslandsAfter: 1,
		HousesLeftAfter:     2,
		EndsGame:            false,
	})
}

func TestGetMoveMetadataTile(t *testing.T) {
	is := is.New(t)
	rules, err := game.NewGameRules(testCatalog(), 4, 3, [2]string{"red", "blue"})
	is.NoErr(err)
	an := NewAnalyzer()
	an.SetGame(game.NewGame(rules))

	md, err := an.GetMoveMetadata("tile t0(0,0)@0,0")
	is.NoErr(err)
	is.Equal(md.Action, "tile")
	is.Equal(md.TileName, "Domino")
	is.Equal(md.VillageSizeAfter, 0)
	is.Equal(md.HousesLeftAfter, 3)
	is.Equal(md.EndsGame, false)
}

func TestGetMoveMetadataRejectsUnknownMove(t *testing.T) {
	is := is.New(t)
	an := testAnalyzer(t)
	_, err := an.GetMoveMetadata("house t9(0,0)")
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "not legal"))
}

func TestAnalyzerWithoutGame(t *testing.T) {
	is := is.New(t)
	an := NewAnalyzer()
	_, err := an.GetMoveMetadata("house t1(0,0)")
	is.True(err != nil)
	_, err = an.GetBoardMetadata()
	is.True(err != nil)
}

func TestGetBoardMetadata(t *testing.T) {
	is := is.New(t)
	an := testAnalyzer(t)

	md, err := an.GetBoardMetadata()
	is.NoErr(err)
	is.Equal(md.OnTurn, 0)
	is.Equal(md.OccupiedCells, 6)
	is.Equal(md.ReedbedTiles, 0)
	is.Equal(md.Players[0], PlayerMetadata{
		Color: "red", HousesInHand: 3, LargestVillage: 0, VillageIslands: 0, Villages: 0,
	})
	is.Equal(md.Players[1], PlayerMetadata{
		Color: "blue", HousesInHand: 2, LargestVillage: 1, VillageIslands: 1, Villages: 1,
	})
}

func TestEvaluateMove(t *testing.T) {
	is := is.New(t)
	an := testAnalyzer(t)

	v, err := an.EvaluateMove("house t1(0,0)")
	is.NoErr(err)
	is.True(!math.IsNaN(v))

	_, err = an.EvaluateMove("tile t9(0,0)@0,0")
	is.True(err != nil)
}

func TestToolExecute(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	an := testAnalyzer(t)

	mt := NewGetMoveMetadataTool(an)
	is.Equal(mt.Name(), "get_move_metadata")
	out, err := mt.Execute(ctx, `{"move_string": "house t1(0,0)"}`)
	is.NoErr(err)
	var md MoveMetadata
	is.NoErr(json.Unmarshal([]byte(out), &md))
	is.Equal(md.Move, "house t1(0,0)")

	_, err = mt.Execute(ctx, `not json`)
	is.True(err != nil)

	bt := NewGetBoardMetadataTool(an)
	out, err = bt.Execute(ctx, "")
	is.NoErr(err)
	var bd BoardMetadata
	is.NoErr(json.Unmarshal([]byte(out), &bd))
	is.Equal(bd.OccupiedCells, 6)

	et := NewEvaluateMoveTool(an)
	out, err = et.Execute(ctx, `{"move_string": "house t1(0,0)"}`)
	is.NoErr(err)
	_, err = strconv.ParseFloat(out, 64)
	is.NoErr(err)
}

func TestBuildPromptFillsPlaceholders(t *testing.T) {
	is := is.New(t)
	an := testAnalyzer(t)
	an.SetGameContext("STATE-X", "RESULTS-X", "DETAILS-X", "house t1(0,0)")

	prompt := an.BuildPrompt()
	is.True(strings.Contains(prompt, "STATE-X"))
	is.True(strings.Contains(prompt, "RESULTS-X"))
	is.True(strings.Contains(prompt, "DETAILS-X"))
	is.True(strings.Contains(prompt, `"house t1(0,0)"`))
	is.True(!strings.Contains(prompt, "{game_state}"))
	is.True(!strings.Contains(prompt, "{situation}"))
}

func TestExplainWithoutLLM(t *testing.T) {
	is := is.New(t)
	t.Setenv("UROS_NO_LLM", "1")

	cfg := &config.Config{}
	is.NoErr(cfg.Load([]string{
		"--explainer-provider=gemini",
		"--explainer-api-key=test-key",
	}))

	svc := NewService(cfg)
	is.True(svc.Enabled())
	svc.SetGame(testGame(t))

	res, err := svc.Explain(context.Background(), "STATE-X", "RESULTS-X", "DETAILS-X", "house t1(0,0)")
	is.NoErr(err)
	is.True(strings.Contains(res.Explanation, "STATE-X"))
	is.True(strings.Contains(res.Explanation, "house t1(0,0)"))
}

func TestServiceDisabledWithoutKey(t *testing.T) {
	is := is.New(t)
	cfg := &config.Config{}
	is.NoErr(cfg.Load(nil))
	svc := NewService(cfg)
	is.True(!svc.Enabled())
}
