package equity

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/tiles"
)

func testGame(t *testing.T) *game.Game {
	t.Helper()
	catalog := []*tiles.Tile{
		tiles.NewTile(0, "Domino", [][]bool{
			{true, true},
			{false, false},
		}),
		tiles.NewTile(1, "Domino", [][]bool{
			{true, true},
			{false, false},
		}),
		tiles.NewTile(2, "Square", [][]bool{
			{true, true},
			{true, true},
		}),
	}
	rules, err := game.NewBasicGameRules(catalog)
	if err != nil {
		t.Fatal(err)
	}
	return game.NewGame(rules)
}

func TestVillageLeadDominates(t *testing.T) {
	is := is.New(t)
	g := testGame(t)
	is.True(g.PlaceTile(2, 0, 0, 0, 0))
	is.True(g.PlaceHouse(2, 0, 0, 0))
	is.True(g.PlaceHouse(2, 0, 1, 0))
	is.True(g.PlaceHouse(2, 1, 0, 1))

	vlc := VillageLeadCalculator{}
	is.Equal(vlc.Equity(g, 0), villageSizeWeight*1) // 2 vs 1, same island count
	is.Equal(vlc.Equity(g, 1), -villageSizeWeight*1)

	// A one-house size lead outweighs every minor bonus combined on this
	// board.
	se := NewStaticEvaluator()
	is.True(se.Evaluate(g, 0) > se.Evaluate(g, 1))
}

func TestDiversityCountsVillagesAndIslands(t *testing.T) {
	is := is.New(t)
	g := testGame(t)
	is.True(g.PlaceTile(0, 0, 0, 0, 0))
	is.True(g.PlaceTile(1, 2, 0, 0, 0))
	is.True(g.PlaceHouse(0, 0, 0, 0)) // board village on tile 0
	is.True(g.PlaceHouse(1, 0, 0, 0)) // board village on tile 1
	is.True(g.PlaceHouse(2, 0, 0, 0)) // reedbed village

	dc := DiversityCalculator{}
	// Three villages, two placed islands touched, opponent touches none.
	is.Equal(dc.Equity(g, 0), villageCountWeight*3+islandsTouchedWeight*2)
	is.Equal(dc.Equity(g, 1), islandsTouchedWeight*-2)
}

func TestReserveCalculator(t *testing.T) {
	is := is.New(t)
	g := testGame(t)
	rc := ReserveCalculator{}
	is.Equal(rc.Equity(g, 0), houseReserveWeight*float64(game.DefaultHousePool))
	is.True(g.PlaceHouse(0, 0, 0, 0))
	is.Equal(rc.Equity(g, 0), houseReserveWeight*float64(game.DefaultHousePool-1))
}

func TestExpansionAndBlocking(t *testing.T) {
	is := is.New(t)
	g := testGame(t)
	// Square at (0,0) with one house of each player in opposite corners.
	is.True(g.PlaceTile(2, 0, 0, 0, 0))
	is.True(g.PlaceHouse(2, 0, 0, 0))
	is.True(g.PlaceHouse(2, 1, 1, 1))

	ec := ExpansionCalculator{}
	// Player 0's house at (0,0) touches free cells (0,1) and (1,0); the
	// same two cells touch player 1's house at (1,1). Expansion and
	// blocking therefore see two cells each, for both players.
	want := expansionWeight*2 + blockingWeight*2
	is.Equal(ec.Equity(g, 0), want)
	is.Equal(ec.Equity(g, 1), want)

	// Opponent takes (0,1): player 0 keeps one growth cell, and (1,0)
	// now borders both players.
	is.True(g.PlaceHouse(2, 0, 1, 1))
	is.Equal(ec.Equity(g, 0), expansionWeight*1+blockingWeight*1)
}

func TestProgressScale(t *testing.T) {
	is := is.New(t)
	g := testGame(t)
	is.Equal(progressScale(g), 0.5)

	is.True(g.PlaceHouse(0, 0, 0, 0))
	is.True(g.PlaceHouse(0, 0, 1, 1))
	// 2 of 20 houses placed.
	is.Equal(progressScale(g), 0.5+2.0/20.0)
}

func TestEvaluateScalesWithProgress(t *testing.T) {
	is := is.New(t)
	se := NewStaticEvaluatorWith(VillageLeadCalculator{})

	early := testGame(t)
	is.True(early.PlaceTile(2, 0, 0, 0, 0))
	is.True(early.PlaceHouse(2, 0, 0, 0))

	late := testGame(t)
	is.True(late.PlaceTile(2, 0, 0, 0, 0))
	is.True(late.PlaceHouse(2, 0, 0, 0))
	// Burn more of both pools elsewhere without touching the lead.
	is.True(late.PlaceHouse(0, 0, 0, 1))
	is.True(late.PlaceHouse(0, 0, 1, 1))
	is.True(late.PlaceHouse(1, 0, 0, 1))

	// Same one-village lead, but the later position is worth more.
	is.True(se.Evaluate(late, 0) > se.Evaluate(early, 0))
}
