package equity

import (
	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/tiles"
)

const (
	villageSizeWeight    = 100.0
	villageIslandWeight  = 10.0
	villageCountWeight   = 5.0
	houseReserveWeight   = 1.0
	islandsTouchedWeight = 3.0
	expansionWeight      = 2.0
	blockingWeight       = 2.0
)

// VillageLeadCalculator scores the largest-village race, the dominant term:
// own best village minus the opponent's, sizes worth an order of magnitude
// more than island spread.
type VillageLeadCalculator struct{}

func (vlc VillageLeadCalculator) Equity(g *game.Game, player int) float64 {
	ownSize, ownIslands := g.LargestVillage(player)
	oppSize, oppIslands := g.LargestVillage(opponent(player))
	return villageSizeWeight*float64(ownSize-oppSize) +
		villageIslandWeight*float64(ownIslands-oppIslands)
}

func (vlc VillageLeadCalculator) Type() string {
	return "VillageLeadCalculator"
}

// DiversityCalculator rewards spreading: number of own villages (reedbed
// ones included, pre-placed houses keep their value) and distinct placed
// islands touched, with the opponent's touched islands as a penalty.
type DiversityCalculator struct{}

func (dc DiversityCalculator) Equity(g *game.Game, player int) float64 {
	villages := g.CalculateVillages()
	return villageCountWeight*float64(len(villages[player])) +
		islandsTouchedWeight*float64(islandsTouched(g, player)-islandsTouched(g, opponent(player)))
}

func (dc DiversityCalculator) Type() string {
	return "DiversityCalculator"
}

// ReserveCalculator gives a minor bonus for houses still in hand.
type ReserveCalculator struct{}

func (rc ReserveCalculator) Equity(g *game.Game, player int) float64 {
	return houseReserveWeight * float64(g.HousesFor(player))
}

func (rc ReserveCalculator) Type() string {
	return "ReserveCalculator"
}

// ExpansionCalculator scores open-adjacency potential: unowned island cells
// next to own houses are room to grow, those next to opponent houses are
// blocking opportunities.
type ExpansionCalculator struct{}

func (ec ExpansionCalculator) Equity(g *game.Game, player int) float64 {
	grid := ownerGrid(g)
	return expansionWeight*float64(adjacentFreeCells(grid, tiles.Owner(player))) +
		blockingWeight*float64(adjacentFreeCells(grid, tiles.Owner(opponent(player))))
}

func (ec ExpansionCalculator) Type() string {
	return "ExpansionCalculator"
}

func opponent(player int) int {
	return (player + 1) % 2
}

// islandsTouched counts distinct placed tiles carrying at least one of the
// player's houses.
func islandsTouched(g *game.Game, player int) int {
	n := 0
	for _, pt := range g.PlacedTiles() {
		if pt.Tile().HouseCount(tiles.Owner(player)) > 0 {
			n++
		}
	}
	return n
}

// noSquare marks board squares with no island cell on them.
const noSquare = tiles.Owner(-2)

// ownerGrid projects placed-tile houses onto board coordinates. Water and
// unoccupied squares hold noSquare; occupied squares hold the cell's owner
// (NoOwner when the island cell is free).
func ownerGrid(g *game.Game) [][]tiles.Owner {
	dim := g.Board().Dim()
	grid := make([][]tiles.Owner, dim)
	for r := range grid {
		grid[r] = make([]tiles.Owner, dim)
		for c := range grid[r] {
			grid[r][c] = noSquare
		}
	}
	for _, pt := range g.PlacedTiles() {
		for _, cell := range pt.Tile().IslandCells() {
			br, bc := pt.BoardPos(cell[0], cell[1])
			grid[br][bc] = pt.Tile().HouseAt(cell[0], cell[1])
		}
	}
	return grid
}

// adjacentFreeCells counts distinct free island cells orthogonally adjacent
// to at least one house of the given owner.
func adjacentFreeCells(grid [][]tiles.Owner, owner tiles.Owner) int {
	dim := len(grid)
	n := 0
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			if grid[r][c] != tiles.NoOwner {
				continue
			}
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nr, nc := r+d[0], c+d[1]
				if nr < 0 || nr >= dim || nc < 0 || nc >= dim {
					continue
				}
				if grid[nr][nc] == owner {
					n++
					break
				}
			}
		}
	}
	return n
}
