package game

import (
	"fmt"
	"sort"

	"github.com/dbltnk/uros-sub000/tiles"
)

// A VillageCell names one house by its tile and local cell.
type VillageCell struct {
	TileID int `json:"tile_id"`
	Row    int `json:"row"`
	Col    int `json:"col"`
}

// A Village is a maximal set of same-owner houses connected orthogonally
// through island cells. Houses on placed tiles connect across tile
// boundaries; a reedbed tile is an island unto itself.
type Village struct {
	Owner   int           `json:"owner"`
	OnBoard bool          `json:"on_board"`
	Cells   []VillageCell `json:"cells"`
	TileIDs []int         `json:"tile_ids"`
}

// Size is the village's house count, the primary scoring key.
func (v *Village) Size() int {
	return len(v.Cells)
}

// Islands is the number of distinct tiles spanned, the tie-break key.
func (v *Village) Islands() int {
	return len(v.TileIDs)
}

func (v *Village) String() string {
	return fmt.Sprintf("<village owner %d size %d islands %d board %v>",
		v.Owner, v.Size(), v.Islands(), v.OnBoard)
}

type visitKey struct {
	onBoard bool
	tileID  int
	row     int
	col     int
}

var orthogonal = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// CalculateVillages runs a breadth-first flood fill per player over placed
// tiles (cross-tile adjacency through board coordinates) and then reedbed
// tiles (local adjacency only). Each cell is visited at most once per
// player, keyed by placement context, tile id, and local cell. Traversal
// order is fixed, so identical states always yield identical partitions.
func (g *Game) CalculateVillages() [2][]*Village {
	var out [2][]*Village
	for player := 0; player < 2; player++ {
		owner := tiles.Owner(player)
		visited := make(map[visitKey]bool)
		for _, pt := range g.placed {
			for _, cell := range pt.tile.IslandCells() {
				if pt.tile.HouseAt(cell[0], cell[1]) != owner {
					continue
				}
				k := visitKey{onBoard: true, tileID: pt.tile.ID(), row: cell[0], col: cell[1]}
				if visited[k] {
					continue
				}
				out[player] = append(out[player], g.floodBoard(owner, pt, cell[0], cell[1], visited))
			}
		}
		for _, t := range g.reedbed {
			for _, cell := range t.IslandCells() {
				if t.HouseAt(cell[0], cell[1]) != owner {
					continue
				}
				k := visitKey{tileID: t.ID(), row: cell[0], col: cell[1]}
				if visited[k] {
					continue
				}
				out[player] = append(out[player], floodReedbed(owner, t, cell[0], cell[1], visited))
			}
		}
	}
	return out
}

type boardSearchNode struct {
	pt  *PlacedTile
	row int
	col int
}

// floodBoard walks same-owner houses over board coordinates. For a placed
// tile, local orthogonal adjacency and board orthogonal adjacency coincide,
// so one walk in board space covers both same-tile and cross-tile neighbors:
// a neighboring square's occupant maps the position back into its own local
// coordinates through its own anchor.
func (g *Game) floodBoard(owner tiles.Owner, start *PlacedTile, row, col int, visited map[visitKey]bool) *Village {
	v := &Village{Owner: int(owner), OnBoard: true}
	tileSet := make(map[int]bool)

	queue := []boardSearchNode{{pt: start, row: row, col: col}}
	visited[visitKey{onBoard: true, tileID: start.tile.ID(), row: row, col: col}] = true
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		v.Cells = append(v.Cells, VillageCell{TileID: n.pt.tile.ID(), Row: n.row, Col: n.col})
		tileSet[n.pt.tile.ID()] = true

		br, bc := n.pt.BoardPos(n.row, n.col)
		for _, d := range orthogonal {
			nbr, nbc := br+d[0], bc+d[1]
			if !g.board.Occupied(nbr, nbc) {
				continue
			}
			sq := g.board.SquareAt(nbr, nbc)
			npt := g.placed[sq.PlacedIndex()]
			lr, lc := sq.LocalRow(), sq.LocalCol()
			if npt.tile.HouseAt(lr, lc) != owner {
				continue
			}
			k := visitKey{onBoard: true, tileID: npt.tile.ID(), row: lr, col: lc}
			if visited[k] {
				continue
			}
			visited[k] = true
			queue = append(queue, boardSearchNode{pt: npt, row: lr, col: lc})
		}
	}

	v.TileIDs = sortedKeys(tileSet)
	return v
}

// floodReedbed walks same-owner houses within one unplaced tile's grid.
func floodReedbed(owner tiles.Owner, t *tiles.Tile, row, col int, visited map[visitKey]bool) *Village {
	v := &Village{Owner: int(owner), OnBoard: false, TileIDs: []int{t.ID()}}

	queue := [][2]int{{row, col}}
	visited[visitKey{tileID: t.ID(), row: row, col: col}] = true
	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		v.Cells = append(v.Cells, VillageCell{TileID: t.ID(), Row: cell[0], Col: cell[1]})

		for _, d := range orthogonal {
			nr, nc := cell[0]+d[0], cell[1]+d[1]
			if t.HouseAt(nr, nc) != owner {
				continue
			}
			k := visitKey{tileID: t.ID(), row: nr, col: nc}
			if visited[k] {
				continue
			}
			visited[k] = true
			queue = append(queue, [2]int{nr, nc})
		}
	}
	return v
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// LargestVillage returns the player's best placed-tile village keys: house
// count first, distinct islands as tie-break. Reedbed villages never count
// toward scoring. Zeroes if the player has no placed-tile village.
func (g *Game) LargestVillage(player int) (size, islands int) {
	for _, v := range g.CalculateVillages()[player] {
		if !v.OnBoard {
			continue
		}
		if v.Size() > size || (v.Size() == size && v.Islands() > islands) {
			size, islands = v.Size(), v.Islands()
		}
	}
	return size, islands
}
