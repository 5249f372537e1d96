package tiles

import (
	"fmt"
	"strings"
)

// Owner identifies which player, if any, holds a house on a tile cell.
type Owner int8

// NoOwner marks an island cell without a house.
const NoOwner Owner = -1

// A Tile is a square grid of island and water cells, plus a parallel grid
// recording which player owns a house on each island cell. The two grids
// always have identical dimensions and rotate in lock-step; divergence is a
// programming error and panics.
type Tile struct {
	id       int
	name     string
	shape    [][]bool
	houses   [][]Owner
	rotation int
}

// NewTile builds an unrotated tile with no houses. The shape grid must be
// square and contain at least one island cell.
func NewTile(id int, name string, shape [][]bool) *Tile {
	n := len(shape)
	if n == 0 {
		panic("tiles: empty shape grid for " + name)
	}
	islands := 0
	sh := make([][]bool, n)
	hs := make([][]Owner, n)
	for r := range shape {
		if len(shape[r]) != n {
			panic(fmt.Sprintf("tiles: shape grid for %v is not square (row %d has %d cells, want %d)",
				name, r, len(shape[r]), n))
		}
		sh[r] = make([]bool, n)
		copy(sh[r], shape[r])
		hs[r] = make([]Owner, n)
		for c := range hs[r] {
			hs[r][c] = NoOwner
			if sh[r][c] {
				islands++
			}
		}
	}
	if islands == 0 {
		panic("tiles: tile " + name + " has no island cells")
	}
	return &Tile{id: id, name: name, shape: sh, houses: hs}
}

// Restore rebuilds a tile from externally stored grids, e.g. a state
// snapshot. The grids are validated the same way NewTile validates a shape,
// and must already reflect the given rotation.
func Restore(id int, name string, shape [][]bool, houses [][]Owner, rotation int) (*Tile, error) {
	if rotation < 0 || rotation > 3 {
		return nil, fmt.Errorf("tiles: bad rotation %d for tile %d", rotation, id)
	}
	n := len(shape)
	if n == 0 || len(houses) != n {
		return nil, fmt.Errorf("tiles: grids for tile %d have mismatched dimensions", id)
	}
	t := &Tile{
		id:       id,
		name:     name,
		rotation: rotation,
		shape:    make([][]bool, n),
		houses:   make([][]Owner, n),
	}
	for r := 0; r < n; r++ {
		if len(shape[r]) != n || len(houses[r]) != n {
			return nil, fmt.Errorf("tiles: grids for tile %d are not square at row %d", id, r)
		}
		t.shape[r] = append([]bool(nil), shape[r]...)
		t.houses[r] = append([]Owner(nil), houses[r]...)
		for c := 0; c < n; c++ {
			if t.houses[r][c] != NoOwner && !t.shape[r][c] {
				return nil, fmt.Errorf("tiles: tile %d has a house on water cell (%d,%d)", id, r, c)
			}
		}
	}
	if t.NumIslands() == 0 {
		return nil, fmt.Errorf("tiles: tile %d has no island cells", id)
	}
	return t, nil
}

func (t *Tile) ID() int {
	return t.id
}

func (t *Tile) Name() string {
	return t.name
}

// Rotation returns the rotation counter, always in {0, 1, 2, 3}.
func (t *Tile) Rotation() int {
	return t.rotation
}

// Dim returns the side length of the tile's grids.
func (t *Tile) Dim() int {
	return len(t.shape)
}

// IsIsland reports whether (row, col) is an island cell. Out-of-range
// coordinates count as water.
func (t *Tile) IsIsland(row, col int) bool {
	if row < 0 || row >= len(t.shape) || col < 0 || col >= len(t.shape) {
		return false
	}
	return t.shape[row][col]
}

// HouseAt returns the owner of the house at (row, col), or NoOwner if the
// cell is water or unowned.
func (t *Tile) HouseAt(row, col int) Owner {
	if !t.IsIsland(row, col) {
		return NoOwner
	}
	return t.houses[row][col]
}

// SetHouse assigns ownership of an island cell. Move legality is the
// caller's concern; writing to a water cell is a programming error.
func (t *Tile) SetHouse(row, col int, owner Owner) {
	t.checkIntegrity()
	if !t.IsIsland(row, col) {
		panic(fmt.Sprintf("tiles: house on water cell (%d,%d) of tile %d (%v)",
			row, col, t.id, t.name))
	}
	t.houses[row][col] = owner
}

// IslandCells lists the island cells in row-major order.
func (t *Tile) IslandCells() [][2]int {
	cells := make([][2]int, 0, len(t.shape)*len(t.shape))
	for r := range t.shape {
		for c := range t.shape[r] {
			if t.shape[r][c] {
				cells = append(cells, [2]int{r, c})
			}
		}
	}
	return cells
}

// NumIslands returns the number of island cells.
func (t *Tile) NumIslands() int {
	n := 0
	for r := range t.shape {
		for c := range t.shape[r] {
			if t.shape[r][c] {
				n++
			}
		}
	}
	return n
}

// HouseCount returns how many houses the given owner has on this tile.
func (t *Tile) HouseCount(owner Owner) int {
	n := 0
	for r := range t.houses {
		for c := range t.houses[r] {
			if t.houses[r][c] == owner {
				n++
			}
		}
	}
	return n
}

// Rotate turns the tile in 90° steps, positive counter-clockwise and
// negative clockwise. Shape and house grids rotate together so every house
// keeps its island cell.
func (t *Tile) Rotate(direction int) {
	if direction == 0 {
		return
	}
	steps := direction
	if steps < 0 {
		steps = -steps
	}
	for i := 0; i < steps; i++ {
		t.rotateOnce(direction > 0)
	}
	t.rotation = ((t.rotation+direction)%4 + 4) % 4
	t.checkIntegrity()
}

// rotateOnce transposes both grids in place, then reverses the row order
// for a counter-clockwise step, or each row for a clockwise one.
func (t *Tile) rotateOnce(ccw bool) {
	n := len(t.shape)
	for r := 0; r < n; r++ {
		for c := r + 1; c < n; c++ {
			t.shape[r][c], t.shape[c][r] = t.shape[c][r], t.shape[r][c]
			t.houses[r][c], t.houses[c][r] = t.houses[c][r], t.houses[r][c]
		}
	}
	if ccw {
		for r := 0; r < n/2; r++ {
			t.shape[r], t.shape[n-1-r] = t.shape[n-1-r], t.shape[r]
			t.houses[r], t.houses[n-1-r] = t.houses[n-1-r], t.houses[r]
		}
	} else {
		for r := 0; r < n; r++ {
			row, hrow := t.shape[r], t.houses[r]
			for c := 0; c < n/2; c++ {
				row[c], row[n-1-c] = row[n-1-c], row[c]
				hrow[c], hrow[n-1-c] = hrow[n-1-c], hrow[c]
			}
		}
	}
}

// Copy returns a deep copy sharing no grid storage with the original.
func (t *Tile) Copy() *Tile {
	n := len(t.shape)
	c := &Tile{
		id:       t.id,
		name:     t.name,
		rotation: t.rotation,
		shape:    make([][]bool, n),
		houses:   make([][]Owner, n),
	}
	for r := 0; r < n; r++ {
		c.shape[r] = append([]bool(nil), t.shape[r]...)
		c.houses[r] = append([]Owner(nil), t.houses[r]...)
	}
	return c
}

func (t *Tile) checkIntegrity() {
	n := len(t.shape)
	if len(t.houses) != n {
		panic(fmt.Sprintf("tiles: tile %d (%v) house grid has %d rows, shape has %d",
			t.id, t.name, len(t.houses), n))
	}
	for r := 0; r < n; r++ {
		if len(t.shape[r]) != n || len(t.houses[r]) != n {
			panic(fmt.Sprintf("tiles: tile %d (%v) grids diverged at row %d", t.id, t.name, r))
		}
	}
}

func (t *Tile) String() string {
	return fmt.Sprintf("<tile %d %v rot %d>", t.id, t.name, t.rotation)
}

// ToDisplayText renders the grids for the shell: water is blank, bare
// islands are #, and houses show their owner's digit.
func (t *Tile) ToDisplayText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d: %v (rot %d)\n", t.id, t.name, t.rotation)
	for r := range t.shape {
		for c := range t.shape[r] {
			switch {
			case !t.shape[r][c]:
				sb.WriteString(" .")
			case t.houses[r][c] == NoOwner:
				sb.WriteString(" #")
			default:
				fmt.Fprintf(&sb, " %d", t.houses[r][c])
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
