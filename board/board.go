package board

import (
	"fmt"
	"strings"
)

// NoTile marks an unoccupied square.
const NoTile = -1

// A Square is a single cell of the game board. An occupied square points at
// the placed tile covering it (by placement index) and at that tile's local
// island cell, so village walks can hop between local coordinate systems.
type Square struct {
	placed   int
	localRow int
	localCol int
}

// PlacedIndex returns the placement index occupying this square, or NoTile.
func (s Square) PlacedIndex() int {
	return s.placed
}

func (s Square) LocalRow() int {
	return s.localRow
}

func (s Square) LocalCol() int {
	return s.localCol
}

// Occupied reports whether a placed tile's island cell covers this square.
func (s Square) Occupied() bool {
	return s.placed != NoTile
}

func (s Square) String() string {
	if !s.Occupied() {
		return "<empty>"
	}
	return fmt.Sprintf("<placed %d cell (%d,%d)>", s.placed, s.localRow, s.localCol)
}

// A Board is the MxM grid tiles are placed onto. Only island cells of a
// placed tile occupy squares; water cells occupy nothing and may overhang
// the edge.
type Board struct {
	squares [][]Square
	dim     int
}

// New creates an empty board of the given dimension.
func New(dim int) *Board {
	if dim <= 0 {
		panic(fmt.Sprintf("board: bad dimension %d", dim))
	}
	b := &Board{dim: dim, squares: make([][]Square, dim)}
	for r := 0; r < dim; r++ {
		b.squares[r] = make([]Square, dim)
		for c := 0; c < dim; c++ {
			b.squares[r][c] = Square{placed: NoTile}
		}
	}
	return b
}

func (b *Board) Dim() int {
	return b.dim
}

// PosExists reports whether (row, col) is on the board.
func (b *Board) PosExists(row, col int) bool {
	return row >= 0 && row < b.dim && col >= 0 && col < b.dim
}

// SquareAt returns the square at (row, col); the position must exist.
func (b *Board) SquareAt(row, col int) Square {
	return b.squares[row][col]
}

// Occupied reports whether (row, col) exists and is covered by a placed
// tile's island cell.
func (b *Board) Occupied(row, col int) bool {
	return b.PosExists(row, col) && b.squares[row][col].Occupied()
}

// MarkOccupied records that a placed tile's island cell covers (row, col).
// Double occupancy means placement validation was skipped, which is a
// programming error.
func (b *Board) MarkOccupied(row, col, placedIdx, localRow, localCol int) {
	if !b.PosExists(row, col) {
		panic(fmt.Sprintf("board: occupying nonexistent square (%d,%d)", row, col))
	}
	if b.squares[row][col].Occupied() {
		panic(fmt.Sprintf("board: square (%d,%d) already occupied by placement %d",
			row, col, b.squares[row][col].placed))
	}
	b.squares[row][col] = Square{placed: placedIdx, localRow: localRow, localCol: localCol}
}

// IsEmpty reports whether no square is occupied.
func (b *Board) IsEmpty() bool {
	return b.OccupiedCount() == 0
}

// OccupiedCount returns the number of occupied squares.
func (b *Board) OccupiedCount() int {
	n := 0
	for r := 0; r < b.dim; r++ {
		for c := 0; c < b.dim; c++ {
			if b.squares[r][c].Occupied() {
				n++
			}
		}
	}
	return n
}

// Copy returns a deep copy of the board.
func (b *Board) Copy() *Board {
	c := &Board{dim: b.dim, squares: make([][]Square, b.dim)}
	for r := 0; r < b.dim; r++ {
		c.squares[r] = append([]Square(nil), b.squares[r]...)
	}
	return c
}

// ToDisplayText renders occupancy as a letter grid, placements labeled
// A, B, C... in placement order. House rendering lives with the game, which
// knows the tiles.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < b.dim; c++ {
		fmt.Fprintf(&sb, "%2d", c)
	}
	sb.WriteString("\n")
	for r := 0; r < b.dim; r++ {
		fmt.Fprintf(&sb, "%2d ", r)
		for c := 0; c < b.dim; c++ {
			sq := b.squares[r][c]
			if !sq.Occupied() {
				sb.WriteString(" .")
			} else {
				fmt.Fprintf(&sb, " %c", 'A'+rune(sq.placed%26))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
