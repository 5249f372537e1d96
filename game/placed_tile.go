package game

import (
	"fmt"

	"github.com/dbltnk/uros-sub000/tiles"
)

// A PlacedTile is a tile pinned to the board: its anchor cell
// (tileRow, tileCol) sits at board position (boardRow, boardCol), and every
// other cell follows by the same offset.
type PlacedTile struct {
	tile     *tiles.Tile
	tileRow  int
	tileCol  int
	boardRow int
	boardCol int
}

func (pt *PlacedTile) Tile() *tiles.Tile {
	return pt.tile
}

func (pt *PlacedTile) AnchorTileRow() int {
	return pt.tileRow
}

func (pt *PlacedTile) AnchorTileCol() int {
	return pt.tileCol
}

func (pt *PlacedTile) AnchorBoardRow() int {
	return pt.boardRow
}

func (pt *PlacedTile) AnchorBoardCol() int {
	return pt.boardCol
}

// BoardPos maps a local tile cell to its absolute board position.
func (pt *PlacedTile) BoardPos(localRow, localCol int) (int, int) {
	return pt.boardRow + localRow - pt.tileRow, pt.boardCol + localCol - pt.tileCol
}

// LocalPos maps an absolute board position back into this tile's local
// coordinate system.
func (pt *PlacedTile) LocalPos(boardRow, boardCol int) (int, int) {
	return boardRow - pt.boardRow + pt.tileRow, boardCol - pt.boardCol + pt.tileCol
}

func (pt *PlacedTile) copy() *PlacedTile {
	return &PlacedTile{
		tile:     pt.tile.Copy(),
		tileRow:  pt.tileRow,
		tileCol:  pt.tileCol,
		boardRow: pt.boardRow,
		boardCol: pt.boardCol,
	}
}

func (pt *PlacedTile) String() string {
	return fmt.Sprintf("<%v anchor (%d,%d) at board (%d,%d)>",
		pt.tile, pt.tileRow, pt.tileCol, pt.boardRow, pt.boardCol)
}
