// Package move defines the two move kinds of the game: placing a tile from
// the reedbed onto the board, and placing a house on an island cell.
package move

import (
	"fmt"
)

type MoveType uint8

const (
	MoveTypePlaceTile MoveType = iota
	MoveTypePlaceHouse
)

// A Move is a single placement by one player. For a tile placement, TileRow
// and TileCol name the tile's anchor cell and BoardRow/BoardCol the board
// position it is pinned to. For a house placement, TileRow and TileCol name
// the island cell receiving the house; the board fields are unused (houses
// are anchor-independent).
type Move struct {
	action   MoveType
	tileID   int
	tileRow  int
	tileCol  int
	boardRow int
	boardCol int
	player   int
	equity   float64
}

// NewPlaceTileMove creates a tile-placement move pinning the tile's anchor
// cell (tileRow, tileCol) to board position (boardRow, boardCol).
func NewPlaceTileMove(tileID, tileRow, tileCol, boardRow, boardCol, player int) *Move {
	return &Move{
		action:   MoveTypePlaceTile,
		tileID:   tileID,
		tileRow:  tileRow,
		tileCol:  tileCol,
		boardRow: boardRow,
		boardCol: boardCol,
		player:   player,
	}
}

// NewPlaceHouseMove creates a house-placement move on the island cell
// (tileRow, tileCol) of the given tile, wherever that tile currently lives.
func NewPlaceHouseMove(tileID, tileRow, tileCol, player int) *Move {
	return &Move{
		action:  MoveTypePlaceHouse,
		tileID:  tileID,
		tileRow: tileRow,
		tileCol: tileCol,
		player:  player,
	}
}

func (m *Move) Action() MoveType {
	return m.action
}

func (m *Move) TileID() int {
	return m.tileID
}

func (m *Move) TileRow() int {
	return m.tileRow
}

func (m *Move) TileCol() int {
	return m.tileCol
}

func (m *Move) BoardRow() int {
	return m.boardRow
}

func (m *Move) BoardCol() int {
	return m.boardCol
}

func (m *Move) Player() int {
	return m.player
}

func (m *Move) Equity() float64 {
	return m.equity
}

func (m *Move) SetEquity(e float64) {
	m.equity = e
}

// Equals compares every field except equity.
func (m *Move) Equals(o *Move) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.action == o.action &&
		m.tileID == o.tileID &&
		m.tileRow == o.tileRow &&
		m.tileCol == o.tileCol &&
		m.boardRow == o.boardRow &&
		m.boardCol == o.boardCol &&
		m.player == o.player
}

func (m *Move) String() string {
	switch m.action {
	case MoveTypePlaceTile:
		return fmt.Sprintf("<placetile tile %d anchor (%d,%d) at board (%d,%d) player %d eq %.3f>",
			m.tileID, m.tileRow, m.tileCol, m.boardRow, m.boardCol, m.player, m.equity)
	case MoveTypePlaceHouse:
		return fmt.Sprintf("<placehouse tile %d cell (%d,%d) player %d eq %.3f>",
			m.tileID, m.tileRow, m.tileCol, m.player, m.equity)
	}
	return fmt.Sprint("<unhandled move>")
}

// ShortDescription is the compact form used by shell listings and logs.
func (m *Move) ShortDescription() string {
	switch m.action {
	case MoveTypePlaceHouse:
		return fmt.Sprintf("house t%d(%d,%d)", m.tileID, m.tileRow, m.tileCol)
	case MoveTypePlaceTile:
		return fmt.Sprintf("tile t%d(%d,%d)@%d,%d", m.tileID, m.tileRow, m.tileCol, m.boardRow, m.boardCol)
	}
	return fmt.Sprint("(unhandled move)")
}
