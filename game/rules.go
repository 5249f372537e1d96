package game

import (
	"fmt"

	"github.com/dbltnk/uros-sub000/tiles"
)

const (
	// DefaultBoardDim is the side length of the standard board.
	DefaultBoardDim = 6
	// DefaultHousePool is the number of houses each player starts with.
	DefaultHousePool = 10
)

// GameRules encapsulates everything needed to start a game: the tile
// catalog, the board dimension, and the per-player house pool.
type GameRules struct {
	catalog   []*tiles.Tile
	boardDim  int
	housePool int
	colors    [2]string
}

// NewGameRules validates and bundles game parameters. The catalog tiles are
// not copied here; NewGame copies them into the reedbed.
func NewGameRules(catalog []*tiles.Tile, boardDim, housePool int, colors [2]string) (*GameRules, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("rules need a non-empty tile catalog")
	}
	if boardDim <= 0 {
		return nil, fmt.Errorf("bad board dimension %d", boardDim)
	}
	if housePool < 0 {
		return nil, fmt.Errorf("bad house pool %d", housePool)
	}
	for i, t := range catalog {
		if t.ID() != i {
			return nil, fmt.Errorf("catalog ids must follow catalog order; tile %d has id %d", i, t.ID())
		}
	}
	return &GameRules{catalog: catalog, boardDim: boardDim, housePool: housePool, colors: colors}, nil
}

// NewBasicGameRules uses the standard board, pool, and colors.
func NewBasicGameRules(catalog []*tiles.Tile) (*GameRules, error) {
	return NewGameRules(catalog, DefaultBoardDim, DefaultHousePool, [2]string{"red", "blue"})
}

func (r *GameRules) Catalog() []*tiles.Tile {
	return r.catalog
}

func (r *GameRules) BoardDim() int {
	return r.boardDim
}

func (r *GameRules) HousePool() int {
	return r.housePool
}

func (r *GameRules) Colors() [2]string {
	return r.colors
}
