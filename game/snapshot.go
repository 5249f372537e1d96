package game

import (
	"fmt"
	"sort"
	"strings"

	"lukechampine.com/frand"

	"github.com/dbltnk/uros-sub000/board"
	"github.com/dbltnk/uros-sub000/tiles"
)

// A Snapshot is the wire form of a game: enough to rebuild the state
// elsewhere (the diagnostics collector, the move service). Shape rows use
// '0'/'1'; house rows use '.' for unowned and the owner's digit otherwise.
type Snapshot struct {
	BoardDim           int                  `json:"board_dim"`
	HousePool          int                  `json:"house_pool"`
	Players            [2]PlayerSnapshot    `json:"players"`
	Placed             []PlacedTileSnapshot `json:"placed"`
	Reedbed            []TileSnapshot       `json:"reedbed"`
	OnTurn             int                  `json:"on_turn"`
	Turn               int                  `json:"turn"`
	FirstTurn          bool                 `json:"first_turn"`
	PlacementsMade     int                  `json:"placements_made"`
	PlacementsRequired int                  `json:"placements_required"`
	GameOver           bool                 `json:"game_over"`
	Result             *Result              `json:"result,omitempty"`
}

type PlayerSnapshot struct {
	Color  string `json:"color"`
	Houses int    `json:"houses"`
}

type TileSnapshot struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Rotation int      `json:"rotation"`
	Shape    []string `json:"shape"`
	Houses   []string `json:"houses"`
}

type PlacedTileSnapshot struct {
	Tile     TileSnapshot `json:"tile"`
	TileRow  int          `json:"tile_row"`
	TileCol  int          `json:"tile_col"`
	BoardRow int          `json:"board_row"`
	BoardCol int          `json:"board_col"`
}

// ToSnapshot captures the full game state by value.
func (g *Game) ToSnapshot() *Snapshot {
	s := &Snapshot{
		BoardDim:           g.board.Dim(),
		HousePool:          g.rules.housePool,
		OnTurn:             g.onturn,
		Turn:               g.turnnum,
		FirstTurn:          g.firstTurn,
		PlacementsMade:     g.placementsMade,
		PlacementsRequired: g.placementsRequired,
		GameOver:           g.gameOver,
	}
	for i := 0; i < 2; i++ {
		s.Players[i] = PlayerSnapshot{Color: g.players[i].color, Houses: g.players[i].houses}
	}
	for _, pt := range g.placed {
		s.Placed = append(s.Placed, PlacedTileSnapshot{
			Tile:     snapshotTile(pt.tile),
			TileRow:  pt.tileRow,
			TileCol:  pt.tileCol,
			BoardRow: pt.boardRow,
			BoardCol: pt.boardCol,
		})
	}
	for _, t := range g.reedbed {
		s.Reedbed = append(s.Reedbed, snapshotTile(t))
	}
	if g.result != nil {
		res := *g.result
		s.Result = &res
	}
	return s
}

func snapshotTile(t *tiles.Tile) TileSnapshot {
	n := t.Dim()
	ts := TileSnapshot{ID: t.ID(), Name: t.Name(), Rotation: t.Rotation()}
	for r := 0; r < n; r++ {
		var shape, houses strings.Builder
		for c := 0; c < n; c++ {
			if t.IsIsland(r, c) {
				shape.WriteByte('1')
			} else {
				shape.WriteByte('0')
			}
			if owner := t.HouseAt(r, c); owner == tiles.NoOwner {
				houses.WriteByte('.')
			} else {
				houses.WriteByte(byte('0') + byte(owner))
			}
		}
		ts.Shape = append(ts.Shape, shape.String())
		ts.Houses = append(ts.Houses, houses.String())
	}
	return ts
}

// FromSnapshot rebuilds a playable game. Malformed snapshots (grid
// mismatches, double occupancy, impossible counters) are rejected with an
// error rather than producing a corrupt game.
func FromSnapshot(s *Snapshot) (*Game, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	if s.BoardDim <= 0 || s.HousePool < 0 {
		return nil, fmt.Errorf("bad snapshot dimensions: board %d pool %d", s.BoardDim, s.HousePool)
	}
	if s.OnTurn < 0 || s.OnTurn > 1 {
		return nil, fmt.Errorf("bad snapshot player on turn %d", s.OnTurn)
	}
	if s.PlacementsRequired < 1 || s.PlacementsRequired > 2 {
		return nil, fmt.Errorf("bad snapshot placements required %d", s.PlacementsRequired)
	}
	// placementsMade resets to 0 when a turn completes, so a live game never
	// carries placementsMade == placementsRequired.
	if s.PlacementsMade < 0 || s.PlacementsMade >= s.PlacementsRequired {
		return nil, fmt.Errorf("bad snapshot placement counter %d of %d",
			s.PlacementsMade, s.PlacementsRequired)
	}
	for i := 0; i < 2; i++ {
		if h := s.Players[i].Houses; h < 0 || h > s.HousePool {
			return nil, fmt.Errorf("player %d has %d houses with a pool of %d",
				i, h, s.HousePool)
		}
	}

	catalog := make([]*tiles.Tile, 0, len(s.Placed)+len(s.Reedbed))
	rebuilt := make(map[int]*tiles.Tile)

	restore := func(ts TileSnapshot) (*tiles.Tile, error) {
		if rebuilt[ts.ID] != nil {
			return nil, fmt.Errorf("tile %d appears twice in snapshot", ts.ID)
		}
		shape, houses, err := parseSnapshotGrids(ts)
		if err != nil {
			return nil, err
		}
		t, err := tiles.Restore(ts.ID, ts.Name, shape, houses, ts.Rotation)
		if err != nil {
			return nil, err
		}
		rebuilt[ts.ID] = t
		catalog = append(catalog, t.Copy())
		return t, nil
	}

	g := &Game{
		onturn:             s.OnTurn,
		turnnum:            s.Turn,
		firstTurn:          s.FirstTurn,
		placementsMade:     s.PlacementsMade,
		placementsRequired: s.PlacementsRequired,
		gameOver:           s.GameOver,
	}
	g.players[0] = newPlayerState(s.Players[0].Color, s.Players[0].Houses)
	g.players[1] = newPlayerState(s.Players[1].Color, s.Players[1].Houses)
	if s.Result != nil {
		res := *s.Result
		g.result = &res
	}
	if g.gameOver && g.result == nil {
		return nil, fmt.Errorf("snapshot is game over but has no result")
	}

	gb, err := rebuildBoard(s, restore, g)
	if err != nil {
		return nil, err
	}
	g.board = gb

	for _, ts := range s.Reedbed {
		t, err := restore(ts)
		if err != nil {
			return nil, err
		}
		g.reedbed = append(g.reedbed, t)
	}
	sort.Slice(g.reedbed, func(i, j int) bool { return g.reedbed[i].ID() < g.reedbed[j].ID() })

	// The rebuilt catalog stands in for the original; order it by id so the
	// rules pass their own validation.
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].ID() < catalog[j].ID() })
	for i, t := range catalog {
		if t.ID() != i {
			return nil, fmt.Errorf("snapshot tile ids are not contiguous: position %d has id %d", i, t.ID())
		}
	}
	rules, err := NewGameRules(catalog, s.BoardDim, s.HousePool,
		[2]string{s.Players[0].Color, s.Players[1].Color})
	if err != nil {
		return nil, err
	}
	g.rules = rules
	g.rng = frand.New()
	return g, nil
}

func rebuildBoard(s *Snapshot, restore func(TileSnapshot) (*tiles.Tile, error), g *Game) (*board.Board, error) {
	gb := board.New(s.BoardDim)
	for _, ps := range s.Placed {
		t, err := restore(ps.Tile)
		if err != nil {
			return nil, err
		}
		pt := &PlacedTile{
			tile:     t,
			tileRow:  ps.TileRow,
			tileCol:  ps.TileCol,
			boardRow: ps.BoardRow,
			boardCol: ps.BoardCol,
		}
		idx := len(g.placed)
		g.placed = append(g.placed, pt)
		for _, cell := range t.IslandCells() {
			br, bc := pt.BoardPos(cell[0], cell[1])
			if !gb.PosExists(br, bc) {
				return nil, fmt.Errorf("placed tile %d overhangs the board at (%d,%d)", t.ID(), br, bc)
			}
			if gb.Occupied(br, bc) {
				return nil, fmt.Errorf("placed tiles overlap at (%d,%d)", br, bc)
			}
			gb.MarkOccupied(br, bc, idx, cell[0], cell[1])
		}
	}
	return gb, nil
}

func parseSnapshotGrids(ts TileSnapshot) ([][]bool, [][]tiles.Owner, error) {
	n := len(ts.Shape)
	if n == 0 || len(ts.Houses) != n {
		return nil, nil, fmt.Errorf("tile %d snapshot grids have mismatched row counts", ts.ID)
	}
	shape := make([][]bool, n)
	houses := make([][]tiles.Owner, n)
	for r := 0; r < n; r++ {
		if len(ts.Shape[r]) != n || len(ts.Houses[r]) != n {
			return nil, nil, fmt.Errorf("tile %d snapshot grids are not square at row %d", ts.ID, r)
		}
		shape[r] = make([]bool, n)
		houses[r] = make([]tiles.Owner, n)
		for c := 0; c < n; c++ {
			switch ts.Shape[r][c] {
			case '1':
				shape[r][c] = true
			case '0':
			default:
				return nil, nil, fmt.Errorf("tile %d has bad shape character %q", ts.ID, ts.Shape[r][c])
			}
			switch ts.Houses[r][c] {
			case '.':
				houses[r][c] = tiles.NoOwner
			case '0':
				houses[r][c] = 0
			case '1':
				houses[r][c] = 1
			default:
				return nil, nil, fmt.Errorf("tile %d has bad house character %q", ts.ID, ts.Houses[r][c])
			}
		}
	}
	return shape, houses, nil
}
