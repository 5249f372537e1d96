package game

import (
	"fmt"
	"strings"

	"github.com/dbltnk/uros-sub000/tiles"
)

// ToDisplayText renders the whole game for the shell: the board with
// placement letters and house owners, the player panel, and the reedbed.
func (g *Game) ToDisplayText() string {
	var sb strings.Builder
	dim := g.board.Dim()

	sb.WriteString("    ")
	for c := 0; c < dim; c++ {
		fmt.Fprintf(&sb, "%2d ", c)
	}
	sb.WriteString("\n")
	for r := 0; r < dim; r++ {
		fmt.Fprintf(&sb, " %2d ", r)
		for c := 0; c < dim; c++ {
			sb.WriteString(g.squareText(r, c))
		}
		switch r {
		case 0:
			fmt.Fprintf(&sb, "   %s", g.players[0].stateString(g.onturn == 0))
		case 1:
			fmt.Fprintf(&sb, "   %s", g.players[1].stateString(g.onturn == 1))
		case 2:
			fmt.Fprintf(&sb, "   turn %d, placement %d of %d",
				g.turnnum, g.placementsMade+1, g.placementsRequired)
		case 3:
			if g.gameOver {
				fmt.Fprintf(&sb, "   %v", g.result)
			}
		}
		sb.WriteString("\n")
	}

	if len(g.reedbed) > 0 {
		ids := make([]string, 0, len(g.reedbed))
		for _, t := range g.reedbed {
			ids = append(ids, fmt.Sprintf("%d:%v", t.ID(), t.Name()))
		}
		fmt.Fprintf(&sb, "reedbed: %v\n", strings.Join(ids, " "))
	}
	return sb.String()
}

func (g *Game) squareText(r, c int) string {
	sq := g.board.SquareAt(r, c)
	if !sq.Occupied() {
		return " . "
	}
	pt := g.placed[sq.PlacedIndex()]
	letter := 'A' + rune(sq.PlacedIndex()%26)
	owner := pt.tile.HouseAt(sq.LocalRow(), sq.LocalCol())
	if owner == tiles.NoOwner {
		return fmt.Sprintf(" %c ", letter)
	}
	return fmt.Sprintf("%c%d ", letter, owner)
}

// ReedbedDisplayText renders every reedbed tile's grids, for the shell's
// tiles command.
func (g *Game) ReedbedDisplayText() string {
	var sb strings.Builder
	for _, t := range g.reedbed {
		sb.WriteString(t.ToDisplayText())
	}
	return sb.String()
}
