package game

import "fmt"

type playerState struct {
	color  string
	houses int
}

func newPlayerState(color string, houses int) *playerState {
	return &playerState{color: color, houses: houses}
}

func (p *playerState) copy() *playerState {
	c := *p
	return &c
}

func (p *playerState) stateString(myturn bool) string {
	onturn := "   "
	if myturn {
		onturn = "-> "
	}
	return fmt.Sprintf("%s%s: %d houses", onturn, p.color, p.houses)
}
