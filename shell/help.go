package shell

import "strings"

func usage() (*Response, error) {
	var sb strings.Builder
	sb.WriteString("commands:\n")
	for _, line := range []string{
		"new [catalog] - start a new game, optionally from a YAML tile catalog",
		"show - show the board, players, and reedbed",
		"tiles - show every reedbed tile's grids",
		"rotate <tile> [cw] - rotate a reedbed tile counter-clockwise (or clockwise)",
		"place <tile> <tilerow> <tilecol> <boardrow> <boardcol> - place a tile",
		"house <tile> <row> <col> - place a house on an island cell",
		"villages - list both players' villages",
		"gen [n] - enumerate legal plays, scored by static equity; n defaults to 15",
		"autoplace - commit the best play by static equity",
		"bot [code] [-budget ms] [-randomize] [-threshold t] [-seed s] [-remote] - make the bot's move",
		"minimax [ms] [-plies n] - run the alpha-beta solver (does not commit)",
		"sim [-budget ms] [-seed s] - start a monte-carlo sim of the generated plays",
		"sim show|details [n]|stop|log - inspect or stop the running sim",
		"vs <code1> <code2> [-games n] [-threads n] [-out file] - play a bot series",
		"explain - have the LLM explainer comment on the sim results",
		"script <file.lua> - run a lua script (uros_* globals)",
		"set [<option> <value>] - show or change a setting",
		"bye - leave",
	} {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return msg(sb.String()), nil
}
