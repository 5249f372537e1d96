// Package automatic contains the logic for bot-vs-bot games: the shell's
// `vs` command plays one visible game through it, and the series runner
// tallies win rates over many games.
package automatic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dbltnk/uros-sub000/bot"
	"github.com/dbltnk/uros-sub000/game"
)

// GameRunner is the master struct here for the automatic game logic.
type GameRunner struct {
	rules    *game.GameRules
	game     *game.Game
	players  [2]bot.Strategy
	codes    [2]bot.Code
	logchan  chan string
	gamechan chan string
}

// NewGameRunner instantiates and initializes a game runner for the two bot
// codes. logchan may be nil.
func NewGameRunner(rules *game.GameRules, code1, code2 bot.Code, opts [2]bot.Options,
	logchan chan string) (*GameRunner, error) {

	p1, err := bot.NewStrategy(code1, opts[0])
	if err != nil {
		return nil, err
	}
	p2, err := bot.NewStrategy(code2, opts[1])
	if err != nil {
		return nil, err
	}
	r := &GameRunner{
		rules:   rules,
		players: [2]bot.Strategy{p1, p2},
		codes:   [2]bot.Code{code1, code2},
		logchan: logchan,
	}
	r.StartGame()
	return r, nil
}

// StartGame resets the runner to a fresh game.
func (r *GameRunner) StartGame() {
	r.game = game.NewGame(r.rules)
}

// Game exposes the current game, e.g. for display after PlayGame.
func (r *GameRunner) Game() *game.Game {
	return r.game
}

// PlayGame plays one full game between the two strategies, starting fresh.
// The gameID only tags log lines.
func (r *GameRunner) PlayGame(ctx context.Context, gameID int) error {
	r.StartGame()
	for !r.game.IsGameOver() {
		onturn := r.game.PlayerOnTurn()
		m, err := r.players[onturn].ChooseMove(ctx, r.game)
		if err != nil {
			return fmt.Errorf("game %d, player %d (%s): %w", gameID, onturn, r.codes[onturn], err)
		}
		if m == nil {
			// Both players can stall alive: houses in hand but nowhere
			// to put anything. Score the board as it stands.
			log.Debug().Int("gameID", gameID).Int("onturn", onturn).
				Msg("no legal moves; ending game early")
			break
		}
		if !r.game.MakeMove(m) {
			log.Panic().Str("move", m.ShortDescription()).
				Msg("strategy returned an illegal move")
		}
		if r.logchan != nil {
			size, _ := r.game.LargestVillage(onturn)
			r.logchan <- fmt.Sprintf("%d,%d,%d,%s,%s,%d,%d\n",
				gameID,
				r.game.Turn(),
				onturn,
				r.codes[onturn],
				m.ShortDescription(),
				size,
				r.game.HousesFor(onturn))
		}
	}
	if r.gamechan != nil {
		r.gamechan <- r.game.ToDisplayText()
	}
	return nil
}

// Outcome reports the result of a finished or stalled game: the frozen
// result when the game latched, otherwise largest village then island count
// over the board as it stands.
func Outcome(g *game.Game) (winner int, draw bool) {
	if res := g.Result(); res != nil {
		if res.Winner == game.Draw {
			return 0, true
		}
		return res.Winner, false
	}
	s0, i0 := g.LargestVillage(0)
	s1, i1 := g.LargestVillage(1)
	switch {
	case s0 != s1:
		if s0 > s1 {
			return 0, false
		}
		return 1, false
	case i0 != i1:
		if i0 > i1 {
			return 0, false
		}
		return 1, false
	}
	return 0, true
}
