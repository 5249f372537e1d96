package automatic

import (
	"context"
	"errors"
	"expvar"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dbltnk/uros-sub000/bot"
	"github.com/dbltnk/uros-sub000/game"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// SeriesStats tallies a bot-vs-bot series.
type SeriesStats struct {
	Games int
	Wins  [2]int
	Draws int
}

// StartStrategyGames plays numGames between the two codes across the given
// number of worker goroutines and reports the tally. Strategies are not
// goroutine-safe, so every worker gets its own runner. outputFilename, when
// not empty, receives one CSV line per move.
func StartStrategyGames(ctx context.Context, rules *game.GameRules,
	code1, code2 bot.Code, opts [2]bot.Options,
	numGames, threads int, outputFilename string) (*SeriesStats, error) {

	if IsPlaying.Value() > 0 {
		return nil, errors.New("games are already being played, please wait till complete")
	}
	if threads < 1 {
		threads = 1
	}

	var logfile *os.File
	var logchan chan string
	logDone := make(chan struct{})
	if outputFilename != "" {
		var err error
		logfile, err = os.Create(outputFilename)
		if err != nil {
			return nil, err
		}
		logchan = make(chan string, 100)
	}
	log.Debug().Msgf("Starting %v games, %v threads", numGames, threads)

	CVCCounter.Set(0)
	jobs := make(chan int, 100)
	var wins0, wins1, draws atomic.Int64

	group, ctx := errgroup.WithContext(ctx)
	for i := 1; i <= threads; i++ {
		group.Go(func() error {
			r, err := NewGameRunner(rules, code1, code2, opts, logchan)
			if err != nil {
				return err
			}
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for gameID := range jobs {
				if err := r.PlayGame(ctx, gameID); err != nil {
					return err
				}
				winner, draw := Outcome(r.Game())
				switch {
				case draw:
					draws.Add(1)
				case winner == 0:
					wins0.Add(1)
				default:
					wins1.Add(1)
				}
				CVCCounter.Add(1)
			}
			return nil
		})
	}

	go func() {
	gameLoop:
		for i := 1; i <= numGames; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				break gameLoop
			}
			if i%1000 == 0 {
				log.Debug().Msgf("Queued %v jobs", i)
			}
		}
		close(jobs)
	}()

	if logchan != nil {
		go func() {
			logfile.WriteString("gameID,turn,player,code,play,largestvillage,houses\n")
			for msg := range logchan {
				logfile.WriteString(msg)
			}
			logfile.Close()
			close(logDone)
		}()
	}

	err := group.Wait()
	if logchan != nil {
		close(logchan)
		<-logDone
	}
	if err != nil {
		return nil, err
	}

	stats := &SeriesStats{
		Games: int(wins0.Load() + wins1.Load() + draws.Load()),
		Wins:  [2]int{int(wins0.Load()), int(wins1.Load())},
		Draws: int(draws.Load()),
	}
	log.Info().Int("games", stats.Games).
		Int("p0-wins", stats.Wins[0]).
		Int("p1-wins", stats.Wins[1]).
		Int("draws", stats.Draws).
		Str("p0", string(code1)).
		Str("p1", string(code2)).
		Msg("series finished")
	return stats, nil
}
