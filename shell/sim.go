package shell

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// sim starts, inspects, or stops a monte-carlo simulation of the current
// play list. A bare `sim` starts one in the background; `sim show`,
// `sim details`, `sim stop` and `sim log` control it.
func (sc *ShellController) sim(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	if len(cmd.args) > 0 {
		return sc.simControlArguments(cmd.args)
	}
	if len(sc.curPlayList) == 0 {
		return nil, errors.New("please generate some plays first with the `gen` command")
	}
	if sc.simmer.IsSimming() {
		return nil, errors.New("simming already, please do a `sim stop` first")
	}

	budgetMs, err := cmd.options.IntDefault("budget", sc.cfg.BotBudgetMs())
	if err != nil {
		return nil, err
	}
	minSims, err := cmd.options.IntDefault("minsims", 0)
	if err != nil {
		return nil, err
	}
	cutoff, err := cmd.options.IntDefault("cutoff", 0)
	if err != nil {
		return nil, err
	}
	if s := cmd.options.String("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		sc.simmer.SetSeed(seed)
	}
	if minSims > 0 {
		sc.simmer.SetMinSims(minSims)
	}
	if cutoff > 0 {
		sc.simmer.SetAutostopIterationsCutoff(cutoff)
	}
	if err := sc.simmer.PrepareSim(0, sc.curPlayList); err != nil {
		return nil, err
	}
	log.Debug().Int("budget-ms", budgetMs).Int("plays", len(sc.curPlayList)).
		Msg("will start sim")

	sc.simCtx, sc.simCancel = context.WithTimeout(context.Background(),
		time.Duration(budgetMs)*time.Millisecond)
	sc.simTicker = time.NewTicker(5 * time.Second)
	sc.simTickerDone = make(chan bool, 1)

	go func() {
		if err := sc.simmer.Simulate(sc.simCtx); err != nil {
			sc.showError(err)
		}
		sc.simTicker.Stop()
		sc.simTickerDone <- true
	}()
	go func() {
		for {
			select {
			case <-sc.simTickerDone:
				return
			case <-sc.simTicker.C:
				log.Info().Msgf("Simmer is at %s iterations...",
					sc.p.Sprintf("%d", sc.simmer.Iterations()))
			}
		}
	}()

	return msg("Simulation started. Please do `sim show` and `sim details` to see more info"), nil
}

// stopSim cancels the running sim; the simulate goroutine shuts the
// ticker down on its way out.
func (sc *ShellController) stopSim() {
	if sc.simCancel != nil {
		sc.simCancel()
		sc.simCancel = nil
	}
}

func (sc *ShellController) simControlArguments(args []string) (*Response, error) {
	switch args[0] {
	case "log":
		if sc.simmer.IsSimming() {
			return nil, errors.New("cannot change log while simming; `sim stop` first")
		}
		var err error
		sc.simLogFile, err = os.Create(SimLog)
		if err != nil {
			return nil, err
		}
		sc.simmer.SetLogStream(sc.simLogFile)
		return msg("sim will log to " + SimLog), nil
	case "stop":
		if !sc.simmer.IsSimming() {
			return nil, errors.New("no running sim to stop")
		}
		sc.stopSim()
		if sc.simLogFile != nil {
			if err := sc.simLogFile.Close(); err != nil {
				return nil, err
			}
			sc.simLogFile = nil
		}
		return msg(sc.simmer.EquityStats()), nil
	case "show":
		if !sc.simmer.Ready() {
			return nil, errors.New("no sim to show; start one with `sim`")
		}
		return msg(sc.simmer.EquityStats()), nil
	case "details":
		if !sc.simmer.Ready() {
			return nil, errors.New("no sim to show; start one with `sim`")
		}
		nplays := 5
		if len(args) > 1 {
			var err error
			if nplays, err = strconv.Atoi(args[1]); err != nil {
				return nil, err
			}
		}
		return msg(sc.simmer.ScoreDetails(nplays)), nil
	}
	return nil, errors.New("do not understand sim argument " + args[0])
}
