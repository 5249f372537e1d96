// Package montecarlo implements time-boxed monte-carlo playout search.
// In other words, "simming": every candidate move is tried against
// uniformly random continuations, and the running average of the playout
// scores decides which candidate wins.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/movegen"
	"github.com/dbltnk/uros-sub000/stats"
)

const (
	// IterationsCutoff caps a sim that neither converges nor times out.
	IterationsCutoff = 5000
	// DefaultMoveCap bounds a single playout; a game that is somehow
	// still alive after this many placements is scored as it stands.
	DefaultMoveCap = 300
	// DefaultMinSims is the per-candidate floor before convergence is
	// even considered.
	DefaultMinSims = 10
	// DefaultWindowSize is the number of running-average samples the
	// convergence window holds per candidate.
	DefaultWindowSize = 20
	// DefaultConvergeThreshold bounds the half-window delta below which
	// a candidate counts as settled.
	DefaultConvergeThreshold = 0.05

	// The deadline is polled between placements at this stride, so a
	// budget is never overrun by more than a few playout steps.
	deadlinePollInterval = 16

	defaultCheckInterval = uint64(16)
)

// ErrBudgetExpired reports that the time budget ran out before a single
// playout completed; there are no results to act on.
var ErrBudgetExpired = errors.New("sim budget expired before any playout completed")

// errPlayoutExpired aborts an in-flight playout. Nothing from that
// playout is recorded.
var errPlayoutExpired = errors.New("playout abandoned at deadline")

// LogIteration is a struct meant for serializing to a log-file, for debug
// and other purposes. One is emitted per completed playout.
type LogIteration struct {
	Iteration int     `json:"iteration" yaml:"iteration"`
	Play      string  `json:"play" yaml:"play"`
	Moves     int     `json:"moves" yaml:"moves"`
	Score     float64 `json:"score" yaml:"score"`
	WinRatio  float64 `json:"win" yaml:"win"`
	GameOver  bool    `json:"game_over" yaml:"game_over"`
}

// SimmedPlay holds the accumulated playout results for one candidate.
type SimmedPlay struct {
	play       *move.Move
	winStats   stats.Statistic
	window     *stats.Window
	finalSizes []float64
}

func (sp *SimmedPlay) String() string {
	return fmt.Sprintf("<Simmed play: %v (%d iters, mean %.3f)>",
		sp.play.ShortDescription(), sp.winStats.Iterations(), sp.winStats.Mean())
}

func (sp *SimmedPlay) Move() *move.Move {
	return sp.play
}

// WinProb is the running average playout score, in [-1, 1].
func (sp *SimmedPlay) WinProb() float64 {
	return sp.winStats.Mean()
}

func (sp *SimmedPlay) Iterations() int {
	return sp.winStats.Iterations()
}

func (sp *SimmedPlay) addSimResult(score float64, ownSize int) {
	sp.winStats.Push(score)
	sp.window.Push(sp.winStats.Mean())
	sp.finalSizes = append(sp.finalSizes, float64(ownSize))
}

// Simmer implements the actual look-ahead search. It is strictly
// single-threaded: playouts run one at a time and the deadline is polled
// between bounded units of work.
type Simmer struct {
	origGame *game.Game
	gen      movegen.MoveGenerator
	rng      *frand.RNG

	// initialPlayer is the player for whom we are simming.
	initialPlayer int
	moveCap       int
	minSims       int
	windowSize    int
	threshold     float64

	iterationCount uint64
	nodeCount      uint64
	checkInterval  uint64
	itersCutoff    int

	simming     bool
	readyToSim  bool
	simmedPlays []*SimmedPlay

	logStream io.Writer
}

func (s *Simmer) Init(g *game.Game) {
	s.origGame = g
	s.gen = movegen.NewGenerator()
	s.rng = frand.New()
	s.moveCap = DefaultMoveCap
	s.minSims = DefaultMinSims
	s.windowSize = DefaultWindowSize
	s.threshold = DefaultConvergeThreshold
	s.checkInterval = defaultCheckInterval
	s.itersCutoff = IterationsCutoff
}

func (s *Simmer) SetLogStream(l io.Writer) {
	s.logStream = l
}

// SetSeed makes playout move picks and scheduling tie-breaks
// reproducible.
func (s *Simmer) SetSeed(seed uint64) {
	s.rng = seededRNG(seed)
}

func (s *Simmer) SetMinSims(n int) {
	s.minSims = n
}

// SetConvergence tunes the early-stop criterion: the per-candidate
// window size and the half-window delta below which it counts as
// settled.
func (s *Simmer) SetConvergence(windowSize int, threshold float64) {
	s.windowSize = windowSize
	s.threshold = threshold
}

func (s *Simmer) SetAutostopIterationsCutoff(i int) {
	s.itersCutoff = i
}

func (s *Simmer) SetAutostopCheckInterval(i uint64) {
	s.checkInterval = i
}

// PrepareSim resets all the stats before a simulation.
func (s *Simmer) PrepareSim(moveCap int, plays []*move.Move) error {
	if s.origGame == nil {
		return errors.New("please initialize the simmer first")
	}
	if len(plays) == 0 {
		return errors.New("no plays to sim")
	}
	if moveCap > 0 {
		s.moveCap = moveCap
	}
	s.iterationCount = 0
	s.nodeCount = 0
	s.initialPlayer = s.origGame.PlayerOnTurn()
	s.simmedPlays = make([]*SimmedPlay, len(plays))
	for idx, play := range plays {
		s.simmedPlays[idx] = &SimmedPlay{
			play:   play,
			window: stats.NewWindow(s.windowSize),
		}
	}
	s.readyToSim = true
	return nil
}

func (s *Simmer) Ready() bool {
	return s.readyToSim
}

func (s *Simmer) IsSimming() bool {
	return s.simming
}

func (s *Simmer) Reset() {
	s.simmedPlays = nil
	s.readyToSim = false
}

func (s *Simmer) Iterations() int {
	return int(s.iterationCount)
}

// Simulate sims all the plays. It is a blocking function that returns
// when the context deadline fires, the convergence criterion is met, or
// the iterations cutoff is reached. Completed playouts stand regardless
// of why the sim stopped; an interrupted playout is discarded whole.
func (s *Simmer) Simulate(ctx context.Context) error {
	if !s.readyToSim || len(s.simmedPlays) == 0 {
		return errors.New("please prepare the simulation first")
	}
	s.simming = true
	defer func() {
		s.simming = false
		log.Info().Int("move-cap", s.moveCap).
			Uint64("iterationCt", s.iterationCount).
			Msg("sim-ended")
	}()

	tstart := time.Now()
	for {
		if ctx.Err() != nil {
			break
		}
		if s.itersCutoff > 0 && int(s.iterationCount) >= s.itersCutoff {
			log.Debug().Uint64("numIters", s.iterationCount).Msg("reached iterations cutoff")
			break
		}
		sp := s.nextPlay()
		err := s.simSingleIteration(ctx, sp)
		if errors.Is(err, errPlayoutExpired) {
			break
		} else if err != nil {
			return err
		}
		s.iterationCount++
		if s.iterationCount%s.checkInterval == 0 && s.converged() {
			log.Info().Uint64("numIters", s.iterationCount).Msg("reached stopping condition")
			break
		}
	}
	elapsed := time.Since(tstart)
	nps := float64(s.nodeCount) / elapsed.Seconds()
	log.Info().Msgf("time taken: %v, nps: %f, nodes: %d", elapsed.Seconds(), nps, s.nodeCount)

	s.sortPlaysByWinRate()
	if s.iterationCount == 0 {
		return ErrBudgetExpired
	}
	return nil
}

// nextPlay schedules the candidate with the fewest playouts so far,
// breaking ties uniformly at random.
func (s *Simmer) nextPlay() *SimmedPlay {
	fewest := -1
	tied := []*SimmedPlay{}
	for _, sp := range s.simmedPlays {
		n := sp.winStats.Iterations()
		if fewest == -1 || n < fewest {
			fewest = n
			tied = append(tied[:0], sp)
		} else if n == fewest {
			tied = append(tied, sp)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	return tied[s.rng.Intn(len(tied))]
}

func (s *Simmer) simSingleIteration(ctx context.Context, sp *SimmedPlay) error {
	g := s.origGame.Copy()
	if !g.MakeMove(sp.play) {
		log.Panic().Str("move", sp.play.String()).Msg("sim candidate did not apply")
	}
	s.nodeCount++

	steps := 0
	for !g.IsGameOver() && steps < s.moveCap {
		if steps%deadlinePollInterval == 0 && ctx.Err() != nil {
			return errPlayoutExpired
		}
		plays := s.gen.GenAll(g)
		if len(plays) == 0 {
			// Stalled live position; score it as it stands.
			break
		}
		pick := plays[s.rng.Intn(len(plays))]
		if !g.MakeMove(pick) {
			log.Panic().Str("move", pick.String()).Msg("playout move did not apply")
		}
		s.nodeCount++
		steps++
	}

	score, ownSize := s.score(g)
	sp.addSimResult(score, ownSize)

	if s.logStream != nil {
		logIter := LogIteration{
			Iteration: int(s.iterationCount) + 1,
			Play:      sp.play.ShortDescription(),
			Moves:     steps,
			Score:     score,
			WinRatio:  sp.winStats.Mean(),
			GameOver:  g.IsGameOver(),
		}
		out, err := yaml.Marshal([]LogIteration{logIter})
		if err != nil {
			log.Err(err).Msg("marshalling log")
			return err
		}
		s.logStream.Write(out)
	}
	return nil
}

// score maps the end of a playout to the simming player's perspective:
// a win on village size is worth a full point, a win on the island
// tie-break half a point, a dead tie nothing.
func (s *Simmer) score(g *game.Game) (float64, int) {
	p := s.initialPlayer
	o := 1 - p
	var sizes, islands [2]int
	if r := g.Result(); r != nil {
		sizes, islands = r.Sizes, r.Islands
	} else {
		sizes[0], islands[0] = g.LargestVillage(0)
		sizes[1], islands[1] = g.LargestVillage(1)
	}
	switch {
	case sizes[p] > sizes[o]:
		return 1, sizes[p]
	case sizes[p] < sizes[o]:
		return -1, sizes[p]
	case islands[p] > islands[o]:
		return 0.5, sizes[p]
	case islands[p] < islands[o]:
		return -0.5, sizes[p]
	}
	return 0, sizes[p]
}

// converged reports whether every candidate has simmed enough and its
// recent running averages have flattened out.
func (s *Simmer) converged() bool {
	for _, sp := range s.simmedPlays {
		if sp.winStats.Iterations() < s.minSims {
			return false
		}
		if !sp.window.Full() {
			return false
		}
		if sp.window.HalfDelta() >= s.threshold {
			return false
		}
	}
	return true
}

func (s *Simmer) sortPlaysByWinRate() {
	sort.SliceStable(s.simmedPlays, func(i, j int) bool {
		if s.simmedPlays[i].winStats.Mean() == s.simmedPlays[j].winStats.Mean() {
			return s.simmedPlays[i].winStats.Iterations() > s.simmedPlays[j].winStats.Iterations()
		}
		return s.simmedPlays[i].winStats.Mean() > s.simmedPlays[j].winStats.Mean()
	})
}

// SimmedPlays returns the candidates sorted by win rate, best first.
func (s *Simmer) SimmedPlays() []*SimmedPlay {
	s.sortPlaysByWinRate()
	return s.simmedPlays
}

// WinningPlay returns the best-averaging candidate.
func (s *Simmer) WinningPlay() *SimmedPlay {
	s.sortPlaysByWinRate()
	return s.simmedPlays[0]
}

// PlaysWithin returns the candidate moves whose average score is within
// the given fraction of the best, best first.
func (s *Simmer) PlaysWithin(threshold float64) []*move.Move {
	s.sortPlaysByWinRate()
	if len(s.simmedPlays) == 0 {
		return nil
	}
	best := s.simmedPlays[0].winStats.Mean()
	cutoff := best - threshold*math.Max(math.Abs(best), 1)
	within := []*move.Move{}
	for _, sp := range s.simmedPlays {
		if sp.winStats.Mean() < cutoff {
			break
		}
		within = append(within, sp.play)
	}
	return within
}

// EquityStats renders the per-candidate averages as a table.
func (s *Simmer) EquityStats() string {
	var ss strings.Builder
	s.sortPlaysByWinRate()
	z := stats.ZVal(99)
	fmt.Fprintf(&ss, "%-24s%-18s%-8s\n", "Play", "Score", "Iters")
	for _, sp := range s.simmedPlays {
		scoreStats := fmt.Sprintf("%.3f±%.3f", sp.winStats.Mean(), z*sp.winStats.StandardError())
		fmt.Fprintf(&ss, "%-24s%-18s%-8d\n", sp.play.ShortDescription(), scoreStats, sp.winStats.Iterations())
	}
	fmt.Fprintf(&ss, "Iterations: %d (intervals are 99%% confidence)\n", s.iterationCount)
	return ss.String()
}

func seededRNG(seed uint64) *frand.RNG {
	var b [32]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(seed >> (8 * i))
	}
	return frand.NewCustom(b[:], 1024, 12)
}
