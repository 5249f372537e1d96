// Package minimax implements an iterative-deepening alpha-beta searcher
// over full game states. A turn is two placements (one on the very first
// turn), so consecutive plies are often made by the same player; the sign
// convention therefore follows the player on turn at each node rather
// than the ply parity.
package minimax

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

	"github.com/dbltnk/uros-sub000/equity"
	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/movegen"
	"github.com/dbltnk/uros-sub000/zobrist"
)

// HugeNumber is beyond any achievable position value.
const HugeNumber = float64(1e9)

// terminalValueBase separates proven results from heuristic evaluations,
// which stay several orders of magnitude below it.
const terminalValueBase = float64(1e6)

// MaxVariantLength is the maximum number of plies we will search.
const MaxVariantLength = 25

var (
	// ErrBudgetExpired reports that the time budget ran out before even
	// the first depth finished; the caller has no move to act on.
	ErrBudgetExpired = errors.New("search budget expired before the first depth completed")
	// ErrNoLegalMoves reports a position with nothing to search.
	ErrNoLegalMoves = errors.New("no legal moves to search")
)

// PVLine is a principal variation. Adapted from the implementation in
// the Blunder chess engine.
type PVLine struct {
	Moves []*move.Move
	score float64
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = pvLine.Moves[:0]
}

// Update the principal variation line with a new best move,
// along with the best move after it from the previous depth.
func (pvLine *PVLine) Update(m *move.Move, newPVLine PVLine, score float64) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, m)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.score = score
}

// GetPVMove returns the best move from the principal variation line.
func (pvLine *PVLine) GetPVMove() *move.Move {
	if len(pvLine.Moves) == 0 {
		return nil
	}
	return pvLine.Moves[0]
}

func (pvLine PVLine) String() string {
	var ss strings.Builder
	ss.WriteString(fmt.Sprintf("<score: %.3f>", pvLine.score))
	for i := 0; i < len(pvLine.Moves); i++ {
		ss.WriteString(fmt.Sprintf(" %d: %s;", i+1, pvLine.Moves[i].ShortDescription()))
	}
	return ss.String()
}

// Solver searches a game tree rooted at a given state. Child states are
// deep clones; the root game is never mutated. The searcher is strictly
// single-threaded and polls its context between nodes, so a deadline is
// never overrun by more than one node expansion.
type Solver struct {
	zobrist   *zobrist.Zobrist
	gen       movegen.MoveGenerator
	game      *game.Game
	evaluator *equity.StaticEvaluator

	ttable *TranspositionTable

	initialMoves []*move.Move
	rootScratch  []float64
	rootValues   []float64

	principalVariation PVLine
	bestPVValue        float64
	completedDepth     int
	currentIDDepth     int
	requestedPlies     int

	transpositionTableOptim bool
	iterativeDeepeningOptim bool
	rootFullWindow          bool
	ttMemFraction           float64

	nodes     uint64
	logStream io.Writer
}

// Init initializes the solver for a game. The solver holds the game by
// reference but only ever reads it; searching works on clones.
func (s *Solver) Init(gen movegen.MoveGenerator, g *game.Game, evaluator *equity.StaticEvaluator) error {
	if g == nil {
		return errors.New("need a game to search")
	}
	s.gen = gen
	if s.gen == nil {
		s.gen = movegen.NewGenerator()
	}
	s.game = g
	s.evaluator = evaluator
	if s.evaluator == nil {
		s.evaluator = equity.NewStaticEvaluator()
	}
	s.zobrist = &zobrist.Zobrist{}
	s.zobrist.Initialize(g.Rules().Catalog(), g.Rules().BoardDim())
	s.ttable = &TranspositionTable{}
	s.transpositionTableOptim = true
	s.iterativeDeepeningOptim = true
	s.ttMemFraction = 0.25
	s.requestedPlies = MaxVariantLength
	return nil
}

func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

// SetRootFullWindow keeps the alpha bound open across root moves so that
// every root move gets a directly comparable score instead of a bound.
// Needed when the caller wants to randomize among near-best moves.
func (s *Solver) SetRootFullWindow(rw bool) {
	s.rootFullWindow = rw
}

func (s *Solver) SetTTMemFraction(f float64) {
	s.ttMemFraction = f
}

func (s *Solver) SetLogStream(l io.Writer) {
	s.logStream = l
}

func (s *Solver) Nodes() uint64 {
	return s.nodes
}

func (s *Solver) CompletedDepth() int {
	return s.completedDepth
}

func (s *Solver) PrincipalVariation() PVLine {
	return s.principalVariation
}

// RootResults returns the root moves and their scores from the last
// completed depth, best first. The slices are parallel. They are only
// meaningful after a Solve that completed at least one depth.
func (s *Solver) RootResults() ([]*move.Move, []float64) {
	return s.initialMoves, s.rootValues
}

// MovesWithin returns the root moves scoring within the given fraction
// of the best root score, from the last completed depth.
func (s *Solver) MovesWithin(threshold float64) []*move.Move {
	if len(s.rootValues) == 0 {
		return nil
	}
	best := s.rootValues[0]
	cutoff := best - threshold*math.Max(math.Abs(best), 1)
	within := []*move.Move{}
	for i, m := range s.initialMoves {
		if s.rootValues[i] < cutoff {
			break
		}
		within = append(within, m)
	}
	return within
}

// evaluateNode scores a position from the perspective of the player on
// turn. Static equity is not antisymmetric on its own, so the opponent's
// equity is subtracted; negation across turn changes is then sound.
func (s *Solver) evaluateNode(g *game.Game) float64 {
	onturn := g.PlayerOnTurn()
	if g.IsGameOver() {
		return s.terminalValue(g, onturn)
	}
	return s.evaluator.Evaluate(g, onturn) - s.evaluator.Evaluate(g, 1-onturn)
}

// terminalValue maps a finished game to a proven score. The village
// margin keeps bigger wins ahead of narrow ones.
func (s *Solver) terminalValue(g *game.Game, perspective int) float64 {
	r := g.Result()
	if r == nil {
		log.Panic().Msg("terminal value requested for unfinished game")
	}
	if r.Winner == game.Draw {
		return 0
	}
	loser := 1 - r.Winner
	margin := 10*float64(r.Sizes[r.Winner]-r.Sizes[loser]) +
		float64(r.Islands[r.Winner]-r.Islands[loser])
	if r.Winner == perspective {
		return terminalValueBase + margin
	}
	return -(terminalValueBase + margin)
}

func (s *Solver) negamax(ctx context.Context, g *game.Game, nodeKey uint64, depth int,
	α, β float64, pv *PVLine) (float64, error) {

	if ctx.Err() != nil {
		return 0, ErrBudgetExpired
	}
	if depth == 0 || g.IsGameOver() {
		return s.evaluateNode(g), nil
	}

	onturn := g.PlayerOnTurn()
	alphaOrig := α
	atRoot := depth == s.currentIDDepth
	var ttMove uint64

	// No transposition cutoffs at the root; every root move needs a
	// score of its own for the final pick.
	if s.transpositionTableOptim && !atRoot {
		ttEntry := s.ttable.lookup(nodeKey)
		if ttEntry.valid() {
			if int(ttEntry.depth()) >= depth {
				score := float64(ttEntry.score)
				flag := ttEntry.flag()
				if flag == TTExact {
					return score, nil
				} else if flag == TTLower {
					α = math.Max(α, score)
				} else if flag == TTUpper {
					β = math.Min(β, score)
				}
				if α >= β {
					return score, nil
				}
			}
			ttMove = ttEntry.move()
		}
	}

	var children []*move.Move
	if atRoot {
		children = s.initialMoves
	} else {
		// The generator owns its plays slice; copy before recursing.
		plays := s.gen.GenAll(g)
		children = make([]*move.Move, len(plays))
		copy(children, plays)
		if ttMove != 0 {
			promoteHashMove(children, ttMove)
		}
	}
	if len(children) == 0 {
		// Stalled live position: houses in hand but every island cell
		// is owned and no tile fits. Score it statically.
		return s.evaluateNode(g), nil
	}

	bestValue := -HugeNumber
	var bestMove *move.Move
	childPV := PVLine{}
	for idx, child := range children {
		cg := g.Copy()
		if !cg.MakeMove(child) {
			log.Panic().Str("move", child.String()).Msg("generated move did not apply")
		}
		s.nodes++
		childKey := s.zobrist.Hash(cg)
		var value float64
		var err error
		if cg.PlayerOnTurn() == onturn {
			// Mid-turn: the same player places again, so the child
			// shares our perspective and our window.
			value, err = s.negamax(ctx, cg, childKey, depth-1, α, β, &childPV)
		} else {
			value, err = s.negamax(ctx, cg, childKey, depth-1, -β, -α, &childPV)
			value = -value
		}
		if err != nil {
			// Abandon this depth entirely; nothing partial is recorded.
			return bestValue, err
		}
		if value > bestValue {
			bestValue = value
			bestMove = child
			pv.Update(child, childPV, bestValue)
		}
		if atRoot {
			s.rootScratch[idx] = value
		}
		if !atRoot || !s.rootFullWindow {
			α = math.Max(α, bestValue)
			if bestValue >= β {
				break
			}
		}
		childPV.Clear()
	}

	if s.transpositionTableOptim {
		var flag uint8
		if bestValue <= alphaOrig {
			flag = TTUpper
		} else if bestValue >= β {
			flag = TTLower
		} else {
			flag = TTExact
		}
		s.ttable.store(nodeKey, TableEntry{
			score:        float32(bestValue),
			flagAndDepth: flag<<6 | uint8(depth),
			play:         packMove(bestMove),
		})
	}
	return bestValue, nil
}

func promoteHashMove(children []*move.Move, packed uint64) {
	hm := unpackMove(packed)
	for i, c := range children {
		if c.Equals(hm) {
			children[0], children[i] = children[i], children[0]
			return
		}
	}
}

func (s *Solver) iterativelyDeepen(ctx context.Context, plies int) error {
	g := s.game
	if g.IsGameOver() {
		return ErrNoLegalMoves
	}
	plays := s.gen.GenAll(g)
	if len(plays) == 0 {
		return ErrNoLegalMoves
	}
	s.initialMoves = make([]*move.Move, len(plays))
	copy(s.initialMoves, plays)
	s.rootScratch = make([]float64, len(s.initialMoves))
	rootKey := s.zobrist.Hash(g)

	start := 1
	if !s.iterativeDeepeningOptim {
		start = plies
	}
	for p := start; p <= plies; p++ {
		s.currentIDDepth = p
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "- ply: %d\n", p)
		}
		pv := PVLine{}
		val, err := s.negamax(ctx, g, rootKey, p, -HugeNumber, HugeNumber, &pv)
		if err != nil {
			return err
		}
		s.principalVariation = pv
		s.bestPVValue = val
		s.completedDepth = p
		s.recordRootValues()
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "  value: %.3f\n  nodes: %d\n  pv: %s\n",
				val, s.nodes, pv.String())
		}
		log.Debug().Int("depth", p).Float64("value", val).
			Uint64("nodes", s.nodes).Str("pv", pv.String()).
			Msg("completed-depth")
		if val >= terminalValueBase || val <= -terminalValueBase {
			// Proven result; deeper search cannot change it.
			break
		}
	}
	return nil
}

// recordRootValues publishes the scratch scores of a fully completed
// depth and re-sorts the root moves best-first for the next iteration.
func (s *Solver) recordRootValues() {
	for i, m := range s.initialMoves {
		m.SetEquity(s.rootScratch[i])
	}
	sort.Slice(s.initialMoves, func(i, j int) bool {
		return s.initialMoves[i].Equity() > s.initialMoves[j].Equity()
	})
	s.rootValues = make([]float64, len(s.initialMoves))
	for i, m := range s.initialMoves {
		s.rootValues[i] = m.Equity()
	}
}

// Solve searches the root position, deepening one ply at a time until
// the requested depth or the context deadline. The best move of the last
// fully completed depth is returned; a depth interrupted partway through
// is discarded. If the deadline fires before depth 1 completes, Solve
// returns ErrBudgetExpired.
func (s *Solver) Solve(ctx context.Context, plies int) (float64, *move.Move, error) {
	if s.game == nil {
		return 0, nil, errors.New("solve called before Init")
	}
	if plies > MaxVariantLength {
		plies = MaxVariantLength
	}
	if plies < 1 {
		plies = 1
	}
	s.requestedPlies = plies
	s.nodes = 0
	s.completedDepth = 0
	s.bestPVValue = 0
	s.principalVariation = PVLine{}
	s.rootValues = nil
	if s.transpositionTableOptim {
		s.ttable.Reset(s.ttMemFraction)
	}
	tstart := time.Now()
	err := s.iterativelyDeepen(ctx, plies)
	if err != nil && !errors.Is(err, ErrBudgetExpired) {
		return 0, nil, err
	}
	if s.completedDepth == 0 {
		return 0, nil, ErrBudgetExpired
	}
	log.Debug().
		Int("completed-depth", s.completedDepth).
		Uint64("nodes", s.nodes).
		Float64("value", s.bestPVValue).
		Float64("tt-hit-rate", s.ttable.hitRate()).
		Dur("elapsed", time.Since(tstart)).
		Msg("solve-done")
	return s.bestPVValue, s.principalVariation.GetPVMove(), nil
}
