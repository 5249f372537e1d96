// Package bot holds the move-picking strategies behind the fixed registry of
// bot codes, plus a small NATS service that answers move requests for remote
// drivers.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/dbltnk/uros-sub000/equity"
	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/minimax"
	"github.com/dbltnk/uros-sub000/montecarlo"
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/movegen"
)

// Code identifies a strategy in the registry.
type Code string

const (
	Deterministic     Code = "deterministic"
	Random            Code = "random"
	Minimax           Code = "minimax"
	MinimaxRandomized Code = "minimax-with-randomization"
	MonteCarlo        Code = "montecarlo"
)

// KnownCodes lists the registry in a stable order.
func KnownCodes() []Code {
	return []Code{Deterministic, Random, Minimax, MinimaxRandomized, MonteCarlo}
}

const (
	DefaultBudgetMs  = 1000
	DefaultThreshold = 0.1
)

// ErrBudgetExpired reports that the thinking budget lapsed before the
// strategy completed even one evaluation. It is distinct from the
// no-legal-moves case, which is a nil move with a nil error.
var ErrBudgetExpired = errors.New("bot: budget expired before any evaluation completed")

// Options tune a strategy. The zero value gets the registry defaults; a
// zero Seed draws from the system RNG.
type Options struct {
	BudgetMs  int
	Randomize bool
	Threshold float64
	Seed      uint64
}

func (o Options) withDefaults() Options {
	if o.BudgetMs <= 0 {
		o.BudgetMs = DefaultBudgetMs
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

func (o Options) budget() time.Duration {
	return time.Duration(o.BudgetMs) * time.Millisecond
}

// Strategy picks a move for the player on turn. A nil move with a nil error
// means the position has no legal moves.
type Strategy interface {
	ChooseMove(ctx context.Context, g *game.Game) (*move.Move, error)
	Code() Code
}

// NewStrategy builds a strategy from its registry code.
func NewStrategy(code Code, opts Options) (Strategy, error) {
	opts = opts.withDefaults()
	switch code {
	case Deterministic:
		return &deterministicStrategy{gen: movegen.NewGenerator()}, nil
	case Random:
		return &randomStrategy{gen: movegen.NewGenerator(), rng: strategyRNG(opts.Seed)}, nil
	case Minimax:
		return newMinimaxStrategy(Minimax, opts), nil
	case MinimaxRandomized:
		opts.Randomize = true
		return newMinimaxStrategy(MinimaxRandomized, opts), nil
	case MonteCarlo:
		return &monteCarloStrategy{opts: opts, gen: movegen.NewGenerator(), rng: strategyRNG(opts.Seed)}, nil
	}
	return nil, fmt.Errorf("unknown bot code %q", code)
}

type deterministicStrategy struct {
	gen *movegen.Generator
}

func (s *deterministicStrategy) Code() Code { return Deterministic }

func (s *deterministicStrategy) ChooseMove(ctx context.Context, g *game.Game) (*move.Move, error) {
	plays := s.gen.GenAll(g)
	if len(plays) == 0 {
		return nil, nil
	}
	return plays[0], nil
}

type randomStrategy struct {
	gen *movegen.Generator
	rng *frand.RNG
}

func (s *randomStrategy) Code() Code { return Random }

func (s *randomStrategy) ChooseMove(ctx context.Context, g *game.Game) (*move.Move, error) {
	plays := s.gen.GenAll(g)
	if len(plays) == 0 {
		return nil, nil
	}
	return plays[s.rng.Intn(len(plays))], nil
}

type minimaxStrategy struct {
	code      Code
	opts      Options
	gen       *movegen.Generator
	evaluator *equity.StaticEvaluator
	rng       *frand.RNG
}

func newMinimaxStrategy(code Code, opts Options) *minimaxStrategy {
	return &minimaxStrategy{
		code:      code,
		opts:      opts,
		gen:       movegen.NewGenerator(),
		evaluator: equity.NewStaticEvaluator(),
		rng:       strategyRNG(opts.Seed),
	}
}

func (s *minimaxStrategy) Code() Code { return s.code }

func (s *minimaxStrategy) ChooseMove(ctx context.Context, g *game.Game) (*move.Move, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.budget())
	defer cancel()

	solver := new(minimax.Solver)
	if err := solver.Init(s.gen, g, s.evaluator); err != nil {
		return nil, err
	}
	solver.SetRootFullWindow(s.opts.Randomize)

	val, best, err := solver.Solve(ctx, minimax.MaxVariantLength)
	switch {
	case errors.Is(err, minimax.ErrNoLegalMoves):
		return nil, nil
	case errors.Is(err, minimax.ErrBudgetExpired):
		return nil, ErrBudgetExpired
	case err != nil:
		return nil, err
	}
	if !s.opts.Randomize {
		return best, nil
	}
	pool := solver.MovesWithin(s.opts.Threshold)
	if len(pool) == 0 {
		return best, nil
	}
	choice := pool[s.rng.Intn(len(pool))]
	log.Debug().Float64("best", val).Int("pool", len(pool)).
		Str("choice", choice.ShortDescription()).Msg("randomized pick")
	return choice, nil
}

type monteCarloStrategy struct {
	opts Options
	gen  *movegen.Generator
	rng  *frand.RNG
}

func (s *monteCarloStrategy) Code() Code { return MonteCarlo }

func (s *monteCarloStrategy) ChooseMove(ctx context.Context, g *game.Game) (*move.Move, error) {
	plays := s.gen.GenAll(g)
	if len(plays) == 0 {
		return nil, nil
	}
	candidates := append([]*move.Move{}, plays...)

	simmer := &montecarlo.Simmer{}
	simmer.Init(g)
	if s.opts.Seed != 0 {
		simmer.SetSeed(s.opts.Seed)
	}
	if err := simmer.PrepareSim(0, candidates); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.budget())
	defer cancel()
	err := simmer.Simulate(ctx)
	switch {
	case errors.Is(err, montecarlo.ErrBudgetExpired):
		return nil, ErrBudgetExpired
	case err != nil:
		return nil, err
	}
	if !s.opts.Randomize {
		return simmer.WinningPlay().Move(), nil
	}
	pool := simmer.PlaysWithin(s.opts.Threshold)
	if len(pool) == 0 {
		return simmer.WinningPlay().Move(), nil
	}
	return pool[s.rng.Intn(len(pool))], nil
}

func strategyRNG(seed uint64) *frand.RNG {
	if seed == 0 {
		return frand.New()
	}
	var b [32]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(seed >> (8 * i))
	}
	return frand.NewCustom(b[:], 1024, 12)
}
