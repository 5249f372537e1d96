package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dbltnk/uros-sub000/automatic"
	"github.com/dbltnk/uros-sub000/bot"
	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/minimax"
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/tiles"
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		var sb strings.Builder
		settings := sc.cfg.SanitizedSettings()
		for _, key := range sc.cfg.Keys() {
			fmt.Fprintf(&sb, "%s: %v\n", key, settings[key])
		}
		return msg(sb.String()), nil
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: set <option> <value>")
	}
	key, value := cmd.args[0], cmd.args[1]
	if err := sc.cfg.Set(key, value); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("set %s to %v", key, value)), nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	if sc.simmer.IsSimming() {
		return nil, errors.New("simming; please `sim stop` first")
	}
	catalogPath := sc.cfg.TileCatalog()
	if len(cmd.args) > 0 {
		catalogPath = cmd.args[0]
	}
	catalog := tiles.LoadCatalogOrBuiltin(catalogPath)
	rules, err := game.NewGameRules(catalog, sc.cfg.BoardDim(), sc.cfg.HousePool(),
		[2]string{"red", "blue"})
	if err != nil {
		return nil, err
	}
	sc.rules = rules
	sc.game = game.NewGame(rules)
	if seed := sc.cfg.BotSeed(); seed != 0 {
		sc.game.SeedRandom(seed)
	}
	sc.curPlayList = nil
	sc.simmer.Init(sc.game)
	if seed := sc.cfg.BotSeed(); seed != 0 {
		sc.simmer.SetSeed(seed)
	}
	sc.explainSvc.SetGame(sc.game)
	sc.publishSnapshot()
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	sc.publishSnapshot()
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) tiles(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	return msg(sc.game.ReedbedDisplayText()), nil
}

func (sc *ShellController) rotate(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	if len(cmd.args) < 1 {
		return nil, errors.New("usage: rotate <tile> [cw]")
	}
	tileID, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	direction := 1
	if len(cmd.args) > 1 && cmd.args[1] == "cw" {
		direction = -1
	}
	if !sc.game.RotateTile(tileID, direction) {
		return nil, fmt.Errorf("cannot rotate tile %d (placed or unknown)", tileID)
	}
	sc.curPlayList = nil
	t := sc.game.ReedbedTile(tileID)
	return msg(t.ToDisplayText()), nil
}

// commitMove applies a move to the canonical game and refreshes everything
// derived from the old position.
func (sc *ShellController) commitMove(m *move.Move) (*Response, error) {
	if !sc.game.MakeMove(m) {
		return nil, fmt.Errorf("illegal move %s", m.ShortDescription())
	}
	log.Debug().Str("play", m.ShortDescription()).Msg("committed")
	sc.curPlayList = nil
	sc.simmer.Reset()
	sc.publishSnapshot()
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) place(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	if len(cmd.args) != 5 {
		return nil, errors.New("usage: place <tile> <tilerow> <tilecol> <boardrow> <boardcol>")
	}
	n := make([]int, 5)
	for i, a := range cmd.args {
		var err error
		if n[i], err = strconv.Atoi(a); err != nil {
			return nil, err
		}
	}
	m := move.NewPlaceTileMove(n[0], n[1], n[2], n[3], n[4], sc.game.PlayerOnTurn())
	return sc.commitMove(m)
}

func (sc *ShellController) house(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	if len(cmd.args) != 3 {
		return nil, errors.New("usage: house <tile> <row> <col>")
	}
	n := make([]int, 3)
	for i, a := range cmd.args {
		var err error
		if n[i], err = strconv.Atoi(a); err != nil {
			return nil, err
		}
	}
	m := move.NewPlaceHouseMove(n[0], n[1], n[2], sc.game.PlayerOnTurn())
	return sc.commitMove(m)
}

func (sc *ShellController) villages(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	var sb strings.Builder
	villages := sc.game.CalculateVillages()
	for p := 0; p < 2; p++ {
		fmt.Fprintf(&sb, "%s:\n", sc.game.ColorFor(p))
		if len(villages[p]) == 0 {
			sb.WriteString("  (none)\n")
			continue
		}
		for _, v := range villages[p] {
			fmt.Fprintf(&sb, "  %v\n", v)
		}
	}
	return msg(sb.String()), nil
}

// generate enumerates the legal plays, scores each with the static
// evaluator on a copied position, and keeps the whole sorted list as the
// current play list.
func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	numPlays := 15
	if len(cmd.args) > 0 {
		var err error
		if numPlays, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	plays := sc.gen.GenAll(sc.game)
	if len(plays) == 0 {
		return msg("no legal moves in this position"), nil
	}
	onturn := sc.game.PlayerOnTurn()
	for _, m := range plays {
		gc := sc.game.Copy()
		if !gc.MakeMove(m) {
			log.Panic().Str("play", m.ShortDescription()).Msg("enumerated move was rejected")
		}
		m.SetEquity(sc.evaluator.Evaluate(gc, onturn))
	}
	sort.SliceStable(plays, func(i, j int) bool {
		return plays[i].Equity() > plays[j].Equity()
	})
	sc.curPlayList = plays

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s%-24s%-8s\n", "", "Play", "Equity")
	for i, m := range plays {
		if i >= numPlays {
			break
		}
		fmt.Fprintf(&sb, "%3d: %-24s%-8.3f\n", i+1, m.ShortDescription(), m.Equity())
	}
	fmt.Fprintf(&sb, "%d total moves\n", len(plays))
	return msg(sb.String()), nil
}

// autoplace commits the best play by static equity.
func (sc *ShellController) autoplace(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	if len(sc.curPlayList) == 0 {
		if _, err := sc.generate(&shellcmd{cmd: "gen"}); err != nil {
			return nil, err
		}
	}
	if len(sc.curPlayList) == 0 {
		return nil, errors.New("no legal moves in this position")
	}
	return sc.commitMove(sc.curPlayList[0])
}

func (sc *ShellController) botOptions(options CmdOptions) (bot.Options, error) {
	opts := bot.Options{
		BudgetMs:  sc.cfg.BotBudgetMs(),
		Randomize: sc.cfg.BotRandomize(),
		Threshold: sc.cfg.BotThreshold(),
		Seed:      sc.cfg.BotSeed(),
	}
	budget, err := options.IntDefault("budget", opts.BudgetMs)
	if err != nil {
		return opts, err
	}
	opts.BudgetMs = budget
	if options.Bool("randomize") {
		opts.Randomize = true
	}
	if t := options.String("threshold"); t != "" {
		opts.Threshold, err = strconv.ParseFloat(t, 64)
		if err != nil {
			return opts, err
		}
	}
	if s := options.String("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return opts, err
		}
		opts.Seed = seed
	}
	return opts, nil
}

// botMove asks the configured strategy (or the one named in the first
// argument) for a move and commits it. With -remote, the move request goes
// over NATS to a bot service instead of being computed in-process.
func (sc *ShellController) botMove(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	if sc.game.IsGameOver() {
		return msg(sc.game.Result().String()), nil
	}
	code := bot.Code(sc.cfg.BotCode())
	if len(cmd.args) > 0 {
		code = bot.Code(cmd.args[0])
	}
	opts, err := sc.botOptions(cmd.options)
	if err != nil {
		return nil, err
	}

	var m *move.Move
	if cmd.options.Bool("remote") {
		client, err := bot.NewClient(sc.cfg.NatsURL(), sc.cfg.BotChannel())
		if err != nil {
			return nil, err
		}
		defer client.Close()
		m, err = client.RequestMove(sc.game, code, opts)
		if err != nil {
			return nil, err
		}
	} else {
		strategy, err := bot.NewStrategy(code, opts)
		if err != nil {
			return nil, err
		}
		started := time.Now()
		m, err = strategy.ChooseMove(context.Background(), sc.game)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("code", string(code)).
			Dur("elapsed", time.Since(started)).Msg("bot chose")
	}
	if m == nil {
		return msg("bot has no legal moves"), nil
	}
	sc.showMessage("bot plays " + m.ShortDescription())
	return sc.commitMove(m)
}

// minimax runs the iterative-deepening solver synchronously and reports the
// principal variation and the root scores. It does not commit the move.
func (sc *ShellController) minimax(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	budgetMs := sc.cfg.BotBudgetMs()
	if len(cmd.args) > 0 {
		var err error
		if budgetMs, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	plies, err := cmd.options.IntDefault("plies", minimax.MaxVariantLength)
	if err != nil {
		return nil, err
	}

	solver := new(minimax.Solver)
	if err := solver.Init(sc.gen, sc.game, sc.evaluator); err != nil {
		return nil, err
	}
	solver.SetRootFullWindow(true)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(budgetMs)*time.Millisecond)
	defer cancel()

	val, best, err := solver.Solve(ctx, plies)
	switch {
	case errors.Is(err, minimax.ErrNoLegalMoves):
		return msg("no legal moves in this position"), nil
	case errors.Is(err, minimax.ErrBudgetExpired):
		return msg("budget expired before depth 1 completed; try a larger budget"), nil
	case err != nil:
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "best %s value %.3f\n", best.ShortDescription(), val)
	fmt.Fprintf(&sb, "depth %d, %s nodes\n", solver.CompletedDepth(),
		sc.p.Sprintf("%d", solver.Nodes()))
	fmt.Fprintf(&sb, "pv: %v\n", solver.PrincipalVariation())

	moves, values := solver.RootResults()
	fmt.Fprintf(&sb, "%-6s%-24s%-8s\n", "", "Play", "Value")
	for i, m := range moves {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&sb, "%3d: %-24s%-8.3f\n", i+1, m.ShortDescription(), values[i])
	}
	return msg(sb.String()), nil
}

// vs plays a series of bot-vs-bot games and reports the tally.
func (sc *ShellController) vs(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: vs <code1> <code2> [-games n] [-threads n] [-out file]")
	}
	code1, code2 := bot.Code(cmd.args[0]), bot.Code(cmd.args[1])
	numGames, err := cmd.options.IntDefault("games", 10)
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", 1)
	if err != nil {
		return nil, err
	}
	opts, err := sc.botOptions(cmd.options)
	if err != nil {
		return nil, err
	}
	rules := sc.rules
	if rules == nil {
		catalog := tiles.LoadCatalogOrBuiltin(sc.cfg.TileCatalog())
		rules, err = game.NewGameRules(catalog, sc.cfg.BoardDim(), sc.cfg.HousePool(),
			[2]string{"red", "blue"})
		if err != nil {
			return nil, err
		}
	}

	stats, err := automatic.StartStrategyGames(context.Background(), rules,
		code1, code2, [2]bot.Options{opts, opts}, numGames, threads,
		cmd.options.String("out"))
	if err != nil {
		return nil, err
	}
	return msg(sc.p.Sprintf("%d games: %s %d wins, %s %d wins, %d draws\n",
		stats.Games, code1, stats.Wins[0], code2, stats.Wins[1], stats.Draws)), nil
}

// explain asks the LLM explainer to comment on the current sim results.
// Needs a completed or running sim; run `sim` first.
func (sc *ShellController) explain(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errors.New("please start a game first with the `new` command")
	}
	if !sc.explainSvc.Enabled() {
		return nil, errors.New("explainer disabled; configure explainer-provider and explainer-api-key")
	}
	if !sc.simmer.Ready() || sc.simmer.Iterations() == 0 {
		return nil, errors.New("please run a `sim` first so there is something to explain")
	}
	if sc.simmer.IsSimming() {
		return nil, errors.New("simming; please `sim stop` first")
	}
	winning := sc.simmer.WinningPlay()
	if winning == nil {
		return nil, errors.New("sim has no winning play yet")
	}

	sc.explainSvc.SetGame(sc.game)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	result, err := sc.explainSvc.Explain(ctx,
		sc.game.ToDisplayText(),
		sc.simmer.EquityStats(),
		sc.simmer.ScoreDetails(5),
		winning.Move().ShortDescription())
	if err != nil {
		return nil, err
	}
	return msg(result.Explanation), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	return usage()
}
