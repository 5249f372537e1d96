// Package shell implements the interactive REPL for driving games,
// searches and simulations from a terminal.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dbltnk/uros-sub000/config"
	"github.com/dbltnk/uros-sub000/diag"
	"github.com/dbltnk/uros-sub000/equity"
	"github.com/dbltnk/uros-sub000/explainer"
	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/montecarlo"
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/movegen"
)

const SimLog = "/tmp/urossimlog"

var errNoData = errors.New("no data in line")

type ShellController struct {
	l      *readline.Instance
	cfg    *config.Config
	exPath string

	game        *game.Game
	rules       *game.GameRules
	gen         *movegen.Generator
	evaluator   *equity.StaticEvaluator
	curPlayList []*move.Move

	simmer        *montecarlo.Simmer
	simCtx        context.Context
	simCancel     context.CancelFunc
	simTicker     *time.Ticker
	simTickerDone chan bool
	simLogFile    *os.File

	explainSvc *explainer.Service

	diagClient *diag.Client
	diagWriter *diag.Writer

	p *message.Printer
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}

	lastWasOption := false
	lastOption := ""
	for _, field := range fields[1:] {
		if strings.HasPrefix(field, "-") {
			lastWasOption = true
			lastOption = field[1:]
			continue
		}
		if lastWasOption {
			options[lastOption] = append(options[lastOption], field)
			lastWasOption = false
		} else {
			args = append(args, field)
		}
	}
	if lastWasOption {
		// Option without a value is a flag.
		options[lastOption] = append(options[lastOption], "true")
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, exPath string) *ShellController {
	prompt := "uros"
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31m" + prompt + ">\033[0m ",
		HistoryFile:     "/tmp/readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		AutoComplete:        shellAutocompleter(),
	})
	if err != nil {
		panic(err)
	}

	sc := &ShellController{
		l:          l,
		cfg:        cfg,
		exPath:     exPath,
		gen:        movegen.NewGenerator(),
		evaluator:  equity.NewStaticEvaluator(),
		simmer:     &montecarlo.Simmer{},
		explainSvc: explainer.NewService(cfg),
		p:          message.NewPrinter(language.English),
	}
	if cfg.CollectorEnabled() {
		session := time.Now().Format("20060102-150405")
		sc.diagClient = diag.NewClient(cfg.CollectorURL(), session)
		sc.diagClient.ClearSession()
		sc.diagWriter = diag.NewWriter(sc.diagClient)
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		log.Logger = log.Logger.Output(zerolog.MultiLevelWriter(console, sc.diagWriter))
		log.Info().Str("session", session).Msg("diagnostics collector enabled")
	}
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	w := io.Writer(os.Stderr)
	if sc.l != nil {
		w = sc.l.Stderr()
	}
	writeln(msg, w)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// publishSnapshot ships the current position to the collector, if one is
// configured. Failures are the collector's problem, never ours.
func (sc *ShellController) publishSnapshot() {
	if sc.diagClient == nil || sc.game == nil {
		return
	}
	sc.diagClient.ReplaceLatestSnapshot(sc.game.ToSnapshot())
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) error {
	cmd, err := extractFields(line)
	if errors.Is(err, errNoData) {
		return nil
	}
	if err != nil {
		sc.showError(err)
		return nil
	}

	var resp *Response
	switch cmd.cmd {
	case "new":
		resp, err = sc.newGame(cmd)
	case "show", "s":
		resp, err = sc.show(cmd)
	case "tiles":
		resp, err = sc.tiles(cmd)
	case "rotate":
		resp, err = sc.rotate(cmd)
	case "place":
		resp, err = sc.place(cmd)
	case "house":
		resp, err = sc.house(cmd)
	case "villages":
		resp, err = sc.villages(cmd)
	case "gen":
		resp, err = sc.generate(cmd)
	case "autoplace":
		resp, err = sc.autoplace(cmd)
	case "bot":
		resp, err = sc.botMove(cmd)
	case "minimax":
		resp, err = sc.minimax(cmd)
	case "sim":
		resp, err = sc.sim(cmd)
	case "vs":
		resp, err = sc.vs(cmd)
	case "explain":
		resp, err = sc.explain(cmd)
	case "script":
		resp, err = sc.script(cmd)
	case "set":
		resp, err = sc.set(cmd)
	case "help":
		resp, err = sc.help(cmd)
	case "bye", "exit":
		sig <- syscall.SIGINT
		return errors.New("sending quit signal")
	default:
		err = errors.New("command " + cmd.cmd + " not found")
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if err := sc.standardModeSwitch(line, sig); err != nil {
			break
		}
	}
	log.Debug().Msg("Exiting readline loop...")
}

// Execute runs a single command line, for non-interactive invocations.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	if err := sc.standardModeSwitch(strings.TrimSpace(line), sig); err != nil {
		log.Error().Err(err).Msg("")
	}
}

// Cleanup flushes anything still buffered for the collector.
func (sc *ShellController) Cleanup() {
	if sc.simCancel != nil {
		sc.simCancel()
	}
	if sc.diagWriter != nil {
		sc.diagWriter.Close()
	}
}

func shellAutocompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("new"),
		readline.PcItem("show"),
		readline.PcItem("tiles"),
		readline.PcItem("rotate"),
		readline.PcItem("place"),
		readline.PcItem("house"),
		readline.PcItem("villages"),
		readline.PcItem("gen"),
		readline.PcItem("autoplace"),
		readline.PcItem("bot",
			readline.PcItem("deterministic"),
			readline.PcItem("random"),
			readline.PcItem("minimax"),
			readline.PcItem("minimax-with-randomization"),
			readline.PcItem("montecarlo"),
		),
		readline.PcItem("minimax"),
		readline.PcItem("sim",
			readline.PcItem("log"),
			readline.PcItem("stop"),
			readline.PcItem("show"),
			readline.PcItem("details"),
		),
		readline.PcItem("vs"),
		readline.PcItem("explain"),
		readline.PcItem("script"),
		readline.PcItem("set"),
		readline.PcItem("help"),
		readline.PcItem("bye"),
	)
}
