package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dbltnk/uros-sub000/config"
	"github.com/dbltnk/uros-sub000/shell"
)

const banner = `
  ██╗   ██╗██████╗  ██████╗ ███████╗
  ██║   ██║██╔══██╗██╔═══██╗██╔════╝
  ██║   ██║██████╔╝██║   ██║███████╗
  ██║   ██║██╔══██╗██║   ██║╚════██║
  ╚██████╔╝██║  ██║╚██████╔╝███████║
   ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝
`

func main() {
	// Determine the directory of the executable. Relative data paths
	// resolve against it, not against the caller's working directory.
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)
	fmt.Print(banner + "\n")

	cfg := &config.Config{}
	args := os.Args[1:]
	if err := cfg.Load(args); err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	log.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())
	cfg.AdjustRelativePaths(exPath)

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	var logger zerolog.Logger
	if cfg.Debug() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")

	if addr := cfg.PprofAddr(); addr != "" {
		go func() {
			log.Info().Str("addr", addr).Msg("pprof listening")
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Err(err).Msg("pprof server exited")
			}
		}()
	}

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		close(idleConnsClosed)
	}()

	sc := shell.NewShellController(cfg, exPath)
	defer sc.Cleanup()

	argsLine := strings.TrimSpace(strings.Join(args, " "))
	if argsLine == "" || strings.HasPrefix(argsLine, "-") {
		go sc.Loop(sig)
	} else {
		sc.Execute(sig, argsLine)
		sig <- syscall.SIGINT
	}

	<-idleConnsClosed
	log.Info().Msg("shutting down...")
}
