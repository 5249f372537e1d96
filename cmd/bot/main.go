// The bot service answers move requests over NATS: a driver posts a game
// snapshot and a strategy code, and gets the chosen move back.
package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dbltnk/uros-sub000/bot"
	"github.com/dbltnk/uros-sub000/config"
)

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	log.Info().Msgf("Loaded config: %v, exPath: %v", cfg.SanitizedSettings(), exPath)
	cfg.AdjustRelativePaths(exPath)

	if cfg.Debug() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	bot.Main(cfg.BotChannel(), bot.NewBot(cfg))
}
