// Package config wires every tunable in this repo through viper: flags,
// UROS_-prefixed environment variables and an optional uros.yaml in the
// working directory, in the usual viper order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "uros"

// Keys for every setting this repo understands. Use the constants rather
// than raw strings; Set rejects keys it does not know.
const (
	KeyDebug             = "debug"
	KeyTileCatalog       = "tile-catalog"
	KeyBoardDim          = "board-dim"
	KeyHousePool         = "house-pool"
	KeyBotCode           = "bot-code"
	KeyBotBudgetMs       = "bot-budget-ms"
	KeyBotRandomize      = "bot-randomize"
	KeyBotThreshold      = "bot-threshold"
	KeyBotSeed           = "bot-seed"
	KeyNatsURL           = "nats-url"
	KeyBotChannel        = "bot-channel"
	KeyCollectorURL      = "collector-url"
	KeyCollectorEnabled  = "collector-enabled"
	KeyExplainerProvider = "explainer-provider"
	KeyExplainerModel    = "explainer-model"
	KeyExplainerAPIKey   = "explainer-api-key"
	KeyPprofAddr         = "pprof-addr"
)

// secretKeys never leave the process in readable form.
var secretKeys = map[string]bool{
	KeyExplainerAPIKey: true,
}

type Config struct {
	v *viper.Viper
}

// Load parses args and primes the environment/config-file bindings. Call it
// once before reading any setting.
func (c *Config) Load(args []string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(envPrefix)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	fs := pflag.NewFlagSet(envPrefix, pflag.ContinueOnError)
	fs.Bool(KeyDebug, false, "log at debug level")
	fs.String(KeyTileCatalog, "", "path to a YAML tile catalog (empty: built-in shapes)")
	fs.Int(KeyBoardDim, 6, "board dimension")
	fs.Int(KeyHousePool, 10, "houses per player")
	fs.String(KeyBotCode, "minimax", "default bot strategy code")
	fs.Int(KeyBotBudgetMs, 1000, "bot thinking budget in milliseconds")
	fs.Bool(KeyBotRandomize, false, "randomize among near-best bot moves")
	fs.Float64(KeyBotThreshold, 0.1, "relative tolerance for near-best moves")
	fs.Uint64(KeyBotSeed, 0, "bot RNG seed (0: unseeded)")
	fs.String(KeyNatsURL, "nats://127.0.0.1:4222", "NATS server for the bot service")
	fs.String(KeyBotChannel, "uros.bot", "NATS subject the bot service answers on")
	fs.String(KeyCollectorURL, "http://127.0.0.1:8087", "diagnostics collector base URL")
	fs.Bool(KeyCollectorEnabled, false, "send logs and snapshots to the collector")
	fs.String(KeyExplainerProvider, "gemini", "LLM provider for move explanations")
	fs.String(KeyExplainerModel, "", "LLM model override (empty: provider default)")
	fs.String(KeyExplainerAPIKey, "", "LLM API key (empty: explainer disabled)")
	fs.String(KeyPprofAddr, "", "pprof listen address (empty: disabled)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	c.v = v
	return nil
}

// Set overrides one setting at runtime; the shell's `set` command goes
// through here.
func (c *Config) Set(key string, value any) error {
	if !c.Known(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	c.v.Set(key, value)
	return nil
}

func (c *Config) Known(key string) bool {
	for _, k := range c.v.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Keys lists every known setting, sorted.
func (c *Config) Keys() []string {
	keys := c.v.AllKeys()
	sort.Strings(keys)
	return keys
}

// SanitizedSettings is the settings map with secrets redacted. Anything that
// gets logged or shipped to the collector goes through here, never through
// viper.AllSettings directly.
func (c *Config) SanitizedSettings() map[string]any {
	settings := c.v.AllSettings()
	for key := range secretKeys {
		if s, ok := settings[key]; ok && s != "" {
			settings[key] = "REDACTED"
		}
	}
	return settings
}

// AdjustRelativePaths rewrites relative file settings to resolve against
// basepath (normally the executable's directory) instead of the caller's
// working directory.
func (c *Config) AdjustRelativePaths(basepath string) {
	p := c.v.GetString(KeyTileCatalog)
	if p != "" && !filepath.IsAbs(p) {
		c.v.Set(KeyTileCatalog, filepath.Join(basepath, p))
	}
}

func (c *Config) Debug() bool              { return c.v.GetBool(KeyDebug) }
func (c *Config) TileCatalog() string      { return c.v.GetString(KeyTileCatalog) }
func (c *Config) BoardDim() int            { return c.v.GetInt(KeyBoardDim) }
func (c *Config) HousePool() int           { return c.v.GetInt(KeyHousePool) }
func (c *Config) BotCode() string          { return c.v.GetString(KeyBotCode) }
func (c *Config) BotBudgetMs() int         { return c.v.GetInt(KeyBotBudgetMs) }
func (c *Config) BotRandomize() bool       { return c.v.GetBool(KeyBotRandomize) }
func (c *Config) BotThreshold() float64    { return c.v.GetFloat64(KeyBotThreshold) }
func (c *Config) BotSeed() uint64          { return c.v.GetUint64(KeyBotSeed) }
func (c *Config) NatsURL() string          { return c.v.GetString(KeyNatsURL) }
func (c *Config) BotChannel() string       { return c.v.GetString(KeyBotChannel) }
func (c *Config) CollectorURL() string     { return c.v.GetString(KeyCollectorURL) }
func (c *Config) CollectorEnabled() bool   { return c.v.GetBool(KeyCollectorEnabled) }
func (c *Config) ExplainerProvider() string { return c.v.GetString(KeyExplainerProvider) }
func (c *Config) ExplainerModel() string   { return c.v.GetString(KeyExplainerModel) }
func (c *Config) ExplainerAPIKey() string  { return c.v.GetString(KeyExplainerAPIKey) }
func (c *Config) PprofAddr() string        { return c.v.GetString(KeyPprofAddr) }
