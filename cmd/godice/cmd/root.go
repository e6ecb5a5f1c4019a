// Package cmd implements the godice command line.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sandrolain/godice"
	"github.com/sandrolain/godice/pkg/cache"
	"github.com/sandrolain/godice/pkg/config"
	"github.com/sandrolain/godice/pkg/ext"
	"github.com/sandrolain/godice/pkg/ext/extdnd5e"
	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/registry"
)

var (
	cfgFile  string
	logLevel string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "godice",
	Short: "Roll dice notation",
	Long: `godice parses and rolls dice notation such as 4d6kh3, 1d20adv+5 dc15
or 2d6! + $bonus.

Settings are read from an optional TOML or YAML file and from GODICE_*
environment variables.`,
	Version:           godice.Version(),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.toml, .yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
		if err := loaded.Validate(); err != nil {
			return err
		}
	}
	cfg = loaded
	logger = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

// newParser builds a parser honouring the effects file and cache size.
func newParser() (*parser.Parser, error) {
	reg := registry.Default()
	if cfg.EffectsFile != "" {
		effects, err := config.LoadEffects(cfg.EffectsFile)
		if err != nil {
			return nil, err
		}
		reg, err = ext.NewRegistry(extdnd5e.WithEffects(effects))
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded wild magic table", "file", cfg.EffectsFile, "effects", len(effects))
	}

	opts := []parser.Option{parser.WithRegistry(reg), parser.WithLogger(logger)}
	if cfg.CacheSize > 0 {
		opts = append(opts, parser.WithCache(cache.New(cfg.CacheSize)))
	}
	return parser.New(opts...), nil
}

// logCacheStats reports how the parse cache served this run.
func logCacheStats(p *parser.Parser) {
	c := p.Cache()
	if c == nil {
		return
	}
	hits, misses := c.Stats()
	logger.Debug("parse cache",
		"entries", c.Len(),
		"capacity", c.Capacity(),
		"hits", hits,
		"misses", misses)
}

func printError(cmd *cobra.Command, msg string, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", msg, err)
}
