// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the semex CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/semex/internal/logging"
	"github.com/pdiddy/semex/internal/metrics"
	"github.com/pdiddy/semex/pkg/semex"
	"github.com/pdiddy/semex/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from the log section of the config before any subcommand runs.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "semex",
	Short: "Dictionary-driven semantic extraction from clinical text",
	Long: `semex finds dictionary terms in clinical free text and reports each one
with its codes, role, certainty (YES, NO, UNCLEAR), family-history and history
flags, byte offsets and the descriptors attached beneath it.

Vocabularies are plain text files of term|code lines, one file per role.
Files named <role>.txt in the dictionary directory are loaded automatically;
negation, speculation and other cue words ship built in.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./semex.yaml or ~/.config/semex/config.yaml)")
	rootCmd.PersistentFlags().String("dict-dir", "", "directory of <role>.txt vocabulary files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("dictionary.dir", rootCmd.PersistentFlags().Lookup("dict-dir"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("semex")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "semex"))
		}
	}

	setDefaults(types.DefaultConfig())

	viper.SetEnvPrefix("SEMEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so environment variables reach Unmarshal.
func setDefaults(d types.Config) {
	viper.SetDefault("dictionary.dir", d.Dictionary.Dir)
	viper.SetDefault("dictionary.disable_builtin_cues", d.Dictionary.DisableBuiltinCues)
	viper.SetDefault("scope.forward_window", d.Scope.ForwardWindow)
	viper.SetDefault("scope.backward_window", d.Scope.BackwardWindow)
	viper.SetDefault("scope.split_on_newline", d.Scope.SplitOnNewline)
	viper.SetDefault("scope.max_input_bytes", d.Scope.MaxInputBytes)
	viper.SetDefault("cache.enabled", d.Cache.Enabled)
	viper.SetDefault("cache.ttl", d.Cache.TTL)
	viper.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	viper.SetDefault("store.dir", d.Store.Dir)
	viper.SetDefault("store.max_results", d.Store.MaxResults)
	viper.SetDefault("batch.notes_dir", d.Batch.NotesDir)
	viper.SetDefault("batch.output_dir", d.Batch.OutputDir)
	viper.SetDefault("batch.workers", d.Batch.Workers)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
	viper.SetDefault("metrics_file", d.MetricsFile)
}

// loadConfig returns the effective configuration: defaults, then the config
// file, then SEMEX_* environment variables and bound flags.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// newProcessor builds a processor from the effective config, loading the
// configured vocabularies.
func newProcessor(cfg types.Config, m *metrics.Metrics) (*semex.Processor, error) {
	return semex.Initialize(cfg.Dictionary,
		semex.WithLogger(logger),
		semex.WithScope(cfg.Scope),
		semex.WithCache(cfg.Cache),
		semex.WithMetrics(m),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
