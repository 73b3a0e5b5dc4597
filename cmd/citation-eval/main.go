// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citation-eval CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-eval/internal/logging"
	"github.com/pdiddy/citation-eval/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg holds the merged configuration after PersistentPreRunE.
var cfg = types.DefaultConfig()

// rootCmd is the base command for the citation-eval CLI.
var rootCmd = &cobra.Command{
	Use:   "citation-eval",
	Short: "Evaluate reference linking against ground truth",
	Long: `citation-eval scores the output of a reference linker against a labelled
dataset. Each reference is classified by comparing the ground-truth DOI with
the DOI the linker produced; the tool reports accuracy, link precision,
recall and F1, globally and averaged per cited document.

Runs can be saved to a local SQLite store, listed, exported and served over
HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return logging.Init(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citation-eval.yaml or ~/.config/citation-eval/config.yaml)")
	rootCmd.PersistentFlags().String("store-dir", "runs", "directory holding runs.db")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")

	bindFlag("store.dir", rootCmd, "store-dir")
	bindFlag("log.level", rootCmd, "log-level")
	bindFlag("log.format", rootCmd, "log-format")

	setDefaults(types.DefaultConfig())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citation-eval")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citation-eval"))
		}
	}

	viper.SetEnvPrefix("CITATION_EVAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlag binds a viper key to the named flag of cmd. Binding only fails
// on an unknown flag, which is a programming error.
func bindFlag(key string, cmd *cobra.Command, name string) {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(name)
	}
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding %s to --%s: %v", key, name, err))
	}
}

func setDefaults(d types.Config) {
	viper.SetDefault("evaluation.split_attr", d.Evaluation.SplitAttr)
	viper.SetDefault("evaluation.split_by_doc", d.Evaluation.SplitByDoc)
	viper.SetDefault("evaluation.workers", d.Evaluation.Workers)
	viper.SetDefault("evaluation.format", d.Evaluation.Format)
	viper.SetDefault("store.dir", d.Store.Dir)
	viper.SetDefault("store.max_results", d.Store.MaxResults)
	viper.SetDefault("serve.addr", d.Serve.Addr)
	viper.SetDefault("serve.max_body_bytes", d.Serve.MaxBodyBytes)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

// loadConfig merges defaults, the config file, the environment and bound
// flags into cfg.
func loadConfig() error {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
