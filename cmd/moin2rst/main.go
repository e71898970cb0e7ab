// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the moin2rst CLI, which converts a
// MoinMoin wiki page to reStructuredText.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/moin2rst/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./moin2rst.yaml or ~/.config/moin2rst/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("moin2rst")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "moin2rst"))
		}
	}

	viper.SetEnvPrefix("MOIN2RST")
	viper.AutomaticEnv()

	viper.SetDefault("template_paths", types.DefaultTemplatePaths)
	viper.SetDefault("engine", string(types.EngineNative))
	viper.SetDefault("plugin_source", "")
	viper.SetDefault("python", "")
	viper.SetDefault("encoding", "")

	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}
}

// configErr holds a config file failure until a command can report it.
var configErr error

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var ue *types.UsageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// report prints err to w, with usage for usage errors.
func report(w io.Writer, cmd *cobra.Command, err error) {
	fmt.Fprintf(w, "%s: error: %v\n", cmd.Name(), err)
	var ue *types.UsageError
	if errors.As(err, &ue) {
		fmt.Fprint(w, cmd.UsageString())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		report(os.Stderr, rootCmd, err)
		os.Exit(exitCode(err))
	}
}
