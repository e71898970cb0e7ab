// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/moin2rst/internal/convert"
	"github.com/pdiddy/moin2rst/internal/engine"
	"github.com/pdiddy/moin2rst/internal/engine/moin"
	"github.com/pdiddy/moin2rst/internal/engine/native"
	"github.com/pdiddy/moin2rst/internal/logging"
	"github.com/pdiddy/moin2rst/internal/stage"
	"github.com/pdiddy/moin2rst/pkg/types"
)

// rootCmd converts a single page.
var rootCmd = &cobra.Command{
	Use:   "moin2rst [option]... <page>",
	Short: "Convert a MoinMoin page to reStructuredText",
	Long: `moin2rst converts a MoinMoin page to reStructuredText and writes the result
to stdout.

With -d/--directory, <page> names a page of the wiki configured in that
directory. Without it, <page> is a file holding raw wiki markup: a throwaway
wiki is staged from the template found in template_paths, the file is
installed as its only page with legacy [url label], ["Name"] and [CamelCase]
links converted to [[...]] syntax, and the staged wiki is removed afterwards.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if show, _ := cmd.Flags().GetBool("show-config"); show {
			return nil
		}
		if len(args) != 1 {
			return &types.UsageError{Msg: "exactly one argument required"}
		}
		return nil
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := charmlog.ErrorLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = charmlog.DebugLevel
		}
		cmd.SetContext(logging.WithLogger(cmd.Context(), logging.New(os.Stderr, level)))
	},
	RunE: runConvert,
}

func init() {
	f := rootCmd.Flags()
	f.StringP("directory", "d", "", "directory where the configuration of the wiki lives; if not given, use a dummy wiki")
	f.IntP("revision", "r", 0, "revision of the page to fetch (1-based); defaults to the current revision")
	f.StringP("url-template", "u", "", `URL template for a wiki that is part of a farm; may contain at most one '%',
which is replaced by the page name. If '%' is omitted it is assumed at the end`)
	f.String("engine", string(types.EngineNative), "rendering engine: native or moin")
	f.String("encoding", "", "character set of the page file (default: copy bytes verbatim)")
	f.Bool("show-config", false, "print the effective configuration as YAML and exit")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging on stderr")

	_ = viper.BindPFlag("engine", f.Lookup("engine"))
	_ = viper.BindPFlag("encoding", f.Lookup("encoding"))

	rootCmd.SetVersionTemplate("moin2rst {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &types.UsageError{Msg: err.Error()}
	})
}

// loadConfig resolves the effective configuration.
func loadConfig() (types.Config, error) {
	if configErr != nil {
		return types.Config{}, configErr
	}
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if show, _ := cmd.Flags().GetBool("show-config"); show {
		return showConfig(cmd.OutOrStdout(), cfg)
	}

	dir, _ := cmd.Flags().GetString("directory")
	rev, _ := cmd.Flags().GetInt("revision")
	tmpl, _ := cmd.Flags().GetString("url-template")
	if rev < 0 {
		return &types.UsageError{Msg: fmt.Sprintf("-r/--revision must not be negative, got %d", rev)}
	}

	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	fs := afero.NewOsFs()

	st, err := stage.New(fs, stage.Options{
		TemplatePaths: cfg.TemplatePaths,
		PluginSource:  cfg.PluginSource,
		Encoding:      cfg.Encoding,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	eng, err := newEngine(ctx, cfg, fs, logger)
	if err != nil {
		return err
	}

	return convert.New(fs, st, eng, "").Run(ctx, convert.Options{
		Directory:   dir,
		Page:        args[0],
		Revision:    rev,
		URLTemplate: tmpl,
	}, cmd.OutOrStdout())
}

// newEngine selects the rendering engine once for the run.
func newEngine(ctx context.Context, cfg types.Config, fs afero.Fs, logger *charmlog.Logger) (engine.Engine, error) {
	if cfg.Engine == types.EngineMoin {
		e, err := moin.Detect(ctx, cfg.Python, logger)
		if err != nil {
			return nil, &types.SetupError{Op: "detecting MoinMoin", Err: err}
		}
		return e, nil
	}
	return native.New(fs, logger), nil
}

func showConfig(w io.Writer, cfg types.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
