// Package cmd implements the credibility command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/credibility/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/credibility/internal/config"
	infraconfig "github.com/jonesrussell/north-cloud/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	configFile string
	debug      bool
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// NewRootCommand builds the command tree. Without a subcommand the HTTP
// service is started.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "credibility",
		Short:         "News article credibility scoring service",
		Long:          `Scores news articles for credibility and learns source trust from reader votes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCommand(opts),
		newAnalyzeCommand(opts),
		newSeedCommand(opts),
		newSourcesCommand(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "credibility version %s\n", Version)
			},
		},
	)
	return root
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configFile
	if path == "" {
		path = infraconfig.GetConfigPath("config.yml")
	}
	cfg, err := bootstrap.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// cliLogger writes console logs to stderr so command output stays clean.
func cliLogger(cfg *config.Config) (infralogger.Logger, error) {
	return infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      infralogger.FormatConsole,
		Development: cfg.Service.Debug,
		OutputPaths: []string{"stderr"},
	})
}
