package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/credibility/internal/bootstrap"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/infrastructure/profiling"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	// Phase 1: Load config and create logger
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	log, err := bootstrap.CreateLogger(cfg, Version)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: Profiling (if enabled)
	stopProfiling, err := profiling.Start(cfg.Profiling, cfg.Service.Name, Version, log)
	if err != nil {
		log.Warn("Profiling disabled", infralogger.Error(err))
	} else {
		defer func() { _ = stopProfiling() }()
	}

	// Phase 3: Backend, oracle and observers
	app, err := bootstrap.NewApp(ctx, cfg, log, Version)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer app.Close()

	// Phase 4: HTTP server
	return app.Serve(ctx)
}
