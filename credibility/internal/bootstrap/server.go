package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/credibility/internal/api"
	"github.com/jonesrussell/north-cloud/credibility/internal/snapshot"
	infragin "github.com/jonesrussell/north-cloud/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// SetupHTTPServer builds the gin server with health checks, metrics and the
// API routes.
func (a *App) SetupHTTPServer() *infragin.Server {
	cfg := a.Config
	handler := api.NewHandler(a.Service, a.Store, a.Logger)

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Server.Port).
		WithLogger(a.Logger).
		WithDebug(cfg.Service.Debug).
		WithVersion(a.Version).
		WithCORSOrigins(cfg.Server.CORSOrigins).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout, cfg.Server.ShutdownTimeout).
		WithRoutes(func(router *gin.Engine) {
			router.Use(a.Telemetry.Middleware())
			api.RegisterRoutes(router, handler, a.Telemetry.Handler())
		})
	for name, check := range a.checks {
		builder = builder.WithHealthCheck(name, check)
	}
	return builder.Build()
}

// Serve runs the HTTP server until ctx is cancelled or a shutdown signal
// arrives.
func (a *App) Serve(ctx context.Context) error {
	stop, err := a.StartSnapshots(ctx)
	if err != nil {
		return err
	}
	if stop != nil {
		defer stop()
	}

	server := a.SetupHTTPServer()
	if err := server.Run(ctx); err != nil {
		a.Logger.Error("Server error", infralogger.Error(err))
		return fmt.Errorf("server error: %w", err)
	}
	a.Logger.Info("Server exited")
	return nil
}

// StartSnapshots schedules the tracked source gauges when
// reputation.snapshot_schedule is set. The returned func stops the job; it is
// nil when the job is disabled.
func (a *App) StartSnapshots(ctx context.Context) (func(), error) {
	spec := a.Config.Reputation.SnapshotSchedule
	if spec == "" {
		return nil, nil
	}

	job := snapshot.New(a.Store, a.Config.Scoring.Source.NeutralTrust, a.Telemetry, a.Logger)
	if err := job.Start(ctx, spec); err != nil {
		return nil, err
	}
	return job.Stop, nil
}
