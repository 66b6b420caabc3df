// Package bootstrap wires the credibility service together: configuration,
// logging, the reputation backend, the sentiment oracle, observers and the
// HTTP server.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/credibility/internal/config"
	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/events"
	"github.com/jonesrussell/north-cloud/credibility/internal/storage"
	"github.com/jonesrussell/north-cloud/credibility/internal/telemetry"
	infragin "github.com/jonesrussell/north-cloud/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/infrastructure/redis"
)

// App holds the wired components of one process.
type App struct {
	Config    *config.Config
	Logger    infralogger.Logger
	Version   string
	Store     ReputationBackend
	Service   *credibility.Service
	Telemetry *telemetry.Provider
	// Seeded reports the startup seeding pass.
	Seeded credibility.SeedResult

	redis     *redis.Client
	publisher *events.Publisher
	history   *storage.HistoryRecorder
	checks    map[string]infragin.HealthCheck
	closers   []func() error
}

// NewApp connects the backend, seeds it and builds the service.
func NewApp(ctx context.Context, cfg *config.Config, log infralogger.Logger, version string) (*App, error) {
	a := &App{
		Config:    cfg,
		Logger:    log,
		Version:   version,
		Telemetry: telemetry.NewProvider(nil),
		checks:    make(map[string]infragin.HealthCheck),
	}

	store, err := a.SetupStore(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("setup reputation store: %w", err)
	}
	a.Store = store

	if a.Seeded, err = a.SeedStore(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed reputation store: %w", err)
	}

	oracle, err := SetupOracle(cfg.Sentiment, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("setup sentiment oracle: %w", err)
	}
	oracle = a.Telemetry.InstrumentOracle(oracle)

	domains := credibility.NewDomainExtractor(DomainMode(cfg.Scoring.Source.DomainMode))
	analyzer := credibility.NewAnalyzer(
		ScoringSettings(cfg.Scoring),
		SourceExtractor(cfg.Scoring.Source, store, domains, log),
		oracle,
		domains,
	)
	feedback := credibility.NewFeedbackUpdater(store, domains, log)

	opts := a.observerOptions(ctx)
	a.Service = credibility.NewService(analyzer, feedback, log, opts...)

	log.Info("Credibility service ready",
		infralogger.String("backend", cfg.Reputation.Backend),
		infralogger.String("source_policy", cfg.Scoring.Source.Policy),
		infralogger.String("sentiment_provider", cfg.Sentiment.Provider),
		infralogger.Int("baseline", cfg.Scoring.Baseline),
	)
	return a, nil
}

// observerOptions attaches telemetry and the optional history index and
// vote stream. Failures of the optional sinks are logged and skipped.
func (a *App) observerOptions(ctx context.Context) []credibility.ServiceOption {
	opts := []credibility.ServiceOption{
		credibility.WithTracerProvider(a.Telemetry.TracerProvider()),
		credibility.WithAnalysisObserver(a.Telemetry),
		credibility.WithAnalysisFailureObserver(a.Telemetry),
		credibility.WithVoteObserver(a.Telemetry),
	}

	if a.Config.Elasticsearch.Enabled {
		if history, err := SetupHistory(ctx, a.Config.Elasticsearch, a.Logger); err != nil {
			a.Logger.Warn("Analysis history disabled", infralogger.Error(err))
		} else {
			a.history = history
			opts = append(opts, credibility.WithAnalysisObserver(history))
		}
	}

	if a.Config.Redis.EventsEnabled {
		client, err := a.redisClient(ctx)
		if err != nil {
			a.Logger.Warn("Redis not available, vote events disabled", infralogger.Error(err))
		} else {
			a.publisher = events.NewPublisher(client, a.Config.Redis.Stream, a.Logger)
			opts = append(opts, credibility.WithVoteObserver(a.publisher))
			a.Logger.Info("Vote event publisher initialized",
				infralogger.String("stream", a.Config.Redis.Stream),
			)
		}
	}

	return opts
}

// redisClient connects once and shares the client between the store and
// the event publisher.
func (a *App) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client, err := infraredis.NewClient(ctx, infraredis.Config{
		Address:  a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.addCheck("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
	a.addCloser(client.Close)
	return client, nil
}

func (a *App) addCheck(name string, check infragin.HealthCheck) {
	a.checks[name] = check
}

func (a *App) addCloser(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close drains background writers, then releases connections in reverse
// order of creation.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Wait()
	}
	if a.history != nil {
		a.history.Wait()
	}

	var errs []error
	for _, fn := range slices.Backward(a.closers) {
		errs = append(errs, fn())
	}
	a.closers = nil

	if err := errors.Join(errs...); err != nil {
		a.Logger.Error("Failed to release resources", infralogger.Error(err))
	}
}
