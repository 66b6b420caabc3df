package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/credibility/internal/config"
	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/database"
	"github.com/jonesrussell/north-cloud/credibility/internal/memstore"
	"github.com/jonesrussell/north-cloud/credibility/internal/mongostore"
	"github.com/jonesrussell/north-cloud/credibility/internal/redisstore"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// ReputationBackend is a reputation store that can also list its records.
type ReputationBackend interface {
	credibility.ReputationStore
	credibility.ReputationLister
}

// SetupStore connects the configured reputation backend and registers its
// readiness check and closer on app.
func (a *App) SetupStore(ctx context.Context) (ReputationBackend, error) {
	cfg := a.Config
	switch cfg.Reputation.Backend {
	case config.BackendMemory:
		a.Logger.Warn("Using in-memory reputation store, votes are lost on restart")
		return memstore.New(), nil

	case config.BackendPostgres, config.BackendSQLite:
		return a.setupSQLStore(ctx)

	case config.BackendMongoDB:
		store, client, err := mongostore.Connect(ctx, mongostore.Config{
			URI:        cfg.MongoDB.URI,
			Database:   cfg.MongoDB.Database,
			Collection: cfg.MongoDB.Collection,
			MaxRetries: cfg.MongoDB.MaxRetries,
		}, a.Logger)
		if err != nil {
			return nil, err
		}
		a.addCheck("mongodb", func(ctx context.Context) error { return client.Ping(ctx, nil) })
		a.addCloser(func() error { return client.Disconnect(context.Background()) })
		return store, nil

	case config.BackendRedis:
		client, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return redisstore.New(client, cfg.Redis.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown reputation backend %q", cfg.Reputation.Backend)
	}
}

func (a *App) setupSQLStore(ctx context.Context) (ReputationBackend, error) {
	cfg := a.Config.Database
	dbCfg := database.Config{
		Driver:          database.DriverPostgres,
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		DBName:          cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxConnections,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
	if a.Config.Reputation.Backend == config.BackendSQLite {
		dbCfg.Driver = database.DriverSQLite
		dbCfg.Path = cfg.Path
	}

	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	a.addCloser(db.Close)
	a.addCheck("database", db.PingContext)

	if err = database.Migrate(db, a.Logger); err != nil {
		return nil, err
	}

	a.Logger.Info("Database connection established",
		infralogger.String("driver", dbCfg.Driver),
	)
	return database.NewReputationRepository(db), nil
}
