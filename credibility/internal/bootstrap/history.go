package bootstrap

import (
	"context"

	"github.com/jonesrussell/north-cloud/credibility/internal/config"
	"github.com/jonesrussell/north-cloud/credibility/internal/storage"
	infraes "github.com/jonesrussell/north-cloud/infrastructure/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// SetupHistory connects to Elasticsearch and prepares the analysis index.
func SetupHistory(ctx context.Context, cfg config.ElasticsearchConfig, log infralogger.Logger) (*storage.HistoryRecorder, error) {
	client, err := infraes.NewClient(ctx, infraes.Config{
		URL:      cfg.URL,
		Username: cfg.Username,
		Password: cfg.Password,
	}, log)
	if err != nil {
		return nil, err
	}

	recorder := storage.NewHistoryRecorder(client, cfg.Index, log)
	if err = recorder.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return recorder, nil
}
