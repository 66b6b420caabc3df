package elasticsearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/infrastructure/elasticsearch"
	"github.com/jonesrussell/north-cloud/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/infrastructure/retry"
)

func TestNewClient_PingsServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.0"}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(context.Background(), elasticsearch.Config{URL: srv.URL}, logger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestNewClient_ErrorStatusIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	_, err := elasticsearch.NewClient(context.Background(), elasticsearch.Config{
		URL:        srv.URL,
		Retry:      retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond},
	}, logger.NewNop())

	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())
}
