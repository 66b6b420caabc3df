//go:build integration

package storage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
	"github.com/jonesrussell/north-cloud/credibility/internal/storage"
	"github.com/jonesrussell/north-cloud/infrastructure/logger"
)

const esImage = "docker.elastic.co/elasticsearch/elasticsearch:8.11.0"

func startElasticsearch(t *testing.T) *es.Client {
	t.Helper()

	ctx := context.Background()
	ctr, err := elasticsearch.Run(ctx, esImage, elasticsearch.WithPassword("changeme"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	client, err := es.NewClient(es.Config{
		Addresses: []string{ctr.Settings.Address},
		Username:  "elastic",
		Password:  ctr.Settings.Password,
		CACert:    ctr.Settings.CACert,
	})
	require.NoError(t, err)
	return client
}

func TestHistoryRecorder_Elasticsearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	client := startElasticsearch(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rec := storage.NewHistoryRecorder(client, "credibility-analyses-it", logger.NewNop())
	require.NoError(t, rec.EnsureIndex(ctx))
	require.NoError(t, rec.EnsureIndex(ctx), "second call sees the existing index")

	doc := &storage.AnalysisDocument{
		ID:         "fixed-id",
		URL:        "https://kompas.com/a",
		Domain:     "kompas.com",
		Title:      "Prices",
		Score:      75,
		Breakdown:  []string{"numbers"},
		Signals:    []domain.Signal{{Name: "data_presence", Impact: 15, Reason: "numbers"}},
		AnalyzedAt: time.Now().UTC(),
	}
	require.NoError(t, rec.Record(ctx, doc))

	res, err := client.Get("credibility-analyses-it", "fixed-id", client.Get.WithContext(ctx))
	require.NoError(t, err)
	defer res.Body.Close()
	if res.IsError() {
		t.Fatalf("get document: %s", res.String())
	}

	var got struct {
		Source storage.AnalysisDocument `json:"_source"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, 75, got.Source.Score)
	assert.Equal(t, "kompas.com", got.Source.Domain)

	rec.AnalysisCompleted(ctx,
		domain.Article{Title: "t", Content: "c", URL: "https://reuters.com/x"},
		&domain.AnalysisResult{Score: 40, Breakdown: []string{}, Domain: "reuters.com"},
	)
	rec.Wait()

	refresh, err := client.Indices.Refresh(client.Indices.Refresh.WithIndex("credibility-analyses-it"))
	require.NoError(t, err)
	refresh.Body.Close()

	count, err := client.Count(client.Count.WithIndex("credibility-analyses-it"), client.Count.WithContext(ctx))
	require.NoError(t, err)
	defer count.Body.Close()

	var counted struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(count.Body).Decode(&counted))
	assert.Equal(t, 2, counted.Count)
}
