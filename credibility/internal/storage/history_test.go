package storage_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
	"github.com/jonesrussell/north-cloud/credibility/internal/storage"
	"github.com/jonesrussell/north-cloud/infrastructure/logger"
)

type fakeES struct {
	mu          sync.Mutex
	indexExists bool
	failIndex   bool
	created     bool
	docs        []map[string]any
}

func (f *fakeES) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodHead:
			if f.indexExists {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && !strings.Contains(r.URL.Path, "/_doc/"):
			f.created = true
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		case strings.Contains(r.URL.Path, "/_doc/"):
			if f.failIndex {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"boom"}`))
				return
			}
			body, _ := io.ReadAll(r.Body)
			var doc map[string]any
			if err := json.Unmarshal(body, &doc); err != nil {
				t.Errorf("decode indexed document: %v", err)
			}
			f.docs = append(f.docs, doc)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
}

func (f *fakeES) indexed() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.docs...)
}

func (f *fakeES) wasCreated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

func newRecorder(t *testing.T, f *fakeES) *storage.HistoryRecorder {
	t.Helper()

	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return storage.NewHistoryRecorder(client, "credibility_analyses", logger.NewNop())
}

func TestEnsureIndex_CreatesMissingIndex(t *testing.T) {
	t.Parallel()

	f := &fakeES{}
	r := newRecorder(t, f)

	require.NoError(t, r.EnsureIndex(context.Background()))
	assert.True(t, f.wasCreated())
}

func TestEnsureIndex_SkipsExistingIndex(t *testing.T) {
	t.Parallel()

	f := &fakeES{indexExists: true}
	r := newRecorder(t, f)

	require.NoError(t, r.EnsureIndex(context.Background()))
	assert.False(t, f.wasCreated())
}

func TestAnalysisCompleted_IndexesDocument(t *testing.T) {
	t.Parallel()

	f := &fakeES{}
	r := newRecorder(t, f)

	r.AnalysisCompleted(context.Background(),
		domain.Article{Title: "Inflation slows", Content: "body", URL: "https://www.kompas.com/a"},
		&domain.AnalysisResult{
			Score:     75,
			Breakdown: []string{"✅ Source (kompas.com) is trusted."},
			Signals:   []domain.Signal{{Name: "source_reputation", Impact: 25}},
			Domain:    "kompas.com",
		},
	)
	r.Wait()

	docs := f.indexed()
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, "kompas.com", doc["domain"])
	assert.InDelta(t, 75, doc["score"], 0)
	assert.NotEmpty(t, doc["id"])
	assert.NotContains(t, doc, "content")
}

func TestAnalysisCompleted_FailureIsSwallowed(t *testing.T) {
	t.Parallel()

	f := &fakeES{failIndex: true}
	r := newRecorder(t, f)

	r.AnalysisCompleted(context.Background(), domain.Article{URL: "https://x.test"}, &domain.AnalysisResult{Score: 50})
	r.Wait()

	assert.Empty(t, f.indexed())
}

func TestRecord_ReturnsErrorStatus(t *testing.T) {
	t.Parallel()

	f := &fakeES{failIndex: true}
	r := newRecorder(t, f)

	err := r.Record(context.Background(), &storage.AnalysisDocument{ID: "a"})
	require.Error(t, err)
}
