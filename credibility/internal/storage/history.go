// Package storage indexes analysis history into Elasticsearch.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
	"github.com/jonesrussell/north-cloud/infrastructure/logger"
)

const indexTimeout = 10 * time.Second

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "url":         {"type": "keyword"},
      "domain":      {"type": "keyword"},
      "title":       {"type": "text"},
      "score":       {"type": "integer"},
      "breakdown":   {"type": "text"},
      "signals": {
        "properties": {
          "name":   {"type": "keyword"},
          "impact": {"type": "integer"},
          "reason": {"type": "text"}
        }
      },
      "analyzed_at": {"type": "date"}
    }
  }
}`

// AnalysisDocument is one indexed analysis. Article content is not stored.
type AnalysisDocument struct {
	ID         string          `json:"id"`
	URL        string          `json:"url"`
	Domain     string          `json:"domain,omitempty"`
	Title      string          `json:"title"`
	Score      int             `json:"score"`
	Breakdown  []string        `json:"breakdown"`
	Signals    []domain.Signal `json:"signals"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
}

// HistoryRecorder writes analysis documents to an index. It implements
// credibility.AnalysisObserver; indexing runs in the background.
type HistoryRecorder struct {
	client *es.Client
	index  string
	log    logger.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewHistoryRecorder creates a recorder for index.
func NewHistoryRecorder(client *es.Client, index string, log logger.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		client: client,
		index:  index,
		log:    log,
		now:    time.Now,
	}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (r *HistoryRecorder) EnsureIndex(ctx context.Context) error {
	res, err := r.client.Indices.Exists(
		[]string{r.index},
		r.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.index, err)
	}
	_ = res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = r.client.Indices.Create(
		r.index,
		r.client.Indices.Create.WithContext(ctx),
		r.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", r.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", r.index, res.String())
	}
	r.log.Info("Created analysis history index", logger.String("index", r.index))
	return nil
}

// Record indexes doc synchronously.
func (r *HistoryRecorder) Record(ctx context.Context, doc *AnalysisDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal analysis document: %w", err)
	}

	res, err := r.client.Index(
		r.index,
		bytes.NewReader(body),
		r.client.Index.WithContext(ctx),
		r.client.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("index analysis document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index analysis document: %s", res.String())
	}
	return nil
}

// AnalysisCompleted indexes the result in the background. Failures are
// logged and dropped.
func (r *HistoryRecorder) AnalysisCompleted(ctx context.Context, article domain.Article, result *domain.AnalysisResult) {
	doc := &AnalysisDocument{
		ID:         uuid.NewString(),
		URL:        article.URL,
		Domain:     result.Domain,
		Title:      article.Title,
		Score:      result.Score,
		Breakdown:  result.Breakdown,
		Signals:    result.Signals,
		AnalyzedAt: r.now().UTC(),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		indexCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
		defer cancel()

		if err := r.Record(indexCtx, doc); err != nil {
			r.log.Warn("Failed to record analysis history",
				logger.String("index", r.index),
				logger.String("url", doc.URL),
				logger.Error(err),
			)
		}
	}()
}

// Wait blocks until in-flight background writes finish.
func (r *HistoryRecorder) Wait() {
	r.wg.Wait()
}
