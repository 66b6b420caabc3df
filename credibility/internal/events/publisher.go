// Package events publishes reputation changes to a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// asyncPublishTimeout is the context timeout for async publish operations.
const asyncPublishTimeout = 5 * time.Second

// EventVoteRecorded is emitted after every persisted vote.
const EventVoteRecorded = "reputation.vote_recorded"

// VoteEvent describes a reputation change.
type VoteEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	Domain     string    `json:"domain"`
	Vote       string    `json:"vote"`
	TrustScore int       `json:"trust_score"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher publishes vote events to a Redis stream.
type Publisher struct {
	client redis.Cmdable
	stream string
	log    infralogger.Logger
	wg     sync.WaitGroup
}

// NewPublisher creates a new event publisher.
// Returns nil if client is nil.
func NewPublisher(client redis.Cmdable, stream string, log infralogger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{client: client, stream: stream, log: log}
}

// Publish appends event to the stream.
func (p *Publisher) Publish(ctx context.Context, event VoteEvent) error {
	if p == nil {
		return nil
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"event": string(payload)},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish to stream: %w", err)
	}

	p.log.Debug("Published vote event",
		infralogger.String("domain", event.Domain),
		infralogger.String("stream_id", id),
	)
	return nil
}

// PublishAsync publishes in the background. Errors are logged.
func (p *Publisher) PublishAsync(event VoteEvent) {
	if p == nil {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		if err := p.Publish(ctx, event); err != nil {
			p.log.Error("Async publish failed",
				infralogger.String("event_type", event.EventType),
				infralogger.String("domain", event.Domain),
				infralogger.Error(err),
			)
		}
	}()
}

// VoteRecorded implements credibility.VoteObserver.
func (p *Publisher) VoteRecorded(_ context.Context, vote domain.Vote, rec *domain.SourceReputation) {
	p.PublishAsync(VoteEvent{
		EventType:  EventVoteRecorded,
		Domain:     rec.Domain,
		Vote:       string(vote),
		TrustScore: rec.TrustScore,
		Upvotes:    rec.Upvotes,
		Downvotes:  rec.Downvotes,
		Timestamp:  rec.UpdatedAt,
	})
}

// Wait blocks until in-flight async publishes finish.
func (p *Publisher) Wait() {
	if p == nil {
		return
	}
	p.wg.Wait()
}
