// Package mongostore keeps source reputation in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	infracontext "github.com/jonesrussell/north-cloud/infrastructure/context"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/infrastructure/retry"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

const upsertRetryDelay = 10 * time.Millisecond

// Config holds connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string
	MaxRetries int
}

type reputationDocument struct {
	Domain     string    `bson:"domain"`
	TrustScore int       `bson:"trust_score"`
	Upvotes    int       `bson:"upvotes"`
	Downvotes  int       `bson:"downvotes"`
	TotalVotes int       `bson:"total_votes"`
	Category   string    `bson:"category"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (d reputationDocument) toDomain() *domain.SourceReputation {
	return &domain.SourceReputation{
		Domain:     d.Domain,
		TrustScore: d.TrustScore,
		Upvotes:    d.Upvotes,
		Downvotes:  d.Downvotes,
		Category:   d.Category,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// Store implements the reputation store on one collection.
type Store struct {
	coll  *mongo.Collection
	retry retry.Config
	now   func() time.Time
}

// New wraps an existing collection.
func New(coll *mongo.Collection, maxRetries int) *Store {
	return &Store{
		coll: coll,
		retry: retry.Config{
			MaxAttempts:  maxRetries + 1,
			InitialDelay: upsertRetryDelay,
			IsRetryable:  mongo.IsDuplicateKeyError,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Connect opens a client, pings it and ensures the collection indexes.
func Connect(ctx context.Context, cfg Config, log infralogger.Logger) (*Store, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingErr := retry.Do(ctx, retry.Config{MaxAttempts: cfg.MaxRetries}, func(ctx context.Context) error {
		pingCtx, cancel := infracontext.WithPingTimeout(ctx)
		defer cancel()
		return client.Ping(pingCtx, nil)
	})
	if pingErr != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongodb: %w", pingErr)
	}

	store := New(client.Database(cfg.Database).Collection(cfg.Collection), cfg.MaxRetries)
	if idxErr := store.EnsureIndexes(ctx); idxErr != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, idxErr
	}

	log.Info("MongoDB connection established",
		infralogger.String("database", cfg.Database),
		infralogger.String("collection", cfg.Collection),
	)
	return store, client, nil
}

// EnsureIndexes creates the unique domain index and the listing indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "domain", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "trust_score", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// FindByDomain retrieves a record by its registrable domain.
func (s *Store) FindByDomain(ctx context.Context, domainName string) (*domain.SourceReputation, error) {
	var doc reputationDocument
	err := s.coll.FindOne(ctx, bson.M{"domain": domainName}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReputationNotFound
		}
		return nil, fmt.Errorf("find source reputation: %w", err)
	}
	return doc.toDomain(), nil
}

// InsertIfAbsent inserts rec with $setOnInsert so existing records are
// left untouched.
func (s *Store) InsertIfAbsent(ctx context.Context, rec *domain.SourceReputation) (bool, error) {
	doc := reputationDocument{
		Domain:     rec.Domain,
		TrustScore: rec.TrustScore,
		Upvotes:    rec.Upvotes,
		Downvotes:  rec.Downvotes,
		TotalVotes: rec.TotalVotes(),
		Category:   rec.Category,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"domain": rec.Domain},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert source reputation: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

// UpsertVote applies vote with a single pipeline update, so the counter
// increment and trust recomputation happen atomically on the server. Two
// first votes racing on a new domain can collide on the unique index; the
// loser is retried and then finds the document.
func (s *Store) UpsertVote(ctx context.Context, domainName string, vote domain.Vote) (*domain.SourceReputation, error) {
	var doc reputationDocument
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		return s.coll.FindOneAndUpdate(ctx,
			bson.M{"domain": domainName},
			votePipeline(vote, s.now()),
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&doc)
	})
	if err != nil {
		return nil, fmt.Errorf("upsert vote: %w", err)
	}
	return doc.toDomain(), nil
}

func votePipeline(vote domain.Vote, now time.Time) mongo.Pipeline {
	up, down := 0, 0
	if vote == domain.VoteUp {
		up = 1
	} else {
		down = 1
	}

	counter := func(field string, inc int) bson.D {
		return bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, 0}}}, inc}}}
	}
	total := bson.D{{Key: "$add", Value: bson.A{"$upvotes", "$downvotes"}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "upvotes", Value: counter("upvotes", up)},
			{Key: "downvotes", Value: counter("downvotes", down)},
			{Key: "category", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$category", domain.CategoryFromFeedback}}}},
			{Key: "created_at", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$created_at", now}}}},
			{Key: "updated_at", Value: now},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "total_votes", Value: total},
			// floor((200*up + total) / (2*total)) is round-half-up of 100*up/total.
			{Key: "trust_score", Value: bson.D{{Key: "$toInt", Value: bson.D{{Key: "$floor", Value: bson.D{
				{Key: "$divide", Value: bson.A{
					bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$multiply", Value: bson.A{200, "$upvotes"}}}, total}}},
					bson.D{{Key: "$multiply", Value: bson.A{2, total}}},
				}},
			}}}}}},
		}}},
	}
}

var sortFields = map[string]string{
	domain.SortByDomain:     "domain",
	domain.SortByTrustScore: "trust_score",
	domain.SortByVotes:      "total_votes",
	domain.SortByUpdatedAt:  "updated_at",
}

// List retrieves records with filtering, sorting and paging.
func (s *Store) List(ctx context.Context, filter domain.ReputationFilter) ([]*domain.SourceReputation, int, error) {
	f := filter.Normalize()

	query := bson.M{}
	if f.Search != "" {
		query["domain"] = bson.M{"$regex": regexp.QuoteMeta(f.Search)}
	}
	if f.Category != "" {
		query["category"] = f.Category
	}

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count source reputations: %w", err)
	}

	order := 1
	if f.SortOrder == domain.SortDesc {
		order = -1
	}
	sort := bson.D{{Key: sortFields[f.SortBy], Value: order}}
	if f.SortBy != domain.SortByDomain {
		sort = append(sort, bson.E{Key: "domain", Value: 1})
	}

	cur, err := s.coll.Find(ctx, query, options.Find().
		SetSort(sort).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit)),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list source reputations: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	recs := make([]*domain.SourceReputation, 0, f.Limit)
	for cur.Next(ctx) {
		var doc reputationDocument
		if decodeErr := cur.Decode(&doc); decodeErr != nil {
			return nil, 0, fmt.Errorf("decode source reputation: %w", decodeErr)
		}
		recs = append(recs, doc.toDomain())
	}
	if err = cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate source reputations: %w", err)
	}
	return recs, int(total), nil
}
