// Package redisstore keeps source reputation in Redis hashes, one per
// domain, plus a set indexing every stored domain.
package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// upsertVoteScript creates the hash when absent, bumps one counter and
// recomputes the trust score in one server-side step.
var upsertVoteScript = redis.NewScript(`
local key, index = KEYS[1], KEYS[2]
local name, field, now, category, neutral = ARGV[1], ARGV[2], ARGV[3], ARGV[4], ARGV[5]
if redis.call('EXISTS', key) == 0 then
  redis.call('HSET', key, 'domain', name, 'trust_score', neutral, 'upvotes', 0, 'downvotes', 0,
    'category', category, 'created_at', now)
  redis.call('SADD', index, name)
end
redis.call('HINCRBY', key, field, 1)
local up = tonumber(redis.call('HGET', key, 'upvotes'))
local down = tonumber(redis.call('HGET', key, 'downvotes'))
local total = up + down
local trust = math.floor((200 * up + total) / (2 * total))
redis.call('HSET', key, 'trust_score', trust, 'updated_at', now)
return redis.call('HGETALL', key)
`)

var insertIfAbsentScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'domain', ARGV[1], 'trust_score', ARGV[2], 'upvotes', ARGV[3],
  'downvotes', ARGV[4], 'category', ARGV[5], 'created_at', ARGV[6], 'updated_at', ARGV[7])
redis.call('SADD', KEYS[2], ARGV[1])
return 1
`)

// Store implements the reputation store on Redis.
type Store struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// New creates a Store whose keys start with prefix.
func New(client redis.Cmdable, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) key(domainName string) string {
	return s.prefix + ":reputation:" + domainName
}

func (s *Store) indexKey() string {
	return s.prefix + ":reputations"
}

// FindByDomain retrieves a record by its registrable domain.
func (s *Store) FindByDomain(ctx context.Context, domainName string) (*domain.SourceReputation, error) {
	fields, err := s.client.HGetAll(ctx, s.key(domainName)).Result()
	if err != nil {
		return nil, fmt.Errorf("get source reputation: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrReputationNotFound
	}
	return decode(fields)
}

// InsertIfAbsent stores rec unless its hash exists.
func (s *Store) InsertIfAbsent(ctx context.Context, rec *domain.SourceReputation) (bool, error) {
	n, err := insertIfAbsentScript.Run(ctx, s.client,
		[]string{s.key(rec.Domain), s.indexKey()},
		rec.Domain, rec.TrustScore, rec.Upvotes, rec.Downvotes, rec.Category,
		rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return false, fmt.Errorf("insert source reputation: %w", err)
	}
	return n == 1, nil
}

// UpsertVote applies vote atomically through a Lua script.
func (s *Store) UpsertVote(ctx context.Context, domainName string, vote domain.Vote) (*domain.SourceReputation, error) {
	field := "downvotes"
	if vote == domain.VoteUp {
		field = "upvotes"
	}

	flat, err := upsertVoteScript.Run(ctx, s.client,
		[]string{s.key(domainName), s.indexKey()},
		domainName, field, s.now().Format(time.RFC3339Nano), domain.CategoryFromFeedback, domain.DefaultTrustScore,
	).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("upsert vote: %w", err)
	}

	fields := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		fields[flat[i]] = flat[i+1]
	}
	return decode(fields)
}

// List loads every indexed record and filters in memory.
func (s *Store) List(ctx context.Context, filter domain.ReputationFilter) ([]*domain.SourceReputation, int, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("list source reputations: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, 0, len(names))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, name := range names {
			cmds = append(cmds, pipe.HGetAll(ctx, s.key(name)))
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("load source reputations: %w", err)
	}

	recs := make([]*domain.SourceReputation, 0, len(cmds))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		rec, decodeErr := decode(fields)
		if decodeErr != nil {
			return nil, 0, decodeErr
		}
		recs = append(recs, rec)
	}

	page, total := domain.ApplyFilter(recs, filter)
	return page, total, nil
}

func decode(fields map[string]string) (*domain.SourceReputation, error) {
	rec := &domain.SourceReputation{
		Domain:   fields["domain"],
		Category: fields["category"],
	}

	var err error
	ints := []struct {
		name string
		dst  *int
	}{
		{"trust_score", &rec.TrustScore},
		{"upvotes", &rec.Upvotes},
		{"downvotes", &rec.Downvotes},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(fields[f.name]); err != nil {
			return nil, fmt.Errorf("decode %s of %s: %w", f.name, rec.Domain, err)
		}
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, fields["created_at"]); err != nil {
		return nil, fmt.Errorf("decode created_at of %s: %w", rec.Domain, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields["updated_at"]); err != nil {
		return nil, fmt.Errorf("decode updated_at of %s: %w", rec.Domain, err)
	}
	return rec, nil
}
