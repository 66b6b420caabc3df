package redisstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
	"github.com/jonesrussell/north-cloud/credibility/internal/redisstore"
)

func newStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisstore.New(client, "test"), mr
}

func TestStore_VoteLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newStore(t)

	_, err := store.FindByDomain(ctx, "new-site.test")
	require.ErrorIs(t, err, domain.ErrReputationNotFound)

	rec, err := store.UpsertVote(ctx, "new-site.test", domain.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Upvotes)
	assert.Equal(t, 0, rec.Downvotes)
	assert.Equal(t, 100, rec.TrustScore)
	assert.Equal(t, domain.CategoryFromFeedback, rec.Category)

	rec, err = store.UpsertVote(ctx, "new-site.test", domain.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 50, rec.TrustScore)

	found, err := store.FindByDomain(ctx, "new-site.test")
	require.NoError(t, err)
	assert.Equal(t, rec, found)

	members, err := mr.SMembers("test:reputations")
	require.NoError(t, err)
	assert.Equal(t, []string{"new-site.test"}, members)
}

func TestStore_TrustMatchesDomainRule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newStore(t)

	up, down := 0, 0
	for i := range 12 {
		v := domain.VoteDown
		if i%3 == 0 {
			v = domain.VoteUp
			up++
		} else {
			down++
		}
		rec, err := store.UpsertVote(ctx, "thirds.test", v)
		require.NoError(t, err)
		assert.Equal(t, domain.TrustFromVotes(up, down), rec.TrustScore, "after %d/%d", up, down)
	}
}

func TestStore_ConcurrentVotes(t *testing.T) {
	t.Parallel()

	const n = 50
	ctx := context.Background()
	store, _ := newStore(t)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.UpsertVote(ctx, "busy.test", domain.VoteUp); err != nil {
				t.Errorf("UpsertVote: %v", err)
			}
		}()
	}
	wg.Wait()

	rec, err := store.FindByDomain(ctx, "busy.test")
	require.NoError(t, err)
	assert.Equal(t, n, rec.Upvotes)
}

func TestStore_InsertIfAbsentAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newStore(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, trust := range map[string]int{"kompas.com": 90, "tempo.co": 80, "gosip.test": 10} {
		rec := domain.NewSourceReputation(name, "national", now)
		rec.TrustScore = trust
		ok, err := store.InsertIfAbsent(ctx, rec)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := store.InsertIfAbsent(ctx, domain.NewSourceReputation("kompas.com", "x", now))
	require.NoError(t, err)
	assert.False(t, ok)

	kompas, err := store.FindByDomain(ctx, "kompas.com")
	require.NoError(t, err)
	assert.Equal(t, 90, kompas.TrustScore)
	assert.True(t, kompas.CreatedAt.Equal(now))

	page, total, err := store.List(ctx, domain.ReputationFilter{SortBy: domain.SortByTrustScore, SortOrder: domain.SortDesc, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "kompas.com", page[0].Domain)
	assert.Equal(t, "tempo.co", page[1].Domain)
}

func TestStore_BackendDown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newStore(t)
	mr.Close()

	_, err := store.UpsertVote(ctx, "a.test", domain.VoteUp)
	require.Error(t, err)
	_, err = store.FindByDomain(ctx, "a.test")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrReputationNotFound)
}
