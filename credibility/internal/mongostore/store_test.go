package mongostore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
	"github.com/jonesrussell/north-cloud/credibility/internal/mongostore"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func reputationDoc(name string, trust, up, down int, category string) bson.D {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "domain", Value: name},
		{Key: "trust_score", Value: int32(trust)},
		{Key: "upvotes", Value: int32(up)},
		{Key: "downvotes", Value: int32(down)},
		{Key: "total_votes", Value: int32(up + down)},
		{Key: "category", Value: category},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
}

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find existing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			reputationDoc("kompas.com", 90, 9, 1, "national")))

		rec, err := mongostore.New(mt.Coll, 2).FindByDomain(ctx, "kompas.com")
		require.NoError(mt, err)
		assert.Equal(mt, 90, rec.TrustScore)
		assert.Equal(mt, 10, rec.TotalVotes())
		assert.Equal(mt, "national", rec.Category)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := mongostore.New(mt.Coll, 2).FindByDomain(ctx, "missing.test")
		require.ErrorIs(mt, err, domain.ErrReputationNotFound)
	})

	mt.Run("upsert vote", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: reputationDoc("new-site.test", 100, 1, 0, domain.CategoryFromFeedback)},
		))

		rec, err := mongostore.New(mt.Coll, 2).UpsertVote(ctx, "new-site.test", domain.VoteUp)
		require.NoError(mt, err)
		assert.Equal(mt, 100, rec.TrustScore)
		assert.Equal(mt, 1, rec.Upvotes)
		assert.Equal(mt, domain.CategoryFromFeedback, rec.Category)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
	})

	mt.Run("upsert vote retries duplicate key", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"}),
			mtest.CreateSuccessResponse(
				bson.E{Key: "value", Value: reputationDoc("race.test", 50, 1, 1, domain.CategoryFromFeedback)},
			),
		)

		rec, err := mongostore.New(mt.Coll, 2).UpsertVote(ctx, "race.test", domain.VoteDown)
		require.NoError(mt, err)
		assert.Equal(mt, 50, rec.TrustScore)
	})

	mt.Run("upsert vote gives up", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad pipeline"}))

		_, err := mongostore.New(mt.Coll, 2).UpsertVote(ctx, "x.test", domain.VoteUp)
		require.Error(mt, err)
	})

	mt.Run("insert if absent", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: int32(1)},
				bson.E{Key: "nModified", Value: int32(0)},
				bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: int32(0)}, {Key: "_id", Value: primitive.NewObjectID()}}}},
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}, bson.E{Key: "nModified", Value: int32(0)}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}),
		)

		store := mongostore.New(mt.Coll, 2)
		rec := domain.NewSourceReputation("kompas.com", "national", time.Now())

		inserted, err := store.InsertIfAbsent(ctx, rec)
		require.NoError(mt, err)
		assert.True(mt, inserted)

		inserted, err = store.InsertIfAbsent(ctx, rec)
		require.NoError(mt, err)
		assert.False(mt, inserted)

		inserted, err = store.InsertIfAbsent(ctx, rec)
		require.NoError(mt, err)
		assert.False(mt, inserted)
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
				reputationDoc("kompas.com", 90, 9, 1, "national"),
				reputationDoc("tempo.co", 80, 4, 1, "national"),
			),
		)

		page, total, err := mongostore.New(mt.Coll, 2).List(ctx, domain.ReputationFilter{
			Category:  "national",
			SortBy:    domain.SortByTrustScore,
			SortOrder: domain.SortDesc,
		})
		require.NoError(mt, err)
		assert.Equal(mt, 2, total)
		require.Len(mt, page, 2)
		assert.Equal(mt, "kompas.com", page[0].Domain)
	})
}
