package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func userDoc(id, email string, admin bool) bson.D {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "email", Value: email},
		{Key: "password", Value: "hash"},
		{Key: "is_admin", Value: admin},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := repo.Create(ctx, &models.User{Email: "a@example.com", Password: "hash"})
		require.NoError(mt, err)
		assert.NotEmpty(mt, u.ID)
		assert.False(mt, u.CreatedAt.IsZero())
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := repo.Create(ctx, &models.User{Email: "a@example.com", Password: "hash"})
		assert.ErrorIs(mt, err, common.ErrorAlreadyExists)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc("u-1", "a@example.com", true)))

		u, err := repo.GetByEmail(ctx, "a@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u-1", u.ID)
		assert.True(mt, u.IsAdmin)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(mt, err, common.ErrorNotFound)
	})

	mt.Run("update matched and unmatched", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		u := &models.User{ID: "u-1", Email: "a@example.com", Password: "hash"}
		require.NoError(mt, repo.Update(ctx, u))
		assert.ErrorIs(mt, repo.Update(ctx, u), common.ErrorNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		require.NoError(mt, repo.Delete(ctx, "u-1"))
		assert.ErrorIs(mt, repo.Delete(ctx, "u-1"), common.ErrorNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				userDoc("u-1", "a@example.com", false),
				userDoc("u-2", "b@example.com", true)),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		got, err := repo.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "b@example.com", got[1].Email)
	})

	mt.Run("tokens valid after", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		at := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "u-1"}, {Key: "tokens_valid_after", Value: at}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: "u-2"}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		require.NoError(mt, repo.SetTokensValidAfter(ctx, "u-1", at))

		got, ok, err := repo.TokensValidAfter(ctx, "u-1")
		require.NoError(mt, err)
		assert.True(mt, ok)
		assert.True(mt, at.Equal(got), "got %v want %v", got, at)

		_, ok, err = repo.TokensValidAfter(ctx, "u-2")
		require.NoError(mt, err)
		assert.False(mt, ok)

		_, _, err = repo.TokensValidAfter(ctx, "missing")
		assert.ErrorIs(mt, err, common.ErrorNotFound)

		assert.ErrorIs(mt, repo.SetTokensValidAfter(ctx, "missing", at), common.ErrorNotFound)
	})
}
