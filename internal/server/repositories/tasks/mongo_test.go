package tasks

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

func taskDoc(id, title, status, owner string) bson.D {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "description", Value: ""},
		{Key: "status", Value: status},
		{Key: "user_id", Value: owner},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
}

// findAndModifyResponse mimics the server reply to findAndModify.
func findAndModifyResponse(doc bson.D) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc})
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		task, err := repo.Create(ctx, &models.Task{Title: "a", Status: models.TaskStatusPending, UserID: "u-1"})
		require.NoError(mt, err)
		assert.NotEmpty(mt, task.ID)
	})

	mt.Run("list by owner", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, taskDoc("t-1", "a", "Pending", "u-1")),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch, taskDoc("t-2", "b", "Completed", "u-1")),
		)

		got, err := repo.ListByOwner(ctx, "u-1")
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, models.TaskStatusCompleted, got[1].Status)
	})

	mt.Run("get by owner missing", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByOwner(ctx, "u-2", "t-1")
		assert.ErrorIs(mt, err, common.ErrorNotFound)
	})

	mt.Run("complete", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(taskDoc("t-1", "a", "Completed", "u-1")))

		got, err := repo.CompleteByOwner(ctx, "u-1", "t-1")
		require.NoError(mt, err)
		assert.Equal(mt, models.TaskStatusCompleted, got.Status)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		query, ok := started.Command.Lookup("query").DocumentOK()
		require.True(mt, ok)
		assert.Equal(mt, "Completed", query.Lookup("status", "$ne").StringValue())
	})

	mt.Run("update applies patch", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(taskDoc("t-1", "renamed", "Pending", "u-1")))

		title := "renamed"
		got, err := repo.UpdateByOwner(ctx, "u-1", "t-1", models.TaskPatch{Title: &title})
		require.NoError(mt, err)
		assert.Equal(mt, "renamed", got.Title)
	})

	mt.Run("delete by owner", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(taskDoc("t-1", "gone", "Pending", "u-1")))

		got, err := repo.DeleteByOwner(ctx, "u-1", "t-1")
		require.NoError(mt, err)
		assert.Equal(mt, "gone", got.Title)
	})

	mt.Run("delete all by owner", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		n, err := repo.DeleteAllByOwner(ctx, "u-1")
		require.NoError(mt, err)
		assert.EqualValues(mt, 2, n)
	})
}
