package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "tasks"

type taskDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Status      string    `bson:"status"`
	UserID      string    `bson:"user_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d *taskDocument) toModel() *models.Task {
	return &models.Task{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      models.TaskStatus(d.Status),
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the owner index used by every scoped lookup.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func ownerFilter(userID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: userID}}
}

func (r *MongoRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	now := time.Now().UTC()
	doc := taskDocument{
		ID:          uuid.NewString(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		UserID:      task.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	task.ID = doc.ID
	task.CreatedAt = now
	task.UpdatedAt = now
	return task, nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.D) ([]*models.Task, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.Task, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].toModel())
	}
	return result, nil
}

func decodeOne(res *mongo.SingleResult) (*models.Task, error) {
	var doc taskDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	return r.find(ctx, bson.D{{Key: "user_id", Value: userID}})
}

func (r *MongoRepository) GetByOwner(ctx context.Context, userID, id string) (*models.Task, error) {
	return decodeOne(r.coll.FindOne(ctx, ownerFilter(userID, id)))
}

func (r *MongoRepository) updateOne(ctx context.Context, filter bson.D, set bson.D) (*models.Task, error) {
	set = append(set, bson.E{Key: "updated_at", Value: time.Now().UTC()})
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeOne(r.coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts))
}

func (r *MongoRepository) CompleteByOwner(ctx context.Context, userID, id string) (*models.Task, error) {
	completed := string(models.TaskStatusCompleted)
	filter := append(ownerFilter(userID, id), bson.E{Key: "status", Value: bson.D{{Key: "$ne", Value: completed}}})
	return r.updateOne(ctx, filter, bson.D{{Key: "status", Value: completed}})
}

func (r *MongoRepository) UpdateByOwner(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	return r.updateOne(ctx, ownerFilter(userID, id), set)
}

func (r *MongoRepository) DeleteByOwner(ctx context.Context, userID, id string) (*models.Task, error) {
	return decodeOne(r.coll.FindOneAndDelete(ctx, ownerFilter(userID, id)))
}

func (r *MongoRepository) DeleteAllByOwner(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.Task, error) {
	return r.find(ctx, bson.D{})
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (*models.Task, error) {
	return decodeOne(r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}))
}
