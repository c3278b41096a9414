package todos

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Todo is a warehouse task note, optionally pinned to a delivery day.
type Todo struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Text      string             `bson:"text" json:"text"`
	Delivered string             `bson:"delivered,omitempty" json:"delivered,omitempty"`
	Done      bool               `bson:"done" json:"done"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Repository is a pass-through store for todo documents.
type Repository interface {
	Insert(ctx context.Context, todo Todo) (*Todo, error)
	SetDone(ctx context.Context, id primitive.ObjectID, done bool) error
	List(ctx context.Context, day string) ([]Todo, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(coll *mongo.Collection) Repository {
	return &repository{coll: coll}
}

func (r *repository) Insert(ctx context.Context, todo Todo) (*Todo, error) {
	if todo.ID.IsZero() {
		todo.ID = primitive.NewObjectID()
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *repository) SetDone(ctx context.Context, id primitive.ObjectID, done bool) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"done": done}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *repository) List(ctx context.Context, day string) ([]Todo, error) {
	filter := bson.M{}
	if day != "" {
		filter["delivered"] = day
	}
	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []Todo{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
