package settings

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Setting is a free-form key/value pair the storefront admin reads and
// writes. The value shape is owned by the frontend.
type Setting struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Key   string             `bson:"key" json:"key"`
	Value bson.M             `bson:"value" json:"value"`
}

// Repository is a pass-through store for settings documents.
type Repository interface {
	Upsert(ctx context.Context, setting Setting) (*Setting, error)
	FindByKey(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context) ([]Setting, error)
	DeleteByKey(ctx context.Context, key string) error
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(coll *mongo.Collection) Repository {
	return &repository{coll: coll}
}

func (r *repository) Upsert(ctx context.Context, setting Setting) (*Setting, error) {
	filter := bson.M{"key": setting.Key}
	update := bson.M{"$set": bson.M{"value": setting.Value}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored Setting
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *repository) FindByKey(ctx context.Context, key string) (*Setting, error) {
	var setting Setting
	err := r.coll.FindOne(ctx, bson.M{"key": key}).Decode(&setting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repository) List(ctx context.Context) ([]Setting, error) {
	cursor, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []Setting{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) DeleteByKey(ctx context.Context, key string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"key": key})
	return err
}
