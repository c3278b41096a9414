package subscribers

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Subscriber is a newsletter/notification signup captured from the
// storefront.
type Subscriber struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Repository is a pass-through store for subscriber documents.
type Repository interface {
	Insert(ctx context.Context, subscriber Subscriber) (*Subscriber, error)
	FindByEmail(ctx context.Context, email string) (*Subscriber, error)
	List(ctx context.Context) ([]Subscriber, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(coll *mongo.Collection) Repository {
	return &repository{coll: coll}
}

func (r *repository) Insert(ctx context.Context, subscriber Subscriber) (*Subscriber, error) {
	if subscriber.ID.IsZero() {
		subscriber.ID = primitive.NewObjectID()
	}
	if subscriber.CreatedAt.IsZero() {
		subscriber.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, subscriber); err != nil {
		return nil, err
	}
	return &subscriber, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Subscriber, error) {
	var subscriber Subscriber
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&subscriber)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}

func (r *repository) List(ctx context.Context) ([]Subscriber, error) {
	cursor, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []Subscriber{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"email": email})
	return err
}
