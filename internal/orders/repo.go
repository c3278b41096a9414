package orders

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines persistence operations for the orders collection.
type Repository interface {
	// Insert stores the order unless its id already exists. The bool result
	// reports whether a new document was created.
	Insert(ctx context.Context, order Order) (bool, error)
	Update(ctx context.Context, order Order) error
	Remove(ctx context.Context, id int64, orderNumber string) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByDay(ctx context.Context, day string, sources []string) ([]Order, error)
	DeliveryDays(ctx context.Context) ([]string, error)
	ReassignDay(ctx context.Context, ids []int64, day string) (int64, error)
	Count(ctx context.Context, day string) (int64, error)
}

type repository struct {
	coll *mongo.Collection
}

// NewRepository builds an orders repository bound to the provided collection.
func NewRepository(coll *mongo.Collection) Repository {
	return &repository{coll: coll}
}

func (r *repository) Insert(ctx context.Context, order Order) (bool, error) {
	filter := bson.M{"_id": order.ID}
	update := bson.M{"$setOnInsert": order}
	res, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (r *repository) Update(ctx context.Context, order Order) error {
	filter := bson.M{"_id": order.ID}
	_, err := r.coll.ReplaceOne(ctx, filter, order)
	return err
}

func (r *repository) Remove(ctx context.Context, id int64, orderNumber string) error {
	filter := bson.M{"_id": id}
	if orderNumber != "" {
		filter["order_number"] = orderNumber
	}
	_, err := r.coll.DeleteOne(ctx, filter)
	return err
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Order, error) {
	var order Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByDay(ctx context.Context, day string, sources []string) ([]Order, error) {
	filter := bson.M{"delivered": day}
	if len(sources) > 0 {
		filter["source"] = bson.M{"$in": sources}
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []Order{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) DeliveryDays(ctx context.Context) ([]string, error) {
	raw, err := r.coll.Distinct(ctx, "delivered", bson.M{})
	if err != nil {
		return nil, err
	}
	days := make([]string, 0, len(raw))
	for _, value := range raw {
		if day, ok := value.(string); ok {
			days = append(days, day)
		}
	}
	return days, nil
}

func (r *repository) ReassignDay(ctx context.Context, ids []int64, day string) (int64, error) {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	update := bson.M{"$set": bson.M{"delivered": day}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *repository) Count(ctx context.Context, day string) (int64, error) {
	filter := bson.M{}
	if day != "" {
		filter["delivered"] = day
	}
	return r.coll.CountDocuments(ctx, filter)
}
