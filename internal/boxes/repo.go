package boxes

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines persistence operations for the boxes collection.
type Repository interface {
	Insert(ctx context.Context, box Box) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Box, error)
	FindByDay(ctx context.Context, day string) ([]Box, error)
	FindByDayAndProduct(ctx context.Context, day string, productID int64) (*Box, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	DeleteByDay(ctx context.Context, day string) (int64, error)
	PushProduct(ctx context.Context, boxID primitive.ObjectID, field string, product Product) error
	PullProduct(ctx context.Context, boxID primitive.ObjectID, field string, productID primitive.ObjectID) error
	SetActiveByID(ctx context.Context, id primitive.ObjectID, active bool) error
	SetActiveByDay(ctx context.Context, day string, active bool) (int64, error)
	DeliveryDays(ctx context.Context) ([]string, error)
}

// ProductField maps a public list name onto its bson field.
func ProductField(list string) (string, error) {
	switch list {
	case ListIncluded:
		return "included_products", nil
	case ListAddOn:
		return "add_on_products", nil
	default:
		return "", fmt.Errorf("unknown product list %q", list)
	}
}

type repository struct {
	coll *mongo.Collection
}

// NewRepository builds a boxes repository bound to the provided collection.
func NewRepository(coll *mongo.Collection) Repository {
	return &repository{coll: coll}
}

func (r *repository) Insert(ctx context.Context, box Box) (primitive.ObjectID, error) {
	if box.ID.IsZero() {
		box.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, box); err != nil {
		return primitive.NilObjectID, err
	}
	return box.ID, nil
}

func (r *repository) FindByID(ctx context.Context, id primitive.ObjectID) (*Box, error) {
	var box Box
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&box)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &box, nil
}

func (r *repository) FindByDay(ctx context.Context, day string) ([]Box, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"delivered": day},
		options.Find().SetSort(bson.D{{Key: "shopify_sku", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := []Box{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) FindByDayAndProduct(ctx context.Context, day string, productID int64) (*Box, error) {
	var box Box
	filter := bson.M{"delivered": day, "shopify_product_id": productID}
	err := r.coll.FindOne(ctx, filter).Decode(&box)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &box, nil
}

func (r *repository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *repository) DeleteByDay(ctx context.Context, day string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"delivered": day})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *repository) PushProduct(ctx context.Context, boxID primitive.ObjectID, field string, product Product) error {
	update := bson.M{"$push": bson.M{field: product}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": boxID}, update)
	return err
}

func (r *repository) PullProduct(ctx context.Context, boxID primitive.ObjectID, field string, productID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{field: bson.M{"_id": productID}}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": boxID}, update)
	return err
}

func (r *repository) SetActiveByID(ctx context.Context, id primitive.ObjectID, active bool) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": active}})
	return err
}

func (r *repository) SetActiveByDay(ctx context.Context, day string, active bool) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, bson.M{"delivered": day}, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *repository) DeliveryDays(ctx context.Context) ([]string, error) {
	raw, err := r.coll.Distinct(ctx, "delivered", bson.M{"delivered": bson.M{"$ne": CoreBoxDay}})
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
