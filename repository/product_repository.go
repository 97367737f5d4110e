package repository

import (
	"context"
	"time"

	"github.com/yashrajoria/storefront-backend/database"
	"github.com/yashrajoria/storefront-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{collection: db.Collection(database.ProductsCollection)}
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (r *ProductRepository) Find(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Bestseller != nil {
		filter["bestseller"] = *f.Bestseller
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return duplicate(err)
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	set := bson.M{}
	for k, v := range updates {
		set[k] = v
	}
	set["updatedAt"] = time.Now().UTC()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return duplicate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceVariants swaps the variant list in one pipeline update. A SKU that
// already exists keeps its stored stock, so concurrent checkout decrements
// are not overwritten; only new SKUs take the stock they were sent with.
func (r *ProductRepository) ReplaceVariants(ctx context.Context, id primitive.ObjectID, variants []models.Variant) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, variantsReplacement(variants, time.Now().UTC()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func variantsReplacement(variants []models.Variant, now time.Time) mongo.Pipeline {
	current := bson.M{"$arrayElemAt": bson.A{
		bson.M{"$filter": bson.M{
			"input": bson.M{"$ifNull": bson.A{"$variants", bson.A{}}},
			"as":    "ov",
			"cond":  bson.M{"$eq": bson.A{"$$ov.sku", "$$nv.sku"}},
		}},
		0,
	}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"variants": bson.M{"$map": bson.M{
				"input": bson.M{"$literal": variants},
				"as":    "nv",
				"in": bson.M{"$mergeObjects": bson.A{
					"$$nv",
					bson.M{"stock": bson.M{"$let": bson.M{
						"vars": bson.M{"old": current},
						"in":   bson.M{"$ifNull": bson.A{"$$old.stock", "$$nv.stock"}},
					}}},
				}},
			}},
			"updatedAt": now,
		}}},
	}
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock is a single conditional update: the positional $inc only
// applies when the matched variant still holds at least qty units.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID primitive.ObjectID, sku string, qty int) (bool, error) {
	filter := bson.M{
		"_id": productID,
		"variants": bson.M{"$elemMatch": bson.M{
			"sku":   sku,
			"stock": bson.M{"$gte": qty},
		}},
	}
	update := bson.M{
		"$inc": bson.M{"variants.$.stock": -qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, productID primitive.ObjectID, sku string, qty int) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": productID, "variants.sku": sku},
		bson.M{
			"$inc": bson.M{"variants.$.stock": qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
