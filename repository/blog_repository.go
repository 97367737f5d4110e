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

type BlogRepository struct {
	collection *mongo.Collection
}

func NewBlogRepository(db *mongo.Database) *BlogRepository {
	return &BlogRepository{collection: db.Collection(database.BlogsCollection)}
}

func (r *BlogRepository) FindAll(ctx context.Context) ([]models.BlogPost, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.BlogPost{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&post); err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (r *BlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	now := time.Now().UTC()
	post.CreatedAt, post.UpdatedAt = now, now
	res, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		return duplicate(err)
	}
	post.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *BlogRepository) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error {
	doc := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range set {
		doc[k] = v
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": doc})
	if err != nil {
		return duplicate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
