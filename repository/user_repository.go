package repository

import (
	"context"
	"strings"
	"time"

	"github.com/yashrajoria/storefront-backend/database"
	"github.com/yashrajoria/storefront-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(database.UsersCollection)}
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt, user.UpdatedAt = now, now
	if user.SavedAddresses == nil {
		user.SavedAddresses = []models.Address{}
	}
	if user.CartData == nil {
		user.CartData = map[string]int{}
	}
	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return duplicate(err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Update applies $set. Keys mapped to nil are removed with $unset instead.
func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error {
	setDoc := bson.M{"updatedAt": time.Now().UTC()}
	unsetDoc := bson.M{}
	for k, v := range set {
		if v == nil {
			unsetDoc[k] = ""
			continue
		}
		setDoc[k] = v
	}
	update := bson.M{"$set": setDoc}
	if len(unsetDoc) > 0 {
		update["$unset"] = unsetDoc
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.Address, primaryID string) error {
	if addresses == nil {
		addresses = []models.Address{}
	}
	var primary interface{}
	if primaryID != "" {
		primary = primaryID
	}
	return r.Update(ctx, id, map[string]interface{}{
		"savedAddresses":   addresses,
		"primaryAddressId": primary,
	})
}

func (r *UserRepository) SetCartData(ctx context.Context, id primitive.ObjectID, cartData map[string]int) error {
	if cartData == nil {
		cartData = map[string]int{}
	}
	return r.Update(ctx, id, map[string]interface{}{"cartData": cartData})
}
