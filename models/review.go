package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID             string             `bson:"userId" json:"userId"`
	ProductID          string             `bson:"productId" json:"productId"`
	Rating             int                `bson:"rating" json:"rating"`
	Comment            string             `bson:"comment" json:"comment"`
	UserName           string             `bson:"userName" json:"userName"`
	UserEmail          string             `bson:"userEmail" json:"userEmail"`
	IsVerifiedPurchase bool               `bson:"isVerifiedPurchase" json:"isVerifiedPurchase"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}

// ReviewEligibility answers the can-review question.
type ReviewEligibility struct {
	CanReview       bool `json:"canReview"`
	HasPurchased    bool `json:"hasPurchased"`
	AlreadyReviewed bool `json:"alreadyReviewed"`
}

// ProductReviews is the public review listing for one product.
type ProductReviews struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"averageRating"`
	Count         int      `json:"count"`
}
