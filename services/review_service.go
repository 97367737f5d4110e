package services

import (
	"context"
	"errors"
	"math"
	"strings"

	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CreateReviewRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=2000"`
}

type ProductRefRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type ReviewService struct {
	reviews         repository.ReviewRepo
	orders          repository.OrderRepo
	users           repository.UserRepo
	requirePurchase bool
	log             *zap.Logger
}

func NewReviewService(reviews repository.ReviewRepo, orders repository.OrderRepo, users repository.UserRepo, requirePurchase bool, log *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders, users: users, requirePurchase: requirePurchase, log: log}
}

func (s *ReviewService) CanReview(ctx context.Context, userID, productID string) (*models.ReviewEligibility, error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput.WithMessage("Invalid product id")
	}

	existing, err := s.reviews.FindByUserAndProduct(ctx, userID, productID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	purchased, err := s.orders.HasPurchased(ctx, userID, pid, models.PurchasedStatuses)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}

	e := &models.ReviewEligibility{
		HasPurchased:    purchased,
		AlreadyReviewed: existing != nil,
	}
	e.CanReview = !e.AlreadyReviewed && (purchased || !s.requirePurchase)
	return e, nil
}

// Create stores a review. One review per user and product; the verified
// purchase flag is decided here and never recomputed.
func (s *ReviewService) Create(ctx context.Context, userID string, req CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ErrValidation.WithMessage("Rating must be between 1 and 5")
	}
	elig, err := s.CanReview(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if elig.AlreadyReviewed {
		return nil, apperrors.ErrDuplicateReview
	}
	if s.requirePurchase && !elig.HasPurchased {
		return nil, apperrors.ErrForbidden.WithMessage("Only customers who bought this product can review it")
	}

	review := &models.Review{
		UserID:             userID,
		ProductID:          req.ProductID,
		Rating:             req.Rating,
		Comment:            strings.TrimSpace(req.Comment),
		IsVerifiedPurchase: elig.HasPurchased,
	}
	if uid, err := primitive.ObjectIDFromHex(userID); err == nil {
		if user, err := s.users.FindByID(ctx, uid); err == nil {
			review.UserName, review.UserEmail = user.Name, user.Email
		}
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateReview
		}
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	s.log.Info("review created",
		zap.String("user_id", userID),
		zap.String("product_id", req.ProductID),
		zap.Bool("verified_purchase", review.IsVerifiedPurchase),
	)
	return review, nil
}

func (s *ReviewService) UserReview(ctx context.Context, userID, productID string) (*models.Review, error) {
	r, err := s.reviews.FindByUserAndProduct(ctx, userID, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return r, nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID string) (*models.ProductReviews, error) {
	reviews, err := s.reviews.FindByProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	out := &models.ProductReviews{Reviews: reviews, Count: len(reviews)}
	if out.Reviews == nil {
		out.Reviews = []models.Review{}
	}
	if out.Count > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		out.AverageRating = math.Round(float64(sum)/float64(out.Count)*10) / 10
	}
	return out, nil
}
