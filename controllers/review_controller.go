package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-backend/services"
)

type ReviewController struct {
	reviews ReviewServiceAPI
}

func NewReviewController(reviews ReviewServiceAPI) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// Create handles POST /api/review/create
func (rc *ReviewController) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := rc.reviews.Create(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"message": "Review added", "review": review})
}

// CanReview handles POST /api/review/can-review
func (rc *ReviewController) CanReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.ProductRefRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := rc.reviews.CanReview(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"canReview":       e.CanReview,
		"hasPurchased":    e.HasPurchased,
		"alreadyReviewed": e.AlreadyReviewed,
	})
}

// UserReview handles POST /api/review/user-review
func (rc *ReviewController) UserReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.ProductRefRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := rc.reviews.UserReview(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"review": review})
}

// ListByProduct handles GET /api/review/product/:id
func (rc *ReviewController) ListByProduct(c *gin.Context) {
	res, err := rc.reviews.ListByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"reviews":       res.Reviews,
		"averageRating": res.AverageRating,
		"count":         res.Count,
	})
}
