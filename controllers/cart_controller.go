package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/services"
)

type CartController struct {
	carts CartServiceAPI
}

func NewCartController(carts CartServiceAPI) *CartController {
	return &CartController{carts: carts}
}

func writeCart(c *gin.Context, v *models.CartView) {
	payload := gin.H{"cart": v}
	if v.Notice != "" {
		payload["message"] = v.Notice
	}
	respondOK(c, http.StatusOK, payload)
}

// GetCart handles GET /api/cart
func (cc *CartController) GetCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	v, err := cc.carts.Get(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeCart(c, v)
}

// AddToCart handles POST /api/cart/add. Exceeding stock is a 200 with a
// message and an unchanged cart.
func (cc *CartController) AddToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := cc.carts.Add(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeCart(c, v)
}

// UpdateCart handles POST /api/cart/update
func (cc *CartController) UpdateCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.UpdateCartRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := cc.carts.UpdateQuantity(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeCart(c, v)
}

// RemoveFromCart handles POST /api/cart/remove
func (cc *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CartKeyRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := cc.carts.Remove(c.Request.Context(), userID, req.Key)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeCart(c, v)
}

// MoveToWishlist handles POST /api/cart/move-to-wishlist
func (cc *CartController) MoveToWishlist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CartKeyRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := cc.carts.MoveToWishlist(c.Request.Context(), userID, req.Key)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	writeCart(c, v)
}

// GetWishlist handles GET /api/cart/wishlist
func (cc *CartController) GetWishlist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := cc.carts.Wishlist(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"wishlist": items})
}

// ValidateCart handles POST /api/cart/validate
func (cc *CartController) ValidateCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	issues, err := cc.carts.ValidateForCheckout(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"valid": len(issues) == 0, "issues": issues})
}
