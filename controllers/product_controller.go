package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-backend/services"
)

type ProductController struct {
	products  ProductServiceAPI
	validator *RequestValidator
}

func NewProductController(products ProductServiceAPI, validator *RequestValidator) *ProductController {
	if validator == nil {
		validator = NewRequestValidator()
	}
	return &ProductController{products: products, validator: validator}
}

// List handles GET /api/product/list?category=&bestseller=
func (pc *ProductController) List(c *gin.Context) {
	filter, err := pc.validator.ParseProductFilter(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	products, err := pc.products.List(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"products": products})
}

type productIDRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// Single handles POST /api/product/single
func (pc *ProductController) Single(c *gin.Context) {
	var req productIDRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := pc.products.Single(c.Request.Context(), req.ProductID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"product": p})
}

// Add handles POST /api/product/add
func (pc *ProductController) Add(c *gin.Context) {
	var req services.AddProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := pc.products.Add(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"message": "Product added", "product": p})
}

// Update handles POST /api/product/update
func (pc *ProductController) Update(c *gin.Context) {
	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := pc.products.Update(c.Request.Context(), req); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Product updated")
}

// Restock handles POST /api/product/restock
func (pc *ProductController) Restock(c *gin.Context) {
	var req services.RestockRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := pc.products.Restock(c.Request.Context(), req); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Stock updated")
}

// Remove handles POST /api/product/remove
func (pc *ProductController) Remove(c *gin.Context) {
	var req services.IDRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := pc.products.Remove(c.Request.Context(), req.ID); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Product removed")
}

// ImageUploadURL handles POST /api/product/image-upload-url
func (pc *ProductController) ImageUploadURL(c *gin.Context) {
	var req services.ImageUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := pc.products.ImageUploadURL(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"upload": u})
}
