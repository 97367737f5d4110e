package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-backend/services"
)

type BlogController struct {
	blogs BlogServiceAPI
}

func NewBlogController(blogs BlogServiceAPI) *BlogController {
	return &BlogController{blogs: blogs}
}

// List handles GET /api/blog/list. The payload is written as served by the cache.
func (bc *BlogController) List(c *gin.Context) {
	payload, err := bc.blogs.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// GetBySlug handles GET /api/blog/:slug
func (bc *BlogController) GetBySlug(c *gin.Context) {
	post, err := bc.blogs.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"blog": post})
}

// Add handles POST /api/blog/add
func (bc *BlogController) Add(c *gin.Context) {
	var req services.CreateBlogRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := bc.blogs.Add(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"message": "Blog added", "blog": post})
}

// Edit handles POST /api/blog/edit
func (bc *BlogController) Edit(c *gin.Context) {
	var req services.EditBlogRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := bc.blogs.Edit(c.Request.Context(), req); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Blog updated")
}

// Remove handles POST /api/blog/remove
func (bc *BlogController) Remove(c *gin.Context) {
	var req services.IDRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := bc.blogs.Remove(c.Request.Context(), req.ID); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Blog removed")
}
