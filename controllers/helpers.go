package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/common/logger"
	"github.com/yashrajoria/storefront-backend/common/middleware"
	"go.uber.org/zap"
)

// respondOK writes {success:true, ...payload}.
func respondOK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondMessage(c *gin.Context, msg string) {
	respondOK(c, http.StatusOK, gin.H{"message": msg})
}

// handleServiceError maps service errors to the failure envelope. Only the
// client-facing message is written; wrapped causes of 5xx errors are logged.
func handleServiceError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	if appErr.Code >= http.StatusInternalServerError {
		logger.Error(c, "request failed", err, zap.String("path", c.FullPath()))
	}
	c.JSON(appErr.Code, appErr.Body())
}

// bindJSON binds and validates the body, writing a 400 on failure.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": bindErrorMessage(err)})
		return false
	}
	return true
}

func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldMessage(verrs[0])
	}
	return "Invalid request body"
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please enter a valid email"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "len":
		return fe.Field() + " must be " + fe.Param() + " characters"
	case "numeric":
		return fe.Field() + " must be numeric"
	case "category":
		return "Invalid category"
	default:
		return fe.Field() + " is invalid"
	}
}

// currentUser reads the id set by middleware.RequireUser.
func currentUser(c *gin.Context) (string, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, login again"})
	}
	return id, ok
}
