package controllers

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
)

var registerOnce sync.Once

// RegisterValidators adds the storefront's custom tags to gin's validator.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			return f.Kind() == reflect.String && models.IsValidCategory(f.String())
		})
	})
}

// jsonFieldName makes validation messages use the wire field names.
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// RequestValidator parses query parameters that binding tags cannot express.
type RequestValidator struct{}

func NewRequestValidator() *RequestValidator {
	RegisterValidators()
	return &RequestValidator{}
}

// ParseProductFilter reads ?category= and ?bestseller=.
func (rv *RequestValidator) ParseProductFilter(c *gin.Context) (models.ProductFilter, error) {
	var f models.ProductFilter
	if cat := strings.ToLower(strings.TrimSpace(c.Query("category"))); cat != "" {
		if !models.IsValidCategory(cat) {
			return f, apperrors.ErrValidation.WithMessage("Invalid category")
		}
		f.Category = cat
	}
	if raw := strings.TrimSpace(c.Query("bestseller")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperrors.ErrValidation.WithMessage("bestseller must be true or false")
		}
		f.Bestseller = &b
	}
	return f, nil
}
