package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	awspkg "github.com/yashrajoria/storefront-backend/pkg/aws"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const uploadURLExpiry = 15 * time.Minute

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type AddProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category" binding:"required,category"`
	Fabric      string           `json:"fabric"`
	Type        string           `json:"type"`
	Variants    []models.Variant `json:"variants" binding:"required,min=1,dive"`
	Images      []string         `json:"images"`
	Bestseller  bool             `json:"bestseller"`
}

// UpdateProductRequest replaces only the fields it carries.
type UpdateProductRequest struct {
	ID          string            `json:"id" binding:"required"`
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Category    *string           `json:"category" binding:"omitempty,category"`
	Fabric      *string           `json:"fabric"`
	Type        *string           `json:"type"`
	Variants    *[]models.Variant `json:"variants" binding:"omitempty,min=1,dive"`
	Images      *[]string         `json:"images"`
	Bestseller  *bool             `json:"bestseller"`
}

// RestockRequest adds units to one variant.
type RestockRequest struct {
	ID       string `json:"id" binding:"required"`
	SKU      string `json:"sku" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type ImageUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// ImagePresigner is satisfied by pkg/aws.S3Presigner.
type ImagePresigner interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (*awspkg.UploadURL, error)
}

type ProductService struct {
	repo      repository.ProductRepo
	presigner ImagePresigner
	log       *zap.Logger
}

func NewProductService(repo repository.ProductRepo, presigner ImagePresigner, log *zap.Logger) *ProductService {
	return &ProductService{repo: repo, presigner: presigner, log: log}
}

func validateVariants(variants []models.Variant) error {
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			return apperrors.ErrValidation.WithMessage("Every variant needs a SKU")
		}
		if _, dup := seen[sku]; dup {
			return apperrors.ErrValidation.WithMessage("Duplicate SKU " + sku)
		}
		seen[sku] = struct{}{}
		if v.Stock < 0 {
			return apperrors.ErrValidation.WithMessage("Stock cannot be negative")
		}
	}
	return nil
}

func (s *ProductService) Add(ctx context.Context, req AddProductRequest) (*models.Product, error) {
	if !models.IsValidCategory(req.Category) {
		return nil, apperrors.ErrValidation.WithMessage("Invalid category")
	}
	if err := validateVariants(req.Variants); err != nil {
		return nil, err
	}
	slug := Slugify(req.Name)
	if slug == "" {
		return nil, apperrors.ErrValidation.WithMessage("Name must contain letters or digits")
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Fabric:      req.Fabric,
		Type:        req.Type,
		Variants:    req.Variants,
		Images:      req.Images,
		Bestseller:  req.Bestseller,
		Slug:        slug,
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrConflict.WithMessage("A product with this name already exists")
		}
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	s.log.Info("product added", zap.String("product_id", product.ID.Hex()), zap.String("slug", slug))
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, req UpdateProductRequest) error {
	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return apperrors.ErrInvalidInput.WithMessage("Invalid product id")
	}

	set := map[string]interface{}{}
	if req.Name != nil {
		slug := Slugify(*req.Name)
		if slug == "" {
			return apperrors.ErrValidation.WithMessage("Name must contain letters or digits")
		}
		set["name"] = strings.TrimSpace(*req.Name)
		set["slug"] = slug
	}
	if req.Category != nil {
		if !models.IsValidCategory(*req.Category) {
			return apperrors.ErrValidation.WithMessage("Invalid category")
		}
		set["category"] = *req.Category
	}
	if req.Variants != nil {
		if err := validateVariants(*req.Variants); err != nil {
			return err
		}
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Fabric != nil {
		set["fabric"] = *req.Fabric
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if req.Images != nil {
		set["images"] = *req.Images
	}
	if req.Bestseller != nil {
		set["bestseller"] = *req.Bestseller
	}
	if len(set) == 0 && req.Variants == nil {
		return apperrors.ErrValidation.WithMessage("Nothing to update")
	}

	if len(set) > 0 {
		if err := s.repo.Update(ctx, id, set); err != nil {
			return productWriteError(err)
		}
	}
	if req.Variants != nil {
		if err := s.repo.ReplaceVariants(ctx, id, *req.Variants); err != nil {
			return productWriteError(err)
		}
	}
	return nil
}

// Restock adds units to an existing variant with an atomic increment.
func (s *ProductService) Restock(ctx context.Context, req RestockRequest) error {
	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return apperrors.ErrInvalidInput.WithMessage("Invalid product id")
	}
	if req.Quantity < 1 {
		return apperrors.ErrValidation.WithMessage("Quantity must be at least 1")
	}
	if err := s.repo.IncrementStock(ctx, id, req.SKU, req.Quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrNotFound.WithMessage("Variant not found")
		}
		return apperrors.ErrInternalServer.Wrap(err)
	}
	s.log.Info("variant restocked", zap.String("product_id", req.ID), zap.String("sku", req.SKU), zap.Int("quantity", req.Quantity))
	return nil
}

func productWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrNotFound.WithMessage("Product not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.ErrConflict.WithMessage("A product with this name already exists")
	}
	return apperrors.ErrInternalServer.Wrap(err)
}

func (s *ProductService) Remove(ctx context.Context, productID string) error {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return apperrors.ErrInvalidInput.WithMessage("Invalid product id")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrNotFound.WithMessage("Product not found")
		}
		return apperrors.ErrInternalServer.Wrap(err)
	}
	s.log.Info("product removed", zap.String("product_id", productID))
	return nil
}

func (s *ProductService) Single(ctx context.Context, productID string) (*models.Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput.WithMessage("Invalid product id")
	}
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("Product not found")
	}
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if filter.Category != "" && !models.IsValidCategory(filter.Category) {
		return nil, apperrors.ErrValidation.WithMessage("Invalid category")
	}
	products, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return products, nil
}

// ImageUploadURL presigns a PUT for a new product image under products/.
func (s *ProductService) ImageUploadURL(ctx context.Context, req ImageUploadRequest) (*awspkg.UploadURL, error) {
	if s.presigner == nil {
		return nil, apperrors.ErrServiceUnavailable.WithMessage("Image uploads are not configured")
	}
	ext, ok := imageExtensions[req.ContentType]
	if !ok {
		return nil, apperrors.ErrValidation.WithMessage("Unsupported image type")
	}
	key := "products/" + uuid.NewString() + ext

	u, err := s.presigner.PresignPut(ctx, key, req.ContentType, uploadURLExpiry)
	if err != nil {
		s.log.Error("failed to presign upload", zap.String("key", key), zap.Error(err))
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}
	return u, nil
}
