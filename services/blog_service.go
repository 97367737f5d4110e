package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/yashrajoria/storefront-backend/cache"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	awspkg "github.com/yashrajoria/storefront-backend/pkg/aws"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CreateBlogRequest struct {
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"coverImage" binding:"omitempty,url"`
	Author     string   `json:"author"`
	Tags       []string `json:"tags"`
}

// EditBlogRequest only changes the fields it carries.
type EditBlogRequest struct {
	ID         string    `json:"id" binding:"required"`
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Excerpt    *string   `json:"excerpt"`
	CoverImage *string   `json:"coverImage"`
	Author     *string   `json:"author"`
	Tags       *[]string `json:"tags"`
}

type IDRequest struct {
	ID string `json:"id" binding:"required"`
}

type blogListPayload struct {
	Success bool              `json:"success"`
	Blogs   []models.BlogPost `json:"blogs"`
}

type BlogService struct {
	repo    repository.BlogRepo
	cache   cache.ListCache
	metrics awspkg.Recorder
	log     *zap.Logger
}

func NewBlogService(repo repository.BlogRepo, listCache cache.ListCache, metrics awspkg.Recorder, log *zap.Logger) *BlogService {
	if metrics == nil {
		metrics = awspkg.NopRecorder{}
	}
	return &BlogService{repo: repo, cache: listCache, metrics: metrics, log: log}
}

// List returns the serialized list response. Within the cache TTL and
// without writes in between, repeated calls return the same bytes.
func (s *BlogService) List(ctx context.Context) ([]byte, error) {
	payload, version, ok := s.cache.Get(ctx)
	if ok {
		_ = s.metrics.RecordCount(ctx, awspkg.MetricCacheHits, map[string]string{"Cache": "blogs"})
		return payload, nil
	}
	_ = s.metrics.RecordCount(ctx, awspkg.MetricCacheMisses, map[string]string{"Cache": "blogs"})

	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	if posts == nil {
		posts = []models.BlogPost{}
	}
	payload, err = json.Marshal(blogListPayload{Success: true, Blogs: posts})
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	s.cache.Set(ctx, version, payload)
	return payload, nil
}

func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("Blog not found")
	}
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return post, nil
}

func (s *BlogService) Add(ctx context.Context, req CreateBlogRequest) (*models.BlogPost, error) {
	slug := Slugify(req.Title)
	if slug == "" {
		return nil, apperrors.ErrValidation.WithMessage("Title must contain letters or digits")
	}
	post := &models.BlogPost{
		Title:      strings.TrimSpace(req.Title),
		Slug:       slug,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Author:     req.Author,
		Tags:       req.Tags,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if err := s.repo.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrConflict.WithMessage("A post with this title already exists")
		}
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	s.invalidate(ctx)
	return post, nil
}

func (s *BlogService) Edit(ctx context.Context, req EditBlogRequest) error {
	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return apperrors.ErrInvalidInput.WithMessage("Invalid blog id")
	}

	set := map[string]interface{}{}
	if req.Title != nil {
		slug := Slugify(*req.Title)
		if slug == "" {
			return apperrors.ErrValidation.WithMessage("Title must contain letters or digits")
		}
		set["title"] = strings.TrimSpace(*req.Title)
		set["slug"] = slug
	}
	if req.Content != nil {
		set["content"] = *req.Content
	}
	if req.Excerpt != nil {
		set["excerpt"] = *req.Excerpt
	}
	if req.CoverImage != nil {
		set["coverImage"] = *req.CoverImage
	}
	if req.Author != nil {
		set["author"] = *req.Author
	}
	if req.Tags != nil {
		set["tags"] = *req.Tags
	}
	if len(set) == 0 {
		return apperrors.ErrValidation.WithMessage("Nothing to update")
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.ErrNotFound.WithMessage("Blog not found")
		case errors.Is(err, repository.ErrDuplicate):
			return apperrors.ErrConflict.WithMessage("A post with this title already exists")
		}
		return apperrors.ErrInternalServer.Wrap(err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *BlogService) Remove(ctx context.Context, blogID string) error {
	id, err := primitive.ObjectIDFromHex(blogID)
	if err != nil {
		return apperrors.ErrInvalidInput.WithMessage("Invalid blog id")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrNotFound.WithMessage("Blog not found")
		}
		return apperrors.ErrInternalServer.Wrap(err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *BlogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Error("failed to invalidate blog cache", zap.Error(err))
	}
}
