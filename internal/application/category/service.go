package category

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ashif1996/recipe-nest/internal/domain"
	"github.com/ashif1996/recipe-nest/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName        = "category_name"
	fieldNameLC      = "name_lc"
	fieldDescription = "description"
	fieldImageURL    = "image_url"
)

type Service interface {
	// List returns all categories sorted by name.
	List(ctx context.Context) ([]domain.Category, error)

	Get(ctx context.Context, categoryID string) (*domain.Category, error)

	Create(ctx context.Context, userID string, req domain.CreateCategoryRequest, img *domain.ImageUpload) (*domain.Category, error)

	// Update applies a partial update. Only the category's creator may update it.
	Update(ctx context.Context, userID, categoryID string, req domain.UpdateCategoryRequest, img *domain.ImageUpload) (*domain.Category, error)
}

type categoryStore interface {
	Put(ctx context.Context, c *domain.Category) error
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	GetByNameLC(ctx context.Context, nameLC string) (*domain.Category, error)
	Scan(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type ServiceDeps struct {
	Categories categoryStore
	Images     imageStore
}

type service struct {
	categories categoryStore
	images     imageStore
}

func NewService(d ServiceDeps) Service {
	return &service{categories: d.Categories, images: d.Images}
}

func (s *service) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].NameLC < categories[j].NameLC })
	return categories, nil
}

func (s *service) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.categories.Get(ctx, categoryID)
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateCategoryRequest, img *domain.ImageUpload) (*domain.Category, error) {
	ext, err := validateImage(img, true)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	nameLC := strings.ToLower(name)
	if existing, err := s.categories.GetByNameLC(ctx, nameLC); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check category name: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("category name already taken: %w", domain.ErrConflict)
	}

	categoryID := id.New()
	imageURL, err := s.images.Upload(ctx, "categories/"+categoryID+ext, img.Body, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload category image: %w", err)
	}

	now := time.Now()
	c := &domain.Category{
		CategoryID:  categoryID,
		UserID:      userID,
		Name:        name,
		NameLC:      nameLC,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    imageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("put category: %w", err)
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, userID, categoryID string, req domain.UpdateCategoryRequest, img *domain.ImageUpload) (*domain.Category, error) {
	c, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c.UserID != userID {
		return nil, fmt.Errorf("not the category creator: %w", domain.ErrForbidden)
	}

	updates := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		nameLC := strings.ToLower(name)
		if nameLC != c.NameLC {
			if existing, err := s.categories.GetByNameLC(ctx, nameLC); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("check category name: %w", err)
			} else if existing != nil {
				return nil, fmt.Errorf("category name already taken: %w", domain.ErrConflict)
			}
		}
		updates[fieldName] = name
		updates[fieldNameLC] = nameLC
		c.Name, c.NameLC = name, nameLC
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		updates[fieldDescription] = desc
		c.Description = desc
	}

	if img != nil {
		ext, err := validateImage(img, false)
		if err != nil {
			return nil, err
		}
		imageURL, err := s.images.Upload(ctx, "categories/"+categoryID+ext, img.Body, img.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload category image: %w", err)
		}
		updates[fieldImageURL] = imageURL
		c.ImageURL = imageURL
	}

	if len(updates) == 0 {
		return c, nil
	}
	if err := s.categories.Update(ctx, categoryID, updates); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	c.UpdatedAt = time.Now()
	return c, nil
}

func validateImage(img *domain.ImageUpload, required bool) (string, error) {
	if img == nil {
		if required {
			return "", fmt.Errorf("category image is required: %w", domain.ErrBadRequest)
		}
		return "", nil
	}
	ext, ok := domain.ImageExt(img.ContentType)
	if !ok {
		return "", fmt.Errorf("unsupported image type %q: %w", img.ContentType, domain.ErrBadRequest)
	}
	if img.Size > domain.MaxImageSize {
		return "", fmt.Errorf("image exceeds %d bytes: %w", int64(domain.MaxImageSize), domain.ErrBadRequest)
	}
	return ext, nil
}
