// Package recipe implements the catalogue: browsing with filters and
// pagination, recipe detail with similar suggestions, home page highlights,
// and owner-scoped create and update.
package recipe

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

// PageSize is the number of recipes per catalogue page.
const PageSize = 9

// MaxSimilar caps the similar-recipe suggestions on the detail page.
const MaxSimilar = 3

// MaxHighlights caps the home page highlight strip.
const MaxHighlights = 3

// Catalogue sort orders. SortNewArrivals is the default.
const (
	SortAZ          = "A-Z"
	SortZA          = "Z-A"
	SortNewArrivals = "newArrivals"
	SortPrepTime    = "preparationTime"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName     = "recipe_name"
	fieldNameLC   = "name_lc"
	fieldCategory = "category_id"
	fieldImageURL = "image_url"
	fieldPrepTime = "preparation_time"
	fieldServing  = "serving_size"
	fieldIngr     = "ingredients"
	fieldSteps    = "steps"
)

type ListParams struct {
	CategoryID string
	Search     string
	Sort       string
	Page       int // 1-based
}

type ListResult struct {
	Recipes    []domain.Recipe `json:"recipes"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      int             `json:"total"`
}

type Service interface {
	// List returns one catalogue page after filtering and sorting. A page
	// beyond the last returns an empty page, not an error.
	List(ctx context.Context, params ListParams) (*ListResult, error)

	// Get returns the recipe and up to MaxSimilar others from its category.
	Get(ctx context.Context, recipeID string) (*domain.Recipe, []domain.Recipe, error)

	// Highlights returns the newest recipes, at most one per category.
	Highlights(ctx context.Context) ([]domain.Recipe, error)

	Create(ctx context.Context, userID string, req domain.CreateRecipeRequest, img *domain.ImageUpload) (*domain.Recipe, error)

	// Update applies a partial update. Only the recipe's owner may update it.
	Update(ctx context.Context, userID, recipeID string, req domain.UpdateRecipeRequest, img *domain.ImageUpload) (*domain.Recipe, error)
}

type recipeStore interface {
	Put(ctx context.Context, rec *domain.Recipe) error
	Get(ctx context.Context, recipeID string) (*domain.Recipe, error)
	GetByNameLC(ctx context.Context, nameLC string) (*domain.Recipe, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Recipe, error)
	Scan(ctx context.Context) ([]domain.Recipe, error)
	Update(ctx context.Context, recipeID string, updates map[string]interface{}) error
}

type categoryStore interface {
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Scan(ctx context.Context) ([]domain.Category, error)
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type ServiceDeps struct {
	Recipes    recipeStore
	Categories categoryStore
	Images     imageStore
}

type service struct {
	recipes    recipeStore
	categories categoryStore
	images     imageStore
}

func NewService(d ServiceDeps) Service {
	return &service{
		recipes:    d.Recipes,
		categories: d.Categories,
		images:     d.Images,
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var recipes []domain.Recipe
	var err error
	if params.CategoryID != "" {
		recipes, err = s.recipes.ListByCategory(ctx, params.CategoryID)
	} else {
		recipes, err = s.recipes.Scan(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	if search := strings.ToLower(strings.TrimSpace(params.Search)); search != "" {
		filtered := recipes[:0]
		for _, rec := range recipes {
			if strings.Contains(rec.NameLC, search) {
				filtered = append(filtered, rec)
			}
		}
		recipes = filtered
	}

	sortRecipes(recipes, params.Sort)

	total := len(recipes)
	totalPages := (total + PageSize - 1) / PageSize
	page := params.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start > total {
		start = total
	}
	end := start + PageSize
	if end > total {
		end = total
	}
	pageRecipes := recipes[start:end]

	if err := s.resolveCategoryNames(ctx, pageRecipes); err != nil {
		return nil, err
	}
	return &ListResult{
		Recipes:    pageRecipes,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

func sortRecipes(recipes []domain.Recipe, order string) {
	switch order {
	case SortAZ:
		sort.SliceStable(recipes, func(i, j int) bool { return recipes[i].NameLC < recipes[j].NameLC })
	case SortZA:
		sort.SliceStable(recipes, func(i, j int) bool { return recipes[i].NameLC > recipes[j].NameLC })
	case SortPrepTime:
		sort.SliceStable(recipes, func(i, j int) bool {
			return recipes[i].PreparationTime < recipes[j].PreparationTime
		})
	default: // SortNewArrivals
		sort.SliceStable(recipes, func(i, j int) bool {
			return recipes[i].CreatedAt.After(recipes[j].CreatedAt)
		})
	}
}

func (s *service) Get(ctx context.Context, recipeID string) (*domain.Recipe, []domain.Recipe, error) {
	rec, err := s.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, nil, fmt.Errorf("get recipe: %w", err)
	}
	if cat, err := s.categories.Get(ctx, rec.CategoryID); err == nil {
		rec.CategoryName = cat.Name
	}

	siblings, err := s.recipes.ListByCategory(ctx, rec.CategoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("list similar recipes: %w", err)
	}
	sortRecipes(siblings, SortNewArrivals)
	similar := make([]domain.Recipe, 0, MaxSimilar)
	for _, sib := range siblings {
		if sib.RecipeID == rec.RecipeID {
			continue
		}
		sib.CategoryName = rec.CategoryName
		similar = append(similar, sib)
		if len(similar) == MaxSimilar {
			break
		}
	}
	return rec, similar, nil
}

func (s *service) Highlights(ctx context.Context) ([]domain.Recipe, error) {
	recipes, err := s.recipes.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan recipes: %w", err)
	}
	sortRecipes(recipes, SortNewArrivals)

	seen := make(map[string]bool)
	highlights := make([]domain.Recipe, 0, MaxHighlights)
	for _, rec := range recipes {
		if seen[rec.CategoryID] {
			continue
		}
		seen[rec.CategoryID] = true
		highlights = append(highlights, rec)
		if len(highlights) == MaxHighlights {
			break
		}
	}
	if err := s.resolveCategoryNames(ctx, highlights); err != nil {
		return nil, err
	}
	return highlights, nil
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateRecipeRequest, img *domain.ImageUpload) (*domain.Recipe, error) {
	ext, err := validateImage(img, true)
	if err != nil {
		return nil, err
	}

	if _, err := s.categories.Get(ctx, req.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown category: %w", domain.ErrBadRequest)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	nameLC := strings.ToLower(name)
	if existing, err := s.recipes.GetByNameLC(ctx, nameLC); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check recipe name: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("recipe name already taken: %w", domain.ErrConflict)
	}

	recipeID := id.New()
	imageURL, err := s.images.Upload(ctx, "recipes/"+recipeID+ext, img.Body, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload recipe image: %w", err)
	}

	now := time.Now()
	rec := &domain.Recipe{
		RecipeID:        recipeID,
		UserID:          userID,
		CategoryID:      req.CategoryID,
		Name:            name,
		NameLC:          nameLC,
		ImageURL:        imageURL,
		PreparationTime: req.PreparationTime,
		ServingSize:     req.ServingSize,
		Ingredients:     req.Ingredients,
		Steps:           req.Steps,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.recipes.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("put recipe: %w", err)
	}
	return rec, nil
}

func (s *service) Update(ctx context.Context, userID, recipeID string, req domain.UpdateRecipeRequest, img *domain.ImageUpload) (*domain.Recipe, error) {
	rec, err := s.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if rec.UserID != userID {
		return nil, fmt.Errorf("not the recipe owner: %w", domain.ErrForbidden)
	}

	updates := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		nameLC := strings.ToLower(name)
		if nameLC != rec.NameLC {
			if existing, err := s.recipes.GetByNameLC(ctx, nameLC); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("check recipe name: %w", err)
			} else if existing != nil {
				return nil, fmt.Errorf("recipe name already taken: %w", domain.ErrConflict)
			}
		}
		updates[fieldName] = name
		updates[fieldNameLC] = nameLC
		rec.Name, rec.NameLC = name, nameLC
	}
	if req.CategoryID != nil {
		if _, err := s.categories.Get(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("unknown category: %w", domain.ErrBadRequest)
			}
			return nil, fmt.Errorf("get category: %w", err)
		}
		updates[fieldCategory] = *req.CategoryID
		rec.CategoryID = *req.CategoryID
	}
	if req.PreparationTime != nil {
		updates[fieldPrepTime] = *req.PreparationTime
		rec.PreparationTime = *req.PreparationTime
	}
	if req.ServingSize != nil {
		updates[fieldServing] = *req.ServingSize
		rec.ServingSize = *req.ServingSize
	}
	if req.Ingredients != nil {
		updates[fieldIngr] = req.Ingredients
		rec.Ingredients = req.Ingredients
	}
	if req.Steps != nil {
		updates[fieldSteps] = req.Steps
		rec.Steps = req.Steps
	}

	if img != nil {
		ext, err := validateImage(img, false)
		if err != nil {
			return nil, err
		}
		imageURL, err := s.images.Upload(ctx, "recipes/"+recipeID+ext, img.Body, img.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload recipe image: %w", err)
		}
		updates[fieldImageURL] = imageURL
		rec.ImageURL = imageURL
	}

	if len(updates) == 0 {
		return rec, nil
	}
	if err := s.recipes.Update(ctx, recipeID, updates); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	rec.UpdatedAt = time.Now()
	return rec, nil
}

// validateImage checks presence, content type and size. It returns the file
// extension to use for the stored object.
func validateImage(img *domain.ImageUpload, required bool) (string, error) {
	if img == nil {
		if required {
			return "", fmt.Errorf("recipe image is required: %w", domain.ErrBadRequest)
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

func (s *service) resolveCategoryNames(ctx context.Context, recipes []domain.Recipe) error {
	names := make(map[string]string)
	for i := range recipes {
		name, ok := names[recipes[i].CategoryID]
		if !ok {
			cat, err := s.categories.Get(ctx, recipes[i].CategoryID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("get category: %w", err)
				}
			} else {
				name = cat.Name
			}
			names[recipes[i].CategoryID] = name
		}
		recipes[i].CategoryName = name
	}
	return nil
}
