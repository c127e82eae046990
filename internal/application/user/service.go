package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashif1996/recipe-nest/internal/domain"
	"github.com/ashif1996/recipe-nest/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFavourites = "favourites"
)

type Service interface {
	// Register creates the account. The caller is responsible for having
	// completed email verification first.
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)

	// Login returns a signed bearer token and the user on success.
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error)

	Get(ctx context.Context, userID string) (*domain.User, error)

	AddFavourite(ctx context.Context, userID, recipeID string) error
	RemoveFavourite(ctx context.Context, userID, recipeID string) error
	ListFavourites(ctx context.Context, userID string) ([]domain.Recipe, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type recipeStore interface {
	Get(ctx context.Context, recipeID string) (*domain.Recipe, error)
}

type categoryStore interface {
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
}

type tokenSigner interface {
	Sign(userID, email, firstName, lastName string) (string, error)
}

type ServiceDeps struct {
	Users      userStore
	Recipes    recipeStore
	Categories categoryStore
	Signer     tokenSigner
}

type service struct {
	users      userStore
	recipes    recipeStore
	categories categoryStore
	signer     tokenSigner
}

func NewService(d ServiceDeps) Service {
	return &service{
		users:      d.Users,
		recipes:    d.Recipes,
		categories: d.Categories,
		signer:     d.Signer,
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	u := &domain.User{
		UserID:       id.New(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Favourites:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, fmt.Errorf("put user: %w", err)
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return "", nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("incorrect password: %w", domain.ErrUnauthorized)
	}

	bearer, err := s.signer.Sign(u.UserID, u.Email, u.FirstName, u.LastName)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return bearer, u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *service) AddFavourite(ctx context.Context, userID, recipeID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if _, err := s.recipes.Get(ctx, recipeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("recipe not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("get recipe: %w", err)
	}
	for _, fav := range u.Favourites {
		if fav == recipeID {
			return fmt.Errorf("recipe already in favourites: %w", domain.ErrConflict)
		}
	}
	updates := map[string]interface{}{
		fieldFavourites: append(u.Favourites, recipeID),
	}
	if err := s.users.Update(ctx, userID, updates); err != nil {
		return fmt.Errorf("update favourites: %w", err)
	}
	return nil
}

func (s *service) RemoveFavourite(ctx context.Context, userID, recipeID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	kept := make([]string, 0, len(u.Favourites))
	for _, fav := range u.Favourites {
		if fav != recipeID {
			kept = append(kept, fav)
		}
	}
	if len(kept) == len(u.Favourites) {
		return fmt.Errorf("recipe not in favourites: %w", domain.ErrNotFound)
	}
	updates := map[string]interface{}{
		fieldFavourites: kept,
	}
	if err := s.users.Update(ctx, userID, updates); err != nil {
		return fmt.Errorf("update favourites: %w", err)
	}
	return nil
}

// ListFavourites resolves the user's favourite recipe IDs into full recipes.
// IDs pointing at recipes that have since been removed are skipped.
func (s *service) ListFavourites(ctx context.Context, userID string) ([]domain.Recipe, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	categoryNames := make(map[string]string)
	recipes := make([]domain.Recipe, 0, len(u.Favourites))
	for _, recipeID := range u.Favourites {
		rec, err := s.recipes.Get(ctx, recipeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get recipe %s: %w", recipeID, err)
		}
		name, ok := categoryNames[rec.CategoryID]
		if !ok {
			if cat, err := s.categories.Get(ctx, rec.CategoryID); err == nil {
				name = cat.Name
			}
			categoryNames[rec.CategoryID] = name
		}
		rec.CategoryName = name
		recipes = append(recipes, *rec)
	}
	return recipes, nil
}
