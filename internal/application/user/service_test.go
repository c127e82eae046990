package user

import (
	"context"
	"errors"
	"testing"

	"github.com/ashif1996/recipe-nest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockRecipeStore struct{ mock.Mock }

func (m *mockRecipeStore) Get(ctx context.Context, recipeID string) (*domain.Recipe, error) {
	args := m.Called(ctx, recipeID)
	if r, _ := args.Get(0).(*domain.Recipe); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCategoryStore struct{ mock.Mock }

func (m *mockCategoryStore) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if c, _ := args.Get(0).(*domain.Category); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID, email, firstName, lastName string) (string, error) {
	args := m.Called(userID, email, firstName, lastName)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newService(us *mockUserStore, rs *mockRecipeStore, cs *mockCategoryStore, sg *mockSigner) Service {
	return NewService(ServiceDeps{
		Users:      us,
		Recipes:    rs,
		Categories: cs,
		Signer:     sg,
	})
}

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		FirstName:       "Alice",
		LastName:        "Smith",
		Email:           "alice@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
}

// --- Register ---

func TestRegister_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "alice@example.com" &&
			u.UserID != "" &&
			u.PasswordHash != "" &&
			u.PasswordHash != "password123"
	})).Return(nil)

	svc := newService(us, nil, nil, nil)
	u, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	us.AssertExpectations(t)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)

	req := baseReq()
	req.Email = "  Alice@Example.COM "

	svc := newService(us, nil, nil, nil)
	u, err := svc.Register(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	us.AssertExpectations(t)
}

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{}, nil)

	svc := newService(us, nil, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- Login ---

func TestLogin_HappyPath(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{
		UserID:       "u1",
		FirstName:    "Alice",
		LastName:     "Smith",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}, nil)
	sg := &mockSigner{}
	sg.On("Sign", "u1", "alice@example.com", "Alice", "Smith").Return("token", nil)

	svc := newService(us, nil, nil, sg)
	bearer, u, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "token", bearer)
	assert.Equal(t, "u1", u.UserID)
	sg.AssertExpectations(t)
}

func TestLogin_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{
		UserID:       "u1",
		PasswordHash: string(hash),
	}, nil)

	svc := newService(us, nil, nil, nil)
	_, _, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- favourites ---

func TestAddFavourite_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Favourites: []string{"r1"}}, nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{
		fieldFavourites: []string{"r1", "r2"},
	}).Return(nil)
	rs := &mockRecipeStore{}
	rs.On("Get", mock.Anything, "r2").Return(&domain.Recipe{RecipeID: "r2"}, nil)

	svc := newService(us, rs, nil, nil)
	require.NoError(t, svc.AddFavourite(context.Background(), "u1", "r2"))
	us.AssertExpectations(t)
}

func TestAddFavourite_UnknownRecipe(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	rs := &mockRecipeStore{}
	rs.On("Get", mock.Anything, "r9").Return(nil, domain.ErrNotFound)

	svc := newService(us, rs, nil, nil)
	err := svc.AddFavourite(context.Background(), "u1", "r9")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddFavourite_Duplicate(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Favourites: []string{"r1"}}, nil)
	rs := &mockRecipeStore{}
	rs.On("Get", mock.Anything, "r1").Return(&domain.Recipe{RecipeID: "r1"}, nil)

	svc := newService(us, rs, nil, nil)
	err := svc.AddFavourite(context.Background(), "u1", "r1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveFavourite_NotInList(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Favourites: []string{"r1"}}, nil)

	svc := newService(us, nil, nil, nil)
	err := svc.RemoveFavourite(context.Background(), "u1", "r9")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRemoveFavourite_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Favourites: []string{"r1", "r2"}}, nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{
		fieldFavourites: []string{"r2"},
	}).Return(nil)

	svc := newService(us, nil, nil, nil)
	require.NoError(t, svc.RemoveFavourite(context.Background(), "u1", "r1"))
	us.AssertExpectations(t)
}

func TestListFavourites_SkipsRemovedRecipes(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:     "u1",
		Favourites: []string{"r1", "gone", "r2"},
	}, nil)
	rs := &mockRecipeStore{}
	rs.On("Get", mock.Anything, "r1").Return(&domain.Recipe{RecipeID: "r1", CategoryID: "c1", Name: "Dosa"}, nil)
	rs.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)
	rs.On("Get", mock.Anything, "r2").Return(&domain.Recipe{RecipeID: "r2", CategoryID: "c1", Name: "Idli"}, nil)
	cs := &mockCategoryStore{}
	cs.On("Get", mock.Anything, "c1").Return(&domain.Category{CategoryID: "c1", Name: "Breakfast"}, nil)

	svc := newService(us, rs, cs, nil)
	recipes, err := svc.ListFavourites(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Breakfast", recipes[0].CategoryName)
	assert.Equal(t, "Breakfast", recipes[1].CategoryName)
	// Category resolved once and cached for the second recipe.
	cs.AssertNumberOfCalls(t, "Get", 1)
}
