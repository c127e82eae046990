package category

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ashif1996/recipe-nest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCategoryStore struct{ mock.Mock }

func (m *mockCategoryStore) Put(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCategoryStore) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if c, _ := args.Get(0).(*domain.Category); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCategoryStore) GetByNameLC(ctx context.Context, nameLC string) (*domain.Category, error) {
	args := m.Called(ctx, nameLC)
	if c, _ := args.Get(0).(*domain.Category); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCategoryStore) Scan(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}
func (m *mockCategoryStore) Update(ctx context.Context, categoryID string, updates map[string]interface{}) error {
	return m.Called(ctx, categoryID, updates).Error(0)
}

type mockImageStore struct{ mock.Mock }

func (m *mockImageStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}

func newService(cs *mockCategoryStore, is *mockImageStore) Service {
	return NewService(ServiceDeps{Categories: cs, Images: is})
}

func pngUpload() *domain.ImageUpload {
	return &domain.ImageUpload{Body: strings.NewReader("img"), ContentType: "image/png", Size: 512}
}

func TestList_SortedByName(t *testing.T) {
	cs := &mockCategoryStore{}
	cs.On("Scan", mock.Anything).Return([]domain.Category{
		{CategoryID: "c2", Name: "Snacks", NameLC: "snacks"},
		{CategoryID: "c1", Name: "Breakfast", NameLC: "breakfast"},
	}, nil)

	svc := newService(cs, nil)
	categories, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Breakfast", categories[0].Name)
}

func TestCreate_HappyPath(t *testing.T) {
	cs := &mockCategoryStore{}
	cs.On("GetByNameLC", mock.Anything, "breakfast").Return(nil, domain.ErrNotFound)
	cs.On("Put", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Name == "Breakfast" && c.NameLC == "breakfast" && c.UserID == "u1" && c.ImageURL != ""
	})).Return(nil)
	is := &mockImageStore{}
	is.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "categories/") && strings.HasSuffix(key, ".png")
	}), mock.Anything, "image/png").Return("s3://bucket/categories/x.png", nil)

	svc := newService(cs, is)
	c, err := svc.Create(context.Background(), "u1", domain.CreateCategoryRequest{
		Name:        " Breakfast ",
		Description: "Morning meals",
	}, pngUpload())

	require.NoError(t, err)
	assert.NotEmpty(t, c.CategoryID)
	cs.AssertExpectations(t)
}

func TestCreate_MissingImage(t *testing.T) {
	svc := newService(&mockCategoryStore{}, &mockImageStore{})
	_, err := svc.Create(context.Background(), "u1", domain.CreateCategoryRequest{Name: "Breakfast"}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_DuplicateName(t *testing.T) {
	cs := &mockCategoryStore{}
	cs.On("GetByNameLC", mock.Anything, "breakfast").Return(&domain.Category{CategoryID: "c1"}, nil)

	svc := newService(cs, &mockImageStore{})
	_, err := svc.Create(context.Background(), "u1", domain.CreateCategoryRequest{Name: "Breakfast"}, pngUpload())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	cs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestUpdate_CreatorOnly(t *testing.T) {
	cs := &mockCategoryStore{}
	cs.On("Get", mock.Anything, "c1").Return(&domain.Category{CategoryID: "c1", UserID: "owner"}, nil)

	svc := newService(cs, &mockImageStore{})
	desc := "updated"
	_, err := svc.Update(context.Background(), "intruder", "c1", domain.UpdateCategoryRequest{Description: &desc}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	cs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_PartialFields(t *testing.T) {
	cs := &mockCategoryStore{}
	cs.On("Get", mock.Anything, "c1").Return(&domain.Category{
		CategoryID: "c1", UserID: "u1", Name: "Breakfast", NameLC: "breakfast", Description: "old",
	}, nil)
	cs.On("Update", mock.Anything, "c1", map[string]interface{}{
		fieldDescription: "new description",
	}).Return(nil)

	svc := newService(cs, &mockImageStore{})
	desc := "new description"
	c, err := svc.Update(context.Background(), "u1", "c1", domain.UpdateCategoryRequest{Description: &desc}, nil)

	require.NoError(t, err)
	assert.Equal(t, "new description", c.Description)
	assert.Equal(t, "Breakfast", c.Name)
	cs.AssertExpectations(t)
}

func TestUpdate_RenameToTakenName(t *testing.T) {
	cs := &mockCategoryStore{}
	cs.On("Get", mock.Anything, "c1").Return(&domain.Category{
		CategoryID: "c1", UserID: "u1", NameLC: "breakfast",
	}, nil)
	cs.On("GetByNameLC", mock.Anything, "snacks").Return(&domain.Category{CategoryID: "c2"}, nil)

	svc := newService(cs, &mockImageStore{})
	name := "Snacks"
	_, err := svc.Update(context.Background(), "u1", "c1", domain.UpdateCategoryRequest{Name: &name}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}
