package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"recipehub/internal/models"
	"recipehub/internal/repository"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetActiveByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) NameExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FollowerIDs(ctx context.Context, id int64) ([]int64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockUserRepository) FollowingIDs(ctx context.Context, id int64) ([]int64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id int64, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockUserRepository) ToggleFollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) DeleteAccount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) HighestFollowRatio(ctx context.Context) (*models.FollowRatio, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowRatio), args.Error(1)
}

// MockRecipeRepository mocks the RecipeRepository interface
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) GetNameByID(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecipeRepository) UpdateTimes(ctx context.Context, id int64, cook, prep *string) (*models.Recipe, error) {
	args := m.Called(ctx, id, cook, prep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Search(ctx context.Context, query repository.RecipeSearchQuery) ([]models.Recipe, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) FeedByFollowed(ctx context.Context, userID int64, category *string, page, pageSize int) ([]models.Recipe, int64, error) {
	args := m.Called(ctx, userID, category, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) ClosestCaloriePair(ctx context.Context) (*models.CaloriePair, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CaloriePair), args.Error(1)
}

func (m *MockRecipeRepository) TopComplex(ctx context.Context, limit int) ([]models.ComplexRecipe, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ComplexRecipe), args.Error(1)
}

// MockReviewRepository mocks the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, reviewID, recipeID int64) error {
	args := m.Called(ctx, reviewID, recipeID)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) ExistsByRecipeAndAuthor(ctx context.Context, recipeID, authorID int64) (bool, error) {
	args := m.Called(ctx, recipeID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Like(ctx context.Context, reviewID, userID int64) (int64, error) {
	args := m.Called(ctx, reviewID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) Unlike(ctx context.Context, reviewID, userID int64) (int64, error) {
	args := m.Called(ctx, reviewID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) ListByRecipe(ctx context.Context, recipeID int64, page, pageSize int, sortKey string) ([]repository.ReviewWithLikes, int64, error) {
	args := m.Called(ctx, recipeID, page, pageSize, sortKey)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]repository.ReviewWithLikes), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) RecomputeAggregates(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}
