package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"recipehub/internal/apperrors"
	"recipehub/internal/dto"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

func newRecipeService(recipeRepo *MockRecipeRepository, userRepo *MockUserRepository) RecipeService {
	return NewRecipeService(recipeRepo, userRepo, nil, zap.NewNop())
}

func activeUser(id int64) *models.User {
	return &models.User{ID: id, Name: "author", Gender: "Male", Age: 30}
}

func TestCreateCanonicalizesTimesAndDerivesTotal(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)

	userRepo.On("GetActiveByID", mock.Anything, int64(1)).Return(activeUser(1), nil)
	recipeRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Recipe")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Recipe).ID = 42
		}).
		Return(nil)

	recipe, err := svc.Create(context.Background(), 1, dto.CreateRecipeRequest{
		Name:        "Shakshuka",
		CookTime:    "1h30m", // lenient input, stored canonically
		PrepTime:    "PT15M",
		Ingredients: []string{"eggs", " tomatoes ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), recipe.ID)
	assert.Equal(t, "PT1H30M", recipe.CookTime)
	assert.Equal(t, "PT15M", recipe.PrepTime)
	assert.Equal(t, "PT1H45M", recipe.TotalTime)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "tomatoes", recipe.Ingredients[1].Name)
}

func TestCreateRejectsBadInput(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)
	userRepo.On("GetActiveByID", mock.Anything, int64(1)).Return(activeUser(1), nil)

	_, err := svc.Create(context.Background(), 1, dto.CreateRecipeRequest{Name: "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(context.Background(), 1, dto.CreateRecipeRequest{
		Name:     "Soup",
		CookTime: "not a duration",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	recipeRepo.AssertNotCalled(t, "Create")
}

func TestDeleteAuthorOnly(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)

	recipeRepo.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Recipe{ID: 42, AuthorID: 1}, nil)

	err := svc.Delete(context.Background(), 2, 42)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	recipeRepo.AssertNotCalled(t, "Delete")

	recipeRepo.On("Delete", mock.Anything, int64(42)).Return(nil)
	require.NoError(t, svc.Delete(context.Background(), 1, 42))
	recipeRepo.AssertExpectations(t)
}

func TestUpdateTimesNoopWhenBothBlank(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)

	stored := &models.Recipe{ID: 42, AuthorID: 1, CookTime: "PT1H", PrepTime: "PT10M", TotalTime: "PT1H10M"}
	recipeRepo.On("GetByID", mock.Anything, int64(42)).Return(stored, nil)

	recipe, err := svc.UpdateTimes(context.Background(), 1, 42, dto.UpdateTimesRequest{})
	require.NoError(t, err)
	assert.Equal(t, "PT1H10M", recipe.TotalTime)
	recipeRepo.AssertNotCalled(t, "UpdateTimes")
}

func TestUpdateTimesStrictOnNewValues(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)

	recipeRepo.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Recipe{ID: 42, AuthorID: 1}, nil)

	// A supplied value that fails strict parsing fails the whole call.
	_, err := svc.UpdateTimes(context.Background(), 1, 42, dto.UpdateTimesRequest{CookTime: "eleventy"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	recipeRepo.AssertNotCalled(t, "UpdateTimes")
}

func TestUpdateTimesCanonicalizesSuppliedValue(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)

	recipeRepo.On("GetByID", mock.Anything, int64(42)).
		Return(&models.Recipe{ID: 42, AuthorID: 1, PrepTime: "PT10M"}, nil)

	canonical := "PT1H30M"
	updated := &models.Recipe{ID: 42, AuthorID: 1, CookTime: canonical, PrepTime: "PT10M", TotalTime: "PT1H40M"}
	recipeRepo.On("UpdateTimes", mock.Anything, int64(42), &canonical, (*string)(nil)).Return(updated, nil)

	recipe, err := svc.UpdateTimes(context.Background(), 1, 42, dto.UpdateTimesRequest{CookTime: "90"})
	require.NoError(t, err)
	assert.Equal(t, "PT1H40M", recipe.TotalTime)
	recipeRepo.AssertExpectations(t)
}

func TestSearchValidatesPaging(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)

	_, _, err := svc.Search(context.Background(), repository.RecipeSearchQuery{Page: 0, PageSize: 10})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = svc.Search(context.Background(), repository.RecipeSearchQuery{Page: 1, PageSize: 0})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	recipeRepo.AssertNotCalled(t, "Search")
}

func TestFeedClampsPaging(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)

	userRepo.On("GetActiveByID", mock.Anything, int64(7)).Return(activeUser(7), nil)
	// page 0 clamps to 1, size 9000 clamps to 200.
	recipeRepo.On("FeedByFollowed", mock.Anything, int64(7), (*string)(nil), 1, 200).
		Return([]models.Recipe{}, int64(0), nil)

	_, _, err := svc.Feed(context.Background(), 7, nil, 0, 9000)
	require.NoError(t, err)
	recipeRepo.AssertExpectations(t)
}

func TestGetByIDMissingRecipe(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)

	recipeRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTop3MostComplexUsesFixedLimit(t *testing.T) {
	recipeRepo := new(MockRecipeRepository)
	userRepo := new(MockUserRepository)
	svc := newRecipeService(recipeRepo, userRepo)

	recipeRepo.On("TopComplex", mock.Anything, 3).
		Return([]models.ComplexRecipe{{RecipeID: 2, Name: "Cassoulet", IngredientCount: 18}}, nil)

	results, err := svc.Top3MostComplex(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Cassoulet", results[0].Name)
	recipeRepo.AssertExpectations(t)
}
