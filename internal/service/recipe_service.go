package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipehub/internal/apperrors"
	"recipehub/internal/cache"
	"recipehub/internal/dto"
	"recipehub/internal/duration"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

// Feed paging bounds, applied by clamping rather than rejection.
const (
	feedMaxPageSize     = 200
	feedDefaultPageSize = 20
)

type RecipeService interface {
	Create(ctx context.Context, authorID int64, req dto.CreateRecipeRequest) (*models.Recipe, error)
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	GetNameByID(ctx context.Context, id int64) (string, error)
	Delete(ctx context.Context, actorID, id int64) error
	UpdateTimes(ctx context.Context, actorID, id int64, req dto.UpdateTimesRequest) (*models.Recipe, error)
	Search(ctx context.Context, query repository.RecipeSearchQuery) ([]models.Recipe, int64, error)
	Feed(ctx context.Context, userID int64, category *string, page, pageSize int) ([]models.Recipe, int64, error)
	ClosestCaloriePair(ctx context.Context) (*models.CaloriePair, error)
	Top3MostComplex(ctx context.Context) ([]models.ComplexRecipe, error)
}

type recipeService struct {
	recipeRepo repository.RecipeRepository
	userRepo   repository.UserRepository
	cache      *cache.RecipeCache
	logger     *zap.Logger
}

func NewRecipeService(recipeRepo repository.RecipeRepository, userRepo repository.UserRepository, recipeCache *cache.RecipeCache, logger *zap.Logger) RecipeService {
	return &recipeService{
		recipeRepo: recipeRepo,
		userRepo:   userRepo,
		cache:      recipeCache,
		logger:     logger,
	}
}

// parseTimeField strictly parses non-blank duration text and returns it in
// canonical form. Blank input yields zero and an empty canonical string.
func parseTimeField(field, text string) (time.Duration, string, error) {
	if strings.TrimSpace(text) == "" {
		return 0, "", nil
	}
	d, err := duration.Parse(text)
	if err != nil {
		return 0, "", apperrors.Validationf("%s %q is not a valid duration", field, text)
	}
	return d, duration.Format(d), nil
}

// Create publishes a recipe under a freshly allocated id. Supplied times are
// strictly validated and stored canonically; the total is always derived.
func (s *recipeService) Create(ctx context.Context, authorID int64, req dto.CreateRecipeRequest) (*models.Recipe, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validationf("recipe name must not be blank")
	}
	if _, err := s.userRepo.GetActiveByID(ctx, authorID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("author %d", authorID)
		}
		return nil, err
	}

	cookD, cookText, err := parseTimeField("cook_time", req.CookTime)
	if err != nil {
		return nil, err
	}
	prepD, prepText, err := parseTimeField("prep_time", req.PrepTime)
	if err != nil {
		return nil, err
	}

	ingredients := make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		ing = strings.TrimSpace(ing)
		if ing == "" {
			continue
		}
		ingredients = append(ingredients, models.RecipeIngredient{Name: ing})
	}

	recipe := &models.Recipe{
		Name:          name,
		AuthorID:      authorID,
		DatePublished: time.Now().UTC(),
		Description:   req.Description,
		Category:      req.Category,
		CookTime:      cookText,
		PrepTime:      prepText,
		TotalTime:     duration.Format(cookD + prepD),
		Calories:      req.Calories,
		Fat:           req.Fat,
		SaturatedFat:  req.SaturatedFat,
		Cholesterol:   req.Cholesterol,
		Sodium:        req.Sodium,
		Carbohydrate:  req.Carbohydrate,
		Fiber:         req.Fiber,
		Sugar:         req.Sugar,
		Protein:       req.Protein,
		Servings:      req.Servings,
		Yield:         req.Yield,
		Ingredients:   ingredients,
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, err
	}

	s.logger.Info("Recipe published",
		zap.Int64("recipe_id", recipe.ID),
		zap.Int64("author_id", authorID))
	return recipe, nil
}

// GetByID reads through the cache.
func (s *recipeService) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	if s.cache != nil {
		if recipe, err := s.cache.GetRecipe(ctx, id); err == nil {
			return recipe, nil
		}
	}
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("recipe %d", id)
		}
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetRecipe(ctx, recipe); err != nil {
			s.logger.Warn("Recipe cache write failed", zap.Int64("recipe_id", id), zap.Error(err))
		}
	}
	return recipe, nil
}

// GetNameByID reads through the name cache.
func (s *recipeService) GetNameByID(ctx context.Context, id int64) (string, error) {
	if s.cache != nil {
		if name, err := s.cache.GetRecipeName(ctx, id); err == nil {
			return name, nil
		}
	}
	name, err := s.recipeRepo.GetNameByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", apperrors.NotFoundf("recipe %d", id)
		}
		return "", err
	}
	if s.cache != nil {
		if err := s.cache.SetRecipeName(ctx, id, name); err != nil {
			s.logger.Warn("Recipe name cache write failed", zap.Int64("recipe_id", id), zap.Error(err))
		}
	}
	return name, nil
}

// requireOwnedRecipe loads the recipe and enforces author-only access.
func (s *recipeService) requireOwnedRecipe(ctx context.Context, actorID, id int64) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("recipe %d", id)
		}
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, apperrors.Forbiddenf("user %d does not own recipe %d", actorID, id)
	}
	return recipe, nil
}

// Delete removes the recipe and its dependents, author-only.
func (s *recipeService) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.requireOwnedRecipe(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.recipeRepo.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFoundf("recipe %d", id)
		}
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info("Recipe deleted", zap.Int64("recipe_id", id))
	return nil
}

// UpdateTimes rewrites cook/prep. Both blank is a no-op returning the stored
// recipe; a supplied value that fails strict parsing fails the whole call.
func (s *recipeService) UpdateTimes(ctx context.Context, actorID, id int64, req dto.UpdateTimesRequest) (*models.Recipe, error) {
	recipe, err := s.requireOwnedRecipe(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CookTime) == "" && strings.TrimSpace(req.PrepTime) == "" {
		return recipe, nil
	}

	var cook, prep *string
	if _, canonical, err := parseTimeField("cook_time", req.CookTime); err != nil {
		return nil, err
	} else if canonical != "" {
		cook = &canonical
	}
	if _, canonical, err := parseTimeField("prep_time", req.PrepTime); err != nil {
		return nil, err
	} else if canonical != "" {
		prep = &canonical
	}

	updated, err := s.recipeRepo.UpdateTimes(ctx, id, cook, prep)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("recipe %d", id)
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

// Search validates paging strictly, then delegates predicate composition to
// the repository. Unknown sort keys fall back to newest-first.
func (s *recipeService) Search(ctx context.Context, query repository.RecipeSearchQuery) ([]models.Recipe, int64, error) {
	if query.Page < 1 {
		return nil, 0, apperrors.Validationf("page must be >= 1, got %d", query.Page)
	}
	if query.PageSize < 1 {
		return nil, 0, apperrors.Validationf("page size must be >= 1, got %d", query.PageSize)
	}
	return s.recipeRepo.Search(ctx, query)
}

// Feed pages through recipes by followed authors, newest first. Paging is
// clamped instead of rejected.
func (s *recipeService) Feed(ctx context.Context, userID int64, category *string, page, pageSize int) ([]models.Recipe, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = feedDefaultPageSize
	}
	if pageSize > feedMaxPageSize {
		pageSize = feedMaxPageSize
	}
	if _, err := s.userRepo.GetActiveByID(ctx, userID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, 0, apperrors.NotFoundf("user %d", userID)
		}
		return nil, 0, err
	}
	return s.recipeRepo.FeedByFollowed(ctx, userID, category, page, pageSize)
}

func (s *recipeService) ClosestCaloriePair(ctx context.Context) (*models.CaloriePair, error) {
	return s.recipeRepo.ClosestCaloriePair(ctx)
}

func (s *recipeService) Top3MostComplex(ctx context.Context) ([]models.ComplexRecipe, error) {
	return s.recipeRepo.TopComplex(ctx, 3)
}

func (s *recipeService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Recipe cache invalidation failed", zap.Int64("recipe_id", id), zap.Error(err))
	}
}
