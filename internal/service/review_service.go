package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recipehub/internal/apperrors"
	"recipehub/internal/cache"
	"recipehub/internal/dto"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

type ReviewService interface {
	Add(ctx context.Context, actorID, recipeID int64, req dto.CreateReviewDTO) (*models.Review, error)
	Edit(ctx context.Context, actorID, recipeID, reviewID int64, req dto.UpdateReviewDTO) (*models.Review, error)
	Delete(ctx context.Context, actorID, recipeID, reviewID int64) error
	Like(ctx context.Context, actorID, reviewID int64) (int64, error)
	Unlike(ctx context.Context, actorID, reviewID int64) (int64, error)
	ListByRecipe(ctx context.Context, recipeID int64, page, pageSize int, sortKey string) ([]repository.ReviewWithLikes, int64, error)
	RefreshAggregatedRating(ctx context.Context, recipeID int64) (*models.Recipe, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	recipeRepo repository.RecipeRepository
	userRepo   repository.UserRepository
	cache      *cache.RecipeCache
	logger     *zap.Logger
}

func NewReviewService(reviewRepo repository.ReviewRepository, recipeRepo repository.RecipeRepository, userRepo repository.UserRepository, recipeCache *cache.RecipeCache, logger *zap.Logger) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		recipeRepo: recipeRepo,
		userRepo:   userRepo,
		cache:      recipeCache,
		logger:     logger,
	}
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// Add submits a review. One review per (author, recipe): the duplicate is
// pre-checked here and the unique index backs it up under races.
func (s *reviewService) Add(ctx context.Context, actorID, recipeID int64, req dto.CreateReviewDTO) (*models.Review, error) {
	if !validRating(req.Rating) {
		return nil, apperrors.Validationf("rating must be 1..5, got %d", req.Rating)
	}
	if _, err := s.userRepo.GetActiveByID(ctx, actorID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("user %d", actorID)
		}
		return nil, err
	}
	if _, err := s.recipeRepo.GetNameByID(ctx, recipeID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("recipe %d", recipeID)
		}
		return nil, err
	}
	exists, err := s.reviewRepo.ExistsByRecipeAndAuthor(ctx, recipeID, actorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflictf("user %d already reviewed recipe %d", actorID, recipeID)
	}

	now := time.Now().UTC()
	review := &models.Review{
		RecipeID:      recipeID,
		AuthorID:      actorID,
		Rating:        req.Rating,
		Text:          req.Text,
		DateSubmitted: now,
		DateModified:  now,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.invalidate(ctx, recipeID)
	s.logger.Info("Review added",
		zap.Int64("review_id", review.ID),
		zap.Int64("recipe_id", recipeID))
	return review, nil
}

// requireOwnedReview resolves the review, checks it belongs to the recipe
// and that the actor wrote it.
func (s *reviewService) requireOwnedReview(ctx context.Context, actorID, recipeID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("review %d", reviewID)
		}
		return nil, err
	}
	if review.RecipeID != recipeID {
		return nil, apperrors.NotFoundf("review %d does not belong to recipe %d", reviewID, recipeID)
	}
	if review.AuthorID != actorID {
		return nil, apperrors.Forbiddenf("user %d does not own review %d", actorID, reviewID)
	}
	return review, nil
}

// Edit rewrites rating and text, author-only, and refreshes aggregates.
func (s *reviewService) Edit(ctx context.Context, actorID, recipeID, reviewID int64, req dto.UpdateReviewDTO) (*models.Review, error) {
	if !validRating(req.Rating) {
		return nil, apperrors.Validationf("rating must be 1..5, got %d", req.Rating)
	}
	review, err := s.requireOwnedReview(ctx, actorID, recipeID, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = req.Rating
	review.Text = req.Text
	review.DateModified = time.Now().UTC()
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	s.invalidate(ctx, recipeID)
	return review, nil
}

// Delete removes the review and its likes, author-only.
func (s *reviewService) Delete(ctx context.Context, actorID, recipeID, reviewID int64) error {
	if _, err := s.requireOwnedReview(ctx, actorID, recipeID, reviewID); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, reviewID, recipeID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFoundf("review %d", reviewID)
		}
		return err
	}
	s.invalidate(ctx, recipeID)
	s.logger.Info("Review deleted",
		zap.Int64("review_id", reviewID),
		zap.Int64("recipe_id", recipeID))
	return nil
}

// Like records a like, forbidden on one's own review, idempotent otherwise.
// Returns the fresh count.
func (s *reviewService) Like(ctx context.Context, actorID, reviewID int64) (int64, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return 0, apperrors.NotFoundf("review %d", reviewID)
		}
		return 0, err
	}
	if review.AuthorID == actorID {
		return 0, apperrors.Forbiddenf("user %d cannot like their own review", actorID)
	}
	return s.reviewRepo.Like(ctx, reviewID, actorID)
}

// Unlike removes the like if present; absence is a no-op. Returns the fresh
// count.
func (s *reviewService) Unlike(ctx context.Context, actorID, reviewID int64) (int64, error) {
	if _, err := s.reviewRepo.GetByID(ctx, reviewID); err != nil {
		if apperrors.IsNotFound(err) {
			return 0, apperrors.NotFoundf("review %d", reviewID)
		}
		return 0, err
	}
	return s.reviewRepo.Unlike(ctx, reviewID, actorID)
}

// ListByRecipe pages through a recipe's reviews. A missing recipe yields an
// empty page, not an error.
func (s *reviewService) ListByRecipe(ctx context.Context, recipeID int64, page, pageSize int, sortKey string) ([]repository.ReviewWithLikes, int64, error) {
	if page < 1 {
		return nil, 0, apperrors.Validationf("page must be >= 1, got %d", page)
	}
	if pageSize < 1 {
		return nil, 0, apperrors.Validationf("page size must be >= 1, got %d", pageSize)
	}
	if _, err := s.recipeRepo.GetNameByID(ctx, recipeID); err != nil {
		if apperrors.IsNotFound(err) {
			return []repository.ReviewWithLikes{}, 0, nil
		}
		return nil, 0, err
	}
	return s.reviewRepo.ListByRecipe(ctx, recipeID, page, pageSize, sortKey)
}

// RefreshAggregatedRating forces a recompute and returns the updated recipe.
func (s *reviewService) RefreshAggregatedRating(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	recipe, err := s.reviewRepo.RecomputeAggregates(ctx, recipeID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("recipe %d", recipeID)
		}
		return nil, err
	}
	s.invalidate(ctx, recipeID)
	return recipe, nil
}

func (s *reviewService) invalidate(ctx context.Context, recipeID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, recipeID); err != nil {
		s.logger.Warn("Recipe cache invalidation failed", zap.Int64("recipe_id", recipeID), zap.Error(err))
	}
}
