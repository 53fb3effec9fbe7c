package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
)

// Sort keys accepted by ListByRecipe.
const (
	SortByLikes = "likes_desc"
)

// recomputeAggregatesSQL rewrites a recipe's cached review aggregates from
// the live review rows in one statement, so concurrent review mutations can
// never leave a half-applied counter. AVG is NULL when no reviews remain.
const recomputeAggregatesSQL = `
	UPDATE recipes
	SET review_count = s.cnt, aggregated_rating = s.avg
	FROM (
		SELECT COUNT(*) AS cnt, ROUND(AVG(rating)::numeric, 2) AS avg
		FROM reviews WHERE recipe_id = ?
	) s
	WHERE recipes.id = ?`

// ReviewWithLikes is the ListByRecipe scan target: a review joined with its
// author's name and like count. LikerIDs is filled by a second query.
type ReviewWithLikes struct {
	models.Review
	AuthorName string  `gorm:"column:author_name"`
	LikeCount  int64   `gorm:"column:like_count"`
	LikerIDs   []int64 `gorm:"-"`
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, reviewID, recipeID int64) error
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	ExistsByRecipeAndAuthor(ctx context.Context, recipeID, authorID int64) (bool, error)
	Like(ctx context.Context, reviewID, userID int64) (int64, error)
	Unlike(ctx context.Context, reviewID, userID int64) (int64, error)
	ListByRecipe(ctx context.Context, recipeID int64, page, pageSize int, sortKey string) ([]ReviewWithLikes, int64, error)
	RecomputeAggregates(ctx context.Context, recipeID int64) (*models.Recipe, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// lockRecipe takes the recipe row lock that serializes aggregate recomputes.
func lockRecipe(tx *gorm.DB, recipeID int64) error {
	var recipe models.Recipe
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&recipe, recipeID).Error
}

func recomputeAggregates(tx *gorm.DB, recipeID int64) error {
	return tx.Exec(recomputeAggregatesSQL, recipeID, recipeID).Error
}

// Create inserts the review with id = max+1 and recomputes the recipe's
// aggregates in the same transaction. A second review by the same author on
// the same recipe trips the unique index and surfaces as a conflict, not a
// retry.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	var lastErr error
	for attempt := 0; attempt < idAllocRetries; attempt++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := lockRecipe(tx, review.RecipeID); err != nil {
				return err
			}
			var nextID int64
			if err := tx.Model(&models.Review{}).
				Select("COALESCE(MAX(id), 0) + 1").
				Scan(&nextID).Error; err != nil {
				return err
			}
			review.ID = nextID
			if err := tx.Create(review).Error; err != nil {
				return err
			}
			return recomputeAggregates(tx, review.RecipeID)
		})
		if err == nil {
			return nil
		}
		if !apperrors.IsDuplicateKey(err) {
			return err
		}
		exists, checkErr := r.ExistsByRecipeAndAuthor(ctx, review.RecipeID, review.AuthorID)
		if checkErr != nil {
			return checkErr
		}
		if exists {
			return apperrors.Conflictf("user %d already reviewed recipe %d", review.AuthorID, review.RecipeID)
		}
		lastErr = err
	}
	return apperrors.Conflictf("could not allocate a review id after %d attempts: %v", idAllocRetries, lastErr)
}

// Update rewrites rating/text/modified and recomputes aggregates atomically.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRecipe(tx, review.RecipeID); err != nil {
			return err
		}
		err := tx.Model(&models.Review{}).Where("id = ?", review.ID).
			Updates(map[string]interface{}{
				"rating":        review.Rating,
				"text":          review.Text,
				"date_modified": review.DateModified,
			}).Error
		if err != nil {
			return err
		}
		return recomputeAggregates(tx, review.RecipeID)
	})
}

// Delete removes the review's likes, the review, then recomputes aggregates.
func (r *reviewRepository) Delete(ctx context.Context, reviewID, recipeID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRecipe(tx, recipeID); err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", reviewID).
			Delete(&models.ReviewLike{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Review{}, reviewID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return recomputeAggregates(tx, recipeID)
	})
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ExistsByRecipeAndAuthor(ctx context.Context, recipeID, authorID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("recipe_id = ? AND author_id = ?", recipeID, authorID).
		Count(&count).Error
	return count > 0, err
}

// Like records the like idempotently and returns the count read fresh in the
// same transaction. Racing duplicate likes collapse into the conflict-free
// insert, so the returned count is always the real one.
func (r *reviewRepository) Like(ctx context.Context, reviewID, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := models.ReviewLike{ReviewID: reviewID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(&models.ReviewLike{}).
			Where("review_id = ?", reviewID).
			Count(&count).Error
	})
	return count, err
}

// Unlike removes the like if present (absent is a no-op) and returns the
// fresh count.
func (r *reviewRepository) Unlike(ctx context.Context, reviewID, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).
			Delete(&models.ReviewLike{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.ReviewLike{}).
			Where("review_id = ?", reviewID).
			Count(&count).Error
	})
	return count, err
}

// ListByRecipe pages through a recipe's reviews with author names and like
// counts. The like count joins an aggregated subquery so one review stays
// one row; liker id lists are loaded in a second query.
func (r *reviewRepository) ListByRecipe(ctx context.Context, recipeID int64, page, pageSize int, sortKey string) ([]ReviewWithLikes, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("recipe_id = ?", recipeID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	order := "reviews.date_modified DESC, reviews.id DESC"
	if sortKey == SortByLikes {
		order = "like_count DESC, reviews.date_modified DESC, reviews.id DESC"
	}

	var rows []ReviewWithLikes
	err = r.db.WithContext(ctx).Model(&models.Review{}).
		Select("reviews.*, u.name AS author_name, COALESCE(l.cnt, 0) AS like_count").
		Joins("JOIN users u ON u.id = reviews.author_id AND u.is_deleted = ?", false).
		Joins("LEFT JOIN (SELECT review_id, COUNT(*) AS cnt FROM review_likes GROUP BY review_id) l ON l.review_id = reviews.id").
		Where("reviews.recipe_id = ?", recipeID).
		Order(order).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	if len(rows) > 0 {
		reviewIDs := make([]int64, 0, len(rows))
		for _, row := range rows {
			reviewIDs = append(reviewIDs, row.ID)
		}
		var likes []models.ReviewLike
		err = r.db.WithContext(ctx).
			Where("review_id IN ?", reviewIDs).
			Order("user_id").
			Find(&likes).Error
		if err != nil {
			return nil, 0, err
		}
		likersByReview := make(map[int64][]int64, len(rows))
		for _, like := range likes {
			likersByReview[like.ReviewID] = append(likersByReview[like.ReviewID], like.UserID)
		}
		for i := range rows {
			rows[i].LikerIDs = likersByReview[rows[i].ID]
		}
	}
	return rows, total, nil
}

// RecomputeAggregates forces a recompute and returns the updated recipe.
func (r *reviewRepository) RecomputeAggregates(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRecipe(tx, recipeID); err != nil {
			return err
		}
		if err := recomputeAggregates(tx, recipeID); err != nil {
			return err
		}
		return tx.Preload("Ingredients", preloadIngredients).
			First(&recipe, recipeID).Error
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
