package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipehub/internal/apperrors"
	"recipehub/internal/duration"
	"recipehub/internal/models"
)

// Sort keys accepted by Search. Anything else falls back to SortByDate.
const (
	SortByRating   = "rating_desc"
	SortByDate     = "date_desc"
	SortByCalories = "calories_asc"
)

// RecipeSearchQuery is the predicate set for Search. Zero values mean
// "no filter"; paging is validated by the service before it gets here.
type RecipeSearchQuery struct {
	Keyword   string
	Category  string
	MinRating *float64
	Page      int
	PageSize  int
	SortKey   string
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	GetNameByID(ctx context.Context, id int64) (string, error)
	Delete(ctx context.Context, id int64) error
	UpdateTimes(ctx context.Context, id int64, cook, prep *string) (*models.Recipe, error)
	Search(ctx context.Context, query RecipeSearchQuery) ([]models.Recipe, int64, error)
	FeedByFollowed(ctx context.Context, userID int64, category *string, page, pageSize int) ([]models.Recipe, int64, error)
	ClosestCaloriePair(ctx context.Context) (*models.CaloriePair, error)
	TopComplex(ctx context.Context, limit int) ([]models.ComplexRecipe, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// preloadIngredients keeps ingredient display order stable across reads.
func preloadIngredients(db *gorm.DB) *gorm.DB {
	return db.Order("LOWER(name)")
}

// Create inserts the recipe and its ingredient rows with id = max+1,
// retrying when a concurrent create wins the same id.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	var lastErr error
	for attempt := 0; attempt < idAllocRetries; attempt++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var nextID int64
			if err := tx.Model(&models.Recipe{}).
				Select("COALESCE(MAX(id), 0) + 1").
				Scan(&nextID).Error; err != nil {
				return err
			}
			recipe.ID = nextID
			for i := range recipe.Ingredients {
				recipe.Ingredients[i].ID = 0
				recipe.Ingredients[i].RecipeID = nextID
			}
			return tx.Create(recipe).Error
		})
		if err == nil {
			return nil
		}
		if !apperrors.IsDuplicateKey(err) {
			return err
		}
		lastErr = err
	}
	return apperrors.Conflictf("could not allocate a recipe id after %d attempts: %v", idAllocRetries, lastErr)
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", preloadIngredients).
		First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetNameByID(ctx context.Context, id int64) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("name", &names).Error
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return names[0], nil
}

// Delete removes the recipe and everything hanging off it in dependency
// order: review likes, reviews, ingredients, then the recipe row.
func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id IN (?)",
			tx.Model(&models.Review{}).Select("id").Where("recipe_id = ?", id),
		).Delete(&models.ReviewLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Recipe{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UpdateTimes rewrites cook/prep under a row lock. A nil argument keeps the
// stored value; that side is re-read leniently so historic bad text cannot
// block the update. Total is always rederived and all three columns land in
// a single UPDATE.
func (r *recipeRepository) UpdateTimes(ctx context.Context, id int64, cook, prep *string) (*models.Recipe, error) {
	var updated *models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&recipe, id).Error; err != nil {
			return err
		}

		cookText := recipe.CookTime
		if cook != nil {
			cookText = *cook
		}
		prepText := recipe.PrepTime
		if prep != nil {
			prepText = *prep
		}

		cookD := duration.ParseOrZero(cookText, nil)
		prepD := duration.ParseOrZero(prepText, nil)

		updates := map[string]interface{}{
			"cook_time":  cookText,
			"prep_time":  prepText,
			"total_time": duration.Format(cookD + prepD),
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return err
		}

		recipe.CookTime = updates["cook_time"].(string)
		recipe.PrepTime = updates["prep_time"].(string)
		recipe.TotalTime = updates["total_time"].(string)
		updated = &recipe
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// searchCondition is one WHERE fragment plus its arguments. Building the
// predicate as a slice lets the page query and the count query share it
// without re-parsing SQL text.
type searchCondition struct {
	expr string
	args []interface{}
}

func buildSearchConditions(query RecipeSearchQuery) []searchCondition {
	var conds []searchCondition
	if kw := strings.TrimSpace(query.Keyword); kw != "" {
		pattern := "%" + strings.ToLower(kw) + "%"
		conds = append(conds, searchCondition{
			expr: "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)",
			args: []interface{}{pattern, pattern},
		})
	}
	if query.Category != "" {
		conds = append(conds, searchCondition{
			expr: "category = ?",
			args: []interface{}{query.Category},
		})
	}
	if query.MinRating != nil {
		conds = append(conds, searchCondition{
			expr: "aggregated_rating >= ?",
			args: []interface{}{*query.MinRating},
		})
	}
	return conds
}

func searchOrder(sortKey string) string {
	switch sortKey {
	case SortByRating:
		return "aggregated_rating DESC NULLS LAST, id DESC"
	case SortByCalories:
		return "calories ASC NULLS LAST, id DESC"
	default:
		return "date_published DESC, id DESC"
	}
}

// Search runs the composed predicate twice: once for the page, once for the
// total count. Ingredients come in through a preload so the child rows never
// fan out the result count.
func (r *recipeRepository) Search(ctx context.Context, query RecipeSearchQuery) ([]models.Recipe, int64, error) {
	conds := buildSearchConditions(query)

	countQ := r.db.WithContext(ctx).Model(&models.Recipe{})
	pageQ := r.db.WithContext(ctx).Model(&models.Recipe{})
	for _, c := range conds {
		countQ = countQ.Where(c.expr, c.args...)
		pageQ = pageQ.Where(c.expr, c.args...)
	}

	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	offset := (query.Page - 1) * query.PageSize
	err := pageQ.
		Preload("Ingredients", preloadIngredients).
		Order(searchOrder(query.SortKey)).
		Limit(query.PageSize).
		Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// FeedByFollowed pages through recipes by authors the user follows, newest
// first. Recipes by soft-deleted authors are excluded.
func (r *recipeRepository) FeedByFollowed(ctx context.Context, userID int64, category *string, page, pageSize int) ([]models.Recipe, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("author_id IN (?)",
				r.db.Model(&models.UserFollow{}).Select("followee_id").Where("follower_id = ?", userID)).
			Where("author_id IN (?)",
				r.db.Model(&models.User{}).Select("id").Where("is_deleted = ?", false))
		if category != nil {
			q = q.Where("category = ?", *category)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := base().
		Preload("Ingredients", preloadIngredients).
		Order("date_published DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ClosestCaloriePair finds the two recipes with known calories whose calorie
// values are nearest. Ties resolve to the lexicographically smallest
// (low id, high id) pair. Nil when fewer than two recipes qualify.
func (r *recipeRepository) ClosestCaloriePair(ctx context.Context) (*models.CaloriePair, error) {
	const query = `
		SELECT a.id AS low_id, b.id AS high_id, ABS(a.calories - b.calories) AS difference
		FROM recipes a
		JOIN recipes b ON a.id < b.id
		WHERE a.calories IS NOT NULL AND b.calories IS NOT NULL
		ORDER BY difference ASC, low_id ASC, high_id ASC
		LIMIT 1`

	var pair models.CaloriePair
	err := r.db.WithContext(ctx).Raw(query).Scan(&pair).Error
	if err != nil {
		return nil, err
	}
	if pair.LowID == 0 {
		return nil, nil
	}
	return &pair, nil
}

// TopComplex ranks recipes by ingredient row count, id ascending on ties.
func (r *recipeRepository) TopComplex(ctx context.Context, limit int) ([]models.ComplexRecipe, error) {
	const query = `
		SELECT r.id AS recipe_id, r.name AS name, COUNT(i.id) AS ingredient_count
		FROM recipes r
		LEFT JOIN recipe_ingredients i ON i.recipe_id = r.id
		GROUP BY r.id, r.name
		ORDER BY ingredient_count DESC, r.id ASC
		LIMIT ?`

	var results []models.ComplexRecipe
	err := r.db.WithContext(ctx).Raw(query, limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
