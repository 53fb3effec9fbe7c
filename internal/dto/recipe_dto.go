package dto

import (
	"time"

	"recipehub/internal/models"
)

// CreateRecipeRequest: payload for publishing a recipe. Times are free-form
// duration text and validated strictly by the service.
type CreateRecipeRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=200"`
	Description  *string  `json:"description,omitempty"`
	Category     *string  `json:"category,omitempty"`
	CookTime     string   `json:"cook_time,omitempty"`
	PrepTime     string   `json:"prep_time,omitempty"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Calories     *float64 `json:"calories,omitempty"`
	Fat          *float64 `json:"fat,omitempty"`
	SaturatedFat *float64 `json:"saturated_fat,omitempty"`
	Cholesterol  *float64 `json:"cholesterol,omitempty"`
	Sodium       *float64 `json:"sodium,omitempty"`
	Carbohydrate *float64 `json:"carbohydrate,omitempty"`
	Fiber        *float64 `json:"fiber,omitempty"`
	Sugar        *float64 `json:"sugar,omitempty"`
	Protein      *float64 `json:"protein,omitempty"`
	Servings     *int     `json:"servings,omitempty"`
	Yield        *string  `json:"yield,omitempty"`
}

// UpdateTimesRequest: payload for rewriting cook/prep times. Blank fields
// keep their stored values; total time is always rederived.
type UpdateTimesRequest struct {
	CookTime string `json:"cook_time,omitempty"`
	PrepTime string `json:"prep_time,omitempty"`
}

// RecipeResponse for returning full recipe information
type RecipeResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	AuthorID         int64     `json:"author_id"`
	DatePublished    time.Time `json:"date_published"`
	Description      *string   `json:"description,omitempty"`
	Category         *string   `json:"category,omitempty"`
	CookTime         string    `json:"cook_time"`
	PrepTime         string    `json:"prep_time"`
	TotalTime        string    `json:"total_time"`
	AggregatedRating *float64  `json:"aggregated_rating,omitempty"`
	ReviewCount      int       `json:"review_count"`
	Calories         *float64  `json:"calories,omitempty"`
	Servings         *int      `json:"servings,omitempty"`
	Yield            *string   `json:"yield,omitempty"`
	Ingredients      []string  `json:"ingredients"`
}

// FromModelToRecipeResponse converts a Recipe model to RecipeResponse DTO
func FromModelToRecipeResponse(recipe *models.Recipe) *RecipeResponse {
	ingredients := make([]string, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		ingredients = append(ingredients, ing.Name)
	}
	return &RecipeResponse{
		ID:               recipe.ID,
		Name:             recipe.Name,
		AuthorID:         recipe.AuthorID,
		DatePublished:    recipe.DatePublished,
		Description:      recipe.Description,
		Category:         recipe.Category,
		CookTime:         recipe.CookTime,
		PrepTime:         recipe.PrepTime,
		TotalTime:        recipe.TotalTime,
		AggregatedRating: recipe.AggregatedRating,
		ReviewCount:      recipe.ReviewCount,
		Calories:         recipe.Calories,
		Servings:         recipe.Servings,
		Yield:            recipe.Yield,
		Ingredients:      ingredients,
	}
}

// PaginatedRecipeResponse for returning paginated recipes (search and feed)
type PaginatedRecipeResponse struct {
	Data       []RecipeResponse `json:"data"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int64            `json:"total"`
	TotalPages int64            `json:"total_pages"`
}

// NewPaginatedRecipeResponse creates a paginated recipe response
func NewPaginatedRecipeResponse(data []RecipeResponse, total int64, page, pageSize int) *PaginatedRecipeResponse {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	return &PaginatedRecipeResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// CaloriePairResponse for the closest-calorie-pair analytics query
type CaloriePairResponse struct {
	LowID      int64   `json:"low_id"`
	HighID     int64   `json:"high_id"`
	Difference float64 `json:"difference"`
}

// ComplexRecipeResponse for the most-complex-recipes analytics query
type ComplexRecipeResponse struct {
	RecipeID        int64  `json:"recipe_id"`
	Name            string `json:"name"`
	IngredientCount int    `json:"ingredient_count"`
}
