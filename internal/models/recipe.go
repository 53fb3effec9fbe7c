package models

import "time"

type Recipe struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	AuthorID      int64     `json:"author_id" gorm:"not null;index"`
	DatePublished time.Time `json:"date_published" gorm:"not null"`
	Description   *string   `json:"description,omitempty"`
	Category      *string   `json:"category,omitempty" gorm:"index"`

	// Durations are stored as ISO-8601 text ("PT1H30M"); TotalTime is always
	// derived from cook + prep on write.
	CookTime  string `json:"cook_time"`
	PrepTime  string `json:"prep_time"`
	TotalTime string `json:"total_time"`

	// Cached review aggregates, recomputed transactionally on every review
	// mutation. AggregatedRating is nil while the recipe has no reviews.
	AggregatedRating *float64 `json:"aggregated_rating,omitempty" gorm:"type:decimal(4,2)"`
	ReviewCount      int      `json:"review_count" gorm:"not null;default:0"`

	Calories      *float64 `json:"calories,omitempty"`
	Fat           *float64 `json:"fat,omitempty"`
	SaturatedFat  *float64 `json:"saturated_fat,omitempty"`
	Cholesterol   *float64 `json:"cholesterol,omitempty"`
	Sodium        *float64 `json:"sodium,omitempty"`
	Carbohydrate  *float64 `json:"carbohydrate,omitempty"`
	Fiber         *float64 `json:"fiber,omitempty"`
	Sugar         *float64 `json:"sugar,omitempty"`
	Protein       *float64 `json:"protein,omitempty"`
	Servings      *int     `json:"servings,omitempty"`
	Yield         *string  `json:"yield,omitempty"`

	// association
	Ingredients []RecipeIngredient `json:"ingredients,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}

func (Recipe) TableName() string {
	return "recipes"
}

type RecipeIngredient struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	RecipeID int64  `json:"recipe_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
