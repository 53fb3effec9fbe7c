package models

// Derived read models for the analytics queries. These are scan targets for
// raw SQL, not tables.

// CaloriePair is the pair of distinct recipes with known calories whose
// calorie difference is the smallest on the platform.
type CaloriePair struct {
	LowID      int64   `json:"low_id" gorm:"column:low_id"`
	HighID     int64   `json:"high_id" gorm:"column:high_id"`
	Difference float64 `json:"difference" gorm:"column:difference"`
}

// ComplexRecipe ranks a recipe by its ingredient row count.
type ComplexRecipe struct {
	RecipeID        int64  `json:"recipe_id" gorm:"column:recipe_id"`
	Name            string `json:"name" gorm:"column:name"`
	IngredientCount int    `json:"ingredient_count" gorm:"column:ingredient_count"`
}

// FollowRatio is a user's followers/following ratio computed from live
// follow edges rather than the cached counters.
type FollowRatio struct {
	UserID int64   `json:"user_id" gorm:"column:user_id"`
	Ratio  float64 `json:"ratio" gorm:"column:ratio"`
}
