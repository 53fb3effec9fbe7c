package models

import "time"

// Review is one user's rating of a recipe. A user may review a recipe at
// most once; the unique index backs the conflict check in the service layer.
type Review struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	RecipeID      int64     `json:"recipe_id" gorm:"not null;uniqueIndex:idx_reviews_recipe_author"`
	AuthorID      int64     `json:"author_id" gorm:"not null;uniqueIndex:idx_reviews_recipe_author"`
	Rating        int       `json:"rating" gorm:"not null"`
	Text          string    `json:"text"`
	DateSubmitted time.Time `json:"date_submitted" gorm:"not null"`
	DateModified  time.Time `json:"date_modified" gorm:"not null"`
}

func (Review) TableName() string {
	return "reviews"
}

type ReviewLike struct {
	ReviewID int64 `json:"review_id" gorm:"primaryKey;autoIncrement:false"`
	UserID   int64 `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
}

func (ReviewLike) TableName() string {
	return "review_likes"
}
