package dto

import "time"

// CreateReviewDTO for submitting a review
type CreateReviewDTO struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Text   string `json:"text" binding:"max=5000"`
}

// UpdateReviewDTO for editing a review
type UpdateReviewDTO struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Text   string `json:"text" binding:"max=5000"`
}

// ReviewResponse for returning review information with like data
type ReviewResponse struct {
	ID            int64     `json:"id"`
	AuthorID      int64     `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	Rating        int       `json:"rating"`
	Text          string    `json:"text"`
	DateSubmitted time.Time `json:"date_submitted"`
	DateModified  time.Time `json:"date_modified"`
	LikeCount     int64     `json:"like_count"`
	LikerIDs      []int64   `json:"liker_ids"`
}

// PaginatedReviewResponse for returning paginated reviews
type PaginatedReviewResponse struct {
	Data       []ReviewResponse `json:"data"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int64            `json:"total"`
	TotalPages int64            `json:"total_pages"`
}

// NewPaginatedReviewResponse creates a paginated review response
func NewPaginatedReviewResponse(data []ReviewResponse, total int64, page, pageSize int) *PaginatedReviewResponse {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	return &PaginatedReviewResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// LikeResponse reports the fresh like count after a like or unlike
type LikeResponse struct {
	ReviewID  int64 `json:"review_id"`
	LikeCount int64 `json:"like_count"`
}
