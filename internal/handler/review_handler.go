package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recipehub/internal/dto"
	"recipehub/internal/middleware"
	"recipehub/internal/service"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// RegisterRoutes registers review routes under recipes plus standalone like
// routes. The parent group is already behind the auth middleware.
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipeReviews := router.Group("/recipes/:id/reviews")
	{
		recipeReviews.GET("", h.ListByRecipe)
		recipeReviews.POST("", h.Add)
		recipeReviews.POST("/refresh", h.RefreshAggregatedRating)
		recipeReviews.PUT("/:review_id", h.Edit)
		recipeReviews.DELETE("/:review_id", h.Delete)
	}

	reviews := router.Group("/reviews")
	{
		reviews.POST("/:id/like", h.Like)
		reviews.DELETE("/:id/like", h.Unlike)
	}
}

func parseID(c *gin.Context, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label})
		return 0, false
	}
	return id, true
}

// Add submits a review for a recipe
// POST /api/recipes/:id/reviews
func (h *ReviewHandler) Add(c *gin.Context) {
	recipeID, ok := parseID(c, "id", "recipe ID")
	if !ok {
		return
	}
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewService.Add(c.Request.Context(), actorID, recipeID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// Edit rewrites the caller's review
// PUT /api/recipes/:id/reviews/:review_id
func (h *ReviewHandler) Edit(c *gin.Context) {
	recipeID, ok := parseID(c, "id", "recipe ID")
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "review_id", "review ID")
	if !ok {
		return
	}
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewService.Edit(c.Request.Context(), actorID, recipeID, reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Delete removes the caller's review
// DELETE /api/recipes/:id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	recipeID, ok := parseID(c, "id", "recipe ID")
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "review_id", "review ID")
	if !ok {
		return
	}
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), actorID, recipeID, reviewID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListByRecipe pages through a recipe's reviews
// GET /api/recipes/:id/reviews?page=&page_size=&sort=
func (h *ReviewHandler) ListByRecipe(c *gin.Context) {
	recipeID, ok := parseID(c, "id", "recipe ID")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	sortKey := c.DefaultQuery("sort", "date_desc")

	rows, total, err := h.reviewService.ListByRecipe(c.Request.Context(), recipeID, page, pageSize, sortKey)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]dto.ReviewResponse, 0, len(rows))
	for _, row := range rows {
		likerIDs := row.LikerIDs
		if likerIDs == nil {
			likerIDs = []int64{}
		}
		data = append(data, dto.ReviewResponse{
			ID:            row.ID,
			AuthorID:      row.AuthorID,
			AuthorName:    row.AuthorName,
			Rating:        row.Rating,
			Text:          row.Text,
			DateSubmitted: row.DateSubmitted,
			DateModified:  row.DateModified,
			LikeCount:     row.LikeCount,
			LikerIDs:      likerIDs,
		})
	}
	c.JSON(http.StatusOK, dto.NewPaginatedReviewResponse(data, total, page, pageSize))
}

// RefreshAggregatedRating forces an aggregate recompute for a recipe
// POST /api/recipes/:id/reviews/refresh
func (h *ReviewHandler) RefreshAggregatedRating(c *gin.Context) {
	recipeID, ok := parseID(c, "id", "recipe ID")
	if !ok {
		return
	}

	recipe, err := h.reviewService.RefreshAggregatedRating(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToRecipeResponse(recipe))
}

// Like records a like on a review and returns the fresh count
// POST /api/reviews/:id/like
func (h *ReviewHandler) Like(c *gin.Context) {
	reviewID, ok := parseID(c, "id", "review ID")
	if !ok {
		return
	}
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := h.reviewService.Like(c.Request.Context(), actorID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LikeResponse{ReviewID: reviewID, LikeCount: count})
}

// Unlike removes a like and returns the fresh count
// DELETE /api/reviews/:id/like
func (h *ReviewHandler) Unlike(c *gin.Context) {
	reviewID, ok := parseID(c, "id", "review ID")
	if !ok {
		return
	}
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := h.reviewService.Unlike(c.Request.Context(), actorID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LikeResponse{ReviewID: reviewID, LikeCount: count})
}
