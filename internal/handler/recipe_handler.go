package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recipehub/internal/dto"
	"recipehub/internal/middleware"
	"recipehub/internal/repository"
	"recipehub/internal/service"
)

type RecipeHandler struct {
	recipeService service.RecipeService
}

func NewRecipeHandler(recipeService service.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
	}
}

// RegisterRoutes registers recipe routes. The parent group is already
// behind the auth middleware.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("", h.Create)
		recipes.GET("/search", h.Search)
		recipes.GET("/feed", h.Feed)
		recipes.GET("/:id", h.GetByID)
		recipes.GET("/:id/name", h.GetName)
		recipes.DELETE("/:id", h.Delete)
		recipes.PATCH("/:id/times", h.UpdateTimes)
		recipes.GET("/analytics/closest-calories", h.ClosestCaloriePair)
		recipes.GET("/analytics/most-complex", h.MostComplex)
	}
}

// Create publishes a recipe
// POST /api/recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromModelToRecipeResponse(recipe))
}

// GetByID returns a full recipe
// GET /api/recipes/:id
func (h *RecipeHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	recipe, err := h.recipeService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToRecipeResponse(recipe))
}

// GetName returns just the recipe name
// GET /api/recipes/:id/name
func (h *RecipeHandler) GetName(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	name, err := h.recipeService.GetNameByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "name": name})
}

// Delete removes the caller's recipe and everything attached to it
// DELETE /api/recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateTimes rewrites cook/prep times
// PATCH /api/recipes/:id/times
func (h *RecipeHandler) UpdateTimes(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.UpdateTimesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.UpdateTimes(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToRecipeResponse(recipe))
}

// Search pages through recipes matching the query parameters
// GET /api/recipes/search?keyword=&category=&min_rating=&page=&page_size=&sort=
func (h *RecipeHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	query := repository.RecipeSearchQuery{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Page:     page,
		PageSize: pageSize,
		SortKey:  c.DefaultQuery("sort", repository.SortByDate),
	}
	if raw := c.Query("min_rating"); raw != "" {
		minRating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_rating"})
			return
		}
		query.MinRating = &minRating
	}

	recipes, total, err := h.recipeService.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]dto.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		data = append(data, *dto.FromModelToRecipeResponse(&recipes[i]))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedRecipeResponse(data, total, query.Page, query.PageSize))
}

// Feed pages through recipes by authors the caller follows
// GET /api/recipes/feed?category=&page=&page_size=
func (h *RecipeHandler) Feed(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	var category *string
	if raw := c.Query("category"); raw != "" {
		category = &raw
	}

	recipes, total, err := h.recipeService.Feed(c.Request.Context(), actorID, category, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]dto.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		data = append(data, *dto.FromModelToRecipeResponse(&recipes[i]))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedRecipeResponse(data, total, page, pageSize))
}

// ClosestCaloriePair returns the two recipes with the nearest calorie values
// GET /api/recipes/analytics/closest-calories
func (h *RecipeHandler) ClosestCaloriePair(c *gin.Context) {
	pair, err := h.recipeService.ClosestCaloriePair(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if pair == nil {
		c.JSON(http.StatusOK, gin.H{"result": nil})
		return
	}

	c.JSON(http.StatusOK, dto.CaloriePairResponse{
		LowID:      pair.LowID,
		HighID:     pair.HighID,
		Difference: pair.Difference,
	})
}

// MostComplex returns the three recipes with the most ingredients
// GET /api/recipes/analytics/most-complex
func (h *RecipeHandler) MostComplex(c *gin.Context) {
	results, err := h.recipeService.Top3MostComplex(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]dto.ComplexRecipeResponse, 0, len(results))
	for _, r := range results {
		data = append(data, dto.ComplexRecipeResponse{
			RecipeID:        r.RecipeID,
			Name:            r.Name,
			IngredientCount: r.IngredientCount,
		})
	}
	c.JSON(http.StatusOK, data)
}
