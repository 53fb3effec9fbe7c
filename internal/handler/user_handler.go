package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recipehub/internal/dto"
	"recipehub/internal/middleware"
	"recipehub/internal/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterRoutes registers user and social-graph routes. The parent group is
// already behind the auth middleware.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/:id", h.GetByID)
		users.PATCH("/me", h.UpdateProfile)
		users.DELETE("/:id", h.Delete)
		users.POST("/:id/follow", h.ToggleFollow)
		users.GET("/analytics/follow-ratio", h.HighestFollowRatio)
	}
}

// GetByID returns a user profile with follower/following id lists
// GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile patches the caller's gender and/or age
// PATCH /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.UpdateProfile(c.Request.Context(), actorID, req); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes the caller's own account
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleFollow flips the follow edge from the caller to the target
// POST /api/users/:id/follow
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	nowFollowing, err := h.userService.ToggleFollow(c.Request.Context(), actorID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToggleFollowResponse{NowFollowing: nowFollowing})
}

// HighestFollowRatio returns the user with the best followers/following ratio
// GET /api/users/analytics/follow-ratio
func (h *UserHandler) HighestFollowRatio(c *gin.Context) {
	result, err := h.userService.HighestFollowRatio(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"result": nil})
		return
	}

	c.JSON(http.StatusOK, dto.FollowRatioResponse{UserID: result.UserID, Ratio: result.Ratio})
}
