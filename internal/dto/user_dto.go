package dto

import "recipehub/internal/models"

// Data Transfer Objects for authentication and user requests and responses

// RegisterRequest: payload for user registration
type RegisterRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Password  string `json:"password" binding:"required,min=1"`
	Gender    string `json:"gender" binding:"required"`
	Birthdate string `json:"birthdate" binding:"required"` // yyyy-MM-dd
}

// LoginRequest: payload for user login
type LoginRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse: response payload after successful authentication
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// UpdateProfileRequest: partial profile update; omitted fields are untouched
type UpdateProfileRequest struct {
	Gender *string `json:"gender,omitempty"`
	Age    *int    `json:"age,omitempty"`
}

// UserResponse for returning a user profile with its follow id lists
type UserResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Gender       string  `json:"gender"`
	Age          int     `json:"age"`
	Followers    int     `json:"followers"`
	Following    int     `json:"following"`
	FollowerIDs  []int64 `json:"follower_ids"`
	FollowingIDs []int64 `json:"following_ids"`
}

// FromModelToUserResponse converts a User model plus its follow id lists to a UserResponse DTO
func FromModelToUserResponse(user *models.User, followerIDs, followingIDs []int64) *UserResponse {
	if followerIDs == nil {
		followerIDs = []int64{}
	}
	if followingIDs == nil {
		followingIDs = []int64{}
	}
	return &UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Gender:       user.Gender,
		Age:          user.Age,
		Followers:    user.Followers,
		Following:    user.Following,
		FollowerIDs:  followerIDs,
		FollowingIDs: followingIDs,
	}
}

// ToggleFollowResponse reports which way the toggle resolved
type ToggleFollowResponse struct {
	NowFollowing bool `json:"now_following"`
}

// FollowRatioResponse for the highest followers/following ratio query
type FollowRatioResponse struct {
	UserID int64   `json:"user_id"`
	Ratio  float64 `json:"ratio"`
}
