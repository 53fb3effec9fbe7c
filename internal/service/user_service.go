package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipehub/internal/apperrors"
	"recipehub/internal/dto"
	"recipehub/internal/middleware/auth"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

// dummyHash keeps failed logins on the same bcrypt timing as real ones.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e"

type UserService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, userID int64, password string) (*dto.AuthResponse, error)
	Authenticate(ctx context.Context, userID int64, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actorID int64, req dto.UpdateProfileRequest) error
	DeleteAccount(ctx context.Context, actorID, targetID int64) error
	ToggleFollow(ctx context.Context, actorID, targetID int64) (bool, error)
	HighestFollowRatio(ctx context.Context) (*models.FollowRatio, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   TokenService
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, tokens TokenService, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

func validGender(gender string) bool {
	return gender == "Male" || gender == "Female"
}

// ageFromBirthdate derives whole years between birthdate and now.
func ageFromBirthdate(birthdate time.Time, now time.Time) int {
	age := now.Year() - birthdate.Year()
	if now.YearDay() < birthdate.YearDay() {
		age--
	}
	return age
}

// Register validates the profile, hashes the password and creates the user
// with a freshly allocated id and zeroed counters.
func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validationf("name must not be blank")
	}
	if req.Password == "" {
		return nil, apperrors.Validationf("password must not be blank")
	}
	if !validGender(req.Gender) {
		return nil, apperrors.Validationf("gender must be Male or Female, got %q", req.Gender)
	}
	birthdate, err := time.Parse("2006-01-02", req.Birthdate)
	if err != nil {
		return nil, apperrors.Validationf("birthdate %q is not yyyy-MM-dd", req.Birthdate)
	}
	age := ageFromBirthdate(birthdate, time.Now())
	if age <= 0 {
		return nil, apperrors.Validationf("birthdate %q does not yield a positive age", req.Birthdate)
	}

	exists, err := s.userRepo.NameExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflictf("username %q is taken", name)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Password: hashed,
		Gender:   req.Gender,
		Age:      age,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Authenticate resolves the credential check. A missing, deleted or
// mismatched account all fail the same way.
func (s *userService) Authenticate(ctx context.Context, userID int64, password string) (*models.User, error) {
	user, err := s.userRepo.GetActiveByID(ctx, userID)
	if err != nil {
		auth.VerifyPassword(dummyHash, password)
		return nil, apperrors.Unauthorizedf("invalid credentials")
	}
	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, apperrors.Unauthorizedf("invalid credentials")
	}
	return user, nil
}

// Login authenticates and issues an access token.
func (s *userService) Login(ctx context.Context, userID int64, password string) (*dto.AuthResponse, error) {
	user, err := s.Authenticate(ctx, userID, password)
	if err != nil {
		return nil, err
	}
	token, expiresIn, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken: token,
		UserID:      user.ID,
		Name:        user.Name,
		ExpiresIn:   expiresIn,
	}, nil
}

// GetByID returns the profile with ordered follower/following id lists.
func (s *userService) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetActiveByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("user %d", id)
		}
		return nil, err
	}
	followerIDs, err := s.userRepo.FollowerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.userRepo.FollowingIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToUserResponse(user, followerIDs, followingIDs), nil
}

// UpdateProfile patches gender and/or age. Both absent is a no-op.
func (s *userService) UpdateProfile(ctx context.Context, actorID int64, req dto.UpdateProfileRequest) error {
	updates := map[string]interface{}{}
	if req.Gender != nil {
		if !validGender(*req.Gender) {
			return apperrors.Validationf("gender must be Male or Female, got %q", *req.Gender)
		}
		updates["gender"] = *req.Gender
	}
	if req.Age != nil {
		if *req.Age <= 0 {
			return apperrors.Validationf("age must be positive, got %d", *req.Age)
		}
		updates["age"] = *req.Age
	}
	if len(updates) == 0 {
		return nil
	}
	err := s.userRepo.UpdateProfile(ctx, actorID, updates)
	if err != nil && apperrors.IsNotFound(err) {
		return apperrors.NotFoundf("user %d", actorID)
	}
	return err
}

// DeleteAccount is owner-only. The purge (edges, neighbor recounts, flag)
// happens in one repository transaction.
func (s *userService) DeleteAccount(ctx context.Context, actorID, targetID int64) error {
	if actorID != targetID {
		return apperrors.Forbiddenf("user %d cannot delete account %d", actorID, targetID)
	}
	err := s.userRepo.DeleteAccount(ctx, targetID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFoundf("user %d", targetID)
		}
		return err
	}
	s.logger.Info("Account deleted", zap.Int64("user_id", targetID))
	return nil
}

// ToggleFollow flips the follow edge from actor to target and reports the
// resulting state.
func (s *userService) ToggleFollow(ctx context.Context, actorID, targetID int64) (bool, error) {
	if actorID == targetID {
		return false, apperrors.Validationf("user %d cannot follow themselves", actorID)
	}
	nowFollowing, err := s.userRepo.ToggleFollow(ctx, actorID, targetID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, apperrors.NotFoundf("user missing or deleted")
		}
		return false, err
	}
	return nowFollowing, nil
}

func (s *userService) HighestFollowRatio(ctx context.Context) (*models.FollowRatio, error) {
	return s.userRepo.HighestFollowRatio(ctx)
}
