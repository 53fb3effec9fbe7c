package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"recipehub/internal/apperrors"
	"recipehub/internal/config"
	"recipehub/internal/models"
)

type TokenService interface {
	Issue(user *models.User) (token string, expiresIn int64, err error)
	Verify(tokenString string) (userID int64, err error)
}

type tokenService struct {
	jwtSecret      string
	accessTokenTTL time.Duration
}

func NewTokenService(cfg *config.Config) TokenService {
	return &tokenService{
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// Issue signs a short-lived access token for the user.
func (s *tokenService) Issue(user *models.User) (string, int64, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"jti":     uuid.New().String(),
		"exp":     time.Now().Add(s.accessTokenTTL).Unix(),
		"iat":     time.Now().Unix(),
		"type":    "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.accessTokenTTL.Seconds()), nil
}

// Verify parses and validates the token and returns the embedded user id.
func (s *tokenService) Verify(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Unauthorizedf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return 0, apperrors.Unauthorizedf("invalid token: %v", err)
	}
	if !token.Valid {
		return 0, apperrors.Unauthorizedf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, apperrors.Unauthorizedf("malformed claims")
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, apperrors.Unauthorizedf("token carries no user id")
	}
	return int64(rawID), nil
}
