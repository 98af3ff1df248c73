package service

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
)

// AuthConfig defines how access tokens issued by the backend are verified.
type AuthConfig struct {
	AccessTokenSecret string
}

// AuthService verifies the student's access token. Tokens are issued and refreshed by the backend.
type AuthService struct {
	logger *zap.Logger
	config AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{logger: logger, config: config}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.StudentClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing token")
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.StudentClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.StudentClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	claims.Email = strings.TrimSpace(claims.Email)
	if claims.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no email")
	}

	return claims, nil
}

// Principal converts verified claims into the request principal.
func (s *AuthService) Principal(tokenString string) (models.Principal, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return models.Principal{}, err
	}
	return models.Principal{Email: claims.Email, Name: claims.Name, Token: tokenString}, nil
}
