package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.StudentClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func studentClaims(email string, expiresIn time.Duration) models.StudentClaims {
	now := time.Now()
	return models.StudentClaims{
		Email: email,
		Name:  "Rahim",
		Role:  "student",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
}

func TestValidateTokenSuccess(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: testSecret})
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), studentClaims("rahim@example.com", time.Hour))

	principal, err := svc.Principal(token)

	require.NoError(t, err)
	assert.Equal(t, models.Principal{Email: "rahim@example.com", Name: "Rahim", Token: token}, principal)
}

func TestValidateTokenRejections(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: testSecret})

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), studentClaims("rahim@example.com", time.Hour)),
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte(testSecret), studentClaims("rahim@example.com", -time.Minute)),
		"other alg":    signToken(t, jwt.SigningMethodHS512, []byte(testSecret), studentClaims("rahim@example.com", time.Hour)),
		"no email":     signToken(t, jwt.SigningMethodHS256, []byte(testSecret), studentClaims("  ", time.Hour)),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
		})
	}
}
