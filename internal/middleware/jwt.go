package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
	"github.com/noah-isme/tuition-web/pkg/response"
)

// ContextPrincipalKey is the gin context key storing the authenticated student.
const ContextPrincipalKey = "currentStudent"

// TokenVerifier turns an access token into the request principal.
type TokenVerifier interface {
	Principal(token string) (models.Principal, error)
}

// JWT protects routes by requiring a valid access token in the Authorization header
// or, failing that, in the auth cookie.
func JWT(verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c, cookieName)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		principal, err := verifier.Principal(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

// OptionalJWT attaches the principal when present but does not block.
func OptionalJWT(verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c, cookieName)
		if err != nil {
			c.Next()
			return
		}

		principal, err := verifier.Principal(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the student attached by JWT or OptionalJWT.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}

func extractToken(c *gin.Context, cookieName string) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			return token, nil
		}
	}
	return "", appErrors.ErrUnauthorized
}
