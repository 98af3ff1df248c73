package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/tuition-web/internal/models"
	"github.com/noah-isme/tuition-web/pkg/response"
)

// ContextSessionKey is the gin context key storing the dashboard session id.
const ContextSessionKey = "sessionID"

// NotificationDrainer returns and clears a session's pending toasts.
type NotificationDrainer interface {
	Drain(ctx context.Context, sessionID string) []models.Notification
}

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session ensures every request carries a session id cookie and exposes the session's
// pending notifications to the response envelope.
func Session(opts SessionOptions, notifications NotificationDrainer) gin.HandlerFunc {
	maxAge := int(opts.TTL / time.Second)
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(opts.CookieName)
		if _, parseErr := uuid.Parse(sessionID); err != nil || parseErr != nil {
			sessionID = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, sessionID, maxAge, "/", "", opts.Secure, true)

		c.Set(ContextSessionKey, sessionID)
		if notifications != nil {
			c.Set(response.NotificationsKey, response.NotificationSource(func(ctx context.Context) []models.Notification {
				return notifications.Drain(ctx, sessionID)
			}))
		}
		c.Next()
	}
}

// SessionFrom returns the session id attached by Session.
func SessionFrom(c *gin.Context) string {
	if v, ok := c.Get(ContextSessionKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
