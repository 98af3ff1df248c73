package response

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
)

// NotificationsKey is the gin context key holding the session's NotificationSource.
const NotificationsKey = "pendingNotifications"

// NotificationSource drains the toasts queued for the current session.
type NotificationSource func(ctx context.Context) []models.Notification

// Envelope represents the common response contract.
type Envelope struct {
	Data          interface{}            `json:"data,omitempty"`
	Error         *appErrors.Error       `json:"error,omitempty"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
	Notifications []models.Notification  `json:"notifications"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data, Notifications: Pending(c)}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr, Notifications: Pending(c)})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Pending drains the session's notifications, or returns an empty list outside a session.
func Pending(c *gin.Context) []models.Notification {
	value, ok := c.Get(NotificationsKey)
	if !ok {
		return []models.Notification{}
	}
	source, ok := value.(NotificationSource)
	if !ok || source == nil {
		return []models.Notification{}
	}
	pending := source(c.Request.Context())
	if pending == nil {
		return []models.Notification{}
	}
	return pending
}
