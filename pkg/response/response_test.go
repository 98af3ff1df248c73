package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSONDrainsNotifications(t *testing.T) {
	c, w := newContext()
	calls := 0
	c.Set(NotificationsKey, NotificationSource(func(context.Context) []models.Notification {
		calls++
		return []models.Notification{{Level: models.NotificationSuccess, Message: "done"}}
	}))

	JSON(c, http.StatusOK, gin.H{"ok": true})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "done", body.Notifications[0].Message)
	assert.Equal(t, 1, calls)
}

func TestErrorUsesStatusFromTypedError(t *testing.T) {
	c, w := newContext()

	Error(c, appErrors.Validation("invalid tuition form", map[string]string{"budget": "Budget must be at least 1000"}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	assert.Equal(t, "Budget must be at least 1000", errBody["fields"].(map[string]interface{})["budget"])
	assert.Equal(t, []interface{}{}, body["notifications"])
}

func TestErrorNormalisesPlainErrors(t *testing.T) {
	c, w := newContext()

	Error(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
