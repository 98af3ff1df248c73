package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
	"github.com/noah-isme/tuition-web/pkg/httpclient"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveBackendCall(operation string, success bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	outcome := "ok"
	if !success {
		outcome = "fail"
	}
	o.calls = append(o.calls, operation+":"+outcome)
}

func newRepoForTest(t *testing.T, handler http.HandlerFunc) (*TuitionRepository, *recordingObserver) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	observer := &recordingObserver{}
	client := httpclient.New(server.URL, time.Second).WithCredential("token")
	return NewTuitionRepository(client, observer, zap.NewNop()), observer
}

func TestTuitionRepositoryListByStudent(t *testing.T) {
	repo, observer := newRepoForTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/my-tuitions", r.URL.Path)
		assert.Equal(t, "s@example.com", r.URL.Query().Get("studentEmail"))
		_, _ = w.Write([]byte(`[{"_id":"1","subject":"Physics","status":"pending","budget":2000,"daysPerWeek":3}]`))
	})

	tuitions, err := repo.ListByStudent(context.Background(), "s@example.com")

	require.NoError(t, err)
	require.Len(t, tuitions, 1)
	assert.Equal(t, "1", tuitions[0].ID)
	assert.Equal(t, []string{"list:ok"}, observer.calls)
}

func TestTuitionRepositoryListNullIsEmpty(t *testing.T) {
	repo, _ := newRepoForTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	tuitions, err := repo.ListByStudent(context.Background(), "s@example.com")

	require.NoError(t, err)
	assert.NotNil(t, tuitions)
	assert.Empty(t, tuitions)
}

func TestTuitionRepositoryUpdate(t *testing.T) {
	var got models.TuitionUpdate
	repo, _ := newRepoForTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tuitions/abc", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"modifiedCount":1}`))
	})

	err := repo.Update(context.Background(), "abc", models.TuitionUpdate{Subject: "Physics", Budget: 1500, DaysPerWeek: 4})

	require.NoError(t, err)
	assert.Equal(t, "Physics", got.Subject)
	assert.Equal(t, 1500, got.Budget)
}

func TestTuitionRepositoryUpdateUnsuccessfulBodyIsFailure(t *testing.T) {
	repo, observer := newRepoForTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"not yours"}`))
	})

	err := repo.Update(context.Background(), "abc", models.TuitionUpdate{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNetwork))
	assert.Equal(t, []string{"update:fail"}, observer.calls)
}

func TestTuitionRepositoryDelete(t *testing.T) {
	var method string
	repo, _ := newRepoForTest(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, repo.Delete(context.Background(), "abc"))
	assert.Equal(t, http.MethodDelete, method)
}

func TestTuitionRepositoryDeleteServerError(t *testing.T) {
	repo, _ := newRepoForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := repo.Delete(context.Background(), "abc")

	assert.True(t, errors.Is(err, appErrors.ErrNetwork))
}
