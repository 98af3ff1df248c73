package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-web/internal/models"
	"github.com/noah-isme/tuition-web/internal/repository"
)

type registryFixture struct {
	registry *SessionRegistry
	tokens   []string
	backend  *fakeBackend
	store    *repository.MemoryNotificationRepository
	clock    time.Time
}

func newRegistryFixture(ttl time.Duration) *registryFixture {
	f := &registryFixture{
		backend: &fakeBackend{tuitions: sampleTuitions()},
		store:   repository.NewMemoryNotificationRepository(),
		clock:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	notifications := NewNotificationService(f.store, nil, nil)
	f.registry = NewSessionRegistry(func(token string) TuitionBackend {
		f.tokens = append(f.tokens, token)
		return f.backend
	}, notifications, nil, nil, SessionConfig{TTL: ttl})
	f.registry.now = func() time.Time { return f.clock }
	return f
}

func student(email, token string) models.Principal {
	return models.Principal{Email: email, Token: token}
}

func TestRegistryReusesControllerPerSession(t *testing.T) {
	f := newRegistryFixture(time.Hour)

	first := f.registry.Acquire("s1", student("a@example.com", "tok"))
	second := f.registry.Acquire("s1", student("a@example.com", "tok"))
	other := f.registry.Acquire("s2", student("a@example.com", "tok"))

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, f.registry.Count())
	assert.Equal(t, []string{"tok", "tok"}, f.tokens)
}

func TestRegistryRebindsOnTokenRefresh(t *testing.T) {
	f := newRegistryFixture(time.Hour)
	first := f.registry.Acquire("s1", student("a@example.com", "old"))
	require.NoError(t, first.Load(context.Background(), "a@example.com"))

	again := f.registry.Acquire("s1", student("a@example.com", "new"))

	assert.Same(t, first, again)
	assert.True(t, again.Loaded())
	assert.Equal(t, []string{"old", "new"}, f.tokens)
}

func TestRegistryReplacesControllerForDifferentStudent(t *testing.T) {
	f := newRegistryFixture(time.Hour)
	first := f.registry.Acquire("s1", student("a@example.com", "tok"))

	next := f.registry.Acquire("s1", student("b@example.com", "tok-b"))

	assert.NotSame(t, first, next)
	assert.False(t, next.Loaded())
	// The replaced controller ignores further loads.
	require.NoError(t, first.Load(context.Background(), "a@example.com"))
	assert.False(t, first.Loaded())
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	f := newRegistryFixture(10 * time.Minute)
	first := f.registry.Acquire("s1", student("a@example.com", "tok"))

	f.clock = f.clock.Add(11 * time.Minute)
	_, ok := f.registry.Lookup("s1")

	assert.False(t, ok)
	assert.Equal(t, 0, f.registry.Count())
	next := f.registry.Acquire("s1", student("a@example.com", "tok"))
	assert.NotSame(t, first, next)
}

func TestRegistryEndClosesController(t *testing.T) {
	f := newRegistryFixture(time.Hour)
	ctrl := f.registry.Acquire("s1", student("a@example.com", "tok"))

	f.registry.End("s1")

	assert.Equal(t, 0, f.registry.Count())
	require.NoError(t, ctrl.Load(context.Background(), "a@example.com"))
	assert.Equal(t, 0, f.backend.listCalls)
}

func TestRegistryRoutesToastsToSession(t *testing.T) {
	f := newRegistryFixture(time.Hour)
	f.backend.listErr = errBackendDown
	ctrl := f.registry.Acquire("s1", student("a@example.com", "tok"))

	require.Error(t, ctrl.Load(context.Background(), "a@example.com"))

	pending, err := f.store.Drain(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.NotificationError, pending[0].Level)
	assert.Equal(t, "Failed to load your tuitions", pending[0].Message)
}

func TestRegistryOpenEditUsesRefreshedToken(t *testing.T) {
	backends := map[string]*fakeBackend{
		"old": {tuitions: sampleTuitions()},
		"new": {tuitions: sampleTuitions()},
	}
	notifications := NewNotificationService(repository.NewMemoryNotificationRepository(), nil, nil)
	registry := NewSessionRegistry(func(token string) TuitionBackend {
		return backends[token]
	}, notifications, nil, nil, SessionConfig{TTL: time.Hour})

	ctrl := registry.Acquire("s1", student("a@example.com", "old"))
	require.NoError(t, ctrl.Load(context.Background(), "a@example.com"))
	_, err := ctrl.RequestEdit("1")
	require.NoError(t, err)

	registry.Acquire("s1", student("a@example.com", "new"))
	require.NoError(t, ctrl.SubmitEdit(context.Background(), validForm()))

	assert.Empty(t, backends["old"].updateCalls)
	assert.Equal(t, []string{"1"}, backends["new"].updateCalls)
}
