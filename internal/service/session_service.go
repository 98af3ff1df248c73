package service

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-web/internal/models"
)

// BackendFactory builds a backend capability authenticated with the student's token.
type BackendFactory func(token string) TuitionBackend

// SessionConfig tunes the registry.
type SessionConfig struct {
	TTL time.Duration
}

type session struct {
	principal  models.Principal
	controller *TuitionListController
	lastSeen   time.Time
}

// SessionRegistry keeps one dashboard controller per browser session.
// Idle sessions are evicted lazily on access and their controllers are closed.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session

	backends      BackendFactory
	notifications *NotificationService
	validate      *validator.Validate
	metrics       *MetricsService
	logger        *zap.Logger
	cfg           SessionConfig
	now           func() time.Time
}

// NewSessionRegistry constructs an empty registry.
func NewSessionRegistry(backends BackendFactory, notifications *NotificationService, metrics *MetricsService, logger *zap.Logger, cfg SessionConfig) *SessionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	return &SessionRegistry{
		sessions:      map[string]*session{},
		backends:      backends,
		notifications: notifications,
		validate:      NewTuitionValidate(),
		metrics:       metrics,
		logger:        logger,
		cfg:           cfg,
		now:           time.Now,
	}
}

// Acquire returns the controller for sessionID, creating it on first use.
// A refreshed token rebinds the existing controller; a different student replaces it.
func (r *SessionRegistry) Acquire(sessionID string, principal models.Principal) *TuitionListController {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweep(now)

	if s, ok := r.sessions[sessionID]; ok {
		if s.principal.Email == principal.Email {
			if s.principal.Token != principal.Token {
				s.controller.Rebind(r.backends(principal.Token))
				s.principal = principal
			}
			s.lastSeen = now
			return s.controller
		}
		r.logger.Info("session changed student", zap.String("session_id", sessionID))
		s.controller.Close()
	}

	controller := NewTuitionListController(ControllerParams{
		Backend:  r.backends(principal.Token),
		Notifier: r.notifications.ForSession(sessionID),
		Validate: r.validate,
		Logger:   r.logger.With(zap.String("session_id", sessionID)),
	})
	r.sessions[sessionID] = &session{principal: principal, controller: controller, lastSeen: now}
	r.metrics.SetActiveSessions(len(r.sessions))
	return controller
}

// Lookup returns the live controller for sessionID without creating one.
func (r *SessionRegistry) Lookup(sessionID string) (*TuitionListController, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep(r.now())
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return s.controller, true
}

// End tears down the session's controller.
func (r *SessionRegistry) End(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		s.controller.Close()
		delete(r.sessions, sessionID)
		r.metrics.SetActiveSessions(len(r.sessions))
	}
}

// Count returns the number of live sessions.
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll tears down every session, e.g. on shutdown.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.controller.Close()
		delete(r.sessions, id)
	}
	r.metrics.SetActiveSessions(0)
}

// sweep must be called with mu held.
func (r *SessionRegistry) sweep(now time.Time) {
	evicted := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) < r.cfg.TTL {
			continue
		}
		s.controller.Close()
		delete(r.sessions, id)
		evicted++
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle sessions", zap.Int("count", evicted))
		r.metrics.SetActiveSessions(len(r.sessions))
	}
}
