package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tuition-web/internal/models"
)

// Notifier surfaces a user-visible toast.
type Notifier interface {
	Notify(ctx context.Context, level models.NotificationLevel, message string)
}

// NotificationStore persists queued toasts per session.
type NotificationStore interface {
	Push(ctx context.Context, sessionID string, n models.Notification) error
	Drain(ctx context.Context, sessionID string) ([]models.Notification, error)
}

// NotificationService queues toasts raised by dashboard operations until the next response drains them.
type NotificationService struct {
	store   NotificationStore
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewNotificationService constructs the service.
func NewNotificationService(store NotificationStore, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, metrics: metrics, logger: logger, now: time.Now}
}

// ForSession returns a Notifier bound to one session.
func (s *NotificationService) ForSession(sessionID string) Notifier {
	return &sessionNotifier{svc: s, sessionID: sessionID}
}

// Drain returns and clears the session's pending toasts. Store failures yield an empty slice.
func (s *NotificationService) Drain(ctx context.Context, sessionID string) []models.Notification {
	if s == nil || s.store == nil || sessionID == "" {
		return []models.Notification{}
	}
	pending, err := s.store.Drain(ctx, sessionID)
	if err != nil {
		s.logger.Warn("notification drain failed", zap.String("session_id", sessionID), zap.Error(err))
		return []models.Notification{}
	}
	return pending
}

func (s *NotificationService) push(ctx context.Context, sessionID string, level models.NotificationLevel, message string) {
	n := models.Notification{Level: level, Message: message, CreatedAt: s.now().UTC()}
	s.metrics.ObserveNotification(level)
	s.logger.Debug("notification", zap.String("session_id", sessionID), zap.String("level", string(level)), zap.String("message", message))
	if s.store == nil {
		return
	}
	// A toast must survive the request that raised it being cancelled.
	if err := s.store.Push(context.WithoutCancel(ctx), sessionID, n); err != nil {
		s.logger.Warn("notification push failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

type sessionNotifier struct {
	svc       *NotificationService
	sessionID string
}

func (n *sessionNotifier) Notify(ctx context.Context, level models.NotificationLevel, message string) {
	n.svc.push(ctx, n.sessionID, level, message)
}
