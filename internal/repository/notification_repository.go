package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-web/internal/models"
)

const notificationKeyPrefix = "tuition-web:notifications:"

// RedisNotificationRepository queues toasts per session in a Redis list.
type RedisNotificationRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisNotificationRepository constructs the Redis-backed store.
func NewRedisNotificationRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisNotificationRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotificationRepository{client: client, ttl: ttl, logger: logger}
}

// Push appends a notification and refreshes the list TTL.
func (r *RedisNotificationRepository) Push(ctx context.Context, sessionID string, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	key := notificationKeyPrefix + sessionID
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis push %s: %w", key, err)
	}
	return nil
}

// Drain returns the queued notifications in order and clears the queue atomically.
func (r *RedisNotificationRepository) Drain(ctx context.Context, sessionID string) ([]models.Notification, error) {
	key := notificationKeyPrefix + sessionID
	pipe := r.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis drain %s: %w", key, err)
	}

	raw := rangeCmd.Val()
	out := make([]models.Notification, 0, len(raw))
	for _, item := range raw {
		var n models.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			r.logger.Warn("dropping malformed notification", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Close releases the Redis connection.
func (r *RedisNotificationRepository) Close() error {
	return r.client.Close()
}

// MemoryNotificationRepository keeps toasts in process. Used when Redis is disabled and in tests.
type MemoryNotificationRepository struct {
	mu     sync.Mutex
	queues map[string][]models.Notification
}

// NewMemoryNotificationRepository constructs an empty in-process store.
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{queues: make(map[string][]models.Notification)}
}

// Push appends a notification to the session queue.
func (r *MemoryNotificationRepository) Push(_ context.Context, sessionID string, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queues[sessionID] = append(r.queues[sessionID], n)
	return nil
}

// Drain returns and clears the session queue.
func (r *MemoryNotificationRepository) Drain(_ context.Context, sessionID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queued := r.queues[sessionID]
	delete(r.queues, sessionID)
	if queued == nil {
		return []models.Notification{}, nil
	}
	return queued, nil
}
