package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker answers whether a user is currently online. Backed by TTL keys in
// redis so eviction needs no sweeper; the engine only ever reads it.
type Tracker interface {
	Marcar(ctx context.Context, userID int64) error
	EstaEnLinea(ctx context.Context, userID int64) (bool, error)
}

type redisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker builds a tracker with the given last-seen TTL.
func NewRedisTracker(client *redis.Client, ttl time.Duration) Tracker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisTracker{client: client, ttl: ttl}
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("presencia:usuario:%d", userID)
}

func (t *redisTracker) Marcar(ctx context.Context, userID int64) error {
	return t.client.Set(ctx, presenceKey(userID), time.Now().Unix(), t.ttl).Err()
}

func (t *redisTracker) EstaEnLinea(ctx context.Context, userID int64) (bool, error) {
	n, err := t.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
