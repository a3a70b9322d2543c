package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locks expire on their own so a crashed process cannot wedge a session's
// actions; 30s comfortably exceeds the backend client timeout.
const inflightTTL = 30 * time.Second

// InflightLocker serialises point-affecting actions per session using
// SET NX. Key format: inflight:<session_id>:<action>
type InflightLocker struct {
	client *redis.Client
}

func NewInflightLocker(client *redis.Client) *InflightLocker {
	return &InflightLocker{client: client}
}

// Acquire reports whether the lock was taken; false means the same action is
// already running for this session.
func (l *InflightLocker) Acquire(ctx context.Context, sessionID, action string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(sessionID, action), "1", inflightTTL).Result()
	if err != nil {
		return false, fmt.Errorf("inflight acquire: %w", err)
	}
	return ok, nil
}

func (l *InflightLocker) Release(ctx context.Context, sessionID, action string) error {
	if err := l.client.Del(ctx, l.key(sessionID, action)).Err(); err != nil {
		return fmt.Errorf("inflight release: %w", err)
	}
	return nil
}

func (l *InflightLocker) key(sessionID, action string) string {
	return fmt.Sprintf("inflight:%s:%s", sessionID, action)
}
