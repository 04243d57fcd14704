package dedup

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Manager remembers processed webhook event ids in Redis so redelivered
// events are acknowledged without touching the ledger again. The ledger's
// session-id uniqueness already makes mutations idempotent; this cache
// just short-circuits the work and survives restarts. Callers treat a
// Redis failure as "not seen" and fall through to the ledger.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager connects to Redis and verifies the connection
func NewManager(redisURL string, ttl time.Duration) (*Manager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Manager{redis: client, ttl: ttl}, nil
}

func (m *Manager) Close() error { return m.redis.Close() }

func eventKey(eventID string) string { return "webhook:event:" + eventID }

// MarkProcessed records the event id and reports whether this delivery is
// the first one. Redelivered ids return false.
func (m *Manager) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	first, err := m.redis.SetNX(ctx, eventKey(eventID), time.Now().UTC().Format(time.RFC3339), m.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark event %s: %w", eventID, err)
	}
	return first, nil
}

// Seen reports whether the event id was already processed
func (m *Manager) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := m.redis.Exists(ctx, eventKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("check event %s: %w", eventID, err)
	}
	return n > 0, nil
}
