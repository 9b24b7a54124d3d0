package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker counts incorrect attempts per quiz session.
type Tracker interface {
	RecordIncorrect(ctx context.Context, sessionID, quizID string) (int64, error)
	Incorrect(ctx context.Context, sessionID, quizID string) (int64, error)
}

// RedisTracker keeps counters in Redis. Each counter expires ttl after its
// last increment.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	return &RedisTracker{client: client, ttl: ttl}
}

func incorrectKey(sessionID, quizID string) string {
	return fmt.Sprintf("codetester:quiz:%s:%s:incorrect", sessionID, quizID)
}

func (r *RedisTracker) RecordIncorrect(ctx context.Context, sessionID, quizID string) (int64, error) {
	key := incorrectKey(sessionID, quizID)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record incorrect attempt: %w", err)
	}
	return incr.Val(), nil
}

func (r *RedisTracker) Incorrect(ctx context.Context, sessionID, quizID string) (int64, error) {
	n, err := r.client.Get(ctx, incorrectKey(sessionID, quizID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read incorrect attempts: %w", err)
	}
	return n, nil
}

// MemoryTracker is an in-process Tracker for the CLI and single-node setups.
type MemoryTracker struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{counts: make(map[string]int64)}
}

func (m *MemoryTracker) RecordIncorrect(_ context.Context, sessionID, quizID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := incorrectKey(sessionID, quizID)
	m.counts[key]++
	return m.counts[key], nil
}

func (m *MemoryTracker) Incorrect(_ context.Context, sessionID, quizID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[incorrectKey(sessionID, quizID)], nil
}
