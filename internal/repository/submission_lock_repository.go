package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const submissionLockTTL = 30 * time.Second

// SubmissionLockRepository keeps a short-lived Redis lock per test transaction id,
// so replicas sharing a Redis never score the same id twice.
type SubmissionLockRepository struct {
	client lockClient
	ttl    time.Duration
}

// lockClient is the part of *redis.Client the lock needs.
type lockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func NewSubmissionLockRepository(client lockClient) *SubmissionLockRepository {
	return &SubmissionLockRepository{client: client, ttl: submissionLockTTL}
}

func lockKey(transactionID string) string {
	return fmt.Sprintf("test_transaction_lock:%s", transactionID)
}

// Acquire returns false when another submission holds the id.
func (r *SubmissionLockRepository) Acquire(ctx context.Context, transactionID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(transactionID), "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submission lock: %w", err)
	}
	return ok, nil
}

func (r *SubmissionLockRepository) Release(ctx context.Context, transactionID string) error {
	if err := r.client.Del(ctx, lockKey(transactionID)).Err(); err != nil {
		return fmt.Errorf("failed to release submission lock: %w", err)
	}
	return nil
}

// InMemorySubmissionLockRepository is used when no Redis is configured.
type InMemorySubmissionLockRepository struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewInMemorySubmissionLockRepository() *InMemorySubmissionLockRepository {
	return &InMemorySubmissionLockRepository{held: make(map[string]struct{})}
}

func (r *InMemorySubmissionLockRepository) Acquire(_ context.Context, transactionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.held[transactionID]; ok {
		return false, nil
	}
	r.held[transactionID] = struct{}{}
	return true, nil
}

func (r *InMemorySubmissionLockRepository) Release(_ context.Context, transactionID string) error {
	r.mu.Lock()
	delete(r.held, transactionID)
	r.mu.Unlock()
	return nil
}
