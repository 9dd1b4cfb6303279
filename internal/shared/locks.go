package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SaleLockKey builds redis keys for per-sale critical sections. Payment
// insertion must be serialized per sale so two concurrent payments cannot
// jointly exceed the sale total.
func SaleLockKey(saleID int64) string {
	return fmt.Sprintf("sales:sale:%d:lock", saleID)
}

// Locker provides best-effort advisory locks on top of Redis SET NX.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker constructs a Locker with the given lock TTL.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes the lock identified by key, retrying until ctx is cancelled.
// It returns a release function that must be called when done.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	owner := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("shared: acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}

	release := func() {
		// Only delete the lock if we still own it.
		current, err := l.client.Get(context.Background(), key).Result()
		if err == nil && current == owner {
			_ = l.client.Del(context.Background(), key).Err()
		}
	}
	return release, nil
}
