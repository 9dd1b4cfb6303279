package shared_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/campoverde/backoffice/internal/shared"
)

func newLocker(t *testing.T) *shared.Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewLocker(client, time.Minute)
}

func TestLockerAcquireRelease(t *testing.T) {
	locker := newLocker(t)
	ctx := context.Background()
	key := shared.SaleLockKey(1)

	release, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	release()

	// Lock is free again after release.
	release2, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	release2()
}

func TestLockerBlocksSecondHolder(t *testing.T) {
	locker := newLocker(t)
	key := shared.SaleLockKey(2)

	release, err := locker.Acquire(context.Background(), key)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, key)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSaleLockKey(t *testing.T) {
	require.Equal(t, "sales:sale:7:lock", shared.SaleLockKey(7))
}
