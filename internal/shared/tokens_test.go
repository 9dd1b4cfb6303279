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

func newTokenManager(t *testing.T) (*shared.TokenManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewTokenManager(client, time.Hour), mr
}

func TestTokenIssueAndResolve(t *testing.T) {
	tm, _ := newTokenManager(t)
	ctx := context.Background()

	token, err := tm.Issue(ctx, shared.Identity{UserID: 42, Role: shared.RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := tm.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(42), identity.UserID)
	require.Equal(t, shared.RoleAdmin, identity.Role)
	require.True(t, identity.IsAdmin())
}

func TestTokenResolveUnknown(t *testing.T) {
	tm, _ := newTokenManager(t)

	_, err := tm.Resolve(context.Background(), "no-such-token")
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = tm.Resolve(context.Background(), "")
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTokenResolveExpired(t *testing.T) {
	tm, mr := newTokenManager(t)
	ctx := context.Background()

	token, err := tm.Issue(ctx, shared.Identity{UserID: 1, Role: shared.RoleUser})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = tm.Resolve(ctx, token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTokenRevoke(t *testing.T) {
	tm, _ := newTokenManager(t)
	ctx := context.Background()

	token, err := tm.Issue(ctx, shared.Identity{UserID: 1, Role: shared.RoleUser})
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(ctx, token))

	_, err = tm.Resolve(ctx, token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	// Revoking twice is harmless.
	require.NoError(t, tm.Revoke(ctx, token))
}
