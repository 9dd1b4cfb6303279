package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenManager issues and resolves opaque bearer tokens backed by Redis.
type TokenManager struct {
	client *redis.Client
	ttl    time.Duration
}

type tokenPayload struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, ttl time.Duration) *TokenManager {
	return &TokenManager{client: client, ttl: ttl}
}

// Issue creates a token for the given identity and stores it with a TTL.
func (tm *TokenManager) Issue(ctx context.Context, id Identity) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(tokenPayload{UserID: id.UserID, Role: id.Role})
	if err != nil {
		return "", fmt.Errorf("shared: marshal token payload: %w", err)
	}
	if err := tm.client.Set(ctx, tm.key(token), payload, tm.ttl).Err(); err != nil {
		return "", fmt.Errorf("shared: store token: %w", err)
	}
	return token, nil
}

// Resolve looks up a token and returns the identity it was issued for. The TTL
// is refreshed on each successful lookup so active sessions stay alive.
func (tm *TokenManager) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthorized
	}
	raw, err := tm.client.Get(ctx, tm.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, fmt.Errorf("shared: load token: %w", err)
	}
	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Identity{}, fmt.Errorf("shared: decode token payload: %w", err)
	}
	_ = tm.client.Expire(ctx, tm.key(token), tm.ttl).Err()
	return Identity{UserID: payload.UserID, Role: payload.Role}, nil
}

// Revoke deletes a token, ending the session.
func (tm *TokenManager) Revoke(ctx context.Context, token string) error {
	if err := tm.client.Del(ctx, tm.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("shared: revoke token: %w", err)
	}
	return nil
}

func (tm *TokenManager) key(token string) string {
	return "auth:token:" + token
}
