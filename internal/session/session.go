package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store keeps issued bearer tokens until they expire or are revoked.
type Store interface {
	Create(ctx context.Context, subject string, ttl time.Duration) (string, error)
	Lookup(ctx context.Context, token string) (string, bool, error)
	Revoke(ctx context.Context, token string) error
}

func newToken() string {
	return uuid.New().String()
}
