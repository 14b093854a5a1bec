package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	token, err := s.Create(ctx, "admin", time.Hour)
	if err != nil || token == "" {
		t.Fatalf("create: token=%q err=%v", token, err)
	}
	subject, ok, err := s.Lookup(ctx, token)
	if err != nil || !ok || subject != "admin" {
		t.Fatalf("lookup: subject=%q ok=%v err=%v", subject, ok, err)
	}

	now = now.Add(2 * time.Hour)
	if _, ok, _ := s.Lookup(ctx, token); ok {
		t.Fatal("expired session still valid")
	}

	token, _ = s.Create(ctx, "admin", time.Hour)
	if err := s.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, ok, _ := s.Lookup(ctx, token); ok {
		t.Fatal("revoked session still valid")
	}
}
