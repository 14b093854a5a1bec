package service

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/internal/session"
	"github.com/The-Promised-Neverland/estatus/internal/store"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
)

const adminSubject = "admin"

// Auth checks the admin password and issues session tokens.
type Auth struct {
	store    store.Store
	sessions session.Store
	ttl      time.Duration
}

func NewAuth(s store.Store, sessions session.Store, ttl time.Duration) *Auth {
	return &Auth{store: s, sessions: sessions, ttl: ttl}
}

func (a *Auth) TTL() time.Duration {
	return a.ttl
}

func (a *Auth) Login(ctx context.Context, password string) (string, error) {
	want, err := a.store.Setting(ctx, models.SettingAdminPassword)
	if err != nil {
		return "", err
	}
	if password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(want)) != 1 {
		logger.Log.Warn("Rejected admin login")
		return "", ErrInvalidCredentials
	}
	return a.sessions.Create(ctx, adminSubject, a.ttl)
}

func (a *Auth) Authenticate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	subject, ok, err := a.sessions.Lookup(ctx, token)
	if err != nil {
		return false, err
	}
	return ok && subject == adminSubject, nil
}

func (a *Auth) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.Revoke(ctx, token)
}
