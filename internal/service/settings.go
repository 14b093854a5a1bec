package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/internal/store"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
)

type Settings struct {
	store store.Store
}

func NewSettings(s store.Store) *Settings {
	return &Settings{store: s}
}

// Public never exposes the admin password. A missing row reads as its empty
// value.
func (s *Settings) Public(ctx context.Context) (models.PublicConfig, error) {
	bg, err := s.optional(ctx, models.SettingBackgroundImage)
	if err != nil {
		return models.PublicConfig{}, err
	}
	targets, err := s.optional(ctx, models.SettingPingTargets)
	if err != nil {
		return models.PublicConfig{}, err
	}
	return models.PublicConfig{
		BackgroundImage: bg,
		PingTargets:     models.DecodePingTargets(targets),
	}, nil
}

func (s *Settings) optional(ctx context.Context, key string) (string, error) {
	value, err := s.store.Setting(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		logger.Log.Warn("Setting missing, using empty value", "key", key)
		return "", nil
	}
	return value, err
}

func (s *Settings) Update(ctx context.Context, key, value string) error {
	if !models.KnownSetting(key) {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	switch key {
	case models.SettingAdminPassword:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: empty password", ErrInvalidSetting)
		}
	case models.SettingPingTargets:
		var targets []models.PingTarget
		if err := json.Unmarshal([]byte(value), &targets); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSetting, err)
		}
		for _, t := range targets {
			if t.Name == "" || t.Host == "" {
				return fmt.Errorf("%w: ping target needs name and host", ErrInvalidSetting)
			}
		}
	}
	if err := s.store.PutSetting(ctx, key, value); err != nil {
		return err
	}
	logger.Log.Info("Setting updated", "key", key)
	return nil
}
