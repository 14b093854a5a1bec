package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/internal/store"
)

// History serves the charting series of a node over a trailing window.
type History struct {
	store  store.Store
	window time.Duration
	now    func() time.Time
}

func NewHistory(s store.Store, window time.Duration) *History {
	return &History{store: s, window: window, now: time.Now}
}

// Query returns points strictly newer than now minus the window, oldest first.
// An unknown node yields an empty series.
func (h *History) Query(ctx context.Context, id string) ([]models.HistoryPoint, error) {
	points := []models.HistoryPoint{}
	if strings.TrimSpace(id) == "" {
		return points, nil
	}
	since := h.now().Add(-h.window).Unix()
	samples, err := h.store.MetricsSince(ctx, id, since)
	if errors.Is(err, store.ErrNotFound) {
		return points, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range samples {
		points = append(points, samples[i].HistoryPoint())
	}
	return points, nil
}
