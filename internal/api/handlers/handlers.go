package handlers

import (
	"github.com/The-Promised-Neverland/estatus/internal/service"
	"github.com/The-Promised-Neverland/estatus/internal/store"
)

type Handler struct {
	Ingestor  *service.Ingestor
	Snapshots *service.SnapshotBuilder
	History   *service.History
	Settings  *service.Settings
	Auth      *service.Auth
	Store     store.Store
}

func NewHandler(
	ingestor *service.Ingestor,
	snapshots *service.SnapshotBuilder,
	history *service.History,
	settings *service.Settings,
	auth *service.Auth,
	s store.Store,
) *Handler {
	return &Handler{
		Ingestor:  ingestor,
		Snapshots: snapshots,
		History:   history,
		Settings:  settings,
		Auth:      auth,
		Store:     s,
	}
}
