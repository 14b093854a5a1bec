package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/internal/store"
)

// SnapshotBuilder derives live snapshots from the store. Nothing is cached:
// every call reads the current rows.
type SnapshotBuilder struct {
	store store.Store
}

func NewSnapshotBuilder(s store.Store) *SnapshotBuilder {
	return &SnapshotBuilder{store: s}
}

// Build returns ErrNodeUnknown when id has no registry row.
func (b *SnapshotBuilder) Build(ctx context.Context, id string) (*models.LiveSnapshot, error) {
	node, err := b.store.Node(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNodeUnknown
	}
	if err != nil {
		return nil, err
	}
	metric, err := b.store.LatestMetric(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	probes, err := b.store.LatestProbes(ctx, id)
	if err != nil {
		return nil, err
	}

	pingData := make([]models.PingResult, 0, len(probes))
	for _, p := range probes {
		pingData = append(pingData, models.PingResult{Target: p.Target, MS: float64(p.LatencyMS)})
	}
	return &models.LiveSnapshot{
		ID:             node.ID,
		Name:           node.Name,
		Type:           node.Type,
		Loc:            node.Loc,
		Code:           node.Code,
		OS:             node.OS,
		Price:          node.Price,
		ExpireDate:     node.ExpireDate,
		BandwidthLimit: node.BandwidthLimit,
		Tags:           models.DecodeTags(node.TagsJSON),
		BuyLink:        node.BuyLink,
		DisplayOrder:   node.DisplayOrder,
		UpdatedAt:      node.UpdatedAt,
		MetricSample:   metric,
		PingData:       pingData,
	}, nil
}

// BuildAll snapshots every registered node. A node removed between listing and
// building is left out; any other failure aborts the whole set.
func (b *SnapshotBuilder) BuildAll(ctx context.Context) (map[string]*models.LiveSnapshot, error) {
	ids, err := b.store.NodeIDs(ctx)
	if err != nil {
		return nil, err
	}
	all := make(map[string]*models.LiveSnapshot, len(ids))
	for _, id := range ids {
		snap, err := b.Build(ctx, id)
		if errors.Is(err, ErrNodeUnknown) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", id, err)
		}
		all[id] = snap
	}
	return all, nil
}
