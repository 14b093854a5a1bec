package store

import (
	"context"
	"errors"

	"github.com/The-Promised-Neverland/estatus/internal/models"
)

var ErrNotFound = errors.New("store: not found")

// Tx is the write surface of one report ingestion. Every call made through a Tx
// commits together or not at all.
type Tx interface {
	// InsertNode creates the node row and reports false, without error, when the
	// id already exists.
	InsertNode(ctx context.Context, n *models.Node) (bool, error)
	// TouchNode refreshes updated_at and, when name is non-empty, the name.
	TouchNode(ctx context.Context, id, name string, updatedAt int64) error
	AppendMetric(ctx context.Context, m *models.MetricSample) error
	AppendProbes(ctx context.Context, probes []models.ProbeSample) error
}

// Store is the persistent source of truth for nodes, samples and settings.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	NodeIDs(ctx context.Context) ([]string, error)
	Node(ctx context.Context, id string) (*models.Node, error)
	// LatestMetric returns ErrNotFound when the node has no samples. Ties on
	// created_at resolve to the most recently appended row.
	LatestMetric(ctx context.Context, nodeID string) (*models.MetricSample, error)
	// LatestProbes returns every probe sharing the node's maximum probe timestamp.
	LatestProbes(ctx context.Context, nodeID string) ([]models.ProbeSample, error)
	// MetricsSince returns samples with created_at > since, oldest first.
	MetricsSince(ctx context.Context, nodeID string, since int64) ([]models.MetricSample, error)

	Setting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error

	Ping(ctx context.Context) error
	Close() error
}
