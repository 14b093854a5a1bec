package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/The-Promised-Neverland/estatus/internal/models"
)

const (
	qInsertNode = "INSERT INTO nodes (id, name, type, loc, code, os, price, expire_date, bandwidth_limit, tags, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) ON CONFLICT (id) DO NOTHING"
	qTouchNode  = "UPDATE nodes SET name = COALESCE(NULLIF($2, ''), name), updated_at = $3 WHERE id = $1"

	qAppendMetric = "INSERT INTO metric_samples (node_id, created_at, cpu, ram, disk, net_in, net_out, traffic_used) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"
)

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) InsertNode(ctx context.Context, n *models.Node) (bool, error) {
	res, err := t.tx.ExecContext(ctx, qInsertNode,
		n.ID, n.Name, n.Type, n.Loc, n.Code, n.OS, n.Price, n.ExpireDate,
		string(n.BandwidthLimit), n.TagsJSON, n.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert node %s: %w", n.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert node %s: %w", n.ID, err)
	}
	return affected == 1, nil
}

func (t *postgresTx) TouchNode(ctx context.Context, id, name string, updatedAt int64) error {
	if _, err := t.tx.ExecContext(ctx, qTouchNode, id, name, updatedAt); err != nil {
		return fmt.Errorf("touch node %s: %w", id, err)
	}
	return nil
}

func (t *postgresTx) AppendMetric(ctx context.Context, m *models.MetricSample) error {
	_, err := t.tx.ExecContext(ctx, qAppendMetric,
		m.NodeID, m.CreatedAt, m.CPU, m.RAM, m.Disk, m.NetIn, m.NetOut, m.TrafficUsed,
	)
	if err != nil {
		return fmt.Errorf("append metric %s: %w", m.NodeID, err)
	}
	return nil
}

func (t *postgresTx) AppendProbes(ctx context.Context, probes []models.ProbeSample) error {
	if len(probes) == 0 {
		return nil
	}
	query, args := probeInsert(probes)
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append probes %s: %w", probes[0].NodeID, err)
	}
	return nil
}

func probeInsert(probes []models.ProbeSample) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO probe_samples (node_id, target, latency_ms, created_at) VALUES ")
	args := make([]any, 0, len(probes)*4)
	for i, p := range probes {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d)", len(args)+1, len(args)+2, len(args)+3, len(args)+4))
		args = append(args, p.NodeID, p.Target, p.LatencyMS, p.CreatedAt)
	}
	return b.String(), args
}

var _ Tx = (*postgresTx)(nil)
