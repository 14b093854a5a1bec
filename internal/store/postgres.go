package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	_ "github.com/lib/pq"
)

const (
	qSeedSetting = "INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING"
	qSetting     = "SELECT value FROM settings WHERE key = $1"
	qPutSetting  = "INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value"

	qNodeIDs = "SELECT id FROM nodes ORDER BY display_order, id"
	qNode    = "SELECT id, name, type, loc, code, os, price, expire_date, bandwidth_limit, tags, buy_link, display_order, updated_at FROM nodes WHERE id = $1"

	qLatestMetric = "SELECT created_at, cpu, ram, disk, net_in, net_out, traffic_used FROM metric_samples WHERE node_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1"
	qLatestProbes = "SELECT target, latency_ms, created_at FROM probe_samples WHERE node_id = $1 AND created_at = (SELECT MAX(created_at) FROM probe_samples WHERE node_id = $1) ORDER BY id"
	qMetricsSince = "SELECT created_at, cpu, ram, disk, net_in, net_out, traffic_used FROM metric_samples WHERE node_id = $1 AND created_at > $2 ORDER BY created_at ASC, id ASC"
)

// Postgres is the Store backed by a pooled *sql.DB.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres connects with lib/pq and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, maxOpenConns int) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns / 2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgres(db), nil
}

// Migrate creates the schema and seeds absent settings in one transaction.
func (p *Postgres) Migrate(ctx context.Context) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migrate: %w", err)
	}
	defer tx.Rollback()
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	defaults := models.DefaultSettings()
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, qSeedSetting, key, defaults[key]); err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrate: %w", err)
	}
	logger.Log.Info("Store schema ready")
	return nil
}

func (p *Postgres) InTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&postgresTx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			logger.Log.Error("Rollback failed", "err", rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (p *Postgres) NodeIDs(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, qNodeIDs)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan node id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *Postgres) Node(ctx context.Context, id string) (*models.Node, error) {
	var n models.Node
	var bandwidth string
	err := p.db.QueryRowContext(ctx, qNode, id).Scan(
		&n.ID, &n.Name, &n.Type, &n.Loc, &n.Code, &n.OS, &n.Price, &n.ExpireDate,
		&bandwidth, &n.TagsJSON, &n.BuyLink, &n.DisplayOrder, &n.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	n.BandwidthLimit = models.BandwidthLimit(bandwidth)
	return &n, nil
}

func (p *Postgres) LatestMetric(ctx context.Context, nodeID string) (*models.MetricSample, error) {
	m := models.MetricSample{NodeID: nodeID}
	err := p.db.QueryRowContext(ctx, qLatestMetric, nodeID).Scan(
		&m.CreatedAt, &m.CPU, &m.RAM, &m.Disk, &m.NetIn, &m.NetOut, &m.TrafficUsed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest metric %s: %w", nodeID, err)
	}
	return &m, nil
}

func (p *Postgres) LatestProbes(ctx context.Context, nodeID string) ([]models.ProbeSample, error) {
	rows, err := p.db.QueryContext(ctx, qLatestProbes, nodeID)
	if err != nil {
		return nil, fmt.Errorf("latest probes %s: %w", nodeID, err)
	}
	defer rows.Close()
	probes := []models.ProbeSample{}
	for rows.Next() {
		ps := models.ProbeSample{NodeID: nodeID}
		if err := rows.Scan(&ps.Target, &ps.LatencyMS, &ps.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan probe: %w", err)
		}
		probes = append(probes, ps)
	}
	return probes, rows.Err()
}

func (p *Postgres) MetricsSince(ctx context.Context, nodeID string, since int64) ([]models.MetricSample, error) {
	rows, err := p.db.QueryContext(ctx, qMetricsSince, nodeID, since)
	if err != nil {
		return nil, fmt.Errorf("metric history %s: %w", nodeID, err)
	}
	defer rows.Close()
	samples := []models.MetricSample{}
	for rows.Next() {
		m := models.MetricSample{NodeID: nodeID}
		if err := rows.Scan(&m.CreatedAt, &m.CPU, &m.RAM, &m.Disk, &m.NetIn, &m.NetOut, &m.TrafficUsed); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		samples = append(samples, m)
	}
	return samples, rows.Err()
}

func (p *Postgres) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := p.db.QueryRowContext(ctx, qSetting, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) PutSetting(ctx context.Context, key, value string) error {
	if _, err := p.db.ExecContext(ctx, qPutSetting, key, value); err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

var _ Store = (*Postgres)(nil)
