package store

var schema = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS nodes (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL DEFAULT '',
		type            TEXT NOT NULL DEFAULT '',
		loc             TEXT NOT NULL DEFAULT '',
		code            TEXT NOT NULL DEFAULT '',
		os              TEXT NOT NULL DEFAULT '',
		price           TEXT NOT NULL DEFAULT '',
		expire_date     TEXT NOT NULL DEFAULT '',
		bandwidth_limit TEXT NOT NULL DEFAULT '',
		tags            TEXT NOT NULL DEFAULT '[]',
		buy_link        TEXT NOT NULL DEFAULT '',
		display_order   INTEGER NOT NULL DEFAULT 0,
		updated_at      BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS metric_samples (
		id           BIGSERIAL PRIMARY KEY,
		node_id      TEXT NOT NULL,
		created_at   BIGINT NOT NULL,
		cpu          DOUBLE PRECISION NOT NULL DEFAULT 0,
		ram          DOUBLE PRECISION NOT NULL DEFAULT 0,
		disk         DOUBLE PRECISION NOT NULL DEFAULT 0,
		net_in       DOUBLE PRECISION NOT NULL DEFAULT 0,
		net_out      DOUBLE PRECISION NOT NULL DEFAULT 0,
		traffic_used DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_metric_node_time ON metric_samples (node_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS probe_samples (
		id         BIGSERIAL PRIMARY KEY,
		node_id    TEXT NOT NULL,
		target     TEXT NOT NULL,
		latency_ms INTEGER NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_probe_node_time ON probe_samples (node_id, created_at)`,
}
