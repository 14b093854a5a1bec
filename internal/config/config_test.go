package config

import (
	"testing"
	"time"
)

func TestNewServerDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "REDIS_ADDR", "SESSION_TTL", "HISTORY_WINDOW", "DB_MAX_OPEN_CONNS", "METRICS_ENABLED"} {
		t.Setenv(key, "")
	}
	cfg := NewServer()
	if cfg.Addr() != ":3000" {
		t.Fatalf("addr=%q", cfg.Addr())
	}
	if cfg.DatabaseURL() != "" || cfg.RedisAddr() != "" {
		t.Fatalf("expected empty database/redis, got %q/%q", cfg.DatabaseURL(), cfg.RedisAddr())
	}
	if cfg.SessionTTL() != 7*24*time.Hour {
		t.Fatalf("session ttl=%v", cfg.SessionTTL())
	}
	if cfg.HistoryWindow() != 24*time.Hour {
		t.Fatalf("history window=%v", cfg.HistoryWindow())
	}
	if cfg.DBMaxOpenConns() != 20 || !cfg.MetricsEnabled() {
		t.Fatalf("max conns=%d metrics=%v", cfg.DBMaxOpenConns(), cfg.MetricsEnabled())
	}
}

func TestNewServerFromEnv(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/estatus?sslmode=disable")
	t.Setenv("HISTORY_WINDOW", "6h")
	t.Setenv("SESSION_TTL", "garbage")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := NewServer()
	if cfg.Addr() != ":8088" {
		t.Fatalf("addr=%q", cfg.Addr())
	}
	if cfg.DatabaseURL() == "" {
		t.Fatal("database url not read from env")
	}
	if cfg.HistoryWindow() != 6*time.Hour {
		t.Fatalf("history window=%v", cfg.HistoryWindow())
	}
	if cfg.SessionTTL() != 7*24*time.Hour {
		t.Fatalf("invalid ttl should fall back to default, got %v", cfg.SessionTTL())
	}
	if cfg.MetricsEnabled() {
		t.Fatal("metrics should be disabled")
	}
}

func TestNewAgentFromEnv(t *testing.T) {
	t.Setenv("NODE_ID", "hk-01")
	t.Setenv("SERVER_URL", "http://status.example.com/")
	t.Setenv("REPORT_INTERVAL", "10s")

	cfg := NewAgent()
	if cfg.NodeID() != "hk-01" {
		t.Fatalf("node id=%q", cfg.NodeID())
	}
	if cfg.ServerURL() != "http://status.example.com" {
		t.Fatalf("server url=%q", cfg.ServerURL())
	}
	if cfg.ReportInterval() != 10*time.Second {
		t.Fatalf("interval=%v", cfg.ReportInterval())
	}
	if cfg.ProbeTimeout() != 2*time.Second || cfg.ServiceName() == "" {
		t.Fatalf("defaults not applied: timeout=%v service=%q", cfg.ProbeTimeout(), cfg.ServiceName())
	}
}
