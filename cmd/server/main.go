package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/api/handlers"
	"github.com/The-Promised-Neverland/estatus/internal/api/routers"
	"github.com/The-Promised-Neverland/estatus/internal/config"
	"github.com/The-Promised-Neverland/estatus/internal/metrics"
	"github.com/The-Promised-Neverland/estatus/internal/service"
	"github.com/The-Promised-Neverland/estatus/internal/session"
	"github.com/The-Promised-Neverland/estatus/internal/sse"
	"github.com/The-Promised-Neverland/estatus/internal/store"
	"github.com/The-Promised-Neverland/estatus/internal/ws"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	"github.com/The-Promised-Neverland/estatus/pkg/system"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.NewServer()
	logger.Init(cfg.LogFile())
	system.InitStartTime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	sessions, err := openSessions(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open session store", "err", err)
		os.Exit(1)
	}

	var (
		m        *metrics.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.MetricsEnabled() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		gatherer = reg
	}

	builder := service.NewSnapshotBuilder(st)
	broadcaster := service.NewBroadcaster(builder, m)
	wsHub := ws.NewHub(broadcaster, m)
	sseHub := sse.NewSSEHub(m)
	broadcaster.Attach(wsHub)
	broadcaster.Attach(sseHub)

	handler := handlers.NewHandler(
		service.NewIngestor(st, broadcaster, m),
		builder,
		service.NewHistory(st, cfg.HistoryWindow()),
		service.NewSettings(st),
		service.NewAuth(st, sessions, cfg.SessionTTL()),
		st,
	)
	gin.SetMode(gin.ReleaseMode)
	router := routers.NewRouter(
		handler,
		handlers.NewWebSocketHandler(wsHub),
		handlers.NewSSEHandler(sseHub, broadcaster),
		m,
		gatherer,
	).SetupRouter()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Log.Info("Server listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	wsHub.Close()
	sseHub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("Graceful shutdown failed", "err", err)
	}
	broadcaster.Close()
}

func openStore(ctx context.Context, cfg *config.Server) (store.Store, error) {
	if cfg.DatabaseURL() == "" {
		logger.Log.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		return store.NewMemory(), nil
	}
	pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL(), cfg.DBMaxOpenConns())
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	logger.Log.Info("Connected to Postgres")
	return pg, nil
}

func openSessions(ctx context.Context, cfg *config.Server) (session.Store, error) {
	if cfg.RedisAddr() == "" {
		return session.NewMemoryStore(), nil
	}
	client, err := session.DialRedis(ctx, cfg.RedisAddr(), cfg.RedisPassword())
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Connected to Redis", "addr", cfg.RedisAddr())
	return session.NewRedisStore(client), nil
}
