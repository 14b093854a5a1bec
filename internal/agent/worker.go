package agent

import (
	"context"
	"sync"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/config"
	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
)

// Worker reports this host once per interval.
type Worker struct {
	cfg       *config.Agent
	collector *Collector
	prober    *Prober
	client    *Client
	profile   *ProfileWatcher

	mu      sync.RWMutex
	targets []models.PingTarget
}

func NewWorker(cfg *config.Agent, collector *Collector, prober *Prober, client *Client, profile *ProfileWatcher) *Worker {
	return &Worker{
		cfg:       cfg,
		collector: collector,
		prober:    prober,
		client:    client,
		profile:   profile,
		targets:   models.DefaultPingTargets(),
	}
}

func (w *Worker) Run(ctx context.Context) {
	if w.profile != nil {
		if err := w.profile.Start(ctx); err != nil {
			logger.Log.Warn("Failed to watch profile", "err", err)
		} else {
			defer w.profile.Stop()
		}
	}
	w.refreshTargets(ctx)

	reportTicker := time.NewTicker(w.cfg.ReportInterval())
	defer reportTicker.Stop()
	targetTicker := time.NewTicker(w.cfg.TargetRefresh())
	defer targetTicker.Stop()

	logger.Log.Info("Reporter started", "node", w.cfg.NodeID(), "server", w.cfg.ServerURL(), "interval", w.cfg.ReportInterval())
	w.report(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Reporter stopped", "node", w.cfg.NodeID())
			return
		case <-targetTicker.C:
			w.refreshTargets(ctx)
		case <-reportTicker.C:
			w.report(ctx)
		}
	}
}

func (w *Worker) report(ctx context.Context) {
	if err := w.ReportOnce(ctx); err != nil {
		logger.Log.Warn("Report failed", "node", w.cfg.NodeID(), "err", err)
	}
}

// refreshTargets keeps the previous list when the server is unreachable.
func (w *Worker) refreshTargets(ctx context.Context) {
	targets, err := w.client.PingTargets(ctx)
	if err != nil {
		logger.Log.Warn("Failed to refresh probe targets", "err", err)
		return
	}
	w.mu.Lock()
	w.targets = targets
	w.mu.Unlock()
}

func (w *Worker) Targets() []models.PingTarget {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]models.PingTarget(nil), w.targets...)
}

func (w *Worker) ReportOnce(ctx context.Context) error {
	host, err := w.collector.Collect(ctx)
	if err != nil {
		return err
	}
	netIn, netOut, traffic := host.NetIn, host.NetOut, host.TrafficUsed
	report := &models.Report{
		ID:          w.cfg.NodeID(),
		OS:          host.OS,
		CPU:         host.CPU,
		RAM:         host.RAM,
		Disk:        host.Disk,
		NetIn:       &netIn,
		NetOut:      &netOut,
		TrafficUsed: &traffic,
		PingData:    w.prober.ProbeAll(ctx, w.Targets()),
	}
	if w.profile != nil {
		w.profile.Current().Apply(report)
	}
	return w.client.Report(ctx, report)
}
