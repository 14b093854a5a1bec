package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/metrics"
	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/internal/store"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
)

// Notifier is told about every node whose report was committed. It must not block.
type Notifier interface {
	NodeUpdated(id string)
}

// Ingestor persists node reports. A first report inserts every registry field;
// later reports only refresh the name and updated_at.
type Ingestor struct {
	store    store.Store
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewIngestor(s store.Store, notifier Notifier, m *metrics.Metrics) *Ingestor {
	return &Ingestor{
		store:    s,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

func (i *Ingestor) Ingest(ctx context.Context, r *models.Report) error {
	if strings.TrimSpace(r.ID) == "" {
		i.metrics.ReportIngested(metrics.ResultRejected)
		return ErrMissingID
	}
	now := i.now().Unix()

	err := i.store.InTx(ctx, func(tx store.Tx) error {
		inserted, err := tx.InsertNode(ctx, newNode(r, now))
		if err != nil {
			return err
		}
		if inserted {
			logger.Log.Info("New node registered", "node", r.ID)
		} else if err := tx.TouchNode(ctx, r.ID, r.Name, now); err != nil {
			return err
		}
		if err := tx.AppendMetric(ctx, &models.MetricSample{
			NodeID:      r.ID,
			CreatedAt:   now,
			CPU:         r.CPU,
			RAM:         r.RAM,
			Disk:        r.Disk,
			NetIn:       r.InboundRate(),
			NetOut:      r.OutboundRate(),
			TrafficUsed: r.TrafficUsedTotal(),
		}); err != nil {
			return err
		}
		if len(r.PingData) == 0 {
			return nil
		}
		probes := make([]models.ProbeSample, 0, len(r.PingData))
		for _, p := range r.PingData {
			probes = append(probes, models.ProbeSample{
				NodeID:    r.ID,
				Target:    p.Target,
				LatencyMS: int64(math.Round(p.MS)),
				CreatedAt: now,
			})
		}
		return tx.AppendProbes(ctx, probes)
	})
	if err != nil {
		i.metrics.ReportIngested(metrics.ResultFailed)
		logger.Log.Error("Report persistence failed", "node", r.ID, "err", err)
		return fmt.Errorf("persist report %s: %w", r.ID, err)
	}

	i.metrics.ReportIngested(metrics.ResultOK)
	if i.notifier != nil {
		i.notifier.NodeUpdated(r.ID)
	}
	return nil
}

func newNode(r *models.Report, now int64) *models.Node {
	price := r.Price
	if price == "" {
		price = models.PlaceholderUnset
	}
	expire := r.ExpireDate
	if expire == "" {
		expire = models.PlaceholderUnset
	}
	return &models.Node{
		ID:             r.ID,
		Name:           r.Name,
		Type:           r.Type,
		Loc:            r.Loc,
		Code:           r.Code,
		OS:             r.OS,
		Price:          price,
		ExpireDate:     expire,
		BandwidthLimit: r.BandwidthLimit,
		TagsJSON:       models.EncodeTags(r.Tags),
		UpdatedAt:      now,
	}
}
