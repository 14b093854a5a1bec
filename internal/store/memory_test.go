package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/models"
)

func TestMemoryLatestMetricPrefersMaxTimestamp(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	for _, ts := range []int64{20, 30, 10} {
		if err := s.InTx(ctx, func(tx Tx) error {
			return tx.AppendMetric(ctx, &models.MetricSample{NodeID: "n", CreatedAt: ts, CPU: float64(ts)})
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	m, err := s.LatestMetric(ctx, "n")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if m.CreatedAt != 30 || m.CPU != 30 {
		t.Fatalf("latest=%+v", m)
	}
	if _, err := s.LatestMetric(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	history, _ := s.MetricsSince(ctx, "n", 10)
	if len(history) != 2 || history[0].CreatedAt != 20 || history[1].CreatedAt != 30 {
		t.Fatalf("history=%+v", history)
	}
}

func TestMemoryTxDiscardsWritesOnError(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx Tx) error {
		if _, err := tx.InsertNode(ctx, &models.Node{ID: "n"}); err != nil {
			return err
		}
		if err := tx.AppendMetric(ctx, &models.MetricSample{NodeID: "n", CreatedAt: 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if ids, _ := s.NodeIDs(ctx); len(ids) != 0 {
		t.Fatalf("node leaked: %v", ids)
	}
	if _, err := s.LatestMetric(ctx, "n"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("metric leaked: %v", err)
	}
}

func TestMemoryInsertNodeOnce(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	var first, second bool
	_ = s.InTx(ctx, func(tx Tx) error {
		first, _ = tx.InsertNode(ctx, &models.Node{ID: "n", Name: "a"})
		second, _ = tx.InsertNode(ctx, &models.Node{ID: "n", Name: "b"})
		return nil
	})
	if !first || second {
		t.Fatalf("first=%v second=%v", first, second)
	}
	_ = s.InTx(ctx, func(tx Tx) error {
		return tx.TouchNode(ctx, "n", "", 42)
	})
	n, _ := s.Node(ctx, "n")
	if n.Name != "a" || n.UpdatedAt != 42 {
		t.Fatalf("node=%+v", n)
	}
}

func TestMemoryLatestProbesGroup(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	_ = s.InTx(ctx, func(tx Tx) error {
		return tx.AppendProbes(ctx, []models.ProbeSample{{NodeID: "n", Target: "A", LatencyMS: 10, CreatedAt: 1}})
	})
	_ = s.InTx(ctx, func(tx Tx) error {
		return tx.AppendProbes(ctx, []models.ProbeSample{
			{NodeID: "n", Target: "B", LatencyMS: 20, CreatedAt: 2},
			{NodeID: "n", Target: "C", LatencyMS: 30, CreatedAt: 2},
		})
	})
	probes, _ := s.LatestProbes(ctx, "n")
	if len(probes) != 2 || probes[0].Target != "B" || probes[1].Target != "C" {
		t.Fatalf("probes=%+v", probes)
	}
	empty, _ := s.LatestProbes(ctx, "none")
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}
}

func TestMemorySettingsSeeded(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	pwd, err := s.Setting(ctx, models.SettingAdminPassword)
	if err != nil || pwd != "admin" {
		t.Fatalf("admin password=%q err=%v", pwd, err)
	}
	if _, err := s.Setting(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryTxDoesNotBlockOtherTx(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	inside := make(chan struct{})
	release := make(chan struct{})
	slowDone := make(chan error, 1)
	go func() {
		slowDone <- s.InTx(ctx, func(tx Tx) error {
			close(inside)
			<-release
			return tx.AppendMetric(ctx, &models.MetricSample{NodeID: "slow", CreatedAt: 1})
		})
	}()
	<-inside

	done := make(chan error, 1)
	go func() {
		done <- s.InTx(ctx, func(tx Tx) error {
			_, err := tx.InsertNode(ctx, &models.Node{ID: "fast"})
			return err
		})
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("fast tx: %v", err)
		}
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatalf("transaction waited on an unrelated open transaction")
	}
	close(release)
	if err := <-slowDone; err != nil {
		t.Fatalf("slow tx: %v", err)
	}
	if _, err := s.LatestMetric(ctx, "slow"); err != nil {
		t.Fatalf("slow tx writes missing: %v", err)
	}
}

func TestMemoryRegistrationRaceKeepsOneNode(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	first := &models.Node{ID: "n1", Name: "first", Loc: "HK", UpdatedAt: 1}
	second := &models.Node{ID: "n1", Name: "second", Loc: "JP", UpdatedAt: 2}

	inside := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- s.InTx(ctx, func(tx Tx) error {
			inserted, err := tx.InsertNode(ctx, first)
			if err != nil || !inserted {
				return errors.New("first insert not accepted")
			}
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside
	if err := s.InTx(ctx, func(tx Tx) error {
		_, err := tx.InsertNode(ctx, second)
		return err
	}); err != nil {
		t.Fatalf("second tx: %v", err)
	}
	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first tx: %v", err)
	}

	ids, _ := s.NodeIDs(ctx)
	if len(ids) != 1 {
		t.Fatalf("expected one node, got %v", ids)
	}
	n, _ := s.Node(ctx, "n1")
	if n.Loc != "JP" || n.Name != "first" || n.UpdatedAt != 1 {
		t.Fatalf("late registration should only touch the node, got %+v", n)
	}
}
