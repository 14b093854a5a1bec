package store

import (
	"context"
	"sort"
	"sync"

	"github.com/The-Promised-Neverland/estatus/internal/models"
)

// Memory is a process-local Store. Transactions buffer their writes and take
// the write lock only to apply them once fn succeeds, so concurrent reports do
// not wait on each other's transaction bodies.
type Memory struct {
	mu       sync.RWMutex
	nodes    map[string]models.Node
	metrics  map[string][]models.MetricSample
	probes   map[string][]models.ProbeSample
	settings map[string]string
}

func NewMemory() *Memory {
	m := &Memory{
		nodes:    make(map[string]models.Node),
		metrics:  make(map[string][]models.MetricSample),
		probes:   make(map[string][]models.ProbeSample),
		settings: make(map[string]string),
	}
	for key, value := range models.DefaultSettings() {
		m.settings[key] = value
	}
	return m
}

type memoryTx struct {
	s       *Memory
	pending map[string]bool
	ops     []func()
}

func (t *memoryTx) InsertNode(_ context.Context, n *models.Node) (bool, error) {
	t.s.mu.RLock()
	_, exists := t.s.nodes[n.ID]
	t.s.mu.RUnlock()
	if exists || t.pending[n.ID] {
		return false, nil
	}
	t.pending[n.ID] = true
	node := *n
	t.ops = append(t.ops, func() {
		// A concurrent transaction registered the id first; degrade to a touch.
		if existing, ok := t.s.nodes[node.ID]; ok {
			if node.Name != "" {
				existing.Name = node.Name
			}
			existing.UpdatedAt = node.UpdatedAt
			t.s.nodes[node.ID] = existing
			return
		}
		t.s.nodes[node.ID] = node
	})
	return true, nil
}

func (t *memoryTx) TouchNode(_ context.Context, id, name string, updatedAt int64) error {
	t.ops = append(t.ops, func() {
		node, ok := t.s.nodes[id]
		if !ok {
			return
		}
		if name != "" {
			node.Name = name
		}
		node.UpdatedAt = updatedAt
		t.s.nodes[id] = node
	})
	return nil
}

func (t *memoryTx) AppendMetric(_ context.Context, m *models.MetricSample) error {
	sample := *m
	t.ops = append(t.ops, func() {
		t.s.metrics[sample.NodeID] = append(t.s.metrics[sample.NodeID], sample)
	})
	return nil
}

func (t *memoryTx) AppendProbes(_ context.Context, probes []models.ProbeSample) error {
	batch := append([]models.ProbeSample(nil), probes...)
	t.ops = append(t.ops, func() {
		for _, p := range batch {
			t.s.probes[p.NodeID] = append(t.s.probes[p.NodeID], p)
		}
	})
	return nil
}

func (s *Memory) InTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memoryTx{s: s, pending: make(map[string]bool)}
	if err := fn(tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range tx.ops {
		op()
	}
	return nil
}

func (s *Memory) NodeIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := make([]models.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].DisplayOrder != nodes[j].DisplayOrder {
			return nodes[i].DisplayOrder < nodes[j].DisplayOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

func (s *Memory) Node(_ context.Context, id string) (*models.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (s *Memory) LatestMetric(_ context.Context, nodeID string) (*models.MetricSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	samples := s.metrics[nodeID]
	if len(samples) == 0 {
		return nil, ErrNotFound
	}
	latest := samples[0]
	for _, m := range samples[1:] {
		if m.CreatedAt >= latest.CreatedAt {
			latest = m
		}
	}
	return &latest, nil
}

func (s *Memory) LatestProbes(_ context.Context, nodeID string) ([]models.ProbeSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.probes[nodeID]
	probes := []models.ProbeSample{}
	if len(all) == 0 {
		return probes, nil
	}
	var maxTS int64
	for i, p := range all {
		if i == 0 || p.CreatedAt > maxTS {
			maxTS = p.CreatedAt
		}
	}
	for _, p := range all {
		if p.CreatedAt == maxTS {
			probes = append(probes, p)
		}
	}
	return probes, nil
}

func (s *Memory) MetricsSince(_ context.Context, nodeID string, since int64) ([]models.MetricSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	samples := []models.MetricSample{}
	for _, m := range s.metrics[nodeID] {
		if m.CreatedAt > since {
			samples = append(samples, m)
		}
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].CreatedAt < samples[j].CreatedAt
	})
	return samples, nil
}

func (s *Memory) Setting(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.settings[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *Memory) PutSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *Memory) Ping(context.Context) error { return nil }

func (s *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
