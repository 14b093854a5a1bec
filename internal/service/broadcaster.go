package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/metrics"
	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
)

const (
	publishWorkers = 8
	publishTimeout = 5 * time.Second
)

// Channel is a viewer transport. Broadcast must not block on slow viewers.
type Channel interface {
	Broadcast(msg models.Message)
}

// Broadcaster turns committed node updates into update_single messages and
// fans them out to every attached channel.
//
// Pending updates are coalesced per node and drained by a pool of workers.
// The snapshot is built when a worker picks the id up, so a merged update
// always carries the latest committed state. A node is never published by two
// workers at once; an update arriving mid-publish requeues the node.
type Broadcaster struct {
	builder *SnapshotBuilder
	metrics *metrics.Metrics

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []string
	pending  map[string]bool
	inflight map[string]bool
	dirty    map[string]bool
	closed   bool
	wg       sync.WaitGroup

	chMu     sync.RWMutex
	channels []Channel
}

func NewBroadcaster(builder *SnapshotBuilder, m *metrics.Metrics) *Broadcaster {
	b := &Broadcaster{
		builder:  builder,
		metrics:  m,
		pending:  make(map[string]bool),
		inflight: make(map[string]bool),
		dirty:    make(map[string]bool),
	}
	b.cond = sync.NewCond(&b.mu)
	b.wg.Add(publishWorkers)
	for i := 0; i < publishWorkers; i++ {
		go b.worker()
	}
	return b
}

// Attach adds a transport. Channels attached later only see later updates.
func (b *Broadcaster) Attach(ch Channel) {
	b.chMu.Lock()
	defer b.chMu.Unlock()
	b.channels = append(b.channels, ch)
}

// NodeUpdated marks id for publishing. It never blocks and never drops: an id
// already waiting absorbs the new update.
func (b *Broadcaster) NodeUpdated(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.inflight[id] {
		b.dirty[id] = true
		return
	}
	if b.pending[id] {
		return
	}
	b.pending[id] = true
	b.queue = append(b.queue, id)
	b.cond.Broadcast()
}

func (b *Broadcaster) worker() {
	defer b.wg.Done()
	for {
		id, ok := b.next()
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := b.PublishNode(ctx, id); err != nil {
			logger.Log.Error("Failed to publish node update", "node", id, "err", err)
		}
		cancel()
		b.done(id)
	}
}

// next blocks until an id is queued; it reports false once closed and drained.
func (b *Broadcaster) next() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.queue) == 0 && !b.closed {
		b.cond.Wait()
	}
	if len(b.queue) == 0 {
		return "", false
	}
	id := b.queue[0]
	b.queue = b.queue[1:]
	delete(b.pending, id)
	b.inflight[id] = true
	return id, true
}

func (b *Broadcaster) done(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inflight, id)
	if b.dirty[id] {
		delete(b.dirty, id)
		b.pending[id] = true
		b.queue = append(b.queue, id)
	}
	b.cond.Broadcast()
}

// Flush blocks until every update marked so far has been published.
func (b *Broadcaster) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.queue) > 0 || len(b.inflight) > 0 {
		b.cond.Wait()
	}
}

// PublishNode builds a fresh snapshot of id and sends it to every channel.
func (b *Broadcaster) PublishNode(ctx context.Context, id string) error {
	snap, err := b.builder.Build(ctx, id)
	if errors.Is(err, ErrNodeUnknown) {
		return nil
	}
	if err != nil {
		return err
	}
	msg := models.UpdateSingle(id, snap)

	b.chMu.RLock()
	channels := b.channels
	b.chMu.RUnlock()
	for _, ch := range channels {
		ch.Broadcast(msg)
	}
	b.metrics.Broadcast()
	return nil
}

// FullSync returns the full_sync message for a newly connected viewer.
func (b *Broadcaster) FullSync(ctx context.Context) (models.Message, error) {
	all, err := b.builder.BuildAll(ctx)
	if err != nil {
		return models.Message{}, err
	}
	return models.FullSync(all), nil
}

// Close stops accepting updates and waits for pending ones to be published.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
	b.wg.Wait()
}
