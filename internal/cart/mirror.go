package cart

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mirror asynchronously overwrites the remote cart document with the most
// recent local snapshot. Pending snapshots coalesce: only the newest one is
// written, so an older cart state can never land after a newer one
// (last-writer-wins without reordering). Failures are logged and the local
// cart stays authoritative; callers that care can wait on the channel
// returned by Enqueue.
type Mirror struct {
	remote   RemoteStore
	identity string
	timeout  time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	pending Items
	dirty   bool
	waiters []chan error

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewMirror creates a mirror for the identity and starts its writer
// goroutine. Close must be called to release it.
func NewMirror(remote RemoteStore, identity string) *Mirror {
	m := &Mirror{
		remote:   remote,
		identity: identity,
		timeout:  10 * time.Second,
		logger:   log.With().Str("component", "cart_mirror").Str("identity", identity).Logger(),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

// Enqueue schedules items as the next remote snapshot, replacing any
// snapshot still waiting to be written. The returned channel receives the
// write result exactly once and is buffered, so ignoring it is safe.
func (m *Mirror) Enqueue(items Items) <-chan error {
	ch := make(chan error, 1)

	m.mu.Lock()
	m.pending = items
	m.dirty = true
	m.waiters = append(m.waiters, ch)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return ch
}

func (m *Mirror) run() {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			// One final write so a snapshot enqueued just before shutdown
			// is not silently dropped.
			m.flush()
			return
		case <-m.wake:
			m.flush()
		}
	}
}

// flush writes the newest pending snapshot and notifies every waiter that
// enqueued since the previous flush.
func (m *Mirror) flush() {
	m.mu.Lock()
	if !m.dirty {
		m.mu.Unlock()
		return
	}
	items := m.pending
	waiters := m.waiters
	m.pending = nil
	m.waiters = nil
	m.dirty = false
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	err := m.remote.WriteCart(ctx, m.identity, items)
	cancel()

	if err != nil {
		m.logger.Error().Err(err).Msg("Remote cart write failed, local cart stays authoritative")
	}
	for _, ch := range waiters {
		ch <- err
	}
}

// Close flushes any pending snapshot and stops the writer goroutine.
func (m *Mirror) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}
