package store

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const shutdownDrainTimeout = 5 * time.Second

// Mirror is an asynchronous write queue in front of a Store. Enqueue never
// blocks; a single worker applies writes in the order keys were first queued,
// keeping only the latest snapshot per key.
type Mirror struct {
	store *Store
	log   *logrus.Entry

	mu       sync.Mutex
	pending  map[string]any
	order    []string
	inflight bool
	drained  chan struct{}

	wake chan struct{}
}

// NewMirror returns an idle mirror over store; call Run to start writing.
func NewMirror(store *Store, logger *logrus.Logger) *Mirror {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Mirror{
		store:   store,
		log:     logger.WithField("component", "mirror"),
		pending: map[string]any{},
		wake:    make(chan struct{}, 1),
	}
}

// Enqueue schedules value to be written under key. The value must not be
// mutated after the call.
func (m *Mirror) Enqueue(key string, value any) {
	m.mu.Lock()
	if _, queued := m.pending[key]; !queued {
		m.order = append(m.order, key)
	}
	m.pending[key] = value
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Run applies queued writes until ctx is cancelled, then drains what is left.
// Cancellation stops the loop but never aborts a write already started.
func (m *Mirror) Run(ctx context.Context) error {
	writeCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(writeCtx, shutdownDrainTimeout)
			m.drain(drainCtx)
			cancel()
			return nil
		case <-m.wake:
			m.drain(writeCtx)
		}
	}
}

// Flush blocks until every write queued before the call has been applied.
func (m *Mirror) Flush(ctx context.Context) error {
	m.mu.Lock()
	if len(m.pending) == 0 && !m.inflight {
		m.mu.Unlock()
		return nil
	}
	if m.drained == nil {
		m.drained = make(chan struct{})
	}
	done := m.drained
	m.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mirror) drain(ctx context.Context) {
	for {
		key, value, ok := m.next()
		if !ok {
			return
		}
		if err := m.store.Save(ctx, key, value); err != nil {
			m.log.WithError(err).WithField("key", key).Error("mirror write failed")
		} else {
			m.log.WithField("key", key).Debug("mirrored")
		}
		m.finish()
	}
}

func (m *Mirror) next() (string, any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) == 0 {
		return "", nil, false
	}
	key := m.order[0]
	m.order = m.order[1:]
	value := m.pending[key]
	delete(m.pending, key)
	m.inflight = true
	return key, value, true
}

func (m *Mirror) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight = false
	if len(m.pending) == 0 && m.drained != nil {
		close(m.drained)
		m.drained = nil
	}
}
