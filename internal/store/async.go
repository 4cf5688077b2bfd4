package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"paper-trader/internal/models"
)

// AsyncSaver decouples persistence from the ledger's mutation path. Enqueue
// never blocks: pending snapshots coalesce to the latest, so a slow disk
// only costs staleness, not latency. Write failures are logged, never
// surfaced to the caller.
type AsyncSaver struct {
	store  StateStore
	key    string
	logger zerolog.Logger

	mu      sync.Mutex
	pending *models.Snapshot
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

// NewAsyncSaver creates and starts an async saver for a session key.
func NewAsyncSaver(store StateStore, key string, logger zerolog.Logger) *AsyncSaver {
	s := &AsyncSaver{
		store:  store,
		key:    key,
		logger: logger,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Enqueue records a snapshot for eventual persistence. Latest wins.
func (s *AsyncSaver) Enqueue(snap models.Snapshot) {
	s.mu.Lock()
	s.pending = &snap
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *AsyncSaver) run() {
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			s.flush()
			return
		case <-s.wake:
			s.flush()
		}
	}
}

func (s *AsyncSaver) flush() {
	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()

	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Save(ctx, s.key, *snap); err != nil {
		s.logger.Error().Err(err).Str("session", s.key).Msg("Persistence write failed")
	}
}

// Close flushes any pending snapshot and stops the saver.
func (s *AsyncSaver) Close() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}
