package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"paper-trader/internal/models"
)

// recordingStore captures Save calls for inspection. An optional gate channel
// blocks Save until the test releases it.
type recordingStore struct {
	mu    sync.Mutex
	saves []models.Snapshot
	keys  []string
	err   error
	gate  chan struct{}
}

func (r *recordingStore) Load(ctx context.Context, key string) (models.Snapshot, bool, error) {
	return models.Snapshot{}, false, nil
}

func (r *recordingStore) Save(ctx context.Context, key string, snap models.Snapshot) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saves = append(r.saves, snap)
	r.keys = append(r.keys, key)
	return nil
}

func (r *recordingStore) Delete(ctx context.Context, key string) error { return nil }
func (r *recordingStore) Close() error                                 { return nil }

func (r *recordingStore) saved() []models.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Snapshot(nil), r.saves...)
}

func TestAsyncSaverFlushesOnClose(t *testing.T) {
	rec := &recordingStore{}
	saver := NewAsyncSaver(rec, "default", zerolog.Nop())

	saver.Enqueue(models.Snapshot{Balance: 9500})
	saver.Close()

	saves := rec.saved()
	if len(saves) == 0 {
		t.Fatal("expected at least one save before Close returned")
	}
	if last := saves[len(saves)-1]; last.Balance != 9500 {
		t.Errorf("last saved balance = %v, want 9500", last.Balance)
	}
	rec.mu.Lock()
	key := rec.keys[0]
	rec.mu.Unlock()
	if key != "default" {
		t.Errorf("session key = %q, want %q", key, "default")
	}
}

func TestAsyncSaverCoalescesToLatest(t *testing.T) {
	rec := &recordingStore{gate: make(chan struct{})}
	saver := NewAsyncSaver(rec, "default", zerolog.Nop())

	// The worker is parked inside Save (or about to be), so these enqueues
	// pile up and must coalesce to a single pending snapshot.
	for i := 1; i <= 100; i++ {
		saver.Enqueue(models.Snapshot{Balance: float64(i)})
	}
	close(rec.gate)
	saver.Close()

	saves := rec.saved()
	if len(saves) == 0 {
		t.Fatal("expected saves")
	}
	if len(saves) > 3 {
		t.Errorf("expected coalescing, got %d saves for 100 enqueues", len(saves))
	}
	if last := saves[len(saves)-1]; last.Balance != 100 {
		t.Errorf("last saved balance = %v, want 100", last.Balance)
	}
}

func TestAsyncSaverCloseIsIdempotent(t *testing.T) {
	saver := NewAsyncSaver(&recordingStore{}, "default", zerolog.Nop())

	saver.Enqueue(models.Snapshot{Balance: 1})
	saver.Close()

	done := make(chan struct{})
	go func() {
		saver.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Close did not return")
	}
}

func TestAsyncSaverSurvivesStoreErrors(t *testing.T) {
	rec := &recordingStore{err: context.DeadlineExceeded}
	saver := NewAsyncSaver(rec, "default", zerolog.Nop())

	saver.Enqueue(models.Snapshot{Balance: 1})
	saver.Close() // must not panic or hang on a failing store
}
