package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Store is the narrow write contract the recorder needs. The postgres
// implementation lives in internal/repo/postgres.
type Store interface {
	Insert(ctx context.Context, e Entry) error
}

// Recorder persists audit entries asynchronously. Record never blocks the
// request path: entries go through a buffered channel and a single drain
// goroutine attempts each write exactly once. Persistence failures are
// logged to the operational channel and dropped, they never surface to the
// caller whose response has already been decided.
type Recorder struct {
	store Store
	log   *slog.Logger

	queue chan Entry
	wg    sync.WaitGroup
	once  sync.Once

	// mu serializes Record against Close so a late entry is dropped
	// instead of hitting a closed channel
	mu     sync.RWMutex
	closed bool

	// results counts writes by outcome: ok, error, dropped. Optional.
	results *prometheus.CounterVec
}

type RecorderOption func(*Recorder)

func WithResultCounter(vec *prometheus.CounterVec) RecorderOption {
	return func(r *Recorder) {
		r.results = vec
	}
}

func NewRecorder(store Store, log *slog.Logger, buffer int, opts ...RecorderOption) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}

	if log == nil {
		log = slog.Default()
	}

	r := &Recorder{
		store: store,
		log:   log,
		queue: make(chan Entry, buffer),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.drain()

	return r
}

// Record enqueues one audit entry. Fire and forget: a full queue drops the
// entry with an operational warning rather than stalling the response.
func (r *Recorder) Record(actorID *string, action string, detail any, sourceAddress string) {
	e := Entry{
		ActorID:       actorID,
		Action:        action,
		Detail:        DetailJSON(detail),
		SourceAddress: sourceAddress,
		Timestamp:     time.Now().UTC(),
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.count("dropped")
		r.log.Warn("audit entry dropped, recorder closed", "action", action)
		return
	}

	select {
	case r.queue <- e:
	default:
		r.count("dropped")
		r.log.Warn("audit entry dropped, queue full", "action", action)
	}
}

func (r *Recorder) drain() {
	defer r.wg.Done()

	for e := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := r.store.Insert(ctx, e)
		cancel()

		if err != nil {
			r.count("error")
			r.log.Error("audit write failed", "action", e.Action, "err", err)
			continue
		}

		r.count("ok")
	}
}

// Close stops accepting entries and waits for the queue to flush, bounded by
// ctx. Called during graceful shutdown after the HTTP server has stopped.
func (r *Recorder) Close(ctx context.Context) error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) count(result string) {
	if r.results != nil {
		r.results.WithLabelValues(result).Inc()
	}
}
