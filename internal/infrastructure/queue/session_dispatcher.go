package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lingoleap/learning-api/internal/api/metrics"
	"github.com/lingoleap/learning-api/internal/core/domain"
	"github.com/lingoleap/learning-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

var _ ports.SessionEventRecorder = (*SessionDispatcher)(nil)

// SessionDispatcher persists session audit events in the background. Events
// are sharded by user id (email for anonymous failures) so one user's events
// are written in the order they happened.
type SessionDispatcher struct {
	workers []chan domain.SessionEvent
	repo    ports.SessionEventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewSessionDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewSessionDispatcher(numWorkers int, repo ports.SessionEventRepository, log zerolog.Logger) *SessionDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &SessionDispatcher{
		workers: make([]chan domain.SessionEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain what is already queued
// and stop once ctx is cancelled.
func (d *SessionDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		i, ch := i, ch
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
}

// Wait blocks until every worker has drained and exited.
func (d *SessionDispatcher) Wait() {
	d.wg.Wait()
}

// Record queues an event. It never blocks: when the shard is full the event is
// dropped and counted.
func (d *SessionDispatcher) Record(event domain.SessionEvent) {
	select {
	case d.workers[d.shardIndex(shardKey(event))] <- event:
	default:
		metrics.SessionEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("user_id", event.UserID).
			Str("type", string(event.Type)).
			Msg("session event queue full, event dropped")
	}
}

func shardKey(event domain.SessionEvent) string {
	if event.UserID != "" {
		return event.UserID
	}
	return event.Email
}

// shardIndex maps a key deterministically to a worker index.
func (d *SessionDispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *SessionDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			d.write(ctx, id, event)
		}
	}
}

// drain flushes queued events with a fresh context after shutdown began.
func (d *SessionDispatcher) drain(id int, ch <-chan domain.SessionEvent) {
	for {
		select {
		case event := <-ch:
			d.write(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *SessionDispatcher) write(ctx context.Context, id int, event domain.SessionEvent) {
	if err := d.repo.Insert(ctx, &event); err != nil {
		metrics.SessionEventsWrittenTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("user_id", event.UserID).
			Str("type", string(event.Type)).
			Int("worker_id", id).
			Msg("session event write failed")
		return
	}
	metrics.SessionEventsWrittenTotal.WithLabelValues("ok").Inc()
}
