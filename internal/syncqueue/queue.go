// Package syncqueue buffers snapshots of locally added records and pushes them
// to the remote store in the background. Delivery is at most once: a flushed
// entry is dropped whether or not its upsert succeeded.
package syncqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/skyline/internal/metrics"
	"go.uber.org/zap"
)

const defaultUpsertTimeout = 10 * time.Second

type Upserter interface {
	Upsert(ctx context.Context, collection string, payload json.RawMessage) error
}

type Entry struct {
	Collection string          `json:"collection"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

type FlushReport struct {
	Attempted int
	Succeeded int
	Failed    int
	// Skipped is set when another flush was already running.
	Skipped bool
}

type Queue struct {
	remote  Upserter
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries []Entry

	flushing sync.Mutex
}

type Option func(*Queue)

func WithUpsertTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(q *Queue) {
		if log != nil {
			q.log = log
		}
	}
}

func New(remote Upserter, opts ...Option) *Queue {
	q := &Queue{
		remote:  remote,
		timeout: defaultUpsertTimeout,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue stores a JSON snapshot of payload. Later changes to payload are not
// seen by the queue.
func (q *Queue) Enqueue(collection string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s snapshot: %w", collection, err)
	}

	q.mu.Lock()
	q.entries = append(q.entries, Entry{
		Collection: collection,
		Payload:    data,
		EnqueuedAt: q.now(),
	})
	depth := len(q.entries)
	q.mu.Unlock()

	metrics.SyncQueueDepth.Set(float64(depth))
	return nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Pending returns a copy of the queued entries.
func (q *Queue) Pending() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Flush upserts every entry queued so far, once, and drops them. Entries
// added while the flush runs wait for the next one.
func (q *Queue) Flush(ctx context.Context) FlushReport {
	if !q.flushing.TryLock() {
		metrics.SyncFlushSkippedTotal.Inc()
		q.log.Debug("flush already running, skipping")
		return FlushReport{Skipped: true}
	}
	defer q.flushing.Unlock()

	q.mu.Lock()
	batch := q.entries
	q.entries = nil
	q.mu.Unlock()
	metrics.SyncQueueDepth.Set(float64(q.Len()))

	var report FlushReport
	for _, e := range batch {
		report.Attempted++
		if err := q.upsert(ctx, e); err != nil {
			report.Failed++
			metrics.SyncEntriesTotal.WithLabelValues(e.Collection, "failed").Inc()
			q.log.Warn("remote upsert failed, entry dropped",
				zap.String("collection", e.Collection),
				zap.Time("enqueued_at", e.EnqueuedAt),
				zap.Error(err))
			continue
		}
		report.Succeeded++
		metrics.SyncEntriesTotal.WithLabelValues(e.Collection, "ok").Inc()
	}

	if report.Attempted > 0 {
		q.log.Info("sync flush finished",
			zap.Int("attempted", report.Attempted),
			zap.Int("failed", report.Failed))
	}
	return report
}

func (q *Queue) upsert(ctx context.Context, e Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("upsert panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	return q.remote.Upsert(ctx, e.Collection, e.Payload)
}
