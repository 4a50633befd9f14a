// Package store keeps identity-keyed collections in memory, persists every
// change to a local medium and mirrors additions to a remote store through a
// sync queue. Local state is authoritative; the remote copy is best effort.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/Domenick1991/skyline/internal/logger"
	"github.com/Domenick1991/skyline/internal/metrics"
	"go.uber.org/zap"
)

// ErrPersist marks a failed local read or write.
var ErrPersist = errors.New("local persistence failed")

const defaultRemoteTimeout = 10 * time.Second

// Medium is the local durable storage, one blob per collection file.
type Medium interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
}

// Remote is the shared store that collections are mirrored to.
type Remote interface {
	SelectAll(ctx context.Context, collection string) ([]json.RawMessage, error)
	Upsert(ctx context.Context, collection string, payload json.RawMessage) error
	Delete(ctx context.Context, collection string, id int64) error
}

// Enqueuer accepts snapshots of added records for later upload.
type Enqueuer interface {
	Enqueue(collection string, payload any) error
}

type ChangeKind string

const (
	ChangeAdd     ChangeKind = "add"
	ChangeUpdate  ChangeKind = "update"
	ChangeDelete  ChangeKind = "delete"
	ChangeReplace ChangeKind = "replace"
)

// Change describes one mutation. Items is set only for ChangeReplace.
type Change[T any] struct {
	Kind  ChangeKind
	Item  T
	Items []T
}

type Options[T any] struct {
	// FileName is the local file of the collection, e.g. "flights.json".
	FileName string
	// Collection is the remote collection name. Empty disables remote sync.
	Collection    string
	ID            func(T) int64
	Medium        Medium
	Remote        Remote
	Queue         Enqueuer
	RemoteTimeout time.Duration
	Seed          []T
	Logger        *zap.Logger
}

type Store[T any] struct {
	opts Options[T]
	log  *zap.Logger

	mu    sync.RWMutex
	items []T

	subMu   sync.Mutex
	subs    map[int]func(Change[T])
	nextSub int
}

// New loads the collection from the medium and seeds it when empty. Seed
// records are enqueued like added ones so the remote holds them too.
func New[T any](opts Options[T]) (*Store[T], error) {
	if opts.ID == nil {
		return nil, errors.New("store: identity extractor is required")
	}
	if opts.Medium == nil {
		return nil, errors.New("store: medium is required")
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = defaultRemoteTimeout
	}
	s := &Store[T]{
		opts: opts,
		log:  logger.OrNop(opts.Logger).With(zap.String("file", opts.FileName)),
		subs: make(map[int]func(Change[T])),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	if len(s.items) == 0 && len(opts.Seed) > 0 {
		s.items = append(s.items, opts.Seed...)
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		for _, item := range opts.Seed {
			s.enqueue(item)
		}
		s.log.Info("seeded collection", zap.Int("count", len(opts.Seed)))
	}
	return s, nil
}

func (s *Store[T]) load() error {
	data, err := s.opts.Medium.Read(s.opts.FileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: read %s: %v", ErrPersist, s.opts.FileName, err)
	}
	if len(data) == 0 {
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrPersist, s.opts.FileName, err)
	}
	s.items = items
	return nil
}

func (s *Store[T]) persistLocked() error {
	items := s.items
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersist, s.opts.FileName, err)
	}
	if err := s.opts.Medium.Write(s.opts.FileName, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersist, s.opts.FileName, err)
	}
	return nil
}

// GetAll returns a copy of the records in insertion order.
func (s *Store[T]) GetAll() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Filter returns the records for which keep reports true, in insertion order.
func (s *Store[T]) Filter(keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, item := range s.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store[T]) FindByID(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

func (s *Store[T]) indexLocked(id int64) int {
	for i, item := range s.items {
		if s.opts.ID(item) == id {
			return i
		}
	}
	return -1
}

// NextID returns max(id)+1, or 1 for an empty collection.
func (s *Store[T]) NextID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextIDLocked()
}

func (s *Store[T]) nextIDLocked() int64 {
	var max int64
	for _, item := range s.items {
		if id := s.opts.ID(item); id > max {
			max = id
		}
	}
	return max + 1
}

// Add appends item as is and enqueues its snapshot for remote upsert.
func (s *Store[T]) Add(item T) error {
	s.mu.Lock()
	if err := s.appendLocked(item); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.afterAdd(item)
	return nil
}

// AddNext builds a record with the next free ID and appends it under the
// same lock, so concurrent callers never get the same ID.
func (s *Store[T]) AddNext(build func(id int64) T) (T, error) {
	s.mu.Lock()
	item := build(s.nextIDLocked())
	if err := s.appendLocked(item); err != nil {
		s.mu.Unlock()
		var zero T
		return zero, err
	}
	s.mu.Unlock()

	s.afterAdd(item)
	return item, nil
}

func (s *Store[T]) appendLocked(item T) error {
	s.items = append(s.items, item)
	if err := s.persistLocked(); err != nil {
		s.items = s.items[:len(s.items)-1]
		return err
	}
	return nil
}

func (s *Store[T]) afterAdd(item T) {
	s.enqueue(item)
	s.notify(Change[T]{Kind: ChangeAdd, Item: item})
}

func (s *Store[T]) enqueue(item T) {
	if s.opts.Collection == "" || s.opts.Queue == nil {
		return
	}
	if err := s.opts.Queue.Enqueue(s.opts.Collection, item); err != nil {
		s.log.Warn("failed to enqueue sync snapshot",
			zap.Int64("id", s.opts.ID(item)), zap.Error(err))
	}
}

// Update replaces the record with the same ID. Absent IDs are ignored.
// Updates stay local and are not enqueued.
func (s *Store[T]) Update(item T) error {
	_, _, err := s.Mutate(s.opts.ID(item), func(T) (T, bool) { return item, true })
	return err
}

// Mutate runs fn on the current record under the write lock. When fn returns
// false nothing is written. The bool result reports whether a write happened.
func (s *Store[T]) Mutate(id int64, fn func(current T) (T, bool)) (T, bool, error) {
	var zero T

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return zero, false, nil
	}
	prev := s.items[i]
	next, ok := fn(prev)
	if !ok {
		s.mu.Unlock()
		return prev, false, nil
	}
	s.items[i] = next
	if err := s.persistLocked(); err != nil {
		s.items[i] = prev
		s.mu.Unlock()
		return zero, false, err
	}
	s.mu.Unlock()

	s.notify(Change[T]{Kind: ChangeUpdate, Item: next})
	return next, true, nil
}

// Delete removes the record locally. It reports whether one was removed.
func (s *Store[T]) Delete(id int64) (bool, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	prev := make([]T, len(s.items))
	copy(prev, s.items)
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	if err := s.persistLocked(); err != nil {
		s.items = prev
		s.mu.Unlock()
		return false, err
	}
	s.mu.Unlock()

	s.notify(Change[T]{Kind: ChangeDelete, Item: removed})
	return true, nil
}

// DeleteRemote removes the record from the remote collection. It is a no-op
// without a remote.
func (s *Store[T]) DeleteRemote(ctx context.Context, id int64) error {
	if s.opts.Remote == nil || s.opts.Collection == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.RemoteTimeout)
	defer cancel()
	if err := s.opts.Remote.Delete(ctx, s.opts.Collection, id); err != nil {
		return fmt.Errorf("remote delete %s/%d: %w", s.opts.Collection, id, err)
	}
	return nil
}

// RefreshFromRemote replaces the whole collection with the remote contents.
// On failure the local state is left untouched.
func (s *Store[T]) RefreshFromRemote(ctx context.Context) error {
	if s.opts.Remote == nil || s.opts.Collection == "" {
		return nil
	}
	err := s.refresh(ctx)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.RemoteRefreshTotal.WithLabelValues(s.opts.Collection, result).Inc()
	return err
}

func (s *Store[T]) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RemoteTimeout)
	defer cancel()

	rows, err := s.opts.Remote.SelectAll(ctx, s.opts.Collection)
	if err != nil {
		return fmt.Errorf("remote select %s: %w", s.opts.Collection, err)
	}
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		var item T
		if err := json.Unmarshal(row, &item); err != nil {
			return fmt.Errorf("decode remote %s row: %w", s.opts.Collection, err)
		}
		items = append(items, item)
	}

	s.mu.Lock()
	prev := s.items
	s.items = items
	if err := s.persistLocked(); err != nil {
		s.items = prev
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.log.Info("refreshed collection from remote", zap.Int("count", len(items)))
	snapshot := make([]T, len(items))
	copy(snapshot, items)
	s.notify(Change[T]{Kind: ChangeReplace, Items: snapshot})
	return nil
}

// Subscribe registers fn for every later change. Callbacks run on the
// mutating goroutine after the store lock is released.
func (s *Store[T]) Subscribe(fn func(Change[T])) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store[T]) notify(c Change[T]) {
	s.subMu.Lock()
	fns := make([]func(Change[T]), 0, len(s.subs))
	// subscription order
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
