// Package repository exposes the booking collections on top of store.Store.
// Deleting a parent record removes it remotely and then reloads the dependent
// collections, which is how server-side cascades reach the local files.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/skyline/internal/store"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

const (
	AirportsCollection     = "airports"
	AircraftCollection     = "aircraft"
	CrewCollection         = "crew"
	FlightsCollection      = "flights"
	ReservationsCollection = "reservations"
	TicketsCollection      = "tickets"
)

// Refresher reloads a collection from the remote store.
type Refresher interface {
	RefreshFromRemote(ctx context.Context) error
}

// Options are shared by every repository constructor.
type Options struct {
	Medium        store.Medium
	Remote        store.Remote
	Queue         store.Enqueuer
	RemoteTimeout time.Duration
	// Seed fills empty collections with the demo fixture set.
	Seed   bool
	Now    func() time.Time
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func newStore[T any](o Options, file, collection string, id func(T) int64, seed []T) (*store.Store[T], error) {
	opts := store.Options[T]{
		FileName:      file,
		Collection:    collection,
		ID:            id,
		Medium:        o.Medium,
		Remote:        o.Remote,
		Queue:         o.Queue,
		RemoteTimeout: o.RemoteTimeout,
		Logger:        o.logger().Named(collection),
	}
	if o.Seed {
		opts.Seed = seed
	}
	return store.New(opts)
}

// deleteCascading removes id locally, then remotely, then refreshes the
// dependents. Remote and refresh failures are logged only.
func deleteCascading[T any](ctx context.Context, s *store.Store[T], log *zap.Logger, id int64, dependents []Refresher) (bool, error) {
	removed, err := s.Delete(id)
	if err != nil || !removed {
		return removed, err
	}

	if err := s.DeleteRemote(ctx, id); err != nil {
		log.Warn("remote delete failed", zap.Int64("id", id), zap.Error(err))
	}
	for _, dep := range dependents {
		if err := dep.RefreshFromRemote(ctx); err != nil {
			log.Warn("cascading refresh failed", zap.Int64("id", id), zap.Error(err))
		}
	}
	return true, nil
}
