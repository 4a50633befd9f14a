package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/store"
	"go.uber.org/zap"
)

type AircraftRepository struct {
	store      *store.Store[domain.Aircraft]
	dependents []Refresher
	log        *zap.Logger
}

// NewAircraftRepository loads aircraft.json. Deleting an aircraft refreshes
// the given dependents, normally flights, reservations and tickets.
func NewAircraftRepository(o Options, dependents ...Refresher) (*AircraftRepository, error) {
	s, err := newStore(o, "aircraft.json", AircraftCollection, domain.AircraftID, seedAircraft())
	if err != nil {
		return nil, fmt.Errorf("load aircraft: %w", err)
	}
	return &AircraftRepository{store: s, dependents: dependents, log: o.logger().Named("aircraft")}, nil
}

func (r *AircraftRepository) List() []domain.Aircraft {
	return r.store.GetAll()
}

func (r *AircraftRepository) GetByID(id int64) (domain.Aircraft, error) {
	a, ok := r.store.FindByID(id)
	if !ok {
		return domain.Aircraft{}, ErrNotFound
	}
	return a, nil
}

func (r *AircraftRepository) Add(a domain.Aircraft) (domain.Aircraft, error) {
	return r.store.AddNext(func(id int64) domain.Aircraft {
		a.ID = id
		return a
	})
}

func (r *AircraftRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteCascading(ctx, r.store, r.log, id, r.dependents)
}

func (r *AircraftRepository) RefreshFromRemote(ctx context.Context) error {
	return r.store.RefreshFromRemote(ctx)
}

func (r *AircraftRepository) Count() int {
	return len(r.store.GetAll())
}

type CrewRepository struct {
	store      *store.Store[domain.Crew]
	dependents []Refresher
	log        *zap.Logger
}

// NewCrewRepository loads crews.json. Deleting a crew refreshes the given
// dependents, normally flights, reservations and tickets.
func NewCrewRepository(o Options, dependents ...Refresher) (*CrewRepository, error) {
	s, err := newStore(o, "crews.json", CrewCollection, domain.CrewID, seedCrews())
	if err != nil {
		return nil, fmt.Errorf("load crews: %w", err)
	}
	return &CrewRepository{store: s, dependents: dependents, log: o.logger().Named("crew")}, nil
}

func (r *CrewRepository) List() []domain.Crew {
	return r.store.GetAll()
}

func (r *CrewRepository) GetByID(id int64) (domain.Crew, error) {
	c, ok := r.store.FindByID(id)
	if !ok {
		return domain.Crew{}, ErrNotFound
	}
	return c, nil
}

func (r *CrewRepository) Add(c domain.Crew) (domain.Crew, error) {
	return r.store.AddNext(func(id int64) domain.Crew {
		c.ID = id
		return c
	})
}

func (r *CrewRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteCascading(ctx, r.store, r.log, id, r.dependents)
}

func (r *CrewRepository) RefreshFromRemote(ctx context.Context) error {
	return r.store.RefreshFromRemote(ctx)
}

func (r *CrewRepository) Count() int {
	return len(r.store.GetAll())
}
