package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/store"
	"go.uber.org/zap"
)

type AirportRepository struct {
	store      *store.Store[domain.Airport]
	dependents []Refresher
	log        *zap.Logger
}

// NewAirportRepository loads airports.json. Deleting an airport refreshes
// flights, reservations and tickets when they are passed as dependents.
func NewAirportRepository(o Options, dependents ...Refresher) (*AirportRepository, error) {
	s, err := newStore(o, "airports.json", AirportsCollection, domain.AirportID, seedAirports())
	if err != nil {
		return nil, fmt.Errorf("load airports: %w", err)
	}
	return &AirportRepository{store: s, dependents: dependents, log: o.logger().Named("airports")}, nil
}

func (r *AirportRepository) List() []domain.Airport {
	return r.store.GetAll()
}

func (r *AirportRepository) GetByID(id int64) (domain.Airport, error) {
	a, ok := r.store.FindByID(id)
	if !ok {
		return domain.Airport{}, ErrNotFound
	}
	return a, nil
}

func (r *AirportRepository) FindByCode(code string) (domain.Airport, error) {
	found := r.store.Filter(func(a domain.Airport) bool {
		return strings.EqualFold(a.Code, code)
	})
	if len(found) == 0 {
		return domain.Airport{}, ErrNotFound
	}
	return found[0], nil
}

func (r *AirportRepository) Add(a domain.Airport) (domain.Airport, error) {
	return r.store.AddNext(func(id int64) domain.Airport {
		a.ID = id
		return a
	})
}

func (r *AirportRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteCascading(ctx, r.store, r.log, id, r.dependents)
}

func (r *AirportRepository) RefreshFromRemote(ctx context.Context) error {
	return r.store.RefreshFromRemote(ctx)
}

func (r *AirportRepository) Count() int {
	return len(r.store.GetAll())
}
