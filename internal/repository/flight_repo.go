package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/metrics"
	"github.com/Domenick1991/skyline/internal/store"
	"go.uber.org/zap"
)

type FlightRepository struct {
	store      *store.Store[domain.Flight]
	dependents []Refresher
	log        *zap.Logger
}

// NewFlightRepository loads flights.json. Deleting a flight refreshes the
// given dependents, normally reservations and tickets.
func NewFlightRepository(o Options, dependents ...Refresher) (*FlightRepository, error) {
	s, err := newStore(o, "flights.json", FlightsCollection, domain.FlightID, seedFlights(o.now()))
	if err != nil {
		return nil, fmt.Errorf("load flights: %w", err)
	}
	return &FlightRepository{store: s, dependents: dependents, log: o.logger().Named("flights")}, nil
}

func (r *FlightRepository) List() []domain.Flight {
	return r.store.GetAll()
}

func (r *FlightRepository) GetByID(id int64) (domain.Flight, error) {
	f, ok := r.store.FindByID(id)
	if !ok {
		return domain.Flight{}, ErrNotFound
	}
	return f, nil
}

// Add stores f. A zero ID is replaced by the next free one.
func (r *FlightRepository) Add(f domain.Flight) (domain.Flight, error) {
	if f.ID != 0 {
		return f, r.store.Add(f)
	}
	return r.store.AddNext(func(id int64) domain.Flight {
		f.ID = id
		return f
	})
}

// DecrementSeat takes one seat if the flight exists and has one left. The
// check and the write happen under the store lock.
func (r *FlightRepository) DecrementSeat(id int64) (bool, error) {
	_, ok, err := r.store.Mutate(id, func(f domain.Flight) (domain.Flight, bool) {
		if f.AvailableSeats <= 0 {
			return f, false
		}
		f.AvailableSeats--
		return f, true
	})
	if err != nil {
		return false, err
	}
	if ok {
		metrics.SeatsDecrementedTotal.Inc()
	}
	return ok, nil
}

// ReleaseSeat gives back a seat taken by DecrementSeat.
func (r *FlightRepository) ReleaseSeat(id int64) error {
	_, ok, err := r.store.Mutate(id, func(f domain.Flight) (domain.Flight, bool) {
		f.AvailableSeats++
		return f, true
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	metrics.SeatsReleasedTotal.Inc()
	return nil
}

// FindByRouteAndMonth returns sellable flights on the route departing in the
// given month.
func (r *FlightRepository) FindByRouteAndMonth(fromID, toID int64, year int, month time.Month) []domain.Flight {
	return r.store.Filter(func(f domain.Flight) bool {
		return f.DepartureAirportID == fromID &&
			f.ArrivalAirportID == toID &&
			f.DepartureTime.Year() == year &&
			f.DepartureTime.Month() == month &&
			f.AvailableSeats > 0
	})
}

// FindByRouteAndDate returns sellable flights on the route departing on day.
func (r *FlightRepository) FindByRouteAndDate(fromID, toID int64, day domain.Date) []domain.Flight {
	return r.store.Filter(func(f domain.Flight) bool {
		return f.DepartureAirportID == fromID &&
			f.ArrivalAirportID == toID &&
			f.DepartureTime.Date().Equal(day.Time) &&
			f.AvailableSeats > 0
	})
}

func (r *FlightRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteCascading(ctx, r.store, r.log, id, r.dependents)
}

func (r *FlightRepository) RefreshFromRemote(ctx context.Context) error {
	return r.store.RefreshFromRemote(ctx)
}

func (r *FlightRepository) Count() int {
	return len(r.store.GetAll())
}
