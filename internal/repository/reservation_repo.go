package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/store"
	"go.uber.org/zap"
)

type ReservationRepository struct {
	store      *store.Store[domain.Reservation]
	dependents []Refresher
	log        *zap.Logger
}

// NewReservationRepository loads reservations.json. Deleting a reservation
// refreshes the given dependents, normally tickets.
func NewReservationRepository(o Options, dependents ...Refresher) (*ReservationRepository, error) {
	s, err := newStore[domain.Reservation](o, "reservations.json", ReservationsCollection, domain.ReservationID, nil)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	return &ReservationRepository{store: s, dependents: dependents, log: o.logger().Named("reservations")}, nil
}

func (r *ReservationRepository) List() []domain.Reservation {
	return r.store.GetAll()
}

func (r *ReservationRepository) GetByID(id int64) (domain.Reservation, error) {
	res, ok := r.store.FindByID(id)
	if !ok {
		return domain.Reservation{}, ErrNotFound
	}
	return res, nil
}

// AddReservation stores res under the next free ID and returns the stored
// record.
func (r *ReservationRepository) AddReservation(res domain.Reservation) (domain.Reservation, error) {
	return r.store.AddNext(func(id int64) domain.Reservation {
		res.ID = id
		return res
	})
}

// UpdateReservationStatus sets the status and always clears the expiry.
// Unknown IDs are ignored.
func (r *ReservationRepository) UpdateReservationStatus(id int64, status domain.BookingStatus) error {
	_, _, err := r.store.Mutate(id, func(res domain.Reservation) (domain.Reservation, bool) {
		res.Status = status
		res.ExpiryTime = nil
		return res, true
	})
	return err
}

// FindByFlightID returns the reservations holding a seat on the flight.
func (r *ReservationRepository) FindByFlightID(flightID int64) []domain.Reservation {
	return r.store.Filter(func(res domain.Reservation) bool {
		return res.FlightID == flightID && res.Status.Holding()
	})
}

func (r *ReservationRepository) TakenSeats(flightID int64) map[string]struct{} {
	held := r.FindByFlightID(flightID)
	seats := make(map[string]struct{}, len(held))
	for _, res := range held {
		seats[res.SeatNumber] = struct{}{}
	}
	return seats
}

func (r *ReservationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteCascading(ctx, r.store, r.log, id, r.dependents)
}

func (r *ReservationRepository) RefreshFromRemote(ctx context.Context) error {
	return r.store.RefreshFromRemote(ctx)
}

func (r *ReservationRepository) Count() int {
	return len(r.store.GetAll())
}
