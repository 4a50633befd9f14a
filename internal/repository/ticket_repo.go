package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/store"
)

type TicketRepository struct {
	store *store.Store[domain.Ticket]
}

func NewTicketRepository(o Options) (*TicketRepository, error) {
	s, err := newStore[domain.Ticket](o, "tickets.json", TicketsCollection, domain.TicketID, nil)
	if err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	return &TicketRepository{store: s}, nil
}

func (r *TicketRepository) List() []domain.Ticket {
	return r.store.GetAll()
}

func (r *TicketRepository) GetByID(id int64) (domain.Ticket, error) {
	t, ok := r.store.FindByID(id)
	if !ok {
		return domain.Ticket{}, ErrNotFound
	}
	return t, nil
}

// Add ignores t.ID and stores the ticket under the next free ID.
func (r *TicketRepository) Add(t domain.Ticket) (domain.Ticket, error) {
	return r.store.AddNext(func(id int64) domain.Ticket {
		t.ID = id
		return t
	})
}

// FindByCustomerName matches the holder name ignoring case.
func (r *TicketRepository) FindByCustomerName(name string) []domain.Ticket {
	return r.store.Filter(func(t domain.Ticket) bool {
		return strings.EqualFold(t.CustomerName, name)
	})
}

func (r *TicketRepository) FindByReservationID(reservationID int64) []domain.Ticket {
	return r.store.Filter(func(t domain.Ticket) bool {
		return t.ReservationID == reservationID
	})
}

// UpdateTicketStatus changes only the payment status.
func (r *TicketRepository) UpdateTicketStatus(id int64, status domain.BookingStatus) error {
	_, _, err := r.store.Mutate(id, func(t domain.Ticket) (domain.Ticket, bool) {
		t.PaymentStatus = status
		return t, true
	})
	return err
}

// Delete removes the ticket locally. Tickets have no dependents.
func (r *TicketRepository) Delete(id int64) (bool, error) {
	return r.store.Delete(id)
}

func (r *TicketRepository) RefreshFromRemote(ctx context.Context) error {
	return r.store.RefreshFromRemote(ctx)
}

func (r *TicketRepository) Count() int {
	return len(r.store.GetAll())
}
