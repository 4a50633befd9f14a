// Package session holds per-customer seat selection state in memory.
package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/Domenick1991/skyline/internal/domain"
)

const (
	DefaultCabin      = "Economy"
	DefaultGuestCount = 1
)

var ErrInvalidGuestCount = errors.New("guest count must be at least 1 and not below the selected seats")

// TakenSeatsSource reports the seats held by live reservations.
type TakenSeatsSource interface {
	TakenSeats(flightID int64) map[string]struct{}
}

type SeatSelection struct {
	id    string
	taken TakenSeatsSource

	mu         sync.Mutex
	flight     *domain.FlightSearchResult
	cabin      string
	guestCount int
	selected   map[string]struct{}
}

func NewSeatSelection(id string, taken TakenSeatsSource) *SeatSelection {
	return &SeatSelection{
		id:         id,
		taken:      taken,
		cabin:      DefaultCabin,
		guestCount: DefaultGuestCount,
		selected:   make(map[string]struct{}),
	}
}

func (s *SeatSelection) ID() string { return s.id }

// SetFlight switches the session to f and drops the selected seats.
func (s *SeatSelection) SetFlight(f domain.FlightSearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flight = &f
	s.selected = make(map[string]struct{})
}

func (s *SeatSelection) Flight() (domain.FlightSearchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == nil {
		return domain.FlightSearchResult{}, false
	}
	return *s.flight, true
}

func (s *SeatSelection) SetCabin(cabin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cabin == "" {
		cabin = DefaultCabin
	}
	s.cabin = cabin
}

func (s *SeatSelection) Cabin() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cabin
}

// SetGuestCount rejects counts below 1 or below the current selection.
func (s *SeatSelection) SetGuestCount(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n < len(s.selected) {
		return ErrInvalidGuestCount
	}
	s.guestCount = n
	return nil
}

func (s *SeatSelection) GuestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guestCount
}

// ToggleSeat deselects a selected seat and returns false, or selects a free
// seat while below the guest count and returns true. A seat at capacity or
// already taken is rejected with false and nothing changes.
func (s *SeatSelection) ToggleSeat(seat string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.selected[seat]; ok {
		delete(s.selected, seat)
		return false
	}
	if len(s.selected) >= s.guestCount {
		return false
	}
	if s.isTakenLocked(seat) {
		return false
	}
	s.selected[seat] = struct{}{}
	return true
}

func (s *SeatSelection) isTakenLocked(seat string) bool {
	if s.taken == nil || s.flight == nil {
		return false
	}
	_, taken := s.taken.TakenSeats(s.flight.Flight.ID)[seat]
	return taken
}

// IsComplete reports whether exactly guestCount seats are selected.
func (s *SeatSelection) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected) == s.guestCount
}

func (s *SeatSelection) SelectedSeats() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.selected)
}

// TakenSeats lists the seats of the current flight that cannot be selected.
func (s *SeatSelection) TakenSeats() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken == nil || s.flight == nil {
		return nil
	}
	return sortedKeys(s.taken.TakenSeats(s.flight.Flight.ID))
}

// Clear resets the session to its initial state.
func (s *SeatSelection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flight = nil
	s.cabin = DefaultCabin
	s.guestCount = DefaultGuestCount
	s.selected = make(map[string]struct{})
}

type Snapshot struct {
	ID            string                     `json:"id"`
	Flight        *domain.FlightSearchResult `json:"flight,omitempty"`
	Cabin         string                     `json:"cabin"`
	GuestCount    int                        `json:"guest_count"`
	SelectedSeats []string                   `json:"selected_seats"`
	Complete      bool                       `json:"complete"`
}

func (s *SeatSelection) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:            s.id,
		Cabin:         s.cabin,
		GuestCount:    s.guestCount,
		SelectedSeats: sortedKeys(s.selected),
		Complete:      len(s.selected) == s.guestCount,
	}
	if s.flight != nil {
		f := *s.flight
		snap.Flight = &f
	}
	return snap
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
