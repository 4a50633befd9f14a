package repository

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/remote"
	"github.com/Domenick1991/skyline/internal/store"
	"github.com/Domenick1991/skyline/internal/syncqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

type repos struct {
	airports     *AirportRepository
	aircraft     *AircraftRepository
	crews        *CrewRepository
	flights      *FlightRepository
	reservations *ReservationRepository
	tickets      *TicketRepository
	queue        *syncqueue.Queue
	remote       *remote.Memory
}

func newRepos(t *testing.T, medium store.Medium, seed bool) repos {
	t.Helper()
	rm := remote.NewMemory(remote.DefaultCascade)
	q := syncqueue.New(rm)
	o := Options{
		Medium: medium,
		Remote: rm,
		Queue:  q,
		Seed:   seed,
		Now:    func() time.Time { return testNow },
	}

	tickets, err := NewTicketRepository(o)
	require.NoError(t, err)
	reservations, err := NewReservationRepository(o, tickets)
	require.NoError(t, err)
	flights, err := NewFlightRepository(o, reservations, tickets)
	require.NoError(t, err)
	aircraft, err := NewAircraftRepository(o, flights, reservations, tickets)
	require.NoError(t, err)
	crews, err := NewCrewRepository(o, flights, reservations, tickets)
	require.NoError(t, err)
	airports, err := NewAirportRepository(o, flights, reservations, tickets)
	require.NoError(t, err)

	return repos{
		airports: airports, aircraft: aircraft, crews: crews,
		flights: flights, reservations: reservations, tickets: tickets,
		queue: q, remote: rm,
	}
}

func flightOn(t domain.DateTime, seats int) domain.Flight {
	return domain.Flight{DepartureAirportID: 1, ArrivalAirportID: 2, AircraftID: 1, CrewID: 1, DepartureTime: t, ArrivalTime: t, AvailableSeats: seats}
}

func TestSeed(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), true)

	assert.Len(t, r.airports.List(), 4)
	flights := r.flights.List()
	require.Len(t, flights, 3)
	assert.Equal(t, domain.NewDateTime(2026, time.March, 20, 0, 0), flights[0].DepartureTime)
	assert.Equal(t, 416, flights[0].AvailableSeats)
	assert.Empty(t, r.reservations.List())
	assert.Empty(t, r.tickets.List())

	jfk, err := r.airports.FindByCode("jfk")
	require.NoError(t, err)
	assert.Equal(t, int64(1), jfk.ID)

	jumbo, err := r.aircraft.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, domain.Aircraft{ID: 1, Model: "Boeing 747", Capacity: 416}, jumbo)
	assert.Equal(t, 2, r.crews.Count())

	// 4 airports, 2 aircraft, 2 crews and 3 flights wait for upload
	assert.Equal(t, 11, r.queue.Len())
}

func TestFlightRepository_AddAndGet(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)

	added, err := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 1, 8, 0), 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), added.ID)

	got, err := r.flights.GetByID(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, got)

	_, err = r.flights.GetByID(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlightRepository_DecrementSeat(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)
	f, err := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 1, 8, 0), 1))
	require.NoError(t, err)

	ok, err := r.flights.DecrementSeat(f.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.flights.DecrementSeat(f.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.flights.DecrementSeat(404)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := r.flights.GetByID(f.ID)
	assert.Equal(t, 0, got.AvailableSeats)

	require.NoError(t, r.flights.ReleaseSeat(f.ID))
	got, _ = r.flights.GetByID(f.ID)
	assert.Equal(t, 1, got.AvailableSeats)

	assert.ErrorIs(t, r.flights.ReleaseSeat(404), ErrNotFound)
}

func TestFlightRepository_DecrementSeatNeverOversells(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)
	f, err := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 1, 8, 0), 5))
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.flights.DecrementSeat(f.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, sold)
	got, _ := r.flights.GetByID(f.ID)
	assert.Equal(t, 0, got.AvailableSeats)
}

func TestFlightRepository_FindByRouteAndMonth(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)

	inMonth, _ := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 3, 8, 0), 10))
	_, _ = r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 9, 8, 0), 0))
	_, _ = r.flights.Add(flightOn(domain.NewDateTime(2026, time.May, 3, 8, 0), 10))
	other := flightOn(domain.NewDateTime(2026, time.April, 3, 8, 0), 10)
	other.ArrivalAirportID = 3
	_, _ = r.flights.Add(other)

	got := r.flights.FindByRouteAndMonth(1, 2, 2026, time.April)
	require.Len(t, got, 1)
	assert.Equal(t, inMonth.ID, got[0].ID)

	byDay := r.flights.FindByRouteAndDate(1, 2, domain.NewDate(2026, time.April, 3))
	require.Len(t, byDay, 1)
	assert.Equal(t, inMonth.ID, byDay[0].ID)

	assert.Empty(t, r.flights.FindByRouteAndDate(1, 2, domain.NewDate(2026, time.April, 9)))
}

func TestReservationRepository_AddAndFind(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)
	expiry := domain.NewDateTime(2026, time.April, 1, 0, 0)

	in := domain.Reservation{
		FlightID:        1,
		CustomerName:    "Ada",
		CustomerPhone:   "555",
		SeatNumber:      "12A",
		ReservationDate: domain.NewDate(2026, time.March, 10),
		Price:           199.5,
		Status:          domain.BookingStatusPending,
		AdminName:       "Customer Booking",
		ExpiryTime:      &expiry,
	}
	stored, err := r.reservations.AddReservation(in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID)

	got, err := r.reservations.GetByID(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	in.ID = 77
	second, err := r.reservations.AddReservation(in)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
}

func TestReservationRepository_UpdateStatusClearsExpiry(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)
	expiry := domain.NewDateTime(2026, time.April, 1, 0, 0)
	res, err := r.reservations.AddReservation(domain.Reservation{
		FlightID: 1, SeatNumber: "1A", Price: 10, Status: domain.BookingStatusPending, ExpiryTime: &expiry,
	})
	require.NoError(t, err)

	require.NoError(t, r.reservations.UpdateReservationStatus(res.ID, domain.BookingStatusConfirmed))

	got, err := r.reservations.GetByID(res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
	assert.Nil(t, got.ExpiryTime)

	// even a move to another non-terminal status clears it
	res2, _ := r.reservations.AddReservation(domain.Reservation{FlightID: 1, Price: 10, Status: domain.BookingStatusPending, ExpiryTime: &expiry})
	require.NoError(t, r.reservations.UpdateReservationStatus(res2.ID, domain.BookingStatusPending))
	got2, _ := r.reservations.GetByID(res2.ID)
	assert.Nil(t, got2.ExpiryTime)

	assert.NoError(t, r.reservations.UpdateReservationStatus(404, domain.BookingStatusConfirmed))
}

func TestReservationRepository_FindByFlightIDOnlyHolding(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)

	for seat, status := range map[string]domain.BookingStatus{
		"1A": domain.BookingStatusPending,
		"1B": domain.BookingStatusConfirmed,
		"1C": domain.BookingStatusCancelled,
		"1D": domain.BookingStatusExpired,
	} {
		_, err := r.reservations.AddReservation(domain.Reservation{FlightID: 7, SeatNumber: seat, Price: 1, Status: status})
		require.NoError(t, err)
	}
	_, err := r.reservations.AddReservation(domain.Reservation{FlightID: 8, SeatNumber: "9Z", Price: 1, Status: domain.BookingStatusConfirmed})
	require.NoError(t, err)

	held := r.reservations.FindByFlightID(7)
	require.Len(t, held, 2)
	for _, res := range held {
		assert.True(t, res.Status.Holding())
	}
	assert.Equal(t, map[string]struct{}{"1A": {}, "1B": {}}, r.reservations.TakenSeats(7))
}

func TestTicketRepository(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)

	first, err := r.tickets.Add(domain.Ticket{ID: 500, ReservationID: 1, CustomerName: "Ada Lovelace", PaymentStatus: domain.BookingStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := r.tickets.Add(domain.Ticket{ID: 1, ReservationID: 2, CustomerName: "Grace", PaymentStatus: domain.BookingStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	found := r.tickets.FindByCustomerName("ADA LOVELACE")
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)
	assert.Empty(t, r.tickets.FindByCustomerName("Ada"))

	require.NoError(t, r.tickets.UpdateTicketStatus(first.ID, domain.BookingStatusConfirmed))
	got, err := r.tickets.GetByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, got.PaymentStatus)
	assert.Equal(t, "Ada Lovelace", got.CustomerName)
	assert.Equal(t, int64(1), got.ReservationID)

	assert.Len(t, r.tickets.FindByReservationID(2), 1)
}

func TestRepositories_PersistAcrossRestart(t *testing.T) {
	medium := store.NewFileMedium(t.TempDir())
	r := newRepos(t, medium, false)

	f, err := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 1, 8, 0), 3))
	require.NoError(t, err)
	res, err := r.reservations.AddReservation(domain.Reservation{FlightID: f.ID, SeatNumber: "2C", Price: 50, Status: domain.BookingStatusConfirmed})
	require.NoError(t, err)

	restarted := newRepos(t, medium, true)
	gotF, err := restarted.flights.GetByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f, gotF)
	gotR, err := restarted.reservations.GetByID(res.ID)
	require.NoError(t, err)
	assert.Equal(t, res, gotR)
	// flights already present, so no reseed
	assert.Len(t, restarted.flights.List(), 1)
}

func TestFlightDelete_CascadesThroughRemote(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)
	ctx := context.Background()

	doomed, _ := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 1, 8, 0), 3))
	kept, _ := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 2, 8, 0), 3))
	resDoomed, _ := r.reservations.AddReservation(domain.Reservation{FlightID: doomed.ID, SeatNumber: "1A", Price: 1, Status: domain.BookingStatusConfirmed})
	resKept, _ := r.reservations.AddReservation(domain.Reservation{FlightID: kept.ID, SeatNumber: "1A", Price: 1, Status: domain.BookingStatusConfirmed})
	_, _ = r.tickets.Add(domain.Ticket{ReservationID: resDoomed.ID, CustomerName: "A"})
	_, _ = r.tickets.Add(domain.Ticket{ReservationID: resKept.ID, CustomerName: "B"})

	report := r.queue.Flush(ctx)
	require.Equal(t, 6, report.Succeeded)

	removed, err := r.flights.Delete(ctx, doomed.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = r.flights.GetByID(doomed.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	reservations := r.reservations.List()
	require.Len(t, reservations, 1)
	assert.Equal(t, resKept.ID, reservations[0].ID)

	tickets := r.tickets.List()
	require.Len(t, tickets, 1)
	assert.Equal(t, resKept.ID, tickets[0].ReservationID)

	remoteFlights, err := r.remote.SelectAll(ctx, FlightsCollection)
	require.NoError(t, err)
	assert.Len(t, remoteFlights, 1)
}

func TestDelete_UnknownID(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)
	removed, err := r.flights.Delete(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, removed)
}

func idsOf[T any](items []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func upsertRemote(t *testing.T, r repos, collection, payload string) {
	t.Helper()
	require.NoError(t, r.remote.Upsert(context.Background(), collection, json.RawMessage(payload)))
}

func TestAirportDelete_KeepsUnrelatedSeedFlights(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), true)
	ctx := context.Background()

	report := r.queue.Flush(ctx)
	require.Equal(t, 11, report.Succeeded)

	// DXB is only the arrival airport of flight 3
	removed, err := r.airports.Delete(ctx, 4)
	require.NoError(t, err)
	assert.True(t, removed)

	assert.Equal(t, []int64{1, 2}, idsOf(r.flights.List(), domain.FlightID))
	assert.Equal(t, []int64{1, 2, 3}, idsOf(r.airports.List(), domain.AirportID))
}

func TestAirportDelete_RefreshesFlightsReservationsAndTickets(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), true)
	ctx := context.Background()
	r.queue.Flush(ctx)

	// records that only the remote knows about show up after a refresh
	upsertRemote(t, r, ReservationsCollection, `{"id":50,"flight_id":1,"seat_number":"3C","status":"CONFIRMED"}`)
	upsertRemote(t, r, TicketsCollection, `{"id":60,"reservation_id":50,"customer_name":"Ada"}`)

	_, err := r.airports.Delete(ctx, 4)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, idsOf(r.flights.List(), domain.FlightID))
	assert.Equal(t, []int64{50}, idsOf(r.reservations.List(), domain.ReservationID))
	assert.Equal(t, []int64{60}, idsOf(r.tickets.List(), domain.TicketID))
}

func TestReservationDelete_RefreshesOnlyTickets(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)
	ctx := context.Background()

	f, _ := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 1, 8, 0), 3))
	doomed, _ := r.reservations.AddReservation(domain.Reservation{FlightID: f.ID, SeatNumber: "1A", Price: 1, Status: domain.BookingStatusConfirmed})
	kept, _ := r.reservations.AddReservation(domain.Reservation{FlightID: f.ID, SeatNumber: "1B", Price: 1, Status: domain.BookingStatusConfirmed})
	_, _ = r.tickets.Add(domain.Ticket{ReservationID: doomed.ID, CustomerName: "A"})
	keptTicket, _ := r.tickets.Add(domain.Ticket{ReservationID: kept.ID, CustomerName: "B"})
	require.Equal(t, 5, r.queue.Flush(ctx).Succeeded)

	upsertRemote(t, r, FlightsCollection, `{"id":90,"departure_airport_id":1,"arrival_airport_id":2}`)
	upsertRemote(t, r, TicketsCollection, `{"id":91,"reservation_id":77,"customer_name":"Remote"}`)

	removed, err := r.reservations.Delete(ctx, doomed.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	assert.Equal(t, []int64{kept.ID}, idsOf(r.reservations.List(), domain.ReservationID))
	assert.Equal(t, []int64{keptTicket.ID, 91}, idsOf(r.tickets.List(), domain.TicketID))
	// flights were not reloaded, so the remote-only flight stays unknown
	assert.Equal(t, []int64{f.ID}, idsOf(r.flights.List(), domain.FlightID))
}

func TestFleetDelete_CascadesToFlights(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), true)
	ctx := context.Background()
	r.queue.Flush(ctx)

	removed, err := r.aircraft.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []int64{2, 3}, idsOf(r.flights.List(), domain.FlightID))

	removed, err = r.crews.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []int64{3}, idsOf(r.flights.List(), domain.FlightID))

	assert.Equal(t, []int64{2}, idsOf(r.aircraft.List(), domain.AircraftID))
	assert.Equal(t, []int64{1}, idsOf(r.crews.List(), domain.CrewID))

	removed, err = r.crews.Delete(ctx, 404)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFleetRepositories_Add(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)

	a, err := r.aircraft.Add(domain.Aircraft{ID: 40, Model: "Embraer E190", Capacity: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	got, err := r.aircraft.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Capacity)

	c, err := r.crews.Add(domain.Crew{Name: "Charlie Team", Captain: "Capt. Carter"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	_, err = r.crews.GetByID(2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.aircraft.GetByID(2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlightDelete_UnflushedReservationComesBackAfterFlush(t *testing.T) {
	r := newRepos(t, store.NewMemoryMedium(), false)
	ctx := context.Background()

	kept, _ := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 1, 8, 0), 3))
	doomed, _ := r.flights.Add(flightOn(domain.NewDateTime(2026, time.April, 2, 8, 0), 3))
	r.queue.Flush(ctx)

	pending, err := r.reservations.AddReservation(domain.Reservation{FlightID: kept.ID, SeatNumber: "4D", Price: 1, Status: domain.BookingStatusPending})
	require.NoError(t, err)

	_, err = r.flights.Delete(ctx, doomed.ID)
	require.NoError(t, err)
	// the refresh replaced the local copy before the snapshot was uploaded
	assert.Empty(t, r.reservations.List())

	require.Equal(t, 1, r.queue.Flush(ctx).Succeeded)
	require.NoError(t, r.reservations.RefreshFromRemote(ctx))
	assert.Equal(t, []int64{pending.ID}, idsOf(r.reservations.List(), domain.ReservationID))
}
