package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/metrics"
	"github.com/Domenick1991/skyline/internal/notification"
	"github.com/Domenick1991/skyline/internal/repository"
	"github.com/Domenick1991/skyline/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	CustomerAgent = "Customer Booking"
	CustomerPhone = "N/A (Customer)"

	MsgSoldOut        = "Sorry, this flight just sold out."
	MsgNoSeats        = "No available seats on this flight."
	MsgTicketNotFound = "Ticket not found."
	MsgAlreadyPaid    = "This ticket is already paid."
	MsgNotActive      = "This reservation is no longer active."

	defaultStaffHold = 24 * time.Hour
)

type BookingUseCase interface {
	BookFlight(ctx context.Context, req BookingRequest) (Result, error)
	AddReservation(ctx context.Context, input StaffReservationInput) (Result, error)
	ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (Result, error)
	TakenSeats(flightID int64) []string
}

type FlightInventory interface {
	GetByID(id int64) (domain.Flight, error)
	DecrementSeat(id int64) (bool, error)
	ReleaseSeat(id int64) error
}

type ReservationStore interface {
	GetByID(id int64) (domain.Reservation, error)
	AddReservation(r domain.Reservation) (domain.Reservation, error)
	UpdateReservationStatus(id int64, status domain.BookingStatus) error
	TakenSeats(flightID int64) map[string]struct{}
}

type TicketStore interface {
	GetByID(id int64) (domain.Ticket, error)
	Add(t domain.Ticket) (domain.Ticket, error)
	UpdateTicketStatus(id int64, status domain.BookingStatus) error
}

type Notifier interface {
	Publish(ctx context.Context, n domain.Notification) int
}

// PaymentGateway charges a customer. The engine never calls it; callers
// charge first and pass the transaction ID to ConfirmPayment.
type PaymentGateway interface {
	Charge(ctx context.Context, amount float64) (string, error)
}

type BookingRequest struct {
	Flight     *domain.FlightSearchResult
	Customer   *domain.Customer
	SeatNumber string
	Price      float64
	Status     domain.BookingStatus
	// AgentName overrides the "Customer Booking" agent label.
	AgentName string
}

type StaffReservationInput struct {
	CustomerName    string
	CustomerPhone   string
	Flight          *domain.Flight
	SeatNumber      string
	ReservationDate domain.Date
	PriceText       string
	IsPaid          bool
	AdminName       string
}

type ConfirmPaymentInput struct {
	TicketID      int64
	Email         string
	TransactionID string
}

type BookingService struct {
	flights      FlightInventory
	reservations ReservationStore
	tickets      TicketStore
	notifier     Notifier
	log          *zap.Logger
	now          func() time.Time
	staffHold    time.Duration
}

type BookingServiceOption func(*BookingService)

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

// WithStaffHold sets how long an unpaid staff reservation is held.
func WithStaffHold(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.staffHold = d
		}
	}
}

func NewBookingService(
	flights FlightInventory,
	reservations ReservationStore,
	tickets TicketStore,
	notifier Notifier,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		flights:      flights,
		reservations: reservations,
		tickets:      tickets,
		notifier:     notifier,
		log:          zap.NewNop(),
		now:          time.Now,
		staffHold:    defaultStaffHold,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookFlight runs the self-service booking sequence. The returned error is
// set only for local persistence faults; everything else is in the Result.
func (s *BookingService) BookFlight(ctx context.Context, req BookingRequest) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "booking.BookFlight")
	defer span.End()
	defer observe(time.Now())

	var res Result
	if req.Flight == nil {
		res.addError("flight", "Flight details missing.")
	}
	if req.Customer == nil {
		res.addError("customer", "Customer details missing.")
	}
	if strings.TrimSpace(req.SeatNumber) == "" {
		res.addError("seat", "Seat must be selected*")
	}
	if req.Price <= 0 {
		res.addError("price", "Price must be positive*")
	}
	status := req.Status
	if status == "" {
		status = domain.BookingStatusPending
	}
	if status != domain.BookingStatusPending && status != domain.BookingStatusConfirmed {
		res.addError("status", "Status must be PENDING or CONFIRMED*")
	}
	if !res.Success() {
		count("customer", "invalid")
		return res, nil
	}

	flightID := req.Flight.Flight.ID
	span.SetAttributes(attribute.Int64("flight_id", flightID), attribute.String("status", string(status)))

	current, ok, err := s.takeSeat(flightID)
	if err != nil {
		count("customer", "error")
		return Result{}, err
	}
	if !ok {
		count("customer", "sold_out")
		return globalError(MsgSoldOut), nil
	}

	var expiry *domain.DateTime
	if status == domain.BookingStatusPending {
		e := current.DepartureTime.StartOfDay()
		e.Time = e.AddDate(0, 0, -1)
		expiry = &e
	}
	agent := CustomerAgent
	if req.AgentName != "" {
		agent = req.AgentName
	}

	reservation, ticket, err := s.issue(domain.Reservation{
		FlightID:        flightID,
		CustomerName:    req.Customer.Name,
		CustomerPhone:   CustomerPhone,
		SeatNumber:      req.SeatNumber,
		ReservationDate: domain.DateOf(s.now()),
		Price:           req.Price,
		Status:          status,
		AdminName:       agent,
		ExpiryTime:      expiry,
	}, req.Flight.Summary(), current.DepartureTime.Date())
	if err != nil {
		count("customer", "error")
		return Result{}, err
	}

	var n domain.Notification
	if status == domain.BookingStatusConfirmed {
		n = notification.BookingConfirmed(req.Customer.Email, req.Customer.Name, ticket.ID, ticket.FlightInfo)
	} else {
		n = notification.PaymentReminder(req.Customer.Email, req.Customer.Name, reservation.ID)
	}
	s.notify(ctx, n)

	s.log.Info("flight booked",
		zap.Int64("flight_id", flightID),
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("ticket_id", ticket.ID),
		zap.String("seat", reservation.SeatNumber),
		zap.String("status", string(status)))
	count("customer", "ok")
	return Result{Reservation: &reservation, Ticket: &ticket}, nil
}

// AddReservation books a seat on behalf of a customer. Staff bookings do not
// send notifications.
func (s *BookingService) AddReservation(ctx context.Context, input StaffReservationInput) (Result, error) {
	_, span := tracing.StartSpan(ctx, "booking.AddReservation")
	defer span.End()
	defer observe(time.Now())

	var res Result
	name := strings.TrimSpace(input.CustomerName)
	phone := strings.TrimSpace(input.CustomerPhone)
	if name == "" {
		res.addError("name", "Customer name is required*")
	}
	if phone == "" {
		res.addError("phone", "Customer phone is required*")
	}
	if input.Flight == nil {
		res.addError("flight", "Flight must be selected*")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(input.PriceText), 64)
	if err != nil {
		res.addError("price", "Invalid price*")
	} else if price <= 0 {
		res.addError("price", "Price must be positive*")
	}
	if !res.Success() {
		count("staff", "invalid")
		return res, nil
	}

	flightID := input.Flight.ID
	span.SetAttributes(attribute.Int64("flight_id", flightID))

	current, ok, err := s.takeSeat(flightID)
	if err != nil {
		count("staff", "error")
		return Result{}, err
	}
	if !ok {
		count("staff", "sold_out")
		return globalError(MsgNoSeats), nil
	}

	now := s.now()
	status := domain.BookingStatusPending
	expiry := domain.DateTimeOf(now.Add(s.staffHold))
	expiryPtr := &expiry
	if input.IsPaid {
		status = domain.BookingStatusConfirmed
		expiryPtr = nil
	}
	date := input.ReservationDate
	if date.IsZero() {
		date = domain.DateOf(now)
	}

	reservation, ticket, err := s.issue(domain.Reservation{
		FlightID:        flightID,
		CustomerName:    name,
		CustomerPhone:   phone,
		SeatNumber:      input.SeatNumber,
		ReservationDate: date,
		Price:           price,
		Status:          status,
		AdminName:       input.AdminName,
		ExpiryTime:      expiryPtr,
	}, fmt.Sprintf("Flight %d", flightID), current.DepartureTime.Date())
	if err != nil {
		count("staff", "error")
		return Result{}, err
	}

	s.log.Info("staff reservation added",
		zap.Int64("flight_id", flightID),
		zap.Int64("reservation_id", reservation.ID),
		zap.String("admin", input.AdminName),
		zap.Bool("paid", input.IsPaid))
	count("staff", "ok")
	return Result{Reservation: &reservation, Ticket: &ticket}, nil
}

// ConfirmPayment records a payment the caller already charged and sends the
// booking confirmation.
func (s *BookingService) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "booking.ConfirmPayment")
	defer span.End()

	var res Result
	if strings.TrimSpace(input.Email) == "" {
		res.addError("email", "Email is required*")
	}
	ticket, err := s.tickets.GetByID(input.TicketID)
	if err != nil {
		res.addError("ticket", MsgTicketNotFound)
	}
	if !res.Success() {
		count("confirm", "invalid")
		return res, nil
	}

	reservation, err := s.reservations.GetByID(ticket.ReservationID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		count("confirm", "rejected")
		return globalError(MsgNotActive), nil
	case err != nil:
		return Result{}, err
	}
	if ticket.PaymentStatus == domain.BookingStatusConfirmed {
		count("confirm", "rejected")
		return globalError(MsgAlreadyPaid), nil
	}
	if !reservation.Status.Holding() {
		count("confirm", "rejected")
		return globalError(MsgNotActive), nil
	}

	if err := s.reservations.UpdateReservationStatus(reservation.ID, domain.BookingStatusConfirmed); err != nil {
		count("confirm", "error")
		return Result{}, fmt.Errorf("confirm reservation %d: %w", reservation.ID, err)
	}
	if err := s.tickets.UpdateTicketStatus(ticket.ID, domain.BookingStatusConfirmed); err != nil {
		count("confirm", "error")
		return Result{}, fmt.Errorf("confirm ticket %d: %w", ticket.ID, err)
	}
	reservation.Status = domain.BookingStatusConfirmed
	reservation.ExpiryTime = nil
	ticket.PaymentStatus = domain.BookingStatusConfirmed

	s.notify(ctx, notification.BookingConfirmed(input.Email, ticket.CustomerName, ticket.ID, ticket.FlightInfo))

	s.log.Info("payment confirmed",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("reservation_id", reservation.ID),
		zap.String("transaction_id", input.TransactionID))
	count("confirm", "ok")
	return Result{Reservation: &reservation, Ticket: &ticket}, nil
}

// TakenSeats returns the held seat labels of a flight, sorted.
func (s *BookingService) TakenSeats(flightID int64) []string {
	taken := s.reservations.TakenSeats(flightID)
	out := make([]string, 0, len(taken))
	for seat := range taken {
		out = append(out, seat)
	}
	sort.Strings(out)
	return out
}

// takeSeat checks the current inventory and decrements it. ok is false when
// the flight is gone or sold out.
func (s *BookingService) takeSeat(flightID int64) (domain.Flight, bool, error) {
	current, err := s.flights.GetByID(flightID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Flight{}, false, nil
		}
		return domain.Flight{}, false, err
	}
	if current.AvailableSeats <= 0 {
		return current, false, nil
	}
	ok, err := s.flights.DecrementSeat(flightID)
	if err != nil {
		return current, false, fmt.Errorf("decrement seat on flight %d: %w", flightID, err)
	}
	return current, ok, nil
}

// issue writes the reservation and its ticket. When a write fails the
// earlier steps are undone so no half pair holds a seat.
func (s *BookingService) issue(r domain.Reservation, flightInfo string, flightDate domain.Date) (domain.Reservation, domain.Ticket, error) {
	reservation, err := s.reservations.AddReservation(r)
	if err != nil {
		s.releaseSeat(r.FlightID)
		return domain.Reservation{}, domain.Ticket{}, fmt.Errorf("create reservation: %w", err)
	}

	ticket, err := s.tickets.Add(domain.Ticket{
		ReservationID: reservation.ID,
		CustomerName:  reservation.CustomerName,
		PaymentStatus: reservation.Status,
		FlightInfo:    flightInfo,
		FlightDate:    flightDate,
	})
	if err != nil {
		if cerr := s.reservations.UpdateReservationStatus(reservation.ID, domain.BookingStatusCancelled); cerr != nil {
			s.log.Error("failed to cancel orphan reservation",
				zap.Int64("reservation_id", reservation.ID), zap.Error(cerr))
		}
		s.releaseSeat(r.FlightID)
		return domain.Reservation{}, domain.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	return reservation, ticket, nil
}

func (s *BookingService) releaseSeat(flightID int64) {
	if err := s.flights.ReleaseSeat(flightID); err != nil {
		s.log.Error("failed to release seat", zap.Int64("flight_id", flightID), zap.Error(err))
	}
}

func (s *BookingService) notify(ctx context.Context, n domain.Notification) {
	if s.notifier == nil {
		return
	}
	if failed := s.notifier.Publish(ctx, n); failed > 0 {
		s.log.Warn("notification not fully delivered",
			zap.String("notification_id", n.ID), zap.Int("failed_subscribers", failed))
	}
}

func count(kind, result string) {
	metrics.BookingsTotal.WithLabelValues(kind, result).Inc()
}

func observe(start time.Time) {
	metrics.BookingLatency.Observe(time.Since(start).Seconds())
}

var _ BookingUseCase = (*BookingService)(nil)
