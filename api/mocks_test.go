package api

import (
	"context"
	"time"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/service/booking"
	"github.com/Domenick1991/skyline/internal/service/flights"
	"github.com/stretchr/testify/mock"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List() []domain.Flight {
	return m.Called().Get(0).([]domain.Flight)
}

func (m *MockFlightUseCase) GetByID(id int64) (domain.Flight, error) {
	args := m.Called(id)
	return args.Get(0).(domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Resolve(id int64) (domain.FlightSearchResult, error) {
	args := m.Called(id)
	return args.Get(0).(domain.FlightSearchResult), args.Error(1)
}

func (m *MockFlightUseCase) Airports() []domain.Airport {
	return m.Called().Get(0).([]domain.Airport)
}

func (m *MockFlightUseCase) AvailableDates(fromID, toID int64, year int, month time.Month) []domain.Date {
	return m.Called(fromID, toID, year, month).Get(0).([]domain.Date)
}

func (m *MockFlightUseCase) Search(fromID, toID int64, day domain.Date) []domain.FlightSearchResult {
	return m.Called(fromID, toID, day).Get(0).([]domain.FlightSearchResult)
}

func (m *MockFlightUseCase) AddFlight(ctx context.Context, input flights.FlightInput) (flights.Result, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(flights.Result), args.Error(1)
}

func (m *MockFlightUseCase) Aircraft() []domain.Aircraft {
	return m.Called().Get(0).([]domain.Aircraft)
}

func (m *MockFlightUseCase) Crews() []domain.Crew {
	return m.Called().Get(0).([]domain.Crew)
}

func (m *MockFlightUseCase) Dashboard() flights.DashboardStats {
	return m.Called().Get(0).(flights.DashboardStats)
}

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) BookFlight(ctx context.Context, req booking.BookingRequest) (booking.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(booking.Result), args.Error(1)
}

func (m *MockBookingUseCase) AddReservation(ctx context.Context, input booking.StaffReservationInput) (booking.Result, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(booking.Result), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmPayment(ctx context.Context, input booking.ConfirmPaymentInput) (booking.Result, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(booking.Result), args.Error(1)
}

func (m *MockBookingUseCase) TakenSeats(flightID int64) []string {
	return m.Called(flightID).Get(0).([]string)
}

type MockDeleter struct {
	mock.Mock
}

func (m *MockDeleter) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Charge(ctx context.Context, amount float64) (string, error) {
	args := m.Called(ctx, amount)
	return args.String(0), args.Error(1)
}
