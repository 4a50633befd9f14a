package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/repository"
	"github.com/Domenick1991/skyline/internal/service/booking"
	"github.com/Domenick1991/skyline/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReservationAdmin struct {
	mock.Mock
}

func (m *MockReservationAdmin) GetByID(id int64) (domain.Reservation, error) {
	args := m.Called(id)
	return args.Get(0).(domain.Reservation), args.Error(1)
}

func (m *MockReservationAdmin) UpdateReservationStatus(id int64, status domain.BookingStatus) error {
	return m.Called(id, status).Error(0)
}

func (m *MockReservationAdmin) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var testFlight = domain.FlightSearchResult{
	Flight:           domain.Flight{ID: 1, AvailableSeats: 3},
	DepartureAirport: domain.Airport{ID: 1, Name: "New York"},
	ArrivalAirport:   domain.Airport{ID: 2, Name: "Los Angeles"},
}

func bookingBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"flight_id":   1,
		"customer":    map[string]any{"name": "Ada", "email": "ada@example.com"},
		"seat_number": "12A",
		"price":       320,
		"status":      "CONFIRMED",
	})
	require.NoError(t, err)
	return body
}

func TestBookingHandler_create(t *testing.T) {
	tests := []struct {
		name   string
		result booking.Result
		err    error
		want   int
	}{
		{name: "booked", result: booking.Result{Reservation: &domain.Reservation{ID: 1}, Ticket: &domain.Ticket{ID: 1}}, want: http.StatusCreated},
		{name: "sold out", result: booking.Result{GlobalError: booking.MsgSoldOut}, want: http.StatusConflict},
		{name: "invalid", result: booking.Result{FieldErrors: map[string]string{"seat": "Seat must be selected*"}}, want: http.StatusUnprocessableEntity},
		{name: "persistence fault", err: store.ErrPersist, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			mockFlights := &MockFlightUseCase{}
			handler := NewBookingHandler(mockService, mockFlights, nil, nil, nil)

			mockFlights.On("Resolve", int64(1)).Return(testFlight, nil)
			mockService.On("BookFlight", mock.Anything, mock.MatchedBy(func(req booking.BookingRequest) bool {
				return req.Flight != nil && req.Flight.Flight.ID == 1 &&
					req.Customer != nil && req.Customer.Email == "ada@example.com" &&
					req.SeatNumber == "12A" && req.Status == domain.BookingStatusConfirmed
			})).Return(tt.result, tt.err).Once()

			c, w := newTestContext("POST", "/bookings", bookingBody(t))
			handler.create(c)

			assert.Equal(t, tt.want, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_createUnknownFlight(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockFlights := &MockFlightUseCase{}
	handler := NewBookingHandler(mockService, mockFlights, nil, nil, nil)

	mockFlights.On("Resolve", int64(1)).Return(domain.FlightSearchResult{}, repository.ErrNotFound)

	c, w := newTestContext("POST", "/bookings", bookingBody(t))
	handler.create(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertNotCalled(t, "BookFlight", mock.Anything, mock.Anything)
}

func TestBookingHandler_addReservation(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockFlights := &MockFlightUseCase{}
	handler := NewBookingHandler(mockService, mockFlights, nil, nil, nil)

	mockFlights.On("GetByID", int64(1)).Return(testFlight.Flight, nil)
	mockService.On("AddReservation", mock.Anything, mock.MatchedBy(func(in booking.StaffReservationInput) bool {
		return in.Flight != nil && in.PriceText == "99.50" && in.IsPaid && in.AdminName == "admin"
	})).Return(booking.Result{Reservation: &domain.Reservation{ID: 3}}, nil).Once()

	body, _ := json.Marshal(map[string]any{
		"customer_name": "Grace", "customer_phone": "555", "flight_id": 1,
		"seat_number": "1A", "price": "99.50", "is_paid": true, "admin_name": "admin",
	})
	c, w := newTestContext("POST", "/reservations", body)
	handler.addReservation(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_updateStatus(t *testing.T) {
	reservations := &MockReservationAdmin{}
	handler := NewBookingHandler(nil, nil, reservations, nil, nil)

	reservations.On("GetByID", int64(2)).Return(domain.Reservation{ID: 2, Status: domain.BookingStatusPending}, nil).Once()
	reservations.On("UpdateReservationStatus", int64(2), domain.BookingStatusCancelled).Return(nil).Once()
	reservations.On("GetByID", int64(2)).Return(domain.Reservation{ID: 2, Status: domain.BookingStatusCancelled}, nil).Once()

	c, w := newTestContext("PATCH", "/reservations/2/status", []byte(`{"status":"CANCELLED"}`))
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	handler.updateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"CANCELLED"`)
	reservations.AssertExpectations(t)

	c, w = newTestContext("PATCH", "/reservations/2/status", []byte(`{"status":"LOST"}`))
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	handler.updateStatus(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBookingHandler_confirm(t *testing.T) {
	mockService := &MockBookingUseCase{}
	gateway := &MockPaymentGateway{}
	handler := NewBookingHandler(mockService, nil, nil, nil, gateway)

	gateway.On("Charge", mock.Anything, 320.0).Return("ch_42", nil).Once()
	mockService.On("ConfirmPayment", mock.Anything, booking.ConfirmPaymentInput{
		TicketID: 7, Email: "ada@example.com", TransactionID: "ch_42",
	}).Return(booking.Result{Ticket: &domain.Ticket{ID: 7, PaymentStatus: domain.BookingStatusConfirmed}}, nil).Once()

	c, w := newTestContext("POST", "/tickets/7/confirm", []byte(`{"email":"ada@example.com","amount":320}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	handler.confirm(c)

	assert.Equal(t, http.StatusOK, w.Code)
	gateway.AssertExpectations(t)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_confirmDeclined(t *testing.T) {
	mockService := &MockBookingUseCase{}
	gateway := &MockPaymentGateway{}
	handler := NewBookingHandler(mockService, nil, nil, nil, gateway)

	gateway.On("Charge", mock.Anything, 10.0).Return("", errors.New("card declined")).Once()

	c, w := newTestContext("POST", "/tickets/7/confirm", []byte(`{"email":"ada@example.com","amount":10}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	handler.confirm(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	mockService.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)
}

func TestBookingHandler_confirmAlreadyPaid(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, nil, nil, nil, nil)

	mockService.On("ConfirmPayment", mock.Anything, booking.ConfirmPaymentInput{
		TicketID: 7, Email: "ada@example.com", TransactionID: "tx_1",
	}).Return(booking.Result{GlobalError: booking.MsgAlreadyPaid}, nil).Once()

	c, w := newTestContext("POST", "/tickets/7/confirm", []byte(`{"email":"ada@example.com","transaction_id":"tx_1"}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	handler.confirm(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}
